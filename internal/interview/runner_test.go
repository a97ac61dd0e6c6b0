package interview

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"swipeinterview/internal/model"
)

type scoreCall struct {
	question string
	answer   string
}

type fakeScorer struct {
	mu      sync.Mutex
	calls   []scoreCall
	replies []*model.ScoreResult
	err     error
	gate    chan struct{}
	hang    bool
}

func (f *fakeScorer) ScoreAnswer(ctx context.Context, question, answer string) (*model.ScoreResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, scoreCall{question: question, answer: answer})
	n := len(f.calls)
	f.mu.Unlock()

	if f.gate != nil {
		<-f.gate
	}
	if f.hang {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	if n <= len(f.replies) {
		return f.replies[n-1], nil
	}
	return &model.ScoreResult{Score: 5, Feedback: "ok"}, nil
}

func (f *fakeScorer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func newTestRunner(t *testing.T, qs []model.Question, scorer Scorer, timeout time.Duration) (*Runner, chan Event) {
	t.Helper()
	events := make(chan Event, 1024)
	s := &model.Session{ID: "s_test", Status: model.SessionCreated}
	r, err := NewRunner(s, qs, RunnerConfig{
		Scorer:       scorer,
		ScoreTimeout: timeout,
		OnCommit:     func(e Event) { events <- e },
	})
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	t.Cleanup(r.Stop)
	return r, events
}

func waitFor(t *testing.T, events chan Event, kind EventKind) Event {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case e := <-events:
			if e.Kind == kind {
				return e
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s", kind)
		}
	}
}

func TestRunnerScenario(t *testing.T) {
	scorer := &fakeScorer{replies: []*model.ScoreResult{
		{Score: 8, Feedback: "good"},
		{Score: 3, Feedback: "too brief"},
	}}
	r, events := newTestRunner(t, twoQuestions(), scorer, time.Second)
	waitFor(t, events, EventActivated)

	for i := 0; i < 5; i++ {
		r.Tick()
	}
	if err := r.Submit("hello"); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	next := waitFor(t, events, EventNextQuestion)
	if next.Session.CurrentIndex != 1 {
		t.Fatalf("index = %d, want 1", next.Session.CurrentIndex)
	}
	if got := next.Session.Attempts[1].TimeRemaining; got != 60 {
		t.Errorf("timer reset to %d, want 60", got)
	}
	if got := next.Session.Attempts[0].TimeRemaining; got != 15 {
		t.Errorf("first attempt remaining = %d, want 15", got)
	}

	for i := 0; i < 60; i++ {
		r.Tick()
	}
	done := waitFor(t, events, EventFinished)
	s := done.Session
	if s.Status != model.SessionFinished || s.CurrentIndex != 2 {
		t.Fatalf("status %s index %d", s.Status, s.CurrentIndex)
	}
	if s.FinalScore == nil || *s.FinalScore != 5.5 {
		t.Errorf("final score = %v, want 5.5", s.FinalScore)
	}
	if s.Attempts[0].Answer != "hello" || s.Attempts[0].Feedback != "good" {
		t.Errorf("first attempt = %+v", s.Attempts[0])
	}
	if s.Attempts[1].Answer != "" || s.Attempts[1].Feedback != "too brief" {
		t.Errorf("second attempt = %+v", s.Attempts[1])
	}
	if scorer.callCount() != 2 {
		t.Errorf("scorer called %d times, want 2", scorer.callCount())
	}
	if scorer.calls[1].answer != "" || scorer.calls[1].question != twoQuestions()[1].Text {
		t.Errorf("timeout submit sent %+v", scorer.calls[1])
	}

	select {
	case <-r.Done():
	case <-time.After(time.Second):
		t.Fatal("runner did not exit after finishing")
	}
	if err := r.Submit("late"); !errors.Is(err, ErrFinished) {
		t.Errorf("submit after finish: err = %v, want ErrFinished", err)
	}
}

func TestRunnerExactlyOnceSubmission(t *testing.T) {
	qs := []model.Question{
		{ID: "q1", Text: "first", TimeLimit: 1},
		{ID: "q2", Text: "second", TimeLimit: 60},
	}
	scorer := &fakeScorer{gate: make(chan struct{})}
	r, events := newTestRunner(t, qs, scorer, time.Second)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			err := r.Submit("answer")
			if err != nil && !errors.Is(err, ErrSubmitInFlight) {
				t.Errorf("unexpected submit error: %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			r.Tick()
		}()
	}
	wg.Wait()

	deadline := time.Now().Add(time.Second)
	for scorer.callCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	time.Sleep(20 * time.Millisecond)
	if n := scorer.callCount(); n != 1 {
		t.Fatalf("scorer called %d times, want exactly 1", n)
	}
	close(scorer.gate)

	next := waitFor(t, events, EventNextQuestion)
	if next.Session.CurrentIndex != 1 {
		t.Errorf("index advanced to %d, want 1", next.Session.CurrentIndex)
	}
	if next.Session.Attempts[0].Score == nil {
		t.Error("first attempt was not scored")
	}
}

func TestRunnerScoringFailureRecovers(t *testing.T) {
	scorer := &fakeScorer{err: errors.New("connection refused")}
	r, events := newTestRunner(t, twoQuestions(), scorer, time.Second)

	if err := r.Submit("something"); err != nil {
		t.Fatal(err)
	}
	ev := waitFor(t, events, EventScored)
	a := ev.Session.Attempts[ev.Attempt]
	if a.Score == nil || *a.Score != 0 || a.Feedback != FeedbackScoringFailed {
		t.Errorf("attempt after failure = %+v", a)
	}
	if ev.Session.CurrentIndex != 1 {
		t.Errorf("index = %d, want 1", ev.Session.CurrentIndex)
	}
}

func TestRunnerScoringTimeoutIsFailure(t *testing.T) {
	scorer := &fakeScorer{hang: true}
	r, events := newTestRunner(t, twoQuestions(), scorer, 20*time.Millisecond)

	if err := r.Submit("slow"); err != nil {
		t.Fatal(err)
	}
	ev := waitFor(t, events, EventScored)
	if got := ev.Session.Attempts[0].Feedback; got != FeedbackScoringFailed {
		t.Errorf("feedback = %q, want sentinel", got)
	}
}

func TestRunnerTimeoutSubmitsDraft(t *testing.T) {
	qs := []model.Question{{ID: "q1", Text: "only", TimeLimit: 2}}
	scorer := &fakeScorer{}
	r, events := newTestRunner(t, qs, scorer, time.Second)

	r.Draft("partial thought")
	r.Tick()
	r.Tick()
	done := waitFor(t, events, EventFinished)
	if done.Session.Attempts[0].Answer != "partial thought" {
		t.Errorf("answer = %q", done.Session.Attempts[0].Answer)
	}
	if scorer.calls[0].answer != "partial thought" {
		t.Errorf("scored answer = %q", scorer.calls[0].answer)
	}
}

func TestRunnerTicksWithRealTimer(t *testing.T) {
	events := make(chan Event, 1024)
	s := &model.Session{ID: "s_timer", Status: model.SessionCreated}
	r, err := NewRunner(s, []model.Question{{ID: "q", Text: "q", TimeLimit: 2}}, RunnerConfig{
		Scorer:       &fakeScorer{},
		TickInterval: 5 * time.Millisecond,
		ScoreTimeout: time.Second,
		OnCommit:     func(e Event) { events <- e },
	})
	if err != nil {
		t.Fatal(err)
	}
	defer r.Stop()
	waitFor(t, events, EventFinished)
}

func TestRunnerStopDisarms(t *testing.T) {
	scorer := &fakeScorer{}
	r, events := newTestRunner(t, twoQuestions(), scorer, time.Second)
	r.Stop()

	r.Tick()
	for len(events) > 0 {
		if e := <-events; e.Kind == EventTick {
			t.Error("tick committed after stop")
		}
	}
	if err := r.Submit("x"); !errors.Is(err, ErrFinished) {
		t.Errorf("submit after stop: err = %v", err)
	}
	if scorer.callCount() != 0 {
		t.Error("scorer called after stop")
	}
}

func TestRunnerResumeDoesNotReactivate(t *testing.T) {
	s := &model.Session{ID: "s_resume", Status: model.SessionCreated}
	Activate(s, twoQuestions())
	s.Attempts[0].TimeRemaining = 9

	var kinds []EventKind
	r, err := NewRunner(s, twoQuestions(), RunnerConfig{OnCommit: func(e Event) { kinds = append(kinds, e.Kind) }})
	if err != nil {
		t.Fatal(err)
	}
	snap := r.Snapshot()
	r.Stop()
	if len(kinds) != 0 {
		t.Errorf("resume committed %v", kinds)
	}
	if snap.Attempts[0].TimeRemaining != 9 {
		t.Errorf("resume point = %d, want 9", snap.Attempts[0].TimeRemaining)
	}
}

func TestRunnerStopScoresPendingSubmission(t *testing.T) {
	qs := []model.Question{
		{ID: "q1", Text: "first", TimeLimit: 2},
		{ID: "q2", Text: "second", TimeLimit: 60},
	}
	scorer := &fakeScorer{gate: make(chan struct{})}
	events := make(chan Event, 1024)
	cfg := RunnerConfig{
		Scorer:       scorer,
		ScoreTimeout: time.Second,
		OnCommit:     func(e Event) { events <- e },
	}
	r, err := NewRunner(&model.Session{ID: "s_stop", Status: model.SessionCreated}, qs, cfg)
	if err != nil {
		t.Fatal(err)
	}

	r.Draft("draft")
	r.Tick()
	r.Tick()
	waitFor(t, events, EventSubmitted)

	stopped := make(chan struct{})
	go func() {
		r.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
		t.Fatal("Stop returned before the pending score was applied")
	case <-time.After(20 * time.Millisecond):
	}
	close(scorer.gate)
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}

	snap := r.Snapshot()
	if snap.CurrentIndex != 1 || snap.Attempts[0].Score == nil || snap.Attempts[0].Answer != "draft" {
		t.Fatalf("pending submission not applied: index %d attempt %+v", snap.CurrentIndex, snap.Attempts[0])
	}

	// reopening continues with the next question
	reopened, err := NewRunner(snap, qs, cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Stop()
	if err := reopened.Submit("better answer"); err != nil {
		t.Fatal(err)
	}
	waitFor(t, events, EventFinished)

	scorer.mu.Lock()
	defer scorer.mu.Unlock()
	if len(scorer.calls) != 2 || scorer.calls[0].question != "first" || scorer.calls[1].question != "second" {
		t.Fatalf("unexpected scoring calls %+v", scorer.calls)
	}
}

func TestRunnerRescoresInterruptedSubmission(t *testing.T) {
	s := &model.Session{ID: "s_crash", Status: model.SessionCreated}
	Activate(s, twoQuestions())
	s.Attempts[0].Answer = "saved answer"
	s.Attempts[0].Submitted = true
	s.Attempts[0].TimeRemaining = 0

	scorer := &fakeScorer{replies: []*model.ScoreResult{{Score: 7, Feedback: "solid"}}}
	events := make(chan Event, 1024)
	r, err := NewRunner(s, twoQuestions(), RunnerConfig{
		Scorer:       scorer,
		ScoreTimeout: time.Second,
		OnCommit:     func(e Event) { events <- e },
	})
	if err != nil {
		t.Fatal(err)
	}
	defer r.Stop()

	next := waitFor(t, events, EventNextQuestion)
	if next.Session.CurrentIndex != 1 || next.Session.Attempts[1].TimeRemaining != 60 {
		t.Fatalf("unexpected state %+v", next.Session)
	}
	if a := next.Session.Attempts[0]; a.Score == nil || *a.Score != 7 || a.TimeRemaining != 0 {
		t.Fatalf("first attempt = %+v", a)
	}
	if scorer.callCount() != 1 || scorer.calls[0].answer != "saved answer" {
		t.Fatalf("unexpected scoring calls %+v", scorer.calls)
	}
}
