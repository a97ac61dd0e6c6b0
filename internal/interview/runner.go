package interview

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"swipeinterview/internal/model"
)

var ErrSubmitInFlight = errors.New("answer already submitted for this question")

// Scorer scores one answer. Implementations may block on the network.
type Scorer interface {
	ScoreAnswer(ctx context.Context, question, answer string) (*model.ScoreResult, error)
}

// EventKind names a committed transition
type EventKind string

const (
	EventActivated    EventKind = "activated"
	EventTick         EventKind = "countdown"
	EventDraft        EventKind = "draft_saved"
	EventSubmitted    EventKind = "answer_submitted"
	EventScored       EventKind = "evaluation_result"
	EventNextQuestion EventKind = "next_question"
	EventFinished     EventKind = "session_finished"
)

// Event is emitted after every committed transition. Session is a copy.
type Event struct {
	Kind    EventKind
	Session *model.Session
	Attempt int // index of the attempt the event concerns
}

// RunnerConfig wires a Runner to its collaborators
type RunnerConfig struct {
	Scorer       Scorer
	TickInterval time.Duration // 0 means ticks only arrive through Runner.Tick
	ScoreTimeout time.Duration
	OnCommit     func(Event)
}

type tickIntent struct{}

type submitIntent struct {
	answer string
	reply  chan error
}

type draftIntent struct{ text string }

type snapshotIntent struct{ reply chan *model.Session }

type scoredMsg struct {
	attempt int
	result  *model.ScoreResult
	err     error
}

// Runner owns one session while it is active. Every mutation happens on the
// runner goroutine; the countdown, user submissions and scoring replies reach
// it as messages.
type Runner struct {
	cfg     RunnerConfig
	session *model.Session

	intents chan interface{}
	results chan scoredMsg
	quit    chan struct{}
	done    chan struct{}
	once    sync.Once

	ticker     *time.Ticker
	tickC      <-chan time.Time
	armed      bool
	submitting bool
}

// NewRunner activates s against catalog and starts its runner goroutine.
// The runner takes ownership of s.
func NewRunner(s *model.Session, catalog []model.Question, cfg RunnerConfig) (*Runner, error) {
	changed, err := Activate(s, catalog)
	if err != nil {
		return nil, err
	}
	if cfg.ScoreTimeout <= 0 {
		cfg.ScoreTimeout = 8 * time.Second
	}
	if s.Current() == nil {
		return nil, ErrNoAttempt
	}

	r := &Runner{
		cfg:     cfg,
		session: s,
		intents: make(chan interface{}),
		results: make(chan scoredMsg, 1),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	ArmCountdown(s)
	if changed {
		r.commit(EventActivated)
	}
	if PendingScore(s) {
		// scoring was interrupted before its result was applied
		log.Printf("re-scoring pending answer for session %s question %d", s.ID, s.CurrentIndex)
		if err := r.beginSubmit(s.Current().Answer); err != nil {
			return nil, err
		}
	} else {
		r.arm()
	}
	go r.loop()
	return r, nil
}

// ID is the id of the owned session
func (r *Runner) ID() string {
	return r.session.ID
}

// Tick delivers one countdown tick
func (r *Runner) Tick() {
	select {
	case r.intents <- tickIntent{}:
	case <-r.done:
	}
}

// Submit hands in the answer for the current question. The countdown is
// disarmed before scoring starts; a second submit for the same question
// returns ErrSubmitInFlight.
func (r *Runner) Submit(answer string) error {
	reply := make(chan error, 1)
	select {
	case r.intents <- submitIntent{answer: answer, reply: reply}:
		return <-reply
	case <-r.done:
		return ErrFinished
	}
}

// Draft keeps the text typed so far; it is what a timeout submits
func (r *Runner) Draft(text string) {
	select {
	case r.intents <- draftIntent{text: text}:
	case <-r.done:
	}
}

// Snapshot returns a copy of the session
func (r *Runner) Snapshot() *model.Session {
	reply := make(chan *model.Session, 1)
	select {
	case r.intents <- snapshotIntent{reply: reply}:
		return <-reply
	case <-r.done:
		return r.session.Clone()
	}
}

// Stop disarms the countdown and waits for the runner goroutine to exit. An
// accepted submission is still scored first, bounded by the score timeout.
func (r *Runner) Stop() {
	r.once.Do(func() { close(r.quit) })
	<-r.done
}

// Done is closed once the runner has exited, either stopped or finished
func (r *Runner) Done() <-chan struct{} {
	return r.done
}

func (r *Runner) loop() {
	defer close(r.done)
	defer r.disarm()

	for {
		select {
		case <-r.quit:
			if r.submitting {
				r.finishSubmit(<-r.results)
			}
			return

		case <-r.tickC:
			r.onTick()

		case in := <-r.intents:
			switch m := in.(type) {
			case tickIntent:
				r.onTick()
			case submitIntent:
				m.reply <- r.beginSubmit(m.answer)
			case draftIntent:
				if r.submitting {
					continue
				}
				if err := RecordAnswer(r.session, m.text); err == nil {
					r.commit(EventDraft)
				}
			case snapshotIntent:
				m.reply <- r.session.Clone()
			}

		case res := <-r.results:
			if r.finishSubmit(res) {
				return
			}
		}
	}
}

func (r *Runner) onTick() {
	if !r.armed || r.submitting {
		return
	}
	expired := Tick(r.session)
	r.commit(EventTick)
	if expired {
		if err := r.beginSubmit(r.session.Current().Answer); err != nil {
			log.Printf("auto-submit for session %s dropped: %v", r.session.ID, err)
		}
	}
}

func (r *Runner) beginSubmit(answer string) error {
	if r.session.Status == model.SessionFinished {
		return ErrFinished
	}
	if r.submitting {
		return ErrSubmitInFlight
	}
	r.disarm()
	if err := RecordAnswer(r.session, answer); err != nil {
		return err
	}
	r.session.Current().Submitted = true
	r.submitting = true
	idx := r.session.CurrentIndex
	question := r.session.Current().Text
	r.commit(EventSubmitted)

	ctx, cancel := context.WithTimeout(context.Background(), r.cfg.ScoreTimeout)
	go func() {
		defer cancel()
		var (
			res *model.ScoreResult
			err = errors.New("no scorer configured")
		)
		if r.cfg.Scorer != nil {
			res, err = r.cfg.Scorer.ScoreAnswer(ctx, question, answer)
		}
		// results has room for the single in-flight reply
		r.results <- scoredMsg{attempt: idx, result: res, err: err}
	}()
	return nil
}

// finishSubmit applies a scoring reply and reports whether the session is done
func (r *Runner) finishSubmit(res scoredMsg) bool {
	r.submitting = false
	if res.attempt != r.session.CurrentIndex {
		log.Printf("stale score for session %s question %d ignored", r.session.ID, res.attempt)
		return false
	}
	if res.err != nil {
		log.Printf("scoring failed for session %s question %d: %v", r.session.ID, res.attempt, res.err)
	}

	finished, err := ApplyScore(r.session, res.result, res.err)
	if err != nil {
		log.Printf("apply score for session %s: %v", r.session.ID, err)
		return r.session.Status == model.SessionFinished
	}
	r.commitAttempt(EventScored, res.attempt)
	if finished {
		r.commit(EventFinished)
		return true
	}
	ArmCountdown(r.session)
	r.commit(EventNextQuestion)
	r.arm()
	return false
}

func (r *Runner) arm() {
	r.armed = true
	if r.cfg.TickInterval > 0 && r.ticker == nil {
		r.ticker = time.NewTicker(r.cfg.TickInterval)
		r.tickC = r.ticker.C
	}
}

func (r *Runner) disarm() {
	r.armed = false
	if r.ticker != nil {
		r.ticker.Stop()
		r.ticker = nil
	}
	r.tickC = nil
}

func (r *Runner) commit(kind EventKind) {
	r.commitAttempt(kind, r.session.CurrentIndex)
}

func (r *Runner) commitAttempt(kind EventKind, attempt int) {
	if r.cfg.OnCommit == nil {
		return
	}
	r.cfg.OnCommit(Event{Kind: kind, Session: r.session.Clone(), Attempt: attempt})
}
