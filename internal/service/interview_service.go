package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"swipeinterview/internal/cache"
	"swipeinterview/internal/extractor"
	"swipeinterview/internal/interview"
	"swipeinterview/internal/model"
	"swipeinterview/internal/repository"
	"swipeinterview/internal/storage"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionActive    = errors.New("session is currently active")
	ErrSessionNotActive = errors.New("session is not active")
	ErrExtraction       = errors.New("failed to extract resume text")
	ErrNoResume         = errors.New("no archived resume for session")
)

// countdown ticks are persisted every tickPersistEvery seconds
const tickPersistEvery = 5

const commitQueueSize = 1024

// InterviewConfig tunes the runners the service starts
type InterviewConfig struct {
	TickInterval   time.Duration
	ScoreTimeout   time.Duration
	PersistTimeout time.Duration
}

// InterviewService owns the session collection. At most one session is
// active (has a running countdown) at a time.
type InterviewService struct {
	store   repository.SessionStore
	scorer  interview.Scorer
	catalog []model.Question
	cfg     InterviewConfig

	leaderboard cache.LeaderboardCache
	drafts      cache.DraftCache
	archive     storage.ResumeArchive
	broadcaster Broadcaster

	ctrl   sync.Mutex // serializes Activate, Close, Delete and Shutdown
	saveMu sync.Mutex // keeps saves in commit order

	mu       sync.RWMutex
	sessions []*model.Session // newest first; entries are replaced, never mutated
	active   *interview.Runner

	commits chan commitJob
}

// commitJob is a committed transition waiting for its side effects. A job
// with flushed set only marks a point in the queue.
type commitJob struct {
	ev      interview.Event
	flushed chan struct{}
}

// NewInterviewService creates a new interview service
func NewInterviewService(
	store repository.SessionStore,
	scorer interview.Scorer,
	catalog []model.Question,
	cfg InterviewConfig,
) *InterviewService {
	if cfg.PersistTimeout <= 0 {
		cfg.PersistTimeout = 5 * time.Second
	}
	s := &InterviewService{
		store:   store,
		scorer:  scorer,
		catalog: catalog,
		cfg:     cfg,
		commits: make(chan commitJob, commitQueueSize),
	}
	go s.dispatchCommits()
	return s
}

// SetBroadcaster sets the broadcaster for session events
func (s *InterviewService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// SetLeaderboard mirrors final scores into a Redis ZSET
func (s *InterviewService) SetLeaderboard(lb cache.LeaderboardCache) {
	s.leaderboard = lb
}

// SetDraftCache keeps drafts in Redis instead of saving the collection per keystroke
func (s *InterviewService) SetDraftCache(d cache.DraftCache) {
	s.drafts = d
}

// SetResumeArchive enables archiving of uploaded resume files
func (s *InterviewService) SetResumeArchive(a storage.ResumeArchive) {
	s.archive = a
}

// Hydrate loads the collection from the store. Call once before serving.
func (s *InterviewService) Hydrate(ctx context.Context) error {
	sessions, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load sessions: %w", err)
	}

	s.mu.Lock()
	s.sessions = sessions
	s.mu.Unlock()

	if s.leaderboard != nil {
		for _, sess := range sessions {
			if sess.Status != model.SessionFinished || sess.FinalScore == nil {
				continue
			}
			if err := s.leaderboard.UpdateScore(ctx, sess.ID, *sess.FinalScore); err != nil {
				log.Printf("Warning: leaderboard rebuild failed: %v", err)
				break
			}
		}
	}

	log.Printf("Loaded %d sessions", len(sessions))
	return nil
}

// CreateFromResume extracts text and contact details from an uploaded resume
// and stores a new session in the created state.
func (s *InterviewService) CreateFromResume(ctx context.Context, filename, mime string, data []byte) (*model.Session, error) {
	text, err := extractor.ExtractText(filename, mime, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	info := extractor.ParseContactInfo(text)

	now := time.Now()
	sess := &model.Session{
		ID:         newSessionID(),
		Name:       info.Name,
		Email:      info.Email,
		Phone:      info.Phone,
		ResumeText: text,
		Attempts:   []model.Attempt{},
		Status:     model.SessionCreated,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if s.archive != nil {
		key, err := s.archive.Put(ctx, sess.ID, filename, extractor.DetectType(filename, mime), data)
		if err != nil {
			log.Printf("Warning: resume archive failed for session %s: %v", sess.ID, err)
		} else {
			sess.ResumeKey = key
		}
	}

	s.mu.Lock()
	s.sessions = append([]*model.Session{sess}, s.sessions...)
	s.mu.Unlock()

	if err := s.persist(ctx); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastToDashboard("session_created", summaryOf(sess))
	}
	log.Printf("Session %s created for %q", sess.ID, sess.Name)
	return sess.Clone(), nil
}

// Activate makes id the active session. A created session gets its
// questions; an in-progress one resumes where it stopped. Any other active
// session is stopped first.
func (s *InterviewService) Activate(ctx context.Context, id string) (*model.SessionView, error) {
	s.ctrl.Lock()
	defer s.ctrl.Unlock()

	s.mu.RLock()
	sess := s.find(id)
	active := s.active
	s.mu.RUnlock()

	if sess == nil {
		return nil, ErrSessionNotFound
	}
	if active != nil && active.ID() == id {
		return model.ViewOf(active.Snapshot()), nil
	}
	if sess.Status == model.SessionFinished {
		return nil, interview.ErrFinished
	}
	if active != nil {
		s.stopRunner(ctx, active)
	}

	runner, err := interview.NewRunner(sess.Clone(), s.catalog, interview.RunnerConfig{
		Scorer:       s.scorer,
		TickInterval: s.cfg.TickInterval,
		ScoreTimeout: s.cfg.ScoreTimeout,
		OnCommit:     s.onCommit,
	})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.active = runner
	s.mu.Unlock()

	snap := runner.Snapshot()
	if draft := s.restoreDraft(ctx, snap); draft != "" {
		runner.Draft(draft)
		snap = runner.Snapshot()
	}

	log.Printf("Session %s active at question %d/%d", id, snap.CurrentIndex+1, len(snap.Attempts))
	return model.ViewOf(snap), nil
}

// Submit hands in an answer for the active session's current question.
// Submissions that lose a race with the countdown, or arrive after the
// session finished, are logged and dropped.
func (s *InterviewService) Submit(id, answer string) error {
	r, err := s.runnerFor(id)
	if err != nil {
		if errors.Is(err, interview.ErrFinished) {
			log.Printf("Submit for finished session %s dropped", id)
			return nil
		}
		return err
	}
	if err := r.Submit(answer); err != nil {
		log.Printf("Submit for session %s dropped: %v", id, err)
	}
	return nil
}

// SaveDraft keeps the text typed so far for the current question
func (s *InterviewService) SaveDraft(id, draft string) error {
	r, err := s.runnerFor(id)
	if err != nil {
		return err
	}
	r.Draft(draft)
	return nil
}

// Close stops the countdown of an active session. The session stays
// in progress and can be activated again later.
func (s *InterviewService) Close(ctx context.Context, id string) (*model.SessionView, error) {
	s.ctrl.Lock()
	defer s.ctrl.Unlock()

	s.mu.RLock()
	sess := s.find(id)
	active := s.active
	s.mu.RUnlock()

	if sess == nil {
		return nil, ErrSessionNotFound
	}
	if active != nil && active.ID() == id {
		s.stopRunner(ctx, active)
		log.Printf("Session %s closed", id)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if cur := s.find(id); cur != nil {
		sess = cur
	}
	return model.ViewOf(sess), nil
}

// Get returns a copy of one session
func (s *InterviewService) Get(id string) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess := s.find(id)
	if sess == nil {
		return nil, ErrSessionNotFound
	}
	return sess.Clone(), nil
}

// Exists reports whether a session is stored
func (s *InterviewService) Exists(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.find(id) != nil
}

// ActiveID returns the id of the active session, or ""
func (s *InterviewService) ActiveID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.active == nil {
		return ""
	}
	return s.active.ID()
}

// List returns copies of all sessions, newest first
func (s *InterviewService) List() []*model.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.Session, len(s.sessions))
	for i, sess := range s.sessions {
		out[i] = sess.Clone()
	}
	return out
}

// Dashboard returns all sessions ordered by final score, highest first.
// Sessions without a final score sort as 0.
func (s *InterviewService) Dashboard() []*model.Session {
	out := s.List()
	sort.SliceStable(out, func(i, j int) bool {
		return scoreOf(out[i]) > scoreOf(out[j])
	})
	return out
}

// Leaderboard returns the top finished sessions
func (s *InterviewService) Leaderboard(ctx context.Context, limit int) ([]cache.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	if s.leaderboard != nil {
		entries, err := s.leaderboard.GetTop(ctx, limit)
		if err != nil {
			return nil, fmt.Errorf("failed to read leaderboard: %w", err)
		}
		s.mu.RLock()
		for i := range entries {
			if sess := s.find(entries[i].SessionID); sess != nil {
				entries[i].Name = sess.Name
			}
		}
		s.mu.RUnlock()
		return entries, nil
	}

	entries := []cache.LeaderboardEntry{}
	for _, sess := range s.Dashboard() {
		if sess.Status != model.SessionFinished || len(entries) == limit {
			continue
		}
		entries = append(entries, cache.LeaderboardEntry{
			SessionID: sess.ID,
			Name:      sess.Name,
			Score:     scoreOf(sess),
			Rank:      len(entries) + 1,
		})
	}
	return entries, nil
}

// Delete removes a session from the collection. The active session cannot
// be deleted; close it first.
func (s *InterviewService) Delete(ctx context.Context, id string) error {
	s.ctrl.Lock()
	defer s.ctrl.Unlock()

	s.mu.Lock()
	if s.active != nil && s.active.ID() == id {
		s.mu.Unlock()
		return ErrSessionActive
	}
	idx := -1
	for i, sess := range s.sessions {
		if sess.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return ErrSessionNotFound
	}
	s.sessions = append(s.sessions[:idx:idx], s.sessions[idx+1:]...)
	s.mu.Unlock()

	if err := s.persist(ctx); err != nil {
		return fmt.Errorf("failed to save sessions: %w", err)
	}
	if s.leaderboard != nil {
		if err := s.leaderboard.Remove(ctx, id); err != nil {
			log.Printf("Warning: leaderboard remove failed for %s: %v", id, err)
		}
	}
	if s.broadcaster != nil {
		s.broadcaster.DisconnectSession(id)
		s.broadcaster.BroadcastToDashboard("session_deleted", map[string]string{"sessionId": id})
	}
	log.Printf("Session %s deleted", id)
	return nil
}

// ResumeFile returns the archived upload of a session
func (s *InterviewService) ResumeFile(ctx context.Context, id string) ([]byte, string, error) {
	sess, err := s.Get(id)
	if err != nil {
		return nil, "", err
	}
	if s.archive == nil || sess.ResumeKey == "" {
		return nil, "", ErrNoResume
	}
	data, err := s.archive.Get(ctx, sess.ResumeKey)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch resume: %w", err)
	}
	return data, sess.ResumeKey, nil
}

// Shutdown stops the active runner, saves its last state and waits for
// queued saves and broadcasts to finish
func (s *InterviewService) Shutdown(ctx context.Context) {
	s.ctrl.Lock()
	defer s.ctrl.Unlock()

	s.mu.RLock()
	active := s.active
	s.mu.RUnlock()
	if active != nil {
		s.stopRunner(ctx, active)
	}
	s.flush()
}

// onCommit runs on the runner goroutine after every committed transition. It
// only updates memory; I/O is queued for dispatchCommits so a slow store or
// broker never holds up the countdown.
func (s *InterviewService) onCommit(ev interview.Event) {
	s.replace(ev.Session)

	if ev.Kind == interview.EventFinished {
		s.mu.Lock()
		if s.active != nil && s.active.ID() == ev.Session.ID {
			s.active = nil
		}
		s.mu.Unlock()
	}

	s.commits <- commitJob{ev: ev}
}

// dispatchCommits applies side effects of commits in order
func (s *InterviewService) dispatchCommits() {
	for job := range s.commits {
		if job.flushed != nil {
			close(job.flushed)
			continue
		}
		s.applyCommit(job.ev)
	}
}

// flush waits until every commit queued so far has been applied
func (s *InterviewService) flush() {
	done := make(chan struct{})
	s.commits <- commitJob{flushed: done}
	<-done
}

func (s *InterviewService) applyCommit(ev interview.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.PersistTimeout)
	defer cancel()

	if s.shouldPersist(ev) {
		if err := s.persist(ctx); err != nil {
			log.Printf("Warning: failed to save sessions after %s: %v", ev.Kind, err)
		}
	}

	switch ev.Kind {
	case interview.EventDraft:
		if s.drafts != nil {
			if err := s.drafts.Set(ctx, ev.Session.ID, ev.Attempt, ev.Session.Attempts[ev.Attempt].Answer); err != nil {
				log.Printf("Warning: draft cache write failed: %v", err)
			}
		}
	case interview.EventSubmitted:
		if s.drafts != nil {
			s.drafts.Delete(ctx, ev.Session.ID, ev.Attempt)
		}
	case interview.EventFinished:
		if s.leaderboard != nil && ev.Session.FinalScore != nil {
			if err := s.leaderboard.UpdateScore(ctx, ev.Session.ID, *ev.Session.FinalScore); err != nil {
				log.Printf("Warning: leaderboard update failed: %v", err)
			}
		}
		log.Printf("Session %s finished with score %.1f", ev.Session.ID, scoreOf(ev.Session))
	}

	s.publish(ev)
}

func (s *InterviewService) shouldPersist(ev interview.Event) bool {
	switch ev.Kind {
	case interview.EventTick:
		cur := ev.Session.Attempts[ev.Attempt]
		return cur.TimeRemaining%tickPersistEvery == 0
	case interview.EventDraft:
		return s.drafts == nil
	}
	return true
}

func (s *InterviewService) publish(ev interview.Event) {
	if s.broadcaster == nil {
		return
	}
	sess := ev.Session

	switch ev.Kind {
	case interview.EventActivated, interview.EventNextQuestion:
		s.broadcaster.BroadcastToSession(sess.ID, "next_question", model.ViewOf(sess))
	case interview.EventTick:
		s.broadcaster.BroadcastToSession(sess.ID, "countdown", map[string]interface{}{
			"sessionId":     sess.ID,
			"index":         ev.Attempt,
			"timeRemaining": sess.Attempts[ev.Attempt].TimeRemaining,
		})
	case interview.EventScored:
		a := sess.Attempts[ev.Attempt]
		s.broadcaster.BroadcastToSession(sess.ID, "evaluation_result", map[string]interface{}{
			"sessionId":  sess.ID,
			"index":      ev.Attempt,
			"questionId": a.QuestionID,
			"score":      a.Score,
			"feedback":   a.Feedback,
		})
	case interview.EventFinished:
		summary := summaryOf(sess)
		s.broadcaster.BroadcastToSession(sess.ID, "session_finished", summary)
		s.broadcaster.BroadcastToDashboard("session_finished", summary)
	}
}

// stopRunner stops r and writes its final state back. Callers hold s.ctrl
// but not s.mu.
func (s *InterviewService) stopRunner(ctx context.Context, r *interview.Runner) {
	r.Stop()

	s.mu.Lock()
	if s.active == r {
		s.active = nil
	}
	s.mu.Unlock()

	s.replace(r.Snapshot())
	if err := s.persist(ctx); err != nil {
		log.Printf("Warning: failed to save session %s on stop: %v", r.ID(), err)
	}
}

func (s *InterviewService) restoreDraft(ctx context.Context, snap *model.Session) string {
	if s.drafts == nil {
		return ""
	}
	cur := snap.Current()
	if cur == nil || cur.Answer != "" {
		return ""
	}
	draft, err := s.drafts.Get(ctx, snap.ID, snap.CurrentIndex)
	if err != nil {
		log.Printf("Warning: draft cache read failed: %v", err)
		return ""
	}
	return draft
}

// runnerFor returns the runner of id, or why there is none
func (s *InterviewService) runnerFor(id string) (*interview.Runner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.active != nil && s.active.ID() == id {
		return s.active, nil
	}
	sess := s.find(id)
	if sess == nil {
		return nil, ErrSessionNotFound
	}
	if sess.Status == model.SessionFinished {
		return nil, interview.ErrFinished
	}
	return nil, ErrSessionNotActive
}

// persist saves the whole collection. Callers must not hold s.mu.
func (s *InterviewService) persist(ctx context.Context) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.RLock()
	snapshot := make([]*model.Session, len(s.sessions))
	copy(snapshot, s.sessions)
	s.mu.RUnlock()

	return s.store.Save(ctx, snapshot)
}

func (s *InterviewService) replace(sess *model.Session) {
	sess.UpdatedAt = time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.sessions {
		if s.sessions[i].ID == sess.ID {
			s.sessions[i] = sess
			return
		}
	}
}

// find expects s.mu to be held
func (s *InterviewService) find(id string) *model.Session {
	for _, sess := range s.sessions {
		if sess.ID == id {
			return sess
		}
	}
	return nil
}

func newSessionID() string {
	return "s_" + uuid.NewString()[:8]
}

func scoreOf(sess *model.Session) float64 {
	if sess.FinalScore == nil {
		return 0
	}
	return *sess.FinalScore
}

func summaryOf(sess *model.Session) map[string]interface{} {
	return map[string]interface{}{
		"sessionId":  sess.ID,
		"name":       sess.Name,
		"status":     sess.Status,
		"finalScore": sess.FinalScore,
	}
}
