package app

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"kidvoice-service/internal/domain"
	"kidvoice-service/internal/engine"
)

// SessionRepository abstracts how per-child sessions are stored.
type SessionRepository interface {
	GetOrCreate(child string) *Session
	Get(child string) (*Session, bool)
	DeleteIfIdle(child string)
}

// PoolRepository loads content pools (from cache/backing store).
type PoolRepository interface {
	QuestionPool(ctx context.Context, name string) ([]domain.QuestionItem, error)
	ChallengePool(ctx context.Context, name string) ([]domain.ChallengeItem, error)
}

// ProfileStore persists the active child name and the list of known
// child names as simple key-value entries.
type ProfileStore interface {
	ActiveChild(ctx context.Context) (string, error)
	SetActiveChild(ctx context.Context, name string) error
	ChildNames(ctx context.Context) ([]string, error)
	SetChildNames(ctx context.Context, names []string) error
	MigrateLegacyKey(ctx context.Context) error
}

// Event is what subscribers receive; Payload is one of the domain event
// types or a state snapshot.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Config tunes the session service.
type Config struct {
	QuizSize      int
	WheelSlices   int
	SliceFiltered bool
	ChallengePool string
}

func (c Config) withDefaults() Config {
	if c.QuizSize <= 0 {
		c.QuizSize = 5
	}
	if c.WheelSlices <= 0 {
		c.WheelSlices = engine.WeekCapacity
	}
	if c.ChallengePool == "" {
		c.ChallengePool = "challenges"
	}
	return c
}

// SessionService contains the KidVoice use cases.
type SessionService struct {
	sessions SessionRepository
	pools    PoolRepository
	profiles ProfileStore
	cfg      Config
}

func NewSessionService(sessions SessionRepository, pools PoolRepository, profiles ProfileStore, cfg Config) *SessionService {
	return &SessionService{
		sessions: sessions,
		pools:    pools,
		profiles: profiles,
		cfg:      cfg.withDefaults(),
	}
}

// Join registers the child profile and ensures a session exists.
func (s *SessionService) Join(ctx context.Context, child string) error {
	if err := s.profiles.MigrateLegacyKey(ctx); err != nil {
		return err
	}
	if err := s.profiles.SetActiveChild(ctx, child); err != nil {
		return err
	}
	names, err := s.profiles.ChildNames(ctx)
	if err != nil {
		return err
	}
	known := false
	for _, n := range names {
		if n == child {
			known = true
			break
		}
	}
	if !known {
		if err := s.profiles.SetChildNames(ctx, append(names, child)); err != nil {
			return err
		}
	}
	s.sessions.GetOrCreate(child)
	return nil
}

// Leave drops the child's session once nobody is watching it.
func (s *SessionService) Leave(_ context.Context, child string) {
	s.sessions.DeleteIfIdle(child)
}

// Subscribe returns a channel of engine events for the child. The
// caller must invoke the cancel function to avoid leaks.
func (s *SessionService) Subscribe(_ context.Context, child string) (<-chan Event, func(), error) {
	session, ok := s.sessions.Get(child)
	if !ok {
		return nil, nil, domain.ErrSessionNotFound
	}
	ch, cancel := session.subscribe()
	return ch, cancel, nil
}

// StartQuiz samples a fresh run from the theme's question pool.
func (s *SessionService) StartQuiz(ctx context.Context, child string, themeID domain.ThemeID) (*domain.SessionState, error) {
	session, ok := s.sessions.Get(child)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	theme, err := domain.ThemeByID(themeID)
	if err != nil {
		return nil, err
	}
	pool, err := s.pools.QuestionPool(ctx, theme.Pool)
	if err != nil {
		return nil, err
	}
	return session.startQuiz(theme.ID, pool, s.cfg.QuizSize)
}

// SubmitAnswer validates the selected text against the current question.
// Stale or repeated submissions are silent no-ops (applied=false).
func (s *SessionService) SubmitAnswer(_ context.Context, child, text string) (domain.AnswerOutcomeEvent, bool, error) {
	session, ok := s.sessions.Get(child)
	if !ok {
		return domain.AnswerOutcomeEvent{}, false, domain.ErrSessionNotFound
	}
	return session.submitAnswer(text)
}

// Advance moves the question cursor; boundary moves are no-ops.
func (s *SessionService) Advance(_ context.Context, child string, dir engine.Direction) error {
	session, ok := s.sessions.Get(child)
	if !ok {
		return domain.ErrSessionNotFound
	}
	return session.advance(dir)
}

// FinishQuiz summarizes the current run at any point.
func (s *SessionService) FinishQuiz(_ context.Context, child string) (domain.QuizSummary, error) {
	session, ok := s.sessions.Get(child)
	if !ok {
		return domain.QuizSummary{}, domain.ErrSessionNotFound
	}
	return session.finishQuiz()
}

// ResetQuiz clears all selections of the current run.
func (s *SessionService) ResetQuiz(_ context.Context, child string) error {
	session, ok := s.sessions.Get(child)
	if !ok {
		return domain.ErrSessionNotFound
	}
	return session.resetQuiz()
}

// Spin turns the challenge wheel for the child's active week.
func (s *SessionService) Spin(ctx context.Context, child string) (domain.SpinResultEvent, error) {
	session, ok := s.sessions.Get(child)
	if !ok {
		return domain.SpinResultEvent{}, domain.ErrSessionNotFound
	}
	pool, err := s.pools.ChallengePool(ctx, s.cfg.ChallengePool)
	if err != nil {
		return domain.SpinResultEvent{}, err
	}
	if len(pool) == 0 {
		return domain.SpinResultEvent{}, domain.ErrEmptyPool
	}
	return session.spin(pool, s.cfg.WheelSlices, s.cfg.SliceFiltered), nil
}

// RecordDecision finalizes a weekly entry as done or skipped.
func (s *SessionService) RecordDecision(_ context.Context, child string, id int, decision domain.Decision) (bool, error) {
	session, ok := s.sessions.Get(child)
	if !ok {
		return false, domain.ErrSessionNotFound
	}
	return session.recordDecision(id, decision), nil
}

// WeekEntries snapshots the active week's stack and number.
func (s *SessionService) WeekEntries(_ context.Context, child string) ([]domain.WeeklyChallengeEntry, int, error) {
	session, ok := s.sessions.Get(child)
	if !ok {
		return nil, 0, domain.ErrSessionNotFound
	}
	return session.weekSnapshot()
}

// StartNewWeek archives the current week and opens the next one.
func (s *SessionService) StartNewWeek(_ context.Context, child string) (domain.CompletedWeek, int, error) {
	session, ok := s.sessions.Get(child)
	if !ok {
		return domain.CompletedWeek{}, 0, domain.ErrSessionNotFound
	}
	archived, next := session.startNewWeek()
	return archived, next, nil
}

// WeekHistory returns the archived weeks, oldest first.
func (s *SessionService) WeekHistory(_ context.Context, child string) ([]domain.CompletedWeek, error) {
	session, ok := s.sessions.Get(child)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session.historySnapshot(), nil
}

// Levels derives the theme's level map from finished perfect runs.
func (s *SessionService) Levels(_ context.Context, child string, themeID domain.ThemeID) ([]domain.Level, error) {
	session, ok := s.sessions.Get(child)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	if _, err := domain.ThemeByID(themeID); err != nil {
		return nil, err
	}
	return session.levels(themeID), nil
}

// NewSession is exported for infrastructure layers that seed sessions.
func NewSession(child string) *Session {
	return newSessionWithRand(child, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewSessionWithRand is test-only for deterministic spins and sampling.
func NewSessionWithRand(child string, rng *rand.Rand) *Session {
	return newSessionWithRand(child, rng)
}

// Session hosts one child's quiz run, weekly challenge stack, and level
// progress. All engine calls go through its mutex; subscribers receive
// the resulting events.
type Session struct {
	child string
	rng   *rand.Rand

	mu          sync.RWMutex
	quiz        *domain.SessionState
	quizTheme   domain.ThemeID
	scored      bool
	perfectRuns map[domain.ThemeID]int
	week        []domain.WeeklyChallengeEntry
	weekNumber  int
	weekClosed  bool
	history     []domain.CompletedWeek
	subscribers map[chan Event]struct{}
}

func newSessionWithRand(child string, rng *rand.Rand) *Session {
	return &Session{
		child:       child,
		rng:         rng,
		perfectRuns: make(map[domain.ThemeID]int),
		weekNumber:  1,
		subscribers: make(map[chan Event]struct{}),
	}
}

// IsIdle reports whether nobody is subscribed to the session.
func (s *Session) IsIdle() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subscribers) == 0
}

func (s *Session) subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 8)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Session) startQuiz(theme domain.ThemeID, pool []domain.QuestionItem, size int) (*domain.SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := engine.StartQuiz(pool, size, s.rng)
	if err != nil {
		return nil, err
	}
	s.quiz = state
	s.quizTheme = theme
	s.scored = false
	s.emitLocked(Event{Type: "quizStarted", Payload: state})
	return state, nil
}

func (s *Session) submitAnswer(text string) (domain.AnswerOutcomeEvent, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.quiz == nil {
		return domain.AnswerOutcomeEvent{}, false, domain.ErrNoActiveQuiz
	}
	index := s.quiz.CurrentIndex
	outcome, applied := engine.SubmitAnswer(s.quiz, text)
	if !applied {
		return domain.AnswerOutcomeEvent{}, false, nil
	}

	ev := domain.AnswerOutcomeEvent{Index: index, Correct: outcome == domain.Correct}
	s.emitLocked(Event{Type: "answerOutcome", Payload: ev})

	if s.quiz.Complete && !s.scored {
		s.scored = true
		summary := engine.FinishQuiz(s.quiz)
		if summary.PerfectScore {
			s.perfectRuns[s.quizTheme]++
		}
		tier := domain.Classify(summary.CorrectCount, summary.Total)
		s.emitLocked(Event{Type: "sessionComplete", Payload: domain.SessionCompleteEvent{
			CorrectCount: summary.CorrectCount,
			Total:        summary.Total,
			Tier:         tier,
			TierName:     tier.String(),
			Message:      domain.QuizMessage(summary.CorrectCount, summary.Total),
		}})
	}
	return ev, true, nil
}

func (s *Session) advance(dir engine.Direction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.quiz == nil {
		return domain.ErrNoActiveQuiz
	}
	engine.Advance(s.quiz, dir)
	return nil
}

func (s *Session) finishQuiz() (domain.QuizSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.quiz == nil {
		return domain.QuizSummary{}, domain.ErrNoActiveQuiz
	}
	return engine.FinishQuiz(s.quiz), nil
}

func (s *Session) resetQuiz() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.quiz == nil {
		return domain.ErrNoActiveQuiz
	}
	engine.ResetQuiz(s.quiz)
	s.scored = false
	s.emitLocked(Event{Type: "quizStarted", Payload: s.quiz})
	return nil
}

func (s *Session) spin(pool []domain.ChallengeItem, slices int, sliceFiltered bool) domain.SpinResultEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev := domain.SpinResultEvent{}
	if len(s.week) < engine.WeekCapacity {
		used := engine.UsedIDs(s.week)
		if sliceFiltered {
			ev.Item, ev.TargetSlice = engine.SpinSlice(pool, used, slices, s.rng)
		} else {
			ev.Item = engine.Spin(pool, used, s.rng)
			ev.TargetSlice = s.rng.Intn(slices)
		}
		fullRotations := 3 + s.rng.Intn(4)
		ev.Rotation = engine.Rotation(fullRotations, ev.TargetSlice, slices)
		if ev.Item != nil {
			s.week = engine.PushEntry(s.week, *ev.Item)
		}
	}
	s.emitLocked(Event{Type: "spinResult", Payload: ev})
	return ev
}

func (s *Session) recordDecision(id int, decision domain.Decision) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	applied := engine.RecordDecision(s.week, id, decision)
	if !applied {
		return false
	}
	s.emitLocked(Event{Type: "decisionRecorded", Payload: domain.DecisionRecordedEvent{
		ID:       id,
		Decision: decision.String(),
	}})

	if engine.IsWeekComplete(s.week) && !s.weekClosed {
		s.weekClosed = true
		done := engine.DoneCount(s.week)
		s.emitLocked(Event{Type: "weekComplete", Payload: domain.WeekCompleteEvent{
			Week:          engine.ArchiveWeek(s.week, s.weekNumber),
			DoneCount:     done,
			RewardEarned:  domain.WeekRewardEarned(done),
			WeeklyMessage: domain.WeeklyMessage(done),
		}})
	}
	return true
}

func (s *Session) weekSnapshot() ([]domain.WeeklyChallengeEntry, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := make([]domain.WeeklyChallengeEntry, len(s.week))
	copy(entries, s.week)
	return entries, s.weekNumber, nil
}

func (s *Session) startNewWeek() (domain.CompletedWeek, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	archived, next, nextNumber := engine.StartNewWeek(s.week, s.weekNumber)
	s.history = append(s.history, archived)
	s.week = next
	s.weekNumber = nextNumber
	s.weekClosed = false
	s.emitLocked(Event{Type: "weekStarted", Payload: map[string]int{"weekNumber": nextNumber}})
	return archived, nextNumber
}

func (s *Session) historySnapshot() []domain.CompletedWeek {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.CompletedWeek, len(s.history))
	copy(out, s.history)
	return out
}

func (s *Session) levels(theme domain.ThemeID) []domain.Level {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.BuildLevels(s.perfectRuns[theme])
}

func (s *Session) emitLocked(ev Event) {
	for ch := range s.subscribers {
		select {
		case ch <- ev:
		default:
			// Drop the oldest pending event so slow consumers never
			// block the engine.
			select {
			case <-ch:
			default:
			}
			ch <- ev
		}
	}
}
