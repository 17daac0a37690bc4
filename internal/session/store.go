package session

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/bhasha-api/internal/generation"
)

// Defaults applied when a Config field is zero.
const (
	DefaultTTL          = 24 * time.Hour
	DefaultMaxChatTurns = 100
)

// Config bounds session lifetime and history size.
type Config struct {
	TTL          time.Duration
	MaxChatTurns int
}

// Session is a point-in-time copy of a learner's state.
type Session struct {
	ID        uuid.UUID `json:"session_id"`
	Profile   Profile   `json:"profile"`
	CreatedAt time.Time `json:"created_at"`
	LastSeen  time.Time `json:"last_seen"`
}

// AnswerResult grades one submitted answer.
type AnswerResult struct {
	ExerciseID    string `json:"exerciseId"`
	Answer        string `json:"answer"`
	Correct       bool   `json:"correct"`
	CorrectAnswer string `json:"correctAnswer"`
}

// LessonResult is the outcome of SubmitAnswers. Completed is true only when
// every issued exercise was answered correctly.
type LessonResult struct {
	LessonID   string         `json:"lessonId"`
	Answers    []AnswerResult `json:"answers"`
	Unanswered []string       `json:"unanswered,omitempty"`
	Correct    int            `json:"correct"`
	Total      int            `json:"total"`
	Completed  bool           `json:"completed"`
}

type entry struct {
	session   Session
	history   []generation.ChatTurn
	completed map[string]bool
	exercises map[string][]generation.Exercise
}

// Option customises a Store.
type Option func(*Store)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithLogger sets the store's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// Store holds every live session. It is safe for concurrent use.
type Store struct {
	ttl      time.Duration
	maxTurns int
	now      func() time.Time
	logger   *slog.Logger

	mu       sync.RWMutex
	sessions map[uuid.UUID]*entry
}

// NewStore creates an empty store.
func NewStore(cfg Config, opts ...Option) *Store {
	s := &Store{
		ttl:      cfg.TTL,
		maxTurns: cfg.MaxChatTurns,
		now:      time.Now,
		logger:   slog.Default(),
		sessions: make(map[uuid.UUID]*entry),
	}
	if s.ttl <= 0 {
		s.ttl = DefaultTTL
	}
	if s.maxTurns <= 0 {
		s.maxTurns = DefaultMaxChatTurns
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create starts a session for a validated profile.
func (s *Store) Create(profile Profile) (Session, error) {
	profile = profile.normalize()
	if err := profile.Validate(); err != nil {
		return Session{}, err
	}

	now := s.now()
	e := &entry{
		session: Session{
			ID:        uuid.New(),
			Profile:   profile,
			CreatedAt: now,
			LastSeen:  now,
		},
		completed: make(map[string]bool),
		exercises: make(map[string][]generation.Exercise),
	}

	s.mu.Lock()
	s.sessions[e.session.ID] = e
	s.mu.Unlock()

	s.logger.Info("session created",
		"session_id", e.session.ID.String(),
		"target_language", profile.TargetLanguage,
		"level", profile.Level)

	return copySession(e.session), nil
}

// Get returns the session and marks it as seen.
func (s *Store) Get(id uuid.UUID) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.touchLocked(id)
	if err != nil {
		return Session{}, err
	}
	return copySession(e.session), nil
}

// UpdateProfile replaces the session's profile.
func (s *Store) UpdateProfile(id uuid.UUID, profile Profile) (Session, error) {
	profile = profile.normalize()
	if err := profile.Validate(); err != nil {
		return Session{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.touchLocked(id)
	if err != nil {
		return Session{}, err
	}
	e.session.Profile = profile
	return copySession(e.session), nil
}

// AppendTurn adds a chat turn. Its timestamp is never earlier than the
// previous turn's, and the history keeps only the newest MaxChatTurns turns.
func (s *Store) AppendTurn(id uuid.UUID, role generation.Role, content string) (generation.ChatTurn, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return generation.ChatTurn{}, fmt.Errorf("%w: content cannot be empty", ErrInvalidTurn)
	}
	if role != generation.RoleUser && role != generation.RoleAssistant {
		return generation.ChatTurn{}, fmt.Errorf("%w: unknown role %q", ErrInvalidTurn, role)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.touchLocked(id)
	if err != nil {
		return generation.ChatTurn{}, err
	}

	stamp := s.now()
	if n := len(e.history); n > 0 && stamp.Before(e.history[n-1].Timestamp) {
		stamp = e.history[n-1].Timestamp
	}

	turn := generation.ChatTurn{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: stamp,
	}
	e.history = append(e.history, turn)
	if over := len(e.history) - s.maxTurns; over > 0 {
		e.history = append(e.history[:0], e.history[over:]...)
	}

	return turn, nil
}

// History returns a copy of the chat history, oldest first.
func (s *Store) History(id uuid.UUID) ([]generation.ChatTurn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.touchLocked(id)
	if err != nil {
		return nil, err
	}
	return append([]generation.ChatTurn{}, e.history...), nil
}

// Lessons returns the catalog with the learner's progress.
func (s *Store) Lessons(id uuid.UUID) ([]LessonStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.touchLocked(id)
	if err != nil {
		return nil, err
	}

	statuses := make([]LessonStatus, 0, len(catalog))
	for i, l := range catalog {
		statuses = append(statuses, LessonStatus{
			Lesson:    l,
			Completed: e.completed[l.ID],
			Locked:    isLocked(e, i),
		})
	}
	return statuses, nil
}

// StartLesson returns the lesson if the learner may take it.
func (s *Store) StartLesson(id uuid.UUID, lessonID string) (Lesson, error) {
	lesson, index, err := LessonByID(lessonID)
	if err != nil {
		return Lesson{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.touchLocked(id)
	if err != nil {
		return Lesson{}, err
	}
	if isLocked(e, index) {
		return Lesson{}, fmt.Errorf("%w: complete lesson %s first", ErrLessonLocked, catalog[index-1].ID)
	}
	return lesson, nil
}

// IssueExercises records the exercises handed to the learner for a lesson,
// replacing any earlier set. Answers are graded against this set.
func (s *Store) IssueExercises(id uuid.UUID, lessonID string, exercises []generation.Exercise) error {
	if _, _, err := LessonByID(lessonID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.touchLocked(id)
	if err != nil {
		return err
	}
	e.exercises[lessonID] = append([]generation.Exercise(nil), exercises...)
	return nil
}

// SubmitAnswers grades answers (exercise ID to chosen option) against the
// issued exercises. The lesson is marked complete only when every exercise
// is answered correctly; otherwise the issued set is kept for another try.
func (s *Store) SubmitAnswers(id uuid.UUID, lessonID string, answers map[string]string) (*LessonResult, error) {
	_, index, err := LessonByID(lessonID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.touchLocked(id)
	if err != nil {
		return nil, err
	}
	if isLocked(e, index) {
		return nil, ErrLessonLocked
	}

	exercises := e.exercises[lessonID]
	if len(exercises) == 0 {
		return nil, ErrNoExercises
	}

	result := &LessonResult{LessonID: lessonID, Total: len(exercises)}
	for _, ex := range exercises {
		answer, ok := answers[ex.ID]
		if !ok || strings.TrimSpace(answer) == "" {
			result.Unanswered = append(result.Unanswered, ex.ID)
		}
		correct := ok && answer == ex.CorrectAnswer
		if correct {
			result.Correct++
		}
		result.Answers = append(result.Answers, AnswerResult{
			ExerciseID:    ex.ID,
			Answer:        answer,
			Correct:       correct,
			CorrectAnswer: ex.CorrectAnswer,
		})
	}

	if result.Correct == result.Total {
		result.Completed = true
		e.completed[lessonID] = true
		delete(e.exercises, lessonID)
	}

	return result, nil
}

// Sweep drops sessions not seen for at least the TTL and reports how many
// were removed.
func (s *Store) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, e := range s.sessions {
		if now.Sub(e.session.LastSeen) >= s.ttl {
			delete(s.sessions, id)
			removed++
		}
	}

	if removed > 0 {
		s.logger.Info("idle sessions evicted", "removed", removed, "remaining", len(s.sessions))
	}
	return removed
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *Store) touchLocked(id uuid.UUID) (*entry, error) {
	e, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if now := s.now(); now.After(e.session.LastSeen) {
		e.session.LastSeen = now
	}
	return e, nil
}

// isLocked reports whether the lesson at index is locked. Callers hold s.mu.
func isLocked(e *entry, index int) bool {
	return index > 0 && !e.completed[catalog[index-1].ID]
}

func copySession(s Session) Session {
	s.Profile.Interests = append([]string{}, s.Profile.Interests...)
	return s
}
