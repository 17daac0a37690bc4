package session

import "errors"

// Common errors returned by the session store
var (
	// ErrSessionNotFound is returned when no live session has the given ID.
	ErrSessionNotFound = errors.New("session not found")

	// ErrLessonNotFound is returned for an ID outside the lesson catalog.
	ErrLessonNotFound = errors.New("lesson not found")

	// ErrLessonLocked is returned when the previous lesson is not completed.
	ErrLessonLocked = errors.New("lesson is locked")

	// ErrInvalidProfile is returned when a profile fails validation.
	ErrInvalidProfile = errors.New("invalid learner profile")

	// ErrInvalidTurn is returned for a chat turn with an unknown role or no
	// content.
	ErrInvalidTurn = errors.New("invalid chat turn")

	// ErrNoExercises is returned when answers are submitted for a lesson that
	// has no exercises issued.
	ErrNoExercises = errors.New("no exercises issued for lesson")
)
