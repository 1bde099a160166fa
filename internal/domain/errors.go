package domain

import "errors"

var (
	// ErrPoolNotFound is returned when a named content pool does not exist.
	ErrPoolNotFound = errors.New("content pool not found")
	// ErrPoolDecode is returned when a content pool does not match the expected shape.
	ErrPoolDecode = errors.New("content pool decode failed")
	// ErrEmptyPool is returned when a session is started from an empty pool.
	ErrEmptyPool = errors.New("content pool is empty")
	// ErrSessionNotFound is returned when a child has no active session.
	ErrSessionNotFound = errors.New("session not found")
	// ErrNoActiveQuiz is returned when a quiz operation arrives before a quiz started.
	ErrNoActiveQuiz = errors.New("no active quiz")
	// ErrUnknownTheme indicates a theme identifier that is not part of the app.
	ErrUnknownTheme = errors.New("unknown theme")
)
