package sessions

import "errors"

// Store is the session persistence interface the agent loop depends on.
type Store interface {
	Create(systemPrompt string) (string, error)
	Load(id string) (*Session, error)
	Save(s *Session) error
	Delete(id string) error
	List() ([]Meta, error)
	Exists(id string) bool
}

// ErrNotFound wraps a missing-session lookup; Is(err, ErrNotFound) matches.
var ErrNotFound = errors.New("sessions: session not found")

// NotFoundError carries the id of a session that does not exist, per
// a NotFound error that carries the id so a caller can report exactly
// which session failed to load.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string { return "sessions: session not found: " + e.ID }
func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// CorruptedError carries the id and reason a session file failed to parse.
type CorruptedError struct {
	ID     string
	Reason string
}

func (e *CorruptedError) Error() string {
	return "sessions: corrupted session " + e.ID + ": " + e.Reason
}

// SchemaMismatchError is returned when a loaded session's schema version is
// newer than this build understands.
type SchemaMismatchError struct {
	ID              string
	SchemaVersion   int
	CurrentVersion  int
}

func (e *SchemaMismatchError) Error() string {
	return "sessions: schema mismatch"
}
