package sessions

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// idSafe matches the filename-safe character set a session id may use,
// mirroring the donor's channel-key sanitization in internal/pairing.
var idSafe = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// FsStore is a filesystem-backed Store. Sessions live at
// {dataDir}/{id}.json as pretty-printed JSON, written atomically via a
// temp-file-then-rename sequence. It supplements the donor's atomic-write
// pattern (temp file + rename, no fsync) with an explicit fsync before the
// rename, matching the original's stronger crash-safety
// guarantee.
type FsStore struct {
	mu      sync.Mutex
	dataDir string
}

// NewFsStore creates (if needed) dataDir and returns a store rooted there.
func NewFsStore(dataDir string) (*FsStore, error) {
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("sessions: failed to create data directory %s: %w", dataDir, err)
	}
	return &FsStore{dataDir: dataDir}, nil
}

func (s *FsStore) sessionPath(id string) string {
	return filepath.Join(s.dataDir, id+".json")
}

func (s *FsStore) tmpPath(id string) string {
	return filepath.Join(s.dataDir, "."+id+".tmp")
}

// generateSessionID builds sess_<unix_millis>_<six digit suffix>. Go has no
// public goroutine-id API (unlike the original's thread-id mixing), so
// the suffix instead comes from the first four bytes of a drawn UUIDv4
// (modulo 1,000,000) next to the wall-clock milliseconds, which preserves the "unique within a process" invariant without
// reaching into runtime internals.
func generateSessionID() string {
	millis := time.Now().UnixMilli()
	u := uuid.New()
	suffix := (uint32(u[0])<<24 | uint32(u[1])<<16 | uint32(u[2])<<8 | uint32(u[3])) % 1_000_000
	return fmt.Sprintf("sess_%d_%06d", millis, suffix)
}

func (s *FsStore) writeAtomic(sess *Session) error {
	if !idSafe.MatchString(sess.Meta.ID) {
		return fmt.Errorf("sessions: unsafe session id %q", sess.Meta.ID)
	}
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("sessions: failed to serialize session: %w", err)
	}

	tmp := s.tmpPath(sess.Meta.ID)
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("sessions: failed to write temp file %s: %w", tmp, err)
	}

	f, err := os.Open(tmp)
	if err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("sessions: failed to open temp file %s for fsync: %w", tmp, err)
	}
	syncErr := f.Sync()
	closeErr := f.Close()
	if syncErr != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("sessions: failed to fsync temp file %s: %w", tmp, syncErr)
	}
	if closeErr != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("sessions: failed to close temp file %s after fsync: %w", tmp, closeErr)
	}

	if err := os.Rename(tmp, s.sessionPath(sess.Meta.ID)); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("sessions: failed to rename temp file to %s: %w", s.sessionPath(sess.Meta.ID), err)
	}
	return nil
}

// Create writes a brand-new session and returns its id.
func (s *FsStore) Create(systemPrompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := generateSessionID()
	sess := New(id, systemPrompt, time.Now())
	if err := s.writeAtomic(sess); err != nil {
		return "", err
	}
	return id, nil
}

// Load reads and parses a session by id.
func (s *FsStore) Load(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.sessionPath(id)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &NotFoundError{ID: id}
		}
		return nil, fmt.Errorf("sessions: failed to read session file %s: %w", path, err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, &CorruptedError{ID: id, Reason: err.Error()}
	}
	return &sess, nil
}

// Save atomically persists sess, refreshing UpdatedAt.
func (s *FsStore) Save(sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess.Touch(time.Now())
	return s.writeAtomic(sess)
}

// Delete removes a session file; deleting a missing session is not an
// error.
func (s *FsStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	path := s.sessionPath(id)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("sessions: failed to delete session file %s: %w", path, err)
	}
	return nil
}

// Exists reports whether a session file is present.
func (s *FsStore) Exists(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := os.Stat(s.sessionPath(id))
	return err == nil
}

// List returns every session's metadata, skipping dotfiles (in-progress
// temp writes) and non-.json entries.
func (s *FsStore) List() ([]Meta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dataDir)
	if err != nil {
		return nil, fmt.Errorf("sessions: failed to read session directory %s: %w", s.dataDir, err)
	}

	var metas []Meta
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dataDir, name))
		if err != nil {
			continue
		}
		var sess Session
		if err := json.Unmarshal(data, &sess); err != nil {
			continue
		}
		metas = append(metas, sess.Meta)
	}
	sort.Slice(metas, func(i, j int) bool { return metas[i].CreatedAt.Before(metas[j].CreatedAt) })
	return metas, nil
}

var _ Store = (*FsStore)(nil)
