// Package permissions implements the shared, live-view capability grant
// store consulted by permission-gated tool wrappers.
package permissions

import (
	"strings"
	"sync"
	"time"
)

// Kind is a system capability Fae can request access to.
type Kind string

const (
	Microphone        Kind = "microphone"
	Contacts          Kind = "contacts"
	Calendar          Kind = "calendar"
	Reminders         Kind = "reminders"
	Mail              Kind = "mail"
	Files             Kind = "files"
	Notifications     Kind = "notifications"
	Location          Kind = "location"
	Camera            Kind = "camera"
	DesktopAutomation Kind = "desktop_automation"
)

// All returns every permission kind, in the canonical declaration order.
func All() []Kind {
	return []Kind{Microphone, Contacts, Calendar, Reminders, Mail, Files, Notifications, Location, Camera, DesktopAutomation}
}

// ParseKind parses a permission kind name, accepting both the canonical
// snake_case form and the collapsed form for multi-word kinds.
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(s) {
	case "microphone":
		return Microphone, true
	case "contacts":
		return Contacts, true
	case "calendar":
		return Calendar, true
	case "reminders":
		return Reminders, true
	case "mail":
		return Mail, true
	case "files":
		return Files, true
	case "notifications":
		return Notifications, true
	case "location":
		return Location, true
	case "camera":
		return Camera, true
	case "desktop_automation", "desktopautomation":
		return DesktopAutomation, true
	default:
		return "", false
	}
}

// Grant records whether a permission was granted, and when.
type Grant struct {
	Kind      Kind
	Granted   bool
	GrantedAt time.Time
}

// ChangeEvent is delivered to subscribers on every grant/deny.
type ChangeEvent struct {
	Kind    Kind
	Granted bool
}

// Store is a thread-safe, multi-owner grant registry. Every holder of the
// same *Store observes the same state: a grant made through one handle is
// immediately visible through every other handle: two goroutines holding
// the same *Store never see different grant states.
type Store struct {
	mu      sync.RWMutex
	grants  map[Kind]Grant
	subs    map[chan ChangeEvent]struct{}
	nowFunc func() time.Time
}

// New creates an empty permission store.
func New() *Store {
	return &Store{
		grants:  make(map[Kind]Grant),
		subs:    make(map[chan ChangeEvent]struct{}),
		nowFunc: time.Now,
	}
}

// IsGranted reports whether kind is currently granted. A kind with no record
// is treated as not granted.
func (s *Store) IsGranted(kind Kind) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.grants[kind]
	return ok && g.Granted
}

// Grant upserts a granted=true record for kind, stamps GrantedAt, and
// notifies subscribers.
func (s *Store) Grant(kind Kind) {
	s.mu.Lock()
	s.grants[kind] = Grant{Kind: kind, Granted: true, GrantedAt: s.nowFunc()}
	s.mu.Unlock()
	s.notify(ChangeEvent{Kind: kind, Granted: true})
}

// Deny sets granted=false for kind. This revokes an existing grant rather
// than merely refusing a pending request.
func (s *Store) Deny(kind Kind) {
	s.mu.Lock()
	s.grants[kind] = Grant{Kind: kind, Granted: false, GrantedAt: s.nowFunc()}
	s.mu.Unlock()
	s.notify(ChangeEvent{Kind: kind, Granted: false})
}

// Snapshot returns a copy of every recorded grant.
func (s *Store) Snapshot() []Grant {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Grant, 0, len(s.grants))
	for _, g := range s.grants {
		out = append(out, g)
	}
	return out
}

// Subscribe registers a channel to receive change events. The returned
// cancel function unregisters and closes the channel. The channel buffers 16
// events; notify never blocks, so events sent while the buffer is full are
// dropped for that subscriber.
func (s *Store) Subscribe() (<-chan ChangeEvent, func()) {
	ch := make(chan ChangeEvent, 16)
	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subs[ch]; ok {
			delete(s.subs, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Store) notify(ev ChangeEvent) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for ch := range s.subs {
		select {
		case ch <- ev:
		default:
			// Slow subscriber: drop, matching the event bus's lossy semantics.
		}
	}
}
