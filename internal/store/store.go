// Package store holds schedules in memory with a time-to-live and tracks a
// version counter plus the name of the tool that last changed each entry.
//
// A Store is constructed explicitly and passed to whoever needs it. Every
// operation, including read-modify-write through Modify, runs under one
// mutex. Expired entries are evicted lazily on access.
package store

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/coursecheck/internal/schema"
)

// DefaultTTL applies when Put is called with a zero ttl.
const DefaultTTL = 30 * time.Minute

// Sentinel errors.
var (
	ErrNotFound    = errors.New("store: schedule not found")
	ErrNegativeTTL = errors.New("store: negative ttl")
)

// LastUpdate is the version and updating tool of an entry.
type LastUpdate struct {
	Version int    `json:"version"`
	Tool    string `json:"tool"`
}

type entry struct {
	plan      schema.SchedulePlan
	version   int
	tool      string
	expiresAt time.Time
}

// Store is an in-memory TTL map of schedules keyed by id.
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry
	now     func() time.Time
	logger  *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger. The default discards output.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates an empty Store.
func New(opts ...Option) *Store {
	s := &Store{
		entries: make(map[string]*entry),
		now:     time.Now,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Put stores plan under id with version 1, replacing any existing entry.
// A zero ttl means DefaultTTL.
func (s *Store) Put(id string, plan schema.SchedulePlan, ttl time.Duration) error {
	if ttl < 0 {
		return fmt.Errorf("store: put %q: %w", id, ErrNegativeTTL)
	}
	if ttl == 0 {
		ttl = DefaultTTL
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = &entry{
		plan:      plan.Clone(),
		version:   1,
		expiresAt: s.now().Add(ttl),
	}
	s.logger.Debug("schedule stored", "id", id, "ttl", ttl)
	return nil
}

// Create stores plan under a new random id and returns the id.
func (s *Store) Create(plan schema.SchedulePlan, ttl time.Duration) (string, error) {
	id := uuid.NewString()
	if err := s.Put(id, plan, ttl); err != nil {
		return "", err
	}
	return id, nil
}

// lookup returns the live entry for id, evicting it if it has expired.
// The caller holds s.mu.
func (s *Store) lookup(id string) (*entry, bool) {
	e, ok := s.entries[id]
	if !ok {
		return nil, false
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.entries, id)
		s.logger.Debug("schedule expired", "id", id)
		return nil, false
	}
	return e, true
}

// Get returns a copy of the schedule stored under id.
func (s *Store) Get(id string) (schema.SchedulePlan, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.lookup(id)
	if !ok {
		return schema.SchedulePlan{}, false
	}
	return e.plan.Clone(), true
}

// Update replaces the schedule under id, increments its version and
// records updatedBy. The expiry is unchanged. It returns false when id is
// unknown or expired.
func (s *Store) Update(id string, plan schema.SchedulePlan, updatedBy string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.lookup(id)
	if !ok {
		return false
	}
	e.plan = plan.Clone()
	e.version++
	e.tool = updatedBy
	s.logger.Debug("schedule updated", "id", id, "version", e.version, "tool", updatedBy)
	return true
}

// LastUpdate returns the version and last tool of the entry under id.
func (s *Store) LastUpdate(id string) (LastUpdate, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.lookup(id)
	if !ok {
		return LastUpdate{}, false
	}
	return LastUpdate{Version: e.version, Tool: e.tool}, true
}

// Modify applies fn to a copy of the schedule under id and stores the
// result as a new version, all under the store lock. If fn returns an error
// the stored schedule is left unchanged and the error is returned.
func (s *Store) Modify(id, tool string, fn func(schema.SchedulePlan) (schema.SchedulePlan, error)) (schema.SchedulePlan, LastUpdate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.lookup(id)
	if !ok {
		return schema.SchedulePlan{}, LastUpdate{}, fmt.Errorf("store: modify %q: %w", id, ErrNotFound)
	}
	next, err := fn(e.plan.Clone())
	if err != nil {
		return schema.SchedulePlan{}, LastUpdate{Version: e.version, Tool: e.tool}, err
	}
	e.plan = next.Clone()
	e.version++
	e.tool = tool
	s.logger.Debug("schedule modified", "id", id, "version", e.version, "tool", tool)
	return next, LastUpdate{Version: e.version, Tool: tool}, nil
}

// Len returns the number of live entries, evicting expired ones.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.entries {
		s.lookup(id)
	}
	return len(s.entries)
}

// Close drops every entry.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.entries)
	s.entries = make(map[string]*entry)
	s.logger.Info("schedule store closed", "dropped", n)
}
