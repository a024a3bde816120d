// Package history keeps the rolling record of finished generations: a capped,
// most-recent-first list persisted through a pluggable repository.
package history

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"scenestudio/internal/imagedata"
)

// Cap bounds how many entries the store retains. Older entries are evicted
// from the tail as new ones arrive at the head.
const Cap = 20

const (
	KindGenerate = "gen"
	KindEdit     = "edit"
)

// Entry is one finished generation or edit.
type Entry struct {
	ID        string           `json:"id"`
	Image     imagedata.Record `json:"image"`
	Prompt    string           `json:"prompt"`
	Kind      string           `json:"kind"`
	CreatedAt time.Time        `json:"createdAt"`
}

// Repository persists history snapshots. Implementations must tolerate being
// handed the full entry list on every save.
type Repository interface {
	Load(ctx context.Context) ([]Entry, error)
	Save(ctx context.Context, entries []Entry) error
}

// Store is the in-memory history with write-through persistence. Persistence
// failures are logged and never block the session.
type Store struct {
	mu      sync.Mutex
	entries []Entry
	repo    Repository
	logger  zerolog.Logger
	now     func() time.Time
}

// NewStore loads whatever the repository holds, discards unreadable data, and
// truncates to the cap.
func NewStore(ctx context.Context, repo Repository, logger zerolog.Logger) *Store {
	s := &Store{repo: repo, logger: logger, now: time.Now}
	entries, err := repo.Load(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("history load failed, starting empty")
		return s
	}
	if len(entries) > Cap {
		entries = entries[:Cap]
	}
	s.entries = entries
	return s
}

// Add records a finished result at the head of the history and returns the
// stored entry.
func (s *Store) Add(ctx context.Context, image imagedata.Record, prompt, kind string) Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	entry := Entry{
		ID:        fmt.Sprintf("%s-%d", kind, now.UnixNano()),
		Image:     image,
		Prompt:    prompt,
		Kind:      kind,
		CreatedAt: now,
	}
	s.entries = append([]Entry{entry}, s.entries...)
	if len(s.entries) > Cap {
		s.entries = s.entries[:Cap]
	}
	s.persist(ctx)
	return entry
}

// Remove deletes the entry with the given id. Unknown ids leave the history
// untouched and skip persistence.
func (s *Store) Remove(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, e := range s.entries {
		if e.ID == id {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			s.persist(ctx)
			return
		}
	}
}

// Clear drops every entry.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = nil
	s.persist(ctx)
}

// Get returns the entry with the given id.
func (s *Store) Get(id string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.entries {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

// Entries returns a copy of the history, most recent first.
func (s *Store) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len reports the current entry count.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// persist writes the current snapshot. Callers hold s.mu.
func (s *Store) persist(ctx context.Context) {
	if err := s.repo.Save(ctx, s.entries); err != nil {
		s.logger.Warn().Err(err).Msg("history save failed")
	}
}
