// Package history keeps the append-only log of completed try-on sessions.
package history

import (
	"iter"
	"sync"
	"time"
)

// Item is an immutable record of one completed try-on. The three images are
// independent copies, not references into the catalogs.
type Item struct {
	ID          string    `json:"id"`
	PersonImage string    `json:"personImage"`
	ClothImage  string    `json:"clothImage"`
	ResultImage string    `json:"resultImage"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Store is a prepend-only log, most recent first. Items are never mutated or
// removed; unbounded growth is accepted for the life of the session.
type Store struct {
	mu    sync.Mutex
	items []Item
}

func NewStore() *Store {
	return &Store{}
}

// Append puts the item at the front of the log. It never fails.
func (s *Store) Append(item Item) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]Item, 0, len(s.items)+1)
	items = append(items, item)
	items = append(items, s.items...)
	s.items = items
}

// All yields the items most recent first. The sequence is restartable and
// iterates over the snapshot taken when it was obtained.
func (s *Store) All() iter.Seq[Item] {
	s.mu.Lock()
	items := s.items
	s.mu.Unlock()

	return func(yield func(Item) bool) {
		for _, item := range items {
			if !yield(item) {
				return
			}
		}
	}
}

func (s *Store) Find(id string) (Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range s.items {
		if item.ID == id {
			return item, true
		}
	}
	return Item{}, false
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
