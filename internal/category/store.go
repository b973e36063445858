// Package category holds the single selected product-category filter,
// settable by UI controls or by the voice pipeline.
package category

import "sync"

// Store owns the selected category. The value is free text and transient:
// it is not validated against any category list and not persisted across
// restarts. An empty string means no filter.
type Store struct {
	mu          sync.Mutex
	selected    string
	subscribers []func(string)
}

func NewStore() *Store {
	return &Store{}
}

// SetCategory overwrites the selection unconditionally, including with the
// empty string, and notifies subscribers synchronously.
func (s *Store) SetCategory(value string) {
	s.mu.Lock()
	s.selected = value
	subs := make([]func(string), len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(value)
	}
}

// Selected returns the current category filter.
func (s *Store) Selected() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// Subscribe registers fn to run after every change. Used by views to
// re-derive their filtered product list.
func (s *Store) Subscribe(fn func(selected string)) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}
