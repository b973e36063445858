// Package cart holds the client-side cart state, mirrored to durable local
// storage on every mutation and rehydrated at startup.
package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	pkgerrors "github.com/trendbasket/storefront/pkg/errors"
	"github.com/trendbasket/storefront/pkg/logger"
	"github.com/trendbasket/storefront/pkg/storage"
)

// LineItem is one entry in the cart, corresponding to one add event.
type LineItem struct {
	ID              string  `json:"_id"`
	ImageURL        string  `json:"imageUrl"`
	Name            string  `json:"name"`
	UnitPrice       float64 `json:"price"`
	DiscountPercent float64 `json:"discount"`
	Quantity        int     `json:"quantity"`
}

// Store owns the cart state. All mutations are synchronous and persist to
// local storage before returning; TotalCount always equals the number of
// line items (not summed quantities).
type Store struct {
	mu      sync.Mutex
	storage storage.Store
	logg    *logger.Logger

	items      []LineItem
	totalCount int
}

// NewStore rehydrates the cart from local storage. An absent or malformed
// snapshot degrades to an empty cart rather than failing startup.
func NewStore(store storage.Store, logg *logger.Logger) (*Store, error) {
	if store == nil {
		return nil, fmt.Errorf("storage is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}

	s := &Store{storage: store, logg: logg}

	raw, ok, err := store.Get(storage.KeyCartItems)
	if err != nil {
		logg.Error(context.Background(), "reading persisted cart, starting empty", err)
		return s, nil
	}
	if ok {
		var items []LineItem
		if err := json.Unmarshal([]byte(raw), &items); err != nil {
			logg.Warn(context.Background(), "persisted cart is malformed, starting empty")
		} else {
			s.items = items
		}
	}
	s.totalCount = len(s.items)
	return s, nil
}

// AddItem appends the item to the cart. Duplicate ids are not merged:
// repeated adds of the same product produce duplicate line items, matching
// the storefront's observed behavior.
func (s *Store) AddItem(item LineItem) error {
	if item.ID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "line item id is required")
	}
	if item.Quantity < 1 {
		item.Quantity = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = append(s.items, item)
	s.totalCount = len(s.items)
	return s.persistLocked()
}

// RemoveItem drops every line item with the given product id. Removing an
// id that is not present is a no-op.
func (s *Store) RemoveItem(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.items[:0]
	for _, item := range s.items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	s.items = kept
	s.totalCount = len(s.items)
	return s.persistLocked()
}

// Clear empties the cart, removes the persisted item snapshot and resets
// the persisted count to zero.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.totalCount = 0

	if err := s.storage.Remove(storage.KeyCartItems); err != nil {
		return err
	}
	return s.storage.Set(storage.KeyTotalItems, "0")
}

// Items returns a copy of the current line items in add order.
func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]LineItem, len(s.items))
	copy(out, s.items)
	return out
}

// TotalCount reports the number of line items in the cart.
func (s *Store) TotalCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalCount
}

func (s *Store) persistLocked() error {
	payload, err := json.Marshal(s.items)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode cart snapshot")
	}
	if err := s.storage.Set(storage.KeyCartItems, string(payload)); err != nil {
		return err
	}
	return s.storage.Set(storage.KeyTotalItems, strconv.Itoa(s.totalCount))
}
