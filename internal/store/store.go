package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/playcv/cartd/internal/domain"
)

var ErrEmptyProductRef = errors.New("line item has no product reference")

// Store is the single source of truth for one session's cart. All mutation
// goes through its operations; the synchronizer and the checkout
// orchestrator read items and issue commands, they never touch the slice.
//
// Durable storage is a cache of the in-memory state. A storage failure is
// logged and swallowed; the in-memory mutation always succeeds.
type Store struct {
	mu        sync.Mutex
	sessionID string
	items     []domain.LineItem
	storage   Storage
	log       *zap.Logger
}

func NewStore(sessionID string, storage Storage, log *zap.Logger) *Store {
	return &Store{
		sessionID: sessionID,
		storage:   storage,
		log:       log,
	}
}

// Hydrate loads the persisted snapshot, if any. Called once when the
// session attaches; a missing snapshot just means an empty cart.
func (s *Store) Hydrate(ctx context.Context) {
	cart, err := s.storage.Get(ctx, s.sessionID)
	if err != nil {
		if !errors.Is(err, ErrSnapshotNotFound) {
			s.log.Warn("cart hydrate failed", zap.Error(err))
		}
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = cart.Items
}

// Items returns a copy of the current line items in insertion order.
func (s *Store) Items() []domain.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.LineItem(nil), s.items...)
}

// AddItem appends a line item. An empty product reference is the only thing
// rejected; a missing id gets a transient one until the next sync assigns
// the server's.
func (s *Store) AddItem(ctx context.Context, item domain.LineItem) error {
	if item.ProductRef == "" {
		return ErrEmptyProductRef
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	item.AddedAt = time.Now()

	s.mu.Lock()
	s.items = append(s.items, item)
	s.mu.Unlock()

	s.persist(ctx)
	return nil
}

// RemoveItem drops the item with the given id. Removing an id that is not
// present is a no-op, not an error.
func (s *Store) RemoveItem(ctx context.Context, id string) {
	s.mu.Lock()
	kept := s.items[:0]
	for _, item := range s.items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	s.items = kept
	s.mu.Unlock()

	s.persist(ctx)
}

// SetAll replaces the whole sequence. Used by the synchronizer after a
// remote fetch.
func (s *Store) SetAll(ctx context.Context, items []domain.LineItem) {
	s.mu.Lock()
	s.items = append([]domain.LineItem(nil), items...)
	s.mu.Unlock()

	s.persist(ctx)
}

// Clear empties the cart and removes the storage entry entirely, rather
// than persisting an empty snapshot, so no stale key is left behind.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.items = nil
	s.mu.Unlock()

	if err := s.storage.Delete(ctx, s.sessionID); err != nil {
		s.log.Warn("cart storage delete failed", zap.Error(err))
	}
}

func (s *Store) persist(ctx context.Context) {
	cart := &domain.Cart{
		Items:     s.Items(),
		UpdatedAt: time.Now(),
	}
	if err := s.storage.Set(ctx, s.sessionID, cart); err != nil {
		s.log.Warn("cart storage write failed", zap.Error(err))
	}
}
