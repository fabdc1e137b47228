package store

import (
	"context"
	"errors"

	"github.com/playcv/cartd/internal/domain"
)

// Storage is the durable persistence port behind the cart store. It is a
// cache, not the authority: the remote cart resource is reconciled on top
// of whatever is here, so writes are best-effort.
type Storage interface {
	Get(ctx context.Context, sessionID string) (*domain.Cart, error)
	Set(ctx context.Context, sessionID string, cart *domain.Cart) error
	Delete(ctx context.Context, sessionID string) error
}

var ErrSnapshotNotFound = errors.New("cart snapshot not found")
