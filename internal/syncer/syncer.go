package syncer

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/playcv/cartd/internal/domain"
	"github.com/playcv/cartd/internal/remote"
	"github.com/playcv/cartd/internal/store"
)

// Syncer keeps the local cart store consistent with the remote cart
// resource. Fetch failures leave the store untouched: last-known-good local
// state beats wiping the cart, and the caller surfaces the error as a
// transient notification.
type Syncer struct {
	store  *store.Store
	client remote.CartClient
	sfg    singleflight.Group // collapses concurrent reconciles for one session
	log    *zap.Logger
}

func NewSyncer(st *store.Store, client remote.CartClient, log *zap.Logger) *Syncer {
	return &Syncer{
		store:  st,
		client: client,
		log:    log,
	}
}

// OnAttach is the session's explicit lifecycle entry: hydrate from durable
// storage, then pull the authoritative remote state once.
func (s *Syncer) OnAttach(ctx context.Context) error {
	s.store.Hydrate(ctx)
	return s.FetchAndReconcile(ctx)
}

// FetchAndReconcile reads the remote cart, de-duplicates records by product
// reference keeping the first occurrence, and replaces the store contents.
// Runs after any successful removal or checkout to pull the authoritative
// post-mutation state.
func (s *Syncer) FetchAndReconcile(ctx context.Context) error {
	_, err, _ := s.sfg.Do("reconcile", func() (interface{}, error) {
		records, err := s.client.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load cart: %w", err)
		}

		items := dedupeByProductRef(records)
		s.store.SetAll(ctx, items)
		s.log.Debug("cart reconciled",
			zap.Int("remote_records", len(records)),
			zap.Int("items", len(items)))
		return nil, nil
	})
	return err
}

// PruneSelection drops selected ids that no longer exist in the cart.
// Must run before any total computation.
func (s *Syncer) PruneSelection(sel *domain.Selection) {
	sel.Prune(s.store.Items())
}

func dedupeByProductRef(records []remote.CartRecord) []domain.LineItem {
	items := make([]domain.LineItem, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	for _, rec := range records {
		if _, dup := seen[rec.ProductRef]; dup {
			continue
		}
		seen[rec.ProductRef] = struct{}{}

		quantity := rec.Quantity
		if quantity < 1 {
			quantity = 1
		}
		items = append(items, domain.LineItem{
			ID:            rec.ID,
			ProductRef:    rec.ProductRef,
			Title:         rec.Title,
			ThumbnailURL:  rec.ThumbnailURL,
			UploaderLabel: rec.UploaderLabel,
			Description:   rec.Description,
			UnitPrice:     rec.UnitPrice,
			Quantity:      quantity,
		})
	}
	return items
}
