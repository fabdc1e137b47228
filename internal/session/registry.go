package session

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/playcv/cartd/internal/checkout"
	"github.com/playcv/cartd/internal/domain"
	"github.com/playcv/cartd/internal/journal"
	"github.com/playcv/cartd/internal/provider"
	"github.com/playcv/cartd/internal/remote"
	"github.com/playcv/cartd/internal/store"
	"github.com/playcv/cartd/internal/syncer"
)

// Session owns one user's cart engine: the store is the single writer of
// the item sequence, the syncer and orchestrator only read it and issue
// commands through its operations.
type Session struct {
	User     domain.User
	Store    *store.Store
	Syncer   *syncer.Syncer
	Checkout *checkout.Orchestrator
	Cart     remote.CartClient
}

type Deps struct {
	Storage     store.Storage
	Cart        remote.CartClient
	Payments    remote.PaymentClient
	Provider    provider.Client
	Journal     journal.Repository
	Currency    string
	PaymentType string
	Log         *zap.Logger
}

type Registry struct {
	mu       sync.Mutex
	deps     Deps
	sessions map[string]*Session
}

func NewRegistry(deps Deps) *Registry {
	return &Registry{
		deps:     deps,
		sessions: make(map[string]*Session),
	}
}

// Attach returns the user's session, creating it on first touch. Creation
// hydrates the store from durable storage and reconciles against the remote
// cart once. A reconcile failure is returned for the caller to surface, but
// the session stays usable with its last-known-good local state.
func (r *Registry) Attach(ctx context.Context, user domain.User) (*Session, error) {
	r.mu.Lock()
	if sess, ok := r.sessions[user.ID]; ok {
		r.mu.Unlock()
		return sess, nil
	}

	log := r.deps.Log.With(zap.String("user_id", user.ID))
	st := store.NewStore(user.ID, r.deps.Storage, log)
	sync := syncer.NewSyncer(st, r.deps.Cart, log)
	orch := checkout.NewOrchestrator(
		st, sync,
		r.deps.Provider, r.deps.Payments, r.deps.Cart, r.deps.Journal,
		r.deps.Currency, r.deps.PaymentType,
		log,
	)
	sess := &Session{
		User:     user,
		Store:    st,
		Syncer:   sync,
		Checkout: orch,
		Cart:     r.deps.Cart,
	}
	r.sessions[user.ID] = sess
	r.mu.Unlock()

	if err := sync.OnAttach(ctx); err != nil {
		return sess, err
	}
	return sess, nil
}

// Detach destroys the session on logout: the local cart and its durable
// snapshot are cleared, the remote cart is left alone.
func (r *Registry) Detach(ctx context.Context, userID string) {
	r.mu.Lock()
	sess, ok := r.sessions[userID]
	delete(r.sessions, userID)
	r.mu.Unlock()

	if ok {
		sess.Store.Clear(ctx)
	}
}
