package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/playcv/cartd/internal/domain"
	"github.com/playcv/cartd/internal/journal"
	"github.com/playcv/cartd/internal/provider"
	"github.com/playcv/cartd/internal/remote"
	"github.com/playcv/cartd/internal/store"
	"github.com/playcv/cartd/internal/syncer"
)

// Orchestrator drives one session's purchase flow:
//
//	IDLE → SELECTING → AWAITING_PROVIDER → CONFIRMING → CLEANUP → IDLE
//
// with error exits back to IDLE. The purchased set is frozen into a
// snapshot before the provider handoff; cart mutations during the provider
// round-trip never change what gets charged or recorded.
type Orchestrator struct {
	// Serializes checkout invocations for the session; the cart store may
	// still be mutated by unrelated requests while a checkout is in flight.
	mu sync.Mutex

	store    *store.Store
	syncer   *syncer.Syncer
	provider provider.Client
	payments remote.PaymentClient
	cart     remote.CartClient
	journal  journal.Repository

	currency    string
	paymentType string
	log         *zap.Logger

	status    domain.CheckoutStatus
	attempt   *domain.PaymentAttempt
	user      domain.User
	selection *domain.Selection
}

func NewOrchestrator(
	st *store.Store,
	sync *syncer.Syncer,
	providerClient provider.Client,
	payments remote.PaymentClient,
	cart remote.CartClient,
	journalRepo journal.Repository,
	currency string,
	paymentType string,
	log *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		store:       st,
		syncer:      sync,
		provider:    providerClient,
		payments:    payments,
		cart:        cart,
		journal:     journalRepo,
		currency:    currency,
		paymentType: paymentType,
		log:         log,
		status:      domain.CheckoutStatusIdle,
	}
}

func (o *Orchestrator) Status() domain.CheckoutStatus {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status
}

func (o *Orchestrator) transitionTo(to domain.CheckoutStatus) error {
	if !domain.CanTransitionTo(o.status, to) {
		return fmt.Errorf("illegal checkout transition %s -> %s", o.status, to)
	}
	o.status = to
	return nil
}

// Begin guards the checkout, freezes the purchase snapshot, records the
// attempt, and hands off to the payment provider. On success the flow is
// parked in AWAITING_PROVIDER until HandleProviderResult is called.
//
// Guard rejections happen before any side effect: an unauthenticated user
// or an empty selection leaves every collaborator untouched.
func (o *Orchestrator) Begin(ctx context.Context, user domain.User, sel *domain.Selection) (*provider.Authorization, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.status != domain.CheckoutStatusIdle {
		return nil, ErrNotIdle
	}
	if !user.Authenticated() {
		return nil, ErrNotAuthenticated
	}
	if sel.Len() == 0 {
		return nil, ErrEmptySelection
	}

	// Phantom selections must not be counted: prune against the live cart
	// before computing anything.
	o.syncer.PruneSelection(sel)
	if sel.Len() == 0 {
		return nil, ErrEmptySelection
	}

	if err := o.transitionTo(domain.CheckoutStatusSelecting); err != nil {
		return nil, err
	}

	// Snapshot the selected items now. Everything downstream reads this
	// snapshot, never the live cart.
	snapshot := domain.SnapshotSelection(o.store.Items(), sel, o.currency)
	reference := uuid.NewString()

	snapshotJSON, err := json.Marshal(snapshot)
	if err != nil {
		o.reset()
		return nil, fmt.Errorf("failed to marshal purchase snapshot: %w", err)
	}

	errCreate := o.journal.CreateAttempt(ctx, &journal.Attempt{
		Reference:   reference,
		UserID:      user.ID,
		Status:      domain.AttemptPending,
		TotalAmount: snapshot.TotalAmount.StringFixed(2),
		Currency:    snapshot.Currency,
		Snapshot:    snapshotJSON,
	})
	if errCreate != nil {
		o.reset()
		return nil, fmt.Errorf("failed to record payment attempt: %w", errCreate)
	}

	if err := o.transitionTo(domain.CheckoutStatusAwaitingProvider); err != nil {
		o.reset()
		return nil, err
	}

	auth, errInit := o.provider.Initialize(ctx, provider.InitRequest{
		AmountMinor: provider.MinorUnits(snapshot.TotalAmount),
		Currency:    snapshot.Currency,
		Reference:   reference,
		Customer: provider.Customer{
			Email:     user.Email,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Phone:     user.Phone,
		},
	})
	if errInit != nil {
		o.markAttempt(ctx, reference, domain.AttemptFailed)
		o.reset()
		return nil, fmt.Errorf("payment provider handoff failed: %w", errInit)
	}

	o.attempt = &domain.PaymentAttempt{
		Reference: reference,
		Status:    domain.AttemptPending,
		Snapshot:  snapshot,
		CreatedAt: time.Now(),
	}
	o.user = user
	o.selection = sel

	o.log.Info("checkout awaiting provider",
		zap.String("reference", reference),
		zap.String("total", snapshot.TotalAmount.StringFixed(2)),
		zap.Int("items", len(snapshot.Items)))
	return auth, nil
}

// HandleProviderResult resumes the flow when the provider reports back.
// Failed and abandoned both land on IDLE without touching the cart; they
// differ only in the error the caller shows. A success runs confirmation
// and cleanup to a terminal outcome, there is no cancelling past this point.
func (o *Orchestrator) HandleProviderResult(ctx context.Context, result domain.ProviderResult) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.status != domain.CheckoutStatusAwaitingProvider || o.attempt == nil {
		return ErrNoAttempt
	}
	if result.Reference != "" && result.Reference != o.attempt.Reference {
		return ErrReferenceMismatch
	}

	attempt := o.attempt

	if result.Status != domain.ProviderSuccess {
		status := domain.AttemptFailed
		err := ErrPaymentFailed
		if result.Status == domain.ProviderAbandoned {
			status = domain.AttemptAbandoned
			err = ErrPaymentAbandoned
		}
		o.markAttempt(ctx, attempt.Reference, status)
		o.reset()
		return err
	}

	if errT := o.transitionTo(domain.CheckoutStatusConfirming); errT != nil {
		return errT
	}

	confirmation := o.buildConfirmation(attempt, result)
	if errConfirm := o.payments.Confirm(ctx, confirmation); errConfirm != nil {
		// Money likely moved; the cart stays untouched and the attempt is
		// kept as UNRECORDED for support follow-up.
		o.log.Error("payment confirmed by provider but not recorded",
			zap.String("reference", attempt.Reference),
			zap.Error(errConfirm))
		o.markAttempt(ctx, attempt.Reference, domain.AttemptUnrecorded)
		o.reset()
		return fmt.Errorf("%w: %s", ErrPaidNotRecorded, attempt.Reference)
	}

	if errT := o.transitionTo(domain.CheckoutStatusCleanup); errT != nil {
		return errT
	}
	o.cleanup(ctx, attempt)
	o.reset()

	o.log.Info("checkout completed", zap.String("reference", attempt.Reference))
	return nil
}

// VerifyAndHandle resolves the in-flight attempt by asking the provider for
// the authoritative outcome instead of trusting a client-posted status. A
// verify failure leaves the flow in AWAITING_PROVIDER so the callback can be
// retried.
func (o *Orchestrator) VerifyAndHandle(ctx context.Context, reference string) error {
	result, err := o.provider.Verify(ctx, reference)
	if err != nil {
		return fmt.Errorf("provider verify failed: %w", err)
	}
	return o.HandleProviderResult(ctx, *result)
}

// buildConfirmation maps the frozen snapshot into the payment resource
// payload. Derived strictly from the snapshot captured at handoff, not from
// the possibly-changed live cart.
func (o *Orchestrator) buildConfirmation(attempt *domain.PaymentAttempt, result domain.ProviderResult) *remote.ConfirmationRequest {
	items := make([]remote.ConfirmationItem, 0, len(attempt.Snapshot.Items))
	for _, item := range attempt.Snapshot.Items {
		items = append(items, remote.ConfirmationItem{
			LineItemID: item.LineItemID,
			ProductRef: item.ProductRef,
			Title:      item.Title,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			Subtotal:   item.Subtotal,
		})
	}
	return &remote.ConfirmationRequest{
		UserID:      o.user.ID,
		Currency:    attempt.Snapshot.Currency,
		Total:       attempt.Snapshot.TotalAmount,
		Reference:   attempt.Reference,
		StatusCode:  result.Status.Code(),
		PaymentType: o.paymentType,
		Items:       items,
	}
}

// cleanup removes the purchased items from the remote cart, re-fetches the
// authoritative state, clears the selection, and completes the journal
// attempt with its outbox event. Individual removal failures are swallowed
// with a warning: the purchase already succeeded, and the next reconcile
// resolves the leftover.
func (o *Orchestrator) cleanup(ctx context.Context, attempt *domain.PaymentAttempt) {
	for _, item := range attempt.Snapshot.Items {
		if err := o.cart.Remove(ctx, item.LineItemID); err != nil {
			o.log.Warn("failed to remove purchased item from remote cart",
				zap.String("line_item_id", item.LineItemID),
				zap.Error(err))
		}
	}

	if err := o.syncer.FetchAndReconcile(ctx); err != nil {
		o.log.Warn("post-checkout reconcile failed", zap.Error(err))
	}

	if o.selection != nil {
		o.selection.Clear()
	}

	payload, err := json.Marshal(map[string]interface{}{
		"reference":    attempt.Reference,
		"user_id":      o.user.ID,
		"items":        attempt.Snapshot.Items,
		"total_amount": attempt.Snapshot.TotalAmount,
		"currency":     attempt.Snapshot.Currency,
		"completed_at": time.Now(),
	})
	if err != nil {
		o.log.Error("failed to marshal checkout payload", zap.Error(err))
		return
	}
	if err := o.journal.CompleteAttempt(ctx, attempt.Reference, payload); err != nil {
		o.log.Error("failed to complete journal attempt",
			zap.String("reference", attempt.Reference),
			zap.Error(err))
	}
}

// markAttempt is best-effort: a journal update failure must not mask the
// outcome being reported to the user.
func (o *Orchestrator) markAttempt(ctx context.Context, reference string, status domain.AttemptStatus) {
	if err := o.journal.UpdateAttemptStatus(ctx, reference, status); err != nil {
		o.log.Warn("failed to update journal attempt",
			zap.String("reference", reference),
			zap.String("status", string(status)),
			zap.Error(err))
	}
}

func (o *Orchestrator) reset() {
	o.status = domain.CheckoutStatusIdle
	o.attempt = nil
	o.selection = nil
}
