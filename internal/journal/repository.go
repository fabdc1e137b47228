package journal

import (
	"context"
	"errors"
	"time"

	"github.com/playcv/cartd/internal/domain"
)

var (
	ErrAttemptNotFound = errors.New("payment attempt not found")
)

// Attempt is the durable record of one provider handoff. It is what support
// reaches for when a payment succeeded but the confirmation did not land.
type Attempt struct {
	Reference   string
	UserID      string
	Status      domain.AttemptStatus
	TotalAmount string
	Currency    string
	Snapshot    []byte // PurchaseSnapshot JSON, frozen at handoff
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type OutboxEvent struct {
	ID          int64
	AggregateID string // attempt reference, for ordering
	EventType   string
	Payload     []byte
	CreatedAt   time.Time
}

// Repository persists payment attempts and their outbox events.
// Consumers define this interface, not the Postgres implementation.
type Repository interface {
	CreateAttempt(ctx context.Context, attempt *Attempt) error
	UpdateAttemptStatus(ctx context.Context, reference string, status domain.AttemptStatus) error
	GetAttempt(ctx context.Context, reference string) (*Attempt, error)
	// CompleteAttempt marks the attempt succeeded and inserts the outbox
	// event in the same transaction.
	CompleteAttempt(ctx context.Context, reference string, payload []byte) error
	GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkEventAsProcessed(ctx context.Context, id int64) error
	Close() error
	RunMigrations(cred *Credentials) error
}
