package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"

	"github.com/playcv/cartd/internal/domain"
)

type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(cred *Credentials) (*PostgresRepository, error) {
	psqlconn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cred.Host,
		cred.Port,
		cred.User,
		cred.Password,
		cred.DBName)

	db, err := sql.Open("postgres", psqlconn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if e2 := db.Ping(); e2 != nil {
		return nil, fmt.Errorf("failed to ping database: %w", e2)
	}

	db.SetMaxOpenConns(100)
	db.SetMaxIdleConns(10)
	return &PostgresRepository{db: db}, nil
}

func (r *PostgresRepository) RunMigrations(cred *Credentials) error {
	driver, err := postgres.WithInstance(r.db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", cred.MigrationsDirPath),
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if e2 := m.Up(); e2 != nil && !errors.Is(e2, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", e2)
	}

	return nil
}

func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

func (r *PostgresRepository) CreateAttempt(ctx context.Context, attempt *Attempt) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO payment_attempts (reference, user_id, status, total_amount, currency, snapshot, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now(), now())`,
		attempt.Reference,
		attempt.UserID,
		string(attempt.Status),
		attempt.TotalAmount,
		attempt.Currency,
		attempt.Snapshot,
	)
	if err != nil {
		return fmt.Errorf("failed to create payment attempt: %w", err)
	}
	return nil
}

func (r *PostgresRepository) UpdateAttemptStatus(ctx context.Context, reference string, status domain.AttemptStatus) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE payment_attempts SET status = $2, updated_at = now() WHERE reference = $1`,
		reference, string(status),
	)
	if err != nil {
		return fmt.Errorf("failed to update payment attempt: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return ErrAttemptNotFound
	}
	return nil
}

func (r *PostgresRepository) GetAttempt(ctx context.Context, reference string) (*Attempt, error) {
	var attempt Attempt
	var status string
	err := r.db.QueryRowContext(ctx, `
		SELECT reference, user_id, status, total_amount, currency, snapshot, created_at, updated_at
		FROM payment_attempts WHERE reference = $1`,
		reference,
	).Scan(
		&attempt.Reference,
		&attempt.UserID,
		&status,
		&attempt.TotalAmount,
		&attempt.Currency,
		&attempt.Snapshot,
		&attempt.CreatedAt,
		&attempt.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAttemptNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment attempt: %w", err)
	}
	attempt.Status = domain.AttemptStatus(status)
	return &attempt, nil
}

func (r *PostgresRepository) CompleteAttempt(ctx context.Context, reference string, payload []byte) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE payment_attempts SET status = $2, updated_at = now() WHERE reference = $1`,
		reference, string(domain.AttemptSucceeded),
	)
	if err != nil {
		return fmt.Errorf("failed to complete payment attempt: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return ErrAttemptNotFound
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO outbox_events (aggregate_id, event_type, payload, created_at)
		VALUES ($1, $2, $3, now())`,
		reference, "checkout-completed", payload,
	)
	if err != nil {
		return fmt.Errorf("failed to insert outbox event: %w", err)
	}

	return tx.Commit()
}

func (r *PostgresRepository) GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, aggregate_id, event_type, payload, created_at
		FROM outbox_events
		WHERE processed_at IS NULL
		ORDER BY id
		LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch outbox events: %w", err)
	}
	defer rows.Close()

	var events []*OutboxEvent
	for rows.Next() {
		var event OutboxEvent
		if err := rows.Scan(&event.ID, &event.AggregateID, &event.EventType, &event.Payload, &event.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan outbox event: %w", err)
		}
		events = append(events, &event)
	}
	return events, rows.Err()
}

func (r *PostgresRepository) MarkEventAsProcessed(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE outbox_events SET processed_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to mark outbox event as processed: %w", err)
	}
	return nil
}
