package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"summit/internal/event/models"
	id "summit/pkg/domain"
	"summit/pkg/platform/sentinel"
	txcontext "summit/pkg/platform/tx"
)

var tracer = otel.Tracer("summit/internal/event/store/postgres")

func startTrace(ctx context.Context, name string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "postgres."+name)
}

const pgErrUniqueViolation = "23505"

// Store persists the event catalog in PostgreSQL.
//
// Error Contract: sentinel.ErrNotFound for missing rows,
// sentinel.ErrAlreadyUsed for year uniqueness violations.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

type dbConn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// conn returns the context transaction when one is present so store calls
// inside a tx.Runner block join it instead of opening their own.
func (s *Store) conn(ctx context.Context) dbConn {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

const eventColumns = `
	id, year, name, theme, venue, starts_at, ends_at, capacity, active,
	created_at, updated_at`

// Create inserts a catalog entry. The unique index on year enforces one
// edition per year under concurrency; a violation surfaces as
// sentinel.ErrAlreadyUsed.
func (s *Store) Create(ctx context.Context, e *models.Event) error {
	ctx, span := startTrace(ctx, "Create")
	defer span.End()

	query := `
		INSERT INTO events (` + eventColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := s.conn(ctx).ExecContext(ctx, query,
		uuid.UUID(e.ID),
		e.Year,
		e.Name,
		e.Theme,
		e.Venue,
		e.StartsAt,
		e.EndsAt,
		e.Capacity,
		e.Active,
		e.CreatedAt,
		e.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("event year %d already exists: %w", e.Year, sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (s *Store) FindByID(ctx context.Context, eventID id.EventID) (*models.Event, error) {
	ctx, span := startTrace(ctx, "FindByID")
	defer span.End()

	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	return scanEvent(s.conn(ctx).QueryRowContext(ctx, query, uuid.UUID(eventID)))
}

func (s *Store) FindByYear(ctx context.Context, year int) (*models.Event, error) {
	ctx, span := startTrace(ctx, "FindByYear")
	defer span.End()

	query := `SELECT ` + eventColumns + ` FROM events WHERE year = $1`
	return scanEvent(s.conn(ctx).QueryRowContext(ctx, query, year))
}

// List returns the catalog, newest year first.
func (s *Store) List(ctx context.Context) ([]*models.Event, error) {
	ctx, span := startTrace(ctx, "List")
	defer span.End()

	query := `SELECT ` + eventColumns + ` FROM events ORDER BY year DESC`
	rows, err := s.conn(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []*models.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

// Execute atomically validates and mutates a catalog entry. The row is
// locked with SELECT ... FOR UPDATE for the duration, so the precondition
// check and the write happen under the same lock. Joins a caller transaction
// when the context carries one, otherwise runs in its own.
func (s *Store) Execute(ctx context.Context, eventID id.EventID, validate func(*models.Event) error, mutate func(*models.Event)) (*models.Event, error) {
	ctx, span := startTrace(ctx, "Execute")
	defer span.End()

	if tx, ok := txcontext.From(ctx); ok {
		return s.executeLocked(ctx, tx, eventID, validate, mutate)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin execute tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	e, err := s.executeLocked(ctx, tx, eventID, validate, mutate)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit execute tx: %w", err)
	}
	return e, nil
}

func (s *Store) executeLocked(ctx context.Context, tx dbConn, eventID id.EventID, validate func(*models.Event) error, mutate func(*models.Event)) (*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1 FOR UPDATE`
	e, err := scanEvent(tx.QueryRowContext(ctx, query, uuid.UUID(eventID)))
	if err != nil {
		return nil, err
	}

	if err := validate(e); err != nil {
		return nil, err
	}
	mutate(e)

	update := `
		UPDATE events
		SET year = $2, name = $3, theme = $4, venue = $5, starts_at = $6,
		    ends_at = $7, capacity = $8, active = $9, updated_at = $10
		WHERE id = $1
	`
	_, err = tx.ExecContext(ctx, update,
		uuid.UUID(e.ID),
		e.Year,
		e.Name,
		e.Theme,
		e.Venue,
		e.StartsAt,
		e.EndsAt,
		e.Capacity,
		e.Active,
		e.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("event year %d already exists: %w", e.Year, sentinel.ErrAlreadyUsed)
		}
		return nil, fmt.Errorf("execute update event: %w", err)
	}
	return e, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*models.Event, error) {
	var (
		e       models.Event
		eventID uuid.UUID
	)
	err := row.Scan(
		&eventID,
		&e.Year,
		&e.Name,
		&e.Theme,
		&e.Venue,
		&e.StartsAt,
		&e.EndsAt,
		&e.Capacity,
		&e.Active,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("event not found: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scan event: %w", err)
	}
	e.ID = id.EventID(eventID)
	return &e, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation
}
