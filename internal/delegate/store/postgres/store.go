package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"summit/internal/delegate/models"
	id "summit/pkg/domain"
	"summit/pkg/platform/sentinel"
	txcontext "summit/pkg/platform/tx"
)

var tracer = otel.Tracer("summit/internal/delegate/store/postgres")

func startTrace(ctx context.Context, name string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "postgres."+name)
}

const pgErrUniqueViolation = "23505"

// Store persists delegates in PostgreSQL.
//
// Error Contract: sentinel.ErrNotFound for missing rows,
// sentinel.ErrAlreadyUsed for (email, event year) uniqueness violations,
// sentinel.ErrVersionConflict when an optimistic update loses a race.
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

const delegateColumns = `
	id, event_id, event_year, title, first_name, last_name, email, phone,
	nationality, delegate_type, attendance_mode, identification, status,
	approved_by, approved_at, rejected_by, rejected_at, rejection_reason,
	checked_in_by, checked_in_at, check_in_location,
	password_hash, reset_pin, reset_pin_expires_at,
	address, emergency_contact, accommodation, visa_status, flight_details,
	social_links, consent_photo, consent_data_processing, profile_picture_url,
	push_tokens, version, created_at, updated_at`

// Create inserts a delegate. The partial unique index on
// (lower(email), event_year) enforces uniqueness under concurrency; a
// violation surfaces as sentinel.ErrAlreadyUsed.
func (s *Store) Create(ctx context.Context, d *models.Delegate) error {
	ctx, span := startTrace(ctx, "Create")
	defer span.End()

	docs, err := encodeJSONCols(d)
	if err != nil {
		return err
	}
	if d.Version == 0 {
		d.Version = 1
	}

	query := `
		INSERT INTO delegates (` + delegateColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		        $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26,
		        $27, $28, $29, $30, $31, $32, $33, $34, $35, $36, $37)
	`
	_, err = s.conn(ctx).ExecContext(ctx, query,
		uuid.UUID(d.ID),
		uuid.UUID(d.EventID),
		d.EventYear,
		d.Title,
		d.FirstName,
		d.LastName,
		models.NormalizeEmail(d.Email),
		d.Phone,
		d.Nationality,
		string(d.Type),
		string(d.AttendanceMode),
		docs.identification,
		string(d.Status),
		d.ApprovedBy,
		d.ApprovedAt,
		d.RejectedBy,
		d.RejectedAt,
		d.RejectionReason,
		d.CheckedInBy,
		d.CheckedInAt,
		d.CheckInLocation,
		d.PasswordHash,
		d.ResetPIN,
		d.ResetPINExpiresAt,
		d.Address,
		docs.emergencyContact,
		docs.accommodation,
		string(d.VisaStatus),
		docs.flightDetails,
		docs.socialLinks,
		d.ConsentPhoto,
		d.ConsentData,
		d.ProfilePictureURL,
		docs.pushTokens,
		d.Version,
		d.CreatedAt,
		d.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("email already registered for event year %d: %w", d.EventYear, sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("insert delegate: %w", err)
	}
	return nil
}

func (s *Store) FindByID(ctx context.Context, delegateID id.DelegateID) (*models.Delegate, error) {
	ctx, span := startTrace(ctx, "FindByID")
	defer span.End()

	query := `SELECT ` + delegateColumns + ` FROM delegates WHERE id = $1`
	return scanDelegate(s.conn(ctx).QueryRowContext(ctx, query, uuid.UUID(delegateID)))
}

// FindByEmail returns the delegate's most recent registration. The same
// email may register across event years; the latest year wins.
func (s *Store) FindByEmail(ctx context.Context, email string) (*models.Delegate, error) {
	ctx, span := startTrace(ctx, "FindByEmail")
	defer span.End()

	query := `
		SELECT ` + delegateColumns + `
		FROM delegates
		WHERE email = $1
		ORDER BY event_year DESC
		LIMIT 1
	`
	return scanDelegate(s.conn(ctx).QueryRowContext(ctx, query, models.NormalizeEmail(email)))
}

func (s *Store) FindByEmailAndYear(ctx context.Context, email string, eventYear int) (*models.Delegate, error) {
	ctx, span := startTrace(ctx, "FindByEmailAndYear")
	defer span.End()

	query := `SELECT ` + delegateColumns + ` FROM delegates WHERE email = $1 AND event_year = $2`
	return scanDelegate(s.conn(ctx).QueryRowContext(ctx, query, models.NormalizeEmail(email), eventYear))
}

const updateSet = `
	title = $3, first_name = $4, last_name = $5, email = $6, phone = $7,
	nationality = $8, delegate_type = $9, attendance_mode = $10,
	identification = $11, status = $12,
	approved_by = $13, approved_at = $14, rejected_by = $15, rejected_at = $16,
	rejection_reason = $17, checked_in_by = $18, checked_in_at = $19,
	check_in_location = $20, password_hash = $21, reset_pin = $22,
	reset_pin_expires_at = $23, address = $24, emergency_contact = $25,
	accommodation = $26, visa_status = $27, flight_details = $28,
	social_links = $29, consent_photo = $30, consent_data_processing = $31,
	profile_picture_url = $32, push_tokens = $33,
	version = version + 1, updated_at = $34`

func updateArgs(d *models.Delegate, docs *jsonCols, version int) []any {
	return []any{
		uuid.UUID(d.ID),
		version,
		d.Title,
		d.FirstName,
		d.LastName,
		models.NormalizeEmail(d.Email),
		d.Phone,
		d.Nationality,
		string(d.Type),
		string(d.AttendanceMode),
		docs.identification,
		string(d.Status),
		d.ApprovedBy,
		d.ApprovedAt,
		d.RejectedBy,
		d.RejectedAt,
		d.RejectionReason,
		d.CheckedInBy,
		d.CheckedInAt,
		d.CheckInLocation,
		d.PasswordHash,
		d.ResetPIN,
		d.ResetPINExpiresAt,
		d.Address,
		docs.emergencyContact,
		docs.accommodation,
		string(d.VisaStatus),
		docs.flightDetails,
		docs.socialLinks,
		d.ConsentPhoto,
		d.ConsentData,
		d.ProfilePictureURL,
		docs.pushTokens,
		d.UpdatedAt,
	}
}

// Update persists the aggregate with optimistic concurrency: the row is only
// written when its stored version matches d.Version. On success the bumped
// version is reflected back on d.
func (s *Store) Update(ctx context.Context, d *models.Delegate) error {
	ctx, span := startTrace(ctx, "Update")
	defer span.End()

	docs, err := encodeJSONCols(d)
	if err != nil {
		return err
	}

	query := `UPDATE delegates SET ` + updateSet + ` WHERE id = $1 AND version = $2`
	res, err := s.conn(ctx).ExecContext(ctx, query, updateArgs(d, docs, d.Version)...)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("email already registered for event year %d: %w", d.EventYear, sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("update delegate: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update delegate rows affected: %w", err)
	}
	if affected == 0 {
		var stored int
		err := s.conn(ctx).QueryRowContext(ctx, `SELECT version FROM delegates WHERE id = $1`, uuid.UUID(d.ID)).Scan(&stored)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("delegate not found: %w", sentinel.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("update delegate version check: %w", err)
		}
		return fmt.Errorf("delegate version %d does not match stored %d: %w", d.Version, stored, sentinel.ErrVersionConflict)
	}
	d.Version++
	return nil
}

// Execute atomically validates and mutates a delegate. The row is locked
// with SELECT ... FOR UPDATE for the duration, so the precondition check
// and the write happen under the same lock; two racing approvals cannot
// both pass validation. Joins a caller transaction when the context carries
// one, otherwise runs in its own.
func (s *Store) Execute(ctx context.Context, delegateID id.DelegateID, validate func(*models.Delegate) error, mutate func(*models.Delegate)) (*models.Delegate, error) {
	ctx, span := startTrace(ctx, "Execute")
	defer span.End()

	if tx, ok := txcontext.From(ctx); ok {
		return s.executeLocked(ctx, tx, delegateID, validate, mutate)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin execute tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	d, err := s.executeLocked(ctx, tx, delegateID, validate, mutate)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit execute tx: %w", err)
	}
	return d, nil
}

func (s *Store) executeLocked(ctx context.Context, tx dbConn, delegateID id.DelegateID, validate func(*models.Delegate) error, mutate func(*models.Delegate)) (*models.Delegate, error) {
	query := `SELECT ` + delegateColumns + ` FROM delegates WHERE id = $1 FOR UPDATE`
	d, err := scanDelegate(tx.QueryRowContext(ctx, query, uuid.UUID(delegateID)))
	if err != nil {
		return nil, err
	}

	if err := validate(d); err != nil {
		return nil, err
	}
	mutate(d)

	docs, err := encodeJSONCols(d)
	if err != nil {
		return nil, err
	}
	update := `UPDATE delegates SET ` + updateSet + ` WHERE id = $1 AND version = $2`
	if _, err := tx.ExecContext(ctx, update, updateArgs(d, docs, d.Version)...); err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("email already registered for event year %d: %w", d.EventYear, sentinel.ErrAlreadyUsed)
		}
		return nil, fmt.Errorf("execute update delegate: %w", err)
	}
	d.Version++
	return d, nil
}

func (s *Store) Delete(ctx context.Context, delegateID id.DelegateID) error {
	ctx, span := startTrace(ctx, "Delete")
	defer span.End()

	res, err := s.conn(ctx).ExecContext(ctx, `DELETE FROM delegates WHERE id = $1`, uuid.UUID(delegateID))
	if err != nil {
		return fmt.Errorf("delete delegate: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete delegate rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("delegate not found: %w", sentinel.ErrNotFound)
	}
	return nil
}

// List returns one page of delegates matching the filter plus the total
// match count. Ordering is newest first with ID as tiebreak so pages are
// stable across calls.
func (s *Store) List(ctx context.Context, filter *models.Filter) ([]*models.Delegate, int, error) {
	ctx, span := startTrace(ctx, "List")
	defer span.End()

	where, args := buildFilterClause(filter)

	var total int
	countQuery := `SELECT COUNT(*) FROM delegates` + where
	if err := s.conn(ctx).QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count delegates: %w", err)
	}

	pageArgs := append(args, filter.Limit, filter.Offset())
	pageQuery := fmt.Sprintf(`SELECT %s FROM delegates%s ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d`,
		delegateColumns, where, len(args)+1, len(args)+2)

	rows, err := s.conn(ctx).QueryContext(ctx, pageQuery, pageArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("query delegates: %w", err)
	}
	defer rows.Close()

	var delegates []*models.Delegate
	for rows.Next() {
		d, err := scanDelegate(rows)
		if err != nil {
			return nil, 0, err
		}
		delegates = append(delegates, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate delegates: %w", err)
	}
	return delegates, total, nil
}

// Statistics aggregates counts across delegates, optionally scoped to one
// event. Counting rules live on models.Statistics so both stores agree.
func (s *Store) Statistics(ctx context.Context, eventID id.EventID) (*models.Statistics, error) {
	ctx, span := startTrace(ctx, "Statistics")
	defer span.End()

	query := `SELECT status, delegate_type, attendance_mode, nationality FROM delegates`
	var args []any
	if !eventID.IsNil() {
		query += ` WHERE event_id = $1`
		args = append(args, uuid.UUID(eventID))
	}

	rows, err := s.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query delegate statistics: %w", err)
	}
	defer rows.Close()

	stats := models.NewStatistics()
	for rows.Next() {
		var d models.Delegate
		if err := rows.Scan(&d.Status, &d.Type, &d.AttendanceMode, &d.Nationality); err != nil {
			return nil, fmt.Errorf("scan delegate statistics: %w", err)
		}
		stats.Observe(&d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate delegate statistics: %w", err)
	}
	return stats, nil
}

func buildFilterClause(filter *models.Filter) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if !filter.EventID.IsNil() {
		add("event_id = $%d", uuid.UUID(filter.EventID))
	}
	if filter.EventYear != 0 {
		add("event_year = $%d", filter.EventYear)
	}
	if filter.Type != "" {
		add("delegate_type = $%d", string(filter.Type))
	}
	if filter.AttendanceMode != "" {
		add("attendance_mode = $%d", string(filter.AttendanceMode))
	}
	if filter.Status != "" {
		add("status = $%d", string(filter.Status))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDelegate(row rowScanner) (*models.Delegate, error) {
	var (
		d                 models.Delegate
		delegateID        uuid.UUID
		eventID           uuid.UUID
		approvedAt        sql.NullTime
		rejectedAt        sql.NullTime
		checkedInAt       sql.NullTime
		resetPINExpiresAt sql.NullTime
		identification    []byte
		emergencyContact  []byte
		accommodation     []byte
		flightDetails     []byte
		socialLinks       []byte
		pushTokens        []byte
	)

	err := row.Scan(
		&delegateID,
		&eventID,
		&d.EventYear,
		&d.Title,
		&d.FirstName,
		&d.LastName,
		&d.Email,
		&d.Phone,
		&d.Nationality,
		&d.Type,
		&d.AttendanceMode,
		&identification,
		&d.Status,
		&d.ApprovedBy,
		&approvedAt,
		&d.RejectedBy,
		&rejectedAt,
		&d.RejectionReason,
		&d.CheckedInBy,
		&checkedInAt,
		&d.CheckInLocation,
		&d.PasswordHash,
		&d.ResetPIN,
		&resetPINExpiresAt,
		&d.Address,
		&emergencyContact,
		&accommodation,
		&d.VisaStatus,
		&flightDetails,
		&socialLinks,
		&d.ConsentPhoto,
		&d.ConsentData,
		&d.ProfilePictureURL,
		&pushTokens,
		&d.Version,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("delegate not found: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scan delegate: %w", err)
	}

	d.ID = id.DelegateID(delegateID)
	d.EventID = id.EventID(eventID)
	d.ApprovedAt = nullableTime(approvedAt)
	d.RejectedAt = nullableTime(rejectedAt)
	d.CheckedInAt = nullableTime(checkedInAt)
	d.ResetPINExpiresAt = nullableTime(resetPINExpiresAt)

	if len(identification) > 0 {
		if err := json.Unmarshal(identification, &d.Identification); err != nil {
			return nil, fmt.Errorf("decode identification: %w", err)
		}
	}
	if len(emergencyContact) > 0 {
		d.EmergencyContact = &models.EmergencyContact{}
		if err := json.Unmarshal(emergencyContact, d.EmergencyContact); err != nil {
			return nil, fmt.Errorf("decode emergency contact: %w", err)
		}
	}
	if len(accommodation) > 0 {
		d.Accommodation = &models.Accommodation{}
		if err := json.Unmarshal(accommodation, d.Accommodation); err != nil {
			return nil, fmt.Errorf("decode accommodation: %w", err)
		}
	}
	if len(flightDetails) > 0 {
		d.FlightDetails = &models.FlightDetails{}
		if err := json.Unmarshal(flightDetails, d.FlightDetails); err != nil {
			return nil, fmt.Errorf("decode flight details: %w", err)
		}
	}
	if len(socialLinks) > 0 {
		if err := json.Unmarshal(socialLinks, &d.SocialLinks); err != nil {
			return nil, fmt.Errorf("decode social links: %w", err)
		}
	}
	if len(pushTokens) > 0 {
		if err := json.Unmarshal(pushTokens, &d.PushTokens); err != nil {
			return nil, fmt.Errorf("decode push tokens: %w", err)
		}
	}
	return &d, nil
}

func nullableTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

type jsonCols struct {
	identification   []byte
	emergencyContact []byte
	accommodation    []byte
	flightDetails    []byte
	socialLinks      []byte
	pushTokens       []byte
}

// encodeJSONCols marshals the nested document columns. Nil optional structs
// become NULL; identification and push_tokens are always present.
func encodeJSONCols(d *models.Delegate) (*jsonCols, error) {
	cols := &jsonCols{}
	var err error

	if cols.identification, err = json.Marshal(d.Identification); err != nil {
		return nil, fmt.Errorf("encode identification: %w", err)
	}
	if d.EmergencyContact != nil {
		if cols.emergencyContact, err = json.Marshal(d.EmergencyContact); err != nil {
			return nil, fmt.Errorf("encode emergency contact: %w", err)
		}
	}
	if d.Accommodation != nil {
		if cols.accommodation, err = json.Marshal(d.Accommodation); err != nil {
			return nil, fmt.Errorf("encode accommodation: %w", err)
		}
	}
	if d.FlightDetails != nil {
		if cols.flightDetails, err = json.Marshal(d.FlightDetails); err != nil {
			return nil, fmt.Errorf("encode flight details: %w", err)
		}
	}
	if d.SocialLinks != nil {
		if cols.socialLinks, err = json.Marshal(d.SocialLinks); err != nil {
			return nil, fmt.Errorf("encode social links: %w", err)
		}
	}
	tokens := d.PushTokens
	if tokens == nil {
		tokens = []string{}
	}
	if cols.pushTokens, err = json.Marshal(tokens); err != nil {
		return nil, fmt.Errorf("encode push tokens: %w", err)
	}
	return cols, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation
}
