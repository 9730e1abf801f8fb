package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vetdesk/vetdesk/internal/data/pgxutil"
	"github.com/vetdesk/vetdesk/internal/domain/model"
	apperrors "github.com/vetdesk/vetdesk/internal/errors"
)

// Document tables. Names are fixed so they can be interpolated into SQL safely.
const (
	TableCustomers      = "customers"
	TableUsers          = "users"
	TableDogs           = "dogs"
	TableCategories     = "categories"
	TableProducts       = "products"
	TableClinicServices = "clinic_services"
	TableInvoices       = "invoices"
	TableDiagnoses      = "diagnoses"
)

//nolint:gochecknoglobals // static allowlist
var knownTables = map[string]struct{}{
	TableCustomers:      {},
	TableUsers:          {},
	TableDogs:           {},
	TableCategories:     {},
	TableProducts:       {},
	TableClinicServices: {},
	TableInvoices:       {},
	TableDiagnoses:      {},
}

const documentColumns = `id::text AS id, doc, created_at, updated_at`

// pgxQuerier is satisfied by both *pgx.Conn and pgx.Tx.
type pgxQuerier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DocumentRepoOptions bundles optional dependencies for NewDocumentRepo.
type DocumentRepoOptions struct {
	TimeProvider TimeProvider
	// Location is the calendar used for daily document numbering. Defaults to UTC.
	Location *time.Location
}

// DocumentRepo stores one document kind as JSONB rows in a single table.
// The id, owner, number and email columns are authoritative; the JSON body carries the rest.
type DocumentRepo[T any, P model.DocumentPtr[T]] struct {
	DB           *sql.DB
	table        string
	timeProvider TimeProvider
	loc          *time.Location
}

// NewDocumentRepo creates a DocumentRepo for table. It panics on an unknown table name.
func NewDocumentRepo[T any, P model.DocumentPtr[T]](
	db *sql.DB,
	table string,
	opts DocumentRepoOptions,
) *DocumentRepo[T, P] {
	if _, ok := knownTables[table]; !ok {
		panic("data: unknown document table " + table)
	}
	tp := opts.TimeProvider
	if tp == nil {
		tp = &RealTimeProvider{}
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	return &DocumentRepo[T, P]{DB: db, table: table, timeProvider: tp, loc: loc}
}

// Table returns the backing table name.
func (r *DocumentRepo[T, P]) Table() string { return r.table }

type documentRow struct {
	ID        string    `db:"id"`
	Doc       []byte    `db:"doc"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Create inserts doc, assigning its id and timestamps. Numbered documents receive
// their daily sequence number inside the same transaction as the insert.
func (r *DocumentRepo[T, P]) Create(ctx context.Context, doc P) (P, error) {
	if doc == nil {
		return nil, ErrDocumentRequired
	}
	meta := doc.DocMeta()
	if meta.ID == "" {
		meta.ID = uuid.NewString()
	}
	now := r.timeProvider.Now().UTC()
	meta.CreatedAt = now
	meta.UpdatedAt = now

	var err error
	if nd, ok := any(doc).(model.NumberedDocument); ok {
		err = r.createNumbered(ctx, nd)
	} else {
		err = pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
			return r.insert(ctx, conn, doc)
		})
	}
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return doc, nil
}

// createNumbered serializes numbering per table with a transaction-scoped advisory lock,
// counts documents created on the same clinic calendar day and inserts with count+1.
func (r *DocumentRepo[T, P]) createNumbered(ctx context.Context, doc model.NumberedDocument) error {
	return pgxutil.WithPgxTx(ctx, r.DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		if err := pgxutil.XactLock(ctx, tx, r.table); err != nil {
			return err
		}

		start, end := model.DayBounds(doc.DocMeta().CreatedAt, r.loc)
		var count int
		if err := tx.QueryRow(ctx,
			`SELECT count(*) FROM `+r.table+` WHERE created_at >= $1 AND created_at < $2`,
			start, end,
		).Scan(&count); err != nil {
			return fmt.Errorf("count %s for day: %w", r.table, err)
		}

		number, err := r.nextFreeNumber(ctx, tx, doc.NumberPrefix(), start, count+1)
		if err != nil {
			return err
		}
		doc.SetNumber(number)
		return r.insert(ctx, tx, doc)
	})
}

// nextFreeNumber returns the first unused number starting at seq. Deleted documents
// lower the daily count, so the candidate can collide with a surviving number.
func (r *DocumentRepo[T, P]) nextFreeNumber(
	ctx context.Context,
	q pgxQuerier,
	prefix string,
	day time.Time,
	seq int,
) (string, error) {
	for {
		number := model.FormatDocumentNumber(prefix, day, seq)
		var taken bool
		if err := q.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM `+r.table+` WHERE number = $1)`, number,
		).Scan(&taken); err != nil {
			return "", fmt.Errorf("check %s number: %w", r.table, err)
		}
		if !taken {
			return number, nil
		}
		seq++
	}
}

func (r *DocumentRepo[T, P]) insert(ctx context.Context, q pgxQuerier, doc model.Document) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s document: %w", r.table, err)
	}
	meta := doc.DocMeta()
	_, err = q.Exec(ctx, `
		INSERT INTO `+r.table+` (id, owner_id, number, email, doc, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		meta.ID,
		nullable(doc.OwnerKey()),
		numberOf(doc),
		emailOf(doc),
		body,
		meta.CreatedAt,
		meta.UpdatedAt,
	)
	return err
}

// GetByID retrieves a document by id. Malformed ids are reported as not found.
func (r *DocumentRepo[T, P]) GetByID(ctx context.Context, id string) (P, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, r.notFound()
	}
	return r.getOne(ctx, `SELECT `+documentColumns+` FROM `+r.table+` WHERE id = $1`, id)
}

// FindByEmail retrieves a document by its unique email column.
func (r *DocumentRepo[T, P]) FindByEmail(ctx context.Context, email string) (P, error) {
	email = model.NormalizeEmail(email)
	if email == "" {
		return nil, r.notFound()
	}
	return r.getOne(ctx, `SELECT `+documentColumns+` FROM `+r.table+` WHERE email = $1`, email)
}

// List retrieves documents newest first.
func (r *DocumentRepo[T, P]) List(ctx context.Context, opts model.ListOptions) ([]P, error) {
	opts = opts.Normalize()
	return r.getMany(ctx, `
		SELECT `+documentColumns+` FROM `+r.table+`
		ORDER BY created_at DESC, id
		LIMIT $1 OFFSET $2`, opts.Limit, opts.Offset)
}

// ListByOwner retrieves documents owned by ownerID, newest first.
func (r *DocumentRepo[T, P]) ListByOwner(
	ctx context.Context,
	ownerID string,
	opts model.ListOptions,
) ([]P, error) {
	if _, err := uuid.Parse(ownerID); err != nil {
		return []P{}, nil
	}
	opts = opts.Normalize()
	return r.getMany(ctx, `
		SELECT `+documentColumns+` FROM `+r.table+`
		WHERE owner_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3`, ownerID, opts.Limit, opts.Offset)
}

// Update replaces the stored body of doc and refreshes updated_at.
// The number column is immutable and is not touched.
func (r *DocumentRepo[T, P]) Update(ctx context.Context, doc P) (P, error) {
	if doc == nil {
		return nil, ErrDocumentRequired
	}
	meta := doc.DocMeta()
	if _, err := uuid.Parse(meta.ID); err != nil {
		return nil, r.notFound()
	}
	meta.UpdatedAt = r.timeProvider.Now().UTC()
	body, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode %s document: %w", r.table, err)
	}

	err = pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		return conn.QueryRow(ctx, `
			UPDATE `+r.table+`
			SET owner_id = $2, email = $3, doc = $4, updated_at = $5
			WHERE id = $1
			RETURNING created_at`,
			meta.ID,
			nullable(doc.OwnerKey()),
			emailOf(doc),
			body,
			meta.UpdatedAt,
		).Scan(&meta.CreatedAt)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.notFound()
		}
		return nil, apperrors.MapDBError(err)
	}
	return doc, nil
}

// Delete removes a document by id and reports whether a row was deleted.
func (r *DocumentRepo[T, P]) Delete(ctx context.Context, id string) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, nil
	}
	var rows int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, err := conn.Exec(ctx, `DELETE FROM `+r.table+` WHERE id = $1`, id)
		if err != nil {
			return err
		}
		rows = ct.RowsAffected()
		return nil
	})
	if err != nil {
		return false, apperrors.MapDBError(err)
	}
	return rows > 0, nil
}

// --- helpers ---

func (r *DocumentRepo[T, P]) notFound() error {
	return apperrors.NotFoundf("%s record not found", r.table)
}

func (r *DocumentRepo[T, P]) getOne(ctx context.Context, q string, args ...any) (P, error) {
	var row documentRow
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, q, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		row, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[documentRow])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.notFound()
		}
		return nil, apperrors.MapDBError(err)
	}
	return r.decode(row)
}

func (r *DocumentRepo[T, P]) getMany(ctx context.Context, q string, args ...any) ([]P, error) {
	var rowsOut []documentRow
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, q, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[documentRow])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", r.table, apperrors.MapDBError(err))
	}
	out := make([]P, 0, len(rowsOut))
	for _, row := range rowsOut {
		doc, err := r.decode(row)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, nil
}

func (r *DocumentRepo[T, P]) decode(row documentRow) (P, error) {
	doc := P(new(T))
	if err := json.Unmarshal(row.Doc, doc); err != nil {
		return nil, fmt.Errorf("decode %s document %s: %w", r.table, row.ID, err)
	}
	meta := doc.DocMeta()
	meta.ID = row.ID
	meta.CreatedAt = row.CreatedAt
	meta.UpdatedAt = row.UpdatedAt
	return doc, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func emailOf(doc model.Document) *string {
	if ek, ok := doc.(model.EmailKeyed); ok {
		return nullable(ek.EmailKey())
	}
	return nil
}

func numberOf(doc model.Document) *string {
	if nd, ok := doc.(model.NumberedDocument); ok {
		return nullable(nd.DocumentNumber())
	}
	return nil
}
