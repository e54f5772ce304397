package invoices

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/billfold/billfold/internal/shared"
)

// Repository provides PostgreSQL backed persistence. The invoice body is a
// jsonb document; user_id, status and due_date are lifted into columns for
// filtering.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const invoiceColumns = `id, user_id, status, due_date, doc, created_at, updated_at`

// Create inserts an invoice and returns it with identity fields filled.
func (r *Repository) Create(ctx context.Context, inv *Invoice) (*Invoice, error) {
	raw, err := json.Marshal(inv.Doc)
	if err != nil {
		return nil, fmt.Errorf("invoices: marshal doc: %w", err)
	}
	row := r.pool.QueryRow(ctx,
		`INSERT INTO invoices (user_id, status, due_date, doc, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, now(), now())
		 RETURNING `+invoiceColumns,
		inv.UserID, string(inv.Status), nullableDate(inv.DueDate), raw)
	return scanInvoice(row)
}

// GetByID fetches an invoice owned by userID.
func (r *Repository) GetByID(ctx context.Context, userID, id int64) (*Invoice, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE id = $1 AND user_id = $2`, id, userID)
	inv, err := scanInvoice(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return inv, nil
}

// List returns a page of the user's invoices, newest first, plus the total count.
func (r *Repository) List(ctx context.Context, req ListInvoicesRequest) ([]Invoice, int, error) {
	limit := req.PerPage
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if req.Page > 1 {
		offset = (req.Page - 1) * limit
	}

	where := `WHERE user_id = $1`
	args := []any{req.UserID}
	if req.Status != "" {
		where += ` AND status = $2`
		args = append(args, string(req.Status))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM invoices `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM invoices %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		invoiceColumns, where, limit, offset)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *inv)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

// Update replaces the document and lifted columns of an owned invoice.
func (r *Repository) Update(ctx context.Context, inv *Invoice) (*Invoice, error) {
	raw, err := json.Marshal(inv.Doc)
	if err != nil {
		return nil, fmt.Errorf("invoices: marshal doc: %w", err)
	}
	row := r.pool.QueryRow(ctx,
		`UPDATE invoices
		 SET status = $3, due_date = $4, doc = $5, updated_at = now()
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+invoiceColumns,
		inv.ID, inv.UserID, string(inv.Status), nullableDate(inv.DueDate), raw)
	updated, err := scanInvoice(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return updated, nil
}

// UpdateStatus changes only the status column and mirrors it into the document.
func (r *Repository) UpdateStatus(ctx context.Context, userID, id int64, status Status) (*Invoice, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE invoices
		 SET status = $3,
		     doc = jsonb_set(doc, '{status}', to_jsonb($3::text)),
		     updated_at = now()
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+invoiceColumns,
		id, userID, string(status))
	inv, err := scanInvoice(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return inv, nil
}

// Delete removes an owned invoice.
func (r *Repository) Delete(ctx context.Context, userID, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM invoices WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// MarkOverdue flips Unpaid invoices past their due date to Overdue, across
// all users. Returns the number of rows changed.
func (r *Repository) MarkOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE invoices
		 SET status = $1,
		     doc = jsonb_set(doc, '{status}', to_jsonb($1::text)),
		     updated_at = now()
		 WHERE status = $2 AND due_date IS NOT NULL AND due_date < $3`,
		string(StatusOverdue), string(StatusUnpaid), asOf)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// ActiveUserIDs returns the distinct owners of stored invoices.
func (r *Repository) ActiveUserIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT user_id FROM invoices`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func nullableDate(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInvoice(row rowScanner) (*Invoice, error) {
	var (
		inv     Invoice
		status  string
		dueDate *time.Time
		raw     []byte
	)
	if err := row.Scan(&inv.ID, &inv.UserID, &status, &dueDate, &raw, &inv.CreatedAt, &inv.UpdatedAt); err != nil {
		return nil, err
	}
	inv.Status = Status(status)
	if dueDate != nil {
		inv.DueDate = *dueDate
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &inv.Doc); err != nil {
			return nil, fmt.Errorf("invoices: unmarshal doc: %w", err)
		}
	}
	if inv.Doc == nil {
		inv.Doc = Document{}
	}
	return &inv, nil
}
