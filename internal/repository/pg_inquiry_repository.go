package repository

import (
	"context"
	"fmt"

	"github.com/inquirydesk/backend/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgInquiryRepository is the PostgreSQL implementation of Store.
type PgInquiryRepository struct {
	pool *pgxpool.Pool
}

// NewPgInquiryRepository creates a PgInquiryRepository backed by the given pool.
func NewPgInquiryRepository(pool *pgxpool.Pool) *PgInquiryRepository {
	return &PgInquiryRepository{pool: pool}
}

// Ensure PgInquiryRepository implements Store at compile time.
var _ Store = (*PgInquiryRepository)(nil)

func (r *PgInquiryRepository) Driver() string { return DriverPostgres }

func (r *PgInquiryRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *PgInquiryRepository) Close() {
	r.pool.Close()
}

func (r *PgInquiryRepository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range pgSchema {
		if _, err := r.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// List returns all inquiries ordered by created_at descending.
func (r *PgInquiryRepository) List(ctx context.Context) ([]*model.Inquiry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, email, inquiry, created_at
		 FROM inquiries
		 ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var inquiries []*model.Inquiry
	for rows.Next() {
		var i model.Inquiry
		if err := rows.Scan(&i.ID, &i.Name, &i.Email, &i.Inquiry, &i.CreatedAt); err != nil {
			return nil, err
		}
		inquiries = append(inquiries, &i)
	}
	return inquiries, rows.Err()
}

// Create inserts a new inquiries row and populates inq.ID and inq.CreatedAt
// from the RETURNING clause.
func (r *PgInquiryRepository) Create(ctx context.Context, inq *model.Inquiry) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO inquiries (name, email, inquiry)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		inq.Name, inq.Email, inq.Inquiry,
	).Scan(&inq.ID, &inq.CreatedAt)
}

func (r *PgInquiryRepository) UpdateName(ctx context.Context, id int64, name string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE inquiries SET name = $1 WHERE id = $2`, name, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PgInquiryRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM inquiries WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PgInquiryRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM inquiries`).Scan(&n)
	return n, err
}
