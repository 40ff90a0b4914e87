package repository

import (
	"context"
	"fmt"

	"github.com/inquirydesk/backend/internal/model"
	"github.com/jmoiron/sqlx"
)

// SQLInquiryRepository implements Store on top of database/sql for the
// MySQL and SQLite drivers. Both use "?" placeholders.
type SQLInquiryRepository struct {
	db     *sqlx.DB
	driver string
}

// NewSQLInquiryRepository wraps db; driver selects the schema dialect.
func NewSQLInquiryRepository(db *sqlx.DB, driver string) *SQLInquiryRepository {
	return &SQLInquiryRepository{db: db, driver: driver}
}

var _ Store = (*SQLInquiryRepository)(nil)

func (r *SQLInquiryRepository) Driver() string { return r.driver }

func (r *SQLInquiryRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLInquiryRepository) Close() {
	_ = r.db.Close()
}

func (r *SQLInquiryRepository) EnsureSchema(ctx context.Context) error {
	stmts := schemaFor(r.driver)
	if stmts == nil {
		return fmt.Errorf("%w: %q", ErrUnknownDriver, r.driver)
	}
	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// List returns all inquiries ordered by created_at descending. Rows inserted
// within the same timestamp tick are ordered by id.
func (r *SQLInquiryRepository) List(ctx context.Context) ([]*model.Inquiry, error) {
	var inquiries []*model.Inquiry
	err := r.db.SelectContext(ctx, &inquiries,
		`SELECT id, name, email, inquiry, created_at
		 FROM inquiries
		 ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	return inquiries, nil
}

// Create inserts a new row and populates inq.ID. created_at stays zero;
// reading it back would take a second statement.
func (r *SQLInquiryRepository) Create(ctx context.Context, inq *model.Inquiry) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO inquiries (name, email, inquiry) VALUES (?, ?, ?)`,
		inq.Name, inq.Email, inq.Inquiry)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	inq.ID = id
	return nil
}

func (r *SQLInquiryRepository) UpdateName(ctx context.Context, id int64, name string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE inquiries SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *SQLInquiryRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM inquiries WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *SQLInquiryRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM inquiries`)
	return n, err
}
