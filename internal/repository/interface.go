package repository

import (
	"context"

	"github.com/inquirydesk/backend/internal/model"
)

// DB は DB 接続の生存確認を行うインターフェース
type DB interface {
	Ping(ctx context.Context) error
}

// InquiryRepository is the persistence interface for inquiries.
// Every method issues exactly one statement.
type InquiryRepository interface {
	// List returns all inquiries, most recent first.
	List(ctx context.Context) ([]*model.Inquiry, error)

	// Create inserts a new row and populates inq.ID (and inq.CreatedAt where
	// the driver can return it in the same statement).
	Create(ctx context.Context, inq *model.Inquiry) error

	// UpdateName changes the name of inquiry id. It reports whether a row matched.
	UpdateName(ctx context.Context, id int64, name string) (bool, error)

	// Delete removes inquiry id. It reports whether a row was removed.
	Delete(ctx context.Context, id int64) (bool, error)

	// Count returns the number of stored inquiries.
	Count(ctx context.Context) (int64, error)
}

// Store is an open handle to the backing relational store.
type Store interface {
	DB
	InquiryRepository

	// EnsureSchema creates the inquiries table and its index if they are
	// missing. It never drops or alters existing objects.
	EnsureSchema(ctx context.Context) error

	// Driver returns the driver name ("postgres", "mysql" or "sqlite").
	Driver() string

	Close()
}
