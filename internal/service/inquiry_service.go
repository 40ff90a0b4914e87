package service

import (
	"context"

	"github.com/inquirydesk/backend/internal/dbconn"
	"github.com/inquirydesk/backend/internal/model"
	"github.com/inquirydesk/backend/internal/repository"
)

// InquiryService defines the business logic for contact-form inquiries.
//
// Every method first checks connectivity: while the store is not connected it
// returns an apperr.KindConnectivity error without touching the store. Store
// failures are returned as apperr.KindStore.
type InquiryService interface {
	// Ready returns the connectivity error List and friends would return
	// right now, or nil if the store is connected.
	Ready() error

	// List returns all inquiries, most recent first.
	List(ctx context.Context) ([]*model.Inquiry, error)

	// Submit stores a new inquiry and populates inq.ID.
	Submit(ctx context.Context, inq *model.Inquiry) error

	// Rename changes the name of inquiry id and reports whether it existed.
	Rename(ctx context.Context, id int64, name string) (bool, error)

	// Delete removes inquiry id and reports whether it existed.
	Delete(ctx context.Context, id int64) (bool, error)
}

// Connections is the part of the Connection Manager the service depends on.
type Connections interface {
	Status() dbconn.Status
	Acquire() (repository.Store, bool)
	MarkSuspect(err error)
}

var _ Connections = (*dbconn.Manager)(nil)
