package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/inquirydesk/backend/internal/apperr"
	"github.com/inquirydesk/backend/internal/model"
	"github.com/inquirydesk/backend/internal/repository"
)

// inquiryServiceImpl is the production implementation of InquiryService.
type inquiryServiceImpl struct {
	conns     Connections
	opTimeout time.Duration
	l         *slog.Logger
}

// NewInquiryService creates an InquiryService that reaches the store through
// conns. A positive opTimeout bounds every store operation.
func NewInquiryService(conns Connections, opTimeout time.Duration, l *slog.Logger) InquiryService {
	return &inquiryServiceImpl{conns: conns, opTimeout: opTimeout, l: l}
}

func (s *inquiryServiceImpl) Ready() error {
	_, err := s.repo()
	return err
}

func (s *inquiryServiceImpl) List(ctx context.Context) ([]*model.Inquiry, error) {
	repo, err := s.repo()
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	inquiries, err := repo.List(ctx)
	if err != nil {
		return nil, s.storeError("list inquiries", err)
	}
	return inquiries, nil
}

func (s *inquiryServiceImpl) Submit(ctx context.Context, inq *model.Inquiry) error {
	repo, err := s.repo()
	if err != nil {
		return err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := repo.Create(ctx, inq); err != nil {
		return s.storeError("create inquiry", err)
	}
	return nil
}

func (s *inquiryServiceImpl) Rename(ctx context.Context, id int64, name string) (bool, error) {
	repo, err := s.repo()
	if err != nil {
		return false, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	ok, err := repo.UpdateName(ctx, id, name)
	if err != nil {
		return false, s.storeError("update inquiry", err)
	}
	return ok, nil
}

func (s *inquiryServiceImpl) Delete(ctx context.Context, id int64) (bool, error) {
	repo, err := s.repo()
	if err != nil {
		return false, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	ok, err := repo.Delete(ctx, id)
	if err != nil {
		return false, s.storeError("delete inquiry", err)
	}
	return ok, nil
}

// repo returns the shared handle, or a connectivity error with the current
// attempt count.
func (s *inquiryServiceImpl) repo() (repository.InquiryRepository, error) {
	store, ok := s.conns.Acquire()
	if !ok {
		return nil, apperr.Unavailable(s.conns.Status().Attempts)
	}
	return store, nil
}

func (s *inquiryServiceImpl) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.opTimeout)
}

func (s *inquiryServiceImpl) storeError(op string, err error) error {
	s.l.Error("store operation failed", "op", op, "error", err)
	if repository.IsConnectionError(err) {
		s.conns.MarkSuspect(err)
	}
	return apperr.Store(op, err)
}
