package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/neilotoole/slogt"

	"github.com/inquirydesk/backend/internal/apperr"
	"github.com/inquirydesk/backend/internal/dbconn"
	"github.com/inquirydesk/backend/internal/model"
	"github.com/inquirydesk/backend/internal/repository"
)

// ---------------------------------------------------------------------------
// mockStore - function-field stub for repository.Store
// ---------------------------------------------------------------------------

type mockStore struct {
	listFunc       func(ctx context.Context) ([]*model.Inquiry, error)
	createFunc     func(ctx context.Context, inq *model.Inquiry) error
	updateNameFunc func(ctx context.Context, id int64, name string) (bool, error)
	deleteFunc     func(ctx context.Context, id int64) (bool, error)
	calls          int
}

func (m *mockStore) Ping(ctx context.Context) error         { return nil }
func (m *mockStore) EnsureSchema(ctx context.Context) error { return nil }
func (m *mockStore) Driver() string                         { return "mock" }
func (m *mockStore) Close()                                 {}

func (m *mockStore) Count(ctx context.Context) (int64, error) {
	m.calls++
	return 0, nil
}

func (m *mockStore) List(ctx context.Context) ([]*model.Inquiry, error) {
	m.calls++
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return nil, nil
}

func (m *mockStore) Create(ctx context.Context, inq *model.Inquiry) error {
	m.calls++
	if m.createFunc != nil {
		return m.createFunc(ctx, inq)
	}
	return nil
}

func (m *mockStore) UpdateName(ctx context.Context, id int64, name string) (bool, error) {
	m.calls++
	if m.updateNameFunc != nil {
		return m.updateNameFunc(ctx, id, name)
	}
	return false, nil
}

func (m *mockStore) Delete(ctx context.Context, id int64) (bool, error) {
	m.calls++
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return false, nil
}

// ---------------------------------------------------------------------------
// mockConnections - stub Connection Manager
// ---------------------------------------------------------------------------

type mockConnections struct {
	store     repository.Store
	connected bool
	attempts  int
	suspects  []error
}

func (m *mockConnections) Status() dbconn.Status {
	state := dbconn.StateFailed
	if m.connected {
		state = dbconn.StateConnected
	}
	return dbconn.Status{State: state, Connected: m.connected, Attempts: m.attempts}
}

func (m *mockConnections) Acquire() (repository.Store, bool) {
	if !m.connected {
		return nil, false
	}
	return m.store, true
}

func (m *mockConnections) MarkSuspect(err error) {
	m.suspects = append(m.suspects, err)
}

func newTestService(t *testing.T, conns *mockConnections) InquiryService {
	return NewInquiryService(conns, time.Second, slogt.New(t))
}

// ---------------------------------------------------------------------------
// Connectivity pre-check
// ---------------------------------------------------------------------------

func TestInquiryService_Unavailable_NeverTouchesStore(t *testing.T) {
	store := &mockStore{}
	conns := &mockConnections{store: store, connected: false, attempts: 6}
	svc := newTestService(t, conns)
	ctx := context.Background()

	checks := map[string]func() error{
		"Ready": svc.Ready,
		"List": func() error { _, err := svc.List(ctx); return err },
		"Submit": func() error {
			return svc.Submit(ctx, &model.Inquiry{Name: "A", Email: "a@b.com", Inquiry: "hi"})
		},
		"Rename": func() error { _, err := svc.Rename(ctx, 1, "B"); return err },
		"Delete": func() error { _, err := svc.Delete(ctx, 1); return err },
	}

	for name, call := range checks {
		t.Run(name, func(t *testing.T) {
			err := call()
			e, ok := apperr.As(err)
			if !ok {
				t.Fatalf("expected *apperr.Error, got %v", err)
			}
			if e.Kind != apperr.KindConnectivity {
				t.Errorf("expected connectivity kind, got %v", e.Kind)
			}
			if e.Attempts != 6 {
				t.Errorf("expected attempts=6, got %d", e.Attempts)
			}
		})
	}

	if store.calls != 0 {
		t.Errorf("expected no store calls while unavailable, got %d", store.calls)
	}
}

func TestInquiryService_Ready_Connected(t *testing.T) {
	svc := newTestService(t, &mockConnections{store: &mockStore{}, connected: true})
	if err := svc.Ready(); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Execution
// ---------------------------------------------------------------------------

func TestInquiryService_List_ReturnsRows(t *testing.T) {
	now := time.Now()
	want := []*model.Inquiry{
		{ID: 2, Name: "B", Email: "b@b.com", Inquiry: "second", CreatedAt: now},
		{ID: 1, Name: "A", Email: "a@b.com", Inquiry: "first", CreatedAt: now.Add(-time.Minute)},
	}
	store := &mockStore{
		listFunc: func(ctx context.Context) ([]*model.Inquiry, error) { return want, nil },
	}
	svc := newTestService(t, &mockConnections{store: store, connected: true})

	got, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].ID != 2 || got[1].ID != 1 {
		t.Errorf("expected rows passed through in order, got %v", got)
	}
}

func TestInquiryService_Submit_PopulatesID(t *testing.T) {
	store := &mockStore{
		createFunc: func(ctx context.Context, inq *model.Inquiry) error {
			inq.ID = 42
			return nil
		},
	}
	svc := newTestService(t, &mockConnections{store: store, connected: true})

	inq := &model.Inquiry{Name: "A", Email: "a@b.com", Inquiry: "hi"}
	if err := svc.Submit(context.Background(), inq); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inq.ID != 42 {
		t.Errorf("expected id=42, got %d", inq.ID)
	}
}

func TestInquiryService_Rename_ForwardsArguments(t *testing.T) {
	var gotID int64
	var gotName string
	store := &mockStore{
		updateNameFunc: func(ctx context.Context, id int64, name string) (bool, error) {
			gotID, gotName = id, name
			return false, nil
		},
	}
	svc := newTestService(t, &mockConnections{store: store, connected: true})

	ok, err := svc.Rename(context.Background(), 123, "B")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected ok=false for a missing row")
	}
	if gotID != 123 || gotName != "B" {
		t.Errorf("expected (123, B), got (%d, %q)", gotID, gotName)
	}
}

func TestInquiryService_Delete(t *testing.T) {
	store := &mockStore{
		deleteFunc: func(ctx context.Context, id int64) (bool, error) { return id == 7, nil },
	}
	svc := newTestService(t, &mockConnections{store: store, connected: true})

	ok, err := svc.Delete(context.Background(), 7)
	if err != nil || !ok {
		t.Errorf("expected (true, nil), got (%v, %v)", ok, err)
	}
	ok, err = svc.Delete(context.Background(), 8)
	if err != nil || ok {
		t.Errorf("expected (false, nil), got (%v, %v)", ok, err)
	}
}

func TestInquiryService_AppliesOperationTimeout(t *testing.T) {
	var hasDeadline bool
	store := &mockStore{
		listFunc: func(ctx context.Context) ([]*model.Inquiry, error) {
			_, hasDeadline = ctx.Deadline()
			return nil, nil
		},
	}
	svc := newTestService(t, &mockConnections{store: store, connected: true})

	if _, err := svc.List(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !hasDeadline {
		t.Error("expected store operation to run with a deadline")
	}
}

// ---------------------------------------------------------------------------
// Store errors
// ---------------------------------------------------------------------------

func TestInquiryService_StoreError(t *testing.T) {
	cause := errors.New("Check constraint 'chk_email' is violated.")
	store := &mockStore{
		createFunc: func(ctx context.Context, inq *model.Inquiry) error { return cause },
	}
	conns := &mockConnections{store: store, connected: true}
	svc := newTestService(t, conns)

	err := svc.Submit(context.Background(), &model.Inquiry{Name: "A", Email: "a@b.com", Inquiry: "hi"})
	if apperr.KindOf(err) != apperr.KindStore {
		t.Fatalf("expected store kind, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("expected underlying error to be wrapped, got %v", err)
	}
	if len(conns.suspects) != 0 {
		t.Errorf("statement errors must not be reported as suspect, got %d", len(conns.suspects))
	}
}

func TestInquiryService_ConnectionClassErrorMarksSuspect(t *testing.T) {
	store := &mockStore{
		listFunc: func(ctx context.Context) ([]*model.Inquiry, error) { return nil, mysql.ErrInvalidConn },
	}
	conns := &mockConnections{store: store, connected: true}
	svc := newTestService(t, conns)

	_, err := svc.List(context.Background())
	if apperr.KindOf(err) != apperr.KindStore {
		t.Fatalf("expected store kind, got %v", err)
	}
	if len(conns.suspects) != 1 {
		t.Errorf("expected one suspect report, got %d", len(conns.suspects))
	}
}
