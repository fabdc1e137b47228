package checkout

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/playcv/cartd/internal/domain"
	"github.com/playcv/cartd/internal/journal"
	"github.com/playcv/cartd/internal/provider"
	"github.com/playcv/cartd/internal/remote"
	"github.com/playcv/cartd/internal/store"
	"github.com/playcv/cartd/internal/syncer"
)

// MockJournal implements journal.Repository for testing
type MockJournal struct {
	mu             sync.Mutex
	CreatedAttempt *journal.Attempt
	CreateErr      error
	StatusUpdates  map[string]domain.AttemptStatus
	Completed      []string
	CompletedErr   error
}

func NewMockJournal() *MockJournal {
	return &MockJournal{StatusUpdates: make(map[string]domain.AttemptStatus)}
}

func (m *MockJournal) CreateAttempt(_ context.Context, attempt *journal.Attempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.CreatedAttempt = attempt
	return nil
}

func (m *MockJournal) UpdateAttemptStatus(_ context.Context, reference string, status domain.AttemptStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StatusUpdates[reference] = status
	return nil
}

func (m *MockJournal) GetAttempt(context.Context, string) (*journal.Attempt, error) {
	return nil, journal.ErrAttemptNotFound
}

func (m *MockJournal) CompleteAttempt(_ context.Context, reference string, _ []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CompletedErr != nil {
		return m.CompletedErr
	}
	m.Completed = append(m.Completed, reference)
	return nil
}

func (m *MockJournal) GetUnprocessedEvents(context.Context, int) ([]*journal.OutboxEvent, error) {
	return nil, nil
}

func (m *MockJournal) MarkEventAsProcessed(context.Context, int64) error { return nil }
func (m *MockJournal) Close() error                                      { return nil }
func (m *MockJournal) RunMigrations(*journal.Credentials) error          { return nil }

// MockCartClient implements remote.CartClient for testing
type MockCartClient struct {
	mu        sync.Mutex
	Records   []remote.CartRecord
	ListErr   error
	ListCalls int
	Removed   []string
	RemoveErr error
}

func (m *MockCartClient) List(context.Context) ([]remote.CartRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ListCalls++
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return m.Records, nil
}

func (m *MockCartClient) Remove(_ context.Context, recordID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.RemoveErr != nil {
		return m.RemoveErr
	}
	m.Removed = append(m.Removed, recordID)
	return nil
}

// MockPaymentClient implements remote.PaymentClient for testing
type MockPaymentClient struct {
	mu           sync.Mutex
	Confirmation *remote.ConfirmationRequest // captures the payload
	ConfirmErr   error
	ConfirmCalls int
}

func (m *MockPaymentClient) Confirm(_ context.Context, req *remote.ConfirmationRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ConfirmCalls++
	if m.ConfirmErr != nil {
		return m.ConfirmErr
	}
	m.Confirmation = req
	return nil
}

// MockProvider implements provider.Client for testing
type MockProvider struct {
	mu           sync.Mutex
	InitRequest  *provider.InitRequest // captures the handoff
	InitErr      error
	InitCalls    int
	VerifyResult *domain.ProviderResult
}

func (m *MockProvider) Initialize(_ context.Context, req provider.InitRequest) (*provider.Authorization, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InitCalls++
	if m.InitErr != nil {
		return nil, m.InitErr
	}
	m.InitRequest = &req
	return &provider.Authorization{
		Reference:        req.Reference,
		AccessCode:       "access-code",
		AuthorizationURL: "https://provider.example/pay/" + req.Reference,
	}, nil
}

func (m *MockProvider) Verify(context.Context, string) (*domain.ProviderResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.VerifyResult, nil
}

type orchestratorFixture struct {
	orch     *Orchestrator
	store    *store.Store
	cart     *MockCartClient
	payments *MockPaymentClient
	provider *MockProvider
	journal  *MockJournal
}

// newFixture wires an orchestrator over in-memory collaborators.
func newFixture(cart *MockCartClient) *orchestratorFixture {
	if cart == nil {
		cart = &MockCartClient{}
	}
	log := zap.NewNop()
	st := store.NewStore("user-1", store.NewMemoryStorage(), log)
	sync := syncer.NewSyncer(st, cart, log)
	payments := &MockPaymentClient{}
	prov := &MockProvider{}
	j := NewMockJournal()

	orch := NewOrchestrator(st, sync, prov, payments, cart, j, "NGN", "videocv", log)
	return &orchestratorFixture{
		orch:     orch,
		store:    st,
		cart:     cart,
		payments: payments,
		provider: prov,
		journal:  j,
	}
}

func testUser() domain.User {
	return domain.User{
		ID:        "user-1",
		Email:     "jobseeker@example.com",
		FirstName: "Ada",
		LastName:  "Obi",
	}
}
