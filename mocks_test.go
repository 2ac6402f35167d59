package access_test

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	access "github.com/promanage/go-access"
)

// MockGateway implements access.Gateway
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Login(ctx context.Context, creds access.Credentials) (access.Session, error) {
	args := m.Called(ctx, creds)
	return args.Get(0).(access.Session), args.Error(1)
}

func (m *MockGateway) IssueInvite(ctx context.Context, req access.InviteRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *MockGateway) ValidateInvite(ctx context.Context, token string) (access.InviteClaim, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(access.InviteClaim), args.Error(1)
}

func (m *MockGateway) RegisterViaInvite(ctx context.Context, reg access.Registration) (access.Session, error) {
	args := m.Called(ctx, reg)
	return args.Get(0).(access.Session), args.Error(1)
}

func (m *MockGateway) UpdateProfile(ctx context.Context, token string, update access.ProfileUpdate) (access.Session, error) {
	args := m.Called(ctx, token, update)
	return args.Get(0).(access.Session), args.Error(1)
}

// memoryStore is an in-memory access.TokenStore for manager tests.
type memoryStore struct {
	mu       sync.Mutex
	session  *access.Session
	darkMode bool

	loadErr  error
	saveErr  error
	clearErr error

	saveCalls  int
	clearCalls int
}

func (s *memoryStore) Load(ctx context.Context) (*access.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	if s.session == nil {
		return nil, nil
	}
	copied := *s.session
	return &copied, nil
}

func (s *memoryStore) Save(ctx context.Context, session access.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveCalls++
	if s.saveErr != nil {
		return s.saveErr
	}
	copied := session
	s.session = &copied
	return nil
}

func (s *memoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearCalls++
	if s.clearErr != nil {
		return s.clearErr
	}
	s.session = nil
	return nil
}

func (s *memoryStore) LoadPreference(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.darkMode, nil
}

func (s *memoryStore) SavePreference(ctx context.Context, darkMode bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.darkMode = darkMode
	return nil
}

func (s *memoryStore) stored() *access.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil
	}
	copied := *s.session
	return &copied
}

// recordingSink captures activity events for assertions.
type recordingSink struct {
	mu     sync.Mutex
	events []access.ActivityEvent
}

func (r *recordingSink) Record(ctx context.Context, event access.ActivityEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recordingSink) types() []access.ActivityEventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]access.ActivityEventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.EventType)
	}
	return out
}

func staffSession() access.Session {
	return access.Session{
		UserID:          "u1",
		Name:            "Sam Field",
		Email:           "sam@promanage.test",
		Role:            access.RoleStaff,
		Status:          access.UserStatusActive,
		CredentialToken: "tok-staff-1",
	}
}
