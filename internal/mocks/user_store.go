package mocks

import (
	"context"
	"sync"

	"github.com/advancetodo/api/internal/domain"
	"github.com/advancetodo/api/internal/store"
	"github.com/google/uuid"
)

// MockUserStore implements store.UserStore for testing
type MockUserStore struct {
	// Custom behavior functions
	FindAllFn func(ctx context.Context) ([]domain.User, error)
	GetByIDFn func(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// Default response values
	Users []domain.User
	Err   error

	mu           sync.Mutex
	findAllCalls int
	getByIDCalls []uuid.UUID
}

var _ store.UserStore = (*MockUserStore)(nil)

// FindAll implements store.UserStore
func (m *MockUserStore) FindAll(ctx context.Context) ([]domain.User, error) {
	m.mu.Lock()
	m.findAllCalls++
	m.mu.Unlock()

	if m.FindAllFn != nil {
		return m.FindAllFn(ctx)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	users := make([]domain.User, len(m.Users))
	copy(users, m.Users)
	return users, nil
}

// GetByID implements store.UserStore. By default it looks id up in Users.
func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	m.mu.Lock()
	m.getByIDCalls = append(m.getByIDCalls, id)
	m.mu.Unlock()

	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	for i := range m.Users {
		if m.Users[i].ID == id {
			u := m.Users[i]
			return &u, nil
		}
	}
	return nil, store.ErrUserNotFound
}

// FindAllCalls returns how many times FindAll was called.
func (m *MockUserStore) FindAllCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.findAllCalls
}

// GetByIDCalls returns the IDs passed to GetByID.
func (m *MockUserStore) GetByIDCalls() []uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]uuid.UUID(nil), m.getByIDCalls...)
}
