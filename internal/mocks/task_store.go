package mocks

import (
	"context"
	"database/sql"
	"sync"

	"github.com/advancetodo/api/internal/domain"
	"github.com/advancetodo/api/internal/store"
	"github.com/google/uuid"
)

// FindCall records one call to MockTaskStore.Find.
type FindCall struct {
	UserID uuid.UUID
	Filter store.TaskFilter
}

// CompletionCall records one call to MockTaskStore.AddCompletion.
type CompletionCall struct {
	UserID uuid.UUID
	TaskID uuid.UUID
	Day    domain.Date
}

// MockTaskStore implements store.TaskStore for testing. By default Find
// returns the user's entry in Tasks unfiltered, leaving the selection logic
// to the caller.
type MockTaskStore struct {
	// Custom behavior functions
	FindFn          func(ctx context.Context, userID uuid.UUID, filter store.TaskFilter) ([]domain.Task, error)
	GetByIDFn       func(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error)
	AddCompletionFn func(ctx context.Context, userID, taskID uuid.UUID, day domain.Date) error

	// Default response values
	Tasks map[uuid.UUID][]domain.Task
	Err   error

	mu              sync.Mutex
	findCalls       []FindCall
	completionCalls []CompletionCall
	txCount         int
}

var _ store.TaskStore = (*MockTaskStore)(nil)

// Find implements store.TaskStore
func (m *MockTaskStore) Find(ctx context.Context, userID uuid.UUID, filter store.TaskFilter) ([]domain.Task, error) {
	m.mu.Lock()
	m.findCalls = append(m.findCalls, FindCall{UserID: userID, Filter: filter})
	m.mu.Unlock()

	if m.FindFn != nil {
		return m.FindFn(ctx, userID, filter)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	if filter.Empty() {
		return nil, store.ErrInvalidFilter
	}
	src := m.Tasks[userID]
	tasks := make([]domain.Task, len(src))
	copy(tasks, src)
	return tasks, nil
}

// GetByID implements store.TaskStore
func (m *MockTaskStore) GetByID(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, userID, taskID)
	}
	if m.Err != nil {
		return nil, m.Err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.Tasks[userID] {
		if t.ID == taskID {
			return &t, nil
		}
	}
	return nil, store.ErrTaskNotFound
}

// AddCompletion implements store.TaskStore. By default it ticks the task in
// Tasks so later reads observe the completion.
func (m *MockTaskStore) AddCompletion(ctx context.Context, userID, taskID uuid.UUID, day domain.Date) error {
	m.mu.Lock()
	m.completionCalls = append(m.completionCalls, CompletionCall{UserID: userID, TaskID: taskID, Day: day})
	m.mu.Unlock()

	if m.AddCompletionFn != nil {
		return m.AddCompletionFn(ctx, userID, taskID, day)
	}
	if m.Err != nil {
		return m.Err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	tasks := m.Tasks[userID]
	for i := range tasks {
		if tasks[i].ID == taskID {
			tasks[i].Tick(day)
			return nil
		}
	}
	return store.ErrTaskNotFound
}

// WithTx implements store.TaskStore. The mock has no transactional state, so
// it returns itself.
func (m *MockTaskStore) WithTx(_ *sql.Tx) store.TaskStore {
	m.mu.Lock()
	m.txCount++
	m.mu.Unlock()
	return m
}

// FindCalls returns the recorded Find calls.
func (m *MockTaskStore) FindCalls() []FindCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]FindCall(nil), m.findCalls...)
}

// CompletionCalls returns the recorded AddCompletion calls.
func (m *MockTaskStore) CompletionCalls() []CompletionCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]CompletionCall(nil), m.completionCalls...)
}

// WithTxCalls returns how many times WithTx was called.
func (m *MockTaskStore) WithTxCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.txCount
}
