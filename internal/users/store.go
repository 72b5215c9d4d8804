package users

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Store defines the interface for user account storage.
type Store interface {
	// CreatePatientUser inserts a patient user and its empty patient profile
	// in one transaction, returning the new user.
	CreatePatientUser(ctx context.Context, req *RegisterRequest, passwordHash string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
}

// InMemoryStore is a stub implementation of Store for tests and development.
type InMemoryStore struct {
	mu     sync.RWMutex
	byID   map[string]*User
	byName map[string]*User
}

// NewInMemoryStore creates an empty in-memory user store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byID:   make(map[string]*User),
		byName: make(map[string]*User),
	}
}

// CreatePatientUser registers a patient account in memory.
func (s *InMemoryStore) CreatePatientUser(ctx context.Context, req *RegisterRequest, passwordHash string) (*User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byName[req.Username]; exists {
		return nil, ErrDuplicateUsername
	}
	user := &User{
		ID:           uuid.NewString(),
		Username:     req.Username,
		PasswordHash: passwordHash,
		Role:         RolePatient,
		Name:         req.Name,
		ContactInfo:  req.Contact,
	}
	s.byID[user.ID] = user
	s.byName[user.Username] = user
	return user, nil
}

// Seed inserts a pre-built user, used by tests to set up doctors and admins.
func (s *InMemoryStore) Seed(user *User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	s.byID[user.ID] = user
	s.byName[user.Username] = user
}

// GetByUsername looks a user up by handle.
func (s *InMemoryStore) GetByUsername(ctx context.Context, username string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.byName[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// GetByID looks a user up by id.
func (s *InMemoryStore) GetByID(ctx context.Context, id string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return user, nil
}
