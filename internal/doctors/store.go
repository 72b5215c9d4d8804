package doctors

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Store defines the interface for doctor storage.
type Store interface {
	// CreateDoctor creates the user and doctor rows in one transaction,
	// seeding availability for shiftDates when the request carries a default
	// shift. A taken username fails with ErrDuplicateUsername.
	CreateDoctor(ctx context.Context, req *CreateRequest, passwordHash string, shiftDates []string) (*Doctor, error)
	// List returns all doctors, name ascending, optionally filtered by a
	// case-insensitive specialization substring.
	List(ctx context.Context, specialization string) ([]Doctor, error)
	Get(ctx context.Context, id string) (*Doctor, error)
	Update(ctx context.Context, id string, req *UpdateRequest) error
	// Delete removes the doctor's user row; the profile, availability and
	// appointments go with it by cascade.
	Delete(ctx context.Context, id string) error
	// IDForUser resolves a session user id to the doctor profile id.
	IDForUser(ctx context.Context, userID string) (string, error)
}

// InMemoryStore is a stub implementation of Store for tests and development.
type InMemoryStore struct {
	mu     sync.RWMutex
	byID   map[string]*Doctor
	byUser map[string]string
	names  map[string]bool // usernames, for duplicate detection

	// SeededShiftDates records the dates handed to CreateDoctor; tests
	// inspect it since the in-memory store has no availability table.
	SeededShiftDates map[string][]string
}

// NewInMemoryStore creates an empty in-memory doctor store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byID:             make(map[string]*Doctor),
		byUser:           make(map[string]string),
		names:            make(map[string]bool),
		SeededShiftDates: make(map[string][]string),
	}
}

// CreateDoctor creates a doctor with a fresh user identity.
func (s *InMemoryStore) CreateDoctor(ctx context.Context, req *CreateRequest, passwordHash string, shiftDates []string) (*Doctor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.names[req.Username] {
		return nil, ErrDuplicateUsername
	}
	s.names[req.Username] = true

	doc := &Doctor{
		ID:             uuid.NewString(),
		UserID:         uuid.NewString(),
		Name:           req.Name,
		ContactInfo:    req.Contact,
		Specialization: req.Specialization,
		DepartmentID:   req.DepartmentID,
	}
	s.byID[doc.ID] = doc
	s.byUser[doc.UserID] = doc.ID
	if req.DefaultShift != nil {
		s.SeededShiftDates[doc.ID] = shiftDates
	}
	copy := *doc
	return &copy, nil
}

// List returns doctors, optionally filtered by specialization substring.
func (s *InMemoryStore) List(ctx context.Context, specialization string) ([]Doctor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	filter := strings.ToLower(specialization)
	var out []Doctor
	for _, doc := range s.byID {
		if filter != "" && !strings.Contains(strings.ToLower(doc.Specialization), filter) {
			continue
		}
		out = append(out, *doc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Get returns a doctor by id.
func (s *InMemoryStore) Get(ctx context.Context, id string) (*Doctor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	copy := *doc
	return &copy, nil
}

// Update edits the doctor's identity and profile fields.
func (s *InMemoryStore) Update(ctx context.Context, id string, req *UpdateRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	doc.Name = req.Name
	doc.ContactInfo = req.Contact
	doc.Specialization = req.Specialization
	doc.DepartmentID = req.DepartmentID
	return nil
}

// Delete removes the doctor.
func (s *InMemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	delete(s.byUser, doc.UserID)
	delete(s.byID, id)
	return nil
}

// IDForUser resolves a user id to its doctor profile id.
func (s *InMemoryStore) IDForUser(ctx context.Context, userID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byUser[userID]
	if !ok {
		return "", ErrNotFound
	}
	return id, nil
}

var _ Store = (*InMemoryStore)(nil)
