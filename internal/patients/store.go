package patients

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Store defines the interface for patient storage.
type Store interface {
	// List returns all patients, name ascending, optionally narrowed by a
	// case-insensitive search across name and contact info.
	List(ctx context.Context, search string) ([]Patient, error)
	Get(ctx context.Context, id string) (*Patient, error)
	Update(ctx context.Context, id string, req *UpdateRequest) error
	// Delete removes the patient's user row; the profile and appointments go
	// with it by cascade.
	Delete(ctx context.Context, id string) error
	// IDForUser resolves a session user id to the patient profile id.
	IDForUser(ctx context.Context, userID string) (string, error)
}

// InMemoryStore is a stub implementation of Store for tests and development.
type InMemoryStore struct {
	mu     sync.RWMutex
	byID   map[string]*Patient
	byUser map[string]string
}

// NewInMemoryStore creates an empty in-memory patient store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byID:   make(map[string]*Patient),
		byUser: make(map[string]string),
	}
}

// Add seeds a patient, generating ids when absent. Test helper.
func (s *InMemoryStore) Add(p Patient) Patient {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.UserID == "" {
		p.UserID = uuid.NewString()
	}
	stored := p
	s.byID[p.ID] = &stored
	s.byUser[p.UserID] = p.ID
	return p
}

// List returns patients, optionally filtered by a search term.
func (s *InMemoryStore) List(ctx context.Context, search string) ([]Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	term := strings.ToLower(search)
	var out []Patient
	for _, p := range s.byID {
		if term != "" &&
			!strings.Contains(strings.ToLower(p.Name), term) &&
			!strings.Contains(strings.ToLower(p.ContactInfo), term) {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Get returns a patient by id.
func (s *InMemoryStore) Get(ctx context.Context, id string) (*Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	copy := *p
	return &copy, nil
}

// Update edits the patient's identity and profile fields.
func (s *InMemoryStore) Update(ctx context.Context, id string, req *UpdateRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	p.Name = req.Name
	p.ContactInfo = req.Contact
	p.MedicalHistory = req.MedicalHistory
	return nil
}

// Delete removes the patient.
func (s *InMemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	delete(s.byUser, p.UserID)
	delete(s.byID, id)
	return nil
}

// IDForUser resolves a user id to its patient profile id.
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
