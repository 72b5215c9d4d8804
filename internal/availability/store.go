package availability

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Store defines the interface for availability window storage.
type Store interface {
	// Set upserts the single window for a doctor/date.
	Set(ctx context.Context, w Window) error
	// ReplaceSchedule atomically clears all windows for dates >= fromDate and
	// inserts the given windows. Used for bulk re-declaration of the rolling
	// schedule.
	ReplaceSchedule(ctx context.Context, doctorID, fromDate string, windows []Window) error
	// ClearFuture deletes all windows for dates >= fromDate.
	ClearFuture(ctx context.Context, doctorID, fromDate string) error
	// List returns windows for dates >= fromDate, ordered by date ascending.
	List(ctx context.Context, doctorID, fromDate string) ([]Window, error)
	// WindowFor returns the window for a doctor/date, or nil when none is
	// declared.
	WindowFor(ctx context.Context, doctorID, date string) (*Window, error)
}

// InMemoryStore is a stub implementation of Store for tests and development.
type InMemoryStore struct {
	mu    sync.RWMutex
	byDoc map[string]map[string]Window // doctorID -> date -> window
}

// NewInMemoryStore creates an empty in-memory availability store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{byDoc: make(map[string]map[string]Window)}
}

// Set upserts the window for a doctor/date in memory.
func (s *InMemoryStore) Set(ctx context.Context, w Window) error {
	if err := w.Validate(); err != nil {
		return err
	}
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	dates, ok := s.byDoc[w.DoctorID]
	if !ok {
		dates = make(map[string]Window)
		s.byDoc[w.DoctorID] = dates
	}
	dates[w.Date] = w
	return nil
}

// ReplaceSchedule clears future windows and inserts the replacements.
func (s *InMemoryStore) ReplaceSchedule(ctx context.Context, doctorID, fromDate string, windows []Window) error {
	for i := range windows {
		if err := windows[i].Validate(); err != nil {
			return err
		}
	}
	if err := s.ClearFuture(ctx, doctorID, fromDate); err != nil {
		return err
	}
	for _, w := range windows {
		w.DoctorID = doctorID
		if err := s.Set(ctx, w); err != nil {
			return err
		}
	}
	return nil
}

// ClearFuture deletes windows on or after fromDate.
func (s *InMemoryStore) ClearFuture(ctx context.Context, doctorID, fromDate string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for date := range s.byDoc[doctorID] {
		if date >= fromDate {
			delete(s.byDoc[doctorID], date)
		}
	}
	return nil
}

// List returns future windows ordered by date ascending.
func (s *InMemoryStore) List(ctx context.Context, doctorID, fromDate string) ([]Window, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Window
	for date, w := range s.byDoc[doctorID] {
		if date >= fromDate {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

// WindowFor returns the window for a doctor/date, or nil when absent.
func (s *InMemoryStore) WindowFor(ctx context.Context, doctorID, date string) (*Window, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.byDoc[doctorID][date]
	if !ok {
		return nil, nil
	}
	return &w, nil
}

var _ Store = (*InMemoryStore)(nil)
