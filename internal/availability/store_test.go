package availability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindowValidate(t *testing.T) {
	tests := []struct {
		name   string
		window Window
		wantOK bool
	}{
		{"valid", Window{Date: "2024-01-10", StartTime: "09:00", EndTime: "12:00"}, true},
		{"reversed bounds", Window{Date: "2024-01-10", StartTime: "12:00", EndTime: "09:00"}, false},
		{"equal bounds", Window{Date: "2024-01-10", StartTime: "09:00", EndTime: "09:00"}, false},
		{"bad date", Window{Date: "10/01/2024", StartTime: "09:00", EndTime: "12:00"}, false},
		{"bad time", Window{Date: "2024-01-10", StartTime: "9am", EndTime: "12:00"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.window.Validate()
			if tt.wantOK {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidWindow)
			}
		})
	}
}

func TestWindowContains(t *testing.T) {
	w := Window{StartTime: "09:00", EndTime: "12:00"}

	assert.True(t, w.Contains("09:00"), "start boundary is inclusive")
	assert.True(t, w.Contains("12:00"), "end boundary is inclusive")
	assert.True(t, w.Contains("10:30"))
	assert.False(t, w.Contains("08:59"))
	assert.False(t, w.Contains("13:00"))
}

func TestSetReplacesWindowForDate(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, Window{DoctorID: "doc-1", Date: "2024-01-10", StartTime: "09:00", EndTime: "12:00"}))
	require.NoError(t, store.Set(ctx, Window{DoctorID: "doc-1", Date: "2024-01-10", StartTime: "14:00", EndTime: "17:00"}))

	w, err := store.WindowFor(ctx, "doc-1", "2024-01-10")
	require.NoError(t, err)
	require.NotNil(t, w)
	assert.Equal(t, "14:00", w.StartTime, "second declaration replaces the first")
	assert.Equal(t, "17:00", w.EndTime)
}

func TestWindowForAbsentDate(t *testing.T) {
	store := NewInMemoryStore()

	w, err := store.WindowFor(context.Background(), "doc-1", "2024-01-10")
	require.NoError(t, err)
	assert.Nil(t, w)
}

func TestReplaceScheduleClearsFutureOnly(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, Window{DoctorID: "doc-1", Date: "2024-01-08", StartTime: "09:00", EndTime: "12:00"}))
	require.NoError(t, store.Set(ctx, Window{DoctorID: "doc-1", Date: "2024-01-11", StartTime: "09:00", EndTime: "12:00"}))

	err := store.ReplaceSchedule(ctx, "doc-1", "2024-01-10", []Window{
		{Date: "2024-01-10", StartTime: "08:00", EndTime: "16:00"},
		{Date: "2024-01-12", StartTime: "10:00", EndTime: "13:00"},
	})
	require.NoError(t, err)

	windows, err := store.List(ctx, "doc-1", "2024-01-01")
	require.NoError(t, err)
	require.Len(t, windows, 3)
	assert.Equal(t, "2024-01-08", windows[0].Date, "past window untouched")
	assert.Equal(t, "2024-01-10", windows[1].Date)
	assert.Equal(t, "2024-01-12", windows[2].Date)
}

func TestListOrdersByDateAscending(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	for _, date := range []string{"2024-01-12", "2024-01-10", "2024-01-11"} {
		require.NoError(t, store.Set(ctx, Window{DoctorID: "doc-1", Date: date, StartTime: "09:00", EndTime: "12:00"}))
	}

	windows, err := store.List(ctx, "doc-1", "2024-01-10")
	require.NoError(t, err)
	require.Len(t, windows, 3)
	assert.Equal(t, "2024-01-10", windows[0].Date)
	assert.Equal(t, "2024-01-11", windows[1].Date)
	assert.Equal(t, "2024-01-12", windows[2].Date)
}

func TestReplaceScheduleRejectsInvalidWindow(t *testing.T) {
	store := NewInMemoryStore()

	err := store.ReplaceSchedule(context.Background(), "doc-1", "2024-01-10", []Window{
		{Date: "2024-01-10", StartTime: "12:00", EndTime: "09:00"},
	})
	assert.ErrorIs(t, err, ErrInvalidWindow)
}
