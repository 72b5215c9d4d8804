package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborview/hms/pkg/logging"
)

func TestDashboardReturnsCounts(t *testing.T) {
	handler := NewHandler(StaticCounts{Doctors: 3, Patients: 12, Appointments: 40}, logging.Default())

	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	w := httptest.NewRecorder()
	handler.Dashboard(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var counts Counts
	require.NoError(t, json.NewDecoder(w.Body).Decode(&counts))
	assert.Equal(t, 3, counts.Doctors)
	assert.Equal(t, 12, counts.Patients)
	assert.Equal(t, 40, counts.Appointments)
}

func TestPostgresCountsSingleQuery(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	source := NewPostgresCounts(mock)

	mock.ExpectQuery("SELECT").
		WillReturnRows(pgxmock.NewRows([]string{"doctors", "patients", "appointments"}).AddRow(2, 5, 9))

	counts, err := source.Counts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &Counts{Doctors: 2, Patients: 5, Appointments: 9}, counts)
}
