package doctors

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
)

func TestCreateDoctorSeedsAvailability(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	store := NewPostgresStore(mock)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO users").
		WithArgs(pgxmock.AnyArg(), "drgrey", "hashed", "Dr. Grey", "grey@example.com").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO doctors").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), "Surgery", (*string)(nil)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	for _, date := range []string{"2024-03-01", "2024-03-02"} {
		mock.ExpectExec("INSERT INTO availability").
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), date, "09:00", "17:00").
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}
	mock.ExpectCommit()
	mock.ExpectRollback()

	doc, err := store.CreateDoctor(context.Background(), &CreateRequest{
		Username:       "drgrey",
		Password:       "pw",
		Name:           "Dr. Grey",
		Contact:        "grey@example.com",
		Specialization: "Surgery",
		DefaultShift:   &Shift{StartTime: "09:00", EndTime: "17:00"},
	}, "hashed", []string{"2024-03-01", "2024-03-02"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if doc.ID == "" || doc.UserID == "" {
		t.Error("expected generated ids")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateDoctorMapsUniqueViolation(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	store := NewPostgresStore(mock)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO users").
		WithArgs(pgxmock.AnyArg(), "dupe", "hashed", "", "").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"})
	mock.ExpectRollback()

	_, err = store.CreateDoctor(context.Background(), &CreateRequest{Username: "dupe", Password: "pw"}, "hashed", nil)
	if !errors.Is(err, ErrDuplicateUsername) {
		t.Fatalf("expected ErrDuplicateUsername, got %v", err)
	}
}

func TestDeleteRemovesUserRow(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	store := NewPostgresStore(mock)

	mock.ExpectExec("DELETE FROM users").
		WithArgs("doc-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	if err := store.Delete(context.Background(), "doc-1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
}

func TestDeleteUnknownDoctor(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	store := NewPostgresStore(mock)

	mock.ExpectExec("DELETE FROM users").
		WithArgs("missing").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	if err := store.Delete(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListWithSpecializationFilter(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	store := NewPostgresStore(mock)

	rows := pgxmock.NewRows([]string{"id", "user_id", "name", "contact_info", "specialization", "department_id"}).
		AddRow("doc-1", "user-1", "Dr. Adams", "adams@example.com", "Cardiology", (*string)(nil))
	mock.ExpectQuery("SELECT d.id, d.user_id").
		WithArgs("%cardio%").
		WillReturnRows(rows)

	out, err := store.List(context.Background(), "cardio")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(out) != 1 || out[0].Specialization != "Cardiology" {
		t.Fatalf("unexpected result: %+v", out)
	}
}
