package repositories

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

// Error-path coverage: driver failures must surface to the caller instead of
// being folded into the not-found case.
func TestGetByEmailPropagatesDriverError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM developers WHERE email = ?").
		WithArgs("dev@example.com").
		WillReturnError(errors.New("disk I/O error"))

	repo := NewDeveloperRepository(db)
	dev, err := repo.GetByEmail("dev@example.com")
	if err == nil {
		t.Fatal("Expected driver error to propagate")
	}
	if dev != nil {
		t.Errorf("Expected nil developer on error, got %+v", dev)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unfulfilled expectations: %v", err)
	}
}

func TestIsLinkedPropagatesDriverError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT COUNT(.+) FROM developer_organizations").
		WithArgs("dev_1", "org_1").
		WillReturnError(errors.New("connection reset"))

	repo := NewOrganizationRepository(db)
	linked, err := repo.IsLinked("dev_1", "org_1")
	if err == nil {
		t.Fatal("Expected driver error to propagate")
	}
	if linked {
		t.Error("Expected linked=false on error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unfulfilled expectations: %v", err)
	}
}
