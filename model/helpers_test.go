package model

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB creates an in-memory SQLite database for testing with the
// specified models migrated. The database name is uniquified using the
// current Unix nanosecond timestamp to prevent cross-test contamination when
// tests run in the same process.
func setupTestDB(t *testing.T, name string, models ...interface{}) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:testdb_%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if len(models) > 0 {
		if err := db.AutoMigrate(models...); err != nil {
			t.Fatalf("failed to auto-migrate models: %v", err)
		}
	}

	return db
}

// mustCreatePatient inserts a minimal patient row for relation tests.
func mustCreatePatient(db *gorm.DB, t *testing.T, name string) Patient {
	t.Helper()
	p := Patient{
		MedicalRecordNumber: fmt.Sprintf("mrn-%d", time.Now().UnixNano()),
		FullName:            name,
	}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("failed to create patient: %v", err)
	}
	return p
}

// mustCreateDoctor inserts a minimal doctor row for relation tests.
func mustCreateDoctor(db *gorm.DB, t *testing.T, name string) Doctor {
	t.Helper()
	d := Doctor{
		FullName: name,
		Email:    fmt.Sprintf("doc+%d@example.com", time.Now().UnixNano()),
	}
	if err := db.Create(&d).Error; err != nil {
		t.Fatalf("failed to create doctor: %v", err)
	}
	return d
}
