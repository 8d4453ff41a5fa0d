package model

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func setupInvoiceTestDB(t *testing.T) *gorm.DB {
	return setupTestDB(t, "invoice", &Patient{}, &Doctor{}, &Appointment{}, &Invoice{})
}

func mustCreateAppointment(db *gorm.DB, t *testing.T, patientID, doctorID uint) Appointment {
	t.Helper()
	appt := Appointment{
		PatientID:   patientID,
		DoctorID:    doctorID,
		ScheduledAt: time.Now().Add(time.Hour),
		Status:      AppointmentScheduled,
	}
	if err := db.Create(&appt).Error; err != nil {
		t.Fatalf("failed to create appointment: %v", err)
	}
	return appt
}

func TestInvoiceModel_Create(t *testing.T) {
	db := setupInvoiceTestDB(t)

	patient := mustCreatePatient(db, t, "John Doe")
	doctor := mustCreateDoctor(db, t, "Dr. Smith")
	appt := mustCreateAppointment(db, t, patient.ID, doctor.ID)

	inv := Invoice{
		Number:        uuid.NewString(),
		PatientID:     patient.ID,
		AppointmentID: appt.ID,
		Amount:        15000,
		Status:        InvoiceUnpaid,
		IssuedAt:      time.Now(),
	}

	err := db.Create(&inv).Error
	assert.NoError(t, err)
	assert.NotZero(t, inv.ID)
	assert.Nil(t, inv.PaidAt)
}

func TestInvoiceModel_UniqueNumber(t *testing.T) {
	db := setupInvoiceTestDB(t)

	patient := mustCreatePatient(db, t, "Jane Doe")
	doctor := mustCreateDoctor(db, t, "Dr. Jones")
	appt := mustCreateAppointment(db, t, patient.ID, doctor.ID)

	number := uuid.NewString()
	inv1 := Invoice{Number: number, PatientID: patient.ID, AppointmentID: appt.ID, Amount: 100, Status: InvoiceUnpaid, IssuedAt: time.Now()}
	assert.NoError(t, db.Create(&inv1).Error)

	inv2 := Invoice{Number: number, PatientID: patient.ID, AppointmentID: appt.ID, Amount: 200, Status: InvoiceUnpaid, IssuedAt: time.Now()}
	assert.Error(t, db.Create(&inv2).Error)
}

func TestInvoiceModel_MarkPaid(t *testing.T) {
	db := setupInvoiceTestDB(t)

	patient := mustCreatePatient(db, t, "Pay Er")
	doctor := mustCreateDoctor(db, t, "Dr. Cash")
	appt := mustCreateAppointment(db, t, patient.ID, doctor.ID)

	inv := Invoice{Number: uuid.NewString(), PatientID: patient.ID, AppointmentID: appt.ID, Amount: 5000, Status: InvoiceUnpaid, IssuedAt: time.Now()}
	assert.NoError(t, db.Create(&inv).Error)

	now := time.Now()
	inv.Status = InvoicePaid
	inv.PaidAt = &now
	assert.NoError(t, db.Save(&inv).Error)

	var found Invoice
	assert.NoError(t, db.First(&found, inv.ID).Error)
	assert.Equal(t, InvoicePaid, found.Status)
	assert.NotNil(t, found.PaidAt)
}
