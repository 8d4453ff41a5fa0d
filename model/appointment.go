package model

import (
	"time"

	"gorm.io/gorm"
)

// AppointmentStatus enumerates the lifecycle of an appointment.
type AppointmentStatus string

const (
	AppointmentScheduled AppointmentStatus = "scheduled"
	AppointmentCompleted AppointmentStatus = "completed"
	AppointmentCancelled AppointmentStatus = "cancelled"
	AppointmentNoShow    AppointmentStatus = "no-show"
)

// IsValid reports whether s is a known appointment status.
func (s AppointmentStatus) IsValid() bool {
	switch s {
	case AppointmentScheduled, AppointmentCompleted, AppointmentCancelled, AppointmentNoShow:
		return true
	}
	return false
}

// IsTerminal reports whether no further status transition is allowed.
func (s AppointmentStatus) IsTerminal() bool {
	return s == AppointmentCompleted || s == AppointmentCancelled || s == AppointmentNoShow
}

// Appointment links one patient to one doctor at a scheduled time.
// @Description Appointment information
type Appointment struct {
	gorm.Model
	PatientID   uint              `json:"patient_id" gorm:"column:patient_id;not null;index" example:"1"`
	DoctorID    uint              `json:"doctor_id" gorm:"column:doctor_id;not null;index" example:"1"`
	ScheduledAt time.Time         `json:"scheduled_at" gorm:"column:scheduled_at;not null"`
	Reason      string            `json:"reason" gorm:"column:reason;type:varchar(255)" example:"Back pain"`
	Status      AppointmentStatus `json:"status" gorm:"column:status;type:varchar(16);not null;default:scheduled" example:"scheduled"`

	Patient Patient `json:"-" gorm:"foreignKey:PatientID;constraint:OnDelete:CASCADE"`
	Doctor  Doctor  `json:"-" gorm:"foreignKey:DoctorID;constraint:OnDelete:CASCADE"`
}
