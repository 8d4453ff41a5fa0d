package model

import (
	"time"

	"gorm.io/gorm"
)

// InvoiceStatus enumerates the payment state of an invoice.
type InvoiceStatus string

const (
	InvoiceUnpaid InvoiceStatus = "unpaid"
	InvoicePaid   InvoiceStatus = "paid"
)

// Invoice bills one patient for one appointment.
// @Description Invoice information
type Invoice struct {
	gorm.Model
	// Number is a generated UUID used as the externally visible invoice id.
	Number        string        `json:"number" gorm:"column:number;type:varchar(36);uniqueIndex;not null"`
	PatientID     uint          `json:"patient_id" gorm:"column:patient_id;not null;index" example:"1"`
	AppointmentID uint          `json:"appointment_id" gorm:"column:appointment_id;not null;index" example:"1"`
	// Amount is stored in the smallest currency unit.
	Amount   int64         `json:"amount" gorm:"column:amount;not null" example:"15000"`
	Status   InvoiceStatus `json:"status" gorm:"column:status;type:varchar(8);not null;default:unpaid" example:"unpaid"`
	IssuedAt time.Time     `json:"issued_at" gorm:"column:issued_at;not null"`
	PaidAt   *time.Time    `json:"paid_at" gorm:"column:paid_at"`

	Patient     Patient     `json:"-" gorm:"foreignKey:PatientID;constraint:OnDelete:CASCADE"`
	Appointment Appointment `json:"-" gorm:"foreignKey:AppointmentID;constraint:OnDelete:CASCADE"`
}
