package model

import "gorm.io/gorm"

// Doctor represents a doctor profile
// @Description Doctor information
type Doctor struct {
	gorm.Model
	FullName        string `json:"full_name" gorm:"column:full_name;type:varchar(100);not null" example:"Dr. John Smith"`
	Email           string `json:"email" gorm:"column:email;type:varchar(191);uniqueIndex" example:"dr.john@example.com"`
	Specialization  string `json:"specialization" gorm:"column:specialization;type:varchar(100)" example:"Cardiology"`
	LicenseNumber   string `json:"license_number" gorm:"column:license_number;type:varchar(64)" example:"MD-48211"`
	PhoneNumber     string `json:"phone_number" gorm:"column:phone_number;type:varchar(32)" example:"081234567890"`
	// ConsultationFee is stored in the smallest currency unit.
	ConsultationFee int64 `json:"consultation_fee" gorm:"column:consultation_fee" example:"15000"`
}
