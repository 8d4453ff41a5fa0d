package model

import "gorm.io/gorm"

// Patient represents a patient profile
// @Description Patient information
type Patient struct {
	gorm.Model
	// MedicalRecordNumber is generated once at creation and never reused.
	MedicalRecordNumber string `json:"medical_record_number" gorm:"column:medical_record_number;type:varchar(36);uniqueIndex"`
	FullName            string `json:"full_name" gorm:"column:full_name;type:varchar(100);not null" example:"John Doe"`
	Gender              string `json:"gender" gorm:"column:gender;type:varchar(16)" example:"Male"`
	DateOfBirth         string `json:"date_of_birth" gorm:"column:date_of_birth;type:varchar(10)" example:"1990-01-01"`
	PhoneNumber         string `json:"phone_number" gorm:"column:phone_number;type:varchar(32)" example:"081234567890"`
	Address             string `json:"address" gorm:"column:address;type:varchar(255)" example:"123 Main St"`
	HealthHistory       string `json:"health_history" gorm:"column:health_history;type:text"`
}
