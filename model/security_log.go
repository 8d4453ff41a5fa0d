package model

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SecurityLog is one row of the clinic API's audit trail: logins and
// lockouts, password changes, and per-endpoint call records. Rows are
// written best-effort by the security logger and must never block the
// request that produced them.
type SecurityLog struct {
	gorm.Model
	EventType string `json:"event_type" gorm:"column:event_type;type:varchar(32);index"`
	// UserID is stored as text because some events (failed logins for
	// unknown emails, rate limiting) have no account to reference.
	UserID    string `json:"user_id" gorm:"column:user_id;type:varchar(20);index"`
	Email     string `json:"email" gorm:"column:email;type:varchar(191);index"`
	IP        string `json:"ip" gorm:"column:ip;type:varchar(45)"`
	// Location is "City/Country" resolved from the GeoIP database, or
	// empty when the address could not be resolved.
	Location  string         `json:"location" gorm:"column:location;type:varchar(128)"`
	UserAgent string         `json:"user_agent" gorm:"column:user_agent;type:varchar(512)"`
	Message   string         `json:"message" gorm:"column:message;type:text"`
	Details   datatypes.JSON `json:"details" gorm:"column:details;type:json"`
}
