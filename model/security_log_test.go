package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func TestSecurityLogModel_Create(t *testing.T) {
	db := setupTestDB(t, "securitylog", &SecurityLog{})

	details, err := json.Marshal(map[string]interface{}{
		"method": "POST",
		"path":   "/login",
		"status": 401,
	})
	assert.NoError(t, err)

	entry := SecurityLog{
		EventType: "LOGIN_FAILURE",
		Email:     "nobody@example.com",
		IP:        "203.0.113.7",
		UserAgent: "curl/8.0",
		Message:   "Login failed: user not found",
		Details:   datatypes.JSON(details),
	}
	assert.NoError(t, db.Create(&entry).Error)
	assert.NotZero(t, entry.ID)

	// Events without an account leave UserID empty.
	var found SecurityLog
	assert.NoError(t, db.First(&found, entry.ID).Error)
	assert.Empty(t, found.UserID)
	assert.Equal(t, "LOGIN_FAILURE", found.EventType)

	var decoded map[string]interface{}
	assert.NoError(t, json.Unmarshal(found.Details, &decoded))
	assert.Equal(t, "/login", decoded["path"])
}

func TestSecurityLogModel_FilterByEventType(t *testing.T) {
	db := setupTestDB(t, "securitylog_filter", &SecurityLog{})

	for _, et := range []string{"LOGIN_SUCCESS", "LOGIN_FAILURE", "LOGIN_FAILURE"} {
		assert.NoError(t, db.Create(&SecurityLog{EventType: et, UserID: "1"}).Error)
	}

	var failures []SecurityLog
	assert.NoError(t, db.Where("event_type = ?", "LOGIN_FAILURE").Find(&failures).Error)
	assert.Len(t, failures, 2)
}
