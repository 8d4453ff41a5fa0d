package endpoint

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/clinicore/clinicore/model"
	"github.com/clinicore/clinicore/util"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestRegister_Success(t *testing.T) {
	r, db := setupEndpointTest(t)

	w := performRequest(r, http.MethodPost, "/register", gin.H{
		"username": "alice",
		"name":     "  Alice   Doe ",
		"email":    "alice@example.com",
		"password": "Str0ng!Pass",
	}, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Status)
	assert.Equal(t, "account created successfully", resp.Message)

	var user model.User
	assert.NoError(t, db.First(&user, "email = ?", "alice@example.com").Error)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "Alice Doe", user.Name)

	// The stored credential must be a hash, never the submitted password.
	assert.True(t, util.IsArgon2Hash(user.Password))
	assert.NotEqual(t, "Str0ng!Pass", user.Password)
	assert.NotEmpty(t, user.PasswordSalt)

	var role model.Role
	assert.NoError(t, db.First(&role, user.RoleID).Error)
	assert.Equal(t, model.RolePatient, role.Name)
}

func TestRegister_MissingFields(t *testing.T) {
	r, db := setupEndpointTest(t)

	cases := []gin.H{
		{"email": "bob@example.com", "password": "Str0ng!Pass"}, // no username
		{"username": "bob", "password": "Str0ng!Pass"},          // no email
		{"username": "bob", "email": "bob@example.com"},         // no password
		{},
	}

	for _, body := range cases {
		w := performRequest(r, http.MethodPost, "/register", body, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		resp := decodeResponse(t, w)
		assert.False(t, resp.Status)
		assert.Equal(t, "Please provide all required credentials", resp.Message)
	}

	var count int64
	db.Model(&model.User{}).Count(&count)
	assert.Zero(t, count)
}

func TestRegister_WeakPasswordRejected(t *testing.T) {
	r, db := setupEndpointTest(t)

	w := performRequest(r, http.MethodPost, "/register", gin.H{
		"username": "weak",
		"email":    "weak@example.com",
		"password": "password",
	}, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var count int64
	db.Model(&model.User{}).Count(&count)
	assert.Zero(t, count)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	r, db := setupEndpointTest(t)

	body := gin.H{
		"username": "carol",
		"email":    "carol@example.com",
		"password": "Str0ng!Pass",
	}

	w := performRequest(r, http.MethodPost, "/register", body, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = performRequest(r, http.MethodPost, "/register", body, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	resp := decodeResponse(t, w)
	assert.False(t, resp.Status)
	assert.Equal(t, "Email already registered", resp.Message)

	var count int64
	db.Model(&model.User{}).Where("email = ?", "carol@example.com").Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestRegister_DuplicateInsertMapsToConflict(t *testing.T) {
	_, db := setupEndpointTest(t)

	var role model.Role
	assert.NoError(t, db.First(&role, "name = ?", model.RolePatient).Error)

	first := model.User{Username: "racer1", Email: "race@example.com", Password: "hash", RoleID: role.ID}
	assert.NoError(t, db.Create(&first).Error)

	// A concurrent register that passed the availability pre-check lands
	// here: the insert itself trips the unique index.
	second := model.User{Username: "racer2", Email: "race@example.com", Password: "hash", RoleID: role.ID}
	err := db.Create(&second).Error
	assert.Error(t, err)
	assert.True(t, isDuplicateKeyError(err))

	assert.False(t, isDuplicateKeyError(nil))
	assert.False(t, isDuplicateKeyError(gorm.ErrRecordNotFound))
}

func TestLogin_Success(t *testing.T) {
	r, db := setupEndpointTest(t)

	w := performRequest(r, http.MethodPost, "/register", gin.H{
		"username": "dave",
		"email":    "dave@example.com",
		"password": "Str0ng!Pass",
	}, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = performRequest(r, http.MethodPost, "/login", gin.H{
		"email":    "dave@example.com",
		"password": "Str0ng!Pass",
	}, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Status)
	assert.Equal(t, "login successful", resp.Message)
	assert.NotEmpty(t, resp.Token)

	var login LoginResponse
	assert.NoError(t, json.Unmarshal(resp.Data, &login))
	assert.Equal(t, model.RolePatient, login.Role)
	assert.NotZero(t, login.UserID)

	var session model.Session
	assert.NoError(t, db.First(&session, "session_token = ?", resp.Token).Error)
	assert.Equal(t, login.UserID, session.UserID)
	assert.True(t, session.ExpiresAt.After(time.Now()))
}

func TestLogin_WrongPassword(t *testing.T) {
	r, db := setupEndpointTest(t)

	w := performRequest(r, http.MethodPost, "/register", gin.H{
		"username": "erin",
		"email":    "erin@example.com",
		"password": "Str0ng!Pass",
	}, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = performRequest(r, http.MethodPost, "/login", gin.H{
		"email":    "erin@example.com",
		"password": "Wr0ng!Pass",
	}, nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	resp := decodeResponse(t, w)
	assert.False(t, resp.Status)
	assert.Equal(t, "Invalid email or password", resp.Message)
	assert.Empty(t, resp.Token)

	// The failure must not create a session or change the stored user row
	// beyond the failed-attempt counter.
	var sessions int64
	db.Model(&model.Session{}).Count(&sessions)
	assert.Zero(t, sessions)

	var user model.User
	assert.NoError(t, db.First(&user, "email = ?", "erin@example.com").Error)
	assert.Equal(t, 1, user.FailedAttempts)
}

func TestLogin_UnknownEmail(t *testing.T) {
	r, _ := setupEndpointTest(t)

	w := performRequest(r, http.MethodPost, "/login", gin.H{
		"email":    "nobody@example.com",
		"password": "Str0ng!Pass",
	}, nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, "Invalid email or password", resp.Message)
}

func TestLogin_MissingCredentials(t *testing.T) {
	r, _ := setupEndpointTest(t)

	w := performRequest(r, http.MethodPost, "/login", gin.H{"email": "x@example.com"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, "Please provide all required credentials", resp.Message)
}

func TestLogin_LocksAfterRepeatedFailures(t *testing.T) {
	r, db := setupEndpointTest(t)

	w := performRequest(r, http.MethodPost, "/register", gin.H{
		"username": "frank",
		"email":    "frank@example.com",
		"password": "Str0ng!Pass",
	}, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	for i := 0; i < maxFailedAttempts; i++ {
		w = performRequest(r, http.MethodPost, "/login", gin.H{
			"email":    "frank@example.com",
			"password": "Wr0ng!Pass",
		}, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}

	var user model.User
	assert.NoError(t, db.First(&user, "email = ?", "frank@example.com").Error)
	assert.NotNil(t, user.LockedUntil)

	// Even the correct password is rejected while the lock is active.
	w = performRequest(r, http.MethodPost, "/login", gin.H{
		"email":    "frank@example.com",
		"password": "Str0ng!Pass",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	assert.Contains(t, resp.Message, "locked")
}

func TestLogin_UpgradesLegacyPlaintextPassword(t *testing.T) {
	r, db := setupEndpointTest(t)

	var role model.Role
	assert.NoError(t, db.First(&role, "name = ?", model.RolePatient).Error)

	legacy := model.User{
		Username: "legacy",
		Email:    "legacy@example.com",
		Password: "Plain!Old1",
		RoleID:   role.ID,
	}
	assert.NoError(t, db.Create(&legacy).Error)

	w := performRequest(r, http.MethodPost, "/login", gin.H{
		"email":    "legacy@example.com",
		"password": "Plain!Old1",
	}, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var user model.User
	assert.NoError(t, db.First(&user, legacy.ID).Error)
	assert.True(t, util.IsArgon2Hash(user.Password))
	assert.NotEmpty(t, user.PasswordSalt)

	// The upgraded hash must still verify on the next login.
	w = performRequest(r, http.MethodPost, "/login", gin.H{
		"email":    "legacy@example.com",
		"password": "Plain!Old1",
	}, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLogout(t *testing.T) {
	r, db := setupEndpointTest(t)
	token := registerAndLogin(t, r, "gina@example.com")

	w := performRequest(r, http.MethodDelete, "/logout", nil, authHeaders(token))
	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, "Logout successful", resp.Message)

	var count int64
	db.Model(&model.Session{}).Where("session_token = ?", token).Count(&count)
	assert.Zero(t, count)

	// The token no longer grants access.
	w = performRequest(r, http.MethodGet, "/patient", nil, authHeaders(token))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestValidateToken(t *testing.T) {
	r, _ := setupEndpointTest(t)
	token := registerAndLogin(t, r, "henry@example.com")

	w := performRequest(r, http.MethodGet, "/token/validate", nil, authHeaders(token))
	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, "Valid session token", resp.Message)

	w = performRequest(r, http.MethodGet, "/token/validate", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = performRequest(r, http.MethodGet, "/token/validate", nil, authHeaders("bogus-token"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	r, _ := setupEndpointTest(t)

	w := performRequest(r, http.MethodGet, "/patient", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = performRequest(r, http.MethodPost, "/appointment", gin.H{}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
