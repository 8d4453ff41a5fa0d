package endpoint

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/clinicore/clinicore/middleware"
	"github.com/clinicore/clinicore/model"
	"github.com/clinicore/clinicore/util"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var registerValidatorsOnce sync.Once

// apiResponse mirrors util.APIResponse with the data payload left raw so each
// test can decode it into its own shape.
type apiResponse struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Token   string          `json:"token"`
	Data    json.RawMessage `json:"data"`
}

func setupEndpointTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	registerValidatorsOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			_ = v.RegisterValidation("strongpassword", util.StrongPasswordValidator)
		}
	})

	util.SetJWTSecret("endpoint-test-secret")
	util.InitUserEmailCache(0)

	dsn := fmt.Sprintf("file:testdb_endpoint_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	assert.NoError(t, err)

	err = db.AutoMigrate(
		&model.User{}, &model.Role{}, &model.Session{},
		&model.Doctor{}, &model.Patient{}, &model.Appointment{}, &model.Invoice{},
		&model.SecurityLog{},
	)
	assert.NoError(t, err)
	assert.NoError(t, model.SeedRoles(db))

	return newTestRouter(db), db
}

// newTestRouter mirrors the route table the server wires up at startup.
func newTestRouter(db *gorm.DB) *gin.Engine {
	router := gin.New()
	router.Use(middleware.DatabaseMiddleware(db))

	authLimiter := middleware.RateLimiter(middleware.RateLimitConfig{})
	router.POST("/register", authLimiter, Register)
	router.POST("/login", authLimiter, Login)
	router.GET("/token/validate", ValidateToken)

	auth := router.Group("/")
	auth.Use(middleware.ValidateLoginToken())
	{
		auth.DELETE("/logout", Logout)

		auth.GET("/user", ListUsers)
		auth.PATCH("/user", UpdateUser)
		auth.GET("/user/:id", GetUserInfo)
		auth.DELETE("/user/:id", DeleteUser)

		auth.GET("/patient", ListPatients)
		auth.POST("/patient", CreatePatient)
		auth.GET("/patient/:id", GetPatient)
		auth.PATCH("/patient/:id", UpdatePatient)
		auth.DELETE("/patient/:id", DeletePatient)

		auth.GET("/doctor", ListDoctors)
		auth.POST("/doctor", CreateDoctor)
		auth.GET("/doctor/:id", GetDoctor)
		auth.PATCH("/doctor/:id", UpdateDoctor)
		auth.DELETE("/doctor/:id", DeleteDoctor)

		auth.GET("/appointment", ListAppointments)
		auth.POST("/appointment", CreateAppointment)
		auth.GET("/appointment/:id", GetAppointment)
		auth.PATCH("/appointment/:id/status", UpdateAppointmentStatus)
		auth.DELETE("/appointment/:id", DeleteAppointment)

		auth.GET("/invoice", ListInvoices)
		auth.POST("/invoice", CreateInvoice)
		auth.GET("/invoice/:id", GetInvoice)
		auth.POST("/invoice/:id/pay", PayInvoice)
		auth.DELETE("/invoice/:id", DeleteInvoice)
	}

	return router
}

func performRequest(r *gin.Engine, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) apiResponse {
	t.Helper()
	var resp apiResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// registerAndLogin creates an account through the public endpoints and returns
// a live session token for authenticated requests.
func registerAndLogin(t *testing.T, r *gin.Engine, email string) string {
	t.Helper()

	w := performRequest(r, http.MethodPost, "/register", gin.H{
		"username": "tester",
		"name":     "Test User",
		"email":    email,
		"password": "Str0ng!Pass",
	}, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = performRequest(r, http.MethodPost, "/login", gin.H{
		"email":    email,
		"password": "Str0ng!Pass",
	}, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	resp := decodeResponse(t, w)
	assert.NotEmpty(t, resp.Token)
	return resp.Token
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func authHeaders(token string) map[string]string {
	return map[string]string{"session-token": token}
}

func mustCreateTestPatient(t *testing.T, db *gorm.DB, name string) model.Patient {
	t.Helper()
	patient := model.Patient{
		MedicalRecordNumber: fmt.Sprintf("mrn-%d", time.Now().UnixNano()),
		FullName:            name,
	}
	assert.NoError(t, db.Create(&patient).Error)
	return patient
}

func mustCreateTestDoctor(t *testing.T, db *gorm.DB, name string) model.Doctor {
	t.Helper()
	doctor := model.Doctor{
		FullName:        name,
		Email:           fmt.Sprintf("doc+%d@example.com", time.Now().UnixNano()),
		Specialization:  "General",
		ConsultationFee: 10000,
	}
	assert.NoError(t, db.Create(&doctor).Error)
	return doctor
}

func mustCreateTestAppointment(t *testing.T, db *gorm.DB, patientID, doctorID uint) model.Appointment {
	t.Helper()
	appt := model.Appointment{
		PatientID:   patientID,
		DoctorID:    doctorID,
		ScheduledAt: time.Now().Add(24 * time.Hour),
		Status:      model.AppointmentScheduled,
	}
	assert.NoError(t, db.Create(&appt).Error)
	return appt
}
