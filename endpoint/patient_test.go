package endpoint

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/clinicore/clinicore/model"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCreatePatient(t *testing.T) {
	r, db := setupEndpointTest(t)
	token := registerAndLogin(t, r, "staff1@example.com")

	w := performRequest(r, http.MethodPost, "/patient", gin.H{
		"full_name":      " John  Doe ",
		"gender":         "Male",
		"date_of_birth":  "1990-01-01",
		"phone_number":   "081234567890",
		"address":        "123 Main St",
		"health_history": "none",
	}, authHeaders(token))

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, "Patient created", resp.Message)

	var created model.Patient
	assert.NoError(t, json.Unmarshal(resp.Data, &created))
	assert.Equal(t, "John Doe", created.FullName)

	// Every patient gets a server-generated record number.
	_, err := uuid.Parse(created.MedicalRecordNumber)
	assert.NoError(t, err)

	var found model.Patient
	assert.NoError(t, db.First(&found, created.ID).Error)
	assert.Equal(t, created.MedicalRecordNumber, found.MedicalRecordNumber)
}

func TestCreatePatient_MissingName(t *testing.T) {
	r, _ := setupEndpointTest(t)
	token := registerAndLogin(t, r, "staff2@example.com")

	w := performRequest(r, http.MethodPost, "/patient", gin.H{"gender": "Female"}, authHeaders(token))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetPatient_NotFound(t *testing.T) {
	r, _ := setupEndpointTest(t)
	token := registerAndLogin(t, r, "staff3@example.com")

	w := performRequest(r, http.MethodGet, "/patient/999", nil, authHeaders(token))
	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, "Patient not found", resp.Message)
}

func TestUpdatePatient(t *testing.T) {
	r, db := setupEndpointTest(t)
	token := registerAndLogin(t, r, "staff4@example.com")
	patient := mustCreateTestPatient(t, db, "Old Name")

	w := performRequest(r, http.MethodPatch, "/patient/"+itoa(patient.ID), gin.H{
		"full_name":    "New  Name",
		"phone_number": "089999999999",
	}, authHeaders(token))

	assert.Equal(t, http.StatusOK, w.Code)

	var found model.Patient
	assert.NoError(t, db.First(&found, patient.ID).Error)
	assert.Equal(t, "New Name", found.FullName)
	assert.Equal(t, "089999999999", found.PhoneNumber)
	// Untouched fields keep their values.
	assert.Equal(t, patient.MedicalRecordNumber, found.MedicalRecordNumber)
}

func TestListPatients_KeywordAndSort(t *testing.T) {
	r, db := setupEndpointTest(t)
	token := registerAndLogin(t, r, "staff5@example.com")

	mustCreateTestPatient(t, db, "Aaron Able")
	mustCreateTestPatient(t, db, "Zoe Zimmer")

	w := performRequest(r, http.MethodGet, "/patient?sort=full_name&sort_dir=asc", nil, authHeaders(token))
	assert.Equal(t, http.StatusOK, w.Code)

	resp := decodeResponse(t, w)
	var data struct {
		Total        int64           `json:"total"`
		TotalFetched int             `json:"total_fetched"`
		Patients     []model.Patient `json:"patients"`
	}
	assert.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, int64(2), data.Total)
	assert.Equal(t, 2, data.TotalFetched)
	assert.Equal(t, "Aaron Able", data.Patients[0].FullName)

	w = performRequest(r, http.MethodGet, "/patient?keyword=Zimmer", nil, authHeaders(token))
	assert.Equal(t, http.StatusOK, w.Code)
	resp = decodeResponse(t, w)
	assert.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, 1, data.TotalFetched)
	assert.Equal(t, "Zoe Zimmer", data.Patients[0].FullName)
	// Total honors the keyword filter rather than counting the whole table.
	assert.Equal(t, int64(1), data.Total)
}

func TestDeletePatient_CascadesAppointmentsAndInvoices(t *testing.T) {
	r, db := setupEndpointTest(t)
	token := registerAndLogin(t, r, "staff6@example.com")

	patient := mustCreateTestPatient(t, db, "Cascade Me")
	doctor := mustCreateTestDoctor(t, db, "Dr. Keep")
	appt := mustCreateTestAppointment(t, db, patient.ID, doctor.ID)

	invoice := model.Invoice{
		Number:        uuid.NewString(),
		PatientID:     patient.ID,
		AppointmentID: appt.ID,
		Amount:        5000,
		Status:        model.InvoiceUnpaid,
		IssuedAt:      time.Now(),
	}
	assert.NoError(t, db.Create(&invoice).Error)

	w := performRequest(r, http.MethodDelete, "/patient/"+itoa(patient.ID), nil, authHeaders(token))
	assert.Equal(t, http.StatusOK, w.Code)

	var count int64
	db.Model(&model.Patient{}).Where("id = ?", patient.ID).Count(&count)
	assert.Zero(t, count)
	db.Model(&model.Appointment{}).Where("patient_id = ?", patient.ID).Count(&count)
	assert.Zero(t, count)
	db.Model(&model.Invoice{}).Where("patient_id = ?", patient.ID).Count(&count)
	assert.Zero(t, count)

	// The doctor is untouched.
	var found model.Doctor
	assert.NoError(t, db.First(&found, doctor.ID).Error)
}

func TestDeletePatient_NotFound(t *testing.T) {
	r, _ := setupEndpointTest(t)
	token := registerAndLogin(t, r, "staff7@example.com")

	w := performRequest(r, http.MethodDelete, "/patient/424242", nil, authHeaders(token))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
