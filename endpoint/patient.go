package endpoint

import (
	"fmt"
	"strings"

	"github.com/clinicore/clinicore/model"
	"github.com/clinicore/clinicore/util"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type patientListQuery struct {
	Limit   int
	Offset  int
	Keyword string
	SortBy  string
	SortDir string
}

func parsePatientQuery(c *gin.Context) patientListQuery {
	return patientListQuery{
		Limit:   parsePositiveInt(c.Query("limit"), 0, 0),
		Offset:  parsePositiveInt(c.Query("offset"), 0, 0),
		Keyword: c.Query("keyword"),
		SortBy:  c.Query("sort"),                       // supported values: full_name, medical_record_number
		SortDir: strings.ToLower(c.Query("sort_dir")), // supported values: asc, desc
	}
}

func fetchPatients(db *gorm.DB, q patientListQuery) ([]model.Patient, int64, error) {
	query := db.Model(&model.Patient{})
	if q.Keyword != "" {
		kw := "%" + q.Keyword + "%"
		query = query.Where("full_name LIKE ? OR medical_record_number LIKE ? OR address LIKE ? OR phone_number LIKE ?", kw, kw, kw, kw)
	}

	// Total reflects the filter so pagination math stays honest.
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Only allow asc/desc so user input never reaches the ORDER BY clause raw.
	orderDir := "ASC"
	if q.SortDir == "desc" {
		orderDir = "DESC"
	}

	switch q.SortBy {
	case "full_name":
		query = query.Order(fmt.Sprintf("patients.full_name %s", orderDir))
	case "medical_record_number":
		query = query.Order(fmt.Sprintf("patients.medical_record_number %s", orderDir))
	default:
		query = query.Order("patients.created_at DESC")
	}

	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}
	if q.Offset > 0 {
		query = query.Offset(q.Offset)
	}

	var patients []model.Patient
	if err := query.Find(&patients).Error; err != nil {
		return nil, 0, err
	}
	return patients, total, nil
}

// ListPatients godoc
// @Summary      List all patients
// @Description  Get a paginated list of patients with optional filtering
// @Tags         Patient
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        limit query int false "Limit number of results"
// @Param        offset query int false "Offset for pagination"
// @Param        keyword query string false "Search keyword for name, record number, address, or phone"
// @Param        sort query string false "Optional sort field: full_name|medical_record_number"
// @Param        sort_dir query string false "Optional sort direction: asc|desc"
// @Success      200 {object} util.APIResponse{data=object} "Patients retrieved"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /patient [get]
func ListPatients(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	patients, total, err := fetchPatients(db, parsePatientQuery(c))
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve patients", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Patients retrieved",
		Data: map[string]interface{}{"total": total, "total_fetched": len(patients), "patients": patients},
	})
}

type createPatientRequest struct {
	FullName      string `json:"full_name" binding:"required,max=100" example:"John Doe"`
	Gender        string `json:"gender" binding:"max=16" example:"Male"`
	DateOfBirth   string `json:"date_of_birth" binding:"max=10" example:"1990-01-01"`
	PhoneNumber   string `json:"phone_number" binding:"max=32" example:"081234567890"`
	Address       string `json:"address" binding:"max=255" example:"123 Main St"`
	HealthHistory string `json:"health_history"`
}

// CreatePatient godoc
// @Summary      Create a patient
// @Description  Register a new patient profile with a generated medical record number
// @Tags         Patient
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        request body createPatientRequest true "Patient details"
// @Success      200 {object} util.APIResponse "Patient created"
// @Failure      400 {object} util.APIResponse "Invalid request payload"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /patient [post]
func CreatePatient(c *gin.Context) {
	var req createPatientRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	patient := model.Patient{
		MedicalRecordNumber: uuid.NewString(),
		FullName:            util.NormalizeName(req.FullName),
		Gender:              req.Gender,
		DateOfBirth:         req.DateOfBirth,
		PhoneNumber:         req.PhoneNumber,
		Address:             req.Address,
		HealthHistory:       req.HealthHistory,
	}

	if err := db.Create(&patient).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to create patient", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Patient created", Data: patient})
}

// GetPatient godoc
// @Summary      Get patient info
// @Description  Retrieve a patient by ID
// @Tags         Patient
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Patient ID"
// @Success      200 {object} util.APIResponse "Patient retrieved"
// @Failure      404 {object} util.APIResponse "Patient not found"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /patient/{id} [get]
func GetPatient(c *gin.Context) {
	pid, err := parseIDParam(c)
	if err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: err.Error(), Err: err})
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var patient model.Patient
	if err := db.First(&patient, pid).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Patient not found", Err: err})
			return
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve patient", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Patient retrieved", Data: patient})
}

type updatePatientRequest struct {
	FullName      string `json:"full_name" binding:"max=100"`
	Gender        string `json:"gender" binding:"max=16"`
	DateOfBirth   string `json:"date_of_birth" binding:"max=10"`
	PhoneNumber   string `json:"phone_number" binding:"max=32"`
	Address       string `json:"address" binding:"max=255"`
	HealthHistory string `json:"health_history"`
}

// UpdatePatient godoc
// @Summary      Update patient info
// @Description  Patch a patient's profile fields
// @Tags         Patient
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Patient ID"
// @Param        request body updatePatientRequest true "Fields to update"
// @Success      200 {object} util.APIResponse "Patient updated"
// @Failure      400 {object} util.APIResponse "Invalid request payload"
// @Failure      404 {object} util.APIResponse "Patient not found"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /patient/{id} [patch]
func UpdatePatient(c *gin.Context) {
	pid, err := parseIDParam(c)
	if err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: err.Error(), Err: err})
		return
	}

	var req updatePatientRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var patient model.Patient
	if err := db.First(&patient, pid).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Patient not found", Err: err})
			return
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve patient", Err: err})
		return
	}

	if req.FullName != "" {
		patient.FullName = util.NormalizeName(req.FullName)
	}
	if req.Gender != "" {
		patient.Gender = req.Gender
	}
	if req.DateOfBirth != "" {
		patient.DateOfBirth = req.DateOfBirth
	}
	if req.PhoneNumber != "" {
		patient.PhoneNumber = req.PhoneNumber
	}
	if req.Address != "" {
		patient.Address = req.Address
	}
	if req.HealthHistory != "" {
		patient.HealthHistory = req.HealthHistory
	}

	if err := db.Save(&patient).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to update patient", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Patient updated", Data: patient})
}

// deletePatientCascade removes a patient along with their appointments and
// invoices in one transaction, mirroring the schema's cascade rules for
// stores that do not enforce them.
func deletePatientCascade(db *gorm.DB, patientID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		patient := &model.Patient{}
		if err := tx.First(patient, patientID).Error; err != nil {
			return err
		}
		if err := tx.Where("patient_id = ?", patientID).Delete(&model.Invoice{}).Error; err != nil {
			return err
		}
		if err := tx.Where("patient_id = ?", patientID).Delete(&model.Appointment{}).Error; err != nil {
			return err
		}
		return tx.Delete(patient).Error
	})
}

// DeletePatient godoc
// @Summary      Delete a patient
// @Description  Delete a patient together with their appointments and invoices
// @Tags         Patient
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Patient ID"
// @Success      200 {object} util.APIResponse "Patient deleted"
// @Failure      404 {object} util.APIResponse "Patient not found"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /patient/{id} [delete]
func DeletePatient(c *gin.Context) {
	pid, err := parseIDParam(c)
	if err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: err.Error(), Err: err})
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	if err := deletePatientCascade(db, pid); err != nil {
		if err == gorm.ErrRecordNotFound {
			util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Patient not found", Err: err})
			return
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to delete patient", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Patient deleted"})
}
