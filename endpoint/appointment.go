package endpoint

import (
	"fmt"
	"time"

	"github.com/clinicore/clinicore/model"
	"github.com/clinicore/clinicore/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type createAppointmentRequest struct {
	PatientID   uint   `json:"patient_id" binding:"required" example:"1"`
	DoctorID    uint   `json:"doctor_id" binding:"required" example:"1"`
	ScheduledAt string `json:"scheduled_at" binding:"required" example:"2026-09-15T10:00:00Z"`
	Reason      string `json:"reason" binding:"max=255" example:"Back pain"`
}

type updateAppointmentStatusRequest struct {
	Status model.AppointmentStatus `json:"status" binding:"required" example:"completed"`
}

// ListAppointments godoc
// @Summary      List appointments
// @Description  Get appointments filtered by doctor, patient, and/or status
// @Tags         Appointment
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        doctor_id query int false "Filter by doctor ID"
// @Param        patient_id query int false "Filter by patient ID"
// @Param        status query string false "Filter by status: scheduled|completed|cancelled|no-show"
// @Param        limit query int false "Limit number of results"
// @Param        offset query int false "Offset for pagination"
// @Success      200 {object} util.APIResponse{data=object} "Appointments retrieved"
// @Failure      400 {object} util.APIResponse "Invalid status filter"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /appointment [get]
func ListAppointments(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	query := db.Model(&model.Appointment{}).Order("scheduled_at ASC")

	if doctorID := parseUintQuery(c, "doctor_id"); doctorID > 0 {
		query = query.Where("doctor_id = ?", doctorID)
	}
	if patientID := parseUintQuery(c, "patient_id"); patientID > 0 {
		query = query.Where("patient_id = ?", patientID)
	}
	if status := c.Query("status"); status != "" {
		if !model.AppointmentStatus(status).IsValid() {
			util.CallUserError(c, util.APIErrorParams{Msg: "Unknown appointment status", Err: fmt.Errorf("invalid status %q", status)})
			return
		}
		query = query.Where("status = ?", status)
	}
	if limit := parsePositiveInt(c.Query("limit"), 0, 0); limit > 0 {
		query = query.Limit(limit)
	}
	if offset := parsePositiveInt(c.Query("offset"), 0, 0); offset > 0 {
		query = query.Offset(offset)
	}

	var appointments []model.Appointment
	if err := query.Find(&appointments).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve appointments", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Appointments retrieved",
		Data: map[string]interface{}{"total_fetched": len(appointments), "appointments": appointments},
	})
}

// CreateAppointment godoc
// @Summary      Book an appointment
// @Description  Create an appointment linking an existing patient and doctor at a future time
// @Tags         Appointment
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        request body createAppointmentRequest true "Appointment details"
// @Success      200 {object} util.APIResponse "Appointment created"
// @Failure      400 {object} util.APIResponse "Invalid request payload or past time"
// @Failure      404 {object} util.APIResponse "Patient or doctor not found"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /appointment [post]
func CreateAppointment(c *gin.Context) {
	var req createAppointmentRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	scheduledAt, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: "scheduled_at must be an RFC3339 timestamp", Err: err})
		return
	}
	if !scheduledAt.After(time.Now()) {
		util.CallUserError(c, util.APIErrorParams{Msg: "Appointment time must be in the future", Err: fmt.Errorf("scheduled_at is in the past")})
		return
	}

	if !ensureRecordExists(c, db, &model.Patient{}, req.PatientID, "Patient") {
		return
	}
	if !ensureRecordExists(c, db, &model.Doctor{}, req.DoctorID, "Doctor") {
		return
	}

	appointment := model.Appointment{
		PatientID:   req.PatientID,
		DoctorID:    req.DoctorID,
		ScheduledAt: scheduledAt,
		Reason:      req.Reason,
		Status:      model.AppointmentScheduled,
	}

	if err := db.Create(&appointment).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to create appointment", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Appointment created", Data: appointment})
}

// ensureRecordExists responds 404/500 and returns false when the row with the
// given ID is missing.
func ensureRecordExists(c *gin.Context, db *gorm.DB, dest interface{}, id uint, label string) bool {
	err := db.First(dest, id).Error
	if err == gorm.ErrRecordNotFound {
		util.CallErrorNotFound(c, util.APIErrorParams{Msg: fmt.Sprintf("%s not found", label), Err: err})
		return false
	}
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Database error", Err: err})
		return false
	}
	return true
}

// GetAppointment godoc
// @Summary      Get appointment info
// @Description  Retrieve an appointment by ID
// @Tags         Appointment
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Appointment ID"
// @Success      200 {object} util.APIResponse "Appointment retrieved"
// @Failure      404 {object} util.APIResponse "Appointment not found"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /appointment/{id} [get]
func GetAppointment(c *gin.Context) {
	aid, err := parseIDParam(c)
	if err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: err.Error(), Err: err})
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var appointment model.Appointment
	if err := db.First(&appointment, aid).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Appointment not found", Err: err})
			return
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve appointment", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Appointment retrieved", Data: appointment})
}

// UpdateAppointmentStatus godoc
// @Summary      Update appointment status
// @Description  Move an appointment from scheduled to completed, cancelled, or no-show
// @Tags         Appointment
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Appointment ID"
// @Param        request body updateAppointmentStatusRequest true "New status"
// @Success      200 {object} util.APIResponse "Status updated"
// @Failure      400 {object} util.APIResponse "Unknown status"
// @Failure      404 {object} util.APIResponse "Appointment not found"
// @Failure      409 {object} util.APIResponse "Appointment already in a terminal state"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /appointment/{id}/status [patch]
func UpdateAppointmentStatus(c *gin.Context) {
	aid, err := parseIDParam(c)
	if err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: err.Error(), Err: err})
		return
	}

	var req updateAppointmentStatusRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}

	if !req.Status.IsValid() {
		util.CallUserError(c, util.APIErrorParams{Msg: "Unknown appointment status", Err: fmt.Errorf("invalid status %q", req.Status)})
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var appointment model.Appointment
	if err := db.First(&appointment, aid).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Appointment not found", Err: err})
			return
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve appointment", Err: err})
		return
	}

	if appointment.Status.IsTerminal() {
		util.CallConflict(c, util.APIErrorParams{
			Msg: fmt.Sprintf("Appointment is already %s", appointment.Status),
			Err: fmt.Errorf("appointment in terminal state"),
		})
		return
	}

	appointment.Status = req.Status
	if err := db.Save(&appointment).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to update appointment", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Appointment status updated", Data: appointment})
}

// deleteAppointmentCascade removes an appointment and its invoices.
func deleteAppointmentCascade(db *gorm.DB, appointmentID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		appointment := &model.Appointment{}
		if err := tx.First(appointment, appointmentID).Error; err != nil {
			return err
		}
		if err := tx.Where("appointment_id = ?", appointmentID).Delete(&model.Invoice{}).Error; err != nil {
			return err
		}
		return tx.Delete(appointment).Error
	})
}

// DeleteAppointment godoc
// @Summary      Delete an appointment
// @Description  Delete an appointment together with its invoices
// @Tags         Appointment
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Appointment ID"
// @Success      200 {object} util.APIResponse "Appointment deleted"
// @Failure      404 {object} util.APIResponse "Appointment not found"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /appointment/{id} [delete]
func DeleteAppointment(c *gin.Context) {
	aid, err := parseIDParam(c)
	if err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: err.Error(), Err: err})
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	if err := deleteAppointmentCascade(db, aid); err != nil {
		if err == gorm.ErrRecordNotFound {
			util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Appointment not found", Err: err})
			return
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to delete appointment", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Appointment deleted"})
}
