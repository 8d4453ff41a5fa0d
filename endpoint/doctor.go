package endpoint

import (
	"fmt"

	"github.com/clinicore/clinicore/model"
	"github.com/clinicore/clinicore/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type createDoctorRequest struct {
	FullName        string `json:"full_name" binding:"required,max=100" example:"Dr. John Smith"`
	Email           string `json:"email" binding:"required,email,max=191" example:"dr.john@example.com"`
	Specialization  string `json:"specialization" binding:"max=100" example:"Cardiology"`
	LicenseNumber   string `json:"license_number" binding:"max=64" example:"MD-48211"`
	PhoneNumber     string `json:"phone_number" binding:"max=32" example:"081234567890"`
	ConsultationFee int64  `json:"consultation_fee" binding:"min=0" example:"15000"`
}

// ListDoctors godoc
// @Summary      List all doctors
// @Description  Get a paginated list of doctors with optional keyword search
// @Tags         Doctor
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        limit query int false "Limit number of results"
// @Param        offset query int false "Offset for pagination"
// @Param        keyword query string false "Search keyword for name, specialization, or license number"
// @Success      200 {object} util.APIResponse{data=object} "Doctors retrieved"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /doctor [get]
func ListDoctors(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	limit := parsePositiveInt(c.Query("limit"), 0, 0)
	offset := parsePositiveInt(c.Query("offset"), 0, 0)
	keyword := c.Query("keyword")

	query := db.Model(&model.Doctor{})
	if keyword != "" {
		kw := "%" + keyword + "%"
		query = query.Where("full_name LIKE ? OR specialization LIKE ? OR license_number LIKE ?", kw, kw, kw)
	}

	// Total reflects the filter so pagination math stays honest.
	var total int64
	if err := query.Count(&total).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to count doctors", Err: err})
		return
	}

	query = query.Order("doctors.full_name ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var doctors []model.Doctor
	if err := query.Find(&doctors).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve doctors", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Doctors retrieved",
		Data: map[string]interface{}{"total": total, "total_fetched": len(doctors), "doctors": doctors},
	})
}

// CreateDoctor godoc
// @Summary      Create a doctor
// @Description  Register a new doctor profile
// @Tags         Doctor
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        request body createDoctorRequest true "Doctor details"
// @Success      200 {object} util.APIResponse "Doctor created"
// @Failure      400 {object} util.APIResponse "Invalid request payload"
// @Failure      409 {object} util.APIResponse "Doctor email already registered"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /doctor [post]
func CreateDoctor(c *gin.Context) {
	var req createDoctorRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var existing model.Doctor
	err := db.First(&existing, "email = ?", req.Email).Error
	if err == nil {
		util.CallConflict(c, util.APIErrorParams{Msg: "Doctor email already registered", Err: fmt.Errorf("email already exists")})
		return
	}
	if err != gorm.ErrRecordNotFound {
		util.CallServerError(c, util.APIErrorParams{Msg: "Database error", Err: err})
		return
	}

	doctor := model.Doctor{
		FullName:        util.NormalizeName(req.FullName),
		Email:           req.Email,
		Specialization:  req.Specialization,
		LicenseNumber:   req.LicenseNumber,
		PhoneNumber:     req.PhoneNumber,
		ConsultationFee: req.ConsultationFee,
	}

	if err := db.Create(&doctor).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to create doctor", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Doctor created", Data: doctor})
}

// GetDoctor godoc
// @Summary      Get doctor info
// @Description  Retrieve a doctor by ID
// @Tags         Doctor
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Doctor ID"
// @Success      200 {object} util.APIResponse "Doctor retrieved"
// @Failure      404 {object} util.APIResponse "Doctor not found"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /doctor/{id} [get]
func GetDoctor(c *gin.Context) {
	did, err := parseIDParam(c)
	if err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: err.Error(), Err: err})
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var doctor model.Doctor
	if err := db.First(&doctor, did).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Doctor not found", Err: err})
			return
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve doctor", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Doctor retrieved", Data: doctor})
}

type updateDoctorRequest struct {
	FullName        string `json:"full_name" binding:"max=100"`
	Specialization  string `json:"specialization" binding:"max=100"`
	LicenseNumber   string `json:"license_number" binding:"max=64"`
	PhoneNumber     string `json:"phone_number" binding:"max=32"`
	ConsultationFee *int64 `json:"consultation_fee" binding:"omitempty,min=0"`
}

// UpdateDoctor godoc
// @Summary      Update doctor info
// @Description  Patch a doctor's profile fields
// @Tags         Doctor
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Doctor ID"
// @Param        request body updateDoctorRequest true "Fields to update"
// @Success      200 {object} util.APIResponse "Doctor updated"
// @Failure      400 {object} util.APIResponse "Invalid request payload"
// @Failure      404 {object} util.APIResponse "Doctor not found"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /doctor/{id} [patch]
func UpdateDoctor(c *gin.Context) {
	did, err := parseIDParam(c)
	if err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: err.Error(), Err: err})
		return
	}

	var req updateDoctorRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var doctor model.Doctor
	if err := db.First(&doctor, did).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Doctor not found", Err: err})
			return
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve doctor", Err: err})
		return
	}

	if req.FullName != "" {
		doctor.FullName = util.NormalizeName(req.FullName)
	}
	if req.Specialization != "" {
		doctor.Specialization = req.Specialization
	}
	if req.LicenseNumber != "" {
		doctor.LicenseNumber = req.LicenseNumber
	}
	if req.PhoneNumber != "" {
		doctor.PhoneNumber = req.PhoneNumber
	}
	if req.ConsultationFee != nil {
		doctor.ConsultationFee = *req.ConsultationFee
	}

	if err := db.Save(&doctor).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to update doctor", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Doctor updated", Data: doctor})
}

// deleteDoctorCascade removes a doctor along with their appointments and the
// invoices referencing those appointments.
func deleteDoctorCascade(db *gorm.DB, doctorID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		doctor := &model.Doctor{}
		if err := tx.First(doctor, doctorID).Error; err != nil {
			return err
		}

		var appointmentIDs []uint
		if err := tx.Model(&model.Appointment{}).Where("doctor_id = ?", doctorID).Pluck("id", &appointmentIDs).Error; err != nil {
			return err
		}
		if len(appointmentIDs) > 0 {
			if err := tx.Where("appointment_id IN ?", appointmentIDs).Delete(&model.Invoice{}).Error; err != nil {
				return err
			}
			if err := tx.Where("doctor_id = ?", doctorID).Delete(&model.Appointment{}).Error; err != nil {
				return err
			}
		}
		return tx.Delete(doctor).Error
	})
}

// DeleteDoctor godoc
// @Summary      Delete a doctor
// @Description  Delete a doctor together with their appointments and related invoices
// @Tags         Doctor
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Doctor ID"
// @Success      200 {object} util.APIResponse "Doctor deleted"
// @Failure      404 {object} util.APIResponse "Doctor not found"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /doctor/{id} [delete]
func DeleteDoctor(c *gin.Context) {
	did, err := parseIDParam(c)
	if err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: err.Error(), Err: err})
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	if err := deleteDoctorCascade(db, did); err != nil {
		if err == gorm.ErrRecordNotFound {
			util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Doctor not found", Err: err})
			return
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to delete doctor", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Doctor deleted"})
}
