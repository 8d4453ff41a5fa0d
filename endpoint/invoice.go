package endpoint

import (
	"fmt"
	"time"

	"github.com/clinicore/clinicore/model"
	"github.com/clinicore/clinicore/util"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type createInvoiceRequest struct {
	AppointmentID uint  `json:"appointment_id" binding:"required" example:"1"`
	Amount        int64 `json:"amount" binding:"required,min=1" example:"15000"`
}

// ListInvoices godoc
// @Summary      List invoices
// @Description  Get invoices filtered by patient and/or status
// @Tags         Invoice
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        patient_id query int false "Filter by patient ID"
// @Param        status query string false "Filter by status: unpaid|paid"
// @Param        limit query int false "Limit number of results"
// @Param        offset query int false "Offset for pagination"
// @Success      200 {object} util.APIResponse{data=object} "Invoices retrieved"
// @Failure      400 {object} util.APIResponse "Invalid status filter"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /invoice [get]
func ListInvoices(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	query := db.Model(&model.Invoice{}).Order("issued_at DESC")

	if patientID := parseUintQuery(c, "patient_id"); patientID > 0 {
		query = query.Where("patient_id = ?", patientID)
	}
	if status := c.Query("status"); status != "" {
		if status != string(model.InvoiceUnpaid) && status != string(model.InvoicePaid) {
			util.CallUserError(c, util.APIErrorParams{Msg: "Unknown invoice status", Err: fmt.Errorf("invalid status %q", status)})
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

	var invoices []model.Invoice
	if err := query.Find(&invoices).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve invoices", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Invoices retrieved",
		Data: map[string]interface{}{"total_fetched": len(invoices), "invoices": invoices},
	})
}

// CreateInvoice godoc
// @Summary      Create an invoice
// @Description  Issue an unpaid invoice for an existing appointment
// @Tags         Invoice
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        request body createInvoiceRequest true "Invoice details"
// @Success      200 {object} util.APIResponse "Invoice created"
// @Failure      400 {object} util.APIResponse "Invalid request payload"
// @Failure      404 {object} util.APIResponse "Appointment not found"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /invoice [post]
func CreateInvoice(c *gin.Context) {
	var req createInvoiceRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var appointment model.Appointment
	if !ensureRecordExists(c, db, &appointment, req.AppointmentID, "Appointment") {
		return
	}

	invoice := model.Invoice{
		Number:        uuid.NewString(),
		PatientID:     appointment.PatientID,
		AppointmentID: appointment.ID,
		Amount:        req.Amount,
		Status:        model.InvoiceUnpaid,
		IssuedAt:      time.Now(),
	}

	if err := db.Create(&invoice).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to create invoice", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Invoice created", Data: invoice})
}

// GetInvoice godoc
// @Summary      Get invoice info
// @Description  Retrieve an invoice by ID
// @Tags         Invoice
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Invoice ID"
// @Success      200 {object} util.APIResponse "Invoice retrieved"
// @Failure      404 {object} util.APIResponse "Invoice not found"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /invoice/{id} [get]
func GetInvoice(c *gin.Context) {
	iid, err := parseIDParam(c)
	if err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: err.Error(), Err: err})
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var invoice model.Invoice
	if err := db.First(&invoice, iid).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Invoice not found", Err: err})
			return
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve invoice", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Invoice retrieved", Data: invoice})
}

// PayInvoice godoc
// @Summary      Mark an invoice as paid
// @Description  Move an invoice from unpaid to paid, recording the payment time
// @Tags         Invoice
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Invoice ID"
// @Success      200 {object} util.APIResponse "Invoice paid"
// @Failure      404 {object} util.APIResponse "Invoice not found"
// @Failure      409 {object} util.APIResponse "Invoice already paid"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /invoice/{id}/pay [post]
func PayInvoice(c *gin.Context) {
	iid, err := parseIDParam(c)
	if err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: err.Error(), Err: err})
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var invoice model.Invoice
	if err := db.First(&invoice, iid).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Invoice not found", Err: err})
			return
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve invoice", Err: err})
		return
	}

	if invoice.Status == model.InvoicePaid {
		util.CallConflict(c, util.APIErrorParams{Msg: "Invoice already paid", Err: fmt.Errorf("invoice already paid")})
		return
	}

	now := time.Now()
	invoice.Status = model.InvoicePaid
	invoice.PaidAt = &now

	if err := db.Save(&invoice).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to update invoice", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Invoice paid", Data: invoice})
}

// DeleteInvoice godoc
// @Summary      Delete an invoice
// @Description  Soft-delete an invoice by ID
// @Tags         Invoice
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Invoice ID"
// @Success      200 {object} util.APIResponse "Invoice deleted"
// @Failure      404 {object} util.APIResponse "Invoice not found"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /invoice/{id} [delete]
func DeleteInvoice(c *gin.Context) {
	iid, err := parseIDParam(c)
	if err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: err.Error(), Err: err})
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var invoice model.Invoice
	if err := db.First(&invoice, iid).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Invoice not found", Err: err})
			return
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve invoice", Err: err})
		return
	}

	if err := db.Delete(&invoice).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to delete invoice", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Invoice deleted"})
}
