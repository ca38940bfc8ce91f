package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/traveldesk/reisekosten/internal/application/port"
	"github.com/traveldesk/reisekosten/internal/application/service"
	"github.com/traveldesk/reisekosten/internal/domain/approval"
	"github.com/traveldesk/reisekosten/internal/domain/claim"
	"github.com/traveldesk/reisekosten/internal/domain/rate"
	"github.com/traveldesk/reisekosten/internal/domain/workflow"
	"github.com/traveldesk/reisekosten/internal/export"
)

const dateLayout = "2006-01-02"

// Handlers contains all HTTP request handlers
type Handlers struct {
	rateService     service.RateService
	claimService    service.ClaimService
	approvalService service.ApprovalService
	reportService   service.ReportService
	exporter        *export.SettlementExporter
	logger          Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	rateService service.RateService,
	claimService service.ClaimService,
	approvalService service.ApprovalService,
	reportService service.ReportService,
	exporter *export.SettlementExporter,
	logger Logger,
) *Handlers {
	return &Handlers{
		rateService:     rateService,
		claimService:    claimService,
		approvalService: approvalService,
		reportService:   reportService,
		exporter:        exporter,
		logger:          logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// writeError maps domain errors to HTTP status codes and writes the
// error response.
func (h *Handlers) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, claim.ErrInvalidInput),
		errors.Is(err, approval.ErrStepOutOfRange),
		errors.Is(err, approval.ErrEmptyChain):
		status = http.StatusBadRequest
	case errors.Is(err, rate.ErrRateNotFound):
		status = http.StatusNotFound
	case errors.Is(err, rate.ErrAmbiguousRate),
		errors.Is(err, workflow.ErrInvalidTransition),
		errors.Is(err, workflow.ErrGuardFailed),
		errors.Is(err, port.ErrConcurrentModification):
		status = http.StatusConflict
	}

	c.JSON(status, Response{
		Success: false,
		Error:   err.Error(),
	})
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   "1.0.0",
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    response,
	})
}

// ListPerDiemRates handles GET /api/rates/per-diem
func (h *Handlers) ListPerDiemRates(c *gin.Context) {
	rates, err := h.rateService.ListPerDiemRates(c.Request.Context(), c.Query("company_id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: rates})
}

// CreatePerDiemRateRequest represents the per-diem rate creation payload
type CreatePerDiemRateRequest struct {
	CompanyID   string `json:"company_id" binding:"required"`
	CountryCode string `json:"country_code" binding:"required"`
	City        string `json:"city"`
	FullDayRate string `json:"full_day_rate" binding:"required"`
	HalfDayRate string `json:"half_day_rate" binding:"required"`
	Currency    string `json:"currency" binding:"required"`
	ValidFrom   string `json:"valid_from" binding:"required"`
	ValidTo     string `json:"valid_to"`
}

// CreatePerDiemRate handles POST /api/rates/per-diem
func (h *Handlers) CreatePerDiemRate(c *gin.Context) {
	var req CreatePerDiemRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid per-diem rate payload", "error", err)
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	fullDay, err := decimal.NewFromString(req.FullDayRate)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid full_day_rate"})
		return
	}
	halfDay, err := decimal.NewFromString(req.HalfDayRate)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid half_day_rate"})
		return
	}
	validFrom, err := time.Parse(dateLayout, req.ValidFrom)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid valid_from"})
		return
	}

	r := &rate.PerDiemRate{
		CountryCode: req.CountryCode,
		City:        req.City,
		FullDayRate: fullDay,
		HalfDayRate: halfDay,
		Currency:    req.Currency,
		ValidFrom:   validFrom,
	}
	if req.ValidTo != "" {
		validTo, err := time.Parse(dateLayout, req.ValidTo)
		if err != nil {
			c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid valid_to"})
			return
		}
		r.ValidTo = &validTo
	}

	if err := h.rateService.CreatePerDiemRate(c.Request.Context(), req.CompanyID, r); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, Response{Success: true, Data: r})
}

// ListVehicleRates handles GET /api/rates/vehicle
func (h *Handlers) ListVehicleRates(c *gin.Context) {
	rates, err := h.rateService.ListVehicleRates(c.Request.Context(), c.Query("company_id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: rates})
}

// CreateVehicleRateRequest represents the vehicle rate creation payload
type CreateVehicleRateRequest struct {
	CompanyID            string `json:"company_id" binding:"required"`
	VehicleType          string `json:"vehicle_type" binding:"required"`
	RatePerKilometer     string `json:"rate_per_kilometer" binding:"required"`
	CO2GramsPerKilometer string `json:"co2_grams_per_kilometer"`
	Currency             string `json:"currency" binding:"required"`
}

// CreateVehicleRate handles POST /api/rates/vehicle
func (h *Handlers) CreateVehicleRate(c *gin.Context) {
	var req CreateVehicleRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid vehicle rate payload", "error", err)
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	ratePerKm, err := decimal.NewFromString(req.RatePerKilometer)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid rate_per_kilometer"})
		return
	}
	co2 := decimal.Zero
	if req.CO2GramsPerKilometer != "" {
		co2, err = decimal.NewFromString(req.CO2GramsPerKilometer)
		if err != nil {
			c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid co2_grams_per_kilometer"})
			return
		}
	}

	r := &rate.VehicleRate{
		VehicleType:          req.VehicleType,
		RatePerKilometer:     ratePerKm,
		CO2GramsPerKilometer: co2,
		Currency:             req.Currency,
	}

	if err := h.rateService.CreateVehicleRate(c.Request.Context(), req.CompanyID, r); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, Response{Success: true, Data: r})
}

// DeactivateVehicleRate handles POST /api/rates/vehicle/:id/deactivate
func (h *Handlers) DeactivateVehicleRate(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid rate ID"})
		return
	}

	if err := h.rateService.DeactivateVehicleRate(c.Request.Context(), c.Query("company_id"), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true})
}

// PerDiemClaimRequest represents the per-diem quote/create payload
type PerDiemClaimRequest struct {
	CompanyID         string `json:"company_id" binding:"required"`
	EmployeeID        string `json:"employee_id" binding:"required"`
	CountryCode       string `json:"country_code" binding:"required"`
	City              string `json:"city"`
	TravelDate        string `json:"travel_date" binding:"required"`
	Description       string `json:"description"`
	FullDays          int    `json:"full_days"`
	HalfDays          int    `json:"half_days"`
	BreakfastProvided bool   `json:"breakfast_provided"`
	LunchProvided     bool   `json:"lunch_provided"`
	DinnerProvided    bool   `json:"dinner_provided"`
}

func (r *PerDiemClaimRequest) toInput() (service.PerDiemClaimInput, error) {
	travelDate, err := time.Parse(dateLayout, r.TravelDate)
	if err != nil {
		return service.PerDiemClaimInput{}, err
	}
	return service.PerDiemClaimInput{
		CompanyID:   r.CompanyID,
		EmployeeID:  r.EmployeeID,
		CountryCode: r.CountryCode,
		City:        r.City,
		TravelDate:  travelDate,
		Description: r.Description,
		Period: claim.PerDiemInput{
			FullDays:          r.FullDays,
			HalfDays:          r.HalfDays,
			BreakfastProvided: r.BreakfastProvided,
			LunchProvided:     r.LunchProvided,
			DinnerProvided:    r.DinnerProvided,
		},
	}, nil
}

// QuotePerDiem handles POST /api/claims/per-diem/quote
func (h *Handlers) QuotePerDiem(c *gin.Context) {
	var req PerDiemClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}
	in, err := req.toInput()
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid travel_date"})
		return
	}

	result, err := h.claimService.QuotePerDiem(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: result})
}

// CreatePerDiemClaim handles POST /api/claims/per-diem
func (h *Handlers) CreatePerDiemClaim(c *gin.Context) {
	var req PerDiemClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}
	in, err := req.toInput()
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid travel_date"})
		return
	}

	created, err := h.claimService.CreatePerDiemClaim(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, Response{Success: true, Data: created})
}

// MileageClaimRequest represents the mileage quote/create payload
type MileageClaimRequest struct {
	CompanyID   string `json:"company_id" binding:"required"`
	EmployeeID  string `json:"employee_id" binding:"required"`
	VehicleType string `json:"vehicle_type" binding:"required"`
	TravelDate  string `json:"travel_date" binding:"required"`
	Description string `json:"description"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	DistanceKm  string `json:"distance_km" binding:"required"`
}

func (r *MileageClaimRequest) toInput() (service.MileageClaimInput, error) {
	travelDate, err := time.Parse(dateLayout, r.TravelDate)
	if err != nil {
		return service.MileageClaimInput{}, err
	}
	distance, err := decimal.NewFromString(r.DistanceKm)
	if err != nil {
		return service.MileageClaimInput{}, err
	}
	return service.MileageClaimInput{
		CompanyID:   r.CompanyID,
		EmployeeID:  r.EmployeeID,
		VehicleType: r.VehicleType,
		TravelDate:  travelDate,
		Description: r.Description,
		Journey: claim.MileageInput{
			Origin:      r.Origin,
			Destination: r.Destination,
			DistanceKm:  distance,
		},
	}, nil
}

// QuoteMileage handles POST /api/claims/mileage/quote
func (h *Handlers) QuoteMileage(c *gin.Context) {
	var req MileageClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}
	in, err := req.toInput()
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid travel_date or distance_km"})
		return
	}

	result, err := h.claimService.QuoteMileage(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: result})
}

// CreateMileageClaim handles POST /api/claims/mileage
func (h *Handlers) CreateMileageClaim(c *gin.Context) {
	var req MileageClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}
	in, err := req.toInput()
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid travel_date or distance_km"})
		return
	}

	created, err := h.claimService.CreateMileageClaim(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, Response{Success: true, Data: created})
}

// ListRequest represents pagination query parameters
type ListRequest struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

func (r *ListRequest) normalize() {
	if r.Limit <= 0 || r.Limit > 100 {
		r.Limit = 20
	}
	if r.Offset < 0 {
		r.Offset = 0
	}
}

// ListClaims handles GET /api/claims
func (h *Handlers) ListClaims(c *gin.Context) {
	var req ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid query parameters"})
		return
	}
	req.normalize()

	claims, err := h.claimService.ListClaims(c.Request.Context(),
		c.Query("company_id"), c.Query("employee_id"), req.Limit, req.Offset)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: claims})
}

// GetClaim handles GET /api/claims/:id
func (h *Handlers) GetClaim(c *gin.Context) {
	found, err := h.claimService.GetClaim(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	if found == nil {
		c.JSON(http.StatusNotFound, Response{Success: false, Error: "claim not found"})
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: found})
}

// SubmitRequestBody represents the approval submission payload
type SubmitRequestBody struct {
	CompanyID  string   `json:"company_id" binding:"required"`
	EmployeeID string   `json:"employee_id" binding:"required"`
	Title      string   `json:"title" binding:"required"`
	ClaimIDs   []string `json:"claim_ids" binding:"required"`
	Priority   string   `json:"priority"`
	TravelDate string   `json:"travel_date" binding:"required"`
}

// SubmitRequest handles POST /api/approvals
func (h *Handlers) SubmitRequest(c *gin.Context) {
	var req SubmitRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}
	travelDate, err := time.Parse(dateLayout, req.TravelDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid travel_date"})
		return
	}

	request, err := h.approvalService.Submit(c.Request.Context(), service.SubmitInput{
		CompanyID:  req.CompanyID,
		EmployeeID: req.EmployeeID,
		Title:      req.Title,
		ClaimIDs:   req.ClaimIDs,
		Priority:   approval.Priority(req.Priority),
		TravelDate: travelDate,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, Response{Success: true, Data: request})
}

// DecisionRequest represents an approve/reject payload
type DecisionRequest struct {
	ApproverName string `json:"approver_name" binding:"required"`
	Reason       string `json:"reason"`
}

// ApproveStep handles POST /api/approvals/:id/steps/:index/approve
func (h *Handlers) ApproveStep(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid step index"})
		return
	}
	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	request, err := h.approvalService.ApproveStep(c.Request.Context(),
		c.Param("id"), index, req.ApproverName)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: request})
}

// RejectStep handles POST /api/approvals/:id/steps/:index/reject
func (h *Handlers) RejectStep(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid step index"})
		return
	}
	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	request, err := h.approvalService.RejectStep(c.Request.Context(),
		c.Param("id"), index, req.ApproverName, req.Reason)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: request})
}

// RejectRequest handles POST /api/approvals/:id/reject
func (h *Handlers) RejectRequest(c *gin.Context) {
	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	request, err := h.approvalService.RejectRequest(c.Request.Context(),
		c.Param("id"), req.ApproverName, req.Reason)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: request})
}

// GetRequest handles GET /api/approvals/:id
func (h *Handlers) GetRequest(c *gin.Context) {
	request, err := h.approvalService.GetRequest(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	if request == nil {
		c.JSON(http.StatusNotFound, Response{Success: false, Error: "request not found"})
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: request})
}

// ListRequests handles GET /api/approvals
func (h *Handlers) ListRequests(c *gin.Context) {
	var req ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid query parameters"})
		return
	}
	req.normalize()

	requests, err := h.approvalService.ListRequests(c.Request.Context(),
		c.Query("company_id"), c.Query("status"), req.Limit, req.Offset)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: requests})
}

// ListOverdueRequests handles GET /api/approvals/overdue
func (h *Handlers) ListOverdueRequests(c *gin.Context) {
	asOf := time.Now()
	if v := c.Query("as_of"); v != "" {
		parsed, err := time.Parse(dateLayout, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid as_of"})
			return
		}
		asOf = parsed
	}

	requests, err := h.approvalService.ListOverdue(c.Request.Context(), c.Query("company_id"), asOf)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: requests})
}

// ReportSummary handles GET /api/reports/summary
func (h *Handlers) ReportSummary(c *gin.Context) {
	asOf := time.Now()
	if v := c.Query("as_of"); v != "" {
		parsed, err := time.Parse(dateLayout, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid as_of"})
			return
		}
		asOf = parsed
	}

	summary, err := h.reportService.Summary(c.Request.Context(), c.Query("company_id"), asOf)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: summary})
}

// ExportSettlementRequest represents the settlement export payload
type ExportSettlementRequest struct {
	CompanyID string `json:"company_id" binding:"required"`
}

// ExportSettlementResponse represents the settlement export result
type ExportSettlementResponse struct {
	FilePath string `json:"file_path"`
}

// ExportSettlement handles POST /api/exports/settlement
func (h *Handlers) ExportSettlement(c *gin.Context) {
	var req ExportSettlementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	path, err := h.exporter.Export(c.Request.Context(), req.CompanyID, time.Now())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    ExportSettlementResponse{FilePath: path},
	})
}
