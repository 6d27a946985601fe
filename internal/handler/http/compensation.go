package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lumina-hr/payroll-engine-go/internal/domain/compensation"
	"github.com/lumina-hr/payroll-engine-go/internal/handler/http/response"
)

type CompensationHandler interface {
	// Components
	CreateComponent(w http.ResponseWriter, r *http.Request)
	GetComponent(w http.ResponseWriter, r *http.Request)
	ListComponents(w http.ResponseWriter, r *http.Request)
	ApproveComponent(w http.ResponseWriter, r *http.Request)
	RejectComponent(w http.ResponseWriter, r *http.Request)

	// Employee Components
	AssignComponent(w http.ResponseWriter, r *http.Request)
	GetEmployeeComponents(w http.ResponseWriter, r *http.Request)
	RemoveEmployeeComponent(w http.ResponseWriter, r *http.Request)
}

type compensationHandlerImpl struct {
	compensationService compensation.Service
}

func NewCompensationHandler(compensationService compensation.Service) CompensationHandler {
	return &compensationHandlerImpl{compensationService: compensationService}
}

// ========== COMPONENTS ==========

func (h *compensationHandlerImpl) CreateComponent(w http.ResponseWriter, r *http.Request) {
	var req compensation.CreateComponentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.compensationService.CreateComponent(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Compensation component created", result)
}

func (h *compensationHandlerImpl) GetComponent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Component ID is required", nil)
		return
	}

	result, err := h.compensationService.GetComponent(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *compensationHandlerImpl) ListComponents(w http.ResponseWriter, r *http.Request) {
	kind := r.URL.Query().Get("kind")

	result, err := h.compensationService.ListComponents(r.Context(), kind)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *compensationHandlerImpl) ApproveComponent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Component ID is required", nil)
		return
	}

	result, err := h.compensationService.ApproveComponent(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Component approved", result)
}

func (h *compensationHandlerImpl) RejectComponent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Component ID is required", nil)
		return
	}

	result, err := h.compensationService.RejectComponent(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Component rejected", result)
}

// ========== EMPLOYEE COMPONENTS ==========

func (h *compensationHandlerImpl) AssignComponent(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeId")
	if employeeID == "" {
		response.BadRequest(w, "Employee ID is required", nil)
		return
	}

	var req compensation.AssignComponentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.EmployeeID = employeeID

	result, err := h.compensationService.AssignComponent(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Component assigned to employee", result)
}

func (h *compensationHandlerImpl) GetEmployeeComponents(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeId")
	if employeeID == "" {
		response.BadRequest(w, "Employee ID is required", nil)
		return
	}

	result, err := h.compensationService.GetEmployeeComponents(r.Context(), employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *compensationHandlerImpl) RemoveEmployeeComponent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Employee component ID is required", nil)
		return
	}

	if err := h.compensationService.RemoveEmployeeComponent(r.Context(), id); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Employee component removed successfully", nil)
}
