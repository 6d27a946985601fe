package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lumina-hr/payroll-engine-go/internal/domain/disbursement"
	"github.com/lumina-hr/payroll-engine-go/internal/handler/http/response"
)

type DisbursementHandler interface {
	Assign(w http.ResponseWriter, r *http.Request)
	GetAssignment(w http.ResponseWriter, r *http.Request)
	ListByEmployee(w http.ResponseWriter, r *http.Request)
}

type disbursementHandlerImpl struct {
	disbursementService disbursement.Service
}

func NewDisbursementHandler(disbursementService disbursement.Service) DisbursementHandler {
	return &disbursementHandlerImpl{disbursementService: disbursementService}
}

func (h *disbursementHandlerImpl) Assign(w http.ResponseWriter, r *http.Request) {
	var req disbursement.AssignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.disbursementService.Assign(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *disbursementHandlerImpl) GetAssignment(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeId")
	componentID := chi.URLParam(r, "componentId")
	if employeeID == "" || componentID == "" {
		response.BadRequest(w, "Employee ID and component ID are required", nil)
		return
	}

	result, err := h.disbursementService.GetAssignment(r.Context(), employeeID, componentID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *disbursementHandlerImpl) ListByEmployee(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeId")
	if employeeID == "" {
		response.BadRequest(w, "Employee ID is required", nil)
		return
	}

	result, err := h.disbursementService.ListByEmployee(r.Context(), employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
