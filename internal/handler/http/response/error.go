package response

import (
	"errors"
	"net/http"

	"github.com/lumina-hr/payroll-engine-go/internal/domain/compensation"
	"github.com/lumina-hr/payroll-engine-go/internal/domain/disbursement"
	"github.com/lumina-hr/payroll-engine-go/internal/domain/employee"
	"github.com/lumina-hr/payroll-engine-go/internal/domain/payroll"
	"github.com/lumina-hr/payroll-engine-go/internal/domain/workflow"
	"github.com/lumina-hr/payroll-engine-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Compensation domain errors
	case errors.Is(err, compensation.ErrComponentNotFound):
		NotFound(w, "Compensation component not found")
	case errors.Is(err, compensation.ErrComponentNotApproved):
		Conflict(w, "Compensation component is not approved")
	case errors.Is(err, compensation.ErrComponentNameExists):
		Conflict(w, "Component name already exists for this kind")
	case errors.Is(err, compensation.ErrComponentAlreadyFinal):
		Conflict(w, "Component approval already decided")
	case errors.Is(err, compensation.ErrInvalidKind):
		BadRequest(w, "Invalid component kind", nil)
	case errors.Is(err, compensation.ErrNotDisbursable):
		BadRequest(w, "Component kind is not disbursable", nil)
	case errors.Is(err, compensation.ErrAssignmentNotRecurring):
		BadRequest(w, "Only recurring components can be assigned directly", nil)
	case errors.Is(err, compensation.ErrAssignmentNotFound):
		NotFound(w, "Employee component assignment not found")

	// Payroll domain errors
	case errors.Is(err, payroll.ErrRunNotFound):
		NotFound(w, "Payroll run not found")
	case errors.Is(err, payroll.ErrRunAlreadyExists):
		Conflict(w, "A payroll run already exists for this period")
	case errors.Is(err, payroll.ErrRunFinalized):
		Conflict(w, "Payroll run is finalized")
	case errors.Is(err, payroll.ErrInvalidRunTransition):
		Conflict(w, "Invalid payroll run status transition")
	case errors.Is(err, payroll.ErrInvalidPeriod):
		BadRequest(w, "Invalid payroll period", nil)
	case errors.Is(err, payroll.ErrSettlementNotFound):
		NotFound(w, "Employee settlement not found")
	case errors.Is(err, payroll.ErrPayslipNotFound):
		NotFound(w, "Payslip not found")
	case errors.Is(err, payroll.ErrPenaltiesNotFound):
		NotFound(w, "No penalties recorded for this employee")

	// Disbursement domain errors
	case errors.Is(err, disbursement.ErrAssignmentNotFound):
		NotFound(w, "Disbursement assignment not found")
	case errors.Is(err, disbursement.ErrMissingWorkflowReference):
		Conflict(w, "No workflow record to link the disbursement to")
	case errors.Is(err, disbursement.ErrInvalidStatus):
		BadRequest(w, "Invalid disbursement status", nil)
	case errors.Is(err, disbursement.ErrPaymentDateWithoutApproval):
		BadRequest(w, "Payment date requires approved status", nil)

	// Collaborator errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, workflow.ErrRecordNotFound):
		NotFound(w, "Workflow record not found")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
