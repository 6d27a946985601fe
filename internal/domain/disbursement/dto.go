package disbursement

import (
	"github.com/lumina-hr/payroll-engine-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type AssignRequest struct {
	EmployeeID  string           `json:"employee_id"`
	ComponentID string           `json:"component_id"`
	Status      string           `json:"status"`
	GivenAmount *decimal.Decimal `json:"given_amount,omitempty"`
	PaymentDate *string          `json:"payment_date,omitempty"` // YYYY-MM-DD
	WorkflowID  *string          `json:"workflow_id,omitempty"`
}

func (r *AssignRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "is required"})
	}
	if validator.IsEmpty(r.ComponentID) {
		errs = append(errs, validator.ValidationError{Field: "component_id", Message: "is required"})
	}
	if !Status(r.Status).IsValid() {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "must be 'pending', 'approved' or 'rejected'"})
	}
	if r.GivenAmount != nil && r.GivenAmount.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "given_amount", Message: "must be non-negative"})
	}
	if r.PaymentDate != nil {
		if _, ok := validator.IsValidDate(*r.PaymentDate); !ok {
			errs = append(errs, validator.ValidationError{Field: "payment_date", Message: "must be in YYYY-MM-DD format"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type AssignmentResponse struct {
	ID               string          `json:"id"`
	EmployeeID       string          `json:"employee_id"`
	ComponentID      string          `json:"component_id"`
	ComponentName    *string         `json:"component_name,omitempty"`
	ComponentKind    *string         `json:"component_kind,omitempty"`
	GivenAmount      decimal.Decimal `json:"given_amount"`
	PaymentDate      *string         `json:"payment_date,omitempty"`
	Status           string          `json:"status"`
	LinkedWorkflowID *string         `json:"linked_workflow_id,omitempty"`
}
