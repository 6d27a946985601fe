package compensation

import (
	"github.com/lumina-hr/payroll-engine-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== COMPONENT DTOs ==========

type CreateComponentRequest struct {
	Kind   string           `json:"kind"`
	Name   string           `json:"name"`
	Grade  *string          `json:"grade,omitempty"`
	Amount *decimal.Decimal `json:"amount,omitempty"`
	Rate   *decimal.Decimal `json:"rate,omitempty"`
}

func (r *CreateComponentRequest) Validate() error {
	var errs validator.ValidationErrors

	if !Kind(r.Kind).IsValid() {
		errs = append(errs, validator.ValidationError{Field: "kind", Message: "must be a valid component kind"})
	}
	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "is required"})
	}
	if Kind(r.Kind) == KindPayGrade && (r.Grade == nil || validator.IsEmpty(*r.Grade)) {
		errs = append(errs, validator.ValidationError{Field: "grade", Message: "is required for pay grades"})
	}
	if r.Amount != nil && r.Amount.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "amount", Message: "must be non-negative"})
	}
	if r.Rate != nil && r.Rate.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "rate", Message: "must be non-negative"})
	}
	if Kind(r.Kind) == KindTaxRule && r.Rate == nil {
		errs = append(errs, validator.ValidationError{Field: "rate", Message: "is required for tax rules"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ComponentResponse struct {
	ID             string          `json:"id"`
	Kind           string          `json:"kind"`
	Name           string          `json:"name"`
	Grade          *string         `json:"grade,omitempty"`
	Amount         decimal.Decimal `json:"amount"`
	Rate           decimal.Decimal `json:"rate"`
	ApprovalStatus string          `json:"approval_status"`
	CreatedBy      string          `json:"created_by"`
	ApprovedBy     *string         `json:"approved_by,omitempty"`
	ApprovedAt     *string         `json:"approved_at,omitempty"`
}

// ========== EMPLOYEE COMPONENT DTOs ==========

type AssignComponentRequest struct {
	EmployeeID  string `json:"-"`
	ComponentID string `json:"component_id"`
}

func (r *AssignComponentRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ComponentID) {
		errs = append(errs, validator.ValidationError{Field: "component_id", Message: "is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type EmployeeComponentResponse struct {
	ID              string           `json:"id"`
	EmployeeID      string           `json:"employee_id"`
	ComponentID     string           `json:"component_id"`
	ComponentName   string           `json:"component_name"`
	ComponentKind   string           `json:"component_kind"`
	ComponentAmount *decimal.Decimal `json:"component_amount,omitempty"`
}
