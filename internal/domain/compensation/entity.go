package compensation

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind enum
type Kind string

const (
	KindPayGrade           Kind = "pay_grade"
	KindAllowance          Kind = "allowance"
	KindSigningBonus       Kind = "signing_bonus"
	KindTaxRule            Kind = "tax_rule"
	KindInsuranceBracket   Kind = "insurance_bracket"
	KindTerminationBenefit Kind = "termination_benefit"
	KindResignationBenefit Kind = "resignation_benefit"
)

// IsValid reports whether k is a known component kind.
func (k Kind) IsValid() bool {
	switch k {
	case KindPayGrade, KindAllowance, KindSigningBonus, KindTaxRule,
		KindInsuranceBracket, KindTerminationBenefit, KindResignationBenefit:
		return true
	}
	return false
}

// IsDisbursable reports whether k is paid out as a one-time disbursement.
func (k Kind) IsDisbursable() bool {
	return k == KindSigningBonus || k == KindTerminationBenefit || k == KindResignationBenefit
}

// RequiresWorkflow reports whether a disbursement of this kind must be linked
// to an originating workflow record (termination/resignation request).
func (k Kind) RequiresWorkflow() bool {
	return k == KindTerminationBenefit || k == KindResignationBenefit
}

// ApprovalStatus enum
type ApprovalStatus string

const (
	StatusDraft    ApprovalStatus = "draft"
	StatusApproved ApprovalStatus = "approved"
	StatusRejected ApprovalStatus = "rejected"
)

// Component - approval-gated compensation configuration entity.
// ApprovedBy/ApprovedAt are set if and only if ApprovalStatus is approved.
// Components are never physically deleted so historical settlements stay reproducible.
type Component struct {
	ID             string
	Kind           Kind
	Name           string
	Grade          *string // pay grades only
	Amount         decimal.Decimal
	Rate           decimal.Decimal // percent, tax rules and insurance brackets
	ApprovalStatus ApprovalStatus
	CreatedBy      string
	ApprovedBy     *string
	ApprovedAt     *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// EmployeeComponent - recurring component assignment to an employee
type EmployeeComponent struct {
	ID          string
	EmployeeID  string
	ComponentID string
	CreatedAt   time.Time

	// Joined fields
	ComponentName   *string
	ComponentKind   *Kind
	ComponentAmount *decimal.Decimal
	ComponentStatus *ApprovalStatus
}
