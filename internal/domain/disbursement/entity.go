package disbursement

import (
	"time"

	"github.com/lumina-hr/payroll-engine-go/internal/domain/compensation"
	"github.com/shopspring/decimal"
)

// Status enum
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// IsValid reports whether s is a known assignment status.
func (s Status) IsValid() bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

// Assignment - a one-time payout (signing bonus, termination/resignation
// benefit) granted to an employee. Unique on (EmployeeID, ComponentID):
// re-assigning the same component overwrites the row, so exactly one record
// reflects the latest status. PaymentDate is present only while Status is
// approved; LinkedWorkflowID is mandatory for termination/resignation kinds.
type Assignment struct {
	ID               string
	EmployeeID       string
	ComponentID      string
	GivenAmount      decimal.Decimal
	PaymentDate      *time.Time
	Status           Status
	LinkedWorkflowID *string
	CreatedAt        time.Time
	UpdatedAt        time.Time

	// Joined fields
	ComponentName *string
	ComponentKind *compensation.Kind
}
