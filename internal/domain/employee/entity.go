package employee

import "time"

// Status enum
type Status string

const (
	StatusActive     Status = "active"
	StatusTerminated Status = "terminated"
	StatusResigned   Status = "resigned"
)

// Employee - read-only view of the employee directory. The settlement engine
// never mutates directory data; it only resolves identity, pay grade and bank
// details at computation time.
type Employee struct {
	ID          string
	Code        string
	Name        string
	Grade       string
	BankName    *string
	BankAccount *string
	Status      Status
	HireDate    time.Time
}

// HasBankDetails reports whether the employee can receive a bank transfer.
func (e Employee) HasBankDetails() bool {
	return e.BankName != nil && *e.BankName != "" && e.BankAccount != nil && *e.BankAccount != ""
}
