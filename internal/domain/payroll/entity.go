package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// RunStatus enum
type RunStatus string

const (
	RunStatusDraft      RunStatus = "draft"
	RunStatusProcessing RunStatus = "processing"
	RunStatusFinalized  RunStatus = "finalized"
)

// PaymentStatus enum
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
)

// BankStatus enum
type BankStatus string

const (
	BankStatusVerified BankStatus = "verified"
	BankStatusMissing  BankStatus = "missing"
)

// PayrollRun - the aggregate ledger for one pay period. Exactly one run exists
// per period. EmployeeCount, ExceptionCount and TotalNetPay are derived values,
// recomputed by reconciliation from the stored settlements and never hand-edited.
type PayrollRun struct {
	ID             string
	RunID          string
	Period         string // YYYY-MM
	Status         RunStatus
	PaymentStatus  PaymentStatus
	EmployeeCount  int
	ExceptionCount int
	TotalNetPay    decimal.Decimal
	SpecialistID   string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// EmployeeSettlement - computed financial outcome for one employee in one run.
// Unique on (EmployeeID, PayrollRunID); recomputation overwrites, never appends.
type EmployeeSettlement struct {
	ID              string
	EmployeeID      string
	PayrollRunID    string
	BaseSalary      decimal.Decimal
	AllowancesTotal decimal.Decimal
	BonusTotal      decimal.Decimal
	BenefitTotal    decimal.Decimal
	GrossPay        decimal.Decimal
	TaxAmount       decimal.Decimal
	PenaltiesTotal  decimal.Decimal
	DeductionsTotal decimal.Decimal
	NetPay          decimal.Decimal
	BankStatus      BankStatus
	Exceptions      []string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// PayslipItem - one itemized earning or deduction line
type PayslipItem struct {
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
}

type EarningsDetails struct {
	BaseSalary decimal.Decimal `json:"base_salary"`
	Allowances []PayslipItem   `json:"allowances"`
	Bonuses    []PayslipItem   `json:"bonuses"`
	Benefits   []PayslipItem   `json:"benefits"`
	Refunds    []PayslipItem   `json:"refunds"`
}

type DeductionsDetails struct {
	Taxes      []PayslipItem `json:"taxes"`
	Insurances []PayslipItem `json:"insurances"`
	Penalties  []PayslipItem `json:"penalties"`
}

// Payslip - denormalized point-in-time snapshot of a settlement's itemization.
// Unique on (EmployeeID, PayrollRunID); totals must always equal the settlement
// row it mirrors.
type Payslip struct {
	ID                string
	EmployeeID        string
	PayrollRunID      string
	EarningsDetails   EarningsDetails
	DeductionsDetails DeductionsDetails
	TotalGrossSalary  decimal.Decimal
	TotalDeductions   decimal.Decimal
	NetPay            decimal.Decimal
	PaymentStatus     PaymentStatus
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// PenaltyEntry - one penalty line against an employee
type PenaltyEntry struct {
	Reason string          `json:"reason"`
	Amount decimal.Decimal `json:"amount"`
}

// EmployeePenalty - one document per employee, appended to over time
type EmployeePenalty struct {
	ID         string
	EmployeeID string
	Penalties  []PenaltyEntry
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
