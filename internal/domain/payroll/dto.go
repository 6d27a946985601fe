package payroll

import (
	"regexp"

	"github.com/lumina-hr/payroll-engine-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== RUN DTOs ==========

var periodRegex = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

type OpenRunRequest struct {
	Period string `json:"period"` // YYYY-MM
}

func (r *OpenRunRequest) Validate() error {
	var errs validator.ValidationErrors

	if !periodRegex.MatchString(r.Period) {
		errs = append(errs, validator.ValidationError{Field: "period", Message: "must be in YYYY-MM format"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type RunResponse struct {
	ID             string          `json:"id"`
	RunID          string          `json:"run_id"`
	Period         string          `json:"period"`
	Status         string          `json:"status"`
	PaymentStatus  string          `json:"payment_status"`
	EmployeeCount  int             `json:"employee_count"`
	ExceptionCount int             `json:"exception_count"`
	TotalNetPay    decimal.Decimal `json:"total_net_pay"`
	SpecialistID   string          `json:"specialist_id"`
}

// SettlementFailure - a per-employee failure collected while processing a run.
// Failures are data, not control flow: one employee failing never aborts the run.
type SettlementFailure struct {
	EmployeeID string `json:"employee_id"`
	Reason     string `json:"reason"`
}

type ProcessRunResponse struct {
	Run            RunResponse         `json:"run"`
	ProcessedCount int                 `json:"processed_count"`
	Failures       []SettlementFailure `json:"failures,omitempty"`
}

// ========== SETTLEMENT DTOs ==========

type SettlementResponse struct {
	ID              string          `json:"id"`
	EmployeeID      string          `json:"employee_id"`
	PayrollRunID    string          `json:"payroll_run_id"`
	BaseSalary      decimal.Decimal `json:"base_salary"`
	AllowancesTotal decimal.Decimal `json:"allowances_total"`
	BonusTotal      decimal.Decimal `json:"bonus_total"`
	BenefitTotal    decimal.Decimal `json:"benefit_total"`
	GrossPay        decimal.Decimal `json:"gross_pay"`
	TaxAmount       decimal.Decimal `json:"tax_amount"`
	PenaltiesTotal  decimal.Decimal `json:"penalties_total"`
	DeductionsTotal decimal.Decimal `json:"deductions_total"`
	NetPay          decimal.Decimal `json:"net_pay"`
	BankStatus      string          `json:"bank_status"`
	Exceptions      []string        `json:"exceptions,omitempty"`
}

type PayslipResponse struct {
	ID                string            `json:"id"`
	EmployeeID        string            `json:"employee_id"`
	PayrollRunID      string            `json:"payroll_run_id"`
	EarningsDetails   EarningsDetails   `json:"earnings_details"`
	DeductionsDetails DeductionsDetails `json:"deductions_details"`
	TotalGrossSalary  decimal.Decimal   `json:"total_gross_salary"`
	TotalDeductions   decimal.Decimal   `json:"total_deductions"`
	NetPay            decimal.Decimal   `json:"net_pay"`
	PaymentStatus     string            `json:"payment_status"`
}

// ========== PENALTY DTOs ==========

type AddPenaltyRequest struct {
	EmployeeID string          `json:"-"`
	Reason     string          `json:"reason"`
	Amount     decimal.Decimal `json:"amount"`
}

func (r *AddPenaltyRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{Field: "reason", Message: "is required"})
	}
	if !r.Amount.IsPositive() {
		errs = append(errs, validator.ValidationError{Field: "amount", Message: "must be positive"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type PenaltyResponse struct {
	EmployeeID string          `json:"employee_id"`
	Penalties  []PenaltyEntry  `json:"penalties"`
	Total      decimal.Decimal `json:"total"`
}
