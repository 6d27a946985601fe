package payroll

import (
	"context"

	"github.com/shopspring/decimal"
)

// Repository defines data access for payroll runs, settlements, payslips and
// penalties. Settlement and payslip writes are keyed on (employee_id,
// payroll_run_id): writing to an existing key overwrites that row, it never
// produces a second one.
type Repository interface {
	// Runs
	CreateRun(ctx context.Context, run PayrollRun) (PayrollRun, error)
	GetRunByID(ctx context.Context, runID string) (PayrollRun, error)
	GetRunByPeriod(ctx context.Context, period string) (PayrollRun, error)
	ListRuns(ctx context.Context) ([]PayrollRun, error)
	UpdateRunStatus(ctx context.Context, runID string, status RunStatus) (PayrollRun, error)
	UpdateRunPaymentStatus(ctx context.Context, runID string, status PaymentStatus) (PayrollRun, error)
	// UpdateRunTotals stores the reconciled aggregates. Only the
	// reconciliation step may call it.
	UpdateRunTotals(ctx context.Context, runID string, employeeCount, exceptionCount int, totalNetPay decimal.Decimal) (PayrollRun, error)

	// Settlements
	GetSettlement(ctx context.Context, employeeID, runID string) (EmployeeSettlement, error)
	ListSettlements(ctx context.Context, runID string) ([]EmployeeSettlement, error)
	UpsertSettlement(ctx context.Context, settlement EmployeeSettlement) (EmployeeSettlement, error)

	// Payslips
	GetPayslip(ctx context.Context, employeeID, runID string) (Payslip, error)
	UpsertPayslip(ctx context.Context, payslip Payslip) (Payslip, error)
	MarkPayslipsPaid(ctx context.Context, runID string) error

	// Penalties
	GetPenalties(ctx context.Context, employeeID string) (EmployeePenalty, error)
	AppendPenalty(ctx context.Context, employeeID string, entry PenaltyEntry) (EmployeePenalty, error)
}
