package postgresql

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/lumina-hr/payroll-engine-go/internal/domain/payroll"
	"github.com/lumina-hr/payroll-engine-go/internal/pkg/database"
	"github.com/shopspring/decimal"
)

type payrollRepository struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.Repository {
	return &payrollRepository{db: db}
}

// ========== RUNS ==========

const runColumns = `id, run_id, period, status, payment_status, employee_count,
	exception_count, total_net_pay, specialist_id, created_at, updated_at`

func scanRun(row pgx.Row) (payroll.PayrollRun, error) {
	var run payroll.PayrollRun
	err := row.Scan(
		&run.ID, &run.RunID, &run.Period, &run.Status, &run.PaymentStatus,
		&run.EmployeeCount, &run.ExceptionCount, &run.TotalNetPay,
		&run.SpecialistID, &run.CreatedAt, &run.UpdatedAt,
	)
	return run, err
}

func (r *payrollRepository) CreateRun(ctx context.Context, run payroll.PayrollRun) (payroll.PayrollRun, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_runs (run_id, period, status, payment_status, total_net_pay, specialist_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + runColumns

	created, err := scanRun(q.QueryRow(ctx, query,
		run.RunID, run.Period, run.Status, run.PaymentStatus, run.TotalNetPay, run.SpecialistID,
	))
	if err != nil {
		if strings.Contains(err.Error(), "uk_payroll_run_period") || strings.Contains(err.Error(), "uk_payroll_run_id") {
			return payroll.PayrollRun{}, payroll.ErrRunAlreadyExists
		}
		return payroll.PayrollRun{}, fmt.Errorf("failed to create payroll run: %w", err)
	}

	return created, nil
}

func (r *payrollRepository) GetRunByID(ctx context.Context, runID string) (payroll.PayrollRun, error) {
	q := GetQuerier(ctx, r.db)

	run, err := scanRun(q.QueryRow(ctx, `SELECT `+runColumns+` FROM payroll_runs WHERE run_id = $1`, runID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.PayrollRun{}, payroll.ErrRunNotFound
		}
		return payroll.PayrollRun{}, fmt.Errorf("failed to get payroll run: %w", err)
	}

	return run, nil
}

func (r *payrollRepository) GetRunByPeriod(ctx context.Context, period string) (payroll.PayrollRun, error) {
	q := GetQuerier(ctx, r.db)

	run, err := scanRun(q.QueryRow(ctx, `SELECT `+runColumns+` FROM payroll_runs WHERE period = $1`, period))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.PayrollRun{}, payroll.ErrRunNotFound
		}
		return payroll.PayrollRun{}, fmt.Errorf("failed to get payroll run by period: %w", err)
	}

	return run, nil
}

func (r *payrollRepository) ListRuns(ctx context.Context) ([]payroll.PayrollRun, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT `+runColumns+` FROM payroll_runs ORDER BY period DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll runs: %w", err)
	}
	defer rows.Close()

	var runs []payroll.PayrollRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll run: %w", err)
		}
		runs = append(runs, run)
	}

	return runs, nil
}

func (r *payrollRepository) UpdateRunStatus(ctx context.Context, runID string, status payroll.RunStatus) (payroll.PayrollRun, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_runs
		SET status = $2, updated_at = NOW()
		WHERE run_id = $1
		RETURNING ` + runColumns

	run, err := scanRun(q.QueryRow(ctx, query, runID, status))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.PayrollRun{}, payroll.ErrRunNotFound
		}
		return payroll.PayrollRun{}, fmt.Errorf("failed to update payroll run status: %w", err)
	}

	return run, nil
}

func (r *payrollRepository) UpdateRunPaymentStatus(ctx context.Context, runID string, status payroll.PaymentStatus) (payroll.PayrollRun, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_runs
		SET payment_status = $2, updated_at = NOW()
		WHERE run_id = $1
		RETURNING ` + runColumns

	run, err := scanRun(q.QueryRow(ctx, query, runID, status))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.PayrollRun{}, payroll.ErrRunNotFound
		}
		return payroll.PayrollRun{}, fmt.Errorf("failed to update payroll run payment status: %w", err)
	}

	return run, nil
}

func (r *payrollRepository) UpdateRunTotals(ctx context.Context, runID string, employeeCount, exceptionCount int, totalNetPay decimal.Decimal) (payroll.PayrollRun, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_runs
		SET employee_count = $2, exception_count = $3, total_net_pay = $4, updated_at = NOW()
		WHERE run_id = $1
		RETURNING ` + runColumns

	run, err := scanRun(q.QueryRow(ctx, query, runID, employeeCount, exceptionCount, totalNetPay))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.PayrollRun{}, payroll.ErrRunNotFound
		}
		return payroll.PayrollRun{}, fmt.Errorf("failed to update payroll run totals: %w", err)
	}

	return run, nil
}

// ========== SETTLEMENTS ==========

const settlementColumns = `id, employee_id, payroll_run_id, base_salary, allowances_total,
	bonus_total, benefit_total, gross_pay, tax_amount, penalties_total,
	deductions_total, net_pay, bank_status, exceptions, created_at, updated_at`

func scanSettlement(row pgx.Row) (payroll.EmployeeSettlement, error) {
	var st payroll.EmployeeSettlement
	var exceptionsBytes []byte
	err := row.Scan(
		&st.ID, &st.EmployeeID, &st.PayrollRunID, &st.BaseSalary, &st.AllowancesTotal,
		&st.BonusTotal, &st.BenefitTotal, &st.GrossPay, &st.TaxAmount, &st.PenaltiesTotal,
		&st.DeductionsTotal, &st.NetPay, &st.BankStatus, &exceptionsBytes, &st.CreatedAt, &st.UpdatedAt,
	)
	if err != nil {
		return payroll.EmployeeSettlement{}, err
	}
	if len(exceptionsBytes) > 0 {
		_ = json.Unmarshal(exceptionsBytes, &st.Exceptions)
	}
	return st, nil
}

func (r *payrollRepository) GetSettlement(ctx context.Context, employeeID, runID string) (payroll.EmployeeSettlement, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + settlementColumns + `
		FROM employee_settlements
		WHERE employee_id = $1 AND payroll_run_id = $2`

	st, err := scanSettlement(q.QueryRow(ctx, query, employeeID, runID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.EmployeeSettlement{}, payroll.ErrSettlementNotFound
		}
		return payroll.EmployeeSettlement{}, fmt.Errorf("failed to get employee settlement: %w", err)
	}

	return st, nil
}

func (r *payrollRepository) ListSettlements(ctx context.Context, runID string) ([]payroll.EmployeeSettlement, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + settlementColumns + `
		FROM employee_settlements
		WHERE payroll_run_id = $1
		ORDER BY employee_id`

	rows, err := q.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list employee settlements: %w", err)
	}
	defer rows.Close()

	var settlements []payroll.EmployeeSettlement
	for rows.Next() {
		st, err := scanSettlement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee settlement: %w", err)
		}
		settlements = append(settlements, st)
	}

	return settlements, nil
}

// UpsertSettlement writes the settlement keyed on (employee_id,
// payroll_run_id). A second write for the same key overwrites the first row;
// the uniqueness constraint is what makes recomputation and concurrent
// invocation safe.
func (r *payrollRepository) UpsertSettlement(ctx context.Context, settlement payroll.EmployeeSettlement) (payroll.EmployeeSettlement, error) {
	q := GetQuerier(ctx, r.db)

	exceptionsJSON, _ := json.Marshal(settlement.Exceptions)

	query := `
		INSERT INTO employee_settlements (
			employee_id, payroll_run_id, base_salary, allowances_total, bonus_total,
			benefit_total, gross_pay, tax_amount, penalties_total, deductions_total,
			net_pay, bank_status, exceptions
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (employee_id, payroll_run_id) DO UPDATE SET
			base_salary = EXCLUDED.base_salary,
			allowances_total = EXCLUDED.allowances_total,
			bonus_total = EXCLUDED.bonus_total,
			benefit_total = EXCLUDED.benefit_total,
			gross_pay = EXCLUDED.gross_pay,
			tax_amount = EXCLUDED.tax_amount,
			penalties_total = EXCLUDED.penalties_total,
			deductions_total = EXCLUDED.deductions_total,
			net_pay = EXCLUDED.net_pay,
			bank_status = EXCLUDED.bank_status,
			exceptions = EXCLUDED.exceptions,
			updated_at = NOW()
		RETURNING ` + settlementColumns

	st, err := scanSettlement(q.QueryRow(ctx, query,
		settlement.EmployeeID, settlement.PayrollRunID, settlement.BaseSalary,
		settlement.AllowancesTotal, settlement.BonusTotal, settlement.BenefitTotal,
		settlement.GrossPay, settlement.TaxAmount, settlement.PenaltiesTotal,
		settlement.DeductionsTotal, settlement.NetPay, settlement.BankStatus, exceptionsJSON,
	))
	if err != nil {
		return payroll.EmployeeSettlement{}, fmt.Errorf("failed to upsert employee settlement: %w", err)
	}

	return st, nil
}

// ========== PAYSLIPS ==========

const payslipColumns = `id, employee_id, payroll_run_id, earnings_details, deductions_details,
	total_gross_salary, total_deductions, net_pay, payment_status, created_at, updated_at`

func scanPayslip(row pgx.Row) (payroll.Payslip, error) {
	var p payroll.Payslip
	var earningsBytes, deductionsBytes []byte
	err := row.Scan(
		&p.ID, &p.EmployeeID, &p.PayrollRunID, &earningsBytes, &deductionsBytes,
		&p.TotalGrossSalary, &p.TotalDeductions, &p.NetPay, &p.PaymentStatus,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return payroll.Payslip{}, err
	}
	_ = json.Unmarshal(earningsBytes, &p.EarningsDetails)
	_ = json.Unmarshal(deductionsBytes, &p.DeductionsDetails)
	return p, nil
}

func (r *payrollRepository) GetPayslip(ctx context.Context, employeeID, runID string) (payroll.Payslip, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + payslipColumns + `
		FROM payslips
		WHERE employee_id = $1 AND payroll_run_id = $2`

	p, err := scanPayslip(q.QueryRow(ctx, query, employeeID, runID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.Payslip{}, payroll.ErrPayslipNotFound
		}
		return payroll.Payslip{}, fmt.Errorf("failed to get payslip: %w", err)
	}

	return p, nil
}

func (r *payrollRepository) UpsertPayslip(ctx context.Context, payslip payroll.Payslip) (payroll.Payslip, error) {
	q := GetQuerier(ctx, r.db)

	earningsJSON, _ := json.Marshal(payslip.EarningsDetails)
	deductionsJSON, _ := json.Marshal(payslip.DeductionsDetails)

	query := `
		INSERT INTO payslips (
			employee_id, payroll_run_id, earnings_details, deductions_details,
			total_gross_salary, total_deductions, net_pay, payment_status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (employee_id, payroll_run_id) DO UPDATE SET
			earnings_details = EXCLUDED.earnings_details,
			deductions_details = EXCLUDED.deductions_details,
			total_gross_salary = EXCLUDED.total_gross_salary,
			total_deductions = EXCLUDED.total_deductions,
			net_pay = EXCLUDED.net_pay,
			payment_status = EXCLUDED.payment_status,
			updated_at = NOW()
		RETURNING ` + payslipColumns

	p, err := scanPayslip(q.QueryRow(ctx, query,
		payslip.EmployeeID, payslip.PayrollRunID, earningsJSON, deductionsJSON,
		payslip.TotalGrossSalary, payslip.TotalDeductions, payslip.NetPay, payslip.PaymentStatus,
	))
	if err != nil {
		return payroll.Payslip{}, fmt.Errorf("failed to upsert payslip: %w", err)
	}

	return p, nil
}

func (r *payrollRepository) MarkPayslipsPaid(ctx context.Context, runID string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payslips
		SET payment_status = $2, updated_at = NOW()
		WHERE payroll_run_id = $1
	`

	if _, err := q.Exec(ctx, query, runID, payroll.PaymentStatusPaid); err != nil {
		return fmt.Errorf("failed to mark payslips paid: %w", err)
	}

	return nil
}

// ========== PENALTIES ==========

func (r *payrollRepository) GetPenalties(ctx context.Context, employeeID string) (payroll.EmployeePenalty, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, penalties, created_at, updated_at
		FROM employee_penalties
		WHERE employee_id = $1
	`

	var doc payroll.EmployeePenalty
	var penaltiesBytes []byte
	err := q.QueryRow(ctx, query, employeeID).Scan(
		&doc.ID, &doc.EmployeeID, &penaltiesBytes, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.EmployeePenalty{}, payroll.ErrPenaltiesNotFound
		}
		return payroll.EmployeePenalty{}, fmt.Errorf("failed to get employee penalties: %w", err)
	}
	_ = json.Unmarshal(penaltiesBytes, &doc.Penalties)

	return doc, nil
}

// AppendPenalty keeps one penalty document per employee and appends the new
// entry to its jsonb array.
func (r *payrollRepository) AppendPenalty(ctx context.Context, employeeID string, entry payroll.PenaltyEntry) (payroll.EmployeePenalty, error) {
	q := GetQuerier(ctx, r.db)

	entryJSON, _ := json.Marshal([]payroll.PenaltyEntry{entry})

	query := `
		INSERT INTO employee_penalties (employee_id, penalties)
		VALUES ($1, $2)
		ON CONFLICT (employee_id) DO UPDATE SET
			penalties = employee_penalties.penalties || EXCLUDED.penalties,
			updated_at = NOW()
		RETURNING id, employee_id, penalties, created_at, updated_at
	`

	var doc payroll.EmployeePenalty
	var penaltiesBytes []byte
	err := q.QueryRow(ctx, query, employeeID, entryJSON).Scan(
		&doc.ID, &doc.EmployeeID, &penaltiesBytes, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		return payroll.EmployeePenalty{}, fmt.Errorf("failed to append employee penalty: %w", err)
	}
	_ = json.Unmarshal(penaltiesBytes, &doc.Penalties)

	return doc, nil
}
