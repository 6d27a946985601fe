package payroll

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/lumina-hr/payroll-engine-go/internal/domain/compensation"
	"github.com/lumina-hr/payroll-engine-go/internal/domain/disbursement"
	"github.com/lumina-hr/payroll-engine-go/internal/domain/employee"
	"github.com/lumina-hr/payroll-engine-go/internal/domain/payroll"
	"github.com/lumina-hr/payroll-engine-go/internal/pkg/database"
	"github.com/lumina-hr/payroll-engine-go/internal/repository/postgresql"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// Exception strings recorded on a settlement. These flag the row for finance
// review; they never block the computation itself.
const (
	ExceptionMissingBankDetails = "missing bank details"
	ExceptionNegativeNetPay     = "negative net pay"
)

// transactFunc runs fn with a context scoped to one database transaction.
type transactFunc func(ctx context.Context, fn func(ctx context.Context) error) error

type PayrollServiceImpl struct {
	db               *database.DB
	payrollRepo      payroll.Repository
	compensationRepo compensation.Repository
	employeeRepo     employee.Repository
	disbursementRepo disbursement.Repository
	calculator       *SettlementCalculator
	workers          int
	transact         transactFunc
}

func NewPayrollService(
	db *database.DB,
	payrollRepo payroll.Repository,
	compensationRepo compensation.Repository,
	employeeRepo employee.Repository,
	disbursementRepo disbursement.Repository,
	calculator *SettlementCalculator,
	workers int,
) payroll.Service {
	if workers < 1 {
		workers = 1
	}
	return &PayrollServiceImpl{
		db:               db,
		payrollRepo:      payrollRepo,
		compensationRepo: compensationRepo,
		employeeRepo:     employeeRepo,
		disbursementRepo: disbursementRepo,
		calculator:       calculator,
		workers:          workers,
		transact: func(ctx context.Context, fn func(ctx context.Context) error) error {
			return postgresql.WithTransaction(ctx, db, func(tx pgx.Tx) error {
				return fn(context.WithValue(ctx, "tx", tx))
			})
		},
	}
}

// Helper to get user_id from JWT context
func getClaimsFromContext(ctx context.Context) (userID string, err error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to extract claims from context: %w", err)
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("user_id claim is missing or invalid")
	}

	return userID, nil
}

// ========== RUN LIFECYCLE ==========

func (s *PayrollServiceImpl) OpenRun(ctx context.Context, req payroll.OpenRunRequest) (payroll.RunResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.RunResponse{}, err
	}

	specialistID, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.RunResponse{}, err
	}

	run := payroll.PayrollRun{
		RunID:         uuid.New().String(),
		Period:        req.Period,
		Status:        payroll.RunStatusDraft,
		PaymentStatus: payroll.PaymentStatusPending,
		TotalNetPay:   decimal.Zero,
		SpecialistID:  specialistID,
	}

	created, err := s.payrollRepo.CreateRun(ctx, run)
	if err != nil {
		return payroll.RunResponse{}, err
	}

	return mapToRunResponse(created), nil
}

func (s *PayrollServiceImpl) GetRun(ctx context.Context, runID string) (payroll.RunResponse, error) {
	run, err := s.payrollRepo.GetRunByID(ctx, runID)
	if err != nil {
		return payroll.RunResponse{}, err
	}
	return mapToRunResponse(run), nil
}

func (s *PayrollServiceImpl) ListRuns(ctx context.Context) ([]payroll.RunResponse, error) {
	runs, err := s.payrollRepo.ListRuns(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]payroll.RunResponse, 0, len(runs))
	for _, run := range runs {
		result = append(result, mapToRunResponse(run))
	}
	return result, nil
}

func (s *PayrollServiceImpl) FinalizeRun(ctx context.Context, runID string) (payroll.RunResponse, error) {
	run, err := s.payrollRepo.GetRunByID(ctx, runID)
	if err != nil {
		return payroll.RunResponse{}, err
	}
	if run.Status != payroll.RunStatusProcessing {
		return payroll.RunResponse{}, fmt.Errorf("run %s is %s: %w", runID, run.Status, payroll.ErrInvalidRunTransition)
	}

	updated, err := s.payrollRepo.UpdateRunStatus(ctx, runID, payroll.RunStatusFinalized)
	if err != nil {
		return payroll.RunResponse{}, err
	}
	return mapToRunResponse(updated), nil
}

func (s *PayrollServiceImpl) MarkRunPaid(ctx context.Context, runID string) (payroll.RunResponse, error) {
	run, err := s.payrollRepo.GetRunByID(ctx, runID)
	if err != nil {
		return payroll.RunResponse{}, err
	}
	if run.Status != payroll.RunStatusFinalized {
		return payroll.RunResponse{}, fmt.Errorf("run %s is %s: %w", runID, run.Status, payroll.ErrInvalidRunTransition)
	}

	settlements, err := s.payrollRepo.ListSettlements(ctx, runID)
	if err != nil {
		return payroll.RunResponse{}, err
	}
	employeeIDs := make([]string, 0, len(settlements))
	for _, st := range settlements {
		employeeIDs = append(employeeIDs, st.EmployeeID)
	}

	var updated payroll.PayrollRun
	err = s.transact(ctx, func(txCtx context.Context) error {
		updated, err = s.payrollRepo.UpdateRunPaymentStatus(txCtx, runID, payroll.PaymentStatusPaid)
		if err != nil {
			return err
		}
		if err := s.payrollRepo.MarkPayslipsPaid(txCtx, runID); err != nil {
			return err
		}
		// One-time disbursements included in this run are now paid out; the
		// payment date keeps them out of any later run.
		if len(employeeIDs) > 0 {
			if _, err := s.disbursementRepo.MarkPaidByEmployees(txCtx, employeeIDs, time.Now()); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return payroll.RunResponse{}, err
	}

	return mapToRunResponse(updated), nil
}

// ========== SETTLEMENT COMPUTATION ==========

func (s *PayrollServiceImpl) ComputeSettlement(ctx context.Context, employeeID, runID string) (payroll.SettlementResponse, error) {
	run, err := s.payrollRepo.GetRunByID(ctx, runID)
	if err != nil {
		return payroll.SettlementResponse{}, err
	}
	if run.Status == payroll.RunStatusFinalized {
		return payroll.SettlementResponse{}, payroll.ErrRunFinalized
	}

	emp, err := s.employeeRepo.GetByID(ctx, employeeID)
	if err != nil {
		return payroll.SettlementResponse{}, fmt.Errorf("employee %s: %w", employeeID, err)
	}

	settlement, err := s.computeForEmployee(ctx, emp, run)
	if err != nil {
		return payroll.SettlementResponse{}, err
	}

	return mapToSettlementResponse(settlement), nil
}

// computeForEmployee resolves the approved configuration snapshot for one
// employee, runs the calculator and persists the settlement together with its
// payslip in one transaction. The write is keyed on (employee_id, run_id), so
// recomputation overwrites the previous result.
func (s *PayrollServiceImpl) computeForEmployee(ctx context.Context, emp employee.Employee, run payroll.PayrollRun) (payroll.EmployeeSettlement, error) {
	// An empty selector wildcards across approved components of the kind,
	// which must never pick a pay grade for a gradeless employee.
	if emp.Grade == "" {
		return payroll.EmployeeSettlement{}, fmt.Errorf("no pay grade assigned to employee %s: %w", emp.ID, compensation.ErrComponentNotFound)
	}

	payGrade, err := s.compensationRepo.GetApproved(ctx, compensation.KindPayGrade, emp.Grade)
	if err != nil {
		return payroll.EmployeeSettlement{}, fmt.Errorf("pay grade %q for employee %s: %w", emp.Grade, emp.ID, err)
	}

	taxRule, err := s.compensationRepo.GetApproved(ctx, compensation.KindTaxRule, "")
	if err != nil {
		return payroll.EmployeeSettlement{}, fmt.Errorf("tax rule for employee %s: %w", emp.ID, err)
	}

	assignments, err := s.compensationRepo.GetEmployeeComponents(ctx, emp.ID)
	if err != nil {
		return payroll.EmployeeSettlement{}, fmt.Errorf("components for employee %s: %w", emp.ID, err)
	}

	var allowances []LineItem
	for _, a := range assignments {
		if a.ComponentKind == nil || *a.ComponentKind != compensation.KindAllowance {
			continue
		}
		if a.ComponentStatus == nil || *a.ComponentStatus != compensation.StatusApproved {
			name := a.ComponentID
			if a.ComponentName != nil {
				name = *a.ComponentName
			}
			return payroll.EmployeeSettlement{}, fmt.Errorf("allowance %q for employee %s: %w", name, emp.ID, compensation.ErrComponentNotApproved)
		}
		amount := decimal.Zero
		if a.ComponentAmount != nil {
			amount = *a.ComponentAmount
		}
		label := a.ComponentID
		if a.ComponentName != nil {
			label = *a.ComponentName
		}
		allowances = append(allowances, LineItem{Label: label, Amount: amount})
	}

	payable, err := s.disbursementRepo.ListPayableByEmployee(ctx, emp.ID)
	if err != nil {
		return payroll.EmployeeSettlement{}, fmt.Errorf("disbursements for employee %s: %w", emp.ID, err)
	}

	var bonuses, benefits []LineItem
	for _, d := range payable {
		if d.ComponentKind == nil {
			continue
		}
		label := d.ComponentID
		if d.ComponentName != nil {
			label = *d.ComponentName
		}
		item := LineItem{Label: label, Amount: d.GivenAmount}
		switch *d.ComponentKind {
		case compensation.KindSigningBonus:
			bonuses = append(bonuses, item)
		case compensation.KindTerminationBenefit, compensation.KindResignationBenefit:
			benefits = append(benefits, item)
		}
	}

	var penaltyItems []LineItem
	penaltyDoc, err := s.payrollRepo.GetPenalties(ctx, emp.ID)
	if err != nil && !errors.Is(err, payroll.ErrPenaltiesNotFound) {
		return payroll.EmployeeSettlement{}, fmt.Errorf("penalties for employee %s: %w", emp.ID, err)
	}
	for _, p := range penaltyDoc.Penalties {
		penaltyItems = append(penaltyItems, LineItem{Label: p.Reason, Amount: p.Amount})
	}

	input := CalculationInput{
		BaseSalary:     payGrade.Amount,
		Allowances:     allowances,
		Bonuses:        bonuses,
		Benefits:       benefits,
		Penalties:      penaltyItems,
		TaxRatePercent: taxRule.Rate,
	}
	result := s.calculator.Calculate(input)

	bankStatus := payroll.BankStatusVerified
	var exceptions []string
	if !emp.HasBankDetails() {
		bankStatus = payroll.BankStatusMissing
		exceptions = append(exceptions, ExceptionMissingBankDetails)
	}
	if result.NetPay.IsNegative() {
		exceptions = append(exceptions, ExceptionNegativeNetPay)
	}

	settlement := payroll.EmployeeSettlement{
		EmployeeID:      emp.ID,
		PayrollRunID:    run.RunID,
		BaseSalary:      payGrade.Amount,
		AllowancesTotal: sumItems(allowances),
		BonusTotal:      sumItems(bonuses),
		BenefitTotal:    sumItems(benefits),
		GrossPay:        result.Gross,
		TaxAmount:       result.TaxAmount,
		PenaltiesTotal:  result.PenaltiesAmount,
		DeductionsTotal: result.TotalDeductions,
		NetPay:          result.NetPay,
		BankStatus:      bankStatus,
		Exceptions:      exceptions,
	}

	payslip := payroll.Payslip{
		EmployeeID:   emp.ID,
		PayrollRunID: run.RunID,
		EarningsDetails: payroll.EarningsDetails{
			BaseSalary: payGrade.Amount,
			Allowances: toPayslipItems(allowances),
			Bonuses:    toPayslipItems(bonuses),
			Benefits:   toPayslipItems(benefits),
			Refunds:    []payroll.PayslipItem{},
		},
		DeductionsDetails: payroll.DeductionsDetails{
			Taxes:      []payroll.PayslipItem{{Label: taxRule.Name, Amount: result.TaxAmount}},
			Insurances: []payroll.PayslipItem{},
			Penalties:  toPayslipItems(penaltyItems),
		},
		TotalGrossSalary: result.Gross,
		TotalDeductions:  result.TotalDeductions,
		NetPay:           result.NetPay,
		PaymentStatus:    payroll.PaymentStatusPending,
	}

	var stored payroll.EmployeeSettlement
	err = s.transact(ctx, func(txCtx context.Context) error {
		stored, err = s.payrollRepo.UpsertSettlement(txCtx, settlement)
		if err != nil {
			return err
		}
		_, err = s.payrollRepo.UpsertPayslip(txCtx, payslip)
		return err
	})
	if err != nil {
		return payroll.EmployeeSettlement{}, fmt.Errorf("failed to persist settlement for employee %s: %w", emp.ID, err)
	}

	return stored, nil
}

func (s *PayrollServiceImpl) ProcessRun(ctx context.Context, runID string) (payroll.ProcessRunResponse, error) {
	run, err := s.payrollRepo.GetRunByID(ctx, runID)
	if err != nil {
		return payroll.ProcessRunResponse{}, err
	}
	if run.Status == payroll.RunStatusFinalized {
		return payroll.ProcessRunResponse{}, payroll.ErrRunFinalized
	}

	run, err = s.payrollRepo.UpdateRunStatus(ctx, runID, payroll.RunStatusProcessing)
	if err != nil {
		return payroll.ProcessRunResponse{}, err
	}

	employees, err := s.employeeRepo.GetActive(ctx)
	if err != nil {
		return payroll.ProcessRunResponse{}, fmt.Errorf("failed to get employees: %w", err)
	}

	// No settlement depends on another's, so the computation fans out across
	// employees. Only reconciliation touches the run-level aggregates.
	var (
		mu        sync.Mutex
		processed int
		failures  []payroll.SettlementFailure
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for _, emp := range employees {
		emp := emp
		g.Go(func() error {
			if _, err := s.computeForEmployee(gctx, emp, run); err != nil {
				mu.Lock()
				failures = append(failures, payroll.SettlementFailure{EmployeeID: emp.ID, Reason: err.Error()})
				mu.Unlock()
				return nil
			}
			mu.Lock()
			processed++
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return payroll.ProcessRunResponse{}, err
	}

	sort.Slice(failures, func(i, j int) bool { return failures[i].EmployeeID < failures[j].EmployeeID })

	reconciled, err := s.reconcile(ctx, runID)
	if err != nil {
		return payroll.ProcessRunResponse{}, err
	}

	return payroll.ProcessRunResponse{
		Run:            mapToRunResponse(reconciled),
		ProcessedCount: processed,
		Failures:       failures,
	}, nil
}

// ========== RECONCILIATION ==========

func (s *PayrollServiceImpl) ReconcileRun(ctx context.Context, runID string) (payroll.RunResponse, error) {
	if _, err := s.payrollRepo.GetRunByID(ctx, runID); err != nil {
		return payroll.RunResponse{}, err
	}

	run, err := s.reconcile(ctx, runID)
	if err != nil {
		return payroll.RunResponse{}, err
	}
	return mapToRunResponse(run), nil
}

// reconcile rederives the run aggregates from the stored settlements. The
// ledger must always be reproducible by summing its settlement rows.
func (s *PayrollServiceImpl) reconcile(ctx context.Context, runID string) (payroll.PayrollRun, error) {
	settlements, err := s.payrollRepo.ListSettlements(ctx, runID)
	if err != nil {
		return payroll.PayrollRun{}, err
	}

	exceptionCount := 0
	totalNetPay := decimal.Zero
	for _, st := range settlements {
		if len(st.Exceptions) > 0 {
			exceptionCount++
		}
		totalNetPay = totalNetPay.Add(st.NetPay)
	}
	totalNetPay = totalNetPay.Round(2)

	return s.payrollRepo.UpdateRunTotals(ctx, runID, len(settlements), exceptionCount, totalNetPay)
}

// ========== SETTLEMENTS & PAYSLIPS ==========

func (s *PayrollServiceImpl) GetSettlement(ctx context.Context, employeeID, runID string) (payroll.SettlementResponse, error) {
	settlement, err := s.payrollRepo.GetSettlement(ctx, employeeID, runID)
	if err != nil {
		return payroll.SettlementResponse{}, err
	}
	return mapToSettlementResponse(settlement), nil
}

func (s *PayrollServiceImpl) ListSettlements(ctx context.Context, runID string) ([]payroll.SettlementResponse, error) {
	if _, err := s.payrollRepo.GetRunByID(ctx, runID); err != nil {
		return nil, err
	}

	settlements, err := s.payrollRepo.ListSettlements(ctx, runID)
	if err != nil {
		return nil, err
	}

	result := make([]payroll.SettlementResponse, 0, len(settlements))
	for _, st := range settlements {
		result = append(result, mapToSettlementResponse(st))
	}
	return result, nil
}

func (s *PayrollServiceImpl) GetPayslip(ctx context.Context, employeeID, runID string) (payroll.PayslipResponse, error) {
	payslip, err := s.payrollRepo.GetPayslip(ctx, employeeID, runID)
	if err != nil {
		return payroll.PayslipResponse{}, err
	}

	return payroll.PayslipResponse{
		ID:                payslip.ID,
		EmployeeID:        payslip.EmployeeID,
		PayrollRunID:      payslip.PayrollRunID,
		EarningsDetails:   payslip.EarningsDetails,
		DeductionsDetails: payslip.DeductionsDetails,
		TotalGrossSalary:  payslip.TotalGrossSalary,
		TotalDeductions:   payslip.TotalDeductions,
		NetPay:            payslip.NetPay,
		PaymentStatus:     string(payslip.PaymentStatus),
	}, nil
}

// ========== PENALTIES ==========

func (s *PayrollServiceImpl) AddPenalty(ctx context.Context, req payroll.AddPenaltyRequest) (payroll.PenaltyResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PenaltyResponse{}, err
	}

	if _, err := s.employeeRepo.GetByID(ctx, req.EmployeeID); err != nil {
		return payroll.PenaltyResponse{}, fmt.Errorf("employee %s: %w", req.EmployeeID, err)
	}

	doc, err := s.payrollRepo.AppendPenalty(ctx, req.EmployeeID, payroll.PenaltyEntry{
		Reason: req.Reason,
		Amount: req.Amount.Round(2),
	})
	if err != nil {
		return payroll.PenaltyResponse{}, err
	}

	return mapToPenaltyResponse(doc), nil
}

func (s *PayrollServiceImpl) GetPenalties(ctx context.Context, employeeID string) (payroll.PenaltyResponse, error) {
	doc, err := s.payrollRepo.GetPenalties(ctx, employeeID)
	if err != nil {
		if errors.Is(err, payroll.ErrPenaltiesNotFound) {
			return payroll.PenaltyResponse{EmployeeID: employeeID, Penalties: []payroll.PenaltyEntry{}, Total: decimal.Zero}, nil
		}
		return payroll.PenaltyResponse{}, err
	}
	return mapToPenaltyResponse(doc), nil
}

// ========== HELPERS ==========

func sumItems(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Amount)
	}
	return total.Round(2)
}

func toPayslipItems(items []LineItem) []payroll.PayslipItem {
	result := make([]payroll.PayslipItem, 0, len(items))
	for _, item := range items {
		result = append(result, payroll.PayslipItem{Label: item.Label, Amount: item.Amount})
	}
	return result
}

func mapToRunResponse(run payroll.PayrollRun) payroll.RunResponse {
	return payroll.RunResponse{
		ID:             run.ID,
		RunID:          run.RunID,
		Period:         run.Period,
		Status:         string(run.Status),
		PaymentStatus:  string(run.PaymentStatus),
		EmployeeCount:  run.EmployeeCount,
		ExceptionCount: run.ExceptionCount,
		TotalNetPay:    run.TotalNetPay,
		SpecialistID:   run.SpecialistID,
	}
}

func mapToSettlementResponse(st payroll.EmployeeSettlement) payroll.SettlementResponse {
	return payroll.SettlementResponse{
		ID:              st.ID,
		EmployeeID:      st.EmployeeID,
		PayrollRunID:    st.PayrollRunID,
		BaseSalary:      st.BaseSalary,
		AllowancesTotal: st.AllowancesTotal,
		BonusTotal:      st.BonusTotal,
		BenefitTotal:    st.BenefitTotal,
		GrossPay:        st.GrossPay,
		TaxAmount:       st.TaxAmount,
		PenaltiesTotal:  st.PenaltiesTotal,
		DeductionsTotal: st.DeductionsTotal,
		NetPay:          st.NetPay,
		BankStatus:      string(st.BankStatus),
		Exceptions:      st.Exceptions,
	}
}

func mapToPenaltyResponse(doc payroll.EmployeePenalty) payroll.PenaltyResponse {
	total := decimal.Zero
	for _, p := range doc.Penalties {
		total = total.Add(p.Amount)
	}
	return payroll.PenaltyResponse{
		EmployeeID: doc.EmployeeID,
		Penalties:  doc.Penalties,
		Total:      total.Round(2),
	}
}
