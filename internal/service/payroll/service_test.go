package payroll

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lumina-hr/payroll-engine-go/internal/domain/compensation"
	"github.com/lumina-hr/payroll-engine-go/internal/domain/disbursement"
	"github.com/lumina-hr/payroll-engine-go/internal/domain/employee"
	"github.com/lumina-hr/payroll-engine-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ========== FAKES ==========

type fakePayrollRepo struct {
	runs        map[string]payroll.PayrollRun // keyed on runID
	settlements map[string]payroll.EmployeeSettlement
	payslips    map[string]payroll.Payslip
	penalties   map[string]payroll.EmployeePenalty
	nextID      int
}

func newFakePayrollRepo() *fakePayrollRepo {
	return &fakePayrollRepo{
		runs:        make(map[string]payroll.PayrollRun),
		settlements: make(map[string]payroll.EmployeeSettlement),
		payslips:    make(map[string]payroll.Payslip),
		penalties:   make(map[string]payroll.EmployeePenalty),
	}
}

func (f *fakePayrollRepo) id() string {
	f.nextID++
	return fmt.Sprintf("row-%d", f.nextID)
}

func (f *fakePayrollRepo) CreateRun(ctx context.Context, run payroll.PayrollRun) (payroll.PayrollRun, error) {
	for _, existing := range f.runs {
		if existing.Period == run.Period {
			return payroll.PayrollRun{}, payroll.ErrRunAlreadyExists
		}
	}
	run.ID = f.id()
	run.CreatedAt = time.Now()
	f.runs[run.RunID] = run
	return run, nil
}

func (f *fakePayrollRepo) GetRunByID(ctx context.Context, runID string) (payroll.PayrollRun, error) {
	run, ok := f.runs[runID]
	if !ok {
		return payroll.PayrollRun{}, payroll.ErrRunNotFound
	}
	return run, nil
}

func (f *fakePayrollRepo) GetRunByPeriod(ctx context.Context, period string) (payroll.PayrollRun, error) {
	for _, run := range f.runs {
		if run.Period == period {
			return run, nil
		}
	}
	return payroll.PayrollRun{}, payroll.ErrRunNotFound
}

func (f *fakePayrollRepo) ListRuns(ctx context.Context) ([]payroll.PayrollRun, error) {
	var result []payroll.PayrollRun
	for _, run := range f.runs {
		result = append(result, run)
	}
	return result, nil
}

func (f *fakePayrollRepo) UpdateRunStatus(ctx context.Context, runID string, status payroll.RunStatus) (payroll.PayrollRun, error) {
	run, ok := f.runs[runID]
	if !ok {
		return payroll.PayrollRun{}, payroll.ErrRunNotFound
	}
	run.Status = status
	f.runs[runID] = run
	return run, nil
}

func (f *fakePayrollRepo) UpdateRunPaymentStatus(ctx context.Context, runID string, status payroll.PaymentStatus) (payroll.PayrollRun, error) {
	run, ok := f.runs[runID]
	if !ok {
		return payroll.PayrollRun{}, payroll.ErrRunNotFound
	}
	run.PaymentStatus = status
	f.runs[runID] = run
	return run, nil
}

func (f *fakePayrollRepo) UpdateRunTotals(ctx context.Context, runID string, employeeCount, exceptionCount int, totalNetPay decimal.Decimal) (payroll.PayrollRun, error) {
	run, ok := f.runs[runID]
	if !ok {
		return payroll.PayrollRun{}, payroll.ErrRunNotFound
	}
	run.EmployeeCount = employeeCount
	run.ExceptionCount = exceptionCount
	run.TotalNetPay = totalNetPay
	f.runs[runID] = run
	return run, nil
}

func (f *fakePayrollRepo) GetSettlement(ctx context.Context, employeeID, runID string) (payroll.EmployeeSettlement, error) {
	st, ok := f.settlements[employeeID+"|"+runID]
	if !ok {
		return payroll.EmployeeSettlement{}, payroll.ErrSettlementNotFound
	}
	return st, nil
}

func (f *fakePayrollRepo) ListSettlements(ctx context.Context, runID string) ([]payroll.EmployeeSettlement, error) {
	var result []payroll.EmployeeSettlement
	for _, st := range f.settlements {
		if st.PayrollRunID == runID {
			result = append(result, st)
		}
	}
	return result, nil
}

func (f *fakePayrollRepo) UpsertSettlement(ctx context.Context, settlement payroll.EmployeeSettlement) (payroll.EmployeeSettlement, error) {
	k := settlement.EmployeeID + "|" + settlement.PayrollRunID
	if existing, ok := f.settlements[k]; ok {
		settlement.ID = existing.ID
	} else {
		settlement.ID = f.id()
	}
	f.settlements[k] = settlement
	return settlement, nil
}

func (f *fakePayrollRepo) GetPayslip(ctx context.Context, employeeID, runID string) (payroll.Payslip, error) {
	p, ok := f.payslips[employeeID+"|"+runID]
	if !ok {
		return payroll.Payslip{}, payroll.ErrPayslipNotFound
	}
	return p, nil
}

func (f *fakePayrollRepo) UpsertPayslip(ctx context.Context, payslip payroll.Payslip) (payroll.Payslip, error) {
	k := payslip.EmployeeID + "|" + payslip.PayrollRunID
	if existing, ok := f.payslips[k]; ok {
		payslip.ID = existing.ID
	} else {
		payslip.ID = f.id()
	}
	f.payslips[k] = payslip
	return payslip, nil
}

func (f *fakePayrollRepo) MarkPayslipsPaid(ctx context.Context, runID string) error {
	return nil
}

func (f *fakePayrollRepo) GetPenalties(ctx context.Context, employeeID string) (payroll.EmployeePenalty, error) {
	doc, ok := f.penalties[employeeID]
	if !ok {
		return payroll.EmployeePenalty{}, payroll.ErrPenaltiesNotFound
	}
	return doc, nil
}

func (f *fakePayrollRepo) AppendPenalty(ctx context.Context, employeeID string, entry payroll.PenaltyEntry) (payroll.EmployeePenalty, error) {
	doc, ok := f.penalties[employeeID]
	if !ok {
		doc = payroll.EmployeePenalty{ID: f.id(), EmployeeID: employeeID}
	}
	doc.Penalties = append(doc.Penalties, entry)
	f.penalties[employeeID] = doc
	return doc, nil
}

type fakeEmployeeDirectory struct {
	employees map[string]employee.Employee
}

func (f *fakeEmployeeDirectory) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	e, ok := f.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (f *fakeEmployeeDirectory) GetActive(ctx context.Context) ([]employee.Employee, error) {
	var result []employee.Employee
	for _, e := range f.employees {
		if e.Status == employee.StatusActive {
			result = append(result, e)
		}
	}
	return result, nil
}

type fakeComponentConfig struct {
	components  map[string]compensation.Component
	assignments map[string][]compensation.EmployeeComponent
	nextID      int
}

func newFakeComponentConfig() *fakeComponentConfig {
	return &fakeComponentConfig{
		components:  make(map[string]compensation.Component),
		assignments: make(map[string][]compensation.EmployeeComponent),
	}
}

func (f *fakeComponentConfig) add(c compensation.Component) compensation.Component {
	f.nextID++
	c.ID = fmt.Sprintf("cmp-%d", f.nextID)
	f.components[c.ID] = c
	return c
}

// assign attaches a recurring component to an employee with the joined fields
// the production query would return.
func (f *fakeComponentConfig) assign(employeeID string, c compensation.Component) {
	f.assignments[employeeID] = append(f.assignments[employeeID], compensation.EmployeeComponent{
		ID:              fmt.Sprintf("asg-%s-%s", employeeID, c.ID),
		EmployeeID:      employeeID,
		ComponentID:     c.ID,
		ComponentName:   &c.Name,
		ComponentKind:   &c.Kind,
		ComponentAmount: &c.Amount,
		ComponentStatus: &c.ApprovalStatus,
	})
}

func matchesSelector(c compensation.Component, selector string) bool {
	if c.ID == selector || c.Name == selector {
		return true
	}
	return c.Grade != nil && *c.Grade == selector
}

func (f *fakeComponentConfig) Create(ctx context.Context, component compensation.Component) (compensation.Component, error) {
	return f.add(component), nil
}

func (f *fakeComponentConfig) GetByID(ctx context.Context, id string) (compensation.Component, error) {
	c, ok := f.components[id]
	if !ok {
		return compensation.Component{}, compensation.ErrComponentNotFound
	}
	return c, nil
}

func (f *fakeComponentConfig) GetApproved(ctx context.Context, kind compensation.Kind, selector string) (compensation.Component, error) {
	matched := false
	for _, c := range f.components {
		if c.Kind != kind {
			continue
		}
		if selector != "" && !matchesSelector(c, selector) {
			continue
		}
		matched = true
		if c.ApprovalStatus == compensation.StatusApproved {
			return c, nil
		}
	}
	if matched {
		return compensation.Component{}, compensation.ErrComponentNotApproved
	}
	return compensation.Component{}, compensation.ErrComponentNotFound
}

func (f *fakeComponentConfig) ListByKind(ctx context.Context, kind compensation.Kind) ([]compensation.Component, error) {
	var result []compensation.Component
	for _, c := range f.components {
		if kind == "" || c.Kind == kind {
			result = append(result, c)
		}
	}
	return result, nil
}

func (f *fakeComponentConfig) SetApproval(ctx context.Context, id string, status compensation.ApprovalStatus, decidedBy string, decidedAt time.Time) (compensation.Component, error) {
	c, ok := f.components[id]
	if !ok {
		return compensation.Component{}, compensation.ErrComponentNotFound
	}
	if c.ApprovalStatus != compensation.StatusDraft {
		return compensation.Component{}, compensation.ErrComponentAlreadyFinal
	}
	c.ApprovalStatus = status
	f.components[id] = c
	return c, nil
}

func (f *fakeComponentConfig) AssignToEmployee(ctx context.Context, assignment compensation.EmployeeComponent) (compensation.EmployeeComponent, error) {
	f.assignments[assignment.EmployeeID] = append(f.assignments[assignment.EmployeeID], assignment)
	return assignment, nil
}

func (f *fakeComponentConfig) GetEmployeeComponents(ctx context.Context, employeeID string) ([]compensation.EmployeeComponent, error) {
	return f.assignments[employeeID], nil
}

func (f *fakeComponentConfig) RemoveEmployeeComponent(ctx context.Context, id string) error {
	return compensation.ErrAssignmentNotFound
}

type fakeDisbursementStore struct {
	payable map[string][]disbursement.Assignment
	paid    []string
}

func newFakeDisbursementStore() *fakeDisbursementStore {
	return &fakeDisbursementStore{payable: make(map[string][]disbursement.Assignment)}
}

func (f *fakeDisbursementStore) addPayable(employeeID string, kind compensation.Kind, name string, amount decimal.Decimal) {
	f.payable[employeeID] = append(f.payable[employeeID], disbursement.Assignment{
		ID:            fmt.Sprintf("da-%s-%s", employeeID, name),
		EmployeeID:    employeeID,
		ComponentID:   "cmp-" + name,
		GivenAmount:   amount,
		Status:        disbursement.StatusApproved,
		ComponentName: &name,
		ComponentKind: &kind,
	})
}

func (f *fakeDisbursementStore) Upsert(ctx context.Context, assignment disbursement.Assignment) (disbursement.Assignment, error) {
	return assignment, nil
}

func (f *fakeDisbursementStore) GetByEmployeeAndComponent(ctx context.Context, employeeID, componentID string) (disbursement.Assignment, error) {
	return disbursement.Assignment{}, disbursement.ErrAssignmentNotFound
}

func (f *fakeDisbursementStore) ListByEmployee(ctx context.Context, employeeID string) ([]disbursement.Assignment, error) {
	return f.payable[employeeID], nil
}

func (f *fakeDisbursementStore) ListPayableByEmployee(ctx context.Context, employeeID string) ([]disbursement.Assignment, error) {
	return f.payable[employeeID], nil
}

func (f *fakeDisbursementStore) MarkPaidByEmployees(ctx context.Context, employeeIDs []string, paymentDate time.Time) (int64, error) {
	f.paid = append(f.paid, employeeIDs...)
	return int64(len(employeeIDs)), nil
}

// ========== FIXTURE ==========

func specialistContext(t *testing.T) context.Context {
	t.Helper()
	ja := jwtauth.New("HS256", []byte("test-secret"), nil)
	_, tokenString, err := ja.Encode(map[string]interface{}{
		"user_id": "specialist-1",
		"role":    "payroll_specialist",
		"type":    "access",
	})
	require.NoError(t, err)
	token, err := ja.Decode(tokenString)
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), token, nil)
}

type settlementFixture struct {
	repo       *fakePayrollRepo
	components *fakeComponentConfig
	payouts    *fakeDisbursementStore
	directory  *fakeEmployeeDirectory
	svc        payroll.Service
}

// newSettlementFixture wires the service against in-memory fakes with the
// transaction span replaced by a passthrough, and seeds an approved pay grade,
// an approved tax rule and one active employee on that grade.
func newSettlementFixture(repo *fakePayrollRepo) *settlementFixture {
	components := newFakeComponentConfig()
	payouts := newFakeDisbursementStore()

	bankName := "First National"
	bankAccount := "111-222-333"
	directory := &fakeEmployeeDirectory{employees: map[string]employee.Employee{
		"emp-1": {
			ID:          "emp-1",
			Grade:       "G1",
			BankName:    &bankName,
			BankAccount: &bankAccount,
			Status:      employee.StatusActive,
		},
	}}

	grade := "G1"
	components.add(compensation.Component{
		Kind:           compensation.KindPayGrade,
		Name:           "grade G1",
		Grade:          &grade,
		Amount:         decimal.RequireFromString("9000"),
		ApprovalStatus: compensation.StatusApproved,
	})
	components.add(compensation.Component{
		Kind:           compensation.KindTaxRule,
		Name:           "income tax",
		Rate:           decimal.RequireFromString("10"),
		ApprovalStatus: compensation.StatusApproved,
	})

	impl := NewPayrollService(nil, repo, components, directory, payouts, NewSettlementCalculator(), 4).(*PayrollServiceImpl)
	impl.transact = func(ctx context.Context, fn func(ctx context.Context) error) error {
		return fn(ctx)
	}

	return &settlementFixture{
		repo:       repo,
		components: components,
		payouts:    payouts,
		directory:  directory,
		svc:        impl,
	}
}

func newTestPayrollService(repo *fakePayrollRepo) payroll.Service {
	return newSettlementFixture(repo).svc
}

// ========== TESTS ==========

func TestOpenRun_OnePerPeriod(t *testing.T) {
	repo := newFakePayrollRepo()
	svc := newTestPayrollService(repo)
	ctx := specialistContext(t)

	first, err := svc.OpenRun(ctx, payroll.OpenRunRequest{Period: "2026-03"})
	require.NoError(t, err)
	assert.Equal(t, "2026-03", first.Period)
	assert.Equal(t, "draft", first.Status)
	assert.Equal(t, "pending", first.PaymentStatus)
	assert.Equal(t, "specialist-1", first.SpecialistID)
	assert.NotEmpty(t, first.RunID)

	_, err = svc.OpenRun(ctx, payroll.OpenRunRequest{Period: "2026-03"})
	assert.ErrorIs(t, err, payroll.ErrRunAlreadyExists)
}

func TestOpenRun_RejectsBadPeriod(t *testing.T) {
	repo := newFakePayrollRepo()
	svc := newTestPayrollService(repo)
	ctx := specialistContext(t)

	for _, period := range []string{"2026-13", "202603", "26-03", "2026-3", ""} {
		_, err := svc.OpenRun(ctx, payroll.OpenRunRequest{Period: period})
		assert.Error(t, err, "period %q should be rejected", period)
	}
}

func TestFinalizeRun_RequiresProcessing(t *testing.T) {
	repo := newFakePayrollRepo()
	svc := newTestPayrollService(repo)
	ctx := specialistContext(t)

	run, err := svc.OpenRun(ctx, payroll.OpenRunRequest{Period: "2026-03"})
	require.NoError(t, err)

	// Draft runs cannot be finalized directly.
	_, err = svc.FinalizeRun(ctx, run.RunID)
	assert.ErrorIs(t, err, payroll.ErrInvalidRunTransition)

	_, err = repo.UpdateRunStatus(ctx, run.RunID, payroll.RunStatusProcessing)
	require.NoError(t, err)

	finalized, err := svc.FinalizeRun(ctx, run.RunID)
	require.NoError(t, err)
	assert.Equal(t, "finalized", finalized.Status)

	// And finalization is terminal.
	_, err = svc.FinalizeRun(ctx, run.RunID)
	assert.ErrorIs(t, err, payroll.ErrInvalidRunTransition)
}

func TestReconcileRun_DerivesAggregatesFromSettlements(t *testing.T) {
	repo := newFakePayrollRepo()
	svc := newTestPayrollService(repo)
	ctx := specialistContext(t)

	run, err := svc.OpenRun(ctx, payroll.OpenRunRequest{Period: "2026-03"})
	require.NoError(t, err)

	_, err = repo.UpsertSettlement(ctx, payroll.EmployeeSettlement{
		EmployeeID:   "emp-1",
		PayrollRunID: run.RunID,
		NetPay:       decimal.RequireFromString("19450"),
		BankStatus:   payroll.BankStatusVerified,
	})
	require.NoError(t, err)
	_, err = repo.UpsertSettlement(ctx, payroll.EmployeeSettlement{
		EmployeeID:   "emp-2",
		PayrollRunID: run.RunID,
		NetPay:       decimal.RequireFromString("11700"),
		BankStatus:   payroll.BankStatusMissing,
		Exceptions:   []string{ExceptionMissingBankDetails},
	})
	require.NoError(t, err)
	_, err = repo.UpsertSettlement(ctx, payroll.EmployeeSettlement{
		EmployeeID:   "emp-3",
		PayrollRunID: run.RunID,
		NetPay:       decimal.RequireFromString("-150.25"),
		BankStatus:   payroll.BankStatusVerified,
		Exceptions:   []string{ExceptionNegativeNetPay},
	})
	require.NoError(t, err)

	reconciled, err := svc.ReconcileRun(ctx, run.RunID)
	require.NoError(t, err)

	assert.Equal(t, 3, reconciled.EmployeeCount)
	assert.Equal(t, 2, reconciled.ExceptionCount)
	assert.Equal(t, "30999.75", reconciled.TotalNetPay.String())
}

func TestReconcileRun_EmptyRun(t *testing.T) {
	repo := newFakePayrollRepo()
	svc := newTestPayrollService(repo)
	ctx := specialistContext(t)

	run, err := svc.OpenRun(ctx, payroll.OpenRunRequest{Period: "2026-03"})
	require.NoError(t, err)

	reconciled, err := svc.ReconcileRun(ctx, run.RunID)
	require.NoError(t, err)
	assert.Equal(t, 0, reconciled.EmployeeCount)
	assert.Equal(t, 0, reconciled.ExceptionCount)
	assert.True(t, reconciled.TotalNetPay.IsZero())
}

func TestReconcileRun_UnknownRun(t *testing.T) {
	repo := newFakePayrollRepo()
	svc := newTestPayrollService(repo)
	ctx := specialistContext(t)

	_, err := svc.ReconcileRun(ctx, "no-such-run")
	assert.ErrorIs(t, err, payroll.ErrRunNotFound)
}

func TestAddPenalty_AppendsAndTotals(t *testing.T) {
	repo := newFakePayrollRepo()
	svc := newTestPayrollService(repo)
	ctx := specialistContext(t)

	_, err := svc.AddPenalty(ctx, payroll.AddPenaltyRequest{
		EmployeeID: "emp-1",
		Reason:     "late equipment return",
		Amount:     decimal.RequireFromString("200"),
	})
	require.NoError(t, err)

	resp, err := svc.AddPenalty(ctx, payroll.AddPenaltyRequest{
		EmployeeID: "emp-1",
		Reason:     "damaged badge",
		Amount:     decimal.RequireFromString("150.555"),
	})
	require.NoError(t, err)

	assert.Len(t, resp.Penalties, 2)
	assert.Equal(t, "350.56", resp.Total.String())
}

func TestAddPenalty_UnknownEmployee(t *testing.T) {
	repo := newFakePayrollRepo()
	svc := newTestPayrollService(repo)
	ctx := specialistContext(t)

	_, err := svc.AddPenalty(ctx, payroll.AddPenaltyRequest{
		EmployeeID: "emp-404",
		Reason:     "whatever",
		Amount:     decimal.NewFromInt(10),
	})
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestGetPenalties_EmptyIsNotAnError(t *testing.T) {
	repo := newFakePayrollRepo()
	svc := newTestPayrollService(repo)

	resp, err := svc.GetPenalties(context.Background(), "emp-1")
	require.NoError(t, err)
	assert.Empty(t, resp.Penalties)
	assert.True(t, resp.Total.IsZero())
}

func TestComputeSettlement_FinalizedRunIsImmutable(t *testing.T) {
	repo := newFakePayrollRepo()
	svc := newTestPayrollService(repo)
	ctx := specialistContext(t)

	run, err := svc.OpenRun(ctx, payroll.OpenRunRequest{Period: "2026-03"})
	require.NoError(t, err)
	_, err = repo.UpdateRunStatus(ctx, run.RunID, payroll.RunStatusFinalized)
	require.NoError(t, err)

	_, err = svc.ComputeSettlement(ctx, "emp-1", run.RunID)
	assert.ErrorIs(t, err, payroll.ErrRunFinalized)
}

func TestComputeSettlement_PersistsFullBreakdown(t *testing.T) {
	f := newSettlementFixture(newFakePayrollRepo())
	ctx := specialistContext(t)

	housing := f.components.add(compensation.Component{
		Kind:           compensation.KindAllowance,
		Name:           "housing",
		Amount:         decimal.RequireFromString("1500"),
		ApprovalStatus: compensation.StatusApproved,
	})
	f.components.assign("emp-1", housing)
	f.payouts.addPayable("emp-1", compensation.KindSigningBonus, "signing bonus", decimal.RequireFromString("1000"))

	_, err := f.svc.AddPenalty(ctx, payroll.AddPenaltyRequest{
		EmployeeID: "emp-1",
		Reason:     "late equipment return",
		Amount:     decimal.RequireFromString("350"),
	})
	require.NoError(t, err)

	run, err := f.svc.OpenRun(ctx, payroll.OpenRunRequest{Period: "2026-03"})
	require.NoError(t, err)

	resp, err := f.svc.ComputeSettlement(ctx, "emp-1", run.RunID)
	require.NoError(t, err)

	assert.Equal(t, "9000", resp.BaseSalary.String())
	assert.Equal(t, "1500", resp.AllowancesTotal.String())
	assert.Equal(t, "1000", resp.BonusTotal.String())
	assert.Equal(t, "11500", resp.GrossPay.String())
	assert.Equal(t, "1150", resp.TaxAmount.String())
	assert.Equal(t, "350", resp.PenaltiesTotal.String())
	assert.Equal(t, "1500", resp.DeductionsTotal.String())
	assert.Equal(t, "10000", resp.NetPay.String())
	assert.Equal(t, "verified", resp.BankStatus)
	assert.Empty(t, resp.Exceptions)

	stored, err := f.repo.GetSettlement(ctx, "emp-1", run.RunID)
	require.NoError(t, err)
	assert.Equal(t, "10000", stored.NetPay.String())

	// The payslip mirrors the settlement totals.
	slip, err := f.svc.GetPayslip(ctx, "emp-1", run.RunID)
	require.NoError(t, err)
	assert.Equal(t, "11500", slip.TotalGrossSalary.String())
	assert.Equal(t, "1500", slip.TotalDeductions.String())
	assert.Equal(t, "10000", slip.NetPay.String())
	assert.Equal(t, "pending", slip.PaymentStatus)
}

func TestComputeSettlement_RecomputationOverwritesInPlace(t *testing.T) {
	f := newSettlementFixture(newFakePayrollRepo())
	ctx := specialistContext(t)

	run, err := f.svc.OpenRun(ctx, payroll.OpenRunRequest{Period: "2026-03"})
	require.NoError(t, err)

	first, err := f.svc.ComputeSettlement(ctx, "emp-1", run.RunID)
	require.NoError(t, err)

	second, err := f.svc.ComputeSettlement(ctx, "emp-1", run.RunID)
	require.NoError(t, err)

	// Same inputs yield the identical stored record: one row per
	// (employee, run), same id, same amounts.
	assert.Equal(t, first, second)
	assert.Len(t, f.repo.settlements, 1)
}

func TestComputeSettlement_DraftAllowanceRejected(t *testing.T) {
	f := newSettlementFixture(newFakePayrollRepo())
	ctx := specialistContext(t)

	meal := f.components.add(compensation.Component{
		Kind:           compensation.KindAllowance,
		Name:           "meal",
		Amount:         decimal.RequireFromString("400"),
		ApprovalStatus: compensation.StatusDraft,
	})
	f.components.assign("emp-1", meal)

	run, err := f.svc.OpenRun(ctx, payroll.OpenRunRequest{Period: "2026-03"})
	require.NoError(t, err)

	_, err = f.svc.ComputeSettlement(ctx, "emp-1", run.RunID)
	assert.ErrorIs(t, err, compensation.ErrComponentNotApproved)
	assert.Empty(t, f.repo.settlements)
}

func TestComputeSettlement_UnapprovedPayGradeRejected(t *testing.T) {
	f := newSettlementFixture(newFakePayrollRepo())
	ctx := specialistContext(t)

	grade := "G2"
	f.components.add(compensation.Component{
		Kind:           compensation.KindPayGrade,
		Name:           "grade G2",
		Grade:          &grade,
		Amount:         decimal.RequireFromString("13000"),
		ApprovalStatus: compensation.StatusDraft,
	})
	f.directory.employees["emp-2"] = employee.Employee{ID: "emp-2", Grade: "G2", Status: employee.StatusActive}

	run, err := f.svc.OpenRun(ctx, payroll.OpenRunRequest{Period: "2026-03"})
	require.NoError(t, err)

	_, err = f.svc.ComputeSettlement(ctx, "emp-2", run.RunID)
	assert.ErrorIs(t, err, compensation.ErrComponentNotApproved)
	assert.Empty(t, f.repo.settlements)
}

func TestComputeSettlement_GradelessEmployeeIsConfigurationGap(t *testing.T) {
	f := newSettlementFixture(newFakePayrollRepo())
	ctx := specialistContext(t)

	// The fixture carries an approved pay grade; an employee without a grade
	// must still fail the lookup rather than settle on it.
	f.directory.employees["emp-2"] = employee.Employee{ID: "emp-2", Status: employee.StatusActive}

	run, err := f.svc.OpenRun(ctx, payroll.OpenRunRequest{Period: "2026-03"})
	require.NoError(t, err)

	_, err = f.svc.ComputeSettlement(ctx, "emp-2", run.RunID)
	assert.ErrorIs(t, err, compensation.ErrComponentNotFound)
	assert.Empty(t, f.repo.settlements)
}

func TestProcessRun_IsolatesPerEmployeeFailures(t *testing.T) {
	f := newSettlementFixture(newFakePayrollRepo())
	ctx := specialistContext(t)

	f.directory.employees["emp-2"] = employee.Employee{ID: "emp-2", Status: employee.StatusActive}

	run, err := f.svc.OpenRun(ctx, payroll.OpenRunRequest{Period: "2026-03"})
	require.NoError(t, err)

	resp, err := f.svc.ProcessRun(ctx, run.RunID)
	require.NoError(t, err)

	assert.Equal(t, 1, resp.ProcessedCount)
	require.Len(t, resp.Failures, 1)
	assert.Equal(t, "emp-2", resp.Failures[0].EmployeeID)
	assert.NotEmpty(t, resp.Failures[0].Reason)

	// The run keeps processing and its aggregates cover only the settled
	// employee.
	assert.Equal(t, "processing", resp.Run.Status)
	assert.Equal(t, 1, resp.Run.EmployeeCount)
	assert.Equal(t, "8100", resp.Run.TotalNetPay.String())
}

func TestMarkRunPaid_StampsPayslipsAndDisbursements(t *testing.T) {
	f := newSettlementFixture(newFakePayrollRepo())
	ctx := specialistContext(t)

	run, err := f.svc.OpenRun(ctx, payroll.OpenRunRequest{Period: "2026-03"})
	require.NoError(t, err)
	_, err = f.svc.ProcessRun(ctx, run.RunID)
	require.NoError(t, err)
	_, err = f.svc.FinalizeRun(ctx, run.RunID)
	require.NoError(t, err)

	paid, err := f.svc.MarkRunPaid(ctx, run.RunID)
	require.NoError(t, err)

	assert.Equal(t, "paid", paid.PaymentStatus)
	assert.Equal(t, []string{"emp-1"}, f.payouts.paid)
}
