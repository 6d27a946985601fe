package payroll

import "context"

// Service defines business logic for payroll runs and settlements
type Service interface {
	// OpenRun creates the single run for a pay period
	OpenRun(ctx context.Context, req OpenRunRequest) (RunResponse, error)

	// GetRun retrieves a run by its run ID
	GetRun(ctx context.Context, runID string) (RunResponse, error)

	// ListRuns retrieves all runs, newest first
	ListRuns(ctx context.Context) ([]RunResponse, error)

	// ComputeSettlement computes and persists the settlement and payslip for
	// one employee in one run. Calling it twice with the same inputs yields
	// the same stored records.
	ComputeSettlement(ctx context.Context, employeeID, runID string) (SettlementResponse, error)

	// ProcessRun computes settlements for all active employees and reconciles
	// the run. Per-employee failures are collected, not propagated.
	ProcessRun(ctx context.Context, runID string) (ProcessRunResponse, error)

	// ReconcileRun recomputes the run aggregates from its settlements
	ReconcileRun(ctx context.Context, runID string) (RunResponse, error)

	// FinalizeRun moves a processing run to finalized; settlements become immutable
	FinalizeRun(ctx context.Context, runID string) (RunResponse, error)

	// MarkRunPaid flips the payment dimension of a finalized run and stamps
	// the linked payslips and pending disbursements
	MarkRunPaid(ctx context.Context, runID string) (RunResponse, error)

	GetSettlement(ctx context.Context, employeeID, runID string) (SettlementResponse, error)
	ListSettlements(ctx context.Context, runID string) ([]SettlementResponse, error)
	GetPayslip(ctx context.Context, employeeID, runID string) (PayslipResponse, error)

	AddPenalty(ctx context.Context, req AddPenaltyRequest) (PenaltyResponse, error)
	GetPenalties(ctx context.Context, employeeID string) (PenaltyResponse, error)
}
