package disbursement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lumina-hr/payroll-engine-go/internal/domain/compensation"
	"github.com/lumina-hr/payroll-engine-go/internal/domain/disbursement"
	"github.com/lumina-hr/payroll-engine-go/internal/domain/employee"
	"github.com/lumina-hr/payroll-engine-go/internal/domain/workflow"
)

type DisbursementServiceImpl struct {
	disbursementRepo disbursement.Repository
	compensationRepo compensation.Repository
	employeeRepo     employee.Repository
	workflowRepo     workflow.Repository
}

func NewDisbursementService(
	disbursementRepo disbursement.Repository,
	compensationRepo compensation.Repository,
	employeeRepo employee.Repository,
	workflowRepo workflow.Repository,
) disbursement.Service {
	return &DisbursementServiceImpl{
		disbursementRepo: disbursementRepo,
		compensationRepo: compensationRepo,
		employeeRepo:     employeeRepo,
		workflowRepo:     workflowRepo,
	}
}

func (s *DisbursementServiceImpl) Assign(ctx context.Context, req disbursement.AssignRequest) (disbursement.AssignmentResponse, error) {
	if err := req.Validate(); err != nil {
		return disbursement.AssignmentResponse{}, err
	}

	if _, err := s.employeeRepo.GetByID(ctx, req.EmployeeID); err != nil {
		return disbursement.AssignmentResponse{}, fmt.Errorf("employee %s: %w", req.EmployeeID, err)
	}

	component, err := s.compensationRepo.GetByID(ctx, req.ComponentID)
	if err != nil {
		return disbursement.AssignmentResponse{}, err
	}
	if !component.Kind.IsDisbursable() {
		return disbursement.AssignmentResponse{}, fmt.Errorf("component %q is a %s: %w", component.Name, component.Kind, compensation.ErrNotDisbursable)
	}
	if component.ApprovalStatus != compensation.StatusApproved {
		return disbursement.AssignmentResponse{}, fmt.Errorf("component %q: %w", component.Name, compensation.ErrComponentNotApproved)
	}

	status := disbursement.Status(req.Status)

	givenAmount := component.Amount
	if req.GivenAmount != nil {
		givenAmount = req.GivenAmount.Round(2)
	}

	// The payment date exists only while the assignment is approved. An
	// update that omits the date, or moves away from approved, clears any
	// stored date rather than leaving it stale.
	var paymentDate *time.Time
	if req.PaymentDate != nil {
		if status != disbursement.StatusApproved {
			return disbursement.AssignmentResponse{}, disbursement.ErrPaymentDateWithoutApproval
		}
		parsed, err := time.Parse("2006-01-02", *req.PaymentDate)
		if err != nil {
			return disbursement.AssignmentResponse{}, fmt.Errorf("invalid payment date: %w", err)
		}
		paymentDate = &parsed
	}

	var linkedWorkflowID *string
	if component.Kind.RequiresWorkflow() {
		linkedWorkflowID, err = s.resolveWorkflow(ctx, req)
		if err != nil {
			return disbursement.AssignmentResponse{}, err
		}
	}

	assignment := disbursement.Assignment{
		EmployeeID:       req.EmployeeID,
		ComponentID:      req.ComponentID,
		GivenAmount:      givenAmount,
		PaymentDate:      paymentDate,
		Status:           status,
		LinkedWorkflowID: linkedWorkflowID,
	}

	stored, err := s.disbursementRepo.Upsert(ctx, assignment)
	if err != nil {
		return disbursement.AssignmentResponse{}, err
	}

	if stored.ComponentName == nil {
		stored.ComponentName = &component.Name
	}
	if stored.ComponentKind == nil {
		stored.ComponentKind = &component.Kind
	}
	return mapToAssignmentResponse(stored), nil
}

// resolveWorkflow finds the workflow record a termination or resignation
// benefit must link to. Priority: the id supplied by the caller, then the id
// on an existing assignment, then the collaborator's find-or-create. A
// reference is never fabricated: when nothing resolves, the assignment fails.
func (s *DisbursementServiceImpl) resolveWorkflow(ctx context.Context, req disbursement.AssignRequest) (*string, error) {
	if req.WorkflowID != nil && *req.WorkflowID != "" {
		return req.WorkflowID, nil
	}

	existing, err := s.disbursementRepo.GetByEmployeeAndComponent(ctx, req.EmployeeID, req.ComponentID)
	if err == nil && existing.LinkedWorkflowID != nil && *existing.LinkedWorkflowID != "" {
		return existing.LinkedWorkflowID, nil
	}
	if err != nil && !errors.Is(err, disbursement.ErrAssignmentNotFound) {
		return nil, err
	}

	record, err := s.workflowRepo.FindOrCreate(ctx, req.EmployeeID)
	if err != nil {
		if errors.Is(err, workflow.ErrRecordNotFound) {
			return nil, fmt.Errorf("employee %s: %w", req.EmployeeID, disbursement.ErrMissingWorkflowReference)
		}
		return nil, err
	}

	return &record.ID, nil
}

func (s *DisbursementServiceImpl) GetAssignment(ctx context.Context, employeeID, componentID string) (disbursement.AssignmentResponse, error) {
	assignment, err := s.disbursementRepo.GetByEmployeeAndComponent(ctx, employeeID, componentID)
	if err != nil {
		return disbursement.AssignmentResponse{}, err
	}
	return mapToAssignmentResponse(assignment), nil
}

func (s *DisbursementServiceImpl) ListByEmployee(ctx context.Context, employeeID string) ([]disbursement.AssignmentResponse, error) {
	assignments, err := s.disbursementRepo.ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	result := make([]disbursement.AssignmentResponse, 0, len(assignments))
	for _, a := range assignments {
		result = append(result, mapToAssignmentResponse(a))
	}
	return result, nil
}

// ========== HELPERS ==========

func mapToAssignmentResponse(a disbursement.Assignment) disbursement.AssignmentResponse {
	var paymentDateStr *string
	if a.PaymentDate != nil {
		str := a.PaymentDate.Format("2006-01-02")
		paymentDateStr = &str
	}

	var kindStr *string
	if a.ComponentKind != nil {
		str := string(*a.ComponentKind)
		kindStr = &str
	}

	return disbursement.AssignmentResponse{
		ID:               a.ID,
		EmployeeID:       a.EmployeeID,
		ComponentID:      a.ComponentID,
		ComponentName:    a.ComponentName,
		ComponentKind:    kindStr,
		GivenAmount:      a.GivenAmount,
		PaymentDate:      paymentDateStr,
		Status:           string(a.Status),
		LinkedWorkflowID: a.LinkedWorkflowID,
	}
}
