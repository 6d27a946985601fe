package compensation

import (
	"context"
	"fmt"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lumina-hr/payroll-engine-go/internal/domain/compensation"
	"github.com/lumina-hr/payroll-engine-go/internal/domain/employee"
	"github.com/shopspring/decimal"
)

type CompensationServiceImpl struct {
	compensationRepo compensation.Repository
	employeeRepo     employee.Repository
}

func NewCompensationService(
	compensationRepo compensation.Repository,
	employeeRepo employee.Repository,
) compensation.Service {
	return &CompensationServiceImpl{
		compensationRepo: compensationRepo,
		employeeRepo:     employeeRepo,
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

// ========== COMPONENTS ==========

func (s *CompensationServiceImpl) CreateComponent(ctx context.Context, req compensation.CreateComponentRequest) (compensation.ComponentResponse, error) {
	if err := req.Validate(); err != nil {
		return compensation.ComponentResponse{}, err
	}

	createdBy, err := getClaimsFromContext(ctx)
	if err != nil {
		return compensation.ComponentResponse{}, err
	}

	amount := decimal.Zero
	if req.Amount != nil {
		amount = req.Amount.Round(2)
	}
	rate := decimal.Zero
	if req.Rate != nil {
		rate = *req.Rate
	}

	component := compensation.Component{
		Kind:           compensation.Kind(req.Kind),
		Name:           req.Name,
		Grade:          req.Grade,
		Amount:         amount,
		Rate:           rate,
		ApprovalStatus: compensation.StatusDraft,
		CreatedBy:      createdBy,
	}

	created, err := s.compensationRepo.Create(ctx, component)
	if err != nil {
		return compensation.ComponentResponse{}, err
	}

	return mapToComponentResponse(created), nil
}

func (s *CompensationServiceImpl) GetComponent(ctx context.Context, id string) (compensation.ComponentResponse, error) {
	component, err := s.compensationRepo.GetByID(ctx, id)
	if err != nil {
		return compensation.ComponentResponse{}, err
	}
	return mapToComponentResponse(component), nil
}

func (s *CompensationServiceImpl) ListComponents(ctx context.Context, kind string) ([]compensation.ComponentResponse, error) {
	if kind != "" && !compensation.Kind(kind).IsValid() {
		return nil, compensation.ErrInvalidKind
	}

	components, err := s.compensationRepo.ListByKind(ctx, compensation.Kind(kind))
	if err != nil {
		return nil, err
	}

	result := make([]compensation.ComponentResponse, 0, len(components))
	for _, c := range components {
		result = append(result, mapToComponentResponse(c))
	}
	return result, nil
}

func (s *CompensationServiceImpl) ApproveComponent(ctx context.Context, id string) (compensation.ComponentResponse, error) {
	return s.decide(ctx, id, compensation.StatusApproved)
}

func (s *CompensationServiceImpl) RejectComponent(ctx context.Context, id string) (compensation.ComponentResponse, error) {
	return s.decide(ctx, id, compensation.StatusRejected)
}

// decide applies the one-way draft transition. Approved and rejected are
// terminal: a decided component can only be superseded by a new draft.
func (s *CompensationServiceImpl) decide(ctx context.Context, id string, status compensation.ApprovalStatus) (compensation.ComponentResponse, error) {
	decidedBy, err := getClaimsFromContext(ctx)
	if err != nil {
		return compensation.ComponentResponse{}, err
	}

	component, err := s.compensationRepo.GetByID(ctx, id)
	if err != nil {
		return compensation.ComponentResponse{}, err
	}
	if component.ApprovalStatus != compensation.StatusDraft {
		return compensation.ComponentResponse{}, fmt.Errorf("component %s is %s: %w", id, component.ApprovalStatus, compensation.ErrComponentAlreadyFinal)
	}

	updated, err := s.compensationRepo.SetApproval(ctx, id, status, decidedBy, time.Now())
	if err != nil {
		return compensation.ComponentResponse{}, err
	}

	return mapToComponentResponse(updated), nil
}

// ========== EMPLOYEE COMPONENTS ==========

func (s *CompensationServiceImpl) AssignComponent(ctx context.Context, req compensation.AssignComponentRequest) (compensation.EmployeeComponentResponse, error) {
	if err := req.Validate(); err != nil {
		return compensation.EmployeeComponentResponse{}, err
	}

	if _, err := s.employeeRepo.GetByID(ctx, req.EmployeeID); err != nil {
		return compensation.EmployeeComponentResponse{}, fmt.Errorf("employee %s: %w", req.EmployeeID, err)
	}

	component, err := s.compensationRepo.GetByID(ctx, req.ComponentID)
	if err != nil {
		return compensation.EmployeeComponentResponse{}, err
	}
	if component.Kind != compensation.KindAllowance && component.Kind != compensation.KindInsuranceBracket {
		return compensation.EmployeeComponentResponse{}, compensation.ErrAssignmentNotRecurring
	}
	if component.ApprovalStatus != compensation.StatusApproved {
		return compensation.EmployeeComponentResponse{}, fmt.Errorf("component %q: %w", component.Name, compensation.ErrComponentNotApproved)
	}

	created, err := s.compensationRepo.AssignToEmployee(ctx, compensation.EmployeeComponent{
		EmployeeID:  req.EmployeeID,
		ComponentID: req.ComponentID,
	})
	if err != nil {
		return compensation.EmployeeComponentResponse{}, err
	}

	return mapToEmployeeComponentResponse(created, component), nil
}

func (s *CompensationServiceImpl) GetEmployeeComponents(ctx context.Context, employeeID string) ([]compensation.EmployeeComponentResponse, error) {
	assignments, err := s.compensationRepo.GetEmployeeComponents(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	result := make([]compensation.EmployeeComponentResponse, 0, len(assignments))
	for _, a := range assignments {
		resp := compensation.EmployeeComponentResponse{
			ID:              a.ID,
			EmployeeID:      a.EmployeeID,
			ComponentID:     a.ComponentID,
			ComponentAmount: a.ComponentAmount,
		}
		if a.ComponentName != nil {
			resp.ComponentName = *a.ComponentName
		}
		if a.ComponentKind != nil {
			resp.ComponentKind = string(*a.ComponentKind)
		}
		result = append(result, resp)
	}
	return result, nil
}

func (s *CompensationServiceImpl) RemoveEmployeeComponent(ctx context.Context, id string) error {
	return s.compensationRepo.RemoveEmployeeComponent(ctx, id)
}

// ========== HELPERS ==========

func mapToComponentResponse(c compensation.Component) compensation.ComponentResponse {
	var approvedAtStr *string
	if c.ApprovedAt != nil {
		str := c.ApprovedAt.Format(time.RFC3339)
		approvedAtStr = &str
	}

	return compensation.ComponentResponse{
		ID:             c.ID,
		Kind:           string(c.Kind),
		Name:           c.Name,
		Grade:          c.Grade,
		Amount:         c.Amount,
		Rate:           c.Rate,
		ApprovalStatus: string(c.ApprovalStatus),
		CreatedBy:      c.CreatedBy,
		ApprovedBy:     c.ApprovedBy,
		ApprovedAt:     approvedAtStr,
	}
}

func mapToEmployeeComponentResponse(a compensation.EmployeeComponent, c compensation.Component) compensation.EmployeeComponentResponse {
	amount := c.Amount
	return compensation.EmployeeComponentResponse{
		ID:              a.ID,
		EmployeeID:      a.EmployeeID,
		ComponentID:     a.ComponentID,
		ComponentName:   c.Name,
		ComponentKind:   string(c.Kind),
		ComponentAmount: &amount,
	}
}
