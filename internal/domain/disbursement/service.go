package disbursement

import "context"

// Service defines business logic for disbursement assignments
type Service interface {
	// Assign creates or overwrites the single assignment of a component to an
	// employee, resolving the originating workflow record for
	// termination/resignation benefits.
	Assign(ctx context.Context, req AssignRequest) (AssignmentResponse, error)

	GetAssignment(ctx context.Context, employeeID, componentID string) (AssignmentResponse, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]AssignmentResponse, error)
}
