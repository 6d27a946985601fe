package workflow

import "context"

// Repository resolves the workflow records disbursements link to.
type Repository interface {
	FindByEmployeeID(ctx context.Context, employeeID string) (TerminationRequest, error)

	// FindOrCreate returns the employee's termination request, creating one
	// only when the directory records the originating event (the employee is
	// terminated or resigned). It returns ErrRecordNotFound rather than
	// fabricating a reference for an active employee.
	FindOrCreate(ctx context.Context, employeeID string) (TerminationRequest, error)
}
