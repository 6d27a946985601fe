package compensation

import (
	"context"
	"time"
)

// Repository defines data access for compensation configuration entities.
// Components are append-and-transition only; there is no delete.
type Repository interface {
	Create(ctx context.Context, component Component) (Component, error)
	GetByID(ctx context.Context, id string) (Component, error)

	// GetApproved returns the approved component of the given kind matching
	// selector. For pay grades the selector is the grade name; for other
	// kinds it matches id or name, and an empty selector returns the most
	// recently approved component of that kind. Draft or rejected matches
	// yield ErrComponentNotApproved, absent ones ErrComponentNotFound.
	GetApproved(ctx context.Context, kind Kind, selector string) (Component, error)

	ListByKind(ctx context.Context, kind Kind) ([]Component, error)

	// SetApproval applies a one-way draft transition. approved_by/approved_at
	// are stored only when status is approved, and cleared otherwise.
	SetApproval(ctx context.Context, id string, status ApprovalStatus, decidedBy string, decidedAt time.Time) (Component, error)

	// Employee assignments (recurring allowances)
	AssignToEmployee(ctx context.Context, assignment EmployeeComponent) (EmployeeComponent, error)
	GetEmployeeComponents(ctx context.Context, employeeID string) ([]EmployeeComponent, error)
	RemoveEmployeeComponent(ctx context.Context, id string) error
}
