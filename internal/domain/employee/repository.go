package employee

import "context"

// Repository is the read-only employee directory collaborator. An
// unresolvable employee yields ErrEmployeeNotFound, never partial data.
type Repository interface {
	GetByID(ctx context.Context, id string) (Employee, error)
	GetActive(ctx context.Context) ([]Employee, error)
}
