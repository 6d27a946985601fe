package disbursement

import (
	"context"
	"time"
)

// Repository defines data access for disbursement assignments. Upsert is the
// only write path for assignment state: it treats a write to an existing
// (employee_id, component_id) key as an overwrite of that key.
type Repository interface {
	// Upsert creates or overwrites the assignment keyed on
	// (employee_id, component_id). A nil PaymentDate clears any stored date.
	Upsert(ctx context.Context, assignment Assignment) (Assignment, error)

	GetByEmployeeAndComponent(ctx context.Context, employeeID, componentID string) (Assignment, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]Assignment, error)

	// ListPayableByEmployee returns approved assignments without a payment
	// date, joined with their component name and kind. These ride the next
	// settlement for the employee.
	ListPayableByEmployee(ctx context.Context, employeeID string) ([]Assignment, error)

	// MarkPaidByEmployees stamps the payment date on every approved, unpaid
	// assignment of the given employees. Returns the number of rows stamped.
	MarkPaidByEmployees(ctx context.Context, employeeIDs []string, paymentDate time.Time) (int64, error)
}
