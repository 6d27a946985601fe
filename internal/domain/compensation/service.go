package compensation

import "context"

type Service interface {
	CreateComponent(ctx context.Context, req CreateComponentRequest) (ComponentResponse, error)
	GetComponent(ctx context.Context, id string) (ComponentResponse, error)
	ListComponents(ctx context.Context, kind string) ([]ComponentResponse, error)
	ApproveComponent(ctx context.Context, id string) (ComponentResponse, error)
	RejectComponent(ctx context.Context, id string) (ComponentResponse, error)

	AssignComponent(ctx context.Context, req AssignComponentRequest) (EmployeeComponentResponse, error)
	GetEmployeeComponents(ctx context.Context, employeeID string) ([]EmployeeComponentResponse, error)
	RemoveEmployeeComponent(ctx context.Context, id string) error
}
