package postgresql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/lumina-hr/payroll-engine-go/internal/domain/workflow"
	"github.com/lumina-hr/payroll-engine-go/internal/pkg/database"
)

type workflowRepository struct {
	db *database.DB
}

func NewWorkflowRepository(db *database.DB) workflow.Repository {
	return &workflowRepository{db: db}
}

func (r *workflowRepository) FindByEmployeeID(ctx context.Context, employeeID string) (workflow.TerminationRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, status, effective_date, created_at
		FROM termination_requests
		WHERE employee_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	var tr workflow.TerminationRequest
	err := q.QueryRow(ctx, query, employeeID).Scan(
		&tr.ID, &tr.EmployeeID, &tr.Status, &tr.EffectiveDate, &tr.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return workflow.TerminationRequest{}, workflow.ErrRecordNotFound
		}
		return workflow.TerminationRequest{}, fmt.Errorf("failed to find termination request: %w", err)
	}

	return tr, nil
}

func (r *workflowRepository) FindOrCreate(ctx context.Context, employeeID string) (workflow.TerminationRequest, error) {
	existing, err := r.FindByEmployeeID(ctx, employeeID)
	if err == nil {
		return existing, nil
	}
	if err != workflow.ErrRecordNotFound {
		return workflow.TerminationRequest{}, err
	}

	q := GetQuerier(ctx, r.db)

	// Create only when the directory already records the originating event.
	// An active employee never gets a fabricated reference.
	query := `
		INSERT INTO termination_requests (employee_id, status, effective_date)
		SELECT e.id, e.status, NOW()
		FROM employees e
		WHERE e.id = $1 AND e.status IN ('terminated', 'resigned')
		RETURNING id, employee_id, status, effective_date, created_at
	`

	var tr workflow.TerminationRequest
	err = q.QueryRow(ctx, query, employeeID).Scan(
		&tr.ID, &tr.EmployeeID, &tr.Status, &tr.EffectiveDate, &tr.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return workflow.TerminationRequest{}, workflow.ErrRecordNotFound
		}
		return workflow.TerminationRequest{}, fmt.Errorf("failed to create termination request: %w", err)
	}

	return tr, nil
}
