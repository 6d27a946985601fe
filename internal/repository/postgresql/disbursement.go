package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/lumina-hr/payroll-engine-go/internal/domain/disbursement"
	"github.com/lumina-hr/payroll-engine-go/internal/pkg/database"
)

type disbursementRepository struct {
	db *database.DB
}

func NewDisbursementRepository(db *database.DB) disbursement.Repository {
	return &disbursementRepository{db: db}
}

const assignmentColumns = `da.id, da.employee_id, da.component_id, da.given_amount,
	da.payment_date, da.status, da.linked_workflow_id, da.created_at, da.updated_at,
	cc.name AS component_name, cc.kind AS component_kind`

func scanAssignment(row pgx.Row) (disbursement.Assignment, error) {
	var a disbursement.Assignment
	err := row.Scan(
		&a.ID, &a.EmployeeID, &a.ComponentID, &a.GivenAmount,
		&a.PaymentDate, &a.Status, &a.LinkedWorkflowID, &a.CreatedAt, &a.UpdatedAt,
		&a.ComponentName, &a.ComponentKind,
	)
	return a, err
}

func (r *disbursementRepository) Upsert(ctx context.Context, assignment disbursement.Assignment) (disbursement.Assignment, error) {
	q := GetQuerier(ctx, r.db)

	// A nil payment_date clears any stored date, so a downgrade away from
	// approved never leaves a stale date behind.
	query := `
		WITH upserted AS (
			INSERT INTO disbursement_assignments (
				employee_id, component_id, given_amount, payment_date, status, linked_workflow_id
			) VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (employee_id, component_id) DO UPDATE SET
				given_amount = EXCLUDED.given_amount,
				payment_date = EXCLUDED.payment_date,
				status = EXCLUDED.status,
				linked_workflow_id = EXCLUDED.linked_workflow_id,
				updated_at = NOW()
			RETURNING *
		)
		SELECT ` + assignmentColumns + `
		FROM upserted da
		JOIN compensation_components cc ON da.component_id = cc.id
	`

	a, err := scanAssignment(q.QueryRow(ctx, query,
		assignment.EmployeeID, assignment.ComponentID, assignment.GivenAmount,
		assignment.PaymentDate, assignment.Status, assignment.LinkedWorkflowID,
	))
	if err != nil {
		return disbursement.Assignment{}, fmt.Errorf("failed to upsert disbursement assignment: %w", err)
	}

	return a, nil
}

func (r *disbursementRepository) GetByEmployeeAndComponent(ctx context.Context, employeeID, componentID string) (disbursement.Assignment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + assignmentColumns + `
		FROM disbursement_assignments da
		JOIN compensation_components cc ON da.component_id = cc.id
		WHERE da.employee_id = $1 AND da.component_id = $2
	`

	a, err := scanAssignment(q.QueryRow(ctx, query, employeeID, componentID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return disbursement.Assignment{}, disbursement.ErrAssignmentNotFound
		}
		return disbursement.Assignment{}, fmt.Errorf("failed to get disbursement assignment: %w", err)
	}

	return a, nil
}

func (r *disbursementRepository) ListByEmployee(ctx context.Context, employeeID string) ([]disbursement.Assignment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + assignmentColumns + `
		FROM disbursement_assignments da
		JOIN compensation_components cc ON da.component_id = cc.id
		WHERE da.employee_id = $1
		ORDER BY da.created_at
	`

	return r.queryAssignments(ctx, q, query, employeeID)
}

func (r *disbursementRepository) ListPayableByEmployee(ctx context.Context, employeeID string) ([]disbursement.Assignment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + assignmentColumns + `
		FROM disbursement_assignments da
		JOIN compensation_components cc ON da.component_id = cc.id
		WHERE da.employee_id = $1 AND da.status = 'approved' AND da.payment_date IS NULL
		ORDER BY da.created_at
	`

	return r.queryAssignments(ctx, q, query, employeeID)
}

func (r *disbursementRepository) MarkPaidByEmployees(ctx context.Context, employeeIDs []string, paymentDate time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE disbursement_assignments
		SET payment_date = $2, updated_at = NOW()
		WHERE employee_id = ANY($1) AND status = 'approved' AND payment_date IS NULL
	`

	tag, err := q.Exec(ctx, query, employeeIDs, paymentDate)
	if err != nil {
		return 0, fmt.Errorf("failed to mark disbursements paid: %w", err)
	}

	return tag.RowsAffected(), nil
}

func (r *disbursementRepository) queryAssignments(ctx context.Context, q database.Querier, query string, args ...interface{}) ([]disbursement.Assignment, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list disbursement assignments: %w", err)
	}
	defer rows.Close()

	var assignments []disbursement.Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan disbursement assignment: %w", err)
		}
		assignments = append(assignments, a)
	}

	return assignments, nil
}
