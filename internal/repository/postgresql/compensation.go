package postgresql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/lumina-hr/payroll-engine-go/internal/domain/compensation"
	"github.com/lumina-hr/payroll-engine-go/internal/pkg/database"
)

type compensationRepository struct {
	db *database.DB
}

func NewCompensationRepository(db *database.DB) compensation.Repository {
	return &compensationRepository{db: db}
}

// ========== COMPONENTS ==========

func (r *compensationRepository) Create(ctx context.Context, component compensation.Component) (compensation.Component, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO compensation_components (kind, name, grade, amount, rate, approval_status, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, kind, name, grade, amount, rate, approval_status,
			created_by, approved_by, approved_at, created_at, updated_at
	`

	var c compensation.Component
	err := q.QueryRow(ctx, query,
		component.Kind, component.Name, component.Grade, component.Amount, component.Rate,
		component.ApprovalStatus, component.CreatedBy,
	).Scan(
		&c.ID, &c.Kind, &c.Name, &c.Grade, &c.Amount, &c.Rate, &c.ApprovalStatus,
		&c.CreatedBy, &c.ApprovedBy, &c.ApprovedAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "uk_component_kind_name") {
			return compensation.Component{}, compensation.ErrComponentNameExists
		}
		return compensation.Component{}, fmt.Errorf("failed to create compensation component: %w", err)
	}

	return c, nil
}

func (r *compensationRepository) GetByID(ctx context.Context, id string) (compensation.Component, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, kind, name, grade, amount, rate, approval_status,
			   created_by, approved_by, approved_at, created_at, updated_at
		FROM compensation_components
		WHERE id = $1
	`

	var c compensation.Component
	err := q.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.Kind, &c.Name, &c.Grade, &c.Amount, &c.Rate, &c.ApprovalStatus,
		&c.CreatedBy, &c.ApprovedBy, &c.ApprovedAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return compensation.Component{}, compensation.ErrComponentNotFound
		}
		return compensation.Component{}, fmt.Errorf("failed to get compensation component: %w", err)
	}

	return c, nil
}

func (r *compensationRepository) GetApproved(ctx context.Context, kind compensation.Kind, selector string) (compensation.Component, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, kind, name, grade, amount, rate, approval_status,
			   created_by, approved_by, approved_at, created_at, updated_at
		FROM compensation_components
		WHERE kind = $1 AND approval_status = 'approved'
		  AND ($2 = '' OR id::text = $2 OR name = $2 OR grade = $2)
		ORDER BY approved_at DESC
		LIMIT 1
	`

	var c compensation.Component
	err := q.QueryRow(ctx, query, kind, selector).Scan(
		&c.ID, &c.Kind, &c.Name, &c.Grade, &c.Amount, &c.Rate, &c.ApprovalStatus,
		&c.CreatedBy, &c.ApprovedBy, &c.ApprovedAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err == nil {
		return c, nil
	}
	if err != pgx.ErrNoRows {
		return compensation.Component{}, fmt.Errorf("failed to get approved component: %w", err)
	}

	// Distinguish "exists but not approved" from "does not exist": using a
	// draft or rejected entity must surface as a gating error, not a lookup miss.
	var exists bool
	err = q.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM compensation_components
			WHERE kind = $1 AND ($2 = '' OR id::text = $2 OR name = $2 OR grade = $2)
		)
	`, kind, selector).Scan(&exists)
	if err != nil {
		return compensation.Component{}, fmt.Errorf("failed to check component existence: %w", err)
	}
	if exists {
		return compensation.Component{}, compensation.ErrComponentNotApproved
	}
	return compensation.Component{}, compensation.ErrComponentNotFound
}

func (r *compensationRepository) ListByKind(ctx context.Context, kind compensation.Kind) ([]compensation.Component, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, kind, name, grade, amount, rate, approval_status,
			   created_by, approved_by, approved_at, created_at, updated_at
		FROM compensation_components
	`
	args := []interface{}{}
	if kind != "" {
		query += " WHERE kind = $1"
		args = append(args, kind)
	}
	query += " ORDER BY kind, name"

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list compensation components: %w", err)
	}
	defer rows.Close()

	var components []compensation.Component
	for rows.Next() {
		var c compensation.Component
		if err := rows.Scan(
			&c.ID, &c.Kind, &c.Name, &c.Grade, &c.Amount, &c.Rate, &c.ApprovalStatus,
			&c.CreatedBy, &c.ApprovedBy, &c.ApprovedAt, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan compensation component: %w", err)
		}
		components = append(components, c)
	}

	return components, nil
}

func (r *compensationRepository) SetApproval(ctx context.Context, id string, status compensation.ApprovalStatus, decidedBy string, decidedAt time.Time) (compensation.Component, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE compensation_components
		SET approval_status = $2,
			approved_by = CASE WHEN $2::text = 'approved' THEN $3 ELSE NULL END,
			approved_at = CASE WHEN $2::text = 'approved' THEN $4 ELSE NULL END,
			updated_at = NOW()
		WHERE id = $1 AND approval_status = 'draft'
		RETURNING id, kind, name, grade, amount, rate, approval_status,
			created_by, approved_by, approved_at, created_at, updated_at
	`

	var c compensation.Component
	err := q.QueryRow(ctx, query, id, status, decidedBy, decidedAt).Scan(
		&c.ID, &c.Kind, &c.Name, &c.Grade, &c.Amount, &c.Rate, &c.ApprovalStatus,
		&c.CreatedBy, &c.ApprovedBy, &c.ApprovedAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			var exists bool
			if exErr := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM compensation_components WHERE id = $1)`, id).Scan(&exists); exErr == nil && exists {
				return compensation.Component{}, compensation.ErrComponentAlreadyFinal
			}
			return compensation.Component{}, compensation.ErrComponentNotFound
		}
		return compensation.Component{}, fmt.Errorf("failed to set component approval: %w", err)
	}

	return c, nil
}

// ========== EMPLOYEE COMPONENTS ==========

func (r *compensationRepository) AssignToEmployee(ctx context.Context, assignment compensation.EmployeeComponent) (compensation.EmployeeComponent, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO employee_components (employee_id, component_id)
		VALUES ($1, $2)
		ON CONFLICT (employee_id, component_id) DO UPDATE SET employee_id = EXCLUDED.employee_id
		RETURNING id, employee_id, component_id, created_at
	`

	var a compensation.EmployeeComponent
	err := q.QueryRow(ctx, query, assignment.EmployeeID, assignment.ComponentID).Scan(
		&a.ID, &a.EmployeeID, &a.ComponentID, &a.CreatedAt,
	)
	if err != nil {
		return compensation.EmployeeComponent{}, fmt.Errorf("failed to assign component to employee: %w", err)
	}

	return a, nil
}

func (r *compensationRepository) GetEmployeeComponents(ctx context.Context, employeeID string) ([]compensation.EmployeeComponent, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ec.id, ec.employee_id, ec.component_id, ec.created_at,
			   cc.name AS component_name, cc.kind AS component_kind,
			   cc.amount AS component_amount, cc.approval_status AS component_status
		FROM employee_components ec
		JOIN compensation_components cc ON ec.component_id = cc.id
		WHERE ec.employee_id = $1
		ORDER BY cc.kind, cc.name
	`

	rows, err := q.Query(ctx, query, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get employee components: %w", err)
	}
	defer rows.Close()

	var assignments []compensation.EmployeeComponent
	for rows.Next() {
		var a compensation.EmployeeComponent
		if err := rows.Scan(
			&a.ID, &a.EmployeeID, &a.ComponentID, &a.CreatedAt,
			&a.ComponentName, &a.ComponentKind, &a.ComponentAmount, &a.ComponentStatus,
		); err != nil {
			return nil, fmt.Errorf("failed to scan employee component: %w", err)
		}
		assignments = append(assignments, a)
	}

	return assignments, nil
}

func (r *compensationRepository) RemoveEmployeeComponent(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	query := `DELETE FROM employee_components WHERE id = $1 RETURNING id`

	var deletedID string
	err := q.QueryRow(ctx, query, id).Scan(&deletedID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return compensation.ErrAssignmentNotFound
		}
		return fmt.Errorf("failed to remove employee component: %w", err)
	}

	return nil
}
