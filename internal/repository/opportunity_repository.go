package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/agency-crm-backend/internal/models"
)

// ErrOpportunityNotFound возвращается, когда сделка не найдена.
var ErrOpportunityNotFound = errors.New("opportunity not found")

// OpportunityRepository отвечает за работу со сделками.
type OpportunityRepository struct {
	db *sqlx.DB
}

// NewOpportunityRepository создаёт экземпляр репозитория.
func NewOpportunityRepository(db *sqlx.DB) *OpportunityRepository {
	return &OpportunityRepository{db: db}
}

// Create создаёт новую сделку.
func (r *OpportunityRepository) Create(ctx context.Context, opp *models.Opportunity) error {
	query := `
		INSERT INTO opportunities (organization_id, company_id, title, status, brief_status, value_estimate, expected_close, outcome, closed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx,
		query,
		opp.OrganizationID,
		opp.CompanyID,
		opp.Title,
		opp.Status,
		opp.BriefStatus,
		opp.ValueEstimate,
		opp.ExpectedClose,
		opp.Outcome,
		opp.ClosedAt,
	).Scan(&opp.ID, &opp.CreatedAt, &opp.UpdatedAt); err != nil {
		return fmt.Errorf("opportunity repository: create %w", err)
	}

	return nil
}

// GetByID возвращает сделку по идентификатору.
func (r *OpportunityRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Opportunity, error) {
	var opp models.Opportunity
	if err := r.db.GetContext(ctx, &opp, `SELECT * FROM opportunities WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOpportunityNotFound
		}
		return nil, fmt.Errorf("opportunity repository: get by id %w", err)
	}

	return &opp, nil
}

// List возвращает сделки организации с опциональным фильтром по этапу.
func (r *OpportunityRepository) List(ctx context.Context, organizationID uuid.UUID, status string, limit, offset int) ([]models.Opportunity, error) {
	query := `SELECT * FROM opportunities WHERE organization_id = $1`
	args := []interface{}{organizationID}
	argIndex := 2

	if status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, status)
		argIndex++
	}

	query += " ORDER BY created_at DESC"

	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, limit)
		argIndex++
	}

	if offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIndex)
		args = append(args, offset)
	}

	var opps []models.Opportunity
	if err := r.db.SelectContext(ctx, &opps, query, args...); err != nil {
		return nil, fmt.Errorf("opportunity repository: list %w", err)
	}

	return opps, nil
}

// Update сохраняет изменённую сделку.
func (r *OpportunityRepository) Update(ctx context.Context, opp *models.Opportunity) error {
	query := `
		UPDATE opportunities
		SET title = $1, status = $2, brief_status = $3, value_estimate = $4,
		    expected_close = $5, outcome = $6, closed_at = $7, updated_at = NOW()
		WHERE id = $8
		RETURNING updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx,
		query,
		opp.Title,
		opp.Status,
		opp.BriefStatus,
		opp.ValueEstimate,
		opp.ExpectedClose,
		opp.Outcome,
		opp.ClosedAt,
		opp.ID,
	).Scan(&opp.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrOpportunityNotFound
		}
		return fmt.Errorf("opportunity repository: update %w", err)
	}

	return nil
}

// UpdateBriefStatus обновляет только статус брифа.
func (r *OpportunityRepository) UpdateBriefStatus(ctx context.Context, id uuid.UUID, briefStatus string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE opportunities SET brief_status = $1, updated_at = NOW() WHERE id = $2`, briefStatus, id)
	if err != nil {
		return fmt.Errorf("opportunity repository: update brief status %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("opportunity repository: update brief status rows affected %w", err)
	}

	if rowsAffected == 0 {
		return ErrOpportunityNotFound
	}

	return nil
}

// Delete удаляет сделку.
func (r *OpportunityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM opportunities WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("opportunity repository: delete %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("opportunity repository: delete rows affected %w", err)
	}

	if rowsAffected == 0 {
		return ErrOpportunityNotFound
	}

	return nil
}
