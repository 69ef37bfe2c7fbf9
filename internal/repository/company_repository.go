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

// ErrCompanyNotFound возвращается, когда компания не найдена.
var ErrCompanyNotFound = errors.New("company not found")

// CompanyRepository отвечает за работу с компаниями-клиентами.
type CompanyRepository struct {
	db *sqlx.DB
}

// NewCompanyRepository создаёт экземпляр репозитория.
func NewCompanyRepository(db *sqlx.DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

// Create создаёт новую компанию.
func (r *CompanyRepository) Create(ctx context.Context, company *models.Company) error {
	query := `
		INSERT INTO companies (organization_id, name, industry, website, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx,
		query,
		company.OrganizationID,
		company.Name,
		company.Industry,
		company.Website,
		company.Description,
	).Scan(&company.ID, &company.CreatedAt, &company.UpdatedAt); err != nil {
		return fmt.Errorf("company repository: create %w", err)
	}

	return nil
}

// GetInOrganization возвращает компанию по id в рамках организации.
func (r *CompanyRepository) GetInOrganization(ctx context.Context, id, organizationID uuid.UUID) (*models.Company, error) {
	var company models.Company
	query := `SELECT * FROM companies WHERE id = $1 AND organization_id = $2`
	if err := r.db.GetContext(ctx, &company, query, id, organizationID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCompanyNotFound
		}
		return nil, fmt.Errorf("company repository: get in organization %w", err)
	}

	return &company, nil
}

// GetByID возвращает компанию по идентификатору.
func (r *CompanyRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	var company models.Company
	if err := r.db.GetContext(ctx, &company, `SELECT * FROM companies WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCompanyNotFound
		}
		return nil, fmt.Errorf("company repository: get by id %w", err)
	}

	return &company, nil
}

// List возвращает компании организации.
func (r *CompanyRepository) List(ctx context.Context, organizationID uuid.UUID, limit, offset int) ([]models.Company, error) {
	query := `SELECT * FROM companies WHERE organization_id = $1 ORDER BY name ASC`
	args := []interface{}{organizationID}
	argIndex := 2

	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, limit)
		argIndex++
	}

	if offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIndex)
		args = append(args, offset)
	}

	var companies []models.Company
	if err := r.db.SelectContext(ctx, &companies, query, args...); err != nil {
		return nil, fmt.Errorf("company repository: list %w", err)
	}

	return companies, nil
}
