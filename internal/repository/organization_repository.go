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

// ErrOrganizationNotFound возвращается, когда организация не найдена.
var ErrOrganizationNotFound = errors.New("organization not found")

// OrganizationRepository инкапсулирует работу с таблицей organizations.
type OrganizationRepository struct {
	db *sqlx.DB
}

// NewOrganizationRepository создаёт репозиторий организаций.
func NewOrganizationRepository(db *sqlx.DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

// Create сохраняет новую организацию.
func (r *OrganizationRepository) Create(ctx context.Context, org *models.Organization) error {
	query := `
		INSERT INTO organizations (name)
		VALUES ($1)
		RETURNING id, created_at`

	if err := r.db.QueryRowxContext(ctx, query, org.Name).Scan(&org.ID, &org.CreatedAt); err != nil {
		return fmt.Errorf("organization repository: create %w", err)
	}

	return nil
}

// GetByID возвращает организацию по идентификатору.
func (r *OrganizationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	var org models.Organization
	if err := r.db.GetContext(ctx, &org, `SELECT * FROM organizations WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("organization repository: get by id %w", err)
	}

	return &org, nil
}
