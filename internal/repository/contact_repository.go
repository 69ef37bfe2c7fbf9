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

// ErrContactNotFound возвращается, когда контакт не найден.
var ErrContactNotFound = errors.New("contact not found")

// ContactRepository отвечает за работу с контактными лицами клиентов.
type ContactRepository struct {
	db *sqlx.DB
}

// NewContactRepository создаёт экземпляр репозитория.
func NewContactRepository(db *sqlx.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

// Create создаёт новый контакт.
func (r *ContactRepository) Create(ctx context.Context, contact *models.Contact) error {
	query := `
		INSERT INTO contacts (organization_id, company_id, name, email, position, phone)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx,
		query,
		contact.OrganizationID,
		contact.CompanyID,
		contact.Name,
		contact.Email,
		contact.Position,
		contact.Phone,
	).Scan(&contact.ID, &contact.CreatedAt, &contact.UpdatedAt); err != nil {
		return fmt.Errorf("contact repository: create %w", err)
	}

	return nil
}

// GetInOrganization возвращает контакт по id в рамках организации.
func (r *ContactRepository) GetInOrganization(ctx context.Context, id, organizationID uuid.UUID) (*models.Contact, error) {
	var contact models.Contact
	query := `SELECT * FROM contacts WHERE id = $1 AND organization_id = $2`
	if err := r.db.GetContext(ctx, &contact, query, id, organizationID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrContactNotFound
		}
		return nil, fmt.Errorf("contact repository: get in organization %w", err)
	}

	return &contact, nil
}

// GetByIDs возвращает контакты по списку идентификаторов.
func (r *ContactRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Contact, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`SELECT * FROM contacts WHERE id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("contact repository: get by ids build query %w", err)
	}

	query = r.db.Rebind(query)

	var contacts []models.Contact
	if err := r.db.SelectContext(ctx, &contacts, query, args...); err != nil {
		return nil, fmt.Errorf("contact repository: get by ids %w", err)
	}

	return contacts, nil
}

// ListByCompany возвращает контакты компании.
func (r *ContactRepository) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]models.Contact, error) {
	var contacts []models.Contact
	query := `SELECT * FROM contacts WHERE company_id = $1 ORDER BY created_at ASC`
	if err := r.db.SelectContext(ctx, &contacts, query, companyID); err != nil {
		return nil, fmt.Errorf("contact repository: list by company %w", err)
	}

	return contacts, nil
}
