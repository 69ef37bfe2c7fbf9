package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/agency-crm-backend/internal/models"
	"github.com/ignatzorin/agency-crm-backend/internal/pkg/apperror"
	"github.com/ignatzorin/agency-crm-backend/internal/validation"
)

// CompanyRepository описывает взаимодействие сервиса с хранилищем компаний.
type CompanyRepository interface {
	Create(ctx context.Context, company *models.Company) error
	GetInOrganization(ctx context.Context, id, organizationID uuid.UUID) (*models.Company, error)
	List(ctx context.Context, organizationID uuid.UUID, limit, offset int) ([]models.Company, error)
}

// ContactRepository описывает взаимодействие сервиса с хранилищем контактов.
type ContactRepository interface {
	Create(ctx context.Context, contact *models.Contact) error
	GetInOrganization(ctx context.Context, id, organizationID uuid.UUID) (*models.Contact, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]models.Contact, error)
}

// DirectoryService ведёт справочник компаний и контактных лиц.
type DirectoryService struct {
	companies CompanyRepository
	contacts  ContactRepository
}

// NewDirectoryService создаёт сервис справочника.
func NewDirectoryService(companies CompanyRepository, contacts ContactRepository) *DirectoryService {
	return &DirectoryService{companies: companies, contacts: contacts}
}

// CompanyInput содержит данные новой компании.
type CompanyInput struct {
	Name        string
	Industry    *string
	Website     *string
	Description *string
}

// CreateCompany добавляет компанию в справочник организации.
func (s *DirectoryService) CreateCompany(ctx context.Context, organizationID uuid.UUID, in CompanyInput) (*models.Company, error) {
	if err := validation.ValidateNonEmpty("название компании", in.Name); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	company := &models.Company{
		OrganizationID: organizationID,
		Name:           in.Name,
		Industry:       in.Industry,
		Website:        in.Website,
		Description:    in.Description,
	}

	if err := s.companies.Create(ctx, company); err != nil {
		return nil, err
	}

	return company, nil
}

// GetCompany возвращает компанию в рамках организации.
func (s *DirectoryService) GetCompany(ctx context.Context, companyID, organizationID uuid.UUID) (*models.Company, error) {
	return s.companies.GetInOrganization(ctx, companyID, organizationID)
}

// ListCompanies возвращает компании организации.
func (s *DirectoryService) ListCompanies(ctx context.Context, organizationID uuid.UUID, limit, offset int) ([]models.Company, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	return s.companies.List(ctx, organizationID, limit, offset)
}

// ContactInput содержит данные нового контакта.
type ContactInput struct {
	CompanyID uuid.UUID
	Name      string
	Email     string
	Position  *string
	Phone     *string
}

// CreateContact добавляет контактное лицо компании.
func (s *DirectoryService) CreateContact(ctx context.Context, organizationID uuid.UUID, in ContactInput) (*models.Contact, error) {
	if err := validation.ValidateContactName(in.Name); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	// компания должна существовать и принадлежать организации
	company, err := s.companies.GetInOrganization(ctx, in.CompanyID, organizationID)
	if err != nil {
		return nil, err
	}

	contact := &models.Contact{
		OrganizationID: organizationID,
		CompanyID:      company.ID,
		Name:           in.Name,
		Email:          in.Email,
		Position:       in.Position,
		Phone:          in.Phone,
	}

	if err := s.contacts.Create(ctx, contact); err != nil {
		return nil, err
	}

	return contact, nil
}

// GetContact возвращает контакт в рамках организации.
func (s *DirectoryService) GetContact(ctx context.Context, contactID, organizationID uuid.UUID) (*models.Contact, error) {
	return s.contacts.GetInOrganization(ctx, contactID, organizationID)
}

// ListContacts возвращает контактные лица компании.
func (s *DirectoryService) ListContacts(ctx context.Context, companyID, organizationID uuid.UUID) ([]models.Contact, error) {
	if _, err := s.companies.GetInOrganization(ctx, companyID, organizationID); err != nil {
		return nil, err
	}

	return s.contacts.ListByCompany(ctx, companyID)
}
