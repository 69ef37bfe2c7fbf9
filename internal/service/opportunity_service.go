package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/agency-crm-backend/internal/logger"
	"github.com/ignatzorin/agency-crm-backend/internal/models"
	"github.com/ignatzorin/agency-crm-backend/internal/pkg/apperror"
	"github.com/ignatzorin/agency-crm-backend/internal/validation"
)

// OpportunityRepository описывает взаимодействие сервиса с хранилищем сделок.
type OpportunityRepository interface {
	Create(ctx context.Context, opp *models.Opportunity) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Opportunity, error)
	List(ctx context.Context, organizationID uuid.UUID, status string, limit, offset int) ([]models.Opportunity, error)
	Update(ctx context.Context, opp *models.Opportunity) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// CompanyReader описывает чтение компаний при создании сделки.
type CompanyReader interface {
	GetInOrganization(ctx context.Context, id, organizationID uuid.UUID) (*models.Company, error)
}

// OpportunityService содержит бизнес-логику воронки продаж.
type OpportunityService struct {
	repo      OpportunityRepository
	companies CompanyReader
	now       func() time.Time
}

// NewOpportunityService создаёт сервис сделок.
func NewOpportunityService(repo OpportunityRepository, companies CompanyReader) *OpportunityService {
	return &OpportunityService{
		repo:      repo,
		companies: companies,
		now:       time.Now,
	}
}

// CreateOpportunityInput содержит данные новой сделки.
type CreateOpportunityInput struct {
	OrganizationID uuid.UUID
	CompanyID      uuid.UUID
	Title          string
	ValueEstimate  *float64
	ExpectedClose  *time.Time
}

// CreateOpportunity заводит сделку на этапе LEAD.
func (s *OpportunityService) CreateOpportunity(ctx context.Context, input CreateOpportunityInput) (*models.Opportunity, error) {
	if err := validation.ValidateOpportunityTitle(input.Title); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateValueEstimate(input.ValueEstimate); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	if _, err := s.companies.GetInOrganization(ctx, input.CompanyID, input.OrganizationID); err != nil {
		return nil, apperror.ErrCompanyNotFound
	}

	opp := &models.Opportunity{
		OrganizationID: input.OrganizationID,
		CompanyID:      input.CompanyID,
		Title:          input.Title,
		Status:         models.OpportunityStatusLead,
		BriefStatus:    models.BriefStatusDraft,
		ValueEstimate:  input.ValueEstimate,
		ExpectedClose:  input.ExpectedClose,
	}

	if err := s.repo.Create(ctx, opp); err != nil {
		return nil, err
	}

	return opp, nil
}

// GetOpportunity возвращает сделку в рамках организации.
func (s *OpportunityService) GetOpportunity(ctx context.Context, id, organizationID uuid.UUID) (*models.Opportunity, error) {
	opp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if opp.OrganizationID != organizationID {
		return nil, apperror.ErrOpportunityNotFound
	}

	return opp, nil
}

// ListOpportunities возвращает сделки организации.
func (s *OpportunityService) ListOpportunities(ctx context.Context, organizationID uuid.UUID, status string, limit, offset int) ([]models.Opportunity, error) {
	if status != "" {
		if _, ok := models.ValidOpportunityStatuses[status]; !ok {
			return nil, apperror.New(apperror.ErrCodeValidation, fmt.Sprintf("неизвестный этап воронки: %s", status))
		}
	}

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	return s.repo.List(ctx, organizationID, status, limit, offset)
}

// UpdateStatus переводит сделку на новый этап воронки.
// Этапы образуют плоский enum: допустим перевод между любыми двумя этапами,
// в том числе возврат из WON (исправление ошибки менеджера).
// closed_at поддерживается инвариантом: заполнен только на WON/LOST.
func (s *OpportunityService) UpdateStatus(ctx context.Context, id, organizationID uuid.UUID, newStatus string) (*models.Opportunity, error) {
	if _, ok := models.ValidOpportunityStatuses[newStatus]; !ok {
		return nil, apperror.New(apperror.ErrCodeValidation, fmt.Sprintf("неизвестный этап воронки: %s", newStatus))
	}

	opp, err := s.GetOpportunity(ctx, id, organizationID)
	if err != nil {
		return nil, err
	}

	oldStatus := opp.Status
	opp.Status = newStatus
	opp.ClosedAt = models.NextClosedAt(opp.ClosedAt, newStatus, s.now())

	if err := s.repo.Update(ctx, opp); err != nil {
		return nil, err
	}

	if logger.Log != nil && oldStatus != newStatus {
		logger.Log.WithFields(logrus.Fields{
			"opportunity_id": opp.ID,
			"from":           oldStatus,
			"to":             newStatus,
		}).Info("Этап сделки изменён")
	}

	return opp, nil
}

// UpdateOutcome сохраняет итог закрытой сделки.
func (s *OpportunityService) UpdateOutcome(ctx context.Context, id, organizationID uuid.UUID, outcome string) (*models.Opportunity, error) {
	opp, err := s.GetOpportunity(ctx, id, organizationID)
	if err != nil {
		return nil, err
	}

	opp.Outcome = &outcome

	if err := s.repo.Update(ctx, opp); err != nil {
		return nil, err
	}

	return opp, nil
}

// DeleteOpportunity удаляет сделку вместе с вопросами и документами (каскадом).
func (s *OpportunityService) DeleteOpportunity(ctx context.Context, id, organizationID uuid.UUID) error {
	if _, err := s.GetOpportunity(ctx, id, organizationID); err != nil {
		return err
	}

	return s.repo.Delete(ctx, id)
}
