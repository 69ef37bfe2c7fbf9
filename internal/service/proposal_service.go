package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/agency-crm-backend/internal/ai"
	"github.com/ignatzorin/agency-crm-backend/internal/logger"
	"github.com/ignatzorin/agency-crm-backend/internal/models"
	"github.com/ignatzorin/agency-crm-backend/internal/pkg/apperror"
	"github.com/ignatzorin/agency-crm-backend/internal/repository"
)

// ProposalRepository описывает взаимодействие сервиса с хранилищем предложений.
type ProposalRepository interface {
	CreateNextVersion(ctx context.Context, proposal *models.Proposal) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Proposal, error)
	ListByOpportunity(ctx context.Context, opportunityID uuid.UUID) ([]models.Proposal, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

// ProposalDrafter описывает AI генерацию черновика предложения.
type ProposalDrafter interface {
	DraftProposal(ctx context.Context, pc ai.ProposalContext) (*ai.ProposalDraft, error)
}

// Исходы генерации предложения.
const (
	GenerateOutcomeGenerated   = "generated"
	GenerateOutcomeNoTasks     = "no_tasks"
	GenerateOutcomeIncomplete  = "incomplete"
	GenerateOutcomeDraftFailed = "draft_failed"
)

// GenerateResult описывает исход попытки генерации предложения.
// Незакрытый бриф — не ошибка инфраструктуры, а ожидаемый исход,
// поэтому он возвращается данными, а не error.
type GenerateResult struct {
	Outcome        string           `json:"outcome"`
	PendingCount   int              `json:"pending_count,omitempty"`
	CompletedCount int              `json:"completed_count,omitempty"`
	Reason         string           `json:"reason,omitempty"`
	Proposal       *models.Proposal `json:"proposal,omitempty"`
}

// ProposalService содержит бизнес-логику коммерческих предложений.
type ProposalService struct {
	proposals     ProposalRepository
	opportunities OpportunityRepository
	briefs        BriefStatusWriter
	tasks         TaskRepository
	companies     CompanyReader
	contacts      ContactBatchReader
	drafter       ProposalDrafter
	notifier      Notifier
}

// NewProposalService создаёт сервис предложений.
func NewProposalService(proposals ProposalRepository, opportunities OpportunityRepository, briefs BriefStatusWriter, tasks TaskRepository, companies CompanyReader, contacts ContactBatchReader, drafter ProposalDrafter, notifier Notifier) *ProposalService {
	return &ProposalService{
		proposals:     proposals,
		opportunities: opportunities,
		briefs:        briefs,
		tasks:         tasks,
		companies:     companies,
		contacts:      contacts,
		drafter:       drafter,
		notifier:      notifier,
	}
}

// GenerateProposal генерирует новую версию предложения по заполненному брифу.
// Генерация разрешена только когда у сделки есть вопросы и все они закрыты.
// Черновик принимается целиком или не принимается вовсе: при ошибке
// генерации в базе не остаётся ни предложения, ни смены статуса брифа.
func (s *ProposalService) GenerateProposal(ctx context.Context, opportunityID, organizationID uuid.UUID) (*GenerateResult, error) {
	opp, err := s.opportunities.GetByID(ctx, opportunityID)
	if err != nil {
		return nil, err
	}
	if opp.OrganizationID != organizationID {
		return nil, apperror.ErrOpportunityNotFound
	}

	tasks, err := s.tasks.ListByOpportunity(ctx, opportunityID)
	if err != nil {
		return nil, err
	}

	if len(tasks) == 0 {
		return &GenerateResult{
			Outcome: GenerateOutcomeNoTasks,
			Reason:  "у сделки нет вопросов брифа",
		}, nil
	}

	pending := 0
	for _, task := range tasks {
		if task.Status != models.TaskStatusDone {
			pending++
		}
	}
	if pending > 0 {
		return &GenerateResult{
			Outcome:        GenerateOutcomeIncomplete,
			PendingCount:   pending,
			CompletedCount: len(tasks) - pending,
			Reason:         fmt.Sprintf("бриф не заполнен: %d из %d вопросов без ответа", pending, len(tasks)),
		}, nil
	}

	company, err := s.companies.GetInOrganization(ctx, opp.CompanyID, organizationID)
	if err != nil {
		return nil, err
	}

	pc, err := s.buildProposalContext(ctx, opp, company, tasks)
	if err != nil {
		return nil, err
	}

	draft, err := s.drafter.DraftProposal(ctx, *pc)
	if err != nil {
		logger.Log.WithFields(logrus.Fields{
			"opportunity_id": opportunityID,
			"error":          err.Error(),
		}).Error("Не удалось сгенерировать черновик предложения")
		return &GenerateResult{
			Outcome: GenerateOutcomeDraftFailed,
			Reason:  "не удалось сгенерировать черновик предложения",
		}, nil
	}

	proposal := &models.Proposal{
		OpportunityID: opp.ID,
		CompanyID:     opp.CompanyID,
		Status:        models.ProposalStatusDraft,
		Title:         draft.Title,
		Content:       draft.Content,
		Scope:         draft.Scope,
		Deliverables:  draft.Deliverables,
		Pricing:       draft.Pricing,
		Timeline:      draft.Timeline,
		Terms:         draft.Terms,
	}

	if err := s.createWithRetry(ctx, proposal); err != nil {
		return nil, err
	}

	if opp.BriefStatus != models.BriefStatusCompleted {
		if err := s.briefs.UpdateBriefStatus(ctx, opp.ID, models.BriefStatusCompleted); err != nil {
			return nil, err
		}
	}

	if s.notifier != nil {
		s.notifier.Notify(organizationID, "proposal.generated", map[string]any{
			"opportunity_id": opp.ID,
			"proposal_id":    proposal.ID,
			"version":        proposal.Version,
		})
	}

	logger.Log.WithFields(logrus.Fields{
		"opportunity_id": opp.ID,
		"proposal_id":    proposal.ID,
		"version":        proposal.Version,
	}).Info("Сгенерировано коммерческое предложение")

	return &GenerateResult{
		Outcome:        GenerateOutcomeGenerated,
		CompletedCount: len(tasks),
		Proposal:       proposal,
	}, nil
}

// createWithRetry вставляет предложение с пересчётом версии.
// Гонка за номер версии разрешается одним повтором: повторная вставка
// заново читает максимум, и второй конфликт подряд маловероятен.
func (s *ProposalService) createWithRetry(ctx context.Context, proposal *models.Proposal) error {
	err := s.proposals.CreateNextVersion(ctx, proposal)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrProposalVersionConflict) {
		return err
	}

	logger.Log.WithFields(logrus.Fields{
		"opportunity_id": proposal.OpportunityID,
		"version":        proposal.Version,
	}).Warn("Конфликт версии предложения, повторная попытка")

	err = s.proposals.CreateNextVersion(ctx, proposal)
	if errors.Is(err, repository.ErrProposalVersionConflict) {
		return apperror.Wrap(err, apperror.ErrCodeConflict, "конфликт версий предложения, повторите запрос")
	}
	return err
}

// buildProposalContext собирает бриф для AI: сделку, компанию и пары
// вопрос-ответ в порядке анкеты.
func (s *ProposalService) buildProposalContext(ctx context.Context, opp *models.Opportunity, company *models.Company, tasks []models.Task) (*ai.ProposalContext, error) {
	contactIDs := make([]uuid.UUID, 0)
	seen := make(map[uuid.UUID]bool)
	for _, task := range tasks {
		if task.ContactID != nil && !seen[*task.ContactID] {
			seen[*task.ContactID] = true
			contactIDs = append(contactIDs, *task.ContactID)
		}
	}

	contactNames := make(map[uuid.UUID]string)
	if len(contactIDs) > 0 {
		contacts, err := s.contacts.GetByIDs(ctx, contactIDs)
		if err != nil {
			return nil, err
		}
		for _, c := range contacts {
			contactNames[c.ID] = c.Name
		}
	}

	answers := make([]ai.AnsweredQuestion, 0, len(tasks))
	for _, task := range tasks {
		answer := ""
		if task.Answer != nil {
			answer = *task.Answer
		}
		contactName := "команда агентства"
		if task.ContactID != nil {
			if name, ok := contactNames[*task.ContactID]; ok {
				contactName = name
			}
		}
		answers = append(answers, ai.AnsweredQuestion{
			Question:    task.Question,
			Answer:      answer,
			ContactName: contactName,
		})
	}

	industry := ""
	if company.Industry != nil {
		industry = *company.Industry
	}

	return &ai.ProposalContext{
		OpportunityTitle: opp.Title,
		CompanyName:      company.Name,
		CompanyIndustry:  industry,
		ValueEstimate:    opp.ValueEstimate,
		Answers:          answers,
	}, nil
}

// GetProposal возвращает предложение в рамках организации.
func (s *ProposalService) GetProposal(ctx context.Context, proposalID, organizationID uuid.UUID) (*models.Proposal, error) {
	proposal, err := s.proposals.GetByID(ctx, proposalID)
	if err != nil {
		return nil, err
	}

	opp, err := s.opportunities.GetByID(ctx, proposal.OpportunityID)
	if err != nil {
		return nil, err
	}
	if opp.OrganizationID != organizationID {
		return nil, apperror.ErrProposalNotFound
	}

	return proposal, nil
}

// ListProposals возвращает версии предложений сделки, новые первыми.
func (s *ProposalService) ListProposals(ctx context.Context, opportunityID, organizationID uuid.UUID) ([]models.Proposal, error) {
	opp, err := s.opportunities.GetByID(ctx, opportunityID)
	if err != nil {
		return nil, err
	}
	if opp.OrganizationID != organizationID {
		return nil, apperror.ErrOpportunityNotFound
	}

	return s.proposals.ListByOpportunity(ctx, opportunityID)
}

// UpdateProposalStatus меняет статус предложения.
func (s *ProposalService) UpdateProposalStatus(ctx context.Context, proposalID, organizationID uuid.UUID, status string) (*models.Proposal, error) {
	if _, ok := models.ValidProposalStatuses[status]; !ok {
		return nil, apperror.New(apperror.ErrCodeValidation, fmt.Sprintf("неизвестный статус предложения: %s", status))
	}

	proposal, err := s.GetProposal(ctx, proposalID, organizationID)
	if err != nil {
		return nil, err
	}

	if err := s.proposals.UpdateStatus(ctx, proposalID, status); err != nil {
		return nil, err
	}

	proposal.Status = status
	return proposal, nil
}
