package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ignatzorin/agency-crm-backend/internal/ai"
	"github.com/ignatzorin/agency-crm-backend/internal/models"
	"github.com/ignatzorin/agency-crm-backend/internal/pkg/apperror"
	"github.com/ignatzorin/agency-crm-backend/internal/repository"
)

type mockProposalRepo struct {
	mock.Mock
}

func (m *mockProposalRepo) CreateNextVersion(ctx context.Context, proposal *models.Proposal) error {
	args := m.Called(ctx, proposal)
	return args.Error(0)
}

func (m *mockProposalRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Proposal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Proposal), args.Error(1)
}

func (m *mockProposalRepo) ListByOpportunity(ctx context.Context, opportunityID uuid.UUID) ([]models.Proposal, error) {
	args := m.Called(ctx, opportunityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Proposal), args.Error(1)
}

func (m *mockProposalRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

type mockDrafter struct {
	mock.Mock
}

func (m *mockDrafter) DraftProposal(ctx context.Context, pc ai.ProposalContext) (*ai.ProposalDraft, error) {
	args := m.Called(ctx, pc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ai.ProposalDraft), args.Error(1)
}

func validDraft() *ai.ProposalDraft {
	return &ai.ProposalDraft{
		Title:        "Редизайн интернет-магазина",
		Content:      "Предлагаем полный редизайн с переносом на новую платформу.",
		Scope:        "Дизайн, вёрстка, интеграция с 1С.",
		Deliverables: "Макеты, работающий сайт, документация.",
		Pricing:      "1 450 000 рублей, оплата в три этапа.",
		Timeline:     "12 недель с момента подписания договора.",
		Terms:        "Гарантийная поддержка 3 месяца.",
	}
}

type proposalFixture struct {
	svc           *ProposalService
	proposals     *mockProposalRepo
	drafter       *mockDrafter
	opportunities *mockOpportunityRepo
	tasks         *mockTaskRepo
	companies     *mockCompanyReader
	contacts      *mockContactReader
	notifier      *mockNotifier
}

func newProposalFixture() *proposalFixture {
	proposals := new(mockProposalRepo)
	drafter := new(mockDrafter)
	opportunities := newMockOpportunityRepo()
	tasks := newMockTaskRepo()
	companies := newMockCompanyReader()
	contacts := newMockContactReader()
	notifier := &mockNotifier{}
	svc := NewProposalService(proposals, opportunities, opportunities, tasks, companies, contacts, drafter, notifier)
	return &proposalFixture{
		svc:           svc,
		proposals:     proposals,
		drafter:       drafter,
		opportunities: opportunities,
		tasks:         tasks,
		companies:     companies,
		contacts:      contacts,
		notifier:      notifier,
	}
}

// completedBrief готовит сделку с полностью закрытым брифом.
func (f *proposalFixture) completedBrief(orgID uuid.UUID, doneCount int) *models.Opportunity {
	opp := newTestOpportunity(f.opportunities, orgID, models.OpportunityStatusNegotiation)
	company := f.companies.add(orgID)
	opp.CompanyID = company.ID

	answer := "Подробный ответ клиента"
	for i := 0; i < doneCount; i++ {
		task := &models.Task{
			OpportunityID: opp.ID,
			Title:         "Вопрос",
			Question:      "Вопрос брифа",
			Status:        models.TaskStatusDone,
			Answer:        &answer,
			SortOrder:     i,
		}
		f.tasks.insert(task)
	}
	return opp
}

func TestProposalService_GenerateNoTasks(t *testing.T) {
	f := newProposalFixture()
	orgID := uuid.New()
	opp := newTestOpportunity(f.opportunities, orgID, models.OpportunityStatusNegotiation)

	result, err := f.svc.GenerateProposal(context.Background(), opp.ID, orgID)

	assert.NoError(t, err)
	assert.Equal(t, GenerateOutcomeNoTasks, result.Outcome)
	f.drafter.AssertNotCalled(t, "DraftProposal", mock.Anything, mock.Anything)
	f.proposals.AssertNotCalled(t, "CreateNextVersion", mock.Anything, mock.Anything)
}

func TestProposalService_GenerateIncompleteBrief(t *testing.T) {
	f := newProposalFixture()
	orgID := uuid.New()
	opp := f.completedBrief(orgID, 3)

	for i := 0; i < 2; i++ {
		task := &models.Task{
			OpportunityID: opp.ID,
			Title:         "Открытый вопрос",
			Question:      "Вопрос без ответа",
			Status:        models.TaskStatusTodo,
			SortOrder:     10 + i,
		}
		f.tasks.insert(task)
	}

	result, err := f.svc.GenerateProposal(context.Background(), opp.ID, orgID)

	assert.NoError(t, err)
	assert.Equal(t, GenerateOutcomeIncomplete, result.Outcome)
	assert.Equal(t, 2, result.PendingCount)
	assert.Equal(t, 3, result.CompletedCount)
	f.drafter.AssertNotCalled(t, "DraftProposal", mock.Anything, mock.Anything)
}

func TestProposalService_GenerateFirstVersion(t *testing.T) {
	f := newProposalFixture()
	orgID := uuid.New()
	opp := f.completedBrief(orgID, 3)

	f.drafter.On("DraftProposal", mock.Anything, mock.Anything).Return(validDraft(), nil)
	f.proposals.On("CreateNextVersion", mock.Anything, mock.AnythingOfType("*models.Proposal")).
		Run(func(args mock.Arguments) {
			proposal := args.Get(1).(*models.Proposal)
			proposal.ID = uuid.New()
			proposal.Version = 1
		}).
		Return(nil).Once()

	result, err := f.svc.GenerateProposal(context.Background(), opp.ID, orgID)

	assert.NoError(t, err)
	assert.Equal(t, GenerateOutcomeGenerated, result.Outcome)
	assert.NotNil(t, result.Proposal)
	assert.Equal(t, 1, result.Proposal.Version)
	assert.Equal(t, models.ProposalStatusDraft, result.Proposal.Status)
	assert.Equal(t, opp.ID, result.Proposal.OpportunityID)

	// бриф закрывается вместе с первой сгенерированной версией
	assert.Equal(t, models.BriefStatusCompleted, f.opportunities.briefStatuses[opp.ID])
	assert.Contains(t, f.notifier.events, "proposal.generated")
	f.proposals.AssertExpectations(t)
}

func TestProposalService_GenerateKeepsCompletedBriefStatus(t *testing.T) {
	f := newProposalFixture()
	orgID := uuid.New()
	opp := f.completedBrief(orgID, 1)
	opp.BriefStatus = models.BriefStatusCompleted

	f.drafter.On("DraftProposal", mock.Anything, mock.Anything).Return(validDraft(), nil)
	f.proposals.On("CreateNextVersion", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			proposal := args.Get(1).(*models.Proposal)
			proposal.ID = uuid.New()
			proposal.Version = 2
		}).
		Return(nil).Once()

	result, err := f.svc.GenerateProposal(context.Background(), opp.ID, orgID)

	assert.NoError(t, err)
	assert.Equal(t, 2, result.Proposal.Version)
	// повторная генерация не трогает уже закрытый бриф
	assert.Empty(t, f.opportunities.briefStatuses[opp.ID])
}

func TestProposalService_DraftFailureLeavesNoTrace(t *testing.T) {
	f := newProposalFixture()
	orgID := uuid.New()
	opp := f.completedBrief(orgID, 2)

	f.drafter.On("DraftProposal", mock.Anything, mock.Anything).
		Return(nil, errors.New("ai: пустой ответ модели"))

	result, err := f.svc.GenerateProposal(context.Background(), opp.ID, orgID)

	assert.NoError(t, err)
	assert.Equal(t, GenerateOutcomeDraftFailed, result.Outcome)
	assert.Nil(t, result.Proposal)

	// ни версии, ни смены статуса брифа после неудачной генерации
	f.proposals.AssertNotCalled(t, "CreateNextVersion", mock.Anything, mock.Anything)
	assert.Empty(t, f.opportunities.briefStatuses[opp.ID])
	assert.Empty(t, f.notifier.events)
}

func TestProposalService_VersionConflictRetriedOnce(t *testing.T) {
	f := newProposalFixture()
	orgID := uuid.New()
	opp := f.completedBrief(orgID, 1)

	f.drafter.On("DraftProposal", mock.Anything, mock.Anything).Return(validDraft(), nil)
	f.proposals.On("CreateNextVersion", mock.Anything, mock.Anything).
		Return(repository.ErrProposalVersionConflict).Once()
	f.proposals.On("CreateNextVersion", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			proposal := args.Get(1).(*models.Proposal)
			proposal.ID = uuid.New()
			proposal.Version = 3
		}).
		Return(nil).Once()

	result, err := f.svc.GenerateProposal(context.Background(), opp.ID, orgID)

	assert.NoError(t, err)
	assert.Equal(t, GenerateOutcomeGenerated, result.Outcome)
	assert.Equal(t, 3, result.Proposal.Version)
	f.proposals.AssertExpectations(t)
}

func TestProposalService_SecondConflictSurfaces(t *testing.T) {
	f := newProposalFixture()
	orgID := uuid.New()
	opp := f.completedBrief(orgID, 1)

	f.drafter.On("DraftProposal", mock.Anything, mock.Anything).Return(validDraft(), nil)
	f.proposals.On("CreateNextVersion", mock.Anything, mock.Anything).
		Return(repository.ErrProposalVersionConflict).Twice()

	_, err := f.svc.GenerateProposal(context.Background(), opp.ID, orgID)

	assert.ErrorIs(t, err, repository.ErrProposalVersionConflict)
	assert.True(t, apperror.IsConflict(err), "наружу должен уходить конфликт, а не внутренняя ошибка")
	f.proposals.AssertNumberOfCalls(t, "CreateNextVersion", 2)
}

func TestProposalService_UpdateStatusValidatesEnum(t *testing.T) {
	f := newProposalFixture()

	_, err := f.svc.UpdateProposalStatus(context.Background(), uuid.New(), uuid.New(), "ARCHIVED")
	assert.Error(t, err)
	f.proposals.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}
