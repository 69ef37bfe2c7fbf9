package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/agency-crm-backend/internal/models"
	"github.com/ignatzorin/agency-crm-backend/internal/pkg/apperror"
	"github.com/ignatzorin/agency-crm-backend/internal/validation"
)

// TaskRepository описывает взаимодействие сервиса с хранилищем вопросов.
type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	BulkCreate(ctx context.Context, tasks []*models.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error)
	ListByOpportunity(ctx context.Context, opportunityID uuid.UUID) ([]models.Task, error)
	ListOutstandingByOpportunity(ctx context.Context, opportunityID uuid.UUID) ([]models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	MarkEmailSent(ctx context.Context, taskIDs []uuid.UUID, sentAt time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// QuestionGenerator описывает AI генерацию уточняющих вопросов по брифу.
type QuestionGenerator interface {
	GenerateQuestions(ctx context.Context, opportunityTitle, companyName string, documents []string) ([]models.TaskSpec, error)
}

// TaskService содержит бизнес-логику уточняющих вопросов.
type TaskService struct {
	tasks         TaskRepository
	opportunities OpportunityRepository
	briefs        BriefStatusWriter
	resolver      *AssigneeResolver
	questions     QuestionGenerator
	now           func() time.Time
}

// BriefStatusWriter описывает обновление статуса брифа сделки.
type BriefStatusWriter interface {
	UpdateBriefStatus(ctx context.Context, id uuid.UUID, briefStatus string) error
}

// NewTaskService создаёт сервис вопросов.
func NewTaskService(tasks TaskRepository, opportunities OpportunityRepository, briefs BriefStatusWriter, resolver *AssigneeResolver, questions QuestionGenerator) *TaskService {
	return &TaskService{
		tasks:         tasks,
		opportunities: opportunities,
		briefs:        briefs,
		resolver:      resolver,
		questions:     questions,
		now:           time.Now,
	}
}

// getScopedOpportunity возвращает сделку в рамках организации.
func (s *TaskService) getScopedOpportunity(ctx context.Context, opportunityID, organizationID uuid.UUID) (*models.Opportunity, error) {
	opp, err := s.opportunities.GetByID(ctx, opportunityID)
	if err != nil {
		return nil, err
	}

	if opp.OrganizationID != organizationID {
		return nil, apperror.ErrOpportunityNotFound
	}

	return opp, nil
}

// BulkCreateTasks создаёт вопросы пакетом.
// Ссылки назначения резолвятся по одной; нерезолвящиеся деградируют
// до «не назначен» без прерывания пакета.
func (s *TaskService) BulkCreateTasks(ctx context.Context, opportunityID, organizationID uuid.UUID, specs []models.TaskSpec) ([]*models.Task, error) {
	if len(specs) == 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "список вопросов не может быть пустым")
	}
	if len(specs) > validation.MaxBulkTasks {
		return nil, apperror.New(apperror.ErrCodeValidation, fmt.Sprintf("за один раз можно создать не более %d вопросов", validation.MaxBulkTasks))
	}

	opp, err := s.getScopedOpportunity(ctx, opportunityID, organizationID)
	if err != nil {
		return nil, err
	}

	tasks := make([]*models.Task, 0, len(specs))
	for i, spec := range specs {
		if err := validation.ValidateTaskTitle(spec.Title); err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
		}
		if err := validation.ValidateTaskQuestion(spec.Question); err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
		}

		task := &models.Task{
			OpportunityID: opp.ID,
			Title:         spec.Title,
			Question:      spec.Question,
			Description:   spec.Description,
			Status:        models.TaskStatusTodo,
			SortOrder:     i,
		}
		if spec.SortOrder != nil {
			task.SortOrder = *spec.SortOrder
		}

		assignee := s.resolver.Resolve(ctx, spec.AssigneeRef, organizationID)
		assignee.ApplyTo(task)

		tasks = append(tasks, task)
	}

	if err := s.tasks.BulkCreate(ctx, tasks); err != nil {
		return nil, err
	}

	return tasks, nil
}

// GenerateTasks просит AI сформировать уточняющие вопросы по сделке
// и создаёт их пакетом. Статус брифа переводится в QUESTIONS_GENERATED.
func (s *TaskService) GenerateTasks(ctx context.Context, opportunityID, organizationID uuid.UUID, companyName string, documents []string) ([]*models.Task, error) {
	opp, err := s.getScopedOpportunity(ctx, opportunityID, organizationID)
	if err != nil {
		return nil, err
	}

	specs, err := s.questions.GenerateQuestions(ctx, opp.Title, companyName, documents)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeExternalService, "не удалось сгенерировать вопросы")
	}

	if len(specs) == 0 {
		return nil, apperror.New(apperror.ErrCodeExternalService, "AI вернул пустой список вопросов")
	}

	created, err := s.BulkCreateTasks(ctx, opportunityID, organizationID, specs)
	if err != nil {
		return nil, err
	}

	if err := s.briefs.UpdateBriefStatus(ctx, opp.ID, models.BriefStatusQuestionsGenerated); err != nil {
		return nil, err
	}

	return created, nil
}

// ListTasks возвращает вопросы сделки в стабильном порядке.
func (s *TaskService) ListTasks(ctx context.Context, opportunityID, organizationID uuid.UUID) ([]models.Task, error) {
	if _, err := s.getScopedOpportunity(ctx, opportunityID, organizationID); err != nil {
		return nil, err
	}

	return s.tasks.ListByOpportunity(ctx, opportunityID)
}

// TaskPatch содержит изменяемые поля вопроса. nil означает «без изменений»;
// для назначения пустая строка означает «снять исполнителя».
type TaskPatch struct {
	Title       *string `json:"title,omitempty"`
	Question    *string `json:"question,omitempty"`
	Description *string `json:"description,omitempty"`
	Answer      *string `json:"answer,omitempty"`
	Status      *string `json:"status,omitempty"`
	AssigneeRef *string `json:"assignee_ref,omitempty"`
	SortOrder   *int    `json:"sort_order,omitempty"`
}

// UpdateTask применяет патч к вопросу.
// Назначение проходит через резолвер, поэтому contact_id/user_id
// взаимоисключительны по построению, а не по соглашению.
func (s *TaskService) UpdateTask(ctx context.Context, opportunityID, organizationID, taskID uuid.UUID, patch TaskPatch) (*models.Task, error) {
	if _, err := s.getScopedOpportunity(ctx, opportunityID, organizationID); err != nil {
		return nil, err
	}

	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if task.OpportunityID != opportunityID {
		return nil, apperror.ErrTaskNotFound
	}

	if patch.Title != nil {
		if err := validation.ValidateTaskTitle(*patch.Title); err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
		}
		task.Title = *patch.Title
	}

	if patch.Question != nil {
		if err := validation.ValidateTaskQuestion(*patch.Question); err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
		}
		task.Question = *patch.Question
	}

	if patch.Description != nil {
		task.Description = patch.Description
	}

	if patch.Answer != nil {
		if err := validation.ValidateTaskAnswer(patch.Answer); err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
		}
		task.SetAnswer(*patch.Answer, s.now())
	}

	if patch.Status != nil {
		if _, ok := models.ValidTaskStatuses[*patch.Status]; !ok {
			return nil, apperror.New(apperror.ErrCodeValidation, fmt.Sprintf("неизвестный статус вопроса: %s", *patch.Status))
		}
		task.Status = *patch.Status
	}

	if patch.SortOrder != nil {
		task.SortOrder = *patch.SortOrder
	}

	if patch.AssigneeRef != nil {
		assignee := s.resolver.Resolve(ctx, *patch.AssigneeRef, organizationID)
		assignee.ApplyTo(task)
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}

	return task, nil
}

// DeleteTask удаляет вопрос.
func (s *TaskService) DeleteTask(ctx context.Context, opportunityID, organizationID, taskID uuid.UUID) error {
	if _, err := s.getScopedOpportunity(ctx, opportunityID, organizationID); err != nil {
		return err
	}

	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return err
	}

	if task.OpportunityID != opportunityID {
		return apperror.ErrTaskNotFound
	}

	return s.tasks.Delete(ctx, taskID)
}
