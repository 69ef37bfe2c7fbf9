package service

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/agency-crm-backend/internal/models"
	"github.com/ignatzorin/agency-crm-backend/internal/pkg/apperror"
)

// mockTaskRepo реализует TaskRepository в памяти со стабильным порядком.
type mockTaskRepo struct {
	tasks   map[uuid.UUID]*models.Task
	counter int
}

func newMockTaskRepo() *mockTaskRepo {
	return &mockTaskRepo{tasks: make(map[uuid.UUID]*models.Task)}
}

func (m *mockTaskRepo) insert(task *models.Task) {
	task.ID = uuid.New()
	m.counter++
	task.CreatedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(m.counter) * time.Second)
	task.UpdatedAt = task.CreatedAt
	copied := *task
	m.tasks[task.ID] = &copied
}

func (m *mockTaskRepo) Create(ctx context.Context, task *models.Task) error {
	m.insert(task)
	return nil
}

func (m *mockTaskRepo) BulkCreate(ctx context.Context, tasks []*models.Task) error {
	for _, task := range tasks {
		m.insert(task)
	}
	return nil
}

func (m *mockTaskRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	if task, ok := m.tasks[id]; ok {
		copied := *task
		return &copied, nil
	}
	return nil, apperror.ErrTaskNotFound
}

func (m *mockTaskRepo) listSorted(opportunityID uuid.UUID, onlyOutstanding bool) []models.Task {
	var out []models.Task
	for _, task := range m.tasks {
		if task.OpportunityID != opportunityID {
			continue
		}
		if onlyOutstanding && task.Status == models.TaskStatusDone {
			continue
		}
		out = append(out, *task)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (m *mockTaskRepo) ListByOpportunity(ctx context.Context, opportunityID uuid.UUID) ([]models.Task, error) {
	return m.listSorted(opportunityID, false), nil
}

func (m *mockTaskRepo) ListOutstandingByOpportunity(ctx context.Context, opportunityID uuid.UUID) ([]models.Task, error) {
	return m.listSorted(opportunityID, true), nil
}

func (m *mockTaskRepo) Update(ctx context.Context, task *models.Task) error {
	if _, ok := m.tasks[task.ID]; !ok {
		return apperror.ErrTaskNotFound
	}
	copied := *task
	m.tasks[task.ID] = &copied
	return nil
}

func (m *mockTaskRepo) MarkEmailSent(ctx context.Context, taskIDs []uuid.UUID, sentAt time.Time) error {
	for _, id := range taskIDs {
		if task, ok := m.tasks[id]; ok {
			at := sentAt
			task.EmailSentAt = &at
		}
	}
	return nil
}

func (m *mockTaskRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(m.tasks, id)
	return nil
}

// mockQuestionGenerator подменяет AI генерацию вопросов.
type mockQuestionGenerator struct {
	specs []models.TaskSpec
	err   error
}

func (m *mockQuestionGenerator) GenerateQuestions(ctx context.Context, opportunityTitle, companyName string, documents []string) ([]models.TaskSpec, error) {
	return m.specs, m.err
}

func newTaskServiceFixture() (*TaskService, *mockTaskRepo, *mockOpportunityRepo, *mockContactReader, *mockUserReader) {
	tasks := newMockTaskRepo()
	opportunities := newMockOpportunityRepo()
	contacts := newMockContactReader()
	users := newMockUserReader()
	resolver := NewAssigneeResolver(contacts, users)
	svc := NewTaskService(tasks, opportunities, opportunities, resolver, &mockQuestionGenerator{})
	return svc, tasks, opportunities, contacts, users
}

func TestTaskService_BulkCreateRejectsEmptyList(t *testing.T) {
	svc, _, opportunities, _, _ := newTaskServiceFixture()

	orgID := uuid.New()
	opp := newTestOpportunity(opportunities, orgID, models.OpportunityStatusLead)

	_, err := svc.BulkCreateTasks(context.Background(), opp.ID, orgID, nil)
	if !apperror.IsValidation(err) {
		t.Fatalf("пустой пакет должен давать ошибку валидации, получили %v", err)
	}
}

func TestTaskService_BulkCreateResolvesAssignees(t *testing.T) {
	svc, _, opportunities, contacts, users := newTaskServiceFixture()

	orgID := uuid.New()
	opp := newTestOpportunity(opportunities, orgID, models.OpportunityStatusQualified)
	contact := contacts.add(orgID)
	user := users.add(orgID, models.UserRoleManager)

	specs := []models.TaskSpec{
		{Title: "Аудитория", Question: "Кто ваша целевая аудитория?", AssigneeRef: contact.ID.String()},
		{Title: "Сроки", Question: "Какие сроки запуска критичны?", AssigneeRef: UserTokenPrefix + user.ID.String()},
		{Title: "Бюджет", Question: "Какой бюджет заложен на проект?", AssigneeRef: uuid.New().String()},
		{Title: "Конкуренты", Question: "Кого считаете конкурентами?"},
	}

	created, err := svc.BulkCreateTasks(context.Background(), opp.ID, orgID, specs)
	if err != nil {
		t.Fatalf("пакетное создание вернуло ошибку: %v", err)
	}
	if len(created) != 4 {
		t.Fatalf("ожидали 4 вопроса, получили %d", len(created))
	}

	first := created[0]
	if first.ContactID == nil || *first.ContactID != contact.ID || first.UserID != nil {
		t.Fatalf("первый вопрос должен быть назначен контакту: %+v", first)
	}

	second := created[1]
	if second.UserID == nil || *second.UserID != user.ID || second.ContactID != nil {
		t.Fatalf("второй вопрос должен быть назначен сотруднику: %+v", second)
	}

	// несуществующий контакт деградирует до «не назначен», пакет не падает
	third := created[2]
	if third.ContactID != nil || third.UserID != nil {
		t.Fatalf("нерезолвящаяся ссылка должна давать неназначенный вопрос: %+v", third)
	}

	for i, task := range created {
		if task.SortOrder != i {
			t.Fatalf("sort_order по умолчанию должен совпадать с позицией: вопрос %d имеет %d", i, task.SortOrder)
		}
		if task.Status != models.TaskStatusTodo {
			t.Fatalf("новый вопрос должен быть в TODO, получили %s", task.Status)
		}
	}
}

func TestTaskService_GenerateTasksMovesBriefStatus(t *testing.T) {
	tasks := newMockTaskRepo()
	opportunities := newMockOpportunityRepo()
	resolver := NewAssigneeResolver(newMockContactReader(), newMockUserReader())
	generator := &mockQuestionGenerator{specs: []models.TaskSpec{
		{Title: "Цели", Question: "Каких бизнес-целей хотите достичь?"},
		{Title: "Интеграции", Question: "С какими системами нужна интеграция?"},
	}}
	svc := NewTaskService(tasks, opportunities, opportunities, resolver, generator)

	orgID := uuid.New()
	opp := newTestOpportunity(opportunities, orgID, models.OpportunityStatusQualified)

	created, err := svc.GenerateTasks(context.Background(), opp.ID, orgID, "ООО Ромашка", nil)
	if err != nil {
		t.Fatalf("генерация вопросов вернула ошибку: %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("ожидали 2 вопроса, получили %d", len(created))
	}

	if got := opportunities.briefStatuses[opp.ID]; got != models.BriefStatusQuestionsGenerated {
		t.Fatalf("статус брифа должен стать QUESTIONS_GENERATED, получили %q", got)
	}
}

func TestTaskService_UpdateTaskReassignsContactToUser(t *testing.T) {
	svc, tasks, opportunities, contacts, users := newTaskServiceFixture()

	orgID := uuid.New()
	opp := newTestOpportunity(opportunities, orgID, models.OpportunityStatusQualified)
	contact := contacts.add(orgID)
	user := users.add(orgID, models.UserRoleManager)

	task := &models.Task{
		OpportunityID: opp.ID,
		Title:         "Контент",
		Question:      "Кто предоставит контент для сайта?",
		Status:        models.TaskStatusTodo,
		ContactID:     &contact.ID,
	}
	tasks.insert(task)

	ref := UserTokenPrefix + user.ID.String()
	updated, err := svc.UpdateTask(context.Background(), opp.ID, orgID, task.ID, TaskPatch{AssigneeRef: &ref})
	if err != nil {
		t.Fatalf("обновление вопроса вернуло ошибку: %v", err)
	}

	if updated.UserID == nil || *updated.UserID != user.ID {
		t.Fatalf("вопрос должен быть переназначен сотруднику: %+v", updated)
	}
	if updated.ContactID != nil {
		t.Fatalf("при переназначении сотруднику contact_id должен очищаться: %+v", updated)
	}
}

func TestTaskService_UpdateTaskAnswerAndStatus(t *testing.T) {
	svc, tasks, opportunities, _, _ := newTaskServiceFixture()

	orgID := uuid.New()
	opp := newTestOpportunity(opportunities, orgID, models.OpportunityStatusQualified)

	task := &models.Task{
		OpportunityID: opp.ID,
		Title:         "Бюджет",
		Question:      "Какой бюджет заложен?",
		Status:        models.TaskStatusTodo,
	}
	tasks.insert(task)

	answer := "Около 1,5 млн рублей"
	status := models.TaskStatusDone
	updated, err := svc.UpdateTask(context.Background(), opp.ID, orgID, task.ID, TaskPatch{Answer: &answer, Status: &status})
	if err != nil {
		t.Fatalf("обновление вопроса вернуло ошибку: %v", err)
	}

	if updated.Answer == nil || *updated.Answer != answer {
		t.Fatalf("ответ должен сохраниться: %+v", updated)
	}
	if updated.AnsweredAt == nil {
		t.Fatalf("answered_at должен проставиться при первом ответе")
	}
	if updated.Status != models.TaskStatusDone {
		t.Fatalf("статус должен смениться на DONE, получили %s", updated.Status)
	}

	bad := "ARCHIVED"
	_, err = svc.UpdateTask(context.Background(), opp.ID, orgID, task.ID, TaskPatch{Status: &bad})
	if !apperror.IsValidation(err) {
		t.Fatalf("неизвестный статус должен давать ошибку валидации, получили %v", err)
	}
}

func TestTaskService_UpdateTaskScopedToOpportunity(t *testing.T) {
	svc, tasks, opportunities, _, _ := newTaskServiceFixture()

	orgID := uuid.New()
	opp := newTestOpportunity(opportunities, orgID, models.OpportunityStatusQualified)
	other := newTestOpportunity(opportunities, orgID, models.OpportunityStatusQualified)

	task := &models.Task{
		OpportunityID: other.ID,
		Title:         "Чужой вопрос",
		Question:      "Вопрос другой сделки",
		Status:        models.TaskStatusTodo,
	}
	tasks.insert(task)

	title := "Новый заголовок"
	_, err := svc.UpdateTask(context.Background(), opp.ID, orgID, task.ID, TaskPatch{Title: &title})
	if !apperror.IsNotFound(err) {
		t.Fatalf("вопрос чужой сделки должен давать NOT_FOUND, получили %v", err)
	}
}
