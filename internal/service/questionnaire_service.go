package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/agency-crm-backend/internal/logger"
	"github.com/ignatzorin/agency-crm-backend/internal/models"
	"github.com/ignatzorin/agency-crm-backend/internal/pkg/apperror"
	"github.com/ignatzorin/agency-crm-backend/internal/validation"
)

// Mailer описывает отправку письма контакту.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// ContactBatchReader описывает чтение контактов пакетом.
type ContactBatchReader interface {
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Contact, error)
}

// Notifier описывает рассылку событий организации (websocket).
type Notifier interface {
	Notify(organizationID uuid.UUID, event string, payload any)
}

// QuestionnaireItem — вопрос анкеты со ссылкой на форму ответа
// именно на этот вопрос.
type QuestionnaireItem struct {
	Task models.Task `json:"task"`
	Link string      `json:"link"`
}

// ContactBatch группирует незакрытые вопросы одного контакта.
type ContactBatch struct {
	Contact models.Contact      `json:"contact"`
	Items   []QuestionnaireItem `json:"items"`
	Link    string              `json:"link"`
}

// SendResult подводит итог рассылки анкеты.
// Ошибка по одному контакту не влияет на остальных.
type SendResult struct {
	Sent           int                  `json:"sent"`
	Failed         int                  `json:"failed"`
	FailureReasons map[uuid.UUID]string `json:"failure_reasons,omitempty"`
}

// QuestionnaireService собирает анкеты из вопросов, назначенных контактам,
// и рассылает их по email.
type QuestionnaireService struct {
	tasks           TaskRepository
	opportunities   OpportunityRepository
	contacts        ContactBatchReader
	mailer          Mailer
	notifier        Notifier
	frontendBaseURL string
	now             func() time.Time
}

// NewQuestionnaireService создаёт сервис анкет.
func NewQuestionnaireService(tasks TaskRepository, opportunities OpportunityRepository, contacts ContactBatchReader, mailer Mailer, notifier Notifier, frontendBaseURL string) *QuestionnaireService {
	return &QuestionnaireService{
		tasks:           tasks,
		opportunities:   opportunities,
		contacts:        contacts,
		mailer:          mailer,
		notifier:        notifier,
		frontendBaseURL: frontendBaseURL,
		now:             time.Now,
	}
}

// BuildQuestionnaire разбивает незакрытые вопросы сделки на пакеты по контактам.
// Вопросы без контакта (не назначенные или назначенные сотруднику) в анкету
// не попадают. Внутри пакета сохраняется порядок sort_order, created_at.
// contactIDs == nil означает «все контакты с незакрытыми вопросами».
func (s *QuestionnaireService) BuildQuestionnaire(ctx context.Context, opportunityID, organizationID uuid.UUID, contactIDs []uuid.UUID) ([]ContactBatch, error) {
	opp, err := s.opportunities.GetByID(ctx, opportunityID)
	if err != nil {
		return nil, err
	}
	if opp.OrganizationID != organizationID {
		return nil, apperror.ErrOpportunityNotFound
	}

	outstanding, err := s.tasks.ListOutstandingByOpportunity(ctx, opportunityID)
	if err != nil {
		return nil, err
	}

	var wanted map[uuid.UUID]bool
	if contactIDs != nil {
		wanted = make(map[uuid.UUID]bool, len(contactIDs))
		for _, id := range contactIDs {
			wanted[id] = true
		}
	}

	byContact := make(map[uuid.UUID][]models.Task)
	order := make([]uuid.UUID, 0)
	for _, task := range outstanding {
		if task.ContactID == nil {
			continue
		}
		id := *task.ContactID
		if wanted != nil && !wanted[id] {
			continue
		}
		if _, seen := byContact[id]; !seen {
			order = append(order, id)
		}
		byContact[id] = append(byContact[id], task)
	}

	if len(order) == 0 {
		return []ContactBatch{}, nil
	}

	contacts, err := s.contacts.GetByIDs(ctx, order)
	if err != nil {
		return nil, err
	}
	contactByID := make(map[uuid.UUID]models.Contact, len(contacts))
	for _, c := range contacts {
		contactByID[c.ID] = c
	}

	batches := make([]ContactBatch, 0, len(order))
	for _, id := range order {
		contact, ok := contactByID[id]
		if !ok || contact.OrganizationID != organizationID {
			// вопрос ссылается на удалённый или чужой контакт, пропускаем
			logger.Log.WithFields(logrus.Fields{
				"contact_id":     id,
				"opportunity_id": opportunityID,
			}).Warn("Контакт анкеты недоступен, пакет пропущен")
			continue
		}
		tasks := byContact[id]
		items := make([]QuestionnaireItem, 0, len(tasks))
		for _, task := range tasks {
			items = append(items, QuestionnaireItem{
				Task: task,
				Link: s.questionLink(opportunityID, id, task.ID),
			})
		}
		batches = append(batches, ContactBatch{
			Contact: contact,
			Items:   items,
			Link:    s.questionnaireLink(opportunityID, id),
		})
	}

	return batches, nil
}

func (s *QuestionnaireService) questionnaireLink(opportunityID, contactID uuid.UUID) string {
	return fmt.Sprintf("%s/questionnaire/%s?contact=%s", strings.TrimRight(s.frontendBaseURL, "/"), opportunityID, contactID)
}

func (s *QuestionnaireService) questionLink(opportunityID, contactID, taskID uuid.UUID) string {
	return fmt.Sprintf("%s&task=%s", s.questionnaireLink(opportunityID, contactID), taskID)
}

// SendQuestionnaire рассылает пакеты вопросов контактам параллельно.
// Явно переданный пустой список контактов считается ошибкой запроса;
// nil означает «все контакты с незакрытыми вопросами».
// customBodies позволяет заменить сгенерированный текст письма для
// отдельных контактов.
// email_sent_at проставляется только после подтверждённой отправки письма.
func (s *QuestionnaireService) SendQuestionnaire(ctx context.Context, opportunityID, organizationID uuid.UUID, contactIDs []uuid.UUID, customBodies map[uuid.UUID]string) (*SendResult, error) {
	if contactIDs != nil && len(contactIDs) == 0 {
		return nil, apperror.New(apperror.ErrCodePrecondition, "список контактов не может быть пустым")
	}
	for contactID, body := range customBodies {
		if err := validation.ValidateCustomBody(body); err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeValidation, fmt.Sprintf("текст письма для контакта %s: %s", contactID, err))
		}
	}

	batches, err := s.BuildQuestionnaire(ctx, opportunityID, organizationID, contactIDs)
	if err != nil {
		return nil, err
	}

	// Повторная рассылка не должна дублировать уже доставленные письма:
	// в отправку попадают только вопросы без отметки email_sent_at.
	// Предпросмотр (BuildQuestionnaire) показывает пакет целиком.
	batches = dropNotified(batches)

	result := &SendResult{FailureReasons: make(map[uuid.UUID]string)}
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, batch := range batches {
		wg.Add(1)
		go func(batch ContactBatch) {
			defer wg.Done()

			sendErr := s.sendBatch(ctx, batch, customBodies[batch.Contact.ID])

			mu.Lock()
			defer mu.Unlock()
			if sendErr != nil {
				result.Failed++
				result.FailureReasons[batch.Contact.ID] = sendErr.Error()
				return
			}
			result.Sent++
		}(batch)
	}

	wg.Wait()

	if s.notifier != nil && result.Sent > 0 {
		s.notifier.Notify(organizationID, "questionnaire.sent", map[string]any{
			"opportunity_id": opportunityID,
			"sent":           result.Sent,
			"failed":         result.Failed,
		})
	}

	return result, nil
}

// dropNotified убирает из пакетов вопросы, по которым письмо уже
// подтверждённо доставлено. Пакет без оставшихся вопросов исчезает.
func dropNotified(batches []ContactBatch) []ContactBatch {
	out := make([]ContactBatch, 0, len(batches))
	for _, batch := range batches {
		items := make([]QuestionnaireItem, 0, len(batch.Items))
		for _, item := range batch.Items {
			if item.Task.EmailSentAt == nil {
				items = append(items, item)
			}
		}
		if len(items) == 0 {
			continue
		}
		batch.Items = items
		out = append(out, batch)
	}
	return out
}

// sendBatch отправляет письмо одному контакту и помечает его вопросы.
// Непустой customBody заменяет сгенерированный текст письма.
func (s *QuestionnaireService) sendBatch(ctx context.Context, batch ContactBatch, customBody string) error {
	subject := "Уточняющие вопросы по вашему проекту"
	body := customBody
	if body == "" {
		body = s.composeBody(batch)
	}

	if err := s.mailer.Send(ctx, batch.Contact.Email, subject, body); err != nil {
		logger.Log.WithFields(logrus.Fields{
			"contact_id": batch.Contact.ID,
			"email":      batch.Contact.Email,
			"error":      err.Error(),
		}).Error("Не удалось отправить анкету контакту")
		return fmt.Errorf("отправка письма %s: %w", batch.Contact.Email, err)
	}

	taskIDs := make([]uuid.UUID, 0, len(batch.Items))
	for _, item := range batch.Items {
		taskIDs = append(taskIDs, item.Task.ID)
	}

	if err := s.tasks.MarkEmailSent(ctx, taskIDs, s.now()); err != nil {
		// письмо ушло, но отметка не записана: повторная рассылка безопасна,
		// поэтому возвращаем ошибку, чтобы менеджер её увидел
		logger.Log.WithFields(logrus.Fields{
			"contact_id": batch.Contact.ID,
			"error":      err.Error(),
		}).Error("Не удалось пометить вопросы как отправленные")
		return fmt.Errorf("отметка отправки: %w", err)
	}

	return nil
}

func (s *QuestionnaireService) composeBody(batch ContactBatch) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Здравствуйте, %s!\n\n", batch.Contact.Name)
	b.WriteString("Пожалуйста, ответьте на несколько вопросов по вашему проекту:\n\n")
	for i, item := range batch.Items {
		fmt.Fprintf(&b, "%d. %s\n   Ответить: %s\n", i+1, item.Task.Question, item.Link)
	}
	fmt.Fprintf(&b, "\nВся анкета: %s\n", batch.Link)
	return b.String()
}
