package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/agency-crm-backend/internal/models"
)

// ErrTaskNotFound возвращается, когда вопрос не найден.
var ErrTaskNotFound = errors.New("task not found")

// TaskRepository отвечает за работу с уточняющими вопросами.
type TaskRepository struct {
	db *sqlx.DB
}

// NewTaskRepository создаёт экземпляр репозитория.
func NewTaskRepository(db *sqlx.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create создаёт один вопрос.
func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	query := `
		INSERT INTO tasks (opportunity_id, title, question, description, answer, answered_at, status, contact_id, user_id, sort_order, email_sent_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx,
		query,
		task.OpportunityID,
		task.Title,
		task.Question,
		task.Description,
		task.Answer,
		task.AnsweredAt,
		task.Status,
		task.ContactID,
		task.UserID,
		task.SortOrder,
		task.EmailSentAt,
	).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt); err != nil {
		return fmt.Errorf("task repository: create %w", err)
	}

	return nil
}

// BulkCreate создаёт вопросы пакетом в одной транзакции.
func (r *TaskRepository) BulkCreate(ctx context.Context, tasks []*models.Task) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("task repository: bulk create begin %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO tasks (opportunity_id, title, question, description, status, contact_id, user_id, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	for _, task := range tasks {
		if err := tx.QueryRowxContext(
			ctx,
			query,
			task.OpportunityID,
			task.Title,
			task.Question,
			task.Description,
			task.Status,
			task.ContactID,
			task.UserID,
			task.SortOrder,
		).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt); err != nil {
			return fmt.Errorf("task repository: bulk create %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("task repository: bulk create commit %w", err)
	}

	return nil
}

// GetByID возвращает вопрос по идентификатору.
func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	var task models.Task
	if err := r.db.GetContext(ctx, &task, `SELECT * FROM tasks WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("task repository: get by id %w", err)
	}

	return &task, nil
}

// ListByOpportunity возвращает все вопросы сделки в стабильном порядке:
// sort_order по возрастанию, затем время создания.
func (r *TaskRepository) ListByOpportunity(ctx context.Context, opportunityID uuid.UUID) ([]models.Task, error) {
	var tasks []models.Task
	query := `
		SELECT * FROM tasks
		WHERE opportunity_id = $1
		ORDER BY sort_order ASC, created_at ASC
	`
	if err := r.db.SelectContext(ctx, &tasks, query, opportunityID); err != nil {
		return nil, fmt.Errorf("task repository: list by opportunity %w", err)
	}

	return tasks, nil
}

// ListOutstandingByOpportunity возвращает вопросы сделки со статусом, отличным от DONE.
func (r *TaskRepository) ListOutstandingByOpportunity(ctx context.Context, opportunityID uuid.UUID) ([]models.Task, error) {
	var tasks []models.Task
	query := `
		SELECT * FROM tasks
		WHERE opportunity_id = $1 AND status <> $2
		ORDER BY sort_order ASC, created_at ASC
	`
	if err := r.db.SelectContext(ctx, &tasks, query, opportunityID, models.TaskStatusDone); err != nil {
		return nil, fmt.Errorf("task repository: list outstanding %w", err)
	}

	return tasks, nil
}

// Update сохраняет изменённый вопрос.
func (r *TaskRepository) Update(ctx context.Context, task *models.Task) error {
	query := `
		UPDATE tasks
		SET title = $1, question = $2, description = $3, answer = $4, answered_at = $5,
		    status = $6, contact_id = $7, user_id = $8, sort_order = $9, updated_at = NOW()
		WHERE id = $10
		RETURNING updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx,
		query,
		task.Title,
		task.Question,
		task.Description,
		task.Answer,
		task.AnsweredAt,
		task.Status,
		task.ContactID,
		task.UserID,
		task.SortOrder,
		task.ID,
	).Scan(&task.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("task repository: update %w", err)
	}

	return nil
}

// MarkEmailSent отмечает вопросы как отправленные контакту.
// Вызывается строго после подтверждения отправки письма.
func (r *TaskRepository) MarkEmailSent(ctx context.Context, taskIDs []uuid.UUID, sentAt time.Time) error {
	if len(taskIDs) == 0 {
		return nil
	}

	query, args, err := sqlx.In(`UPDATE tasks SET email_sent_at = ?, updated_at = NOW() WHERE id IN (?)`, sentAt, taskIDs)
	if err != nil {
		return fmt.Errorf("task repository: mark email sent build query %w", err)
	}

	query = r.db.Rebind(query)
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("task repository: mark email sent %w", err)
	}

	return nil
}

// Delete удаляет вопрос.
func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("task repository: delete %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("task repository: delete rows affected %w", err)
	}

	if rowsAffected == 0 {
		return ErrTaskNotFound
	}

	return nil
}
