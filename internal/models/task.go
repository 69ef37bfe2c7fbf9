package models

import (
	"time"

	"github.com/google/uuid"
)

// Task описывает уточняющий вопрос по сделке.
// Вопрос может быть назначен контакту клиента или сотруднику агентства,
// но никогда обоим сразу.
type Task struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	OpportunityID uuid.UUID  `db:"opportunity_id" json:"opportunity_id"`
	Title         string     `db:"title" json:"title"`
	Question      string     `db:"question" json:"question"`
	Description   *string    `db:"description" json:"description,omitempty"`
	Answer        *string    `db:"answer" json:"answer,omitempty"`
	AnsweredAt    *time.Time `db:"answered_at" json:"answered_at,omitempty"`
	Status        string     `db:"status" json:"status"`
	ContactID     *uuid.UUID `db:"contact_id" json:"contact_id,omitempty"`
	UserID        *uuid.UUID `db:"user_id" json:"user_id,omitempty"`
	SortOrder     int        `db:"sort_order" json:"sort_order"`
	EmailSentAt   *time.Time `db:"email_sent_at" json:"email_sent_at,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// SetAnswer записывает ответ на вопрос. answered_at проставляется один раз,
// при первом непустом ответе, и далее не сбрасывается.
func (t *Task) SetAnswer(answer string, now time.Time) {
	t.Answer = &answer
	if t.AnsweredAt == nil && answer != "" {
		t.AnsweredAt = &now
	}
}

// TaskSpec описывает один вопрос при массовом создании.
type TaskSpec struct {
	Title       string  `json:"title" binding:"required"`
	Question    string  `json:"question" binding:"required"`
	Description *string `json:"description,omitempty"`
	AssigneeRef string  `json:"assignee_ref,omitempty"`
	SortOrder   *int    `json:"sort_order,omitempty"`
}
