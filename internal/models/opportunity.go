package models

import (
	"time"

	"github.com/google/uuid"
)

// Opportunity описывает сделку в воронке продаж агентства.
type Opportunity struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	OrganizationID uuid.UUID  `db:"organization_id" json:"organization_id"`
	CompanyID      uuid.UUID  `db:"company_id" json:"company_id"`
	Title          string     `db:"title" json:"title"`
	Status         string     `db:"status" json:"status"`
	BriefStatus    string     `db:"brief_status" json:"brief_status"`
	ValueEstimate  *float64   `db:"value_estimate" json:"value_estimate,omitempty"`
	ExpectedClose  *time.Time `db:"expected_close" json:"expected_close,omitempty"`
	Outcome        *string    `db:"outcome" json:"outcome,omitempty"`
	ClosedAt       *time.Time `db:"closed_at" json:"closed_at,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// NextClosedAt вычисляет новое значение closed_at при смене этапа.
// Инвариант: closed_at заполнен тогда и только тогда, когда этап WON или LOST.
// Функция чистая: повторный перевод в закрытый этап не перезаписывает дату.
func NextClosedAt(oldClosedAt *time.Time, newStatus string, now time.Time) *time.Time {
	_, closed := ClosedOpportunityStatuses[newStatus]

	if closed && oldClosedAt == nil {
		return &now
	}
	if !closed && oldClosedAt != nil {
		return nil
	}
	return oldClosedAt
}
