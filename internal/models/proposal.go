package models

import (
	"time"

	"github.com/google/uuid"
)

// Proposal представляет версионированное коммерческое предложение по сделке.
// Версии строго монотонны в рамках одной сделки и начинаются с 1.
type Proposal struct {
	ID            uuid.UUID `db:"id" json:"id"`
	OpportunityID uuid.UUID `db:"opportunity_id" json:"opportunity_id"`
	CompanyID     uuid.UUID `db:"company_id" json:"company_id"`
	Version       int       `db:"version" json:"version"`
	Status        string    `db:"status" json:"status"`
	Title         string    `db:"title" json:"title"`
	Content       string    `db:"content" json:"content"`
	Scope         string    `db:"scope" json:"scope"`
	Deliverables  string    `db:"deliverables" json:"deliverables"`
	Pricing       string    `db:"pricing" json:"pricing"`
	Timeline      string    `db:"timeline" json:"timeline"`
	Terms         string    `db:"terms" json:"terms"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}
