package models

import (
	"time"

	"github.com/google/uuid"
)

// Document описывает файл, прикреплённый к сделке (бриф, договор, референс).
type Document struct {
	ID            uuid.UUID `db:"id" json:"id"`
	OpportunityID uuid.UUID `db:"opportunity_id" json:"opportunity_id"`
	UploadedBy    uuid.UUID `db:"uploaded_by" json:"uploaded_by"`
	FileName      string    `db:"file_name" json:"file_name"`
	FilePath      string    `db:"file_path" json:"file_path"`
	MimeType      string    `db:"mime_type" json:"mime_type"`
	SizeBytes     int64     `db:"size_bytes" json:"size_bytes"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// Notification хранит событие для сотрудника (дублирует push по WebSocket).
type Notification struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Payload   []byte    `db:"payload" json:"payload"`
	IsRead    bool      `db:"is_read" json:"is_read"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
