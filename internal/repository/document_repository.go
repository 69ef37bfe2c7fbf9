package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/agency-crm-backend/internal/models"
)

// ErrDocumentNotFound возвращается, когда документ не найден.
var ErrDocumentNotFound = errors.New("document not found")

// DocumentRepository отвечает за метаданные приложенных к сделке файлов.
type DocumentRepository struct {
	db *sqlx.DB
}

// NewDocumentRepository создаёт экземпляр репозитория.
func NewDocumentRepository(db *sqlx.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Create сохраняет метаданные документа.
func (r *DocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	query := `
		INSERT INTO documents (opportunity_id, uploaded_by, file_name, file_path, mime_type, size_bytes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	if err := r.db.QueryRowxContext(
		ctx,
		query,
		doc.OpportunityID,
		doc.UploadedBy,
		doc.FileName,
		doc.FilePath,
		doc.MimeType,
		doc.SizeBytes,
	).Scan(&doc.ID, &doc.CreatedAt); err != nil {
		return fmt.Errorf("document repository: create %w", err)
	}

	return nil
}

// GetByID возвращает документ по идентификатору.
func (r *DocumentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	var doc models.Document
	if err := r.db.GetContext(ctx, &doc, `SELECT * FROM documents WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("document repository: get by id %w", err)
	}

	return &doc, nil
}

// ListByOpportunity возвращает документы сделки.
func (r *DocumentRepository) ListByOpportunity(ctx context.Context, opportunityID uuid.UUID) ([]models.Document, error) {
	var docs []models.Document
	query := `SELECT * FROM documents WHERE opportunity_id = $1 ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &docs, query, opportunityID); err != nil {
		return nil, fmt.Errorf("document repository: list by opportunity %w", err)
	}

	return docs, nil
}

// Delete удаляет метаданные документа.
func (r *DocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("document repository: delete %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("document repository: delete rows affected %w", err)
	}

	if rowsAffected == 0 {
		return ErrDocumentNotFound
	}

	return nil
}
