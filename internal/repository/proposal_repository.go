package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ignatzorin/agency-crm-backend/internal/models"
)

var (
	// ErrProposalNotFound возвращается, когда предложение не найдено.
	ErrProposalNotFound = errors.New("proposal not found")

	// ErrProposalVersionConflict возвращается при гонке за номер версии:
	// два конкурентных вызова прочитали один и тот же максимум и попытались
	// вставить одинаковую версию. Вызывающая сторона может повторить попытку.
	ErrProposalVersionConflict = errors.New("proposal version conflict")
)

// Код ошибки PostgreSQL unique_violation.
const pgUniqueViolation = "23505"

// ProposalRepository отвечает за работу с коммерческими предложениями.
type ProposalRepository struct {
	db *sqlx.DB
}

// NewProposalRepository создаёт экземпляр репозитория.
func NewProposalRepository(db *sqlx.DB) *ProposalRepository {
	return &ProposalRepository{db: db}
}

// CreateNextVersion вычисляет следующий номер версии и вставляет предложение
// в одной транзакции. Номер никогда не кэшируется: max(version) читается
// непосредственно перед вставкой. Уникальный индекс (opportunity_id, version)
// превращает гонку в ErrProposalVersionConflict.
func (r *ProposalRepository) CreateNextVersion(ctx context.Context, proposal *models.Proposal) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("proposal repository: create begin %w", err)
	}
	defer tx.Rollback()

	var nextVersion int
	if err := tx.GetContext(
		ctx,
		&nextVersion,
		`SELECT COALESCE(MAX(version), 0) + 1 FROM proposals WHERE opportunity_id = $1`,
		proposal.OpportunityID,
	); err != nil {
		return fmt.Errorf("proposal repository: next version %w", err)
	}

	proposal.Version = nextVersion

	query := `
		INSERT INTO proposals (opportunity_id, company_id, version, status, title, content, scope, deliverables, pricing, timeline, terms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at
	`

	if err := tx.QueryRowxContext(
		ctx,
		query,
		proposal.OpportunityID,
		proposal.CompanyID,
		proposal.Version,
		proposal.Status,
		proposal.Title,
		proposal.Content,
		proposal.Scope,
		proposal.Deliverables,
		proposal.Pricing,
		proposal.Timeline,
		proposal.Terms,
	).Scan(&proposal.ID, &proposal.CreatedAt); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pgUniqueViolation {
			return ErrProposalVersionConflict
		}
		return fmt.Errorf("proposal repository: create %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("proposal repository: create commit %w", err)
	}

	return nil
}

// GetByID возвращает предложение по идентификатору.
func (r *ProposalRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Proposal, error) {
	var proposal models.Proposal
	if err := r.db.GetContext(ctx, &proposal, `SELECT * FROM proposals WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProposalNotFound
		}
		return nil, fmt.Errorf("proposal repository: get by id %w", err)
	}

	return &proposal, nil
}

// ListByOpportunity возвращает все версии предложений сделки, новые первыми.
func (r *ProposalRepository) ListByOpportunity(ctx context.Context, opportunityID uuid.UUID) ([]models.Proposal, error) {
	var proposals []models.Proposal
	query := `SELECT * FROM proposals WHERE opportunity_id = $1 ORDER BY version DESC`
	if err := r.db.SelectContext(ctx, &proposals, query, opportunityID); err != nil {
		return nil, fmt.Errorf("proposal repository: list by opportunity %w", err)
	}

	return proposals, nil
}

// UpdateStatus обновляет статус предложения.
func (r *ProposalRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE proposals SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("proposal repository: update status %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("proposal repository: update status rows affected %w", err)
	}

	if rowsAffected == 0 {
		return ErrProposalNotFound
	}

	return nil
}
