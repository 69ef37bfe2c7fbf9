package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/agency-crm-backend/internal/logger"
	"github.com/ignatzorin/agency-crm-backend/internal/models"
)

// UserTokenPrefix маркирует ссылку на сотрудника в сыром назначении.
// Ссылка без префикса трактуется как id контакта.
const UserTokenPrefix = "user-"

// ContactReader описывает чтение контактов при резолве назначения.
type ContactReader interface {
	GetInOrganization(ctx context.Context, id, organizationID uuid.UUID) (*models.Contact, error)
}

// UserReader описывает чтение сотрудников при резолве назначения.
type UserReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// AssigneeResolver превращает сырую ссылку назначения в ровно один из
// вариантов «контакт | сотрудник | не назначен».
// Нерезолвящаяся ссылка деградирует до «не назначен», а не в ошибку:
// вопрос никогда не должен ссылаться на несуществующего исполнителя.
type AssigneeResolver struct {
	contacts ContactReader
	users    UserReader
}

// NewAssigneeResolver создаёт резолвер.
func NewAssigneeResolver(contacts ContactReader, users UserReader) *AssigneeResolver {
	return &AssigneeResolver{contacts: contacts, users: users}
}

// Resolve возвращает исполнителя для сырой ссылки в рамках организации сделки.
func (r *AssigneeResolver) Resolve(ctx context.Context, ref string, organizationID uuid.UUID) models.Assignee {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return models.NoAssignee()
	}

	if strings.HasPrefix(ref, UserTokenPrefix) {
		return r.resolveUser(ctx, strings.TrimPrefix(ref, UserTokenPrefix), organizationID)
	}

	return r.resolveContact(ctx, ref, organizationID)
}

func (r *AssigneeResolver) resolveUser(ctx context.Context, rawID string, organizationID uuid.UUID) models.Assignee {
	id, err := uuid.Parse(rawID)
	if err != nil {
		r.logUnresolved("user", rawID, organizationID)
		return models.NoAssignee()
	}

	user, err := r.users.GetByID(ctx, id)
	if err != nil {
		r.logUnresolved("user", rawID, organizationID)
		return models.NoAssignee()
	}

	// Сотрудник должен принадлежать организации сделки;
	// суперадмин обходит скоупинг по организации.
	if user.OrganizationID != organizationID && user.Role != models.UserRoleSuperadmin {
		r.logUnresolved("user", rawID, organizationID)
		return models.NoAssignee()
	}

	return models.UserAssignee(user.ID)
}

func (r *AssigneeResolver) resolveContact(ctx context.Context, rawID string, organizationID uuid.UUID) models.Assignee {
	id, err := uuid.Parse(rawID)
	if err != nil {
		r.logUnresolved("contact", rawID, organizationID)
		return models.NoAssignee()
	}

	contact, err := r.contacts.GetInOrganization(ctx, id, organizationID)
	if err != nil {
		r.logUnresolved("contact", rawID, organizationID)
		return models.NoAssignee()
	}

	return models.ContactAssignee(contact.ID)
}

func (r *AssigneeResolver) logUnresolved(kind, rawID string, organizationID uuid.UUID) {
	if logger.Log == nil {
		return
	}

	logger.Log.WithFields(logrus.Fields{
		"kind":            kind,
		"ref":             rawID,
		"organization_id": organizationID,
	}).Warn("Ссылка назначения не резолвится, вопрос остаётся без исполнителя")
}
