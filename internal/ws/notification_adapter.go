package ws

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/agency-crm-backend/internal/models"
)

// OrganizationUserLister возвращает сотрудников организации.
type OrganizationUserLister interface {
	ListByOrganization(ctx context.Context, organizationID uuid.UUID) ([]models.User, error)
}

// NotificationCreator сохраняет одно уведомление сотрудника.
type NotificationCreator interface {
	CreateNotification(ctx context.Context, userID uuid.UUID, event string, data interface{}) (*models.Notification, error)
}

// NotificationServiceAdapter адаптирует NotificationService для использования в Hub:
// событие организации разворачивается в уведомление каждому её сотруднику.
type NotificationServiceAdapter struct {
	users         OrganizationUserLister
	notifications NotificationCreator
}

// NewNotificationServiceAdapter создаёт новый адаптер.
func NewNotificationServiceAdapter(users OrganizationUserLister, notifications NotificationCreator) *NotificationServiceAdapter {
	return &NotificationServiceAdapter{users: users, notifications: notifications}
}

// CreateForOrganization реализует интерфейс NotificationSaver.
func (a *NotificationServiceAdapter) CreateForOrganization(ctx context.Context, organizationID uuid.UUID, event string, data interface{}) error {
	users, err := a.users.ListByOrganization(ctx, organizationID)
	if err != nil {
		return err
	}

	for _, user := range users {
		if _, err := a.notifications.CreateNotification(ctx, user.ID, event, data); err != nil {
			return err
		}
	}

	return nil
}
