package models

import (
	"testing"

	"github.com/google/uuid"
)

func TestAssignee_ApplyToExclusive(t *testing.T) {
	task := &Task{}

	contactID := uuid.New()
	ContactAssignee(contactID).ApplyTo(task)
	if task.ContactID == nil || *task.ContactID != contactID || task.UserID != nil {
		t.Fatalf("назначение контакта должно очищать user_id: %+v", task)
	}

	userID := uuid.New()
	UserAssignee(userID).ApplyTo(task)
	if task.UserID == nil || *task.UserID != userID || task.ContactID != nil {
		t.Fatalf("назначение сотрудника должно очищать contact_id: %+v", task)
	}

	NoAssignee().ApplyTo(task)
	if task.ContactID != nil || task.UserID != nil {
		t.Fatalf("снятие исполнителя должно очищать оба поля: %+v", task)
	}
}

func TestAssigneeOf_Roundtrip(t *testing.T) {
	contactID := uuid.New()

	task := &Task{}
	ContactAssignee(contactID).ApplyTo(task)

	got := AssigneeOf(task)
	if got.Kind != AssigneeContact || got.ID != contactID {
		t.Fatalf("ожидали контакта %s, получили %+v", contactID, got)
	}

	NoAssignee().ApplyTo(task)
	if got := AssigneeOf(task); got.Kind != AssigneeNone {
		t.Fatalf("ожидали пустого исполнителя, получили %+v", got)
	}
}
