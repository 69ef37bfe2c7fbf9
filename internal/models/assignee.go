package models

import "github.com/google/uuid"

// AssigneeKind вид исполнителя вопроса.
type AssigneeKind string

const (
	AssigneeNone    AssigneeKind = "none"
	AssigneeContact AssigneeKind = "contact"
	AssigneeUser    AssigneeKind = "user"
)

// Assignee — размеченный вариант «контакт | сотрудник | не назначен».
// Взаимоисключительность contact_id/user_id обеспечивается конструкцией типа,
// а не соглашением: в хранилище попадает ровно одно из двух полей.
type Assignee struct {
	Kind AssigneeKind
	ID   uuid.UUID
}

// NoAssignee возвращает пустого исполнителя.
func NoAssignee() Assignee {
	return Assignee{Kind: AssigneeNone}
}

// ContactAssignee возвращает исполнителя-контакта.
func ContactAssignee(id uuid.UUID) Assignee {
	return Assignee{Kind: AssigneeContact, ID: id}
}

// UserAssignee возвращает исполнителя-сотрудника.
func UserAssignee(id uuid.UUID) Assignee {
	return Assignee{Kind: AssigneeUser, ID: id}
}

// ApplyTo записывает исполнителя в задачу, очищая альтернативное поле.
func (a Assignee) ApplyTo(task *Task) {
	switch a.Kind {
	case AssigneeContact:
		id := a.ID
		task.ContactID = &id
		task.UserID = nil
	case AssigneeUser:
		id := a.ID
		task.UserID = &id
		task.ContactID = nil
	default:
		task.ContactID = nil
		task.UserID = nil
	}
}

// AssigneeOf восстанавливает вариант из сохранённой задачи.
func AssigneeOf(task *Task) Assignee {
	switch {
	case task.ContactID != nil:
		return ContactAssignee(*task.ContactID)
	case task.UserID != nil:
		return UserAssignee(*task.UserID)
	default:
		return NoAssignee()
	}
}
