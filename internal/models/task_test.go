package models

import (
	"testing"
	"time"
)

func TestTask_SetAnswerKeepsFirstAnsweredAt(t *testing.T) {
	task := &Task{}
	first := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)

	task.SetAnswer("первый ответ", first)
	if task.AnsweredAt == nil || !task.AnsweredAt.Equal(first) {
		t.Fatalf("answered_at должен проставляться при первом ответе")
	}

	task.SetAnswer("исправленный ответ", first.Add(time.Hour))
	if !task.AnsweredAt.Equal(first) {
		t.Fatalf("повторный ответ не должен сдвигать answered_at")
	}
	if task.Answer == nil || *task.Answer != "исправленный ответ" {
		t.Fatalf("ответ должен обновляться")
	}
}

func TestTask_SetAnswerEmptyDoesNotMarkAnswered(t *testing.T) {
	task := &Task{}
	task.SetAnswer("", time.Now())
	if task.AnsweredAt != nil {
		t.Fatalf("пустой ответ не должен проставлять answered_at")
	}
}
