package models

import (
	"testing"
	"time"
)

func TestNextClosedAt_SetOnClose(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	got := NextClosedAt(nil, OpportunityStatusWon, now)
	if got == nil || !got.Equal(now) {
		t.Fatalf("при переводе в WON closed_at должен быть %v, получили %v", now, got)
	}

	got = NextClosedAt(nil, OpportunityStatusLost, now)
	if got == nil || !got.Equal(now) {
		t.Fatalf("при переводе в LOST closed_at должен быть %v, получили %v", now, got)
	}
}

func TestNextClosedAt_PreservedBetweenClosedStages(t *testing.T) {
	closedAt := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	now := closedAt.Add(48 * time.Hour)

	got := NextClosedAt(&closedAt, OpportunityStatusLost, now)
	if got == nil || !got.Equal(closedAt) {
		t.Fatalf("повторное закрытие не должно перезаписывать дату: ожидали %v, получили %v", closedAt, got)
	}
}

func TestNextClosedAt_ClearedOnReopen(t *testing.T) {
	closedAt := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	now := closedAt.Add(time.Hour)

	for _, status := range []string{OpportunityStatusLead, OpportunityStatusNegotiation, OpportunityStatusCustomer} {
		if got := NextClosedAt(&closedAt, status, now); got != nil {
			t.Fatalf("при возврате в %s closed_at должен сбрасываться, получили %v", status, got)
		}
	}
}

func TestNextClosedAt_NilStaysNilOnOpenStages(t *testing.T) {
	now := time.Now()

	if got := NextClosedAt(nil, OpportunityStatusQualified, now); got != nil {
		t.Fatalf("на открытом этапе closed_at должен оставаться пустым, получили %v", got)
	}
}

// Полный жизненный цикл: LEAD -> WON -> LEAD -> LOST.
func TestNextClosedAt_Sequence(t *testing.T) {
	t0 := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)

	closedAt := NextClosedAt(nil, OpportunityStatusWon, t0)
	if closedAt == nil || !closedAt.Equal(t0) {
		t.Fatalf("WON: ожидали %v, получили %v", t0, closedAt)
	}

	closedAt = NextClosedAt(closedAt, OpportunityStatusLead, t0.Add(time.Hour))
	if closedAt != nil {
		t.Fatalf("LEAD: ожидали nil, получили %v", closedAt)
	}

	t1 := t0.Add(2 * time.Hour)
	closedAt = NextClosedAt(closedAt, OpportunityStatusLost, t1)
	if closedAt == nil || !closedAt.Equal(t1) {
		t.Fatalf("LOST: ожидали %v, получили %v", t1, closedAt)
	}
}
