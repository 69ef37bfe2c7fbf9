package ai

import (
	"strings"
	"testing"
)

const fullDraftJSON = `{
	"title": "Редизайн интернет-магазина",
	"content": "Предлагаем комплексный редизайн.",
	"scope": "Дизайн, вёрстка, интеграции.",
	"deliverables": "Макеты и работающий сайт.",
	"pricing": "1 200 000 рублей.",
	"timeline": "10 недель.",
	"terms": "Поддержка 3 месяца."
}`

func TestParseProposalDraft_AcceptsCompleteDraft(t *testing.T) {
	draft, err := parseProposalDraft(fullDraftJSON)
	if err != nil {
		t.Fatalf("полный черновик должен приниматься: %v", err)
	}
	if draft.Title != "Редизайн интернет-магазина" {
		t.Fatalf("неожиданный заголовок: %q", draft.Title)
	}
	if draft.Terms == "" {
		t.Fatalf("terms должен быть заполнен")
	}
}

func TestParseProposalDraft_AcceptsMarkdownWrapped(t *testing.T) {
	wrapped := "Вот предложение:\n```json\n" + fullDraftJSON + "\n```\nГотово."

	draft, err := parseProposalDraft(wrapped)
	if err != nil {
		t.Fatalf("JSON в markdown блоке должен приниматься: %v", err)
	}
	if draft.Pricing != "1 200 000 рублей." {
		t.Fatalf("неожиданная стоимость: %q", draft.Pricing)
	}
}

func TestParseProposalDraft_RejectsMissingField(t *testing.T) {
	// черновик без pricing не принимается даже частично
	partial := strings.Replace(fullDraftJSON, `"pricing": "1 200 000 рублей.",`, `"pricing": "  ",`, 1)

	if _, err := parseProposalDraft(partial); err == nil {
		t.Fatalf("черновик с пустым полем должен отклоняться целиком")
	}
}

func TestParseProposalDraft_RejectsNonJSON(t *testing.T) {
	if _, err := parseProposalDraft("Извините, не могу составить предложение."); err == nil {
		t.Fatalf("ответ без JSON должен отклоняться")
	}
}

func TestExtractJSON(t *testing.T) {
	raw, ok := extractJSON(`до {"a": 1} после`)
	if !ok || string(raw) != `{"a": 1}` {
		t.Fatalf("ожидали извлечённый объект, получили %q (ok=%v)", raw, ok)
	}

	if _, ok := extractJSON("текст без объекта"); ok {
		t.Fatalf("текст без фигурных скобок не должен давать JSON")
	}
}
