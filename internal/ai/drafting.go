package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ignatzorin/agency-crm-backend/internal/models"
)

// AnsweredQuestion связывает вопрос анкеты с ответом контакта.
type AnsweredQuestion struct {
	Question    string
	Answer      string
	ContactName string
}

// ProposalContext собирает всё, что нужно AI для черновика предложения.
type ProposalContext struct {
	OpportunityTitle string
	CompanyName      string
	CompanyIndustry  string
	ValueEstimate    *float64
	Answers          []AnsweredQuestion
}

// ProposalDraft содержит разделы черновика коммерческого предложения.
// Все поля обязательны: частично заполненный черновик не принимается.
type ProposalDraft struct {
	Title        string `json:"title"`
	Content      string `json:"content"`
	Scope        string `json:"scope"`
	Deliverables string `json:"deliverables"`
	Pricing      string `json:"pricing"`
	Timeline     string `json:"timeline"`
	Terms        string `json:"terms"`
}

// DraftProposal генерирует черновик коммерческого предложения по брифу.
// Ответ модели проверяется на полноту: если хоть одно поле отсутствует
// или пустое, возвращается ошибка, а не пустой черновик.
func (c *Client) DraftProposal(ctx context.Context, pc ProposalContext) (*ProposalDraft, error) {
	var brief strings.Builder
	fmt.Fprintf(&brief, "Проект: %s\n", pc.OpportunityTitle)
	fmt.Fprintf(&brief, "Клиент: %s\n", pc.CompanyName)
	if pc.CompanyIndustry != "" {
		fmt.Fprintf(&brief, "Отрасль: %s\n", pc.CompanyIndustry)
	}
	if pc.ValueEstimate != nil {
		fmt.Fprintf(&brief, "Ориентировочный бюджет: %.2f\n", *pc.ValueEstimate)
	}
	brief.WriteString("\nОтветы клиента на уточняющие вопросы:\n")
	for i, qa := range pc.Answers {
		fmt.Fprintf(&brief, "%d. Вопрос: %s\n   Ответ (%s): %s\n", i+1, qa.Question, qa.ContactName, qa.Answer)
	}

	systemPrompt := "Ты помощник digital-агентства. На основе брифа составь коммерческое предложение. " +
		"Ответь строго JSON объектом с полями: title, content, scope, deliverables, pricing, timeline, terms. " +
		"Все поля обязательны и должны быть непустыми строками на русском языке. Без markdown вокруг JSON."

	messages := []map[string]string{
		{"role": "system", "content": systemPrompt},
		{"role": "user", "content": brief.String()},
	}

	response, err := c.chatCompletionWithOptions(ctx, messages, 4096, 0.5)
	if err != nil {
		return nil, err
	}

	return parseProposalDraft(response)
}

// parseProposalDraft разбирает ответ модели и проверяет полноту черновика.
func parseProposalDraft(response string) (*ProposalDraft, error) {
	raw, ok := extractJSON(response)
	if !ok {
		return nil, fmt.Errorf("ai: ответ не содержит JSON объект")
	}

	var draft ProposalDraft
	if err := json.Unmarshal(raw, &draft); err != nil {
		return nil, fmt.Errorf("ai: не удалось разобрать черновик: %w", err)
	}

	required := map[string]string{
		"title":        draft.Title,
		"content":      draft.Content,
		"scope":        draft.Scope,
		"deliverables": draft.Deliverables,
		"pricing":      draft.Pricing,
		"timeline":     draft.Timeline,
		"terms":        draft.Terms,
	}
	for field, value := range required {
		if strings.TrimSpace(value) == "" {
			return nil, fmt.Errorf("ai: в черновике отсутствует поле %s", field)
		}
	}

	return &draft, nil
}

// GenerateQuestions формирует уточняющие вопросы по новой сделке.
func (c *Client) GenerateQuestions(ctx context.Context, opportunityTitle, companyName string, documents []string) ([]models.TaskSpec, error) {
	var brief strings.Builder
	fmt.Fprintf(&brief, "Проект: %s\nКлиент: %s\n", opportunityTitle, companyName)
	if len(documents) > 0 {
		brief.WriteString("\nМатериалы клиента:\n")
		for _, doc := range documents {
			fmt.Fprintf(&brief, "---\n%s\n", doc)
		}
	}

	systemPrompt := "Ты помощник digital-агентства. Составь 5-10 уточняющих вопросов клиенту, " +
		"чтобы собрать бриф по проекту. Ответь строго JSON объектом вида " +
		`{"questions": [{"title": "...", "question": "..."}]}. ` +
		"title — короткая тема вопроса, question — сам вопрос. На русском языке, без markdown вокруг JSON."

	messages := []map[string]string{
		{"role": "system", "content": systemPrompt},
		{"role": "user", "content": brief.String()},
	}

	response, err := c.chatCompletion(ctx, messages)
	if err != nil {
		return nil, err
	}

	raw, ok := extractJSON(response)
	if !ok {
		return nil, fmt.Errorf("ai: ответ не содержит JSON объект")
	}

	var parsed struct {
		Questions []struct {
			Title    string `json:"title"`
			Question string `json:"question"`
		} `json:"questions"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("ai: не удалось разобрать вопросы: %w", err)
	}

	specs := make([]models.TaskSpec, 0, len(parsed.Questions))
	for _, q := range parsed.Questions {
		title := strings.TrimSpace(q.Title)
		question := strings.TrimSpace(q.Question)
		if question == "" {
			continue
		}
		if title == "" {
			title = question
			if len([]rune(title)) > 80 {
				title = string([]rune(title)[:80])
			}
		}
		specs = append(specs, models.TaskSpec{Title: title, Question: question})
	}

	return specs, nil
}
