package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Константы валидации
const (
	MinOpportunityTitleLength = 3
	MaxOpportunityTitleLength = 200
	MinTaskTitleLength        = 3
	MaxTaskTitleLength        = 200
	MinTaskQuestionLength     = 5
	MaxTaskQuestionLength     = 2000
	MaxTaskDescriptionLength  = 5000
	MaxTaskAnswerLength       = 10000
	MaxBulkTasks              = 100
	MinValueEstimate          = 0.0
	MaxValueEstimate          = 1000000000.0 // миллиард
	MaxCustomBodyLength       = 10000
	MaxContactNameLength      = 200
	MinPasswordLength         = 8
)

// ValidateLength проверяет длину строки.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s должен быть не менее %d символов", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s должен быть не более %d символов", fieldName, max)
	}
	return nil
}

// ValidateNonEmpty проверяет, что строка не пустая.
func ValidateNonEmpty(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s не может быть пустым", fieldName)
	}
	return nil
}

// ValidateEmail проверяет формат email.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email обязателен")
	}

	email = strings.ToLower(strings.TrimSpace(email))

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return fmt.Errorf("некорректный формат email")
	}

	localPart := parts[0]
	domainPart := parts[1]

	if len(localPart) == 0 || len(localPart) > 64 {
		return fmt.Errorf("локальная часть email должна быть от 1 до 64 символов")
	}

	if len(domainPart) == 0 || len(domainPart) > 255 {
		return fmt.Errorf("доменная часть email должна быть от 1 до 255 символов")
	}

	emailRegex := regexp.MustCompile(`^[a-z0-9._+-]+$`)
	if !emailRegex.MatchString(localPart) {
		return fmt.Errorf("локальная часть email содержит недопустимые символы")
	}

	domainRegex := regexp.MustCompile(`^[a-z0-9.-]+\.[a-z]{2,}$`)
	if !domainRegex.MatchString(domainPart) {
		return fmt.Errorf("доменная часть email имеет некорректный формат")
	}

	return nil
}

// ValidateOpportunityTitle проверяет название сделки.
func ValidateOpportunityTitle(title string) error {
	if title == "" {
		return fmt.Errorf("название сделки обязательно")
	}

	title = strings.TrimSpace(title)

	return ValidateLength("название сделки", title, MinOpportunityTitleLength, MaxOpportunityTitleLength)
}

// ValidateTaskTitle проверяет заголовок вопроса.
func ValidateTaskTitle(title string) error {
	if title == "" {
		return fmt.Errorf("заголовок вопроса обязателен")
	}

	title = strings.TrimSpace(title)

	return ValidateLength("заголовок вопроса", title, MinTaskTitleLength, MaxTaskTitleLength)
}

// ValidateTaskQuestion проверяет текст вопроса.
func ValidateTaskQuestion(question string) error {
	if question == "" {
		return fmt.Errorf("текст вопроса обязателен")
	}

	question = strings.TrimSpace(question)

	return ValidateLength("текст вопроса", question, MinTaskQuestionLength, MaxTaskQuestionLength)
}

// ValidateTaskAnswer проверяет ответ на вопрос.
func ValidateTaskAnswer(answer *string) error {
	if answer != nil && *answer != "" {
		return ValidateLength("ответ", strings.TrimSpace(*answer), 0, MaxTaskAnswerLength)
	}
	return nil
}

// ValidateValueEstimate проверяет оценку стоимости сделки.
func ValidateValueEstimate(value *float64) error {
	if value != nil {
		if *value < MinValueEstimate {
			return fmt.Errorf("оценка стоимости не может быть отрицательной")
		}
		if *value > MaxValueEstimate {
			return fmt.Errorf("оценка стоимости не может превышать %.0f", MaxValueEstimate)
		}
	}
	return nil
}

// ValidateCustomBody проверяет пользовательский текст письма.
func ValidateCustomBody(body string) error {
	return ValidateLength("текст письма", body, 0, MaxCustomBodyLength)
}

// ValidateContactName проверяет имя контакта.
func ValidateContactName(name string) error {
	if name == "" {
		return fmt.Errorf("имя контакта обязательно")
	}

	return ValidateLength("имя контакта", strings.TrimSpace(name), 1, MaxContactNameLength)
}
