package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/agency-crm-backend/internal/logger"
	"github.com/ignatzorin/agency-crm-backend/internal/pkg/apperror"
	"github.com/ignatzorin/agency-crm-backend/internal/repository"
)

// notFoundMessages сопоставляет сентинели хранилища с сообщениями клиенту.
var notFoundMessages = map[error]string{
	repository.ErrOpportunityNotFound:  "сделка не найдена",
	repository.ErrTaskNotFound:         "вопрос не найден",
	repository.ErrProposalNotFound:     "предложение не найдено",
	repository.ErrContactNotFound:      "контакт не найден",
	repository.ErrCompanyNotFound:      "компания не найдена",
	repository.ErrUserNotFound:         "пользователь не найден",
	repository.ErrOrganizationNotFound: "организация не найдена",
	repository.ErrDocumentNotFound:     "документ не найден",
	repository.ErrNotificationNotFound: "уведомление не найдено",
}

// ErrorHandler обрабатывает ошибки централизованно.
// Маскирует внутренние ошибки и возвращает понятные сообщения клиенту.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last()

		statusCode := http.StatusInternalServerError
		message := "внутренняя ошибка сервера"

		logger.Log.WithFields(logrus.Fields{
			"error":  err.Error(),
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		}).Error("Request error")

		var appErr *apperror.AppError
		if errors.As(err.Err, &appErr) {
			statusCode = appErr.HTTPStatus
			message = appErr.Message
		} else if m, ok := matchNotFound(err.Err); ok {
			statusCode = http.StatusNotFound
			message = m
		} else if err.Error() != "" {
			errStr := err.Error()
			if !containsInternalKeywords(errStr) {
				message = errStr
				if contains(errStr, "неверный") || contains(errStr, "невалид") {
					statusCode = http.StatusBadRequest
				} else if contains(errStr, "нет прав") || contains(errStr, "не авторизован") {
					statusCode = http.StatusForbidden
				}
			}
		}

		c.JSON(statusCode, gin.H{"error": message})
	}
}

func matchNotFound(err error) (string, bool) {
	for sentinel, message := range notFoundMessages {
		if errors.Is(err, sentinel) {
			return message, true
		}
	}
	return "", false
}

// containsInternalKeywords проверяет, содержит ли строка ключевые слова внутренних ошибок.
func containsInternalKeywords(s string) bool {
	keywords := []string{
		"sql:",
		"database",
		"connection",
		"timeout",
		"internal",
		"panic",
		"runtime",
	}

	for _, keyword := range keywords {
		if contains(s, keyword) {
			return true
		}
	}
	return false
}

// contains проверяет, содержит ли строка подстроку (case-insensitive).
func contains(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
