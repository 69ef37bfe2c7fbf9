package common

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/agency-crm-backend/internal/dto"
	"github.com/ignatzorin/agency-crm-backend/internal/http/middleware"
	"github.com/ignatzorin/agency-crm-backend/internal/pkg/apperror"
	"github.com/ignatzorin/agency-crm-backend/internal/repository"
)

var (
	// ErrUserNotFound is returned when user is not found in context
	ErrUserNotFound = errors.New("сотрудник не найден в контексте")

	// ErrInvalidUUID is returned when UUID parsing fails
	ErrInvalidUUID = errors.New("неверный формат UUID")
)

// CurrentUserID extracts user ID from Gin context
func CurrentUserID(c *gin.Context) (uuid.UUID, error) {
	raw, exists := c.Get(middleware.ContextUserIDKey)
	if !exists {
		return uuid.Nil, ErrUserNotFound
	}

	userID, ok := raw.(uuid.UUID)
	if !ok {
		return uuid.Nil, ErrUserNotFound
	}

	return userID, nil
}

// CurrentOrganizationID extracts organization ID from Gin context
func CurrentOrganizationID(c *gin.Context) (uuid.UUID, error) {
	raw, exists := c.Get(middleware.ContextOrganizationIDKey)
	if !exists {
		return uuid.Nil, ErrUserNotFound
	}

	organizationID, ok := raw.(uuid.UUID)
	if !ok {
		return uuid.Nil, ErrUserNotFound
	}

	return organizationID, nil
}

// CurrentUserRole extracts user role from Gin context
func CurrentUserRole(c *gin.Context) (string, error) {
	raw, exists := c.Get(middleware.ContextRoleKey)
	if !exists {
		return "", ErrUserNotFound
	}

	role, ok := raw.(string)
	if !ok {
		return "", ErrUserNotFound
	}

	return role, nil
}

// ParseUUIDParam parses UUID from URL parameter
func ParseUUIDParam(c *gin.Context, paramName string) (uuid.UUID, error) {
	param := c.Param(paramName)
	if param == "" {
		return uuid.Nil, fmt.Errorf("параметр %s отсутствует", paramName)
	}

	parsed, err := uuid.Parse(param)
	if err != nil {
		return uuid.Nil, ErrInvalidUUID
	}

	return parsed, nil
}

// ParseIntQuery safely reads an integer query parameter with a fallback value
func ParseIntQuery(c *gin.Context, key string, fallback int) int {
	if v := c.Query(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

// RespondError sends a standardized error response
func RespondError(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, dto.ErrorResponse{Error: message})
}

// RespondJSON sends a JSON response with the given status code and data
func RespondJSON(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

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

// RespondServiceError maps a service error to an HTTP response
func RespondServiceError(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		RespondError(c, appErr.HTTPStatus, appErr.Message)
		return
	}

	for sentinel, message := range notFoundMessages {
		if errors.Is(err, sentinel) {
			RespondError(c, http.StatusNotFound, message)
			return
		}
	}

	RespondError(c, http.StatusInternalServerError, "внутренняя ошибка сервера")
}
