package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/agency-crm-backend/internal/dto"
	"github.com/ignatzorin/agency-crm-backend/internal/http/handlers/common"
	"github.com/ignatzorin/agency-crm-backend/internal/service"
)

// QuestionnaireHandler предоставляет HTTP слой анкет для контактов.
type QuestionnaireHandler struct {
	questionnaires *service.QuestionnaireService
}

// NewQuestionnaireHandler создаёт хэндлер.
func NewQuestionnaireHandler(questionnaires *service.QuestionnaireService) *QuestionnaireHandler {
	return &QuestionnaireHandler{questionnaires: questionnaires}
}

// Preview обрабатывает GET /opportunities/:id/questionnaire.
// Возвращает пакеты вопросов по контактам без отправки писем.
func (h *QuestionnaireHandler) Preview(c *gin.Context) {
	organizationID, err := common.CurrentOrganizationID(c)
	if err != nil {
		common.RespondError(c, http.StatusUnauthorized, err.Error())
		return
	}

	opportunityID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	batches, err := h.questionnaires.BuildQuestionnaire(c.Request.Context(), opportunityID, organizationID, nil)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	common.RespondJSON(c, http.StatusOK, gin.H{"batches": batches})
}

// Send обрабатывает POST /opportunities/:id/questionnaire/send.
// Тело запроса необязательно: запрос без тела или без contact_ids
// означает «все контакты с незакрытыми вопросами», явно переданный
// пустой список — ошибка.
func (h *QuestionnaireHandler) Send(c *gin.Context) {
	organizationID, err := common.CurrentOrganizationID(c)
	if err != nil {
		common.RespondError(c, http.StatusUnauthorized, err.Error())
		return
	}

	opportunityID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	contactIDs, customBodies, err := parseSendQuestionnaireRequest(c)
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.questionnaires.SendQuestionnaire(c.Request.Context(), opportunityID, organizationID, contactIDs, customBodies)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	common.RespondJSON(c, http.StatusOK, result)
}

// parseSendQuestionnaireRequest разбирает тело запроса рассылки.
// Все параметры необязательны, поэтому запрос без тела равнозначен
// пустому объекту и означает рассылку всем контактам.
func parseSendQuestionnaireRequest(c *gin.Context) ([]uuid.UUID, map[uuid.UUID]string, error) {
	var req dto.SendQuestionnaireRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		return nil, nil, err
	}

	var contactIDs []uuid.UUID
	if req.ContactIDs != nil {
		contactIDs = make([]uuid.UUID, 0, len(req.ContactIDs))
		for _, raw := range req.ContactIDs {
			id, err := uuid.Parse(raw)
			if err != nil {
				return nil, nil, fmt.Errorf("contact_ids должны быть валидными UUID")
			}
			contactIDs = append(contactIDs, id)
		}
	}

	var customBodies map[uuid.UUID]string
	if len(req.CustomBodies) > 0 {
		customBodies = make(map[uuid.UUID]string, len(req.CustomBodies))
		for raw, body := range req.CustomBodies {
			id, err := uuid.Parse(raw)
			if err != nil {
				return nil, nil, fmt.Errorf("ключи custom_bodies должны быть валидными UUID")
			}
			customBodies[id] = body
		}
	}

	return contactIDs, customBodies, nil
}
