package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/agency-crm-backend/internal/dto"
	"github.com/ignatzorin/agency-crm-backend/internal/http/handlers/common"
	"github.com/ignatzorin/agency-crm-backend/internal/service"
)

// OpportunityHandler предоставляет HTTP слой воронки продаж.
type OpportunityHandler struct {
	opportunities *service.OpportunityService
}

// NewOpportunityHandler создаёт хэндлер.
func NewOpportunityHandler(opportunities *service.OpportunityService) *OpportunityHandler {
	return &OpportunityHandler{opportunities: opportunities}
}

// Create обрабатывает POST /opportunities.
func (h *OpportunityHandler) Create(c *gin.Context) {
	organizationID, err := common.CurrentOrganizationID(c)
	if err != nil {
		common.RespondError(c, http.StatusUnauthorized, err.Error())
		return
	}

	var req dto.CreateOpportunityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	companyID, err := uuid.Parse(req.CompanyID)
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "company_id должен быть валидным UUID")
		return
	}

	input := service.CreateOpportunityInput{
		OrganizationID: organizationID,
		CompanyID:      companyID,
		Title:          req.Title,
		ValueEstimate:  req.ValueEstimate,
	}

	if req.ExpectedClose != nil {
		parsed, err := time.Parse(time.RFC3339, *req.ExpectedClose)
		if err != nil {
			common.RespondError(c, http.StatusBadRequest, "expected_close должен быть датой в формате RFC3339")
			return
		}
		input.ExpectedClose = &parsed
	}

	opp, err := h.opportunities.CreateOpportunity(c.Request.Context(), input)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	common.RespondJSON(c, http.StatusCreated, opp)
}

// Get обрабатывает GET /opportunities/:id.
func (h *OpportunityHandler) Get(c *gin.Context) {
	organizationID, err := common.CurrentOrganizationID(c)
	if err != nil {
		common.RespondError(c, http.StatusUnauthorized, err.Error())
		return
	}

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	opp, err := h.opportunities.GetOpportunity(c.Request.Context(), id, organizationID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	common.RespondJSON(c, http.StatusOK, opp)
}

// List обрабатывает GET /opportunities?status=&limit=&offset=.
func (h *OpportunityHandler) List(c *gin.Context) {
	organizationID, err := common.CurrentOrganizationID(c)
	if err != nil {
		common.RespondError(c, http.StatusUnauthorized, err.Error())
		return
	}

	status := c.Query("status")
	limit := common.ParseIntQuery(c, "limit", 20)
	offset := common.ParseIntQuery(c, "offset", 0)

	opportunities, err := h.opportunities.ListOpportunities(c.Request.Context(), organizationID, status, limit, offset)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	common.RespondJSON(c, http.StatusOK, gin.H{"opportunities": opportunities})
}

// UpdateStatus обрабатывает PATCH /opportunities/:id/status.
func (h *OpportunityHandler) UpdateStatus(c *gin.Context) {
	organizationID, err := common.CurrentOrganizationID(c)
	if err != nil {
		common.RespondError(c, http.StatusUnauthorized, err.Error())
		return
	}

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var req dto.UpdateOpportunityStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	opp, err := h.opportunities.UpdateStatus(c.Request.Context(), id, organizationID, req.Status)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	common.RespondJSON(c, http.StatusOK, opp)
}

// UpdateOutcome обрабатывает PATCH /opportunities/:id/outcome.
func (h *OpportunityHandler) UpdateOutcome(c *gin.Context) {
	organizationID, err := common.CurrentOrganizationID(c)
	if err != nil {
		common.RespondError(c, http.StatusUnauthorized, err.Error())
		return
	}

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var req dto.UpdateOpportunityOutcomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	opp, err := h.opportunities.UpdateOutcome(c.Request.Context(), id, organizationID, req.Outcome)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	common.RespondJSON(c, http.StatusOK, opp)
}

// Delete обрабатывает DELETE /opportunities/:id.
func (h *OpportunityHandler) Delete(c *gin.Context) {
	organizationID, err := common.CurrentOrganizationID(c)
	if err != nil {
		common.RespondError(c, http.StatusUnauthorized, err.Error())
		return
	}

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.opportunities.DeleteOpportunity(c.Request.Context(), id, organizationID); err != nil {
		common.RespondServiceError(c, err)
		return
	}

	common.RespondJSON(c, http.StatusOK, gin.H{"message": "сделка удалена"})
}
