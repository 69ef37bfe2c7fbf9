package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/agency-crm-backend/internal/dto"
	"github.com/ignatzorin/agency-crm-backend/internal/http/handlers/common"
	"github.com/ignatzorin/agency-crm-backend/internal/service"
)

// ProposalHandler предоставляет HTTP слой коммерческих предложений.
type ProposalHandler struct {
	proposals *service.ProposalService
}

// NewProposalHandler создаёт хэндлер.
func NewProposalHandler(proposals *service.ProposalService) *ProposalHandler {
	return &ProposalHandler{proposals: proposals}
}

// Generate обрабатывает POST /opportunities/:id/proposals/generate.
// Незаполненный бриф возвращает 422 с описанием, сколько вопросов открыто.
func (h *ProposalHandler) Generate(c *gin.Context) {
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

	result, err := h.proposals.GenerateProposal(c.Request.Context(), opportunityID, organizationID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	switch result.Outcome {
	case service.GenerateOutcomeGenerated:
		common.RespondJSON(c, http.StatusCreated, result)
	case service.GenerateOutcomeDraftFailed:
		common.RespondJSON(c, http.StatusBadGateway, result)
	default:
		common.RespondJSON(c, http.StatusUnprocessableEntity, result)
	}
}

// List обрабатывает GET /opportunities/:id/proposals.
func (h *ProposalHandler) List(c *gin.Context) {
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

	proposals, err := h.proposals.ListProposals(c.Request.Context(), opportunityID, organizationID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	common.RespondJSON(c, http.StatusOK, gin.H{"proposals": proposals})
}

// Get обрабатывает GET /proposals/:id.
func (h *ProposalHandler) Get(c *gin.Context) {
	organizationID, err := common.CurrentOrganizationID(c)
	if err != nil {
		common.RespondError(c, http.StatusUnauthorized, err.Error())
		return
	}

	proposalID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	proposal, err := h.proposals.GetProposal(c.Request.Context(), proposalID, organizationID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	common.RespondJSON(c, http.StatusOK, proposal)
}

// UpdateStatus обрабатывает PATCH /proposals/:id/status.
func (h *ProposalHandler) UpdateStatus(c *gin.Context) {
	organizationID, err := common.CurrentOrganizationID(c)
	if err != nil {
		common.RespondError(c, http.StatusUnauthorized, err.Error())
		return
	}

	proposalID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var req dto.UpdateProposalStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	proposal, err := h.proposals.UpdateProposalStatus(c.Request.Context(), proposalID, organizationID, req.Status)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	common.RespondJSON(c, http.StatusOK, proposal)
}
