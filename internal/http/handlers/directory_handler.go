package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/agency-crm-backend/internal/dto"
	"github.com/ignatzorin/agency-crm-backend/internal/http/handlers/common"
	"github.com/ignatzorin/agency-crm-backend/internal/service"
)

// DirectoryHandler предоставляет HTTP слой справочника компаний и контактов.
type DirectoryHandler struct {
	directory *service.DirectoryService
}

// NewDirectoryHandler создаёт хэндлер.
func NewDirectoryHandler(directory *service.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{directory: directory}
}

// CreateCompany обрабатывает POST /companies.
func (h *DirectoryHandler) CreateCompany(c *gin.Context) {
	organizationID, err := common.CurrentOrganizationID(c)
	if err != nil {
		common.RespondError(c, http.StatusUnauthorized, err.Error())
		return
	}

	var req dto.CreateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	company, err := h.directory.CreateCompany(c.Request.Context(), organizationID, service.CompanyInput{
		Name:        req.Name,
		Industry:    req.Industry,
		Website:     req.Website,
		Description: req.Description,
	})
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	common.RespondJSON(c, http.StatusCreated, company)
}

// GetCompany обрабатывает GET /companies/:id.
func (h *DirectoryHandler) GetCompany(c *gin.Context) {
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

	company, err := h.directory.GetCompany(c.Request.Context(), id, organizationID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	common.RespondJSON(c, http.StatusOK, company)
}

// ListCompanies обрабатывает GET /companies.
func (h *DirectoryHandler) ListCompanies(c *gin.Context) {
	organizationID, err := common.CurrentOrganizationID(c)
	if err != nil {
		common.RespondError(c, http.StatusUnauthorized, err.Error())
		return
	}

	limit := common.ParseIntQuery(c, "limit", 20)
	offset := common.ParseIntQuery(c, "offset", 0)

	companies, err := h.directory.ListCompanies(c.Request.Context(), organizationID, limit, offset)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	common.RespondJSON(c, http.StatusOK, gin.H{"companies": companies})
}

// CreateContact обрабатывает POST /contacts.
func (h *DirectoryHandler) CreateContact(c *gin.Context) {
	organizationID, err := common.CurrentOrganizationID(c)
	if err != nil {
		common.RespondError(c, http.StatusUnauthorized, err.Error())
		return
	}

	var req dto.CreateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	companyID, err := uuid.Parse(req.CompanyID)
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "company_id должен быть валидным UUID")
		return
	}

	contact, err := h.directory.CreateContact(c.Request.Context(), organizationID, service.ContactInput{
		CompanyID: companyID,
		Name:      req.Name,
		Email:     req.Email,
		Position:  req.Position,
		Phone:     req.Phone,
	})
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	common.RespondJSON(c, http.StatusCreated, contact)
}

// GetContact обрабатывает GET /contacts/:id.
func (h *DirectoryHandler) GetContact(c *gin.Context) {
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

	contact, err := h.directory.GetContact(c.Request.Context(), id, organizationID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	common.RespondJSON(c, http.StatusOK, contact)
}

// ListContacts обрабатывает GET /companies/:id/contacts.
func (h *DirectoryHandler) ListContacts(c *gin.Context) {
	organizationID, err := common.CurrentOrganizationID(c)
	if err != nil {
		common.RespondError(c, http.StatusUnauthorized, err.Error())
		return
	}

	companyID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	contacts, err := h.directory.ListContacts(c.Request.Context(), companyID, organizationID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	common.RespondJSON(c, http.StatusOK, gin.H{"contacts": contacts})
}
