package handlers

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/h2non/filetype"

	"github.com/ignatzorin/agency-crm-backend/internal/http/handlers/common"
	"github.com/ignatzorin/agency-crm-backend/internal/models"
	"github.com/ignatzorin/agency-crm-backend/internal/repository"
	"github.com/ignatzorin/agency-crm-backend/internal/service"
	"github.com/ignatzorin/agency-crm-backend/internal/storage"
)

// Разрешённые типы документов сделки
var allowedMimeTypes = map[string]bool{
	"application/pdf": true,
	"image/png":       true,
	"image/jpeg":      true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/zip": true, // docx определяется как zip контейнер
}

// Разрешённые расширения файлов
var allowedExtensions = map[string]bool{
	".pdf":  true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".docx": true,
}

// DocumentHandler управляет загрузкой и выдачей документов сделок.
type DocumentHandler struct {
	repo          *repository.DocumentRepository
	storage       *storage.DocumentStorage
	opportunities *service.OpportunityService
}

// NewDocumentHandler создаёт хэндлер.
func NewDocumentHandler(repo *repository.DocumentRepository, storage *storage.DocumentStorage, opportunities *service.OpportunityService) *DocumentHandler {
	return &DocumentHandler{repo: repo, storage: storage, opportunities: opportunities}
}

// Upload обрабатывает POST /opportunities/:id/documents.
func (h *DocumentHandler) Upload(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondError(c, http.StatusUnauthorized, err.Error())
		return
	}
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

	opp, err := h.opportunities.GetOpportunity(c.Request.Context(), opportunityID, organizationID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "поле file обязательно")
		return
	}

	if file.Size == 0 {
		common.RespondError(c, http.StatusBadRequest, "файл не может быть пустым")
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtensions[ext] {
		common.RespondError(c, http.StatusBadRequest, "неподдерживаемый формат файла. Разрешены: .pdf, .png, .jpg, .jpeg, .docx")
		return
	}

	src, err := file.Open()
	if err != nil {
		common.RespondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	defer src.Close()

	// Проверяем магические байты: расширение легко подделать
	buffer := make([]byte, 512)
	n, err := src.Read(buffer)
	if err != nil && err != io.EOF {
		common.RespondError(c, http.StatusBadRequest, "не удалось прочитать файл")
		return
	}

	kind, err := filetype.Match(buffer[:n])
	if err != nil || kind == filetype.Unknown {
		common.RespondError(c, http.StatusBadRequest, "не удалось определить тип файла")
		return
	}

	contentType := kind.MIME.Value
	if !allowedMimeTypes[contentType] {
		common.RespondError(c, http.StatusBadRequest, fmt.Sprintf("неподдерживаемый тип файла (%s)", contentType))
		return
	}

	if seeker, ok := src.(io.Seeker); ok {
		if _, err := seeker.Seek(0, io.SeekStart); err != nil {
			common.RespondError(c, http.StatusInternalServerError, "не удалось сбросить позицию файла")
			return
		}
	}

	relativePath, size, err := h.storage.Save(c.Request.Context(), opp.ID, file.Filename, src)
	if err != nil {
		common.RespondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	doc := &models.Document{
		OpportunityID: opp.ID,
		UploadedBy:    userID,
		FileName:      file.Filename,
		FilePath:      relativePath,
		MimeType:      contentType,
		SizeBytes:     size,
	}

	if err := h.repo.Create(c.Request.Context(), doc); err != nil {
		_ = h.storage.Delete(c.Request.Context(), relativePath)
		common.RespondServiceError(c, err)
		return
	}

	common.RespondJSON(c, http.StatusCreated, doc)
}

// List обрабатывает GET /opportunities/:id/documents.
func (h *DocumentHandler) List(c *gin.Context) {
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

	if _, err := h.opportunities.GetOpportunity(c.Request.Context(), opportunityID, organizationID); err != nil {
		common.RespondServiceError(c, err)
		return
	}

	docs, err := h.repo.ListByOpportunity(c.Request.Context(), opportunityID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	common.RespondJSON(c, http.StatusOK, gin.H{"documents": docs})
}

// Download обрабатывает GET /documents/:id/download.
func (h *DocumentHandler) Download(c *gin.Context) {
	organizationID, err := common.CurrentOrganizationID(c)
	if err != nil {
		common.RespondError(c, http.StatusUnauthorized, err.Error())
		return
	}

	documentID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	doc, err := h.repo.GetByID(c.Request.Context(), documentID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	if _, err := h.opportunities.GetOpportunity(c.Request.Context(), doc.OpportunityID, organizationID); err != nil {
		common.RespondServiceError(c, err)
		return
	}

	f, err := h.storage.Open(c.Request.Context(), doc.FilePath)
	if err != nil {
		common.RespondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	defer f.Close()

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, doc.FileName))
	c.Header("Content-Type", doc.MimeType)
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, f)
}

// Delete обрабатывает DELETE /documents/:id.
func (h *DocumentHandler) Delete(c *gin.Context) {
	organizationID, err := common.CurrentOrganizationID(c)
	if err != nil {
		common.RespondError(c, http.StatusUnauthorized, err.Error())
		return
	}

	documentID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	doc, err := h.repo.GetByID(c.Request.Context(), documentID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	if _, err := h.opportunities.GetOpportunity(c.Request.Context(), doc.OpportunityID, organizationID); err != nil {
		common.RespondServiceError(c, err)
		return
	}

	if err := h.repo.Delete(c.Request.Context(), documentID); err != nil {
		common.RespondServiceError(c, err)
		return
	}

	_ = h.storage.Delete(c.Request.Context(), doc.FilePath)

	common.RespondJSON(c, http.StatusOK, gin.H{"message": "документ удалён"})
}
