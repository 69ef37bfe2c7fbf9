package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/agency-crm-backend/internal/dto"
	"github.com/ignatzorin/agency-crm-backend/internal/http/handlers/common"
	"github.com/ignatzorin/agency-crm-backend/internal/models"
	"github.com/ignatzorin/agency-crm-backend/internal/service"
)

// TaskHandler предоставляет HTTP слой вопросов брифа.
type TaskHandler struct {
	tasks *service.TaskService
}

// NewTaskHandler создаёт хэндлер.
func NewTaskHandler(tasks *service.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// BulkCreate обрабатывает POST /opportunities/:id/tasks.
func (h *TaskHandler) BulkCreate(c *gin.Context) {
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

	var req dto.BulkCreateTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	specs := make([]models.TaskSpec, 0, len(req.Tasks))
	for _, t := range req.Tasks {
		specs = append(specs, models.TaskSpec{
			Title:       t.Title,
			Question:    t.Question,
			Description: t.Description,
			AssigneeRef: t.AssigneeRef,
			SortOrder:   t.SortOrder,
		})
	}

	created, err := h.tasks.BulkCreateTasks(c.Request.Context(), opportunityID, organizationID, specs)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	resp := make([]*dto.TaskResponse, 0, len(created))
	for _, task := range created {
		resp = append(resp, dto.NewTaskResponse(task))
	}

	common.RespondJSON(c, http.StatusCreated, gin.H{"tasks": resp})
}

// Generate обрабатывает POST /opportunities/:id/tasks/generate.
func (h *TaskHandler) Generate(c *gin.Context) {
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

	var req dto.GenerateTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.tasks.GenerateTasks(c.Request.Context(), opportunityID, organizationID, req.CompanyName, req.Documents)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	resp := make([]*dto.TaskResponse, 0, len(created))
	for _, task := range created {
		resp = append(resp, dto.NewTaskResponse(task))
	}

	common.RespondJSON(c, http.StatusCreated, gin.H{"tasks": resp})
}

// List обрабатывает GET /opportunities/:id/tasks.
func (h *TaskHandler) List(c *gin.Context) {
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

	tasks, err := h.tasks.ListTasks(c.Request.Context(), opportunityID, organizationID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	common.RespondJSON(c, http.StatusOK, gin.H{"tasks": dto.NewTaskResponses(tasks)})
}

// Update обрабатывает PATCH /opportunities/:id/tasks/:taskId.
func (h *TaskHandler) Update(c *gin.Context) {
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

	taskID, err := common.ParseUUIDParam(c, "taskId")
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var req dto.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	task, err := h.tasks.UpdateTask(c.Request.Context(), opportunityID, organizationID, taskID, service.TaskPatch{
		Title:       req.Title,
		Question:    req.Question,
		Description: req.Description,
		Answer:      req.Answer,
		Status:      req.Status,
		AssigneeRef: req.AssigneeRef,
		SortOrder:   req.SortOrder,
	})
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	common.RespondJSON(c, http.StatusOK, dto.NewTaskResponse(task))
}

// Delete обрабатывает DELETE /opportunities/:id/tasks/:taskId.
func (h *TaskHandler) Delete(c *gin.Context) {
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

	taskID, err := common.ParseUUIDParam(c, "taskId")
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.tasks.DeleteTask(c.Request.Context(), opportunityID, organizationID, taskID); err != nil {
		common.RespondServiceError(c, err)
		return
	}

	common.RespondJSON(c, http.StatusOK, gin.H{"message": "вопрос удалён"})
}
