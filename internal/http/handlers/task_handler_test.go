package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/ignatzorin/agency-crm-backend/internal/http/middleware"
)

func TestTaskHandler_BulkCreate_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &TaskHandler{tasks: nil}
	r.POST("/opportunities/:id/tasks", handler.BulkCreate)

	oppID := uuid.New()
	req, _ := http.NewRequest("POST", "/opportunities/"+oppID.String()+"/tasks", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTaskHandler_List_InvalidOpportunityID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &TaskHandler{tasks: nil}
	r.GET("/opportunities/:id/tasks", func(c *gin.Context) {
		c.Set(middleware.ContextUserIDKey, uuid.New())
		c.Set(middleware.ContextOrganizationIDKey, uuid.New())
		handler.List(c)
	})

	req, _ := http.NewRequest("GET", "/opportunities/invalid-uuid/tasks", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTaskHandler_Update_InvalidTaskID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &TaskHandler{tasks: nil}
	r.PATCH("/opportunities/:id/tasks/:taskId", func(c *gin.Context) {
		c.Set(middleware.ContextUserIDKey, uuid.New())
		c.Set(middleware.ContextOrganizationIDKey, uuid.New())
		handler.Update(c)
	})

	oppID := uuid.New()
	req, _ := http.NewRequest("PATCH", "/opportunities/"+oppID.String()+"/tasks/invalid-uuid", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
