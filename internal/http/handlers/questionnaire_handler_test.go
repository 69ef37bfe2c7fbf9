package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/ignatzorin/agency-crm-backend/internal/http/middleware"
)

func sendContext(t *testing.T, body string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("POST", "/opportunities/1/questionnaire/send", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c
}

func TestParseSendQuestionnaireRequest_EmptyBodyMeansAllContacts(t *testing.T) {
	c := sendContext(t, "")

	contactIDs, customBodies, err := parseSendQuestionnaireRequest(c)

	assert.NoError(t, err)
	assert.Nil(t, contactIDs)
	assert.Nil(t, customBodies)
}

func TestParseSendQuestionnaireRequest_EmptyObjectMeansAllContacts(t *testing.T) {
	c := sendContext(t, "{}")

	contactIDs, customBodies, err := parseSendQuestionnaireRequest(c)

	assert.NoError(t, err)
	assert.Nil(t, contactIDs)
	assert.Nil(t, customBodies)
}

func TestParseSendQuestionnaireRequest_ExplicitEmptyListStaysEmpty(t *testing.T) {
	c := sendContext(t, `{"contact_ids": []}`)

	contactIDs, _, err := parseSendQuestionnaireRequest(c)

	assert.NoError(t, err)
	assert.NotNil(t, contactIDs)
	assert.Len(t, contactIDs, 0)
}

func TestParseSendQuestionnaireRequest_ParsesContactsAndBodies(t *testing.T) {
	contactID := uuid.New()
	c := sendContext(t, `{"contact_ids": ["`+contactID.String()+`"], "custom_bodies": {"`+contactID.String()+`": "Добрый день!"}}`)

	contactIDs, customBodies, err := parseSendQuestionnaireRequest(c)

	assert.NoError(t, err)
	assert.Equal(t, []uuid.UUID{contactID}, contactIDs)
	assert.Equal(t, "Добрый день!", customBodies[contactID])
}

func TestParseSendQuestionnaireRequest_RejectsBadUUIDs(t *testing.T) {
	c := sendContext(t, `{"contact_ids": ["not-a-uuid"]}`)
	_, _, err := parseSendQuestionnaireRequest(c)
	assert.Error(t, err)

	c = sendContext(t, `{"custom_bodies": {"not-a-uuid": "текст"}}`)
	_, _, err = parseSendQuestionnaireRequest(c)
	assert.Error(t, err)
}

func TestQuestionnaireHandler_Send_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &QuestionnaireHandler{questionnaires: nil}
	r.POST("/opportunities/:id/questionnaire/send", handler.Send)

	oppID := uuid.New()
	req, _ := http.NewRequest("POST", "/opportunities/"+oppID.String()+"/questionnaire/send", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestQuestionnaireHandler_Send_InvalidOpportunityID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &QuestionnaireHandler{questionnaires: nil}
	r.POST("/opportunities/:id/questionnaire/send", func(c *gin.Context) {
		c.Set(middleware.ContextUserIDKey, uuid.New())
		c.Set(middleware.ContextOrganizationIDKey, uuid.New())
		handler.Send(c)
	})

	req, _ := http.NewRequest("POST", "/opportunities/invalid-uuid/questionnaire/send", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
