package dto

import (
	"github.com/google/uuid"

	"github.com/ignatzorin/agency-crm-backend/internal/models"
	"github.com/ignatzorin/agency-crm-backend/internal/service"
)

// ErrorResponse represents a standardized error payload
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse represents a standardized success payload
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// AuthResponse represents the result of register/login/refresh
type AuthResponse struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int64        `json:"expires_in"`
}

// NewAuthResponse creates an AuthResponse from a service result
func NewAuthResponse(result *service.AuthResult) *AuthResponse {
	return &AuthResponse{
		User:         result.User,
		AccessToken:  result.TokenPair.AccessToken,
		RefreshToken: result.TokenPair.RefreshToken,
		ExpiresIn:    int64(result.TokenPair.ExpiresIn.Seconds()),
	}
}

// OpportunityResponse represents an opportunity with its resolved company
type OpportunityResponse struct {
	*models.Opportunity
	Company *models.Company `json:"company,omitempty"`
}

// TaskResponse represents a brief question with its resolved assignee
type TaskResponse struct {
	*models.Task
	Assignee AssigneeResponse `json:"assignee"`
}

// AssigneeResponse represents the resolved assignee of a brief question
type AssigneeResponse struct {
	Kind string     `json:"kind"`
	ID   *uuid.UUID `json:"id,omitempty"`
}

// NewTaskResponse creates a TaskResponse from a task
func NewTaskResponse(task *models.Task) *TaskResponse {
	assignee := models.AssigneeOf(task)
	resp := &TaskResponse{
		Task:     task,
		Assignee: AssigneeResponse{Kind: string(assignee.Kind)},
	}
	if assignee.Kind != models.AssigneeNone {
		id := assignee.ID
		resp.Assignee.ID = &id
	}
	return resp
}

// NewTaskResponses converts a slice of tasks
func NewTaskResponses(tasks []models.Task) []*TaskResponse {
	out := make([]*TaskResponse, 0, len(tasks))
	for i := range tasks {
		out = append(out, NewTaskResponse(&tasks[i]))
	}
	return out
}
