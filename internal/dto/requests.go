package dto

// RegisterRequest represents the request to register a new agency
type RegisterRequest struct {
	OrganizationName string `json:"organization_name" binding:"required"`
	Email            string `json:"email" binding:"required"`
	Password         string `json:"password" binding:"required"`
	Name             string `json:"name"`
}

// LoginRequest represents the request to log in
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest represents the request to refresh a token pair
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// CreateCompanyRequest represents the request to create a company
type CreateCompanyRequest struct {
	Name        string  `json:"name" binding:"required"`
	Industry    *string `json:"industry"`
	Website     *string `json:"website"`
	Description *string `json:"description"`
}

// CreateContactRequest represents the request to create a contact
type CreateContactRequest struct {
	CompanyID string  `json:"company_id" binding:"required"`
	Name      string  `json:"name" binding:"required"`
	Email     string  `json:"email" binding:"required"`
	Position  *string `json:"position"`
	Phone     *string `json:"phone"`
}

// CreateOpportunityRequest represents the request to create an opportunity
type CreateOpportunityRequest struct {
	CompanyID     string   `json:"company_id" binding:"required"`
	Title         string   `json:"title" binding:"required"`
	ValueEstimate *float64 `json:"value_estimate"`
	ExpectedClose *string  `json:"expected_close"`
}

// UpdateOpportunityStatusRequest represents the request to move an opportunity
// to another pipeline stage
type UpdateOpportunityStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateOpportunityOutcomeRequest represents the request to record a close outcome
type UpdateOpportunityOutcomeRequest struct {
	Outcome string `json:"outcome" binding:"required"`
}

// TaskSpecRequest represents one brief question in a bulk create request
type TaskSpecRequest struct {
	Title       string  `json:"title" binding:"required"`
	Question    string  `json:"question" binding:"required"`
	Description *string `json:"description"`
	AssigneeRef string  `json:"assignee_ref"`
	SortOrder   *int    `json:"sort_order"`
}

// BulkCreateTasksRequest represents the request to create brief questions in bulk
type BulkCreateTasksRequest struct {
	Tasks []TaskSpecRequest `json:"tasks" binding:"required"`
}

// UpdateTaskRequest represents a partial update of a brief question
type UpdateTaskRequest struct {
	Title       *string `json:"title"`
	Question    *string `json:"question"`
	Description *string `json:"description"`
	Answer      *string `json:"answer"`
	Status      *string `json:"status"`
	AssigneeRef *string `json:"assignee_ref"`
	SortOrder   *int    `json:"sort_order"`
}

// SendQuestionnaireRequest represents the request to email brief questions
// to contacts. A nil ContactIDs means all contacts with outstanding questions.
// CustomBodies replaces the generated email text for individual contacts,
// keyed by contact ID.
type SendQuestionnaireRequest struct {
	ContactIDs   []string          `json:"contact_ids"`
	CustomBodies map[string]string `json:"custom_bodies,omitempty"`
}

// GenerateTasksRequest represents the request to generate brief questions with AI
type GenerateTasksRequest struct {
	CompanyName string   `json:"company_name"`
	Documents   []string `json:"documents"`
}

// UpdateProposalStatusRequest represents the request to update proposal status
type UpdateProposalStatusRequest struct {
	Status string `json:"status" binding:"required"`
}
