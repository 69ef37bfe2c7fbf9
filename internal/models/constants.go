package models

// OpportunityStatus константы этапов воронки продаж
const (
	OpportunityStatusLead          = "LEAD"
	OpportunityStatusQualified     = "QUALIFIED"
	OpportunityStatusContacted     = "CONTACTED"
	OpportunityStatusNeedsAnalysis = "NEEDS_ANALYSIS"
	OpportunityStatusOpportunity   = "OPPORTUNITY"
	OpportunityStatusNegotiation   = "NEGOTIATION"
	OpportunityStatusOfferSent     = "OFFER_SENT"
	OpportunityStatusOfferAccepted = "OFFER_ACCEPTED"
	OpportunityStatusWon           = "WON"
	OpportunityStatusLost          = "LOST"
	OpportunityStatusCustomer      = "CUSTOMER"
)

// BriefStatus константы статусов брифа сделки
const (
	BriefStatusDraft              = "DRAFT"
	BriefStatusQuestionsGenerated = "QUESTIONS_GENERATED"
	BriefStatusInReview           = "IN_REVIEW"
	BriefStatusCompleted          = "COMPLETED"
)

// TaskStatus константы статусов уточняющих вопросов
const (
	TaskStatusTodo       = "TODO"
	TaskStatusInProgress = "IN_PROGRESS"
	TaskStatusReview     = "REVIEW"
	TaskStatusDone       = "DONE"
)

// ProposalStatus константы статусов коммерческих предложений
const (
	ProposalStatusDraft    = "DRAFT"
	ProposalStatusSent     = "SENT"
	ProposalStatusAccepted = "ACCEPTED"
	ProposalStatusRejected = "REJECTED"
)

// UserRole константы ролей сотрудников
const (
	UserRoleManager    = "manager"
	UserRoleAdmin      = "admin"
	UserRoleSuperadmin = "superadmin"
)

// ValidOpportunityStatuses список валидных этапов воронки
var ValidOpportunityStatuses = map[string]struct{}{
	OpportunityStatusLead:          {},
	OpportunityStatusQualified:     {},
	OpportunityStatusContacted:     {},
	OpportunityStatusNeedsAnalysis: {},
	OpportunityStatusOpportunity:   {},
	OpportunityStatusNegotiation:   {},
	OpportunityStatusOfferSent:     {},
	OpportunityStatusOfferAccepted: {},
	OpportunityStatusWon:           {},
	OpportunityStatusLost:          {},
	OpportunityStatusCustomer:      {},
}

// ClosedOpportunityStatuses этапы, на которых сделка считается закрытой.
// На этих этапах closed_at обязан быть заполнен, на остальных — пуст.
var ClosedOpportunityStatuses = map[string]struct{}{
	OpportunityStatusWon:  {},
	OpportunityStatusLost: {},
}

// ValidBriefStatuses список валидных статусов брифа
var ValidBriefStatuses = map[string]struct{}{
	BriefStatusDraft:              {},
	BriefStatusQuestionsGenerated: {},
	BriefStatusInReview:           {},
	BriefStatusCompleted:          {},
}

// ValidTaskStatuses список валидных статусов вопросов
var ValidTaskStatuses = map[string]struct{}{
	TaskStatusTodo:       {},
	TaskStatusInProgress: {},
	TaskStatusReview:     {},
	TaskStatusDone:       {},
}

// ValidProposalStatuses список валидных статусов предложений
var ValidProposalStatuses = map[string]struct{}{
	ProposalStatusDraft:    {},
	ProposalStatusSent:     {},
	ProposalStatusAccepted: {},
	ProposalStatusRejected: {},
}
