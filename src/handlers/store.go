package handlers

import (
	"context"

	"rfpdesk-server/src/llm"
	"rfpdesk-server/src/models"
)

type PersonStore interface {
	ListPersons(ctx context.Context) ([]models.Person, error)
	GetPerson(ctx context.Context, id string) (*models.Person, error)
	CreatePerson(ctx context.Context, p *models.Person) (*models.Person, error)
}

type ProposalStore interface {
	CreateProposal(ctx context.Context, p *models.Proposal) (*models.Proposal, error)
	GetProposal(ctx context.Context, id string) (*models.Proposal, error)
	ListProposals(ctx context.Context) ([]models.Proposal, error)
	UpdateProposal(ctx context.Context, p *models.Proposal) (*models.Proposal, error)
	DeleteProposal(ctx context.Context, id string) error
}

type BudgetStore interface {
	ListPersons(ctx context.Context) ([]models.Person, error)
	GetProposal(ctx context.Context, id string) (*models.Proposal, error)
	LoadRows(ctx context.Context, proposalID string) ([]models.BudgetRow, error)
	SaveRows(ctx context.Context, proposalID string, rows []models.BudgetRow) error
}

type ResponseStore interface {
	GetProposal(ctx context.Context, id string) (*models.Proposal, error)
	CreateResponse(ctx context.Context, r *models.Response) (*models.Response, error)
	GetResponse(ctx context.Context, id string) (*models.Response, error)
	ListResponses(ctx context.Context, proposalID string) ([]models.Response, error)
}

type SectionStore interface {
	GetPerson(ctx context.Context, id string) (*models.Person, error)
	GetResponse(ctx context.Context, id string) (*models.Response, error)
	LoadSections(ctx context.Context, responseID string) ([]models.Section, error)
	GetSection(ctx context.Context, id string) (*models.Section, error)
	CreateSection(ctx context.Context, s *models.Section) (*models.Section, error)
	CreateSections(ctx context.Context, secs []models.Section) ([]models.Section, error)
	UpdateSection(ctx context.Context, s *models.Section) (*models.Section, error)
	DeleteSection(ctx context.Context, id string) error
}

type RequirementStore interface {
	GetProposal(ctx context.Context, id string) (*models.Proposal, error)
	InsertRequirements(ctx context.Context, reqs []models.Requirement) error
	ListRequirements(ctx context.Context, proposalID string) ([]models.Requirement, error)
}

type AuthStore interface {
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetInvitationByEmail(ctx context.Context, email string) (*models.Invitation, error)
	CreateUser(ctx context.Context, req models.RegisterRequest, hashedPassword []byte, inv *models.Invitation) (*models.RegisterResponse, error)
	UpdateUserLastLogin(ctx context.Context, userID int64) error
}

type AccountStore interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	UpdateUserPassword(ctx context.Context, userID int64, hashedPassword []byte) error
}

type InvitationStore interface {
	GetPerson(ctx context.Context, id string) (*models.Person, error)
	CreateInvitation(ctx context.Context, inv *models.Invitation) (*models.Invitation, error)
	ListInvitations(ctx context.Context) ([]models.Invitation, error)
	DeleteInvitation(ctx context.Context, id int64) error
}

// Store is everything the API needs from persistence.
type Store interface {
	PersonStore
	ProposalStore
	BudgetStore
	ResponseStore
	SectionStore
	RequirementStore
	AuthStore
	AccountStore
	InvitationStore
	ClearCache(name string) error
}

type RequirementAnalyzer interface {
	Analyze(ctx context.Context, proposalID, document string) (llm.Analysis, error)
}

type ChatAssistant interface {
	Chat(ctx context.Context, proposalContext string, history []llm.Message) (llm.Message, error)
}
