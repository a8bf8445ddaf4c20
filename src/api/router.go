package api

import (
	"net/http"

	"rfpdesk-server/src/handlers"
	"rfpdesk-server/src/middleware"
	"rfpdesk-server/src/templates"

	"github.com/go-chi/chi/v5"
)

// Deps is what the router wires into handlers. Analyzer and Assistant may be
// nil when no model is configured; their endpoints then answer 503.
type Deps struct {
	Store          handlers.Store
	Templates      *templates.Library
	Analyzer       handlers.RequirementAnalyzer
	Assistant      handlers.ChatAssistant
	JWTSecret      string
	AllowedOrigins []string
	DemoMode       bool
}

func NewRouter(d Deps) *chi.Mux {
	store := d.Store
	lib := d.Templates
	if lib == nil {
		lib = templates.Empty()
	}

	r := chi.NewRouter()
	r.Use(middleware.CORSMiddleware(d.AllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", handlers.Login(store, d.JWTSecret))
		r.With(middleware.DemoModeMiddleware(d.DemoMode)).Post("/register", handlers.Register(store, d.JWTSecret))

		// Protected routes
		r.With(middleware.JWTAuthMiddleware(d.JWTSecret), middleware.DemoModeMiddleware(d.DemoMode)).Group(func(r chi.Router) {
			// Account
			r.Get("/me", handlers.GetCurrentUser(store))
			r.Post("/me/change-password", handlers.ChangePassword(store))

			// Persons
			r.Get("/persons", handlers.ListPersons(store))
			r.Get("/persons/{person_id}", handlers.GetPerson(store))

			// Proposals
			r.Post("/proposals", handlers.CreateProposal(store))
			r.Get("/proposals", handlers.ListProposals(store))
			r.Get("/proposals/{proposal_id}", handlers.GetProposal(store))
			r.Put("/proposals/{proposal_id}", handlers.UpdateProposal(store))
			r.Delete("/proposals/{proposal_id}", handlers.DeleteProposal(store))
			r.Post("/proposals/{proposal_id}/advance", handlers.AdvanceProposal(store))

			// Budget
			r.Get("/proposals/{proposal_id}/budget", handlers.GetBudget(store))
			r.Put("/proposals/{proposal_id}/budget", handlers.ReplaceBudget(store))
			r.Post("/proposals/{proposal_id}/budget/rows", handlers.AddBudgetRow(store))
			r.Delete("/proposals/{proposal_id}/budget/rows/{row_id}", handlers.DeleteBudgetRow(store))
			r.Put("/proposals/{proposal_id}/budget/rows/{row_id}/hours", handlers.SetBudgetHours(store))
			r.Put("/proposals/{proposal_id}/budget/rows/{row_id}/rate", handlers.SetBudgetRate(store))
			r.Put("/proposals/{proposal_id}/budget/rows/{row_id}/title", handlers.SetBudgetTitle(store))
			r.Get("/proposals/{proposal_id}/budget/export", handlers.ExportBudget(store))

			// Requirements and assistant
			r.Post("/proposals/{proposal_id}/analyze", handlers.AnalyzeProposal(store, d.Analyzer))
			r.Get("/proposals/{proposal_id}/requirements", handlers.ListRequirements(store))
			r.Post("/proposals/{proposal_id}/chat", handlers.Chat(store, d.Assistant))

			// Responses and sections
			r.Post("/proposals/{proposal_id}/responses", handlers.CreateResponse(store))
			r.Get("/proposals/{proposal_id}/responses", handlers.ListResponses(store))
			r.Get("/responses/{response_id}/sections", handlers.ListSections(store))
			r.Post("/responses/{response_id}/sections", handlers.CreateSection(store))
			r.Post("/responses/{response_id}/sections/from-template", handlers.ApplyTemplate(store, lib))
			r.Put("/sections/{section_id}", handlers.UpdateSection(store))
			r.Post("/sections/{section_id}/assign", handlers.AssignSection(store))
			r.Post("/sections/{section_id}/unassign", handlers.UnassignSection(store))
			r.Post("/sections/{section_id}/lock", handlers.LockSection(store))
			r.Post("/sections/{section_id}/unlock", handlers.UnlockSection(store))
			r.Delete("/sections/{section_id}", handlers.DeleteSection(store))

			r.Get("/templates", handlers.ListTemplates(lib))
		})

		// Manager routes
		r.With(middleware.JWTAuthMiddleware(d.JWTSecret), middleware.ManagerOnlyMiddleware).Group(func(r chi.Router) {
			r.Post("/persons", handlers.CreatePerson(store))
			r.Post("/proposals/{proposal_id}/send-back", handlers.SendBackProposal(store))

			// Cache
			r.Post("/admin/cache/clear/{cache_name}", handlers.ClearCache(store))

			// Invitations
			r.Post("/admin/invitations", handlers.CreateInvitation(store))
			r.Get("/admin/invitations", handlers.ListInvitations(store))
			r.Delete("/admin/invitations/{invitation_id}", handlers.DeleteInvitation(store))
		})
	})

	return r
}
