package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"rfpdesk-server/src/llm"
	"rfpdesk-server/src/models"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// maxContextRequirements caps how many requirements are quoted to the chat model.
const maxContextRequirements = 50

// AnalyzeProposal extracts requirements from solicitation text and stores
// those that pass validation. Rejected candidates are reported, not stored.
func AnalyzeProposal(store RequirementStore, analyzer RequirementAnalyzer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		proposalID := chi.URLParam(r, "proposal_id")
		if analyzer == nil {
			writeError(w, r, llm.ErrUnavailable, "requirement analysis is not configured")
			return
		}
		var req struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, r, err, "invalid request")
			return
		}
		if _, err := store.GetProposal(r.Context(), proposalID); err != nil {
			writeError(w, r, err, "failed to get proposal", zap.String("proposal_id", proposalID))
			return
		}

		analysis, err := analyzer.Analyze(r.Context(), proposalID, req.Text)
		if err != nil {
			writeError(w, r, err, "failed to analyze document", zap.String("proposal_id", proposalID))
			return
		}
		if err := store.InsertRequirements(r.Context(), analysis.Requirements); err != nil {
			writeError(w, r, err, "failed to store requirements", zap.String("proposal_id", proposalID))
			return
		}
		if len(analysis.Rejected) > 0 {
			zap.L().Warn("model output quarantined", zap.String("proposal_id", proposalID),
				zap.Int("rejected", len(analysis.Rejected)))
		}
		zap.L().Info("requirements extracted", zap.String("proposal_id", proposalID),
			zap.Int("accepted", len(analysis.Requirements)))
		if analysis.Requirements == nil {
			analysis.Requirements = []models.Requirement{}
		}
		if analysis.Rejected == nil {
			analysis.Rejected = []llm.Rejected{}
		}
		writeJSON(w, http.StatusCreated, analysis)
	}
}

func ListRequirements(store RequirementStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		proposalID := chi.URLParam(r, "proposal_id")
		if _, err := store.GetProposal(r.Context(), proposalID); err != nil {
			writeError(w, r, err, "failed to get proposal", zap.String("proposal_id", proposalID))
			return
		}
		reqs, err := store.ListRequirements(r.Context(), proposalID)
		if err != nil {
			writeError(w, r, err, "failed to list requirements", zap.String("proposal_id", proposalID))
			return
		}
		if reqs == nil {
			reqs = []models.Requirement{}
		}
		writeJSON(w, http.StatusOK, reqs)
	}
}

// Chat answers a conversation about one proposal. The client owns the
// history and sends it in full with every turn.
func Chat(store RequirementStore, assistant ChatAssistant) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		proposalID := chi.URLParam(r, "proposal_id")
		if assistant == nil {
			writeError(w, r, llm.ErrUnavailable, "chat is not configured")
			return
		}
		var req struct {
			Messages []llm.Message `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, r, err, "invalid request")
			return
		}
		p, err := store.GetProposal(r.Context(), proposalID)
		if err != nil {
			writeError(w, r, err, "failed to get proposal", zap.String("proposal_id", proposalID))
			return
		}
		reqs, err := store.ListRequirements(r.Context(), proposalID)
		if err != nil {
			writeError(w, r, err, "failed to list requirements", zap.String("proposal_id", proposalID))
			return
		}

		reply, err := assistant.Chat(r.Context(), proposalContext(p, reqs), req.Messages)
		if err != nil {
			writeError(w, r, err, "chat failed", zap.String("proposal_id", proposalID))
			return
		}
		writeJSON(w, http.StatusOK, reply)
	}
}

func proposalContext(p *models.Proposal, reqs []models.Requirement) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n", p.Title)
	if p.Agency != "" {
		fmt.Fprintf(&b, "Agency: %s\n", p.Agency)
	}
	if p.SolicitationNumber != "" {
		fmt.Fprintf(&b, "Solicitation: %s\n", p.SolicitationNumber)
	}
	if p.DueDate != nil {
		fmt.Fprintf(&b, "Due: %s\n", p.DueDate.Format("2006-01-02"))
	}
	fmt.Fprintf(&b, "Review stage: %s\n", p.Stage)
	if len(reqs) == 0 {
		return b.String()
	}
	b.WriteString("Requirements:\n")
	for i, req := range reqs {
		if i == maxContextRequirements {
			fmt.Fprintf(&b, "(%d more not shown)\n", len(reqs)-i)
			break
		}
		fmt.Fprintf(&b, "- [%s] %s: %s\n", req.Priority, req.Section, req.Text)
	}
	return b.String()
}
