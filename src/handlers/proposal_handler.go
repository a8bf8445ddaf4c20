package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"rfpdesk-server/src/models"
	"rfpdesk-server/src/review"
	"rfpdesk-server/src/section"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type proposalRequest struct {
	Title              string     `json:"title"`
	Agency             string     `json:"agency"`
	SolicitationNumber string     `json:"solicitation_number"`
	DueDate            *time.Time `json:"due_date"`
}

func (req *proposalRequest) normalize() {
	req.Title = strings.TrimSpace(req.Title)
	req.Agency = strings.TrimSpace(req.Agency)
	req.SolicitationNumber = strings.TrimSpace(req.SolicitationNumber)
}

func CreateProposal(store ProposalStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req proposalRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, r, err, "invalid request")
			return
		}
		req.normalize()
		if req.Title == "" {
			http.Error(w, "title is required", http.StatusBadRequest)
			return
		}

		actor := actorFrom(r)
		p, err := store.CreateProposal(r.Context(), &models.Proposal{
			ID:                 uuid.NewString(),
			Title:              req.Title,
			Agency:             req.Agency,
			SolicitationNumber: req.SolicitationNumber,
			DueDate:            req.DueDate,
			Stage:              string(review.StageDraft),
			CreatedBy:          actor.ID,
		})
		if err != nil {
			writeError(w, r, err, "failed to create proposal")
			return
		}
		zap.L().Info("proposal created", zap.String("proposal_id", p.ID), zap.String("actor", actor.ID))
		writeJSON(w, http.StatusCreated, p)
	}
}

func ListProposals(store ProposalStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ps, err := store.ListProposals(r.Context())
		if err != nil {
			writeError(w, r, err, "failed to list proposals")
			return
		}
		if ps == nil {
			ps = []models.Proposal{}
		}
		writeJSON(w, http.StatusOK, ps)
	}
}

func GetProposal(store ProposalStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "proposal_id")
		p, err := store.GetProposal(r.Context(), id)
		if err != nil {
			writeError(w, r, err, "failed to get proposal", zap.String("proposal_id", id))
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

// UpdateProposal edits the descriptive fields. The stage only moves through
// the advance and send-back endpoints.
func UpdateProposal(store ProposalStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "proposal_id")
		var req proposalRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, r, err, "invalid request")
			return
		}
		req.normalize()
		if req.Title == "" {
			http.Error(w, "title is required", http.StatusBadRequest)
			return
		}

		p, err := store.GetProposal(r.Context(), id)
		if err != nil {
			writeError(w, r, err, "failed to get proposal", zap.String("proposal_id", id))
			return
		}
		p.Title = req.Title
		p.Agency = req.Agency
		p.SolicitationNumber = req.SolicitationNumber
		p.DueDate = req.DueDate

		updated, err := store.UpdateProposal(r.Context(), p)
		if err != nil {
			writeError(w, r, err, "failed to update proposal", zap.String("proposal_id", id))
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

func DeleteProposal(store ProposalStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "proposal_id")
		if err := section.RequireManager(actorFrom(r)); err != nil {
			writeError(w, r, err, "delete proposal denied", zap.String("proposal_id", id))
			return
		}
		if err := store.DeleteProposal(r.Context(), id); err != nil {
			writeError(w, r, err, "failed to delete proposal", zap.String("proposal_id", id))
			return
		}
		forgetBudget(id)
		zap.L().Info("proposal deleted", zap.String("proposal_id", id))
		w.WriteHeader(http.StatusNoContent)
	}
}

func AdvanceProposal(store ProposalStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "proposal_id")
		p, err := store.GetProposal(r.Context(), id)
		if err != nil {
			writeError(w, r, err, "failed to get proposal", zap.String("proposal_id", id))
			return
		}
		from := p.Stage
		if err := review.Advance(p, actorFrom(r), now()); err != nil {
			writeError(w, r, err, "failed to advance proposal", zap.String("proposal_id", id))
			return
		}
		updated, err := store.UpdateProposal(r.Context(), p)
		if err != nil {
			writeError(w, r, err, "failed to advance proposal", zap.String("proposal_id", id))
			return
		}
		zap.L().Info("proposal advanced", zap.String("proposal_id", id),
			zap.String("from", from), zap.String("to", updated.Stage))
		writeJSON(w, http.StatusOK, updated)
	}
}

func SendBackProposal(store ProposalStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "proposal_id")
		var req struct {
			Note string `json:"note"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, r, err, "invalid request")
			return
		}
		p, err := store.GetProposal(r.Context(), id)
		if err != nil {
			writeError(w, r, err, "failed to get proposal", zap.String("proposal_id", id))
			return
		}
		if err := review.SendBack(p, actorFrom(r), req.Note, now()); err != nil {
			writeError(w, r, err, "failed to send proposal back", zap.String("proposal_id", id))
			return
		}
		updated, err := store.UpdateProposal(r.Context(), p)
		if err != nil {
			writeError(w, r, err, "failed to send proposal back", zap.String("proposal_id", id))
			return
		}
		zap.L().Info("proposal sent back", zap.String("proposal_id", id))
		writeJSON(w, http.StatusOK, updated)
	}
}

func CreateResponse(store ResponseStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		proposalID := chi.URLParam(r, "proposal_id")
		var req struct {
			Title string `json:"title"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, r, err, "invalid request")
			return
		}
		req.Title = strings.TrimSpace(req.Title)
		if req.Title == "" {
			http.Error(w, "title is required", http.StatusBadRequest)
			return
		}
		if _, err := store.GetProposal(r.Context(), proposalID); err != nil {
			writeError(w, r, err, "failed to get proposal", zap.String("proposal_id", proposalID))
			return
		}
		resp, err := store.CreateResponse(r.Context(), &models.Response{
			ID:         uuid.NewString(),
			ProposalID: proposalID,
			Title:      req.Title,
		})
		if err != nil {
			writeError(w, r, err, "failed to create response", zap.String("proposal_id", proposalID))
			return
		}
		writeJSON(w, http.StatusCreated, resp)
	}
}

func ListResponses(store ResponseStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		proposalID := chi.URLParam(r, "proposal_id")
		if _, err := store.GetProposal(r.Context(), proposalID); err != nil {
			writeError(w, r, err, "failed to get proposal", zap.String("proposal_id", proposalID))
			return
		}
		resps, err := store.ListResponses(r.Context(), proposalID)
		if err != nil {
			writeError(w, r, err, "failed to list responses", zap.String("proposal_id", proposalID))
			return
		}
		if resps == nil {
			resps = []models.Response{}
		}
		writeJSON(w, http.StatusOK, resps)
	}
}
