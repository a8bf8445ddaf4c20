package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"rfpdesk-server/src/models"
	"rfpdesk-server/src/util"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func CreateInvitation(store InvitationStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string `json:"email"`
			PersonID string `json:"person_id"`
			Manager  bool   `json:"manager"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.PersonID == "" {
			badRequest(w, r, err, "invalid request")
			return
		}

		req.Email = util.NormalizeEmail(req.Email)
		if !util.ValidateEmail(req.Email) {
			zap.L().Warn("email validation failed for invitation", zap.String("email", req.Email))
			http.Error(w, "invalid email format", http.StatusBadRequest)
			return
		}

		if _, err := store.GetPerson(r.Context(), req.PersonID); err != nil {
			writeError(w, r, err, "failed to look up person", zap.String("person_id", req.PersonID))
			return
		}

		inv, err := store.CreateInvitation(r.Context(), &models.Invitation{
			Email:    req.Email,
			PersonID: req.PersonID,
			Manager:  req.Manager,
		})
		if err != nil {
			writeError(w, r, err, "failed to create invitation")
			return
		}
		zap.L().Info("invitation created", zap.String("email", inv.Email), zap.Int64("id", inv.ID))
		writeJSON(w, http.StatusCreated, inv)
	}
}

func ListInvitations(store InvitationStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		invs, err := store.ListInvitations(r.Context())
		if err != nil {
			writeError(w, r, err, "failed to list invitations")
			return
		}
		if invs == nil {
			invs = []models.Invitation{}
		}
		writeJSON(w, http.StatusOK, invs)
	}
}

func DeleteInvitation(store InvitationStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		idStr := chi.URLParam(r, "invitation_id")
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			badRequest(w, r, err, "invalid id")
			return
		}
		if err := store.DeleteInvitation(r.Context(), id); err != nil {
			writeError(w, r, err, "failed to delete invitation", zap.Int64("id", id))
			return
		}
		zap.L().Info("invitation deleted", zap.Int64("id", id))
		w.WriteHeader(http.StatusNoContent)
	}
}

// ClearCache drops every entry of one named read cache.
func ClearCache(store interface{ ClearCache(string) error }) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "cache_name")
		if err := store.ClearCache(name); err != nil {
			zap.L().Warn("cache clear rejected", zap.String("cache", name), zap.Error(err))
			http.Error(w, "unknown cache", http.StatusBadRequest)
			return
		}
		zap.L().Info("cache cleared", zap.String("cache", name))
		writeJSON(w, http.StatusOK, map[string]string{"cleared": name})
	}
}
