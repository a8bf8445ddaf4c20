package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"rfpdesk-server/src/budget"
	"rfpdesk-server/src/models"
	"rfpdesk-server/src/util"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func ListPersons(store PersonStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		persons, err := store.ListPersons(r.Context())
		if err != nil {
			writeError(w, r, err, "failed to list persons")
			return
		}
		if persons == nil {
			persons = []models.Person{}
		}
		writeJSON(w, http.StatusOK, persons)
	}
}

func GetPerson(store PersonStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "person_id")
		p, err := store.GetPerson(r.Context(), id)
		if err != nil {
			writeError(w, r, err, "failed to get person", zap.String("person_id", id))
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func CreatePerson(store PersonStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			FullName   string           `json:"full_name"`
			Title      string           `json:"title"`
			HourlyRate *decimal.Decimal `json:"hourly_rate"`
			Email      string           `json:"email"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, r, err, "invalid request")
			return
		}
		req.FullName = strings.TrimSpace(req.FullName)
		if req.FullName == "" {
			http.Error(w, "full_name is required", http.StatusBadRequest)
			return
		}
		if req.HourlyRate != nil {
			if err := budget.CheckRate(*req.HourlyRate); err != nil {
				writeError(w, r, err, "invalid hourly rate")
				return
			}
		}
		if req.Email != "" {
			req.Email = util.NormalizeEmail(req.Email)
			if !util.ValidateEmail(req.Email) {
				http.Error(w, "invalid email format", http.StatusBadRequest)
				return
			}
		}

		p, err := store.CreatePerson(r.Context(), &models.Person{
			ID:         uuid.NewString(),
			FullName:   req.FullName,
			Title:      strings.TrimSpace(req.Title),
			HourlyRate: req.HourlyRate,
			Email:      req.Email,
		})
		if err != nil {
			writeError(w, r, err, "failed to create person")
			return
		}
		zap.L().Info("person created", zap.String("person_id", p.ID), zap.String("name", p.FullName))
		writeJSON(w, http.StatusCreated, p)
	}
}
