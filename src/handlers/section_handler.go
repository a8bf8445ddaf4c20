package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	db "rfpdesk-server/src/db/sql"
	"rfpdesk-server/src/models"
	"rfpdesk-server/src/section"
	"rfpdesk-server/src/templates"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func ListSections(store SectionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responseID := chi.URLParam(r, "response_id")
		if _, err := store.GetResponse(r.Context(), responseID); err != nil {
			writeError(w, r, err, "failed to get response", zap.String("response_id", responseID))
			return
		}
		secs, err := store.LoadSections(r.Context(), responseID)
		if err != nil {
			writeError(w, r, err, "failed to list sections", zap.String("response_id", responseID))
			return
		}
		if secs == nil {
			secs = []models.Section{}
		}
		writeJSON(w, http.StatusOK, secs)
	}
}

func CreateSection(store SectionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responseID := chi.URLParam(r, "response_id")
		if err := section.RequireManager(actorFrom(r)); err != nil {
			writeError(w, r, err, "create section denied")
			return
		}
		var req struct {
			Title      string `json:"title"`
			Content    string `json:"content"`
			OrderIndex *int   `json:"order_index"`
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
		if _, err := store.GetResponse(r.Context(), responseID); err != nil {
			writeError(w, r, err, "failed to get response", zap.String("response_id", responseID))
			return
		}

		order := 0
		if req.OrderIndex != nil {
			order = *req.OrderIndex
		} else {
			existing, err := store.LoadSections(r.Context(), responseID)
			if err != nil {
				writeError(w, r, err, "failed to list sections", zap.String("response_id", responseID))
				return
			}
			order = nextOrder(existing)
		}

		sec := section.New(uuid.NewString(), responseID, req.Title, req.Content, order, now())
		created, err := store.CreateSection(r.Context(), &sec)
		if err != nil {
			writeError(w, r, err, "failed to create section", zap.String("response_id", responseID))
			return
		}
		zap.L().Info("section created", zap.String("section_id", created.ID), zap.String("response_id", responseID))
		writeJSON(w, http.StatusCreated, created)
	}
}

// ApplyTemplate appends every blueprint of a template to the response as
// new unassigned sections.
func ApplyTemplate(store SectionStore, lib *templates.Library) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responseID := chi.URLParam(r, "response_id")
		if err := section.RequireManager(actorFrom(r)); err != nil {
			writeError(w, r, err, "apply template denied")
			return
		}
		var req struct {
			TemplateID string `json:"template_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, r, err, "invalid request")
			return
		}
		tmpl, err := lib.Get(req.TemplateID)
		if err != nil {
			writeError(w, r, err, "failed to apply template", zap.String("template_id", req.TemplateID))
			return
		}
		if _, err := store.GetResponse(r.Context(), responseID); err != nil {
			writeError(w, r, err, "failed to get response", zap.String("response_id", responseID))
			return
		}
		existing, err := store.LoadSections(r.Context(), responseID)
		if err != nil {
			writeError(w, r, err, "failed to list sections", zap.String("response_id", responseID))
			return
		}

		start := nextOrder(existing)
		ts := now()
		secs := make([]models.Section, 0, len(tmpl.Sections))
		for i, bp := range tmpl.Sections {
			secs = append(secs, section.New(uuid.NewString(), responseID, bp.Title, bp.Content, start+i, ts))
		}
		created, err := store.CreateSections(r.Context(), secs)
		if err != nil {
			writeError(w, r, err, "failed to apply template", zap.String("response_id", responseID))
			return
		}
		zap.L().Info("template applied", zap.String("template_id", tmpl.ID),
			zap.String("response_id", responseID), zap.Int("sections", len(created)))
		writeJSON(w, http.StatusCreated, created)
	}
}

func nextOrder(secs []models.Section) int {
	next := 0
	for _, s := range secs {
		if s.OrderIndex >= next {
			next = s.OrderIndex + 1
		}
	}
	return next
}

// UpdateSection edits title and content. A client that sends the version it
// last read gets 409 instead of overwriting a newer edit.
func UpdateSection(store SectionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Title   string `json:"title"`
			Content string `json:"content"`
			Version *int   `json:"version"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, r, err, "invalid request")
			return
		}
		transitionSection(w, r, store, "edit section", func(s *models.Section, actor section.Actor, ts time.Time) error {
			if req.Version != nil && *req.Version != s.Version {
				return fmt.Errorf("%w: have %d, sent %d", db.ErrVersionConflict, s.Version, *req.Version)
			}
			return section.EditContent(s, actor, strings.TrimSpace(req.Title), req.Content, ts)
		})
	}
}

func AssignSection(store SectionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			PersonID string `json:"person_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PersonID == "" {
			badRequest(w, r, err, "invalid request")
			return
		}
		if _, err := store.GetPerson(r.Context(), req.PersonID); err != nil {
			writeError(w, r, err, "failed to look up person", zap.String("person_id", req.PersonID))
			return
		}
		transitionSection(w, r, store, "assign section", func(s *models.Section, actor section.Actor, ts time.Time) error {
			return section.Assign(s, actor, req.PersonID, ts)
		})
	}
}

func UnassignSection(store SectionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		transitionSection(w, r, store, "unassign section", section.Unassign)
	}
}

func LockSection(store SectionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		transitionSection(w, r, store, "lock section", section.Lock)
	}
}

func UnlockSection(store SectionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		transitionSection(w, r, store, "unlock section", section.Unlock)
	}
}

// transitionSection loads the section, applies fn and writes it back with a
// version check so concurrent transitions cannot both win.
func transitionSection(w http.ResponseWriter, r *http.Request, store SectionStore, what string,
	fn func(*models.Section, section.Actor, time.Time) error) {
	id := chi.URLParam(r, "section_id")
	actor := actorFrom(r)

	sec, err := store.GetSection(r.Context(), id)
	if err != nil {
		writeError(w, r, err, "failed to get section", zap.String("section_id", id))
		return
	}
	before := *sec
	if err := fn(sec, actor, now()); err != nil {
		writeError(w, r, err, "failed to "+what, zap.String("section_id", id))
		return
	}
	if sectionUnchanged(before, *sec) {
		writeJSON(w, http.StatusOK, sec)
		return
	}
	updated, err := store.UpdateSection(r.Context(), sec)
	if err != nil {
		writeError(w, r, err, "failed to "+what, zap.String("section_id", id))
		return
	}
	zap.L().Info(what, zap.String("section_id", id), zap.String("actor", actor.ID),
		zap.String("state", string(section.StateOf(updated))), zap.Int("version", updated.Version))
	writeJSON(w, http.StatusOK, updated)
}

func sectionUnchanged(a, b models.Section) bool {
	return a.Title == b.Title && a.Content == b.Content &&
		a.Locked == b.Locked &&
		equalRef(a.AssignedPersonID, b.AssignedPersonID) &&
		equalRef(a.LockedByPersonID, b.LockedByPersonID)
}

func equalRef(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func DeleteSection(store SectionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "section_id")
		if err := section.RequireManager(actorFrom(r)); err != nil {
			writeError(w, r, err, "delete section denied", zap.String("section_id", id))
			return
		}
		if err := store.DeleteSection(r.Context(), id); err != nil {
			writeError(w, r, err, "failed to delete section", zap.String("section_id", id))
			return
		}
		zap.L().Info("section deleted", zap.String("section_id", id))
		w.WriteHeader(http.StatusNoContent)
	}
}

func ListTemplates(lib *templates.Library) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, lib.List())
	}
}
