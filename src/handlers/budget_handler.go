package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"rfpdesk-server/src/budget"
	"rfpdesk-server/src/export"
	"rfpdesk-server/src/models"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// budgetLocks serializes read-modify-write cycles on one proposal's budget
// within this process. Saves replace the whole collection.
var budgetLocks sync.Map

func lockBudget(proposalID string) func() {
	v, _ := budgetLocks.LoadOrStore(proposalID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// forgetBudget drops the lock of a deleted proposal. An edit still holding
// the old mutex fails on the missing proposal when it saves.
func forgetBudget(proposalID string) {
	budgetLocks.Delete(proposalID)
}

// loadLedger fetches the proposal, the person directory and the saved rows
// concurrently and assembles them into a ledger.
func loadLedger(ctx context.Context, store BudgetStore, proposalID string) (*models.Proposal, *budget.Ledger, error) {
	var (
		proposal *models.Proposal
		persons  []models.Person
		rows     []models.BudgetRow
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		proposal, err = store.GetProposal(gctx, proposalID)
		return err
	})
	g.Go(func() error {
		var err error
		persons, err = store.ListPersons(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		rows, err = store.LoadRows(gctx, proposalID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	ledger, err := budget.NewLedger(proposalID, persons, rows)
	if err != nil {
		return nil, nil, err
	}
	return proposal, ledger, nil
}

func GetBudget(store BudgetStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		proposalID := chi.URLParam(r, "proposal_id")
		_, ledger, err := loadLedger(r.Context(), store, proposalID)
		if err != nil {
			writeError(w, r, err, "failed to load budget", zap.String("proposal_id", proposalID))
			return
		}
		writeJSON(w, http.StatusOK, ledger.Summary())
	}
}

// editBudget wraps one ledger mutation: load, apply, save, answer with the
// fresh summary. apply returns the status to answer with.
func editBudget(store BudgetStore, what string, apply func(r *http.Request, l *budget.Ledger) (int, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		proposalID := chi.URLParam(r, "proposal_id")
		unlock := lockBudget(proposalID)
		defer unlock()

		_, ledger, err := loadLedger(r.Context(), store, proposalID)
		if err != nil {
			writeError(w, r, err, "failed to load budget", zap.String("proposal_id", proposalID))
			return
		}
		status, err := apply(r, ledger)
		if err != nil {
			writeError(w, r, err, "failed to "+what, zap.String("proposal_id", proposalID))
			return
		}
		if err := store.SaveRows(r.Context(), proposalID, ledger.Rows()); err != nil {
			writeError(w, r, err, "failed to save budget", zap.String("proposal_id", proposalID))
			return
		}
		zap.L().Info("budget updated", zap.String("proposal_id", proposalID),
			zap.String("op", what), zap.String("actor", actorFrom(r).ID))
		writeJSON(w, status, ledger.Summary())
	}
}

type budgetRowRequest struct {
	PersonID     string            `json:"person_id"`
	Title        *string           `json:"title"`
	RateOverride *decimal.Decimal  `json:"rate_override"`
	Hours        []decimal.Decimal `json:"hours"`
}

// ReplaceBudget swaps the whole row collection for the submitted one.
func ReplaceBudget(store BudgetStore) http.HandlerFunc {
	return editBudget(store, "replace budget", func(r *http.Request, l *budget.Ledger) (int, error) {
		var req struct {
			Rows []budgetRowRequest `json:"rows"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return 0, invalidBody(err)
		}
		for _, row := range l.Rows() {
			l.RemoveRow(row.ID)
		}
		for _, in := range req.Rows {
			person, ok := l.Person(in.PersonID)
			if !ok {
				return 0, fmt.Errorf("%w: %s", budget.ErrPersonNotFound, in.PersonID)
			}
			if len(in.Hours) > models.BudgetYears {
				return 0, fmt.Errorf("%w: %d", budget.ErrInvalidYear, len(in.Hours))
			}
			row, err := l.AddRow(person)
			if err != nil {
				return 0, err
			}
			if in.Title != nil {
				if err := l.SetTitle(row.ID, strings.TrimSpace(*in.Title)); err != nil {
					return 0, err
				}
			}
			if err := l.SetRateOverride(row.ID, in.RateOverride); err != nil {
				return 0, err
			}
			for i, h := range in.Hours {
				if err := l.SetHours(row.ID, i+1, h); err != nil {
					return 0, err
				}
			}
		}
		return http.StatusOK, nil
	})
}

func AddBudgetRow(store BudgetStore) http.HandlerFunc {
	return editBudget(store, "add budget row", func(r *http.Request, l *budget.Ledger) (int, error) {
		var req struct {
			PersonID string `json:"person_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return 0, invalidBody(err)
		}
		person, ok := l.Person(req.PersonID)
		if !ok {
			return 0, fmt.Errorf("%w: %s", budget.ErrPersonNotFound, req.PersonID)
		}
		if _, err := l.AddRow(person); err != nil {
			return 0, err
		}
		return http.StatusCreated, nil
	})
}

func DeleteBudgetRow(store BudgetStore) http.HandlerFunc {
	return editBudget(store, "delete budget row", func(r *http.Request, l *budget.Ledger) (int, error) {
		l.RemoveRow(chi.URLParam(r, "row_id"))
		return http.StatusOK, nil
	})
}

func SetBudgetHours(store BudgetStore) http.HandlerFunc {
	return editBudget(store, "set hours", func(r *http.Request, l *budget.Ledger) (int, error) {
		var req struct {
			Year  int             `json:"year"`
			Hours decimal.Decimal `json:"hours"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return 0, fmt.Errorf("%w: %v", budget.ErrInvalidHours, err)
		}
		return http.StatusOK, l.SetHours(chi.URLParam(r, "row_id"), req.Year, req.Hours)
	})
}

// SetBudgetRate pins a row's rate. A null rate clears the override.
func SetBudgetRate(store BudgetStore) http.HandlerFunc {
	return editBudget(store, "set rate", func(r *http.Request, l *budget.Ledger) (int, error) {
		var req struct {
			Rate *decimal.Decimal `json:"rate"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return 0, fmt.Errorf("%w: %v", budget.ErrInvalidRate, err)
		}
		return http.StatusOK, l.SetRateOverride(chi.URLParam(r, "row_id"), req.Rate)
	})
}

func SetBudgetTitle(store BudgetStore) http.HandlerFunc {
	return editBudget(store, "set title", func(r *http.Request, l *budget.Ledger) (int, error) {
		var req struct {
			Title string `json:"title"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return 0, invalidBody(err)
		}
		return http.StatusOK, l.SetTitle(chi.URLParam(r, "row_id"), strings.TrimSpace(req.Title))
	})
}

// ExportBudget streams the budget table as CSV or a Word-compatible HTML
// document, chosen by the format query parameter.
func ExportBudget(store BudgetStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		proposalID := chi.URLParam(r, "proposal_id")
		format := strings.ToLower(r.URL.Query().Get("format"))
		contentType, ext, ok := export.ContentType(format)
		if !ok {
			zap.L().Warn("unsupported export format", zap.String("format", format))
			http.Error(w, "unsupported export format", http.StatusBadRequest)
			return
		}

		proposal, ledger, err := loadLedger(r.Context(), store, proposalID)
		if err != nil {
			writeError(w, r, err, "failed to load budget", zap.String("proposal_id", proposalID))
			return
		}

		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="budget-%s.%s"`, proposalID, ext))
		table := ledger.Export()
		if ext == "csv" {
			err = export.WriteCSV(w, table)
		} else {
			err = export.WriteHTML(w, proposal.Title+" Budget", table)
		}
		if err != nil {
			zap.L().Error("failed to write budget export", zap.String("proposal_id", proposalID), zap.Error(err))
		}
	}
}
