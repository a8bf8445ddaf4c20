package db

import (
	"context"
	"fmt"

	cache "rfpdesk-server/src/db"
	"rfpdesk-server/src/models"

	"github.com/jackc/pgx/v5"
)

func budgetCacheKey(proposalID string) string {
	return "budget:" + proposalID
}

func scanBudgetRow(row pgx.CollectableRow) (models.BudgetRow, error) {
	var b models.BudgetRow
	var override *string
	var hours [models.BudgetYears]string
	err := row.Scan(&b.ID, &b.ProposalID, &b.PersonID, &b.Title, &override,
		&hours[0], &hours[1], &hours[2], &hours[3], &hours[4], &b.Position)
	if err != nil {
		return b, err
	}
	if b.RateOverride, err = parseNullDecimal(override); err != nil {
		return b, err
	}
	for i, h := range hours {
		if b.Hours[i], err = parseDecimal(h); err != nil {
			return b, fmt.Errorf("year %d hours: %w", i+1, err)
		}
	}
	return b, nil
}

// LoadRows returns the budget rows of a proposal in display order.
func (s *Store) LoadRows(ctx context.Context, proposalID string) ([]models.BudgetRow, error) {
	key := budgetCacheKey(proposalID)
	gen := s.cache.Generation(cache.BudgetCache)
	if v, ok := s.cache.Get(key); ok {
		if rows, ok := v.([]models.BudgetRow); ok {
			return append([]models.BudgetRow(nil), rows...), nil
		}
	}

	query := `
		SELECT id, proposal_id, person_id, title, rate_override::text,
			year1_hours::text, year2_hours::text, year3_hours::text, year4_hours::text, year5_hours::text,
			position
		FROM budget_rows WHERE proposal_id = $1
		ORDER BY position, id
	`
	rows, err := s.pool.Query(ctx, query, proposalID)
	if err != nil {
		return nil, mapErr(err, "load budget rows")
	}
	out, err := pgx.CollectRows(rows, scanBudgetRow)
	if err != nil {
		return nil, mapErr(err, "load budget rows")
	}
	s.cache.Set(cache.BudgetCache, key, out, gen)
	return append([]models.BudgetRow(nil), out...), nil
}

// SaveRows replaces the whole budget of a proposal: every prior row is
// deleted and the given set inserted, in one transaction.
func (s *Store) SaveRows(ctx context.Context, proposalID string, rows []models.BudgetRow) error {
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM budget_rows WHERE proposal_id = $1`, proposalID); err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}

		insert := `
			INSERT INTO budget_rows (id, proposal_id, person_id, title, rate_override,
				year1_hours, year2_hours, year3_hours, year4_hours, year5_hours, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`
		batch := &pgx.Batch{}
		for i, r := range rows {
			batch.Queue(insert, r.ID, proposalID, r.PersonID, r.Title, decimalArg(r.RateOverride),
				r.Hours[0].String(), r.Hours[1].String(), r.Hours[2].String(), r.Hours[3].String(), r.Hours[4].String(),
				i)
		}
		br := tx.SendBatch(ctx, batch)
		for range rows {
			if _, err := br.Exec(); err != nil {
				br.Close()
				return err
			}
		}
		return br.Close()
	})
	s.cache.Del(cache.BudgetCache, budgetCacheKey(proposalID))
	return mapErr(err, "save budget rows")
}
