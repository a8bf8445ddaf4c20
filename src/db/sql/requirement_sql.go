package db

import (
	"context"

	"rfpdesk-server/src/models"

	"github.com/jackc/pgx/v5"
)

// InsertRequirements stores already-validated requirements in one transaction.
func (s *Store) InsertRequirements(ctx context.Context, reqs []models.Requirement) error {
	if len(reqs) == 0 {
		return nil
	}
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		_, err := tx.CopyFrom(ctx,
			pgx.Identifier{"requirements"},
			[]string{"id", "proposal_id", "text", "section", "priority", "highlight_start", "highlight_end", "created_at"},
			pgx.CopyFromSlice(len(reqs), func(i int) ([]interface{}, error) {
				r := reqs[i]
				return []interface{}{r.ID, r.ProposalID, r.Text, r.Section, string(r.Priority),
					r.HighlightStart, r.HighlightEnd, r.CreatedAt}, nil
			}),
		)
		return err
	})
	return mapErr(err, "insert requirements")
}

func (s *Store) ListRequirements(ctx context.Context, proposalID string) ([]models.Requirement, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, proposal_id, text, section, priority, highlight_start, highlight_end, created_at
		FROM requirements WHERE proposal_id = $1
		ORDER BY created_at, section
	`, proposalID)
	if err != nil {
		return nil, mapErr(err, "list requirements")
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Requirement, error) {
		var r models.Requirement
		var priority string
		err := row.Scan(&r.ID, &r.ProposalID, &r.Text, &r.Section, &priority, &r.HighlightStart, &r.HighlightEnd, &r.CreatedAt)
		r.Priority = models.Priority(priority)
		return r, err
	})
	return out, mapErr(err, "list requirements")
}
