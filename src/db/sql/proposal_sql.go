package db

import (
	"context"

	cache "rfpdesk-server/src/db"
	"rfpdesk-server/src/models"

	"github.com/jackc/pgx/v5"
)

const proposalColumns = `id, title, agency, solicitation_number, due_date, stage, review_note, created_by, created_at, updated_at`

func scanProposal(row pgx.CollectableRow) (models.Proposal, error) {
	var p models.Proposal
	err := row.Scan(&p.ID, &p.Title, &p.Agency, &p.SolicitationNumber, &p.DueDate,
		&p.Stage, &p.ReviewNote, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (s *Store) CreateProposal(ctx context.Context, p *models.Proposal) (*models.Proposal, error) {
	query := `
		INSERT INTO proposals (id, title, agency, solicitation_number, due_date, stage, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + proposalColumns
	rows, err := s.pool.Query(ctx, query, p.ID, p.Title, p.Agency, p.SolicitationNumber, p.DueDate, p.Stage, p.CreatedBy)
	if err != nil {
		return nil, mapErr(err, "create proposal")
	}
	created, err := pgx.CollectExactlyOneRow(rows, scanProposal)
	if err != nil {
		return nil, mapErr(err, "create proposal")
	}
	return &created, nil
}

func (s *Store) GetProposal(ctx context.Context, id string) (*models.Proposal, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+proposalColumns+` FROM proposals WHERE id = $1`, id)
	if err != nil {
		return nil, mapErr(err, "get proposal")
	}
	p, err := pgx.CollectExactlyOneRow(rows, scanProposal)
	if err != nil {
		return nil, mapErr(err, "get proposal")
	}
	return &p, nil
}

func (s *Store) ListProposals(ctx context.Context) ([]models.Proposal, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+proposalColumns+` FROM proposals ORDER BY created_at DESC`)
	if err != nil {
		return nil, mapErr(err, "list proposals")
	}
	out, err := pgx.CollectRows(rows, scanProposal)
	return out, mapErr(err, "list proposals")
}

// UpdateProposal writes the editable fields and the review stage.
func (s *Store) UpdateProposal(ctx context.Context, p *models.Proposal) (*models.Proposal, error) {
	query := `
		UPDATE proposals
		SET title = $1, agency = $2, solicitation_number = $3, due_date = $4,
			stage = $5, review_note = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING ` + proposalColumns
	rows, err := s.pool.Query(ctx, query, p.Title, p.Agency, p.SolicitationNumber, p.DueDate, p.Stage, p.ReviewNote, p.ID)
	if err != nil {
		return nil, mapErr(err, "update proposal")
	}
	updated, err := pgx.CollectExactlyOneRow(rows, scanProposal)
	if err != nil {
		return nil, mapErr(err, "update proposal")
	}
	return &updated, nil
}

// DeleteProposal removes the proposal; budget rows, responses and
// requirements cascade.
func (s *Store) DeleteProposal(ctx context.Context, id string) error {
	cmd, err := s.pool.Exec(ctx, `DELETE FROM proposals WHERE id = $1`, id)
	if err != nil {
		return mapErr(err, "delete proposal")
	}
	if cmd.RowsAffected() == 0 {
		return mapErr(pgx.ErrNoRows, "delete proposal")
	}
	s.cache.Del(cache.BudgetCache, budgetCacheKey(id))
	return nil
}

func scanResponse(row pgx.CollectableRow) (models.Response, error) {
	var r models.Response
	err := row.Scan(&r.ID, &r.ProposalID, &r.Title, &r.CreatedAt)
	return r, err
}

func (s *Store) CreateResponse(ctx context.Context, r *models.Response) (*models.Response, error) {
	rows, err := s.pool.Query(ctx, `
		INSERT INTO responses (id, proposal_id, title)
		VALUES ($1, $2, $3)
		RETURNING id, proposal_id, title, created_at
	`, r.ID, r.ProposalID, r.Title)
	if err != nil {
		return nil, mapErr(err, "create response")
	}
	created, err := pgx.CollectExactlyOneRow(rows, scanResponse)
	if err != nil {
		return nil, mapErr(err, "create response")
	}
	return &created, nil
}

func (s *Store) GetResponse(ctx context.Context, id string) (*models.Response, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, proposal_id, title, created_at FROM responses WHERE id = $1`, id)
	if err != nil {
		return nil, mapErr(err, "get response")
	}
	r, err := pgx.CollectExactlyOneRow(rows, scanResponse)
	if err != nil {
		return nil, mapErr(err, "get response")
	}
	return &r, nil
}

func (s *Store) ListResponses(ctx context.Context, proposalID string) ([]models.Response, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, proposal_id, title, created_at FROM responses
		WHERE proposal_id = $1 ORDER BY created_at
	`, proposalID)
	if err != nil {
		return nil, mapErr(err, "list responses")
	}
	out, err := pgx.CollectRows(rows, scanResponse)
	return out, mapErr(err, "list responses")
}
