package db

import (
	"context"

	"rfpdesk-server/src/models"

	"github.com/jackc/pgx/v5"
)

func scanInvitation(row pgx.CollectableRow) (models.Invitation, error) {
	var i models.Invitation
	err := row.Scan(&i.ID, &i.Email, &i.PersonID, &i.Manager, &i.CreatedAt)
	return i, err
}

func (s *Store) CreateInvitation(ctx context.Context, inv *models.Invitation) (*models.Invitation, error) {
	query := `
		INSERT INTO invitations (email, person_id, manager)
		VALUES ($1, $2, $3)
		RETURNING id, email, person_id, manager, created_at
	`
	rows, err := s.pool.Query(ctx, query, inv.Email, inv.PersonID, inv.Manager)
	if err != nil {
		return nil, mapErr(err, "create invitation")
	}
	created, err := pgx.CollectExactlyOneRow(rows, scanInvitation)
	if err != nil {
		return nil, mapErr(err, "create invitation")
	}
	return &created, nil
}

func (s *Store) ListInvitations(ctx context.Context) ([]models.Invitation, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, email, person_id, manager, created_at FROM invitations ORDER BY id`)
	if err != nil {
		return nil, mapErr(err, "list invitations")
	}
	out, err := pgx.CollectRows(rows, scanInvitation)
	return out, mapErr(err, "list invitations")
}

// GetInvitationByEmail matches case-insensitively.
func (s *Store) GetInvitationByEmail(ctx context.Context, email string) (*models.Invitation, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, email, person_id, manager, created_at FROM invitations
		WHERE LOWER(TRIM(email)) = LOWER(TRIM($1))
	`, email)
	if err != nil {
		return nil, mapErr(err, "get invitation")
	}
	inv, err := pgx.CollectExactlyOneRow(rows, scanInvitation)
	if err != nil {
		return nil, mapErr(err, "get invitation")
	}
	return &inv, nil
}

func (s *Store) DeleteInvitation(ctx context.Context, id int64) error {
	cmd, err := s.pool.Exec(ctx, `DELETE FROM invitations WHERE id = $1`, id)
	if err != nil {
		return mapErr(err, "delete invitation")
	}
	if cmd.RowsAffected() == 0 {
		return mapErr(pgx.ErrNoRows, "delete invitation")
	}
	return nil
}
