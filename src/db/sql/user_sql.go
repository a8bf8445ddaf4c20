package db

import (
	"context"

	"rfpdesk-server/src/models"

	"github.com/jackc/pgx/v5"
)

const userColumns = `id, username, email, password_hash, person_id, manager, created_at, last_login`

func scanUser(row pgx.CollectableRow) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.PersonID, &u.Manager, &u.CreatedAt, &u.LastLogin)
	return u, err
}

func (s *Store) getUserBy(ctx context.Context, column, value string) (*models.User, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+userColumns+` FROM users WHERE `+column+` = $1`, value)
	if err != nil {
		return nil, mapErr(err, "get user")
	}
	u, err := pgx.CollectExactlyOneRow(rows, scanUser)
	if err != nil {
		return nil, mapErr(err, "get user")
	}
	return &u, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getUserBy(ctx, "username", username)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUserBy(ctx, "email", email)
}

// CreateUser inserts the account and consumes the invitation that admitted it.
func (s *Store) CreateUser(ctx context.Context, req models.RegisterRequest, hashedPassword []byte, inv *models.Invitation) (*models.RegisterResponse, error) {
	resp := models.RegisterResponse{
		Email:    req.Email,
		Username: req.Username,
		PersonID: inv.PersonID,
		Manager:  inv.Manager,
	}
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		query := `
			INSERT INTO users (username, email, password_hash, person_id, manager)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`
		if err := tx.QueryRow(ctx, query, req.Username, req.Email, hashedPassword, inv.PersonID, inv.Manager).Scan(&resp.ID); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `DELETE FROM invitations WHERE id = $1`, inv.ID)
		return err
	})
	if err != nil {
		return nil, mapErr(err, "create user")
	}
	return &resp, nil
}

func (s *Store) UpdateUserLastLogin(ctx context.Context, userID int64) error {
	_, err := s.pool.Exec(ctx, `UPDATE users SET last_login = NOW() WHERE id = $1`, userID)
	return mapErr(err, "update last login")
}

func (s *Store) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if err != nil {
		return nil, mapErr(err, "get user")
	}
	u, err := pgx.CollectExactlyOneRow(rows, scanUser)
	if err != nil {
		return nil, mapErr(err, "get user")
	}
	return &u, nil
}

func (s *Store) UpdateUserPassword(ctx context.Context, userID int64, hashedPassword []byte) error {
	cmd, err := s.pool.Exec(ctx, `UPDATE users SET password_hash = $1 WHERE id = $2`, hashedPassword, userID)
	if err != nil {
		return mapErr(err, "update password")
	}
	if cmd.RowsAffected() == 0 {
		return mapErr(pgx.ErrNoRows, "update password")
	}
	return nil
}
