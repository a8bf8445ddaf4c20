package db

import (
	"context"
	"errors"

	"rfpdesk-server/src/models"

	"github.com/jackc/pgx/v5"
)

const sectionColumns = `id, response_id, title, content, order_index, assigned_person_id,
	is_locked, locked_by_person_id, version, created_at, updated_at`

func scanSection(row pgx.CollectableRow) (models.Section, error) {
	var s models.Section
	err := row.Scan(&s.ID, &s.ResponseID, &s.Title, &s.Content, &s.OrderIndex, &s.AssignedPersonID,
		&s.Locked, &s.LockedByPersonID, &s.Version, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func (s *Store) LoadSections(ctx context.Context, responseID string) ([]models.Section, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+sectionColumns+` FROM response_sections
		WHERE response_id = $1 ORDER BY order_index, created_at
	`, responseID)
	if err != nil {
		return nil, mapErr(err, "load sections")
	}
	out, err := pgx.CollectRows(rows, scanSection)
	return out, mapErr(err, "load sections")
}

func (s *Store) GetSection(ctx context.Context, id string) (*models.Section, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+sectionColumns+` FROM response_sections WHERE id = $1`, id)
	if err != nil {
		return nil, mapErr(err, "get section")
	}
	sec, err := pgx.CollectExactlyOneRow(rows, scanSection)
	if err != nil {
		return nil, mapErr(err, "get section")
	}
	return &sec, nil
}

const insertSection = `
	INSERT INTO response_sections (id, response_id, title, content, order_index, version)
	VALUES ($1, $2, $3, $4, $5, 1)
	RETURNING ` + sectionColumns

func (s *Store) CreateSection(ctx context.Context, sec *models.Section) (*models.Section, error) {
	rows, err := s.pool.Query(ctx, insertSection, sec.ID, sec.ResponseID, sec.Title, sec.Content, sec.OrderIndex)
	if err != nil {
		return nil, mapErr(err, "create section")
	}
	created, err := pgx.CollectExactlyOneRow(rows, scanSection)
	if err != nil {
		return nil, mapErr(err, "create section")
	}
	return &created, nil
}

// CreateSections inserts a batch of sections atomically, as when a template
// is applied to a response.
func (s *Store) CreateSections(ctx context.Context, secs []models.Section) ([]models.Section, error) {
	out := make([]models.Section, 0, len(secs))
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		for _, sec := range secs {
			rows, err := tx.Query(ctx, insertSection, sec.ID, sec.ResponseID, sec.Title, sec.Content, sec.OrderIndex)
			if err != nil {
				return err
			}
			created, err := pgx.CollectExactlyOneRow(rows, scanSection)
			if err != nil {
				return err
			}
			out = append(out, created)
		}
		return nil
	})
	if err != nil {
		return nil, mapErr(err, "create sections")
	}
	return out, nil
}

// UpdateSection writes sec only if the stored version still equals
// sec.Version, then bumps the version. A lost race yields ErrVersionConflict.
func (s *Store) UpdateSection(ctx context.Context, sec *models.Section) (*models.Section, error) {
	query := `
		UPDATE response_sections
		SET title = $1, content = $2, order_index = $3, assigned_person_id = $4,
			is_locked = $5, locked_by_person_id = $6, version = version + 1, updated_at = NOW()
		WHERE id = $7 AND version = $8
		RETURNING ` + sectionColumns
	rows, err := s.pool.Query(ctx, query, sec.Title, sec.Content, sec.OrderIndex, sec.AssignedPersonID,
		sec.Locked, sec.LockedByPersonID, sec.ID, sec.Version)
	if err != nil {
		return nil, mapErr(err, "update section")
	}
	updated, err := pgx.CollectExactlyOneRow(rows, scanSection)
	if errors.Is(err, pgx.ErrNoRows) {
		var exists bool
		if qerr := s.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM response_sections WHERE id = $1)`, sec.ID).Scan(&exists); qerr != nil {
			return nil, mapErr(qerr, "update section")
		}
		if exists {
			return nil, ErrVersionConflict
		}
	}
	if err != nil {
		return nil, mapErr(err, "update section")
	}
	return &updated, nil
}

func (s *Store) DeleteSection(ctx context.Context, id string) error {
	cmd, err := s.pool.Exec(ctx, `DELETE FROM response_sections WHERE id = $1`, id)
	if err != nil {
		return mapErr(err, "delete section")
	}
	if cmd.RowsAffected() == 0 {
		return mapErr(pgx.ErrNoRows, "delete section")
	}
	return nil
}
