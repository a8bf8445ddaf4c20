package db

import (
	"context"

	cache "rfpdesk-server/src/db"
	"rfpdesk-server/src/models"

	"github.com/jackc/pgx/v5"
)

const personsCacheKey = "persons:all"

const personColumns = `id, full_name, title, hourly_rate::text, email, created_at`

func scanPerson(row pgx.CollectableRow) (models.Person, error) {
	var p models.Person
	var rate *string
	if err := row.Scan(&p.ID, &p.FullName, &p.Title, &rate, &p.Email, &p.CreatedAt); err != nil {
		return p, err
	}
	r, err := parseNullDecimal(rate)
	if err != nil {
		return p, err
	}
	p.HourlyRate = r
	return p, nil
}

func (s *Store) ListPersons(ctx context.Context) ([]models.Person, error) {
	gen := s.cache.Generation(cache.PersonCache)
	if v, ok := s.cache.Get(personsCacheKey); ok {
		if persons, ok := v.([]models.Person); ok {
			return persons, nil
		}
	}

	rows, err := s.pool.Query(ctx, `SELECT `+personColumns+` FROM persons ORDER BY full_name`)
	if err != nil {
		return nil, mapErr(err, "list persons")
	}
	persons, err := pgx.CollectRows(rows, scanPerson)
	if err != nil {
		return nil, mapErr(err, "list persons")
	}
	s.cache.Set(cache.PersonCache, personsCacheKey, persons, gen)
	return persons, nil
}

func (s *Store) GetPerson(ctx context.Context, id string) (*models.Person, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+personColumns+` FROM persons WHERE id = $1`, id)
	if err != nil {
		return nil, mapErr(err, "get person")
	}
	p, err := pgx.CollectExactlyOneRow(rows, scanPerson)
	if err != nil {
		return nil, mapErr(err, "get person")
	}
	return &p, nil
}

func (s *Store) CreatePerson(ctx context.Context, p *models.Person) (*models.Person, error) {
	query := `
		INSERT INTO persons (id, full_name, title, hourly_rate, email)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + personColumns
	rows, err := s.pool.Query(ctx, query, p.ID, p.FullName, p.Title, decimalArg(p.HourlyRate), p.Email)
	if err != nil {
		return nil, mapErr(err, "create person")
	}
	created, err := pgx.CollectExactlyOneRow(rows, scanPerson)
	if err != nil {
		return nil, mapErr(err, "create person")
	}
	s.cache.Del(cache.PersonCache, personsCacheKey)
	return &created, nil
}
