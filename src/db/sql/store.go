package db

import (
	"errors"
	"fmt"

	cache "rfpdesk-server/src/db"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound = errors.New("not found")

	// ErrConflict wraps unique-constraint violations.
	ErrConflict = errors.New("already exists")

	// ErrVersionConflict is returned when a conditional update lost a race.
	ErrVersionConflict = errors.New("record was modified concurrently")
)

// Store is the Postgres persistence adapter. Reads of the person directory
// and budget rows go through the read cache when one is configured.
type Store struct {
	pool  *pgxpool.Pool
	cache *cache.Cache
}

func NewStore(pool *pgxpool.Pool, c *cache.Cache) *Store {
	return &Store{pool: pool, cache: c}
}

func (s *Store) ClearCache(name string) error {
	return s.cache.Clear(name)
}

// mapErr translates driver errors into the store's sentinel errors.
func mapErr(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%s: %w", what, ErrConflict)
	}
	return fmt.Errorf("%s: %w", what, err)
}

// Numeric columns are read as text so values never pass through float64.
func parseDecimal(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}

func parseNullDecimal(s *string) (*decimal.Decimal, error) {
	if s == nil {
		return nil, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func decimalArg(d *decimal.Decimal) interface{} {
	if d == nil {
		return nil
	}
	return d.String()
}
