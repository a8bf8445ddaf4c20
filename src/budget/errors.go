package budget

import "errors"

var (
	// ErrInvalidHours rejects negative, over-precise or out-of-range hour entries.
	ErrInvalidHours = errors.New("invalid hours")

	// ErrInvalidYear rejects year slots outside 1..5.
	ErrInvalidYear = errors.New("invalid budget year")

	// ErrInvalidRate rejects negative, over-precise or out-of-range rates.
	ErrInvalidRate = errors.New("invalid rate")

	// ErrDuplicatePerson is returned when a person already has a row in the ledger.
	ErrDuplicatePerson = errors.New("person already in budget")

	// ErrPersonNotFound is returned when a row references an unknown person.
	ErrPersonNotFound = errors.New("person not found")

	// ErrRowNotFound is returned for operations on a row id the ledger does not hold.
	ErrRowNotFound = errors.New("budget row not found")
)
