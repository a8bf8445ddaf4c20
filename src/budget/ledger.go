package budget

import (
	"fmt"

	"rfpdesk-server/src/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Ledger holds the budget rows of one proposal together with the person
// records they reference. It is an in-memory snapshot; callers persist it
// with a whole-collection save.
type Ledger struct {
	proposalID string
	persons    map[string]models.Person
	rows       []*models.BudgetRow
}

// NewLedger builds a ledger over persons and previously saved rows. Every row
// must reference a known person.
func NewLedger(proposalID string, persons []models.Person, rows []models.BudgetRow) (*Ledger, error) {
	l := &Ledger{
		proposalID: proposalID,
		persons:    make(map[string]models.Person, len(persons)),
		rows:       make([]*models.BudgetRow, 0, len(rows)),
	}
	for _, p := range persons {
		l.persons[p.ID] = p
	}
	for i := range rows {
		row := rows[i]
		if _, ok := l.persons[row.PersonID]; !ok {
			return nil, fmt.Errorf("%w: row %s references %s", ErrPersonNotFound, row.ID, row.PersonID)
		}
		row.ProposalID = proposalID
		l.rows = append(l.rows, &row)
	}
	return l, nil
}

// ProposalID returns the proposal the ledger belongs to.
func (l *Ledger) ProposalID() string {
	return l.proposalID
}

// Rows returns a copy of the ledger rows with positions renumbered in order.
func (l *Ledger) Rows() []models.BudgetRow {
	out := make([]models.BudgetRow, len(l.rows))
	for i, r := range l.rows {
		out[i] = *r
		out[i].Position = i
	}
	return out
}

// Person returns the directory record for personID.
func (l *Ledger) Person(personID string) (models.Person, bool) {
	p, ok := l.persons[personID]
	return p, ok
}

// AddRow appends a zero-hour row for person, seeded with the person's title.
func (l *Ledger) AddRow(person models.Person) (models.BudgetRow, error) {
	for _, r := range l.rows {
		if r.PersonID == person.ID {
			return models.BudgetRow{}, fmt.Errorf("%w: %s", ErrDuplicatePerson, person.ID)
		}
	}
	l.persons[person.ID] = person

	row := &models.BudgetRow{
		ID:         uuid.NewString(),
		ProposalID: l.proposalID,
		PersonID:   person.ID,
		Title:      person.Title,
		Position:   len(l.rows),
	}
	for y := range row.Hours {
		row.Hours[y] = decimal.Zero
	}
	l.rows = append(l.rows, row)
	return *row, nil
}

// RemoveRow deletes the row. Removing an absent row is a no-op.
func (l *Ledger) RemoveRow(rowID string) {
	for i, r := range l.rows {
		if r.ID == rowID {
			l.rows = append(l.rows[:i], l.rows[i+1:]...)
			return
		}
	}
}

// SetHours overwrites the hours of one year slot (1-based).
func (l *Ledger) SetHours(rowID string, year int, hours decimal.Decimal) error {
	if err := checkYear(year); err != nil {
		return err
	}
	if !storable(hours) {
		return fmt.Errorf("%w: %s", ErrInvalidHours, hours)
	}
	row, err := l.row(rowID)
	if err != nil {
		return err
	}
	row.Hours[year-1] = hours
	return nil
}

// SetRateOverride pins the row rate; nil reverts to the derived rate.
func (l *Ledger) SetRateOverride(rowID string, rate *decimal.Decimal) error {
	if rate != nil {
		if err := CheckRate(*rate); err != nil {
			return err
		}
	}
	row, err := l.row(rowID)
	if err != nil {
		return err
	}
	if rate == nil {
		row.RateOverride = nil
		return nil
	}
	r := *rate
	row.RateOverride = &r
	return nil
}

// SetTitle edits the row display title. The person record is untouched.
func (l *Ledger) SetTitle(rowID, title string) error {
	row, err := l.row(rowID)
	if err != nil {
		return err
	}
	row.Title = title
	return nil
}

// Rate returns the effective hourly rate of the row.
func (l *Ledger) Rate(rowID string) (decimal.Decimal, error) {
	row, err := l.row(rowID)
	if err != nil {
		return decimal.Zero, err
	}
	return l.rate(row), nil
}

// RowTotal is the row's summed hours times its effective rate.
func (l *Ledger) RowTotal(rowID string) (decimal.Decimal, error) {
	row, err := l.row(rowID)
	if err != nil {
		return decimal.Zero, err
	}
	return l.rowTotal(row), nil
}

// YearTotal is the cost of one year slot across all rows.
func (l *Ledger) YearTotal(year int) (decimal.Decimal, error) {
	if err := checkYear(year); err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, r := range l.rows {
		total = total.Add(r.Hours[year-1].Mul(l.rate(r)))
	}
	return total, nil
}

// GrandTotal sums every row total. It always equals the sum of the year totals.
func (l *Ledger) GrandTotal() decimal.Decimal {
	total := decimal.Zero
	for _, r := range l.rows {
		total = total.Add(l.rowTotal(r))
	}
	return total
}

func (l *Ledger) row(rowID string) (*models.BudgetRow, error) {
	for _, r := range l.rows {
		if r.ID == rowID {
			return r, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrRowNotFound, rowID)
}

func (l *Ledger) rate(row *models.BudgetRow) decimal.Decimal {
	return EffectiveRate(*row, l.persons[row.PersonID])
}

func (l *Ledger) rowTotal(row *models.BudgetRow) decimal.Decimal {
	return totalHours(row).Mul(l.rate(row))
}

func totalHours(row *models.BudgetRow) decimal.Decimal {
	sum := decimal.Zero
	for _, h := range row.Hours {
		sum = sum.Add(h)
	}
	return sum
}

// Hours and rates are stored as NUMERIC(12,2).
const amountScale = 2

var amountLimit = decimal.New(1, 10)

// storable reports whether d is non-negative and fits NUMERIC(12,2) exactly.
func storable(d decimal.Decimal) bool {
	return !d.IsNegative() && d.LessThan(amountLimit) && d.Equal(d.Truncate(amountScale))
}

// CheckRate validates an hourly rate for storage.
func CheckRate(rate decimal.Decimal) error {
	if !storable(rate) {
		return fmt.Errorf("%w: %s", ErrInvalidRate, rate)
	}
	return nil
}

func checkYear(year int) error {
	if year < 1 || year > models.BudgetYears {
		return fmt.Errorf("%w: %d", ErrInvalidYear, year)
	}
	return nil
}
