package budget

import (
	"testing"

	"rfpdesk-server/src/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	sarah = models.Person{ID: "p-sarah", FullName: "Sarah Chen", Title: "Principal"}
	marco = models.Person{ID: "p-marco", FullName: "Marco Diaz", Title: "Senior Consultant"}
	ines  = models.Person{ID: "p-ines", FullName: "Ines Ruiz", Title: "Data Engineer", HourlyRate: decPtr("133.33")}
)

func newLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := NewLedger("prop-1", []models.Person{sarah, marco, ines}, nil)
	require.NoError(t, err)
	return l
}

func TestLedger_SarahScenario(t *testing.T) {
	l := newLedger(t)
	row, err := l.AddRow(sarah)
	require.NoError(t, err)
	require.NoError(t, l.SetHours(row.ID, 1, dec("10")))

	total, err := l.RowTotal(row.ID)
	require.NoError(t, err)
	assert.Equal(t, "2500.00", total.StringFixed(2))

	y1, err := l.YearTotal(1)
	require.NoError(t, err)
	assert.Equal(t, "2500.00", y1.StringFixed(2))
	for y := 2; y <= 5; y++ {
		yt, err := l.YearTotal(y)
		require.NoError(t, err)
		assert.True(t, yt.IsZero(), "year %d", y)
	}
	assert.Equal(t, "2500.00", l.GrandTotal().StringFixed(2))
}

func TestLedger_AddRowSeedsFromPerson(t *testing.T) {
	l := newLedger(t)
	row, err := l.AddRow(marco)
	require.NoError(t, err)

	assert.NotEmpty(t, row.ID)
	assert.Equal(t, "prop-1", row.ProposalID)
	assert.Equal(t, "Senior Consultant", row.Title)
	assert.Nil(t, row.RateOverride)
	for _, h := range row.Hours {
		assert.True(t, h.IsZero())
	}
}

func TestLedger_AddRowDuplicatePerson(t *testing.T) {
	l := newLedger(t)
	_, err := l.AddRow(sarah)
	require.NoError(t, err)

	_, err = l.AddRow(sarah)
	assert.ErrorIs(t, err, ErrDuplicatePerson)
	assert.Len(t, l.Rows(), 1)
}

func TestLedger_RemoveRowIsIdempotent(t *testing.T) {
	l := newLedger(t)
	a, _ := l.AddRow(sarah)
	b, _ := l.AddRow(marco)

	l.RemoveRow(a.ID)
	l.RemoveRow(a.ID)
	l.RemoveRow("missing")

	rows := l.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, b.ID, rows[0].ID)
	assert.Equal(t, 0, rows[0].Position)
}

func TestLedger_SetHoursOverwrites(t *testing.T) {
	l := newLedger(t)
	row, _ := l.AddRow(sarah)

	require.NoError(t, l.SetHours(row.ID, 3, dec("40")))
	require.NoError(t, l.SetHours(row.ID, 3, dec("10")))

	assert.Equal(t, "10", l.Rows()[0].Hours[2].String())
}

func TestLedger_SetHoursValidation(t *testing.T) {
	l := newLedger(t)
	row, _ := l.AddRow(sarah)

	assert.ErrorIs(t, l.SetHours(row.ID, 1, dec("-0.5")), ErrInvalidHours)
	assert.ErrorIs(t, l.SetHours(row.ID, 0, dec("1")), ErrInvalidYear)
	assert.ErrorIs(t, l.SetHours(row.ID, 6, dec("1")), ErrInvalidYear)
	assert.ErrorIs(t, l.SetHours("nope", 1, dec("1")), ErrRowNotFound)
	assert.NoError(t, l.SetHours(row.ID, 5, decimal.Zero))
}

func TestLedger_AmountsMustFitStorage(t *testing.T) {
	l := newLedger(t)
	row, _ := l.AddRow(sarah)

	assert.ErrorIs(t, l.SetHours(row.ID, 1, dec("0.125")), ErrInvalidHours)
	assert.ErrorIs(t, l.SetHours(row.ID, 1, dec("10000000000")), ErrInvalidHours)
	assert.ErrorIs(t, l.SetRateOverride(row.ID, decPtr("99.999")), ErrInvalidRate)
	assert.ErrorIs(t, l.SetRateOverride(row.ID, decPtr("1e10")), ErrInvalidRate)
	assert.True(t, l.Rows()[0].Hours[0].IsZero())
	assert.Nil(t, l.Rows()[0].RateOverride)

	require.NoError(t, l.SetHours(row.ID, 1, dec("0.130")))
	require.NoError(t, l.SetHours(row.ID, 2, dec("9999999999.99")))
	require.NoError(t, l.SetRateOverride(row.ID, decPtr("118.75")))
	assert.Equal(t, "0.13", l.Rows()[0].Hours[0].String())

	assert.NoError(t, CheckRate(dec("250")))
	assert.ErrorIs(t, CheckRate(dec("-0.01")), ErrInvalidRate)
}

func TestLedger_ZeroOverrideZeroesRow(t *testing.T) {
	l := newLedger(t)
	row, _ := l.AddRow(sarah)
	for y := 1; y <= 5; y++ {
		require.NoError(t, l.SetHours(row.ID, y, dec("37.5")))
	}
	require.NoError(t, l.SetRateOverride(row.ID, decPtr("0")))

	total, err := l.RowTotal(row.ID)
	require.NoError(t, err)
	assert.True(t, total.IsZero())
	assert.True(t, l.GrandTotal().IsZero())
}

func TestLedger_ClearOverrideRevertsToDerivedRate(t *testing.T) {
	l := newLedger(t)
	row, _ := l.AddRow(marco)
	require.NoError(t, l.SetRateOverride(row.ID, decPtr("80")))
	rate, _ := l.Rate(row.ID)
	assert.Equal(t, "80.00", rate.StringFixed(2))

	require.NoError(t, l.SetRateOverride(row.ID, nil))
	rate, _ = l.Rate(row.ID)
	assert.Equal(t, "175.00", rate.StringFixed(2))

	assert.ErrorIs(t, l.SetRateOverride(row.ID, decPtr("-1")), ErrInvalidRate)
}

func TestLedger_TitleEditChangesCategoryNotRate(t *testing.T) {
	l := newLedger(t)
	row, _ := l.AddRow(sarah)
	require.NoError(t, l.SetTitle(row.ID, "Consultant"))

	s := l.Summary()
	require.Len(t, s.Rows, 1)
	assert.Equal(t, CategoryConsultant, s.Rows[0].Category)
	assert.Equal(t, "250.00", s.Rows[0].Rate.StringFixed(2))
}

func TestLedger_RowTotalIsHoursTimesRate(t *testing.T) {
	l := newLedger(t)
	row, _ := l.AddRow(ines)
	hours := []string{"12.25", "0.1", "7", "33.33", "0.01"}
	for i, h := range hours {
		require.NoError(t, l.SetHours(row.ID, i+1, dec(h)))
	}

	sum := decimal.Zero
	for _, h := range hours {
		sum = sum.Add(dec(h))
	}
	total, err := l.RowTotal(row.ID)
	require.NoError(t, err)
	assert.True(t, sum.Mul(dec("133.33")).Equal(total), "got %s", total)
}

func TestLedger_GrandTotalMatchesYearTotals(t *testing.T) {
	l := newLedger(t)
	a, _ := l.AddRow(sarah)
	b, _ := l.AddRow(marco)
	c, _ := l.AddRow(ines)
	require.NoError(t, l.SetRateOverride(b.ID, decPtr("99.99")))

	fill := map[string][]string{
		a.ID: {"10.1", "20.2", "0", "3.3", "0.07"},
		b.ID: {"1.11", "2.22", "3.33", "4.44", "5.55"},
		c.ID: {"0.01", "0.02", "0.03", "1000", "0.3"},
	}
	for id, hours := range fill {
		for i, h := range hours {
			require.NoError(t, l.SetHours(id, i+1, dec(h)))
		}
	}

	sum := decimal.Zero
	for y := 1; y <= 5; y++ {
		yt, err := l.YearTotal(y)
		require.NoError(t, err)
		sum = sum.Add(yt)
	}
	assert.True(t, sum.Equal(l.GrandTotal()), "years=%s grand=%s", sum, l.GrandTotal())

	_, err := l.YearTotal(7)
	assert.ErrorIs(t, err, ErrInvalidYear)
}

func TestNewLedger_UnknownPerson(t *testing.T) {
	_, err := NewLedger("prop-1", []models.Person{sarah}, []models.BudgetRow{
		{ID: "r1", PersonID: "p-ghost"},
	})
	assert.ErrorIs(t, err, ErrPersonNotFound)
}

func TestLedger_Export(t *testing.T) {
	l := newLedger(t)
	row, _ := l.AddRow(sarah)
	require.NoError(t, l.SetHours(row.ID, 1, dec("10")))
	require.NoError(t, l.SetHours(row.ID, 2, dec("4")))

	table := l.Export()
	assert.Equal(t, []string{"Person", "Role/Title", "Rate", "Year 1", "Year 2", "Year 3", "Year 4", "Year 5", "Total"}, table.Header)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, []string{"Sarah Chen", "Principal", "250.00", "10.00", "4.00", "0.00", "0.00", "0.00", "3500.00"}, table.Rows[0])
	assert.Equal(t, []string{"TOTAL", "", "", "2500.00", "1000.00", "0.00", "0.00", "0.00", "3500.00"}, table.Totals)
}
