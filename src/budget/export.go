package budget

import (
	"fmt"

	"rfpdesk-server/src/models"

	"github.com/shopspring/decimal"
)

// TableExport is the format-agnostic tabular form of a ledger. Data rows carry
// hours per year and the row cost; the totals row carries cost per year.
type TableExport struct {
	Header []string
	Rows   [][]string
	Totals []string
}

// RowSummary is a ledger row with every derived value resolved.
type RowSummary struct {
	models.BudgetRow
	PersonName    string          `json:"person_name"`
	Category      RoleCategory    `json:"category"`
	CategoryLabel string          `json:"category_label"`
	Color         string          `json:"color"`
	Rate          decimal.Decimal `json:"rate"`
	TotalHours    decimal.Decimal `json:"total_hours"`
	Total         decimal.Decimal `json:"total"`
}

// Summary is the priced view of a ledger returned by the budget endpoints.
type Summary struct {
	ProposalID string                              `json:"proposal_id"`
	Rows       []RowSummary                        `json:"rows"`
	YearTotals [models.BudgetYears]decimal.Decimal `json:"year_totals"`
	GrandTotal decimal.Decimal                     `json:"grand_total"`
}

// Summary resolves rates, categories and totals for every row.
func (l *Ledger) Summary() Summary {
	s := Summary{
		ProposalID: l.proposalID,
		Rows:       make([]RowSummary, 0, len(l.rows)),
		GrandTotal: l.GrandTotal(),
	}
	for i, r := range l.rows {
		row := *r
		row.Position = i
		category := CategoryOf(row)
		s.Rows = append(s.Rows, RowSummary{
			BudgetRow:     row,
			PersonName:    l.persons[r.PersonID].FullName,
			Category:      category,
			CategoryLabel: category.Label(),
			Color:         category.Color(),
			Rate:          l.rate(r),
			TotalHours:    totalHours(r),
			Total:         l.rowTotal(r),
		})
	}
	for y := 1; y <= models.BudgetYears; y++ {
		s.YearTotals[y-1], _ = l.YearTotal(y)
	}
	return s
}

// Export renders the ledger into a TableExport with money at two decimals.
func (l *Ledger) Export() TableExport {
	t := TableExport{
		Header: []string{"Person", "Role/Title", "Rate"},
		Rows:   make([][]string, 0, len(l.rows)),
	}
	for y := 1; y <= models.BudgetYears; y++ {
		t.Header = append(t.Header, fmt.Sprintf("Year %d", y))
	}
	t.Header = append(t.Header, "Total")

	for _, r := range l.rows {
		line := []string{
			l.persons[r.PersonID].FullName,
			r.Title,
			l.rate(r).StringFixed(2),
		}
		for _, h := range r.Hours {
			line = append(line, h.StringFixed(2))
		}
		line = append(line, l.rowTotal(r).StringFixed(2))
		t.Rows = append(t.Rows, line)
	}

	t.Totals = []string{"TOTAL", "", ""}
	for y := 1; y <= models.BudgetYears; y++ {
		yt, _ := l.YearTotal(y)
		t.Totals = append(t.Totals, yt.StringFixed(2))
	}
	t.Totals = append(t.Totals, l.GrandTotal().StringFixed(2))
	return t
}
