package budget

import (
	"strings"

	"rfpdesk-server/src/models"

	"github.com/shopspring/decimal"
)

// RoleCategory groups budget rows for display. It is derived from title text
// and never stored.
type RoleCategory string

const (
	CategoryPrincipal         RoleCategory = "principal"
	CategoryManagingDirector  RoleCategory = "managing_director"
	CategoryConsultant        RoleCategory = "consultant"
	CategoryResearchAssociate RoleCategory = "research_associate"
	CategoryCopyEditor        RoleCategory = "copy_editor"
	CategoryDefault           RoleCategory = "default"
)

// Categories lists every category in match priority order, default last.
var Categories = []RoleCategory{
	CategoryPrincipal,
	CategoryManagingDirector,
	CategoryConsultant,
	CategoryResearchAssociate,
	CategoryCopyEditor,
	CategoryDefault,
}

// categoryKeywords is checked top to bottom; the first hit wins. "principal"
// precedes "managing"/"director" so "Principal Managing Director" is a principal.
var categoryKeywords = []struct {
	category RoleCategory
	keywords []string
}{
	{CategoryPrincipal, []string{"principal"}},
	{CategoryManagingDirector, []string{"managing", "director"}},
	{CategoryConsultant, []string{"consultant"}},
	{CategoryResearchAssociate, []string{"research", "associate"}},
	{CategoryCopyEditor, []string{"copy", "editor"}},
}

var (
	// FallbackRate applies when neither the title nor the person supplies a rate.
	FallbackRate = decimal.RequireFromString("150.00")

	principalRate        = decimal.RequireFromString("250.00")
	managingDirectorRate = decimal.RequireFromString("300.00")
	consultantRate       = decimal.RequireFromString("175.00")
	researchRate         = decimal.RequireFromString("125.00")
	copyEditorRate       = decimal.RequireFromString("100.00")
)

// matchTitle returns the category of the first keyword group found in title.
func matchTitle(title string) (RoleCategory, bool) {
	lower := strings.ToLower(title)
	for _, group := range categoryKeywords {
		for _, kw := range group.keywords {
			if strings.Contains(lower, kw) {
				return group.category, true
			}
		}
	}
	return CategoryDefault, false
}

// CategoryOf derives the display category from the row's own editable title.
// It deliberately ignores the person's directory title.
func CategoryOf(row models.BudgetRow) RoleCategory {
	c, _ := matchTitle(row.Title)
	return c
}

// EffectiveRate resolves the hourly rate used for cost math: the row override,
// then the person's title heuristic, then the person's own rate, then
// FallbackRate. An override of zero is honored.
func EffectiveRate(row models.BudgetRow, person models.Person) decimal.Decimal {
	if row.RateOverride != nil {
		return *row.RateOverride
	}
	if c, ok := matchTitle(person.Title); ok {
		return DefaultRate(c)
	}
	if person.HourlyRate != nil {
		return *person.HourlyRate
	}
	return FallbackRate
}

// DefaultRate is the billing rate table keyed by category.
func DefaultRate(c RoleCategory) decimal.Decimal {
	switch c {
	case CategoryPrincipal:
		return principalRate
	case CategoryManagingDirector:
		return managingDirectorRate
	case CategoryConsultant:
		return consultantRate
	case CategoryResearchAssociate:
		return researchRate
	case CategoryCopyEditor:
		return copyEditorRate
	default:
		return FallbackRate
	}
}

// Label is the human readable category name used in exports.
func (c RoleCategory) Label() string {
	switch c {
	case CategoryPrincipal:
		return "Principal"
	case CategoryManagingDirector:
		return "Managing Director"
	case CategoryConsultant:
		return "Consultant"
	case CategoryResearchAssociate:
		return "Research Associate"
	case CategoryCopyEditor:
		return "Copy Editor"
	default:
		return "Staff"
	}
}

// Color is the badge color the budget grid uses for the category.
func (c RoleCategory) Color() string {
	switch c {
	case CategoryPrincipal:
		return "#7c3aed"
	case CategoryManagingDirector:
		return "#dc2626"
	case CategoryConsultant:
		return "#2563eb"
	case CategoryResearchAssociate:
		return "#059669"
	case CategoryCopyEditor:
		return "#d97706"
	default:
		return "#6b7280"
	}
}
