package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"rfpdesk-server/src/models"

	"github.com/google/uuid"
)

const analyzeSystemPrompt = `You are a proposal compliance analyst. Extract every requirement the
offeror must satisfy from the solicitation text. Reply with a single JSON object:
{"requirements":[{"text":"...","section":"...","priority":"high|medium|low",
"highlight_start":0,"highlight_end":0}]}
highlight_start and highlight_end are character offsets of the requirement in the
source text. Use "high" for shall/must statements, "medium" for should, "low" otherwise.
Do not add commentary.`

const defaultSection = "General"

// maxDocumentRunes bounds the text sent to the model.
const maxDocumentRunes = 200_000

type rawRequirement struct {
	Text           string `json:"text"`
	Section        string `json:"section"`
	Priority       string `json:"priority"`
	HighlightStart *int   `json:"highlight_start"`
	HighlightEnd   *int   `json:"highlight_end"`
}

// Entries are kept raw so one mistyped entry is rejected on its own.
type rawAnalysis struct {
	Requirements []json.RawMessage `json:"requirements"`
}

// Rejected is a model-proposed requirement that failed validation.
type Rejected struct {
	Index  int    `json:"index"`
	Text   string `json:"text"`
	Reason string `json:"reason"`
}

type Analysis struct {
	Requirements []models.Requirement `json:"requirements"`
	Rejected     []Rejected           `json:"rejected"`
}

type Analyzer struct {
	gen Generator
	now func() time.Time
}

func NewAnalyzer(gen Generator) *Analyzer {
	return &Analyzer{gen: gen, now: time.Now}
}

// Analyze extracts requirements for proposalID from document. Entries that
// fail validation are returned in Rejected and never in Requirements.
func (a *Analyzer) Analyze(ctx context.Context, proposalID, document string) (Analysis, error) {
	document = strings.TrimSpace(document)
	if document == "" {
		return Analysis{}, ErrEmptyDocument
	}
	if utf8.RuneCountInString(document) > maxDocumentRunes {
		document = string([]rune(document)[:maxDocumentRunes])
	}

	reply, err := a.gen.Generate(ctx, analyzeSystemPrompt, []Message{{Role: RoleUser, Content: document}})
	if err != nil {
		return Analysis{}, err
	}
	parsed, err := decodeObject[rawAnalysis](reply)
	if err != nil {
		return Analysis{}, err
	}

	docLen := utf8.RuneCountInString(document)
	now := a.now().UTC()
	out := Analysis{Requirements: []models.Requirement{}, Rejected: []Rejected{}}
	for i, entry := range parsed.Requirements {
		var raw rawRequirement
		if err := json.Unmarshal(entry, &raw); err != nil {
			out.Rejected = append(out.Rejected, Rejected{Index: i, Text: entryText(entry), Reason: err.Error()})
			continue
		}
		req, reason := validateRequirement(raw, docLen)
		if reason != "" {
			out.Rejected = append(out.Rejected, Rejected{Index: i, Text: raw.Text, Reason: reason})
			continue
		}
		req.ID = uuid.NewString()
		req.ProposalID = proposalID
		req.CreatedAt = now
		out.Requirements = append(out.Requirements, req)
	}
	return out, nil
}

// entryText recovers the text of an entry that did not decode, if it has one.
func entryText(entry json.RawMessage) string {
	var partial struct {
		Text json.RawMessage `json:"text"`
	}
	if json.Unmarshal(entry, &partial) != nil {
		return ""
	}
	var text string
	if json.Unmarshal(partial.Text, &text) != nil {
		return ""
	}
	return text
}

// validateRequirement returns the accepted record, or a rejection reason.
func validateRequirement(raw rawRequirement, docLen int) (models.Requirement, string) {
	text := strings.TrimSpace(raw.Text)
	if text == "" {
		return models.Requirement{}, "empty text"
	}
	priority, ok := ParsePriority(raw.Priority)
	if !ok {
		return models.Requirement{}, fmt.Sprintf("unknown priority %q", raw.Priority)
	}
	if (raw.HighlightStart == nil) != (raw.HighlightEnd == nil) {
		return models.Requirement{}, "highlight needs both start and end"
	}
	if raw.HighlightStart != nil {
		start, end := *raw.HighlightStart, *raw.HighlightEnd
		if start < 0 || start >= end || end > docLen {
			return models.Requirement{}, fmt.Sprintf("highlight [%d,%d) outside document of %d characters", start, end, docLen)
		}
	}
	section := strings.TrimSpace(raw.Section)
	if section == "" {
		section = defaultSection
	}
	return models.Requirement{
		Text:           text,
		Section:        section,
		Priority:       priority,
		HighlightStart: raw.HighlightStart,
		HighlightEnd:   raw.HighlightEnd,
	}, ""
}

func ParsePriority(s string) (models.Priority, bool) {
	switch models.Priority(strings.ToLower(strings.TrimSpace(s))) {
	case models.PriorityHigh:
		return models.PriorityHigh, true
	case models.PriorityMedium:
		return models.PriorityMedium, true
	case models.PriorityLow:
		return models.PriorityLow, true
	default:
		return "", false
	}
}
