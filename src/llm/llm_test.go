package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"rfpdesk-server/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	reply   string
	err     error
	system  string
	history []Message
}

func (f *fakeGenerator) Generate(_ context.Context, system string, history []Message) (string, error) {
	f.system = system
	f.history = history
	return f.reply, f.err
}

const solicitation = "The contractor shall provide monthly status reports. Offerors should describe staffing."

func TestDecodeObject_ToleratesFencesAndProse(t *testing.T) {
	raw := "Sure! Here you go:\n```json\n{\"requirements\":[{\"text\":\"use {braces} \\\"quoted\\\"\",\"priority\":\"low\"}]}\n```\nLet me know."
	got, err := decodeObject[struct {
		Requirements []rawRequirement `json:"requirements"`
	}](raw)
	require.NoError(t, err)
	require.Len(t, got.Requirements, 1)
	assert.Equal(t, `use {braces} "quoted"`, got.Requirements[0].Text)
}

func TestDecodeObject_NoObject(t *testing.T) {
	_, err := decodeObject[rawAnalysis]("I could not find any requirements.")
	assert.ErrorIs(t, err, ErrInvalidOutput)

	_, err = decodeObject[rawAnalysis](`{"requirements": "none"}`)
	assert.ErrorIs(t, err, ErrInvalidOutput)
}

func TestAnalyze_AcceptsValidAndQuarantinesRest(t *testing.T) {
	gen := &fakeGenerator{reply: `{"requirements":[
		{"text":"The contractor shall provide monthly status reports.","section":"C.3","priority":"HIGH","highlight_start":0,"highlight_end":52},
		{"text":"Offerors should describe staffing.","priority":"medium"},
		{"text":"   ","priority":"high"},
		{"text":"Provide a QA plan","priority":"urgent"},
		{"text":"Out of range","priority":"low","highlight_start":10,"highlight_end":5000},
		{"text":"Half a highlight","priority":"low","highlight_start":3}
	]}`}
	a := NewAnalyzer(gen)
	fixed := time.Date(2025, 2, 2, 0, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return fixed }

	out, err := a.Analyze(context.Background(), "prop-9", solicitation)
	require.NoError(t, err)

	require.Len(t, out.Requirements, 2)
	first := out.Requirements[0]
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, "prop-9", first.ProposalID)
	assert.Equal(t, models.PriorityHigh, first.Priority)
	assert.Equal(t, "C.3", first.Section)
	assert.Equal(t, 52, *first.HighlightEnd)
	assert.Equal(t, fixed, first.CreatedAt)
	assert.Equal(t, "General", out.Requirements[1].Section)

	require.Len(t, out.Rejected, 4)
	assert.Equal(t, 2, out.Rejected[0].Index)
	assert.Equal(t, "empty text", out.Rejected[0].Reason)
	assert.Contains(t, out.Rejected[1].Reason, "urgent")
	assert.Contains(t, out.Rejected[2].Reason, "outside document")
	assert.Contains(t, out.Rejected[3].Reason, "both start and end")

	require.Len(t, gen.history, 1)
	assert.Equal(t, solicitation, gen.history[0].Content)
}

func TestAnalyze_MistypedEntryIsRejectedAlone(t *testing.T) {
	gen := &fakeGenerator{reply: `{"requirements":[
		{"text":"The contractor shall provide monthly status reports.","priority":"high"},
		{"text":"Describe staffing","priority":"medium","highlight_start":"3","highlight_end":9},
		{"text":"Numeric priority","priority":1},
		"not an object"
	]}`}

	out, err := NewAnalyzer(gen).Analyze(context.Background(), "prop-9", solicitation)
	require.NoError(t, err)

	require.Len(t, out.Requirements, 1)
	assert.Equal(t, "The contractor shall provide monthly status reports.", out.Requirements[0].Text)

	require.Len(t, out.Rejected, 3)
	assert.Equal(t, 1, out.Rejected[0].Index)
	assert.Equal(t, "Describe staffing", out.Rejected[0].Text)
	assert.Contains(t, out.Rejected[0].Reason, "highlight_start")
	assert.Equal(t, 2, out.Rejected[1].Index)
	assert.Contains(t, out.Rejected[1].Reason, "priority")
	assert.Equal(t, 3, out.Rejected[2].Index)
	assert.Empty(t, out.Rejected[2].Text)
}

func TestAnalyze_Errors(t *testing.T) {
	a := NewAnalyzer(&fakeGenerator{reply: "{}"})
	_, err := a.Analyze(context.Background(), "p", "  ")
	assert.ErrorIs(t, err, ErrEmptyDocument)

	boom := errors.New("dial tcp: refused")
	a = NewAnalyzer(&fakeGenerator{err: boom})
	_, err = a.Analyze(context.Background(), "p", solicitation)
	assert.ErrorIs(t, err, boom)

	a = NewAnalyzer(&fakeGenerator{reply: "no json here"})
	_, err = a.Analyze(context.Background(), "p", solicitation)
	assert.ErrorIs(t, err, ErrInvalidOutput)
}

func TestParsePriority(t *testing.T) {
	p, ok := ParsePriority(" Low ")
	assert.True(t, ok)
	assert.Equal(t, models.PriorityLow, p)
	_, ok = ParsePriority("critical")
	assert.False(t, ok)
}

func TestChat(t *testing.T) {
	gen := &fakeGenerator{reply: "  Section L asks for three references.  "}
	a := NewAssistant(gen)

	msg, err := a.Chat(context.Background(), "Agency: GSA", []Message{
		{Role: RoleUser, Content: "How many references?"},
	})
	require.NoError(t, err)
	assert.Equal(t, RoleAssistant, msg.Role)
	assert.Equal(t, "Section L asks for three references.", msg.Content)
	assert.Contains(t, gen.system, "Agency: GSA")
}

func TestChat_ValidatesHistory(t *testing.T) {
	a := NewAssistant(&fakeGenerator{reply: "ok"})
	ctx := context.Background()

	_, err := a.Chat(ctx, "", nil)
	assert.ErrorIs(t, err, ErrEmptyHistory)

	_, err = a.Chat(ctx, "", []Message{{Role: RoleUser, Content: "hi"}, {Role: RoleAssistant, Content: "hello"}})
	assert.ErrorIs(t, err, ErrEmptyHistory)

	_, err = a.Chat(ctx, "", []Message{{Role: "system", Content: "x"}, {Role: RoleUser, Content: "hi"}})
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestChat_TrimsLongHistory(t *testing.T) {
	gen := &fakeGenerator{reply: "ok"}
	a := NewAssistant(gen)
	var history []Message
	for i := 0; i < 31; i++ {
		role := RoleUser
		if i%2 == 1 {
			role = RoleAssistant
		}
		history = append(history, Message{Role: role, Content: "turn"})
	}
	_, err := a.Chat(context.Background(), "", history)
	require.NoError(t, err)
	assert.Len(t, gen.history, maxHistory)
}
