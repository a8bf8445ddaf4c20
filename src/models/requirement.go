package models

import "time"

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

type Requirement struct {
	ID             string    `json:"id"`
	ProposalID     string    `json:"proposal_id"`
	Text           string    `json:"text"`
	Section        string    `json:"section"`
	Priority       Priority  `json:"priority"`
	HighlightStart *int      `json:"highlight_start,omitempty"`
	HighlightEnd   *int      `json:"highlight_end,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
