package models

import "time"

type Proposal struct {
	ID                 string     `json:"id"`
	Title              string     `json:"title"`
	Agency             string     `json:"agency"`
	SolicitationNumber string     `json:"solicitation_number"`
	DueDate            *time.Time `json:"due_date"`
	Stage              string     `json:"stage"`
	ReviewNote         string     `json:"review_note"`
	CreatedBy          string     `json:"created_by"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

type Response struct {
	ID         string    `json:"id"`
	ProposalID string    `json:"proposal_id"`
	Title      string    `json:"title"`
	CreatedAt  time.Time `json:"created_at"`
}
