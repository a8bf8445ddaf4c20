package models

import "time"

type Section struct {
	ID               string    `json:"id"`
	ResponseID       string    `json:"response_id"`
	Title            string    `json:"title"`
	Content          string    `json:"content"`
	OrderIndex       int       `json:"order_index"`
	AssignedPersonID *string   `json:"assigned_person_id"`
	Locked           bool      `json:"is_locked"`
	LockedByPersonID *string   `json:"locked_by_person_id"`
	Version          int       `json:"version"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
