package review

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"rfpdesk-server/src/models"
	"rfpdesk-server/src/section"
)

// Stage is a step of the proposal review pipeline.
type Stage string

const (
	StageDraft            Stage = "draft"
	StageComplianceReview Stage = "compliance_review"
	StageManagerReview    Stage = "manager_review"
	StageFinalReview      Stage = "final_review"
	StageSubmitted        Stage = "submitted"
)

// Stages is the review pipeline in order.
var Stages = []Stage{
	StageDraft,
	StageComplianceReview,
	StageManagerReview,
	StageFinalReview,
	StageSubmitted,
}

var (
	// ErrUnknownStage is returned for a stage name outside Stages.
	ErrUnknownStage = errors.New("unknown review stage")

	// ErrFinalStage is returned when advancing a submitted proposal.
	ErrFinalStage = errors.New("proposal already submitted")

	// ErrNotReturnable is returned when sending back a draft or submitted proposal.
	ErrNotReturnable = errors.New("stage cannot be sent back")
)

// ParseStage normalizes s and checks it names a known stage.
func ParseStage(s string) (Stage, error) {
	st := Stage(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Stages {
		if st == known {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStage, s)
}

// Next returns the stage after st.
func Next(st Stage) (Stage, error) {
	for i, known := range Stages {
		if known != st {
			continue
		}
		if i == len(Stages)-1 {
			return "", ErrFinalStage
		}
		return Stages[i+1], nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStage, st)
}

// Advance moves the proposal one stage forward. Anyone on the team may submit
// a draft for compliance review; every later hand-off needs a manager.
func Advance(p *models.Proposal, actor section.Actor, now time.Time) error {
	current, err := ParseStage(p.Stage)
	if err != nil {
		return err
	}
	next, err := Next(current)
	if err != nil {
		return err
	}
	if current != StageDraft {
		if err := section.RequireManager(actor); err != nil {
			return err
		}
	}
	p.Stage = string(next)
	p.ReviewNote = ""
	p.UpdatedAt = now
	return nil
}

// SendBack returns an in-review proposal to draft with the reviewer's note.
func SendBack(p *models.Proposal, actor section.Actor, note string, now time.Time) error {
	if err := section.RequireManager(actor); err != nil {
		return err
	}
	current, err := ParseStage(p.Stage)
	if err != nil {
		return err
	}
	if current == StageDraft || current == StageSubmitted {
		return fmt.Errorf("%w: %s", ErrNotReturnable, current)
	}
	p.Stage = string(StageDraft)
	p.ReviewNote = strings.TrimSpace(note)
	p.UpdatedAt = now
	return nil
}
