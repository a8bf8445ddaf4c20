// Package section governs who may assign, lock and edit a response section.
//
// Assignment and locking are independent axes. A lock freezes content edits
// for everyone except managers; managers may still reassign a locked section.
package section

import (
	"errors"
	"fmt"
	"time"

	"rfpdesk-server/src/models"
)

var (
	// ErrSectionLocked is returned when a non-manager touches a locked section.
	ErrSectionLocked = errors.New("section is locked")

	// ErrAlreadyLocked is returned when a different manager holds the lock.
	ErrAlreadyLocked = errors.New("section already locked by another manager")

	// ErrNotManager is returned for manager-only operations.
	ErrNotManager = errors.New("manager capability required")

	// ErrNotAssigned is returned when a non-manager edits a section assigned to someone else.
	ErrNotAssigned = errors.New("section not assigned to actor")
)

// Actor is the request-scoped identity performing an operation.
type Actor struct {
	ID      string
	Manager bool
}

// State is the derived assignment state of a section.
type State string

const (
	StateUnassigned State = "unassigned"
	StateAssigned   State = "assigned"
	StateLocked     State = "locked"
)

// StateOf reports the lifecycle state. A locked section reports StateLocked
// whether or not it is also assigned.
func StateOf(s *models.Section) State {
	switch {
	case s.Locked:
		return StateLocked
	case s.AssignedPersonID != nil:
		return StateAssigned
	default:
		return StateUnassigned
	}
}

// Assign hands the section to personID.
func Assign(s *models.Section, actor Actor, personID string, now time.Time) error {
	if s.Locked && !actor.Manager {
		return fmt.Errorf("%w: assign %s", ErrSectionLocked, s.ID)
	}
	id := personID
	s.AssignedPersonID = &id
	s.UpdatedAt = now
	return nil
}

// Unassign clears the assignment under the same lock rule as Assign.
func Unassign(s *models.Section, actor Actor, now time.Time) error {
	if s.Locked && !actor.Manager {
		return fmt.Errorf("%w: unassign %s", ErrSectionLocked, s.ID)
	}
	s.AssignedPersonID = nil
	s.UpdatedAt = now
	return nil
}

// Lock freezes the section for non-managers. Re-locking by the current holder
// succeeds without change.
func Lock(s *models.Section, actor Actor, now time.Time) error {
	if err := RequireManager(actor); err != nil {
		return err
	}
	if s.Locked {
		if s.LockedByPersonID != nil && *s.LockedByPersonID == actor.ID {
			return nil
		}
		return fmt.Errorf("%w: %s", ErrAlreadyLocked, s.ID)
	}
	id := actor.ID
	s.Locked = true
	s.LockedByPersonID = &id
	s.UpdatedAt = now
	return nil
}

// Unlock releases the lock regardless of which manager holds it.
func Unlock(s *models.Section, actor Actor, now time.Time) error {
	if err := RequireManager(actor); err != nil {
		return err
	}
	if !s.Locked {
		return nil
	}
	s.Locked = false
	s.LockedByPersonID = nil
	s.UpdatedAt = now
	return nil
}

// CanEdit reports whether actor may change the section content.
func CanEdit(s *models.Section, actor Actor) bool {
	if actor.Manager {
		return true
	}
	return !s.Locked && s.AssignedPersonID != nil && *s.AssignedPersonID == actor.ID
}

// EditContent applies a title/content edit when CanEdit allows it. An empty
// title keeps the current one.
func EditContent(s *models.Section, actor Actor, title, content string, now time.Time) error {
	if !CanEdit(s, actor) {
		if s.Locked {
			return fmt.Errorf("%w: edit %s", ErrSectionLocked, s.ID)
		}
		return fmt.Errorf("%w: edit %s", ErrNotAssigned, s.ID)
	}
	if title != "" {
		s.Title = title
	}
	s.Content = content
	s.UpdatedAt = now
	return nil
}

// RequireManager returns ErrNotManager unless actor is a manager.
func RequireManager(actor Actor) error {
	if !actor.Manager {
		return ErrNotManager
	}
	return nil
}

// New returns an unassigned, unlocked section.
func New(id, responseID, title, content string, order int, now time.Time) models.Section {
	return models.Section{
		ID:         id,
		ResponseID: responseID,
		Title:      title,
		Content:    content,
		OrderIndex: order,
		Version:    1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}
