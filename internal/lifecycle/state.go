// Package lifecycle models the soft-delete state machine shared by databases,
// rows and forms.
//
//	Active ⇄ Deleted → Purged
//
// The persisted form of the state is the deleted_at column alone: a set
// timestamp means Deleted, a missing record means Purged.
package lifecycle

import (
	"fmt"

	"formbase-api/internal/domain"

	"gorm.io/gorm"
)

type State int

const (
	Active State = iota
	Deleted
	Purged
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Deleted:
		return "deleted"
	case Purged:
		return "purged"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

type Action string

const (
	Archive Action = "archive"
	Restore Action = "restore"
	Purge   Action = "purge"
)

// ErrInvalidTransition matches domain.ErrNotFound: callers only ever learn that
// the target was not found in the expected state.
var ErrInvalidTransition = fmt.Errorf("%w: invalid lifecycle transition", domain.ErrNotFound)

// StateOf derives the state from a soft-delete column.
func StateOf(deletedAt gorm.DeletedAt) State {
	if deletedAt.Valid {
		return Deleted
	}
	return Active
}

// Transition returns the state reached by applying action to from.
func Transition(from State, action Action) (State, error) {
	switch {
	case from == Active && action == Archive:
		return Deleted, nil
	case from == Deleted && action == Restore:
		return Active, nil
	case from == Deleted && action == Purge:
		return Purged, nil
	default:
		return from, fmt.Errorf("%w: %s from %s", ErrInvalidTransition, action, from)
	}
}

// Required is the state a record must be in before action may be applied.
func Required(action Action) State {
	if action == Archive {
		return Active
	}
	return Deleted
}
