package lifecycle

import (
	"fmt"
	"strings"

	"formbase-api/internal/domain"

	"gorm.io/gorm"
)

// Kind is an entity that goes through the lifecycle.
type Kind string

const (
	KindDatabase Kind = "database"
	KindRow      Kind = "row"
	KindForm     Kind = "form"
)

func (k Kind) title() string {
	return strings.ToUpper(string(k[:1])) + string(k[1:])
}

// NotInState is the error for a record that was not found in the state action
// requires, whether it is missing, owned by someone else or in the wrong state.
func NotInState(kind Kind, action Action) error {
	if Required(action) == Deleted {
		return domain.NotFound("Deleted " + string(kind) + " not found")
	}
	return domain.NotFound(kind.title() + " not found")
}

// Check validates that a fetched record may take action.
func Check(kind Kind, deletedAt gorm.DeletedAt, action Action) error {
	if _, err := Transition(StateOf(deletedAt), action); err != nil {
		return NotInState(kind, action)
	}
	return nil
}

// RestoreCheck carries the facts a restore depends on.
type RestoreCheck struct {
	Kind Kind
	// NameTaken: an active sibling owned by the same user has this record's name.
	NameTaken bool
	// ParentDeleted: the owning database of a row is deleted.
	ParentDeleted bool
}

// CanRestore applies the per-kind restore preconditions. Databases and forms
// need a free name; rows need an active database. Rows are never restored
// implicitly with their database.
func CanRestore(c RestoreCheck) error {
	switch c.Kind {
	case KindDatabase, KindForm:
		if c.NameTaken {
			return domain.Conflict(domain.CodeNameConflict, fmt.Sprintf(
				"A %s with this name already exists. Please rename the %s before restoring.", c.Kind, c.Kind))
		}
	case KindRow:
		if c.ParentDeleted {
			return domain.Conflict(domain.CodeParentDeleted,
				"Cannot restore row: its database is deleted. Restore the database first.")
		}
	}
	return nil
}

// CanRestoreSet is the batch form of the name rule: any collision rejects the whole set.
func CanRestoreSet(kind Kind, conflicting []string) error {
	if len(conflicting) == 0 {
		return nil
	}
	return domain.Conflict(domain.CodeNameConflict, fmt.Sprintf(
		"Cannot restore: %d %s(s) conflict with existing names: %s",
		len(conflicting), kind, strings.Join(conflicting, ", ")))
}

// MissingFromSet rejects a bulk request in which some ids were not found in the required state.
func MissingFromSet(kind Kind, action Action, requested, found int) error {
	return domain.PartialNotFound(fmt.Sprintf(
		"Some %ss were not found or are not eligible to %s (%d of %d found)", kind, action, found, requested),
		requested, found)
}
