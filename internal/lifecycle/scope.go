package lifecycle

import "gorm.io/gorm"

// DeletedFilter selects which lifecycle states a query can see.
type DeletedFilter int

const (
	ExcludeDeleted DeletedFilter = iota
	OnlyDeleted
	IncludeDeleted
)

// Scope is the ownership and visibility predicate passed to every store query.
type Scope struct {
	OwnerID string
	Deleted DeletedFilter
}

func ActiveFor(ownerID string) Scope  { return Scope{OwnerID: ownerID, Deleted: ExcludeDeleted} }
func DeletedFor(ownerID string) Scope { return Scope{OwnerID: ownerID, Deleted: OnlyDeleted} }
func AnyFor(ownerID string) Scope     { return Scope{OwnerID: ownerID, Deleted: IncludeDeleted} }

// ForAction returns the scope a record must match before action applies to it.
func ForAction(ownerID string, action Action) Scope {
	if Required(action) == Deleted {
		return DeletedFor(ownerID)
	}
	return ActiveFor(ownerID)
}

// Apply restricts q to table rows owned by s.OwnerID in the selected states.
// ExcludeDeleted leans on gorm's soft-delete clause, the other filters unscope it.
func (s Scope) Apply(q *gorm.DB, table string) *gorm.DB {
	switch s.Deleted {
	case OnlyDeleted:
		q = q.Unscoped().Where(table + ".deleted_at IS NOT NULL")
	case IncludeDeleted:
		q = q.Unscoped()
	}
	if s.OwnerID != "" {
		q = q.Where(table+".user_id = ?", s.OwnerID)
	}
	return q
}

// States applies only the deleted-state part of the scope, for tables whose
// ownership is transitive (rows are owned through their database).
func (s Scope) States(q *gorm.DB, table string) *gorm.DB {
	return Scope{Deleted: s.Deleted}.Apply(q, table)
}
