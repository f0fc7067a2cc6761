package rowquery

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type SortOrder string

const (
	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

// ParseSortOrder treats anything but "desc" as ascending.
func ParseSortOrder(s string) SortOrder {
	if strings.EqualFold(strings.TrimSpace(s), string(Desc)) {
		return Desc
	}
	return Asc
}

// Query is a listing request over one database's rows.
type Query struct {
	Filters   []Clause
	SortBy    string
	SortOrder SortOrder
}

// Sort orders rows by the stringified value of column using locale-aware
// collation. Missing values sort as "" and so come first ascending. There is
// no secondary key.
func Sort[T any](rows []T, payloadOf func(T) Payload, column string, order SortOrder) {
	if column == "" || len(rows) < 2 {
		return
	}

	// A Collator keeps scratch buffers, so each call gets its own.
	col := collate.New(language.Und)

	keys := make(map[int]string, len(rows))
	idx := make([]int, len(rows))
	for i, r := range rows {
		idx[i] = i
		if v, ok := payloadOf(r).Get(column); ok {
			keys[i] = v.String()
		}
	}

	slices.SortStableFunc(idx, func(a, b int) int {
		c := col.CompareString(keys[a], keys[b])
		if order == Desc {
			return -c
		}
		return c
	})

	sorted := make([]T, len(rows))
	for i, j := range idx {
		sorted[i] = rows[j]
	}
	copy(rows, sorted)
}

// Apply filters rows with q.Filters and sorts the survivors. The input slice
// is not modified.
func Apply[T any](rows []T, payloadOf func(T) Payload, q Query) []T {
	pred := Compile(q.Filters)
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		if pred.Matches(payloadOf(r)) {
			out = append(out, r)
		}
	}
	Sort(out, payloadOf, q.SortBy, q.SortOrder)
	return out
}
