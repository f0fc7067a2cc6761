package rowquery

import (
	"encoding/json"
	"net/url"
	"strings"
)

type Operator string

const (
	OpEquals     Operator = "equals"
	OpContains   Operator = "contains"
	OpStartsWith Operator = "starts_with"
	OpEndsWith   Operator = "ends_with"
)

// Clause is one column filter as sent by the grid.
type Clause struct {
	Column   string   `json:"column"`
	Operator Operator `json:"operator"`
	Value    any      `json:"value"`
}

// Predicate decides whether a row payload is kept.
type Predicate interface {
	Matches(p Payload) bool
}

type PredicateFunc func(p Payload) bool

func (f PredicateFunc) Matches(p Payload) bool { return f(p) }

// MatchAll keeps every row.
var MatchAll Predicate = PredicateFunc(func(Payload) bool { return true })

type allOf []Predicate

func (a allOf) Matches(p Payload) bool {
	for _, pred := range a {
		if !pred.Matches(p) {
			return false
		}
	}
	return true
}

// And combines predicates so that every one must match.
func And(preds ...Predicate) Predicate {
	switch len(preds) {
	case 0:
		return MatchAll
	case 1:
		return preds[0]
	}
	return allOf(preds)
}

// Predicate compiles the clause. A row without the column key passes, so rows
// written before the column existed stay visible. Unknown operators pass too.
func (c Clause) Predicate() Predicate {
	needle := strings.ToLower(ValueOf(c.Value).String())

	var test func(hay string) bool
	switch c.Operator {
	case OpEquals:
		test = func(hay string) bool { return hay == needle }
	case OpContains:
		test = func(hay string) bool { return strings.Contains(hay, needle) }
	case OpStartsWith:
		test = func(hay string) bool { return strings.HasPrefix(hay, needle) }
	case OpEndsWith:
		test = func(hay string) bool { return strings.HasSuffix(hay, needle) }
	default:
		return MatchAll
	}

	column := c.Column
	return PredicateFunc(func(p Payload) bool {
		v, ok := p.Get(column)
		if !ok {
			return true
		}
		return test(strings.ToLower(v.String()))
	})
}

// Compile AND-s the clauses together.
func Compile(clauses []Clause) Predicate {
	preds := make([]Predicate, 0, len(clauses))
	for _, c := range clauses {
		preds = append(preds, c.Predicate())
	}
	return And(preds...)
}

// ParseFilters decodes the filters query parameter: a JSON array of clauses,
// optionally still URL-encoded. Any malformed input yields no clauses at all,
// so a stale or hand-edited URL degrades to an unfiltered listing.
func ParseFilters(raw string) []Clause {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	var clauses []Clause
	if err := json.Unmarshal([]byte(raw), &clauses); err == nil {
		return clauses
	}

	decoded, err := url.QueryUnescape(raw)
	if err != nil {
		return nil
	}
	clauses = nil
	if err := json.Unmarshal([]byte(decoded), &clauses); err != nil {
		return nil
	}
	return clauses
}

// Search keeps rows where any value contains term, case-insensitively.
// An empty term matches everything.
func Search(term string) Predicate {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return MatchAll
	}
	return PredicateFunc(func(p Payload) bool {
		for _, k := range p.Keys() {
			v, _ := p.Get(k)
			if strings.Contains(strings.ToLower(v.String()), term) {
				return true
			}
		}
		return false
	})
}
