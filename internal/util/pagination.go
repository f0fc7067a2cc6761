package util

import (
	"math"
	"strconv"
	"strings"
)

// Page is a normalised page/limit pair.
type Page struct {
	Page  int
	Limit int
}

// NewPage clamps page to >= 1 and limit to (0, max], using def when limit is unset or out of range.
func NewPage(page, limit, def, max int) Page {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > max {
		limit = def
	}
	// Keep the offset well inside int range for SQL and slicing.
	if maxPage := math.MaxInt32 / limit; page > maxPage {
		page = maxPage
	}
	return Page{Page: page, Limit: limit}
}

// ParsePage reads page and limit query values; junk falls back to defaults.
func ParsePage(pageStr, limitStr string, def, max int) Page {
	page, _ := strconv.Atoi(strings.TrimSpace(pageStr))
	limit, _ := strconv.Atoi(strings.TrimSpace(limitStr))
	return NewPage(page, limit, def, max)
}

func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Window returns the bounds of this page within n in-memory items.
func (p Page) Window(n int) (start, end int) {
	start = max(0, min(p.Offset(), n))
	end = max(start, min(start+p.Limit, n))
	return start, end
}

// TotalPages is never less than 1.
func (p Page) TotalPages(total int64) int {
	pages := int(math.Ceil(float64(total) / float64(p.Limit)))
	if pages == 0 {
		pages = 1
	}
	return pages
}

type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

func (p Page) Result(total int64) Pagination {
	return Pagination{Page: p.Page, Limit: p.Limit, Total: total, Pages: p.TotalPages(total)}
}

// LikeEscape follows a LIKE ? placeholder filled by ContainsPattern.
const LikeEscape = ` ESCAPE '\'`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsPattern builds a LIKE pattern for a case-insensitive substring
// match against a LOWER(...) column. Wildcards in term match literally, so the
// clause must carry LikeEscape.
func ContainsPattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(term))) + "%"
}
