package store

import (
	"fmt"
	"strings"
	"time"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

// sortColumns is the allow-list of client-facing sort keys. Anything not in
// this map silently falls back to the default order; the raw sort string is
// never interpolated into SQL.
var sortColumns = map[string]string{
	"createdAt": "created_at",
	"startAt":   "start_at",
	"endAt":     "end_at",
	"status":    "status",
	"email":     "email",
	"name":      "name",
	"itemName":  "item_name",
	"itemType":  "item_type",
}

const defaultOrder = "created_at DESC"

// ListFilter describes one listing of reservations. OwnerID is always set
// by the caller from the authenticated identity; the builder makes cross-user
// listing impossible by construction rather than by post-filtering.
//
// Email is matched verbatim. Stored emails are lower-cased, so a caller that
// supplies mixed case will match nothing; this mirrors the write-side
// normalization rather than re-normalizing at query time.
type ListFilter struct {
	OwnerID int

	Status string
	Email  string
	Search string

	StartFrom *time.Time
	StartTo   *time.Time
	EndFrom   *time.Time
	EndTo     *time.Time

	Page  int
	Limit int
	Sort  string
}

// whereClause compiles the filter into a parameterized WHERE body and its
// arguments. The same clause backs both the page query and the total count,
// which keeps pages = ceil(total/limit) consistent with the returned rows.
func (f ListFilter) whereClause() (string, []any) {
	conds := []string{"created_by = $1"}
	args := []any{f.OwnerID}

	next := func() string { return fmt.Sprintf("$%d", len(args)+1) }

	if f.Status != "" {
		conds = append(conds, "status = "+next())
		args = append(args, f.Status)
	}
	if f.Email != "" {
		conds = append(conds, "email = "+next())
		args = append(args, f.Email)
	}
	if needle := strings.TrimSpace(f.Search); needle != "" {
		p := next()
		conds = append(conds, fmt.Sprintf("(name ILIKE %[1]s OR item_name ILIKE %[1]s OR item_type ILIKE %[1]s)", p))
		args = append(args, "%"+escapeLike(needle)+"%")
	}
	if f.StartFrom != nil {
		conds = append(conds, "start_at >= "+next())
		args = append(args, *f.StartFrom)
	}
	if f.StartTo != nil {
		conds = append(conds, "start_at <= "+next())
		args = append(args, *f.StartTo)
	}
	if f.EndFrom != nil {
		conds = append(conds, "end_at >= "+next())
		args = append(args, *f.EndFrom)
	}
	if f.EndTo != nil {
		conds = append(conds, "end_at <= "+next())
		args = append(args, *f.EndTo)
	}

	return strings.Join(conds, " AND "), args
}

// orderClause resolves the sort string against the allow-list. A leading
// '-' means descending. Unknown or malformed values fall back to the
// default order instead of erroring.
func (f ListFilter) orderClause() string {
	raw := strings.TrimSpace(f.Sort)
	if raw == "" {
		return defaultOrder
	}
	desc := strings.HasPrefix(raw, "-")
	key := strings.TrimPrefix(raw, "-")
	column, ok := sortColumns[key]
	if !ok {
		return defaultOrder
	}
	if desc {
		return column + " DESC"
	}
	return column + " ASC"
}

// pageLimit clamps pagination to sane bounds and returns (limit, offset).
func (f ListFilter) pageLimit() (int, int) {
	page := f.Page
	if page < 1 {
		page = defaultPage
	}
	limit := f.Limit
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return limit, (page - 1) * limit
}

func placeholder(n int) string { return fmt.Sprintf("$%d", n) }

// escapeLike neutralizes LIKE metacharacters in user input so a search for
// "50%" matches literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

// Pages computes the page count for a (total, limit) pair; zero totals yield
// zero pages.
func Pages(total, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}
