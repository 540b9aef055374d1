package records

import (
	"strings"
	"time"
	"unicode/utf8"

	"attendancelist/internal/apperrors"
)

// DateLayout is the calendar-day format accepted for range bounds.
const DateLayout = "2006-01-02"

// MinSearchLength is the shortest search text that narrows the list.
const MinSearchLength = 2

// Criteria narrows a record list. The zero value matches everything.
// From and To are calendar days; To is inclusive through 23:59:59.999.
type Criteria struct {
	College string
	From    *time.Time
	To      *time.Time
	Search  string
}

// Active reports whether any filter is set.
func (c Criteria) Active() bool {
	return c.College != "" || c.HasDateRange() || c.searchEnabled()
}

// HasDateRange reports whether either range bound is set.
func (c Criteria) HasDateRange() bool {
	return c.From != nil || c.To != nil
}

func (c Criteria) searchEnabled() bool {
	return utf8.RuneCountInString(c.Search) >= MinSearchLength
}

// ParseCriteria builds criteria from raw form values. Empty dates leave the
// bound unset; dates are read as the start of that day in loc.
func ParseCriteria(college, from, to, search string, loc *time.Location) (Criteria, error) {
	if loc == nil {
		loc = time.Local
	}
	c := Criteria{College: college, Search: search}
	if from = strings.TrimSpace(from); from != "" {
		t, err := time.ParseInLocation(DateLayout, from, loc)
		if err != nil {
			return Criteria{}, apperrors.InvalidCriteria("from", from)
		}
		c.From = &t
	}
	if to = strings.TrimSpace(to); to != "" {
		t, err := time.ParseInLocation(DateLayout, to, loc)
		if err != nil {
			return Criteria{}, apperrors.InvalidCriteria("to", to)
		}
		c.To = &t
	}
	return c, nil
}

// Filter returns the records matching c, in their original order.
// The input slice is never modified.
func Filter(recs []Record, c Criteria) []Record {
	m := newMatcher(c)
	out := make([]Record, 0, len(recs))
	for _, r := range recs {
		if m.match(r) {
			out = append(out, r)
		}
	}
	return out
}

// DistinctColleges lists non-empty college names in first-seen order.
func DistinctColleges(recs []Record) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, r := range recs {
		if r.College == "" {
			continue
		}
		if _, ok := seen[r.College]; ok {
			continue
		}
		seen[r.College] = struct{}{}
		out = append(out, r.College)
	}
	return out
}

type matcher struct {
	college  string
	dated    bool
	start    *time.Time
	end      *time.Time
	needle   string
	searched bool
}

func newMatcher(c Criteria) matcher {
	m := matcher{
		college:  c.College,
		dated:    c.HasDateRange(),
		start:    c.From,
		searched: c.searchEnabled(),
	}
	if c.To != nil {
		end := EndOfDay(*c.To)
		m.end = &end
	}
	if m.searched {
		m.needle = strings.ToLower(c.Search)
	}
	return m
}

func (m matcher) match(r Record) bool {
	return m.matchCollege(r) && m.matchDate(r) && m.matchSearch(r)
}

func (m matcher) matchCollege(r Record) bool {
	return m.college == "" || r.College == m.college
}

func (m matcher) matchDate(r Record) bool {
	if !m.dated {
		return true
	}
	d, ok := r.ComparisonDate()
	if !ok {
		return false
	}
	if m.start != nil && d.Before(*m.start) {
		return false
	}
	if m.end != nil && d.After(*m.end) {
		return false
	}
	return true
}

func (m matcher) matchSearch(r Record) bool {
	if !m.searched {
		return true
	}
	haystack := strings.Join([]string{r.Name, r.Email, r.Phone, r.College, r.Branch}, " ")
	return strings.Contains(strings.ToLower(haystack), m.needle)
}

// EndOfDay returns the last millisecond of t's calendar day in t's location.
func EndOfDay(t time.Time) time.Time {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}
