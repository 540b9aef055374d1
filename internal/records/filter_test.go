package records

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attendancelist/internal/apperrors"
)

func ts(s string) *time.Time {
	t := ParseTimestamp(s)
	if t == nil {
		panic("bad timestamp " + s)
	}
	return t
}

func day(t *testing.T, s string) *time.Time {
	t.Helper()
	d, err := time.ParseInLocation(DateLayout, s, time.UTC)
	require.NoError(t, err)
	return &d
}

func names(recs []Record) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Name)
	}
	return out
}

func sampleRecords() []Record {
	return []Record{
		{ID: "1", Name: "A", College: "X", Attendance: true, AttendanceDate: ts("2024-01-05")},
		{ID: "2", Name: "B", College: "Y", Attendance: false, RegistrationDate: ts("2024-01-10")},
	}
}

func TestFilterEndToEndScenario(t *testing.T) {
	recs := sampleRecords()

	assert.Equal(t, []string{"A"}, names(Filter(recs, Criteria{College: "X"})))
	assert.Equal(t, []string{"B"}, names(Filter(recs, Criteria{From: day(t, "2024-01-08"), To: day(t, "2024-01-12")})))
	// a single character never narrows the list
	assert.Equal(t, []string{"A", "B"}, names(Filter(recs, Criteria{Search: "a"})))
}

func TestFilterIdentityWithoutCriteria(t *testing.T) {
	recs := sampleRecords()
	got := Filter(recs, Criteria{})
	assert.Equal(t, recs, got)
	assert.False(t, Criteria{}.Active())
}

func TestFilterPreservesOrder(t *testing.T) {
	recs := []Record{
		{Name: "c1", College: "X"},
		{Name: "c2", College: "Y"},
		{Name: "c3", College: "X"},
		{Name: "c4", College: "X"},
	}
	assert.Equal(t, []string{"c1", "c3", "c4"}, names(Filter(recs, Criteria{College: "X"})))
	assert.Equal(t, "c2", recs[1].Name, "input untouched")
}

func TestFilterCollegeIsCaseSensitive(t *testing.T) {
	recs := []Record{{Name: "a", College: "MIT"}, {Name: "b", College: "mit"}}
	assert.Equal(t, []string{"a"}, names(Filter(recs, Criteria{College: "MIT"})))
}

func TestFilterSearch(t *testing.T) {
	recs := []Record{
		{Name: "Asha Rao", Email: "asha@example.com", Phone: "98450", College: "RVCE", Branch: "CSE"},
		{Name: "Bala", Email: "bala@example.com", Phone: "77001", College: "BMS", Branch: "ECE"},
		{Name: "Chitra"},
	}

	cases := []struct {
		search string
		want   []string
	}{
		{"", []string{"Asha Rao", "Bala", "Chitra"}},
		{"z", []string{"Asha Rao", "Bala", "Chitra"}},
		{"ASHA", []string{"Asha Rao"}},
		{"example.com", []string{"Asha Rao", "Bala"}},
		{"770", []string{"Bala"}},
		{"rvce", []string{"Asha Rao"}},
		{"ece", []string{"Bala"}},
		{"rao rvce", nil},
		{"cse", []string{"Asha Rao"}},
		{"hit", []string{"Chitra"}},
	}
	for _, tc := range cases {
		t.Run(tc.search, func(t *testing.T) {
			got := names(Filter(recs, Criteria{Search: tc.search}))
			if tc.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFilterSearchSpansFieldBoundary(t *testing.T) {
	recs := []Record{{Name: "Ravi", Email: "r@x.in"}}
	// fields are joined with a single space
	assert.Len(t, Filter(recs, Criteria{Search: "vi r@"}), 1)
}

func TestFilterDateBoundaries(t *testing.T) {
	to := day(t, "2024-01-12")
	from := day(t, "2024-01-08")
	end := EndOfDay(*to)

	at := func(t time.Time) *time.Time { return &t }
	recs := []Record{
		{Name: "start", AttendanceDate: at(*from)},
		{Name: "before-start", AttendanceDate: at(from.Add(-time.Millisecond))},
		{Name: "end-minus-1ms", AttendanceDate: at(end.Add(-time.Millisecond))},
		{Name: "end", AttendanceDate: at(end)},
		{Name: "end-plus-1ms", AttendanceDate: at(end.Add(time.Millisecond))},
		{Name: "registration-fallback", RegistrationDate: at(from.Add(time.Hour))},
		{Name: "undated"},
	}

	got := names(Filter(recs, Criteria{From: from, To: to}))
	assert.Equal(t, []string{"start", "end-minus-1ms", "end", "registration-fallback"}, got)
}

func TestFilterAttendanceDateWinsOverRegistration(t *testing.T) {
	recs := []Record{{
		Name:             "late",
		AttendanceDate:   ts("2024-02-01T10:00:00Z"),
		RegistrationDate: ts("2024-01-09T10:00:00Z"),
	}}
	assert.Empty(t, Filter(recs, Criteria{From: day(t, "2024-01-08"), To: day(t, "2024-01-12")}))
}

func TestFilterUndatedRecords(t *testing.T) {
	recs := []Record{{Name: "undated"}}

	assert.Len(t, Filter(recs, Criteria{}), 1)
	assert.Empty(t, Filter(recs, Criteria{From: day(t, "2024-01-01")}))
	assert.Empty(t, Filter(recs, Criteria{To: day(t, "2024-01-01")}))
}

func TestFilterOpenEndedRanges(t *testing.T) {
	recs := sampleRecords()
	assert.Equal(t, []string{"B"}, names(Filter(recs, Criteria{From: day(t, "2024-01-06")})))
	assert.Equal(t, []string{"A"}, names(Filter(recs, Criteria{To: day(t, "2024-01-05")})))
}

func TestFilterCombinesPredicates(t *testing.T) {
	recs := []Record{
		{Name: "Anu", College: "X", Branch: "CSE", AttendanceDate: ts("2024-01-05T09:00:00Z")},
		{Name: "Anil", College: "X", Branch: "MECH", AttendanceDate: ts("2024-01-05T09:00:00Z")},
		{Name: "Anand", College: "Y", Branch: "CSE", AttendanceDate: ts("2024-01-05T09:00:00Z")},
		{Name: "Arun", College: "X", Branch: "CSE", AttendanceDate: ts("2024-03-01T09:00:00Z")},
	}
	c := Criteria{College: "X", From: day(t, "2024-01-01"), To: day(t, "2024-01-31"), Search: "cse"}
	assert.Equal(t, []string{"Anu"}, names(Filter(recs, c)))
}

func TestDistinctColleges(t *testing.T) {
	recs := []Record{
		{College: "Y"},
		{College: ""},
		{College: "X"},
		{College: "Y"},
		{},
		{College: "x"},
	}
	assert.Equal(t, []string{"Y", "X", "x"}, DistinctColleges(recs))
	assert.Empty(t, DistinctColleges(nil))
	assert.NotNil(t, DistinctColleges(nil))
}

func TestParseCriteria(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)

	c, err := ParseCriteria("X", "2024-01-08", "2024-01-12", "ab", loc)
	require.NoError(t, err)
	assert.Equal(t, "X", c.College)
	assert.Equal(t, "ab", c.Search)
	require.NotNil(t, c.From)
	require.NotNil(t, c.To)
	assert.True(t, time.Date(2024, 1, 8, 0, 0, 0, 0, loc).Equal(*c.From))
	assert.True(t, time.Date(2024, 1, 12, 23, 59, 59, 999000000, loc).Equal(EndOfDay(*c.To)))
	assert.Equal(t, loc, c.To.Location())
	assert.True(t, c.Active())

	empty, err := ParseCriteria("", " ", "", "", loc)
	require.NoError(t, err)
	assert.False(t, empty.HasDateRange())

	_, err = ParseCriteria("", "2024-13-01", "", "", loc)
	assert.ErrorIs(t, err, apperrors.ErrInvalidCriteria)
	_, err = ParseCriteria("", "", "12/01/2024", "", loc)
	assert.ErrorIs(t, err, apperrors.ErrInvalidCriteria)
}
