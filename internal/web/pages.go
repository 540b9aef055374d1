package web

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"attendancelist/internal/apperrors"
	"attendancelist/internal/export"
	"attendancelist/internal/metrics"
	"attendancelist/internal/records"
)

const pageTitle = "Attendance List"

// formValues echoes the raw query back into the filter form.
type formValues struct {
	College string
	From    string
	To      string
	Search  string
}

func formFrom(c *gin.Context) formValues {
	return formValues{
		College: c.Query("college"),
		From:    c.Query("from"),
		To:      c.Query("to"),
		Search:  c.Query("q"),
	}
}

func (f formValues) criteria(loc *time.Location) (records.Criteria, error) {
	return records.ParseCriteria(f.College, f.From, f.To, f.Search, loc)
}

func (f formValues) query() url.Values {
	v := url.Values{}
	if f.College != "" {
		v.Set("college", f.College)
	}
	if f.From != "" {
		v.Set("from", f.From)
	}
	if f.To != "" {
		v.Set("to", f.To)
	}
	if f.Search != "" {
		v.Set("q", f.Search)
	}
	return v
}

type tableRow struct {
	Seq              int
	Name             string
	Gender           string
	Phone            string
	College          string
	Branch           string
	Email            string
	Slot             string
	Attended         bool
	AttendanceDate   string
	RegistrationDate string
}

type pageData struct {
	Title     string
	Refresh   bool
	SessionID string
	Form      formValues
	Colleges  []string
	Rows      []tableRow
	Total     int
	Notice    string
	ExportURL string
}

func tableRows(recs []records.Record, loc *time.Location) []tableRow {
	rows := make([]tableRow, len(recs))
	for i, r := range recs {
		rows[i] = tableRow{
			Seq:              i + 1,
			Name:             r.Name,
			Gender:           r.Gender,
			Phone:            r.Phone,
			College:          r.College,
			Branch:           r.Branch,
			Email:            r.Email,
			Slot:             r.Slot,
			Attended:         r.Attendance,
			AttendanceDate:   orDash(export.FormatDateTime(r.AttendanceDate, loc)),
			RegistrationDate: orDash(export.FormatDate(r.RegistrationDate, loc)),
		}
	}
	return rows
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func exportURL(id string, f formValues) string {
	u := "/v1/sessions/" + url.PathEscape(id) + "/export"
	if q := f.query().Encode(); q != "" {
		u += "?" + q
	}
	return u
}

// Start opens a new view session and sends the browser to it.
func (h *Handler) Start(c *gin.Context) {
	snap, err := h.sessions.Begin(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("could not start session")
		c.String(http.StatusInternalServerError, "attendance list could not be opened")
		return
	}
	c.Redirect(http.StatusSeeOther, "/attendance/"+snap.ID)
}

// AttendancePage renders the table for one session. A failed load renders
// as an empty table; the cause is only logged.
func (h *Handler) AttendancePage(c *gin.Context) {
	snap, err := h.sessions.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, apperrors.ErrSessionNotFound) {
		h.render(c, http.StatusNotFound, "notfound", pageData{Title: pageTitle})
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("session", c.Param("id")).Msg("session lookup failed")
		c.String(http.StatusInternalServerError, "attendance list unavailable")
		return
	}

	form := formFrom(c)
	data := pageData{Title: pageTitle, SessionID: snap.ID, Form: form}
	if snap.Loading() {
		data.Refresh = true
		h.render(c, http.StatusOK, "loading", data)
		return
	}

	crit, err := form.criteria(h.loc)
	if err != nil {
		data.Notice = "Date filter ignored: " + err.Error()
		form.From, form.To = "", ""
		data.Form = form
		crit, _ = form.criteria(h.loc)
	}

	filtered := records.Filter(snap.Records, crit)
	metrics.FilterRequests.WithLabelValues("page").Inc()

	data.Colleges = records.DistinctColleges(snap.Records)
	data.Rows = tableRows(filtered, h.loc)
	data.Total = len(filtered)
	data.ExportURL = exportURL(snap.ID, form)
	h.render(c, http.StatusOK, "attendance", data)
}
