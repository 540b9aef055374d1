package web

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"attendancelist/internal/apperrors"
	"attendancelist/internal/export"
	"attendancelist/internal/metrics"
	"attendancelist/internal/queue"
	"attendancelist/internal/records"
	"attendancelist/internal/session"
)

type sessionView struct {
	ID       string        `json:"id"`
	State    session.State `json:"state"`
	Source   string        `json:"source"`
	Total    int           `json:"total"`
	Colleges []string      `json:"colleges"`
	LoadedAt *time.Time    `json:"loaded_at,omitempty"`
	Error    string        `json:"error,omitempty"`
}

func (h *Handler) CreateSession(c *gin.Context) {
	snap, err := h.sessions.Begin(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"id": snap.ID, "state": snap.State})
}

func (h *Handler) GetSession(c *gin.Context) {
	snap, err := h.sessions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionView{
		ID:       snap.ID,
		State:    snap.State,
		Source:   snap.Source,
		Total:    len(snap.Records),
		Colleges: records.DistinctColleges(snap.Records),
		LoadedAt: snap.LoadedAt,
		Error:    snap.Error,
	})
}

// loaded resolves the session and the query criteria for the list and
// export routes. A session still loading is an error here.
func (h *Handler) loaded(c *gin.Context) (session.Snapshot, records.Criteria, error) {
	snap, err := h.sessions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		return session.Snapshot{}, records.Criteria{}, err
	}
	if snap.Loading() {
		return session.Snapshot{}, records.Criteria{}, fmt.Errorf("session %s: %w", snap.ID, apperrors.ErrSessionLoading)
	}
	crit, err := formFrom(c).criteria(h.loc)
	if err != nil {
		return session.Snapshot{}, records.Criteria{}, err
	}
	return snap, crit, nil
}

func (h *Handler) ListRecords(c *gin.Context) {
	snap, crit, err := h.loaded(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	recs := records.Filter(snap.Records, crit)
	metrics.FilterRequests.WithLabelValues("api").Inc()
	c.JSON(http.StatusOK, gin.H{"records": recs, "total": len(recs)})
}

// Export sends the filtered view as a workbook. The workbook is built in
// memory first so an encoding failure can still answer with JSON.
func (h *Handler) Export(c *gin.Context) {
	snap, crit, err := h.loaded(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	recs := records.Filter(snap.Records, crit)
	metrics.FilterRequests.WithLabelValues("export").Inc()

	ev := queue.ExportEvent{
		SessionID: snap.ID,
		Rows:      len(recs),
		College:   crit.College,
		From:      c.Query("from"),
		To:        c.Query("to"),
		Search:    crit.Search,
		At:        time.Now().UTC(),
	}

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, recs, h.loc); err != nil {
		h.report(c, ev, err)
		h.fail(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+export.FileName+`"`)
	c.Header("Content-Length", strconv.Itoa(buf.Len()))
	c.Header("Content-Type", export.ContentType)
	c.Status(http.StatusOK)
	if _, err := c.Writer.Write(buf.Bytes()); err != nil {
		err = &apperrors.ExportError{Stage: "deliver", Err: err}
		h.log.Error().Err(err).Str("session", snap.ID).Msg("export delivery failed")
		h.report(c, ev, err)
		return
	}
	h.report(c, ev, nil)
}

// report records the export outcome in metrics and on the event queue.
// Publishing problems are logged and otherwise ignored.
func (h *Handler) report(c *gin.Context, ev queue.ExportEvent, exportErr error) {
	ev.Outcome = metrics.OutcomeSuccess
	if exportErr != nil {
		ev.Outcome = metrics.OutcomeFailure
		ev.Error = exportErr.Error()
	} else {
		metrics.ExportRows.Observe(float64(ev.Rows))
	}
	metrics.ExportTotal.WithLabelValues(ev.Outcome).Inc()

	if h.events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), 2*time.Second)
	defer cancel()
	if err := queue.PublishExport(ctx, h.events, ev); err != nil {
		h.log.Warn().Err(err).Str("session", ev.SessionID).Msg("export event not published")
	}
}
