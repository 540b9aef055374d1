// Package web serves the attendance admin page and its JSON API.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"attendancelist/internal/apperrors"
	"attendancelist/internal/logger"
	"attendancelist/internal/queue"
	"attendancelist/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{"attendance", "loading", "notfound"}

// Handler owns the routes that read view sessions.
type Handler struct {
	sessions *session.Manager
	events   queue.Queue
	loc      *time.Location
	pages    map[string]*template.Template
	log      zerolog.Logger
}

// NewHandler parses the page templates. events may be nil, in which case
// exports are not reported.
func NewHandler(sessions *session.Manager, events queue.Queue, loc *time.Location) (*Handler, error) {
	if loc == nil {
		loc = time.Local
	}
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s page: %w", name, err)
		}
		pages[name] = t
	}
	return &Handler{
		sessions: sessions,
		events:   events,
		loc:      loc,
		pages:    pages,
		log:      logger.With("web"),
	}, nil
}

func (h *Handler) render(c *gin.Context, status int, page string, data pageData) {
	var buf bytes.Buffer
	if err := h.pages[page].ExecuteTemplate(&buf, "layout", data); err != nil {
		h.log.Error().Err(err).Str("page", page).Msg("render failed")
		c.String(http.StatusInternalServerError, "page could not be rendered")
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

// fail answers with the JSON error body and the status the error maps to.
func (h *Handler) fail(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
