package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"attendancelist/internal/logger"
	"attendancelist/internal/metrics"
)

// TypeExport tags export outcome messages.
const TypeExport = "export"

// ExportEvent records one spreadsheet export and how it ended.
type ExportEvent struct {
	SessionID string    `json:"session_id"`
	Rows      int       `json:"rows"`
	College   string    `json:"college,omitempty"`
	From      string    `json:"from,omitempty"`
	To        string    `json:"to,omitempty"`
	Search    string    `json:"search,omitempty"`
	Outcome   string    `json:"outcome"`
	Error     string    `json:"error,omitempty"`
	At        time.Time `json:"at"`
}

// PublishExport encodes ev and publishes it on q.
func PublishExport(ctx context.Context, q Queue, ev ExportEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode export event: %w", err)
	}
	return q.Publish(ctx, Message{Type: TypeExport, Body: body})
}

// DecodeExport parses an export message body.
func DecodeExport(msg Message) (ExportEvent, error) {
	if msg.Type != TypeExport {
		return ExportEvent{}, fmt.Errorf("unexpected message type %q", msg.Type)
	}
	var ev ExportEvent
	if err := json.Unmarshal(msg.Body, &ev); err != nil {
		return ExportEvent{}, fmt.Errorf("decode export event: %w", err)
	}
	return ev, nil
}

// DrainExports hands every export event on msgs to handle until msgs closes.
// Other message types and undecodable bodies are logged and skipped.
func DrainExports(msgs <-chan Message, handle func(ExportEvent)) {
	for msg := range msgs {
		ev, err := DecodeExport(msg)
		if err != nil {
			logger.Warn().Err(err).Str("type", msg.Type).Msg("skipping message")
			continue
		}
		handle(ev)
	}
}

// LogExport writes one export event to the process log.
func LogExport(ev ExportEvent) {
	e := logger.Info()
	if ev.Outcome != metrics.OutcomeSuccess {
		e = logger.Warn().Str("error", ev.Error)
	}
	e.Str("session", ev.SessionID).
		Str("outcome", ev.Outcome).
		Int("rows", ev.Rows).
		Str("college", ev.College).
		Str("from", ev.From).
		Str("to", ev.To).
		Str("search", ev.Search).
		Time("at", ev.At).
		Msg("export")
}
