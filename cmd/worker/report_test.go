package main

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attendancelist/internal/queue"
)

func TestTally(t *testing.T) {
	tl := newTally()
	tl.observe(queue.ExportEvent{Outcome: "success", Rows: 3, College: "RVCE"})
	tl.observe(queue.ExportEvent{Outcome: "success", Rows: 2})
	tl.observe(queue.ExportEvent{Outcome: "failure", Rows: 9, Error: "export encode: boom"})

	assert.Equal(t, 2, tl.succeeded)
	assert.Equal(t, 1, tl.failed)
	assert.Equal(t, 5, tl.rows)
	assert.Equal(t, map[string]int{"RVCE": 1, "all": 1}, tl.colleges)
}

func TestRunDrainsUntilClosed(t *testing.T) {
	body, err := json.Marshal(queue.ExportEvent{SessionID: "s1", Outcome: "success", Rows: 4, At: time.Now()})
	require.NoError(t, err)

	messages := make(chan queue.Message, 3)
	messages <- queue.Message{Type: queue.TypeExport, Body: body}
	messages <- queue.Message{Type: "unknown", Body: []byte("x")}
	messages <- queue.Message{Type: queue.TypeExport, Body: []byte("{")}
	close(messages)

	tl := newTally()
	run(context.Background(), messages, tl, nil)

	assert.Equal(t, 1, tl.succeeded)
	assert.Equal(t, 4, tl.rows)
	assert.Zero(t, tl.failed)
}
