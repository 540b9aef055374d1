package main

import (
	"attendancelist/internal/logger"
	"attendancelist/internal/metrics"
	"attendancelist/internal/queue"
)

// tally accumulates export outcomes since the worker started.
type tally struct {
	succeeded int
	failed    int
	rows      int
	colleges  map[string]int
}

func newTally() *tally {
	return &tally{colleges: map[string]int{}}
}

func (t *tally) observe(ev queue.ExportEvent) {
	if ev.Outcome != metrics.OutcomeSuccess {
		t.failed++
		return
	}
	t.succeeded++
	t.rows += ev.Rows
	college := ev.College
	if college == "" {
		college = "all"
	}
	t.colleges[college]++
}

func (t *tally) log() {
	d := logger.Info().
		Int("succeeded", t.succeeded).
		Int("failed", t.failed).
		Int("rows", t.rows)
	for college, n := range t.colleges {
		d = d.Int("college."+college, n)
	}
	d.Msg("export summary")
}
