package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/horizon-insight/cordis-etl/internal/load"
)

func TestFormatRunEntries_Empty(t *testing.T) {
	var buf bytes.Buffer
	formatRunEntries(&buf, nil)

	output := buf.String()
	// Header prints even when there are no entries.
	assert.Contains(t, output, "STAGE")
	assert.Contains(t, output, "STATUS")
	assert.Contains(t, output, "STARTED")
}

func TestFormatRunEntries_SingleEntry(t *testing.T) {
	started := time.Date(2026, 3, 2, 9, 15, 0, 0, time.UTC)
	completed := started.Add(3 * time.Minute)

	entries := []load.RunEntry{
		{
			ID:          uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8"),
			Stage:       "load",
			Status:      "complete",
			StartedAt:   started,
			CompletedAt: &completed,
			RowsLoaded:  12345,
		},
	}

	var buf bytes.Buffer
	formatRunEntries(&buf, entries)

	output := buf.String()
	assert.Contains(t, output, "load")
	assert.Contains(t, output, "complete")
	assert.Contains(t, output, "2026-03-02 09:15")
	assert.Contains(t, output, "3m0s")
	assert.Contains(t, output, "12345")
}

func TestFormatRunEntries_FailedRun(t *testing.T) {
	started := time.Date(2026, 3, 2, 9, 15, 0, 0, time.UTC)

	entries := []load.RunEntry{
		{
			ID:        uuid.New(),
			Stage:     "load",
			Status:    "failed",
			StartedAt: started,
			Error:     "load: 1 tables failed: topics",
		},
	}

	var buf bytes.Buffer
	formatRunEntries(&buf, entries)

	output := buf.String()
	assert.Contains(t, output, "failed")
	assert.Contains(t, output, "topics")
	assert.Contains(t, output, "-") // no duration for incomplete runs
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "exactly-10", truncate("exactly-10", 10))
	assert.Equal(t, "a-much-...", truncate("a-much-longer-string", 10))
}
