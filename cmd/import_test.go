package main

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"dgii_fiscal/internal/services/importer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintImportCancelledSessionStillPrintsSummary(t *testing.T) {
	var buf bytes.Buffer
	res := importer.Result{
		RunID: "r1", Status: importer.StatusPartial, Processed: 4, Inserted: 3,
		Batches: 2, Cancelled: true, Errors: []string{"line 2: bad identifier"}, ErrorsDropped: 5,
		Duration: time.Second,
	}

	err := printImport(&buf, res, context.Canceled)
	assert.ErrorIs(t, err, context.Canceled)

	out := buf.String()
	assert.Contains(t, out, "run=r1 status=partial processed=4 inserted=3")
	assert.Contains(t, out, "cancelled=true")
	assert.Contains(t, out, "  - line 2: bad identifier")
	assert.Contains(t, out, "... 5 more")
}

func TestPrintImportOutcomes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printImport(&buf, importer.Result{RunID: "ok", Status: importer.StatusDone}, nil))
	assert.Contains(t, buf.String(), "run=ok status=done")

	buf.Reset()
	err := printImport(&buf, importer.Result{RunID: "f", Status: importer.StatusFailed, Duration: time.Millisecond}, errors.New("open source: not found"))
	assert.EqualError(t, err, "open source: not found")
	assert.Contains(t, buf.String(), "run=f status=failed")

	// rejected before the session started: nothing to summarise
	buf.Reset()
	err = printImport(&buf, importer.Result{RunID: "l", Status: importer.StatusFailed}, errors.New("another import is running"))
	assert.Error(t, err)
	assert.Empty(t, buf.String())
}
