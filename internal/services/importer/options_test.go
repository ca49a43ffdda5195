package importer

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfiles(t *testing.T) {
	for _, name := range ProfileNames() {
		o, err := Profile(name)
		require.NoError(t, err, name)
		assert.NoError(t, o.Validate(), name)
		assert.Positive(t, o.SessionRowLimit, name)
	}

	small, _ := Profile("Small")
	large, _ := Profile("large")
	assert.Less(t, small.BatchSize, large.BatchSize)
	assert.Greater(t, small.InterBatchDelay, large.InterBatchDelay)
	assert.Equal(t, DefaultMaxErrors, small.MaxErrors)
	assert.Equal(t, "utf-8", small.Encoding)

	_, err := Profile("huge")
	assert.Error(t, err)
}

func TestOptionsValidate(t *testing.T) {
	assert.NoError(t, Options{}.WithDefaults().Validate())
	assert.Equal(t, DefaultBatchSize, Options{}.WithDefaults().BatchSize)
	assert.Equal(t, "windows-1252", Options{Encoding: "CP1252"}.WithDefaults().Encoding)

	bad := []Options{
		{BatchSize: -1},
		{SessionRowLimit: -5},
		{InterBatchDelay: -time.Second},
		{WriteRetries: 11},
		{Encoding: "ebcdic"},
	}
	for _, o := range bad {
		assert.Error(t, o.WithDefaults().Validate(), "%+v", o)
	}
}

func TestLineReader(t *testing.T) {
	lr := newLineReader(strings.NewReader("a\r\nb\nc"))
	n, err := lr.skip(1)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	lines, eof, err := lr.next(5, 1)
	require.NoError(t, err)
	assert.True(t, eof)
	require.Len(t, lines, 2)
	assert.Equal(t, "b", lines[0].Text)
	assert.EqualValues(t, 1, lines[0].Offset)
	assert.Equal(t, "c", lines[1].Text)
	assert.EqualValues(t, 2, lines[1].Offset)

	lr = newLineReader(strings.NewReader("a\nb\n"))
	n, err = lr.skip(10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	lr = newLineReader(strings.NewReader("a\nb\n"))
	lines, eof, err = lr.next(1, 0)
	require.NoError(t, err)
	assert.False(t, eof)
	assert.Equal(t, "a", lines[0].Text)
	lines, eof, err = lr.next(1, 1)
	require.NoError(t, err)
	assert.True(t, eof)
	assert.Equal(t, "b", lines[0].Text)

	long := strings.Repeat("x", 1<<17)
	lr = newLineReader(strings.NewReader(long + "\nnext\n"))
	n, err = lr.skip(1)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	lines, _, err = lr.next(1, 1)
	require.NoError(t, err)
	assert.Equal(t, "next", lines[0].Text)
}
