package importer

import (
	"bufio"
	"errors"
	"io"
	"strings"

	"dgii_fiscal/internal/ports"

	"golang.org/x/text/encoding/charmap"
)

func decode(r io.Reader, encoding string) io.Reader {
	switch encoding {
	case "latin1":
		return charmap.ISO8859_1.NewDecoder().Reader(r)
	case "windows-1252":
		return charmap.Windows1252.NewDecoder().Reader(r)
	}
	return r
}

// lineReader hands out source lines in order. A trailing newline at the end
// of the source does not produce an extra empty line.
type lineReader struct {
	r *bufio.Reader
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{r: bufio.NewReaderSize(r, 1<<16)}
}

// skip discards up to n lines and reports how many were actually there.
func (lr *lineReader) skip(n int64) (int64, error) {
	var skipped int64
	partial := false
	for skipped < n {
		chunk, err := lr.r.ReadSlice('\n')
		switch {
		case err == nil:
			skipped++
			partial = false
		case errors.Is(err, bufio.ErrBufferFull):
			partial = true
		case errors.Is(err, io.EOF):
			if len(chunk) > 0 || partial {
				skipped++
			}
			return skipped, nil
		default:
			return skipped, err
		}
	}
	return skipped, nil
}

// next reads up to n lines numbered from start. eof reports that nothing is
// left after the returned lines.
func (lr *lineReader) next(n int, start int64) (lines []ports.Line, eof bool, err error) {
	lines = make([]ports.Line, 0, n)
	for len(lines) < n {
		s, rerr := lr.r.ReadString('\n')
		if rerr != nil && !errors.Is(rerr, io.EOF) {
			return lines, false, rerr
		}
		if s != "" {
			lines = append(lines, ports.Line{
				Offset: start + int64(len(lines)),
				Text:   strings.TrimRight(s, "\r\n"),
			})
		}
		if rerr != nil {
			return lines, true, nil
		}
	}
	if _, perr := lr.r.Peek(1); errors.Is(perr, io.EOF) {
		return lines, true, nil
	}
	return lines, false, nil
}
