// Package streaming implements the chunked-body parsers of spec §4
// (component 4): OpenAI-style SSE, Gemini alt=sse JSON-lines, and Doubao
// named-event SSE. Each decoder consumes an io.Reader line-by-line and
// yields decoded text deltas in wire order, matching spec invariant (iv).
package streaming

import (
	"bufio"
	"io"
	"strings"
)

// rawLineReader scans an SSE body line by line, trimming the trailing \r a
// server may leave from \r\n line endings. It is shared by every decoder in
// this package since all three dialects are fundamentally line-oriented.
type rawLineReader struct {
	scanner *bufio.Scanner
}

func newRawLineReader(body io.Reader) *rawLineReader {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &rawLineReader{scanner: scanner}
}

// next returns the next line with its trailing \r stripped, and whether a
// line was available.
func (r *rawLineReader) next() (string, bool) {
	if !r.scanner.Scan() {
		return "", false
	}
	return strings.TrimRight(r.scanner.Text(), "\r"), true
}

func (r *rawLineReader) err() error { return r.scanner.Err() }
