package streaming

import (
	"fmt"
	"io"
	"strings"

	"github.com/tidwall/gjson"
)

// GeminiDecoder decodes the Gemini alt=sse JSON-lines dialect (spec §4.6):
// each line carries an optional "data: " prefix which is stripped if
// present, then the remainder is parsed as JSON and
// candidates[0].content.parts[0].text is read. A literal "[DONE]" marker is
// ignored rather than treated as a terminator (Gemini does not emit one,
// but some proxies forward an OpenAI-style sentinel).
type GeminiDecoder struct {
	lines *rawLineReader
	done  bool
}

// NewGeminiDecoder wraps body in a GeminiDecoder.
func NewGeminiDecoder(body io.Reader) *GeminiDecoder {
	return &GeminiDecoder{lines: newRawLineReader(body)}
}

func (d *GeminiDecoder) Next() (text string, ok bool, err error) {
	if d.done {
		return "", false, nil
	}
	for {
		line, more := d.lines.next()
		if !more {
			d.done = true
			return "", false, d.lines.err()
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		payload := strings.TrimPrefix(line, "data: ")
		payload = strings.TrimPrefix(payload, "data:")
		payload = strings.TrimSpace(payload)
		if payload == "" || payload == "[DONE]" {
			continue
		}
		if !gjson.Valid(payload) {
			return "", false, fmt.Errorf("gemini sse: malformed json chunk: %q", payload)
		}
		parsed := gjson.Parse(payload)
		part := parsed.Get("candidates.0.content.parts.0.text")
		if !part.Exists() || part.String() == "" {
			continue
		}
		return part.String(), true, nil
	}
}
