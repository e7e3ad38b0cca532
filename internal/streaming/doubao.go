package streaming

import (
	"fmt"
	"io"
	"strings"

	"github.com/tidwall/gjson"
)

const doubaoDeltaEvent = "response.output_text.delta"

// DoubaoDecoder decodes ByteDance's Doubao named-event SSE dialect (spec
// §4.6): "event: <name>\n" lines followed by "data: {...}\n\n". Only
// "event: response.output_text.delta" events are consumed; their "delta"
// field is the next chunk. All other named events (response.created,
// response.completed, ...) are skipped.
type DoubaoDecoder struct {
	lines       *rawLineReader
	done        bool
	currentName string
}

// NewDoubaoDecoder wraps body in a DoubaoDecoder.
func NewDoubaoDecoder(body io.Reader) *DoubaoDecoder {
	return &DoubaoDecoder{lines: newRawLineReader(body)}
}

func (d *DoubaoDecoder) Next() (text string, ok bool, err error) {
	if d.done {
		return "", false, nil
	}
	for {
		line, more := d.lines.next()
		if !more {
			d.done = true
			return "", false, d.lines.err()
		}
		switch {
		case strings.HasPrefix(line, "event:"):
			d.currentName = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if payload == "" {
				continue
			}
			if payload == "[DONE]" {
				d.done = true
				return "", false, nil
			}
			if d.currentName != doubaoDeltaEvent {
				continue
			}
			if !gjson.Valid(payload) {
				return "", false, fmt.Errorf("doubao sse: malformed json chunk: %q", payload)
			}
			delta := gjson.Parse(payload).Get("delta")
			if !delta.Exists() || delta.String() == "" {
				continue
			}
			return delta.String(), true, nil
		default:
			// blank line separating events, or an ignored field
			continue
		}
	}
}
