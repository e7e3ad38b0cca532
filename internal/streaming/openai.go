package streaming

import (
	"fmt"
	"io"

	"github.com/tidwall/gjson"
)

// OpenAIDecoder decodes the OpenAI-compatible SSE dialect shared by OpenAI,
// DeepSeek, Groq, Zhipu, GitHub Models, Ollama, Custom and Built-in (spec
// §4.5): every non-empty line beginning with "data: " (or "data:" without
// the space) is either "[DONE]" (terminate) or a JSON object whose
// choices[0].delta.content, when present and non-empty, is the next chunk.
// Lines not starting with "data:" are ignored.
type OpenAIDecoder struct {
	lines *rawLineReader
	done  bool
}

// NewOpenAIDecoder wraps body in an OpenAIDecoder.
func NewOpenAIDecoder(body io.Reader) *OpenAIDecoder {
	return &OpenAIDecoder{lines: newRawLineReader(body)}
}

// Next returns the next decoded text delta. ok is false once the stream is
// exhausted (either a natural EOF or a "[DONE]" marker); err is non-nil only
// on a malformed chunk or a read failure.
func (d *OpenAIDecoder) Next() (text string, ok bool, err error) {
	if d.done {
		return "", false, nil
	}
	for {
		line, more := d.lines.next()
		if !more {
			d.done = true
			return "", false, d.lines.err()
		}
		if line == "" {
			continue
		}
		const prefix = "data: "
		const prefixNoSpace = "data:"
		var payload string
		switch {
		case len(line) >= len(prefix) && line[:len(prefix)] == prefix:
			payload = line[len(prefix):]
		case len(line) >= len(prefixNoSpace) && line[:len(prefixNoSpace)] == prefixNoSpace:
			payload = line[len(prefixNoSpace):]
		default:
			continue // lines not starting with "data:" are ignored
		}

		if payload == "[DONE]" {
			d.done = true
			return "", false, nil
		}
		if !gjson.Valid(payload) {
			return "", false, fmt.Errorf("openai sse: malformed json chunk: %q", payload)
		}
		parsed := gjson.Parse(payload)
		content := parsed.Get("choices.0.delta.content")
		if !content.Exists() || content.String() == "" {
			continue
		}
		return content.String(), true, nil
	}
}
