package streaming

import (
	"strings"
	"testing"
)

func drainOpenAI(t *testing.T, body string) string {
	t.Helper()
	dec := NewOpenAIDecoder(strings.NewReader(body))
	var sb strings.Builder
	for {
		text, ok, err := dec.Next()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		sb.WriteString(text)
		if !ok {
			break
		}
	}
	return sb.String()
}

func TestOpenAIDecoderConcatenatesDeltas(t *testing.T) {
	body := "data: {\"choices\":[{\"delta\":{\"content\":\"Hello\"}}]}\n" +
		"data: {\"choices\":[{\"delta\":{\"content\":\" World\"}}]}\n" +
		"data: [DONE]\n"
	got := drainOpenAI(t, body)
	if got != "Hello World" {
		t.Fatalf("got %q", got)
	}
}

func TestOpenAIDecoderIgnoresNonDataLines(t *testing.T) {
	body := ": keep-alive\n" +
		"data: {\"choices\":[{\"delta\":{\"content\":\"Hi\"}}]}\n" +
		"data: [DONE]\n"
	got := drainOpenAI(t, body)
	if got != "Hi" {
		t.Fatalf("got %q", got)
	}
}

func drainGemini(t *testing.T, body string) string {
	t.Helper()
	dec := NewGeminiDecoder(strings.NewReader(body))
	var sb strings.Builder
	for {
		text, ok, err := dec.Next()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		sb.WriteString(text)
		if !ok {
			break
		}
	}
	return sb.String()
}

func TestGeminiDecoderReadsPartsText(t *testing.T) {
	body := "data: {\"candidates\":[{\"content\":{\"parts\":[{\"text\":\"Bonjour\"}]}}]}\n\n"
	got := drainGemini(t, body)
	if got != "Bonjour" {
		t.Fatalf("got %q", got)
	}
}

func TestDoubaoDecoderOnlyConsumesDeltaEvent(t *testing.T) {
	body := "event: response.created\n" +
		"data: {\"id\":\"1\"}\n\n" +
		"event: response.output_text.delta\n" +
		"data: {\"delta\":\"Hello\"}\n\n" +
		"data: [DONE]\n"
	dec := NewDoubaoDecoder(strings.NewReader(body))

	text, ok, err := dec.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Hello" {
		t.Fatalf("expected exactly one chunk %q, got %q", "Hello", text)
	}
	if ok {
		// Next call should report exhaustion (the [DONE] marker follows).
		text2, ok2, err2 := dec.Next()
		if err2 != nil {
			t.Fatalf("unexpected error: %v", err2)
		}
		if ok2 || text2 != "" {
			t.Fatalf("expected stream to end after the single delta, got %q ok=%v", text2, ok2)
		}
	}
}
