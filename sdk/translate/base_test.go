package translate

import (
	"context"
	"errors"
	"testing"
)

type stubInternal struct {
	cap    Capability
	result Result
	err    error
}

func (s *stubInternal) Capability() Capability { return s.cap }
func (s *stubInternal) TranslateInternal(ctx context.Context, req Request) (Result, error) {
	return s.result, s.err
}

func TestBaseValidateEmptyText(t *testing.T) {
	b := NewBase(&stubInternal{cap: Capability{ServiceID: "stub"}})
	err := b.Validate(Request{Text: "   ", ToLanguage: English})
	var te *Error
	if !errors.As(err, &te) || te.Kind != ErrUnknown {
		t.Fatalf("expected ErrUnknown for empty text, got %v", err)
	}
}

func TestBaseValidateRequiresAPIKey(t *testing.T) {
	b := NewBase(&stubInternal{cap: Capability{ServiceID: "stub", RequiresAPIKey: true, IsConfigured: false}})
	err := b.Validate(Request{Text: "hi", ToLanguage: English})
	var te *Error
	if !errors.As(err, &te) || te.Kind != ErrInvalidAPIKey {
		t.Fatalf("expected ErrInvalidAPIKey, got %v", err)
	}
}

func TestBaseValidateUnsupportedLanguage(t *testing.T) {
	b := NewBase(&stubInternal{cap: Capability{
		ServiceID:          "stub",
		SupportedLanguages: map[Language]bool{English: true},
	}})
	err := b.Validate(Request{Text: "hi", ToLanguage: French})
	var te *Error
	if !errors.As(err, &te) || te.Kind != ErrUnsupportedLanguage {
		t.Fatalf("expected ErrUnsupportedLanguage, got %v", err)
	}
}

func TestBaseValidateTextTooLong(t *testing.T) {
	b := NewBase(&stubInternal{cap: Capability{ServiceID: "stub", MaxTextLength: 3}})
	err := b.Validate(Request{Text: "hello", ToLanguage: English})
	var te *Error
	if !errors.As(err, &te) || te.Kind != ErrTextTooLong {
		t.Fatalf("expected ErrTextTooLong, got %v", err)
	}
}

func TestBaseTranslateRecordsTiming(t *testing.T) {
	impl := &stubInternal{
		cap:    Capability{ServiceID: "stub"},
		result: Result{TranslatedText: "hola"},
	}
	b := NewBase(impl)
	res, err := b.Translate(context.Background(), Request{Text: "hello", ToLanguage: Spanish})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.TimingMS < 0 {
		t.Fatalf("timing_ms must be >= 0, got %d", res.TimingMS)
	}
	if res.TranslatedText != "hola" {
		t.Fatalf("unexpected translated text: %s", res.TranslatedText)
	}
}

func TestBaseTranslatePassesThroughTaggedError(t *testing.T) {
	want := New("stub", ErrRateLimited, "slow down")
	impl := &stubInternal{cap: Capability{ServiceID: "stub"}, err: want}
	b := NewBase(impl)
	_, err := b.Translate(context.Background(), Request{Text: "hello", ToLanguage: English})
	var te *Error
	if !errors.As(err, &te) || te.Kind != ErrRateLimited {
		t.Fatalf("expected passthrough ErrRateLimited, got %v", err)
	}
}

func TestBaseTranslateWrapsUnknown(t *testing.T) {
	impl := &stubInternal{cap: Capability{ServiceID: "stub"}, err: errors.New("boom")}
	b := NewBase(impl)
	_, err := b.Translate(context.Background(), Request{Text: "hello", ToLanguage: English})
	var te *Error
	if !errors.As(err, &te) || te.Kind != ErrUnknown {
		t.Fatalf("expected ErrUnknown wrap, got %v", err)
	}
}

func TestBaseTranslateEmptyResultIsInvalidResponse(t *testing.T) {
	impl := &stubInternal{cap: Capability{ServiceID: "stub"}, result: Result{TranslatedText: "  "}}
	b := NewBase(impl)
	_, err := b.Translate(context.Background(), Request{Text: "hello", ToLanguage: English})
	var te *Error
	if !errors.As(err, &te) || te.Kind != ErrInvalidResponse {
		t.Fatalf("expected ErrInvalidResponse, got %v", err)
	}
}

func TestTrimCollapsedStripsMatchingQuotes(t *testing.T) {
	cases := map[string]string{
		`"hello"`:    "hello",
		`'hello'`:    "hello",
		"“hello”":    "hello",
		"  hello  ":  "hello",
		`"unbalanced`: `"unbalanced`,
		`a`:           `a`,
	}
	for in, want := range cases {
		if got := TrimCollapsed(in); got != want {
			t.Errorf("TrimCollapsed(%q) = %q, want %q", in, got, want)
		}
	}
}

type fakeStream struct {
	chunks []string
	i      int
}

func (f *fakeStream) Next(ctx context.Context) (Chunk, bool) {
	if f.i >= len(f.chunks) {
		return Chunk{}, false
	}
	c := Chunk{Text: f.chunks[f.i]}
	f.i++
	return c, f.i < len(f.chunks)
}
func (f *fakeStream) Close() error { return nil }

func TestCollapseStreamConcatenatesInOrder(t *testing.T) {
	s := &fakeStream{chunks: []string{"Hello", " ", "World"}}
	got, err := CollapseStream(context.Background(), s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Hello World" {
		t.Fatalf("got %q", got)
	}
}
