package registry

import (
	"context"
	"testing"
	"time"

	"github.com/transgate/gatewaycore/sdk/translate"
)

type fakeTranslator struct {
	id string
}

func (f *fakeTranslator) Capability() translate.Capability {
	return translate.Capability{ServiceID: f.id, DisplayName: f.id}
}
func (f *fakeTranslator) Validate(req translate.Request) error { return nil }
func (f *fakeTranslator) Translate(ctx context.Context, req translate.Request) (translate.Result, error) {
	return translate.Result{TranslatedText: "ok"}, nil
}
func (f *fakeTranslator) TranslateStream(ctx context.Context, req translate.Request) (translate.Stream, error) {
	return nil, nil
}

func TestHandleGetAndList(t *testing.T) {
	r := New(&fakeTranslator{id: "alpha"}, &fakeTranslator{id: "beta"})
	h := r.AcquireHandle()
	defer h.Release()

	if _, ok := h.Get("alpha"); !ok {
		t.Fatalf("expected alpha to be registered")
	}
	if _, ok := h.Get("missing"); ok {
		t.Fatalf("did not expect missing to resolve")
	}
	list := h.List()
	if len(list) != 2 {
		t.Fatalf("expected 2 providers, got %d", len(list))
	}
}

func TestReconfigureWaitsForHandlesToDrain(t *testing.T) {
	r := New(&fakeTranslator{id: "alpha"})
	h := r.AcquireHandle()

	done := make(chan struct{})
	go func() {
		r.Reconfigure(map[string]translate.Translator{"beta": &fakeTranslator{id: "beta"}})
		close(done)
	}()

	select {
	case <-done:
		t.Fatalf("Reconfigure must not complete while a handle is outstanding")
	case <-time.After(50 * time.Millisecond):
	}

	h.Release()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Reconfigure did not complete after handle release")
	}

	h2 := r.AcquireHandle()
	defer h2.Release()
	if _, ok := h2.Get("alpha"); ok {
		t.Fatalf("expected alpha to be replaced")
	}
	if _, ok := h2.Get("beta"); !ok {
		t.Fatalf("expected beta to be present after reconfigure")
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	r := New(&fakeTranslator{id: "alpha"})
	h := r.AcquireHandle()
	h.Release()
	h.Release()
	if r.Count() != 0 {
		t.Fatalf("expected refcount 0 after double release, got %d", r.Count())
	}
}
