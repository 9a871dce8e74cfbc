package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func captureSpinner(t *testing.T) *syncBuffer {
	t.Helper()
	var buf syncBuffer
	old := spinnerOut
	spinnerOut = &buf
	t.Cleanup(func() { spinnerOut = old })
	return &buf
}

func TestSpinnerDrawsAndClears(t *testing.T) {
	buf := captureSpinner(t)

	s := startSpinner(context.Background(), "Fetching tanks...")
	time.Sleep(200 * time.Millisecond)
	s.setMessage("Rendering...")
	time.Sleep(200 * time.Millisecond)
	s.Stop()
	s.Stop()

	got := buf.String()
	if !strings.Contains(got, "Fetching tanks...") || !strings.Contains(got, "Rendering...") {
		t.Errorf("spinner output missing messages: %q", got)
	}
	if !strings.HasSuffix(got, "\r") {
		t.Errorf("spinner did not clear its line: %q", got)
	}
}

func TestSpinnerContextCancel(t *testing.T) {
	captureSpinner(t)
	ctx, cancel := context.WithCancel(context.Background())

	s := startSpinner(ctx, "Waiting...")
	cancel()

	select {
	case <-s.stopped:
	case <-time.After(time.Second):
		t.Fatal("spinner did not stop after context cancellation")
	}
	s.Stop()
}

func TestWithSpinner(t *testing.T) {
	captureSpinner(t)
	want := errors.New("boom")
	if err := withSpinner(context.Background(), "Working...", func() error { return want }); err != want {
		t.Errorf("withSpinner() = %v, want %v", err, want)
	}
}
