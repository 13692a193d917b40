package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer is a bytes.Buffer safe for the spinner goroutine.
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

func TestSpinnerDrawsAndUpdates(t *testing.T) {
	var out syncBuffer
	s := newSpinner("Sampling 0/10")
	s.w = &out
	s.Start()
	time.Sleep(120 * time.Millisecond)
	s.Update("Sampling 5/10")
	time.Sleep(120 * time.Millisecond)
	s.Stop()

	got := out.String()
	if !strings.Contains(got, "Sampling 0/10") || !strings.Contains(got, "Sampling 5/10") {
		t.Errorf("output = %q", got)
	}
}

func TestSpinnerParentCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := newSpinnerWithContext(ctx, "Testing with context...")
	s.w = &syncBuffer{}
	s.Start()
	cancel()

	time.Sleep(50 * time.Millisecond)
	if !s.Cancelled() {
		t.Error("spinner should be cancelled after context cancellation")
	}
	s.Stop()
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s := newSpinner("Testing idempotent stop...")
	s.w = &syncBuffer{}
	s.Start()
	s.Stop()
	s.Stop()
}

func TestSpinnerStopWithoutStart(t *testing.T) {
	done := make(chan struct{})
	go func() {
		newSpinner("never started").Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop blocked on a spinner that never started")
	}
}

func TestSpinnerStopWithMessages(t *testing.T) {
	var out bytes.Buffer
	old := stdout
	stdout = &out
	t.Cleanup(func() { stdout = old })

	s := newSpinner("Testing...")
	s.w = &syncBuffer{}
	s.Start()
	s.StopWithSuccess("Done!")

	s = newSpinner("Testing...")
	s.w = &syncBuffer{}
	s.Start()
	s.StopWithError("Failed!")

	if !strings.Contains(out.String(), "Done!") || !strings.Contains(out.String(), "Failed!") {
		t.Errorf("stdout = %q", out.String())
	}
}
