package clipboard

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestPutImageReportsSuccess(t *testing.T) {
	a := New(WithTimeout(time.Second))
	var captured []string
	a.run = func(ctx context.Context, name string, args ...string) error {
		captured = append(captured, name)
		return nil
	}

	if !a.PutImage(context.Background(), "/tmp/img.png") {
		t.Fatal("expected success when native call succeeds")
	}
	if len(captured) == 0 {
		t.Fatal("native command was never invoked")
	}
}

func TestPutImageNeverErrors(t *testing.T) {
	// Failure is reported as false, not propagated, so the replayer can
	// choose the alternate injection path.
	a := New()
	a.run = func(ctx context.Context, name string, args ...string) error {
		return errors.New("no display")
	}

	if a.PutImage(context.Background(), "/tmp/img.png") {
		t.Fatal("expected false when every native path fails")
	}
}

func TestPutImageHonorsContext(t *testing.T) {
	a := New()
	var sawDeadline bool
	a.run = func(ctx context.Context, name string, args ...string) error {
		_, sawDeadline = ctx.Deadline()
		return nil
	}
	a.PutImage(context.Background(), "/tmp/img.png")
	if !sawDeadline {
		t.Fatal("native call should run under a deadline")
	}
}
