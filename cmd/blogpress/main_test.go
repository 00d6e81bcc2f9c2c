package main

import (
	"context"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/dhkang/blogpress/runlog"
)

func TestRunOutcome(t *testing.T) {
	ledger, err := runlog.Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	ledger.Record(ctx, runlog.Result{RunID: "r1", Row: 2, Title: "ok", Status: runlog.StatusSuccess})
	if err := runOutcome(ctx, ledger, "r1"); err != nil {
		t.Errorf("all-success run: %v", err)
	}

	ledger.Record(ctx, runlog.Result{RunID: "r1", Row: 3, Title: "bad", Status: runlog.StatusFailed, Reason: "x"})
	if err := runOutcome(ctx, ledger, "r1"); err == nil {
		t.Error("run with a failed post must not exit clean")
	}

	// A tally error propagates instead of masking the outcome.
	ledger.Close()
	if err := runOutcome(ctx, ledger, "r1"); err == nil {
		t.Error("expected error from closed ledger")
	}
}
