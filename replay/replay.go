// Package replay walks an ordered content sequence and feeds each block
// into an editor session, strictly in order, continuing past individual
// block failures. A partial post is still useful to an operator reviewing
// before a manual publish; an aborted one is not.
package replay

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dhkang/blogpress/extract"
)

// Inserter is the capability surface the replayer needs from an editor
// session. Implementations must be safe for strictly sequential use only.
type Inserter interface {
	InsertText(ctx context.Context, text string) error
	InsertImage(ctx context.Context, path string) error
}

// Outcome records one block's result.
type Outcome struct {
	Index int
	Kind  extract.BlockKind
	Err   error // nil on success
}

// Outcomes is a per-block result list covering the whole sequence.
type Outcomes []Outcome

// Failed returns the outcomes that carry an error.
func (o Outcomes) Failed() Outcomes {
	var out Outcomes
	for _, r := range o {
		if r.Err != nil {
			out = append(out, r)
		}
	}
	return out
}

// Config configures a Replayer.
type Config struct {
	// InterBlock is the minimum pacing delay between blocks, respecting
	// the editor's asynchronous redraw model. Default: 1s.
	InterBlock time.Duration

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.InterBlock <= 0 {
		c.InterBlock = time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Replayer replays sequences into an Inserter.
type Replayer struct {
	cfg Config
	log *slog.Logger

	// sleep is replaceable in tests.
	sleep func(ctx context.Context, d time.Duration)
}

// New creates a Replayer.
func New(cfg Config) *Replayer {
	cfg.defaults()
	return &Replayer{
		cfg: cfg,
		log: cfg.Logger,
		sleep: func(ctx context.Context, d time.Duration) {
			t := time.NewTimer(d)
			defer t.Stop()
			select {
			case <-ctx.Done():
			case <-t.C:
			}
		},
	}
}

// Replay feeds every block of seq into ins, in order. A block failure is
// logged and recorded, then the walk continues with the next block; only
// context cancellation stops it early. The returned outcomes cover every
// block attempted.
func (r *Replayer) Replay(ctx context.Context, ins Inserter, seq extract.Sequence) Outcomes {
	outcomes := make(Outcomes, 0, len(seq))

	for i, block := range seq {
		if err := ctx.Err(); err != nil {
			outcomes = append(outcomes, Outcome{Index: i, Kind: block.Kind, Err: err})
			return outcomes
		}
		if i > 0 {
			r.sleep(ctx, r.cfg.InterBlock)
		}

		var err error
		switch block.Kind {
		case extract.KindText:
			err = ins.InsertText(ctx, block.Text)
		case extract.KindImage:
			err = ins.InsertImage(ctx, block.Path)
		default:
			err = fmt.Errorf("replay: unknown block kind %q", block.Kind)
		}

		if err != nil {
			r.log.Warn("block insertion failed, continuing",
				"index", i, "kind", block.Kind, "error", err)
		} else {
			r.log.Debug("block inserted", "index", i, "kind", block.Kind)
		}
		outcomes = append(outcomes, Outcome{Index: i, Kind: block.Kind, Err: err})
	}
	return outcomes
}
