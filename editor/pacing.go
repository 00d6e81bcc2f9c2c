package editor

import (
	"context"
	"time"
)

// Pacing centralizes every delay the session inserts between actions. The
// target editor exposes no reliable readiness signals, so these fixed
// waits stand in for them: too short loses pasted content silently, too
// long only costs throughput. All values are injectable per environment.
type Pacing struct {
	AfterNavigate    time.Duration `yaml:"after_navigate"`
	AfterFrameSwitch time.Duration `yaml:"after_frame_switch"`
	AfterClick       time.Duration `yaml:"after_click"`
	AfterPaste       time.Duration `yaml:"after_paste"`
	AfterImage       time.Duration `yaml:"after_image"` // editor's async upload/render settle
	InterBlock       time.Duration `yaml:"inter_block"`
	LoginSettle      time.Duration `yaml:"login_settle"`

	// FindTimeout bounds lookups of required controls.
	FindTimeout time.Duration `yaml:"find_timeout"`
	// OptionalTimeout bounds lookups of optional controls (popups); their
	// absence is normal, so this stays short.
	OptionalTimeout time.Duration `yaml:"optional_timeout"`

	// MinuteStep is the scheduler's minute granularity. Requested minutes
	// round down to the nearest multiple. This is a constraint of the
	// external surface, not a business rule; keep it next to the surface
	// description so a surface change is a config edit.
	MinuteStep int `yaml:"minute_step"`
}

// DefaultPacing returns the pacing tuned against the deployed editor.
func DefaultPacing() Pacing {
	return Pacing{
		AfterNavigate:    2 * time.Second,
		AfterFrameSwitch: time.Second,
		AfterClick:       500 * time.Millisecond,
		AfterPaste:       500 * time.Millisecond,
		AfterImage:       3 * time.Second,
		InterBlock:       time.Second,
		LoginSettle:      3 * time.Second,
		FindTimeout:      10 * time.Second,
		OptionalTimeout:  2 * time.Second,
		MinuteStep:       10,
	}
}

func (p *Pacing) defaults() {
	d := DefaultPacing()
	if p.AfterNavigate <= 0 {
		p.AfterNavigate = d.AfterNavigate
	}
	if p.AfterFrameSwitch <= 0 {
		p.AfterFrameSwitch = d.AfterFrameSwitch
	}
	if p.AfterClick <= 0 {
		p.AfterClick = d.AfterClick
	}
	if p.AfterPaste <= 0 {
		p.AfterPaste = d.AfterPaste
	}
	if p.AfterImage <= 0 {
		p.AfterImage = d.AfterImage
	}
	if p.InterBlock <= 0 {
		p.InterBlock = d.InterBlock
	}
	if p.LoginSettle <= 0 {
		p.LoginSettle = d.LoginSettle
	}
	if p.FindTimeout <= 0 {
		p.FindTimeout = d.FindTimeout
	}
	if p.OptionalTimeout <= 0 {
		p.OptionalTimeout = d.OptionalTimeout
	}
	if p.MinuteStep <= 0 {
		p.MinuteStep = d.MinuteStep
	}
}

// Sleep waits for d or until ctx is done, whichever comes first.
func (p Pacing) Sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// FloorMinute rounds minute down to the nearest multiple of step.
func FloorMinute(minute, step int) int {
	if step <= 0 {
		return minute
	}
	return (minute / step) * step
}
