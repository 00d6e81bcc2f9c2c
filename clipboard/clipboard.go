// Package clipboard moves text and image content into the host operating
// system's clipboard so a focused UI element can receive it via a paste
// keystroke.
//
// Text transfer uses the cross-platform clipboard library. Image transfer
// shells out to the platform's native clipboard facility; it reports
// success as a bool instead of an error so callers can fall through to an
// alternate injection path without unwrapping anything.
package clipboard

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"time"

	"github.com/atotto/clipboard"
)

// Adapter transfers content to the OS clipboard.
type Adapter struct {
	logger  *slog.Logger
	timeout time.Duration

	// run executes a native command; replaceable in tests.
	run func(ctx context.Context, name string, args ...string) error
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option { return func(a *Adapter) { a.logger = l } }

// WithTimeout bounds each native clipboard call. Default: 10s.
func WithTimeout(d time.Duration) Option { return func(a *Adapter) { a.timeout = d } }

// New creates an Adapter.
func New(opts ...Option) *Adapter {
	a := &Adapter{
		logger:  slog.Default(),
		timeout: 10 * time.Second,
		run: func(ctx context.Context, name string, args ...string) error {
			return exec.CommandContext(ctx, name, args...).Run()
		},
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// PutText places s on the OS clipboard.
func (a *Adapter) PutText(s string) error {
	if err := clipboard.WriteAll(s); err != nil {
		return fmt.Errorf("clipboard: write text: %w", err)
	}
	return nil
}

// PutImage places the image file at path on the OS clipboard using the
// platform's native facility. Returns false on any failure; it never
// returns an error, so the caller decides whether to skip, retry, or use
// the file-input fallback.
func (a *Adapter) PutImage(ctx context.Context, path string) bool {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	var err error
	switch runtime.GOOS {
	case "darwin":
		err = a.putImageDarwin(ctx, path)
	case "windows":
		err = a.putImageWindows(ctx, path)
	default:
		err = a.putImageLinux(ctx, path)
	}
	if err != nil {
		a.logger.Warn("native image clipboard failed", "path", path, "os", runtime.GOOS, "error", err)
		return false
	}
	return true
}

func (a *Adapter) putImageDarwin(ctx context.Context, path string) error {
	script := fmt.Sprintf(
		`set the clipboard to (read (POSIX file %q) as {«class PNGf», TIFF picture})`, path)
	return a.run(ctx, "osascript", "-e", script)
}

func (a *Adapter) putImageWindows(ctx context.Context, path string) error {
	script := fmt.Sprintf(`Add-Type -AssemblyName System.Windows.Forms,System.Drawing; `+
		`$img = [System.Drawing.Image]::FromFile(%q); `+
		`[System.Windows.Forms.Clipboard]::SetImage($img)`, path)
	return a.run(ctx, "powershell", "-NoProfile", "-Command", script)
}

func (a *Adapter) putImageLinux(ctx context.Context, path string) error {
	// Prefer xclip; fall back to wl-copy on Wayland sessions.
	if err := a.run(ctx, "xclip", "-selection", "clipboard", "-t", "image/png", "-i", path); err == nil {
		return nil
	}
	// wl-copy reads from stdin.
	return a.run(ctx, "sh", "-c", fmt.Sprintf("wl-copy --type image/png < %q", path))
}
