// Package editor drives the target blog platform's rich-text editor
// through a real Chromium instance: login, content-frame addressing,
// text and image insertion, and the publish/schedule dialog.
//
// Every external-surface address lives in the Locators table and every
// inter-action delay in the Pacing policy; both are injectable, so markup
// drift or a slower environment is a configuration change.
//
// The session is exclusively owned by one upload run. All primitives are
// sequential; the target platform's per-account rate limits and
// anti-automation defenses make concurrent sessions unsafe.
package editor

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"

	"github.com/dhkang/blogpress/clipboard"
)

// Config configures a Session.
type Config struct {
	// RemoteURL is the WebSocket URL of an external Chromium instance.
	// Empty = launch a local one via the launcher.
	RemoteURL string `yaml:"remote_url"`

	// Headless controls the launched browser. Login against a hostile
	// anti-bot surface usually needs a visible window, so the default is
	// headful.
	Headless bool `yaml:"headless"`

	Locators Locators `yaml:"locators"`
	Pacing   Pacing   `yaml:"pacing"`

	Clipboard *clipboard.Adapter `yaml:"-"`
	Logger    *slog.Logger       `yaml:"-"`
}

func (c *Config) defaults() {
	c.Locators = c.Locators.merged()
	c.Pacing.defaults()
	if c.Clipboard == nil {
		c.Clipboard = clipboard.New()
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Session is one authenticated, frame-addressed connection to the target
// editor. Insertion primitives require the content frame to be addressed;
// calling them against the top-level document is an error.
type Session struct {
	cfg  Config
	loc  Locators
	pace Pacing
	clip *clipboard.Adapter
	log  *slog.Logger

	browser *rod.Browser
	lnch    *launcher.Launcher
	page    *rod.Page
	frame   *rod.Page // content frame; nil while addressing the top document

	authenticated bool
}

// New creates a Session. Call Start to launch or connect the browser.
func New(cfg Config) *Session {
	cfg.defaults()
	return &Session{
		cfg:  cfg,
		loc:  cfg.Locators,
		pace: cfg.Pacing,
		clip: cfg.Clipboard,
		log:  cfg.Logger,
	}
}

// Start launches Chromium (or connects to RemoteURL) and opens the
// session's page with stealth applied.
func (s *Session) Start(ctx context.Context) error {
	wsURL := s.cfg.RemoteURL
	if wsURL == "" {
		l := launcher.New().
			Headless(s.cfg.Headless).
			NoSandbox(true).
			Set("disable-dev-shm-usage").
			Set("disable-blink-features", "AutomationControlled")
		u, err := l.Launch()
		if err != nil {
			return fmt.Errorf("editor: launch browser: %w", err)
		}
		s.lnch = l
		wsURL = u
		s.log.Info("launched local chromium", "headless", s.cfg.Headless)
	} else {
		s.log.Info("connecting to remote chromium", "url", wsURL)
	}

	b := rod.New().ControlURL(wsURL).Context(ctx)
	if err := b.Connect(); err != nil {
		return fmt.Errorf("editor: connect browser: %w", err)
	}
	s.browser = b

	page, err := stealth.Page(b)
	if err != nil {
		s.Close()
		return fmt.Errorf("editor: open stealth page: %w", err)
	}
	s.page = page
	return nil
}

// Close tears the session down: frame, page, browser, launcher.
func (s *Session) Close() {
	s.frame = nil
	if s.page != nil {
		s.page.Close()
		s.page = nil
	}
	if s.browser != nil {
		s.browser.Close()
		s.browser = nil
	}
	if s.lnch != nil {
		s.lnch.Cleanup()
		s.lnch = nil
	}
}

// content returns the addressed content frame.
func (s *Session) content() (*rod.Page, error) {
	if s.frame == nil {
		return nil, ErrNoFrame
	}
	return s.frame, nil
}

// find locates a required control, bounded by the find timeout.
func (s *Session) find(ctx context.Context, p *rod.Page, sel string) (*rod.Element, error) {
	el, err := p.Context(ctx).Timeout(s.pace.FindTimeout).Element(sel)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrElementNotFound, sel)
	}
	return el, nil
}

// findOptional locates a control whose absence is normal.
func (s *Session) findOptional(ctx context.Context, p *rod.Page, sel string) (*rod.Element, bool) {
	el, err := p.Context(ctx).Timeout(s.pace.OptionalTimeout).Element(sel)
	if err != nil {
		return nil, false
	}
	return el, true
}

// dismissOptional clicks a control if present. Absence is not an error.
func (s *Session) dismissOptional(ctx context.Context, p *rod.Page, sel string) {
	el, ok := s.findOptional(ctx, p, sel)
	if !ok {
		return
	}
	if err := clickJS(el); err != nil {
		s.log.Debug("optional control did not accept click", "selector", sel, "error", err)
		return
	}
	s.pace.Sleep(ctx, s.pace.AfterClick)
}

// pasteChord sends the platform paste keystroke to the page.
func (s *Session) pasteChord(p *rod.Page) error {
	mod := input.ControlLeft
	if runtime.GOOS == "darwin" {
		mod = input.MetaLeft
	}
	k := p.Keyboard
	if err := k.Press(mod); err != nil {
		return fmt.Errorf("editor: press modifier: %w", err)
	}
	defer k.Release(mod)
	if err := k.Type(input.KeyV); err != nil {
		return fmt.Errorf("editor: paste keystroke: %w", err)
	}
	return nil
}

// pasteText transfers text through the OS clipboard into the focused
// element of p, terminated without a trailing keystroke.
func (s *Session) pasteText(ctx context.Context, p *rod.Page, text string) error {
	if err := s.clip.PutText(text); err != nil {
		return err
	}
	if err := s.pasteChord(p); err != nil {
		return err
	}
	s.pace.Sleep(ctx, s.pace.AfterPaste)
	return nil
}

// clickJS clicks an element through the DOM instead of synthesized mouse
// input. Overlays and transient layers intercept real pointer events on
// this surface; the DOM click does not care.
func clickJS(el *rod.Element) error {
	_, err := el.Eval(`() => this.click()`)
	return err
}

// setValueJS assigns an input's value directly and fires the events the
// frontend framework listens for. Used when clipboard paste leaves the
// field empty and as the deterministic path for select controls.
func setValueJS(el *rod.Element, value string) error {
	_, err := el.Eval(`(v) => {
		this.value = v;
		this.dispatchEvent(new Event('input', { bubbles: true }));
		this.dispatchEvent(new Event('change', { bubbles: true }));
	}`, value)
	return err
}

// currentURL returns the page's location, empty on failure.
func (s *Session) currentURL() string {
	info, err := s.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

// navigate drives the top-level page to url and waits for load plus the
// post-navigation settle delay.
func (s *Session) navigate(ctx context.Context, url string) error {
	p := s.page.Context(ctx)
	if err := p.Navigate(url); err != nil {
		return fmt.Errorf("editor: navigate %s: %w", url, err)
	}
	if err := p.Timeout(30 * time.Second).WaitLoad(); err != nil {
		s.log.Warn("page load wait timed out", "url", url, "error", err)
	}
	s.pace.Sleep(ctx, s.pace.AfterNavigate)
	return nil
}
