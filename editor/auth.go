package editor

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Credentials for the login surface. Values come from the environment,
// never from the spreadsheet or config file.
type Credentials struct {
	ID       string
	Password string
}

// Authenticate submits credentials to the login surface. Failure is
// detected by the post-submit location still matching the login page;
// that returns ErrAuthentication, which callers recover from with
// WaitForManualLogin rather than aborting — unattended login against an
// anti-bot target is not guaranteed.
func (s *Session) Authenticate(ctx context.Context, creds Credentials) error {
	if creds.ID == "" || creds.Password == "" {
		return fmt.Errorf("editor: missing credentials")
	}

	if err := s.navigate(ctx, s.loc.LoginURL); err != nil {
		return err
	}

	if err := s.fillCredential(ctx, s.loc.LoginID, creds.ID); err != nil {
		return err
	}
	if err := s.fillCredential(ctx, s.loc.LoginPassword, creds.Password); err != nil {
		return err
	}

	submit, err := s.find(ctx, s.page, s.loc.LoginSubmit)
	if err != nil {
		return err
	}
	if err := clickJS(submit); err != nil {
		return fmt.Errorf("editor: click login: %w", err)
	}
	s.pace.Sleep(ctx, s.pace.LoginSettle)

	if s.onLoginSurface() {
		return ErrAuthentication
	}
	s.authenticated = true
	s.log.Info("login succeeded")
	return nil
}

// WaitForManualLogin polls until the operator completes login by hand or
// the timeout expires. Called after Authenticate returns
// ErrAuthentication (captcha, device confirmation, 2FA).
func (s *Session) WaitForManualLogin(ctx context.Context, timeout time.Duration) error {
	s.log.Warn("waiting for manual login", "timeout", timeout)
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !s.onLoginSurface() {
			s.authenticated = true
			s.log.Info("manual login completed")
			return nil
		}
		s.pace.Sleep(ctx, 2*time.Second)
	}
	return ErrAuthentication
}

func (s *Session) onLoginSurface() bool {
	return strings.Contains(s.currentURL(), s.loc.LoginPathMark)
}

// fillCredential pastes a value into a login field via the clipboard, the
// route least likely to trip keystroke-pattern detection. When the paste
// leaves the field empty it falls back to setting the value directly.
func (s *Session) fillCredential(ctx context.Context, sel, value string) error {
	el, err := s.find(ctx, s.page, sel)
	if err != nil {
		return err
	}
	if err := clickJS(el); err != nil {
		return fmt.Errorf("editor: focus %q: %w", sel, err)
	}
	s.pace.Sleep(ctx, s.pace.AfterClick)

	if err := s.pasteText(ctx, s.page, value); err != nil {
		s.log.Debug("clipboard paste into login field failed", "selector", sel, "error", err)
	}

	got, err := el.Property("value")
	if err == nil && got.Str() != "" {
		return nil
	}

	s.log.Debug("clipboard route left field empty, setting value directly", "selector", sel)
	if err := setValueJS(el, value); err != nil {
		return fmt.Errorf("editor: set %q: %w", sel, err)
	}
	return nil
}
