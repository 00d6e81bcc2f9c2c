package editor

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
)

// OpenComposer navigates to the compose surface, addresses its content
// frame, and dismisses transient onboarding popups (best-effort; their
// absence is normal). Must be called before any insertion primitive.
func (s *Session) OpenComposer(ctx context.Context) error {
	if err := s.navigate(ctx, s.loc.ComposeURL); err != nil {
		return err
	}

	frameEl, err := s.find(ctx, s.page, s.loc.ComposeFrame)
	if err != nil {
		return err
	}
	frame, err := frameEl.Frame()
	if err != nil {
		return fmt.Errorf("editor: address content frame: %w", err)
	}
	s.frame = frame
	s.pace.Sleep(ctx, s.pace.AfterFrameSwitch)

	s.dismissOptional(ctx, frame, s.loc.PopupCancel)
	s.dismissOptional(ctx, frame, s.loc.HelpClose)
	return nil
}

// ExitFrame returns addressing to the top-level document. Safe to call in
// any state; always called on both success and failure paths.
func (s *Session) ExitFrame() {
	s.frame = nil
}

// SetTitle pastes the post title into the title region.
func (s *Session) SetTitle(ctx context.Context, title string) error {
	frame, err := s.content()
	if err != nil {
		return err
	}
	el, err := s.find(ctx, frame, s.loc.TitleArea)
	if err != nil {
		return err
	}
	if err := clickJS(el); err != nil {
		return fmt.Errorf("editor: focus title: %w", err)
	}
	s.pace.Sleep(ctx, s.pace.AfterClick)
	return s.pasteText(ctx, frame, title)
}

// InsertText focuses the body text region, pastes the block through the
// clipboard, and terminates with a paragraph break so the next block
// starts cleanly.
func (s *Session) InsertText(ctx context.Context, text string) error {
	frame, err := s.content()
	if err != nil {
		return err
	}
	el, err := s.find(ctx, frame, s.loc.TextArea)
	if err != nil {
		return err
	}
	if err := clickJS(el); err != nil {
		return fmt.Errorf("editor: focus text area: %w", err)
	}
	s.pace.Sleep(ctx, s.pace.AfterClick)

	if err := s.pasteText(ctx, frame, text); err != nil {
		return err
	}
	if err := frame.Keyboard.Type(input.Enter); err != nil {
		return fmt.Errorf("editor: paragraph break: %w", err)
	}
	return nil
}

// InsertImage injects the image at path into the content area. The
// clipboard route is attempted first; when the native transfer reports
// failure, it falls back to the composer's image-upload file input. The
// post-insert wait is a fixed settle delay: the editor exposes no upload
// completion signal.
func (s *Session) InsertImage(ctx context.Context, path string) error {
	frame, err := s.content()
	if err != nil {
		return err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("editor: resolve image path: %w", err)
	}

	area, err := s.find(ctx, frame, s.loc.ContentArea)
	if err != nil {
		return err
	}
	if err := clickJS(area); err != nil {
		return fmt.Errorf("editor: focus content area: %w", err)
	}
	s.pace.Sleep(ctx, s.pace.AfterClick)

	if s.clip.PutImage(ctx, abs) {
		if err := s.pasteChord(frame); err == nil {
			s.pace.Sleep(ctx, s.pace.AfterImage)
			s.log.Debug("image inserted via clipboard", "path", abs)
			return nil
		}
		s.log.Warn("clipboard paste keystroke failed, using file input", "path", abs)
	} else {
		s.log.Warn("clipboard image transfer unavailable, using file input", "path", abs)
	}

	return s.insertImageViaFileInput(ctx, frame, abs)
}

// insertImageViaFileInput opens the composer's image dialog and feeds the
// file directly to its input element. This replaces the OS-level
// file-picker automation of earlier tooling: same fallback contract,
// without the focus races.
func (s *Session) insertImageViaFileInput(ctx context.Context, frame *rod.Page, abs string) error {
	btn, err := s.find(ctx, frame, s.loc.ImageButton)
	if err != nil {
		return fmt.Errorf("%w: image button missing: %v", ErrTransfer, err)
	}
	if err := clickJS(btn); err != nil {
		return fmt.Errorf("%w: image button click: %v", ErrTransfer, err)
	}
	s.pace.Sleep(ctx, s.pace.AfterClick)

	in, err := s.find(ctx, frame, s.loc.FileInput)
	if err != nil {
		return fmt.Errorf("%w: file input missing: %v", ErrTransfer, err)
	}
	if err := in.SetFiles([]string{abs}); err != nil {
		return fmt.Errorf("%w: set files: %v", ErrTransfer, err)
	}
	s.pace.Sleep(ctx, s.pace.AfterImage)
	s.log.Debug("image inserted via file input", "path", abs)
	return nil
}
