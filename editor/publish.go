package editor

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-rod/rod"
)

// Finalize drives the publish layer: opens it, selects the category (a
// missing category is a non-fatal warning, the platform default stays),
// configures reserve scheduling when at is set, and clicks the final
// confirmation. at == nil publishes immediately.
func (s *Session) Finalize(ctx context.Context, category string, at *time.Time) error {
	frame, err := s.content()
	if err != nil {
		return err
	}

	// A lingering help panel overlaps the publish toolbar.
	s.dismissOptional(ctx, frame, s.loc.HelpClose)

	publish, err := s.find(ctx, frame, s.loc.PublishButton)
	if err != nil {
		return err
	}
	if err := clickJS(publish); err != nil {
		return fmt.Errorf("editor: open publish layer: %w", err)
	}
	s.pace.Sleep(ctx, s.pace.AfterNavigate)

	if category != "" {
		s.selectCategory(ctx, frame, category)
	}
	if at != nil {
		if err := s.setSchedule(ctx, frame, *at); err != nil {
			// Reported, not substituted: the operator decides whether an
			// immediate publish would have been acceptable.
			return err
		}
	}

	confirm, err := s.find(ctx, frame, s.loc.ConfirmButton)
	if err != nil {
		return err
	}
	if err := clickJS(confirm); err != nil {
		return fmt.Errorf("editor: confirm publish: %w", err)
	}
	s.pace.Sleep(ctx, s.pace.AfterImage)
	s.log.Info("post published", "category", category, "scheduled", at != nil)
	return nil
}

// selectCategory opens the category selector and picks the entry whose
// label matches. No match leaves the default category and logs a warning.
func (s *Session) selectCategory(ctx context.Context, frame *rod.Page, want string) {
	btn, ok := s.findOptional(ctx, frame, s.loc.CategoryButton)
	if !ok {
		s.log.Warn("category selector not present, keeping default", "category", want)
		return
	}
	if err := clickJS(btn); err != nil {
		s.log.Warn("category selector did not open", "error", err)
		return
	}
	s.pace.Sleep(ctx, s.pace.AfterClick)

	labels, err := frame.Context(ctx).Timeout(s.pace.OptionalTimeout).Elements(s.loc.CategoryLabels)
	if err != nil {
		s.log.Warn("category options not found, keeping default", "category", want)
		return
	}

	for _, label := range labels {
		text, err := label.Text()
		if err != nil {
			continue
		}
		if !MatchCategory(text, want) {
			continue
		}
		if err := clickJS(label); err != nil {
			s.log.Warn("category option did not accept click", "label", text, "error", err)
			return
		}
		s.pace.Sleep(ctx, s.pace.AfterClick)
		s.log.Info("category selected", "label", strings.TrimSpace(text))
		return
	}

	s.log.Warn("no matching category, keeping default", "category", want)
	// Close the selector so it does not cover the confirm button.
	if err := clickJS(btn); err != nil {
		s.log.Debug("category selector did not close", "error", err)
	}
}

// MatchCategory reports whether a selector label satisfies a requested
// category name. Matching is case-insensitive and substring-tolerant in
// both directions, mirroring how operators abbreviate category names in
// the spreadsheet.
func MatchCategory(label, want string) bool {
	l := strings.ToLower(strings.TrimSpace(label))
	w := strings.ToLower(strings.TrimSpace(want))
	if l == "" || w == "" {
		return false
	}
	return strings.Contains(l, w) || strings.Contains(w, l)
}

// setSchedule switches the publish layer to reserve mode and sets the
// date and time. The calendar widget only exposes the displayed month, so
// a day outside it is ErrScheduling. Minutes floor to the scheduler's
// step.
func (s *Session) setSchedule(ctx context.Context, frame *rod.Page, at time.Time) error {
	radio, err := s.find(ctx, frame, s.loc.ReserveRadio)
	if err != nil {
		return fmt.Errorf("%w: reserve mode control: %v", ErrScheduling, err)
	}
	if err := clickJS(radio); err != nil {
		return fmt.Errorf("%w: reserve mode click: %v", ErrScheduling, err)
	}
	s.pace.Sleep(ctx, s.pace.AfterClick)

	if err := s.pickCalendarDay(ctx, frame, at.Day()); err != nil {
		return err
	}

	hh := fmt.Sprintf("%02d", at.Hour())
	mm := fmt.Sprintf("%02d", FloorMinute(at.Minute(), s.pace.MinuteStep))

	for _, sel := range []struct{ locator, value string }{
		{s.loc.HourSelect, hh},
		{s.loc.MinuteSelect, mm},
	} {
		el, err := s.find(ctx, frame, sel.locator)
		if err != nil {
			return fmt.Errorf("%w: time control %q: %v", ErrScheduling, sel.locator, err)
		}
		if err := setValueJS(el, sel.value); err != nil {
			return fmt.Errorf("%w: set %q: %v", ErrScheduling, sel.locator, err)
		}
	}

	s.pace.Sleep(ctx, s.pace.AfterClick)
	s.log.Info("reserve schedule configured", "day", at.Day(), "hour", hh, "minute", mm)
	return nil
}

// pickCalendarDay opens the date picker and clicks the in-month day
// button whose text matches.
func (s *Session) pickCalendarDay(ctx context.Context, frame *rod.Page, day int) error {
	dateInput, err := s.find(ctx, frame, s.loc.DateInput)
	if err != nil {
		return fmt.Errorf("%w: date input: %v", ErrScheduling, err)
	}
	if err := clickJS(dateInput); err != nil {
		return fmt.Errorf("%w: date input click: %v", ErrScheduling, err)
	}
	s.pace.Sleep(ctx, s.pace.AfterClick)

	days, err := frame.Context(ctx).Timeout(s.pace.FindTimeout).Elements(s.loc.CalendarDays)
	if err != nil {
		return fmt.Errorf("%w: calendar days: %v", ErrScheduling, err)
	}

	want := strconv.Itoa(day)
	for _, btn := range days {
		text, err := btn.Text()
		if err != nil {
			continue
		}
		if strings.TrimSpace(text) != want {
			continue
		}
		if err := clickJS(btn); err != nil {
			return fmt.Errorf("%w: day click: %v", ErrScheduling, err)
		}
		s.pace.Sleep(ctx, s.pace.AfterClick)
		return nil
	}
	return fmt.Errorf("%w: day %d not in displayed month", ErrScheduling, day)
}
