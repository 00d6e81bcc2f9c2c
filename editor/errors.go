package editor

import "errors"

// ErrAuthentication is returned when submitting credentials does not leave
// the login surface. Recoverable by manual operator intervention, see
// Session.WaitForManualLogin.
var ErrAuthentication = errors.New("editor: login did not leave the login surface")

// ErrElementNotFound is returned when a required control is absent or not
// interactable within the find timeout. Optional controls (popups, help
// panels) never produce it: their absence is normal.
var ErrElementNotFound = errors.New("editor: required control not found")

// ErrNoFrame is returned when an insertion primitive is called while the
// session is still addressing the top-level document.
var ErrNoFrame = errors.New("editor: no content frame addressed")

// ErrTransfer is returned when image injection fails on both the clipboard
// path and the file-input fallback.
var ErrTransfer = errors.New("editor: image transfer failed on both paths")

// ErrScheduling is returned when the requested publish time cannot be
// expressed in the scheduler's controls (for example a day outside the
// currently displayed calendar month).
var ErrScheduling = errors.New("editor: requested time cannot be expressed by the scheduler")
