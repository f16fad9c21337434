package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrNoEditors is returned when a session has nothing to edit.
	ErrNoEditors = errors.New("tui: no editors bound")
)
