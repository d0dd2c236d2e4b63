package trigger

import "errors"

// Common trigger errors
var (
	ErrTriggerNotFound = errors.New("trigger not found")
	ErrBrokenFactory   = errors.New("trigger factory returned nil")
	ErrCheckPanicked   = errors.New("trigger check panicked")
)
