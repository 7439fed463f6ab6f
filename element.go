package main

import (
	"errors"
	"fmt"
)

// Display is an element's inline display state.
type Display string

const (
	DisplayUnset Display = ""
	DisplayNone  Display = "none"
	DisplayBlock Display = "block"
)

// Shown reports whether the display state counts as visible. An unset
// display is treated the same as "none".
func (d Display) Shown() bool {
	return d != DisplayUnset && d != DisplayNone
}

// Element is a rendered region: either a code block or its copy button.
type Element struct {
	ID      string
	Display Display
	Text    string // rendered text, what a user sees
	Markup  string // source form (fences, info string, patch header...)
}

// ControlKind says what a control does when activated.
type ControlKind int

const (
	ControlToggle ControlKind = iota
	ControlCopy
)

func (k ControlKind) String() string {
	switch k {
	case ControlToggle:
		return "toggle"
	case ControlCopy:
		return "copy"
	default:
		return fmt.Sprintf("ControlKind(%d)", int(k))
	}
}

// Control is an activated button. Target names the code block it refers to.
type Control struct {
	Kind   ControlKind
	Target string
}

// ToggleControl returns the toggle button for the block id.
func ToggleControl(id string) Control { return Control{Kind: ControlToggle, Target: id} }

// CopyControl returns the copy button for the block id.
func CopyControl(id string) Control { return Control{Kind: ControlCopy, Target: id} }

var (
	// ErrNotFound is matched by every *LookupError.
	ErrNotFound = errors.New("element not found")
	// ErrClipboard is matched by every *ClipboardError.
	ErrClipboard = errors.New("clipboard write failed")
)

// LookupError reports an identifier that resolves to no element.
type LookupError struct {
	ID   string
	Role string // "code block" or "copy button"
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("no %s with id %q", e.Role, e.ID)
}

func (e *LookupError) Is(target error) bool { return target == ErrNotFound }

// ClipboardError wraps a rejected clipboard write.
type ClipboardError struct {
	ID  string
	Err error
}

func (e *ClipboardError) Error() string {
	return fmt.Sprintf("copy %q: %v", e.ID, e.Err)
}

func (e *ClipboardError) Unwrap() error { return e.Err }

func (e *ClipboardError) Is(target error) bool { return target == ErrClipboard }
