package main

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync"

	"github.com/atotto/clipboard"
)

var errNoClipboard = errors.New("no clipboard available")

// Clipboard writes text to a clipboard. Implementations may block; the
// handler always calls them off the interaction goroutine.
type Clipboard interface {
	WriteText(text string) error
}

// Clipboard backend modes accepted in config.
const (
	ClipboardAuto   = "auto"
	ClipboardSystem = "system"
	ClipboardOSC52  = "osc52"
)

// NewClipboard returns the backend for mode. Unknown modes are an error.
func NewClipboard(mode string) (Clipboard, error) {
	switch strings.ToLower(mode) {
	case "", ClipboardAuto:
		return FallbackClipboard{SystemClipboard{}, NewOSC52Clipboard()}, nil
	case ClipboardSystem:
		return SystemClipboard{}, nil
	case ClipboardOSC52:
		return NewOSC52Clipboard(), nil
	default:
		return nil, fmt.Errorf("unknown clipboard mode %q (want auto, system or osc52)", mode)
	}
}

// SystemClipboard uses the platform clipboard tools. pbcopy is tried first
// on macOS since it works in more environments.
type SystemClipboard struct{}

func (SystemClipboard) WriteText(text string) error {
	if runtime.GOOS == "darwin" {
		cmd := exec.Command("pbcopy")
		cmd.Stdin = strings.NewReader(text)
		if err := cmd.Run(); err == nil {
			return nil
		}
	}
	if clipboard.Unsupported {
		return errNoClipboard
	}
	return clipboard.WriteAll(text)
}

// OSC52Clipboard asks the terminal to set the clipboard with an OSC 52
// escape. It writes directly to the tty to bypass tcell's buffering.
type OSC52Clipboard struct {
	mu   sync.Mutex
	open func() (io.WriteCloser, error)
}

// NewOSC52Clipboard writes to /dev/tty.
func NewOSC52Clipboard() *OSC52Clipboard {
	return &OSC52Clipboard{open: func() (io.WriteCloser, error) {
		return os.OpenFile("/dev/tty", os.O_WRONLY, 0)
	}}
}

func (c *OSC52Clipboard) WriteText(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	tty, err := c.open()
	if err != nil {
		return err
	}
	defer func() { _ = tty.Close() }()

	_, err = io.WriteString(tty, osc52(text))
	return err
}

// osc52 builds the escape sequence that sets the clipboard selection.
func osc52(text string) string {
	return "\033]52;c;" + base64.StdEncoding.EncodeToString([]byte(text)) + "\a"
}

// FallbackClipboard tries each backend in order and stops at the first
// success. The last error is returned when all of them fail.
type FallbackClipboard []Clipboard

func (f FallbackClipboard) WriteText(text string) error {
	err := errNoClipboard
	for _, c := range f {
		if err = c.WriteText(text); err == nil {
			return nil
		}
	}
	return err
}
