package main

import "sync"

// Notification texts shown after a copy settles.
const (
	MsgCopied     = "Code copied to clipboard!"
	MsgCopyFailed = "Failed to copy code."
)

// Notifier is a user-acknowledged message surface.
type Notifier interface {
	Alert(msg string)
}

type nopNotifier struct{}

func (nopNotifier) Alert(string) {}

// Handler toggles code blocks and copies their text. All methods must be
// called from the interaction goroutine; only the clipboard write runs
// elsewhere.
type Handler struct {
	Registry  *Registry
	Clipboard Clipboard
	Notifier  Notifier
	Log       *Logger
}

// NewHandler wires a handler. A nil notifier or logger is replaced with a
// no-op one.
func NewHandler(reg *Registry, clip Clipboard, n Notifier, log *Logger) *Handler {
	if n == nil {
		n = nopNotifier{}
	}
	if log == nil {
		log = NopLogger()
	}
	return &Handler{Registry: reg, Clipboard: clip, Notifier: n, Log: log}
}

// Toggle flips the target block and its copy button together. Both elements
// are resolved before either is mutated.
func (h *Handler) Toggle(c Control) error {
	code, err := h.Registry.Code(c.Target)
	if err != nil {
		h.Log.Error("toggle lookup failed", "id", c.Target, "err", err)
		return err
	}
	btn, err := h.Registry.CopyButton(c.Target)
	if err != nil {
		h.Log.Error("toggle lookup failed", "id", c.Target, "err", err)
		return err
	}

	next := DisplayBlock
	if code.Display.Shown() {
		next = DisplayNone
	}
	code.Display = next
	btn.Display = next
	h.Log.Debug("toggled block", "id", c.Target, "display", string(next))
	return nil
}

// CopyResult is the settled outcome of a clipboard write.
type CopyResult struct {
	ID   string
	Text string
	Err  error // *ClipboardError, or nil on success
}

// OK reports whether the write succeeded.
func (r CopyResult) OK() bool { return r.Err == nil }

// PendingCopy is an in-flight clipboard write.
type PendingCopy struct {
	done   chan struct{}
	once   sync.Once
	result CopyResult
}

func (p *PendingCopy) settle(r CopyResult) {
	p.once.Do(func() {
		p.result = r
		close(p.done)
	})
}

// Done is closed once the write has settled.
func (p *PendingCopy) Done() <-chan struct{} { return p.done }

// Result returns the outcome. It blocks until the write settles.
func (p *PendingCopy) Result() CopyResult {
	<-p.done
	return p.result
}

// Copy takes the rendered text of the target block and dispatches the
// clipboard write. The returned PendingCopy settles independently of the
// caller; pass its result to Report to surface the notification.
func (h *Handler) Copy(c Control) (*PendingCopy, error) {
	code, err := h.Registry.Code(c.Target)
	if err != nil {
		h.Log.Error("copy lookup failed", "id", c.Target, "err", err)
		return nil, err
	}

	id, text := code.ID, code.Text
	p := &PendingCopy{done: make(chan struct{})}
	clip := h.Clipboard
	h.Log.Info("copy dispatched", "id", id, "bytes", len(text))

	go func() {
		var res CopyResult
		res.ID, res.Text = id, text
		if clip == nil {
			res.Err = &ClipboardError{ID: id, Err: errNoClipboard}
		} else if werr := clip.WriteText(text); werr != nil {
			res.Err = &ClipboardError{ID: id, Err: werr}
		}
		p.settle(res)
	}()
	return p, nil
}

// Report shows the notification for a settled copy.
func (h *Handler) Report(r CopyResult) {
	if r.OK() {
		h.Log.Info("copy succeeded", "id", r.ID)
		h.Notifier.Alert(MsgCopied)
		return
	}
	h.Log.Warn("copy failed", "id", r.ID, "err", r.Err)
	h.Notifier.Alert(MsgCopyFailed)
}

// Activate dispatches a control to Toggle or Copy. A copy's PendingCopy is
// returned so the caller can wait for it; toggles return nil.
func (h *Handler) Activate(c Control) (*PendingCopy, error) {
	switch c.Kind {
	case ControlCopy:
		return h.Copy(c)
	default:
		return nil, h.Toggle(c)
	}
}
