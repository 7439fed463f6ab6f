package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
)

// EventCopyDone is posted when a clipboard write settles so the result is
// reported on the main goroutine.
type EventCopyDone struct {
	t      time.Time
	Result CopyResult
}

func (e *EventCopyDone) When() time.Time { return e.t }

// toggleBlock flips a block and relays it out, keeping the viewport on the
// block's header when its code collapses under the top of the screen.
func toggleBlock(s *State, id string) {
	if err := s.Handler.Toggle(ToggleControl(id)); err != nil {
		reportLookup(s, err)
		return
	}
	idx := -1
	for i, b := range s.Doc.Blocks {
		if b.ID == id {
			idx = i
			break
		}
	}
	s.BuildLines()
	if start := s.BlockStart(idx); start >= 0 && s.Scroll > start {
		s.Scroll = start
	}
	s.ClampScroll()
}

// copyBlock starts a clipboard write for the block. The notification comes
// later, when EventCopyDone arrives.
func copyBlock(s *State, id string) {
	p, err := s.Handler.Copy(CopyControl(id))
	if err != nil {
		reportLookup(s, err)
		return
	}
	s.InFlight++
	go awaitCopy(s.Screen, p, s.Handler.Log)
}

// postRetryDelay is the pause between attempts to post a copy result while
// the event queue is full.
const postRetryDelay = 10 * time.Millisecond

// awaitCopy waits for the write to settle and posts the result, retrying
// while the event queue is full so the copy never stays in flight.
func awaitCopy(screen tcell.Screen, p *PendingCopy, log *Logger) {
	res := p.Result()
	if screen == nil {
		return
	}
	ev := &EventCopyDone{t: time.Now(), Result: res}
	for attempt := 1; ; attempt++ {
		err := screen.PostEvent(ev)
		if err == nil {
			if attempt > 1 {
				log.Info("copy result posted", "id", res.ID, "attempts", attempt)
			}
			return
		}
		if attempt == 1 {
			log.Warn("copy result not posted, retrying", "id", res.ID, "err", err)
		}
		time.Sleep(postRetryDelay)
	}
}

// finishCopy runs on the main goroutine once a copy settles.
func finishCopy(s *State, res CopyResult) {
	if s.InFlight > 0 {
		s.InFlight--
	}
	s.Handler.Report(res)
}

// setAllShown toggles every block whose state differs from shown.
func setAllShown(s *State, shown bool) {
	if s.Doc == nil {
		return
	}
	n := 0
	for _, b := range s.Doc.Blocks {
		if b.Code.Display.Shown() == shown {
			continue
		}
		if err := s.Handler.Toggle(ToggleControl(b.ID)); err != nil {
			reportLookup(s, err)
			return
		}
		n++
	}
	s.BuildLines()
	s.ClampScroll()
	if shown {
		s.Flash(fmt.Sprintf("Showing %d blocks", n), 2*time.Second)
	} else {
		s.Flash(fmt.Sprintf("Hid %d blocks", n), 2*time.Second)
	}
}

func reportLookup(s *State, err error) {
	var le *LookupError
	if errors.As(err, &le) {
		s.Flash(fmt.Sprintf("Block %q not found", le.ID), 3*time.Second)
		return
	}
	s.Flash(err.Error(), 3*time.Second)
}

// reloadDocument re-reads the document from disk. Display states carry
// over by id and the viewport stays on the same block when it still exists.
func reloadDocument(s *State) {
	if s.Doc == nil || s.Doc.Path == "" {
		return
	}
	prevID := ""
	if b := s.Block(s.CurrentBlockIndex()); b != nil {
		prevID = b.ID
	}

	doc, err := LoadDocument(s.Doc.Path, nil)
	if err != nil {
		s.Log.Error("reload failed", "path", s.Doc.Path, "err", err)
		s.Flash(fmt.Sprintf("Reload failed: %v", err), 3*time.Second)
		return
	}
	doc.Registry.Restore(s.Doc.Registry.Displays())
	s.Doc = doc
	s.Handler.Registry = doc.Registry
	s.BuildLines()
	s.ClampOutlineCursor()
	s.Log.Info("document reloaded", "path", doc.Path, "blocks", len(doc.Blocks))

	for i, b := range doc.Blocks {
		if b.ID == prevID {
			s.Scroll = s.BlockStart(i)
			break
		}
	}
	s.ClampScroll()
}
