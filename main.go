package main

import (
	"fmt"
	"os"

	"github.com/gdamore/tcell/v2"
)

func main() {
	cfg, err := LoadConfig(os.Args[1:], os.Getenv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	switch {
	case cfg.HelpWanted:
		printUsage()
		return
	case cfg.VersionOnly:
		fmt.Println("snip " + version)
		return
	case cfg.ListThemes:
		ListThemes()
	}

	log, err := NewLogger(cfg.LogFile, cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	clip, err := NewClipboard(cfg.Clipboard)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	pipe := isPipe()
	if cfg.Path == "" && !pipe {
		printUsage()
		os.Exit(2)
	}
	doc, err := LoadDocument(cfg.Path, os.Stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	log.Info("document loaded", "path", doc.Path, "kind", doc.Kind, "blocks", len(doc.Blocks))

	theme := cfg.Theme
	if !cfg.themeExplicit && doc.Theme != "" {
		theme = doc.Theme
	}

	// Piped input leaves stdin unusable for keys; tcell opens /dev/tty itself.
	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create screen: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize screen: %v\n", err)
		os.Exit(1)
	}
	screen.EnableMouse()
	defer screen.Fini()

	alerts := &AlertQueue{}
	w, h := screen.Size()
	state := &State{
		Doc:             doc,
		Handler:         NewHandler(doc.Registry, clip, alerts, log),
		Alerts:          alerts,
		Log:             log,
		Screen:          screen,
		Width:           w,
		Height:          h,
		PipeMode:        doc.Path == "",
		LineNumbers:     !cfg.NoLineNumbers,
		Wrap:            !cfg.NoWrap,
		SyntaxHighlight: !cfg.NoSyntax,
		WatchEnabled:    doc.Path != "",
		OutlineOpen:     cfg.Outline,
		SearchIdx:       -1,
		Theme:           NewUITheme(theme),
		HL:              NewHighlighter(),
	}
	state.HL.SetTheme(theme)
	state.BuildLines()
	if cfg.ShowAll {
		setAllShown(state, true)
	}

	Render(state)

	if !state.PipeMode {
		go watchAndReload(screen, doc.Path, log)
	}

	for {
		ev := screen.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventKey:
			if HandleKey(state, ev) {
				return
			}
			Render(state)
		case *tcell.EventMouse:
			switch ev.Buttons() {
			case tcell.WheelUp:
				state.ScrollBy(-3)
				Render(state)
			case tcell.WheelDown:
				state.ScrollBy(3)
				Render(state)
			case tcell.Button1:
				x, y := ev.Position()
				HandleClick(state, x, y)
				Render(state)
			}
		case *tcell.EventResize:
			w, h := ev.Size()
			state.Width, state.Height = w, h
			state.BuildLines()
			state.ClampScroll()
			screen.Sync()
			Render(state)
		case *EventCopyDone:
			finishCopy(state, ev.Result)
			Render(state)
		case *EventLabelTimeout:
			ResolvePendingLabel(state)
			Render(state)
		case *EventReload:
			if state.WatchEnabled {
				reloadDocument(state)
				Render(state)
			}
		}
	}
}

func isPipe() bool {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) == 0
}
