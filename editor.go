package main

import (
	"fmt"
	"os"
	"os/exec"
	"time"
)

// editorCommand picks $EDITOR, then $VISUAL, then vi.
func editorCommand() string {
	if e := os.Getenv("EDITOR"); e != "" {
		return e
	}
	if e := os.Getenv("VISUAL"); e != "" {
		return e
	}
	return "vi"
}

// editorArgs builds "+line path"; most editors (vim, nvim, nano, emacs)
// accept the +line form.
func editorArgs(path string, lineNo int) []string {
	var args []string
	if lineNo > 0 {
		args = append(args, fmt.Sprintf("+%d", lineNo))
	}
	return append(args, path)
}

// openInEditor suspends the TUI, opens path in the user's editor at lineNo
// and resumes the TUI when the editor exits.
func openInEditor(s *State, path string, lineNo int) {
	if _, err := os.Stat(path); err != nil {
		s.Flash(fmt.Sprintf("File not found: %s", path), 2*time.Second)
		return
	}

	s.Screen.Fini()

	cmd := exec.Command(editorCommand(), editorArgs(path, lineNo)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		s.Log.Warn("editor exited with error", "path", path, "err", err)
		s.Flash(fmt.Sprintf("Editor error: %v", err), 3*time.Second)
	}

	if err := s.Screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal: failed to reinitialize screen: %v\n", err)
		os.Exit(1)
	}
	s.Screen.EnableMouse()
	s.Screen.Sync()
}
