package main

// KeyBinding defines a single application key binding.
type KeyBinding struct {
	Key  rune
	Name string
}

// All application keybindings. Adding a key here automatically reserves it
// so it won't be used as a block label.
var keyBindings = []KeyBinding{
	// Navigation
	{Key: 'j', Name: "scroll down"},
	{Key: 'k', Name: "scroll up"},
	{Key: 'd', Name: "half page down"},
	{Key: 'u', Name: "half page up"},
	{Key: 'g', Name: "go to top"},
	{Key: 'G', Name: "go to bottom"},
	{Key: ']', Name: "next block"},
	{Key: '[', Name: "prev block"},

	// Blocks (pending key prefixes)
	{Key: 't', Name: "toggle block"},
	{Key: 'y', Name: "copy block"},

	// Blocks at the viewport
	{Key: ' ', Name: "toggle current block"},
	{Key: 'Y', Name: "copy current block"},
	{Key: 'T', Name: "show all blocks"},
	{Key: 'H', Name: "hide all blocks"},

	// Modes & toggles
	{Key: 'n', Name: "line numbers / next match"},
	{Key: 'w', Name: "wrap"},
	{Key: 'e', Name: "outline"},
	{Key: 'h', Name: "syntax highlight"},

	// Search
	{Key: '/', Name: "search"},
	{Key: 'N', Name: "prev search match"},

	// Help
	{Key: '?', Name: "help"},

	// Actions
	{Key: 'o', Name: "open in editor"},

	// Watch mode
	{Key: 'W', Name: "toggle watch mode"},

	{Key: 'q', Name: "quit"},
}

// reservedKeys is derived from keyBindings. Any rune here is skipped for block labels.
var reservedKeys map[rune]bool

// availableLabels is the list of safe label characters: a-z then A-Z, minus reserved.
var availableLabels []rune

func init() {
	reservedKeys = make(map[rune]bool, len(keyBindings))
	for _, kb := range keyBindings {
		reservedKeys[kb.Key] = true
	}
	// Lowercase first, then uppercase for overflow
	for r := 'a'; r <= 'z'; r++ {
		if !reservedKeys[r] {
			availableLabels = append(availableLabels, r)
		}
	}
	for r := 'A'; r <= 'Z'; r++ {
		if !reservedKeys[r] {
			availableLabels = append(availableLabels, r)
		}
	}
}
