package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const version = "0.1.0"

// Config is the resolved runtime configuration. Layers apply in order:
// defaults, config file, environment, flags.
type Config struct {
	Theme         string `yaml:"theme"`
	Clipboard     string `yaml:"clipboard"` // auto, system or osc52
	LogFile       string `yaml:"log_file"`
	Debug         bool   `yaml:"debug"`
	NoWrap        bool   `yaml:"no_wrap"`
	NoSyntax      bool   `yaml:"no_syntax"`
	NoLineNumbers bool   `yaml:"no_line_numbers"`
	ShowAll       bool   `yaml:"show_all"`
	Outline       bool   `yaml:"outline"`

	Path        string `yaml:"-"` // document to open; "" or "-" reads stdin
	ConfigFile  string `yaml:"-"`
	HelpWanted  bool   `yaml:"-"`
	VersionOnly bool   `yaml:"-"`
	ListThemes  bool   `yaml:"-"`

	themeExplicit bool
}

func defaultConfig() Config {
	return Config{Clipboard: ClipboardAuto}
}

// defaultConfigPath returns $XDG_CONFIG_HOME/snip/config.yaml, falling back
// to ~/.config.
func defaultConfigPath(getenv func(string) string) string {
	if dir := getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "snip", "config.yaml")
	}
	if home := getenv("HOME"); home != "" {
		return filepath.Join(home, ".config", "snip", "config.yaml")
	}
	return ""
}

// loadConfigFile overlays the YAML file at path onto cfg. A missing file is
// not an error.
func loadConfigFile(cfg *Config, path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Theme != "" {
		cfg.themeExplicit = true
	}
	return nil
}

// LoadConfig resolves the configuration from the config file, getenv and
// command line args (without the program name).
func LoadConfig(args []string, getenv func(string) string) (Config, error) {
	cfg := defaultConfig()

	// --config must be known before the file layer is applied
	cfg.ConfigFile = defaultConfigPath(getenv)
	if p := getenv("SNIP_CONFIG"); p != "" {
		cfg.ConfigFile = p
	}
	for i := 0; i < len(args)-1; i++ {
		if args[i] == "--config" {
			cfg.ConfigFile = args[i+1]
		}
	}
	if err := loadConfigFile(&cfg, cfg.ConfigFile); err != nil {
		return cfg, err
	}

	if v := getenv("SNIP_THEME"); v != "" {
		cfg.Theme = v
		cfg.themeExplicit = true
	}
	if v := getenv("SNIP_CLIPBOARD"); v != "" {
		cfg.Clipboard = v
	}
	if v := getenv("SNIP_LOG"); v != "" {
		cfg.LogFile = v
	}

	if err := parseArgs(&cfg, args); err != nil {
		return cfg, err
	}
	if cfg.Theme == "" {
		cfg.Theme = defaultTheme
	}
	return cfg, nil
}

func parseArgs(cfg *Config, args []string) error {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "-h", "--help":
			cfg.HelpWanted = true
		case "-v", "--version":
			cfg.VersionOnly = true
		case "--themes":
			cfg.ListThemes = true
		case "-t", "-c", "--log", "--config":
			if i+1 >= len(args) {
				return fmt.Errorf("flag %s needs a value", arg)
			}
			i++
			switch arg {
			case "-t":
				cfg.Theme = args[i]
				cfg.themeExplicit = true
			case "-c":
				cfg.Clipboard = args[i]
			case "--log":
				cfg.LogFile = args[i]
			}
		case "--debug":
			cfg.Debug = true
		case "-a":
			cfg.ShowAll = true
		case "-e":
			cfg.Outline = true
		case "-W":
			cfg.NoWrap = true
		case "-S":
			cfg.NoSyntax = true
		case "-N":
			cfg.NoLineNumbers = true
		case "-":
			cfg.Path = "-"
		default:
			if len(arg) > 1 && arg[0] == '-' {
				return fmt.Errorf("unknown flag %s", arg)
			}
			if cfg.Path != "" {
				return fmt.Errorf("only one document can be opened")
			}
			cfg.Path = arg
		}
	}
	return nil
}

func printUsage() {
	fmt.Print(`snip - browse, fold and copy the code blocks of a document

Usage: snip [flags] [file]

Flags:
  -a            Show all blocks on start (hidden by default)
  -e            Open the block outline
  -N            Disable line numbers (on by default)
  -W            Disable line wrapping (on by default)
  -S            Disable syntax highlighting (on by default)
  -t <name>     Color theme (default: monokai, env: SNIP_THEME)
  -c <mode>     Clipboard: auto, system, osc52 (env: SNIP_CLIPBOARD)
  --log <file>  Write a log file (env: SNIP_LOG)
  --debug       Log debug entries
  --config <f>  Config file (default: ~/.config/snip/config.yaml)
  --themes      List available themes
  -v, --version Show version
  -h, --help    Show this help

Arguments:
  file          Markdown document, or a .diff/.patch file (default: stdin)

Examples:
  snip README.md          Browse the code blocks of README.md
  snip -a docs/setup.md   Start with every block shown
  git diff | snip         Browse diff hunks as blocks

Keyboard Shortcuts:
  j/k         Scroll up/down          t+label  Toggle block
  d/u         Half page down/up       y+label  Copy block
  g/G         Jump to top/bottom      Space    Toggle current block
  ]/[         Next/prev block         Y        Copy current block
  n           Toggle line numbers     T/H      Show/hide all blocks
  w           Toggle wrap             e        Toggle outline
  h           Toggle syntax highlight /        Search
  o           Open in $EDITOR         W        Toggle watch mode
  ?           Help overlay            q        Quit
`)
}
