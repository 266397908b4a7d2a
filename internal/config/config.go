// Package config provides configuration types and defaults for tatami.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/tatami-vcs/tatami/internal/log"
)

// Config holds all configuration options for tatami.
type Config struct {
	Repo                string            `mapstructure:"repo"`
	Limit               int               `mapstructure:"limit"`
	Revset              string            `mapstructure:"revset"`
	AutoRefresh         bool              `mapstructure:"auto_refresh"`
	AutoRefreshDebounce int               `mapstructure:"auto_refresh_debounce_ms"`
	UI                  UIConfig          `mapstructure:"ui"`
	Theme               ThemeConfig       `mapstructure:"theme"`
	Keybindings         KeybindingsConfig `mapstructure:"keybindings"`
}

// UIConfig holds user interface configuration options.
type UIConfig struct {
	ShowStatusBar bool `mapstructure:"show_status_bar"`
	ShowDiffStats bool `mapstructure:"show_diff_stats"`
	SidebarWidth  int  `mapstructure:"sidebar_width"`
}

// ThemeConfig holds color customization options. Values are hex colors,
// e.g. "#10B981".
type ThemeConfig struct {
	Highlight   string `mapstructure:"highlight"`
	Subtle      string `mapstructure:"subtle"`
	Error       string `mapstructure:"error"`
	Success     string `mapstructure:"success"`
	WorkingCopy string `mapstructure:"working_copy"`
	Immutable   string `mapstructure:"immutable"`
}

// KeybindingsConfig lets users rebind actions. Empty slices keep the
// defaults. The top jump is a fixed double-tap of "g" and cannot be
// rebound.
type KeybindingsConfig struct {
	Down        []string `mapstructure:"down"`
	Up          []string `mapstructure:"up"`
	Parent      []string `mapstructure:"parent"`
	Child       []string `mapstructure:"child"`
	WorkingCopy []string `mapstructure:"working_copy"`
	Last        []string `mapstructure:"last"`
	Deselect    []string `mapstructure:"deselect"`
	Refresh     []string `mapstructure:"refresh"`
	Revset      []string `mapstructure:"revset"`
	Help        []string `mapstructure:"help"`
	Quit        []string `mapstructure:"quit"`
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Limit:               200,
		AutoRefresh:         true,
		AutoRefreshDebounce: 500,
		UI: UIConfig{
			ShowStatusBar: true,
			ShowDiffStats: true,
			SidebarWidth:  25,
		},
		Theme: ThemeConfig{
			Highlight:   "#7D56F4",
			Subtle:      "#6C6C6C",
			Error:       "#FF5555",
			Success:     "#50FA7B",
			WorkingCopy: "#73F59F",
			Immutable:   "#BBBBBB",
		},
	}
}

// namedKeys are the non-rune key names accepted in bindings, matching
// what the terminal event layer reports.
var namedKeys = map[string]struct{}{
	"up": {}, "down": {}, "left": {}, "right": {},
	"home": {}, "end": {}, "pgup": {}, "pgdown": {},
	"tab": {}, "shift+tab": {}, "enter": {}, "esc": {}, "space": {},
	"backspace": {}, "delete": {},
}

// reservedKeys cannot be rebound: "g" arms the jump-to-top chord and the
// rest would shadow text input in the revset bar.
var reservedKeys = map[string]string{
	"g": "jump-to-top chord",
}

var modifiedKeyRe = regexp.MustCompile(`^(ctrl|alt)\+[a-z0-9]$`)

// validKey reports whether a single binding token is understood.
func validKey(key string) bool {
	if _, ok := namedKeys[key]; ok {
		return true
	}
	if modifiedKeyRe.MatchString(key) {
		return true
	}
	runes := []rune(key)
	return len(runes) == 1 && runes[0] > ' ' && runes[0] < 0x7f
}

// ValidateKeybindings checks keybinding configuration for errors: unknown
// key syntax, reserved keys, and the same key bound to two actions.
func ValidateKeybindings(kb KeybindingsConfig) error {
	actions := []struct {
		name string
		keys []string
	}{
		{"down", kb.Down},
		{"up", kb.Up},
		{"parent", kb.Parent},
		{"child", kb.Child},
		{"working_copy", kb.WorkingCopy},
		{"last", kb.Last},
		{"deselect", kb.Deselect},
		{"refresh", kb.Refresh},
		{"revset", kb.Revset},
		{"help", kb.Help},
		{"quit", kb.Quit},
	}

	seen := make(map[string]string)
	for _, action := range actions {
		for _, key := range action.keys {
			if !validKey(key) {
				return fmt.Errorf("keybindings.%s: invalid key %q", action.name, key)
			}
			if use, ok := reservedKeys[key]; ok {
				return fmt.Errorf("keybindings.%s: %q is reserved for the %s", action.name, key, use)
			}
			if other, ok := seen[key]; ok && other != action.name {
				return fmt.Errorf("keybindings.%s: %q already bound to %s", action.name, key, other)
			}
			seen[key] = action.name
		}
	}
	return nil
}

// Validate checks the whole configuration.
func Validate(cfg Config) error {
	if cfg.Limit < 0 {
		return fmt.Errorf("limit must be non-negative, got %d", cfg.Limit)
	}
	if cfg.AutoRefreshDebounce < 0 {
		return fmt.Errorf("auto_refresh_debounce_ms must be non-negative, got %d", cfg.AutoRefreshDebounce)
	}
	if cfg.UI.SidebarWidth < 0 || cfg.UI.SidebarWidth > 80 {
		return fmt.Errorf("ui.sidebar_width must be between 0 and 80, got %d", cfg.UI.SidebarWidth)
	}
	for name, value := range map[string]string{
		"highlight":    cfg.Theme.Highlight,
		"subtle":       cfg.Theme.Subtle,
		"error":        cfg.Theme.Error,
		"success":      cfg.Theme.Success,
		"working_copy": cfg.Theme.WorkingCopy,
		"immutable":    cfg.Theme.Immutable,
	} {
		if value != "" && !validHexColor(value) {
			return fmt.Errorf("theme.%s: invalid hex color %q", name, value)
		}
	}
	return ValidateKeybindings(cfg.Keybindings)
}

func validHexColor(s string) bool {
	if !strings.HasPrefix(s, "#") {
		return false
	}
	hex := s[1:]
	if len(hex) != 3 && len(hex) != 6 {
		return false
	}
	for _, r := range hex {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# Tatami Configuration

# Path to a jj repository (default: discovered from the working directory)
# repo: /path/to/project

# Maximum revisions fetched per log load (0 = unlimited)
limit: 200

# Default revset expression (empty = jj's default log revset)
# revset: "ancestors(@, 100)"

# Refetch the log automatically when the repository changes
auto_refresh: true

# Debounce window for auto-refresh, in milliseconds
auto_refresh_debounce_ms: 500

# UI settings
ui:
  show_status_bar: true   # Show status bar at bottom
  show_diff_stats: true   # Show per-file diff stats for the selected revision
  sidebar_width: 25       # Width of the revision sidebar, in percent

# Theme configuration - hex colors
# theme:
#   highlight: "#7D56F4"      # Selected revision
#   subtle: "#6C6C6C"         # Secondary text (timestamps, change ids)
#   error: "#FF5555"
#   success: "#50FA7B"
#   working_copy: "#73F59F"   # Working copy marker
#   immutable: "#BBBBBB"      # Immutable revisions

# Keybinding overrides - each action takes a list of keys.
# Named keys: up, down, left, right, home, end, pgup, pgdown, tab,
# shift+tab, enter, esc, space, backspace, delete. Modified keys use
# "ctrl+x" / "alt+x". "g" is reserved: press it twice to jump to the top.
# keybindings:
#   down: ["j", "down"]
#   up: ["k", "up"]
#   parent: ["h", "left"]
#   child: ["l", "right"]
#   working_copy: ["@"]
#   last: ["G"]
#   deselect: ["esc"]
#   refresh: ["r"]
#   revset: ["/"]
#   help: ["?"]
#   quit: ["q"]
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}

// DefaultConfigPath returns ~/.config/tatami/tatami.yaml, or an empty
// string when the config dir cannot be resolved.
func DefaultConfigPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(configDir, "tatami", "tatami.yaml")
}
