package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tatami-vcs/tatami/internal/config"
	"github.com/tatami-vcs/tatami/internal/jj"
	"github.com/tatami-vcs/tatami/internal/keys"
)

// TestNoRepository_DiscoveryFails verifies the condition that makes the
// root command refuse to start: no .jj directory at or above the
// working directory.
func TestNoRepository_DiscoveryFails(t *testing.T) {
	tmpDir := t.TempDir()
	require.Empty(t, jj.FindRepo(tmpDir), "expected discovery to fail without .jj")
}

func TestRepositoryDiscoveryFromSubdirectory(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, ".jj", "repo"), 0o755))
	nested := filepath.Join(tmpDir, "src", "deep")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	require.Equal(t, tmpDir, jj.FindRepo(nested))
}

// TestStartup_ValidKeybindings verifies that validation passes and
// ApplyConfig picks the configured keys up.
func TestStartup_ValidKeybindings(t *testing.T) {
	kb := config.KeybindingsConfig{
		Down:    []string{"n"},
		Up:      []string{"p"},
		Refresh: []string{"ctrl+r"},
	}

	require.NoError(t, config.ValidateKeybindings(kb))

	keymap := keys.DefaultKeyMap().ApplyConfig(kb)
	require.Equal(t, []string{"n"}, keymap.Down.Keys())
	require.Equal(t, []string{"p"}, keymap.Up.Keys())
	require.Equal(t, []string{"ctrl+r"}, keymap.Refresh.Keys())
	// Untouched actions keep their defaults.
	require.Equal(t, []string{"q", "ctrl+c"}, keymap.Quit.Keys())
}

func TestStartup_InvalidKeybindings(t *testing.T) {
	tests := []struct {
		name        string
		kb          config.KeybindingsConfig
		errContains string
	}{
		{
			name:        "invalid format - typo in ctrl",
			kb:          config.KeybindingsConfig{Refresh: []string{"crtl+r"}},
			errContains: "invalid key",
		},
		{
			name:        "reserved chord key",
			kb:          config.KeybindingsConfig{Refresh: []string{"g"}},
			errContains: "reserved",
		},
		{
			name:        "duplicate across actions",
			kb:          config.KeybindingsConfig{Down: []string{"x"}, Up: []string{"x"}},
			errContains: "bound to",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := config.ValidateKeybindings(tt.kb)
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.errContains)
		})
	}
}

// TestStartup_NoKeybindings verifies an empty keybindings section keeps
// every default.
func TestStartup_NoKeybindings(t *testing.T) {
	kb := config.KeybindingsConfig{}
	require.NoError(t, config.ValidateKeybindings(kb))

	keymap := keys.DefaultKeyMap().ApplyConfig(kb)
	defaults := keys.DefaultKeyMap()
	require.Equal(t, defaults.Down.Keys(), keymap.Down.Keys())
	require.Equal(t, defaults.Quit.Keys(), keymap.Quit.Keys())
}
