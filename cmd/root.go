package cmd

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tatami-vcs/tatami/internal/app"
	"github.com/tatami-vcs/tatami/internal/config"
	"github.com/tatami-vcs/tatami/internal/jj"
	"github.com/tatami-vcs/tatami/internal/keys"
	"github.com/tatami-vcs/tatami/internal/log"
	"github.com/tatami-vcs/tatami/internal/storage"
	"github.com/tatami-vcs/tatami/internal/ui/styles"
)

func init() {
	// Force lipgloss/termenv to query terminal background color BEFORE
	// any Bubble Tea program starts. This prevents the terminal's OSC 11
	// response from racing with Bubble Tea's input loop and appearing as
	// garbage text in input fields.
	//
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	_ = lipgloss.HasDarkBackground()
}

var (
	version = "dev"
	cfgFile string
	cfg     config.Config
)

var rootCmd = &cobra.Command{
	Use:     "tatami",
	Short:   "A terminal ui for jj revision history",
	Long:    `A keyboard-driven terminal interface for browsing Jujutsu (jj) revision history, with revset filtering and per-file diffs.`,
	Version: version,
	RunE:    runApp,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/tatami/tatami.yaml)")
	rootCmd.Flags().StringP("repo", "R", "",
		"path to a jj repository (default: discovered from the working directory)")
	rootCmd.Flags().Int("limit", 0,
		"maximum number of revisions to load")
	rootCmd.Flags().String("revset", "",
		"initial revset expression")
	rootCmd.Flags().Bool("no-auto-refresh", false,
		"disable automatic reload when the repository changes")
	rootCmd.Flags().String("debug", "",
		"write debug logs to the given file")

	_ = viper.BindPFlag("repo", rootCmd.Flags().Lookup("repo"))
	_ = viper.BindPFlag("limit", rootCmd.Flags().Lookup("limit"))
	_ = viper.BindPFlag("revset", rootCmd.Flags().Lookup("revset"))
}

func initConfig() {
	defaults := config.Defaults()
	viper.SetDefault("limit", defaults.Limit)
	viper.SetDefault("auto_refresh", defaults.AutoRefresh)
	viper.SetDefault("auto_refresh_debounce_ms", defaults.AutoRefreshDebounce)
	viper.SetDefault("ui.show_status_bar", defaults.UI.ShowStatusBar)
	viper.SetDefault("ui.show_diff_stats", defaults.UI.ShowDiffStats)
	viper.SetDefault("ui.sidebar_width", defaults.UI.SidebarWidth)
	viper.SetDefault("theme.highlight", defaults.Theme.Highlight)
	viper.SetDefault("theme.subtle", defaults.Theme.Subtle)
	viper.SetDefault("theme.error", defaults.Theme.Error)
	viper.SetDefault("theme.success", defaults.Theme.Success)
	viper.SetDefault("theme.working_copy", defaults.Theme.WorkingCopy)
	viper.SetDefault("theme.immutable", defaults.Theme.Immutable)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigFile(config.DefaultConfigPath())
	}

	if err := viper.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			// First run: write a commented template so users have
			// something to edit.
			if writeErr := config.WriteDefaultConfig(viper.ConfigFileUsed()); writeErr == nil {
				_ = viper.ReadInConfig()
			}
		}
	}

	_ = viper.Unmarshal(&cfg)
}

func runApp(cmd *cobra.Command, args []string) error {
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := config.ValidateKeybindings(cfg.Keybindings); err != nil {
		return fmt.Errorf("invalid keybindings: %w", err)
	}

	if debugPath, _ := cmd.Flags().GetString("debug"); debugPath != "" {
		closeLog, err := log.Init(debugPath)
		if err != nil {
			return fmt.Errorf("opening debug log: %w", err)
		}
		defer closeLog()
	}
	if noAutoRefresh, _ := cmd.Flags().GetBool("no-auto-refresh"); noAutoRefresh {
		cfg.AutoRefresh = false
	}

	start := cfg.Repo
	if start == "" {
		var err error
		start, err = os.Getwd()
		if err != nil {
			return fmt.Errorf("getting current directory: %w", err)
		}
	}
	root := jj.FindRepo(start)
	if root == "" {
		return fmt.Errorf("no jj repository found at or above %s\nRun 'jj git init' to create one", start)
	}

	client, err := jj.NewClient(root)
	if err != nil {
		return fmt.Errorf("connecting to jj: %w", err)
	}

	store, err := openStore()
	if err != nil {
		// The app works without persistence; don't refuse to start.
		log.ErrorErr(log.CatStorage, "Failed to open project store", err)
		store = nil
	}
	if store != nil {
		defer store.Close()
		if _, err := store.OpenProject(root); err != nil {
			log.ErrorErr(log.CatStorage, "Failed to record project", err)
		}
	}

	styles.ApplyTheme(styles.ThemeConfig{
		Highlight:   cfg.Theme.Highlight,
		Subtle:      cfg.Theme.Subtle,
		Error:       cfg.Theme.Error,
		Success:     cfg.Theme.Success,
		WorkingCopy: cfg.Theme.WorkingCopy,
		Immutable:   cfg.Theme.Immutable,
	})

	keymap := keys.DefaultKeyMap().ApplyConfig(cfg.Keybindings)

	model := app.New(app.Config{
		Backend:    client,
		Store:      store,
		Cfg:        cfg,
		ConfigPath: viper.ConfigFileUsed(),
		KeyMap:     keymap,
	})
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	_, err = p.Run()
	model.Close()

	if err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// openStore opens the shared project database.
func openStore() (*storage.Store, error) {
	path, err := storage.DefaultPath()
	if err != nil {
		return nil, err
	}
	return storage.Open(path)
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
