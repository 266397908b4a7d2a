// Package app contains the root application model.
package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tatami-vcs/tatami/internal/cache"
	"github.com/tatami-vcs/tatami/internal/config"
	"github.com/tatami-vcs/tatami/internal/diff"
	"github.com/tatami-vcs/tatami/internal/graph"
	"github.com/tatami-vcs/tatami/internal/input"
	"github.com/tatami-vcs/tatami/internal/jj"
	"github.com/tatami-vcs/tatami/internal/keys"
	"github.com/tatami-vcs/tatami/internal/log"
	"github.com/tatami-vcs/tatami/internal/navigation"
	"github.com/tatami-vcs/tatami/internal/pubsub"
	"github.com/tatami-vcs/tatami/internal/storage"
	"github.com/tatami-vcs/tatami/internal/ui/diffpanel"
	"github.com/tatami-vcs/tatami/internal/ui/logview"
	"github.com/tatami-vcs/tatami/internal/ui/revsetbar"
	"github.com/tatami-vcs/tatami/internal/ui/statusbar"
	"github.com/tatami-vcs/tatami/internal/watcher"
)

// Backend is the slice of the jj client the app depends on. Tests supply
// a fake; production wiring passes *jj.Client.
type Backend interface {
	Root() string
	Log(ctx context.Context, revset string, limit int) ([]jj.Revision, error)
	Status(ctx context.Context) (jj.Status, error)
	ChangedFiles(ctx context.Context, rev string) ([]jj.ChangedFile, error)
	FileContent(ctx context.Context, rev, path string) ([]byte, error)
	ParentFileContent(ctx context.Context, rev, path string) ([]byte, error)
}

const diffCacheTTL = 10 * time.Minute

// action is set by shortcut callbacks during dispatch and consumed by
// Update immediately after.
type action int

const (
	actionNone action = iota
	actionQuit
	actionRefresh
	actionRevset
	actionHelp
)

// Messages produced by commands.

type revisionsLoadedMsg struct {
	revisions []jj.Revision
	err       error
}

type filesLoadedMsg struct {
	changeID    string
	description string
	files       []jj.ChangedFile
	err         error
}

type fileDiffMsg struct {
	changeID string
	diff     diff.FileDiff
}

type statusLoadedMsg struct {
	status jj.Status
	err    error
}

// Config carries the app model's dependencies.
type Config struct {
	Backend    Backend
	Store      *storage.Store // optional
	Cfg        config.Config
	ConfigPath string
	KeyMap     keys.KeyMap
	Clock      input.Clock // nil = real clock
}

// Model is the root application state.
type Model struct {
	backend    Backend
	store      *storage.Store
	cfg        config.Config
	configPath string
	keymap     keys.KeyMap

	registry *input.Registry
	resolver *navigation.Resolver
	pending  *action

	view     graph.View
	selected string
	revset   string

	logview   logview.Model
	diffpanel diffpanel.Model
	revsetbar revsetbar.Model
	statusbar statusbar.Model
	help      help.Model
	showHelp  bool

	diffCache cache.Cache[diff.FileDiff]

	watcherHandle   *watcher.Watcher
	watcherCancel   context.CancelFunc
	watcherListener *pubsub.ContinuousListener[watcher.Event]

	width  int
	height int
}

// New creates the application model. The watcher is started here when
// auto-refresh is enabled; a watcher that fails to start is logged and
// skipped, the app works without it.
func New(appCfg Config) Model {
	pending := actionNone
	repoName := filepath.Base(appCfg.Backend.Root())

	m := Model{
		backend:    appCfg.Backend,
		store:      appCfg.Store,
		cfg:        appCfg.Cfg,
		configPath: appCfg.ConfigPath,
		keymap:     appCfg.KeyMap,
		registry:   input.NewRegistry(),
		resolver:   navigation.New(appCfg.KeyMap.NavigationBindings(), appCfg.Clock),
		pending:    &pending,
		revset:     appCfg.Cfg.Revset,
		logview:    logview.New(),
		diffpanel:  diffpanel.New().SetShowHunks(appCfg.Cfg.UI.ShowDiffStats),
		revsetbar:  revsetbar.New(appCfg.Cfg.Revset),
		statusbar:  statusbar.New(repoName),
		help:       help.New(),
		diffCache:  cache.NewInMemory[diff.FileDiff]("diff", cache.DefaultExpiration, cache.DefaultCleanupInterval),
	}

	m.registerShortcuts()
	m.restoreSelection()

	if appCfg.Cfg.AutoRefresh {
		debounce := time.Duration(appCfg.Cfg.AutoRefreshDebounce) * time.Millisecond
		w, err := watcher.New(watcher.Config{Root: appCfg.Backend.Root(), DebounceDur: debounce})
		if err == nil {
			err = w.Start()
		}
		if err != nil {
			log.Warn(log.CatUI, "Auto-refresh disabled", "error", err)
		} else {
			ctx, cancel := context.WithCancel(context.Background())
			m.watcherHandle = w
			m.watcherCancel = cancel
			m.watcherListener = pubsub.NewContinuousListener(ctx, w.Broker())
		}
	}

	return m
}

// registerShortcuts wires the global, non-navigation keys. Quit accepts
// either meta or ctrl so the same binding works across platforms, and
// keeps working while the revset bar is focused.
func (m *Model) registerShortcuts() {
	register := func(s input.Shortcut) {
		if _, err := m.registry.Register(s); err != nil {
			log.ErrorErr(log.CatInput, "Failed to register shortcut", err, "key", s.Key)
		}
	}

	register(input.Shortcut{
		Key: "c",
		Modifiers: input.ModifierSpec{
			Meta: input.Required,
			Ctrl: input.Required,
		},
		IgnoreInputFocus: true,
		Action:           func() { *m.pending = actionQuit },
	})
	for _, k := range m.keymap.Quit.Keys() {
		if k == "ctrl+c" {
			continue // covered by the combined binding above
		}
		register(input.Shortcut{
			Key:       k,
			Modifiers: input.ModifierSpec{Ctrl: input.Forbidden, Alt: input.Forbidden},
			Action:    func() { *m.pending = actionQuit },
		})
	}
	for _, k := range m.keymap.Refresh.Keys() {
		register(input.Shortcut{
			Key:    k,
			Action: func() { *m.pending = actionRefresh },
		})
	}
	for _, k := range m.keymap.Revset.Keys() {
		register(input.Shortcut{
			Key:    k,
			Action: func() { *m.pending = actionRevset },
		})
	}
	for _, k := range m.keymap.Help.Keys() {
		register(input.Shortcut{
			Key:    k,
			Action: func() { *m.pending = actionHelp },
		})
	}
}

// restoreSelection picks up the persisted selection so reopening the
// app lands where the user left off. Validity against the actual log is
// checked when revisions arrive.
func (m *Model) restoreSelection() {
	if m.store == nil {
		return
	}
	if id := m.store.Layout().SelectedChangeID; id != nil {
		m.selected = *id
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.loadLog()}
	if m.watcherListener != nil {
		cmds = append(cmds, m.watcherListener.Listen())
	}
	return tea.Batch(cmds...)
}

// Close releases resources. Call after the program exits.
func (m Model) Close() {
	if m.watcherCancel != nil {
		m.watcherCancel()
	}
	if m.watcherHandle != nil {
		_ = m.watcherHandle.Stop()
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case revsetbar.SubmittedMsg:
		m.revset = msg.Revset
		m.statusbar = m.statusbar.SetRevset(msg.Revset)
		if m.configPath != "" {
			if err := config.SaveRevset(m.configPath, msg.Revset); err != nil {
				log.ErrorErr(log.CatConfig, "Failed to persist revset", err)
			}
		}
		return m, m.loadLog()

	case revsetbar.CancelledMsg:
		m.revsetbar = m.revsetbar.SetValue(m.revset)
		return m, nil

	case revisionsLoadedMsg:
		return m.handleRevisionsLoaded(msg)

	case filesLoadedMsg:
		return m.handleFilesLoaded(msg)

	case fileDiffMsg:
		if msg.changeID == m.selected {
			m.diffpanel = m.diffpanel.SetFileDiff(msg.diff)
		}
		return m, nil

	case statusLoadedMsg:
		if msg.err != nil {
			log.Warn(log.CatJJ, "Status load failed", "error", msg.err)
			return m, nil
		}
		m.statusbar = m.statusbar.SetWorkingCopy(len(msg.status.Files))
		return m, nil

	case pubsub.Event[watcher.Event]:
		return m.handleWatcherEvent(msg)
	}

	return m, nil
}

// handleKey runs the input pipeline: decode, shortcut registry, revset
// bar, then the navigation resolver. The first stage to handle the key
// stops propagation.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ev := input.DecodeKeyMsg(msg)

	*m.pending = actionNone
	if m.registry.Dispatch(ev, m.revsetbar.Focused()) {
		return m.applyAction()
	}

	if m.revsetbar.Focused() {
		var cmd tea.Cmd
		m.revsetbar, cmd = m.revsetbar.Update(msg)
		return m, cmd
	}

	if m.showHelp {
		// Any unbound key closes the help overlay.
		m.showHelp = false
		return m, nil
	}

	outcome := m.resolver.Resolve(m.selected, ev, m.view)
	if !outcome.Handled {
		return m, nil
	}
	switch {
	case outcome.Clear:
		return m.selectChange("")
	case outcome.Target != "":
		return m.selectChange(outcome.Target)
	}
	return m, nil
}

// applyAction consumes the action set during registry dispatch.
func (m Model) applyAction() (tea.Model, tea.Cmd) {
	act := *m.pending
	*m.pending = actionNone

	switch act {
	case actionQuit:
		m.Close()
		return m, tea.Quit
	case actionRefresh:
		log.Info(log.CatUI, "Manual refresh")
		return m, m.loadLog()
	case actionRevset:
		var cmd tea.Cmd
		m.revsetbar, cmd = m.revsetbar.Focus()
		return m, cmd
	case actionHelp:
		m.showHelp = !m.showHelp
		return m, nil
	}
	return m, nil
}

// selectChange updates the selection everywhere it is mirrored: the
// resolver input, the log view highlight, the diff panel and persisted
// layout.
func (m Model) selectChange(changeID string) (tea.Model, tea.Cmd) {
	if changeID == m.selected {
		return m, nil
	}
	m.selected = changeID
	m.logview = m.logview.Select(changeID)
	m.statusbar = m.statusbar.SetSelected(changeID)

	if m.store != nil {
		if err := m.store.SetSelectedChange(changeID); err != nil {
			log.ErrorErr(log.CatStorage, "Failed to persist selection", err)
		}
	}

	if changeID == "" {
		m.diffpanel = m.diffpanel.Clear()
		return m, nil
	}
	return m, m.loadFiles(changeID)
}

func (m Model) handleRevisionsLoaded(msg revisionsLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		log.ErrorErr(log.CatJJ, "Log load failed", msg.err)
		m.statusbar = m.statusbar.SetError(msg.err)
		return m, nil
	}

	m.view = graph.NewView(msg.revisions)
	m.statusbar = m.statusbar.SetError(nil).SetRevisionCount(m.view.Len()).SetRevset(m.revset)
	m.logview = m.logview.SetRevisions(m.view)

	// A selection that no longer resolves is dropped rather than left
	// dangling.
	if m.selected != "" && m.view.IndexOf(m.selected) < 0 {
		return m.selectChange("")
	}
	if m.selected != "" {
		m.logview = m.logview.Select(m.selected)
		return m, m.loadFiles(m.selected)
	}
	return m, nil
}

func (m Model) handleFilesLoaded(msg filesLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.changeID != m.selected {
		return m, nil // stale response
	}
	if msg.err != nil {
		log.ErrorErr(log.CatJJ, "Changed files load failed", msg.err, "change", msg.changeID)
		m.statusbar = m.statusbar.SetError(msg.err)
		return m, nil
	}

	m.diffpanel = m.diffpanel.SetRevision(msg.description, msg.files)
	return m, m.loadDiffs(msg.changeID, msg.files)
}

func (m Model) handleWatcherEvent(msg pubsub.Event[watcher.Event]) (tea.Model, tea.Cmd) {
	switch msg.Payload.Type {
	case watcher.RepoChanged:
		log.Debug(log.CatUI, "Repository changed, reloading log")
		if err := m.diffCache.Flush(context.Background()); err != nil {
			log.Warn(log.CatCache, "Failed to flush diff cache", "error", err)
		}
		return m, tea.Batch(m.loadLog(), m.watcherListener.Listen())

	case watcher.WatchError:
		log.Warn(log.CatWatcher, "Watcher error received", "error", msg.Payload.Err)
		return m, m.watcherListener.Listen()
	}
	return m, m.watcherListener.Listen()
}

// Commands.

func (m Model) loadLog() tea.Cmd {
	backend, revset, limit := m.backend, m.revset, m.cfg.Limit
	return tea.Batch(
		func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			revisions, err := backend.Log(ctx, revset, limit)
			return revisionsLoadedMsg{revisions: revisions, err: err}
		},
		func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			status, err := backend.Status(ctx)
			return statusLoadedMsg{status: status, err: err}
		},
	)
}

func (m Model) loadFiles(changeID string) tea.Cmd {
	rev, ok := m.view.At(m.view.IndexOf(changeID))
	if !ok {
		return nil
	}
	backend := m.backend
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		files, err := backend.ChangedFiles(ctx, rev.CommitID)
		return filesLoadedMsg{
			changeID:    changeID,
			description: rev.Description,
			files:       files,
			err:         err,
		}
	}
}

// loadDiffs computes one file diff per changed file, cache first.
func (m Model) loadDiffs(changeID string, files []jj.ChangedFile) tea.Cmd {
	rev, ok := m.view.At(m.view.IndexOf(changeID))
	if !ok {
		return nil
	}

	cmds := make([]tea.Cmd, 0, len(files))
	for _, f := range files {
		file := f
		backend, diffCache := m.backend, m.diffCache
		cmds = append(cmds, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			key := fmt.Sprintf("%s:%s", rev.CommitID, file.Path)
			if fd, ok := diffCache.Get(ctx, key); ok {
				return fileDiffMsg{changeID: changeID, diff: fd}
			}

			oldContent, err := backend.ParentFileContent(ctx, rev.CommitID, file.Path)
			if err != nil {
				log.ErrorErr(log.CatDiff, "Parent content load failed", err, "path", file.Path)
			}
			newContent, err := backend.FileContent(ctx, rev.CommitID, file.Path)
			if err != nil {
				log.ErrorErr(log.CatDiff, "Content load failed", err, "path", file.Path)
			}

			fd := diff.Compute(oldContent, newContent, file.Path)
			diffCache.Set(ctx, key, fd, diffCacheTTL)
			return fileDiffMsg{changeID: changeID, diff: fd}
		})
	}
	return tea.Batch(cmds...)
}

// Layout and rendering.

func (m *Model) layout() {
	sidebarWidth := m.sidebarWidth()
	contentHeight := m.height - 2 // revset/status rows
	if contentHeight < 1 {
		contentHeight = 1
	}
	m.logview = m.logview.SetSize(sidebarWidth, contentHeight)
	m.diffpanel = m.diffpanel.SetSize(m.width-sidebarWidth-1, contentHeight)
	m.revsetbar = m.revsetbar.SetWidth(m.width)
	m.statusbar = m.statusbar.SetWidth(m.width)
	m.help.Width = m.width
}

// sidebarWidth converts the configured percentage into columns.
func (m Model) sidebarWidth() int {
	pct := m.cfg.UI.SidebarWidth
	if pct <= 0 {
		pct = storage.DefaultSidebarWidth
	}
	w := m.width * pct / 100
	if w < 20 {
		w = 20
	}
	return w
}

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 {
		return "loading..."
	}

	if m.showHelp {
		return m.help.FullHelpView(m.keymap.FullHelp())
	}

	main := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.logview.View(),
		lipgloss.NewStyle().Width(1).Render(" "),
		m.diffpanel.View(),
	)

	rows := []string{main}
	if m.revsetbar.Focused() {
		rows = append(rows, m.revsetbar.View())
	}
	if m.cfg.UI.ShowStatusBar {
		rows = append(rows, m.statusbar.View())
	}
	return strings.Join(rows, "\n")
}

// Selected exposes the current selection for tests and the status line.
func (m Model) Selected() string {
	return m.selected
}
