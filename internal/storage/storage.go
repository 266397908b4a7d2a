// Package storage persists known projects and window layout in a SQLite
// database under the user's config directory. Each opened repository is
// recorded as a project so the picker can list recently used ones, and
// the layout row remembers the active project and selection across runs.
package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/tatami-vcs/tatami/internal/log"
)

// DefaultSidebarWidth is the layout fallback when nothing is persisted.
const DefaultSidebarWidth = 25

const layoutKey = "main"

// Project is one repository the user has opened.
type Project struct {
	ID           string `json:"id"`
	Path         string `json:"path"`
	Name         string `json:"name"`
	LastOpenedAt int64  `json:"last_opened_at"`
	RevsetPreset string `json:"revset_preset,omitempty"`
}

// Layout is the persisted window state. Pointer fields distinguish "not
// set in this update" from "set to empty" in UpdateLayout's merge.
type Layout struct {
	ActiveProjectID  *string `json:"active_project_id"`
	SelectedChangeID *string `json:"selected_change_id"`
	SidebarWidth     int     `json:"sidebar_width"`
}

// DefaultLayout returns the layout used when nothing is persisted yet.
func DefaultLayout() Layout {
	return Layout{SidebarWidth: DefaultSidebarWidth}
}

// Store wraps the SQLite database. The layout is cached in memory and
// written through on every update.
type Store struct {
	db *sql.DB

	mu     sync.Mutex
	layout Layout
}

// DefaultPath returns the database location under the user config dir.
func DefaultPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolving config dir: %w", err)
	}
	return filepath.Join(configDir, "tatami", "tatami.db"), nil
}

// Open opens (creating if needed) the database at path and bootstraps the
// schema.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	log.Debug(log.CatStorage, "Opening database", "path", path)
	db, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		log.ErrorErr(log.CatStorage, "Failed to open database", err, "path", path)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		log.ErrorErr(log.CatStorage, "Failed to ping database", err, "path", path)
		_ = db.Close()
		return nil, err
	}

	if err := bootstrap(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &Store{db: db, layout: DefaultLayout()}
	if layout, ok := loadLayout(db); ok {
		s.layout = layout
	}

	log.Info(log.CatStorage, "Connected to database", "path", path)
	return s, nil
}

func bootstrap(db *sql.DB) error {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS projects (
			id TEXT PRIMARY KEY,
			path TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			last_opened_at INTEGER NOT NULL,
			revset_preset TEXT
		)`); err != nil {
		return fmt.Errorf("creating projects table: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS layout (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`); err != nil {
		return fmt.Errorf("creating layout table: %w", err)
	}

	return nil
}

func loadLayout(db *sql.DB) (Layout, bool) {
	var value string
	err := db.QueryRow(`SELECT value FROM layout WHERE key = ?`, layoutKey).Scan(&value)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.ErrorErr(log.CatStorage, "Failed to load layout", err)
		}
		return Layout{}, false
	}

	var layout Layout
	if err := json.Unmarshal([]byte(value), &layout); err != nil {
		log.ErrorErr(log.CatStorage, "Corrupt layout row, using defaults", err)
		return Layout{}, false
	}
	if layout.SidebarWidth == 0 {
		layout.SidebarWidth = DefaultSidebarWidth
	}
	return layout, true
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Projects returns all known projects, most recently opened first.
func (s *Store) Projects() ([]Project, error) {
	rows, err := s.db.Query(`
		SELECT id, path, name, last_opened_at, revset_preset
		FROM projects ORDER BY last_opened_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	var projects []Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func scanProject(scanner interface{ Scan(...any) error }) (Project, error) {
	var p Project
	var preset sql.NullString
	if err := scanner.Scan(&p.ID, &p.Path, &p.Name, &p.LastOpenedAt, &preset); err != nil {
		return Project{}, err
	}
	p.RevsetPreset = preset.String
	return p, nil
}

// FindProjectByPath looks a project up by its repository path.
func (s *Store) FindProjectByPath(path string) (Project, bool, error) {
	row := s.db.QueryRow(`
		SELECT id, path, name, last_opened_at, revset_preset
		FROM projects WHERE path = ?`, path)

	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Project{}, false, nil
	}
	if err != nil {
		return Project{}, false, fmt.Errorf("finding project: %w", err)
	}
	return p, true, nil
}

// UpsertProject inserts or updates a project. A project without an ID
// gets a fresh one.
func (s *Store) UpsertProject(p Project) (Project, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Name == "" {
		p.Name = filepath.Base(p.Path)
	}
	if p.LastOpenedAt == 0 {
		p.LastOpenedAt = time.Now().Unix()
	}

	var preset any
	if p.RevsetPreset != "" {
		preset = p.RevsetPreset
	}
	_, err := s.db.Exec(`
		INSERT INTO projects (id, path, name, last_opened_at, revset_preset)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			path = excluded.path,
			name = excluded.name,
			last_opened_at = excluded.last_opened_at,
			revset_preset = excluded.revset_preset`,
		p.ID, p.Path, p.Name, p.LastOpenedAt, preset)
	if err != nil {
		return Project{}, fmt.Errorf("upserting project: %w", err)
	}

	log.Debug(log.CatStorage, "Project saved", "id", p.ID, "path", p.Path)
	return p, nil
}

// OpenProject records that path was opened now, reusing the existing
// project row when one exists for that path.
func (s *Store) OpenProject(path string) (Project, error) {
	p, found, err := s.FindProjectByPath(path)
	if err != nil {
		return Project{}, err
	}
	if !found {
		p = Project{Path: path}
	}
	p.LastOpenedAt = time.Now().Unix()
	return s.UpsertProject(p)
}

// DeleteProject removes a project. When the deleted project is the active
// one, the persisted selection is cleared with it so a later open does
// not restore a selection from another repository.
func (s *Store) DeleteProject(id string) error {
	if _, err := s.db.Exec(`DELETE FROM projects WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.layout.ActiveProjectID != nil && *s.layout.ActiveProjectID == id {
		s.layout.ActiveProjectID = nil
		s.layout.SelectedChangeID = nil
		return s.saveLayoutLocked()
	}
	return nil
}

// Layout returns the current layout.
func (s *Store) Layout() Layout {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.layout
}

// UpdateLayout merges updates into the stored layout. Nil fields leave
// the stored value alone, with one exception: setting the active project
// always rewrites the selected change, clearing it when the update
// carries none, so selections never leak between projects. A zero
// SidebarWidth means "unchanged".
func (s *Store) UpdateLayout(updates Layout) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	hasActiveProjectUpdate := updates.ActiveProjectID != nil
	if hasActiveProjectUpdate {
		s.layout.ActiveProjectID = updates.ActiveProjectID
	}
	if updates.SelectedChangeID != nil || hasActiveProjectUpdate {
		s.layout.SelectedChangeID = updates.SelectedChangeID
	}
	if updates.SidebarWidth != 0 {
		s.layout.SidebarWidth = updates.SidebarWidth
	}

	return s.saveLayoutLocked()
}

// SetSelectedChange persists the selection, clearing it when changeID is
// empty.
func (s *Store) SetSelectedChange(changeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if changeID == "" {
		s.layout.SelectedChangeID = nil
	} else {
		s.layout.SelectedChangeID = &changeID
	}
	return s.saveLayoutLocked()
}

func (s *Store) saveLayoutLocked() error {
	value, err := json.Marshal(s.layout)
	if err != nil {
		return fmt.Errorf("encoding layout: %w", err)
	}
	if _, err := s.db.Exec(`INSERT OR REPLACE INTO layout (key, value) VALUES (?, ?)`,
		layoutKey, string(value)); err != nil {
		return fmt.Errorf("saving layout: %w", err)
	}
	return nil
}
