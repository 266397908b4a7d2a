package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "tatami.db"))
	require.NoError(t, err, "failed to open store")
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpen_BootstrapsSchema(t *testing.T) {
	s := openTestStore(t)

	projects, err := s.Projects()
	require.NoError(t, err)
	require.Empty(t, projects)

	layout := s.Layout()
	assert.Nil(t, layout.ActiveProjectID)
	assert.Nil(t, layout.SelectedChangeID)
	assert.Equal(t, DefaultSidebarWidth, layout.SidebarWidth)
}

func TestOpen_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "tatami.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())
}

func TestUpsertProject_AssignsIDAndDefaults(t *testing.T) {
	s := openTestStore(t)

	p, err := s.UpsertProject(Project{Path: "/home/alice/src/tatami"})
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "tatami", p.Name)
	assert.NotZero(t, p.LastOpenedAt)
}

func TestUpsertProject_UpdatesExisting(t *testing.T) {
	s := openTestStore(t)

	p, err := s.UpsertProject(Project{Path: "/repo", Name: "repo"})
	require.NoError(t, err)

	p.RevsetPreset = "ancestors(@, 50)"
	p.Name = "renamed"
	updated, err := s.UpsertProject(p)
	require.NoError(t, err)
	assert.Equal(t, p.ID, updated.ID)

	projects, err := s.Projects()
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "renamed", projects[0].Name)
	assert.Equal(t, "ancestors(@, 50)", projects[0].RevsetPreset)
}

func TestProjects_OrderedByLastOpened(t *testing.T) {
	s := openTestStore(t)

	_, err := s.UpsertProject(Project{Path: "/old", LastOpenedAt: 100})
	require.NoError(t, err)
	_, err = s.UpsertProject(Project{Path: "/new", LastOpenedAt: 200})
	require.NoError(t, err)

	projects, err := s.Projects()
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, "/new", projects[0].Path)
	assert.Equal(t, "/old", projects[1].Path)
}

func TestFindProjectByPath(t *testing.T) {
	s := openTestStore(t)

	created, err := s.UpsertProject(Project{Path: "/repo"})
	require.NoError(t, err)

	found, ok, err := s.FindProjectByPath("/repo")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, created.ID, found.ID)

	_, ok, err = s.FindProjectByPath("/missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOpenProject_ReusesExistingRow(t *testing.T) {
	s := openTestStore(t)

	first, err := s.OpenProject("/repo")
	require.NoError(t, err)

	second, err := s.OpenProject("/repo")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	projects, err := s.Projects()
	require.NoError(t, err)
	require.Len(t, projects, 1)
}

func TestDeleteProject_ClearsActiveSelection(t *testing.T) {
	s := openTestStore(t)

	p, err := s.UpsertProject(Project{Path: "/repo"})
	require.NoError(t, err)

	require.NoError(t, s.UpdateLayout(Layout{
		ActiveProjectID:  &p.ID,
		SelectedChangeID: strPtr("abcdef123456"),
	}))

	require.NoError(t, s.DeleteProject(p.ID))

	layout := s.Layout()
	assert.Nil(t, layout.ActiveProjectID)
	assert.Nil(t, layout.SelectedChangeID)
}

func TestDeleteProject_KeepsUnrelatedSelection(t *testing.T) {
	s := openTestStore(t)

	active, err := s.UpsertProject(Project{Path: "/active"})
	require.NoError(t, err)
	other, err := s.UpsertProject(Project{Path: "/other"})
	require.NoError(t, err)

	require.NoError(t, s.UpdateLayout(Layout{
		ActiveProjectID:  &active.ID,
		SelectedChangeID: strPtr("abcdef123456"),
	}))

	require.NoError(t, s.DeleteProject(other.ID))

	layout := s.Layout()
	require.NotNil(t, layout.ActiveProjectID)
	assert.Equal(t, active.ID, *layout.ActiveProjectID)
	require.NotNil(t, layout.SelectedChangeID)
}

func TestUpdateLayout_MergeSemantics(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.UpdateLayout(Layout{
		ActiveProjectID:  strPtr("p1"),
		SelectedChangeID: strPtr("change1"),
		SidebarWidth:     30,
	}))

	// Width-only update leaves project and selection alone.
	require.NoError(t, s.UpdateLayout(Layout{SidebarWidth: 40}))
	layout := s.Layout()
	require.NotNil(t, layout.ActiveProjectID)
	assert.Equal(t, "p1", *layout.ActiveProjectID)
	require.NotNil(t, layout.SelectedChangeID)
	assert.Equal(t, 40, layout.SidebarWidth)

	// Switching project without a selection clears the old selection.
	require.NoError(t, s.UpdateLayout(Layout{ActiveProjectID: strPtr("p2")}))
	layout = s.Layout()
	assert.Equal(t, "p2", *layout.ActiveProjectID)
	assert.Nil(t, layout.SelectedChangeID)
	assert.Equal(t, 40, layout.SidebarWidth, "zero width means unchanged")
}

func TestSetSelectedChange(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.SetSelectedChange("abc"))
	require.NotNil(t, s.Layout().SelectedChangeID)
	assert.Equal(t, "abc", *s.Layout().SelectedChangeID)

	require.NoError(t, s.SetSelectedChange(""))
	assert.Nil(t, s.Layout().SelectedChangeID)
}

func TestLayout_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tatami.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.UpdateLayout(Layout{
		ActiveProjectID:  strPtr("p1"),
		SelectedChangeID: strPtr("change1"),
		SidebarWidth:     33,
	}))
	require.NoError(t, s.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	layout := reopened.Layout()
	require.NotNil(t, layout.ActiveProjectID)
	assert.Equal(t, "p1", *layout.ActiveProjectID)
	require.NotNil(t, layout.SelectedChangeID)
	assert.Equal(t, "change1", *layout.SelectedChangeID)
	assert.Equal(t, 33, layout.SidebarWidth)
}

func strPtr(s string) *string { return &s }
