package tui

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/discoveraniket/ration-card-processor/internal/config"
	"github.com/discoveraniket/ration-card-processor/internal/folder"
	"github.com/discoveraniket/ration-card-processor/internal/store"
)

func TestOpenFolderCmd(t *testing.T) {
	t.Run("missing directory", func(t *testing.T) {
		msg := openFolderCmd(filepath.Join(t.TempDir(), "nope"))()
		em, ok := msg.(folderErrMsg)
		require.True(t, ok)
		assert.True(t, errors.Is(em.err, folder.ErrNotFound))
	})

	t.Run("no images", func(t *testing.T) {
		msg := openFolderCmd(t.TempDir())()
		em, ok := msg.(folderErrMsg)
		require.True(t, ok)
		assert.True(t, errors.Is(em.err, folder.ErrEmptyFolder))
	})

	t.Run("opens and loads records", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "a.jpg"), []byte("x"), 0o644))

		msg := openFolderCmd(dir)()
		om, ok := msg.(folderOpenedMsg)
		require.True(t, ok)
		assert.Equal(t, 1, om.folder.Len())
		assert.Equal(t, 1, om.set.Len())
		assert.NoError(t, om.notice)
	})

	t.Run("corrupt spreadsheet degrades to a notice", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "a.jpg"), []byte("x"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, config.DataFileName), []byte("not a spreadsheet"), 0o644))

		msg := openFolderCmd(dir)()
		om, ok := msg.(folderOpenedMsg)
		require.True(t, ok, "a broken artifact must not block the folder")
		assert.True(t, errors.Is(om.notice, store.ErrCorruptData))
		assert.Equal(t, 1, om.set.Len())
	})
}

func TestBrowseEnterStartsOpening(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.jpg"), []byte("x"), 0o644))

	m := NewBrowseModel()
	m.pathInput.SetValue(dir)

	_, cmd := m.Update(key(tea.KeyEnter))
	require.NotNil(t, cmd)
	assert.True(t, m.opening)

	// A second Enter while a folder is opening is ignored.
	_, cmd = m.Update(key(tea.KeyEnter))
	assert.Nil(t, cmd)

	m.Update(folderOpenedMsg{})
	assert.False(t, m.opening)
}

func TestBrowseEmptyPathIgnored(t *testing.T) {
	m := NewBrowseModel()
	m.pathInput.SetValue("   ")

	_, cmd := m.Update(key(tea.KeyEnter))

	assert.Nil(t, cmd)
	assert.False(t, m.opening)
}

func TestBrowseErrorShownAndCleared(t *testing.T) {
	m := NewBrowseModel()
	m.SetSize(100, 30)

	m.Update(folderErrMsg{err: folder.ErrEmptyFolder})
	assert.False(t, m.opening)
	assert.Contains(t, m.View(), "no supported images")

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.jpg"), []byte("x"), 0o644))
	m.pathInput.SetValue(dir)
	m.Update(key(tea.KeyEnter))
	assert.NoError(t, m.err, "a new attempt clears the previous failure")
}

func TestBrowseDirSelector(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(base, "cards"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(base, "archive"), 0o755))

	m := NewBrowseModel()
	m.SetSize(100, 30)
	m.pathInput.SetValue(base)

	m.Update(key(tea.KeyCtrlF))
	require.Equal(t, BrowseDirSelectState, m.state)
	require.Equal(t, []string{
		filepath.Dir(base),
		filepath.Join(base, "archive"),
		filepath.Join(base, "cards"),
	}, m.dirs)

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	m.Update(key(tea.KeyEnter))

	assert.Equal(t, BrowseInputState, m.state)
	assert.Equal(t, filepath.Join(base, "archive"), m.pathInput.Value())
}
