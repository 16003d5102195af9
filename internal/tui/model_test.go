package tui

import (
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/discoveraniket/ration-card-processor/internal/folder"
	"github.com/discoveraniket/ration-card-processor/internal/ocr"
	"github.com/discoveraniket/ration-card-processor/internal/store"
)

func openTestFolder(t *testing.T, names ...string) (*folder.Folder, *store.RecordSet) {
	t.Helper()
	dir := t.TempDir()
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte("x"), 0o644))
	}
	fol, err := folder.Open(dir)
	require.NoError(t, err)
	set, notice := store.LoadOrCreate(dir, fol.Names())
	require.NoError(t, notice)
	return fol, set
}

func newTestRoot(t *testing.T) tea.Model {
	t.Helper()
	var tm tea.Model = NewModel(testConfig(), stubEngine{}, testLogger(), true)
	tm, _ = tm.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return tm
}

func TestFolderOpenSwitchesToEntry(t *testing.T) {
	tm := newTestRoot(t)
	fol, set := openTestFolder(t, "a.jpg")

	tm, cmd := tm.Update(folderOpenedMsg{folder: fol, set: set})

	root := tm.(Model)
	assert.Equal(t, EntryScreen, root.currentScreen)
	require.NotNil(t, cmd, "entering the folder queues the first image load")
	assert.Equal(t, "a.jpg", root.entryModel.fol.Current())
	assert.False(t, root.browseModel.opening)
}

func TestEscReturnsToBrowseWhenClean(t *testing.T) {
	tm := newTestRoot(t)
	fol, set := openTestFolder(t, "a.jpg")
	tm, _ = tm.Update(folderOpenedMsg{folder: fol, set: set})

	tm, _ = tm.Update(key(tea.KeyEsc))

	root := tm.(Model)
	assert.Equal(t, BrowseScreen, root.currentScreen)
	assert.NotNil(t, root.entryModel.fol, "entry keeps its state for late messages")
}

func TestOCRResultReachesEntryFromBrowse(t *testing.T) {
	tm := newTestRoot(t)
	fol, set := openTestFolder(t, "a.jpg")
	tm, _ = tm.Update(folderOpenedMsg{folder: fol, set: set})
	tm, _ = tm.Update(key(tea.KeyEsc))

	tm, _ = tm.Update(ocrResultMsg{
		filename: "a.jpg",
		res:      ocr.Result{Fields: map[string]string{ocr.FieldCardHolder: "ANIMA BAURI"}},
	})

	root := tm.(Model)
	assert.Equal(t, BrowseScreen, root.currentScreen)
	rec, ok := set.Get("a.jpg")
	require.True(t, ok)
	assert.Equal(t, "ANIMA BAURI", rec.CardHolder)
	assert.Equal(t, store.OCRDone, rec.OCRStatus)
}

func TestQuitNeedsConfirmationWhenDirty(t *testing.T) {
	tm := newTestRoot(t)
	fol, set := openTestFolder(t, "a.jpg")
	tm, _ = tm.Update(folderOpenedMsg{folder: fol, set: set})
	tm, _ = tm.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'Z'}})

	tm, cmd := tm.Update(key(tea.KeyCtrlC))
	root := tm.(Model)
	assert.False(t, root.quitting, "first Ctrl+C with unsaved changes is refused")
	assert.Nil(t, cmd)

	tm, cmd = tm.Update(key(tea.KeyCtrlC))
	root = tm.(Model)
	assert.True(t, root.quitting)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Contains(t, root.View(), "👋")
}

func TestQuitImmediateWhenClean(t *testing.T) {
	tm := newTestRoot(t)

	tm, cmd := tm.Update(key(tea.KeyCtrlC))

	root := tm.(Model)
	assert.True(t, root.quitting)
	require.NotNil(t, cmd)
}
