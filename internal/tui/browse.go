package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"

	"github.com/discoveraniket/ration-card-processor/internal/folder"
	"github.com/discoveraniket/ration-card-processor/internal/store"
)

type BrowseModel struct {
	state       BrowseState
	pathInput   textinput.Model
	dirs        []string
	selectedDir int
	opening     bool
	err         error
	width       int
	height      int
}

type BrowseState int

const (
	BrowseInputState BrowseState = iota
	BrowseDirSelectState
)

type folderOpenedMsg struct {
	folder *folder.Folder
	set    *store.RecordSet
	notice error
}

type folderErrMsg struct {
	err error
}

func NewBrowseModel() *BrowseModel {
	pathInput := textinput.New()
	pathInput.Placeholder = "path/to/card/images"
	if cwd, err := os.Getwd(); err == nil {
		pathInput.SetValue(cwd)
	}
	pathInput.Focus()

	return &BrowseModel{
		state:     BrowseInputState,
		pathInput: pathInput,
	}
}

func (m *BrowseModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *BrowseModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch m.state {
		case BrowseInputState:
			return m.updateInputState(msg)
		case BrowseDirSelectState:
			return m.updateDirSelectState(msg)
		}

	case folderOpenedMsg:
		m.opening = false
		m.err = nil
		return m, nil

	case folderErrMsg:
		m.opening = false
		m.err = msg.err
		return m, nil
	}

	return m, cmd
}

func (m *BrowseModel) updateInputState(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg.String() {
	case "ctrl+f":
		return m.browseDirs()
	case "enter":
		path := strings.TrimSpace(m.pathInput.Value())
		if path != "" && !m.opening {
			m.opening = true
			m.err = nil
			return m, openFolderCmd(path)
		}
		return m, nil
	}

	m.pathInput, cmd = m.pathInput.Update(msg)
	return m, cmd
}

func (m *BrowseModel) updateDirSelectState(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.selectedDir > 0 {
			m.selectedDir--
		}
	case "down", "j":
		if m.selectedDir < len(m.dirs)-1 {
			m.selectedDir++
		}
	case "enter":
		if len(m.dirs) > 0 {
			m.pathInput.SetValue(m.dirs[m.selectedDir])
			m.state = BrowseInputState
		}
	case "esc":
		m.state = BrowseInputState
	}
	return m, nil
}

// browseDirs lists the directories under the typed path, or under the
// working directory when the field is empty, so the operator can pick
// without leaving the TUI.
func (m *BrowseModel) browseDirs() (tea.Model, tea.Cmd) {
	base := strings.TrimSpace(m.pathInput.Value())
	if base == "" {
		base, _ = os.Getwd()
	}

	entries, err := os.ReadDir(base)
	if err != nil {
		m.err = err
		return m, nil
	}

	dirs := []string{filepath.Dir(base)}
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, filepath.Join(base, e.Name()))
		}
	}

	m.dirs = dirs
	m.selectedDir = 0
	m.state = BrowseDirSelectState
	return m, nil
}

func openFolderCmd(path string) tea.Cmd {
	return func() tea.Msg {
		fol, err := folder.Open(path)
		if err != nil {
			return folderErrMsg{err: err}
		}
		set, notice := store.LoadOrCreate(path, fol.Names())
		return folderOpenedMsg{folder: fol, set: set, notice: notice}
	}
}

func (m *BrowseModel) View() string {
	if m.state == BrowseDirSelectState {
		return m.renderDirSelector()
	}
	return m.renderInputForm()
}

func (m *BrowseModel) renderInputForm() string {
	adaptiveTitleStyle, adaptiveFormStyle, adaptiveHelpStyle := GetAdaptiveStyles(m.width, m.height)

	title := adaptiveTitleStyle.Render("📇 Ration Card Data Entry")

	form := adaptiveFormStyle.Render(
		labelStyle.Render("Image Folder:") + "\n" + m.pathInput.View(),
	)

	var parts []string
	parts = append(parts, title, form)
	if m.opening {
		parts = append(parts, warningStyle.Render("Opening folder..."))
	}
	if m.err != nil {
		parts = append(parts, errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}
	parts = append(parts, adaptiveHelpStyle.Render("Enter: Open folder • Ctrl+F: Browse directories • Ctrl+C: Quit"))

	content := lipgloss.JoinVertical(lipgloss.Left, parts...)

	if m.width > 0 && m.height > 0 {
		content = lipgloss.Place(
			m.width, m.height,
			lipgloss.Center, lipgloss.Top,
			content,
		)
	}

	return content
}

func (m *BrowseModel) renderDirSelector() string {
	title := titleStyle.Render("📁 Select Image Folder")

	if len(m.dirs) == 0 {
		content := warningStyle.Render("No directories found here")
		help := helpStyle.Render("Esc: Back to form")
		return lipgloss.JoinVertical(lipgloss.Left, title, content, help)
	}

	var dirList string
	for i, dir := range m.dirs {
		cursor := " "
		style := menuItemStyle
		if i == m.selectedDir {
			cursor = ">"
			style = selectedMenuItemStyle
		}
		dirList += fmt.Sprintf("%s %s\n", cursor, style.Render(dir))
	}

	help := helpStyle.Render("↑/↓: Navigate • Enter: Select • Esc: Cancel")

	return lipgloss.JoinVertical(lipgloss.Left, title, dirList, help)
}
