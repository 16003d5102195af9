package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"log/slog"

	"github.com/discoveraniket/ration-card-processor/internal/config"
	"github.com/discoveraniket/ration-card-processor/internal/ocr"
)

type Screen int

const (
	BrowseScreen Screen = iota
	EntryScreen
)

type Model struct {
	currentScreen Screen
	browseModel   *BrowseModel
	entryModel    *EntryModel
	quitting      bool
	width         int
	height        int
}

func NewModel(cfg *config.Config, engine ocr.Engine, logger *slog.Logger, dark bool) Model {
	return Model{
		currentScreen: BrowseScreen,
		browseModel:   NewBrowseModel(),
		entryModel:    NewEntryModel(cfg, engine, logger, dark),
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		// Pass window size to sub-models
		m.browseModel.SetSize(msg.Width, msg.Height)
		m.entryModel.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			if m.currentScreen == EntryScreen && !m.entryModel.ConfirmLeave() {
				return m, nil
			}
			m.quitting = true
			return m, tea.Quit
		case "esc":
			if m.currentScreen == EntryScreen {
				if m.entryModel.ConfirmLeave() {
					m.currentScreen = BrowseScreen
				}
				return m, nil
			}
		}

	case folderOpenedMsg:
		newBrowseModel, _ := m.browseModel.Update(msg)
		m.browseModel = newBrowseModel.(*BrowseModel)
		cmd := m.entryModel.SetFolder(msg.folder, msg.set, msg.notice)
		m.currentScreen = EntryScreen
		return m, cmd

	// Background results always land on the entry screen, even when the
	// operator escaped back to the folder list in the meantime.
	case imageLoadedMsg, ocrResultMsg, rotateSavedMsg:
		newEntryModel, cmd := m.entryModel.Update(msg)
		m.entryModel = newEntryModel.(*EntryModel)
		return m, cmd
	}

	switch m.currentScreen {
	case BrowseScreen:
		newBrowseModel, cmd := m.browseModel.Update(msg)
		m.browseModel = newBrowseModel.(*BrowseModel)
		return m, cmd
	case EntryScreen:
		newEntryModel, cmd := m.entryModel.Update(msg)
		m.entryModel = newEntryModel.(*EntryModel)
		return m, cmd
	}

	return m, cmd
}

func (m Model) View() string {
	if m.quitting {
		return "Thanks for using Ration Card Processor! 👋\n"
	}

	switch m.currentScreen {
	case BrowseScreen:
		return m.browseModel.View()
	case EntryScreen:
		return m.entryModel.View()
	}

	return ""
}
