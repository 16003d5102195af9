package tui

import (
	"context"
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"log/slog"

	"github.com/discoveraniket/ration-card-processor/internal/config"
	"github.com/discoveraniket/ration-card-processor/internal/folder"
	"github.com/discoveraniket/ration-card-processor/internal/imaging"
	"github.com/discoveraniket/ration-card-processor/internal/ocr"
	"github.com/discoveraniket/ration-card-processor/internal/status"
	"github.com/discoveraniket/ration-card-processor/internal/store"
)

const formPaneWidth = 44

// EntryModel is the data entry screen: the form on the left, the card
// image on the right, the status bar underneath. All record mutation
// happens here, on the update loop; the only background work is one
// image decode or one OCR call at a time, delivered back as messages.
type EntryModel struct {
	cfg    *config.Config
	engine ocr.Engine
	logger *slog.Logger
	accent lipgloss.Color

	fol *folder.Folder
	set *store.RecordSet

	fields  []string
	inputs  []textinput.Model
	focused int

	view     *imaging.View
	viewport string
	imgErr   error

	gate     ocr.Gate
	spin     spinner.Model
	working  bool
	escArmed bool

	bar *StatusBar

	width  int
	height int
}

type imageLoadedMsg struct {
	name string
	img  image.Image
	err  error
}

type ocrResultMsg struct {
	filename string
	res      ocr.Result
	err      error
}

type rotateSavedMsg struct {
	name string
	img  image.Image
	err  error
}

func NewEntryModel(cfg *config.Config, engine ocr.Engine, logger *slog.Logger, dark bool) *EntryModel {
	fields := store.EditableFields()
	inputs := make([]textinput.Model, len(fields))
	for i := range fields {
		in := textinput.New()
		in.Placeholder = store.Columns[i+1]
		in.Width = 32
		inputs[i] = in
	}
	inputs[0].Focus()

	return &EntryModel{
		cfg:    cfg,
		engine: engine,
		logger: logger,
		accent: themeAccent(dark),
		fields: fields,
		inputs: inputs,
		spin:   spinner.New(spinner.WithSpinner(spinner.Dot)),
		bar:    NewStatusBar(),
	}
}

func (m *EntryModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *EntryModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.renderViewport()
}

// SetFolder points the screen at a freshly opened folder. The returned
// command loads the first image.
func (m *EntryModel) SetFolder(fol *folder.Folder, set *store.RecordSet, notice error) tea.Cmd {
	m.fol = fol
	m.set = set
	m.view = nil
	m.viewport = ""
	m.imgErr = nil
	m.gate = ocr.Gate{}
	m.working = false
	m.syncForm()

	if notice != nil {
		m.logger.Warn("artifacts unreadable, starting fresh", "folder", fol.Dir(), "error", notice)
		m.bar.Report(status.Event{
			Kind:    status.KindError,
			Message: "Existing data could not be fully read, starting fresh",
			Err:     notice,
		})
	} else {
		m.bar.Report(status.Event{
			Kind:    status.KindLoading,
			Message: fmt.Sprintf("Loaded %d images from %s", fol.Len(), fol.Dir()),
		})
	}

	name := fol.Current()
	return loadImageCmd(name, fol.Path(name))
}

func (m *EntryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.updateKeys(msg)

	case imageLoadedMsg:
		if m.fol == nil || msg.name != m.fol.Current() {
			// The operator already moved on; drop the stale decode.
			return m, nil
		}
		if msg.err != nil {
			m.imgErr = msg.err
			m.view = nil
			m.viewport = ""
			m.bar.Report(status.Event{Kind: status.KindError, Message: "Cannot display " + msg.name, Err: msg.err})
			return m, nil
		}
		m.imgErr = nil
		m.view = imaging.NewView(msg.img)
		w, h := m.paneSize()
		m.view.Fit(w, 2*h)
		m.renderViewport()
		m.bar.Report(status.Event{
			Kind:    status.KindReady,
			Message: fmt.Sprintf("%s (%d of %d)", msg.name, m.fol.Index()+1, m.fol.Len()),
		})
		return m, nil

	case ocrResultMsg:
		return m.applyOCRResult(msg)

	case rotateSavedMsg:
		if msg.err != nil {
			m.bar.Report(status.Event{Kind: status.KindError, Message: "Rotate failed for " + msg.name, Err: msg.err})
			return m, nil
		}
		if m.fol != nil && msg.name == m.fol.Current() && m.view != nil {
			m.view.SetImage(msg.img)
			m.renderViewport()
		}
		m.bar.Report(status.Event{Kind: status.KindSaved, Message: "Rotated and saved " + msg.name})
		return m, nil

	case spinner.TickMsg:
		if !m.working {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	return m, nil
}

// ConfirmLeave reports whether the screen may be abandoned. With unsaved
// changes the first attempt is refused and the status bar explains; the
// next attempt goes through.
func (m *EntryModel) ConfirmLeave() bool {
	if m.set == nil || !m.set.Dirty() {
		return true
	}
	if m.escArmed {
		m.escArmed = false
		return true
	}
	m.escArmed = true
	m.bar.Report(status.Event{
		Kind:    status.KindError,
		Message: fmt.Sprintf("%d unsaved changes. Ctrl+S to save, press again to discard.", m.set.DirtyCount()),
	})
	return false
}

func (m *EntryModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.fol == nil || m.set == nil {
		return m, nil
	}
	m.escArmed = false

	switch msg.String() {
	case "tab":
		m.focusField((m.focused + 1) % len(m.inputs))
	case "shift+tab":
		m.focusField((m.focused - 1 + len(m.inputs)) % len(m.inputs))
	case "pgdown", "ctrl+n":
		return m.navigate(true)
	case "pgup", "ctrl+p":
		return m.navigate(false)
	case "ctrl+r":
		return m.startOCR()
	case "ctrl+s":
		m.saveAll()
	case "ctrl+u":
		return m.updateAndRename()
	case "ctrl+right":
		return m.rotate(true)
	case "ctrl+left":
		return m.rotate(false)
	case "ctrl+up":
		if m.view != nil {
			m.view.ZoomIn()
			m.renderViewport()
		}
	case "ctrl+down":
		if m.view != nil {
			m.view.ZoomOut()
			m.renderViewport()
		}
	case "ctrl+f":
		if m.view != nil {
			w, h := m.paneSize()
			m.view.Fit(w, 2*h)
			m.renderViewport()
		}
	case "alt+up":
		m.pan(0, -imaging.PanStep)
	case "alt+down":
		m.pan(0, imaging.PanStep)
	case "alt+left":
		m.pan(-imaging.PanStep, 0)
	case "alt+right":
		m.pan(imaging.PanStep, 0)
	default:
		var cmd tea.Cmd
		m.inputs[m.focused], cmd = m.inputs[m.focused].Update(msg)
		m.pushEdit()
		return m, cmd
	}

	return m, nil
}

func (m *EntryModel) pan(dx, dy float64) {
	if m.view == nil {
		return
	}
	m.view.Pan(dx, dy)
	m.renderViewport()
}

// pushEdit mirrors the focused input into the record after every
// keystroke, so navigation and save never have to flush the form.
func (m *EntryModel) pushEdit() {
	name := m.fol.Current()
	key := m.fields[m.focused]
	if err := m.set.ApplyEdit(name, key, m.inputs[m.focused].Value()); err != nil {
		m.logger.Warn("edit not applied", "file", name, "field", key, "error", err)
	}
}

func (m *EntryModel) navigate(forward bool) (tea.Model, tea.Cmd) {
	var name string
	var err error
	if forward {
		name, err = m.fol.Next()
	} else {
		name, err = m.fol.Previous()
	}
	if err != nil {
		msg := "Already at the first image."
		if forward {
			msg = "Already at the last image."
		}
		m.bar.Report(status.Event{Kind: status.KindReady, Message: msg})
		return m, nil
	}

	m.syncForm()
	m.view = nil
	m.viewport = ""
	m.imgErr = nil
	m.bar.Report(status.Event{Kind: status.KindLoading, Message: "Loading " + name})
	return m, loadImageCmd(name, m.fol.Path(name))
}

func (m *EntryModel) startOCR() (tea.Model, tea.Cmd) {
	name := m.fol.Current()
	if !m.gate.TryStart(name) {
		m.bar.Report(status.Event{
			Kind:    status.KindError,
			Message: fmt.Sprintf("OCR already running for %s, wait for it to finish", m.gate.Pending()),
		})
		return m, nil
	}

	m.working = true
	m.bar.Report(status.Event{
		Kind:    status.KindOCRStarted,
		Message: fmt.Sprintf("Running %s on %s...", m.engine.Name(), name),
	})
	return m, tea.Batch(m.recognizeCmd(name, m.fol.Path(name)), m.spin.Tick)
}

func (m *EntryModel) recognizeCmd(name, path string) tea.Cmd {
	cfg := m.cfg
	engine := m.engine
	return func() tea.Msg {
		img, err := imaging.Load(path)
		if err != nil {
			return ocrResultMsg{filename: name, err: fmt.Errorf("%w: %v", ocr.ErrUnrecognizedFormat, err)}
		}
		payload, err := imaging.EncodePNG(img, cfg.MaxImageBytes)
		if err != nil {
			return ocrResultMsg{filename: name, err: err}
		}

		ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
		defer cancel()
		res, err := engine.Recognize(ctx, ocr.Input{Filename: name, Format: "png", Image: payload})
		return ocrResultMsg{filename: name, res: res, err: err}
	}
}

// applyOCRResult lands a finished extraction on the record it was
// requested for, even when the operator has navigated elsewhere since.
func (m *EntryModel) applyOCRResult(msg ocrResultMsg) (tea.Model, tea.Cmd) {
	m.gate.Done()
	m.working = false
	if m.set == nil {
		return m, nil
	}

	if msg.err != nil {
		m.logger.Error("ocr failed", "file", msg.filename, "error", msg.err)
		if err := m.set.MarkOCRFailed(msg.filename); err != nil {
			m.logger.Warn("ocr result for unknown record", "file", msg.filename)
		}
		m.bar.Report(status.Event{
			Kind:    status.KindError,
			Message: "OCR failed for " + msg.filename,
			Err:     friendlyOCRError(msg.err),
		})
		return m, nil
	}

	if err := m.set.ApplyOCR(msg.filename, msg.res.Fields, msg.res.Boxes); err != nil {
		m.logger.Warn("ocr result dropped", "file", msg.filename, "error", err)
		m.bar.Report(status.Event{Kind: status.KindError, Message: "OCR result dropped", Err: err})
		return m, nil
	}
	if m.fol != nil && msg.filename == m.fol.Current() {
		m.syncForm()
	}
	m.bar.Report(status.Event{
		Kind:    status.KindOCRDone,
		Message: fmt.Sprintf("OCR complete for %s (%d fields)", msg.filename, len(msg.res.Fields)),
	})
	return m, nil
}

func (m *EntryModel) saveAll() {
	changed := m.set.DirtyCount()
	if err := m.set.Save(); err != nil {
		m.logger.Error("save failed", "folder", m.fol.Dir(), "error", err)
		m.bar.Report(status.Event{Kind: status.KindError, Message: "Save failed", Err: err})
		return
	}
	m.bar.Report(status.Event{
		Kind:    status.KindSaved,
		Message: fmt.Sprintf("Saved %s and %s (%d changed)", config.DataFileName, config.SidecarFileName, changed),
	})
}

// updateAndRename renames the image to its ration card ID and saves,
// the end-of-card workflow on one key.
func (m *EntryModel) updateAndRename() (tea.Model, tea.Cmd) {
	current := m.fol.Current()
	if m.gate.Busy() && m.gate.Pending() == current {
		m.bar.Report(status.Event{Kind: status.KindError, Message: "OCR is running for this image, wait before renaming"})
		return m, nil
	}

	id := strings.TrimSpace(m.inputs[0].Value())
	if id == "" {
		m.bar.Report(status.Event{Kind: status.KindError, Message: "Ration Card ID cannot be empty"})
		return m, nil
	}
	cleaned := cleanFilename(id)
	if cleaned == "" {
		m.bar.Report(status.Event{Kind: status.KindError, Message: "Ration Card ID has no characters usable in a filename"})
		return m, nil
	}

	newName := cleaned + filepath.Ext(current)
	if newName != current {
		if err := m.fol.Rename(current, newName); err != nil {
			m.bar.Report(status.Event{Kind: status.KindError, Message: "Rename failed", Err: err})
			return m, nil
		}
		if err := m.set.Rename(current, newName); err != nil {
			// Put the file back so disk and records stay aligned.
			if rerr := m.fol.Rename(newName, current); rerr != nil {
				m.logger.Error("rename rollback failed", "file", newName, "error", rerr)
			}
			m.bar.Report(status.Event{Kind: status.KindError, Message: "Rename failed", Err: err})
			return m, nil
		}
	}

	if err := m.set.Save(); err != nil {
		m.logger.Error("save failed", "folder", m.fol.Dir(), "error", err)
		m.bar.Report(status.Event{Kind: status.KindError, Message: "Save failed", Err: err})
		return m, nil
	}
	m.bar.Report(status.Event{Kind: status.KindSaved, Message: "Updated " + newName})
	return m, nil
}

func (m *EntryModel) rotate(clockwise bool) (tea.Model, tea.Cmd) {
	if m.view == nil {
		m.bar.Report(status.Event{Kind: status.KindError, Message: "No image to rotate"})
		return m, nil
	}
	name := m.fol.Current()
	path := m.fol.Path(name)
	base := m.view.Image()
	return m, func() tea.Msg {
		var rotated image.Image
		if clockwise {
			rotated = imaging.Rotate90(base)
		} else {
			rotated = imaging.Rotate270(base)
		}
		if err := imaging.Save(path, rotated); err != nil {
			return rotateSavedMsg{name: name, err: err}
		}
		return rotateSavedMsg{name: name, img: rotated}
	}
}

func (m *EntryModel) syncForm() {
	rec, ok := m.set.Get(m.fol.Current())
	if !ok {
		return
	}
	for i, key := range m.fields {
		v, _ := rec.Field(key)
		m.inputs[i].SetValue(v)
	}
	m.focusField(0)
}

func (m *EntryModel) focusField(i int) {
	m.focused = i
	for j := range m.inputs {
		if j == i {
			m.inputs[j].Focus()
		} else {
			m.inputs[j].Blur()
		}
	}
}

func (m *EntryModel) paneSize() (int, int) {
	w := m.width - formPaneWidth - 8
	if w < 16 {
		w = 16
	}
	h := m.height - 12
	if h < 8 {
		h = 8
	}
	return w, h
}

func (m *EntryModel) renderViewport() {
	if m.view == nil {
		m.viewport = ""
		return
	}
	w, h := m.paneSize()
	m.viewport = renderImage(m.view.Viewport(w, 2*h))
}

func (m *EntryModel) View() string {
	if m.fol == nil || m.set == nil {
		return ""
	}

	header := fmt.Sprintf("📇 %s (%d of %d)", m.fol.Current(), m.fol.Index()+1, m.fol.Len())
	if n := m.set.DirtyCount(); n > 0 {
		header += warningStyle.Render(fmt.Sprintf("  ● %d unsaved", n))
	}
	title := titleStyle.Width(m.width).Render(header)

	body := lipgloss.JoinHorizontal(lipgloss.Top, m.renderForm(), m.renderImagePane())

	help := helpStyle.Render("Tab: Fields • PgUp/PgDn: Cards • Ctrl+R: OCR • Ctrl+S: Save • Ctrl+U: Update+Rename • Ctrl+←/→: Rotate • Esc: Folders")

	return lipgloss.JoinVertical(lipgloss.Left, title, body, help, m.statusLine())
}

func (m *EntryModel) renderForm() string {
	rows := make([]string, 0, len(m.inputs)+1)
	for i := range m.inputs {
		label := store.Columns[i+1]
		rows = append(rows, labelStyle.Render(label+":")+"\n"+m.inputs[i].View())
	}

	if rec, ok := m.set.Get(m.fol.Current()); ok {
		meta := fmt.Sprintf("OCR: %s • Boxes: %d", rec.OCRStatus, len(rec.Boxes))
		rows = append(rows, helpStyle.Render(meta))
	}

	return formStyle.Width(formPaneWidth).Render(strings.Join(rows, "\n\n"))
}

func (m *EntryModel) renderImagePane() string {
	w, h := m.paneSize()
	var content string
	switch {
	case m.imgErr != nil:
		content = placeholderStyle.Width(w).Height(h).Render("⚠ cannot display image")
	case m.view == nil:
		content = placeholderStyle.Width(w).Height(h).Render("Loading image...")
	default:
		content = m.viewport
	}
	return imagePaneStyle.BorderForeground(m.accent).Render(content)
}

func (m *EntryModel) statusLine() string {
	line := m.bar.View(0)
	if m.working {
		line = m.spin.View() + " " + line
	}
	if m.width > 0 {
		return lipgloss.NewStyle().MaxWidth(m.width).Render(line)
	}
	return line
}

func loadImageCmd(name, path string) tea.Cmd {
	return func() tea.Msg {
		img, err := imaging.Load(path)
		return imageLoadedMsg{name: name, img: img, err: err}
	}
}

// cleanFilename strips the characters no common filesystem accepts.
func cleanFilename(s string) string {
	cleaned := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`\/:*?"<>|`, r) {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(cleaned)
}

// friendlyOCRError turns a classified extraction error into the short
// form the status bar shows.
func friendlyOCRError(err error) error {
	switch {
	case errors.Is(err, ocr.ErrAuth):
		return errors.New("authentication failed, check GEMINI_API_KEY")
	case errors.Is(err, ocr.ErrQuota):
		return errors.New("API quota exhausted, try again later")
	case errors.Is(err, ocr.ErrUnrecognizedFormat):
		return errors.New("image or response format not recognized")
	case errors.Is(err, ocr.ErrNetwork):
		return errors.New("network failure, check the connection")
	}
	return err
}
