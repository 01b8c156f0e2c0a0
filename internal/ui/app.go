package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/yildizm/LogDetect/internal/detect"
	"github.com/yildizm/LogDetect/internal/emoji"
)

// OpenFunc opens a path for submission, see detect.OpenUpload
type OpenFunc func(path string) (*detect.Upload, func() error, error)

// rows used by everything above and below the results viewport
const chromeHeight = 9

const helpText = "enter: enviar | ctrl+l: limpiar | esc: cancelar | pgup/pgdn: desplazar | ctrl+c: salir"

// Model is the detection screen: a path input, a loading indicator, the
// alert region and a scrollable results region
type Model struct {
	ctrl   Submitter
	open   OpenFunc
	styles *Styles

	input    textinput.Model
	spinner  spinner.Model
	viewport viewport.Model

	state    detect.State
	openErr  string
	lastFile string
	initial  string

	width    int
	height   int
	ready    bool
	quitting bool
}

// NewModel creates the detection model. A non-empty initialPath is
// submitted as soon as the program starts.
func NewModel(ctrl Submitter, open OpenFunc, styles *Styles, initialPath string) *Model {
	if open == nil {
		open = detect.OpenUpload
	}
	if styles == nil {
		styles = GetStyles()
	}

	input := textinput.New()
	input.Placeholder = "ruta/al/archivo.log"
	input.Prompt = emoji.GetEmoji("file") + " "
	input.CharLimit = 4096
	input.SetValue(initialPath)
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	return &Model{
		ctrl:     ctrl,
		open:     open,
		styles:   styles,
		input:    input,
		spinner:  sp,
		viewport: viewport.New(80, 20),
		initial:  initialPath,
	}
}

// Init starts the cursor, the spinner and the initial submission
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.spinner.Tick}
	if strings.TrimSpace(m.initial) != "" {
		cmds = append(cmds, m.submit(m.initial))
	}
	return tea.Batch(cmds...)
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = maxInt(20, msg.Width-6)
		m.viewport.Width = maxInt(20, msg.Width-4)
		m.viewport.Height = maxInt(5, msg.Height-chromeHeight)
		m.ready = true
		m.refreshResults()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case stateMsg:
		m.state = msg.state
		m.openErr = ""
		m.refreshResults()
		return m, nil

	case openErrorMsg:
		m.openErr = msg.err.Error()
		return m, nil

	case submitDoneMsg:
		m.lastFile = msg.file
		return m, nil

	case clearedMsg:
		m.openErr = ""
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Batch(cancelCmd(m.ctrl), tea.Quit)

	case "enter":
		// the send action is unavailable while a submission runs
		if m.state.Loading {
			return m, nil
		}
		return m, m.submit(m.input.Value())

	case "ctrl+l":
		return m, clearCmd(m.ctrl)

	case "esc":
		if m.state.Loading {
			return m, cancelCmd(m.ctrl)
		}
		return m, nil

	case "pgup", "pgdown", "ctrl+u", "ctrl+d":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) submit(path string) tea.Cmd {
	m.openErr = ""
	return submitCmd(m.ctrl, m.open, strings.TrimSpace(path))
}

// refreshResults re-renders the results region from the current state
func (m *Model) refreshResults() {
	m.viewport.SetContent(renderResults(m.state.View, m.styles, m.viewport.Width))
	m.viewport.GotoTop()
}

// View renders the model
func (m *Model) View() string {
	if m.quitting {
		return "Hasta luego " + emoji.GetEmoji("door") + "\n"
	}

	sections := []string{
		m.styles.Title.Render(emoji.GetEmoji("upload") + " LogDetect"),
		m.input.View(),
		m.statusLine(),
	}
	if alert := m.alertText(); alert != "" {
		sections = append(sections, m.styles.Alert.Render(emoji.GetEmoji("error")+" "+alert))
	}
	if m.state.View != nil {
		sections = append(sections, m.styles.Results.Render(m.viewport.View()))
	}
	sections = append(sections, m.styles.Muted.Render(helpText))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) statusLine() string {
	switch {
	case m.state.Loading:
		return m.spinner.View() + " " + m.styles.Spinner.Render("Procesando archivo...")
	case m.lastFile != "" && m.state.View != nil:
		return m.styles.Muted.Render(fmt.Sprintf("%s %s", emoji.GetEmoji("success"), m.lastFile))
	default:
		return ""
	}
}

// alertText prefers a local open failure over the controller alert
func (m *Model) alertText() string {
	if m.openErr != "" {
		return m.openErr
	}
	if m.state.ErrorVisible {
		return m.state.ErrorText
	}
	return ""
}

// State returns the last state received from the controller
func (m *Model) State() detect.State {
	return m.state
}

func renderResults(view *detect.View, styles *Styles, width int) string {
	if view == nil {
		return ""
	}
	var b strings.Builder

	b.WriteString(styles.Label.Render(emoji.GetEmoji("summary")+" Resumen") + "\n")
	b.WriteString(styles.Summary.Width(maxInt(20, width-2)).Render(view.Summary) + "\n\n")

	if len(view.Tally) > 0 {
		b.WriteString(emoji.GetEmoji("dominant") + " Actividad dominante: " + styles.Label.Render(view.DominantText()) + "\n")
		badges := make([]string, 0, len(view.Tally))
		for _, badge := range view.Badges() {
			badges = append(badges, styles.Badge.Render(badge))
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, badges...) + "\n\n")
	}

	b.WriteString(styles.Label.Render(emoji.GetEmoji("raw")+" Respuesta") + "\n")
	b.WriteString(view.Raw)
	return b.String()
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
