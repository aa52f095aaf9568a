package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/mirasim/internal/config"
	"github.com/san-kum/mirasim/internal/explore"
	"github.com/san-kum/mirasim/internal/export"
	"github.com/san-kum/mirasim/internal/session"
	"github.com/san-kum/mirasim/internal/viz"
)

const (
	defaultCols   = 78
	defaultRows   = 22
	minCols       = 20
	minRows       = 8
	chromeRows    = 9
	canvasPadding = 2

	skipStep      = 1000
	iterationStep = 5000
)

// Options configures the explorer shell.
type Options struct {
	Theme            string
	ExportPath       string
	SnapshotPath     string
	SnapshotViewport viz.Viewport
	SnapshotStyle    viz.Style
}

func DefaultOptions() Options {
	return Options{
		Theme:            ThemeInk.Name,
		ExportPath:       config.DefaultExportFile,
		SnapshotPath:     config.DefaultOutput,
		SnapshotViewport: viz.DefaultViewport(),
		SnapshotStyle:    viz.DefaultStyle(),
	}
}

type mode int

const (
	modeView mode = iota
	modeEdit
	modeHelp
)

var fieldNames = [3]string{"alpha", "sigma", "mu"}

// Model is the bubbletea model of the terminal explorer. Every key press
// generates and draws to completion inside Update.
type Model struct {
	ex     *explore.Explorer
	opts   Options
	theme  Theme
	st     styles
	canvas *viz.Canvas

	frame    explore.Frame
	hasFrame bool
	status   string
	err      error

	mode   mode
	fields [3]string
	field  int
	axes   bool

	width  int
	height int
}

// New builds the model and draws the explorer's current state.
func New(ex *explore.Explorer, opts Options) Model {
	theme := GetTheme(opts.Theme)
	m := Model{
		ex:     ex,
		opts:   opts,
		theme:  theme,
		st:     newStyles(theme),
		canvas: viz.NewCanvas(defaultCols, defaultRows),
		width:  defaultCols + 2,
		height: defaultRows + chromeRows,
	}
	ex.Resize(m.canvas.Viewport(canvasPadding))
	return m.show(ex.State())
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m.resize(), nil
	}
	return m, nil
}

func (m Model) resize() Model {
	cols := max(m.width-2, minCols)
	rows := max(m.height-chromeRows, minRows)
	if cols == m.canvas.Width && rows == m.canvas.Height {
		return m
	}
	// the old canvas stays on screen until the new size renders
	canvas := viz.NewCanvas(cols, rows)
	f, err := m.ex.Show(context.Background(), canvas, m.ex.WithViewport(canvas.Viewport(canvasPadding)))
	if err != nil {
		return m.fail(err)
	}
	m.canvas = canvas
	return m.adopt(f, nil)
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch m.mode {
	case modeEdit:
		return m.editKey(msg), nil
	case modeHelp:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		m.mode = modeView
		return m, nil
	}
	return m.viewKey(msg)
}

func (m Model) viewKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	ctx := context.Background()

	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "g":
		return m.rate(session.Good), nil
	case "b":
		return m.rate(session.Bad), nil
	case "r", " ":
		f, err := m.ex.ShowRandom(ctx, m.canvas, explore.DefaultRandomAttempts)
		return m.adopt(f, err), nil
	case "n", "right":
		return m.show(m.ex.StepPreset(1)), nil
	case "p", "left":
		return m.show(m.ex.StepPreset(-1)), nil
	case "c":
		st, err := m.ex.Preset("classic")
		if err != nil {
			return m.fail(err), nil
		}
		return m.show(st), nil
	case "v":
		return m.show(m.ex.ToggleVariant()), nil
	case "+", "=":
		return m.window(0, skipStep), nil
	case "-", "_":
		return m.window(0, -skipStep), nil
	case "]":
		return m.window(iterationStep, 0), nil
	case "[":
		return m.window(-iterationStep, 0), nil
	case "m":
		return m.startEdit(), nil
	case "e":
		return m.export(), nil
	case "s":
		return m.snapshot(), nil
	case "a":
		m.axes = !m.axes
		return m.show(m.ex.State()), nil
	case "t":
		m.theme = nextTheme(m.theme)
		m.st = newStyles(m.theme)
		m.status = "theme " + m.theme.Name
	case "?", "h":
		m.mode = modeHelp
	}
	return m, nil
}

func (m Model) editKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "esc":
		m.mode = modeView
		m.err = nil
	case "tab", "down":
		m.field = (m.field + 1) % len(m.fields)
	case "shift+tab", "up":
		m.field = (m.field + len(m.fields) - 1) % len(m.fields)
	case "backspace":
		if f := m.fields[m.field]; len(f) > 0 {
			m.fields[m.field] = f[:len(f)-1]
		}
	case "enter":
		st, err := m.ex.Manual(m.fields[0], m.fields[1], m.fields[2])
		if err != nil {
			return m.fail(err)
		}
		m = m.show(st)
		if m.err == nil {
			m.mode = modeView
		}
	default:
		s := msg.String()
		if len(s) == 1 && strings.ContainsAny(s, "0123456789.-+eE") {
			m.fields[m.field] += s
		}
	}
	return m
}

func (m Model) startEdit() Model {
	p := m.ex.State().Params
	m.fields = [3]string{
		strconv.FormatFloat(p.Alpha, 'g', -1, 64),
		strconv.FormatFloat(p.Sigma, 'g', -1, 64),
		strconv.FormatFloat(p.Mu, 'g', -1, 64),
	}
	m.field = 0
	m.mode = modeEdit
	m.err = nil
	return m
}

// show draws st on the canvas. On failure the previous frame stays.
func (m Model) show(st explore.State) Model {
	f, err := m.ex.Show(context.Background(), m.canvas, st)
	return m.adopt(f, err)
}

func (m Model) adopt(f explore.Frame, err error) Model {
	if err != nil {
		return m.fail(err)
	}
	m.frame = f
	m.hasFrame = true
	m.err = nil
	m.status = ""
	if m.axes {
		m.drawAxes()
	}
	return m
}

func (m Model) fail(err error) Model {
	m.err = err
	m.status = ""
	return m
}

func (m Model) rate(r session.Rating) Model {
	rec, f, err := m.ex.Rate(context.Background(), m.canvas, r)
	if err != nil && rec.Timestamp == "" {
		return m.fail(err)
	}
	m = m.adopt(f, err)
	if err == nil {
		m.status = fmt.Sprintf("rated %s: %s", rec.Rating, rec.Params)
	}
	return m
}

func (m Model) window(dIter, dSkip int) Model {
	g := m.ex.State().Gen
	st, err := m.ex.WithWindow(g.Iterations+dIter, max(g.Skip+dSkip, 0))
	if err != nil {
		return m.fail(err)
	}
	return m.show(st)
}

func (m Model) export() Model {
	sess := m.ex.Session()
	if sess == nil {
		return m.fail(session.ErrNoCurrent)
	}
	if err := sess.SaveCSV(m.opts.ExportPath); err != nil {
		return m.fail(err)
	}
	m.err = nil
	m.status = fmt.Sprintf("exported %d ratings to %s", sess.Len(), m.opts.ExportPath)
	return m
}

// snapshot renders the current state at full resolution to a PNG file.
func (m Model) snapshot() Model {
	st := m.ex.State()
	st.Viewport = m.opts.SnapshotViewport
	st.Style = m.opts.SnapshotStyle

	s := export.NewPNGSurfaceFor(st.Viewport)
	if _, err := explore.Visualize(context.Background(), s, st); err != nil {
		return m.fail(err)
	}
	if err := s.Save(m.opts.SnapshotPath); err != nil {
		return m.fail(err)
	}
	m.err = nil
	m.status = "saved " + m.opts.SnapshotPath
	return m
}

// drawAxes overlays the data-space x and y axes where they are in view.
func (m Model) drawAxes() {
	t := m.frame.Transform
	w, h := int(t.Viewport.Width), int(t.Viewport.Height)
	if x := int(t.X(0)); x >= 0 && x < w {
		m.canvas.DrawLine(x, 0, x, h-1)
	}
	if y := int(t.Y(0)); y >= 0 && y < h {
		m.canvas.DrawLine(0, y, w-1, y)
	}
}

func (m Model) View() string {
	if m.mode == modeHelp {
		return m.viewHelp()
	}

	var b strings.Builder
	st := m.ex.State()

	b.WriteString(" " + GradientText("gumowski-mira", m.theme.Primary, m.theme.Accent))
	b.WriteString("  " + m.st.text.Render(st.String()) + "\n")

	for _, row := range m.canvas.Grid {
		b.WriteString(" " + m.st.plot.Render(string(row)) + "\n")
	}

	b.WriteString(m.viewMetrics())
	b.WriteString(m.viewStatus())

	if m.mode == modeEdit {
		b.WriteString(m.viewEdit())
	}
	b.WriteString(m.st.keyHint.Render(" g good  b bad  r reroll  n/p preset  v variant  m edit  e export  s save  ? help  q quit") + "\n")
	return b.String()
}

func (m Model) viewMetrics() string {
	if !m.hasFrame {
		return "\n"
	}
	cov := m.frame.Metrics["coverage"]
	ratings := 0
	if sess := m.ex.Session(); sess != nil {
		ratings = sess.Len()
	}
	return fmt.Sprintf(" %s %s %s  %s %s  %s %s  %s %s\n",
		m.st.label.Render("coverage"), ProgressBar(cov, 16, m.st), m.st.value.Render(fmt.Sprintf("%.1f%%", cov*100)),
		m.st.label.Render("radius"), m.st.value.Render(fmt.Sprintf("%.3g", m.frame.Metrics["radius"])),
		m.st.label.Render("points"), m.st.value.Render(strconv.Itoa(len(m.frame.Points))),
		m.st.label.Render("ratings"), m.st.value.Render(strconv.Itoa(ratings)),
	)
}

func (m Model) viewStatus() string {
	switch {
	case m.err != nil:
		return " " + m.st.bad.Render("error: "+m.err.Error()) + "\n"
	case m.status != "":
		return " " + m.st.good.Render(m.status) + "\n"
	}
	return "\n"
}

func (m Model) viewEdit() string {
	var b strings.Builder
	for i, name := range fieldNames {
		line := fmt.Sprintf("%-6s %s", name, m.fields[i])
		if i == m.field {
			b.WriteString(m.st.accent.Render("▸ "+line+"▋") + "\n")
		} else {
			b.WriteString(m.st.muted.Render("  "+line) + "\n")
		}
	}
	b.WriteString(m.st.keyHint.Render("tab next  enter apply  esc cancel"))
	return m.st.panel.Render(b.String()) + "\n"
}

var helpKeys = [][2]string{
	{"g / b", "rate the parameters on screen good or bad, then reroll"},
	{"r, space", "random parameters"},
	{"n / p", "next or previous preset"},
	{"c", "classic preset"},
	{"v", "toggle simple/standard variant"},
	{"+ / -", fmt.Sprintf("skip %d more or fewer points", skipStep)},
	{"] / [", fmt.Sprintf("%d more or fewer iterations", iterationStep)},
	{"m", "enter alpha, sigma and mu"},
	{"e", "export ratings as CSV"},
	{"s", "save a PNG of the current state"},
	{"a", "toggle axes"},
	{"t", "next theme"},
	{"q", "quit"},
}

func (m Model) viewHelp() string {
	var b strings.Builder
	b.WriteString(m.st.title.Render("keys") + "\n\n")
	for _, k := range helpKeys {
		b.WriteString(m.st.accent.Render(fmt.Sprintf("%-10s", k[0])) + m.st.text.Render(k[1]) + "\n")
	}
	b.WriteString("\n" + m.st.keyHint.Render("any key to return"))
	return m.st.panel.Padding(1, 2).Render(b.String()) + "\n"
}

// Run starts the explorer on the alternate screen and blocks until it quits.
func Run(ex *explore.Explorer, opts Options) error {
	p := tea.NewProgram(New(ex, opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
