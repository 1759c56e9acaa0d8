package tui

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/monodsim/internal/chart"
	"github.com/san-kum/monodsim/internal/config"
	"github.com/san-kum/monodsim/internal/dynamo"
	"github.com/san-kum/monodsim/internal/experiment"
	"github.com/san-kum/monodsim/internal/metrics"
)

var (
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	green   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	red     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
)

const description = "Simulación del crecimiento de biomasa (X) a partir del consumo de sustrato (S)\n" +
	"según la cinética de Monod: μ = μmax·S/(Ks+S). Ajuste los parámetros para volver a simular."

// RunFunc turns a config into a trajectory. Tests swap it out.
type RunFunc func(ctx context.Context, cfg *config.Config) (*dynamo.Trajectory, error)

type Options struct {
	// ImageDir receives charts saved with the s key.
	ImageDir string
	Run      RunFunc
}

type model struct {
	cfg      *config.Config
	controls []config.Control
	cursor   int

	editing bool
	editBuf string

	run    RunFunc
	traj   *dynamo.Trajectory
	err    error
	status string
	runs   int

	imageDir string
	width    int
	height   int
}

// NewApp starts from cfg with every control clamped to its bounds and runs
// the first simulation.
func NewApp(cfg *config.Config, opts Options) *model {
	if cfg == nil {
		cfg = config.ControlDefaults()
	}
	cfg = cfg.Clone()

	controls := config.Controls()
	for _, c := range controls {
		_ = c.Set(cfg, c.Value(cfg))
	}

	run := opts.Run
	if run == nil {
		run = experiment.Run
	}
	dir := opts.ImageDir
	if dir == "" {
		dir = "."
	}

	m := &model{
		cfg:      cfg,
		controls: controls,
		run:      run,
		imageDir: dir,
		width:    80,
		height:   24,
	}
	m.simulate()
	return m
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	if m.editing {
		return m.editKey(msg)
	}

	c := m.controls[m.cursor]
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.controls)-1 {
			m.cursor++
		}
	case "left", "h":
		m.nudge(c, -1)
	case "right", "l":
		m.nudge(c, 1)
	case "shift+left", "H":
		m.nudge(c, -10)
	case "shift+right", "L":
		m.nudge(c, 10)
	case "enter", " ":
		m.editing = true
		m.editBuf = c.Format(c.Value(m.cfg))
	case "r":
		m.cfg = config.ControlDefaults()
		m.status = "valores restablecidos"
		m.simulate()
	case "s":
		m.saveChart()
	}
	return m, nil
}

func (m model) editKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		c := m.controls[m.cursor]
		val, err := strconv.ParseFloat(strings.TrimSpace(m.editBuf), 64)
		m.editing = false
		m.editBuf = ""
		if err != nil || math.IsNaN(val) {
			m.status = "valor no válido"
			return m, nil
		}
		m.set(c, val)
	case "esc":
		m.editing = false
		m.editBuf = ""
	case "backspace":
		if len(m.editBuf) > 0 {
			m.editBuf = m.editBuf[:len(m.editBuf)-1]
		}
	case "ctrl+c":
		return m, tea.Quit
	default:
		if len(msg.String()) == 1 {
			ch := msg.String()[0]
			if (ch >= '0' && ch <= '9') || ch == '.' {
				m.editBuf += string(ch)
			}
		}
	}
	return m, nil
}

func (m *model) nudge(c config.Control, steps int) {
	m.set(c, c.Nudge(c.Value(m.cfg), steps))
}

// set stores a clamped value and re-runs when it changed.
func (m *model) set(c config.Control, v float64) {
	before := c.Value(m.cfg)
	next := m.cfg.Clone()
	if err := c.Set(next, v); err != nil {
		m.err = err
		return
	}
	m.status = ""
	if c.Value(next) == before {
		return
	}
	m.cfg = next
	m.simulate()
}

func (m *model) simulate() {
	m.runs++
	traj, err := m.run(context.Background(), m.cfg)
	if err != nil {
		m.traj = nil
		m.err = err
		return
	}
	m.traj = traj
	m.err = nil
}

func (m *model) saveChart() {
	if m.traj == nil {
		m.status = "no hay gráfico para guardar"
		return
	}
	name := fmt.Sprintf("monod_%s.png", time.Now().Format("20060102_150405"))
	path := filepath.Join(m.imageDir, name)
	if err := chart.Save(path, m.traj, chart.DefaultLabels()); err != nil {
		m.status = "error: " + err.Error()
		return
	}
	m.status = "gráfico guardado en " + path
}

func (m model) View() string {
	var b strings.Builder
	labels := chart.DefaultLabels()

	b.WriteString("\n")
	b.WriteString("   " + cyan.Render(labels.Title) + "\n")
	b.WriteString(dimmer.Render("   "+strings.Repeat("─", 60)) + "\n")
	for _, line := range strings.Split(description, "\n") {
		b.WriteString("   " + dim.Render(line) + "\n")
	}
	b.WriteString("\n")

	for i, c := range m.controls {
		val := fmt.Sprintf("%10s", c.Format(c.Value(m.cfg)))
		if m.editing && i == m.cursor {
			val = fmt.Sprintf("%10s", m.editBuf+"▋")
		}
		bounds := dimmer.Render(fmt.Sprintf("  [%s, %s", c.Format(c.Min), formatMax(c)))
		if i == m.cursor {
			b.WriteString("   " + cyan.Render("▸ ") + white.Render(fmt.Sprintf("%-26s", c.Label)) + magenta.Render(val) + bounds + "\n")
		} else {
			b.WriteString("     " + dim.Render(fmt.Sprintf("%-26s", c.Label)) + dim.Render(val) + bounds + "\n")
		}
	}
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString("   " + red.Render("error: "+m.err.Error()) + "\n")
	} else if m.traj != nil {
		graph, err := chart.Terminal(m.traj, labels, m.chartWidth(), m.chartHeight())
		if err != nil {
			b.WriteString("   " + red.Render("error: "+err.Error()) + "\n")
		} else {
			for _, line := range strings.Split(graph, "\n") {
				b.WriteString("   " + line + "\n")
			}
		}
		b.WriteString("\n   " + m.metricsLine() + "\n")
	}

	if m.status != "" {
		b.WriteString("   " + green.Render(m.status) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(dim.Render("   ↑↓ select  ←→ adjust  shift ×10  enter edit  r reset  s save  q quit") + "\n")

	return b.String()
}

func (m model) metricsLine() string {
	mt := m.traj.Metrics
	parts := []string{
		dim.Render("X final ") + white.Render(fmt.Sprintf("%.3f", mt["final_biomass"])),
		dim.Render("meseta ") + white.Render(fmt.Sprintf("%.3f", mt["plateau"])),
		dim.Render("t90 ") + white.Render(formatTime(mt["time_to_90pct"])),
		dim.Render("S agotado ") + white.Render(formatTime(mt["depletion_time"])),
	}
	return strings.Join(parts, "   ")
}

func (m model) chartWidth() int {
	w := m.width - 16
	if w < 40 {
		w = 40
	}
	return w
}

func (m model) chartHeight() int {
	h := m.height - 24
	if h < 8 {
		h = 8
	}
	return h
}

func formatMax(c config.Control) string {
	if math.IsInf(c.Max, 1) {
		return "∞)"
	}
	return c.Format(c.Max) + "]"
}

func formatTime(v float64) string {
	if v == metrics.Never {
		return "-"
	}
	return fmt.Sprintf("%.1f h", v)
}

func RunInteractive(cfg *config.Config, opts Options) error {
	p := tea.NewProgram(NewApp(cfg, opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
