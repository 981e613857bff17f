package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/impulse/internal/config"
	"github.com/san-kum/impulse/internal/metrics"
	"github.com/san-kum/impulse/internal/sim"
)

const (
	canvasWidth     = 48
	canvasHeight    = 12
	historyCapacity = 600
	maxIterations   = 64
)

type TickMsg time.Time

// Model steps a scene on every tick and shows per-constraint velocities,
// the residual history and the saturation of the last step.
type Model struct {
	cfg        *config.Config
	scene      *sim.Scene
	saturation *metrics.Saturation
	canvas     *Canvas
	residuals  []float64
	step       int
	t          float64
	running    bool
	err        error
	frameRate  int
}

// NewModel builds the scene described by cfg.
func NewModel(cfg *config.Config, frameRate int) (Model, error) {
	if frameRate <= 0 {
		frameRate = 30
	}
	m := Model{
		cfg:        cfg,
		saturation: metrics.NewSaturation(cfg.Dt),
		canvas:     NewCanvas(canvasWidth, canvasHeight),
		running:    true,
		frameRate:  frameRate,
	}
	if err := m.reset(); err != nil {
		return Model{}, err
	}
	return m, nil
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.frameRate), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ", "space":
			m.running = !m.running
		case "n":
			if !m.running {
				m.advance()
			}
		case "r":
			m.err = m.reset()
		case "+", "=":
			m.cfg.Iterations = min(maxIterations, m.cfg.Iterations*2)
			m.err = m.reset()
		case "-", "_":
			m.cfg.Iterations = max(1, m.cfg.Iterations/2)
			m.err = m.reset()
		}
	case TickMsg:
		if m.running && m.err == nil {
			m.advance()
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) reset() error {
	scene, err := sim.BuildScene(m.cfg)
	if err != nil {
		return err
	}
	m.scene = scene
	m.step = 0
	m.t = 0
	m.residuals = append(m.residuals[:0], scene.Residual())
	m.saturation.Reset()
	return nil
}

func (m *Model) advance() {
	if err := m.scene.Solver.Step(float32(m.cfg.Dt)); err != nil {
		m.err = err
		return
	}
	if m.cfg.IntegrateOrientation {
		if err := m.scene.Integrate(m.cfg.Dt); err != nil {
			m.err = err
			return
		}
	}
	m.step++
	m.t += m.cfg.Dt

	m.saturation.Reset()
	m.saturation.Observe(m.scene, m.step)

	m.residuals = append(m.residuals, m.scene.Residual())
	if len(m.residuals) > historyCapacity {
		m.residuals = m.residuals[1:]
	}
}

func (m *Model) draw() {
	m.canvas.Clear()
	values := make([]float64, 0, len(m.scene.Handles))
	for _, h := range m.scene.Handles {
		v, err := m.scene.RelativeVelocity(h)
		if err != nil {
			continue
		}
		values = append(values, v)
	}
	target := m.cfg.Scenario.TargetVelocity
	limit := 1.5 * max(target, m.cfg.Scenario.InitialSpin, 1)
	m.canvas.DrawBars(values, target, limit)
}

func (m Model) View() string {
	if m.scene == nil {
		return fmt.Sprintf("error: %v\n", m.err)
	}
	m.draw()

	status := StatusRunning.Render("RUNNING")
	if !m.running {
		status = StatusPaused.Render("PAUSED")
	}

	var s strings.Builder
	s.WriteString(Title.Render(strings.ToUpper(m.cfg.Scenario.Kind)) + "  " + status + "\n\n")
	if len(m.residuals) > 1 {
		s.WriteString(asciigraph.Plot(m.residuals, asciigraph.Height(5), asciigraph.Width(36), asciigraph.Caption("residual")))
		s.WriteString("\n\n")
	}
	row := func(label, value string) {
		s.WriteString(MetricLabel.Render(label) + MetricValue.Render(value) + "\n")
	}
	row("Step", fmt.Sprintf("%d", m.step))
	row("Time", fmt.Sprintf("%.2fs", m.t))
	row("Residual", fmt.Sprintf("%.3e", m.residuals[len(m.residuals)-1]))
	row("Constraints", fmt.Sprintf("%d", m.scene.Solver.Count()))
	row("Batches", fmt.Sprintf("%d", len(m.scene.Solver.Batches())))
	row("Iterations", fmt.Sprintf("%d", m.cfg.Iterations))
	s.WriteString(MetricLabel.Render("Saturation") + ProgressBar(m.saturation.Value(), 20) + "\n")
	if m.err != nil {
		s.WriteString(SparkLow.Render(m.err.Error()) + "\n")
	}
	s.WriteString(KeyHint.Render("\nSP:Pause N:Step R:Reset +/-:Iterations Q:Quit"))

	canvasView := Panel.Render(Subtle.Render("relative velocity") + "\n" + m.canvas.String())
	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, Panel.Render(s.String()))
}
