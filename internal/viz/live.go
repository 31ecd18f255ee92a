package viz

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"go.uber.org/zap"

	"github.com/san-kum/fieldsim/internal/config"
	"github.com/san-kum/fieldsim/internal/control"
	"github.com/san-kum/fieldsim/internal/dynamo"
	"github.com/san-kum/fieldsim/internal/experiment"
	"github.com/san-kum/fieldsim/internal/sim"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 600
	trailLength     = 120
	sparkWidth      = 30
	nudgeStep       = 10.0
	viewMargin      = 40.0

	// cell offset of the canvas inside the rendered frame, from canvasStyle
	padLeft, padTop = 2, 1
)

type TickMsg time.Time

// Model is the live view of one field: it steps the simulation on every
// tick and turns pointer motion over the canvas into impulses.
type Model struct {
	cfg     *config.Config
	presets []string
	preset  int

	sim     *sim.Simulation
	pointer *control.Manual
	view    Viewport
	canvas  *Canvas
	logger  *zap.Logger

	width, height int
	stepsPerTick  int
	running       bool
	tracking      bool
	showHelp      bool

	trail    []dynamo.Vec2
	speeds   []float64
	impulses []float64
	history  []sim.Snapshot
	playHead int
	last     sim.Snapshot
	rebounds int

	recording bool
	frames    []*image.Paletted
	gifPath   string
}

// NewModel builds a live view for cfg. The config is cloned, so resets
// always return to the state it describes.
func NewModel(cfg *config.Config, logger *zap.Logger) (Model, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := Model{
		cfg:          cfg.Clone(),
		presets:      config.ListPresets(),
		preset:       -1,
		logger:       logger,
		width:        width,
		height:       height,
		stepsPerTick: 1,
		running:      true,
		playHead:     -1,
		gifPath:      "fieldsim.gif",
	}
	for i, name := range m.presets {
		if name == cfg.Name {
			m.preset = i
		}
	}
	if err := m.build(); err != nil {
		return Model{}, err
	}
	return m, nil
}

// build (re)creates the simulation from the model's config.
func (m *Model) build() error {
	m.pointer = control.NewManual(m.cfg.BodyStart())
	exp := experiment.New(m.cfg.Clone())
	if err := exp.SetupWith(m.logger, m.pointer); err != nil {
		return err
	}
	m.sim = exp.Runner().Simulation()
	m.tracking = false
	m.canvas = NewCanvas(m.width, m.height)
	pw, ph := m.canvas.PixelSize()
	m.view = NewViewport(m.cfg.Center(), m.extent(), pw, ph)

	m.trail = m.trail[:0]
	m.speeds = m.speeds[:0]
	m.impulses = m.impulses[:0]
	m.history = m.history[:0]
	m.playHead = -1
	m.rebounds = 0
	m.last = m.sim.Snapshot()
	return nil
}

// extent is the half-size of the visible field around its center.
func (m *Model) extent() float64 {
	e := m.cfg.Field.Radius + m.cfg.Field.Diameter/2
	if off := m.cfg.Body.Offset.Vec().Mag(); off > e {
		e = off
	}
	return e + viewMargin
}

func (m Model) Init() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if m.recording {
				m.saveGIF()
			}
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "tab":
			m.cyclePreset()
		case "[":
			m.scrub(-1)
		case "]":
			m.scrub(1)
		case "+", "=":
			m.stepsPerTick = min(m.stepsPerTick*2, 16)
		case "-", "_":
			m.stepsPerTick = max(m.stepsPerTick/2, 1)
		case "up", "k":
			m.nudge(dynamo.V(0, -nudgeStep))
		case "down", "j":
			m.nudge(dynamo.V(0, nudgeStep))
		case "left", "h":
			m.nudge(dynamo.V(-nudgeStep, 0))
		case "right", "l":
			m.nudge(dynamo.V(nudgeStep, 0))
		case "g":
			m.toggleRecording()
		case "t":
			NextTheme()
		case "?":
			m.showHelp = !m.showHelp
		}
	case tea.MouseMsg:
		if !m.showHelp {
			m.track(msg.X, msg.Y)
		}
	case TickMsg:
		if m.running {
			if m.playHead == -1 {
				for range m.stepsPerTick {
					m.step()
				}
			} else {
				m.playHead++
				if m.playHead >= len(m.history) {
					m.playHead = -1
				}
			}
		}
		if m.recording {
			m.draw()
			m.captureFrame()
		}
		return m, tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
	}
	return m, nil
}

// track moves the pointer to the terminal cell (col, row). The first
// event only sets the baseline, so entering the canvas gives no kick.
func (m *Model) track(col, row int) {
	x := (col-padLeft)*2 + 1
	y := (row-padTop)*4 + 2
	p := m.view.ToWorld(x, y)
	m.pointer.Set(p)
	if !m.tracking {
		m.sim.ResetPointer(p)
		m.tracking = true
	}
}

func (m *Model) nudge(d dynamo.Vec2) {
	m.pointer.Nudge(d)
	m.tracking = true
}

// step advances the physics simulation.
func (m *Model) step() {
	snap := m.sim.Step(m.pointer.Position(m.sim.Steps()+1, m.sim.Body().Position))
	if !snap.IsValid() {
		m.running = false
		m.logger.Warn("state diverged, pausing", zap.Int("step", snap.Step))
		return
	}
	m.last = snap
	m.rebounds += snap.Rebounds

	m.trail = append(m.trail, snap.Position)
	if len(m.trail) > trailLength {
		m.trail = m.trail[1:]
	}
	m.speeds = append(m.speeds, snap.Speed())
	if len(m.speeds) > historyCapacity {
		m.speeds = m.speeds[1:]
	}
	m.impulses = append(m.impulses, snap.Impulse.Mag())
	if len(m.impulses) > sparkWidth {
		m.impulses = m.impulses[1:]
	}
	m.history = append(m.history, snap)
	if len(m.history) > historyCapacity {
		m.history = m.history[1:]
	}
}

// scrub changes the playback position in history.
func (m *Model) scrub(dir int) {
	if m.playHead == -1 {
		if len(m.history) == 0 {
			return
		}
		m.playHead = len(m.history) - 1
		m.running = false
	}
	m.playHead += dir
	if m.playHead < 0 {
		m.playHead = 0
	}
	if m.playHead >= len(m.history) {
		m.playHead = -1
	}
}

// reset restores the initial state.
func (m *Model) reset() {
	if err := m.build(); err != nil {
		m.logger.Error("reset failed", zap.Error(err))
		return
	}
	m.logger.Info("reset", zap.String("field", m.cfg.Name))
}

func (m *Model) cyclePreset() {
	if len(m.presets) == 0 {
		return
	}
	m.preset = (m.preset + 1) % len(m.presets)
	name := m.presets[m.preset]
	cfg := config.GetPreset(name)
	cfg.Logger = m.cfg.Logger
	prev := m.cfg
	m.cfg = cfg
	if err := m.build(); err != nil {
		m.logger.Error("preset failed", zap.String("preset", name), zap.Error(err))
		m.cfg = prev
		_ = m.build()
		return
	}
	m.logger.Info("preset loaded", zap.String("preset", name))
}

// current is the snapshot on screen, which differs from the live state
// while replaying.
func (m *Model) current() sim.Snapshot {
	if m.playHead >= 0 && m.playHead < len(m.history) {
		return m.history[m.playHead]
	}
	return m.last
}

// View renders the TUI interface.
func (m Model) View() string {
	m.draw()
	canvasView := canvasStyle.Render(m.canvas.String())

	snap := m.current()
	status := "RUNNING"
	switch {
	case m.playHead != -1 && !m.running:
		status = fmt.Sprintf("REPLAY PAUSED (%d)", snap.Step-m.last.Step)
	case m.playHead != -1:
		status = fmt.Sprintf("REPLAYING (%d)", snap.Step-m.last.Step)
	case !m.running:
		status = "PAUSED"
	}
	if m.recording {
		status += " " + StatusRecording.Render("● REC")
	}

	var s strings.Builder
	s.WriteString(headerStyle().Render(strings.ToUpper(m.cfg.Name)) + "\n")
	s.WriteString(status + "\n\n")
	if len(m.speeds) > 1 {
		chart := asciigraph.Plot(m.speeds, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Speed"))
		s.WriteString(lipgloss.NewStyle().Foreground(CurrentTheme.Trail).Padding(1, 0).Render(chart) + "\n\n")
	}
	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle().Render(value) + "\n")
	}
	row("Step", fmt.Sprintf("%d", snap.Step))
	row("Position", snap.Position.String())
	row("Speed", fmt.Sprintf("%.3f", snap.Speed()))
	row("Impulse", fmt.Sprintf("%.3f", snap.Impulse.Mag()))
	s.WriteString(labelStyle.Render("") + SparklineChart(m.impulses, sparkWidth) + "\n")
	row("Rebounds", fmt.Sprintf("%d", m.rebounds))
	row("Speed x", fmt.Sprintf("%d", m.stepsPerTick))
	s.WriteString(labelStyle.Render("Sources") + m.legend() + "\n")
	s.WriteString(helpStyle.Render("mouse/arrows:push  SP:pause  R:reset\nTAB:field  T:theme  G:record  ?:help"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
	if m.showHelp {
		return helpOverlay + "\n\n" + mainView
	}
	return mainView
}

const helpOverlay = `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Mouse    - Move pointer to push     ║
║  Arrows   - Nudge pointer            ║
║  Space    - Pause/Resume simulation  ║
║  R        - Reset simulation         ║
║  Tab      - Next preset field        ║
║  + / -    - Steps per frame          ║
║  [        - Rewind (time travel)     ║
║  ]        - Forward (time travel)    ║
║  G        - Toggle GIF recording     ║
║  T        - Cycle themes             ║
║  Q        - Quit                     ║
╚══════════════════════════════════════╝`

func (m *Model) legend() string {
	var pos, neg int
	for _, src := range m.sim.Sources() {
		if src.Positive() {
			pos++
		} else {
			neg++
		}
	}
	return chargeStyle(1).Render(fmt.Sprintf("+%d", pos)) + " " + chargeStyle(-1).Render(fmt.Sprintf("-%d", neg))
}

// draw renders the field, the trail and the body onto the canvas.
func (m *Model) draw() {
	m.canvas.Clear()
	for _, src := range m.sim.Sources() {
		x, y := m.view.ToPixel(src.Position())
		m.canvas.DrawCircle(x, y, m.view.Length(src.Radius()))
		sign := "+"
		if !src.Positive() {
			sign = "-"
		}
		m.canvas.Mark(x, y, chargeStyle(src.Charge()).Render(sign))
	}

	trail := m.trail
	if m.playHead >= 0 {
		trail = nil
		for i := max(0, m.playHead-trailLength); i <= m.playHead && i < len(m.history); i++ {
			trail = append(trail, m.history[i].Position)
		}
	}
	for i := 1; i < len(trail); i++ {
		x0, y0 := m.view.ToPixel(trail[i-1])
		x1, y1 := m.view.ToPixel(trail[i])
		m.canvas.DrawLine(x0, y0, x1, y1)
	}

	bx, by := m.view.ToPixel(m.current().Position)
	m.canvas.FillDisc(bx, by, 1)
	m.canvas.Mark(bx, by, lipgloss.NewStyle().Foreground(CurrentTheme.Body).Bold(true).Render("●"))

	if m.tracking {
		px, py := m.view.ToPixel(m.pointer.Position(0, dynamo.Zero))
		m.canvas.Mark(px, py, accentStyle().Render("┼"))
	}
}

func (m *Model) toggleRecording() {
	if m.recording {
		m.saveGIF()
		m.recording = false
		m.frames = nil
		return
	}
	m.recording = true
	m.frames = make([]*image.Paletted, 0)
}

// captureFrame rasterizes the braille dots of the canvas.
func (m *Model) captureFrame() {
	charW, charH := 8, 16
	dotW, dotH := charW/2, charH/4
	img := image.NewPaletted(image.Rect(0, 0, m.canvas.Width*charW, m.canvas.Height*charH), color.Palette{color.Black, color.White})
	for row := range m.canvas.Height {
		for col := range m.canvas.Width {
			pattern := int(m.canvas.Grid[row][col] - 0x2800)
			if pattern <= 0 {
				continue
			}
			for dy := range 4 {
				for dx := range 2 {
					if pattern&pixelMap[dy][dx] == 0 {
						continue
					}
					bx, by := col*charW+dx*dotW, row*charH+dy*dotH
					for py := range dotH {
						for px := range dotW {
							img.SetColorIndex(bx+px, by+py, 1)
						}
					}
				}
			}
		}
	}
	m.frames = append(m.frames, img)
}

func (m *Model) saveGIF() {
	if len(m.frames) == 0 {
		return
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range m.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, 2)
	}
	f, err := os.Create(m.gifPath)
	if err != nil {
		m.logger.Error("gif create failed", zap.Error(err))
		return
	}
	defer f.Close()
	if err := gif.EncodeAll(f, &anim); err != nil {
		m.logger.Error("gif encode failed", zap.Error(err))
		return
	}
	m.logger.Info("gif saved", zap.String("path", m.gifPath), zap.Int("frames", len(m.frames)))
}

// RunLive runs the live view until the user quits.
func RunLive(cfg *config.Config, logger *zap.Logger) error {
	m, err := NewModel(cfg, logger)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion()).Run()
	return err
}
