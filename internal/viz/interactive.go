package viz

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/san-kum/fieldsim/internal/config"
)

var presetInfo = map[string]string{
	"triad":   "two repellers, one attractor",
	"dipole":  "a pair of opposite charges",
	"hexring": "six alternating sources",
	"empty":   "no field, pointer only",
	"bumper":  "one large elastic source",
}

const (
	stateMenu = iota
	stateConfig
	stateSim
)

type app struct {
	state, cursor int
	presets       []string
	cfg           *config.Config
	paramNames    []string
	paramCursor   int
	editing       bool
	editBuf       string
	err           error
	logger        *zap.Logger
	live          Model
}

// NewApp returns the preset picker that leads into the live view.
func NewApp(logger *zap.Logger) tea.Model {
	if logger == nil {
		logger = zap.NewNop()
	}
	return app{
		state:      stateMenu,
		presets:    config.ListPresets(),
		paramNames: config.ParamNames(),
		logger:     logger,
	}
}

func (m app) Init() tea.Cmd { return nil }

func (m app) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.state == stateSim {
		live, cmd := m.live.Update(msg)
		m.live = live.(Model)
		return m, cmd
	}
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch m.state {
		case stateMenu:
			return m.menuKey(msg)
		case stateConfig:
			return m.configKey(msg)
		}
	}
	return m, nil
}

func (m app) menuKey(msg tea.KeyMsg) (app, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.cfg = config.GetPreset(m.presets[m.cursor])
		m.state, m.paramCursor, m.err = stateConfig, 0, nil
	}
	return m, nil
}

func (m app) configKey(msg tea.KeyMsg) (app, tea.Cmd) {
	name := m.paramNames[m.paramCursor]
	if m.editing {
		switch msg.String() {
		case "enter":
			if v, err := strconv.ParseFloat(m.editBuf, 64); err == nil {
				_ = m.cfg.SetParam(name, v)
			}
			m.editing, m.editBuf = false, ""
		case "esc":
			m.editing, m.editBuf = false, ""
		case "backspace":
			if len(m.editBuf) > 0 {
				m.editBuf = m.editBuf[:len(m.editBuf)-1]
			}
		default:
			if s := msg.String(); len(s) == 1 && strings.ContainsAny(s, "0123456789.-") {
				m.editBuf += s
			}
		}
		return m, nil
	}
	switch msg.String() {
	case "q", "esc":
		m.state = stateMenu
	case "up", "k":
		if m.paramCursor > 0 {
			m.paramCursor--
		}
	case "down", "j":
		if m.paramCursor < len(m.paramNames)-1 {
			m.paramCursor++
		}
	case "enter", " ":
		v, _ := m.cfg.Param(name)
		m.editing, m.editBuf = true, strconv.FormatFloat(v, 'f', -1, 64)
	case "left", "h":
		m.adjust(name, 0.9)
	case "right", "l":
		m.adjust(name, 1.1)
	case "s":
		return m.start()
	}
	return m, nil
}

func (m *app) adjust(name string, factor float64) {
	v, _ := m.cfg.Param(name)
	if v == 0 {
		v = 0.1
		factor = 1
	}
	_ = m.cfg.SetParam(name, v*factor)
}

func (m app) start() (app, tea.Cmd) {
	if err := m.cfg.Validate(); err != nil {
		m.err = err
		return m, nil
	}
	live, err := NewModel(m.cfg, m.logger)
	if err != nil {
		m.err = err
		return m, nil
	}
	m.live, m.state = live, stateSim
	return m, m.live.Init()
}

func (m app) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateConfig:
		return m.viewConfig()
	case stateSim:
		return m.live.View()
	}
	return ""
}

func title(name, sub string) string {
	h := headerStyle().MarginBottom(0)
	return "\n\n    " + h.Render(name) + "\n    " + mutedStyle().Render(sub) + "\n    " + mutedStyle().Render("─────────────────────────") + "\n\n"
}

func hints(pairs ...string) string {
	var b strings.Builder
	b.WriteString("\n    ")
	for i := 0; i+1 < len(pairs); i += 2 {
		b.WriteString(accentStyle().Render(pairs[i]) + mutedStyle().Render(" "+pairs[i+1]+"  "))
	}
	return b.String() + "\n"
}

func (m app) viewMenu() string {
	var b strings.Builder
	b.WriteString(title("FIELDSIM", "charged body in a static field"))
	for i, name := range m.presets {
		desc := presetInfo[name]
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", accentStyle().Render("▸"), valueStyle().Bold(true).Render(fmt.Sprintf("%-10s", name)), lipgloss.NewStyle().Foreground(CurrentTheme.Primary).Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("    %s  %s\n", mutedStyle().Render(fmt.Sprintf("  %-10s", name)), mutedStyle().Render(desc)))
		}
	}
	b.WriteString(hints("j/k", "navigate", "enter", "select", "q", "quit"))
	return b.String()
}

func (m app) viewConfig() string {
	var b strings.Builder
	b.WriteString(title(strings.ToUpper(m.cfg.Name), presetInfo[m.cfg.Name]))
	for i, name := range m.paramNames {
		v, _ := m.cfg.Param(name)
		valStr := fmt.Sprintf("%10.3f", v)
		if m.editing && i == m.paramCursor {
			valStr = fmt.Sprintf("%10s", m.editBuf+"_")
		}
		if i == m.paramCursor {
			b.WriteString(fmt.Sprintf("    %s %s %s\n", accentStyle().Render("▸"), valueStyle().Bold(true).Render(fmt.Sprintf("%-15s", name)), lipgloss.NewStyle().Foreground(CurrentTheme.Primary).Bold(true).Render(valStr)))
		} else {
			b.WriteString(fmt.Sprintf("    %s %s\n", mutedStyle().Render(fmt.Sprintf("  %-15s", name)), mutedStyle().Render(valStr)))
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + lipgloss.NewStyle().Foreground(CurrentTheme.Warning).Render(m.err.Error()) + "\n")
	}
	b.WriteString(hints("j/k", "select", "h/l", "adjust", "enter", "edit", "s", "start", "esc", "back"))
	return b.String()
}

// RunInteractive starts at the preset menu.
func RunInteractive(logger *zap.Logger) error {
	_, err := tea.NewProgram(NewApp(logger), tea.WithAltScreen(), tea.WithMouseAllMotion()).Run()
	return err
}
