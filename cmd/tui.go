package cmd

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/suderio/quantum-dungeon/internal/engine"
	"github.com/suderio/quantum-dungeon/internal/feed"
	"github.com/suderio/quantum-dungeon/internal/grid"
	"github.com/suderio/quantum-dungeon/internal/session"
)

const frameDT = 1.0 / 30

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1).
			MarginBottom(1)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#999999"))

	boardBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#874BFD")).
			Padding(0, 1)

	stateBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#874BFD")).
			Padding(0, 1)

	logBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#04B575")).
			Padding(0, 1)

	playerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFD700"))
	enemyStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF4D4D"))
	itemStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#5FD7FF"))

	// shades maps light levels to floor colours, darkest first.
	shades = []lipgloss.Color{"#303030", "#4E4E4E", "#767676", "#A8A8A8", "#E4E4E4"}
)

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return tickMsg(t) })
}

type playModel struct {
	app        *session.Session
	hub        *feed.Hub
	textInput  textinput.Model
	viewport   viewport.Model
	history    []string
	historyIdx int
	logContent string
	width      int
	height     int
}

func newPlayModel(app *session.Session, hub *feed.Hub) playModel {
	ti := textinput.New()
	ti.Placeholder = "Enter input (e.g., move right, tile 2 3, select 0)..."
	ti.Focus()
	ti.CharLimit = 64
	ti.Width = 60

	welcome := "Welcome to the Quantum Dungeon!\nType 'exit' to quit."
	vp := viewport.New(0, 0)
	vp.SetContent(welcome)

	return playModel{
		app:        app,
		hub:        hub,
		textInput:  ti,
		viewport:   vp,
		historyIdx: -1,
		logContent: welcome,
	}
}

func (m *playModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tick())
}

var arrowDirs = map[tea.KeyType]engine.Dir{
	tea.KeyLeft:  {DX: -1},
	tea.KeyRight: {DX: 1},
	tea.KeyUp:    {DY: -1},
	tea.KeyDown:  {DY: 1},
}

func (m *playModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tickMsg:
		if err := m.app.Tick(frameDT); err != nil {
			m.log(fmt.Sprintf("journal: %v", err))
		}
		if m.hub != nil {
			if err := m.hub.Publish(m.app.ID(), m.app.Snapshot()); err != nil {
				logger.Warn("publish failed", zap.Error(err))
			}
		}
		return m, tick()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit

		case tea.KeyLeft, tea.KeyRight, tea.KeyUp, tea.KeyDown:
			if m.textInput.Value() == "" {
				m.apply(arrowDirs[msg.Type])
			} else {
				m.textInput, tiCmd = m.textInput.Update(msg)
			}

		case tea.KeyCtrlP:
			if len(m.history) > 0 {
				if m.historyIdx == -1 {
					m.historyIdx = len(m.history) - 1
				} else if m.historyIdx > 0 {
					m.historyIdx--
				}
				m.textInput.SetValue(m.history[m.historyIdx])
			}

		case tea.KeyCtrlN:
			if len(m.history) > 0 && m.historyIdx != -1 {
				if m.historyIdx < len(m.history)-1 {
					m.historyIdx++
					m.textInput.SetValue(m.history[m.historyIdx])
				} else {
					m.historyIdx = -1
					m.textInput.SetValue("")
				}
			}

		case tea.KeyEnter:
			val := strings.TrimSpace(m.textInput.Value())
			if val == "exit" || val == "quit" {
				return m, tea.Quit
			}
			if val != "" {
				if len(m.history) == 0 || m.history[len(m.history)-1] != val {
					m.history = append(m.history, val)
				}
				m.historyIdx = -1
				m.textInput.SetValue("")

				m.logContent += fmt.Sprintf("\n> %s", val)
				if _, err := m.app.Execute(val); err != nil {
					m.log(fmt.Sprintf("Error: %v", err))
				} else {
					m.viewport.SetContent(m.logContent)
					m.viewport.GotoBottom()
				}
			}

		default:
			m.textInput, tiCmd = m.textInput.Update(msg)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width - 4
	}

	m.viewport, vpCmd = m.viewport.Update(msg)

	overhead := lipgloss.Height(m.renderTop()) + lipgloss.Height(titleStyle.Render("Dummy")) + 6
	m.viewport.Height = m.height - overhead
	if m.viewport.Height < 3 {
		m.viewport.Height = 3
	}

	return m, tea.Batch(tiCmd, vpCmd)
}

func (m *playModel) apply(in engine.Input) {
	m.logContent += fmt.Sprintf("\n> %s", in)
	if err := m.app.Apply(in); err != nil {
		m.log(fmt.Sprintf("Error: %v", err))
		return
	}
	m.viewport.SetContent(m.logContent)
	m.viewport.GotoBottom()
}

func (m *playModel) log(line string) {
	m.logContent += "\n" + line
	m.viewport.SetContent(m.logContent)
	m.viewport.GotoBottom()
}

func (m *playModel) renderTop() string {
	snap := m.app.Snapshot()
	board := boardBoxStyle.Render(renderBoard(snap, true))
	state := stateBoxStyle.Render(renderStatus(snap))
	return lipgloss.JoinHorizontal(lipgloss.Top, board, state)
}

// renderBoard draws the snapshot as a character grid. Styled boards are
// coloured and shaded by light.
func renderBoard(snap engine.Snapshot, styled bool) string {
	if len(snap.Tiles) == 0 {
		return "(no tiles)"
	}
	minP, maxP := snap.Tiles[0], snap.Tiles[0]
	tiles := make(map[grid.Pos]bool, len(snap.Tiles))
	for _, p := range snap.Tiles {
		tiles[p] = true
		minP.X, minP.Y = min(minP.X, p.X), min(minP.Y, p.Y)
		maxP.X, maxP.Y = max(maxP.X, p.X), max(maxP.Y, p.Y)
	}

	var b strings.Builder
	for y := minP.Y; y <= maxP.Y; y++ {
		if y > minP.Y {
			b.WriteByte('\n')
		}
		for x := minP.X; x <= maxP.X; x++ {
			p := grid.Pos{X: x, Y: y}
			b.WriteString(cell(snap, p, tiles[p], styled))
		}
	}
	return b.String()
}

func cell(snap engine.Snapshot, p grid.Pos, exists, styled bool) string {
	if !exists {
		return "  "
	}
	text, style := ". ", lipgloss.NewStyle()
	if e, ok := snap.EntityAt(p); ok {
		if e.ID == snap.Player {
			text, style = "@ ", playerStyle
		} else {
			text, style = glyph(e.Kind)+" ", enemyStyle
		}
	} else if bi, ok := snap.BoardItemAt(p); ok {
		text, style = strings.ToUpper(glyph(bi.Kind))+" ", itemStyle
	} else {
		level := snap.LightLevel(p)
		style = style.Foreground(shades[min(len(shades)-1, int(level*float32(len(shades))))])
	}
	if !styled {
		return text
	}
	return style.Render(text)
}

func glyph(name string) string {
	if name == "" {
		return "?"
	}
	return strings.ToLower(name[:1])
}

func renderStatus(snap engine.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Phase: %s\nCycle: %d\nMoves: %d\n", snap.PhaseName, snap.Cycle, snap.MovesLeft)
	if p, ok := snap.PlayerEntity(); ok {
		fmt.Fprintf(&b, "Health: %d/%d\n", p.Health, p.MaxHealth)
	}

	switch ph := snap.Phase.(type) {
	case *engine.SelectPhase:
		b.WriteString("\nChoose (select n / reroll / skip):\n")
		for i, o := range ph.Options {
			fmt.Fprintf(&b, "  %d. %s\n", i, o)
		}
	case *engine.PortalPhase:
		b.WriteString("\nA portal opens (select n / skip):\n")
		for i, o := range ph.Options {
			fmt.Fprintf(&b, "  %d. %s\n", i, o)
		}
	case *engine.MapPhase:
		fmt.Fprintf(&b, "\nOpen %d more tile(s): tile x y\n", ph.TilesLeft)
	case *engine.VisionPhase:
		fmt.Fprintf(&b, "\nLooking at %d,%d (look x y commit)\n", ph.Look.X, ph.Look.Y)
	case *engine.LevelFinishedPhase:
		if ph.Win {
			b.WriteString("\nYou survived! (retry)\n")
		} else {
			b.WriteString("\nYou died. (retry)\n")
		}
	}

	var carried []string
	for _, it := range snap.Inventory {
		if !it.OnBoard() {
			carried = append(carried, it.Kind)
		}
	}
	sort.Strings(carried)
	if len(carried) > 0 {
		fmt.Fprintf(&b, "\nCarrying: %s", strings.Join(carried, ", "))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *playModel) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	snap := m.app.Snapshot()
	title := titleStyle.Render(fmt.Sprintf(" Quantum Dungeon | cycle %d | %s ", snap.Cycle, snap.PhaseName))
	logBox := logBoxStyle.Width(m.width - 4).Render(m.viewport.View())

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		m.renderTop(),
		logBox,
		m.textInput.View(),
		infoStyle.Render("(esc to quit, arrows move when the line is empty, ctrl+p/ctrl+n history)"),
	)
}

// RunTUI runs the terminal UI until the player quits.
func RunTUI(app *session.Session, hub *feed.Hub) error {
	m := newPlayModel(app, hub)
	p := tea.NewProgram(&m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
