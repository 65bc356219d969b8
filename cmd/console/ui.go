package main

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/solhwan/pointclick/pkg/dialog"
	"github.com/solhwan/pointclick/pkg/game"
	"github.com/solhwan/pointclick/pkg/inventory"
	"github.com/solhwan/pointclick/pkg/scene"
)

const PlaceHolderText = "look / tap N / examine N / use ITEM / combine A B ..."

// ConsoleUI is the BubbleTea model that runs the terminal player.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	game       *game.Manager
	controller *scene.Controller
	inv        *inventory.View
	dlg        *dialog.Machine
	logger     *slog.Logger

	viewport viewport.Model
	textarea textarea.Model
	ready    bool
	width    int
	height   int

	transcript []string

	// Active dialog mirror
	dialogText    string
	dialogSpeaker string
	dialogChoices []string

	// Quit confirmation state
	showQuitModal bool

	lastTick time.Time
}

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	speakerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	sceneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	dialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2)
)

var titleCaser = cases.Title(language.English)

func NewConsoleUI(g *game.Manager, c *scene.Controller, inv *inventory.View, d *dialog.Machine, logger *slog.Logger) *ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 200
	ta.SetWidth(50)
	ta.SetHeight(1)
	ta.ShowLineNumbers = false

	vp := viewport.New(50, 20)
	vp.MouseWheelEnabled = true

	return &ConsoleUI{
		game:       g,
		controller: c,
		inv:        inv,
		dlg:        d,
		logger:     logger,
		viewport:   vp,
		textarea:   ta,
		lastTick:   time.Now(),
	}
}

func (m *ConsoleUI) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, tick())
}

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func (m *ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var taCmd, vpCmd tea.Cmd
	m.textarea, taCmd = m.textarea.Update(msg)
	m.viewport, vpCmd = m.viewport.Update(msg)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width - 2
		m.viewport.Height = msg.Height - 7
		m.textarea.SetWidth(msg.Width - 4)
		if !m.ready {
			m.ready = true
			m.describeScene()
		}

	case tickMsg:
		now := time.Now()
		m.controller.Update(now.Sub(m.lastTick))
		m.lastTick = now
		return m, tea.Batch(taCmd, vpCmd, tick())

	case dialogLineMsg:
		m.dialogText = msg.text
		m.dialogSpeaker = msg.speaker
		m.dialogChoices = msg.choices
		line := msg.text
		if msg.speaker != "" {
			line = speakerStyle.Render(msg.speaker+": ") + line
		}
		m.appendLog(line)
		for i, c := range msg.choices {
			m.appendLog(promptStyle.Render(fmt.Sprintf("  %d) %s", i+1, c)))
		}

	case dialogHiddenMsg:
		m.dialogText = ""
		m.dialogSpeaker = ""
		m.dialogChoices = nil

	case soundMsg:
		m.appendLog(noticeStyle.Render("♪ " + msg.key))

	case sceneLoadedMsg:
		m.describeScene()

	case gameEventMsg:
		m.logEvent(msg.event)

	case tea.KeyMsg:
		if m.showQuitModal {
			switch msg.String() {
			case "y", "Y", "enter":
				return m, tea.Quit
			default:
				m.showQuitModal = false
			}
			return m, tea.Batch(taCmd, vpCmd)
		}
		switch msg.Type {
		case tea.KeyCtrlC:
			m.showQuitModal = true
		case tea.KeyCtrlY:
			if err := clipboard.WriteAll(stripANSI(strings.Join(m.transcript, "\n"))); err == nil {
				m.appendLog(noticeStyle.Render("Transcript copied to clipboard."))
			}
		case tea.KeyEnter:
			cmd := strings.TrimSpace(m.textarea.Value())
			m.textarea.Reset()
			m.handleCommand(cmd)
		}
	}

	return m, tea.Batch(taCmd, vpCmd)
}

func (m *ConsoleUI) handleCommand(cmd string) {
	if cmd == "" {
		if m.dlg.State() == dialog.StateShowingLine {
			m.dlg.Continue()
		}
		return
	}

	if n, err := strconv.Atoi(cmd); err == nil {
		if m.dlg.State() == dialog.StateAwaitingChoice {
			m.dlg.Choose(n - 1)
			return
		}
		m.tapEntity(n)
		return
	}

	fields := strings.Fields(cmd)
	switch fields[0] {
	case "look", "l":
		m.describeScene()
	case "tap", "t":
		if len(fields) < 2 {
			m.appendLog(errorStyle.Render("Usage: tap N"))
			return
		}
		if n, err := strconv.Atoi(fields[1]); err == nil {
			m.tapEntity(n)
		}
	case "examine", "x":
		if len(fields) < 2 {
			m.appendLog(errorStyle.Render("Usage: examine N"))
			return
		}
		if n, err := strconv.Atoi(fields[1]); err == nil {
			if p, ok := m.entityCenter(n); ok {
				m.controller.Examine(p.X, p.Y)
			}
		}
	case "inv", "i":
		m.describeInventory()
	case "use", "sel":
		if len(fields) < 2 {
			m.appendLog(errorStyle.Render("Usage: use ITEM [on N]"))
			return
		}
		m.inv.Select(fields[1])
		if sel := m.inv.Selected(); sel != nil {
			m.appendLog(statusStyle.Render("Selected " + sel.Name + "."))
		} else {
			m.appendLog(statusStyle.Render("Selection cleared."))
		}
		if len(fields) == 4 && fields[2] == "on" {
			if n, err := strconv.Atoi(fields[3]); err == nil {
				m.tapEntity(n)
			}
		}
	case "drop":
		m.inv.Deselect()
		m.appendLog(statusStyle.Render("Selection cleared."))
	case "combine", "c":
		if len(fields) < 3 {
			m.appendLog(errorStyle.Render("Usage: combine ITEM ITEM"))
			return
		}
		m.inv.Select(fields[1])
		result, message := m.inv.CombineSelectedWith(fields[2])
		switch {
		case result != nil && message != "":
			m.appendLog(sceneStyle.Render(message))
		case result != nil:
			m.appendLog(sceneStyle.Render("Created " + result.Name + "."))
		default:
			m.appendLog(noticeStyle.Render("Those don't go together."))
		}
	case "next", "n":
		m.inv.ScrollForward()
		m.describeInventory()
	case "prev", "p":
		m.inv.ScrollBack()
		m.describeInventory()
	case "save":
		if _, err := m.game.SaveSnapshot(context.Background()); err != nil {
			m.appendLog(errorStyle.Render("Save failed: " + err.Error()))
		}
	case "load":
		snap, err := m.game.ReloadSnapshot(context.Background())
		if err != nil {
			m.appendLog(errorStyle.Render("Load failed: " + err.Error()))
			return
		}
		if snap == nil {
			m.appendLog(noticeStyle.Render("No saved game."))
			return
		}
		if err := m.controller.Load(context.Background(), m.game.CurrentScene()); err != nil {
			m.appendLog(errorStyle.Render("Scene load failed: " + err.Error()))
			return
		}
		m.inv.Reload()
		m.describeScene()
	case "reset":
		m.game.ResetState()
		if err := m.controller.Load(context.Background(), m.game.CurrentScene()); err != nil {
			m.appendLog(errorStyle.Render("Scene load failed: " + err.Error()))
			return
		}
		m.inv.Reload()
		m.describeScene()
	case "quit", "q":
		m.showQuitModal = true
	default:
		m.appendLog(errorStyle.Render("Unknown command: " + cmd))
	}
}

// entityCenter resolves a 1-based display index into a tap point. Hotspots
// are listed before scene items, matching describeScene.
func (m *ConsoleUI) entityCenter(n int) (scene.Point, bool) {
	hotspots := m.controller.Hotspots()
	items := m.controller.Items()
	idx := n - 1
	if idx < 0 || idx >= len(hotspots)+len(items) {
		m.appendLog(errorStyle.Render("Nothing numbered " + strconv.Itoa(n) + " here."))
		return scene.Point{}, false
	}
	var b scene.Rect
	if idx < len(hotspots) {
		b = hotspots[idx].Bounds
	} else {
		b = items[idx-len(hotspots)].Bounds
	}
	return scene.Point{X: b.X + b.Width/2, Y: b.Y + b.Height/2}, true
}

func (m *ConsoleUI) tapEntity(n int) {
	if p, ok := m.entityCenter(n); ok {
		m.controller.Tap(p.X, p.Y)
	}
}

func (m *ConsoleUI) describeScene() {
	key := m.game.CurrentScene()
	m.appendLog("")
	m.appendLog(titleStyle.Render("── " + titleCaser.String(strings.ReplaceAll(key, "_", " ")) + " ──"))

	i := 0
	for _, hs := range m.controller.Hotspots() {
		i++
		name := hs.Name
		if name == "" {
			name = titleCaser.String(strings.ReplaceAll(hs.ID, "_", " "))
		}
		m.appendLog(sceneStyle.Render(fmt.Sprintf("  %d. %s", i, name)))
	}
	for _, it := range m.controller.Items() {
		i++
		name := it.ID
		if def := m.game.ItemData(it.ID); def != nil {
			name = def.Name
		}
		m.appendLog(sceneStyle.Render(fmt.Sprintf("  %d. %s (item)", i, name)))
	}
	if i == 0 {
		m.appendLog(promptStyle.Render("  Nothing of interest."))
	}
}

func (m *ConsoleUI) describeInventory() {
	items := m.inv.Items()
	if len(items) == 0 {
		m.appendLog(promptStyle.Render("Your pockets are empty."))
		return
	}
	visible := m.inv.Visible()
	m.appendLog(titleStyle.Render(fmt.Sprintf("Inventory (%d):", len(items))))
	sel := m.inv.Selected()
	for _, it := range visible {
		marker := "  "
		if sel != nil && sel.ID == it.ID {
			marker = "> "
		}
		m.appendLog(statusStyle.Render(fmt.Sprintf("%s%s  [%s]", marker, it.Name, it.ID)))
	}
	if len(visible) < len(items) {
		m.appendLog(promptStyle.Render("  (next/prev to scroll)"))
	}
}

func (m *ConsoleUI) logEvent(ev game.Event) {
	switch ev.Type {
	case game.EventItemCollected:
		if id, ok := ev.Data["item"].(string); ok {
			name := id
			if def := m.game.ItemData(id); def != nil {
				name = def.Name
			}
			m.appendLog(noticeStyle.Render("Got " + name + "."))
		}
	case game.EventItemsCombined:
		// CombineSelectedWith already reports; combination via scene taps
		// lands here too, so keep it quiet unless there is a message.
		if msg, ok := ev.Data["message"].(string); ok && msg != "" {
			m.appendLog(sceneStyle.Render(msg))
		}
	case game.EventGameSaved:
		m.appendLog(noticeStyle.Render("Game saved."))
	case game.EventGameLoaded:
		m.appendLog(noticeStyle.Render("Game loaded."))
	case game.EventStateReset:
		m.appendLog(noticeStyle.Render("New game started."))
	case game.EventInitError:
		m.appendLog(errorStyle.Render("Game data failed to load; running degraded."))
	}
}

func (m *ConsoleUI) appendLog(line string) {
	if line != "" && m.width > 4 {
		line = wordwrap.String(line, m.width-4)
	}
	m.transcript = append(m.transcript, line)
	m.viewport.SetContent(strings.Join(m.transcript, "\n"))
	m.viewport.GotoBottom()
}

func (m *ConsoleUI) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.showQuitModal {
		modal := modalStyle.Render("Quit? Unsaved progress is lost.\n\n[y] quit   [any key] stay")
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(" pointclick ") + "\n")
	b.WriteString(m.viewport.View() + "\n")

	if m.dialogText != "" {
		b.WriteString(m.dialogView() + "\n")
	}

	status := m.game.CurrentScene()
	if sel := m.inv.Selected(); sel != nil {
		status += "  |  holding: " + sel.Name
	}
	b.WriteString(statusStyle.Render(" "+status) + "\n")
	b.WriteString(m.textarea.View())
	return b.String()
}

func (m *ConsoleUI) dialogView() string {
	text := m.dialogText
	if m.dialogSpeaker != "" {
		text = speakerStyle.Render(m.dialogSpeaker) + "\n" + text
	}
	if len(m.dialogChoices) > 0 {
		var opts []string
		for i, c := range m.dialogChoices {
			opts = append(opts, fmt.Sprintf("%d) %s", i+1, c))
		}
		text += "\n" + promptStyle.Render(strings.Join(opts, "   "))
	} else {
		text += "\n" + promptStyle.Render("(enter to continue)")
	}
	width := m.width - 6
	if width > 0 {
		text = wordwrap.String(text, width)
	}
	return dialogStyle.Render(text)
}

// stripANSI removes styling escape codes before the transcript leaves the
// terminal.
func stripANSI(s string) string {
	var b strings.Builder
	inEscape := false
	for _, r := range s {
		switch {
		case inEscape:
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEscape = false
			}
		case r == '\x1b':
			inEscape = true
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
