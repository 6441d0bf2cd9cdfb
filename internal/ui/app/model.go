package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	archivedto "chamberlog/internal/modules/archive/dto"
	timelinedto "chamberlog/internal/modules/timeline/dto"
	apperrors "chamberlog/internal/platform/errors"
	"chamberlog/internal/ui/components"
	"chamberlog/internal/ui/theme"
	archiveview "chamberlog/internal/ui/views/archive"
	timelineview "chamberlog/internal/ui/views/timeline"
)

// ─── ports ───────────────────────────────────────────────────────────────────

type sessionPort interface {
	Resume(ctx context.Context) (timelinedto.SessionOutput, error)
	NewSession(ctx context.Context, sessionID string, number int, force bool) (timelinedto.SessionOutput, error)
	Open(ctx context.Context, sessionID string, force bool) (timelinedto.SessionOutput, error)
	Reload(ctx context.Context) (timelinedto.SessionOutput, error)
	Save(ctx context.Context) (timelinedto.SaveOutput, error)
	Export(ctx context.Context) (timelinedto.ExportOutput, error)
}

type timelinePort interface {
	timelineview.TimelinePort
	SetEvent(ctx context.Context, key, value string) (timelinedto.EventOutput, error)
	SetParticipant(ctx context.Context, id, value string) (timelinedto.ParticipantOutput, error)
	Recompute(ctx context.Context) (timelinedto.BoardOutput, error)
}

type archivePort interface {
	List(ctx context.Context, query string) ([]archivedto.SummaryOutput, error)
	Delete(ctx context.Context, sessionID string) error
}

// ─── tab index ───────────────────────────────────────────────────────────────

type tabID int

const (
	tabTimeline tabID = iota
	tabArchive
	tabCount
)

var tabLabels = [tabCount]string{"Timeline", "Archive"}

// paletteHints must stay in sync with the switch in executePalette.
var paletteHints = []string{
	"session:new <number|id>",
	"session:open <id>",
	"session:open! <id>",
	"session:reload",
	"session:save",
	"session:export",
	"event:record <key>",
	"event:set <key> [HH:MM:SS]",
	"event:clear <key>",
	"seat:calc <id>",
	"seat:set <id> [HH:MM:SS]",
	"seat:reset <id>",
	"totals:recompute",
}

// ─── async messages ───────────────────────────────────────────────────────────

// BoardMsg is sent by the live ticker through the program.
type BoardMsg struct {
	Board timelinedto.BoardOutput
}

type sessionLoadedMsg struct {
	verb string
	out  timelinedto.SessionOutput
	err  error
}

type savedMsg struct {
	out timelinedto.SaveOutput
	err error
}

type exportedMsg struct {
	out timelinedto.ExportOutput
	err error
}

// ─── key bindings ─────────────────────────────────────────────────────────────

type keyMap struct {
	Tab     key.Binding
	Help    key.Binding
	Palette key.Binding
	Quit    key.Binding
	Save    key.Binding
	Export  key.Binding
	Reload  key.Binding
	Record  key.Binding
	Edit    key.Binding
	Clear   key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
		Save:    key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		Export:  key.NewBinding(key.WithKeys("ctrl+e"), key.WithHelp("ctrl+e", "export report")),
		Reload:  key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "reload")),
		Record:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "record / calculate")),
		Edit:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit value")),
		Clear:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear / reset")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Help, k.Palette, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.Record, k.Edit, k.Clear},
		{k.Save, k.Export, k.Reload},
		{k.Help, k.Palette, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. It owns tab routing, the working
// session commands, the help overlay and the command palette. Rendering of
// each tab is delegated to its sub-view.
type Model struct {
	session  sessionPort
	timeline timelinePort

	timelineView timelineview.Model
	archiveView  archiveview.Model

	activeTab tabID
	keys      keyMap
	help      help.Model
	showHelp  bool
	palette   components.Palette
	quitArmed bool
	status    string
	width     int
	height    int
}

// ─── constructor ─────────────────────────────────────────────────────────────

func NewModel(session sessionPort, timeline timelinePort, archive archivePort) Model {
	return Model{
		session:      session,
		timeline:     timeline,
		timelineView: timelineview.New(timeline),
		archiveView:  archiveview.New(archive),
		activeTab:    tabTimeline,
		keys:         defaultKeys(),
		help:         help.New(),
		palette:      components.NewPalette(paletteHints),
		status:       "ready",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.archiveView.Init(),
		m.resumeCmd(),
	)
}

// ─── update ───────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// Ticks keep arriving while the palette is open.
	switch board := msg.(type) {
	case BoardMsg:
		m.timelineView.SetBoard(board.Board)
		return m, nil
	case timelineview.BoardMsg:
		m.timelineView.SetBoard(board.Board)
		return m, nil
	}

	if m.palette.Visible() {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		m.propagateSize()
		return m, nil

	case sessionLoadedMsg:
		switch {
		case errors.Is(msg.err, apperrors.ErrNoCurrentSession):
			m.status = "no current session, use :session:new <number>"
		case errors.Is(msg.err, apperrors.ErrUnsavedChanges):
			m.status = msg.verb + " blocked: unsaved changes (save first, or use session:open!)"
		case msg.err != nil:
			m.status = msg.verb + " failed: " + msg.err.Error()
		default:
			m.timelineView.SetBoard(msg.out.Board)
			m.activeTab = tabTimeline
			m.status = fmt.Sprintf("%s %s", msg.verb, msg.out.SessionID)
			if msg.out.Created {
				m.status += " (new)"
			}
			if n := len(msg.out.Problems); n > 0 {
				m.status += fmt.Sprintf(", %d corrupted values ignored", n)
			}
		}
		return m, nil

	case savedMsg:
		if msg.err != nil {
			m.status = "save failed: " + msg.err.Error()
			return m, nil
		}
		m.status = "saved " + msg.out.SessionID
		if !msg.out.Clean {
			m.status += " (changed while saving)"
		}
		return m, tea.Batch(m.timelineView.Init(), m.archiveView.Refresh())

	case exportedMsg:
		if msg.err != nil {
			m.status = "export failed: " + msg.err.Error()
		} else {
			m.status = "report written to " + msg.out.Path
		}
		return m, nil

	case timelineview.ActionMsg:
		if msg.Err != nil {
			m.status = msg.Err.Error()
		} else {
			m.status = msg.Status
		}
		var cmd tea.Cmd
		m.timelineView, cmd = m.timelineView.Update(msg)
		return m, cmd

	case timelineview.EditRequestMsg:
		return m, m.palette.OpenWith(msg.Command)

	case archiveview.OpenRequestMsg:
		return m, m.openCmd(msg.SessionID, false)

	case archiveview.DeletedMsg:
		if msg.Err != nil {
			m.status = "delete failed: " + msg.Err.Error()
		} else {
			m.status = "deleted " + msg.SessionID
		}
		var cmd tea.Cmd
		m.archiveView, cmd = m.archiveView.Update(msg)
		return m, cmd

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"
		return m, nil

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}

		if m.activeTab == tabArchive && m.archiveView.Filtering() {
			break
		}

		if msg.String() != "q" {
			m.quitArmed = false
		}
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "q":
			if m.timelineView.Board().Dirty && !m.quitArmed {
				m.quitArmed = true
				m.status = "unsaved changes: ctrl+s to save, q again to quit"
				return m, nil
			}
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case "shift+tab":
			m.activeTab = (m.activeTab + tabCount - 1) % tabCount
			return m, nil
		case "?":
			m.showHelp = !m.showHelp
			return m, nil
		case ":":
			return m, m.palette.Open()
		case "ctrl+s":
			return m, m.saveCmd()
		case "ctrl+e":
			return m, m.exportCmd()
		case "ctrl+r":
			return m, m.reloadCmd()
		}
	}

	var tabCmd tea.Cmd
	switch m.activeTab {
	case tabTimeline:
		m.timelineView, tabCmd = m.timelineView.Update(msg)
	case tabArchive:
		m.archiveView, tabCmd = m.archiveView.Update(msg)
	}
	cmds = append(cmds, tabCmd)

	return m, tea.Batch(cmds...)
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	tabBar := m.renderTabBar()
	statusBar := m.renderStatusBar()
	contentH := m.height - lipgloss.Height(tabBar) - lipgloss.Height(statusBar)
	if contentH < 1 {
		contentH = 1
	}

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).
			Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH,
			lipgloss.Center, lipgloss.Center, m.palette.View())
	case m.activeTab == tabArchive:
		content = m.archiveView.View()
	default:
		content = m.timelineView.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, tabBar, content, statusBar)
}

func (m Model) renderTabBar() string {
	parts := make([]string, tabCount)
	for i := tabID(0); i < tabCount; i++ {
		label := tabLabels[i]
		if i == m.activeTab {
			parts[i] = theme.Hot.Render(" " + label + " ")
		} else {
			parts[i] = theme.Muted.Render(" " + label + " ")
		}
	}
	sep := theme.Muted.Render(" │ ")
	bar := "chamberlog  " + strings.Join(parts, sep)
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := m.status
	if id := m.timelineView.Board().SessionID; id != "" {
		marker := "○ "
		if m.timelineView.Board().Dirty {
			marker = "● "
		}
		left = theme.Hot.Render(marker+id) + "  " + left
	}
	right := theme.Muted.Render("?:help  tab:switch  :::palette  q:quit")
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

// ─── palette execution ────────────────────────────────────────────────────────

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	if strings.TrimSpace(input) == "" {
		return m, nil
	}
	parts := strings.Fields(input)
	arg := func(i int) string {
		if i < len(parts) {
			return parts[i]
		}
		return ""
	}

	switch parts[0] {
	case "session:new":
		if len(parts) < 2 {
			m.status = "usage: session:new <number|id>"
			return m, nil
		}
		if n, err := strconv.Atoi(parts[1]); err == nil {
			return m, m.newSessionCmd("", n)
		}
		return m, m.newSessionCmd(parts[1], 0)

	case "session:open", "session:open!":
		if len(parts) < 2 {
			m.status = "usage: session:open <id>"
			return m, nil
		}
		return m, m.openCmd(parts[1], parts[0] == "session:open!")

	case "session:reload":
		return m, m.reloadCmd()

	case "session:save":
		return m, m.saveCmd()

	case "session:export":
		return m, m.exportCmd()

	case "event:record", "event:clear", "seat:calc", "seat:reset":
		if len(parts) < 2 {
			m.status = "usage: " + parts[0] + " <key>"
			return m, nil
		}
		return m, m.actionCmd(parts[0], parts[1], "")

	case "event:set", "seat:set":
		if len(parts) < 2 {
			m.status = "usage: " + parts[0] + " <key> [HH:MM:SS]"
			return m, nil
		}
		return m, m.actionCmd(parts[0], parts[1], arg(2))

	case "totals:recompute":
		return m, m.recomputeCmd()

	default:
		m.status = "unknown command: " + parts[0]
	}
	return m, nil
}

// ─── helpers ─────────────────────────────────────────────────────────────────

func (m *Model) propagateSize() {
	sz := tea.WindowSizeMsg{Width: m.width, Height: m.height - 3}
	m.timelineView, _ = m.timelineView.Update(sz)
	m.archiveView, _ = m.archiveView.Update(sz)
}

// ─── async commands ───────────────────────────────────────────────────────────

func (m Model) resumeCmd() tea.Cmd {
	return func() tea.Msg {
		out, err := m.session.Resume(context.Background())
		return sessionLoadedMsg{verb: "resumed", out: out, err: err}
	}
}

func (m Model) newSessionCmd(sessionID string, number int) tea.Cmd {
	return func() tea.Msg {
		out, err := m.session.NewSession(context.Background(), sessionID, number, false)
		return sessionLoadedMsg{verb: "started", out: out, err: err}
	}
}

func (m Model) openCmd(sessionID string, force bool) tea.Cmd {
	return func() tea.Msg {
		out, err := m.session.Open(context.Background(), sessionID, force)
		return sessionLoadedMsg{verb: "opened", out: out, err: err}
	}
}

func (m Model) reloadCmd() tea.Cmd {
	return func() tea.Msg {
		out, err := m.session.Reload(context.Background())
		return sessionLoadedMsg{verb: "reloaded", out: out, err: err}
	}
}

func (m Model) saveCmd() tea.Cmd {
	return func() tea.Msg {
		out, err := m.session.Save(context.Background())
		return savedMsg{out: out, err: err}
	}
}

func (m Model) exportCmd() tea.Cmd {
	return func() tea.Msg {
		out, err := m.session.Export(context.Background())
		return exportedMsg{out: out, err: err}
	}
}

func (m Model) recomputeCmd() tea.Cmd {
	return func() tea.Msg {
		board, err := m.timeline.Recompute(context.Background())
		return timelineview.ActionMsg{Board: board, Status: "totals recomputed", Err: err}
	}
}

func (m Model) actionCmd(command, target, value string) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		switch command {
		case "event:record":
			out, err := m.timeline.RecordEvent(ctx, target)
			return timelineview.ActionMsg{Board: out.Board, Status: target + " " + out.Row.Value, Err: err}
		case "event:set":
			out, err := m.timeline.SetEvent(ctx, target, value)
			return timelineview.ActionMsg{Board: out.Board, Status: target + " " + out.Row.Value, Err: err}
		case "event:clear":
			out, err := m.timeline.ClearEvent(ctx, target)
			return timelineview.ActionMsg{Board: out.Board, Status: target + " cleared", Err: err}
		case "seat:calc":
			out, err := m.timeline.CalculateParticipant(ctx, target)
			return timelineview.ActionMsg{Board: out.Board, Status: "seat " + target + " " + out.Row.Value, Err: err}
		case "seat:set":
			out, err := m.timeline.SetParticipant(ctx, target, value)
			return timelineview.ActionMsg{Board: out.Board, Status: "seat " + target + " " + out.Row.Value, Err: err}
		default:
			out, err := m.timeline.ResetParticipant(ctx, target)
			return timelineview.ActionMsg{Board: out.Board, Status: "seat " + target + " reset", Err: err}
		}
	}
}
