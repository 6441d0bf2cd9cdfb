package timeline

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	timelinedto "chamberlog/internal/modules/timeline/dto"
	"chamberlog/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type TimelinePort interface {
	Board(ctx context.Context) (timelinedto.BoardOutput, error)
	RecordEvent(ctx context.Context, key string) (timelinedto.EventOutput, error)
	ClearEvent(ctx context.Context, key string) (timelinedto.EventOutput, error)
	CalculateParticipant(ctx context.Context, id string) (timelinedto.ParticipantOutput, error)
	ResetParticipant(ctx context.Context, id string) (timelinedto.ParticipantOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

// BoardMsg carries a refreshed board, from a live tick or a session load.
type BoardMsg struct {
	Board timelinedto.BoardOutput
}

// ActionMsg is the result of an operator action on the board.
type ActionMsg struct {
	Board  timelinedto.BoardOutput
	Status string
	Err    error
}

// EditRequestMsg asks the root model to open the palette pre-filled with a
// set command for the selected row.
type EditRequestMsg struct {
	Command string
}

// ─── model ───────────────────────────────────────────────────────────────────

type pane int

const (
	paneEvents pane = iota
	paneParticipants
)

type Model struct {
	port    TimelinePort
	board   timelinedto.BoardOutput
	focus   pane
	cursors [2]int
	width   int
	height  int
}

func New(port TimelinePort) Model {
	return Model{port: port}
}

func (m Model) Init() tea.Cmd {
	return m.loadBoardCmd()
}

func (m Model) Board() timelinedto.BoardOutput { return m.board }

// SetBoard replaces the displayed board, keeping cursors in range.
func (m *Model) SetBoard(board timelinedto.BoardOutput) {
	m.board = board
	m.clampCursors()
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case BoardMsg:
		m.SetBoard(msg.Board)

	case ActionMsg:
		if msg.Board.SessionID != "" || len(msg.Board.Events) > 0 {
			m.SetBoard(msg.Board)
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			m.move(-1)
		case "down", "j":
			m.move(1)
		case "left", "h":
			m.focus = paneEvents
		case "right", "l":
			m.focus = paneParticipants
		case "enter", " ":
			return m, m.primaryCmd()
		case "x", "backspace":
			return m, m.clearCmd()
		case "e":
			return m, m.editCmd()
		}
	}
	return m, nil
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	eventsPane := m.paneStyle(paneEvents).Render(m.renderEvents())
	totalsPane := theme.Pane.Render(m.renderTotals())
	participantsPane := m.paneStyle(paneParticipants).Render(m.renderParticipants())
	body := lipgloss.JoinHorizontal(lipgloss.Top, eventsPane, " ", totalsPane, " ", participantsPane)
	hint := theme.Muted.Render("enter:record/calc  x:clear/reset  e:edit  ←/→:pane  ctrl+s:save")
	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), body, hint)
}

func (m Model) renderHeader() string {
	if m.board.SessionID == "" {
		return theme.Muted.Render("no session open, try :session:new <number>") + "\n"
	}
	parts := []string{theme.Title.Render("Session " + m.board.SessionID)}
	if m.board.Dirty {
		parts = append(parts, theme.Hot.Render("● unsaved"))
	}
	reference := "reference " + m.board.Reference
	if !m.board.ReferenceSet {
		reference += " not recorded"
	}
	parts = append(parts, theme.Muted.Render(reference))
	if m.board.Running {
		parts = append(parts, theme.Value("", true).Render("live"))
	}
	return strings.Join(parts, "  ") + "\n"
}

func (m Model) renderEvents() string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Events") + "\n")
	for i, row := range m.board.Events {
		line := fmt.Sprintf("%-18s %s", truncate(row.Label, 18), theme.Value(row.Style, false).Render(row.Value))
		sb.WriteString(m.cursorLine(paneEvents, i, line) + "\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (m Model) renderTotals() string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Durations") + "\n")
	for _, row := range m.board.Totals {
		tag := "unset"
		if row.Available {
			tag = "recorded"
		}
		sb.WriteString(fmt.Sprintf("%-18s %s\n", truncate(row.Label, 18), theme.Value(tag, false).Render(row.Value)))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (m Model) renderParticipants() string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Seats") + "\n")
	for i, row := range m.board.Participants {
		line := fmt.Sprintf("Seat %-4s %s", row.ID, theme.Value(row.Style, row.Live).Render(row.Value))
		sb.WriteString(m.cursorLine(paneParticipants, i, line) + "\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (m Model) cursorLine(p pane, i int, line string) string {
	if m.focus == p && m.cursors[p] == i {
		return theme.Cursor.Render("› " + line)
	}
	return "  " + line
}

func (m Model) paneStyle(p pane) lipgloss.Style {
	if m.focus == p {
		return theme.PaneActive
	}
	return theme.Pane
}

// ─── helpers ─────────────────────────────────────────────────────────────────

func (m *Model) move(delta int) {
	m.cursors[m.focus] += delta
	m.clampCursors()
}

func (m *Model) clampCursors() {
	sizes := [2]int{len(m.board.Events), len(m.board.Participants)}
	for p, size := range sizes {
		switch {
		case size == 0:
			m.cursors[p] = 0
		case m.cursors[p] >= size:
			m.cursors[p] = size - 1
		case m.cursors[p] < 0:
			m.cursors[p] = 0
		}
	}
}

func (m Model) selectedEvent() (timelinedto.EventRow, bool) {
	i := m.cursors[paneEvents]
	if i < 0 || i >= len(m.board.Events) {
		return timelinedto.EventRow{}, false
	}
	return m.board.Events[i], true
}

func (m Model) selectedParticipant() (timelinedto.ParticipantRow, bool) {
	i := m.cursors[paneParticipants]
	if i < 0 || i >= len(m.board.Participants) {
		return timelinedto.ParticipantRow{}, false
	}
	return m.board.Participants[i], true
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// ─── async commands ───────────────────────────────────────────────────────────

func (m Model) loadBoardCmd() tea.Cmd {
	return func() tea.Msg {
		board, err := m.port.Board(context.Background())
		if err != nil {
			return ActionMsg{Err: err}
		}
		return BoardMsg{Board: board}
	}
}

func (m Model) primaryCmd() tea.Cmd {
	if m.board.SessionID == "" {
		return nil
	}
	if m.focus == paneEvents {
		row, ok := m.selectedEvent()
		if !ok {
			return nil
		}
		return func() tea.Msg {
			out, err := m.port.RecordEvent(context.Background(), row.Key)
			return ActionMsg{Board: out.Board, Status: row.Label + " " + out.Row.Value, Err: err}
		}
	}
	row, ok := m.selectedParticipant()
	if !ok {
		return nil
	}
	return func() tea.Msg {
		out, err := m.port.CalculateParticipant(context.Background(), row.ID)
		return ActionMsg{Board: out.Board, Status: "seat " + row.ID + " " + out.Row.Value, Err: err}
	}
}

func (m Model) clearCmd() tea.Cmd {
	if m.board.SessionID == "" {
		return nil
	}
	if m.focus == paneEvents {
		row, ok := m.selectedEvent()
		if !ok {
			return nil
		}
		return func() tea.Msg {
			out, err := m.port.ClearEvent(context.Background(), row.Key)
			return ActionMsg{Board: out.Board, Status: row.Label + " cleared", Err: err}
		}
	}
	row, ok := m.selectedParticipant()
	if !ok {
		return nil
	}
	return func() tea.Msg {
		out, err := m.port.ResetParticipant(context.Background(), row.ID)
		return ActionMsg{Board: out.Board, Status: "seat " + row.ID + " reset", Err: err}
	}
}

func (m Model) editCmd() tea.Cmd {
	if m.board.SessionID == "" {
		return nil
	}
	var command string
	if m.focus == paneEvents {
		row, ok := m.selectedEvent()
		if !ok {
			return nil
		}
		command = "event:set " + row.Key + " " + row.Value
	} else {
		row, ok := m.selectedParticipant()
		if !ok {
			return nil
		}
		command = "seat:set " + row.ID + " " + row.Value
	}
	return func() tea.Msg { return EditRequestMsg{Command: command} }
}
