package archive

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	archivedto "chamberlog/internal/modules/archive/dto"
	"chamberlog/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type ArchivePort interface {
	List(ctx context.Context, query string) ([]archivedto.SummaryOutput, error)
	Delete(ctx context.Context, sessionID string) error
}

// ─── messages ────────────────────────────────────────────────────────────────

type SessionsLoadedMsg struct {
	Sessions []archivedto.SummaryOutput
	Err      error
}

// OpenRequestMsg asks the root model to open an archived session.
type OpenRequestMsg struct {
	SessionID string
}

type DeletedMsg struct {
	SessionID string
	Err       error
}

// ─── list item ───────────────────────────────────────────────────────────────

type sessionItem struct {
	summary archivedto.SummaryOutput
}

func (i sessionItem) Title() string { return i.summary.SessionID }
func (i sessionItem) Description() string {
	saved := "never saved"
	if !i.summary.SavedAt.IsZero() {
		saved = i.summary.SavedAt.Local().Format("2006-01-02 15:04")
	}
	return fmt.Sprintf("%s  %d events  %d seats", saved, i.summary.EventCount, i.summary.ParticipantCount)
}
func (i sessionItem) FilterValue() string { return i.summary.SessionID }

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port    ArchivePort
	list    list.Model
	pending string
	width   int
	height  int
}

func New(port ArchivePort) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Archive"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)
	return Model{port: port, list: l}
}

func (m Model) Init() tea.Cmd {
	return m.Refresh()
}

// Filtering reports whether the list filter is taking keystrokes.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width-2, msg.Height-4)

	case SessionsLoadedMsg:
		if msg.Err != nil {
			m.list.Title = "Archive: " + msg.Err.Error()
			return m, nil
		}
		m.list.Title = "Archive"
		items := make([]list.Item, len(msg.Sessions))
		for i, s := range msg.Sessions {
			items[i] = sessionItem{summary: s}
		}
		return m, m.list.SetItems(items)

	case DeletedMsg:
		m.pending = ""
		if msg.Err != nil {
			return m, nil
		}
		return m, m.Refresh()

	case tea.KeyMsg:
		if m.Filtering() {
			break
		}
		switch msg.String() {
		case "enter":
			if id, ok := m.selected(); ok {
				return m, func() tea.Msg { return OpenRequestMsg{SessionID: id} }
			}
			return m, nil
		case "r":
			return m, m.Refresh()
		case "D":
			id, ok := m.selected()
			if !ok {
				return m, nil
			}
			if m.pending != id {
				m.pending = id
				return m, nil
			}
			return m, m.deleteCmd(id)
		case "esc":
			m.pending = ""
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	var sb strings.Builder
	sb.WriteString(m.list.View())
	sb.WriteString("\n")
	if m.pending != "" {
		sb.WriteString(theme.Hot.Render("press D again to delete " + m.pending + " for good, esc to keep it"))
	} else {
		sb.WriteString(theme.Muted.Render("enter:open  r:refresh  D:delete  /:filter"))
	}
	return sb.String()
}

// Refresh reloads the listing from the index.
func (m Model) Refresh() tea.Cmd {
	return func() tea.Msg {
		sessions, err := m.port.List(context.Background(), "")
		return SessionsLoadedMsg{Sessions: sessions, Err: err}
	}
}

func (m Model) selected() (string, bool) {
	item, ok := m.list.SelectedItem().(sessionItem)
	if !ok {
		return "", false
	}
	return item.summary.SessionID, true
}

func (m Model) deleteCmd(id string) tea.Cmd {
	return func() tea.Msg {
		err := m.port.Delete(context.Background(), id)
		return DeletedMsg{SessionID: id, Err: err}
	}
}
