package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/blueprint/pkg/depgraph"
	"github.com/matzehuels/blueprint/pkg/errors"
	"github.com/matzehuels/blueprint/pkg/pipeline"
	"github.com/matzehuels/blueprint/pkg/poll"
	"github.com/matzehuels/blueprint/pkg/projection"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	exceptionStyle    = lipgloss.NewStyle().Foreground(colorRed).PaddingLeft(4)
)

// =============================================================================
// WatchModel - Live execution view
// =============================================================================

type (
	watchUpdateMsg poll.Update[*pipeline.ExecutionView]
	watchDoneMsg   struct{}
)

// WatchModel is the bubbletea model of "execution watch". It renders the
// latest polled snapshot; the cursor picks the inspected job.
type WatchModel struct {
	Latest *pipeline.ExecutionView
	Err    error
	Cursor int
	Done   bool

	updates <-chan poll.Update[*pipeline.ExecutionView]
}

// NewWatchModel creates a model fed by a poll.Watch channel.
func NewWatchModel(updates <-chan poll.Update[*pipeline.ExecutionView]) WatchModel {
	return WatchModel{updates: updates}
}

func waitForUpdate(ch <-chan poll.Update[*pipeline.ExecutionView]) tea.Cmd {
	return func() tea.Msg {
		u, ok := <-ch
		if !ok {
			return watchDoneMsg{}
		}
		return watchUpdateMsg(u)
	}
}

func (m WatchModel) Init() tea.Cmd {
	return waitForUpdate(m.updates)
}

func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case watchUpdateMsg:
		if msg.Err != nil {
			m.Err = msg.Err
		} else {
			m.Latest, m.Err = msg.Value, nil
			if n := len(m.nodes()); m.Cursor >= n {
				m.Cursor = max(n-1, 0)
			}
		}
		return m, waitForUpdate(m.updates)
	case watchDoneMsg:
		m.Done = true
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.nodes())-1 {
				m.Cursor++
			}
		}
	}
	return m, nil
}

func (m WatchModel) nodes() []projection.Node {
	if m.Latest == nil || m.Latest.Projection == nil {
		return nil
	}
	return m.Latest.Projection.Nodes
}

// Inspected returns the node under the cursor.
func (m WatchModel) Inspected() (projection.Node, bool) {
	nodes := m.nodes()
	if m.Cursor < 0 || m.Cursor >= len(nodes) {
		return projection.Node{}, false
	}
	return nodes[m.Cursor], true
}

func (m WatchModel) View() string {
	var b strings.Builder

	if m.Latest == nil {
		if m.Err != nil {
			b.WriteString(styleIconError.Render(iconError) + " " + errors.UserMessage(m.Err) + "\n")
		} else {
			b.WriteString(listDimStyle.Render("Waiting for the execution service...") + "\n")
		}
		return b.String()
	}

	p := m.Latest.Projection
	b.WriteString(StyleTitle.Render("Execution "+p.ExecutionID) + "  ")
	b.WriteString(statusIcon(p.Status) + " " + statusStyle(p.Status).Render(p.Term))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(summaryLine(p.Summary)))
	b.WriteString("\n\n")

	for i, n := range p.Nodes {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		icon := " "
		var status string
		if n.HasStatus() {
			icon = statusIcon(*n.Status)
			status = n.Term
		}
		line := fmt.Sprintf("%s%s %-28s %s", cursor, icon, m.label(n.ID), listDimStyle.Render(status))
		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
		if i == m.Cursor && n.Exception != "" {
			b.WriteString(exceptionStyle.Render(n.Exception))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	if m.Err != nil {
		b.WriteString(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(errors.UserMessage(m.Err)) + "\n")
	}
	switch {
	case m.Done && m.Err != nil:
		b.WriteString(listDimStyle.Render("Watch stopped. q quit"))
	case m.Done:
		b.WriteString(listDimStyle.Render("Execution finished. q quit"))
	default:
		b.WriteString(listDimStyle.Render("↑/↓ inspect  q quit"))
	}
	b.WriteString("\n")
	return b.String()
}

// label returns the notebook path of a node, falling back to its id.
func (m WatchModel) label(id string) string {
	if m.Latest.Graph != nil {
		if n, ok := m.Latest.Graph.Node(id); ok {
			if path, ok := n.Meta[depgraph.MetaPath].(string); ok && path != "" {
				return path
			}
		}
	}
	return id
}

// summaryLine formats job counts, omitting empty statuses.
func summaryLine(s projection.Summary) string {
	parts := []string{fmt.Sprintf("%d jobs", s.Total)}
	for _, c := range []struct {
		n    int
		name string
	}{
		{s.Running, "running"},
		{s.Ready, "waiting"},
		{s.Done, "done"},
		{s.Failed, "failed"},
		{s.Cancelled, "cancelled"},
	} {
		if c.n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", c.n, c.name))
		}
	}
	return strings.Join(parts, " · ")
}
