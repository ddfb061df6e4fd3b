package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"taskboard/internal/kanban"
	"taskboard/internal/model"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type boardLoadedMsg struct {
	err error
}

type commitDoneMsg struct {
	move kanban.Move
	err  error
}

// BoardModel drives a kanban.Board from the keyboard. The cursor picks a
// task; while dragging, cursor moves become hovers over the task or column
// under it.
type BoardModel struct {
	board *kanban.Board
	snap  *model.Board

	col, row int
	detail   *model.Task

	width  int
	height int

	status string
	err    error
}

func NewBoardModel(board *kanban.Board) BoardModel {
	return BoardModel{board: board, status: "Loading board..."}
}

func (m BoardModel) Init() tea.Cmd {
	return m.load()
}

func (m BoardModel) load() tea.Cmd {
	board := m.board
	return func() tea.Msg {
		return boardLoadedMsg{err: board.Load(context.Background())}
	}
}

func (m BoardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case boardLoadedMsg:
		m.err = msg.err
		if msg.err != nil {
			m.status = "Failed to load board"
		} else {
			m.status = ""
		}
		m = m.sync()
		return m, nil

	case commitDoneMsg:
		if msg.err != nil {
			m.err = msg.err
			m.status = "Move failed, board reloaded"
		} else {
			m.err = nil
			m.status = fmt.Sprintf("Moved to %s #%d", msg.move.ColumnID, msg.move.Position+1)
		}
		m = m.sync()
		return m, nil

	case tea.KeyMsg:
		if m.detail != nil {
			switch msg.String() {
			case "esc", "enter", "q":
				m.detail = nil
			case "ctrl+c":
				return m, tea.Quit
			}
			return m, nil
		}
		if m.board.State() == kanban.StateDragging {
			return m.dragKeys(msg)
		}
		return m.idleKeys(msg)
	}
	return m, nil
}

func (m BoardModel) idleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "left", "h":
		m.col--
	case "right", "l":
		m.col++
	case "up", "k":
		m.row--
	case "down", "j":
		m.row++
	case "r":
		m.status = "Refreshing..."
		return m, m.load()
	case "enter":
		if task, ok := m.selected(); ok {
			full, err := m.board.TaskClicked(task.ID)
			if err == nil {
				m.detail = &full
			}
		}
		return m, nil
	case " ", "space":
		task, ok := m.selected()
		if !ok {
			return m, nil
		}
		if err := m.board.DragStart(task.ID); err != nil {
			m.err = err
			if errors.Is(err, kanban.ErrReadOnly) {
				m.status = "Board is read-only"
			}
			return m, nil
		}
		m.err = nil
		m.status = "Dragging " + task.Title
		return m.sync(), nil
	}
	m = m.clamp()
	return m, nil
}

func (m BoardModel) dragKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.board.Cancel()
		return m, tea.Quit
	case "esc", "q":
		m.board.Cancel()
		m.status = "Drag cancelled"
		return m.sync(), nil
	case "left", "h":
		return m.hover(m.col-1, m.row), nil
	case "right", "l":
		return m.hover(m.col+1, m.row), nil
	case "up", "k":
		return m.hover(m.col, m.row-1), nil
	case "down", "j":
		return m.hover(m.col, m.row+1), nil
	case " ", "space", "enter":
		s, ok := m.board.Session()
		if !ok {
			return m, nil
		}
		if s.OverID == "" {
			m.board.Cancel()
			m.status = ""
			return m.sync(), nil
		}
		commit, err := m.board.Drop(context.Background(), s.OverID)
		if err != nil {
			m.err = err
			return m.sync(), nil
		}
		m.status = "Saving..."
		m = m.sync()
		if commit == nil {
			return m, nil
		}
		return m, func() tea.Msg {
			return commitDoneMsg{move: commit.Move, err: commit.Wait()}
		}
	}
	return m, nil
}

// hover targets the task at (col, row), or the column itself when the row
// is past its last task.
func (m BoardModel) hover(col, row int) BoardModel {
	if m.snap == nil || col < 0 || col >= len(m.snap.Columns) || row < 0 {
		return m
	}
	column := m.snap.Columns[col]
	target := column.ID
	if row < len(column.Tasks) {
		target = column.Tasks[row].ID
	}
	if _, err := m.board.DragOver(target); err != nil {
		m.err = err
	}
	return m.sync()
}

// sync re-reads the board and keeps the cursor on the dragged task.
func (m BoardModel) sync() BoardModel {
	m.snap = m.board.Snapshot()
	if s, ok := m.board.Session(); ok && m.snap != nil {
		for ci, c := range m.snap.Columns {
			if ri := c.IndexOf(s.ActiveID); ri >= 0 {
				m.col, m.row = ci, ri
			}
		}
	}
	return m.clamp()
}

func (m BoardModel) clamp() BoardModel {
	if m.snap == nil || len(m.snap.Columns) == 0 {
		m.col, m.row = 0, 0
		return m
	}
	m.col = max(0, min(m.col, len(m.snap.Columns)-1))
	m.row = max(0, min(m.row, len(m.snap.Columns[m.col].Tasks)-1))
	return m
}

func (m BoardModel) selected() (model.Task, bool) {
	if m.snap == nil || m.col >= len(m.snap.Columns) {
		return model.Task{}, false
	}
	tasks := m.snap.Columns[m.col].Tasks
	if m.row >= len(tasks) {
		return model.Task{}, false
	}
	return tasks[m.row], true
}

func (m BoardModel) View() string {
	if m.snap == nil {
		if m.err != nil {
			return lipgloss.NewStyle().Foreground(lipgloss.Color(ColorError)).
				Render(fmt.Sprintf("❌ %s: %v\n\nr: retry • q: quit", m.status, m.err))
		}
		return m.status
	}
	if m.detail != nil {
		return m.renderDetail(*m.detail)
	}

	activeID := ""
	if s, ok := m.board.Session(); ok {
		activeID = s.ActiveID
	}

	cols := make([]string, 0, len(m.snap.Columns))
	for ci, c := range m.snap.Columns {
		cols = append(cols, m.renderColumn(ci, c, activeID))
	}

	var b strings.Builder
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cols...))
	b.WriteString("\n")
	b.WriteString(m.renderFooter(activeID != ""))
	return b.String()
}

func (m BoardModel) renderColumn(ci int, c model.Column, activeID string) string {
	width := 28
	if m.width > 0 && len(m.snap.Columns) > 0 {
		width = max(20, m.width/len(m.snap.Columns)-2)
	}

	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(c.Color)).
		Render(fmt.Sprintf("%s (%d)", c.Name, len(c.Tasks)))

	lines := []string{header}
	for ri, t := range c.Tasks {
		lines = append(lines, m.renderCard(t, ci == m.col && ri == m.row, t.ID == activeID, width-4))
	}
	if len(c.Tasks) == 0 {
		lines = append(lines, lipgloss.NewStyle().Foreground(lipgloss.Color(ColorHelpText)).Render("No tasks"))
	}

	return lipgloss.NewStyle().
		Width(width).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorBorder)).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))
}

func (m BoardModel) renderCard(t model.Task, cursor, dragging bool, width int) string {
	title := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPrimaryText)).Render(t.Title)
	meta := []string{
		lipgloss.NewStyle().Foreground(lipgloss.Color(priorityColors[string(t.Priority)])).Render(string(t.Priority)),
	}
	if t.DueDate != nil {
		meta = append(meta, t.DueDate.Format("Jan 2"))
	}
	if len(t.Subtasks) > 0 {
		meta = append(meta, fmt.Sprintf("☑ %d/%d", t.CompletedSubtasks(), len(t.Subtasks)))
	}
	if t.CommentCount > 0 {
		meta = append(meta, fmt.Sprintf("💬 %d", t.CommentCount))
	}
	metaLine := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSecondaryText)).Render(strings.Join(meta, " · "))

	style := lipgloss.NewStyle().Width(width).Border(lipgloss.NormalBorder())
	switch {
	case dragging:
		style = style.BorderForeground(lipgloss.Color(ColorAccentBright)).Bold(true)
	case cursor:
		style = style.BorderForeground(lipgloss.Color(ColorAccentMain))
	default:
		style = style.BorderForeground(lipgloss.Color(ColorBorder))
	}
	return style.Render(title + "\n" + metaLine)
}

func (m BoardModel) renderDetail(t model.Task) string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(t.Title))
	b.WriteString("\n\n")
	if t.Description != "" {
		b.WriteString(t.Description + "\n\n")
	}
	fmt.Fprintf(&b, "Priority: %s\n", t.Priority)
	if t.DueDate != nil {
		fmt.Fprintf(&b, "Due: %s\n", t.DueDate.Format("2006-01-02"))
	}
	if len(t.Assignees) > 0 {
		names := make([]string, 0, len(t.Assignees))
		for _, u := range t.Assignees {
			names = append(names, u.DisplayName())
		}
		fmt.Fprintf(&b, "Assignees: %s\n", strings.Join(names, ", "))
	}
	if len(t.Labels) > 0 {
		names := make([]string, 0, len(t.Labels))
		for _, l := range t.Labels {
			names = append(names, l.Name)
		}
		fmt.Fprintf(&b, "Labels: %s\n", strings.Join(names, ", "))
	}
	for _, s := range t.Subtasks {
		mark := "☐"
		if s.IsCompleted {
			mark = "☑"
		}
		fmt.Fprintf(&b, "  %s %s\n", mark, s.Title)
	}
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(ColorHelpText)).Render("esc: back"))
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorAccentMain)).
		Padding(1, 2).
		Render(b.String())
}

func (m BoardModel) renderFooter(dragging bool) string {
	help := "←↓↑→: select • space: drag • enter: open • r: refresh • q: quit"
	if dragging {
		help = "←↓↑→: move • space/enter: drop • esc: cancel"
	}
	footer := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorHelpText)).Render(help)

	switch {
	case m.err != nil:
		footer += "\n" + lipgloss.NewStyle().Foreground(lipgloss.Color(ColorError)).Render("❌ "+m.err.Error())
	case m.status != "":
		footer += "\n" + lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSuccess)).Render(m.status)
	}
	return footer
}
