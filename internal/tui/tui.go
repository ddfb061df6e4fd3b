package tui

import (
	"taskboard/internal/kanban"

	tea "github.com/charmbracelet/bubbletea"
)

// RunBoardTUI opens the interactive board and blocks until it is closed.
// Pending moves are awaited before returning.
func RunBoardTUI(board *kanban.Board) error {
	p := tea.NewProgram(NewBoardModel(board), tea.WithAltScreen())
	_, err := p.Run()
	board.Wait()
	return err
}
