package model

// Board is the full ordered set of columns and tasks of one project.
type Board struct {
	ProjectID string   `json:"projectId"`
	Columns   []Column `json:"columns"`
}

// Clone returns a deep copy so callers can never alias store state.
func (b *Board) Clone() *Board {
	if b == nil {
		return nil
	}
	out := &Board{ProjectID: b.ProjectID}
	if b.Columns != nil {
		out.Columns = make([]Column, len(b.Columns))
		for i := range b.Columns {
			out.Columns[i] = b.Columns[i].Clone()
		}
	}
	return out
}

// TaskCount returns the number of tasks across all columns.
func (b *Board) TaskCount() int {
	n := 0
	for _, c := range b.Columns {
		n += len(c.Tasks)
	}
	return n
}
