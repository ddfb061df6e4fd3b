package model

type Column struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Color    string `json:"color"`
	Position int    `json:"position"`
	Tasks    []Task `json:"tasks"`
}

// IndexOf returns the index of the task in the column, or -1.
func (c *Column) IndexOf(taskID string) int {
	for i := range c.Tasks {
		if c.Tasks[i].ID == taskID {
			return i
		}
	}
	return -1
}

func (c Column) Clone() Column {
	out := c
	if c.Tasks != nil {
		out.Tasks = make([]Task, len(c.Tasks))
		for i := range c.Tasks {
			out.Tasks[i] = c.Tasks[i].Clone()
		}
	}
	return out
}
