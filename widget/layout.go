package widget

// Layout describes how the dashboard grid is arranged for a widget count.
type Layout struct {
	Empty   bool   `json:"empty"`
	Columns int    `json:"columns"`
	Class   string `json:"class"`
}

// LayoutClassFor maps a widget count to a grid arrangement. Zero (or a
// negative count) is the empty-state view and has no grid.
func LayoutClassFor(count int) Layout {
	switch {
	case count <= 0:
		return Layout{Empty: true}
	case count == 1:
		return Layout{Columns: 1, Class: "grid-cols-1"}
	case count <= 4:
		return Layout{Columns: 2, Class: "grid-cols-1 md:grid-cols-2"}
	default:
		return Layout{Columns: 3, Class: "grid-cols-1 md:grid-cols-2 lg:grid-cols-3"}
	}
}
