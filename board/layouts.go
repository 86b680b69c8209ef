package board

var (
	// LaskerMorrisLayout is the 24-point board shared by Nine Men's Morris
	// and Lasker Morris. Each row is a position followed by its neighbours.
	// Rows are listed bottom to top; d4 is the hole in the middle.
	LaskerMorrisLayout [][]Position

	// LaskerMorrisMills are the 16 lines that form a mill.
	LaskerMorrisMills []Mill
)

func init() {
	LaskerMorrisLayout = [][]Position{
		{"a1", "d1", "a4"},
		{"d1", "a1", "g1", "d2"},
		{"g1", "d1", "g4"},
		{"b2", "d2", "b4"},
		{"d2", "b2", "f2", "d1", "d3"},
		{"f2", "d2", "f4"},
		{"c3", "d3", "c4"},
		{"d3", "c3", "e3", "d2"},
		{"e3", "d3", "e4"},
		{"a4", "a1", "a7", "b4"},
		{"b4", "a4", "c4", "b2", "b6"},
		{"c4", "b4", "c3", "c5"},
		{"e4", "e3", "f4", "e5"},
		{"f4", "g4", "f2", "f6", "e4"},
		{"g4", "g1", "g7", "f4"},
		{"c5", "c4", "d5"},
		{"d5", "c5", "e5", "d6"},
		{"e5", "d5", "e4"},
		{"b6", "b4", "d6"},
		{"d6", "b6", "f6", "d7", "d5"},
		{"f6", "d6", "f4"},
		{"a7", "a4", "d7"},
		{"d7", "a7", "g7", "d6"},
		{"g7", "d7", "g4"},
	}

	LaskerMorrisMills = []Mill{
		{"a1", "d1", "g1"},
		{"a7", "d7", "g7"},
		{"b2", "d2", "f2"},
		{"b6", "d6", "f6"},
		{"c3", "d3", "e3"},
		{"c5", "d5", "e5"},
		{"a1", "a4", "a7"},
		{"g1", "g4", "g7"},
		{"b2", "b4", "b6"},
		{"f2", "f4", "f6"},
		{"c3", "c4", "c5"},
		{"e3", "e4", "e5"},
		{"d1", "d2", "d3"},
		{"d5", "d6", "d7"},
		{"a4", "b4", "c4"},
		{"e4", "f4", "g4"},
	}
}

// MakeTable builds an adjacency table from a layout in the format of
// LaskerMorrisLayout. Empty rows are skipped.
func MakeTable(layout [][]Position) *Table {
	t := NewTable()
	for _, row := range layout {
		if len(row) == 0 {
			continue
		}
		t.Add(row[0], row[1:]...)
	}
	return t
}

// Standard returns a fresh copy of the Lasker Morris adjacency table.
func Standard() *Table {
	return MakeTable(LaskerMorrisLayout)
}
