package chart

import "strings"

// CellKind tells the renderer how to style a cell
type CellKind int

const (
	CellEmpty CellKind = iota
	CellHead           // leading edge of a note
	CellBody
	CellSeparator
	CellAxis
	CellLabel
)

// Cell is one terminal character of the chart.
// Color is the channel group index (-1 for chrome); Level is the velocity fill 0.1-1.
type Cell struct {
	Rune  rune
	Kind  CellKind
	Color int
	Level float64
}

// Frame is a rendered chart, row-major
type Frame struct {
	Layout Layout
	Cells  [][]Cell

	Start, End   float64 // main view time domain
	Channels     []int   // channel per color index, in draw order
	MainBars     int
	OverviewBars int
}

func newFrame(width, height int) Frame {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	cells := make([][]Cell, height)
	for r := range cells {
		row := make([]Cell, width)
		for c := range row {
			row[c] = Cell{Rune: ' ', Color: -1}
		}
		cells[r] = row
	}
	return Frame{Cells: cells}
}

func (f *Frame) set(row, col int, c Cell) {
	if row < 0 || row >= len(f.Cells) || col < 0 || col >= len(f.Cells[row]) {
		return
	}
	f.Cells[row][col] = c
}

// text writes s at row/col and returns the column after it
func (f *Frame) text(row, col int, s string) int {
	for _, r := range s {
		f.set(row, col, Cell{Rune: r, Kind: CellLabel, Color: -1})
		col++
	}
	return col
}

// String is the frame without styling, one line per row
func (f Frame) String() string {
	var out strings.Builder
	for i, row := range f.Cells {
		if i > 0 {
			out.WriteByte('\n')
		}
		for _, c := range row {
			out.WriteRune(c.Rune)
		}
	}
	return out.String()
}

// Count returns the number of cells of kind
func (f Frame) Count(kind CellKind) int {
	n := 0
	for _, row := range f.Cells {
		for _, c := range row {
			if c.Kind == kind {
				n++
			}
		}
	}
	return n
}
