package chart

import (
	"fmt"
	"math"
	"strconv"

	"midi-live-vis/notes"
)

// LabelMode selects how pitch axis ticks are written
type LabelMode int

const (
	LabelPitch LabelMode = iota // MIDI note number
	LabelNote                   // note name, e.g. C4
)

func (m LabelMode) String() string {
	if m == LabelNote {
		return "note"
	}
	return "pitch"
}

// ParseLabelMode accepts "pitch" or "note"
func ParseLabelMode(s string) (LabelMode, error) {
	switch s {
	case "", "pitch":
		return LabelPitch, nil
	case "note":
		return LabelNote, nil
	}
	return LabelPitch, fmt.Errorf("unknown label mode %q", s)
}

// Options control a single frame
type Options struct {
	Window           float64 // seconds shown in the main view
	ShowAllTime      bool    // main view spans the whole session
	Labels           LabelMode
	OverviewFraction float64 // share of the height given to the overview
}

// DefaultOptions match the classic view: last 20 seconds, quarter-height overview
func DefaultOptions() Options {
	return Options{Window: 20, OverviewFraction: 0.25}
}

// Layout is the split of a frame into regions (rows/cols in cells)
type Layout struct {
	Width, Height int
	Left          int // label margin
	PlotWidth     int
	OverviewRows  int
	SeparatorRow  int
	MainTop       int
	MainRows      int
	AxisRow       int
}

const (
	labelMargin = 6
	minMainRows = 3
)

// NewLayout splits width x height. ok is false when the area is too small.
func NewLayout(width, height int, overview float64) (Layout, bool) {
	l := Layout{Width: width, Height: height, Left: labelMargin}
	l.PlotWidth = width - l.Left
	if overview <= 0 || overview >= 1 {
		overview = 0.25
	}
	l.OverviewRows = int(math.Round(float64(height) * overview))
	if l.OverviewRows < 1 {
		l.OverviewRows = 1
	}
	l.SeparatorRow = l.OverviewRows
	l.MainTop = l.SeparatorRow + 1
	l.AxisRow = height - 1
	l.MainRows = l.AxisRow - l.MainTop
	if l.PlotWidth < 2 || l.MainRows < minMainRows {
		return l, false
	}
	return l, true
}

// Render draws notes ending at time end (seconds) into a frame
func Render(ns []notes.Note, end float64, width, height int, opts Options) Frame {
	layout, ok := NewLayout(width, height, opts.OverviewFraction)
	f := newFrame(width, height)
	f.Layout = layout
	if !ok {
		return f
	}
	if opts.Window <= 0 {
		opts.Window = DefaultOptions().Window
	}

	pw := float64(layout.PlotWidth)

	// Set x scale domain
	xOv := NewLinear().Domain(0, end).Range(0, pw)
	x := xOv
	if !opts.ShowAllTime {
		x = x.Domain(end-opts.Window, end)
	}
	f.Start, f.End = x.d0, x.d1

	f.drawSeparator()
	f.drawTimeAxis(x)

	low, high, has := notes.Extent(ns)
	if !has {
		return f
	}

	// Set y scale domain
	y := NewLinear().Domain(float64(low-1), float64(high+1)).
		Range(float64(layout.MainTop+layout.MainRows-1), float64(layout.MainTop))
	yOv := NewLinear().Domain(float64(low-1), float64(high+1)).
		Range(float64(layout.OverviewRows-1), 0)
	f.drawPitchAxis(y, opts.Labels)

	for i, g := range notes.GroupByChannel(ns) {
		f.Channels = append(f.Channels, g.Channel)
		f.MainBars += f.drawNotes(g.Notes, i, x, y, end, layout.MainTop, layout.MainTop+layout.MainRows-1)
		f.OverviewBars += f.drawNotes(g.Notes, i, xOv, yOv, end, 0, layout.OverviewRows-1)
	}
	return f
}

// veloScale maps velocity to a fill level like a box height
var veloScale = NewLinear().Domain(0, 127).Range(0.1, 1)

// drawNotes paints one channel's notes and returns how many were visible
func (f *Frame) drawNotes(ns []notes.Note, color int, x, y Linear, end float64, top, bottom int) int {
	pw := f.Layout.PlotWidth
	drawn := 0
	for _, n := range ns {
		startPos := x.Map(n.Start)
		endPos := x.Map(n.EndOr(end))
		// Do not draw invisible notes
		if endPos < 0 || startPos > float64(pw) {
			continue
		}
		row := int(math.Round(y.Map(float64(n.Pitch))))
		if row < top || row > bottom {
			continue
		}

		// a note pressed at end still gets its head in the last column
		c0 := min(int(math.Floor(startPos)), pw-1)
		c1 := int(math.Floor(endPos))
		lo := clamp(c0, 0, pw-1)
		hi := clamp(c1, lo+1, pw)
		level := veloScale.Map(float64(n.Velocity))
		for col := lo; col < hi; col++ {
			kind := CellBody
			if col == c0 {
				kind = CellHead
			}
			f.set(row, f.Layout.Left+col, Cell{Rune: glyph(kind, level), Kind: kind, Color: color, Level: level})
		}
		drawn++
	}
	return drawn
}

func glyph(kind CellKind, level float64) rune {
	if kind == CellHead {
		return '◢'
	}
	switch {
	case level < 0.35:
		return '░'
	case level < 0.65:
		return '▒'
	case level < 0.9:
		return '▓'
	}
	return '█'
}

func (f *Frame) drawSeparator() {
	l := f.Layout
	for col := 0; col < l.PlotWidth; col++ {
		f.set(l.SeparatorRow, l.Left+col, Cell{Rune: '─', Kind: CellSeparator, Color: -1})
	}
}

// drawTimeAxis writes second ticks along the bottom row
func (f *Frame) drawTimeAxis(x Linear) {
	l := f.Layout
	next := 0
	for _, t := range x.Ticks(l.PlotWidth / 10) {
		col := int(math.Round(x.Map(t)))
		if col < next || col >= l.PlotWidth {
			continue
		}
		label := strconv.FormatFloat(t, 'f', -1, 64)
		f.set(l.AxisRow, l.Left+col, Cell{Rune: '┴', Kind: CellAxis, Color: -1})
		next = f.text(l.AxisRow, l.Left+col+1, label) - l.Left + 1
	}
}

// drawPitchAxis writes integer pitch ticks in the left margin
func (f *Frame) drawPitchAxis(y Linear, mode LabelMode) {
	l := f.Layout
	lo, hi := math.Min(y.d0, y.d1), math.Max(y.d0, y.d1)
	step := 1
	if n := l.MainRows / 2; n > 0 && hi > lo {
		step = int(math.Max(1, math.Round(tickStep(lo, hi, n))))
	}

	used := make(map[int]bool)
	for p := int(math.Ceil(lo/float64(step))) * step; float64(p) <= hi; p += step {
		row := int(math.Round(y.Map(float64(p))))
		if used[row] || row < l.MainTop || row >= l.MainTop+l.MainRows {
			continue
		}
		used[row] = true

		label := strconv.Itoa(p)
		if mode == LabelNote {
			label = notes.Name(p)
		}
		if len(label) > l.Left-1 {
			label = label[:l.Left-1]
		}
		f.text(row, l.Left-1-len(label), label)
		f.set(row, l.Left-1, Cell{Rune: '┤', Kind: CellAxis, Color: -1})
	}
}
