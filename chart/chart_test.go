package chart

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"midi-live-vis/notes"
)

func closed(pitch, velocity, channel int, start, end float64) notes.Note {
	return notes.Note{Pitch: pitch, Velocity: velocity, Channel: channel, Start: start, End: &end}
}

func TestLinearMap(t *testing.T) {
	s := NewLinear().Domain(0, 10).Range(0, 100)
	assert.Equal(t, 50.0, s.Map(5))
	assert.Equal(t, 150.0, s.Map(15))

	inverted := NewLinear().Domain(59, 61).Range(20, 10)
	assert.Equal(t, 15.0, inverted.Map(60))

	// zero-width domain maps to the middle
	flat := NewLinear().Domain(3, 3).Range(0, 10)
	assert.Equal(t, 5.0, flat.Map(3))
}

func TestLinearTicks(t *testing.T) {
	assert.Equal(t, []float64{0, 5, 10, 15, 20}, NewLinear().Domain(0, 20).Ticks(4))
	assert.Equal(t, []float64{0, 0.2, 0.4, 0.6, 0.8, 1}, NewLinear().Domain(0, 1).Ticks(5))
	assert.Equal(t, []float64{-10, -5, 0}, NewLinear().Domain(-12, 0).Ticks(3))
	assert.Equal(t, []float64{7}, NewLinear().Domain(7, 7).Ticks(5))
}

func TestNewLayout(t *testing.T) {
	l, ok := NewLayout(80, 24, 0.25)
	require.True(t, ok)
	assert.Equal(t, 74, l.PlotWidth)
	assert.Equal(t, 6, l.OverviewRows)
	assert.Equal(t, 6, l.SeparatorRow)
	assert.Equal(t, 7, l.MainTop)
	assert.Equal(t, 16, l.MainRows)
	assert.Equal(t, 23, l.AxisRow)

	_, ok = NewLayout(5, 24, 0.25)
	assert.False(t, ok)
	_, ok = NewLayout(80, 4, 0.25)
	assert.False(t, ok)
}

func TestOverviewDrawsEveryNote(t *testing.T) {
	ns := []notes.Note{
		closed(60, 100, 0, 0, 1),
		closed(62, 100, 0, 2, 3),
		closed(64, 100, 0, 4, 5),
		closed(66, 100, 0, 6, 7),
	}
	f := Render(ns, 10, 80, 24, DefaultOptions())

	assert.Equal(t, len(ns), f.OverviewBars)
	assert.Equal(t, len(ns), f.MainBars)

	heads := 0
	for row := 0; row < f.Layout.OverviewRows; row++ {
		for _, c := range f.Cells[row] {
			if c.Kind == CellHead {
				heads++
			}
		}
	}
	assert.Equal(t, len(ns), heads)
}

func TestWindowHidesOldNotes(t *testing.T) {
	ns := []notes.Note{closed(60, 100, 0, 1, 2)}

	f := Render(ns, 100, 80, 24, DefaultOptions())
	assert.Equal(t, 0, f.MainBars)
	assert.Equal(t, 1, f.OverviewBars)
	assert.Equal(t, 80.0, f.Start)
	assert.Equal(t, 100.0, f.End)

	opts := DefaultOptions()
	opts.ShowAllTime = true
	f = Render(ns, 100, 80, 24, opts)
	assert.Equal(t, 1, f.MainBars)
	assert.Equal(t, 0.0, f.Start)
}

func TestSoundingNoteExtendsToEnd(t *testing.T) {
	ns := []notes.Note{{Pitch: 60, Velocity: 127, Start: 5}}
	opts := DefaultOptions()
	opts.ShowAllTime = true
	f := Render(ns, 10, 80, 24, opts)

	var row []Cell
	for r := f.Layout.MainTop; r < f.Layout.MainTop+f.Layout.MainRows; r++ {
		if f.Cells[r][f.Layout.Left+37].Kind == CellHead {
			row = f.Cells[r]
		}
	}
	require.NotNil(t, row, "head at the note start")
	last := row[f.Layout.Left+f.Layout.PlotWidth-1]
	assert.Equal(t, CellBody, last.Kind)
	assert.Equal(t, '█', last.Rune)
}

func TestShortNoteIsAtLeastOneCell(t *testing.T) {
	ns := []notes.Note{closed(60, 64, 0, 5, 5)}
	f := Render(ns, 10, 80, 24, DefaultOptions())
	assert.Equal(t, 1, f.MainBars)
	assert.Equal(t, 2, f.Count(CellHead))
}

func TestJustPressedNoteHasHead(t *testing.T) {
	ns := []notes.Note{{Pitch: 60, Velocity: 90, Start: 10}}
	f := Render(ns, 10, 80, 24, DefaultOptions())

	assert.Equal(t, 1, f.OverviewBars)
	assert.Equal(t, 1, f.MainBars)
	assert.Equal(t, 2, f.Count(CellHead))

	last := f.Layout.Left + f.Layout.PlotWidth - 1
	heads := 0
	for _, row := range f.Cells {
		if row[last].Kind == CellHead {
			heads++
		}
	}
	assert.Equal(t, 2, heads, "head sits in the last column of both views")
}

func TestNoteEndingInFirstColumnIsDrawn(t *testing.T) {
	ns := []notes.Note{closed(60, 100, 0, 70, 80.1)}
	f := Render(ns, 100, 80, 24, DefaultOptions())
	require.Equal(t, 1, f.MainBars)

	var drawn []Cell
	for r := f.Layout.MainTop; r < f.Layout.MainTop+f.Layout.MainRows; r++ {
		for _, c := range f.Cells[r][f.Layout.Left:] {
			if c.Kind == CellHead || c.Kind == CellBody {
				drawn = append(drawn, c)
			}
		}
	}
	require.Len(t, drawn, 1)
	assert.Equal(t, CellBody, drawn[0].Kind, "the head is outside the window")
}

func TestChannelsGetColorsInFirstAppearanceOrder(t *testing.T) {
	ns := []notes.Note{
		closed(60, 100, 5, 0, 1),
		closed(70, 100, 2, 3, 4),
	}
	f := Render(ns, 10, 80, 24, DefaultOptions())
	assert.Equal(t, []int{5, 2}, f.Channels)

	colors := map[int]bool{}
	for _, row := range f.Cells {
		for _, c := range row {
			if c.Kind == CellHead {
				colors[c.Color] = true
			}
		}
	}
	assert.Equal(t, map[int]bool{0: true, 1: true}, colors)
}

func TestVelocityShading(t *testing.T) {
	assert.Equal(t, '░', glyph(CellBody, veloScale.Map(0)))
	assert.Equal(t, '▒', glyph(CellBody, veloScale.Map(64)))
	assert.Equal(t, '█', glyph(CellBody, veloScale.Map(127)))
	assert.InDelta(t, 0.1, veloScale.Map(0), 1e-9)
	assert.InDelta(t, 1.0, veloScale.Map(127), 1e-9)
}

func TestPitchLabels(t *testing.T) {
	ns := []notes.Note{closed(60, 100, 0, 0, 1)}

	f := Render(ns, 2, 80, 24, DefaultOptions())
	assert.Contains(t, f.String(), "60┤")

	opts := DefaultOptions()
	opts.Labels = LabelNote
	f = Render(ns, 2, 80, 24, opts)
	assert.Contains(t, f.String(), "C4┤")
}

func TestEmptySessionDrawsChrome(t *testing.T) {
	f := Render(nil, 0, 80, 24, DefaultOptions())
	assert.Equal(t, 0, f.MainBars)
	assert.Equal(t, 74, f.Count(CellSeparator))
	assert.Len(t, strings.Split(f.String(), "\n"), 24)
	assert.Contains(t, f.String(), "┴")
}

func TestTooSmallRendersBlank(t *testing.T) {
	f := Render([]notes.Note{closed(60, 100, 0, 0, 1)}, 2, 4, 3, DefaultOptions())
	assert.Equal(t, 0, f.MainBars)
	assert.Equal(t, 0, f.Count(CellSeparator))
}

func TestParseLabelMode(t *testing.T) {
	m, err := ParseLabelMode("note")
	require.NoError(t, err)
	assert.Equal(t, LabelNote, m)

	_, err = ParseLabelMode("drums")
	assert.Error(t, err)
}
