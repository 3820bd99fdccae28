package widgets

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderKeyLine(t *testing.T) {
	line := RenderKeyLine([]KeyBinding{{Key: "a", Desc: "whole time"}, {Key: "q", Desc: "quit"}})
	assert.Equal(t, "a:whole time  q:quit", line)
}

func TestRenderKeyHelp(t *testing.T) {
	out := RenderKeyHelp([]KeySection{{
		Title: "View",
		Keys:  []KeyBinding{{Key: "n", Desc: "note names"}},
	}})
	assert.Equal(t, "View\n  n            note names", out)
}

func TestRenderLegendNamesEveryItem(t *testing.T) {
	out := RenderLegend([]LegendItem{{Color: [3]uint8{255, 0, 0}, Name: "ch1"}, {Name: "ch10"}})
	assert.Contains(t, out, "ch1")
	assert.Contains(t, out, "ch10")
	assert.Contains(t, out, "■")
}

func TestRGBToHex(t *testing.T) {
	assert.Equal(t, "#1f77b4", rgbToHex([3]uint8{31, 119, 180}))
}
