package notes

import "fmt"

// Note is a single played note. End is nil while the note is still sounding.
type Note struct {
	Pitch    int      `json:"pitch"`
	Velocity int      `json:"velocity"`
	Channel  int      `json:"channel"`
	Start    float64  `json:"start"`
	End      *float64 `json:"end"`
}

// Sounding reports whether the note has not been released yet
func (n Note) Sounding() bool {
	return n.End == nil
}

// EndOr returns the end time, or fallback for a sounding note
func (n Note) EndOr(fallback float64) float64 {
	if n.End == nil {
		return fallback
	}
	return *n.End
}

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// Name returns the note label for a MIDI pitch (60 = C4)
func Name(pitch int) string {
	if pitch < 0 || pitch > 127 {
		return ""
	}
	return fmt.Sprintf("%s%d", noteNames[pitch%12], pitch/12-1)
}

// Group is the notes of a single channel
type Group struct {
	Channel int
	Notes   []Note
}

// GroupByChannel splits notes per channel, groups ordered by first appearance
func GroupByChannel(ns []Note) []Group {
	var groups []Group
	index := make(map[int]int)
	for _, n := range ns {
		i, ok := index[n.Channel]
		if !ok {
			i = len(groups)
			index[n.Channel] = i
			groups = append(groups, Group{Channel: n.Channel})
		}
		groups[i].Notes = append(groups[i].Notes, n)
	}
	return groups
}

// Extent returns the lowest and highest pitch. ok is false for no notes.
func Extent(ns []Note) (low, high int, ok bool) {
	if len(ns) == 0 {
		return 0, 0, false
	}
	low, high = ns[0].Pitch, ns[0].Pitch
	for _, n := range ns[1:] {
		if n.Pitch < low {
			low = n.Pitch
		}
		if n.Pitch > high {
			high = n.Pitch
		}
	}
	return low, high, true
}
