package notes

import "sync"

type key struct {
	pitch   int
	channel int
}

// List is the session's append-only note collection.
// Notes are appended on press and closed on release, never removed.
type List struct {
	mu    sync.RWMutex
	notes []Note
	open  map[key]int // index of the sounding note per pitch/channel
}

func NewList() *List {
	return &List{open: make(map[key]int)}
}

// NoteOn appends a sounding note. A pitch already held on the same channel
// is closed at t first.
func (l *List) NoteOn(pitch, velocity, channel int, t float64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	k := key{pitch, channel}
	if i, ok := l.open[k]; ok {
		l.close(i, t)
	}
	l.open[k] = len(l.notes)
	l.notes = append(l.notes, Note{
		Pitch:    pitch,
		Velocity: clampVelocity(velocity),
		Channel:  channel,
		Start:    t,
	})
}

// NoteOff closes the sounding note for pitch/channel. It reports false when
// nothing was held.
func (l *List) NoteOff(pitch, channel int, t float64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	k := key{pitch, channel}
	i, ok := l.open[k]
	if !ok {
		return false
	}
	l.close(i, t)
	delete(l.open, k)
	return true
}

func (l *List) close(i int, t float64) {
	if t < l.notes[i].Start {
		t = l.notes[i].Start
	}
	end := t
	l.notes[i].End = &end
}

// Snapshot returns a copy of all notes in insertion order
func (l *List) Snapshot() []Note {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Note, len(l.notes))
	copy(out, l.notes)
	return out
}

// Sounding returns currently held notes in insertion order
func (l *List) Sounding() []Note {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []Note
	for _, n := range l.notes {
		if n.End == nil {
			out = append(out, n)
		}
	}
	return out
}

func (l *List) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.notes)
}

func clampVelocity(v int) int {
	if v < 0 {
		return 0
	}
	if v > 127 {
		return 127
	}
	return v
}
