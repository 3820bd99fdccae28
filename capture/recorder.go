package capture

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"midi-live-vis/debug"
	"midi-live-vis/midi"
	"midi-live-vis/notes"
)

// Clock returns the current time. Swapped in tests.
type Clock func() time.Time

// Recorder turns controller note events into the session's note list
type Recorder struct {
	ID    string
	Notes *notes.List

	now   Clock
	start time.Time

	mu       sync.Mutex
	attached map[string]bool
	wg       sync.WaitGroup

	// Notify listeners of new notes (coalesced)
	UpdateChan chan struct{}
}

// NewRecorder starts a session at the current time
func NewRecorder(now Clock) *Recorder {
	if now == nil {
		now = time.Now
	}
	return &Recorder{
		ID:         uuid.New().String(),
		Notes:      notes.NewList(),
		now:        now,
		start:      now(),
		attached:   make(map[string]bool),
		UpdateChan: make(chan struct{}, 1),
	}
}

// Elapsed is the session time in seconds
func (r *Recorder) Elapsed() float64 {
	return r.now().Sub(r.start).Seconds()
}

// Attach drains ctrl's events in the background until its channel closes.
// A controller id already attached is ignored.
func (r *Recorder) Attach(ctrl midi.Controller) bool {
	r.mu.Lock()
	if r.attached[ctrl.ID()] {
		r.mu.Unlock()
		return false
	}
	r.attached[ctrl.ID()] = true
	r.mu.Unlock()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		held := make(map[heldKey]bool)
		for ev := range ctrl.Events() {
			k := heldKey{ev.Note, ev.Channel}
			switch ev.Type {
			case midi.NoteOn:
				held[k] = true
			case midi.NoteOff:
				delete(held, k)
			}
			r.Handle(ev)
		}
		r.release(held)
		r.mu.Lock()
		delete(r.attached, ctrl.ID())
		r.mu.Unlock()
		debug.Log("capture", "%s detached, released %d held notes", ctrl.ID(), len(held))
	}()
	return true
}

type heldKey struct {
	note, channel uint8
}

// release closes the notes a vanished controller was still holding
func (r *Recorder) release(held map[heldKey]bool) {
	if len(held) == 0 {
		return
	}
	t := r.Elapsed()
	for k := range held {
		r.Notes.NoteOff(int(k.note), int(k.channel), t)
	}
	r.notify()
}

// Handle records a single event at the current session time
func (r *Recorder) Handle(ev midi.Event) {
	t := r.Elapsed()
	switch ev.Type {
	case midi.NoteOn:
		r.Notes.NoteOn(int(ev.Note), int(ev.Velocity), int(ev.Channel), t)
	case midi.NoteOff:
		if !r.Notes.NoteOff(int(ev.Note), int(ev.Channel), t) {
			debug.Log("capture", "note off for unpressed note %s ch=%d", notes.Name(int(ev.Note)), ev.Channel)
			return
		}
	default:
		return
	}
	r.notify()
}

func (r *Recorder) notify() {
	select {
	case r.UpdateChan <- struct{}{}:
	default:
	}
}

// Wait blocks until every attached controller has closed
func (r *Recorder) Wait() {
	r.wg.Wait()
}

func (r *Recorder) SessionID() string {
	return r.ID
}

// Snapshot returns a copy of the session's notes
func (r *Recorder) Snapshot() []notes.Note {
	return r.Notes.Snapshot()
}

// Sounding returns the notes currently held
func (r *Recorder) Sounding() []notes.Note {
	return r.Notes.Sounding()
}
