package midi

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"midi-live-vis/debug"

	"gitlab.com/gomidi/midi/v2/smf"
)

// TimedEvent is a note event at an offset from the start of a file
type TimedEvent struct {
	At time.Duration
	Event
}

// ReadEvents reads all note events of a Standard MIDI File, merged across
// tracks and ordered by time
func ReadEvents(r io.Reader) ([]TimedEvent, error) {
	var out []TimedEvent
	rd := smf.ReadTracksFrom(r).Do(func(ev smf.TrackEvent) {
		var channel, note, velocity uint8
		at := time.Duration(ev.AbsMicroSeconds) * time.Microsecond
		switch {
		case ev.Message.GetNoteStart(&channel, &note, &velocity):
			out = append(out, TimedEvent{At: at, Event: Event{Type: NoteOn, Channel: channel, Note: note, Velocity: velocity}})
		case ev.Message.GetNoteEnd(&channel, &note):
			out = append(out, TimedEvent{At: at, Event: Event{Type: NoteOff, Channel: channel, Note: note}})
		}
	})
	if err := rd.Error(); err != nil {
		return nil, fmt.Errorf("read smf: %w", err)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].At < out[j].At })
	return out, nil
}

// FileController replays a MIDI file in real time as if it were a device
type FileController struct {
	id     string
	timed  []TimedEvent
	speed  float64
	events chan Event

	stop      chan struct{}
	stopOnce  sync.Once
	startOnce sync.Once
	started   bool
	done      chan struct{}
}

// NewFileController loads path. speed scales playback (1 = real time).
func NewFileController(path string, speed float64) (*FileController, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	timed, err := ReadEvents(f)
	if err != nil {
		return nil, err
	}
	return newFileController(filepath.Base(path), timed, speed), nil
}

func newFileController(id string, timed []TimedEvent, speed float64) *FileController {
	if speed <= 0 {
		speed = 1
	}
	return &FileController{
		id:     id,
		timed:  timed,
		speed:  speed,
		events: make(chan Event, eventBuffer),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start begins playback; Events is closed when the file ends or on Close
func (fc *FileController) Start() {
	fc.startOnce.Do(func() {
		fc.started = true
		go fc.play(time.Now())
	})
}

func (fc *FileController) play(start time.Time) {
	defer close(fc.done)
	defer close(fc.events)

	debug.Log("replay", "%s: %d events at %.2fx", fc.id, len(fc.timed), fc.speed)
	timer := time.NewTimer(0)
	defer timer.Stop()

	for _, te := range fc.timed {
		due := start.Add(time.Duration(float64(te.At) / fc.speed))
		if wait := time.Until(due); wait > 0 {
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(wait)
			select {
			case <-timer.C:
			case <-fc.stop:
				return
			}
		}
		select {
		case fc.events <- te.Event:
		case <-fc.stop:
			return
		}
	}
}

// Len is the number of note events in the file
func (fc *FileController) Len() int {
	return len(fc.timed)
}

func (fc *FileController) ID() string {
	return fc.id
}

func (fc *FileController) Type() ControllerType {
	return ControllerFile
}

func (fc *FileController) Events() <-chan Event {
	return fc.events
}

// Close stops playback and waits for the player to exit
func (fc *FileController) Close() error {
	fc.stopOnce.Do(func() { close(fc.stop) })
	// a controller that never started still owes its closed channel
	fc.startOnce.Do(func() { close(fc.events) })
	if fc.started {
		<-fc.done
	}
	return nil
}
