package tui

import (
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"midi-live-vis/capture"
	"midi-live-vis/chart"
	"midi-live-vis/config"
	"midi-live-vis/midi"
	"midi-live-vis/theme"
)

type stubController struct {
	id     string
	events chan midi.Event
}

func (s *stubController) ID() string { return s.id }
func (s *stubController) Type() midi.ControllerType { return midi.ControllerKeyboard }
func (s *stubController) Events() <-chan midi.Event { return s.events }
func (s *stubController) Close() error {
	close(s.events)
	return nil
}

func newTestModel(t *testing.T) (Model, *capture.Recorder) {
	t.Helper()
	start := time.Unix(0, 0)
	now := start
	rec := capture.NewRecorder(func() time.Time { return now })
	now = start.Add(3 * time.Second)
	m := NewModel(rec, nil, theme.Default(), chart.DefaultOptions(), 30, nil)
	return m, rec
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

func TestToggleKeys(t *testing.T) {
	m, _ := newTestModel(t)

	m, _ = update(t, m, key("a"))
	assert.True(t, m.Opts.ShowAllTime)
	m, _ = update(t, m, key("a"))
	assert.False(t, m.Opts.ShowAllTime)

	m, _ = update(t, m, key("n"))
	assert.Equal(t, chart.LabelNote, m.Opts.Labels)
	m, _ = update(t, m, key("n"))
	assert.Equal(t, chart.LabelPitch, m.Opts.Labels)
}

func TestTogglesAreSaved(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	saver := config.NewSaver(config.DefaultConfig(), path, time.Hour)

	m, _ := newTestModel(t)
	m.saver = saver
	m, _ = update(t, m, key("a"))
	m, _ = update(t, m, key("n"))

	assert.True(t, saver.Current().View.ShowAllTime)
	assert.Equal(t, "note", saver.Current().View.Labels)
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(t)
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.Equal(t, "", m.View())
}

func TestFrameSchedulesNextFrame(t *testing.T) {
	m, _ := newTestModel(t)
	m, cmd := update(t, m, frameMsg(time.Now()))
	assert.NotNil(t, cmd)
	assert.Equal(t, 1, m.frames)
}

func TestViewShowsNotesAndDevices(t *testing.T) {
	m, rec := newTestModel(t)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})

	rec.Handle(midi.Event{Type: midi.NoteOn, Channel: 0, Note: 60, Velocity: 100})
	rec.Handle(midi.Event{Type: midi.NoteOn, Channel: 9, Note: 36, Velocity: 60})

	ctrl := &stubController{id: "Piano", events: make(chan midi.Event)}
	m, _ = update(t, m, DeviceEventMsg{Type: midi.DeviceConnected, Controller: ctrl, ID: "Piano"})

	view := m.View()
	assert.Contains(t, view, "2 notes")
	assert.Contains(t, view, "[Piano]")
	assert.Contains(t, view, "♪ C4 C2")
	assert.Contains(t, view, "ch1")
	assert.Contains(t, view, "ch10")
	assert.Contains(t, view, "last 20s")

	m, _ = update(t, m, DeviceEventMsg{Type: midi.DeviceDisconnected, ID: "Piano"})
	assert.Contains(t, m.View(), "no device")
	ctrl.Close()
	rec.Wait()
}

func TestViewSurvivesTinyTerminal(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 3, Height: 2})
	assert.NotPanics(t, func() { m.View() })
}

func TestNoteTriggersRedraw(t *testing.T) {
	m, rec := newTestModel(t)
	rec.Handle(midi.Event{Type: midi.NoteOn, Note: 60, Velocity: 100})

	msg := ListenForUpdates(rec)()
	assert.Equal(t, UpdateMsg{}, msg)

	m, cmd := update(t, m, msg)
	assert.NotNil(t, cmd, "keeps listening for the next note")
	assert.Contains(t, m.View(), "1 notes")
}

func TestHelpOverlay(t *testing.T) {
	m, _ := newTestModel(t)
	assert.Contains(t, m.View(), "?:help")

	m, _ = update(t, m, key("?"))
	view := m.View()
	assert.Contains(t, view, "Session")
	assert.Contains(t, view, "  q, ctrl+c    quit")
	assert.NotContains(t, view, "?:help")

	m, _ = update(t, m, key("?"))
	assert.Contains(t, m.View(), "?:help")
}

func TestNoDeviceIsWarned(t *testing.T) {
	m, rec := newTestModel(t)
	assert.Equal(t, m.Theme.Warning(), m.deviceColor())

	ctrl := &stubController{id: "Piano", events: make(chan midi.Event)}
	m, _ = update(t, m, DeviceEventMsg{Type: midi.DeviceConnected, Controller: ctrl, ID: "Piano"})
	assert.Equal(t, m.Theme.Accent(), m.deviceColor())

	ctrl.Close()
	rec.Wait()
}
