package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"midi-live-vis/capture"
	"midi-live-vis/chart"
	"midi-live-vis/config"
	"midi-live-vis/debug"
	"midi-live-vis/midi"
	"midi-live-vis/notes"
	"midi-live-vis/theme"
	"midi-live-vis/widgets"
)

// rows used around the chart: header, blank, legend, help
const chromeRows = 4

type Model struct {
	Recorder  *capture.Recorder
	DeviceMgr *midi.DeviceManager // nil when replaying a file
	Theme     *theme.Theme
	Opts      chart.Options

	fps      int
	saver    *config.Saver
	width    int
	height   int
	devices  map[string]midi.ControllerType
	frames   int
	showHelp bool
	quitting bool
}

type frameMsg time.Time

// UpdateMsg means the recorder took a new note
type UpdateMsg struct{}

type DeviceEventMsg midi.DeviceEvent

// NewModel builds the view. saver may be nil to keep preferences in memory.
func NewModel(rec *capture.Recorder, deviceMgr *midi.DeviceManager, th *theme.Theme, opts chart.Options, fps int, saver *config.Saver) Model {
	if fps <= 0 {
		fps = 30
	}
	return Model{
		Recorder:  rec,
		DeviceMgr: deviceMgr,
		Theme:     th,
		Opts:      opts,
		fps:       fps,
		saver:     saver,
		width:     80,
		height:    24,
		devices:   make(map[string]midi.ControllerType),
	}
}

// AddController attaches a controller that is not managed by the DeviceManager
func (m Model) AddController(c midi.Controller) {
	m.devices[c.ID()] = c.Type()
	m.Recorder.Attach(c)
}

// nextFrame is the animation-frame callback: one redraw per tick
func nextFrame(fps int) tea.Cmd {
	return tea.Tick(time.Second/time.Duration(fps), func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// ListenForUpdates redraws as soon as a note arrives instead of waiting
// for the next frame
func ListenForUpdates(rec *capture.Recorder) tea.Cmd {
	return func() tea.Msg {
		<-rec.UpdateChan
		return UpdateMsg{}
	}
}

func ListenForDevices(deviceMgr *midi.DeviceManager) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-deviceMgr.Events()
		if !ok {
			return nil
		}
		return DeviceEventMsg(event)
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{nextFrame(m.fps), ListenForUpdates(m.Recorder)}
	if m.DeviceMgr != nil {
		cmds = append(cmds, ListenForDevices(m.DeviceMgr))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "a":
			m.Opts.ShowAllTime = !m.Opts.ShowAllTime
			show := m.Opts.ShowAllTime
			m.savePrefs(func(c *config.Config) { c.View.ShowAllTime = show })

		case "n":
			if m.Opts.Labels == chart.LabelPitch {
				m.Opts.Labels = chart.LabelNote
			} else {
				m.Opts.Labels = chart.LabelPitch
			}
			labels := m.Opts.Labels.String()
			m.savePrefs(func(c *config.Config) { c.View.Labels = labels })

		case "?":
			m.showHelp = !m.showHelp
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case frameMsg:
		m.frames++
		debug.LogEvery(m.fps*10, "frame", "drew %d notes", m.Recorder.Notes.Len())
		return m, nextFrame(m.fps)

	case UpdateMsg:
		return m, ListenForUpdates(m.Recorder)

	case DeviceEventMsg:
		event := midi.DeviceEvent(msg)
		if event.Type == midi.DeviceConnected {
			m.AddController(event.Controller)
		} else if event.Type == midi.DeviceDisconnected {
			delete(m.devices, event.ID)
		}
		if m.DeviceMgr == nil {
			return m, nil
		}
		return m, ListenForDevices(m.DeviceMgr)
	}

	return m, nil
}

func (m Model) savePrefs(edit func(c *config.Config)) {
	if m.saver != nil {
		m.saver.Update(edit)
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())

	ns := m.Recorder.Snapshot()
	end := m.Recorder.Elapsed()

	var out strings.Builder
	out.WriteString(m.header(ns, end))
	out.WriteString("\n\n")
	if m.showHelp {
		out.WriteString(widgets.RenderKeyHelp(helpSections(m.Opts)))
		out.WriteString("\n\n")
		out.WriteString(dimStyle.Render(widgets.RenderKeyLine([]widgets.KeyBinding{{Key: "?", Desc: "back"}})))
		return out.String()
	}

	frame := chart.Render(ns, end, m.width, m.height-chromeRows, m.Opts)
	out.WriteString(m.renderFrame(frame))
	out.WriteString("\n")
	out.WriteString(m.legend(frame.Channels))
	out.WriteString("\n")
	out.WriteString(dimStyle.Render(widgets.RenderKeyLine(keyHelp(m.Opts))))
	return out.String()
}

// deviceColor warns while nothing is connected
func (m Model) deviceColor() lipgloss.Color {
	if len(m.devices) == 0 {
		return m.Theme.Warning()
	}
	return m.Theme.Accent()
}

func (m Model) header(ns []notes.Note, end float64) string {
	mins := int(end) / 60
	secs := end - float64(mins*60)

	var held []string
	for _, n := range ns {
		if n.Sounding() {
			held = append(held, notes.Name(n.Pitch))
		}
	}
	sounding := ""
	if len(held) > 0 {
		sounding = "  ♪ " + strings.Join(held, " ")
	}

	ids := make([]string, 0, len(m.devices))
	for id := range m.devices {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	devices := "no device"
	if len(ids) > 0 {
		devices = strings.Join(ids, ", ")
	}

	session := m.Recorder.ID
	if len(session) > 8 {
		session = session[:8]
	}

	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	deviceStyle := lipgloss.NewStyle().Foreground(m.deviceColor())

	return headerStyle.Render(fmt.Sprintf("Note-Time Chart  %02d:%04.1f  %d notes  [", mins, secs, len(ns))) +
		deviceStyle.Render(devices) +
		headerStyle.Render(fmt.Sprintf("]  %s%s", session, sounding))
}

func (m Model) legend(channels []int) string {
	items := make([]widgets.LegendItem, len(channels))
	for i, ch := range channels {
		items[i] = widgets.LegendItem{Color: m.Theme.ChannelRGB(i), Name: fmt.Sprintf("ch%d", ch+1)}
	}
	return widgets.RenderLegend(items)
}

func keyHelp(opts chart.Options) []widgets.KeyBinding {
	span := fmt.Sprintf("last %gs", opts.Window)
	if opts.ShowAllTime {
		span = "whole time"
	}
	labels := "MIDI note"
	if opts.Labels == chart.LabelNote {
		labels = "note name"
	}
	return []widgets.KeyBinding{
		{Key: "a", Desc: span},
		{Key: "n", Desc: labels},
		{Key: "?", Desc: "help"},
		{Key: "q", Desc: "quit"},
	}
}

func helpSections(opts chart.Options) []widgets.KeySection {
	return []widgets.KeySection{
		{Title: "View", Keys: []widgets.KeyBinding{
			{Key: "a", Desc: fmt.Sprintf("toggle whole session / last %gs", opts.Window)},
			{Key: "n", Desc: "toggle MIDI note numbers / note names"},
		}},
		{Title: "Session", Keys: []widgets.KeyBinding{
			{Key: "?", Desc: "show or hide this help"},
			{Key: "q, ctrl+c", Desc: "quit"},
		}},
	}
}

// renderFrame styles the cell grid, merging runs that share a color
func (m Model) renderFrame(f chart.Frame) string {
	lines := make([]string, len(f.Cells))
	for r, row := range f.Cells {
		var line strings.Builder
		var run strings.Builder
		runColor := lipgloss.Color("")
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if runColor == "" {
				line.WriteString(run.String())
			} else {
				line.WriteString(lipgloss.NewStyle().Foreground(runColor).Render(run.String()))
			}
			run.Reset()
		}
		for _, c := range row {
			color := m.cellColor(c)
			if color != runColor {
				flush()
				runColor = color
			}
			run.WriteRune(c.Rune)
		}
		flush()
		lines[r] = line.String()
	}
	return strings.Join(lines, "\n")
}

func (m Model) cellColor(c chart.Cell) lipgloss.Color {
	switch c.Kind {
	case chart.CellHead:
		return m.Theme.Channel(c.Color)
	case chart.CellBody:
		return m.Theme.Shade(c.Color, c.Level)
	case chart.CellSeparator:
		return m.Theme.Muted()
	case chart.CellAxis, chart.CellLabel:
		return m.Theme.FG()
	}
	return ""
}
