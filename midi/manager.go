package midi

import (
	"context"
	"strings"
	"sync"
	"time"

	"midi-live-vis/debug"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver
)

// DeviceEvent is emitted when controllers connect/disconnect
type DeviceEvent struct {
	Type       DeviceEventType
	Controller Controller
	ID         string
}

type DeviceEventType int

const (
	DeviceConnected DeviceEventType = iota
	DeviceDisconnected
)

// Port is an input port seen during a scan
type Port struct {
	Name string
	In   drivers.In
}

// Options controls which ports the DeviceManager connects to
type Options struct {
	Include      []string // substrings, empty means any port
	Exclude      []string // substrings, never connected
	PollInterval time.Duration
}

// DeviceManager handles hot-plug detection of MIDI inputs
type DeviceManager struct {
	controllers map[string]Controller
	mu          sync.RWMutex
	events      chan DeviceEvent
	opts        Options

	// swapped in tests
	listPorts func() ([]Port, bool)
	open      func(p Port) (Controller, error)
}

// NewDeviceManager creates a new device manager
func NewDeviceManager(opts Options) *DeviceManager {
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Second
	}
	return &DeviceManager{
		controllers: make(map[string]Controller),
		events:      make(chan DeviceEvent, 16),
		opts:        opts,
		listPorts:   driverPorts,
		open: func(p Port) (Controller, error) {
			return NewKeyboardController(p.Name, p.In)
		},
	}
}

// Events returns a channel of device connect/disconnect events
func (dm *DeviceManager) Events() <-chan DeviceEvent {
	return dm.events
}

// Controllers returns a snapshot of connected controllers
func (dm *DeviceManager) Controllers() map[string]Controller {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	copy := make(map[string]Controller, len(dm.controllers))
	for k, v := range dm.controllers {
		copy[k] = v
	}
	return copy
}

// Run starts the polling loop (blocking - run in goroutine)
func (dm *DeviceManager) Run(ctx context.Context) {
	ticker := time.NewTicker(dm.opts.PollInterval)
	defer ticker.Stop()

	// Initial scan
	dm.scan(ctx)

	for {
		select {
		case <-ctx.Done():
			dm.closeAll()
			close(dm.events)
			return
		case <-ticker.C:
			dm.scan(ctx)
		}
	}
}

// driverPorts lists input ports with a timeout (CoreMIDI can hang)
func driverPorts() ([]Port, bool) {
	ch := make(chan []drivers.In, 1)
	go func() {
		ch <- gomidi.GetInPorts()
	}()

	select {
	case ins := <-ch:
		ports := make([]Port, len(ins))
		for i, in := range ins {
			ports[i] = Port{Name: in.String(), In: in}
		}
		return ports, true
	case <-time.After(3 * time.Second):
		return nil, false
	}
}

func (dm *DeviceManager) scan(ctx context.Context) {
	ports, ok := dm.listPorts()
	if !ok {
		debug.Log("devices", "port scan timed out")
		return
	}

	seenIDs := make(map[string]bool)
	var found []DeviceEvent

	for _, p := range ports {
		if !Match(p.Name, dm.opts.Include, dm.opts.Exclude) {
			continue
		}
		seenIDs[p.Name] = true

		dm.mu.RLock()
		_, exists := dm.controllers[p.Name]
		dm.mu.RUnlock()
		if exists {
			continue
		}

		c, err := dm.open(p)
		if err != nil {
			// retried on the next scan
			debug.Log("devices", "open %s: %v", p.Name, err)
			continue
		}

		dm.mu.Lock()
		dm.controllers[p.Name] = c
		dm.mu.Unlock()

		debug.Log("devices", "connected %s", p.Name)
		found = append(found, DeviceEvent{Type: DeviceConnected, Controller: c, ID: p.Name})
	}

	// Check for disconnects
	dm.mu.Lock()
	for id, c := range dm.controllers {
		if seenIDs[id] {
			continue
		}
		c.Close()
		delete(dm.controllers, id)
		debug.Log("devices", "disconnected %s", id)
		found = append(found, DeviceEvent{Type: DeviceDisconnected, ID: id})
	}
	dm.mu.Unlock()

	for _, ev := range found {
		select {
		case dm.events <- ev:
		case <-ctx.Done():
			return
		}
	}
}

func (dm *DeviceManager) closeAll() {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	for _, c := range dm.controllers {
		c.Close()
	}
	dm.controllers = make(map[string]Controller)
}

// Match reports whether a port name passes the include/exclude patterns.
// Matching is case-insensitive substring; exclude wins.
func Match(name string, include, exclude []string) bool {
	lower := strings.ToLower(name)
	for _, pat := range exclude {
		if pat != "" && strings.Contains(lower, strings.ToLower(pat)) {
			return false
		}
	}
	if len(include) == 0 {
		return true
	}
	for _, pat := range include {
		if strings.Contains(lower, strings.ToLower(pat)) {
			return true
		}
	}
	return false
}

// InPortNames lists the names of all input ports
func InPortNames() ([]string, bool) {
	ports, ok := driverPorts()
	names := make([]string, len(ports))
	for i, p := range ports {
		names[i] = p.Name
	}
	return names, ok
}
