package midi

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver

	"go-eartrain/debug"
)

// ErrScanTimeout is returned when the MIDI backend does not answer in time
var ErrScanTimeout = errors.New("midi port scan timed out")

// scanTimeout bounds a port listing (CoreMIDI can hang)
const scanTimeout = 3 * time.Second

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

// DeviceManager handles hot-plug detection of keyboards and Launchpads
type DeviceManager struct {
	controllers map[string]Controller
	mu          sync.RWMutex
	events      chan DeviceEvent
	pollRate    time.Duration

	// keyboards are port name fragments to accept; empty accepts any input
	keyboards []string
	launchpad bool
}

// NewDeviceManager creates a new device manager
func NewDeviceManager(keyboards []string, launchpad bool) *DeviceManager {
	return &DeviceManager{
		controllers: make(map[string]Controller),
		events:      make(chan DeviceEvent, 16),
		pollRate:    time.Second,
		keyboards:   keyboards,
		launchpad:   launchpad,
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
	ticker := time.NewTicker(dm.pollRate)
	defer ticker.Stop()

	dm.scan()

	for {
		select {
		case <-ctx.Done():
			dm.closeAll()
			close(dm.events)
			return
		case <-ticker.C:
			dm.scan()
		}
	}
}

// Ports lists the names of the MIDI ports
type Ports struct {
	In  []string
	Out []string
}

// ListPorts returns the port names, giving up after timeout
func ListPorts(timeout time.Duration) (Ports, error) {
	ins, outs, err := getPorts(timeout)
	if err != nil {
		return Ports{}, err
	}
	var p Ports
	for _, in := range ins {
		p.In = append(p.In, in.String())
	}
	for _, out := range outs {
		p.Out = append(p.Out, out.String())
	}
	return p, nil
}

func getPorts(timeout time.Duration) ([]drivers.In, []drivers.Out, error) {
	type portsResult struct {
		inPorts  []drivers.In
		outPorts []drivers.Out
	}

	ch := make(chan portsResult, 1)
	go func() {
		ch <- portsResult{inPorts: gomidi.GetInPorts(), outPorts: gomidi.GetOutPorts()}
	}()

	select {
	case r := <-ch:
		return r.inPorts, r.outPorts, nil
	case <-time.After(timeout):
		// user needs to run: sudo killall coreaudiod midiserver
		return nil, nil, ErrScanTimeout
	}
}

func (dm *DeviceManager) scan() {
	inPorts, outPorts, err := getPorts(scanTimeout)
	if err != nil {
		debug.Log("midi", "scan skipped: %v", err)
		return
	}

	seenIDs := make(map[string]bool)
	var events []DeviceEvent

	for _, inPort := range inPorts {
		id := inPort.String()
		kind := classify(id, dm.keyboards, dm.launchpad)
		if kind == ControllerUnknown {
			continue
		}
		seenIDs[id] = true

		dm.mu.RLock()
		_, exists := dm.controllers[id]
		dm.mu.RUnlock()
		if exists {
			continue
		}

		c, err := dm.open(kind, id, inPort, outPorts)
		if err != nil {
			debug.Log("midi", "open %s %q: %v", kind, id, err)
			continue
		}

		dm.mu.Lock()
		dm.controllers[id] = c
		dm.mu.Unlock()
		debug.Log("midi", "connected %s %q", kind, id)
		events = append(events, DeviceEvent{Type: DeviceConnected, Controller: c, ID: id})
	}

	dm.mu.Lock()
	for id, c := range dm.controllers {
		if seenIDs[id] {
			continue
		}
		c.Close()
		delete(dm.controllers, id)
		debug.Log("midi", "disconnected %q", id)
		events = append(events, DeviceEvent{Type: DeviceDisconnected, ID: id})
	}
	dm.mu.Unlock()

	for _, ev := range events {
		dm.events <- ev
	}
}

func (dm *DeviceManager) open(kind ControllerType, id string, in drivers.In, outs []drivers.Out) (Controller, error) {
	if kind == ControllerKeyboard {
		return NewKeyboardController(id, in)
	}

	var outPort drivers.Out
	name := strings.ToLower(id)
	for _, op := range outs {
		if strings.ToLower(op.String()) == name {
			outPort = op
			break
		}
	}
	return NewLaunchpadController(id, in, outPort)
}

func (dm *DeviceManager) closeAll() {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	for _, c := range dm.controllers {
		c.Close()
	}
	dm.controllers = make(map[string]Controller)
}

// classify decides what an input port is. Launchpads are only picked up when
// enabled; ALSA through ports are never keyboards.
func classify(name string, keyboards []string, launchpad bool) ControllerType {
	lower := strings.ToLower(name)
	if isLaunchpad(lower) {
		if launchpad {
			return ControllerLaunchpad
		}
		return ControllerUnknown
	}
	if len(keyboards) == 0 {
		if strings.Contains(lower, "through") {
			return ControllerUnknown
		}
		return ControllerKeyboard
	}
	for _, k := range keyboards {
		if k != "" && strings.Contains(lower, strings.ToLower(k)) {
			return ControllerKeyboard
		}
	}
	return ControllerUnknown
}

func isLaunchpad(name string) bool {
	name = strings.ToLower(name)
	return strings.Contains(name, "launchpad") && strings.Contains(name, "midi")
}
