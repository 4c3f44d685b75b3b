package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bep/debounce"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-eartrain/config"
	"go-eartrain/debug"
	"go-eartrain/engine"
	"go-eartrain/midi"
	"go-eartrain/pitch"
	"go-eartrain/synth"
	"go-eartrain/theme"
	"go-eartrain/widgets"
)

// shared holds what the value-typed Model must not copy
type shared struct {
	ctx         context.Context
	cancel      context.CancelFunc
	events      <-chan engine.Event
	save        func(func())
	controllers map[string]midi.Controller
}

type Model struct {
	Engine    *engine.Engine
	DeviceMgr *midi.DeviceManager // nil without MIDI input
	Theme     *theme.Theme
	Config    *config.Config

	sh       *shared
	snap     engine.Snapshot
	hint     []string
	status   string
	quitting bool
}

// EngineEventMsg carries a session event
type EngineEventMsg engine.Event

// DeviceEventMsg carries a controller hot-plug event
type DeviceEventMsg midi.DeviceEvent

// resultMsg is the outcome of an engine command run as a tea.Cmd
type resultMsg struct {
	op  string
	err error
}

type hintMsg struct {
	names []string
	err   error
}

type noteMsg struct {
	id string
	ev midi.NoteEvent
}

type padMsg struct {
	id string
	ev midi.PadEvent
}

type controllerGoneMsg struct{ id string }

func NewModel(eng *engine.Engine, deviceMgr *midi.DeviceManager, th *theme.Theme, cfg *config.Config) Model {
	ctx, cancel := context.WithCancel(context.Background())
	return Model{
		Engine:    eng,
		DeviceMgr: deviceMgr,
		Theme:     th,
		Config:    cfg,
		sh: &shared{
			ctx:         ctx,
			cancel:      cancel,
			events:      eng.Subscribe(),
			save:        debounce.New(500 * time.Millisecond),
			controllers: make(map[string]midi.Controller),
		},
		snap: eng.Snapshot(),
	}
}

func ListenForEvents(events <-chan engine.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return EngineEventMsg(ev)
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

func listenForNotes(c midi.Controller) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-c.NoteEvents()
		if !ok {
			return controllerGoneMsg{id: c.ID()}
		}
		return noteMsg{id: c.ID(), ev: ev}
	}
}

func listenForPads(c midi.Controller) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-c.PadEvents()
		if !ok {
			return controllerGoneMsg{id: c.ID()}
		}
		return padMsg{id: c.ID(), ev: ev}
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{ListenForEvents(m.sh.events)}
	if m.DeviceMgr != nil {
		cmds = append(cmds, ListenForDevices(m.DeviceMgr))
	}
	return tea.Batch(cmds...)
}

// run executes an engine command off the UI goroutine
func (m Model) run(op string, f func(ctx context.Context) (engine.Snapshot, error)) tea.Cmd {
	ctx := m.sh.ctx
	return func() tea.Msg {
		_, err := f(ctx)
		return resultMsg{op: op, err: err}
	}
}

func (m Model) press(p pitch.Pitch) tea.Cmd {
	return m.run("press "+p.Name, func(ctx context.Context) (engine.Snapshot, error) {
		return m.Engine.PressKey(ctx, p)
	})
}

func (m Model) start() tea.Cmd {
	if m.snap.State == engine.StateAwaitingSelection {
		// space mid-round replays instead
		return m.replay()
	}
	return m.run("start", m.Engine.StartRound)
}

func (m Model) replay() tea.Cmd {
	return m.run("replay", m.Engine.Replay)
}

func (m Model) submit() tea.Cmd {
	return m.run("submit", func(ctx context.Context) (engine.Snapshot, error) {
		res, err := m.Engine.Submit(ctx)
		return res.Snapshot, err
	})
}

func (m Model) clear() tea.Cmd {
	return m.run("clear", func(context.Context) (engine.Snapshot, error) {
		return m.Engine.ClearSelection()
	})
}

func (m Model) preview() tea.Cmd {
	return m.run("preview", m.Engine.PreviewSelection)
}

func (m Model) requestHint() tea.Cmd {
	return func() tea.Msg {
		names, err := m.Engine.Hint()
		return hintMsg{names: names, err: err}
	}
}

func (m Model) configure(noteCount int, mode engine.Mode) tea.Cmd {
	m.Config.SetGame(noteCount, mode)
	m.saveConfig()
	return m.run("configure", func(context.Context) (engine.Snapshot, error) {
		return m.Engine.Configure(noteCount, mode)
	})
}

// saveConfig writes a copy of the config once changes settle
func (m Model) saveConfig() {
	cfg := *m.Config
	m.sh.save(func() {
		if err := cfg.Save(); err != nil {
			debug.Log("tui", "save config: %v", err)
		}
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case EngineEventMsg:
		m.snap = msg.Snapshot
		if msg.Kind == engine.EventRoundStarted || msg.Kind == engine.EventConfigured {
			m.hint = nil
		}
		return m, tea.Batch(ListenForEvents(m.sh.events), m.updateLEDs())

	case resultMsg:
		// snapshots arrive as events, which are never older than a result
		m.status = describeError(msg.op, msg.err)
		return m, nil

	case hintMsg:
		m.hint = msg.names
		m.status = describeError("hint", msg.err)
		return m, nil

	case DeviceEventMsg:
		return m.handleDevice(midi.DeviceEvent(msg))

	case noteMsg:
		cmd := m.press(msg.ev.Pitch())
		if c, ok := m.sh.controllers[msg.id]; ok {
			cmd = tea.Batch(cmd, listenForNotes(c))
		}
		return m, cmd

	case padMsg:
		cmd := m.handlePad(midi.PadAt(msg.ev.Row, msg.ev.Col))
		if c, ok := m.sh.controllers[msg.id]; ok {
			cmd = tea.Batch(cmd, listenForPads(c))
		}
		return m, cmd

	case controllerGoneMsg:
		delete(m.sh.controllers, msg.id)
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if p, ok := pitchForKey(key); ok {
		return m, m.press(p)
	}

	switch key {
	case "q", "ctrl+c":
		m.quitting = true
		m.sh.cancel()
		m.Engine.Close()
		return m, tea.Quit

	case " ":
		return m, m.start()

	case "r":
		return m, m.replay()

	case "enter":
		return m, m.submit()

	case "backspace":
		return m, m.clear()

	case "p":
		return m, m.preview()

	case "?":
		return m, m.requestHint()

	case "1", "2", "3", "4", "5", "6", "7", "8":
		n := int(key[0] - '0')
		return m, m.configure(n, m.snap.Mode)

	case "m":
		mode := engine.ModeUnordered
		if m.snap.Mode == engine.ModeUnordered {
			mode = engine.ModeOrdered
		}
		n := m.snap.NoteCount
		if mode == engine.ModeUnordered && n == 1 {
			// a one-note chord is the ordered question again
			n = 2
		}
		return m, m.configure(n, mode)

	case "c":
		next := (m.snap.Presentation + 1) % 3
		m.Config.Game.Presentation = next.String()
		m.saveConfig()
		return m, m.run("presentation", func(context.Context) (engine.Snapshot, error) {
			return engine.Snapshot{}, m.Engine.SetPresentation(next)
		})

	case "l":
		m.Config.UI.Labels = !m.Config.UI.Labels
		m.saveConfig()
	}
	return m, nil
}

func (m Model) handlePad(pad midi.Pad) tea.Cmd {
	switch pad.Action {
	case midi.PadPitch:
		return m.press(pad.Pitch)
	case midi.PadStart:
		return m.start()
	case midi.PadReplay:
		return m.replay()
	case midi.PadSubmit:
		return m.submit()
	case midi.PadClear:
		return m.clear()
	case midi.PadPreview:
		return m.preview()
	case midi.PadHint:
		return m.requestHint()
	}
	return nil
}

func (m Model) handleDevice(event midi.DeviceEvent) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{ListenForDevices(m.DeviceMgr)}
	switch event.Type {
	case midi.DeviceConnected:
		c := event.Controller
		m.sh.controllers[c.ID()] = c
		m.status = fmt.Sprintf("%s connected: %s", c.Type(), c.ID())
		if c.Type() == midi.ControllerLaunchpad {
			cmds = append(cmds, listenForPads(c), m.updateLEDs())
		} else {
			cmds = append(cmds, listenForNotes(c))
		}
	case midi.DeviceDisconnected:
		delete(m.sh.controllers, event.ID)
		m.status = "disconnected: " + event.ID
	}
	return m, tea.Batch(cmds...)
}

// updateLEDs mirrors the selection on connected Launchpads
func (m Model) updateLEDs() tea.Cmd {
	var pads []midi.Controller
	for _, c := range m.sh.controllers {
		if c.Type() == midi.ControllerLaunchpad {
			pads = append(pads, c)
		}
	}
	if len(pads) == 0 {
		return nil
	}

	updates := midi.LayoutLEDs(selectedPitches(m.snap.Selection), m.ledColors())
	return func() tea.Msg {
		for _, c := range pads {
			if err := c.SetLEDBatch(updates); err != nil {
				debug.Log("tui", "leds %s: %v", c.ID(), err)
			}
		}
		return nil
	}
}

func (m Model) ledColors() midi.LEDColors {
	return midi.LEDColors{
		White:    m.Theme.RGB(theme.RoleFG),
		Black:    m.Theme.RGB(theme.RoleMuted),
		Selected: m.Theme.RGB(theme.RoleActive),
		Control:  m.Theme.RGB(theme.RoleAccent),
	}
}

func selectedPitches(names []string) []pitch.Pitch {
	ps := make([]pitch.Pitch, 0, len(names))
	for _, n := range names {
		if p, ok := pitch.Lookup(n); ok {
			ps = append(ps, p)
		}
	}
	return ps
}

// describeError turns a command error into a status line
func describeError(op string, err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled):
		return ""
	case errors.Is(err, synth.ErrAudioDeviceUnavailable):
		return err.Error()
	case errors.Is(err, engine.ErrReplayLimitExceeded):
		return "no replays left"
	case errors.Is(err, engine.ErrIncompleteSelection):
		return "answer is not complete yet"
	case errors.Is(err, engine.ErrIllegalStateTransition):
		return "can't " + op + " right now"
	}
	return op + ": " + err.Error()
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	th := m.Theme
	headerStyle := lipgloss.NewStyle().Foreground(th.Accent()).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(th.Muted())
	statusStyle := lipgloss.NewStyle().Foreground(th.Warning())

	header := headerStyle.Render("go-eartrain") + "  " + widgets.RenderStatus(th, m.snap)
	if n := len(m.sh.controllers); n > 0 {
		header += dimStyle.Render(fmt.Sprintf("  midi:%d", n))
	}

	keyboard := widgets.RenderKeyboard(th, widgets.Keyboard{
		Bindings: keyBindings(),
		Selected: m.snap.Selection,
		Hint:     m.hint,
		Labels:   m.Config.UI.Labels,
	})

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")
	out.WriteString(widgets.RenderPrompt(th, m.snap))
	if o := widgets.RenderOutcome(th, m.snap.LastOutcome); o != "" {
		out.WriteString("   ")
		out.WriteString(o)
	}
	out.WriteString("\n\n")
	if m.snap.TargetLength > 0 {
		out.WriteString(widgets.RenderSlots(th, m.snap.Selection, m.snap.TargetLength))
		out.WriteString("\n\n")
	}
	out.WriteString(keyboard)
	out.WriteString("\n\n")
	if len(m.hint) > 0 {
		out.WriteString(dimStyle.Render("hint: " + strings.Join(m.hint, " ")))
		out.WriteString("\n")
	}
	if m.status != "" {
		out.WriteString(statusStyle.Render(m.status))
		out.WriteString("\n")
	}
	out.WriteString("\n")
	out.WriteString(dimStyle.Render(widgets.RenderKeyHelp(helpSections)))
	if m.hasLaunchpad() {
		out.WriteString("\n\n")
		out.WriteString(m.launchpadView())
	}

	return out.String()
}

func (m Model) hasLaunchpad() bool {
	for _, c := range m.sh.controllers {
		if c.Type() == midi.ControllerLaunchpad {
			return true
		}
	}
	return false
}

// launchpadView shows the pad layout as lit on the device
func (m Model) launchpadView() string {
	var g widgets.PadGrid
	for _, u := range midi.LayoutLEDs(selectedPitches(m.snap.Selection), m.ledColors()) {
		g.Set(u.Row, u.Col, u.Color)
	}
	return widgets.RenderPadGrid(g)
}
