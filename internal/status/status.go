// Package status provides a thread-safe status tracker for the sterilizer daemon.
// It is read by the HTTP handlers and by the MQTT lifecycle events.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/sterilizer/internal/logic"
)

// BlinkPeriod is the full on/off cycle of blinking display glyphs.
const BlinkPeriod = 2 * time.Second

// NetworkInfo contains network state.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	PollMs      int64
	HeartbeatMs int64
	Broker      string
	HTTPPort    string
	WSBroker    string // Websocket broker URL for browser MQTT (empty = disabled)
	NATSURL     string
	StorePath   string
}

// Counts are running totals since startup.
type Counts struct {
	ShortPresses  int
	LongPresses   int
	SecretPresses int
	Transitions   int
	Cycles        int // completed sterilization cycles
	SensorTrips   int
}

// Add tallies one tick of button events.
func (c *Counts) Add(ev logic.ButtonEvents) {
	for _, e := range []logic.Event{ev.Plus, ev.Minus, ev.Select, ev.Start} {
		switch e {
		case logic.EventShortPress:
			c.ShortPresses++
		case logic.EventLongPress:
			c.LongPresses++
		case logic.EventSecretPress:
			c.SecretPresses++
		}
	}
}

// Control is the appliance state shown on the display.
type Control struct {
	Mode          logic.Mode
	LastMode      logic.Mode
	TempThreshold int
	TimeThreshold int
	TempSetting   bool // temperature setpoint being edited
	TimeSetting   bool // time setpoint being edited

	Temperature    int
	HasTemperature bool
	SensorFaults   int

	Heat           bool
	Vent           bool
	TimerStarted   bool
	ElapsedMinutes int
	Finished       bool
	Buzzer         bool
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type and stays valid after the lock is released.
type Snapshot struct {
	Control
	Counts        Counts
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// BlinkOn reports whether blinking glyphs (setpoint being edited, active
// relays) are shown at Now: on for the first half of each BlinkPeriod.
func (s Snapshot) BlinkOn() bool {
	return s.Uptime()%BlinkPeriod < BlinkPeriod/2
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			Control:   Control{Mode: logic.ModeIdle, LastMode: logic.ModeIdle},
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update sets the appliance state and counters.
// Called from runLoop on every tick.
func (t *Tracker) Update(c Control, counts Counts) {
	t.mu.Lock()
	t.snap.Control = c
	t.snap.Counts = counts
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	return t.SnapshotAt(time.Now())
}

// SnapshotAt is Snapshot with an explicit Now.
func (t *Tracker) SnapshotAt(now time.Time) Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = now
	return s
}
