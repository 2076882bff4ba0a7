// Package logic contains the pure control core of the sterilizer: button
// debouncing, the operating-mode state machine and the relay flow controller.
// This package has NO external dependencies (no GPIO, MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import "time"

// Event is the classification of a button's activity during one tick.
type Event int

const (
	EventNone Event = iota
	EventShortPress
	EventLongPress
	EventSecretPress
)

func (e Event) String() string {
	switch e {
	case EventShortPress:
		return "SHORT_PRESS"
	case EventLongPress:
		return "LONG_PRESS"
	case EventSecretPress:
		return "SECRET_PRESS"
	default:
		return "NONE"
	}
}

// Mode is the operating mode of the appliance.
type Mode int

const (
	ModeIdle Mode = iota
	ModeSetup
	ModeRunning
	ModeError
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "IDLE"
	case ModeSetup:
		return "SETUP"
	case ModeRunning:
		return "RUNNING"
	case ModeError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Button press thresholds.
const (
	DefaultDebounceDelay = 25 * time.Millisecond
	DefaultLongPress     = 1000 * time.Millisecond
	DefaultSecretPress   = 3000 * time.Millisecond
	DefaultMaxPress      = 20000 * time.Millisecond
)

// Setpoint defaults and ranges.
const (
	DefaultTempThreshold = 180 // °C
	DefaultTimeThreshold = 120 // minutes

	TempLow  = 50
	TempHigh = 220
	TimeLow  = 10
	TimeHigh = 240
)

// Storage keys for the persisted setpoints.
const (
	KeyTempThreshold = "temp_threshold"
	KeyTimeThreshold = "time_threshold"
)

// Flow control constants.
const (
	// DutyBand is how far below the temperature threshold duty cycling starts.
	DutyBand = 12
	// SensorMax is the practical maximum of the heater; the duty fraction is
	// threshold / SensorMax.
	SensorMax = 220.0
	// DutyWindow is the length of one heat relay on/off window.
	DutyWindow = 5000 * time.Millisecond
)

// ButtonEvents holds the per-tick events of the four front panel buttons.
type ButtonEvents struct {
	Plus   Event
	Minus  Event
	Select Event
	Start  Event
}

// Any reports whether any button produced the given event.
func (b ButtonEvents) Any(e Event) bool {
	return b.Plus == e || b.Minus == e || b.Select == e || b.Start == e
}

// Inputs is a single sample of the logical button levels (true = pressed).
type Inputs struct {
	Plus   bool
	Minus  bool
	Select bool
	Start  bool
	Time   time.Time
}

// Step is the outcome of one Controller tick.
type Step struct {
	Events ButtonEvents
	From   Mode
	To     Mode
	// Persisted is true when the tick wrote setpoints to storage.
	Persisted bool
	// Err is a storage failure while persisting setpoints.
	Err error
}

// Changed reports whether the tick caused a mode transition.
func (s Step) Changed() bool {
	return s.From != s.To
}

// Tone is an audible feedback request. A zero Tone is silence.
type Tone struct {
	Frequency int // Hz
	Duration  time.Duration
}

// IsZero reports whether the tone is silence.
func (t Tone) IsZero() bool {
	return t.Duration <= 0
}
