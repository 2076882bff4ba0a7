package logic

import "time"

// ButtonConfig holds the press classification thresholds of a button.
type ButtonConfig struct {
	Debounce time.Duration
	Long     time.Duration
	Secret   time.Duration
	Max      time.Duration
}

// DefaultButtonConfig returns the thresholds shared by all front panel buttons.
func DefaultButtonConfig() ButtonConfig {
	return ButtonConfig{
		Debounce: DefaultDebounceDelay,
		Long:     DefaultLongPress,
		Secret:   DefaultSecretPress,
		Max:      DefaultMaxPress,
	}
}

// Button debounces one digital input and classifies press durations.
type Button struct {
	name string
	cfg  ButtonConfig

	// Last raw reading, used to detect bounces
	prevRaw bool
	// Debounced state (true = pressed)
	pressed bool
	// Time of the last raw change
	debounceSince time.Time
	// Time of the last debounced change
	pressStart    time.Time
	pressDuration time.Duration

	event     Event
	lastEvent Event

	// Set once per press when LONG/SECRET has been emitted
	longSignaled   bool
	secretSignaled bool
}

// NewButton creates a released button with the given thresholds.
func NewButton(name string, cfg ButtonConfig) *Button {
	return &Button{name: name, cfg: cfg}
}

// Name returns the button label.
func (b *Button) Name() string {
	return b.name
}

// Poll takes the logical reading for this tick and returns the classified event.
// It must be called exactly once per tick with a non-decreasing now.
func (b *Button) Poll(raw bool, now time.Time) Event {
	b.event = EventNone

	if raw != b.prevRaw {
		b.debounceSince = now
	}
	b.prevRaw = raw

	if now.Sub(b.debounceSince) > b.cfg.Debounce && raw != b.pressed {
		b.pressed = raw
		b.pressStart = now
		b.pressDuration = 0
		b.longSignaled = false
		b.secretSignaled = false
		if b.pressed {
			b.emit(EventShortPress)
		} else {
			b.lastEvent = EventNone
		}
		return b.event
	}

	if !b.pressed {
		return b.event
	}

	b.pressDuration = now.Sub(b.pressStart)
	d := b.pressDuration
	switch {
	case d > b.cfg.Long && d < b.cfg.Secret:
		if !b.longSignaled {
			b.longSignaled = true
			b.emit(EventLongPress)
		}
	case d > b.cfg.Secret && d < b.cfg.Max:
		if !b.secretSignaled {
			b.secretSignaled = true
			b.emit(EventSecretPress)
		}
	}
	return b.event
}

func (b *Button) emit(e Event) {
	b.event = e
	b.lastEvent = e
}

// Pressed returns the debounced state.
func (b *Button) Pressed() bool {
	return b.pressed
}

// PressDuration returns how long the button has been held, as of the last Poll.
func (b *Button) PressDuration() time.Duration {
	if !b.pressed {
		return 0
	}
	return b.pressDuration
}

// Event returns the event produced by the last Poll.
func (b *Button) Event() Event {
	return b.event
}

// LastEvent returns the last non-NONE event of the current press, or NONE
// once the button has been released.
func (b *Button) LastEvent() Event {
	return b.lastEvent
}

// Hold returns the hold level reached by the current press: EventLongPress or
// EventSecretPress while the button is held past those thresholds, EventNone
// otherwise. A stuck press (held past the max threshold) reports EventNone.
func (b *Button) Hold() Event {
	if !b.pressed || b.Stuck() {
		return EventNone
	}
	switch {
	case b.secretSignaled:
		return EventSecretPress
	case b.longSignaled:
		return EventLongPress
	}
	return EventNone
}

// Stuck reports whether the current press has lasted beyond the max threshold.
func (b *Button) Stuck() bool {
	return b.pressed && b.pressDuration >= b.cfg.Max
}
