package logic

import (
	"errors"
	"fmt"
)

// ControllerConfig configures a Controller.
type ControllerConfig struct {
	Buttons ButtonConfig
	Temp    Setpoint
	Time    Setpoint
}

// DefaultControllerConfig returns the front panel thresholds and setpoint ranges.
func DefaultControllerConfig() ControllerConfig {
	return ControllerConfig{
		Buttons: DefaultButtonConfig(),
		Temp:    DefaultTempSetpoint(),
		Time:    DefaultTimeSetpoint(),
	}
}

// Controller is the operating-mode state machine. It owns the four front panel
// buttons, the current and last mode and both setpoints.
//
// Controller is not safe for concurrent use; the run loop owns it.
type Controller struct {
	cfg ControllerConfig

	plus   *Button
	minus  *Button
	sel    *Button
	start  *Button
	events ButtonEvents

	mode     Mode
	lastMode Mode

	tempThreshold int
	timeThreshold int
	// Whether plus/minus edit the temperature (true) or the time in SETUP.
	// Kept across SETUP visits.
	editingTemp bool

	store SetpointStore
}

// NewController creates a controller in IDLE with default setpoints.
func NewController(cfg ControllerConfig) *Controller {
	return &Controller{
		cfg:           cfg,
		plus:          NewButton("plus", cfg.Buttons),
		minus:         NewButton("minus", cfg.Buttons),
		sel:           NewButton("select", cfg.Buttons),
		start:         NewButton("start", cfg.Buttons),
		mode:          ModeIdle,
		lastMode:      ModeIdle,
		tempThreshold: cfg.Temp.Default,
		timeThreshold: cfg.Time.Default,
		editingTemp:   true,
	}
}

// Load initializes both setpoints from store and keeps store for persisting
// on SETUP exit. A missing, unreadable or out-of-range value leaves the
// default in place; the returned error describes every such value.
func (c *Controller) Load(store SetpointStore) error {
	c.store = store
	if store == nil {
		return nil
	}
	var errs []error
	if err := loadSetpoint(store, c.cfg.Temp, &c.tempThreshold); err != nil {
		errs = append(errs, err)
	}
	if err := loadSetpoint(store, c.cfg.Time, &c.timeThreshold); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func loadSetpoint(store SetpointStore, sp Setpoint, dst *int) error {
	*dst = sp.Default
	v, ok, err := store.Get(sp.Key)
	if err != nil {
		return fmt.Errorf("load %s: %w", sp.Key, err)
	}
	if !ok {
		return nil
	}
	if !sp.Contains(v) {
		return fmt.Errorf("load %s=%d (range %d..%d): %w", sp.Key, v, sp.Low, sp.High, ErrOutOfRange)
	}
	*dst = v
	return nil
}

// Tick polls the four buttons once and runs the state machine for one tick.
func (c *Controller) Tick(in Inputs) Step {
	c.events = ButtonEvents{
		Plus:   c.plus.Poll(in.Plus, in.Time),
		Minus:  c.minus.Poll(in.Minus, in.Time),
		Select: c.sel.Poll(in.Select, in.Time),
		Start:  c.start.Poll(in.Start, in.Time),
	}

	step := Step{Events: c.events, From: c.mode}
	c.lastMode = c.mode

	switch c.mode {
	case ModeIdle:
		c.idle()
	case ModeSetup:
		step.Persisted, step.Err = c.setup()
	case ModeRunning:
		c.running()
	case ModeError:
		c.recover()
	}

	step.To = c.mode
	return step
}

func (c *Controller) idle() {
	switch {
	case c.events.Start == EventShortPress:
		c.mode = ModeRunning
	case c.events.Select == EventShortPress:
		c.mode = ModeSetup
	}
}

func (c *Controller) setup() (bool, error) {
	if c.events.Select == EventShortPress {
		c.editingTemp = !c.editingTemp
	}

	// Plus then minus, each clamped, so both together at a range edge
	// step back inside it.
	if adjusting(c.plus) {
		c.adjust(1)
	}
	if adjusting(c.minus) {
		c.adjust(-1)
	}

	if c.events.Select == EventLongPress {
		c.mode = ModeIdle
		return c.persist()
	}
	return false, nil
}

func (c *Controller) adjust(delta int) {
	if c.editingTemp {
		c.tempThreshold = c.cfg.Temp.Clamp(c.tempThreshold + delta)
	} else {
		c.timeThreshold = c.cfg.Time.Clamp(c.timeThreshold + delta)
	}
}

// adjusting reports whether b changes a setpoint this tick: once on the
// press, then every tick while held past the long-press threshold.
func adjusting(b *Button) bool {
	if b.Event() == EventShortPress {
		return true
	}
	h := b.Hold()
	return h == EventLongPress || h == EventSecretPress
}

func (c *Controller) persist() (bool, error) {
	if c.store == nil {
		return false, nil
	}
	var (
		errs  []error
		wrote bool
	)
	for _, p := range []struct {
		sp Setpoint
		v  int
	}{
		{c.cfg.Temp, c.tempThreshold},
		{c.cfg.Time, c.timeThreshold},
	} {
		if !p.sp.Contains(p.v) {
			continue
		}
		if err := c.store.Set(p.sp.Key, p.v); err != nil {
			errs = append(errs, fmt.Errorf("store %s: %w", p.sp.Key, err))
			continue
		}
		wrote = true
	}
	return wrote, errors.Join(errs...)
}

func (c *Controller) running() {
	if c.events.Start == EventSecretPress {
		c.mode = ModeIdle
	}
}

func (c *Controller) recover() {
	if c.plus.Hold() == EventLongPress && c.minus.Hold() == EventLongPress {
		c.mode = ModeIdle
	}
}

// ForceMode sets the mode from outside the state machine, e.g. ModeError on
// a sensor fault. The mode in effect becomes the last mode.
func (c *Controller) ForceMode(m Mode) {
	c.lastMode = c.mode
	c.mode = m
}

// Mode returns the current operating mode.
func (c *Controller) Mode() Mode {
	return c.mode
}

// LastMode returns the mode in effect at the start of the last tick.
func (c *Controller) LastMode() Mode {
	return c.lastMode
}

// Events returns the button events of the last tick.
func (c *Controller) Events() ButtonEvents {
	return c.events
}

func (c *Controller) TempThreshold() int {
	return c.tempThreshold
}

func (c *Controller) TimeThreshold() int {
	return c.timeThreshold
}

// EditingTemperature returns the SETUP edit target (true = temperature).
func (c *Controller) EditingTemperature() bool {
	return c.editingTemp
}

// IsTempSetting reports whether the temperature setpoint is being edited.
func (c *Controller) IsTempSetting() bool {
	return c.mode == ModeSetup && c.editingTemp
}

// IsTimeSetting reports whether the time setpoint is being edited.
func (c *Controller) IsTimeSetting() bool {
	return c.mode == ModeSetup && !c.editingTemp
}

// Buttons returns the buttons in plus, minus, select, start order.
func (c *Controller) Buttons() []*Button {
	return []*Button{c.plus, c.minus, c.sel, c.start}
}
