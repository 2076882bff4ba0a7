package logic

import "time"

// Flow converts the operating mode, a temperature sample and the setpoints
// into heat and vent relay decisions.
type Flow struct {
	// Reference point for the duty cycle window phase
	epoch time.Time

	heat bool
	vent bool
	// Both physical outputs driven inactive, bypassing heat/vent bookkeeping
	forcedOff bool

	timerStarted bool
	timerStart   time.Time
	elapsed      int // minutes
	finished     bool
}

// NewFlow creates a flow controller with all relays off. epoch anchors the
// repeating duty cycle windows.
func NewFlow(epoch time.Time) *Flow {
	return &Flow{epoch: epoch}
}

// Control updates the relay and timer state for one tick.
func (f *Flow) Control(mode Mode, temp, tempThreshold, timeThreshold int, now time.Time) {
	f.forcedOff = false

	switch mode {
	case ModeRunning:
		f.running(temp, tempThreshold, timeThreshold, now)
	case ModeIdle, ModeSetup:
		f.heat = false
		f.vent = false
		f.resetTimer()
		f.finished = false
	case ModeError:
		f.forcedOff = true
		f.resetTimer()
		f.finished = false
	}
}

func (f *Flow) running(temp, tempThreshold, timeThreshold int, now time.Time) {
	// A finished cycle stays off until the mode changes.
	if f.finished {
		f.heat = false
		f.vent = false
		return
	}

	if temp >= tempThreshold && !f.timerStarted {
		f.timerStarted = true
		f.timerStart = now
	}
	if f.timerStarted {
		f.elapsed = int(now.Sub(f.timerStart) / time.Minute)
	}

	if f.elapsed > timeThreshold {
		f.heat = false
		f.vent = false
		f.finished = true
		f.resetTimer()
		return
	}

	f.vent = true
	switch {
	case temp < tempThreshold-DutyBand:
		f.heat = true
	case temp < tempThreshold:
		f.heat = f.dutyOn(tempThreshold, now)
	default:
		f.heat = false
	}
}

// dutyOn reports whether the heat relay is inside the on part of the
// current duty window. The on time is proportional to threshold/SensorMax.
func (f *Flow) dutyOn(tempThreshold int, now time.Time) bool {
	return f.phase(now) <= DutyPeriod(tempThreshold)
}

func (f *Flow) phase(now time.Time) time.Duration {
	p := now.Sub(f.epoch) % DutyWindow
	if p < 0 {
		p += DutyWindow
	}
	return p
}

// DutyPeriod returns the heat relay on time per DutyWindow for a threshold,
// truncated to whole milliseconds.
func DutyPeriod(tempThreshold int) time.Duration {
	coefficient := float64(tempThreshold) / SensorMax
	return time.Duration(coefficient*float64(DutyWindow.Milliseconds())) * time.Millisecond
}

func (f *Flow) resetTimer() {
	f.timerStarted = false
	f.timerStart = time.Time{}
	f.elapsed = 0
}

// HeatOn returns the heat relay state.
func (f *Flow) HeatOn() bool {
	return f.heat
}

// VentOn returns the vent relay state.
func (f *Flow) VentOn() bool {
	return f.vent
}

// Outputs returns the levels to drive on the physical relay lines. In ERROR
// mode both lines are inactive whatever the relay bookkeeping says.
func (f *Flow) Outputs() (heat, vent bool) {
	if f.forcedOff {
		return false, false
	}
	return f.heat, f.vent
}

// TimerStarted reports whether the sterilization timer is running.
func (f *Flow) TimerStarted() bool {
	return f.timerStarted
}

// Finished reports whether the current RUNNING cycle has completed.
func (f *Flow) Finished() bool {
	return f.finished
}

// ElapsedMinutes returns the whole minutes since the timer started.
func (f *Flow) ElapsedMinutes() int {
	return f.elapsed
}
