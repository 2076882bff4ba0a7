package logic

import "errors"

// ErrOutOfRange is returned when a persisted setpoint falls outside its range.
var ErrOutOfRange = errors.New("setpoint out of range")

// SetpointStore is non-volatile storage for setpoints. Stores do not validate
// values; range checks happen in this package.
type SetpointStore interface {
	// Get returns the stored value for key. ok is false when nothing is stored.
	Get(key string) (value int, ok bool, err error)
	Set(key string, value int) error
}

// Setpoint describes a bounded, persisted user setting.
type Setpoint struct {
	Key     string
	Low     int
	High    int
	Default int
}

// DefaultTempSetpoint returns the temperature threshold setting in °C.
func DefaultTempSetpoint() Setpoint {
	return Setpoint{Key: KeyTempThreshold, Low: TempLow, High: TempHigh, Default: DefaultTempThreshold}
}

// DefaultTimeSetpoint returns the sterilization time setting in minutes.
func DefaultTimeSetpoint() Setpoint {
	return Setpoint{Key: KeyTimeThreshold, Low: TimeLow, High: TimeHigh, Default: DefaultTimeThreshold}
}

// Contains reports whether v is within [Low, High].
func (s Setpoint) Contains(v int) bool {
	return v >= s.Low && v <= s.High
}

// Clamp limits v to [Low, High].
func (s Setpoint) Clamp(v int) int {
	if v < s.Low {
		return s.Low
	}
	if v > s.High {
		return s.High
	}
	return v
}
