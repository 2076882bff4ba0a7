package logic

// Plausible temperature readings in °C. Anything outside is a sensor fault.
const (
	SensorPlausibleLow  = -20
	SensorPlausibleHigh = 300
)

// DefaultMaxFaults is the number of consecutive faults that trips the guard.
const DefaultMaxFaults = 300

// SensorGuard counts consecutive temperature faults and trips once when
// the count reaches MaxFaults. It stays tripped until a good reading resets
// the count, and callers hold the controller in ERROR for that whole time.
type SensorGuard struct {
	maxFaults int
	faults    int
	tripped   bool
	lastGood  int
	seenGood  bool
}

// NewSensorGuard creates a guard. maxFaults <= 0 uses DefaultMaxFaults.
func NewSensorGuard(maxFaults int) *SensorGuard {
	if maxFaults <= 0 {
		maxFaults = DefaultMaxFaults
	}
	return &SensorGuard{maxFaults: maxFaults}
}

// Observe records one reading. It returns true on the tick the guard trips;
// further faults in the same run do not trip it again until a good reading.
func (g *SensorGuard) Observe(temp int, err error) bool {
	if err == nil && temp >= SensorPlausibleLow && temp <= SensorPlausibleHigh {
		g.faults = 0
		g.tripped = false
		g.lastGood = temp
		g.seenGood = true
		return false
	}

	g.faults++
	if g.faults >= g.maxFaults && !g.tripped {
		g.tripped = true
		return true
	}
	return false
}

// Faults returns the current consecutive fault count.
func (g *SensorGuard) Faults() int {
	return g.faults
}

// Tripped reports whether the guard has tripped since the last good reading.
func (g *SensorGuard) Tripped() bool {
	return g.tripped
}

// LastGood returns the last plausible reading, or 0 before the first one.
func (g *SensorGuard) LastGood() int {
	return g.lastGood
}

// HasReading reports whether any plausible reading has been observed.
func (g *SensorGuard) HasReading() bool {
	return g.seenGood
}
