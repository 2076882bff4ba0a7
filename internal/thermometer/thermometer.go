// Package thermometer supplies the chamber temperature to the control loop.
// Readings arrive asynchronously; the loop reads the latest one every tick.
package thermometer

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/LopatkinEvgeniy/clock"
)

var (
	ErrNoReading = errors.New("thermometer: no reading yet")
	ErrStale     = errors.New("thermometer: reading is stale")
)

// Source provides integer °C readings.
type Source interface {
	// Read returns the latest temperature. It never blocks.
	Read() (int, error)
	Close() error
}

// Units of a temperature update.
const (
	Celsius    = "Celsius"
	Fahrenheit = "Fahrenheit"
)

// Update is a sensor message as published on the bus.
type Update struct {
	Location string      `json:"location"`
	Type     string      `json:"type"`
	Value    Temperature `json:"value"`
}

// Temperature is a value with its unit.
type Temperature struct {
	Degrees float64 `json:"degrees"`
	Unit    string  `json:"unit"`
}

// Celsius returns the value in °C.
func (t Temperature) Celsius() (float64, error) {
	switch strings.ToLower(t.Unit) {
	case "", "c", "celsius":
		return t.Degrees, nil
	case "f", "fahrenheit":
		return (t.Degrees - 32) * 5 / 9, nil
	}
	return 0, fmt.Errorf("unknown temperature unit %q", t.Unit)
}

// Decode parses a sensor message and returns its value in °C.
func Decode(data []byte) (float64, error) {
	var u Update
	if err := json.Unmarshal(data, &u); err != nil {
		return 0, fmt.Errorf("decode update: %w", err)
	}
	if u.Type != "" && u.Type != "temperature" {
		return 0, fmt.Errorf("unexpected sensor type %q", u.Type)
	}
	return u.Value.Celsius()
}

// Latest holds the most recent reading. It is safe for concurrent use.
type Latest struct {
	clock  clock.Clock
	maxAge time.Duration

	mu      sync.RWMutex
	celsius float64
	at      time.Time
	valid   bool
}

// NewLatest creates an empty holder. Readings older than maxAge are stale;
// maxAge <= 0 disables the check.
func NewLatest(cl clock.Clock, maxAge time.Duration) *Latest {
	return &Latest{clock: cl, maxAge: maxAge}
}

// Set stores a reading taken now.
func (l *Latest) Set(celsius float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.celsius = celsius
	l.at = l.clock.Now()
	l.valid = true
}

// Read returns the latest reading rounded to whole degrees.
func (l *Latest) Read() (int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if !l.valid {
		return 0, ErrNoReading
	}
	if l.maxAge > 0 {
		if age := l.clock.Now().Sub(l.at); age > l.maxAge {
			return 0, fmt.Errorf("%w: %s old", ErrStale, age.Truncate(time.Millisecond))
		}
	}
	return int(math.Round(l.celsius)), nil
}

// Age returns the time since the last reading, or 0 if there is none.
func (l *Latest) Age() time.Duration {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if !l.valid {
		return 0
	}
	return l.clock.Now().Sub(l.at)
}
