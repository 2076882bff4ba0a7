// Package metrics exposes control loop counters and gauges in Prometheus
// text format.
package metrics

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/VictoriaMetrics/metrics"

	"github.com/sweeney/sterilizer/internal/logic"
	"github.com/sweeney/sterilizer/internal/status"
)

var (
	// Control loop iterations
	ticksTotal = metrics.NewCounter("sterilizer_ticks_total")
	// Time spent in one control loop iteration
	tickDuration = metrics.NewSummary("sterilizer_tick_duration_seconds")
	// Mode changes, from any cause
	transitionsTotal = metrics.NewCounter("sterilizer_mode_transitions_total")
	// Ticks with no usable temperature reading
	sensorFaultsTotal = metrics.NewCounter("sterilizer_sensor_faults_total")
	// Completed sterilization cycles
	cyclesTotal = metrics.NewCounter("sterilizer_cycles_total")

	publishErrorsTotal = metrics.NewCounter("sterilizer_publish_errors_total")
)

var (
	mu      sync.Mutex
	control status.Control
)

func init() {
	metrics.NewGauge("sterilizer_mode", func() float64 { return float64(current().Mode) })
	metrics.NewGauge("sterilizer_heat_relay", func() float64 { return boolGauge(current().Heat) })
	metrics.NewGauge("sterilizer_vent_relay", func() float64 { return boolGauge(current().Vent) })
	metrics.NewGauge("sterilizer_temperature_celsius", func() float64 { return float64(current().Temperature) })
	metrics.NewGauge("sterilizer_temp_threshold_celsius", func() float64 { return float64(current().TempThreshold) })
	metrics.NewGauge("sterilizer_time_threshold_minutes", func() float64 { return float64(current().TimeThreshold) })
	metrics.NewGauge("sterilizer_elapsed_minutes", func() float64 { return float64(current().ElapsedMinutes) })
}

func current() status.Control {
	mu.Lock()
	defer mu.Unlock()
	return control
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// ObserveTick records one loop iteration that began at start.
func ObserveTick(start time.Time) {
	ticksTotal.Inc()
	tickDuration.UpdateDuration(start)
}

// SetControl publishes the latest appliance state to the gauges.
func SetControl(c status.Control) {
	mu.Lock()
	control = c
	mu.Unlock()
}

// CountEvents increments the per-button event counters for one tick.
func CountEvents(ev logic.ButtonEvents) {
	for _, b := range []struct {
		name string
		ev   logic.Event
	}{
		{"plus", ev.Plus},
		{"minus", ev.Minus},
		{"select", ev.Select},
		{"start", ev.Start},
	} {
		if b.ev == logic.EventNone {
			continue
		}
		eventCounter(b.name, b.ev).Inc()
	}
}

func eventCounter(button string, ev logic.Event) *metrics.Counter {
	return metrics.GetOrCreateCounter(fmt.Sprintf(`sterilizer_button_events_total{button=%q,kind=%q}`, button, ev))
}

// CountTransition records a mode change.
func CountTransition(from, to logic.Mode) {
	transitionsTotal.Inc()
	metrics.GetOrCreateCounter(fmt.Sprintf(`sterilizer_mode_changes_total{from=%q,to=%q}`,
		strings.ToLower(from.String()), strings.ToLower(to.String()))).Inc()
}

// CountSensorFault records a tick without a usable temperature reading.
func CountSensorFault() {
	sensorFaultsTotal.Inc()
}

// CountCycle records a completed sterilization cycle.
func CountCycle() {
	cyclesTotal.Inc()
}

// CountPublishError records a failed MQTT publish.
func CountPublishError() {
	publishErrorsTotal.Inc()
}

// WritePrometheus writes all registered metrics, including process metrics.
func WritePrometheus(w io.Writer) {
	metrics.WritePrometheus(w, true)
}
