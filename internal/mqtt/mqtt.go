// Package mqtt provides one-way MQTT telemetry with abstraction for testing.
// Nothing is ever subscribed to: the appliance cannot be controlled over the network.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/sterilizer/internal/logic"
)

// Topic is the MQTT topic for appliance events.
const Topic = "appliance/sterilizer/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "appliance/sterilizer/system"

// Event types published on Topic.
const (
	EventMode     = "MODE"
	EventFinished = "FINISHED"
)

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends an appliance event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event Event) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// Event is a mode transition or a finished sterilization cycle.
type Event struct {
	Timestamp      time.Time
	Type           string // EventMode or EventFinished
	From           logic.Mode
	To             logic.Mode
	Temperature    int
	TempThreshold  int
	TimeThreshold  int
	ElapsedMinutes int
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Sterilizer SterilizerPayload `json:"sterilizer"`
}

// SterilizerPayload contains the appliance event details.
type SterilizerPayload struct {
	Timestamp      string `json:"timestamp"`
	Event          string `json:"event"`
	Mode           string `json:"mode"`
	LastMode       string `json:"last_mode"`
	Temperature    int    `json:"temperature"`
	TempThreshold  int    `json:"temp_threshold"`
	TimeThreshold  int    `json:"time_threshold"`
	ElapsedMinutes int    `json:"elapsed_minutes"`
}

// FormatPayload creates the JSON payload for an appliance event.
func FormatPayload(event Event) ([]byte, error) {
	payload := Payload{
		Sterilizer: SterilizerPayload{
			Timestamp:      event.Timestamp.UTC().Format(time.RFC3339),
			Event:          event.Type,
			Mode:           event.To.String(),
			LastMode:       event.From.String(),
			Temperature:    event.Temperature,
			TempThreshold:  event.TempThreshold,
			TimeThreshold:  event.TimeThreshold,
			ElapsedMinutes: event.ElapsedMinutes,
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT, RECONNECTED) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}

// NopPublisher drops everything. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(Event) error             { return nil }
func (NopPublisher) PublishSystem(SystemEvent) error { return nil }
func (NopPublisher) Close() error                    { return nil }
func (NopPublisher) IsConnected() bool               { return false }
