package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event          string       `json:"event,omitempty"`
	Reason         string       `json:"reason,omitempty"`
	Mode           string       `json:"mode"`
	LastMode       string       `json:"last_mode"`
	Temperature    *int         `json:"temperature"`
	TempThreshold  int          `json:"temp_threshold"`
	TimeThreshold  int          `json:"time_threshold"`
	Editing        string       `json:"editing,omitempty"` // "temperature", "time" or empty
	Heat           bool         `json:"heat"`
	Vent           bool         `json:"vent"`
	TimerStarted   bool         `json:"timer_started"`
	ElapsedMinutes int          `json:"elapsed_minutes"`
	Finished       bool         `json:"finished"`
	SensorFaults   int          `json:"sensor_faults"`
	UptimeSeconds  int64        `json:"uptime_seconds"`
	StartTime      string       `json:"start_time"`
	Timestamp      string       `json:"timestamp"`
	MQTT           MQTTStatus   `json:"mqtt"`
	Counts         CountsJSON   `json:"counts"`
	Network        *NetworkJSON `json:"network,omitempty"`
	Config         ConfigJSON   `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of the running totals.
type CountsJSON struct {
	ShortPresses  int `json:"short_presses"`
	LongPresses   int `json:"long_presses"`
	SecretPresses int `json:"secret_presses"`
	Transitions   int `json:"transitions"`
	Cycles        int `json:"cycles"`
	SensorTrips   int `json:"sensor_trips"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PollMs      int64  `json:"poll_ms"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	Broker      string `json:"broker"`
	HTTPPort    string `json:"http_port"`
	WSBroker    string `json:"ws_broker,omitempty"`
	NATSURL     string `json:"nats_url,omitempty"`
	StorePath   string `json:"store_path,omitempty"`
}

// Editing returns the setpoint being edited: "temperature", "time" or "".
func (s Snapshot) Editing() string {
	switch {
	case s.TempSetting:
		return "temperature"
	case s.TimeSetting:
		return "time"
	}
	return ""
}

func buildInner(snap Snapshot) StatusInner {
	inner := StatusInner{
		Mode:           snap.Mode.String(),
		LastMode:       snap.LastMode.String(),
		TempThreshold:  snap.TempThreshold,
		TimeThreshold:  snap.TimeThreshold,
		Editing:        snap.Editing(),
		Heat:           snap.Heat,
		Vent:           snap.Vent,
		TimerStarted:   snap.TimerStarted,
		ElapsedMinutes: snap.ElapsedMinutes,
		Finished:       snap.Finished,
		SensorFaults:   snap.SensorFaults,
		UptimeSeconds:  int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:      snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:      snap.Now.UTC().Format(time.RFC3339),
		MQTT:           MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			ShortPresses:  snap.Counts.ShortPresses,
			LongPresses:   snap.Counts.LongPresses,
			SecretPresses: snap.Counts.SecretPresses,
			Transitions:   snap.Counts.Transitions,
			Cycles:        snap.Counts.Cycles,
			SensorTrips:   snap.Counts.SensorTrips,
		},
		Config: ConfigJSON{
			PollMs:      snap.Config.PollMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			Broker:      snap.Config.Broker,
			HTTPPort:    snap.Config.HTTPPort,
			WSBroker:    snap.Config.WSBroker,
			NATSURL:     snap.Config.NATSURL,
			StorePath:   snap.Config.StorePath,
		},
	}
	if snap.HasTemperature {
		temp := snap.Temperature
		inner.Temperature = &temp
	}
	return inner
}

func buildNetwork(snap Snapshot, inner *StatusInner) {
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	buildNetwork(snap, &inner)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	buildNetwork(snap, &inner)

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
