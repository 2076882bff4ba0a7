package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sweeney/sterilizer/internal/logic"
	"github.com/sweeney/sterilizer/internal/status"
)

var start = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) (*httptest.Server, *status.Tracker, *time.Time) {
	t.Helper()
	cfg := status.Config{
		PollMs:      10,
		HeartbeatMs: 900000,
		Broker:      "tcp://192.168.1.200:1883",
		HTTPPort:    ":80",
	}
	tr := status.NewTracker(start, cfg)
	srv := New(":0", tr)
	now := start
	srv.now = func() time.Time { return now }
	ts := httptest.NewServer(srv.httpServer.Handler)
	t.Cleanup(ts.Close)
	return ts, tr, &now
}

func getBody(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, string(body)
}

func TestJSONEndpoint(t *testing.T) {
	ts, tr, _ := newTestServer(t)
	tr.Update(status.Control{
		Mode:           logic.ModeRunning,
		LastMode:       logic.ModeIdle,
		TempThreshold:  180,
		TimeThreshold:  120,
		Temperature:    150,
		HasTemperature: true,
		Heat:           true,
		Vent:           true,
	}, status.Counts{ShortPresses: 5, Transitions: 2})
	tr.SetMQTTConnected(true)

	resp, err := http.Get(ts.URL + "/index.json")
	if err != nil {
		t.Fatalf("GET /index.json: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", ct)
	}

	var sj status.StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}

	if sj.Status.Mode != "RUNNING" {
		t.Errorf("Mode: got %q, want RUNNING", sj.Status.Mode)
	}
	if sj.Status.Temperature == nil || *sj.Status.Temperature != 150 {
		t.Errorf("Temperature: got %v, want 150", sj.Status.Temperature)
	}
	if !sj.Status.Heat || !sj.Status.Vent {
		t.Error("expected both relays on")
	}
	if !sj.Status.MQTT.Connected {
		t.Error("expected MQTT.Connected=true")
	}
	if sj.Status.MQTT.Broker != "tcp://192.168.1.200:1883" {
		t.Errorf("MQTT.Broker: got %q, want tcp://192.168.1.200:1883", sj.Status.MQTT.Broker)
	}
	if sj.Status.Counts.ShortPresses != 5 {
		t.Errorf("Counts.ShortPresses: got %d, want 5", sj.Status.Counts.ShortPresses)
	}
	if sj.Status.Config.PollMs != 10 {
		t.Errorf("Config.PollMs: got %d, want 10", sj.Status.Config.PollMs)
	}
}

func TestJSONNetworkInfo(t *testing.T) {
	ts, tr, _ := newTestServer(t)
	tr.SetNetwork(&status.NetworkInfo{
		Type:   "wifi",
		IP:     "192.168.1.42",
		Status: "connected",
		SSID:   "MyNet",
	})

	resp, err := http.Get(ts.URL + "/index.json")
	if err != nil {
		t.Fatalf("GET /index.json: %v", err)
	}
	defer resp.Body.Close()

	var sj status.StatusJSON
	json.NewDecoder(resp.Body).Decode(&sj)

	if sj.Status.Network == nil {
		t.Fatal("expected Network in JSON")
	}
	if sj.Status.Network.IP != "192.168.1.42" {
		t.Errorf("Network.IP: got %q, want 192.168.1.42", sj.Status.Network.IP)
	}
}

func TestHTMLEndpointRoot(t *testing.T) {
	ts, tr, _ := newTestServer(t)
	tr.Update(status.Control{Mode: logic.ModeError, LastMode: logic.ModeRunning}, status.Counts{})

	resp, body := getBody(t, ts.URL+"/")
	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	ct := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type: got %q, want text/html", ct)
	}
	if !strings.Contains(body, `<td id="mode" class="err">ERROR</td>`) {
		t.Error("expected ERROR mode in page")
	}
	if !strings.Contains(body, "---") {
		t.Error("expected placeholder temperature before the first reading")
	}
}

func TestHTMLEndpointIndexHTML(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, _ := getBody(t, ts.URL+"/index.html")
	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
}

func TestHTMLEditingSetpointBlinks(t *testing.T) {
	ts, tr, now := newTestServer(t)
	tr.Update(status.Control{Mode: logic.ModeSetup, TempThreshold: 185, TimeThreshold: 120, TempSetting: true}, status.Counts{})

	*now = start.Add(500 * time.Millisecond)
	_, body := getBody(t, ts.URL+"/")
	if !strings.Contains(body, `<span class="">T185</span>`) {
		t.Error("expected setpoint shown during the on phase")
	}

	*now = start.Add(1500 * time.Millisecond)
	_, body = getBody(t, ts.URL+"/")
	if !strings.Contains(body, `<span class="hidden">T185</span>`) {
		t.Error("expected setpoint hidden during the off phase")
	}
	if !strings.Contains(body, `<span class="">120m</span>`) {
		t.Error("setpoint not being edited should not blink")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, body := getBody(t, ts.URL+"/metrics")
	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if !strings.Contains(body, "sterilizer_ticks_total") {
		t.Error("expected sterilizer_ticks_total in metrics output")
	}
}

func TestNotFoundForUnknownPath(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, _ := getBody(t, ts.URL+"/nonexistent")
	if resp.StatusCode != 404 {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}

func TestStateChangesReflectedInResponse(t *testing.T) {
	ts, tr, _ := newTestServer(t)

	resp1, _ := http.Get(ts.URL + "/index.json")
	var sj1 status.StatusJSON
	json.NewDecoder(resp1.Body).Decode(&sj1)
	resp1.Body.Close()
	if sj1.Status.Mode != "IDLE" {
		t.Errorf("expected IDLE initially, got %q", sj1.Status.Mode)
	}

	tr.Update(status.Control{Mode: logic.ModeSetup, LastMode: logic.ModeIdle}, status.Counts{Transitions: 1})
	tr.SetMQTTConnected(true)

	resp2, _ := http.Get(ts.URL + "/index.json")
	var sj2 status.StatusJSON
	json.NewDecoder(resp2.Body).Decode(&sj2)
	resp2.Body.Close()

	if sj2.Status.Mode != "SETUP" {
		t.Errorf("Mode: got %q, want SETUP", sj2.Status.Mode)
	}
	if sj2.Status.Counts.Transitions != 1 {
		t.Errorf("Counts.Transitions: got %d, want 1", sj2.Status.Counts.Transitions)
	}
	if !sj2.Status.MQTT.Connected {
		t.Error("expected MQTT connected after update")
	}
}

func TestHealthEndpoint(t *testing.T) {
	ts, tr, _ := newTestServer(t)

	resp, body := getBody(t, ts.URL+"/healthz")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if body != "ok: IDLE\n" {
		t.Errorf("body: got %q, want %q", body, "ok: IDLE\n")
	}

	tr.Update(status.Control{Mode: logic.ModeError, SensorFaults: 300}, status.Counts{SensorTrips: 1})
	resp, body = getBody(t, ts.URL+"/healthz")
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status: got %d, want 503", resp.StatusCode)
	}
	if body != "error: 300 sensor faults\n" {
		t.Errorf("body: got %q", body)
	}
}

func TestHTMLCycleProgress(t *testing.T) {
	ts, tr, _ := newTestServer(t)
	tr.Update(status.Control{
		Mode:           logic.ModeRunning,
		TempThreshold:  180,
		TimeThreshold:  120,
		TimerStarted:   true,
		ElapsedMinutes: 42,
	}, status.Counts{})

	_, body := getBody(t, ts.URL+"/")
	if !strings.Contains(body, `<td id="cycle">42 of 120 min</td>`) {
		t.Error("expected elapsed cycle time in page")
	}
	if !strings.Contains(body, `<span id="panel-mode">RUNNING </span>`) {
		t.Error("expected padded mode on the panel")
	}
}

func TestFormatUptime(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0s"},
		{42 * time.Second, "42s"},
		{time.Hour + 2*time.Minute + 5*time.Second, "1h 2m 5s"},
		{48*time.Hour + 5*time.Second, "2d 0h 0m 5s"},
		{90*time.Second + 400*time.Millisecond, "1m 30s"},
	}
	for _, tt := range tests {
		if got := formatUptime(tt.d); got != tt.want {
			t.Errorf("formatUptime(%v): got %q, want %q", tt.d, got, tt.want)
		}
	}
}
