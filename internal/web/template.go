package web

import (
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sweeney/sterilizer/internal/logic"
	"github.com/sweeney/sterilizer/internal/status"
)

// formatUptime renders d as the largest non-zero units down to seconds,
// e.g. "2d 3h 0m 5s" or "42s".
func formatUptime(d time.Duration) string {
	secs := int64(d / time.Second)
	parts := []struct {
		n      int64
		suffix string
	}{
		{secs / 86400, "d"},
		{secs / 3600 % 24, "h"},
		{secs / 60 % 60, "m"},
		{secs % 60, "s"},
	}
	var b strings.Builder
	for i, p := range parts {
		if b.Len() == 0 && p.n == 0 && i < len(parts)-1 {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%d%s", p.n, p.suffix)
	}
	return b.String()
}

// modeClass maps a mode to the CSS class used by the page and the live script.
func modeClass(m logic.Mode) string {
	switch m {
	case logic.ModeRunning:
		return "on"
	case logic.ModeError:
		return "err"
	}
	return "off"
}

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime":    formatUptime,
	"modeClass": modeClass,
}).Parse(indexHTML))

// The panel mirrors the appliance's two-line display: mode and temperature on
// top, setpoints and relay glyphs below.
const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Sterilizer - {{.Mode}}</title>
<style>
body { font-family: sans-serif; max-width: 640px; margin: 1.5em auto; padding: 0 1em; color: #222; }
h1 { font-size: 1.3em; margin-bottom: 0.4em; }
h2 { font-size: 1em; text-transform: uppercase; color: #555; margin: 1.4em 0 0.3em; }
.panel { font-family: monospace; font-size: 1.8em; line-height: 1.3; background: #1d2b1d; color: #a6f5a6; padding: 0.4em 0.7em; border-radius: 4px; width: 9.5em; }
.panel div { white-space: pre; }
.grid { border-collapse: collapse; width: 100%; }
.grid th { text-align: left; font-weight: normal; color: #555; width: 40%; padding: 2px 8px 2px 0; }
.grid td { padding: 2px 0; }
.on { color: #1a7f1a; font-weight: bold; }
.off { color: #888; }
.err { color: #c00; font-weight: bold; }
.hidden { visibility: hidden; }
.dot { display: inline-block; width: 0.6em; height: 0.6em; border-radius: 50%; margin-left: 0.4em; background: orange; }
.dot.ok { background: #1a7f1a; }
.dot.down { background: #c00; }
footer { margin-top: 1.5em; font-size: 0.9em; }
</style>
</head>
<body>
<h1>Sterilizer{{if .Config.WSBroker}}<span id="dot" class="dot" title="connecting"></span>{{end}}</h1>

<div class="panel">
<div><span id="panel-mode">{{printf "%-8s" .Mode.String}}</span> <span id="lcd-temp">{{if .HasTemperature}}{{.Temperature}}&deg;C{{else}}---{{end}}</span></div>
<div><span class="{{if and .TempSetting (not .Blink)}}hidden{{end}}">T{{.TempThreshold}}</span> <span class="{{if and .TimeSetting (not .Blink)}}hidden{{end}}">{{.TimeThreshold}}m</span> <span class="{{if not (and .Heat .Blink)}}hidden{{end}}">H</span><span class="{{if not (and .Vent .Blink)}}hidden{{end}}">V</span></div>
</div>

<h2>Appliance</h2>
<table class="grid">
<tr><th>Mode</th><td id="mode" class="{{modeClass .Mode}}">{{.Mode}}</td></tr>
<tr><th>Previous</th><td id="last-mode">{{.LastMode}}</td></tr>
<tr><th>Heat / vent</th><td><span class="{{if .Heat}}on{{else}}off{{end}}">{{if .Heat}}ON{{else}}OFF{{end}}</span> / <span class="{{if .Vent}}on{{else}}off{{end}}">{{if .Vent}}ON{{else}}OFF{{end}}</span></td></tr>
<tr><th>Cycle</th><td id="cycle">{{if .Finished}}finished{{else if .TimerStarted}}{{.ElapsedMinutes}} of {{.TimeThreshold}} min{{else if eq .Mode.String "RUNNING"}}heating{{else}}-{{end}}</td></tr>
<tr><th>Setpoints</th><td>{{.TempThreshold}}&deg;C, {{.TimeThreshold}} min{{with .Editing}} (editing {{.}}){{end}}</td></tr>
<tr><th>Sensor faults</th><td class="{{if .SensorFaults}}err{{end}}">{{.SensorFaults}}</td></tr>
</table>

<h2>Presses and cycles</h2>
<table class="grid">
<tr><th>Short / long / secret</th><td>{{.Counts.ShortPresses}} / {{.Counts.LongPresses}} / {{.Counts.SecretPresses}}</td></tr>
<tr><th>Mode changes</th><td>{{.Counts.Transitions}}</td></tr>
<tr><th>Completed cycles</th><td>{{.Counts.Cycles}}</td></tr>
<tr><th>Sensor trips</th><td>{{.Counts.SensorTrips}}</td></tr>
</table>

<h2>Daemon</h2>
<table class="grid">
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}on{{else}}err{{end}}">{{if .Config.Broker}}{{.Config.Broker}} ({{if .MQTTConnected}}up{{else}}down{{end}}){{else}}disabled{{end}}</td></tr>
{{- if .Config.NATSURL}}
<tr><th>Temperature feed</th><td>{{.Config.NATSURL}}</td></tr>
{{- end}}
{{- with .Network}}
<tr><th>Network</th><td>{{.IP}} {{.Status}} via {{.Type}}{{if .SSID}} ({{.SSID}}){{end}}</td></tr>
{{- end}}
<tr><th>Setpoint store</th><td>{{or .Config.StorePath "memory"}}</td></tr>
<tr><th>Poll / heartbeat</th><td>{{.Config.PollMs}}ms / {{if .Config.HeartbeatMs}}{{.Config.HeartbeatMs}}ms{{else}}off{{end}}</td></tr>
<tr><th>Up</th><td>{{uptime .Uptime}} since {{.StartTime.UTC.Format "2006-01-02 15:04:05Z"}}</td></tr>
</table>

<footer><a href="/index.json">index.json</a> &middot; <a href="/metrics">metrics</a> &middot; <a href="/healthz">healthz</a></footer>
{{- if .Config.WSBroker}}
<script src="/mqtt.min.js"></script>
<script>
(function() {
  var dot = document.getElementById("dot");
  var el = function(id) { return document.getElementById(id); };

  function live(cls, title) {
    dot.className = "dot " + cls;
    dot.title = title;
  }

  function apply(s) {
    el("mode").textContent = s.mode;
    el("mode").className = s.mode === "RUNNING" ? "on" : s.mode === "ERROR" ? "err" : "off";
    el("panel-mode").textContent = (s.mode + "        ").slice(0, 8);
    el("last-mode").textContent = s.last_mode;
    if (typeof s.temperature === "number") {
      el("lcd-temp").textContent = s.temperature + "°C";
    }
    if (s.event === "FINISHED") {
      el("cycle").textContent = "finished";
    }
  }

  var client = mqtt.connect("{{.Config.WSBroker}}", { reconnectPeriod: 5000 });
  client.on("connect", function() {
    live("ok", "live");
    client.subscribe(["appliance/sterilizer/events", "appliance/sterilizer/system"]);
  });
  client.on("reconnect", function() { live("", "reconnecting"); });
  client.on("offline", function() { live("down", "offline"); });
  client.on("error", function() { live("down", "error"); });
  client.on("message", function(topic, payload) {
    var msg;
    try { msg = JSON.parse(payload.toString()); } catch (e) { return; }
    if (msg.sterilizer) {
      apply(msg.sterilizer);
    } else if (msg.status) {
      apply(msg.status);
    }
  });
})();
</script>
{{- end}}
</body>
</html>
`

// renderHTML writes the status page. Blink is evaluated once so every glyph
// on the panel shares the same phase.
func renderHTML(w io.Writer, snap status.Snapshot) {
	data := struct {
		status.Snapshot
		Uptime time.Duration
		Blink  bool
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
		Blink:    snap.BlinkOn(),
	}
	if err := indexTmpl.Execute(w, data); err != nil {
		log.Warn().Err(err).Msg("render status page")
	}
}
