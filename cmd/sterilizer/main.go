// Command sterilizer runs the hot-air sterilizer control loop: front panel
// buttons, heat and vent relays, setpoint storage and status telemetry.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/LopatkinEvgeniy/clock"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sweeney/sterilizer/internal/buzzer"
	"github.com/sweeney/sterilizer/internal/config"
	"github.com/sweeney/sterilizer/internal/gpio"
	"github.com/sweeney/sterilizer/internal/logic"
	"github.com/sweeney/sterilizer/internal/mqtt"
	"github.com/sweeney/sterilizer/internal/status"
	"github.com/sweeney/sterilizer/internal/storage"
	"github.com/sweeney/sterilizer/internal/thermometer"
	"github.com/sweeney/sterilizer/internal/web"
)

var (
	configPath string
	printState bool
)

var rootCmd = &cobra.Command{
	Use:           "sterilizer",
	Short:         "Hot-air sterilizer controller",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg.InitLogger(os.Stderr)
		if printState {
			return runPrintState(cfg, os.Stdout)
		}
		return run(cfg)
	},
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "YAML config file (environment only when empty)")
	rootCmd.Flags().BoolVar(&printState, "print-state", false, "Print buttons, temperature and stored setpoints, then exit")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("fatal")
	}
}

func run(cfg *config.Config) error {
	cl := clock.NewRealClock()

	buttons, err := gpio.NewRealButtons(cfg.GPIO.Chip, cfg.GPIO.Pins)
	if err != nil {
		return fmt.Errorf("init buttons: %w", err)
	}
	defer buttons.Close()

	relays, err := gpio.NewRealRelays(cfg.GPIO.Chip, cfg.GPIO.Pins, cfg.GPIO.RelayActiveLow)
	if err != nil {
		return fmt.Errorf("init relays: %w", err)
	}
	defer relays.Close()

	line, err := gpio.NewRealLine(cfg.GPIO.Chip, cfg.GPIO.Pins.Buzzer)
	if err != nil {
		return fmt.Errorf("init buzzer: %w", err)
	}
	bz := buzzer.New(line)
	defer bz.Close()

	sensor, err := thermometer.NewNATSSource(cfg.NATS.URL, cfg.NATS.Subject, cfg.NATS.MaxAge, cl)
	if err != nil {
		return fmt.Errorf("init temperature feed: %w", err)
	}
	defer sensor.Close()

	store, err := storage.Open(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("open setpoint store: %w", err)
	}
	defer store.Close()

	ctrl := logic.NewController(logic.DefaultControllerConfig())
	if err := ctrl.Load(store); err != nil {
		// Defaults are already in place for the failing setpoints
		logLoadError(err)
	}

	// Initialize MQTT (empty broker disables it)
	var publisher mqtt.Publisher = mqtt.NopPublisher{}
	var mqttStatus mqtt.ConnectionStatus = mqtt.NopPublisher{}
	if cfg.MQTT.Broker != "" {
		p := mqtt.NewRealPublisher(cfg.MQTT.Broker, cfg.MQTT.ClientID)
		publisher, mqttStatus = p, p
	}
	defer publisher.Close()

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(cl.Now(), status.Config{
		PollMs:      cfg.Loop.Poll.Milliseconds(),
		HeartbeatMs: cfg.Loop.Heartbeat.Milliseconds(),
		Broker:      cfg.MQTT.Broker,
		HTTPPort:    cfg.HTTP.Addr,
		WSBroker:    resolveWSBroker(cfg.MQTT.WSBroker, cfg.MQTT.Broker),
		NATSURL:     cfg.NATS.URL,
		StorePath:   cfg.Store.Path,
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	loop := newControlLoop(ctrl, logic.NewSensorGuard(cfg.Sensor.MaxFaults), cl.Now())
	loop.buttons = buttons
	loop.relays = relays
	loop.sensor = sensor
	loop.buzzer = bz
	loop.publisher = publisher
	loop.mqttStatus = mqttStatus
	loop.tracker = tracker
	loop.heartbeat = cfg.Loop.Heartbeat
	loop.updateTracker()

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Warn().Err(err).Msg("failed to publish startup event")
	}

	srv := web.New(cfg.HTTP.Addr, tracker)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server error")
		}
	}()
	defer srv.Shutdown(context.Background())

	log.Info().
		Dur("poll", cfg.Loop.Poll).
		Dur("heartbeat", cfg.Loop.Heartbeat).
		Str("broker", cfg.MQTT.Broker).
		Str("http", cfg.HTTP.Addr).
		Int("temp_threshold", ctrl.TempThreshold()).
		Int("time_threshold", ctrl.TimeThreshold()).
		Msg("started")

	ticker := cl.NewTicker(cfg.Loop.Poll)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return loop.run(cl.Now, ticker.Chan(), sigCh)
}

// logLoadError reports each setpoint that fell back to its default.
func logLoadError(err error) {
	if errors.Is(err, logic.ErrOutOfRange) {
		log.Warn().Err(err).Msg("stored setpoint out of range, using default")
		return
	}
	log.Error().Err(err).Msg("setpoint load failed, using defaults")
}

// runPrintState reads the inputs and stored setpoints once and prints them.
func runPrintState(cfg *config.Config, w io.Writer) error {
	buttons, err := gpio.NewRealButtons(cfg.GPIO.Chip, cfg.GPIO.Pins)
	if err != nil {
		return fmt.Errorf("init buttons: %w", err)
	}
	defer buttons.Close()

	store, err := storage.Open(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("open setpoint store: %w", err)
	}
	defer store.Close()

	var sensor thermometer.Source
	if s, err := thermometer.NewNATSSource(cfg.NATS.URL, cfg.NATS.Subject, cfg.NATS.MaxAge, clock.NewRealClock()); err != nil {
		log.Warn().Err(err).Msg("temperature feed unavailable")
	} else {
		defer s.Close()
		// Give the subscription one publish interval to deliver a reading
		time.Sleep(time.Second)
		sensor = s
	}

	return printStateTo(w, buttons, sensor, store)
}

func printStateTo(w io.Writer, buttons gpio.ButtonReader, sensor thermometer.Source, store logic.SetpointStore) error {
	states, err := buttons.Read()
	if err != nil {
		return fmt.Errorf("read buttons: %w", err)
	}

	ctrl := logic.NewController(logic.DefaultControllerConfig())
	if err := ctrl.Load(store); err != nil {
		logLoadError(err)
	}

	temp := "---"
	if sensor != nil {
		if v, err := sensor.Read(); err == nil {
			temp = fmt.Sprintf("%d°C", v)
		}
	}

	fmt.Fprintf(w, "PLUS: %s, MINUS: %s, SELECT: %s, START: %s\n",
		pressedString(states.Plus), pressedString(states.Minus),
		pressedString(states.Select), pressedString(states.Start))
	fmt.Fprintf(w, "TEMPERATURE: %s\n", temp)
	fmt.Fprintf(w, "SETPOINTS: %d°C, %d min\n", ctrl.TempThreshold(), ctrl.TimeThreshold())
	return nil
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}

func pressedString(pressed bool) string {
	if pressed {
		return "PRESSED"
	}
	return "RELEASED"
}

// resolveWSBroker converts the configured websocket broker into a concrete URL.
// "=broker" derives ws://host:9001 from the TCP broker address; "off" or no
// broker disables.
func resolveWSBroker(ws, broker string) string {
	if ws == "off" || ws == "" {
		return ""
	}
	if ws != "=broker" {
		return ws
	}
	if broker == "" {
		return ""
	}
	u, err := url.Parse(broker)
	if err != nil {
		log.Warn().Err(err).Str("broker", broker).Msg("ws-broker: cannot parse broker")
		return ""
	}
	u.Scheme = "ws"
	u.Host = u.Hostname() + ":9001"
	return u.String()
}
