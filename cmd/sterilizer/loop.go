package main

import (
	"os"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sweeney/sterilizer/internal/buzzer"
	"github.com/sweeney/sterilizer/internal/gpio"
	"github.com/sweeney/sterilizer/internal/logic"
	"github.com/sweeney/sterilizer/internal/metrics"
	"github.com/sweeney/sterilizer/internal/mqtt"
	"github.com/sweeney/sterilizer/internal/status"
	"github.com/sweeney/sterilizer/internal/thermometer"
)

// controlLoop owns the control core and its collaborators for one run.
type controlLoop struct {
	buttons    gpio.ButtonReader
	relays     gpio.RelayWriter
	sensor     thermometer.Source
	buzzer     *buzzer.Buzzer
	publisher  mqtt.Publisher
	mqttStatus mqtt.ConnectionStatus // may be nil
	tracker    *status.Tracker       // may be nil
	heartbeat  time.Duration

	ctrl  *logic.Controller
	flow  *logic.Flow
	guard *logic.SensorGuard

	counts        status.Counts
	finished      bool
	lastHeartbeat time.Time
	stuck         map[string]bool
}

func newControlLoop(ctrl *logic.Controller, guard *logic.SensorGuard, start time.Time) *controlLoop {
	return &controlLoop{
		ctrl:          ctrl,
		flow:          logic.NewFlow(start),
		guard:         guard,
		publisher:     mqtt.NopPublisher{},
		lastHeartbeat: start,
		stuck:         make(map[string]bool),
	}
}

// run ticks until a signal arrives. Relays are left de-energized on return.
func (l *controlLoop) run(now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	for {
		select {
		case s := <-sig:
			l.shutdown(s, now())
			return nil

		case <-tick:
			l.step(now())
		}
	}
}

func (l *controlLoop) step(t time.Time) {
	defer metrics.ObserveTick(time.Now())

	states, err := l.buttons.Read()
	if err != nil {
		log.Error().Err(err).Msg("gpio read failed")
		return
	}
	temp, tempErr := l.sensor.Read()

	step := l.ctrl.Tick(logic.Inputs{
		Plus:   states.Plus,
		Minus:  states.Minus,
		Select: states.Select,
		Start:  states.Start,
		Time:   t,
	})
	l.counts.Add(step.Events)
	metrics.CountEvents(step.Events)
	l.buzzer.Play(logic.ToneFor(step.Events), t)
	if step.Err != nil {
		log.Error().Err(step.Err).Msg("setpoint persist failed")
	} else if step.Persisted {
		log.Info().
			Int("temp_threshold", l.ctrl.TempThreshold()).
			Int("time_threshold", l.ctrl.TimeThreshold()).
			Msg("setpoints persisted")
	}
	l.checkStuck()

	if tempErr != nil {
		log.Debug().Err(tempErr).Msg("temperature read failed")
	}
	if tripped := l.guard.Observe(temp, tempErr); tripped {
		l.counts.SensorTrips++
		log.Error().Err(tempErr).Int("faults", l.guard.Faults()).Int("temperature", temp).Msg("sensor fault, forcing error mode")
		l.ctrl.ForceMode(logic.ModeError)
	} else if l.guard.Tripped() && l.ctrl.Mode() != logic.ModeError {
		// ERROR cannot be cleared while the sensor is still failing.
		log.Warn().Int("faults", l.guard.Faults()).Str("mode", l.ctrl.Mode().String()).Msg("sensor still faulting, returning to error mode")
		l.ctrl.ForceMode(logic.ModeError)
	}
	if l.guard.Faults() > 0 {
		metrics.CountSensorFault()
	}

	mode := l.ctrl.Mode()
	elapsed := l.flow.ElapsedMinutes()
	l.flow.Control(mode, l.guard.LastGood(), l.ctrl.TempThreshold(), l.ctrl.TimeThreshold(), t)
	heat, vent := l.flow.Outputs()
	if err := l.relays.Write(heat, vent); err != nil {
		log.Error().Err(err).Bool("heat", heat).Bool("vent", vent).Msg("relay write failed")
	}

	if finished := l.flow.Finished(); finished && !l.finished {
		l.counts.Cycles++
		metrics.CountCycle()
		l.buzzer.Play(logic.FinishTone, t)
		log.Info().Int("elapsed_minutes", elapsed).Int("time_threshold", l.ctrl.TimeThreshold()).Msg("cycle finished")
		l.publish(mqtt.EventFinished, mode, mode, elapsed, t)
		l.finished = true
	} else if !finished {
		l.finished = false
	}

	if mode != step.From {
		l.counts.Transitions++
		metrics.CountTransition(step.From, mode)
		log.Info().Str("from", step.From.String()).Str("to", mode.String()).Msg("mode changed")
		l.publish(mqtt.EventMode, step.From, mode, l.flow.ElapsedMinutes(), t)
	}

	if err := l.buzzer.Step(t); err != nil {
		log.Error().Err(err).Msg("buzzer write failed")
	}

	l.updateTracker()
	l.checkHeartbeat(t)
}

// checkStuck warns once per press for each button held past the max press.
func (l *controlLoop) checkStuck() {
	for _, b := range l.ctrl.Buttons() {
		if !b.Stuck() {
			delete(l.stuck, b.Name())
			continue
		}
		if !l.stuck[b.Name()] {
			log.Warn().Str("button", b.Name()).Dur("held", b.PressDuration()).Msg("button stuck")
			l.stuck[b.Name()] = true
		}
	}
}

func (l *controlLoop) publish(typ string, from, to logic.Mode, elapsed int, t time.Time) {
	event := mqtt.Event{
		Timestamp:      t,
		Type:           typ,
		From:           from,
		To:             to,
		Temperature:    l.guard.LastGood(),
		TempThreshold:  l.ctrl.TempThreshold(),
		TimeThreshold:  l.ctrl.TimeThreshold(),
		ElapsedMinutes: elapsed,
	}
	if err := l.publisher.Publish(event); err != nil {
		metrics.CountPublishError()
		log.Warn().Err(err).Str("event", typ).Msg("publish failed")
	}
}

func (l *controlLoop) control() status.Control {
	heat, vent := l.flow.Outputs()
	return status.Control{
		Mode:           l.ctrl.Mode(),
		LastMode:       l.ctrl.LastMode(),
		TempThreshold:  l.ctrl.TempThreshold(),
		TimeThreshold:  l.ctrl.TimeThreshold(),
		TempSetting:    l.ctrl.IsTempSetting(),
		TimeSetting:    l.ctrl.IsTimeSetting(),
		Temperature:    l.guard.LastGood(),
		HasTemperature: l.guard.HasReading(),
		SensorFaults:   l.guard.Faults(),
		Heat:           heat,
		Vent:           vent,
		TimerStarted:   l.flow.TimerStarted(),
		ElapsedMinutes: l.flow.ElapsedMinutes(),
		Finished:       l.flow.Finished(),
		Buzzer:         l.buzzer.Active(),
	}
}

// updateTracker feeds the HTTP page and the metric gauges.
func (l *controlLoop) updateTracker() {
	c := l.control()
	metrics.SetControl(c)
	if l.tracker == nil {
		return
	}
	l.tracker.Update(c, l.counts)
	if l.mqttStatus != nil {
		l.tracker.SetMQTTConnected(l.mqttStatus.IsConnected())
	}
}

func (l *controlLoop) checkHeartbeat(t time.Time) {
	if l.heartbeat <= 0 || t.Sub(l.lastHeartbeat) < l.heartbeat {
		return
	}
	l.lastHeartbeat = t

	log.Info().
		Str("mode", l.ctrl.Mode().String()).
		Int("temperature", l.guard.LastGood()).
		Int("transitions", l.counts.Transitions).
		Int("cycles", l.counts.Cycles).
		Msg("heartbeat")

	hbEvent := mqtt.SystemEvent{
		Timestamp: t,
		Event:     "HEARTBEAT",
	}
	if l.tracker != nil {
		// Refresh network info for heartbeat
		if net := readNetworkInfo(); net != nil {
			l.tracker.SetNetwork(net)
		}
		hbEvent.RawPayload = status.FormatStatusEvent(l.tracker.SnapshotAt(t), "HEARTBEAT", "")
	}
	if err := l.publisher.PublishSystem(hbEvent); err != nil {
		metrics.CountPublishError()
		log.Warn().Err(err).Msg("heartbeat publish failed")
	}
}

func (l *controlLoop) shutdown(s os.Signal, t time.Time) {
	log.Info().Str("signal", s.String()).Msg("shutting down")

	if err := l.relays.Write(false, false); err != nil {
		log.Error().Err(err).Msg("relay write failed on shutdown")
	}

	signalName := "UNKNOWN"
	if s == syscall.SIGINT {
		signalName = "SIGINT"
	} else if s == syscall.SIGTERM {
		signalName = "SIGTERM"
	}
	event := mqtt.SystemEvent{
		Timestamp: t,
		Event:     "SHUTDOWN",
		Reason:    signalName,
		Retained:  true,
	}
	if l.tracker != nil {
		if l.mqttStatus != nil {
			l.tracker.SetMQTTConnected(l.mqttStatus.IsConnected())
		}
		event.RawPayload = status.FormatStatusEvent(l.tracker.SnapshotAt(t), "SHUTDOWN", signalName)
	}
	if err := l.publisher.PublishSystem(event); err != nil {
		log.Warn().Err(err).Msg("failed to publish shutdown event")
	} else {
		log.Info().Msg("published shutdown event")
	}
}
