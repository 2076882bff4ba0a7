package thermometer

import (
	"fmt"
	"time"

	"github.com/LopatkinEvgeniy/clock"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

// DefaultSubject is the subject temperature sensors publish on.
const DefaultSubject = "sterilizer.sensor.temperature.current"

// NATSSource subscribes to sensor updates on a NATS subject.
type NATSSource struct {
	nc     *nats.Conn
	sub    *nats.Subscription
	latest *Latest
}

// NewNATSSource connects to url and subscribes to subject.
func NewNATSSource(url, subject string, maxAge time.Duration, cl clock.Clock) (*NATSSource, error) {
	nc, err := nats.Connect(url,
		nats.Name("sterilizer"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn().Err(err).Msg("nats disconnected")
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info().Str("url", c.ConnectedUrl()).Msg("nats reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats %s: %w", url, err)
	}

	s := &NATSSource{nc: nc, latest: NewLatest(cl, maxAge)}
	s.sub, err = nc.Subscribe(subject, s.handle)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("subscribe %s: %w", subject, err)
	}
	log.Info().Str("url", url).Str("subject", subject).Msg("subscribed to temperature updates")
	return s, nil
}

func (s *NATSSource) handle(m *nats.Msg) {
	handleUpdate(s.latest, m)
}

func handleUpdate(latest *Latest, m *nats.Msg) {
	c, err := Decode(m.Data)
	if err != nil {
		log.Warn().Err(err).Str("subject", m.Subject).Msg("dropping temperature update")
		return
	}
	latest.Set(c)
}

// Read returns the latest received temperature.
func (s *NATSSource) Read() (int, error) {
	return s.latest.Read()
}

// Close unsubscribes and closes the connection.
func (s *NATSSource) Close() error {
	var err error
	if s.sub != nil {
		err = s.sub.Unsubscribe()
	}
	s.nc.Close()
	return err
}
