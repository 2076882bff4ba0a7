package mqtt

import "github.com/rs/zerolog/log"

// bufferedMsg stores a serialized MQTT message for replay after reconnection.
type bufferedMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// outbox holds messages published while the broker is unreachable.
//
// A retained message replaces any retained message queued for the same
// topic, since the broker would only keep the last one. When full, the oldest
// message is dropped. Not safe for concurrent use.
type outbox struct {
	msgs     []bufferedMsg
	capacity int
	dropped  int // since the last drain
}

func newOutbox(capacity int) *outbox {
	return &outbox{
		msgs:     make([]bufferedMsg, 0, capacity),
		capacity: capacity,
	}
}

func (o *outbox) push(msg bufferedMsg) {
	if msg.retained {
		for i, m := range o.msgs {
			if m.retained && m.topic == msg.topic {
				o.msgs = append(o.msgs[:i], o.msgs[i+1:]...)
				break
			}
		}
	}
	if len(o.msgs) == o.capacity {
		if o.dropped == 0 {
			log.Warn().Int("capacity", o.capacity).Msg("mqtt: outbox full, dropping oldest")
		}
		o.msgs = append(o.msgs[:0], o.msgs[1:]...)
		o.dropped++
	}
	o.msgs = append(o.msgs, msg)
}

// drain returns the queued messages oldest first and the number dropped
// since the previous drain, leaving the outbox empty.
func (o *outbox) drain() ([]bufferedMsg, int) {
	dropped := o.dropped
	o.dropped = 0
	if len(o.msgs) == 0 {
		return nil, dropped
	}
	out := make([]bufferedMsg, len(o.msgs))
	copy(out, o.msgs)
	o.msgs = o.msgs[:0]
	return out, dropped
}

func (o *outbox) len() int {
	return len(o.msgs)
}
