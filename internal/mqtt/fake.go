package mqtt

// Message is one publish as it would reach the broker.
type Message struct {
	Topic    string
	Payload  []byte
	Retained bool
}

// FakePublisher records what would have been published.
type FakePublisher struct {
	Events         []Event
	Payloads       [][]byte
	SystemEvents   []SystemEvent
	SystemPayloads [][]byte

	// Messages holds every publish across both topics, in order.
	Messages []Message

	PublishError       error
	PublishSystemError error

	Closed    bool
	Connected bool
}

func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

func (f *FakePublisher) Publish(event Event) error {
	if f.PublishError != nil {
		return f.PublishError
	}
	payload, err := FormatPayload(event)
	if err != nil {
		return err
	}
	f.Events = append(f.Events, event)
	f.Payloads = append(f.Payloads, payload)
	f.Messages = append(f.Messages, Message{Topic: Topic, Payload: payload})
	return nil
}

func (f *FakePublisher) PublishSystem(event SystemEvent) error {
	if f.PublishSystemError != nil {
		return f.PublishSystemError
	}
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return err
	}
	f.SystemEvents = append(f.SystemEvents, event)
	f.SystemPayloads = append(f.SystemPayloads, payload)
	f.Messages = append(f.Messages, Message{Topic: TopicSystem, Payload: payload, Retained: event.Retained})
	return nil
}

func (f *FakePublisher) Close() error {
	f.Closed = true
	return nil
}

func (f *FakePublisher) IsConnected() bool {
	return f.Connected
}

// EventsOfType returns the recorded appliance events with the given type.
func (f *FakePublisher) EventsOfType(typ string) []Event {
	var out []Event
	for _, e := range f.Events {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

// Retained returns the payload a broker would hold for topic, or nil.
func (f *FakePublisher) Retained(topic string) []byte {
	var last []byte
	for _, m := range f.Messages {
		if m.Topic == topic && m.Retained {
			last = m.Payload
		}
	}
	return last
}

func (f *FakePublisher) Reset() {
	*f = FakePublisher{}
}
