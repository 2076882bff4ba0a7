package mqtt

import (
	"testing"
)

func TestOutboxEmptyDrain(t *testing.T) {
	o := newOutbox(10)
	got, dropped := o.drain()
	if got != nil {
		t.Errorf("expected nil from empty drain, got %d items", len(got))
	}
	if dropped != 0 {
		t.Errorf("dropped: got %d, want 0", dropped)
	}
}

func TestOutboxPushAndDrain(t *testing.T) {
	o := newOutbox(10)
	for i := 0; i < 5; i++ {
		o.push(bufferedMsg{topic: Topic, payload: []byte{byte(i)}})
	}

	got, _ := o.drain()
	if len(got) != 5 {
		t.Fatalf("expected 5 items, got %d", len(got))
	}
	for i := 0; i < 5; i++ {
		if got[i].payload[0] != byte(i) {
			t.Errorf("item %d: expected payload %d, got %d", i, i, got[i].payload[0])
		}
	}

	if again, _ := o.drain(); again != nil {
		t.Errorf("expected nil from second drain, got %d items", len(again))
	}
}

func TestOutboxOverflowDropsOldest(t *testing.T) {
	o := newOutbox(5)
	for i := 0; i < 8; i++ {
		o.push(bufferedMsg{topic: Topic, payload: []byte{byte(i)}})
	}

	got, dropped := o.drain()
	if len(got) != 5 {
		t.Fatalf("expected 5 items, got %d", len(got))
	}
	if dropped != 3 {
		t.Errorf("dropped: got %d, want 3", dropped)
	}
	for i := range got {
		if want := byte(i + 3); got[i].payload[0] != want {
			t.Errorf("item %d: expected payload %d, got %d", i, want, got[i].payload[0])
		}
	}

	// The drop count resets with each drain
	o.push(bufferedMsg{topic: Topic})
	if _, dropped := o.drain(); dropped != 0 {
		t.Errorf("dropped after second drain: got %d, want 0", dropped)
	}
}

func TestOutboxRetainedSupersedes(t *testing.T) {
	o := newOutbox(10)
	o.push(bufferedMsg{topic: TopicSystem, payload: []byte("startup"), retained: true})
	o.push(bufferedMsg{topic: Topic, payload: []byte("mode")})
	o.push(bufferedMsg{topic: TopicSystem, payload: []byte("heartbeat")})
	o.push(bufferedMsg{topic: TopicSystem, payload: []byte("shutdown"), retained: true})

	got, dropped := o.drain()
	if dropped != 0 {
		t.Errorf("dropped: got %d, want 0", dropped)
	}
	want := []string{"mode", "heartbeat", "shutdown"}
	if len(got) != len(want) {
		t.Fatalf("expected %d items, got %d", len(want), len(got))
	}
	for i, w := range want {
		if string(got[i].payload) != w {
			t.Errorf("item %d: got %s, want %s", i, got[i].payload, w)
		}
	}
}

func TestOutboxRetainedOtherTopicKept(t *testing.T) {
	o := newOutbox(10)
	o.push(bufferedMsg{topic: TopicSystem, payload: []byte("a"), retained: true})
	o.push(bufferedMsg{topic: Topic, payload: []byte("b"), retained: true})

	if got, _ := o.drain(); len(got) != 2 {
		t.Errorf("expected 2 items, got %d", len(got))
	}
}

func TestOutboxLen(t *testing.T) {
	o := newOutbox(10)
	if o.len() != 0 {
		t.Errorf("expected len 0, got %d", o.len())
	}

	o.push(bufferedMsg{topic: Topic})
	o.push(bufferedMsg{topic: Topic})
	if o.len() != 2 {
		t.Errorf("expected len 2, got %d", o.len())
	}

	o.drain()
	if o.len() != 0 {
		t.Errorf("expected len 0 after drain, got %d", o.len())
	}
}

func TestOutboxPreservesFields(t *testing.T) {
	o := newOutbox(10)
	o.push(bufferedMsg{
		topic:    TopicSystem,
		payload:  []byte(`{"status":{}}`),
		qos:      1,
		retained: true,
	})

	got, _ := o.drain()
	if len(got) != 1 {
		t.Fatalf("expected 1 item, got %d", len(got))
	}
	if got[0].topic != TopicSystem {
		t.Errorf("topic: got %s, want %s", got[0].topic, TopicSystem)
	}
	if string(got[0].payload) != `{"status":{}}` {
		t.Errorf("payload: got %s", got[0].payload)
	}
	if got[0].qos != 1 {
		t.Errorf("qos: got %d, want 1", got[0].qos)
	}
	if !got[0].retained {
		t.Error("retained: got false, want true")
	}
}
