package logic

import (
	"testing"
	"time"
)

var t0 = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

// at returns t0 plus ms milliseconds.
func at(ms int) time.Time {
	return t0.Add(time.Duration(ms) * time.Millisecond)
}

// hold polls b with level from fromMs to toMs (inclusive) every stepMs and
// returns every non-NONE event with the time it fired.
func hold(b *Button, level bool, fromMs, toMs, stepMs int) map[int]Event {
	got := make(map[int]Event)
	for ms := fromMs; ms <= toMs; ms += stepMs {
		if e := b.Poll(level, at(ms)); e != EventNone {
			got[ms] = e
		}
	}
	return got
}

func TestNewButton(t *testing.T) {
	b := NewButton("plus", DefaultButtonConfig())
	if b.Name() != "plus" {
		t.Errorf("name: got %q, want plus", b.Name())
	}
	if b.Pressed() {
		t.Error("new button should be released")
	}
	if b.LastEvent() != EventNone {
		t.Errorf("last event: got %s, want NONE", b.LastEvent())
	}
	if b.PressDuration() != 0 {
		t.Errorf("press duration: got %v, want 0", b.PressDuration())
	}
}

func TestDefaultButtonConfig(t *testing.T) {
	cfg := DefaultButtonConfig()
	if cfg.Debounce != 25*time.Millisecond {
		t.Errorf("debounce: got %v", cfg.Debounce)
	}
	if cfg.Long != time.Second {
		t.Errorf("long: got %v", cfg.Long)
	}
	if cfg.Secret != 3*time.Second {
		t.Errorf("secret: got %v", cfg.Secret)
	}
	if cfg.Max != 20*time.Second {
		t.Errorf("max: got %v", cfg.Max)
	}
}

func TestButtonShortPressAfterDebounce(t *testing.T) {
	b := NewButton("start", DefaultButtonConfig())

	hold(b, false, 0, 100, 10)

	// Press at 110ms. Debounce requires strictly more than 25ms of stability.
	if e := b.Poll(true, at(110)); e != EventNone {
		t.Errorf("110ms: expected NONE on raw change, got %s", e)
	}
	if e := b.Poll(true, at(130)); e != EventNone {
		t.Errorf("130ms: expected NONE before debounce, got %s", e)
	}
	if e := b.Poll(true, at(135)); e != EventNone {
		t.Errorf("135ms: expected NONE at exactly debounce, got %s", e)
	}
	if e := b.Poll(true, at(136)); e != EventShortPress {
		t.Errorf("136ms: expected SHORT_PRESS, got %s", e)
	}
	if !b.Pressed() {
		t.Error("should be pressed after debounce")
	}
	if b.LastEvent() != EventShortPress {
		t.Errorf("last event: got %s, want SHORT_PRESS", b.LastEvent())
	}

	// Held: no repeat
	if e := b.Poll(true, at(150)); e != EventNone {
		t.Errorf("150ms: expected NONE while held, got %s", e)
	}
}

func TestButtonShortPressOncePerCycle(t *testing.T) {
	b := NewButton("select", DefaultButtonConfig())

	shorts := 0
	for cycle := 0; cycle < 3; cycle++ {
		base := cycle * 1000
		for _, e := range hold(b, true, base, base+300, 10) {
			if e == EventShortPress {
				shorts++
			}
		}
		for _, e := range hold(b, false, base+310, base+990, 10) {
			t.Errorf("cycle %d: unexpected event on release: %s", cycle, e)
		}
		if b.Pressed() {
			t.Errorf("cycle %d: should be released", cycle)
		}
		if b.LastEvent() != EventNone {
			t.Errorf("cycle %d: last event should clear on release, got %s", cycle, b.LastEvent())
		}
	}
	if shorts != 3 {
		t.Errorf("expected 3 SHORT_PRESS events, got %d", shorts)
	}
}

func TestButtonBounceRejected(t *testing.T) {
	b := NewButton("plus", DefaultButtonConfig())

	// Chatter faster than the debounce delay never settles.
	level := false
	for ms := 0; ms < 500; ms += 10 {
		level = !level
		if e := b.Poll(level, at(ms)); e != EventNone {
			t.Fatalf("%dms: bounce produced %s", ms, e)
		}
	}
	if b.Pressed() {
		t.Error("bouncing input should not become pressed")
	}
}

func TestButtonDebouncedStateChangesOncePerWindow(t *testing.T) {
	b := NewButton("minus", DefaultButtonConfig())

	changes := 0
	prev := b.Pressed()
	// 40ms stable windows alternate; each can change the state at most once.
	for ms := 0; ms < 2000; ms += 5 {
		level := (ms/40)%2 == 1
		b.Poll(level, at(ms))
		if b.Pressed() != prev {
			changes++
			prev = b.Pressed()
		}
	}
	windows := 2000 / 40
	if changes > windows {
		t.Errorf("state changed %d times in %d windows", changes, windows)
	}
	if changes == 0 {
		t.Error("expected stable 40ms windows to be accepted")
	}
}

func TestButtonLongPressOnce(t *testing.T) {
	b := NewButton("plus", DefaultButtonConfig())

	got := hold(b, true, 0, 2900, 10)
	// Pressed at 30ms (first poll after 25ms of stability), LONG after >1000ms held.
	if got[30] != EventShortPress {
		t.Errorf("expected SHORT_PRESS at 30ms, got %v", got)
	}
	longs := 0
	for ms, e := range got {
		if e == EventLongPress {
			longs++
			if ms != 1040 {
				t.Errorf("LONG_PRESS at %dms, want 1040ms", ms)
			}
		}
	}
	if longs != 1 {
		t.Errorf("expected exactly 1 LONG_PRESS, got %d (%v)", longs, got)
	}
	if b.LastEvent() != EventLongPress {
		t.Errorf("last event: got %s, want LONG_PRESS", b.LastEvent())
	}
	if b.Hold() != EventLongPress {
		t.Errorf("hold: got %s, want LONG_PRESS", b.Hold())
	}
}

func TestButtonSecretPressOnce(t *testing.T) {
	b := NewButton("start", DefaultButtonConfig())

	got := hold(b, true, 0, 10000, 10)
	counts := map[Event]int{}
	for _, e := range got {
		counts[e]++
	}
	if counts[EventShortPress] != 1 || counts[EventLongPress] != 1 || counts[EventSecretPress] != 1 {
		t.Errorf("expected one of each event, got %v", counts)
	}
	if got[3040] != EventSecretPress {
		t.Errorf("expected SECRET_PRESS at 3040ms, got %v", got)
	}
	if b.Hold() != EventSecretPress {
		t.Errorf("hold: got %s, want SECRET_PRESS", b.Hold())
	}
	if d := b.PressDuration(); d != 9970*time.Millisecond {
		t.Errorf("press duration: got %v, want 9.97s", d)
	}
}

func TestButtonReleaseBeforeLong(t *testing.T) {
	b := NewButton("plus", DefaultButtonConfig())

	got := hold(b, true, 0, 900, 10)
	got2 := hold(b, false, 910, 3000, 10)
	for _, e := range got {
		if e == EventLongPress {
			t.Error("LONG_PRESS fired before threshold")
		}
	}
	if len(got2) != 0 {
		t.Errorf("expected no events after release, got %v", got2)
	}
	if b.PressDuration() != 0 {
		t.Errorf("press duration after release: got %v", b.PressDuration())
	}
}

func TestButtonStuckPress(t *testing.T) {
	b := NewButton("minus", DefaultButtonConfig())

	hold(b, true, 0, 19990, 10)
	if b.Stuck() {
		t.Fatal("should not be stuck before max threshold")
	}
	late := hold(b, true, 20000, 30000, 10)
	if len(late) != 0 {
		t.Errorf("expected no events beyond max press, got %v", late)
	}
	if !b.Stuck() {
		t.Error("expected stuck after max threshold")
	}
	if !b.Pressed() {
		t.Error("stuck press is not force-released")
	}
	if b.Hold() != EventNone {
		t.Errorf("stuck press should not report a hold, got %s", b.Hold())
	}
	if b.LastEvent() != EventSecretPress {
		t.Errorf("last event: got %s, want SECRET_PRESS", b.LastEvent())
	}

	// Release clears everything
	hold(b, false, 30010, 30100, 10)
	if b.Stuck() || b.Pressed() || b.LastEvent() != EventNone {
		t.Error("release should clear stuck state")
	}
}

func TestButtonNewPressResetsSignals(t *testing.T) {
	b := NewButton("plus", DefaultButtonConfig())

	hold(b, true, 0, 1500, 10)
	hold(b, false, 1510, 1700, 10)
	got := hold(b, true, 1710, 3000, 10)

	longs := 0
	for _, e := range got {
		if e == EventLongPress {
			longs++
		}
	}
	if longs != 1 {
		t.Errorf("second press: expected 1 LONG_PRESS, got %d", longs)
	}
}

func TestEventString(t *testing.T) {
	tests := map[Event]string{
		EventNone:        "NONE",
		EventShortPress:  "SHORT_PRESS",
		EventLongPress:   "LONG_PRESS",
		EventSecretPress: "SECRET_PRESS",
	}
	for e, want := range tests {
		if e.String() != want {
			t.Errorf("got %q, want %q", e.String(), want)
		}
	}
}
