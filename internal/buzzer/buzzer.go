// Package buzzer drives an active buzzer for feedback tones.
// The buzzer has a fixed pitch: the tone frequency is informational.
package buzzer

import (
	"errors"
	"fmt"
	"time"

	"github.com/sweeney/sterilizer/internal/gpio"
	"github.com/sweeney/sterilizer/internal/logic"
)

// Buzzer holds a gpio line high for the duration of the current tone.
// It is stepped once per control tick and is not safe for concurrent use.
type Buzzer struct {
	line  gpio.Line
	tone  logic.Tone
	until time.Time
	on    bool
}

// New creates a silent buzzer on line.
func New(line gpio.Line) *Buzzer {
	return &Buzzer{line: line}
}

// Play starts tone at now, replacing any tone in progress. A zero tone is ignored.
func (b *Buzzer) Play(tone logic.Tone, now time.Time) {
	if tone.IsZero() {
		return
	}
	b.tone = tone
	b.until = now.Add(tone.Duration)
}

// Step drives the line for now. The line is only written on changes.
func (b *Buzzer) Step(now time.Time) error {
	want := now.Before(b.until)
	if want == b.on {
		return nil
	}
	if err := b.line.SetValue(want); err != nil {
		return fmt.Errorf("buzzer: %w", err)
	}
	b.on = want
	if !want {
		b.tone = logic.Tone{}
	}
	return nil
}

// Active reports whether the line is currently driven.
func (b *Buzzer) Active() bool {
	return b.on
}

// Tone returns the tone being played, or a zero tone when silent.
func (b *Buzzer) Tone() logic.Tone {
	return b.tone
}

// Close silences the buzzer and releases the line.
func (b *Buzzer) Close() error {
	var errs []error
	if err := b.line.SetValue(false); err != nil {
		errs = append(errs, fmt.Errorf("buzzer: %w", err))
	}
	b.on = false
	b.tone = logic.Tone{}
	b.until = time.Time{}
	if err := b.line.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
