//go:build linux

package gpio

import (
	"errors"
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

const consumer = "sterilizer"

// RealButtons reads the buttons from actual hardware using Linux GPIO character device.
type RealButtons struct {
	chip  *gpiocdev.Chip
	lines [4]*gpiocdev.Line // plus, minus, select, start
}

// NewRealButtons requests the four button lines as inputs with pull-up.
func NewRealButtons(chipName string, pins Pins) (*RealButtons, error) {
	chip, err := gpiocdev.NewChip(chipName, gpiocdev.WithConsumer(consumer))
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", chipName, err)
	}

	r := &RealButtons{chip: chip}
	offsets := [4]int{pins.Plus, pins.Minus, pins.Select, pins.Start}
	for i, offset := range offsets {
		l, err := chip.RequestLine(offset, gpiocdev.AsInput, gpiocdev.WithPullUp)
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("request button pin %d: %w", offset, err)
		}
		r.lines[i] = l
	}
	return r, nil
}

// Read returns the logical button states.
// Inverts raw GPIO: raw 0 (pulled to ground) = pressed.
func (r *RealButtons) Read() (ButtonStates, error) {
	var pressed [4]bool
	for i, l := range r.lines {
		v, err := l.Value()
		if err != nil {
			return ButtonStates{}, fmt.Errorf("read button pin %d: %w", l.Offset(), err)
		}
		pressed[i] = v == 0
	}
	return ButtonStates{Plus: pressed[0], Minus: pressed[1], Select: pressed[2], Start: pressed[3]}, nil
}

// Close reconfigures the lines to input with pull-down (matching Pi boot
// defaults) and releases them.
func (r *RealButtons) Close() error {
	return closeLines(r.chip, pullDown, r.lines[:]...)
}

// RealRelays drives the heat and vent relays.
type RealRelays struct {
	chip      *gpiocdev.Chip
	heat      *gpiocdev.Line
	vent      *gpiocdev.Line
	activeLow bool
}

// NewRealRelays requests both relay lines as outputs, de-energized.
// activeLow is for relay boards that energize on a low input.
func NewRealRelays(chipName string, pins Pins, activeLow bool) (*RealRelays, error) {
	chip, err := gpiocdev.NewChip(chipName, gpiocdev.WithConsumer(consumer))
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", chipName, err)
	}

	r := &RealRelays{chip: chip, activeLow: activeLow}
	off := r.level(false)

	r.heat, err = chip.RequestLine(pins.Heat, gpiocdev.AsOutput(off))
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("request heat pin %d: %w", pins.Heat, err)
	}
	r.vent, err = chip.RequestLine(pins.Vent, gpiocdev.AsOutput(off))
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("request vent pin %d: %w", pins.Vent, err)
	}
	return r, nil
}

func (r *RealRelays) level(on bool) int {
	if on != r.activeLow {
		return 1
	}
	return 0
}

// Write sets both relay lines.
func (r *RealRelays) Write(heat, vent bool) error {
	if err := r.heat.SetValue(r.level(heat)); err != nil {
		return fmt.Errorf("write heat pin: %w", err)
	}
	if err := r.vent.SetValue(r.level(vent)); err != nil {
		return fmt.Errorf("write vent pin: %w", err)
	}
	return nil
}

// Close de-energizes both relays before releasing the lines.
func (r *RealRelays) Close() error {
	var errs []error
	if r.heat != nil && r.vent != nil {
		if err := r.Write(false, false); err != nil {
			errs = append(errs, err)
		}
	}
	if err := closeLines(r.chip, relayReleaseBias(r.activeLow), r.heat, r.vent); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// RealLine is a single output line.
type RealLine struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

// NewRealLine requests offset as an output, initially low.
func NewRealLine(chipName string, offset int) (*RealLine, error) {
	chip, err := gpiocdev.NewChip(chipName, gpiocdev.WithConsumer(consumer))
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", chipName, err)
	}
	l, err := chip.RequestLine(offset, gpiocdev.AsOutput(0))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request pin %d: %w", offset, err)
	}
	return &RealLine{chip: chip, line: l}, nil
}

// SetValue drives the line high (on) or low.
func (r *RealLine) SetValue(on bool) error {
	v := 0
	if on {
		v = 1
	}
	if err := r.line.SetValue(v); err != nil {
		return fmt.Errorf("write pin %d: %w", r.line.Offset(), err)
	}
	return nil
}

// Close drives the line low and releases it.
func (r *RealLine) Close() error {
	var errs []error
	if err := r.line.SetValue(0); err != nil {
		errs = append(errs, err)
	}
	if err := closeLines(r.chip, pullDown, r.line); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// closeLines reconfigures each line to input with the given pull, then
// closes the lines and the chip. Pull-down matches Raspberry Pi boot
// defaults; active-low relay inputs need pull-up to stay de-energized.
func closeLines(chip *gpiocdev.Chip, b bias, lines ...*gpiocdev.Line) error {
	pull := gpiocdev.WithPullDown
	if b == pullUp {
		pull = gpiocdev.WithPullUp
	}
	var errs []error
	for _, l := range lines {
		if l == nil {
			continue
		}
		if err := l.Reconfigure(gpiocdev.AsInput, pull); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure pin %d %s: %w", l.Offset(), b, err))
		}
		if err := l.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close pin %d: %w", l.Offset(), err))
		}
	}
	if chip != nil {
		if err := chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	return errors.Join(errs...)
}
