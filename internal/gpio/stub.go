//go:build !linux

package gpio

import "errors"

var errUnsupported = errors.New("gpio: not supported on this platform (requires Linux)")

// RealButtons is not available on non-Linux platforms.
type RealButtons struct{}

// NewRealButtons returns an error on non-Linux platforms.
func NewRealButtons(chipName string, pins Pins) (*RealButtons, error) {
	return nil, errUnsupported
}

func (r *RealButtons) Read() (ButtonStates, error) {
	return ButtonStates{}, errUnsupported
}

func (r *RealButtons) Close() error {
	return nil
}

// RealRelays is not available on non-Linux platforms.
type RealRelays struct{}

// NewRealRelays returns an error on non-Linux platforms.
func NewRealRelays(chipName string, pins Pins, activeLow bool) (*RealRelays, error) {
	return nil, errUnsupported
}

func (r *RealRelays) Write(heat, vent bool) error {
	return errUnsupported
}

func (r *RealRelays) Close() error {
	return nil
}

// RealLine is not available on non-Linux platforms.
type RealLine struct{}

// NewRealLine returns an error on non-Linux platforms.
func NewRealLine(chipName string, offset int) (*RealLine, error) {
	return nil, errUnsupported
}

func (r *RealLine) SetValue(on bool) error {
	return errUnsupported
}

func (r *RealLine) Close() error {
	return nil
}
