package gpio

import "errors"

// FakeButtons is a test double that returns scripted button states.
type FakeButtons struct {
	// Samples contains scripted states to return.
	// Each call to Read() consumes the next sample.
	Samples []ButtonStates

	// index tracks current position in Samples
	index int

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned by Read()
	ReadError error
}

// NewFakeButtons creates a FakeButtons with the given samples.
func NewFakeButtons(samples []ButtonStates) *FakeButtons {
	return &FakeButtons{Samples: samples}
}

// Read returns the next scripted sample.
// If samples are exhausted, returns the last sample repeatedly.
func (f *FakeButtons) Read() (ButtonStates, error) {
	if f.ReadError != nil {
		return ButtonStates{}, f.ReadError
	}

	if len(f.Samples) == 0 {
		return ButtonStates{}, errors.New("no samples configured")
	}

	sample := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}
	return sample, nil
}

// Close marks the reader as closed.
func (f *FakeButtons) Close() error {
	f.Closed = true
	return nil
}

// Reset resets the reader to the beginning of samples.
func (f *FakeButtons) Reset() {
	f.index = 0
	f.Closed = false
}

// RelayState is one write to a RelayWriter.
type RelayState struct {
	Heat bool
	Vent bool
}

// FakeRelays records relay writes.
type FakeRelays struct {
	Writes []RelayState

	Heat bool
	Vent bool

	Closed bool

	// WriteError, if set, will be returned by Write()
	WriteError error
}

// NewFakeRelays creates a FakeRelays with both relays off.
func NewFakeRelays() *FakeRelays {
	return &FakeRelays{}
}

// Write records the requested state.
func (f *FakeRelays) Write(heat, vent bool) error {
	if f.WriteError != nil {
		return f.WriteError
	}
	f.Heat, f.Vent = heat, vent
	f.Writes = append(f.Writes, RelayState{Heat: heat, Vent: vent})
	return nil
}

// Close de-energizes and marks the relays as closed.
func (f *FakeRelays) Close() error {
	f.Heat, f.Vent = false, false
	f.Closed = true
	return nil
}

// Last returns the most recent write, or the zero state if none.
func (f *FakeRelays) Last() RelayState {
	if len(f.Writes) == 0 {
		return RelayState{}
	}
	return f.Writes[len(f.Writes)-1]
}

// FakeLine records output levels.
type FakeLine struct {
	On     bool
	Values []bool
	Closed bool

	SetError error
}

// SetValue records the level.
func (f *FakeLine) SetValue(on bool) error {
	if f.SetError != nil {
		return f.SetError
	}
	f.On = on
	f.Values = append(f.Values, on)
	return nil
}

// Close drives the line low and marks it closed.
func (f *FakeLine) Close() error {
	f.On = false
	f.Closed = true
	return nil
}
