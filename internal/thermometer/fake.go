package thermometer

import "errors"

// Fake is a test double that returns scripted readings.
type Fake struct {
	// Values are returned in order; the last one repeats.
	Values []int
	index  int

	// ReadError, if set, will be returned by Read()
	ReadError error
	Closed    bool
}

// NewFake creates a Fake with the given readings.
func NewFake(values ...int) *Fake {
	return &Fake{Values: values}
}

// Read returns the next scripted reading.
func (f *Fake) Read() (int, error) {
	if f.ReadError != nil {
		return 0, f.ReadError
	}
	if len(f.Values) == 0 {
		return 0, errors.New("no values configured")
	}
	v := f.Values[f.index]
	if f.index < len(f.Values)-1 {
		f.index++
	}
	return v, nil
}

// Close marks the source as closed.
func (f *Fake) Close() error {
	f.Closed = true
	return nil
}
