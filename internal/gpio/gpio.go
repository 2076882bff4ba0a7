// Package gpio provides the front panel buttons, the relay outputs and the
// buzzer line with hardware abstraction.
// The real implementation uses Linux GPIO character device.
// The fake implementations allow testing without hardware.
package gpio

// ButtonStates is one logical sample of the four front panel buttons.
type ButtonStates struct {
	Plus   bool // true = pressed
	Minus  bool
	Select bool
	Start  bool
}

// ButtonReader reads the front panel buttons.
type ButtonReader interface {
	// Read returns the logical button states.
	// Buttons pull the line to ground: raw 0 = logical pressed.
	Read() (ButtonStates, error)

	// Close releases GPIO resources.
	Close() error
}

// RelayWriter drives the heat and vent relays.
type RelayWriter interface {
	// Write sets both relays (true = energized).
	Write(heat, vent bool) error

	// Close de-energizes the relays and releases GPIO resources.
	Close() error
}

// Line is a single digital output, used for the buzzer.
type Line interface {
	SetValue(on bool) error
	Close() error
}

// Pins holds line offsets on the GPIO chip (BCM numbering on a Raspberry Pi).
type Pins struct {
	Plus   int `yaml:"plus" env:"PIN_PLUS" env-default:"5"`
	Minus  int `yaml:"minus" env:"PIN_MINUS" env-default:"6"`
	Select int `yaml:"select" env:"PIN_SELECT" env-default:"13"`
	Start  int `yaml:"start" env:"PIN_START" env-default:"19"`
	Heat   int `yaml:"heat" env:"PIN_HEAT" env-default:"20"`
	Vent   int `yaml:"vent" env:"PIN_VENT" env-default:"21"`
	Buzzer int `yaml:"buzzer" env:"PIN_BUZZER" env-default:"12"`
}

// DefaultPins returns the default wiring.
func DefaultPins() Pins {
	return Pins{Plus: 5, Minus: 6, Select: 13, Start: 19, Heat: 20, Vent: 21, Buzzer: 12}
}

// DefaultChip is the GPIO character device used when none is configured.
const DefaultChip = "gpiochip0"

// bias is the pull applied to a line when it is handed back as an input.
type bias int

const (
	pullDown bias = iota
	pullUp
)

func (b bias) String() string {
	if b == pullUp {
		return "pull-up"
	}
	return "pull-down"
}

// relayReleaseBias returns the pull that holds a released relay input at its
// de-energized level: low for active-high boards, high for active-low ones.
func relayReleaseBias(activeLow bool) bias {
	if activeLow {
		return pullUp
	}
	return pullDown
}
