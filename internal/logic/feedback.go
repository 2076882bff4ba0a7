package logic

import "time"

// Feedback tones.
var (
	ShortTone  = Tone{Frequency: 500, Duration: 200 * time.Millisecond}
	LongTone   = Tone{Frequency: 700, Duration: 400 * time.Millisecond}
	SecretTone = Tone{Frequency: 800, Duration: 500 * time.Millisecond}
	FinishTone = Tone{Frequency: 700, Duration: 5 * time.Second}
)

// ToneFor selects the feedback tone for one tick of button events. A short
// press on any button wins over a long press, which wins over a secret press
// on start. Secret presses on other buttons are silent.
func ToneFor(ev ButtonEvents) Tone {
	switch {
	case ev.Any(EventShortPress):
		return ShortTone
	case ev.Any(EventLongPress):
		return LongTone
	case ev.Start == EventSecretPress:
		return SecretTone
	}
	return Tone{}
}
