package hardware

// Pin identifies a hardware pin by its board number.
type Pin int

type Level uint8

const (
	Low Level = iota
	High
)

func (l Level) String() string {
	if l == High {
		return "HIGH"
	}
	return "LOW"
}

type Mode uint8

const (
	Input Mode = iota
	Output
)

// Board is the pin level interface a Wheel drives. All writes are synchronous.
type Board interface {
	SetPinMode(pin Pin, mode Mode) error
	WriteDigital(pin Pin, level Level) error
	WritePWM(pin Pin, duty uint8) error
	Close() error
}
