package hardware

import (
	"fmt"
	"sync"
)

type PinState struct {
	Mode       Mode
	Level      Level
	Duty       uint8
	Configured bool
}

// SimulatedBoard keeps pin levels in memory. It refuses writes to pins that were
// never configured as outputs, which real boards silently accept.
type SimulatedBoard struct {
	lock   sync.Mutex
	pins   map[Pin]PinState
	writes int
	closed bool

	// Fail, when set, is returned from every write.
	Fail error
}

func NewSimulatedBoard() *SimulatedBoard {
	return &SimulatedBoard{
		pins: make(map[Pin]PinState),
	}
}

func (b *SimulatedBoard) SetPinMode(pin Pin, mode Mode) error {
	b.lock.Lock()
	defer b.lock.Unlock()

	if b.Fail != nil {
		return b.Fail
	}

	state := b.pins[pin]
	state.Mode = mode
	state.Configured = true
	b.pins[pin] = state
	return nil
}

func (b *SimulatedBoard) WriteDigital(pin Pin, level Level) error {
	b.lock.Lock()
	defer b.lock.Unlock()

	state, err := b.output(pin)
	if err != nil {
		return err
	}

	state.Level = level
	b.pins[pin] = state
	b.writes++
	return nil
}

func (b *SimulatedBoard) WritePWM(pin Pin, duty uint8) error {
	b.lock.Lock()
	defer b.lock.Unlock()

	state, err := b.output(pin)
	if err != nil {
		return err
	}

	state.Duty = duty
	b.pins[pin] = state
	b.writes++
	return nil
}

func (b *SimulatedBoard) Close() error {
	b.lock.Lock()
	b.closed = true
	b.lock.Unlock()
	return nil
}

// State returns a copy of the pin state.
func (b *SimulatedBoard) State(pin Pin) PinState {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.pins[pin]
}

// Writes counts digital and pwm writes since creation.
func (b *SimulatedBoard) Writes() int {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.writes
}

func (b *SimulatedBoard) Closed() bool {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.closed
}

func (b *SimulatedBoard) output(pin Pin) (state PinState, err error) {
	if b.Fail != nil {
		return state, b.Fail
	}

	state, ok := b.pins[pin]
	if !ok || !state.Configured || state.Mode != Output {
		return state, fmt.Errorf("pin %d is not configured as an output", pin)
	}
	return state, nil
}
