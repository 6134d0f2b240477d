package hardware

import (
	"strconv"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

// DefaultPWMFrequency matches the 500Hz the chassis motors were tuned with.
const DefaultPWMFrequency = 500

// PeriphBoard drives the GPIO header of a Linux single board computer.
type PeriphBoard struct {
	frequency physic.Frequency
	pins      map[Pin]gpio.PinIO
}

func NewPeriphBoard(pwmFrequency int) (b *PeriphBoard, err error) {
	if _, err = host.Init(); err != nil {
		return nil, errors.Wrap(err, "unable to initialise periph host drivers")
	}

	if pwmFrequency <= 0 {
		pwmFrequency = DefaultPWMFrequency
	}

	return &PeriphBoard{
		frequency: physic.Frequency(pwmFrequency) * physic.Hertz,
		pins:      make(map[Pin]gpio.PinIO),
	}, nil
}

func (b *PeriphBoard) SetPinMode(pin Pin, mode Mode) error {
	if mode != Output {
		return errors.Errorf("periph board only drives outputs, pin %d requested mode %d", pin, mode)
	}

	p := gpioreg.ByName(strconv.Itoa(int(pin)))
	if p == nil {
		return errors.Errorf("no gpio found for pin %d", pin)
	}
	b.pins[pin] = p

	return p.Out(gpio.Low)
}

func (b *PeriphBoard) WriteDigital(pin Pin, level Level) error {
	p, err := b.pin(pin)
	if err != nil {
		return err
	}
	return p.Out(gpio.Level(level == High))
}

func (b *PeriphBoard) WritePWM(pin Pin, duty uint8) error {
	p, err := b.pin(pin)
	if err != nil {
		return err
	}
	return p.PWM(dutyFromByte(duty), b.frequency)
}

func (b *PeriphBoard) Close() (err error) {
	for pin, p := range b.pins {
		err = multierr.Append(err, errors.Wrapf(p.Out(gpio.Low), "releasing pin %d", pin))
		err = multierr.Append(err, p.Halt())
	}
	return err
}

func (b *PeriphBoard) pin(pin Pin) (gpio.PinIO, error) {
	p, ok := b.pins[pin]
	if !ok {
		return nil, errors.Errorf("pin %d is not configured as an output", pin)
	}
	return p, nil
}

func dutyFromByte(duty uint8) gpio.Duty {
	return gpio.Duty(int64(gpio.DutyMax) * int64(duty) / DutyMax)
}
