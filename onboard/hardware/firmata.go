package hardware

import (
	"strconv"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gobot.io/x/gobot/drivers/gpio"
	"gobot.io/x/gobot/platforms/firmata"
)

// FirmataBoard drives an Arduino flashed with StandardFirmata over its USB serial
// port. The firmata client switches a pin between output and pwm mode on demand.
type FirmataBoard struct {
	adaptor *firmata.Adaptor
	pins    map[Pin]*gpio.DirectPinDriver
}

func NewFirmataBoard(port string) (b *FirmataBoard, err error) {
	adaptor := firmata.NewAdaptor(port)
	if err = adaptor.Connect(); err != nil {
		return nil, errors.Wrapf(err, "unable to connect to firmata board on %s", port)
	}

	return &FirmataBoard{
		adaptor: adaptor,
		pins:    make(map[Pin]*gpio.DirectPinDriver),
	}, nil
}

func (b *FirmataBoard) SetPinMode(pin Pin, mode Mode) error {
	if mode != Output {
		return errors.Errorf("firmata board only drives outputs, pin %d requested mode %d", pin, mode)
	}

	driver := gpio.NewDirectPinDriver(b.adaptor, strconv.Itoa(int(pin)))
	b.pins[pin] = driver

	// a digital write is what puts the pin into output mode on the firmata side
	return driver.Off()
}

func (b *FirmataBoard) WriteDigital(pin Pin, level Level) error {
	driver, err := b.driver(pin)
	if err != nil {
		return err
	}
	return driver.DigitalWrite(byte(level))
}

func (b *FirmataBoard) WritePWM(pin Pin, duty uint8) error {
	driver, err := b.driver(pin)
	if err != nil {
		return err
	}
	return driver.PwmWrite(duty)
}

func (b *FirmataBoard) Close() (err error) {
	for pin, driver := range b.pins {
		err = multierr.Append(err, errors.Wrapf(driver.Off(), "releasing pin %d", pin))
	}
	return multierr.Append(err, b.adaptor.Finalize())
}

func (b *FirmataBoard) driver(pin Pin) (*gpio.DirectPinDriver, error) {
	driver, ok := b.pins[pin]
	if !ok {
		return nil, errors.Errorf("pin %d is not configured as an output", pin)
	}
	return driver, nil
}
