package onboard

import (
	derrors "github.com/CodedInternet/goforklift/onboard/errors"
	"github.com/CodedInternet/goforklift/onboard/hardware"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	BoardSimulated = "sim"
	BoardFirmata   = "firmata"
	BoardPeriph    = "periph"
)

// Chassis owns the board and every wheel wired to it.
type Chassis struct {
	board  hardware.Board
	wheels map[string]*hardware.Wheel
	order  []string
}

// OpenBoard connects to the board described by conf.
func OpenBoard(conf BoardConfig) (hardware.Board, error) {
	switch conf.Kind {
	case BoardSimulated, "":
		return hardware.NewSimulatedBoard(), nil
	case BoardFirmata:
		return hardware.NewFirmataBoard(conf.Port)
	case BoardPeriph:
		return hardware.NewPeriphBoard(conf.PWMFrequency)
	default:
		return nil, errors.Errorf("unable to work with board kind %q", conf.Kind)
	}
}

// NewChassis creates a wheel per configured pin triple. The logger only receives
// wheel diagnostics when config.Diagnostics is set.
func NewChassis(board hardware.Board, config *RobotConfig, logger *zap.SugaredLogger) (c *Chassis, err error) {
	c = &Chassis{
		board:  board,
		wheels: make(map[string]*hardware.Wheel, len(config.Wheels)),
	}

	for _, wc := range config.Wheels {
		var opts []hardware.WheelOption
		if config.Diagnostics && logger != nil {
			opts = append(opts, hardware.WithDiagnostics(logger.With("wheel", wc.Name)))
		}

		wheel, err := hardware.NewWheel(board, wc.Pins, opts...)
		if err != nil {
			return nil, errors.Wrapf(err, "wheel %s", wc.Name)
		}

		c.wheels[wc.Name] = wheel
		c.order = append(c.order, wc.Name)
	}

	return c, nil
}

func (c *Chassis) Wheel(name string) (*hardware.Wheel, error) {
	w, ok := c.wheels[name]
	if !ok {
		return nil, derrors.WheelNameError{Name: name}
	}
	return w, nil
}

// Names lists the wheels in configuration order.
func (c *Chassis) Names() []string {
	return append([]string(nil), c.order...)
}

// Forward drives the named wheels, or all of them when names is empty.
func (c *Chassis) Forward(throttle int, names ...string) error {
	return c.each(names, func(w *hardware.Wheel) error { return w.Forward(throttle) })
}

func (c *Chassis) Reverse(throttle int, names ...string) error {
	return c.each(names, func(w *hardware.Wheel) error { return w.Reverse(throttle) })
}

func (c *Chassis) Stop(names ...string) error {
	return c.each(names, (*hardware.Wheel).Stop)
}

// Close stops every wheel before releasing the board.
func (c *Chassis) Close() error {
	err := c.Stop()
	return multierr.Append(err, c.board.Close())
}

func (c *Chassis) each(names []string, fn func(w *hardware.Wheel) error) (err error) {
	if len(names) == 0 {
		names = c.order
	}

	// resolve everything first so an unknown name moves nothing
	wheels := make([]*hardware.Wheel, len(names))
	for i, name := range names {
		if wheels[i], err = c.Wheel(name); err != nil {
			return err
		}
	}

	for i, w := range wheels {
		err = multierr.Append(err, errors.Wrapf(fn(w), "wheel %s", names[i]))
	}
	return err
}
