package hardware

import (
	"github.com/CodedInternet/goforklift/calcs"
	derrors "github.com/CodedInternet/goforklift/onboard/errors"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	ThrottleMin = 0
	ThrottleMax = 100
	DutyMax     = 255
)

// WheelPins is the pin triple of a single H-bridge channel.
type WheelPins struct {
	PWM     Pin // enable/speed pin
	Forward Pin // IN_A
	Reverse Pin // IN_B
}

// Wheel drives one DC motor through an H-bridge. It keeps no motor state of its
// own; the pin levels on the board are the state.
type Wheel struct {
	board Board
	pins  WheelPins
	log   *zap.SugaredLogger
}

type WheelOption func(w *Wheel)

// WithDiagnostics makes the wheel report rejected throttle values to logger.
func WithDiagnostics(logger *zap.SugaredLogger) WheelOption {
	return func(w *Wheel) {
		if logger != nil {
			w.log = logger
		}
	}
}

// NewWheel configures all three pins as outputs before handing the wheel back.
func NewWheel(board Board, pins WheelPins, opts ...WheelOption) (w *Wheel, err error) {
	w = &Wheel{
		board: board,
		pins:  pins,
		log:   zap.NewNop().Sugar(),
	}

	for _, opt := range opts {
		opt(w)
	}

	for _, pin := range []Pin{pins.PWM, pins.Forward, pins.Reverse} {
		if err = board.SetPinMode(pin, Output); err != nil {
			return nil, errors.Wrapf(err, "unable to configure pin %d as output", pin)
		}
	}

	return w, nil
}

func (w *Wheel) Pins() WheelPins {
	return w.pins
}

// ValidThrottle reports whether throttle is inside [ThrottleMin, ThrottleMax].
func ValidThrottle(throttle int) bool {
	return throttle >= ThrottleMin && throttle <= ThrottleMax
}

// Forward spins the motor forwards. An out of range throttle leaves every pin
// untouched and is not returned as an error; only board failures are.
func (w *Wheel) Forward(throttle int) error {
	if !w.validate(throttle) {
		return nil
	}

	return w.drive(High, Low, throttle)
}

// Reverse mirrors Forward with the direction pins swapped.
func (w *Wheel) Reverse(throttle int) error {
	if !w.validate(throttle) {
		return nil
	}

	return w.drive(Low, High, throttle)
}

// Stop pulls both direction pins low and zeroes the duty cycle.
func (w *Wheel) Stop() error {
	return w.drive(Low, Low, 0)
}

func (w *Wheel) validate(throttle int) bool {
	if ValidThrottle(throttle) {
		return true
	}

	w.log.Warnw(derrors.ThrottleError{Throttle: throttle}.Error(),
		"pwm_pin", w.pins.PWM, "throttle", throttle)
	return false
}

func (w *Wheel) drive(forward, reverse Level, throttle int) error {
	if err := w.board.WriteDigital(w.pins.Forward, forward); err != nil {
		return errors.Wrapf(err, "writing forward pin %d", w.pins.Forward)
	}
	if err := w.board.WriteDigital(w.pins.Reverse, reverse); err != nil {
		return errors.Wrapf(err, "writing reverse pin %d", w.pins.Reverse)
	}

	duty := calcs.Translate(throttle, ThrottleMin, ThrottleMax, 0, DutyMax)
	if err := w.board.WritePWM(w.pins.PWM, uint8(duty)); err != nil {
		return errors.Wrapf(err, "writing pwm pin %d", w.pins.PWM)
	}

	return nil
}
