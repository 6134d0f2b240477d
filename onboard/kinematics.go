package onboard

import (
	"math"

	"github.com/CodedInternet/goforklift/onboard/hardware"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/multierr"
)

// Drive mixes a body velocity into open loop throttles for a left and right
// wheel. There is no feedback; MaxSpeed is the calibrated speed at full throttle.
type Drive struct {
	left, right *hardware.Wheel
	conf        DriveConfig
}

func NewDrive(chassis *Chassis, conf DriveConfig) (d *Drive, err error) {
	d = &Drive{conf: conf}

	if d.left, err = chassis.Wheel(conf.Left); err != nil {
		return nil, err
	}
	if d.right, err = chassis.Wheel(conf.Right); err != nil {
		return nil, err
	}

	return d, nil
}

// Throttles converts linear (cm/s) and angular (deg/s, positive turns left)
// velocity into signed throttle percentages clamped to [-100, 100].
func (d *Drive) Throttles(linear, angular float64) (left, right float64) {
	offset := mgl64.DegToRad(angular) * d.conf.TrackWidth / 2

	left = (linear - offset) / d.conf.MaxSpeed * 100 * d.conf.LeftTrim
	right = (linear + offset) / d.conf.MaxSpeed * 100 * d.conf.RightTrim

	return mgl64.Clamp(left, -100, 100), mgl64.Clamp(right, -100, 100)
}

func (d *Drive) SetVelocity(linear, angular float64) error {
	left, right := d.Throttles(linear, angular)

	err := d.setPower(d.left, left)
	return multierr.Append(err, d.setPower(d.right, right))
}

// Apply runs one Motion per side, as the scripted sequences do.
func (d *Drive) Apply(left, right Motion) error {
	err := left.apply(d.left)
	return multierr.Append(err, right.apply(d.right))
}

func (d *Drive) Stop() error {
	err := d.left.Stop()
	return multierr.Append(err, d.right.Stop())
}

func (d *Drive) setPower(w *hardware.Wheel, pct float64) error {
	if math.Abs(pct) < d.conf.Deadzone {
		return w.Stop()
	}

	throttle := int(math.Round(math.Abs(pct)))
	if pct > 0 {
		return w.Forward(throttle)
	}
	return w.Reverse(throttle)
}
