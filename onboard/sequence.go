package onboard

import (
	"context"
	"time"

	"github.com/CodedInternet/goforklift/onboard/hardware"
	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
)

type Motion struct {
	Action   string
	Throttle int
}

var Halt = Motion{Action: ActionStop}

func Forward(throttle int) Motion { return Motion{ActionForward, throttle} }
func Reverse(throttle int) Motion { return Motion{ActionReverse, throttle} }

func (m Motion) apply(w *hardware.Wheel) error {
	switch m.Action {
	case ActionForward:
		return w.Forward(m.Throttle)
	case ActionReverse:
		return w.Reverse(m.Throttle)
	case ActionStop, "":
		return w.Stop()
	default:
		return errors.Errorf("motion has unsupported action %s", m.Action)
	}
}

// Step holds a pair of wheel motions for Hold before moving on.
type Step struct {
	Left, Right Motion
	Hold        time.Duration
}

// BenchSequence is the bring-up routine for a new chassis: straight, pause,
// slow reverse, spin right, pause.
var BenchSequence = []Step{
	{Forward(100), Forward(100), time.Second},
	{Halt, Halt, time.Second},
	{Reverse(50), Reverse(50), 2 * time.Second},
	{Reverse(100), Forward(100), time.Second},
	{Halt, Halt, time.Second},
}

// RunSequence plays steps once. Cancelling ctx stops the wheels and returns
// ctx.Err().
func RunSequence(ctx context.Context, clk clock.Clock, drive *Drive, steps []Step) error {
	for i, step := range steps {
		if err := drive.Apply(step.Left, step.Right); err != nil {
			return errors.Wrapf(err, "step %d", i)
		}

		select {
		case <-ctx.Done():
			drive.Stop()
			return ctx.Err()
		case <-clk.After(step.Hold):
		}
	}

	return nil
}
