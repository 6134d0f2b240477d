package errors

import "fmt"

type WheelNameError struct {
	Name string
}

func (err WheelNameError) Error() string {
	return fmt.Sprintf("no such wheel %s", err.Name)
}

// ThrottleError describes a throttle outside of the 0-100 range. Wheels only
// ever log it, the drive call itself is skipped.
type ThrottleError struct {
	Throttle int
}

func (err ThrottleError) Error() string {
	return fmt.Sprintf("throttle must be an integer from 0 to 100, got %d", err.Throttle)
}

type PinConflictError struct {
	Pin         int
	Wheel, With string
}

func (err PinConflictError) Error() string {
	if len(err.With) == 0 {
		return fmt.Sprintf("wheel %s uses pin %d more than once", err.Wheel, err.Pin)
	}

	return fmt.Sprintf("pin %d is shared by wheels %s and %s", err.Pin, err.With, err.Wheel)
}

type ActionError struct {
	Command string
	Action  string
}

func (err ActionError) Error() string {
	if len(err.Action) == 0 {
		err.Action = "UNKOWN"
	}

	return fmt.Sprintf("command %q has unsupported action %s", err.Command, err.Action)
}
