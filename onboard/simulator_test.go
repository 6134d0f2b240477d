package onboard

import (
	"testing"

	"github.com/CodedInternet/goforklift/onboard/hardware"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNewSimulatedChassis(t *testing.T) {
	Convey("the simulated chassis starts with every wheel stopped", t, func() {
		chassis, board, err := NewSimulatedChassis(testRobot(), nil)
		So(err, ShouldBeNil)
		So(chassis.Names(), ShouldHaveLength, 2)
		So(board.Writes(), ShouldEqual, 0)

		for _, pins := range []hardware.WheelPins{leftPins, rightPins} {
			So(board.State(pins.PWM).Mode, ShouldEqual, hardware.Output)
			So(board.State(pins.PWM).Duty, ShouldEqual, 0)
		}
	})

	Convey("the simulated chassis can be driven from the shipped config", t, func() {
		config, err := LoadConfig("../robot.yaml")
		So(err, ShouldBeNil)

		chassis, board, err := NewSimulatedChassis(config, nil)
		So(err, ShouldBeNil)
		So(chassis.Forward(100), ShouldBeNil)
		So(board.Writes(), ShouldEqual, 3*len(config.Wheels))
	})
}
