package onboard

import (
	"testing"

	derrors "github.com/CodedInternet/goforklift/onboard/errors"
	"github.com/CodedInternet/goforklift/onboard/hardware"
	. "github.com/smartystreets/goconvey/convey"
)

func createTestDrive(config *RobotConfig) (*Drive, *hardware.SimulatedBoard) {
	chassis, board := createTestChassis(config)
	drive, err := NewDrive(chassis, config.Drive)
	if err != nil {
		panic(err)
	}
	return drive, board
}

func TestNewDrive(t *testing.T) {
	Convey("drive wheels must exist", t, func() {
		config := testRobot()
		chassis, _ := createTestChassis(config)

		conf := config.Drive
		conf.Right = "tail"
		drive, err := NewDrive(chassis, conf)
		So(drive, ShouldBeNil)
		So(err, ShouldResemble, derrors.WheelNameError{Name: "tail"})
	})
}

func TestDriveThrottles(t *testing.T) {
	Convey("Given the default 17cm track and 60cm/s top speed", t, func() {
		drive, _ := createTestDrive(testRobot())

		Convey("straight lines drive both sides equally", func() {
			left, right := drive.Throttles(30, 0)
			So(left, ShouldAlmostEqual, 50)
			So(right, ShouldAlmostEqual, 50)

			left, right = drive.Throttles(-60, 0)
			So(left, ShouldAlmostEqual, -100)
			So(right, ShouldAlmostEqual, -100)
		})

		Convey("positive angular velocity turns left", func() {
			left, right := drive.Throttles(0, 180)
			So(left, ShouldAlmostEqual, -44.5058, 0.001)
			So(right, ShouldAlmostEqual, 44.5058, 0.001)
		})

		Convey("results are clamped to full throttle", func() {
			left, right := drive.Throttles(120, 0)
			So(left, ShouldEqual, 100)
			So(right, ShouldEqual, 100)

			left, right = drive.Throttles(-200, 360)
			So(left, ShouldEqual, -100)
			So(right, ShouldEqual, -100)
		})
	})

	Convey("trim scales one side", t, func() {
		config := testRobot()
		config.Drive.LeftTrim = 1.4
		drive, _ := createTestDrive(config)

		left, right := drive.Throttles(30, 0)
		So(left, ShouldAlmostEqual, 70)
		So(right, ShouldAlmostEqual, 50)
	})
}

func TestDriveSetVelocity(t *testing.T) {
	Convey("Given a drive on a simulated board", t, func() {
		drive, board := createTestDrive(testRobot())

		Convey("forward velocity becomes forward throttle", func() {
			So(drive.SetVelocity(60, 0), ShouldBeNil)
			for _, pins := range []hardware.WheelPins{leftPins, rightPins} {
				So(board.State(pins.Forward).Level, ShouldEqual, hardware.High)
				So(board.State(pins.Reverse).Level, ShouldEqual, hardware.Low)
				So(board.State(pins.PWM).Duty, ShouldEqual, 255)
			}
		})

		Convey("backward velocity becomes reverse throttle", func() {
			So(drive.SetVelocity(-30, 0), ShouldBeNil)
			So(board.State(leftPins.Reverse).Level, ShouldEqual, hardware.High)
			So(board.State(leftPins.PWM).Duty, ShouldEqual, 127)
		})

		Convey("spinning drives the sides apart", func() {
			So(drive.SetVelocity(0, 180), ShouldBeNil)
			So(board.State(leftPins.Reverse).Level, ShouldEqual, hardware.High)
			So(board.State(rightPins.Forward).Level, ShouldEqual, hardware.High)
			// 45% on both sides
			So(board.State(leftPins.PWM).Duty, ShouldEqual, 114)
			So(board.State(rightPins.PWM).Duty, ShouldEqual, 114)
		})

		Convey("velocities inside the deadzone stop the wheels", func() {
			So(drive.SetVelocity(60, 0), ShouldBeNil)
			So(drive.SetVelocity(3, 0), ShouldBeNil)
			for _, pins := range []hardware.WheelPins{leftPins, rightPins} {
				So(board.State(pins.Forward).Level, ShouldEqual, hardware.Low)
				So(board.State(pins.PWM).Duty, ShouldEqual, 0)
			}
		})

		Convey("stop halts both sides", func() {
			So(drive.Apply(Forward(100), Reverse(100)), ShouldBeNil)
			So(drive.Stop(), ShouldBeNil)
			So(board.State(leftPins.PWM).Duty, ShouldEqual, 0)
			So(board.State(rightPins.Reverse).Level, ShouldEqual, hardware.Low)
		})
	})
}
