package onboard

import (
	"errors"
	"testing"

	derrors "github.com/CodedInternet/goforklift/onboard/errors"
	"github.com/CodedInternet/goforklift/onboard/hardware"
	. "github.com/smartystreets/goconvey/convey"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var (
	leftPins  = hardware.WheelPins{PWM: 5, Forward: 22, Reverse: 23}
	rightPins = hardware.WheelPins{PWM: 6, Forward: 24, Reverse: 25}
)

func testRobot() *RobotConfig {
	config := &RobotConfig{
		Version: "1.0.0",
		Wheels: WheelsConfig{
			{Name: "left", Pins: leftPins},
			{Name: "right", Pins: rightPins},
		},
	}
	config.applyDefaults()
	return config
}

func createTestChassis(config *RobotConfig) (*Chassis, *hardware.SimulatedBoard) {
	chassis, board, err := NewSimulatedChassis(config, nil)
	if err != nil {
		panic(err)
	}
	return chassis, board
}

func TestOpenBoard(t *testing.T) {
	Convey("the simulated board needs no hardware", t, func() {
		board, err := OpenBoard(BoardConfig{Kind: BoardSimulated})
		So(err, ShouldBeNil)
		So(board, ShouldHaveSameTypeAs, &hardware.SimulatedBoard{})

		board, err = OpenBoard(BoardConfig{})
		So(err, ShouldBeNil)
		So(board, ShouldNotBeNil)
	})

	Convey("unknown board kinds are refused", t, func() {
		board, err := OpenBoard(BoardConfig{Kind: "abacus"})
		So(board, ShouldBeNil)
		So(err.Error(), ShouldContainSubstring, `"abacus"`)
	})
}

func TestChassis(t *testing.T) {
	Convey("Given a two wheel chassis", t, func() {
		chassis, board := createTestChassis(testRobot())

		Convey("wheels keep configuration order", func() {
			So(chassis.Names(), ShouldResemble, []string{"left", "right"})

			wheel, err := chassis.Wheel("right")
			So(err, ShouldBeNil)
			So(wheel.Pins(), ShouldResemble, rightPins)
		})

		Convey("unknown wheels are a WheelNameError", func() {
			_, err := chassis.Wheel("middle")
			So(err, ShouldResemble, derrors.WheelNameError{Name: "middle"})
		})

		Convey("without names every wheel moves", func() {
			So(chassis.Forward(100), ShouldBeNil)
			for _, pins := range []hardware.WheelPins{leftPins, rightPins} {
				So(board.State(pins.Forward).Level, ShouldEqual, hardware.High)
				So(board.State(pins.Reverse).Level, ShouldEqual, hardware.Low)
				So(board.State(pins.PWM).Duty, ShouldEqual, 255)
			}
		})

		Convey("named wheels move alone", func() {
			So(chassis.Reverse(50, "right"), ShouldBeNil)
			So(board.State(rightPins.Reverse).Level, ShouldEqual, hardware.High)
			So(board.State(rightPins.PWM).Duty, ShouldEqual, 127)
			So(board.State(leftPins.PWM).Duty, ShouldEqual, 0)
			So(board.State(leftPins.Reverse).Level, ShouldEqual, hardware.Low)
		})

		Convey("an unknown name moves nothing", func() {
			writes := board.Writes()
			err := chassis.Forward(80, "left", "middle")
			So(err, ShouldResemble, derrors.WheelNameError{Name: "middle"})
			So(board.Writes(), ShouldEqual, writes)
		})

		Convey("stop only touches the named wheel", func() {
			So(chassis.Forward(100), ShouldBeNil)
			So(chassis.Stop("left"), ShouldBeNil)
			So(board.State(leftPins.PWM).Duty, ShouldEqual, 0)
			So(board.State(leftPins.Forward).Level, ShouldEqual, hardware.Low)
			So(board.State(rightPins.PWM).Duty, ShouldEqual, 255)
		})

		Convey("board failures name the wheel", func() {
			board.Fail = errors.New("cable")
			err := chassis.Stop()
			So(err.Error(), ShouldContainSubstring, "wheel left")
			So(err.Error(), ShouldContainSubstring, "wheel right")
			So(err.Error(), ShouldContainSubstring, "cable")
		})

		Convey("close stops the wheels and releases the board", func() {
			So(chassis.Forward(60), ShouldBeNil)
			So(chassis.Close(), ShouldBeNil)
			So(board.Closed(), ShouldBeTrue)
			for _, pins := range []hardware.WheelPins{leftPins, rightPins} {
				So(board.State(pins.PWM).Duty, ShouldEqual, 0)
				So(board.State(pins.Forward).Level, ShouldEqual, hardware.Low)
			}
		})
	})

	Convey("board failures during setup are returned", t, func() {
		config := testRobot()
		board := hardware.NewSimulatedBoard()
		board.Fail = errors.New("no firmware")

		chassis, err := NewChassis(board, config, nil)
		So(chassis, ShouldBeNil)
		So(err.Error(), ShouldStartWith, "wheel left")
	})
}

func TestChassisDiagnostics(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core).Sugar()

	Convey("diagnostics only reach the logger when enabled", t, func() {
		config := testRobot()
		chassis, _, err := NewSimulatedChassis(config, logger)
		So(err, ShouldBeNil)
		So(chassis.Forward(150), ShouldBeNil)
		So(logs.TakeAll(), ShouldBeEmpty)

		config.Diagnostics = true
		chassis, _, err = NewSimulatedChassis(config, logger)
		So(err, ShouldBeNil)
		So(chassis.Forward(150, "right"), ShouldBeNil)

		entries := logs.TakeAll()
		So(entries, ShouldHaveLength, 1)
		So(entries[0].Message, ShouldContainSubstring, "throttle must be an integer from 0 to 100")
		So(entries[0].ContextMap()["wheel"], ShouldEqual, "right")
	})
}
