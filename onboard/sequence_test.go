package onboard

import (
	"context"
	"testing"
	"time"

	"github.com/CodedInternet/goforklift/onboard/hardware"
	"github.com/benbjohnson/clock"
	. "github.com/smartystreets/goconvey/convey"
)

// runMocked plays steps on a goroutine, winding the mock clock on until it
// returns.
func runMocked(ctx context.Context, drive *Drive, steps []Step) error {
	mock := clock.NewMock()
	done := make(chan error, 1)
	go func() {
		done <- RunSequence(ctx, mock, drive, steps)
	}()

	for {
		select {
		case err := <-done:
			return err
		default:
			mock.Add(500 * time.Millisecond)
		}
	}
}

func TestRunSequence(t *testing.T) {
	Convey("Given a drive on a simulated board", t, func() {
		drive, board := createTestDrive(testRobot())

		Convey("the bench sequence ends with the wheels stopped", func() {
			So(runMocked(context.Background(), drive, BenchSequence), ShouldBeNil)
			for _, pins := range []hardware.WheelPins{leftPins, rightPins} {
				So(board.State(pins.Forward).Level, ShouldEqual, hardware.Low)
				So(board.State(pins.Reverse).Level, ShouldEqual, hardware.Low)
				So(board.State(pins.PWM).Duty, ShouldEqual, 0)
			}
			// three pin writes per wheel per step
			So(board.Writes(), ShouldEqual, len(BenchSequence)*2*3)
		})

		Convey("each side follows its own motion", func() {
			steps := []Step{{Left: Forward(80), Right: Reverse(40), Hold: time.Second}}
			So(runMocked(context.Background(), drive, steps), ShouldBeNil)

			So(board.State(leftPins.Forward).Level, ShouldEqual, hardware.High)
			So(board.State(leftPins.PWM).Duty, ShouldEqual, 204)
			So(board.State(rightPins.Reverse).Level, ShouldEqual, hardware.High)
			So(board.State(rightPins.PWM).Duty, ShouldEqual, 102)
		})

		Convey("cancelling stops the wheels", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			err := RunSequence(ctx, clock.NewMock(), drive, BenchSequence)
			So(err, ShouldEqual, context.Canceled)
			So(board.State(leftPins.PWM).Duty, ShouldEqual, 0)
			So(board.State(rightPins.Forward).Level, ShouldEqual, hardware.Low)
		})

		Convey("unknown motions abort the sequence", func() {
			steps := []Step{{Left: Motion{Action: "jump"}, Right: Halt}}
			err := RunSequence(context.Background(), clock.NewMock(), drive, steps)
			So(err.Error(), ShouldContainSubstring, "step 0")
			So(err.Error(), ShouldContainSubstring, "unsupported action jump")
		})
	})
}
