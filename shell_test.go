package main

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestShellArgs(t *testing.T) {
	Convey("wheel commands take a name and an integer throttle", t, func() {
		name, throttle, err := wheelArgs([]string{"left", "40"})
		So(err, ShouldBeNil)
		So(name, ShouldEqual, "left")
		So(throttle, ShouldEqual, 40)

		_, _, err = wheelArgs([]string{"left"})
		So(err.Error(), ShouldContainSubstring, "got 1 arguments")

		_, _, err = wheelArgs([]string{"left", "fast"})
		So(err.Error(), ShouldEqual, `throttle "fast" is not an integer`)
	})

	Convey("out of range throttles are left for the wheel to refuse", t, func() {
		_, throttle, err := wheelArgs([]string{"left", "150"})
		So(err, ShouldBeNil)
		So(throttle, ShouldEqual, 150)
	})

	Convey("drive takes two numbers", t, func() {
		linear, angular, err := velocityArgs([]string{"12.5", "-90"})
		So(err, ShouldBeNil)
		So(linear, ShouldEqual, 12.5)
		So(angular, ShouldEqual, -90)

		_, _, err = velocityArgs([]string{"x", "0"})
		So(err.Error(), ShouldContainSubstring, "linear")
		_, _, err = velocityArgs([]string{"0", "y"})
		So(err.Error(), ShouldContainSubstring, "angular")
	})
}
