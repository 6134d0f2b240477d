package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/CodedInternet/goforklift/comms"
	"github.com/abiosoft/ishell"
)

// wheelArgs parses "<wheel> <throttle>".
func wheelArgs(args []string) (name string, throttle int, err error) {
	if len(args) != 2 {
		return "", 0, fmt.Errorf("expected <wheel> <throttle>, got %d arguments", len(args))
	}

	throttle, err = strconv.Atoi(args[1])
	if err != nil {
		return "", 0, fmt.Errorf("throttle %q is not an integer", args[1])
	}
	return args[0], throttle, nil
}

// velocityArgs parses "<linear> <angular>".
func velocityArgs(args []string) (linear, angular float64, err error) {
	if len(args) != 2 {
		return 0, 0, fmt.Errorf("expected <linear> <angular>, got %d arguments", len(args))
	}

	if linear, err = strconv.ParseFloat(args[0], 64); err != nil {
		return 0, 0, fmt.Errorf("linear %q is not a number", args[0])
	}
	if angular, err = strconv.ParseFloat(args[1], 64); err != nil {
		return 0, 0, fmt.Errorf("angular %q is not a number", args[1])
	}
	return linear, angular, nil
}

//---
// Create a local shell
//---
func newShell(conductor *comms.Conductor) *ishell.Shell {
	wheelNames := func([]string) []string {
		return conductor.Chassis().Names()
	}

	shell := ishell.New()
	shell.Println("Forklift development shell")
	shell.ShowPrompt(true)

	shell.AddCmd(&ishell.Cmd{
		Name: "send",
		Help: "send <line>, queue a line as if it came over serial",
		Func: func(c *ishell.Context) {
			if err := conductor.Send(strings.Join(c.Args, " ")); err != nil {
				c.Err(err)
			}
		},
	})

	for _, name := range []string{"forward", "reverse"} {
		reverse := name == "reverse"
		shell.AddCmd(&ishell.Cmd{
			Name:      name,
			Completer: wheelNames,
			Help:      name + " <wheel> <throttle>",
			Func: func(c *ishell.Context) {
				wheel, throttle, err := wheelArgs(c.Args)
				if err != nil {
					c.Err(err)
					return
				}

				err = conductor.Do(func() error {
					if reverse {
						return conductor.Chassis().Reverse(throttle, wheel)
					}
					return conductor.Chassis().Forward(throttle, wheel)
				})
				if err != nil {
					c.Err(err)
				}
			},
		})
	}

	shell.AddCmd(&ishell.Cmd{
		Name:      "stop",
		Completer: wheelNames,
		Help:      "stop [wheel...], stops every wheel when none are named",
		Func: func(c *ishell.Context) {
			names := c.Args
			if err := conductor.Do(func() error { return conductor.Chassis().Stop(names...) }); err != nil {
				c.Err(err)
			}
		},
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "drive",
		Help: "drive <linear cm/s> <angular deg/s>",
		Func: func(c *ishell.Context) {
			linear, angular, err := velocityArgs(c.Args)
			if err != nil {
				c.Err(err)
				return
			}

			drive := conductor.Drive()
			if drive == nil {
				c.Err(fmt.Errorf("no drive pair configured"))
				return
			}

			left, right := drive.Throttles(linear, angular)
			c.Printf("Driving L:%.0f%% R:%.0f%%\n", left, right)
			if err = conductor.Do(func() error { return drive.SetVelocity(linear, angular) }); err != nil {
				c.Err(err)
			}
		},
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "commands",
		Help: "list the command table in match order",
		Func: func(c *ishell.Context) {
			for i, command := range conductor.Commands() {
				c.Printf("%2d %s\n", i, command)
			}
		},
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "token",
		Help: "token <subject>, issue a token for the remote socket",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 1 {
				c.Err(fmt.Errorf("expected <subject>"))
				return
			}

			token, err := newJWT(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			c.Println(token)
		},
	})

	return shell
}
