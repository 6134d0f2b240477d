// Package comms connects command sources to the chassis. Lines from the serial
// link, the remote socket and the shell all end up in one Lines queue that the
// Conductor polls from a single goroutine, so the wheels are only ever driven
// from that goroutine.
package comms

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/CodedInternet/goforklift/onboard"
	"github.com/CodedInternet/goforklift/onboard/dispatch"
	derrors "github.com/CodedInternet/goforklift/onboard/errors"
	"github.com/CodedInternet/goforklift/onboard/link"
	"github.com/benbjohnson/clock"
	perrors "github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var ErrStopped = errors.New("conductor is not running")

type Conductor struct {
	chassis    *onboard.Chassis
	drive      *onboard.Drive
	lines      *link.Lines
	dispatcher *dispatch.Dispatcher

	clock    clock.Clock
	interval time.Duration
	jobs     chan func()
	done     chan struct{}
	log      *zap.SugaredLogger
}

type Option func(c *Conductor)

func WithClock(clk clock.Clock) Option {
	return func(c *Conductor) {
		c.clock = clk
	}
}

func WithLogger(logger *zap.SugaredLogger) Option {
	return func(c *Conductor) {
		if logger != nil {
			c.log = logger
		}
	}
}

// NewConductor builds the dispatcher for lines. drive may be nil when the
// chassis has no drive pair; drive commands then fail when run.
func NewConductor(config *onboard.RobotConfig, chassis *onboard.Chassis, drive *onboard.Drive, lines *link.Lines, opts ...Option) *Conductor {
	c := &Conductor{
		chassis:  chassis,
		drive:    drive,
		lines:    lines,
		clock:    clock.New(),
		interval: config.Dispatcher.PollInterval,
		jobs:     make(chan func(), 16),
		done:     make(chan struct{}),
		log:      zap.NewNop().Sugar(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.interval <= 0 {
		c.interval = onboard.DefaultPollInterval
	}

	dopts := []dispatch.Option{dispatch.WithCapacity(config.Dispatcher.Capacity)}
	if config.Diagnostics {
		dopts = append(dopts, dispatch.WithDiagnostics(c.log.With("component", "dispatch")))
	}
	c.dispatcher = dispatch.New(lines, dopts...)

	return c
}

// Bind registers every command in order. Commands past the dispatcher capacity
// are reported but the rest stay registered.
func (c *Conductor) Bind(commands []onboard.CommandConfig) (err error) {
	for _, cmd := range commands {
		cmd := cmd
		callback := func(line string) {
			c.log.Debugw("running command", "command", line, "action", cmd.Action)
			if err := c.ProcessCommand(cmd); err != nil {
				c.log.Errorw("command failed", "command", line, "error", err)
			}
		}

		if e := c.dispatcher.Register(cmd.Command, callback); e != nil {
			err = multierr.Append(err, perrors.Wrapf(e, "command %s", cmd.Command))
		}
	}
	return err
}

// ProcessCommand performs the action of cmd straight away. It must only be
// called from the control loop.
func (c *Conductor) ProcessCommand(cmd onboard.CommandConfig) error {
	switch cmd.Action {
	case onboard.ActionForward:
		return c.chassis.Forward(cmd.Throttle, cmd.Wheels...)
	case onboard.ActionReverse:
		return c.chassis.Reverse(cmd.Throttle, cmd.Wheels...)
	case onboard.ActionStop:
		return c.chassis.Stop(cmd.Wheels...)
	case onboard.ActionDrive:
		if c.drive == nil {
			return perrors.Errorf("command %s needs a drive pair", cmd.Command)
		}
		return c.drive.SetVelocity(cmd.Linear, cmd.Angular)
	default:
		return derrors.ActionError{Command: cmd.Command, Action: cmd.Action}
	}
}

// Send queues line as if it had arrived on the serial link.
func (c *Conductor) Send(line string) error {
	return c.lines.PushLine(line)
}

func (c *Conductor) Commands() []string {
	return c.dispatcher.Commands()
}

func (c *Conductor) Chassis() *onboard.Chassis {
	return c.chassis
}

func (c *Conductor) Drive() *onboard.Drive {
	return c.drive
}

// Do runs fn on the control loop and waits for its result.
func (c *Conductor) Do(fn func() error) error {
	result := make(chan error, 1)

	select {
	case c.jobs <- func() { result <- fn() }:
	case <-c.done:
		return ErrStopped
	}

	select {
	case err := <-result:
		return err
	case <-c.done:
		return ErrStopped
	}
}

// Step polls one line and then runs any queued jobs.
func (c *Conductor) Step() error {
	err := c.dispatcher.Poll()

	for {
		select {
		case job := <-c.jobs:
			job()
		default:
			return err
		}
	}
}

// Run polls at the configured interval until ctx is cancelled or the line
// queue is closed. The wheels are stopped on the way out.
func (c *Conductor) Run(ctx context.Context) (err error) {
	ticker := c.clock.Ticker(c.interval)
	defer ticker.Stop()
	defer close(c.done)

	c.log.Infow("conductor running", "interval", c.interval, "commands", c.dispatcher.Commands())

	for err == nil {
		select {
		case <-ctx.Done():
			return c.halt(nil)
		case job := <-c.jobs:
			job()
		case <-ticker.C:
			err = c.Step()
		}
	}

	if err == io.EOF {
		return c.halt(nil)
	}
	return c.halt(perrors.Wrap(err, "reading commands"))
}

func (c *Conductor) halt(err error) error {
	if e := c.chassis.Stop(); e != nil {
		err = multierr.Append(err, perrors.Wrap(e, "stopping chassis"))
	}
	c.log.Infow("conductor stopped", "error", err)
	return err
}
