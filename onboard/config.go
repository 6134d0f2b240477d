package onboard

import (
	"fmt"
	"io/ioutil"
	"time"

	"github.com/CodedInternet/goforklift/onboard/dispatch"
	derrors "github.com/CodedInternet/goforklift/onboard/errors"
	"github.com/CodedInternet/goforklift/onboard/hardware"
	"github.com/CodedInternet/goforklift/onboard/link"
	"github.com/Masterminds/semver"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v2"
)

const (
	SupportedConfigVersion = "^1.0"
	DefaultPollInterval    = 10 * time.Millisecond

	ActionForward = "forward"
	ActionReverse = "reverse"
	ActionStop    = "stop"
	ActionDrive   = "drive"
)

type RobotConfig struct {
	Version     string            `yaml:"version"`
	Board       BoardConfig       `yaml:"board"`
	Serial      link.SerialConfig `yaml:"serial"`
	Diagnostics bool              `yaml:"diagnostics"`
	Dispatcher  DispatcherConfig  `yaml:"dispatcher"`
	Wheels      WheelsConfig      `yaml:"wheels"`
	Drive       DriveConfig       `yaml:"drive"`
	Commands    []CommandConfig   `yaml:"commands"`
}

type BoardConfig struct {
	Kind         string `yaml:"kind"` // sim, firmata or periph
	Port         string `yaml:"port"`
	PWMFrequency int    `yaml:"pwmFrequency"`
}

type DispatcherConfig struct {
	Capacity     int           `yaml:"capacity"`
	PollInterval time.Duration `yaml:"pollInterval"`
}

type WheelConfig struct {
	Name string
	Pins hardware.WheelPins
}

// WheelsConfig keeps wheels in file order. Each wheel is written as a flow
// list of [pwm, forward, reverse] pins.
type WheelsConfig []WheelConfig

type DriveConfig struct {
	Left       string  `yaml:"left"`
	Right      string  `yaml:"right"`
	TrackWidth float64 `yaml:"trackWidth"` // cm between wheel centres
	MaxSpeed   float64 `yaml:"maxSpeed"`   // cm/s reached at full throttle
	LeftTrim   float64 `yaml:"leftTrim"`
	RightTrim  float64 `yaml:"rightTrim"`
	Deadzone   float64 `yaml:"deadzone"` // throttle percent below which a wheel stops
}

// CommandConfig binds an exact command line to a chassis action. An empty
// Wheels list addresses every wheel.
type CommandConfig struct {
	Command  string   `yaml:"command"`
	Action   string   `yaml:"action"`
	Wheels   []string `yaml:"wheels,flow"`
	Throttle int      `yaml:"throttle"`
	Linear   float64  `yaml:"linear"`
	Angular  float64  `yaml:"angular"`
}

func (ws *WheelsConfig) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw yaml.MapSlice
	if err := unmarshal(&raw); err != nil {
		return err
	}

	wheels := make(WheelsConfig, 0, len(raw))
	for _, item := range raw {
		name := fmt.Sprint(item.Key)
		values, ok := item.Value.([]interface{})
		if !ok || len(values) != 3 {
			return errors.Errorf("wheel %s: expected [pwm, forward, reverse] pins", name)
		}

		pins := make([]hardware.Pin, 3)
		for i, v := range values {
			n, ok := v.(int)
			if !ok || n < 0 {
				return errors.Errorf("wheel %s: pin %v is not a pin number", name, v)
			}
			pins[i] = hardware.Pin(n)
		}

		wheels = append(wheels, WheelConfig{
			Name: name,
			Pins: hardware.WheelPins{PWM: pins[0], Forward: pins[1], Reverse: pins[2]},
		})
	}

	*ws = wheels
	return nil
}

func (ws WheelsConfig) MarshalYAML() (interface{}, error) {
	out := make(yaml.MapSlice, len(ws))
	for i, w := range ws {
		out[i] = yaml.MapItem{
			Key:   w.Name,
			Value: []int{int(w.Pins.PWM), int(w.Pins.Forward), int(w.Pins.Reverse)},
		}
	}
	return out, nil
}

// Find returns the wheel named name.
func (ws WheelsConfig) Find(name string) (WheelConfig, bool) {
	for _, w := range ws {
		if w.Name == name {
			return w, true
		}
	}
	return WheelConfig{}, false
}

// LoadConfig reads, defaults and validates a yaml robot description.
func LoadConfig(filename string) (config *RobotConfig, err error) {
	data, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "unable to read config")
	}

	return ParseConfig(data)
}

func ParseConfig(data []byte) (config *RobotConfig, err error) {
	config = new(RobotConfig)
	if err = yaml.Unmarshal(data, config); err != nil {
		return nil, errors.Wrap(err, "unable to unmarshal yaml")
	}

	config.applyDefaults()
	if err = config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *RobotConfig) applyDefaults() {
	if c.Board.Kind == "" {
		c.Board.Kind = BoardSimulated
	}
	if c.Dispatcher.Capacity <= 0 {
		c.Dispatcher.Capacity = dispatch.DefaultCapacity
	}
	if c.Dispatcher.PollInterval <= 0 {
		c.Dispatcher.PollInterval = DefaultPollInterval
	}

	// drive defaults follow the first chassis: 17cm track, 60cm/s at full throttle
	if c.Drive.Left == "" && len(c.Wheels) > 0 {
		c.Drive.Left = c.Wheels[0].Name
	}
	if c.Drive.Right == "" && len(c.Wheels) > 1 {
		c.Drive.Right = c.Wheels[1].Name
	}
	if c.Drive.TrackWidth == 0 {
		c.Drive.TrackWidth = 17
	}
	if c.Drive.MaxSpeed == 0 {
		c.Drive.MaxSpeed = 60
	}
	if c.Drive.LeftTrim == 0 {
		c.Drive.LeftTrim = 1
	}
	if c.Drive.RightTrim == 0 {
		c.Drive.RightTrim = 1
	}
	if c.Drive.Deadzone == 0 {
		c.Drive.Deadzone = 10
	}

	if len(c.Commands) == 0 {
		c.Commands = DefaultCommands()
	}
}

// DefaultCommands is the command table used when the config has none.
func DefaultCommands() []CommandConfig {
	return []CommandConfig{
		{Command: "FORWARD", Action: ActionForward, Throttle: 100},
		{Command: "REVERSE", Action: ActionReverse, Throttle: 50},
		{Command: "STOP", Action: ActionStop},
		{Command: "LEFT", Action: ActionDrive, Angular: 180},
		{Command: "RIGHT", Action: ActionDrive, Angular: -180},
	}
}

// Validate reports every problem found rather than just the first.
func (c *RobotConfig) Validate() (err error) {
	err = multierr.Append(err, c.checkVersion())

	if len(c.Wheels) == 0 {
		err = multierr.Append(err, errors.New("at least one wheel is required"))
	}
	err = multierr.Append(err, c.checkPins())

	switch c.Board.Kind {
	case BoardSimulated, BoardPeriph:
	case BoardFirmata:
		if c.Board.Port == "" {
			err = multierr.Append(err, errors.New("firmata board requires a port"))
		}
	default:
		err = multierr.Append(err, errors.Errorf("unknown board kind %q", c.Board.Kind))
	}

	if c.Dispatcher.Capacity < len(c.Commands) {
		err = multierr.Append(err, errors.Errorf("%d commands configured but the dispatcher only holds %d",
			len(c.Commands), c.Dispatcher.Capacity))
	}

	drive := false
	for _, cmd := range c.Commands {
		err = multierr.Append(err, c.checkCommand(cmd))
		drive = drive || cmd.Action == ActionDrive
	}

	if drive {
		for _, name := range []string{c.Drive.Left, c.Drive.Right} {
			if _, ok := c.Wheels.Find(name); !ok {
				err = multierr.Append(err, errors.Wrap(derrors.WheelNameError{Name: name}, "drive"))
			}
		}
		if c.Drive.MaxSpeed <= 0 {
			err = multierr.Append(err, errors.New("drive maxSpeed must be positive"))
		}
	}

	return err
}

func (c *RobotConfig) checkVersion() error {
	version, err := semver.NewVersion(c.Version)
	if err != nil {
		return errors.Wrapf(err, "config version %q", c.Version)
	}

	constraint, err := semver.NewConstraint(SupportedConfigVersion)
	if err != nil {
		return err
	}

	if !constraint.Check(version) {
		return errors.Errorf("unable to use config version %s - require %s", c.Version, SupportedConfigVersion)
	}
	return nil
}

func (c *RobotConfig) checkPins() (err error) {
	owners := make(map[hardware.Pin]string)
	for _, w := range c.Wheels {
		seen := make(map[hardware.Pin]bool, 3)
		for _, pin := range []hardware.Pin{w.Pins.PWM, w.Pins.Forward, w.Pins.Reverse} {
			if seen[pin] {
				err = multierr.Append(err, derrors.PinConflictError{Pin: int(pin), Wheel: w.Name})
				continue
			}
			seen[pin] = true

			if owner, ok := owners[pin]; ok {
				err = multierr.Append(err, derrors.PinConflictError{Pin: int(pin), Wheel: w.Name, With: owner})
				continue
			}
			owners[pin] = w.Name
		}
	}
	return err
}

func (c *RobotConfig) checkCommand(cmd CommandConfig) (err error) {
	if cmd.Command == "" {
		return errors.New("command string must not be empty")
	}

	switch cmd.Action {
	case ActionForward, ActionReverse:
		if !hardware.ValidThrottle(cmd.Throttle) {
			err = multierr.Append(err, errors.Wrapf(derrors.ThrottleError{Throttle: cmd.Throttle}, "command %s", cmd.Command))
		}
	case ActionStop, ActionDrive:
	default:
		return derrors.ActionError{Command: cmd.Command, Action: cmd.Action}
	}

	for _, name := range cmd.Wheels {
		if _, ok := c.Wheels.Find(name); !ok {
			err = multierr.Append(err, errors.Wrapf(derrors.WheelNameError{Name: name}, "command %s", cmd.Command))
		}
	}
	return err
}
