// Package dispatch maps complete input lines onto registered callbacks.
//
// Matching is exact after trimming surrounding whitespace. Commands are scanned in
// registration order and the first match wins, so registering the same command
// twice leaves the second callback unreachable.
package dispatch

import (
	"errors"
	"strings"

	"github.com/CodedInternet/goforklift/onboard/link"
	"go.uber.org/zap"
)

const DefaultCapacity = 10

var (
	ErrCapacityExceeded = errors.New("command table is full")
)

type Callback func(line string)

type entry struct {
	command  string
	callback Callback
}

type Dispatcher struct {
	source   link.LineReader
	capacity int
	entries  []entry
	log      *zap.SugaredLogger
}

type Option func(d *Dispatcher)

// WithCapacity overrides DefaultCapacity. Non positive values are ignored.
func WithCapacity(capacity int) Option {
	return func(d *Dispatcher) {
		if capacity > 0 {
			d.capacity = capacity
		}
	}
}

// WithDiagnostics reports unknown commands to logger.
func WithDiagnostics(logger *zap.SugaredLogger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.log = logger
		}
	}
}

func New(source link.LineReader, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		source:   source,
		capacity: DefaultCapacity,
		log:      zap.NewNop().Sugar(),
	}

	for _, opt := range opts {
		opt(d)
	}

	d.entries = make([]entry, 0, d.capacity)
	return d
}

// Register appends command to the table. Once the table is full the call has no
// effect other than returning ErrCapacityExceeded.
func (d *Dispatcher) Register(command string, callback Callback) error {
	if len(d.entries) >= d.capacity {
		d.log.Warnw("command not registered", "command", command, "capacity", d.capacity)
		return ErrCapacityExceeded
	}

	d.entries = append(d.entries, entry{command, callback})
	return nil
}

// Poll dispatches at most one line. It returns straight away when the source
// has no complete line queued.
func (d *Dispatcher) Poll() error {
	if !d.source.Available() {
		return nil
	}

	line, err := d.source.ReadLine()
	if err != nil {
		return err
	}
	line = strings.TrimSpace(line)

	for i := range d.entries {
		if d.entries[i].command == line {
			d.entries[i].callback(line)
			return nil
		}
	}

	d.log.Infow("unknown command: "+line, "command", line)
	return nil
}

// Commands lists the registered command strings in match order.
func (d *Dispatcher) Commands() []string {
	commands := make([]string, len(d.entries))
	for i, e := range d.entries {
		commands[i] = e.command
	}
	return commands
}

func (d *Dispatcher) Len() int {
	return len(d.entries)
}

func (d *Dispatcher) Cap() int {
	return d.capacity
}
