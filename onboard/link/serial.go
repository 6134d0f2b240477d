package link

import (
	"context"
	"io"
	"time"

	"github.com/goburrow/serial"
	"github.com/pkg/errors"
)

const (
	DefaultBaudRate    = 9600
	DefaultReadTimeout = 100 * time.Millisecond
)

type SerialConfig struct {
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud"`
}

// OpenSerial opens a 8N1 port. Reads time out so that Pump can notice
// cancellation.
func OpenSerial(conf SerialConfig) (serial.Port, error) {
	if conf.BaudRate == 0 {
		conf.BaudRate = DefaultBaudRate
	}

	port, err := serial.Open(&serial.Config{
		Address:  conf.Port,
		BaudRate: conf.BaudRate,
		DataBits: 8,
		StopBits: 1,
		Parity:   "N",
		Timeout:  DefaultReadTimeout,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open serial port %s", conf.Port)
	}

	return port, nil
}

type reader interface {
	Read(p []byte) (n int, err error)
}

// Pump copies bytes from r into lines until ctx is cancelled, r reaches EOF or
// r fails. Read timeouts are expected and skipped.
func Pump(ctx context.Context, r reader, lines *Lines) error {
	buf := make([]byte, 128)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, err := r.Read(buf)
		if n > 0 {
			if _, werr := lines.Write(buf[:n]); werr != nil {
				return werr
			}
		}

		switch {
		case err == nil:
		case err == serial.ErrTimeout:
		case err == io.EOF:
			return nil
		default:
			return errors.Wrap(err, "serial read")
		}
	}
}
