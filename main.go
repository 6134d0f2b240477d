package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/CodedInternet/goforklift/comms"
	"github.com/CodedInternet/goforklift/logging"
	. "github.com/CodedInternet/goforklift/onboard"
	"github.com/CodedInternet/goforklift/onboard/link"
	"github.com/benbjohnson/clock"
	"github.com/caarlos0/env/v6"
	"go.uber.org/zap"
)

type EnvConfig struct {
	CONFIG      string `env:"CONFIG" envDefault:"./robot.yaml"`
	DEBUG       bool   `env:"DEBUG" envDefault:"0"`
	SIM         bool   `env:"SIM" envDefault:"0"`
	LOG_FILE    string `env:"LOG_FILE"`
	REMOTE_ADDR string `env:"REMOTE_ADDR"`
	JWT_SECRET  string `env:"JWT_SECRET" envDefault:"xWumOlRfhu+LBi2F2e1yF4FiaopQ5mr8klL4fpILnlI="`
	JWT_ISSUER  string `env:"JWT_ISSUER" envDefault:"DEV"`
}

var (
	ENV *EnvConfig
)

func init() {
	// Load main config
	ENV = new(EnvConfig)
	if err := env.Parse(ENV); err != nil {
		panic(err)
	}
}

func main() {
	// process flags
	simulated := flag.Bool("sim", ENV.SIM, "Run against a simulated board")
	filename := flag.String("config", ENV.CONFIG, "Robot description to load")
	interactive := flag.Bool("shell", false, "Start the development shell")
	demo := flag.Bool("demo", false, "Play the bench sequence once and exit")
	flag.Parse()

	logger, sync := logging.New(logging.Config{Debug: ENV.DEBUG, File: ENV.LOG_FILE})
	defer sync()

	if err := run(logger, *filename, *simulated, *interactive, *demo); err != nil {
		logger.Errorw("exiting", "error", err)
		sync()
		os.Exit(1)
	}
}

func run(logger *zap.SugaredLogger, filename string, simulated, interactive, demo bool) error {
	config, err := LoadConfig(filename)
	if err != nil {
		return err
	}
	if simulated {
		config.Board.Kind = BoardSimulated
	}
	if ENV.DEBUG {
		config.Diagnostics = true
	}

	board, err := OpenBoard(config.Board)
	if err != nil {
		return err
	}

	chassis, err := NewChassis(board, config, logger)
	if err != nil {
		board.Close()
		return err
	}
	defer func() {
		if err := chassis.Close(); err != nil {
			logger.Errorw("closing chassis", "error", err)
		}
	}()
	logger.Infow("chassis ready", "board", config.Board.Kind, "wheels", chassis.Names())

	drive, err := NewDrive(chassis, config.Drive)
	if err != nil {
		logger.Warnw("drive commands disabled", "error", err)
		drive = nil
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if demo {
		if drive == nil {
			return err
		}
		logger.Info("playing bench sequence")
		return RunSequence(ctx, clock.New(), drive, BenchSequence)
	}

	lines := link.NewLines(link.DefaultBacklog)
	defer lines.Close()

	conductor := comms.NewConductor(config, chassis, drive, lines, comms.WithLogger(logger))
	if err := conductor.Bind(config.Commands); err != nil {
		logger.Warnw("some commands were not registered", "error", err)
	}

	if config.Serial.Port != "" {
		port, err := link.OpenSerial(config.Serial)
		if err != nil {
			return err
		}
		defer port.Close()

		go func() {
			if err := link.Pump(ctx, port, lines); err != nil {
				logger.Errorw("serial link lost", "port", config.Serial.Port, "error", err)
			}
		}()
		logger.Infow("listening for commands", "port", config.Serial.Port, "baud", config.Serial.BaudRate)
	}

	if ENV.REMOTE_ADDR != "" {
		srv := &http.Server{
			Addr:    ENV.REMOTE_ADDR,
			Handler: NewRouter(lines, conductor.Commands(), logger, !ENV.DEBUG),
		}
		go func() {
			logger.Infow("remote command socket listening", "addr", ENV.REMOTE_ADDR)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Errorw("remote command socket", "error", err)
			}
		}()
		defer func() {
			shutdown, done := context.WithTimeout(context.Background(), time.Second)
			defer done()
			srv.Shutdown(shutdown)
		}()
	}

	if interactive {
		shell := newShell(conductor)
		go func() {
			shell.Run()
			cancel()
		}()
	}

	return conductor.Run(ctx)
}
