package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/CodedInternet/goforklift/logging"
	"github.com/CodedInternet/goforklift/onboard"
	"github.com/benbjohnson/clock"
)

func main() {
	filename := flag.String("config", "./robot.yaml", "Robot description to load")
	loops := flag.Int("loops", 1, "Number of times to play the bench sequence, 0 runs until interrupted")
	flag.Parse()

	logger, sync := logging.New(logging.Config{Debug: true})
	defer sync()

	config, err := onboard.LoadConfig(*filename)
	if err != nil {
		logger.Fatalw("unable to load config", "error", err)
	}
	config.Diagnostics = true

	board, err := onboard.OpenBoard(config.Board)
	if err != nil {
		logger.Fatalw("unable to open board", "kind", config.Board.Kind, "error", err)
	}

	chassis, err := onboard.NewChassis(board, config, logger)
	if err != nil {
		logger.Fatalw("unable to set up wheels", "error", err)
	}
	defer chassis.Close()

	drive, err := onboard.NewDrive(chassis, config.Drive)
	if err != nil {
		logger.Fatalw("unable to set up drive", "error", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	clk := clock.New()
	for i := 0; *loops == 0 || i < *loops; i++ {
		logger.Infow("bench sequence", "loop", i+1)
		if err = onboard.RunSequence(ctx, clk, drive, onboard.BenchSequence); err != nil {
			break
		}
	}

	if err != nil && err != context.Canceled {
		logger.Errorw("bench sequence failed", "error", err)
		return
	}
	fmt.Println("Success! Bench sequence complete")
}
