package onboard

import (
	"github.com/CodedInternet/goforklift/onboard/hardware"
	"go.uber.org/zap"
)

// NewSimulatedChassis builds the configured chassis on top of an in-memory board
// so the rest of the stack can run without hardware attached.
func NewSimulatedChassis(config *RobotConfig, logger *zap.SugaredLogger) (chassis *Chassis, board *hardware.SimulatedBoard, err error) {
	board = hardware.NewSimulatedBoard()
	chassis, err = NewChassis(board, config, logger)
	if err != nil {
		return nil, nil, err
	}
	return chassis, board, nil
}
