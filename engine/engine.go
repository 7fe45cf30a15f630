package engine

import (
	"context"
	"errors"

	"hanabi/experiments/metrics"
)

const MaxMoves = 1000

var ErrIllegalMove = errors.New("illegal move")

type Engine interface {
	// Run plays a game to the end or until ctx is done
	Run(ctx context.Context) (gameMetric metrics.GameMetric, moveMetrics []metrics.MoveMetric, err error)
}
