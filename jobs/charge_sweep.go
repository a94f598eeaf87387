package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// consumed charges are kept for a day so status polling keeps answering
	// "settled" after issuance
	sweepConsumedAfter = 24 * time.Hour
	// pending charges expire at the gateway after an hour; anything older
	// is an abandoned cart
	sweepPendingAfter = 2 * time.Hour
)

// ChargeStore is the slice of the payments repository the sweeper needs.
type ChargeStore interface {
	DeleteStale(ctx context.Context, consumedBefore, pendingBefore time.Time) (int64, error)
}

// NewChargeSweepTask constructs the periodic sweep task.
func NewChargeSweepTask() *asynq.Task {
	return asynq.NewTask(TaskTypeChargeSweep, nil)
}

// NewChargeSweepHandler processes TaskTypeChargeSweep tasks.
func NewChargeSweepHandler(logger *slog.Logger, store ChargeStore) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		now := time.Now()
		removed, err := store.DeleteStale(ctx, now.Add(-sweepConsumedAfter), now.Add(-sweepPendingAfter))
		if err != nil {
			return err
		}
		if removed > 0 {
			logger.Info("stale charges swept", slog.Int64("removed", removed))
		}
		return nil
	}
}
