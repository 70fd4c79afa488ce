package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/edukart-next/internal/logger"
	"github.com/edukart-next/internal/provider"
	"github.com/edukart-next/internal/queue"
	"github.com/edukart-next/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer handles queued settlement tasks.
type Consumer struct {
	*provider.Container
}

// NewConsumer creates a consumer.
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register wires the task handlers.
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskSessionExpire, c.handleSessionExpire)
	mux.HandleFunc(queue.TaskSettlementRetryLine, c.handleSettlementRetryLine)
}

func (c *Consumer) handleSessionExpire(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		return nil
	}
	var payload queue.SessionExpirePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_session_expire_unmarshal_failed", "error", err)
		return err
	}
	// One sweep expires every overdue session, not only the triggering one,
	// so missed tasks heal themselves.
	expired, err := c.SettlementService.ExpireSessions(time.Now())
	if err != nil {
		logger.Warnw("worker_session_expire_failed", "session_id", payload.SessionID, "error", err)
		return err
	}
	if expired > 0 {
		logger.Infow("worker_sessions_expired", "count", expired)
	}
	return nil
}

func (c *Consumer) handleSettlementRetryLine(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		return nil
	}
	var payload queue.SettlementRetryLinePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_retry_line_unmarshal_failed", "error", err)
		return err
	}
	if payload.SubOrderID == 0 {
		return nil
	}
	err := c.SettlementService.RetryLine(ctx, payload.SubOrderID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSlotUnavailable), errors.Is(err, service.ErrBatchFull):
			// The resource is genuinely gone; retrying cannot help. The
			// sub-order keeps its follow-up flag for manual resolution.
			logger.Warnw("worker_retry_line_unrecoverable", "sub_order_id", payload.SubOrderID, "error", err)
			return nil
		default:
			logger.Warnw("worker_retry_line_failed", "sub_order_id", payload.SubOrderID, "error", err)
			return err
		}
	}
	return nil
}
