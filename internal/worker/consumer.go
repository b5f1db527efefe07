package worker

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/storekart/storekart/internal/logger"
	"github.com/storekart/storekart/internal/provider"
	"github.com/storekart/storekart/internal/queue"
	"github.com/storekart/storekart/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer handles queued tasks.
type Consumer struct {
	*provider.Container
}

// NewConsumer creates a consumer.
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register attaches task handlers.
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskRecoveryEmail, c.handleRecoveryEmail)
}

// handleRecoveryEmail sends the reminder a sweep enqueued. Guard failures
// are terminal outcomes, not retryable errors: the cart resolved, lost its
// contact, finished its sequence, or already received this reminder from a
// duplicate task, and a retry could only resend a reminder that must not
// go out.
func (c *Consumer) handleRecoveryEmail(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		return nil
	}
	var payload queue.RecoveryEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_recovery_email_unmarshal_failed", "error", err)
		return err
	}
	if payload.CartID == 0 {
		logger.Debugw("worker_recovery_email_skip_invalid_payload", "cart_id", payload.CartID)
		return nil
	}
	if c.RecoveryService == nil {
		logger.Warnw("worker_recovery_email_skip_service_nil", "cart_id", payload.CartID)
		return nil
	}

	sequence, err := c.RecoveryService.SendScheduled(ctx, payload.CartID, payload.Sequence)
	if err != nil {
		if isTerminalRecoveryError(err) {
			logger.Debugw("worker_recovery_email_skip_guard",
				"cart_id", payload.CartID,
				"reason", err.Error())
			return nil
		}
		logger.Warnw("worker_recovery_email_failed",
			"cart_id", payload.CartID,
			"error", err)
		return err
	}

	logger.Infow("worker_recovery_email_done",
		"cart_id", payload.CartID,
		"sequence", sequence)
	return nil
}

func isTerminalRecoveryError(err error) bool {
	return errors.Is(err, service.ErrCartNotFound) ||
		errors.Is(err, service.ErrCartNotActive) ||
		errors.Is(err, service.ErrNoContactInfo) ||
		errors.Is(err, service.ErrSequenceComplete) ||
		errors.Is(err, service.ErrReminderNotDue)
}
