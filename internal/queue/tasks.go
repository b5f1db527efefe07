package queue

import (
	"encoding/json"

	"github.com/storekart/storekart/internal/constants"

	"github.com/hibiken/asynq"
)

// TaskRecoveryEmail sends one abandoned-cart reminder.
const TaskRecoveryEmail = constants.TaskRecoveryEmail

// RecoveryEmailPayload is the reminder task body. Sequence records which
// reminder the sweep decided was due; the worker re-checks the guards
// against current cart state before sending.
type RecoveryEmailPayload struct {
	CartID   uint `json:"cart_id"`
	Sequence int  `json:"sequence"`
}

// NewRecoveryEmailTask creates a reminder task.
func NewRecoveryEmailTask(payload RecoveryEmailPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRecoveryEmail, body), nil
}
