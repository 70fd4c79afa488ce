package queue

import (
	"encoding/json"

	"github.com/edukart-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskSessionExpire marks overdue checkout sessions expired.
	TaskSessionExpire = constants.TaskSessionExpire
	// TaskSettlementRetryLine re-attempts a pending sub-order's enrollment.
	TaskSettlementRetryLine = constants.TaskSettlementRetryLine
)

// SessionExpirePayload is the session expiry task payload.
type SessionExpirePayload struct {
	SessionID uint `json:"session_id"`
}

// SettlementRetryLinePayload is the follow-up task payload.
type SettlementRetryLinePayload struct {
	SubOrderID uint `json:"sub_order_id"`
}

// NewSessionExpireTask builds a session expiry task.
func NewSessionExpireTask(payload SessionExpirePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSessionExpire, body), nil
}

// NewSettlementRetryLineTask builds a follow-up task.
func NewSettlementRetryLineTask(payload SettlementRetryLinePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSettlementRetryLine, body), nil
}
