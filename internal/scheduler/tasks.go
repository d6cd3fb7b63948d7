package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskQuotaCycleReset = "quota.cycle.reset"

type QuotaCycleResetPayload struct {
	UserID int64 `json:"userId"`
}

func NewQuotaCycleResetTask(payload QuotaCycleResetPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskQuotaCycleReset, data), nil
}

func ParseQuotaCycleResetPayload(task *asynq.Task) (QuotaCycleResetPayload, error) {
	var payload QuotaCycleResetPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return QuotaCycleResetPayload{}, err
	}
	return payload, nil
}
