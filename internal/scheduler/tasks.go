// Package scheduler queues follow-up nudges through asynq so a client
// who goes quiet after receiving a quote hears from us once more. The
// worker binary consumes the queue and delivers the nudges.
package scheduler

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const TaskQuoteFollowUp = "quoting.follow_up"

// QuoteFollowUpPayload identifies the quotation a nudge refers to.
// QuotedAt is compared against session activity when the task fires.
type QuoteFollowUpPayload struct {
	UserID   string    `json:"userId"`
	QuoteID  string    `json:"quoteId"`
	Channel  string    `json:"channel"`
	Language string    `json:"language"`
	QuotedAt time.Time `json:"quotedAt"`
}

func NewQuoteFollowUpTask(payload QuoteFollowUpPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskQuoteFollowUp, data), nil
}

func ParseQuoteFollowUpPayload(task *asynq.Task) (QuoteFollowUpPayload, error) {
	var payload QuoteFollowUpPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return QuoteFollowUpPayload{}, err
	}
	return payload, nil
}
