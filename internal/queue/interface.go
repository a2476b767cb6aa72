package queue

import "context"

// QueueInterface defines the contract for async job submission
type QueueInterface interface {
	SendMessage(ctx context.Context, queueURL string, payload interface{}) error
}
