package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/sirupsen/logrus"
)

// SQSQueue submits jobs to SQS queues
type SQSQueue struct {
	client *sqs.Client
}

// Ensure SQSQueue implements QueueInterface
var _ QueueInterface = (*SQSQueue)(nil)

// NewSQSQueue creates a new SQS client using the default credential chain
func NewSQSQueue(ctx context.Context) (*SQSQueue, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	return &SQSQueue{client: sqs.NewFromConfig(cfg)}, nil
}

// SendMessage serializes the payload as JSON and sends it to the queue
func (q *SQSQueue) SendMessage(ctx context.Context, queueURL string, payload interface{}) error {
	if queueURL == "" {
		return fmt.Errorf("queue URL is required")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to serialize message payload: %w", err)
	}

	_, err = q.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(queueURL),
		MessageBody: aws.String(string(body)),
	})
	if err != nil {
		return fmt.Errorf("failed to send message to %s: %w", queueURL, err)
	}

	logrus.Debugf("Sent message to queue %s", queueURL)
	return nil
}
