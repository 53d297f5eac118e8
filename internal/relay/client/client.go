package client

import "context"

type QueueMessage struct {
	Body    string
	Receipt string
}

// QueueClient abstracts the relay broker. One client serves every chain
// queue: Publish addresses remote chains by queue name, ReceiveMessages
// consumes the local chain's queue.
type QueueClient interface {
	Publish(ctx context.Context, queueName, messageBody string, headers map[string]interface{}) error
	ReceiveMessages(queueName string) (<-chan QueueMessage, error)
	DeleteMessage(receipt string) error
	Ping(ctx context.Context) error
	Stop() error
}

func NewQueueClient(url, user, password string) (QueueClient, error) {
	return NewRabbitMqClient(url, user, password)
}
