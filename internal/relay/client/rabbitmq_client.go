package client

import (
	"context"
	"fmt"
	"strconv"

	amqp "github.com/rabbitmq/amqp091-go"
)

type RabbitMqClient struct {
	connection *amqp.Connection
	channel    *amqp.Channel
	declared   map[string]bool
}

func NewRabbitMqClient(url, user, password string) (*RabbitMqClient, error) {
	amqpURI := fmt.Sprintf("amqp://%s:%s@%s", user, password, url)
	conn, err := amqp.Dial(amqpURI)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}

	return &RabbitMqClient{
		connection: conn,
		channel:    ch,
		declared:   make(map[string]bool),
	}, nil
}

// ensureQueue declares the queue durable; declaration is idempotent on the
// broker, the local map only avoids repeating the round trip.
func (c *RabbitMqClient) ensureQueue(queueName string) error {
	if c.declared[queueName] {
		return nil
	}
	_, err := c.channel.QueueDeclare(
		queueName,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		return err
	}
	c.declared[queueName] = true
	return nil
}

func (c *RabbitMqClient) Publish(
	ctx context.Context, queueName, messageBody string, headers map[string]interface{},
) error {
	if err := c.ensureQueue(queueName); err != nil {
		return err
	}
	publishing := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         []byte(messageBody),
	}
	if len(headers) > 0 {
		publishing.Headers = amqp.Table(headers)
	}
	return c.channel.PublishWithContext(ctx, "", queueName, false, false, publishing)
}

func (c *RabbitMqClient) ReceiveMessages(queueName string) (<-chan QueueMessage, error) {
	if err := c.ensureQueue(queueName); err != nil {
		return nil, err
	}
	deliveries, err := c.channel.Consume(
		queueName,
		"",    // consumer tag
		false, // autoAck: receivers ack only after the effect is recorded
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,
	)
	if err != nil {
		return nil, err
	}

	messages := make(chan QueueMessage)
	go func() {
		defer close(messages)
		for delivery := range deliveries {
			messages <- QueueMessage{
				Body:    string(delivery.Body),
				Receipt: strconv.FormatUint(delivery.DeliveryTag, 10),
			}
		}
	}()
	return messages, nil
}

func (c *RabbitMqClient) DeleteMessage(receipt string) error {
	deliveryTag, err := strconv.ParseUint(receipt, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid receipt %q: %w", receipt, err)
	}
	return c.channel.Ack(deliveryTag, false)
}

func (c *RabbitMqClient) Ping(ctx context.Context) error {
	if c.connection.IsClosed() {
		return fmt.Errorf("rabbitmq connection is closed")
	}
	if c.channel.IsClosed() {
		return fmt.Errorf("rabbitmq channel is closed")
	}
	return nil
}

func (c *RabbitMqClient) Stop() error {
	if err := c.channel.Close(); err != nil {
		return err
	}
	return c.connection.Close()
}
