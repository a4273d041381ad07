package rabbitmq

import (
	"github.com/rabbitmq/amqp091-go"
)

// Client wraps an AMQP connection and channel
type Client struct {
	conn    *amqp091.Connection
	channel *amqp091.Channel
}

// Message is a consumed AMQP message with ack controls
type Message struct {
	Body       []byte
	RoutingKey string
	delivery   amqp091.Delivery
}

// Ack acknowledges the message
func (m *Message) Ack() error {
	return m.delivery.Ack(false)
}

// Nack rejects the message, optionally requeueing it
func (m *Message) Nack(requeue bool) error {
	return m.delivery.Nack(false, requeue)
}

// NewClient dials the broker and opens a channel
func NewClient(url string) (*Client, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, err
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	return &Client{conn: conn, channel: channel}, nil
}

// Subscribe declares the topic exchange and a durable queue bound to the
// routing pattern, and starts consuming from it.
func (c *Client) Subscribe(exchange, queue, routingKey, consumerTag string) (<-chan Message, error) {
	if err := c.channel.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		return nil, err
	}

	if _, err := c.channel.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return nil, err
	}

	if err := c.channel.QueueBind(queue, routingKey, exchange, false, nil); err != nil {
		return nil, err
	}

	deliveries, err := c.channel.Consume(queue, consumerTag, false, false, false, false, nil)
	if err != nil {
		return nil, err
	}

	messages := make(chan Message)
	go func() {
		for d := range deliveries {
			messages <- Message{
				Body:       d.Body,
				RoutingKey: d.RoutingKey,
				delivery:   d,
			}
		}
		close(messages)
	}()

	return messages, nil
}

// Publish publishes a JSON message to an exchange
func (c *Client) Publish(exchange, routingKey string, body []byte) error {
	return c.channel.Publish(
		exchange,
		routingKey,
		false,
		false,
		amqp091.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}

// Close closes the channel and connection
func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
