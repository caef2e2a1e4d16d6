package amqp

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"txledger/internal/core"
	applog "txledger/internal/log"
	"txledger/internal/report"
)

const publishTimeout = 5 * time.Second

// publisher is the subset of *amqp091.Channel used to publish snapshots.
type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// Client publishes account snapshots to a durable topic exchange, one
// persistent message per account.
type Client struct {
	conn         *amqp091.Connection
	channel      publisher
	exchangeName string
	routingKey   string
}

var _ report.Sink = (*Client)(nil)

func NewClient(url, exchangeName, routingKey string) (*Client, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	// Declare exchange
	err = channel.ExchangeDeclare(
		exchangeName, // name
		"topic",      // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return &Client{
		conn:         conn,
		channel:      channel,
		exchangeName: exchangeName,
		routingKey:   routingKey,
	}, nil
}

func (c *Client) Name() string { return "amqp" }

// Emit implements report.Sink.
func (c *Client) Emit(ctx context.Context, run report.Run, accounts []core.Account) error {
	for _, a := range accounts {
		if err := c.PublishAccountSnapshot(ctx, run, a); err != nil {
			return err
		}
	}

	applog.FromContext(ctx).WithComponent(applog.ComponentAMQP).InfoContext(ctx,
		"Published account snapshots",
		"accounts", len(accounts),
		"exchange", c.exchangeName,
		"routing_key", c.routingKey)

	return nil
}

// PublishAccountSnapshot publishes a single account snapshot message. The
// routing key is suffixed with the client id so consumers can bind per client.
func (c *Client) PublishAccountSnapshot(ctx context.Context, run report.Run, a core.Account) error {
	msg := NewAccountSnapshotMessage(run, a)
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = c.channel.PublishWithContext(
		ctx,
		c.exchangeName,     // exchange
		c.routingKeyFor(a), // routing key
		false,              // mandatory
		false,              // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			MessageId:    run.ID.String() + ":" + strconv.FormatUint(uint64(a.ID), 10),
			Timestamp:    run.GeneratedAt,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish client %d: %w", a.ID, err)
	}
	return nil
}

func (c *Client) routingKeyFor(a core.Account) string {
	return c.routingKey + "." + strconv.FormatUint(uint64(a.ID), 10)
}

func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
