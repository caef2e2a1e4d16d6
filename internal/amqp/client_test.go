package amqp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"txledger/internal/core"
	"txledger/internal/report"
)

type published struct {
	exchange string
	key      string
	msg      amqp091.Publishing
}

type fakeChannel struct {
	sent   []published
	failAt int
	closed bool
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, _, _ bool, msg amqp091.Publishing) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("publish without deadline")
	}
	if f.failAt > 0 && len(f.sent)+1 == f.failAt {
		return errors.New("channel closed")
	}
	f.sent = append(f.sent, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func testAccounts() []core.Account {
	return []core.Account{
		{ID: 1, Available: decimal.RequireFromString("1.2345"), Held: decimal.Zero, Total: decimal.RequireFromString("1.2345")},
		{ID: 42, Available: decimal.Zero, Held: decimal.Zero, Total: decimal.Zero, Locked: true},
	}
}

func TestClient_EmitPublishesOneMessagePerAccount(t *testing.T) {
	ch := &fakeChannel{}
	client := &Client{channel: ch, exchangeName: "txledger", routingKey: "account_snapshots"}
	run := report.NewRun()

	require.NoError(t, client.Emit(context.Background(), run, testAccounts()))
	require.Len(t, ch.sent, 2)

	assert.Equal(t, "txledger", ch.sent[0].exchange)
	assert.Equal(t, "account_snapshots.1", ch.sent[0].key)
	assert.Equal(t, "account_snapshots.42", ch.sent[1].key)
	assert.Equal(t, amqp091.Persistent, ch.sent[0].msg.DeliveryMode)
	assert.Equal(t, "application/json", ch.sent[0].msg.ContentType)
	assert.Equal(t, run.ID.String()+":42", ch.sent[1].msg.MessageId)

	var msg AccountSnapshotMessage
	require.NoError(t, json.Unmarshal(ch.sent[0].msg.Body, &msg))
	assert.Equal(t, run.ID.String(), msg.RunID)
	assert.Equal(t, uint16(1), msg.Client)
	assert.True(t, msg.Available.Equal(decimal.RequireFromString("1.2345")))
	assert.Contains(t, string(ch.sent[0].msg.Body), `"available":"1.2345"`)
}

func TestClient_EmitStopsOnFailure(t *testing.T) {
	ch := &fakeChannel{failAt: 2}
	client := &Client{channel: ch, exchangeName: "txledger", routingKey: "snap"}

	err := client.Emit(context.Background(), report.NewRun(), testAccounts())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish client 42")
	assert.Len(t, ch.sent, 1)
}

func TestClient_Close(t *testing.T) {
	ch := &fakeChannel{}
	client := &Client{channel: ch}
	require.NoError(t, client.Close())
	assert.True(t, ch.closed)
}
