package broker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"bakery/internal/domain/model"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingChannel struct {
	key  string
	msg  amqp.Publishing
	err  error
	hits int
}

func (c *recordingChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	c.hits++
	c.key = key
	c.msg = msg
	return c.err
}

func TestAMQPPublisher_PublishOrderPlaced(t *testing.T) {
	ch := &recordingChannel{}
	p := &AMQPPublisher{ch: ch, queue: "orders"}

	placed := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	order := model.Order{ID: "o-1", UserID: "u-1", TotalAmount: 46500, CreatedAt: placed}
	items := []model.OrderItem{
		{ProductID: "1", ProductName: "Red Velvet Cake", Quantity: 3, Price: 15000, SelectedOptions: model.SelectedOptions{"Size": "medium"}},
		{ProductID: "2", ProductName: "Agege Bread", Quantity: 1, Price: 1500},
	}

	require.NoError(t, p.PublishOrderPlaced(context.Background(), order, items))
	assert.Equal(t, "orders", ch.key)
	assert.Equal(t, "application/json", ch.msg.ContentType)
	assert.Equal(t, amqp.Persistent, ch.msg.DeliveryMode)
	assert.Equal(t, "o-1", ch.msg.MessageId)

	var got OrderPlacedMessage
	require.NoError(t, json.Unmarshal(ch.msg.Body, &got))
	assert.Equal(t, EventOrderPlaced, got.Type)
	assert.Equal(t, int64(46500), got.TotalAmount)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "medium", got.Items[0].SelectedOptions["Size"])
	assert.True(t, placed.Equal(got.PlacedAt))
}

func TestAMQPPublisher_WrapsError(t *testing.T) {
	boom := errors.New("channel closed")
	p := &AMQPPublisher{ch: &recordingChannel{err: boom}, queue: "orders"}

	err := p.PublishOrderPlaced(context.Background(), model.Order{ID: "o-2"}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "publish order event")
}

func TestNoopPublisher(t *testing.T) {
	assert.NoError(t, NoopPublisher{}.PublishOrderPlaced(context.Background(), model.Order{ID: "o-3"}, nil))
}
