package broker

import (
	"context"
	"encoding/json"
	"time"

	"bakery/internal/domain/model"

	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

const EventOrderPlaced = "order.placed"

type publishChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type OrderPlacedItem struct {
	ProductID       string                `json:"product_id"`
	ProductName     string                `json:"product_name"`
	Quantity        int                   `json:"quantity"`
	Price           int64                 `json:"price"`
	SelectedOptions model.SelectedOptions `json:"selected_options,omitempty"`
}

type OrderPlacedMessage struct {
	Type        string            `json:"type"`
	OrderID     string            `json:"order_id"`
	UserID      string            `json:"user_id,omitempty"`
	TotalAmount int64             `json:"total_amount"`
	Items       []OrderPlacedItem `json:"items"`
	PlacedAt    time.Time         `json:"placed_at"`
}

// AMQPPublisher sends order events to a durable queue on the default exchange.
type AMQPPublisher struct {
	conn  *amqp.Connection
	ch    publishChannel
	queue string
}

// DialAMQP connects and declares the queue.
func DialAMQP(uri, queue string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(uri)
	if err != nil {
		return nil, errors.Wrap(err, "dial rabbitmq")
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "open channel")
	}

	q, err := ch.QueueDeclare(
		queue, // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		conn.Close()
		return nil, errors.Wrapf(err, "declare queue %s", queue)
	}

	return &AMQPPublisher{conn: conn, ch: ch, queue: q.Name}, nil
}

func (p *AMQPPublisher) PublishOrderPlaced(ctx context.Context, order model.Order, items []model.OrderItem) error {
	msg := OrderPlacedMessage{
		Type:        EventOrderPlaced,
		OrderID:     order.ID,
		UserID:      order.UserID,
		TotalAmount: order.TotalAmount,
		Items:       make([]OrderPlacedItem, 0, len(items)),
		PlacedAt:    order.CreatedAt,
	}
	for _, it := range items {
		msg.Items = append(msg.Items, OrderPlacedItem{
			ProductID:       it.ProductID,
			ProductName:     it.ProductName,
			Quantity:        it.Quantity,
			Price:           it.Price,
			SelectedOptions: it.SelectedOptions,
		})
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return errors.Wrap(err, "encode order event")
	}

	err = p.ch.PublishWithContext(ctx,
		"",      // default exchange
		p.queue, // routing key
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    order.ID,
			Type:         EventOrderPlaced,
			Timestamp:    msg.PlacedAt,
			Body:         body,
		},
	)
	return errors.Wrap(err, "publish order event")
}

func (p *AMQPPublisher) Close() error {
	if p.conn == nil {
		return nil
	}
	return p.conn.Close()
}

// NoopPublisher only logs; used when no broker is configured.
type NoopPublisher struct {
	Log *logrus.Entry
}

func (p NoopPublisher) PublishOrderPlaced(ctx context.Context, order model.Order, items []model.OrderItem) error {
	if p.Log != nil {
		p.Log.WithFields(logrus.Fields{"order_id": order.ID, "items": len(items)}).Debug("order event dropped: no broker")
	}
	return nil
}
