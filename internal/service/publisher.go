package service

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/cabin-booking/internal/logger"
	"github.com/iliyamo/cabin-booking/internal/queue"
)

// Publisher sends reservation events somewhere.  Publishing happens after
// the change is committed; a failure is logged by the caller and never
// undoes the change.
type Publisher interface {
	Publish(ctx context.Context, ev queue.ReservationEvent) error
}

// AMQPPublisher publishes persistent JSON messages to
// queue.ReservationQueue on the default exchange.  It dials per message;
// event volume is a handful per hour.
type AMQPPublisher struct {
	URL string
	Log logger.Logger
}

func NewAMQPPublisher(url string, log logger.Logger) *AMQPPublisher {
	return &AMQPPublisher{URL: url, Log: log}
}

func (p *AMQPPublisher) Publish(ctx context.Context, ev queue.ReservationEvent) error {
	conn, err := amqp.Dial(p.URL)
	if err != nil {
		p.Log.Error("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.Log.Error("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(queue.ReservationQueue, true, false, false, false, nil); err != nil {
		p.Log.Error("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         ev.Type,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queue.ReservationQueue, false, false, pub); err != nil {
		p.Log.Error("rabbitmq: publish failed: %v", err)
		return err
	}
	return nil
}

// NopPublisher drops events.  Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, queue.ReservationEvent) error { return nil }
