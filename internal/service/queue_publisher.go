package service

import (
    "context"
    "encoding/json"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "go.uber.org/zap"

    q "github.com/iliyamo/daily-stamp/internal/queue"
)

// AMQPPublisher publishes stamp events to RabbitMQ.  It dials per
// message; stamp volume is one message per user per day.
type AMQPPublisher struct {
    URL         string
    DialTimeout time.Duration
    Log         *zap.Logger
}

func NewAMQPPublisher(url string, log *zap.Logger) *AMQPPublisher {
    return &AMQPPublisher{URL: url, DialTimeout: 2 * time.Second, Log: log}
}

// PublishStampRecorded publishes ev to the "stamp.recorded" queue as a
// persistent message.  Errors are logged and returned so the caller can
// choose to ignore them.
func (p *AMQPPublisher) PublishStampRecorded(ctx context.Context, ev q.StampRecordedEvent) error {
    conn, err := amqp.DialConfig(p.URL, amqp.Config{Dial: amqp.DefaultDial(p.DialTimeout)})
    if err != nil {
        p.Log.Warn("rabbitmq: dial failed", zap.Error(err))
        return err
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        p.Log.Warn("rabbitmq: channel open failed", zap.Error(err))
        return err
    }
    defer func() { _ = ch.Close() }()

    // Idempotent; durable so messages survive broker restarts.
    if _, err := ch.QueueDeclare(
        q.StampRecordedQueue, // name
        true,                 // durable
        false,                // autoDelete
        false,                // exclusive
        false,                // noWait
        nil,                  // args
    ); err != nil {
        p.Log.Warn("rabbitmq: queue declare failed", zap.Error(err))
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
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx,
        "",                   // default exchange
        q.StampRecordedQueue, // routing key = queue name
        false,                // mandatory
        false,                // immediate
        pub,
    ); err != nil {
        p.Log.Warn("rabbitmq: publish failed", zap.Error(err))
        return err
    }
    return nil
}
