package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/techwatch-auth/internal/lib/sl"
)

// ErrDiscard marks a message the handler can never process. It is rejected
// without requeue; any other handler error requeues the message.
var ErrDiscard = errors.New("discard message")

const maxInFlight = 10

// ConsumerMessage starts consuming queueName and runs handler for each
// delivery, at most maxInFlight at a time, until ctx is done or the channel
// closes. The returned wait blocks until the dispatch loop has stopped and
// every started handler has returned.
func ConsumerMessage(ctx context.Context, ch *amqp.Channel, queueName string, handler func([]byte) error, log *slog.Logger) (wait func(), err error) {
	const op = "rabbitmq.ConsumerMessage"
	delivery, err := ch.Consume(
		queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log = log.With(slog.String("op", op), slog.String("queue", queueName))
	return dispatch(ctx, delivery, handler, log), nil
}

func dispatch(ctx context.Context, deliveries <-chan amqp.Delivery, handler func([]byte) error, log *slog.Logger) func() {
	var wg sync.WaitGroup
	sem := make(chan struct{}, maxInFlight)

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				select {
				case sem <- struct{}{}:
				case <-ctx.Done():
					if err := d.Nack(false, true); err != nil {
						log.Error("failed to requeue message", sl.Err(err))
					}
					return
				}
				wg.Add(1)
				go func(d amqp.Delivery) {
					defer wg.Done()
					defer func() { <-sem }()
					handle(d, handler, log)
				}(d)
			}
		}
	}()
	return wg.Wait
}

func handle(d amqp.Delivery, handler func([]byte) error, log *slog.Logger) {
	if err := handler(d.Body); err != nil {
		requeue := !errors.Is(err, ErrDiscard)
		log.Error("failed to handle message", sl.Err(err), slog.Bool("requeue", requeue))
		if nackErr := d.Nack(false, requeue); nackErr != nil {
			log.Error("failed to nack message", sl.Err(nackErr))
		}
		return
	}
	if ackErr := d.Ack(false); ackErr != nil {
		log.Error("failed to ack message", sl.Err(ackErr))
	}
}
