package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
)

// ErrMalformed помечает сообщения, которые нельзя обработать повторно.
// Такие сообщения подтверждаются без повторной доставки.
var ErrMalformed = errors.New("malformed message")

// Handler обрабатывает тело сообщения.
type Handler func(ctx context.Context, body []byte) error

const maxInFlight = 10

// ConsumerMessage читает очередь до отмены ctx. Успешные и испорченные
// сообщения подтверждаются, остальные ошибки возвращают сообщение в очередь один раз.
func ConsumerMessage(ctx context.Context, log *slog.Logger, ch *amqp.Channel, queueName string, handler Handler) error {
	const op = "rabbitmq.ConsumerMessage"
	delivery, err := ch.Consume(queueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	log = log.With(slog.String("queue", queueName))
	sem := make(chan struct{}, maxInFlight)
	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case d, ok := <-delivery:
			if !ok {
				return nil
			}
			sem <- struct{}{}
			wg.Add(1)
			go func(d amqp.Delivery) {
				defer func() {
					<-sem
					wg.Done()
				}()
				handle(ctx, log, d, handler)
			}(d)
		case <-ctx.Done():
			return nil
		}
	}
}

func handle(ctx context.Context, log *slog.Logger, d amqp.Delivery, handler Handler) {
	err := handler(ctx, d.Body)
	switch {
	case err == nil:
	case errors.Is(err, ErrMalformed):
		log.Warn("dropping malformed message", sl.Err(err))
	default:
		log.Error("failed to handle message", sl.Err(err), slog.Bool("redelivered", d.Redelivered))
		if nackErr := d.Nack(false, !d.Redelivered); nackErr != nil {
			log.Error("failed to nack message", sl.Err(nackErr))
		}
		return
	}
	if ackErr := d.Ack(false); ackErr != nil {
		log.Error("failed to ack message", sl.Err(ackErr))
	}
}
