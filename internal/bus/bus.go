// Package bus wraps the NATS JetStream transport used between services.
// Delivery is at-least-once and possibly out of order; every handler must be
// an idempotent upsert/merge keyed by entity id.
package bus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"
)

const streamName = "AUCTIONMART"

// ErrMalformed marks a message that can never be processed. The bus
// terminates it instead of scheduling a redelivery.
var ErrMalformed = errors.New("malformed message")

// Handler processes one decoded bus message. A nil return acknowledges the
// message; any other error leaves it un-acked for redelivery.
type Handler func(ctx context.Context, data []byte) error

type Bus struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	stream jetstream.Stream
}

// Connect dials NATS and ensures the shared event stream exists.
func Connect(ctx context.Context, url string) (*Bus, error) {
	nc, err := nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream context: %w", err)
	}

	stream, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     streamName,
		Subjects: []string{"auctions.>", "bids.>"},
		Storage:  jetstream.FileStorage,
		MaxAge:   7 * 24 * time.Hour,
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("ensure stream: %w", err)
	}

	return &Bus{nc: nc, js: js, stream: stream}, nil
}

// Conn exposes the underlying connection for point-to-point request/reply.
func (b *Bus) Conn() *nats.Conn { return b.nc }

// Publish marshals v as JSON and publishes it, waiting for the stream ack.
func (b *Bus) Publish(ctx context.Context, subject string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", subject, err)
	}
	if _, err := b.js.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}

// Consume registers a durable consumer for one subject. The durable name
// pins redelivery state so a restarted service resumes where it left off.
func (b *Bus) Consume(ctx context.Context, durable, subject string, h Handler) (jetstream.ConsumeContext, error) {
	cons, err := b.stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		Durable:       durable,
		FilterSubject: subject,
		AckPolicy:     jetstream.AckExplicitPolicy,
		MaxDeliver:    -1,
	})
	if err != nil {
		return nil, fmt.Errorf("ensure consumer %s: %w", durable, err)
	}
	return cons.Consume(b.dispatch(ctx, subject, h))
}

// ConsumeNew registers an ephemeral consumer that only sees events published
// after registration. Used by the fan-out hub, which holds no durable state.
func (b *Bus) ConsumeNew(ctx context.Context, subject string, h Handler) (jetstream.ConsumeContext, error) {
	cons, err := b.stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		FilterSubject: subject,
		AckPolicy:     jetstream.AckExplicitPolicy,
		DeliverPolicy: jetstream.DeliverNewPolicy,
	})
	if err != nil {
		return nil, fmt.Errorf("ensure ephemeral consumer %s: %w", subject, err)
	}
	return cons.Consume(b.dispatch(ctx, subject, h))
}

func (b *Bus) dispatch(ctx context.Context, subject string, h Handler) jetstream.MessageHandler {
	return func(msg jetstream.Msg) {
		err := h(ctx, msg.Data())
		switch {
		case err == nil:
			_ = msg.Ack()
		case errors.Is(err, ErrMalformed):
			zap.L().Warn("bus.terminate", zap.String("subject", subject), zap.Error(err))
			_ = msg.Term()
		default:
			// leave for redelivery; the projection write never happened
			zap.L().Warn("bus.nak", zap.String("subject", subject), zap.Error(err))
			_ = msg.Nak()
		}
	}
}

// Close drains the connection, letting in-flight handlers finish.
func (b *Bus) Close() {
	if err := b.nc.Drain(); err != nil {
		b.nc.Close()
	}
}
