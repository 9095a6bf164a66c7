// Package bus is a subject based request/reply bus on Redis pub/sub
package bus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"gitlab.com/fcv-2025.net/attempt-service/internal/core/ports/primary"
	"gitlab.com/fcv-2025.net/attempt-service/internal/static/errs"
)

const (
	inboxPrefix     = "_INBOX."
	inReplyToHeader = "in-reply-to"
)

// HandlerFunc processes one inbound message
type HandlerFunc func(ctx context.Context, msg *Message)

// Bus publishes and subscribes envelopes over Redis channels. Every inbound
// message is handled on its own goroutine.
type Bus struct {
	client *redis.Client
	logger primary.Logger

	mu     sync.Mutex
	subs   []*redis.PubSub
	closed bool
	wg     sync.WaitGroup
}

// NewBus creates a bus on top of a Redis client
func NewBus(client *redis.Client, logger primary.Logger) *Bus {
	return &Bus{
		client: client,
		logger: logger,
	}
}

// Publish sends body on subject. It returns errs.NoResponders when nobody
// is subscribed.
func (b *Bus) Publish(ctx context.Context, subject string, body interface{}) error {
	msg, err := NewMessage(subject, body)
	if err != nil {
		return err
	}
	return b.publish(ctx, msg)
}

func (b *Bus) publish(ctx context.Context, msg *Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}
	receivers, err := b.client.Publish(ctx, msg.Subject, payload).Result()
	if err != nil {
		b.logger.Error("Failed to publish message", "subject", msg.Subject, "error", err)
		return fmt.Errorf("failed to publish on %s: %w", msg.Subject, err)
	}
	if receivers == 0 {
		return fmt.Errorf("%s: %w", msg.Subject, errs.NoResponders)
	}
	return nil
}

// Request publishes body on subject and decodes the reply to it into out.
// The wait is bounded by ctx.
func (b *Bus) Request(ctx context.Context, subject string, body interface{}, out interface{}) error {
	msg, err := NewMessage(subject, body)
	if err != nil {
		return err
	}
	msg.Reply = inboxPrefix + uuid.NewString()

	inbox := b.client.Subscribe(ctx, msg.Reply)
	defer inbox.Close()
	// Wait for the subscription to be live before the request goes out.
	if _, err := inbox.Receive(ctx); err != nil {
		return fmt.Errorf("failed to open reply inbox: %w", err)
	}

	if err := b.publish(ctx, msg); err != nil {
		return err
	}

	for {
		select {
		case raw, ok := <-inbox.Channel():
			if !ok {
				return fmt.Errorf("reply inbox closed")
			}
			var reply Message
			if err := json.Unmarshal([]byte(raw.Payload), &reply); err != nil {
				return fmt.Errorf("failed to decode reply: %w", err)
			}
			if id, ok := reply.GetHeader(inReplyToHeader); ok && id != msg.ID {
				b.logger.Warn("Dropping stray reply", "subject", subject, "inReplyTo", id)
				continue
			}
			if out == nil {
				return nil
			}
			if err := reply.Decode(out); err != nil {
				return fmt.Errorf("failed to decode reply body: %w", err)
			}
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Respond answers req on its reply inbox. Events without an inbox are ignored,
// as is a requester that already gave up.
func (b *Bus) Respond(ctx context.Context, req *Message, body interface{}) error {
	if req.Reply == "" {
		return nil
	}
	msg, err := NewMessage(req.Reply, body)
	if err != nil {
		return err
	}
	msg.SetHeader(inReplyToHeader, req.ID)
	if err := b.publish(ctx, msg); err != nil && !errors.Is(err, errs.NoResponders) {
		return err
	}
	return nil
}

// Subscribe starts delivering messages on subject to handler until Close.
func (b *Bus) Subscribe(ctx context.Context, subject string, handler HandlerFunc) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return fmt.Errorf("bus is closed")
	}
	b.mu.Unlock()

	ps := b.client.Subscribe(ctx, subject)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		b.logger.Error("Failed to subscribe", "subject", subject, "error", err)
		return fmt.Errorf("failed to subscribe to %s: %w", subject, err)
	}

	b.mu.Lock()
	b.subs = append(b.subs, ps)
	b.mu.Unlock()

	ch := ps.Channel()
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		for raw := range ch {
			var msg Message
			if err := json.Unmarshal([]byte(raw.Payload), &msg); err != nil {
				b.logger.Warn("Dropping malformed message", "subject", raw.Channel, "error", err)
				continue
			}
			if msg.Subject == "" {
				msg.Subject = raw.Channel
			}
			b.wg.Add(1)
			go func(m *Message) {
				defer b.wg.Done()
				handler(ctx, m)
			}(&msg)
		}
	}()

	b.logger.Info("Subscribed", "subject", subject)
	return nil
}

// Close stops every subscription and waits for in-flight handlers.
func (b *Bus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	subs := b.subs
	b.subs = nil
	b.mu.Unlock()

	var firstErr error
	for _, ps := range subs {
		if err := ps.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	b.wg.Wait()
	return firstErr
}
