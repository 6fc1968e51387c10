package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/groupmute/groupmute/internal/biz/domain"
	"github.com/groupmute/groupmute/internal/logger"
)

// DefaultChannel is the pub/sub channel entries are published on
const DefaultChannel = "groupmute:mutelog"

// Publisher publishes accepted mute log entries to a Redis channel
type Publisher struct {
	client  *redis.Client
	channel string
	timeout time.Duration
	log     *logger.Logger
}

// NewPublisher connects to Redis at url
func NewPublisher(ctx context.Context, url, channel string, log *logger.Logger) (*Publisher, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewPublisherWithClient(client, channel, log), nil
}

// NewPublisherWithClient wraps an existing client
func NewPublisherWithClient(client *redis.Client, channel string, log *logger.Logger) *Publisher {
	if channel == "" {
		channel = DefaultChannel
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Publisher{
		client:  client,
		channel: channel,
		timeout: 2 * time.Second,
		log:     log.Component("redis"),
	}
}

// Publish sends one entry as JSON
func (p *Publisher) Publish(ctx context.Context, entry domain.MuteLogEntry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	return p.client.Publish(ctx, p.channel, payload).Err()
}

// Run publishes entries until the channel closes or ctx is done.
// Publish failures are logged and the entry is dropped.
func (p *Publisher) Run(ctx context.Context, entries <-chan domain.MuteLogEntry) {
	p.log.Info("Publisher started", "channel", p.channel)
	for {
		select {
		case <-ctx.Done():
			return
		case entry, ok := <-entries:
			if !ok {
				return
			}
			if err := p.Publish(ctx, entry); err != nil {
				p.log.Error(err, "Failed to publish mute log entry", "group", entry.GroupName)
			}
		}
	}
}

// Close closes the Redis client
func (p *Publisher) Close() error {
	return p.client.Close()
}
