package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"

	"github.com/skywindow/skywindow/internal/alert"
	"github.com/skywindow/skywindow/internal/device"
)

// NotificationMessage is the payload published for the push delivery service.
type NotificationMessage struct {
	DeviceID     string             `json:"device_id"`
	Platform     string             `json:"platform"`
	PushToken    string             `json:"push_token"`
	Notification alert.Notification `json:"notification"`
}

func newNotificationMessage(d *device.Device, n *alert.Notification) NotificationMessage {
	return NotificationMessage{
		DeviceID:     d.ID,
		Platform:     string(d.Platform),
		PushToken:    d.PushToken,
		Notification: *n,
	}
}

// LogPublisher writes notifications to the log. Used when Pub/Sub is not configured.
type LogPublisher struct {
	logger zerolog.Logger
}

// NewLogPublisher creates a publisher that only logs.
func NewLogPublisher(logger zerolog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs the notification.
func (p *LogPublisher) Publish(_ context.Context, d *device.Device, n *alert.Notification) error {
	p.logger.Info().
		Str("device_id", d.ID).
		Str("platform", string(d.Platform)).
		Str("token_last4", d.TokenLast4()).
		Str("kind", string(n.Kind)).
		Str("title", n.Title).
		Str("body", n.Body).
		Msg("notification")
	return nil
}

// PubSubPublisher publishes notifications to a Pub/Sub topic.
type PubSubPublisher struct {
	client    *pubsub.Client
	publisher *pubsub.Publisher
	topic     string
	logger    zerolog.Logger
}

// PubSubPublisherConfig holds configuration for the Pub/Sub publisher.
type PubSubPublisherConfig struct {
	ProjectID string
	Topic     string
	Logger    zerolog.Logger
}

// NewPubSubPublisher creates a new Pub/Sub notification publisher.
func NewPubSubPublisher(ctx context.Context, cfg PubSubPublisherConfig) (*PubSubPublisher, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	return &PubSubPublisher{
		client:    client,
		publisher: client.Publisher(cfg.Topic),
		topic:     cfg.Topic,
		logger:    cfg.Logger,
	}, nil
}

// Publish sends the notification and waits for the server acknowledgement.
func (p *PubSubPublisher) Publish(ctx context.Context, d *device.Device, n *alert.Notification) error {
	data, err := json.Marshal(newNotificationMessage(d, n))
	if err != nil {
		return fmt.Errorf("encoding notification: %w", err)
	}

	result := p.publisher.Publish(ctx, &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"device_id": d.ID,
			"platform":  string(d.Platform),
			"kind":      string(n.Kind),
		},
	})

	id, err := result.Get(ctx)
	if err != nil {
		return fmt.Errorf("publishing to %s: %w", p.topic, err)
	}

	p.logger.Debug().
		Str("message_id", id).
		Str("device_id", d.ID).
		Msg("notification published")
	return nil
}

// Close flushes pending messages and closes the client.
func (p *PubSubPublisher) Close() error {
	p.publisher.Stop()
	return p.client.Close()
}
