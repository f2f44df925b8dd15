package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"
)

// Job types accepted on the job subscription.
const (
	JobEvaluateAll    = "evaluate_all"
	JobEvaluateDevice = "evaluate_device"
	JobHealthCheck    = "health_check"
)

// Job errors. Messages failing with these are acknowledged, since
// redelivery cannot succeed.
var (
	ErrMalformedJob = errors.New("malformed job message")
	ErrUnknownJob   = errors.New("unknown job type")
)

// JobMessage represents an on-demand job message.
type JobMessage struct {
	JobType  string `json:"job_type"`
	DeviceID string `json:"device_id,omitempty"`
}

// JobHandler runs on-demand jobs against an evaluation job.
type JobHandler struct {
	job    *EvaluationJob
	logger zerolog.Logger
}

// NewJobHandler creates a job handler.
func NewJobHandler(job *EvaluationJob, logger zerolog.Logger) *JobHandler {
	return &JobHandler{job: job, logger: logger}
}

// Handle decodes and runs one job message.
func (h *JobHandler) Handle(ctx context.Context, data []byte) error {
	var msg JobMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedJob, err)
	}

	switch msg.JobType {
	case JobEvaluateAll:
		return h.evaluateAll(ctx)
	case JobEvaluateDevice:
		if msg.DeviceID == "" {
			return fmt.Errorf("%w: device_id is required", ErrMalformedJob)
		}
		_, err := h.job.EvaluateDevice(ctx, msg.DeviceID)
		return err
	case JobHealthCheck:
		h.logger.Debug().Msg("running health check")
		if err := h.job.Probe(ctx); err != nil {
			return fmt.Errorf("health check failed: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownJob, msg.JobType)
	}
}

func (h *JobHandler) evaluateAll(ctx context.Context) error {
	result := h.job.Run(ctx)

	// Consider it successful if more than half succeeded.
	if result.Failed > result.Evaluated {
		return fmt.Errorf("too many evaluation failures: %d/%d", result.Failed, result.TotalDevices)
	}
	for _, e := range result.Errors {
		if e.Stage == StageList {
			return fmt.Errorf("listing devices: %s", e.Error)
		}
	}
	return nil
}

// Settle reports whether a message that failed with err should be acknowledged.
func Settle(err error) bool {
	return err == nil || errors.Is(err, ErrMalformedJob) || errors.Is(err, ErrUnknownJob)
}

// PubSubHandler receives job messages from a Pub/Sub subscription.
type PubSubHandler struct {
	client           *pubsub.Client
	subscriber       *pubsub.Subscriber
	subscriptionName string
	jobs             *JobHandler
	logger           zerolog.Logger
}

// PubSubConfig holds configuration for the Pub/Sub handler.
type PubSubConfig struct {
	ProjectID        string
	SubscriptionName string
	Jobs             *JobHandler
	Logger           zerolog.Logger
}

// NewPubSubHandler creates a new Pub/Sub handler.
func NewPubSubHandler(ctx context.Context, cfg PubSubConfig) (*PubSubHandler, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	subscriber := client.Subscriber(cfg.SubscriptionName)

	subscriber.ReceiveSettings.MaxOutstandingMessages = 10
	subscriber.ReceiveSettings.MaxExtension = 10 * time.Minute

	return &PubSubHandler{
		client:           client,
		subscriber:       subscriber,
		subscriptionName: cfg.SubscriptionName,
		jobs:             cfg.Jobs,
		logger:           cfg.Logger,
	}, nil
}

// Start begins processing Pub/Sub messages. It blocks until ctx is done.
func (h *PubSubHandler) Start(ctx context.Context) error {
	h.logger.Info().
		Str("subscription", h.subscriptionName).
		Msg("starting pubsub handler")

	return h.subscriber.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		h.handleMessage(ctx, msg)
	})
}

// Close closes the Pub/Sub client.
func (h *PubSubHandler) Close() error {
	return h.client.Close()
}

func (h *PubSubHandler) handleMessage(ctx context.Context, msg *pubsub.Message) {
	startTime := time.Now()

	logger := h.logger.With().
		Str("message_id", msg.ID).
		Str("publish_time", msg.PublishTime.Format(time.RFC3339)).
		Logger()

	logger.Debug().Msg("received pubsub message")

	err := h.jobs.Handle(ctx, msg.Data)
	if err != nil {
		logger.Error().Err(err).Msg("job failed")
		if Settle(err) {
			msg.Ack()
		} else {
			msg.Nack()
		}
		return
	}

	logger.Info().
		Dur("duration", time.Since(startTime)).
		Msg("job completed successfully")

	msg.Ack()
}
