package worker_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/skywindow/skywindow/internal/alert"
	"github.com/skywindow/skywindow/internal/device"
	"github.com/skywindow/skywindow/internal/worker"
)

func TestJobHandler_Handle(t *testing.T) {
	f := newFixture()
	seedDevice(f.devices, "dev_a", 52.37, true)
	jobs := worker.NewJobHandler(f.job(worker.EvaluationConfig{}), zerolog.Nop())

	tests := []struct {
		name    string
		data    string
		wantErr error
	}{
		{"evaluate all", `{"job_type":"evaluate_all"}`, nil},
		{"evaluate device", `{"job_type":"evaluate_device","device_id":"dev_a"}`, nil},
		{"health check", `{"job_type":"health_check"}`, nil},
		{"missing device id", `{"job_type":"evaluate_device"}`, worker.ErrMalformedJob},
		{"unknown device", `{"job_type":"evaluate_device","device_id":"dev_x"}`, device.ErrDeviceNotFound},
		{"unknown job", `{"job_type":"provider_refresh"}`, worker.ErrUnknownJob},
		{"not json", `refresh please`, worker.ErrMalformedJob},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := jobs.Handle(context.Background(), []byte(tt.data))
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestJobHandler_EvaluateAllFailures(t *testing.T) {
	f := newFixture()
	seedDevice(f.devices, "dev_a", 10.0, true)
	f.forecasts.fail[10.0] = true
	jobs := worker.NewJobHandler(f.job(worker.EvaluationConfig{}), zerolog.Nop())

	err := jobs.Handle(context.Background(), []byte(`{"job_type":"evaluate_all"}`))
	assert.Error(t, err)
	assert.True(t, worker.Settle(nil))
	assert.False(t, worker.Settle(err))
}

func TestSettle(t *testing.T) {
	tests := []struct {
		name string
		err  error
		ack  bool
	}{
		{"success", nil, true},
		{"malformed", fmt.Errorf("%w: bad", worker.ErrMalformedJob), true},
		{"unknown", fmt.Errorf("%w: x", worker.ErrUnknownJob), true},
		{"transient", errors.New("provider down"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.ack, worker.Settle(tt.err))
		})
	}
}

func TestLogPublisher(t *testing.T) {
	p := worker.NewLogPublisher(zerolog.Nop())
	err := p.Publish(context.Background(),
		&device.Device{ID: "dev_a", Platform: device.PlatformAPNS, PushToken: "abcdef"},
		&alert.Notification{Kind: alert.KindRainStarting, Title: "Weather Alert", Body: "Rain starting locally (Light Rain)."})
	assert.NoError(t, err)
}
