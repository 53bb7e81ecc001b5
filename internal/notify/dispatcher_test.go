package notify

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	ptestutil "github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/pickup-monitor/internal/config"
	"github.com/donaldgifford/pickup-monitor/internal/metrics"
	"github.com/donaldgifford/pickup-monitor/pkg/logger"
)

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Send(ctx context.Context, msg Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// mockFactory hands out one mock per channel name, built for every
// enabled pair the same way HTTPFactory decides.
func mockFactory(bark, feishu *mockNotifier) Factory {
	return func(t *config.PushTarget) []Channel {
		var channels []Channel
		if t.BarkEnabled() {
			channels = append(channels, Channel{Name: ChannelBark, Notifier: bark})
		}
		if t.FeishuEnabled() {
			channels = append(channels, Channel{Name: ChannelFeishu, Notifier: feishu})
		}
		return channels
	}
}

func TestDispatcher_SendAll(t *testing.T) {
	t.Parallel()

	barkOnly := config.PushTarget{BarkURL: "u", BarkToken: "t", BarkSound: "bell"}
	feishuOnly := config.PushTarget{FeishuWebhook: "w", FeishuSecret: "s"}
	both := config.PushTarget{BarkURL: "u", BarkToken: "t", FeishuWebhook: "w", FeishuSecret: "s"}
	inert := config.PushTarget{BarkURL: "u"}

	tests := []struct {
		name        string
		targets     []config.PushTarget
		barkErr     error
		feishuErr   error
		wantBark    int
		wantFeishu  int
		wantAttempt int
	}{
		{name: "no targets", wantAttempt: 0},
		{name: "inert target", targets: []config.PushTarget{inert}, wantAttempt: 0},
		{name: "bark only", targets: []config.PushTarget{barkOnly}, wantBark: 1, wantAttempt: 1},
		{name: "feishu only", targets: []config.PushTarget{feishuOnly}, wantFeishu: 1, wantAttempt: 1},
		{name: "both channels", targets: []config.PushTarget{both}, wantBark: 1, wantFeishu: 1, wantAttempt: 2},
		{
			name:        "bark failure does not stop feishu",
			targets:     []config.PushTarget{both, feishuOnly},
			barkErr:     errors.New("bark down"),
			wantBark:    1,
			wantFeishu:  2,
			wantAttempt: 3,
		},
		{
			name:        "feishu failure does not stop next target",
			targets:     []config.PushTarget{feishuOnly, barkOnly},
			feishuErr:   errors.New("feishu down"),
			wantBark:    1,
			wantFeishu:  1,
			wantAttempt: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			bark := &mockNotifier{}
			feishu := &mockNotifier{}
			if tt.wantBark > 0 {
				bark.On("Send", mock.Anything, mock.AnythingOfType("notify.Message")).Return(tt.barkErr).Times(tt.wantBark)
			}
			if tt.wantFeishu > 0 {
				feishu.On("Send", mock.Anything, mock.AnythingOfType("notify.Message")).Return(tt.feishuErr).Times(tt.wantFeishu)
			}

			d := NewDispatcher(logger.Discard(), WithFactory(mockFactory(bark, feishu)))
			got := d.SendAll(context.Background(), "hello", tt.targets)

			assert.Equal(t, tt.wantAttempt, got)
			bark.AssertExpectations(t)
			feishu.AssertExpectations(t)
		})
	}
}

func TestDispatcher_SendAll_MessageFields(t *testing.T) {
	t.Parallel()

	bark := &mockNotifier{}
	bark.On("Send", mock.Anything, Message{
		Title:    DefaultTitle,
		Body:     "store:MixC",
		Category: DefaultCategory,
		Group:    DefaultGroup,
		Sound:    config.DefaultSound,
	}).Return(nil).Once()
	bark.On("Send", mock.Anything, Message{
		Title:    DefaultTitle,
		Body:     "store:MixC",
		Category: DefaultCategory,
		Group:    DefaultGroup,
		Sound:    "bell",
	}).Return(nil).Once()

	d := NewDispatcher(logger.Discard(), WithFactory(mockFactory(bark, nil)))
	got := d.SendAll(context.Background(), "store:MixC", []config.PushTarget{
		{BarkURL: "u", BarkToken: "t"},
		{BarkURL: "u", BarkToken: "t", BarkSound: "bell"},
	})

	assert.Equal(t, 2, got)
	bark.AssertExpectations(t)
}

func TestDispatcher_SendAll_LogsFailures(t *testing.T) {
	t.Parallel()

	bark := &mockNotifier{}
	bark.On("Send", mock.Anything, mock.Anything).Return(errors.New("bark returned 500: boom"))

	var buf bytes.Buffer
	d := NewDispatcher(logger.NewWithWriter(&buf, "info", "text"), WithFactory(mockFactory(bark, nil)))
	d.SendAll(context.Background(), "x", []config.PushTarget{{BarkURL: "u", BarkToken: "t"}})

	assert.Contains(t, buf.String(), "notification failed")
	assert.Contains(t, buf.String(), "bark returned 500: boom")
}

func histogramSampleCount(t *testing.T, channel string) uint64 {
	t.Helper()
	m, ok := metrics.NotificationDuration.WithLabelValues(channel).(prometheus.Metric)
	require.True(t, ok)
	pb := &dto.Metric{}
	require.NoError(t, m.Write(pb))
	return pb.GetHistogram().GetSampleCount()
}

func TestDispatcher_HTTPFactory_EndToEnd(t *testing.T) {
	t.Parallel()

	var barkHits, feishuHits atomic.Int32
	barkSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		barkHits.Add(1)
		_, _ = w.Write([]byte(`{"code":200,"message":"success"}`))
	}))
	defer barkSrv.Close()
	feishuSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		feishuHits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer feishuSrv.Close()

	sentBefore := ptestutil.ToFloat64(metrics.NotificationsSentTotal.WithLabelValues(ChannelBark))
	failedBefore := ptestutil.ToFloat64(metrics.NotificationFailuresTotal.WithLabelValues(ChannelFeishu))
	samplesBefore := histogramSampleCount(t, ChannelBark)

	d := NewDispatcher(logger.Discard())
	got := d.SendAll(context.Background(), "pickup available", []config.PushTarget{{
		BarkURL:       barkSrv.URL,
		BarkToken:     "key",
		FeishuWebhook: feishuSrv.URL,
		FeishuSecret:  "secret",
	}})

	assert.Equal(t, 2, got)
	assert.Equal(t, int32(1), barkHits.Load())
	assert.Equal(t, int32(1), feishuHits.Load())
	assert.GreaterOrEqual(t, ptestutil.ToFloat64(metrics.NotificationsSentTotal.WithLabelValues(ChannelBark)), sentBefore+1)
	assert.GreaterOrEqual(t, ptestutil.ToFloat64(metrics.NotificationFailuresTotal.WithLabelValues(ChannelFeishu)), failedBefore+1)
	assert.Greater(t, histogramSampleCount(t, ChannelBark), samplesBefore)
}

func TestNoOpFactory(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	f := NoOpFactory(logger.NewWithWriter(&buf, "info", "text"))

	channels := f(&config.PushTarget{BarkURL: "u", BarkToken: "t", FeishuWebhook: "w", FeishuSecret: "s"})
	require.Len(t, channels, 2)
	assert.Equal(t, ChannelBark, channels[0].Name)
	assert.Equal(t, ChannelFeishu, channels[1].Name)

	assert.Empty(t, f(&config.PushTarget{}))

	d := NewDispatcher(logger.Discard(), WithFactory(f))
	assert.Equal(t, 2, d.SendAll(context.Background(), "dry", []config.PushTarget{
		{BarkURL: "u", BarkToken: "t", FeishuWebhook: "w", FeishuSecret: "s"},
	}))
	assert.Contains(t, buf.String(), "notification discarded")
}
