package monitoring

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/autoscout/internal/config"
)

func monitoringConfig() config.MonitoringConfig {
	return config.MonitoringConfig{
		FailureRateThreshold: 0.25,
		CostThresholdUSD:     10,
		LookbackWindowHours:  24,
	}
}

func TestEvaluate_HealthySnapshot(t *testing.T) {
	a := NewAlerter(monitoringConfig())

	alerts := a.Evaluate(&MetricsSnapshot{
		Complete: 9, Failed: 1, FailRate: 0.1,
		CapabilityCostUSD: 1, LookbackHours: 24,
	})
	assert.Empty(t, alerts)
}

func TestEvaluate_FailureRate(t *testing.T) {
	a := NewAlerter(monitoringConfig())

	alerts := a.Evaluate(&MetricsSnapshot{
		Complete: 4, Failed: 4, FailRate: 0.5, LookbackHours: 24,
	})
	require.Len(t, alerts, 1)
	assert.Equal(t, AlertFailureRate, alerts[0].Type)
	assert.Equal(t, "high", alerts[0].Severity)
}

func TestEvaluate_SmallSampleSuppressed(t *testing.T) {
	a := NewAlerter(monitoringConfig())

	alerts := a.Evaluate(&MetricsSnapshot{
		Complete: 1, Failed: 3, FailRate: 0.75, LookbackHours: 24,
	})
	assert.Empty(t, alerts, "fewer than 5 finished runs must not alert")
}

func TestEvaluate_CostOverrun(t *testing.T) {
	a := NewAlerter(monitoringConfig())

	alerts := a.Evaluate(&MetricsSnapshot{
		CapabilityCostUSD: 8, EvidenceCostUSD: 4, LookbackHours: 24,
	})
	require.Len(t, alerts, 1)
	assert.Equal(t, AlertCostOverrun, alerts[0].Type)
}

func TestSendAlerts_Webhook(t *testing.T) {
	var received Alert
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := monitoringConfig()
	cfg.WebhookURL = srv.URL
	a := NewAlerter(cfg)

	sent := a.SendAlerts(context.Background(), []Alert{
		{Type: AlertFailureRate, Severity: "high", Message: "boom", Timestamp: time.Now()},
	})
	assert.Equal(t, 1, sent)
	assert.Equal(t, AlertFailureRate, received.Type)
}

func TestSendAlerts_NoWebhookConfigured(t *testing.T) {
	a := NewAlerter(monitoringConfig())
	sent := a.SendAlerts(context.Background(), []Alert{{Type: AlertCostOverrun}})
	assert.Zero(t, sent)
}

func TestSendAlerts_WebhookError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := monitoringConfig()
	cfg.WebhookURL = srv.URL
	a := NewAlerter(cfg)

	sent := a.SendAlerts(context.Background(), []Alert{{Type: AlertFailureRate}})
	assert.Zero(t, sent)
}
