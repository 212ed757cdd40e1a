package metrics_test

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/aalemi-dev/topic-audit/metrics"
	"github.com/aalemi-dev/topic-audit/observability"
)

func freeAddress(t *testing.T) string {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())
	return addr
}

func TestFXModuleProvidesCollectorAndObserver(t *testing.T) {
	var (
		collector metrics.MetricsCollector
		observer  observability.Observer
	)

	app := fxtest.New(t,
		metrics.FXModule,
		fx.Supply(metrics.Config{ServiceName: "fx-test"}),
		fx.Populate(&collector, &observer),
	)
	app.RequireStart()
	defer app.RequireStop()

	require.NotNil(t, collector)
	require.NotNil(t, observer)
	assert.IsType(t, &metrics.OperationObserver{}, observer)
}

func TestFXModuleServesApplicationMetrics(t *testing.T) {
	addr := freeAddress(t)
	var collector metrics.MetricsCollector

	app := fxtest.New(t,
		metrics.FXModule,
		fx.Supply(metrics.Config{ServiceName: "fx-test", ApplicationMetricsAddress: addr}),
		fx.Populate(&collector),
	)
	app.RequireStart()
	defer app.RequireStop()

	collector.CreateCounter("records_consumed_total", "Records polled", nil).Add(7)

	var body string
	require.Eventually(t, func() bool {
		resp, err := http.Get(fmt.Sprintf("http://%s/metrics", addr))
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return false
		}
		body = string(raw)
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 50*time.Millisecond)

	assert.Contains(t, body, `topic_audit_records_consumed_total{service="fx-test"} 7`)
}
