package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/aromas-stock/internal/domain/entity"
)

func TestMetrics_ContadoresDeMovimientos(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.MovementAccepted(entity.MovementSell)
	m.MovementAccepted(entity.MovementSell)
	m.MovementRejected(entity.MovementTransfer, "insufficient_stock")
	m.ProjectionFailed(entity.MovementAdd)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.MovementsAccepted.WithLabelValues("sell")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MovementsRejected.WithLabelValues("transfer", "insufficient_stock")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProjectionFailures.WithLabelValues("add")))
}

func TestMetrics_Reconstruccion(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.RebuildCompleted(150*time.Millisecond, 12, 1)

	assert.Equal(t, 12.0, testutil.ToFloat64(m.RebuildProductsUpdated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RebuildProductsFailed))
	assert.Equal(t, 1, testutil.CollectAndCount(m.RebuildDuration))
}

func TestMetrics_HTTPAgrupaCodigos(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObserveHTTP("POST", "/api/stock/sell", 409, time.Millisecond)
	m.ObserveHTTP("POST", "/api/stock/sell", 404, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("POST", "/api/stock/sell", "4xx")))
	assert.Equal(t, "5xx", statusLabel(503))
	assert.Equal(t, "2xx", statusLabel(201))
}
