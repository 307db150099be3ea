package dashboard

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/cropmind/cropmind/internal/sensorcache"
)

// Metrics registers the service counters on the default registry, exposed
// at /metrics.
type Metrics struct {
	pinUpdates      *prometheus.CounterVec
	recommendations *prometheus.CounterVec
	devicePolls     *prometheus.CounterVec
}

func NewMetrics(cache *sensorcache.Cache) *Metrics {
	m := &Metrics{
		pinUpdates: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "cropmind_pin_updates_total",
			Help: "Pin updates received from the bridge, by outcome.",
		}, []string{"outcome"}),
		recommendations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "cropmind_recommendations_total",
			Help: "Advisories served, by source tier.",
		}, []string{"source"}),
		devicePolls: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "cropmind_device_polls_total",
			Help: "Direct device-cloud polls, by outcome.",
		}, []string{"outcome"}),
	}
	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "cropmind_cache_entries",
		Help: "Live pin entries in the sensor cache.",
	}, func() float64 { return float64(cache.Len()) })
	return m
}

// Bridge metrics surface (ingest.Metrics).

func (m *Metrics) PinAccepted() { m.pinUpdates.WithLabelValues("accepted").Inc() }
func (m *Metrics) PinRejected() { m.pinUpdates.WithLabelValues("rejected").Inc() }
func (m *Metrics) PinDeduped()  { m.pinUpdates.WithLabelValues("deduped").Inc() }

func (m *Metrics) RecommendationServed(source string) {
	m.recommendations.WithLabelValues(source).Inc()
}

func (m *Metrics) DevicePoll(ok bool) {
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	m.devicePolls.WithLabelValues(outcome).Inc()
}
