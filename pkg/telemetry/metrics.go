// Package telemetry records transport exchanges as Prometheus metrics.
package telemetry

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/hashicorp-forge/sitekit/pkg/apierror"
	"github.com/hashicorp-forge/sitekit/pkg/transport"
)

const namespace = "sitekit"

// Observer implements transport.Observer on top of Prometheus collectors.
type Observer struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

var _ transport.Observer = (*Observer)(nil)

// NewObserver creates an Observer and registers its collectors with reg.
func NewObserver(reg prometheus.Registerer) (*Observer, error) {
	o := &Observer{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "client",
			Name:      "requests_total",
			Help:      "Number of remote exchanges grouped by transport, operation and result.",
		}, []string{"transport", "operation", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "client",
			Name:      "request_duration_seconds",
			Help:      "Latency of remote exchanges.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"transport", "operation"}),
	}

	for _, c := range []prometheus.Collector{o.requests, o.duration} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register collector: %w", err)
		}
	}
	return o, nil
}

// ObserveExchange implements transport.Observer.
func (o *Observer) ObserveExchange(e transport.Exchange) {
	o.requests.WithLabelValues(e.Transport, e.Operation, Result(e.Err)).Inc()
	o.duration.WithLabelValues(e.Transport, e.Operation).Observe(e.Duration.Seconds())
}

// Result maps an exchange error onto a low-cardinality label value.
func Result(err error) string {
	if err == nil {
		return "ok"
	}
	var apiErr *apierror.Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind.String()
	}
	return "transport_error"
}

// WriteText writes a plain-text summary of every counter and histogram
// gathered from g, one line per series, sorted by name.
func WriteText(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}

	var lines []string
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			series := mf.GetName() + formatLabels(m.GetLabel())
			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				lines = append(lines, series+" "+formatFloat(m.GetCounter().GetValue()))
			case dto.MetricType_GAUGE:
				lines = append(lines, series+" "+formatFloat(m.GetGauge().GetValue()))
			case dto.MetricType_HISTOGRAM:
				h := m.GetHistogram()
				lines = append(lines,
					series+" count="+strconv.FormatUint(h.GetSampleCount(), 10)+
						" sum="+formatFloat(h.GetSampleSum()))
			}
		}
	}
	sort.Strings(lines)

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func formatLabels(pairs []*dto.LabelPair) string {
	if len(pairs) == 0 {
		return ""
	}
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, fmt.Sprintf("%s=%q", p.GetName(), p.GetValue()))
	}
	return "{" + strings.Join(parts, ",") + "}"
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
