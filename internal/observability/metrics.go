package observability

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// FStateCollector bundles Prometheus metrics for the forwarding-state
// engine and its export RPC surface.
type FStateCollector struct {
	gatherer prometheus.Gatherer

	RPCRequests  *prometheus.CounterVec
	RPCDurations *prometheus.HistogramVec

	ComputeDurations *prometheus.HistogramVec
	EntriesComputed  *prometheus.CounterVec
	DropEntries      *prometheus.CounterVec
	CacheHits        prometheus.Counter

	ConstellationSatellites     prometheus.Gauge
	ConstellationGroundStations prometheus.Gauge
}

// NewFStateCollector registers engine metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewFStateCollector(reg prometheus.Registerer) (*FStateCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "export_requests_total",
		Help: "Total number of handled export RPCs, labeled by service, method, and gRPC status code.",
	}, []string{"service", "method", "code"})
	requests, err := registerCounterVec(reg, requests, "export_requests_total")
	if err != nil {
		return nil, err
	}

	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "export_request_duration_seconds",
		Help:    "Export RPC latency in seconds.",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"service", "method"})
	durations, err = registerHistogramVec(reg, durations, "export_request_duration_seconds")
	if err != nil {
		return nil, err
	}

	compute := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fstate_compute_duration_seconds",
		Help:    "Duration of one forwarding-state computation pass, labeled by algorithm.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}, []string{"algorithm"})
	compute, err = registerHistogramVec(reg, compute, "fstate_compute_duration_seconds")
	if err != nil {
		return nil, err
	}

	entries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fstate_entries_total",
		Help: "Cumulative number of forwarding entries computed, labeled by algorithm.",
	}, []string{"algorithm"})
	entries, err = registerCounterVec(reg, entries, "fstate_entries_total")
	if err != nil {
		return nil, err
	}

	drops := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fstate_drop_entries_total",
		Help: "Cumulative number of drop-sentinel forwarding entries, labeled by algorithm.",
	}, []string{"algorithm"})
	drops, err = registerCounterVec(reg, drops, "fstate_drop_entries_total")
	if err != nil {
		return nil, err
	}

	cacheHits, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fstate_topological_cache_hits_total",
		Help: "Ticks on which the topological resolver reused the previous forwarding state.",
	}), "fstate_topological_cache_hits_total")
	if err != nil {
		return nil, err
	}

	satellites, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "constellation_satellites",
		Help: "Current number of satellites in the topology.",
	}), "constellation_satellites")
	if err != nil {
		return nil, err
	}
	groundStations, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "constellation_ground_stations",
		Help: "Current number of ground stations in the topology.",
	}), "constellation_ground_stations")
	if err != nil {
		return nil, err
	}

	return &FStateCollector{
		gatherer:                    gatherer,
		RPCRequests:                 requests,
		RPCDurations:                durations,
		ComputeDurations:            compute,
		EntriesComputed:             entries,
		DropEntries:                 drops,
		CacheHits:                   cacheHits,
		ConstellationSatellites:     satellites,
		ConstellationGroundStations: groundStations,
	}, nil
}

// ObserveCompute records one forwarding computation pass.
func (c *FStateCollector) ObserveCompute(algorithm string, duration time.Duration, entries, drops int) {
	if c == nil {
		return
	}
	if c.ComputeDurations != nil {
		c.ComputeDurations.WithLabelValues(algorithm).Observe(duration.Seconds())
	}
	if c.EntriesComputed != nil {
		c.EntriesComputed.WithLabelValues(algorithm).Add(float64(entries))
	}
	if c.DropEntries != nil {
		c.DropEntries.WithLabelValues(algorithm).Add(float64(drops))
	}
}

// ObserveCacheHit records a tick on which the previous topological state
// was reused.
func (c *FStateCollector) ObserveCacheHit() {
	if c == nil || c.CacheHits == nil {
		return
	}
	c.CacheHits.Inc()
}

// SetConstellationCounts drives the topology gauges.
func (c *FStateCollector) SetConstellationCounts(satellites, groundStations int) {
	if c == nil {
		return
	}
	if c.ConstellationSatellites != nil {
		c.ConstellationSatellites.Set(float64(satellites))
	}
	if c.ConstellationGroundStations != nil {
		c.ConstellationGroundStations.Set(float64(groundStations))
	}
}

// UnaryServerInterceptor records request counts and durations for unary RPCs.
func (c *FStateCollector) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		if c == nil {
			return resp, err
		}

		fullMethod := ""
		if info != nil {
			fullMethod = info.FullMethod
		}
		service, method := SplitMethod(fullMethod)
		code := status.Code(err).String()

		if c.RPCRequests != nil {
			c.RPCRequests.WithLabelValues(service, method, code).Inc()
		}
		if c.RPCDurations != nil {
			c.RPCDurations.WithLabelValues(service, method).Observe(time.Since(start).Seconds())
		}

		return resp, err
	}
}

// Handler exposes a ready-to-use /metrics handler.
func (c *FStateCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SplitMethod parses a fully-qualified gRPC method name into service and method
// components. It tolerates empty strings and partial paths, returning
// "unknown"/"unknown" when parsing fails.
func SplitMethod(fullMethod string) (string, string) {
	if fullMethod == "" {
		return "unknown", "unknown"
	}
	fullMethod = strings.TrimPrefix(fullMethod, "/")
	parts := strings.Split(fullMethod, "/")
	if len(parts) < 2 {
		return "unknown", "unknown"
	}
	service := parts[len(parts)-2]
	method := parts[len(parts)-1]
	if dot := strings.LastIndex(service, "."); dot >= 0 && dot+1 < len(service) {
		service = service[dot+1:]
	}
	if service == "" {
		service = "unknown"
	}
	if method == "" {
		method = "unknown"
	}
	return service, method
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
