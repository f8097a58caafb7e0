package core

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/signalsfoundry/leo-routing-sim/internal/logging"
	"github.com/signalsfoundry/leo-routing-sim/model"
)

// Algorithm selects the forwarding-state computation variant.
type Algorithm string

const (
	AlgorithmShortestPath Algorithm = "shortest-path"
	AlgorithmTopological  Algorithm = "topological"
)

// MetricsRecorder receives engine-level measurements. Implemented by
// observability.FStateCollector; a nil recorder disables recording.
type MetricsRecorder interface {
	ObserveCompute(algorithm string, duration time.Duration, entries, drops int)
	ObserveCacheHit()
	SetConstellationCounts(satellites, groundStations int)
}

// StepResult is the outcome of one forwarding computation tick. Exactly
// one of FState / Topological is populated depending on the algorithm.
type StepResult struct {
	Algorithm   Algorithm
	FState      ForwardingState
	Topological TopologicalState
	Bandwidth   BandwidthState
	CacheHit    bool
}

// ForwardingEngine drives the per-tick forwarding computation: it takes
// the visibility snapshot for the instant, detects topology changes,
// dispatches to the configured resolver and derives the bandwidth state.
type ForwardingEngine struct {
	topo       *Topology
	algorithm  Algorithm
	visibility VisibilityProvider

	log     logging.Logger
	metrics MetricsRecorder
	tracer  trace.Tracer

	shortest    *ShortestPathResolver
	topological *TopologicalResolver

	infos []model.InterfaceInfo

	lastVersion     uint64
	versionSeen     bool
	prevTopological TopologicalState
}

// EngineOption customises a ForwardingEngine.
type EngineOption func(*ForwardingEngine)

// WithMetricsRecorder attaches a metrics recorder.
func WithMetricsRecorder(rec MetricsRecorder) EngineOption {
	return func(e *ForwardingEngine) { e.metrics = rec }
}

// WithInterfaceInfos supplies the per-node bandwidth records consumed by
// the bandwidth-state computation.
func WithInterfaceInfos(infos []model.InterfaceInfo) EngineOption {
	return func(e *ForwardingEngine) { e.infos = infos }
}

// NewForwardingEngine constructs an engine over a topology.
func NewForwardingEngine(
	topo *Topology,
	algorithm Algorithm,
	visibility VisibilityProvider,
	log logging.Logger,
	opts ...EngineOption,
) *ForwardingEngine {
	if log == nil {
		log = logging.Noop()
	}
	e := &ForwardingEngine{
		topo:        topo,
		algorithm:   algorithm,
		visibility:  visibility,
		log:         log,
		tracer:      otel.Tracer("leo-routing-sim/core"),
		shortest:    NewShortestPathResolver(log),
		topological: NewTopologicalResolver(log),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Step runs one forwarding computation tick. A tick is a pure function of
// the topology and visibility snapshot (plus, for the topological
// variant, the previous tick's state and the change flag the engine
// maintains from topology versions).
func (e *ForwardingEngine) Step(ctx context.Context, simTime time.Time, sinceEpochNs int64) StepResult {
	ctx, span := e.tracer.Start(ctx, "fstate.compute",
		trace.WithAttributes(
			attribute.String("algorithm", string(e.algorithm)),
			attribute.Int64("since_epoch_ns", sinceEpochNs),
		),
	)
	defer span.End()

	start := time.Now()
	vis := VisibilityList(nil)
	if e.visibility != nil {
		vis = e.visibility.Visibility(simTime)
	}

	graphChanged := !e.versionSeen || e.topo.Version() != e.lastVersion
	e.lastVersion = e.topo.Version()
	e.versionSeen = true

	result := StepResult{Algorithm: e.algorithm}
	entries, drops := 0, 0

	switch e.algorithm {
	case AlgorithmTopological:
		res := e.topological.Compute(ctx, e.topo, vis, sinceEpochNs, e.prevTopological, graphChanged)
		e.prevTopological = res.State
		result.Topological = res.State
		result.CacheHit = res.CacheHit
		entries = len(res.State)
		if res.CacheHit && e.metrics != nil {
			e.metrics.ObserveCacheHit()
		}
	default:
		fstate := e.shortest.Compute(ctx, e.topo, vis)
		result.FState = fstate
		entries = len(fstate)
		for _, hop := range fstate {
			if hop.IsDrop() {
				drops++
			}
		}
	}

	sats := len(e.topo.Satellites())
	stations := len(e.topo.GroundStations())
	result.Bandwidth = ComputeBandwidthState(ctx, sats, e.topo.GroundStations(), e.infos, e.log)

	if e.metrics != nil {
		e.metrics.ObserveCompute(string(e.algorithm), time.Since(start), entries, drops)
		e.metrics.SetConstellationCounts(sats, stations)
	}

	span.SetAttributes(
		attribute.Int("entries", entries),
		attribute.Int("drops", drops),
		attribute.Bool("cache_hit", result.CacheHit),
	)
	e.log.Debug(ctx, "forwarding tick complete",
		logging.Int64("since_epoch_ns", sinceEpochNs),
		logging.Int("entries", entries),
		logging.Int("drops", drops),
	)
	return result
}
