// Command fstate-server runs the forwarding-state engine over a scenario
// and serves the computed state over gRPC, with Prometheus metrics on a
// separate HTTP listener.
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"

	"github.com/signalsfoundry/leo-routing-sim/core"
	"github.com/signalsfoundry/leo-routing-sim/internal/export"
	"github.com/signalsfoundry/leo-routing-sim/internal/logging"
	"github.com/signalsfoundry/leo-routing-sim/internal/observability"
	"github.com/signalsfoundry/leo-routing-sim/kb"
	"github.com/signalsfoundry/leo-routing-sim/model"
	"github.com/signalsfoundry/leo-routing-sim/timectrl"
)

func main() {
	var (
		scenarioPath = flag.String("scenario", "", "path to a scenario JSON file (built-in chain when empty)")
		algorithm    = flag.String("algorithm", string(core.AlgorithmShortestPath), "forwarding algorithm: shortest-path or topological")
		tick         = flag.Duration("tick", time.Second, "simulation tick")
		duration     = flag.Duration("duration", 0, "simulation duration (0 = run until interrupted)")
		accelerated  = flag.Bool("accelerated", false, "advance simulation time as fast as possible")
		grpcAddr     = flag.String("grpc-addr", ":50051", "gRPC listen address")
		metricsAddr  = flag.String("metrics-addr", ":9090", "Prometheus metrics listen address")
	)
	flag.Parse()

	log := logging.NewFromEnv()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, log, config{
		scenarioPath: *scenarioPath,
		algorithm:    core.Algorithm(strings.ToLower(*algorithm)),
		tick:         *tick,
		duration:     *duration,
		accelerated:  *accelerated,
		grpcAddr:     *grpcAddr,
		metricsAddr:  *metricsAddr,
	}); err != nil {
		log.Error(ctx, "server exited with error", logging.String("error", err.Error()))
		os.Exit(1)
	}
}

type config struct {
	scenarioPath string
	algorithm    core.Algorithm
	tick         time.Duration
	duration     time.Duration
	accelerated  bool
	grpcAddr     string
	metricsAddr  string
}

func run(ctx context.Context, log logging.Logger, cfg config) error {
	switch cfg.algorithm {
	case core.AlgorithmShortestPath, core.AlgorithmTopological:
	default:
		return fmt.Errorf("unknown algorithm %q", cfg.algorithm)
	}

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdownTracing, log)

	scenario, err := loadScenario(cfg.scenarioPath)
	if err != nil {
		return err
	}

	epoch := time.Now().UTC()
	topo, motion, err := scenario.Build(epoch)
	if err != nil {
		return fmt.Errorf("build scenario %q: %w", scenario.Name, err)
	}
	log.Info(ctx, "scenario loaded",
		logging.String("name", scenario.Name),
		logging.Int("satellites", len(topo.Satellites())),
		logging.Int("ground_stations", len(topo.GroundStations())),
		logging.String("algorithm", string(cfg.algorithm)),
	)

	collector, err := observability.NewFStateCollector(nil)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	visibility := &core.GeometricVisibility{
		Topology: topo,
		Builder: core.VisibilityBuilder{
			MaxGSLLengthM:   scenario.MaxGSLLengthM,
			MinElevationDeg: scenario.MinElevationDeg,
		},
		Motion: motion,
	}
	engine := core.NewForwardingEngine(topo, cfg.algorithm, visibility, log,
		core.WithMetricsRecorder(collector),
		core.WithInterfaceInfos(scenario.GSLInterfaces),
	)
	store := kb.NewForwardingStore()

	mode := timectrl.RealTime
	if cfg.accelerated {
		mode = timectrl.Accelerated
	}
	controller := timectrl.NewTimeController(epoch, cfg.tick, mode)
	controller.AddListener(func(simTime time.Time, sinceEpochNs int64) {
		positions := core.SatellitePositions(topo.Satellites(), motion, simTime)
		core.RefreshISLWeights(topo, positions)

		result := engine.Step(ctx, simTime, sinceEpochNs)
		store.Update(kb.Snapshot{
			ComputedAt:   time.Now().UTC(),
			SinceEpochNs: sinceEpochNs,
			Algorithm:    string(result.Algorithm),
			FState:       result.FState,
			Topological:  result.Topological,
			Bandwidth:    result.Bandwidth,
		})
	})

	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			export.RequestIDUnaryServerInterceptor(log),
			collector.UnaryServerInterceptor(),
		),
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
	)
	export.Register(grpcServer, export.NewService(store, log))

	lis, err := net.Listen("tcp", cfg.grpcAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.grpcAddr, err)
	}
	grpcErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "gRPC server listening", logging.String("addr", cfg.grpcAddr))
		grpcErr <- grpcServer.Serve(lis)
	}()

	metricsServer := serveMetrics(ctx, cfg.metricsAddr, collector, log)

	ticksDone := controller.Start(cfg.duration)

	select {
	case <-ctx.Done():
		log.Info(ctx, "shutdown signal received")
	case <-ticksDone:
		log.Info(ctx, "simulation finished", logging.String("duration", cfg.duration.String()))
	case err := <-grpcErr:
		if err != nil {
			return fmt.Errorf("gRPC server: %w", err)
		}
	}

	grpcServer.GracefulStop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Warn(ctx, "metrics server shutdown failed", logging.String("error", err.Error()))
	}
	return nil
}

func loadScenario(path string) (*core.Scenario, error) {
	if path == "" {
		return defaultScenario(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scenario: %w", err)
	}
	defer f.Close()
	s, err := core.LoadScenario(f)
	if err != nil {
		return nil, fmt.Errorf("load scenario %s: %w", path, err)
	}
	return s, nil
}

func serveMetrics(ctx context.Context, addr string, collector *observability.FStateCollector, log logging.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info(ctx, "metrics server listening", logging.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(ctx, "metrics server failed", logging.String("error", err.Error()))
		}
	}()
	return srv
}

// defaultScenario is a four-satellite chain at 550 km altitude with one
// ground station under each end. Useful for smoke-testing the server
// without a scenario file.
func defaultScenario() *core.Scenario {
	const altM = core.EarthRadiusM + 550e3
	return &core.Scenario{
		Name:            "builtin-chain",
		MaxGSLLengthM:   2000e3,
		MinElevationDeg: 25,
		Satellites: []core.ScenarioSatellite{
			{ID: 0, ECEFXM: altM, ECEFYM: 0},
			{ID: 1, ECEFXM: altM, ECEFYM: 1000e3},
			{ID: 2, ECEFXM: altM, ECEFYM: 2000e3},
			{ID: 3, ECEFXM: altM, ECEFYM: 3000e3},
		},
		GroundStations: []core.ScenarioGroundStation{
			// 100 m above the mean sphere so the line-of-sight test never
			// sits exactly on the surface.
			{ID: 100, Name: "west", ECEFXM: 6371100, ECEFYM: 0},
			{ID: 101, Name: "east", ECEFXM: 5620583, ECEFYM: 3000e3},
		},
		ISLs: []core.ScenarioISL{
			{A: 0, B: 1},
			{A: 1, B: 2},
			{A: 2, B: 3},
		},
		GSLInterfaces: []model.InterfaceInfo{
			{ID: 0, AggregateMaxBandwidth: 10e9},
			{ID: 1, AggregateMaxBandwidth: 10e9},
			{ID: 2, AggregateMaxBandwidth: 10e9},
			{ID: 3, AggregateMaxBandwidth: 10e9},
			{ID: 100, AggregateMaxBandwidth: 40e9},
			{ID: 101, AggregateMaxBandwidth: 40e9},
		},
	}
}
