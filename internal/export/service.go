// Package export exposes the latest computed forwarding state over gRPC.
//
// The service speaks well-known protobuf types (google.protobuf.Struct and
// google.protobuf.Empty) instead of a generated schema, so any gRPC client
// can consume it without compiled stubs.
package export

import (
	"context"
	"strconv"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/signalsfoundry/leo-routing-sim/core"
	"github.com/signalsfoundry/leo-routing-sim/internal/logging"
	"github.com/signalsfoundry/leo-routing-sim/kb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "leorouting.v1.ForwardingState"

// Service serves forwarding snapshots from a store.
type Service struct {
	store *kb.ForwardingStore
	log   logging.Logger
}

// NewService constructs the export service. A nil logger is replaced with
// a noop logger.
func NewService(store *kb.ForwardingStore, log logging.Logger) *Service {
	if log == nil {
		log = logging.Noop()
	}
	return &Service{store: store, log: log}
}

// GetForwardingState returns the latest snapshot's forwarding entries.
func (s *Service) GetForwardingState(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	snap, ok := s.store.Latest()
	if !ok {
		return nil, status.Error(codes.NotFound, "no forwarding state computed yet")
	}

	entries := make([]any, 0, len(snap.FState)+len(snap.Topological))
	for pair, hop := range snap.FState {
		entries = append(entries, map[string]any{
			"from":      pair.From,
			"to":        pair.To,
			"next_hop":  hop.NextHop,
			"local_if":  hop.LocalIf,
			"remote_if": hop.RemoteIf,
		})
	}
	for pair, entry := range snap.Topological {
		entries = append(entries, map[string]any{
			"from":              pair.From,
			"to":                pair.To,
			"direct":            entry.Direct,
			"ground_station_id": entry.GroundStationID,
			"local_if":          entry.LocalIf,
		})
	}

	out, err := structpb.NewStruct(map[string]any{
		"algorithm":      snap.Algorithm,
		"computed_at":    snap.ComputedAt.UTC().Format(time.RFC3339Nano),
		"since_epoch_ns": snap.SinceEpochNs,
		"entries":        entries,
	})
	if err != nil {
		s.log.Error(ctx, "failed to encode forwarding state", logging.String("error", err.Error()))
		return nil, status.Error(codes.Internal, "encoding forwarding state")
	}
	return out, nil
}

// GetBandwidthState returns the latest per-node bandwidth map.
func (s *Service) GetBandwidthState(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	snap, ok := s.store.Latest()
	if !ok {
		return nil, status.Error(codes.NotFound, "no forwarding state computed yet")
	}

	bandwidth := make(map[string]any, len(snap.Bandwidth))
	for id, bps := range snap.Bandwidth {
		bandwidth[strconv.Itoa(id)] = bps
	}
	out, err := structpb.NewStruct(map[string]any{
		"since_epoch_ns": snap.SinceEpochNs,
		"bandwidth":      bandwidth,
	})
	if err != nil {
		s.log.Error(ctx, "failed to encode bandwidth state", logging.String("error", err.Error()))
		return nil, status.Error(codes.Internal, "encoding bandwidth state")
	}
	return out, nil
}

// GetPath reconstructs the explicit node path between two nodes from the
// latest snapshot. The request carries numeric "from" and "to" fields.
func (s *Service) GetPath(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	snap, ok := s.store.Latest()
	if !ok {
		return nil, status.Error(codes.NotFound, "no forwarding state computed yet")
	}
	if len(snap.FState) == 0 {
		return nil, status.Error(codes.FailedPrecondition, "path reconstruction requires the shortest-path algorithm")
	}

	from, okFrom := intField(req, "from")
	to, okTo := intField(req, "to")
	if !okFrom || !okTo {
		return nil, status.Error(codes.InvalidArgument, "request must carry numeric from and to fields")
	}

	path := core.ReconstructPath(snap.FState.NextHops(), from, to)
	if path == nil {
		return nil, status.Errorf(codes.NotFound, "no path from %d to %d", from, to)
	}

	nodes := make([]any, 0, len(path))
	for _, id := range path {
		nodes = append(nodes, id)
	}
	out, err := structpb.NewStruct(map[string]any{
		"from": from,
		"to":   to,
		"path": nodes,
	})
	if err != nil {
		s.log.Error(ctx, "failed to encode path", logging.String("error", err.Error()))
		return nil, status.Error(codes.Internal, "encoding path")
	}
	return out, nil
}

func intField(req *structpb.Struct, key string) (int, bool) {
	if req == nil {
		return 0, false
	}
	v, ok := req.GetFields()[key]
	if !ok {
		return 0, false
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, false
	}
	return int(n.NumberValue), true
}
