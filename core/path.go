package core

// MaxPathHops bounds path reconstruction walks. A forwarding state whose
// walk exceeds this many nodes is treated as having no path.
const MaxPathHops = 200

// ReconstructPath materializes the explicit node path from src to dst by
// walking a next-hop view of a forwarding state. It returns nil when the
// walk hits a missing entry, revisits a node (cycle) or exceeds
// MaxPathHops; it never loops and never panics.
func ReconstructPath(nextHops map[NodePair]int, src, dst int) []int {
	if src == dst {
		return []int{src}
	}
	if _, ok := nextHops[NodePair{From: src, To: dst}]; !ok {
		return nil
	}

	path := []int{src}
	seen := map[int]bool{src: true}
	current := src

	for current != dst {
		next, ok := nextHops[NodePair{From: current, To: dst}]
		if !ok {
			return nil
		}
		if seen[next] {
			return nil
		}
		path = append(path, next)
		seen[next] = true
		current = next

		if len(path) > MaxPathHops {
			return nil
		}
	}
	return path
}
