package core

import (
	"container/heap"
	"math"
)

// ShortestPath runs Dijkstra over the satellite-only subgraph and returns
// the node sequence from src to dst inclusive, or nil when dst is
// unreachable. Edge weights are ISL distances in metres.
//
// Neighbors are visited in sorted-id order and ties settle on the first
// finalized path, so the result is deterministic for a given topology.
func ShortestPath(t *Topology, src, dst int) []int {
	if !t.HasNode(src) || !t.HasNode(dst) {
		return nil
	}
	if src == dst {
		return []int{src}
	}

	distM := map[int]float64{src: 0}
	prev := make(map[int]int)
	done := make(map[int]bool)

	pq := &nodeQueue{{id: src, priority: 0}}
	heap.Init(pq)

	for pq.Len() > 0 {
		item := heap.Pop(pq).(*nodeItem)
		if done[item.id] {
			continue
		}
		done[item.id] = true
		if item.id == dst {
			break
		}

		for _, nb := range t.Neighbors(item.id) {
			if done[nb] {
				continue
			}
			w, ok := t.LinkWeight(item.id, nb)
			if !ok {
				continue
			}
			alt := distM[item.id] + w
			if cur, seen := distM[nb]; !seen || alt < cur {
				distM[nb] = alt
				prev[nb] = item.id
				heap.Push(pq, &nodeItem{id: nb, priority: alt})
			}
		}
	}

	if _, reached := distM[dst]; !reached || math.IsInf(distM[dst], 1) {
		return nil
	}
	if !done[dst] {
		return nil
	}

	// Walk predecessors back to src.
	path := []int{dst}
	for at := dst; at != src; {
		p, ok := prev[at]
		if !ok {
			return nil
		}
		path = append(path, p)
		at = p
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

type nodeItem struct {
	id       int
	priority float64
}

type nodeQueue []*nodeItem

func (q nodeQueue) Len() int { return len(q) }

func (q nodeQueue) Less(i, j int) bool {
	if q[i].priority != q[j].priority {
		return q[i].priority < q[j].priority
	}
	return q[i].id < q[j].id
}

func (q nodeQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *nodeQueue) Push(x any) { *q = append(*q, x.(*nodeItem)) }

func (q *nodeQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}
