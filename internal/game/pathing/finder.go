// Package pathing finds the route the traveler walks after a placement.
package pathing

import (
	"github.com/aminvimazi/casualcrusade/internal/game/board"
	"github.com/zyedidia/generic/mapset"
)

// Graph exposes the traversal adjacency. Neighbours must be returned in
// Up, Right, Down, Left order for tie-breaking to be deterministic.
type Graph interface {
	ConnectionsOf(idx board.Index) []board.Index
}

type frame struct {
	at   board.Index
	next []board.Index
	pos  int
}

// Longest returns the longest simple path from start to target.
//
// Every simple path is enumerated depth-first with neighbours expanded in
// connector order. A candidate replaces the best only when strictly longer,
// so among equally long paths the first one discovered wins. The result is
// never empty: start == target yields [start] and an unreachable target
// yields [target].
func Longest(g Graph, start, target board.Index) []board.Index {
	if start == target {
		return []board.Index{start}
	}

	reachable := Reachable(g, start)
	if !reachable.Has(target) {
		return []board.Index{target}
	}
	limit := reachable.Size()

	var best []board.Index
	visited := mapset.New[board.Index]()
	visited.Put(start)
	path := []board.Index{start}
	stack := []frame{{at: start, next: g.ConnectionsOf(start)}}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]

		done := top.pos >= len(top.next)
		if top.at == target {
			if len(path) > len(best) {
				best = append(best[:0:0], path...)
				if len(best) == limit {
					break
				}
			}
			done = true
		}
		if done {
			visited.Remove(top.at)
			path = path[:len(path)-1]
			stack = stack[:len(stack)-1]
			continue
		}

		n := top.next[top.pos]
		top.pos++
		if visited.Has(n) {
			continue
		}
		visited.Put(n)
		path = append(path, n)
		stack = append(stack, frame{at: n, next: g.ConnectionsOf(n)})
	}

	if len(best) == 0 {
		return []board.Index{target}
	}
	return best
}

// Reachable returns every index connected to start, start included.
func Reachable(g Graph, start board.Index) mapset.Set[board.Index] {
	seen := mapset.New[board.Index]()
	queue := []board.Index{start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if seen.Has(current) {
			continue
		}
		seen.Put(current)
		for _, n := range g.ConnectionsOf(current) {
			if !seen.Has(n) {
				queue = append(queue, n)
			}
		}
	}
	return seen
}

// IsSimplePath reports whether path visits no index twice and every
// consecutive pair is connected in g.
func IsSimplePath(g Graph, path []board.Index) bool {
	if len(path) == 0 {
		return false
	}
	seen := mapset.New[board.Index]()
	for i, idx := range path {
		if seen.Has(idx) {
			return false
		}
		seen.Put(idx)
		if i == 0 {
			continue
		}
		linked := false
		for _, n := range g.ConnectionsOf(path[i-1]) {
			if n == idx {
				linked = true
				break
			}
		}
		if !linked {
			return false
		}
	}
	return true
}
