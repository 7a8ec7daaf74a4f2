package pathfinding

import (
	astar "github.com/beefsack/go-astar"

	"github.com/automoto/doomerang-nav/navgraph"
)

// tieBreak scales the heuristic down so equal-f candidates resolve towards the
// lower cumulative cost.
const tieBreak = 1 - 1e-9

// search adapts one graph to astar.Pather for a single query.
type search struct {
	g *navgraph.Graph
}

// searchNode is a graph node seen through astar.Pather.
type searchNode struct {
	s  *search
	id int
}

// PathNeighbors returns nodes reachable over one link (implements astar.Pather)
func (n searchNode) PathNeighbors() []astar.Pather {
	out := n.s.g.Out(n.id)
	neighbors := make([]astar.Pather, 0, len(out))
	seen := make(map[int]struct{}, len(out))
	for _, li := range out {
		to := n.s.g.Links[li].To
		if _, ok := seen[to]; ok {
			continue
		}
		seen[to] = struct{}{}
		neighbors = append(neighbors, searchNode{s: n.s, id: to})
	}
	return neighbors
}

// PathNeighborCost returns the cheapest link cost to a neighbor (implements astar.Pather)
func (n searchNode) PathNeighborCost(to astar.Pather) float64 {
	_, cost := n.s.cheapest(n.id, to.(searchNode).id)
	return cost
}

// PathEstimatedCost returns the Euclidean distance to the goal (implements astar.Pather)
func (n searchNode) PathEstimatedCost(to astar.Pather) float64 {
	return n.s.heuristic(n.id, to.(searchNode).id)
}

func (s *search) node(id int) searchNode {
	return searchNode{s: s, id: id}
}

func (s *search) heuristic(from, to int) float64 {
	return s.g.Nodes[from].Pos.Dist(s.g.Nodes[to].Pos) * tieBreak
}

// cheapest returns the index and cost of the cheapest link from -> to.
func (s *search) cheapest(from, to int) (int, float64) {
	best, cost := -1, 0.0
	for _, li := range s.g.Out(from) {
		l := s.g.Links[li]
		if l.To != to {
			continue
		}
		if best < 0 || l.Cost < cost {
			best, cost = li, l.Cost
		}
	}
	return best, cost
}

// route runs A* between two nodes and returns the link indices in travel
// order. A route from a node to itself is empty.
func (s *search) route(from, to int) ([]int, bool) {
	if from == to {
		return nil, true
	}
	steps, _, found := astar.Path(s.node(from), s.node(to))
	if !found {
		return nil, false
	}
	// astar returns the goal first
	links := make([]int, 0, len(steps)-1)
	for i := len(steps) - 1; i > 0; i-- {
		a, b := steps[i].(searchNode).id, steps[i-1].(searchNode).id
		li, _ := s.cheapest(a, b)
		links = append(links, li)
	}
	return links, true
}

// closestReachable floods the graph from start and returns the reachable node
// with the lowest heuristic towards goal. Ties go to the lower id.
func (s *search) closestReachable(start, goal int) int {
	best, bestH := start, s.heuristic(start, goal)
	seen := make([]bool, len(s.g.Nodes))
	seen[start] = true
	queue := []int{start}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if h := s.heuristic(id, goal); h < bestH || (h == bestH && id < best) {
			best, bestH = id, h
		}
		for _, li := range s.g.Out(id) {
			to := s.g.Links[li].To
			if !seen[to] {
				seen[to] = true
				queue = append(queue, to)
			}
		}
	}
	return best
}
