// Package cfg provides control flow graph walks over block graphs.
//
// The package knows nothing about statements or places. It works on any
// graph whose nodes are dense integers, which lets the program model
// validate reachability while it is still being built and lets the
// dataflow passes pick an iteration order.
package cfg

// Graph is a directed graph over nodes 0..NumNodes()-1.
type Graph interface {
	NumNodes() int
	Start() int
	Successors(n int) []int
}

// Analyzer provides control flow graph analysis for a Graph.
// Predecessor lists are computed once in New; the analyzer is read-only
// afterwards and can be shared.
type Analyzer struct {
	g     Graph
	preds [][]int
}

// New creates a new Analyzer for g.
func New(g Graph) *Analyzer {
	preds := make([][]int, g.NumNodes())
	for n := 0; n < g.NumNodes(); n++ {
		for _, s := range g.Successors(n) {
			preds[s] = append(preds[s], n)
		}
	}
	return &Analyzer{g: g, preds: preds}
}

// Predecessors returns the predecessors of n in edge declaration order.
func (a *Analyzer) Predecessors(n int) []int {
	return a.preds[n]
}

// LoopInfo contains information about loops in a graph.
type LoopInfo struct {
	loopNodes map[int]bool
	headers   map[int]bool
}

// IsInLoop returns true if the node is inside a loop.
func (l *LoopInfo) IsInLoop(n int) bool {
	return l.loopNodes[n]
}

// IsHeader returns true if some back edge targets n.
func (l *LoopInfo) IsHeader(n int) bool {
	return l.headers[n]
}

// Len returns the number of nodes that belong to some loop.
func (l *LoopInfo) Len() int {
	return len(l.loopNodes)
}

// CanReach checks if src can reach dst using BFS.
// A node always reaches itself.
func (a *Analyzer) CanReach(src, dst int) bool {
	if src == dst {
		return true
	}

	visited := make([]bool, a.g.NumNodes())
	queue := []int{src}
	visited[src] = true

	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]

		for _, succ := range a.g.Successors(n) {
			if succ == dst {
				return true
			}
			if !visited[succ] {
				visited[succ] = true
				queue = append(queue, succ)
			}
		}
	}
	return false
}

// Reachable returns, for every node, whether it is reachable from the start.
func (a *Analyzer) Reachable() []bool {
	seen := make([]bool, a.g.NumNodes())
	if a.g.NumNodes() == 0 {
		return seen
	}
	stack := []int{a.g.Start()}
	seen[a.g.Start()] = true
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, succ := range a.g.Successors(n) {
			if !seen[succ] {
				seen[succ] = true
				stack = append(stack, succ)
			}
		}
	}
	return seen
}

// PostOrder returns the nodes reachable from the start in depth-first
// post-order. Successors are visited in declaration order, so the result is
// deterministic.
func (a *Analyzer) PostOrder() []int {
	order := make([]int, 0, a.g.NumNodes())
	if a.g.NumNodes() == 0 {
		return order
	}

	type frame struct {
		node int
		next int
	}
	visited := make([]bool, a.g.NumNodes())
	stack := []frame{{node: a.g.Start()}}
	visited[a.g.Start()] = true

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		succs := a.g.Successors(top.node)
		if top.next < len(succs) {
			succ := succs[top.next]
			top.next++
			if !visited[succ] {
				visited[succ] = true
				stack = append(stack, frame{node: succ})
			}
			continue
		}
		order = append(order, top.node)
		stack = stack[:len(stack)-1]
	}
	return order
}

// ReversePostOrder returns PostOrder reversed. Forward dataflow converges
// fastest when blocks are visited in this order.
func (a *Analyzer) ReversePostOrder() []int {
	order := a.PostOrder()
	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}
	return order
}

// DetectLoops analyzes the graph and returns loop information.
//
// An edge n -> h is a back edge when h is on the DFS stack as n is visited.
// Every node that can reach n and is reachable from h belongs to the loop
// headed by h.
func (a *Analyzer) DetectLoops() *LoopInfo {
	info := &LoopInfo{
		loopNodes: make(map[int]bool),
		headers:   make(map[int]bool),
	}
	if a.g.NumNodes() == 0 {
		return info
	}

	// Position of each node in the reverse post-order; an edge that does not
	// move forward in that order is a back edge when its target reaches its
	// source.
	rpo := a.ReversePostOrder()
	rank := make(map[int]int, len(rpo))
	for i, n := range rpo {
		rank[n] = i
	}

	for _, n := range rpo {
		for _, succ := range a.g.Successors(n) {
			if rank[succ] <= rank[n] && a.CanReach(succ, n) {
				info.headers[succ] = true
				a.markLoopNodes(succ, n, info.loopNodes)
			}
		}
	}
	return info
}

// markLoopNodes marks the natural loop of the back edge tail -> head: the
// head plus every node that reaches tail without passing through head.
func (a *Analyzer) markLoopNodes(head, tail int, loopNodes map[int]bool) {
	loopNodes[head] = true
	stack := []int{tail}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if loopNodes[n] {
			continue
		}
		loopNodes[n] = true
		stack = append(stack, a.preds[n]...)
	}
}
