package workflow

import (
	"fmt"
	"sort"
	"strings"
)

// Graph indexes a workflow definition for traversal and validation.
type Graph struct {
	def     Definition
	nodes   map[string]Node
	forward map[string][]Edge
	reverse map[string][]string
}

// NewGraph builds the adjacency indexes for a definition.
func NewGraph(def Definition) *Graph {
	g := &Graph{
		def:     def,
		nodes:   make(map[string]Node, len(def.Nodes)),
		forward: make(map[string][]Edge),
		reverse: make(map[string][]string),
	}
	for _, node := range def.Nodes {
		g.nodes[node.ID] = node
	}
	for _, edge := range def.Edges {
		g.forward[edge.Source] = append(g.forward[edge.Source], edge)
		g.reverse[edge.Target] = append(g.reverse[edge.Target], edge.Source)
	}
	return g
}

// Node looks up a node by ID.
func (g *Graph) Node(id string) (Node, bool) {
	node, ok := g.nodes[id]
	return node, ok
}

// StartNode returns the workflow's start node, if any.
func (g *Graph) StartNode() (Node, bool) {
	for _, node := range g.def.Nodes {
		if node.Type == NodeStart {
			return node, true
		}
	}
	return Node{}, false
}

// NextNodes returns the nodes reachable over outgoing edges, optionally
// restricted to edges leaving a specific source handle.
func (g *Graph) NextNodes(nodeID, sourceHandle string) []Node {
	var next []Node
	for _, edge := range g.forward[nodeID] {
		if sourceHandle != "" && edge.SourceHandle != sourceHandle {
			continue
		}
		if target, ok := g.nodes[edge.Target]; ok {
			next = append(next, target)
		}
	}
	return next
}

// TopologicalOrder returns node IDs in execution order, or an error when the
// graph contains a cycle.
func (g *Graph) TopologicalOrder() ([]string, error) {
	inDegree := make(map[string]int, len(g.nodes))
	for id := range g.nodes {
		inDegree[id] = 0
	}
	for _, edge := range g.def.Edges {
		inDegree[edge.Target]++
	}

	var queue []string
	for _, node := range g.def.Nodes {
		if inDegree[node.ID] == 0 {
			queue = append(queue, node.ID)
		}
	}

	order := make([]string, 0, len(g.nodes))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)
		for _, edge := range g.forward[id] {
			inDegree[edge.Target]--
			if inDegree[edge.Target] == 0 {
				queue = append(queue, edge.Target)
			}
		}
	}
	if len(order) != len(g.nodes) {
		return nil, fmt.Errorf("workflow contains cycles")
	}
	return order, nil
}

// HasCycles reports whether any cycle exists in the graph.
func (g *Graph) HasCycles() bool {
	_, err := g.TopologicalOrder()
	return err != nil
}

// reachableFrom collects every node reachable from the given start.
func (g *Graph) reachableFrom(startID string) map[string]bool {
	reachable := make(map[string]bool)
	queue := []string{startID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if reachable[id] {
			continue
		}
		reachable[id] = true
		for _, next := range g.NextNodes(id, "") {
			queue = append(queue, next.ID)
		}
	}
	return reachable
}

// Validation is the outcome of structural workflow validation.
type Validation struct {
	Valid     bool     `json:"valid"`
	Errors    []string `json:"errors"`
	NodeCount int      `json:"nodeCount"`
	EdgeCount int      `json:"edgeCount"`
	HasCycles bool     `json:"hasCycles"`
}

// Validate checks the workflow structure: a start node must exist, the graph
// must be acyclic, and every node must be reachable from the start.
func (g *Graph) Validate() Validation {
	var errs []string

	start, hasStart := g.StartNode()
	if !hasStart {
		errs = append(errs, "workflow must have exactly one start node")
	}

	hasCycles := g.HasCycles()
	if hasCycles {
		errs = append(errs, "workflow contains cycles")
	}

	if hasStart {
		reachable := g.reachableFrom(start.ID)
		var disconnected []string
		for id := range g.nodes {
			if !reachable[id] {
				disconnected = append(disconnected, id)
			}
		}
		if len(disconnected) > 0 {
			sort.Strings(disconnected)
			errs = append(errs, "disconnected nodes: "+strings.Join(disconnected, ", "))
		}
	}

	return Validation{
		Valid:     len(errs) == 0,
		Errors:    errs,
		NodeCount: len(g.nodes),
		EdgeCount: len(g.def.Edges),
		HasCycles: hasCycles,
	}
}
