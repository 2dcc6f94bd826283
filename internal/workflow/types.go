// Package workflow models visual workflow definitions: a graph of typed
// nodes joined by edges, with declared input variables.
package workflow

import "encoding/json"

// Node types recognized by the engine.
const (
	NodeStart = "start"
	NodeAgent = "agent"
	NodeEnd   = "end"
	NodeNote  = "note"
)

// Variable declares an input or state variable.
type Variable struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Type         string          `json:"type"`
	DefaultValue json.RawMessage `json:"defaultValue,omitempty"`
}

// Position locates a node on the canvas. Geometry is the editor's business;
// it is carried through untouched.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is one unit of work in a workflow.
type Node struct {
	ID       string                     `json:"id"`
	Type     string                     `json:"type"`
	Position Position                   `json:"position"`
	Data     map[string]json.RawMessage `json:"data"`
}

// Label returns the node's display name, falling back to its ID.
func (n Node) Label() string {
	raw, ok := n.Data["name"]
	if !ok {
		return n.ID
	}
	var name string
	if err := json.Unmarshal(raw, &name); err != nil || name == "" {
		return n.ID
	}
	return name
}

// Edge connects two nodes, optionally through named handles.
type Edge struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle string `json:"sourceHandle,omitempty"`
	TargetHandle string `json:"targetHandle,omitempty"`
}

// Definition is a complete workflow.
type Definition struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Version     string     `json:"version"`
	Nodes       []Node     `json:"nodes"`
	Edges       []Edge     `json:"edges"`
	Variables   []Variable `json:"variables,omitempty"`
}
