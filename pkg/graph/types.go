// Package graph implements an embedded property-graph data model on top of
// the generic key-value stack in internal/kv: single-label nodes and edges,
// a label index, adjacency lists for traversal, and a fluent query builder.
//
// Example:
//
//	g, err := graph.Open(graph.Options{DataDir: "./data/graph"})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer g.Close()
//
//	alice, _ := g.AddNode("Person", []graph.Property{
//		{Key: "name", Value: json.RawMessage(`"Alice"`)},
//	})
package graph

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"time"
)

// NodeID is a 128-bit random node identifier.
type NodeID [16]byte

// EdgeID is a 128-bit random edge identifier.
type EdgeID [16]byte

func newNodeID() (NodeID, error) {
	var id NodeID
	if _, err := rand.Read(id[:]); err != nil {
		return NodeID{}, err
	}
	return id, nil
}

func newEdgeID() (EdgeID, error) {
	var id EdgeID
	if _, err := rand.Read(id[:]); err != nil {
		return EdgeID{}, err
	}
	return id, nil
}

// String renders an id as lowercase hex, the ASCII form used in the
// node_edges adjacency-list keys.
func (id NodeID) String() string { return hex.EncodeToString(id[:]) }

// String renders an id as lowercase hex.
func (id EdgeID) String() string { return hex.EncodeToString(id[:]) }

// MarshalJSON renders a NodeID as its hex string, not a raw byte array.
func (id NodeID) MarshalJSON() ([]byte, error) { return json.Marshal(id.String()) }

// UnmarshalJSON parses a NodeID from its hex string form.
func (id *NodeID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	decoded, err := hex.DecodeString(s)
	if err != nil {
		return err
	}
	copy(id[:], decoded)
	return nil
}

// MarshalJSON renders an EdgeID as its hex string, not a raw byte array.
func (id EdgeID) MarshalJSON() ([]byte, error) { return json.Marshal(id.String()) }

// UnmarshalJSON parses an EdgeID from its hex string form.
func (id *EdgeID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	decoded, err := hex.DecodeString(s)
	if err != nil {
		return err
	}
	copy(id[:], decoded)
	return nil
}

// Property is one ordered key/value pair on a Node or Edge. Property order
// is preserved exactly as supplied — this model has no map semantics.
type Property struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

// Node is a single-label vertex in the graph.
type Node struct {
	ID         NodeID     `json:"id"`
	Label      string     `json:"label"`
	Properties []Property `json:"properties"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Edge is a single-label, directed connection between two nodes.
type Edge struct {
	ID         EdgeID     `json:"id"`
	Label      string     `json:"label"`
	Source     NodeID     `json:"source"`
	Target     NodeID     `json:"target"`
	Properties []Property `json:"properties"`
	CreatedAt  time.Time  `json:"created_at"`
}
