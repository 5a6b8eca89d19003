package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/strayaworks/graphdb/pkg/graph"
)

func parseNodeID(s string) (graph.NodeID, error) {
	var id graph.NodeID
	decoded, err := hex.DecodeString(s)
	if err != nil || len(decoded) != len(id) {
		return id, fmt.Errorf("invalid node id %q: must be %d hex bytes", s, len(id))
	}
	copy(id[:], decoded)
	return id, nil
}

func parseEdgeID(s string) (graph.EdgeID, error) {
	var id graph.EdgeID
	decoded, err := hex.DecodeString(s)
	if err != nil || len(decoded) != len(id) {
		return id, fmt.Errorf("invalid edge id %q: must be %d hex bytes", s, len(id))
	}
	copy(id[:], decoded)
	return id, nil
}

// parseProperties turns "key=json-value" flag strings into Properties,
// e.g. --prop name=\"Alice\" --prop age=30.
func parseProperties(raw []string) ([]graph.Property, error) {
	props := make([]graph.Property, 0, len(raw))
	for _, r := range raw {
		key, value, ok := strings.Cut(r, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --prop %q: want key=json-value", r)
		}
		if !json.Valid([]byte(value)) {
			return nil, fmt.Errorf("invalid --prop %q: value is not valid JSON", r)
		}
		props = append(props, graph.Property{Key: key, Value: json.RawMessage(value)})
	}
	return props, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
