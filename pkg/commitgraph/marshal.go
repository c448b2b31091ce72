package commitgraph

import (
	"encoding/json"
	"fmt"
)

// MarshalGraph serializes a Graph to JSON bytes.
// This is the storage format used by the durable snapshot tier and the API.
func MarshalGraph(g *Graph) ([]byte, error) {
	return json.Marshal(g)
}

// UnmarshalGraph deserializes JSON bytes into a Graph.
func UnmarshalGraph(data []byte) (*Graph, error) {
	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("unmarshal graph: %w", err)
	}
	return &g, nil
}
