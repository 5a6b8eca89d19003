package graph

import "encoding/json"

func marshalNode(n *Node) ([]byte, error) { return json.Marshal(n) }
func marshalEdge(e *Edge) ([]byte, error) { return json.Marshal(e) }

func unmarshalNode(data []byte) (*Node, error) {
	var n Node
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

func unmarshalEdge(data []byte) (*Edge, error) {
	var e Edge
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func marshalEdgeIDs(ids []EdgeID) ([]byte, error) { return json.Marshal(ids) }

func unmarshalEdgeIDs(data []byte) ([]EdgeID, error) {
	var ids []EdgeID
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func marshalNodeIDs(ids []NodeID) ([]byte, error) { return json.Marshal(ids) }

func unmarshalNodeIDs(data []byte) ([]NodeID, error) {
	var ids []NodeID
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}
