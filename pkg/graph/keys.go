package graph

import "github.com/strayaworks/graphdb/pkg/pool"

// Key encoding, bit-exact with the original engine's on-disk layout:
//
//	node:<16 raw id bytes>                  -> Node
//	edge:<16 raw id bytes>                  -> Edge
//	node_edges:<ascii(id)>:outgoing         -> []EdgeID
//	node_edges:<ascii(id)>:incoming         -> []EdgeID
//	label:<label>                          -> []NodeID
//
// ascii(id) is the lowercase-hex rendering of the raw id bytes. The label
// index is a single serialized id collection per label, read-modify-write
// updated the same way the outgoing/incoming adjacency lists are.

func nodeKey(id NodeID) []byte {
	b := pool.GetStringBuilder()
	defer pool.PutStringBuilder(b)
	b.WriteString("node:")
	b.Write(id[:])
	return append([]byte(nil), b.Bytes()...)
}

func edgeKey(id EdgeID) []byte {
	b := pool.GetStringBuilder()
	defer pool.PutStringBuilder(b)
	b.WriteString("edge:")
	b.Write(id[:])
	return append([]byte(nil), b.Bytes()...)
}

func nodePrefix() []byte { return []byte("node:") }
func edgePrefix() []byte { return []byte("edge:") }

func outgoingKey(id NodeID) []byte {
	b := pool.GetStringBuilder()
	defer pool.PutStringBuilder(b)
	b.WriteString("node_edges:")
	b.WriteString(id.String())
	b.WriteString(":outgoing")
	return append([]byte(nil), b.Bytes()...)
}

func incomingKey(id NodeID) []byte {
	b := pool.GetStringBuilder()
	defer pool.PutStringBuilder(b)
	b.WriteString("node_edges:")
	b.WriteString(id.String())
	b.WriteString(":incoming")
	return append([]byte(nil), b.Bytes()...)
}

func labelKey(label string) []byte {
	b := pool.GetStringBuilder()
	defer pool.PutStringBuilder(b)
	b.WriteString("label:")
	b.WriteString(label)
	return append([]byte(nil), b.Bytes()...)
}
