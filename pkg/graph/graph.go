package graph

import (
	"errors"
	"log"
	"time"

	"github.com/strayaworks/graphdb/internal/kv"
	"github.com/strayaworks/graphdb/pkg/config"
)

// Options configures a Graph's storage stack.
type Options struct {
	// DataDir is the directory the embedded engine stores its files in.
	DataDir string

	// InMemory runs the embedded engine with no on-disk footprint.
	InMemory bool

	// Config tunes the cache and hybrid router layers. The zero value
	// falls back to config.DefaultGraphConfig().
	Config config.GraphConfig
}

// Graph is a handle onto a property graph backed by the embedded
// key-value storage stack (direct, cached, and hybrid-routed access all
// live under the single kv.Store this Graph was opened with).
type Graph struct {
	primary *kv.BadgerStore
	storage kv.Store
	logger  *log.Logger
}

// Open creates or opens a graph database at opts.DataDir, wiring the
// cache and hybrid router layers per opts.Config.
func Open(opts Options) (*Graph, error) {
	cfg := opts.Config
	if cfg == (config.GraphConfig{}) {
		cfg = config.DefaultGraphConfig()
	}

	primary, err := kv.Open(kv.Options{DataDir: opts.DataDir, InMemory: opts.InMemory})
	if err != nil {
		return nil, wrap(err)
	}

	cached := kv.NewCachedStore(primary, cfg.Cache)
	hybrid := kv.NewHybridStore(primary, cached, cfg.Hybrid)

	return &Graph{primary: primary, storage: hybrid, logger: log.Default()}, nil
}

// OpenInMemory opens a graph with no disk footprint, for tests.
func OpenInMemory() (*Graph, error) {
	return Open(Options{InMemory: true})
}

// Close releases the underlying storage stack.
func (g *Graph) Close() error {
	return wrap(g.storage.Close())
}

// Stats reports read-only size diagnostics from the embedded engine. This
// surfaces Badger's LSM tree and value log sizes; it does not expose any
// control over compaction.
type Stats struct {
	LSMBytes  int64 `json:"lsm_bytes"`
	VLogBytes int64 `json:"vlog_bytes"`
}

// Stats returns the current on-disk size diagnostics for this graph.
func (g *Graph) Stats() Stats {
	lsm, vlog := g.primary.Size()
	return Stats{LSMBytes: lsm, VLogBytes: vlog}
}

// AddNode creates a new node with the given label and properties, assigns
// it a random 128-bit id, and commits it alongside its label-index entry
// in a single atomic batch.
func (g *Graph) AddNode(label string, properties []Property) (*Node, error) {
	id, err := newNodeID()
	if err != nil {
		return nil, wrap(err)
	}
	return g.addNodeWithID(id, label, properties)
}

// addNodeWithID is AddNode's implementation given a caller-chosen id. Split
// out so the duplicate-id check (otherwise unreachable through AddNode's
// own random 128-bit ids) can be driven directly from a test.
func (g *Graph) addNodeWithID(id NodeID, label string, properties []Property) (*Node, error) {
	exists, err := g.storage.Exists(nodeKey(id))
	if err != nil {
		return nil, wrap(err)
	}
	if exists {
		return nil, errDuplicateNode(id)
	}

	now := time.Now().UTC()
	node := &Node{
		ID:         id,
		Label:      label,
		Properties: properties,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	labelIDs, err := g.readNodeIDs(labelKey(label))
	if err != nil {
		return nil, wrap(err)
	}
	labelIDs = append(labelIDs, id)

	batch := g.storage.NewBatch()
	data, err := marshalNode(node)
	if err != nil {
		return nil, wrap(err)
	}
	if err := batch.PutSerialized(nodeKey(id), data); err != nil {
		return nil, wrap(err)
	}
	labelData, err := marshalNodeIDs(labelIDs)
	if err != nil {
		return nil, wrap(err)
	}
	if err := batch.PutSerialized(labelKey(label), labelData); err != nil {
		return nil, wrap(err)
	}
	if err := batch.Commit(); err != nil {
		return nil, wrap(err)
	}

	return node, nil
}

// GetNode retrieves a node by id, or a NodeNotFound-kind error if absent.
func (g *Graph) GetNode(id NodeID) (*Node, error) {
	raw, err := g.storage.GetRaw(nodeKey(id))
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, errNodeNotFound(id)
		}
		return nil, wrap(err)
	}
	node, err := unmarshalNode(raw)
	if err != nil {
		return nil, wrap(err)
	}
	return node, nil
}

// GetNodes returns every node in the graph via a prefix scan over the
// node: keyspace.
func (g *Graph) GetNodes() ([]*Node, error) {
	var nodes []*Node
	err := g.storage.IterPrefix(nodePrefix(), func(_, value []byte) error {
		node, err := unmarshalNode(value)
		if err != nil {
			return err
		}
		nodes = append(nodes, node)
		return nil
	})
	if err != nil {
		return nil, wrap(err)
	}
	return nodes, nil
}

// AddEdge creates a directed edge from source to target, checking both
// endpoints exist, and commits the edge plus both adjacency-list updates
// in a single atomic batch.
func (g *Graph) AddEdge(label string, source, target NodeID, properties []Property) (*Edge, error) {
	if ok, err := g.storage.Exists(nodeKey(source)); err != nil {
		return nil, wrap(err)
	} else if !ok {
		return nil, errNodeNotFound(source)
	}
	if ok, err := g.storage.Exists(nodeKey(target)); err != nil {
		return nil, wrap(err)
	} else if !ok {
		return nil, errNodeNotFound(target)
	}

	id, err := newEdgeID()
	if err != nil {
		return nil, wrap(err)
	}

	edge := &Edge{
		ID:         id,
		Label:      label,
		Source:     source,
		Target:     target,
		Properties: properties,
		CreatedAt:  time.Now().UTC(),
	}

	outgoing, err := g.readEdgeIDs(outgoingKey(source))
	if err != nil {
		return nil, wrap(err)
	}
	outgoing = append(outgoing, id)

	incoming, err := g.readEdgeIDs(incomingKey(target))
	if err != nil {
		return nil, wrap(err)
	}
	incoming = append(incoming, id)

	batch := g.storage.NewBatch()
	edgeData, err := marshalEdge(edge)
	if err != nil {
		return nil, wrap(err)
	}
	if err := batch.PutSerialized(edgeKey(id), edgeData); err != nil {
		return nil, wrap(err)
	}

	outgoingData, err := marshalEdgeIDs(outgoing)
	if err != nil {
		return nil, wrap(err)
	}
	if err := batch.PutSerialized(outgoingKey(source), outgoingData); err != nil {
		return nil, wrap(err)
	}

	incomingData, err := marshalEdgeIDs(incoming)
	if err != nil {
		return nil, wrap(err)
	}
	if err := batch.PutSerialized(incomingKey(target), incomingData); err != nil {
		return nil, wrap(err)
	}

	if err := batch.Commit(); err != nil {
		return nil, wrap(err)
	}

	return edge, nil
}

// GetEdge retrieves an edge by id.
func (g *Graph) GetEdge(id EdgeID) (*Edge, error) {
	raw, err := g.storage.GetRaw(edgeKey(id))
	if err != nil {
		return nil, wrap(err)
	}
	edge, err := unmarshalEdge(raw)
	if err != nil {
		return nil, wrap(err)
	}
	return edge, nil
}

// FindNodesByLabel returns every node with the given label, resolved via
// the label index entry that AddNode keeps up to date.
func (g *Graph) FindNodesByLabel(label string) ([]*Node, error) {
	ids, err := g.readNodeIDs(labelKey(label))
	if err != nil {
		return nil, wrap(err)
	}

	nodes := make([]*Node, 0, len(ids))
	for _, id := range ids {
		node, err := g.GetNode(id)
		if err != nil {
			if ge, ok := err.(*Error); ok && ge.Kind == KindNodeNotFound {
				continue
			}
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

func (g *Graph) readNodeIDs(key []byte) ([]NodeID, error) {
	raw, err := g.storage.GetRaw(key)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return unmarshalNodeIDs(raw)
}

// QueryEdgesFrom returns every edge whose source is nodeID, via the
// outgoing adjacency list.
func (g *Graph) QueryEdgesFrom(nodeID NodeID) ([]*Edge, error) {
	ids, err := g.readEdgeIDs(outgoingKey(nodeID))
	if err != nil {
		return nil, wrap(err)
	}
	edges := make([]*Edge, 0, len(ids))
	for _, id := range ids {
		edge, err := g.GetEdge(id)
		if err != nil {
			g.logger.Printf("graph: outgoing adjacency list for %s references missing edge %s: %v", nodeID, id, err)
			continue
		}
		edges = append(edges, edge)
	}
	return edges, nil
}

// EdgesBetween returns every edge going from source directly to target.
// Not in the original distillation; recovered from the teacher's
// GetEdgesBetween, built on the same outgoing-adjacency scan QueryEdgesFrom
// already does.
func (g *Graph) EdgesBetween(source, target NodeID) ([]*Edge, error) {
	edges, err := g.QueryEdgesFrom(source)
	if err != nil {
		return nil, err
	}
	var matched []*Edge
	for _, e := range edges {
		if e.Target == target {
			matched = append(matched, e)
		}
	}
	return matched, nil
}

func (g *Graph) readEdgeIDs(key []byte) ([]EdgeID, error) {
	raw, err := g.storage.GetRaw(key)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return unmarshalEdgeIDs(raw)
}

// Query starts a fluent Query against this graph.
func (g *Graph) Query() *Query {
	return NewQuery(g)
}

// Transaction stages every AddNode/AddEdge call made through tx in a single
// batch, committed atomically once f returns without error.
//
// Reads performed inside f go straight to the underlying storage, not to
// the staged batch: a read of a node added earlier in the same
// transaction will not see it until the transaction commits. This mirrors
// the original engine's transaction semantics exactly and is a known,
// documented limitation rather than an oversight.
func (g *Graph) Transaction(f func(tx *Tx) error) error {
	tx := &Tx{graph: g, batch: g.storage.NewBatch()}
	if err := f(tx); err != nil {
		return err
	}
	if err := tx.batch.Commit(); err != nil {
		return wrap(err)
	}
	return nil
}

// Tx stages writes for a single Graph.Transaction call.
type Tx struct {
	graph *Graph
	batch kv.Batch
}

// AddNode stages a node write within the transaction's batch. The node's
// id must already be set by the caller (unlike Graph.AddNode, which mints
// one); this mirrors the original engine's transaction API, which takes a
// fully-formed Node rather than assembling one for the caller.
func (tx *Tx) AddNode(node *Node) error {
	data, err := marshalNode(node)
	if err != nil {
		return wrap(err)
	}
	return wrap(tx.batch.PutSerialized(nodeKey(node.ID), data))
}

// AddEdge stages an edge write within the transaction's batch.
func (tx *Tx) AddEdge(edge *Edge) error {
	data, err := marshalEdge(edge)
	if err != nil {
		return wrap(err)
	}
	return wrap(tx.batch.PutSerialized(edgeKey(edge.ID), data))
}
