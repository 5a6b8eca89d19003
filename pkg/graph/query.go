package graph

// QueryResult holds the nodes and edges a Query matched.
type QueryResult struct {
	Nodes []*Node
	Edges []*Edge
}

type nodeFilter func(*Node) bool
type edgeFilter func(*Edge) bool

// Query is a fluent builder for node/edge predicate queries, grounded on
// the original engine's QueryBuilder: filter by label or property, limit
// and offset the node results, and optionally retain only nodes that have
// at least one outgoing edge matching an edge predicate.
type Query struct {
	graph       *Graph
	label       string // set by WithLabel, empty otherwise
	nodeFilters []nodeFilter
	edgeFilters []edgeFilter
	limit       int
	hasLimit    bool
	offset      int
}

// NewQuery starts a query against g.
func NewQuery(g *Graph) *Query {
	return &Query{graph: g}
}

// WithLabel filters to nodes carrying the given label. When this is the
// query's only node filter, Execute resolves it via the label index
// instead of a full scan.
func (q *Query) WithLabel(label string) *Query {
	q.label = label
	q.nodeFilters = append(q.nodeFilters, func(n *Node) bool { return n.Label == label })
	return q
}

// WithProperty filters to nodes carrying a property with the given key and
// raw JSON value.
func (q *Query) WithProperty(key string, value []byte) *Query {
	q.nodeFilters = append(q.nodeFilters, func(n *Node) bool {
		for _, p := range n.Properties {
			if p.Key == key && string(p.Value) == string(value) {
				return true
			}
		}
		return false
	})
	return q
}

// WithEdge filters to nodes having at least one outgoing edge matching
// pred; edges not matching pred are excluded from the result's Edges.
func (q *Query) WithEdge(pred func(*Edge) bool) *Query {
	q.edgeFilters = append(q.edgeFilters, pred)
	return q
}

// Limit caps the number of nodes returned.
func (q *Query) Limit(n int) *Query {
	q.limit = n
	q.hasLimit = true
	return q
}

// Offset skips the first n matching nodes before applying Limit.
func (q *Query) Offset(n int) *Query {
	q.offset = n
	return q
}

// Execute runs the query and returns the matching nodes and edges.
func (q *Query) Execute() (*QueryResult, error) {
	nodes, err := q.candidateNodes()
	if err != nil {
		return nil, err
	}

	if len(q.nodeFilters) > 0 {
		filtered := nodes[:0]
		for _, n := range nodes {
			if q.matchesAllNodeFilters(n) {
				filtered = append(filtered, n)
			}
		}
		nodes = filtered
	}

	var edges []*Edge
	if len(q.edgeFilters) > 0 {
		var retained []*Node
		for _, n := range nodes {
			nodeEdges, err := q.graph.QueryEdgesFrom(n.ID)
			if err != nil {
				return nil, err
			}
			var matched []*Edge
			for _, e := range nodeEdges {
				if q.matchesAllEdgeFilters(e) {
					matched = append(matched, e)
				}
			}
			if len(matched) > 0 {
				retained = append(retained, n)
				edges = append(edges, matched...)
			}
		}
		nodes = retained
	}

	nodes = applyOffsetLimit(nodes, q.offset, q.limit, q.hasLimit)

	return &QueryResult{Nodes: nodes, Edges: edges}, nil
}

// candidateNodes resolves the query's starting node set: the label index
// fast path when the only node filter is a single WithLabel call, a full
// scan otherwise.
func (q *Query) candidateNodes() ([]*Node, error) {
	if q.label != "" && len(q.nodeFilters) == 1 {
		return q.graph.FindNodesByLabel(q.label)
	}
	return q.graph.GetNodes()
}

func (q *Query) matchesAllNodeFilters(n *Node) bool {
	for _, f := range q.nodeFilters {
		if !f(n) {
			return false
		}
	}
	return true
}

func (q *Query) matchesAllEdgeFilters(e *Edge) bool {
	for _, f := range q.edgeFilters {
		if !f(e) {
			return false
		}
	}
	return true
}

func applyOffsetLimit(nodes []*Node, offset, limit int, hasLimit bool) []*Node {
	if offset >= len(nodes) {
		return nil
	}
	nodes = nodes[offset:]
	if hasLimit && limit < len(nodes) {
		nodes = nodes[:limit]
	}
	return nodes
}
