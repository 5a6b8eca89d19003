package graph

import (
	"errors"
	"fmt"

	"github.com/strayaworks/graphdb/internal/kv"
)

// Kind classifies a graph-layer failure.
type Kind int

const (
	KindOther Kind = iota
	KindIO
	KindSerialization
	KindEngine
	KindTransaction
	KindDuplicateNode
	KindNodeNotFound
)

// Error is the single error type returned by this package.
type Error struct {
	Kind Kind
	NodeID NodeID
	Err    error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindDuplicateNode:
		return fmt.Sprintf("graph: duplicate node %s", e.NodeID)
	case KindNodeNotFound:
		return fmt.Sprintf("graph: node not found: %s", e.NodeID)
	default:
		return fmt.Sprintf("graph: %v", e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

func errDuplicateNode(id NodeID) error {
	return &Error{Kind: KindDuplicateNode, NodeID: id, Err: errors.New("duplicate node")}
}

func errNodeNotFound(id NodeID) error {
	return &Error{Kind: KindNodeNotFound, NodeID: id, Err: errors.New("node not found")}
}

// wrap classifies an error surfaced by the underlying kv.Store into the
// graph layer's own Kind taxonomy.
func wrap(err error) error {
	if err == nil {
		return nil
	}
	var kvErr *kv.Error
	if errors.As(err, &kvErr) {
		switch kvErr.Kind {
		case kv.KindSerialization:
			return &Error{Kind: KindSerialization, Err: err}
		case kv.KindTransaction:
			return &Error{Kind: KindTransaction, Err: err}
		case kv.KindEngine:
			return &Error{Kind: KindEngine, Err: err}
		default:
			return &Error{Kind: KindIO, Err: err}
		}
	}
	return &Error{Kind: KindOther, Err: err}
}
