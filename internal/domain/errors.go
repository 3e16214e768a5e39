package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNoMatch signals that a query matched no vocabulary node.
	ErrNoMatch = errors.New("no matching concept")
	// ErrUnknownNode signals a lookup of a node outside the model vocabulary.
	ErrUnknownNode = errors.New("unknown node")
	// ErrMissingInput signals a corpus source that does not exist.
	ErrMissingInput = errors.New("missing input")
	// ErrMalformedInput signals a corpus source or record that cannot be decoded.
	ErrMalformedInput = errors.New("malformed input")
	// ErrEmptyGraph signals a graph with nothing to embed.
	ErrEmptyGraph = errors.New("empty graph")
	// ErrInvalidGraph signals a graph file that violates edge invariants.
	ErrInvalidGraph = errors.New("invalid graph")
	// ErrInvalidModel signals a corrupt or truncated embedding model.
	ErrInvalidModel = errors.New("invalid embedding model")
	// ErrModelNotFound signals that no trained model has been persisted.
	ErrModelNotFound = errors.New("embedding model not found")
	// ErrSessionNotFound signals an unknown or expired resolver session.
	ErrSessionNotFound = errors.New("session not found")
	// ErrInvalidRequest signals a request that fails validation.
	ErrInvalidRequest = errors.New("invalid request")
)

// UnknownNodeError wraps ErrUnknownNode with the offending node name.
type UnknownNodeError struct {
	Node string
}

func (e *UnknownNodeError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnknownNode.Error(), e.Node)
}

func (e *UnknownNodeError) Unwrap() error { return ErrUnknownNode }

// NewUnknownNode creates an unknown node error.
func NewUnknownNode(node string) error {
	return &UnknownNodeError{Node: node}
}
