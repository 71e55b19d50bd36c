// Package graph provides read-only traversal helpers over a functionality's
// workflow graph.
package graph

import (
	"errors"

	"github.com/workpoint/ticketflow/pkg/models"
)

var (
	// ErrNodeNotFound indicates the requested node id does not exist in the graph.
	ErrNodeNotFound = errors.New("node not found in workflow")

	// ErrNoPreviousNode indicates no edge targets the given node.
	ErrNoPreviousNode = errors.New("no previous node in workflow")

	// ErrPreviousIsStart indicates the preceding node is the start node, which
	// is never a valid revert target.
	ErrPreviousIsStart = errors.New("cannot revert to the start node")
)

// FirstNodeID returns the id of the node targeted by the unique edge leaving
// the start node, or "" if the graph has no start node or no outgoing edge.
func FirstNodeID(g *models.WorkflowGraph) string {
	var startID string

	for _, node := range g.Nodes {
		if node.Type == models.NodeTypeStart {
			startID = node.ID

			break
		}
	}

	if startID == "" {
		return ""
	}

	for _, edge := range g.Edges {
		if edge.Source == startID {
			return edge.Target
		}
	}

	return ""
}

// IsFirstEmployeeNode reports whether nodeID is the first node after start.
// Malformed graphs yield false rather than an error.
func IsFirstEmployeeNode(nodeID string, g *models.WorkflowGraph) bool {
	first := FirstNodeID(g)

	return first != "" && first == nodeID
}

// NodeByID finds a node by id.
func NodeByID(id string, g *models.WorkflowGraph) (*models.Node, error) {
	for _, node := range g.Nodes {
		if node.ID == id {
			return node, nil
		}
	}

	return nil, ErrNodeNotFound
}

// PrecedingNode resolves the source of the edge targeting nodeID. It reports
// ErrNoPreviousNode when no such edge exists and ErrPreviousIsStart when the
// resolved source is the start node.
func PrecedingNode(nodeID string, g *models.WorkflowGraph) (*models.Node, error) {
	for _, edge := range g.Edges {
		if edge.Target != nodeID {
			continue
		}

		source, err := NodeByID(edge.Source, g)
		if err != nil {
			return nil, err
		}

		if source.Type == models.NodeTypeStart {
			return nil, ErrPreviousIsStart
		}

		return source, nil
	}

	return nil, ErrNoPreviousNode
}
