package models

import (
	"errors"
	"fmt"
	"time"
)

// NodeType classifies a workflow node.
type NodeType string

const (
	NodeTypeStart    NodeType = "start"
	NodeTypeEnd      NodeType = "end"
	NodeTypeEmployee NodeType = "employee"
)

// NodeDataKind discriminates the assignment shape of an employee node.
type NodeDataKind string

const (
	NodeDataSingle   NodeDataKind = "single"
	NodeDataParallel NodeDataKind = "parallel"
)

// NodeData is the assignment payload of an employee node: either one employee
// or a parallel group with a lead and members, keyed by Kind.
type NodeData struct {
	Kind         NodeDataKind `json:"kind"                    validate:"required,oneof=single parallel"`
	EmployeeID   string       `json:"employee_id,omitempty"`
	GroupLead    string       `json:"group_lead,omitempty"`
	GroupMembers []string     `json:"group_members,omitempty"`
}

// IsParallel reports whether the node assigns a group rather than one employee.
func (d *NodeData) IsParallel() bool {
	return d != nil && d.Kind == NodeDataParallel
}

var (
	ErrNodeDataEmployeeRequired = errors.New("single node data requires an employee id")
	ErrNodeDataGroupRequired    = errors.New("parallel node data requires a group lead and members")
	ErrNodeDataUnknownKind      = errors.New("unknown node data kind")
)

// Validate checks the discriminated payload at graph load time so use sites
// can branch on Kind without re-checking field presence.
func (d *NodeData) Validate() error {
	if d == nil {
		return nil
	}

	switch d.Kind {
	case NodeDataSingle:
		if d.EmployeeID == "" {
			return ErrNodeDataEmployeeRequired
		}
	case NodeDataParallel:
		if d.GroupLead == "" || len(d.GroupMembers) == 0 {
			return ErrNodeDataGroupRequired
		}
	default:
		return fmt.Errorf("%w: %q", ErrNodeDataUnknownKind, d.Kind)
	}

	return nil
}

// Node is one vertex of a workflow graph.
type Node struct {
	ID   string    `json:"id"   validate:"required"`
	Type NodeType  `json:"type" validate:"required,oneof=start end employee"`
	Data *NodeData `json:"data,omitempty"`
}

// Edge is a directed connection between two nodes.
type Edge struct {
	Source string `json:"source" validate:"required"`
	Target string `json:"target" validate:"required"`
}

// WorkflowGraph is the directed node/edge structure defining where a ticket
// can move. Valid graphs have exactly one edge leaving the start node;
// malformed graphs surface as not-found errors at traversal time.
type WorkflowGraph struct {
	Nodes []*Node `json:"nodes"`
	Edges []*Edge `json:"edges"`
}

// Functionality owns a workflow graph for one business capability. The Super
// flag marks cross-department workflows selected by the "Super Workflow"
// department sentinel on a ticket.
type Functionality struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"        validate:"required,min=3"`
	Department  string        `json:"department"  validate:"required"`
	Super       bool          `json:"super"`
	Description string        `json:"description,omitempty"`
	Graph       WorkflowGraph `json:"graph"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}
