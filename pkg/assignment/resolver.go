// Package assignment resolves the concrete assignee set for a workflow node.
package assignment

import (
	"context"
	"fmt"

	"github.com/workpoint/ticketflow/pkg/directory"
	"github.com/workpoint/ticketflow/pkg/models"
)

// Assignee is one resolved assignment target.
type Assignee struct {
	ID   string
	Name string
}

// Group is the resolved form of a parallel node: the lead merged into the
// member set, deduplicated, with bulk-resolved names.
type Group struct {
	Lead    Assignee
	Members []Assignee
}

// MemberIDs returns the ids of all group members, lead included.
func (g *Group) MemberIDs() []string {
	ids := make([]string, 0, len(g.Members))
	for _, m := range g.Members {
		ids = append(ids, m.ID)
	}

	return ids
}

// Resolver resolves assignment targets through the user directory.
type Resolver struct {
	directory directory.Directory
}

// NewResolver creates an assignment resolver.
func NewResolver(dir directory.Directory) *Resolver {
	return &Resolver{directory: dir}
}

// ResolveSingle resolves one employee id to an assignee record.
func (r *Resolver) ResolveSingle(ctx context.Context, employeeID string) (Assignee, error) {
	name, err := r.directory.DisplayName(ctx, employeeID)
	if err != nil {
		return Assignee{}, fmt.Errorf("failed to resolve assignee %s: %w", employeeID, err)
	}

	if name == "" {
		name = directory.UnknownName
	}

	return Assignee{ID: employeeID, Name: name}, nil
}

// ResolveGroup merges the lead into the member set, deduplicates by id, and
// bulk-resolves display names. The lead is always the first member.
func (r *Resolver) ResolveGroup(ctx context.Context, groupLead string, groupMembers []string) (*Group, error) {
	ids := make([]string, 0, len(groupMembers)+1)
	seen := make(map[string]bool, len(groupMembers)+1)

	ids = append(ids, groupLead)
	seen[groupLead] = true

	for _, id := range groupMembers {
		if id == "" || seen[id] {
			continue
		}

		seen[id] = true
		ids = append(ids, id)
	}

	names, err := r.directory.DisplayNames(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve group members: %w", err)
	}

	group := &Group{Members: make([]Assignee, 0, len(ids))}

	for _, id := range ids {
		name := names[id]
		if name == "" {
			name = directory.UnknownName
		}

		member := Assignee{ID: id, Name: name}
		if id == groupLead {
			group.Lead = member
		}

		group.Members = append(group.Members, member)
	}

	return group, nil
}

// ResolveMany resolves an explicit list of assignee ids, preserving order and
// dropping duplicates and empty entries.
func (r *Resolver) ResolveMany(ctx context.Context, employeeIDs []string) ([]Assignee, error) {
	ids := make([]string, 0, len(employeeIDs))
	seen := make(map[string]bool, len(employeeIDs))

	for _, id := range employeeIDs {
		if id == "" || seen[id] {
			continue
		}

		seen[id] = true
		ids = append(ids, id)
	}

	names, err := r.directory.DisplayNames(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve assignees: %w", err)
	}

	assignees := make([]Assignee, 0, len(ids))

	for _, id := range ids {
		name := names[id]
		if name == "" {
			name = directory.UnknownName
		}

		assignees = append(assignees, Assignee{ID: id, Name: name})
	}

	return assignees, nil
}

// Enrich replaces the caller-supplied actor name with the authoritative
// directory name. The enriched actor is used for all credit and history
// writes.
func (r *Resolver) Enrich(ctx context.Context, actor models.Actor) (models.Actor, error) {
	resolved, err := r.ResolveSingle(ctx, actor.UserID)
	if err != nil {
		return models.Actor{}, err
	}

	return models.Actor{UserID: resolved.ID, Name: resolved.Name}, nil
}
