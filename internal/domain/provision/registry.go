package provision

import (
	"fmt"
	"sort"
)

// Group is a named, ordered set of steps offered as one menu entry.
type Group struct {
	ID          string
	Title       string
	Description string
	Steps       []Step
}

// Registry holds groups in menu order.
type Registry struct {
	groups []Group
	byID   map[string]int
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]int)}
}

// Register appends a group. Group IDs must be unique.
func (r *Registry) Register(g Group) error {
	if g.ID == "" {
		return fmt.Errorf("group id is required")
	}
	if _, exists := r.byID[g.ID]; exists {
		return fmt.Errorf("group %q already registered", g.ID)
	}
	r.byID[g.ID] = len(r.groups)
	r.groups = append(r.groups, g)
	return nil
}

// Groups returns all groups in registration order.
func (r *Registry) Groups() []Group {
	out := make([]Group, len(r.groups))
	copy(out, r.groups)
	return out
}

// Get returns the group with the given ID.
func (r *Registry) Get(id string) (Group, bool) {
	i, ok := r.byID[id]
	if !ok {
		return Group{}, false
	}
	return r.groups[i], true
}

// IDs returns the registered group IDs, sorted.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Steps returns the steps of the named groups in the order given, skipping
// steps already included through an earlier group.
func (r *Registry) Steps(ids ...string) ([]Step, error) {
	seen := make(map[StepID]bool)
	var steps []Step
	for _, id := range ids {
		g, ok := r.Get(id)
		if !ok {
			return nil, fmt.Errorf("unknown group %q", id)
		}
		for _, s := range g.Steps {
			if seen[s.ID()] {
				continue
			}
			seen[s.ID()] = true
			steps = append(steps, s)
		}
	}
	return steps, nil
}

// AllSteps returns every step in registration order.
func (r *Registry) AllSteps() []Step {
	ids := make([]string, len(r.groups))
	for i, g := range r.groups {
		ids[i] = g.ID
	}
	steps, _ := r.Steps(ids...)
	return steps
}
