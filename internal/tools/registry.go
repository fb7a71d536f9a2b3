package tools

import (
	"context"
	"fmt"
	"sort"
)

// Category names match the exposed portmanteau tool names.
const (
	CategoryFilesystem = "filesystem_ops"
	CategoryRepository = "repository_ops"
	CategoryDocker     = "docker_ops"
	CategorySystem     = "system_ops"
)

// HandlerFunc executes one operation. args has already passed ParamSpec
// validation and sandbox path resolution; the returned value becomes the
// data field of a success envelope.
type HandlerFunc func(ctx context.Context, kit *Kit, args map[string]any) (any, error)

// Operation couples a name with its parameter spec and handler.
type Operation struct {
	Name    string
	Summary string
	Params  ParamSpec
	Handler HandlerFunc
}

// Registry holds the operation table for every category. It is populated
// once at startup and read-only afterwards, so lookups need no locking.
type Registry struct {
	ops map[string]map[string]*Operation
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{ops: make(map[string]map[string]*Operation)}
}

// Register adds an operation under a category. Duplicate names within a
// category are a programming error and rejected.
func (r *Registry) Register(category string, op *Operation) error {
	if op == nil || op.Name == "" {
		return fmt.Errorf("register %s: operation must have a name", category)
	}
	if op.Handler == nil {
		return fmt.Errorf("register %s/%s: nil handler", category, op.Name)
	}
	cat := r.ops[category]
	if cat == nil {
		cat = make(map[string]*Operation)
		r.ops[category] = cat
	}
	if _, exists := cat[op.Name]; exists {
		return fmt.Errorf("register %s/%s: duplicate operation", category, op.Name)
	}
	cat[op.Name] = op
	return nil
}

// Lookup finds an operation by category and name.
func (r *Registry) Lookup(category, name string) (*Operation, bool) {
	op, ok := r.ops[category][name]
	return op, ok
}

// Operations returns a category's operations sorted by name.
func (r *Registry) Operations(category string) []*Operation {
	cat := r.ops[category]
	ops := make([]*Operation, 0, len(cat))
	for _, op := range cat {
		ops = append(ops, op)
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i].Name < ops[j].Name })
	return ops
}

// OperationNames returns a category's operation names sorted.
func (r *Registry) OperationNames(category string) []string {
	cat := r.ops[category]
	names := make([]string, 0, len(cat))
	for name := range cat {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Categories returns all category names sorted.
func (r *Registry) Categories() []string {
	names := make([]string, 0, len(r.ops))
	for name := range r.ops {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
