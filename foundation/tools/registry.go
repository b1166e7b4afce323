// Package tools defines the capabilities the agent can call and the registry
// it selects them from.
package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/tool"
)

var (
	ErrDuplicateTool = errors.New("duplicate tool name")
	ErrUnknownTool   = errors.New("unknown tool")
)

// Descriptor is a registered tool with the name and description the model
// sees.
type Descriptor struct {
	Name        string
	Description string
	Tool        tool.InvokableTool
}

// Registry is an ordered set of uniquely named tools. It is filled once at
// startup and only read afterwards.
type Registry struct {
	tools []Descriptor
	index map[string]int
}

// NewRegistry registers ts in order.
func NewRegistry(ctx context.Context, ts ...tool.InvokableTool) (*Registry, error) {
	r := &Registry{index: make(map[string]int)}
	for _, t := range ts {
		if err := r.Register(ctx, t); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds t under the name reported by its Info.
func (r *Registry) Register(ctx context.Context, t tool.InvokableTool) error {
	info, err := t.Info(ctx)
	if err != nil {
		return fmt.Errorf("failed to get tool info: %w", err)
	}
	if info.Name == "" {
		return errors.New("tool name cannot be empty")
	}
	if _, ok := r.index[info.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateTool, info.Name)
	}

	r.index[info.Name] = len(r.tools)
	r.tools = append(r.tools, Descriptor{Name: info.Name, Description: info.Desc, Tool: t})
	return nil
}

// List returns the descriptors in registration order.
func (r *Registry) List() []Descriptor {
	out := make([]Descriptor, len(r.tools))
	copy(out, r.tools)
	return out
}

func (r *Registry) Names() []string {
	names := make([]string, len(r.tools))
	for i, d := range r.tools {
		names[i] = d.Name
	}
	return names
}

func (r *Registry) Lookup(name string) (tool.InvokableTool, bool) {
	i, ok := r.index[name]
	if !ok {
		return nil, false
	}
	return r.tools[i].Tool, true
}

// Invoke runs the named tool with input.
func (r *Registry) Invoke(ctx context.Context, name, input string) (string, error) {
	t, ok := r.Lookup(name)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	return t.InvokableRun(ctx, input)
}

// Describe renders one "name: description" line per tool, the form the
// prompt embeds verbatim.
func (r *Registry) Describe() string {
	lines := make([]string, len(r.tools))
	for i, d := range r.tools {
		lines[i] = d.Name + ": " + d.Description
	}
	return strings.Join(lines, "\n")
}
