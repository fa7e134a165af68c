// Package prompt holds the model prompts and a small template
// builder. Prompts are registered once and rendered with {{key}}
// substitution at request time.
package prompt

import (
	"fmt"
	"strings"
	"sync"
)

// Prompt is a registered prompt template.
type Prompt struct {
	ID          string
	Content     string
	Description string
}

// Registry stores prompts by id.
type Registry struct {
	mu      sync.RWMutex
	prompts map[string]*Prompt
}

var defaultRegistry = &Registry{prompts: make(map[string]*Prompt)}

// DefaultRegistry returns the process-wide registry.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Register adds a prompt to the registry, replacing any previous
// prompt with the same id.
func (r *Registry) Register(p *Prompt) {
	r.mu.Lock()
	r.prompts[p.ID] = p
	r.mu.Unlock()
}

// Get retrieves a registered prompt.
func (r *Registry) Get(id string) (*Prompt, error) {
	r.mu.RLock()
	p, ok := r.prompts[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("prompt %q not registered", id)
	}
	return p, nil
}

// Builder renders a prompt with variable substitution.
type Builder struct {
	prompt    *Prompt
	variables map[string]string
}

// NewBuilder creates a builder for a registered prompt.
func NewBuilder(registry *Registry, id string) (*Builder, error) {
	p, err := registry.Get(id)
	if err != nil {
		return nil, err
	}
	return &Builder{prompt: p, variables: make(map[string]string)}, nil
}

// SetVariable sets a variable for template substitution.
func (b *Builder) SetVariable(key, value string) *Builder {
	b.variables[key] = value
	return b
}

// Build constructs the final prompt string.
func (b *Builder) Build() string {
	result := b.prompt.Content
	for key, value := range b.variables {
		placeholder := fmt.Sprintf("{{%s}}", key)
		result = strings.ReplaceAll(result, placeholder, value)
	}
	return result
}
