package voice

import (
	"context"
	"fmt"
	"sort"

	"storycast/audio"
)

// Voice is one selectable voice exposed by a provider.
type Voice struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Synthesis is the result of one synthesize call. Providers must declare
// the container format so the decode step picks the right decoder.
type Synthesis struct {
	Data   []byte
	Format audio.Format
}

// Provider is one speech backend. New backends are added by registering
// another implementation; the pipeline never branches on provider names.
type Provider interface {
	Name() string
	Configured() bool
	ListVoices(ctx context.Context) ([]Voice, error)
	Synthesize(ctx context.Context, text, voiceID, styleHint string) (*Synthesis, error)
}

// Registry maps provider identifiers to implementations.
type Registry struct {
	providers map[string]Provider
}

// NewRegistry creates a registry holding the given providers.
func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{providers: make(map[string]Provider, len(providers))}
	for _, p := range providers {
		r.providers[p.Name()] = p
	}
	return r
}

// Register adds or replaces a provider.
func (r *Registry) Register(p Provider) {
	r.providers[p.Name()] = p
}

// Get returns the provider with the given id.
func (r *Registry) Get(name string) (Provider, error) {
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("unknown voice provider %q", name)
	}
	return p, nil
}

// DefaultConfigured returns the first configured provider in name order, so
// cast voice resolution is deterministic across runs.
func (r *Registry) DefaultConfigured() (Provider, error) {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if p := r.providers[name]; p.Configured() {
			return p, nil
		}
	}
	return nil, fmt.Errorf("no voice provider configured")
}
