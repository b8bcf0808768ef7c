// Package registry maps the closed domain set to retrieval backends.
package registry

import (
	"context"
	"fmt"

	"github.com/madhava-cloud/gateway/internal/domain"
)

// Backend is one domain's retrieval collaborator.
type Backend interface {
	Search(ctx context.Context, query string, k int, filters map[string]any) ([]domain.Passage, error)
}

// Registry resolves a domain tag to its retrieval backend. Built once at
// startup and read-only afterwards, so concurrent lookups need no locking.
type Registry struct {
	backends map[domain.Domain]Backend
}

// New builds a registry covering every supported domain via the factory.
func New(factory func(domain.Domain) Backend) *Registry {
	backends := make(map[domain.Domain]Backend, len(domain.Domains()))
	for _, d := range domain.Domains() {
		backends[d] = factory(d)
	}
	return &Registry{backends: backends}
}

// FromMap builds a registry from explicit backends. Used by tests and by
// callers that only serve a subset of domains.
func FromMap(backends map[domain.Domain]Backend) *Registry {
	copied := make(map[domain.Domain]Backend, len(backends))
	for d, b := range backends {
		copied[d] = b
	}
	return &Registry{backends: copied}
}

// Resolve returns the backend for a domain tag. The tag must parse against
// the closed set and have a registered backend; otherwise ErrInvalidDomain.
func (r *Registry) Resolve(tag string) (domain.Domain, Backend, error) {
	d, err := domain.ParseDomain(tag)
	if err != nil {
		return "", nil, err
	}
	b, ok := r.backends[d]
	if !ok {
		return "", nil, fmt.Errorf("%w: %q has no retrieval backend", domain.ErrInvalidDomain, tag)
	}
	return d, b, nil
}
