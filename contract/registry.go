package contract

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownEndpoint indicates an endpoint id that no contract defines.
// It is a client error, distinct from a missing input file.
var ErrUnknownEndpoint = errors.New("unknown endpoint")

// UnknownEndpointError carries the rejected id and the known endpoints.
type UnknownEndpointError struct {
	Endpoint  string
	Available []string
}

func (e *UnknownEndpointError) Error() string {
	return fmt.Sprintf("unknown endpoint: %s (available: %s)", e.Endpoint, strings.Join(e.Available, ", "))
}

// Is reports whether target is ErrUnknownEndpoint.
func (e *UnknownEndpointError) Is(target error) bool {
	return target == ErrUnknownEndpoint
}

// Registry is an immutable endpoint -> contract mapping.
// It is safe for concurrent use; lookups return copies.
type Registry struct {
	contracts map[string]Contract
	endpoints []string
}

// NewRegistry validates the contracts and builds a registry.
// Duplicate endpoints are rejected.
func NewRegistry(contracts ...Contract) (*Registry, error) {
	r := &Registry{contracts: make(map[string]Contract, len(contracts))}

	var errs []error
	for _, c := range contracts {
		if err := c.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		if _, dup := r.contracts[c.Endpoint]; dup {
			errs = append(errs, fmt.Errorf("duplicate contract for endpoint %q", c.Endpoint))
			continue
		}
		r.contracts[c.Endpoint] = c.clone()
		r.endpoints = append(r.endpoints, c.Endpoint)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	sort.Strings(r.endpoints)
	return r, nil
}

// MustNewRegistry is NewRegistry for statically known contracts.
func MustNewRegistry(contracts ...Contract) *Registry {
	r, err := NewRegistry(contracts...)
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup returns the contract for endpoint or an *UnknownEndpointError.
func (r *Registry) Lookup(endpoint string) (Contract, error) {
	c, ok := r.contracts[endpoint]
	if !ok {
		return Contract{}, &UnknownEndpointError{Endpoint: endpoint, Available: r.Endpoints()}
	}
	return c.clone(), nil
}

// Endpoints returns the known endpoint ids in sorted order.
func (r *Registry) Endpoints() []string {
	out := make([]string, len(r.endpoints))
	copy(out, r.endpoints)
	return out
}

// All returns copies of every contract, ordered by endpoint.
func (r *Registry) All() []Contract {
	out := make([]Contract, 0, len(r.endpoints))
	for _, ep := range r.endpoints {
		out = append(out, r.contracts[ep].clone())
	}
	return out
}

// Len returns the number of contracts.
func (r *Registry) Len() int {
	return len(r.endpoints)
}
