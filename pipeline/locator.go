package pipeline

import (
	"context"
	"errors"

	"github.com/justapithecus/filebridge/contract"
)

// Located is a resolved input file for one endpoint and date.
type Located struct {
	Contract contract.Contract
	Date     string
	Name     string
	Path     string
}

// Locate resolves today's input file for an endpoint. Only the exact
// same-day name is considered; there is no fallback to earlier dates.
func (p *Pipeline) Locate(ctx context.Context, endpoint string) (*Located, error) {
	return p.locate(ctx, endpoint, p.Today())
}

func (p *Pipeline) lookup(endpoint string) (contract.Contract, error) {
	c, err := p.registry.Lookup(endpoint)
	if err != nil {
		var ue *contract.UnknownEndpointError
		available := p.registry.Endpoints()
		if errors.As(err, &ue) {
			available = ue.Available
		}
		return contract.Contract{}, &Error{
			Kind:      ErrUnknownEndpoint,
			Op:        "lookup",
			Endpoint:  endpoint,
			Available: available,
			Err:       err,
		}
	}
	return c, nil
}

func (p *Pipeline) locate(ctx context.Context, endpoint, token string) (*Located, error) {
	c, err := p.lookup(endpoint)
	if err != nil {
		return nil, err
	}

	name := c.InputName(token)
	ok, err := p.source.Exists(ctx, name)
	if err != nil {
		return nil, &Error{Kind: ErrIO, Op: "locate", Endpoint: endpoint, Date: token, File: name, Err: err}
	}
	if !ok {
		return nil, &Error{Kind: ErrInputNotFound, Op: "locate", Endpoint: endpoint, Date: token, File: name}
	}
	return &Located{Contract: c, Date: token, Name: name, Path: p.source.Path(name)}, nil
}
