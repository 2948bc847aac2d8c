package weave

import (
	"context"
	"fmt"
	"slices"

	"github.com/rs/zerolog"
)

// Proxy routes method calls on a target through the advice bound to them.
// A Proxy is immutable and safe for concurrent use.
type Proxy struct {
	info     *TypeInfo
	bindings []*Binding
	chains   map[string][]*Binding
	logger   zerolog.Logger
}

// NewProxy creates a proxy for the target described by info. Bindings are
// ordered by Order; bindings with equal Order keep the order given here.
// The proxy does not log; use Weaver.Wrap with WithLogger for a logging proxy.
func NewProxy(info *TypeInfo, bindings ...*Binding) *Proxy {
	return newProxy(info, bindings, zerolog.Nop())
}

func newProxy(info *TypeInfo, bindings []*Binding, logger zerolog.Logger) *Proxy {
	p := &Proxy{
		info:     info,
		bindings: sortBindings(bindings),
		chains:   make(map[string][]*Binding, len(info.names)),
		logger:   logger.With().Str("target", info.Name).Logger(),
	}

	for _, name := range info.names {
		sig := info.methods[name].sig
		var chain []*Binding
		for _, b := range p.bindings {
			if b.Matches(sig) {
				chain = append(chain, b)
			}
		}
		if len(chain) > 0 {
			p.chains[name] = chain
			p.logger.Debug().
				Str("method", name).
				Int("advice", len(chain)).
				Msg("advice chain built")
		}
	}
	return p
}

// Target returns the proxied value
func (p *Proxy) Target() any { return p.info.Target }

// Type returns the description of the proxied value
func (p *Proxy) Type() *TypeInfo { return p.info }

// Bindings returns all bindings of the proxy in chain order
func (p *Proxy) Bindings() []*Binding { return slices.Clone(p.bindings) }

// Matching returns the bindings that apply to method, outermost first
func (p *Proxy) Matching(method string) []*Binding { return slices.Clone(p.chains[method]) }

// Invoke calls method on the target with args, running the advice chain that
// applies to it. Results are folded as follows: a method without results
// besides error yields nil, one result is returned as is and several come back
// as []any. The error is whatever the chain returns.
func (p *Proxy) Invoke(ctx context.Context, method string, args ...any) (any, error) {
	m, ok := p.info.methods[method]
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrNoSuchMethod, p.info.Name, method)
	}

	chain := p.chains[method]
	if len(chain) == 0 {
		return m.invoke(ctx, args)
	}
	if _, err := m.arguments(ctx, args); err != nil {
		return nil, err
	}
	return newInvocation(p, m, chain).run(ctx, args)
}

// Call invokes method through p and asserts the result to T. A nil result
// yields the zero T.
func Call[T any](ctx context.Context, p *Proxy, method string, args ...any) (T, error) {
	var zero T
	out, err := p.Invoke(ctx, method, args...)
	if out == nil {
		return zero, err
	}
	value, ok := out.(T)
	if !ok {
		if err != nil {
			return zero, err
		}
		return zero, fmt.Errorf("%w: %s returned %T, want %T", ErrResultType, method, out, zero)
	}
	return value, err
}
