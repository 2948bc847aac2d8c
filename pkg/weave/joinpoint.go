package weave

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/toyz/weave/pkg/pointcut"
)

// State is the lifecycle stage of a single invocation
type State int32

const (
	StateCreated State = iota
	StateChainBuilt
	StateRunning
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateChainBuilt:
		return "chain-built"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Advice is around advice. It receives the join point of the intercepted call
// and decides whether, and with which arguments, the call proceeds.
type Advice func(ctx context.Context, jp *JoinPoint) (any, error)

// JoinPoint is the view of an intercepted call handed to one advice.
type JoinPoint struct {
	// Args are the call arguments as passed to Invoke. Proceed forwards them,
	// so an advice may replace them before proceeding.
	Args []any

	inv *invocation
	pos int
}

// ID identifies the invocation; every advice of one call sees the same ID
func (jp *JoinPoint) ID() uuid.UUID { return jp.inv.id }

// Signature is the signature of the invoked method
func (jp *JoinPoint) Signature() pointcut.MethodSignature { return jp.inv.method.sig }

// Target is the proxied value
func (jp *JoinPoint) Target() any { return jp.inv.target }

// Binding is the binding whose advice received this join point
func (jp *JoinPoint) Binding() *Binding { return jp.inv.chain[jp.pos] }

// State reports where the invocation currently is in its lifecycle
func (jp *JoinPoint) State() State { return jp.inv.state() }

// Proceed runs the remaining advice chain and finally the target method.
// The context passed here is the one the target receives.
func (jp *JoinPoint) Proceed(ctx context.Context) (any, error) {
	return jp.inv.proceed(ctx, jp.pos+1, jp.Args)
}

func (jp *JoinPoint) String() string {
	return jp.inv.method.sig.String()
}

// invocation is the state shared by all join points of one call
type invocation struct {
	id     uuid.UUID
	proxy  *Proxy
	target any
	method *method
	chain  []*Binding
	stage  atomic.Int32
}

func newInvocation(p *Proxy, m *method, chain []*Binding) *invocation {
	inv := &invocation{
		id:     uuid.New(),
		proxy:  p,
		target: p.info.Target,
		method: m,
	}
	inv.transition(StateCreated)
	inv.chain = chain
	inv.transition(StateChainBuilt)
	return inv
}

func (inv *invocation) state() State { return State(inv.stage.Load()) }

func (inv *invocation) transition(to State) {
	inv.stage.Store(int32(to))
	inv.proxy.logger.Trace().
		Str("id", inv.id.String()).
		Str("method", inv.method.sig.Name).
		Stringer("state", to).
		Msg("join point state")
}

func (inv *invocation) run(ctx context.Context, args []any) (result any, err error) {
	inv.transition(StateRunning)
	failed := true
	defer func() {
		// also reached while a panic unwinds; the panic keeps propagating
		if failed {
			inv.transition(StateFailed)
		}
	}()

	result, err = inv.proceed(ctx, 0, args)
	failed = err != nil
	if !failed {
		inv.transition(StateCompleted)
	}
	return result, err
}

func (inv *invocation) proceed(ctx context.Context, pos int, args []any) (any, error) {
	for ; pos < len(inv.chain); pos++ {
		b := inv.chain[pos]
		jp := &JoinPoint{Args: args, inv: inv, pos: pos}
		if b.Condition != nil {
			ok, err := b.Condition.Eval(jp)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
		}
		return b.Advice(ctx, jp)
	}
	return inv.method.invoke(ctx, args)
}
