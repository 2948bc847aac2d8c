// Package demo wires the member and order sample services behind weave proxies
// carrying the log and transaction aspects.
package demo

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/toyz/weave/internal/demo/member"
	"github.com/toyz/weave/internal/demo/order"
	"github.com/toyz/weave/pkg/pointcut"
	"github.com/toyz/weave/pkg/weave"
)

// App holds the proxied sample services
type App struct {
	weaver  *weave.Weaver
	proxies []*weave.Proxy

	// Orders places orders through the proxied OrderService, which in turn
	// saves through the proxied OrderRepository
	Orders order.Service

	// Members is the proxy of MemberServiceImpl
	Members *weave.Proxy
}

// MethodInfo lists the bindings applied to one proxied method
type MethodInfo struct {
	Signature pointcut.MethodSignature
	Bindings  []string
}

// New builds the sample services and wraps them with the demo manifest
func New(logger zerolog.Logger) (*App, error) {
	w := weave.NewWeaver(weave.WithLogger(logger))
	if err := w.RegisterAdvice(LogAdvice, Log(logger)); err != nil {
		return nil, err
	}
	if err := w.RegisterAdvice(TxAdvice, Tx(logger)); err != nil {
		return nil, err
	}
	if err := w.Apply(Manifest()); err != nil {
		return nil, err
	}

	app := &App{weaver: w}

	repoProxy, err := w.Wrap(order.NewOrderRepository(), weave.Implements((*order.Repository)(nil)))
	if err != nil {
		return nil, err
	}
	serviceProxy, err := w.Wrap(order.NewOrderService(repository{repoProxy}), weave.Implements((*order.Service)(nil)))
	if err != nil {
		return nil, err
	}
	memberProxy, err := w.Wrap(&member.MemberServiceImpl{}, weave.Implements((*member.MemberService)(nil)))
	if err != nil {
		return nil, err
	}

	app.proxies = []*weave.Proxy{serviceProxy, repoProxy, memberProxy}
	app.Orders = service{serviceProxy}
	app.Members = memberProxy
	return app, nil
}

// Weaver returns the weaver holding the demo bindings
func (a *App) Weaver() *weave.Weaver { return a.weaver }

// Methods reports, for every method of every proxy, the bindings applied to it
func (a *App) Methods() []MethodInfo {
	var infos []MethodInfo
	for _, p := range a.proxies {
		for _, sig := range p.Type().Signatures() {
			info := MethodInfo{Signature: sig}
			for _, b := range p.Matching(sig.Name) {
				info.Bindings = append(info.Bindings, b.Name)
			}
			infos = append(infos, info)
		}
	}
	return infos
}

// repository forwards order.Repository calls to its proxy
type repository struct{ proxy *weave.Proxy }

func (r repository) Save(ctx context.Context, itemID string) (string, error) {
	return weave.Call[string](ctx, r.proxy, "Save", itemID)
}

// service forwards order.Service calls to its proxy
type service struct{ proxy *weave.Proxy }

func (s service) OrderItem(ctx context.Context, itemID string) error {
	_, err := s.proxy.Invoke(ctx, "OrderItem", itemID)
	return err
}
