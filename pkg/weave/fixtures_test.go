package weave

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

type MemberService interface {
	Hello(param string) string
}

type MemberServiceImpl struct{}

func (MemberServiceImpl) Hello(param string) string    { return "ok" }
func (MemberServiceImpl) Internal(param string) string { return "ok" }

var errOrder = errors.New("order failed")

type OrderService struct {
	calls atomic.Int32
}

func (s *OrderService) OrderItem(ctx context.Context, itemID string) (string, error) {
	s.calls.Add(1)
	if itemID == "ex" {
		return "", errOrder
	}
	return "ordered " + itemID, nil
}

func (s *OrderService) Explode() { panic("boom") }

func (s *OrderService) Split(sep string, parts ...string) (int, string, error) {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += sep
		}
		out += p
	}
	return len(parts), out, nil
}

func (s *OrderService) Lookup(items map[string]int, key string) int { return items[key] }

// recorder collects the events of one or more calls
type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(event string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func (r *recorder) around(name string) Advice {
	return func(ctx context.Context, jp *JoinPoint) (any, error) {
		r.add(name + " before")
		result, err := jp.Proceed(ctx)
		r.add(name + " after")
		return result, err
	}
}

func describeMember(t interface{ Fatalf(string, ...any) }) *TypeInfo {
	info, err := Describe(MemberServiceImpl{},
		Named("kibong.aop.member.MemberServiceImpl"),
		ImplementsAs("kibong.aop.member.MemberService", (*MemberService)(nil)),
	)
	if err != nil {
		t.Fatalf("describe: %v", err)
	}
	return info
}

func describeOrder(t interface{ Fatalf(string, ...any) }, svc *OrderService) *TypeInfo {
	info, err := Describe(svc, Named("kibong.aop.order.OrderService"))
	if err != nil {
		t.Fatalf("describe: %v", err)
	}
	return info
}
