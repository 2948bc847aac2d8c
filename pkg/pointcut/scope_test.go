package pointcut

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOrderScope(t *testing.T) *Scope {
	t.Helper()

	scope := NewScope()
	require.NoError(t, scope.Define("allOrder", "execution(* kibong.aop.order..*(..))"))
	require.NoError(t, scope.Define("allService", "execution(* *..*Service.*(..))"))
	require.NoError(t, scope.Define("allOrderAndService", "allOrder() && allService()"))
	return scope
}

func TestScopeResolvesReferences(t *testing.T) {
	scope := newOrderScope(t)

	orderService := MethodSignature{DeclaringType: "kibong.aop.order.OrderService", Name: "OrderItem", Params: []string{"string"}}
	orderRepository := MethodSignature{DeclaringType: "kibong.aop.order.OrderRepository", Name: "Save", Params: []string{"string"}}

	p, err := scope.Resolve("allOrderAndService")
	require.NoError(t, err)
	assert.True(t, p.Matches(orderService))
	assert.False(t, p.Matches(orderRepository))

	p, err = scope.Compile("allOrder() && !allService()")
	require.NoError(t, err)
	assert.False(t, p.Matches(orderService))
	assert.True(t, p.Matches(orderRepository))
	assert.Equal(t, "(allOrder() && !allService())", p.Canonical())
	assert.Len(t, p.Patterns(), 2)
}

func TestScopeCachesCompiledPointcuts(t *testing.T) {
	scope := newOrderScope(t)

	first, err := scope.Compile("allOrder()")
	require.NoError(t, err)
	second, err := scope.Compile("allOrder()")
	require.NoError(t, err)

	assert.Same(t, first, second)
	stats := scope.Stats()
	assert.Equal(t, 1, stats.Size)
	assert.EqualValues(t, 1, stats.Hits)
}

func TestScopeDefineErrors(t *testing.T) {
	scope := newOrderScope(t)

	err := scope.Define("allOrder", "execution(* *(..))")
	assert.ErrorContains(t, err, "already registered")

	err = scope.Define("", "execution(* *(..))")
	assert.ErrorContains(t, err, "cannot be empty")

	err = scope.Define("not-an-ident", "execution(* *(..))")
	assert.ErrorContains(t, err, "not a valid identifier")

	err = scope.Define("broken", "execution(* *(..)")
	var perr *ParseError
	assert.ErrorAs(t, err, &perr)

	assert.Equal(t, []string{"allOrder", "allService", "allOrderAndService"}, scope.Names())
}

func TestScopeUnknownAndCyclicReferences(t *testing.T) {
	scope := NewScope()
	scope.MustDefine("first", "second()").MustDefine("second", "first()")
	scope.MustDefine("dangling", "missing() || execution(* *(..))")

	_, err := scope.Compile("first()")
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "cyclic pointcut reference", perr.Msg)

	_, err = scope.Compile("missing()")
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "unknown pointcut reference", perr.Msg)
	assert.Equal(t, "missing()", perr.Offending)

	_, err = scope.Resolve("dangling")
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Msg, "pointcut dangling() is invalid")

	_, err = scope.Resolve("nope")
	assert.ErrorContains(t, err, "not defined")

	err = scope.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pointcut first")
	assert.Contains(t, err.Error(), "pointcut dangling")
}

func TestScopeValidateSucceeds(t *testing.T) {
	assert.NoError(t, newOrderScope(t).Validate())
}

func TestScopeClone(t *testing.T) {
	scope := newOrderScope(t)
	clone := scope.Clone()
	require.NoError(t, clone.Define("extra", "allOrder() || allService()"))

	assert.Equal(t, []string{"allOrder", "allService", "allOrderAndService", "extra"}, clone.Names())
	assert.Equal(t, []string{"allOrder", "allService", "allOrderAndService"}, scope.Names())
	_, err := clone.Resolve("extra")
	assert.NoError(t, err)
	assert.Equal(t, CacheStats{}, scope.Stats())
}
