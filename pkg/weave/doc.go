// Package weave dispatches method calls through chains of around advice.
//
// A Proxy wraps a target value together with a description of its methods
// (see Describe) and an ordered list of bindings. Each Binding pairs a compiled
// pointcut with an Advice. When a method is invoked through the proxy, every
// binding whose pointcut matches the method signature takes part in the call:
//
//	info, _ := weave.Describe(impl, weave.Implements((*member.Service)(nil)))
//	proxy := weave.NewProxy(info,
//		weave.NewBinding(pointcut.MustCompile("execution(* *..*Service.*(..))"), weave.Trace(logger)),
//	)
//	greeting, err := weave.Call[string](ctx, proxy, "Hello", "kibong")
//
// Bindings are sorted by Order, registration order breaking ties. The first
// binding is the outermost one: its code before Proceed runs first and its
// code after Proceed runs last. An advice that never calls Proceed short
// circuits the call.
//
// Errors returned by the target reach the caller unchanged unless an advice
// replaces them. Panics are never recovered.
package weave
