package weave

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/toyz/weave/pkg/pointcut"
)

// Binding attaches an advice to the methods selected by a pointcut
type Binding struct {
	// Name is used in diagnostics only
	Name string

	// Pointcut selects the methods the advice applies to
	Pointcut *pointcut.Pointcut

	// Advice is the around advice
	Advice Advice

	// Order positions the binding in a chain; lower values wrap higher ones
	Order int

	// Condition, when set, is evaluated per call; the advice is skipped when
	// it yields false
	Condition *Condition
}

// BindingOption configures a Binding
type BindingOption func(*Binding)

// WithOrder sets the binding order
func WithOrder(order int) BindingOption {
	return func(b *Binding) { b.Order = order }
}

// WithName names the binding
func WithName(name string) BindingOption {
	return func(b *Binding) { b.Name = name }
}

// When guards the binding with a runtime condition
func When(c *Condition) BindingOption {
	return func(b *Binding) { b.Condition = c }
}

// NewBinding creates a binding of advice to p
func NewBinding(p *pointcut.Pointcut, advice Advice, opts ...BindingOption) *Binding {
	b := &Binding{Pointcut: p, Advice: advice}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Matches reports whether the binding applies to sig
func (b *Binding) Matches(sig pointcut.MethodSignature) bool {
	return pointcut.Matches(b.Pointcut, sig)
}

func (b *Binding) String() string {
	var sb strings.Builder
	if b.Name != "" {
		sb.WriteString(b.Name)
		sb.WriteString(" ")
	}
	fmt.Fprintf(&sb, "[order %d] %s", b.Order, b.Pointcut)
	if b.Condition != nil {
		fmt.Fprintf(&sb, " when %s", b.Condition)
	}
	return sb.String()
}

// sortBindings orders bindings by Order, keeping registration order for ties.
// Nil entries and bindings without advice are dropped.
func sortBindings(bindings []*Binding) []*Binding {
	sorted := make([]*Binding, 0, len(bindings))
	for _, b := range bindings {
		if b != nil && b.Advice != nil {
			sorted = append(sorted, b)
		}
	}
	slices.SortStableFunc(sorted, func(a, b *Binding) int { return cmp.Compare(a.Order, b.Order) })
	return sorted
}
