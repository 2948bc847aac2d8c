package weave

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"github.com/toyz/weave/internal/utils"
	"github.com/toyz/weave/pkg/pointcut"
)

// Manifest is the declarative form of a set of bindings
type Manifest struct {
	// Pointcuts maps names to pointcut expressions
	Pointcuts map[string]string

	// Aspects bind registered advice to pointcuts
	Aspects []Aspect
}

// Aspect binds the advice registered under Advice to a pointcut expression,
// which may reference the manifest's named pointcuts
type Aspect struct {
	Name      string
	Advice    string
	Pointcut  string
	Order     int
	Condition string
}

// Weaver keeps named advice, named pointcuts and the bindings built from them,
// and wraps targets into proxies carrying those bindings.
type Weaver struct {
	advice *utils.BaseRegistry[string, Advice]
	scope  *pointcut.Scope
	logger zerolog.Logger

	applyMu  sync.Mutex
	mu       sync.RWMutex
	bindings []*Binding
}

// WeaverOption configures a Weaver
type WeaverOption func(*Weaver)

// WithLogger sets the logger used by the weaver and its proxies
func WithLogger(logger zerolog.Logger) WeaverOption {
	return func(w *Weaver) { w.logger = logger }
}

// WithScope makes the weaver resolve pointcut references in scope
func WithScope(scope *pointcut.Scope) WeaverOption {
	return func(w *Weaver) { w.scope = scope }
}

// NewWeaver creates an empty weaver. It does not log unless WithLogger is given.
func NewWeaver(opts ...WeaverOption) *Weaver {
	advice := utils.NewBaseRegistry[string, Advice]("advice", "advice name")
	advice.SetValidator(utils.ChainValidators[string, Advice](
		utils.NotEmptyKeyValidator[Advice]("advice name"),
		utils.NoDuplicateValidator[string, Advice]("advice"),
		func(name string, a Advice, _ map[string]Advice) error {
			if a == nil {
				return fmt.Errorf("advice '%s' is nil", name)
			}
			return nil
		},
	))

	w := &Weaver{
		advice: advice,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.scope == nil {
		w.scope = pointcut.NewScope()
	}
	return w
}

// Scope returns the pointcut scope of the weaver
func (w *Weaver) Scope() *pointcut.Scope { return w.scope }

// RegisterAdvice makes advice available to Use and Apply under name
func (w *Weaver) RegisterAdvice(name string, advice Advice) error {
	return w.advice.Register(name, advice)
}

// AdviceNames lists registered advice in registration order
func (w *Weaver) AdviceNames() []string { return w.advice.List() }

// Define adds a named pointcut
func (w *Weaver) Define(name, expression string) error {
	return w.scope.Define(name, expression)
}

// Bind compiles expression in the weaver's scope and binds advice to it
func (w *Weaver) Bind(expression string, advice Advice, opts ...BindingOption) (*Binding, error) {
	if advice == nil {
		return nil, fmt.Errorf("cannot bind nil advice to %q", expression)
	}
	p, err := w.scope.Compile(expression)
	if err != nil {
		return nil, err
	}
	b := NewBinding(p, advice, opts...)

	w.mu.Lock()
	w.bindings = append(w.bindings, b)
	w.mu.Unlock()

	w.logger.Debug().Str("binding", b.String()).Msg("advice bound")
	return b, nil
}

// Use binds the advice registered under adviceName. The binding is named
// after the advice unless an option says otherwise.
func (w *Weaver) Use(adviceName, expression string, opts ...BindingOption) (*Binding, error) {
	advice, err := w.advice.GetOrError(adviceName)
	if err != nil {
		return nil, err
	}
	return w.Bind(expression, advice, append([]BindingOption{WithName(adviceName)}, opts...)...)
}

// Apply defines the manifest's pointcuts and binds its aspects. Pointcuts are
// defined first so aspects may reference any of them. All problems found are
// reported together, and a manifest that fails leaves the weaver unchanged.
func (w *Weaver) Apply(m Manifest) error {
	names := make([]string, 0, len(m.Pointcuts))
	for name := range m.Pointcuts {
		names = append(names, name)
	}
	sort.Strings(names)

	w.applyMu.Lock()
	defer w.applyMu.Unlock()

	staged := w.scope.Clone()
	var errs []error
	for _, name := range names {
		if err := staged.Define(name, m.Pointcuts[name]); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	if err := staged.Validate(); err != nil {
		return err
	}

	pending := make([]*Binding, 0, len(m.Aspects))
	for i, aspect := range m.Aspects {
		b, err := w.aspectBinding(staged, aspect)
		if err != nil {
			errs = append(errs, fmt.Errorf("aspect %d (%s): %w", i, aspect.Advice, err))
			continue
		}
		pending = append(pending, b)
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	for _, name := range names {
		if err := w.scope.Define(name, m.Pointcuts[name]); err != nil {
			return err
		}
	}

	w.mu.Lock()
	w.bindings = append(w.bindings, pending...)
	w.mu.Unlock()

	w.logger.Debug().
		Int("pointcuts", len(names)).
		Int("aspects", len(pending)).
		Msg("manifest applied")
	return nil
}

func (w *Weaver) aspectBinding(scope *pointcut.Scope, aspect Aspect) (*Binding, error) {
	advice, err := w.advice.GetOrError(aspect.Advice)
	if err != nil {
		return nil, err
	}
	p, err := scope.Compile(aspect.Pointcut)
	if err != nil {
		return nil, err
	}

	name := aspect.Name
	if name == "" {
		name = aspect.Advice
	}
	opts := []BindingOption{WithName(name), WithOrder(aspect.Order)}
	if aspect.Condition != "" {
		c, err := NewCondition(aspect.Condition)
		if err != nil {
			return nil, err
		}
		opts = append(opts, When(c))
	}
	return NewBinding(p, advice, opts...), nil
}

// Bindings returns the bindings in registration order
func (w *Weaver) Bindings() []*Binding {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return slices.Clone(w.bindings)
}

// Wrap describes target and returns a proxy carrying the weaver's current
// bindings. Later bindings do not affect proxies already created.
func (w *Weaver) Wrap(target any, opts ...DescribeOption) (*Proxy, error) {
	info, err := Describe(target, opts...)
	if err != nil {
		return nil, err
	}
	return newProxy(info, w.Bindings(), w.logger), nil
}
