package cli

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/toyz/weave/internal/demo"
	"github.com/toyz/weave/internal/errors"
	"github.com/toyz/weave/pkg/pointcut"
	"github.com/toyz/weave/pkg/weave"
)

// TraceAdvice is the name manifests use for weave.Trace
const TraceAdvice = "trace"

// builtinAdvice is the advice a manifest may reference by name
func builtinAdvice(logger zerolog.Logger) map[string]weave.Advice {
	return map[string]weave.Advice{
		TraceAdvice:    weave.Trace(logger),
		demo.LogAdvice: demo.Log(logger),
		demo.TxAdvice:  demo.Tx(logger),
	}
}

// knownAdvice returns the names of the built-in advice as a set
func knownAdvice() map[string]bool {
	known := make(map[string]bool)
	for name := range builtinAdvice(zerolog.Nop()) {
		known[name] = true
	}
	return known
}

// newWeaver creates a weaver with every built-in advice registered
func (a *app) newWeaver() (*weave.Weaver, error) {
	w := weave.NewWeaver(weave.WithLogger(a.logger))
	advice := builtinAdvice(a.logger)

	names := make([]string, 0, len(advice))
	for name := range advice {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := w.RegisterAdvice(name, advice[name]); err != nil {
			return nil, errors.WrapRegisterError("advice", name, err)
		}
	}
	return w, nil
}

// scope defines the configured named pointcuts
func (a *app) scope() (*pointcut.Scope, error) {
	scope := pointcut.NewScope()
	var errs *errors.MultipleErrors
	for _, name := range a.cfg.PointcutNames() {
		if err := scope.Define(name, a.cfg.Pointcuts[name]); err != nil {
			errors.AddToMultiple(&errs, errors.WrapPointcutError("pointcut "+name, err))
		}
	}
	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	return scope, nil
}
