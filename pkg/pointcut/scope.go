package pointcut

import (
	"errors"
	"fmt"
	"go/token"

	"github.com/toyz/weave/internal/utils"
)

// Scope holds named pointcut definitions so that expressions can refer to them as
// name(), and caches compiled expressions. Definitions cannot be replaced once made,
// which keeps cached results valid. A Scope is safe for concurrent use.
type Scope struct {
	definitions *utils.BaseRegistry[string, string]
	compiled    *utils.Cache[string, *Pointcut]
}

// NewScope creates an empty scope
func NewScope() *Scope {
	definitions := utils.NewBaseRegistry[string, string]("pointcut", "pointcut name")
	definitions.SetValidator(utils.ChainValidators[string, string](
		utils.NotEmptyKeyValidator[string]("pointcut name"),
		func(name, _ string, _ map[string]string) error {
			if !token.IsIdentifier(name) {
				return fmt.Errorf("pointcut name %q is not a valid identifier", name)
			}
			return nil
		},
		utils.NoDuplicateValidator[string, string]("pointcut"),
	))

	return &Scope{
		definitions: definitions,
		compiled:    utils.NewCache[string, *Pointcut](),
	}
}

// Define registers a named pointcut. The expression is checked for syntax now;
// references inside it are resolved when it is first compiled.
func (s *Scope) Define(name, expression string) error {
	if _, perr := parseExpression(expression); perr != nil {
		return perr
	}
	return s.definitions.Register(name, expression)
}

// MustDefine is like Define but panics on error
func (s *Scope) MustDefine(name, expression string) *Scope {
	if err := s.Define(name, expression); err != nil {
		panic(err)
	}
	return s
}

// Lookup returns the source expression of a named pointcut
func (s *Scope) Lookup(name string) (string, bool) {
	return s.definitions.Get(name)
}

// Names lists the defined pointcuts in definition order
func (s *Scope) Names() []string {
	return s.definitions.List()
}

// Compile parses expression, resolving name() references against the scope.
// Successful compilations are cached by expression text.
func (s *Scope) Compile(expression string) (*Pointcut, error) {
	return s.compiled.GetOrCompute(expression, func(expr string) (*Pointcut, error) {
		return compile(expr, s)
	})
}

// Resolve compiles the named pointcut
func (s *Scope) Resolve(name string) (*Pointcut, error) {
	if !s.definitions.Has(name) {
		return nil, fmt.Errorf("pointcut %q is not defined", name)
	}
	return s.Compile(name + "()")
}

// Validate compiles every definition and reports all failures together
func (s *Scope) Validate() error {
	var errs []error
	for _, name := range s.Names() {
		if _, err := s.Resolve(name); err != nil {
			errs = append(errs, fmt.Errorf("pointcut %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// CacheStats describes the compile cache of a Scope
type CacheStats struct {
	Size   int
	Hits   int64
	Misses int64
}

// Stats exposes compile cache statistics
func (s *Scope) Stats() CacheStats {
	stats := s.compiled.GetStats()
	return CacheStats{Size: stats.Size, Hits: stats.Hits, Misses: stats.Misses}
}

// Clone returns a scope with the same definitions and an empty compile cache.
// Definitions added to either scope afterwards are not seen by the other.
func (s *Scope) Clone() *Scope {
	clone := NewScope()
	for _, name := range s.Names() {
		expression, _ := s.definitions.Get(name)
		_ = clone.definitions.Register(name, expression)
	}
	return clone
}
