package weave

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Condition is a boolean expr-lang expression evaluated against a join point.
// The expression sees
//
//	method     the method name
//	typeName   the declaring type's qualified name
//	signature  the full method signature
//	args       the call arguments
//
// for example `method == "OrderItem" && args[0] != "ex"`.
type Condition struct {
	source  string
	program *vm.Program
}

func conditionEnv(method, typ, signature string, args []any) map[string]any {
	return map[string]any{
		"method":    method,
		"typeName":  typ,
		"signature": signature,
		"args":      args,
	}
}

// NewCondition compiles source into a Condition
func NewCondition(source string) (*Condition, error) {
	program, err := expr.Compile(source, expr.Env(conditionEnv("", "", "", []any{})), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("invalid condition %q: %w", source, err)
	}
	return &Condition{source: source, program: program}, nil
}

// MustCondition is like NewCondition but panics on error
func MustCondition(source string) *Condition {
	c, err := NewCondition(source)
	if err != nil {
		panic(err)
	}
	return c
}

// Eval evaluates the condition for jp
func (c *Condition) Eval(jp *JoinPoint) (bool, error) {
	sig := jp.Signature()
	out, err := vm.Run(c.program, conditionEnv(sig.Name, sig.DeclaringType, sig.String(), jp.Args))
	if err != nil {
		return false, fmt.Errorf("condition %q: %w", c.source, err)
	}
	result, _ := out.(bool)
	return result, nil
}

func (c *Condition) String() string { return c.source }
