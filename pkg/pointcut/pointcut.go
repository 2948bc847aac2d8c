package pointcut

import (
	"fmt"
	"strings"
)

// Matcher is anything that can select method signatures. *Pointcut and
// *ExecutionPattern both implement it.
type Matcher interface {
	Matches(sig MethodSignature) bool
}

// Matches evaluates m against sig. A nil matcher selects nothing.
func Matches(m Matcher, sig MethodSignature) bool {
	if m == nil {
		return false
	}
	return m.Matches(sig)
}

// Pointcut is a compiled pointcut expression. It never changes after Compile
// returns and may be shared between goroutines.
type Pointcut struct {
	expression string
	root       node
}

// Compile parses a standalone expression. Named references are rejected; use
// Scope.Compile to resolve them.
func Compile(expression string) (*Pointcut, error) {
	return compile(expression, nil)
}

// MustCompile is like Compile but panics on a malformed expression
func MustCompile(expression string) *Pointcut {
	p, err := Compile(expression)
	if err != nil {
		panic(err)
	}
	return p
}

// Matches reports whether the method signature is selected by the pointcut
func (p *Pointcut) Matches(sig MethodSignature) bool {
	return p.root.matches(sig)
}

// String returns the source expression
func (p *Pointcut) String() string {
	return p.expression
}

// Canonical renders the compiled tree with normalised spacing
func (p *Pointcut) Canonical() string {
	return p.root.String()
}

// Patterns returns every execution designator in the tree, including those reached
// through named references, in source order
func (p *Pointcut) Patterns() []*ExecutionPattern {
	var out []*ExecutionPattern
	p.root.collect(&out)
	return out
}

type node interface {
	matches(sig MethodSignature) bool
	collect(out *[]*ExecutionPattern)
	String() string
}

type executionNode struct{ pattern *ExecutionPattern }

func (n executionNode) matches(sig MethodSignature) bool   { return n.pattern.Matches(sig) }
func (n executionNode) collect(out *[]*ExecutionPattern) { *out = append(*out, n.pattern) }
func (n executionNode) String() string                     { return n.pattern.String() }

type withinNode struct{ typ TypePattern }

func (n withinNode) matches(sig MethodSignature) bool { return n.typ.MatchDeclaring(sig) }
func (n withinNode) collect(*[]*ExecutionPattern)     {}
func (n withinNode) String() string                   { return "within(" + n.typ.String() + ")" }

type andNode struct{ left, right node }

func (n andNode) matches(sig MethodSignature) bool {
	return n.left.matches(sig) && n.right.matches(sig)
}
func (n andNode) collect(out *[]*ExecutionPattern) { n.left.collect(out); n.right.collect(out) }
func (n andNode) String() string                   { return "(" + n.left.String() + " && " + n.right.String() + ")" }

type orNode struct{ left, right node }

func (n orNode) matches(sig MethodSignature) bool {
	return n.left.matches(sig) || n.right.matches(sig)
}
func (n orNode) collect(out *[]*ExecutionPattern) { n.left.collect(out); n.right.collect(out) }
func (n orNode) String() string                   { return "(" + n.left.String() + " || " + n.right.String() + ")" }

type notNode struct{ inner node }

func (n notNode) matches(sig MethodSignature) bool   { return !n.inner.matches(sig) }
func (n notNode) collect(out *[]*ExecutionPattern) { n.inner.collect(out) }
func (n notNode) String() string                     { return "!" + n.inner.String() }

// refNode keeps the reference name so Canonical output stays readable
type refNode struct {
	name  string
	inner node
}

func (n refNode) matches(sig MethodSignature) bool   { return n.inner.matches(sig) }
func (n refNode) collect(out *[]*ExecutionPattern) { n.inner.collect(out) }
func (n refNode) String() string                     { return n.name + "()" }

func parseExpression(expression string) (*expressionAST, *ParseError) {
	if strings.TrimSpace(expression) == "" {
		return nil, newParseError(expression, 0, 0, "empty expression",
			"expected execution(...), within(...) or a named reference")
	}
	if perr := checkParens(expression); perr != nil {
		return nil, perr
	}
	tree, err := expressionParser.ParseString("", expression)
	if err != nil {
		return nil, fromParticiple(expression, err)
	}
	return tree, nil
}

func compile(expression string, scope *Scope) (*Pointcut, error) {
	tree, perr := parseExpression(expression)
	if perr != nil {
		return nil, perr
	}

	b := &builder{expression: expression, scope: scope}
	root, perr := b.or(tree.Or)
	if perr != nil {
		return nil, perr
	}
	return &Pointcut{expression: expression, root: root}, nil
}

// builder turns the participle tree into matcher nodes, resolving references
type builder struct {
	expression string
	scope      *Scope
	resolving  []string
}

func (b *builder) or(a *orAST) (node, *ParseError) {
	left, err := b.and(a.Left)
	if err != nil {
		return nil, err
	}
	for _, r := range a.Right {
		right, err := b.and(r)
		if err != nil {
			return nil, err
		}
		left = orNode{left: left, right: right}
	}
	return left, nil
}

func (b *builder) and(a *andAST) (node, *ParseError) {
	left, err := b.unary(a.Left)
	if err != nil {
		return nil, err
	}
	for _, r := range a.Right {
		right, err := b.unary(r)
		if err != nil {
			return nil, err
		}
		left = andNode{left: left, right: right}
	}
	return left, nil
}

func (b *builder) unary(u *unaryAST) (node, *ParseError) {
	if u.Not != nil {
		inner, err := b.unary(u.Not)
		if err != nil {
			return nil, err
		}
		return notNode{inner: inner}, nil
	}

	p := u.Primary
	switch {
	case p.Execution != nil:
		return b.execution(p.Execution)
	case p.Within != nil:
		typ, err := b.typePath(p.Within.Path)
		if err != nil {
			return nil, err
		}
		return withinNode{typ: typ}, nil
	case p.Reference != nil:
		return b.reference(p.Reference)
	default:
		return b.or(p.Group)
	}
}

func (b *builder) execution(e *executionAST) (node, *ParseError) {
	typ, name, err := b.methodPath(e.Path)
	if err != nil {
		return nil, err
	}

	params, err := b.params(e.Params, true)
	if err != nil {
		return nil, err
	}

	return executionNode{pattern: &ExecutionPattern{
		Modifier: Modifier(e.Modifier),
		Return:   TypeNamePattern(strings.Join(e.Return, "")),
		Type:     typ,
		Name:     NamePattern(name),
		Params:   params,
	}}, nil
}

func (b *builder) reference(r *referenceAST) (node, *ParseError) {
	name := r.Name
	at := r.Pos.Offset
	span := len(name) + 2

	switch {
	case name == "execution" || name == "within":
		return nil, newParseError(b.expression, at, span, "designator without a pattern",
			fmt.Sprintf("write %s(<pattern>)", name))
	case b.scope == nil:
		return nil, newParseError(b.expression, at, span, "unresolved pointcut reference",
			"named pointcuts can only be used through a Scope")
	}
	for _, active := range b.resolving {
		if active == name {
			return nil, newParseError(b.expression, at, span, "cyclic pointcut reference",
				fmt.Sprintf("%s() refers back to itself via %s", name, strings.Join(b.resolving, " -> ")))
		}
	}

	source, ok := b.scope.Lookup(name)
	if !ok {
		return nil, newParseError(b.expression, at, span, "unknown pointcut reference",
			fmt.Sprintf("define %q in the scope before referencing it", name))
	}
	tree, perr := parseExpression(source)
	if perr != nil {
		return nil, b.nested(name, at, span, perr)
	}

	b.resolving = append(b.resolving, name)
	defer func() { b.resolving = b.resolving[:len(b.resolving)-1] }()

	inner := &builder{expression: source, scope: b.scope, resolving: b.resolving}
	root, perr := inner.or(tree.Or)
	if perr != nil {
		if perr.Msg == "cyclic pointcut reference" {
			perr = newParseError(b.expression, at, span, perr.Msg, perr.Hint)
			return nil, perr
		}
		return nil, b.nested(name, at, span, perr)
	}
	return refNode{name: name, inner: root}, nil
}

// nested reports an error inside a referenced pointcut against the outer expression
func (b *builder) nested(name string, at, span int, cause *ParseError) *ParseError {
	perr := newParseError(b.expression, at, span,
		fmt.Sprintf("pointcut %s() is invalid: %s", name, cause.Msg), cause.Hint)
	perr.Cause = cause
	return perr
}

// methodPath splits the dotted path in front of the parameter list into the type
// pattern and the method name
func (b *builder) methodPath(tokens []pathToken) (TypePattern, string, *ParseError) {
	if err := b.checkAlternation(tokens); err != nil {
		return nil, "", err
	}

	last := tokens[len(tokens)-1]
	if last.Name == "" {
		start := tokens[0].Pos.Offset
		end := last.Pos.Offset + len(last.text())
		return nil, "", newParseError(b.expression, start, end-start, "empty method name",
			"a method name or '*' must follow the last separator")
	}
	if err := b.checkName(last); err != nil {
		return nil, "", err
	}

	var typ TypePattern
	for _, tok := range tokens[:len(tokens)-1] {
		switch {
		case tok.Ellipsis:
			typ = append(typ, AnyDepth)
		case tok.Name != "":
			if err := b.checkName(tok); err != nil {
				return nil, "", err
			}
			typ = append(typ, tok.Name)
		}
	}
	if len(typ) > 0 && typ[len(typ)-1] == AnyDepth {
		typ = append(typ, Wildcard)
	}
	return typ, last.Name, nil
}

// typePath converts a within(...) path. A trailing ".." selects every type below
// the package.
func (b *builder) typePath(tokens []pathToken) (TypePattern, *ParseError) {
	if err := b.checkAlternation(tokens); err != nil {
		return nil, err
	}
	last := tokens[len(tokens)-1]
	if last.Dot {
		return nil, newParseError(b.expression, last.Pos.Offset, 1, "empty type name",
			"a type name or '*' must follow the last '.'")
	}

	var typ TypePattern
	for _, tok := range tokens {
		switch {
		case tok.Ellipsis:
			typ = append(typ, AnyDepth)
		case tok.Name != "":
			if err := b.checkName(tok); err != nil {
				return nil, err
			}
			typ = append(typ, tok.Name)
		}
	}
	if typ[len(typ)-1] == AnyDepth {
		typ = append(typ, Wildcard)
	}
	return typ, nil
}

// checkAlternation ensures names and separators alternate, starting with a name
func (b *builder) checkAlternation(tokens []pathToken) *ParseError {
	for i, tok := range tokens {
		wantName := i%2 == 0
		switch {
		case wantName && tok.Name == "":
			return newParseError(b.expression, tok.Pos.Offset, len(tok.text()), "misplaced separator",
				"a path segment must start with a name or '*'")
		case !wantName && tok.Name != "":
			return newParseError(b.expression, tok.Pos.Offset, len(tok.Name), "missing separator",
				"separate path segments with '.' or '..'")
		}
	}
	return nil
}

func (b *builder) checkName(tok pathToken) *ParseError {
	if strings.ContainsAny(tok.Name, "[]{}") {
		return newParseError(b.expression, tok.Pos.Offset, len(tok.Name), "invalid name in path",
			"type and method names may only contain letters, digits, '_' and '*'")
	}
	return nil
}

// params converts parameter tokens. allowRest is false for concrete signatures.
func (b *builder) params(params []*paramAST, allowRest bool) (ParamPatterns, *ParseError) {
	out := make(ParamPatterns, 0, len(params))
	for _, p := range params {
		if p.Rest {
			if !allowRest {
				return nil, newParseError(b.expression, p.Pos.Offset, 2, "'..' in a concrete signature",
					"list the actual parameter types")
			}
			out = append(out, AnyDepth)
			continue
		}
		name := strings.Join(p.Type, "")
		if p.Variadic {
			name = "..." + name
		}
		out = append(out, TypeNamePattern(name))
	}
	return out, nil
}

func (t pathToken) text() string {
	switch {
	case t.Dot:
		return "."
	case t.Ellipsis:
		return AnyDepth
	default:
		return t.Name
	}
}
