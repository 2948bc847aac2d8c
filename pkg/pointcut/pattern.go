package pointcut

import (
	"strings"
)

// Wildcard matches any single name, type or parameter
const Wildcard = "*"

// AnyDepth is the type path segment matching zero or more package levels, and the
// parameter token matching zero or more parameters
const AnyDepth = ".."

// Modifier restricts matches by visibility
type Modifier string

const (
	AnyVisibility Modifier = ""
	Public        Modifier = "public"
	Private       Modifier = "private"
)

// matches reports whether a method with the given exported-ness satisfies m
func (m Modifier) matches(exported bool) bool {
	switch m {
	case Public:
		return exported
	case Private:
		return !exported
	default:
		return true
	}
}

// glob matches s against a pattern where '*' stands for any run of characters
func glob(pattern, s string) bool {
	if pattern == Wildcard {
		return true
	}
	if !strings.Contains(pattern, Wildcard) {
		return pattern == s
	}
	return globFunc(pattern, s, func(int) bool { return true })
}

// globFunc is glob with wild deciding which '*' positions of pattern are
// wildcards; the others match a literal '*'
func globFunc(pattern, s string, wild func(int) bool) bool {
	var (
		p, i       int
		star       = -1
		starSample = 0
	)
	for i < len(s) {
		switch {
		case p < len(pattern) && pattern[p] == '*' && wild(p):
			star = p
			starSample = i
			p++
		case p < len(pattern) && pattern[p] == s[i]:
			p++
			i++
		case star >= 0:
			p = star + 1
			starSample++
			i = starSample
		default:
			return false
		}
	}
	for p < len(pattern) && pattern[p] == '*' && wild(p) {
		p++
	}
	return p == len(pattern)
}

// NamePattern matches method names and single type path segments
type NamePattern string

// Match reports whether name satisfies the pattern. A trailing '*' is a prefix
// match, a leading '*' a suffix match, an inner '*' requires both literals in order.
func (n NamePattern) Match(name string) bool {
	return glob(string(n), name)
}

// IsWildcard reports whether the pattern matches every name
func (n NamePattern) IsWildcard() bool {
	return n == Wildcard
}

// TypeNamePattern matches parameter and return type names. A '*' where a Go type
// may begin and directly followed by a type denotes a pointer, so "*order.Item"
// and "[]*order.Item" only match pointer types; any other '*' is a wildcard.
type TypeNamePattern string

// Match reports whether typeName satisfies the pattern
func (t TypeNamePattern) Match(typeName string) bool {
	pattern := string(t)
	switch {
	case pattern == Wildcard:
		return true
	case pattern == VoidReturn:
		return typeName == ""
	case !strings.Contains(pattern, Wildcard):
		return pattern == typeName
	default:
		return globFunc(pattern, typeName, func(i int) bool {
			return !isPointerStar(pattern, i)
		})
	}
}

// isPointerStar reports whether the '*' at i is a pointer marker
func isPointerStar(pattern string, i int) bool {
	if i+1 >= len(pattern) {
		return false
	}
	next := pattern[i+1]
	if next != '[' && next != '_' && !isLetter(next) {
		return false
	}
	if i == 0 || strings.HasSuffix(pattern[:i], AnyDepth+".") {
		return true
	}
	switch pattern[i-1] {
	case ']', '(', ',', ' ':
		return true
	}
	return false
}

func isLetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

// TypePattern matches a dotted, fully-qualified type name segment by segment.
// A nil or empty TypePattern matches every declaring type.
type TypePattern []string

// IsAny reports whether the pattern places no restriction on the type
func (t TypePattern) IsAny() bool {
	return len(t) == 0 || (len(t) == 1 && t[0] == Wildcard)
}

// MatchName reports whether a fully-qualified type name fits the pattern
func (t TypePattern) MatchName(qualified string) bool {
	if t.IsAny() {
		return true
	}
	return matchSegments(t, strings.Split(qualified, "."))
}

// MatchDeclaring applies the type pattern to a method. The concrete declaring type
// matches structurally; a supertype only matches when it declares the method itself.
func (t TypePattern) MatchDeclaring(sig MethodSignature) bool {
	if t.MatchName(sig.DeclaringType) {
		return true
	}
	key := sig.Key()
	for _, super := range sig.Supertypes {
		if t.MatchName(super.Name) && super.Declares(key) {
			return true
		}
	}
	return false
}

// String renders the pattern back to dotted form
func (t TypePattern) String() string {
	var b strings.Builder
	for i, seg := range t {
		if seg == AnyDepth {
			b.WriteString(AnyDepth)
			continue
		}
		if i > 0 && t[i-1] != AnyDepth {
			b.WriteByte('.')
		}
		b.WriteString(seg)
	}
	return b.String()
}

func matchSegments(pattern, segments []string) bool {
	if len(pattern) == 0 {
		return len(segments) == 0
	}
	if pattern[0] == AnyDepth {
		for skip := 0; skip <= len(segments); skip++ {
			if matchSegments(pattern[1:], segments[skip:]) {
				return true
			}
		}
		return false
	}
	if len(segments) == 0 {
		return false
	}
	return glob(pattern[0], segments[0]) && matchSegments(pattern[1:], segments[1:])
}

// ParamPatterns is an ordered parameter list pattern. AnyDepth entries match zero
// or more parameters, Wildcard entries exactly one.
type ParamPatterns []TypeNamePattern

// Match reports whether the parameter type list satisfies the pattern
func (p ParamPatterns) Match(params []string) bool {
	if len(p) == 0 {
		return len(params) == 0
	}
	if p[0] == AnyDepth {
		rest := p[1:]
		for skip := 0; skip <= len(params); skip++ {
			if rest.Match(params[skip:]) {
				return true
			}
		}
		return false
	}
	if len(params) == 0 {
		return false
	}
	return p[0].Match(params[0]) && p[1:].Match(params[1:])
}

// String renders the list as it appears inside the parentheses
func (p ParamPatterns) String() string {
	parts := make([]string, len(p))
	for i, param := range p {
		parts[i] = string(param)
	}
	return strings.Join(parts, ", ")
}

// ExecutionPattern is a compiled execution(...) designator. It is immutable and
// safe for concurrent use.
type ExecutionPattern struct {
	Modifier Modifier
	Return   TypeNamePattern
	Type     TypePattern
	Name     NamePattern
	Params   ParamPatterns
}

// Matches evaluates the four sub-patterns and the modifier against sig
func (e *ExecutionPattern) Matches(sig MethodSignature) bool {
	return e.Modifier.matches(sig.Exported()) &&
		e.Return.Match(sig.Return) &&
		e.Name.Match(sig.Name) &&
		e.Params.Match(sig.Params) &&
		e.Type.MatchDeclaring(sig)
}

// String renders the designator in canonical form
func (e *ExecutionPattern) String() string {
	var b strings.Builder
	b.WriteString("execution(")
	if e.Modifier != AnyVisibility {
		b.WriteString(string(e.Modifier))
		b.WriteByte(' ')
	}
	b.WriteString(string(e.Return))
	b.WriteByte(' ')
	if len(e.Type) > 0 {
		b.WriteString(e.Type.String())
		b.WriteByte('.')
	}
	b.WriteString(string(e.Name))
	b.WriteString("(" + e.Params.String() + "))")
	return b.String()
}
