package pointcut

import (
	"errors"
	"fmt"

	"github.com/alecthomas/participle/v2"
)

// ParseError reports a malformed pointcut expression. It is the only error kind the
// package produces; matching never fails.
type ParseError struct {
	Expression string // full expression being compiled
	Offending  string // substring the parser rejected
	Offset     int    // byte offset of Offending within Expression
	Msg        string // what went wrong
	Hint       string // suggested fix
	Cause      error  // underlying parser error, if any
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("invalid pointcut %q: %s at offset %d", e.Expression, e.Msg, e.Offset)
	if e.Offending != "" {
		msg += fmt.Sprintf(" near %q", e.Offending)
	}
	if e.Hint != "" {
		msg += ". " + e.Hint
	}
	return msg
}

func (e *ParseError) Unwrap() error      { return e.Cause }
func (e *ParseError) Suggestion() string { return e.Hint }

// newParseError builds a ParseError pointing at expr[offset:offset+length]
func newParseError(expr string, offset, length int, msg, hint string) *ParseError {
	offset = max(0, min(offset, len(expr)))
	end := min(len(expr), offset+max(length, 0))
	return &ParseError{
		Expression: expr,
		Offending:  expr[offset:end],
		Offset:     offset,
		Msg:        msg,
		Hint:       hint,
	}
}

// fromParticiple converts a participle failure into a ParseError
func fromParticiple(expr string, err error) *ParseError {
	var perr participle.Error
	if !errors.As(err, &perr) {
		return &ParseError{Expression: expr, Offset: len(expr), Msg: err.Error(), Cause: err}
	}

	pos := perr.Position()
	offending := offendingToken(expr, pos.Offset)
	pe := newParseError(expr, pos.Offset, len(offending), perr.Message(), hintFor(expr, pos.Offset))
	pe.Cause = err
	return pe
}

// offendingToken returns the run of non-space characters starting at offset
func offendingToken(expr string, offset int) string {
	if offset >= len(expr) {
		return ""
	}
	end := offset
	for end < len(expr) && expr[end] != ' ' && expr[end] != '\t' {
		end++
		if expr[end-1] == '(' || expr[end-1] == ')' || expr[end-1] == ',' {
			break
		}
	}
	return expr[offset:end]
}

func hintFor(expr string, offset int) string {
	switch {
	case offset >= len(expr):
		return "expression ended early; check for a missing parameter list or designator"
	case expr[offset] == '(':
		return "expected a return type and a method name before the parameter list"
	case expr[offset] == ')':
		return "a designator or parameter is missing before ')'"
	default:
		return "expected execution(<ret> <type>.<method>(<params>)), within(<type>) or name()"
	}
}

// checkParens reports the first unbalanced parenthesis in expr
func checkParens(expr string) *ParseError {
	var open []int
	for i, r := range expr {
		switch r {
		case '(':
			open = append(open, i)
		case ')':
			if len(open) == 0 {
				return newParseError(expr, i, 1, "unbalanced parentheses", "remove the extra ')'")
			}
			open = open[:len(open)-1]
		}
	}
	if len(open) > 0 {
		at := open[len(open)-1]
		return newParseError(expr, at, len(expr)-at, "unbalanced parentheses", "add the missing ')'")
	}
	return nil
}
