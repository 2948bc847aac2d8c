package pointcut

import (
	"strings"
)

// ParseSignature reads a concrete method signature written as
//
//	[public|private] <return> <type path>.<method>(<param>, ...)
//
// for example "string kibong.aop.member.MemberServiceImpl.hello(string)". The
// return type "void" denotes a method without a non-error result. The modifier,
// when present, must agree with the method name's capitalisation.
func ParseSignature(text string) (MethodSignature, error) {
	if perr := checkParens(text); perr != nil {
		return MethodSignature{}, perr
	}
	tree, err := signatureParser.ParseString("", text)
	if err != nil {
		return MethodSignature{}, fromParticiple(text, err)
	}

	b := &builder{expression: text}
	typ, name, perr := b.methodPath(tree.Path)
	if perr != nil {
		return MethodSignature{}, perr
	}
	for _, seg := range typ {
		if strings.Contains(seg, Wildcard) || seg == AnyDepth {
			return MethodSignature{}, newParseError(text, tree.Path[0].Pos.Offset, len(typ.String()),
				"wildcard in a concrete signature", "spell out the declaring type")
		}
	}
	if strings.Contains(name, Wildcard) {
		return MethodSignature{}, newParseError(text, tree.Path[len(tree.Path)-1].Pos.Offset, len(name),
			"wildcard in a concrete signature", "spell out the method name")
	}

	params, perr := b.params(tree.Params, false)
	if perr != nil {
		return MethodSignature{}, perr
	}

	sig := MethodSignature{
		DeclaringType: typ.String(),
		Name:          name,
		Params:        make([]string, len(params)),
		Return:        strings.Join(tree.Return, ""),
	}
	for i, p := range params {
		sig.Params[i] = string(p)
	}
	if sig.Return == VoidReturn {
		sig.Return = ""
	}

	if mod := Modifier(tree.Modifier); mod != AnyVisibility && !mod.matches(sig.Exported()) {
		return MethodSignature{}, newParseError(text, 0, len(tree.Modifier), "modifier contradicts method name",
			"exported (capitalised) methods are public, others private")
	}
	return sig, nil
}

// MustParseSignature is like ParseSignature but panics on error
func MustParseSignature(text string) MethodSignature {
	sig, err := ParseSignature(text)
	if err != nil {
		panic(err)
	}
	return sig
}
