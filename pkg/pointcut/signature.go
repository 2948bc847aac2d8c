package pointcut

import (
	"go/token"
	"slices"
	"strings"
)

// MethodKey identifies a method by name and parameter types, independent of the
// type that declares it
type MethodKey struct {
	Name   string
	Params []string
}

// String renders the key as name(param, ...)
func (k MethodKey) String() string {
	return k.Name + "(" + strings.Join(k.Params, ", ") + ")"
}

// Equal reports whether two keys name the same method
func (k MethodKey) Equal(other MethodKey) bool {
	return k.Name == other.Name && slices.Equal(k.Params, other.Params)
}

// TypeDescriptor describes a supertype (usually an interface) of a declaring type
// together with the methods it declares
type TypeDescriptor struct {
	// Name is the dotted fully-qualified type name (e.g. "kibong.aop.member.MemberService")
	Name string

	// Methods is the set of methods visible through this type
	Methods []MethodKey
}

// Declares reports whether the type declares the given method
func (t TypeDescriptor) Declares(key MethodKey) bool {
	for _, m := range t.Methods {
		if m.Equal(key) {
			return true
		}
	}
	return false
}

// MethodSignature is a read-only view of a candidate method
type MethodSignature struct {
	// DeclaringType is the dotted fully-qualified name of the concrete type
	DeclaringType string

	// Name is the method name
	Name string

	// Params are the parameter type names in declaration order
	Params []string

	// Return is the return type name; empty when the method returns nothing
	// besides an optional trailing error
	Return string

	// Supertypes lists the interfaces and ancestors the declaring type implements
	Supertypes []TypeDescriptor
}

// Key returns the name and parameter list of the signature
func (s MethodSignature) Key() MethodKey {
	return MethodKey{Name: s.Name, Params: s.Params}
}

// Exported reports whether the method name is an exported Go identifier
func (s MethodSignature) Exported() bool {
	return token.IsExported(s.Name)
}

// WithSupertype returns a copy of the signature with an additional supertype
func (s MethodSignature) WithSupertype(t TypeDescriptor) MethodSignature {
	s.Supertypes = append(slices.Clone(s.Supertypes), t)
	return s
}

// String renders the signature in the same shape ParseSignature accepts
func (s MethodSignature) String() string {
	var b strings.Builder
	if s.Return == "" {
		b.WriteString(VoidReturn)
	} else {
		b.WriteString(s.Return)
	}
	b.WriteByte(' ')
	if s.DeclaringType != "" {
		b.WriteString(s.DeclaringType)
		b.WriteByte('.')
	}
	b.WriteString(s.Key().String())
	return b.String()
}

// VoidReturn is the return type token for methods without a non-error result
const VoidReturn = "void"

// QualifiedName converts a Go import path and type name into the dotted form used
// by type patterns: "github.com/acme/shop/order" + "Service" becomes
// "github.com.acme.shop.order.Service"
func QualifiedName(importPath, typeName string) string {
	if importPath == "" {
		return typeName
	}
	return strings.ReplaceAll(importPath, "/", ".") + "." + typeName
}
