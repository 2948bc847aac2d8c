// Package pointcut compiles AspectJ-style pointcut expressions and matches them
// against method signatures.
//
// The supported designators are
//
//	execution([public|private] <return> [<type path>.]<method>(<params>))
//	within(<type path>)
//	name()                      // a pointcut defined in a Scope
//
// combined with &&, || and ! and grouped with parentheses. Type paths are dotted;
// '*' matches one segment and '..' any number of them. Parameter lists use '..'
// for "any number of parameters" and '*' for "exactly one parameter".
//
// A type path that names a supertype only selects methods that the supertype
// itself declares: with
//
//	execution(* shop.member.MemberService.*(..))
//
// a method defined on the implementation but absent from the MemberService
// interface is not selected, even though the implementation satisfies the
// interface.
//
// Compiled pointcuts are immutable and safe for concurrent use. Matching never
// fails; malformed expressions are reported once, at compile time, as *ParseError.
package pointcut
