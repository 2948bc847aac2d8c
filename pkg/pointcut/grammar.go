package pointcut

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Tokens shared by pointcut expressions and signature text. Name is permissive so
// that Go type spellings such as []string, map[string]int and interface{} lex as a
// single token; structure inside a path is validated after parsing.
var pointcutLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "AndOp", Pattern: `&&`},
	{Name: "OrOp", Pattern: `\|\|`},
	{Name: "NotOp", Pattern: `!`},
	{Name: "Variadic", Pattern: `\.\.\.`},
	{Name: "Ellipsis", Pattern: `\.\.`},
	{Name: "Dot", Pattern: `\.`},
	{Name: "Punct", Pattern: `[(),]`},
	{Name: "Name", Pattern: `[\p{L}_$*\[\]{}][\p{L}\p{N}_$*\[\]{}]*`},
})

// expressionAST is the root of a pointcut expression
type expressionAST struct {
	Or *orAST `parser:"@@"`
}

type orAST struct {
	Left  *andAST   `parser:"@@"`
	Right []*andAST `parser:"( OrOp @@ )*"`
}

type andAST struct {
	Left  *unaryAST   `parser:"@@"`
	Right []*unaryAST `parser:"( AndOp @@ )*"`
}

type unaryAST struct {
	Not     *unaryAST   `parser:"  NotOp @@"`
	Primary *primaryAST `parser:"| @@"`
}

type primaryAST struct {
	Execution *executionAST `parser:"  @@"`
	Within    *withinAST    `parser:"| @@"`
	Reference *referenceAST `parser:"| @@"`
	Group     *orAST        `parser:"| '(' @@ ')'"`
}

// executionAST is execution([modifier] <ret> <path>(<params>))
type executionAST struct {
	Pos lexer.Position

	Modifier string      `parser:"'execution' '(' @('public' | 'private')?"`
	Return   []string    `parser:"@Name ( @Dot @Name )*"`
	Path     []pathToken `parser:"@@+"`
	Params   []*paramAST `parser:"'(' ( @@ ( ',' @@ )* )? ')' ')'"`
}

// withinAST is within(<type path>)
type withinAST struct {
	Pos lexer.Position

	Path []pathToken `parser:"'within' '(' @@+ ')'"`
}

// referenceAST is a named pointcut reference: name()
type referenceAST struct {
	Pos lexer.Position

	Name string `parser:"@Name '(' ')'"`
}

// pathToken is one element of a dotted path: a name or a separator
type pathToken struct {
	Pos lexer.Position

	Name     string `parser:"  @Name"`
	Dot      bool   `parser:"| @Dot"`
	Ellipsis bool   `parser:"| @Ellipsis"`
}

// paramAST is a single parameter pattern
type paramAST struct {
	Pos lexer.Position

	Rest     bool     `parser:"  @Ellipsis"`
	Variadic bool     `parser:"| ( @Variadic?"`
	Type     []string `parser:"    @Name ( @Dot @Name )* )"`
}

// signatureAST is the textual form of a concrete method signature
type signatureAST struct {
	Modifier string      `parser:"@('public' | 'private')?"`
	Return   []string    `parser:"@Name ( @Dot @Name )*"`
	Path     []pathToken `parser:"@@+"`
	Params   []*paramAST `parser:"'(' ( @@ ( ',' @@ )* )? ')'"`
}

var (
	expressionParser = participle.MustBuild[expressionAST](
		participle.Lexer(pointcutLexer),
		participle.Elide("Whitespace"),
		participle.UseLookahead(2),
	)

	signatureParser = participle.MustBuild[signatureAST](
		participle.Lexer(pointcutLexer),
		participle.Elide("Whitespace"),
		participle.UseLookahead(2),
	)
)
