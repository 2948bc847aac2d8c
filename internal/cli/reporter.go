package cli

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/toyz/weave/internal/errors"
)

// ErrorReporter renders command errors for people: every collected error on
// its own, with the offending part of an expression marked and any hints
type ErrorReporter struct {
	out     io.Writer
	verbose bool
	colors  bool
}

// NewErrorReporter creates a reporter writing to out. NO_COLOR turns colors off.
func NewErrorReporter(out io.Writer, verbose bool) *ErrorReporter {
	return &ErrorReporter{out: out, verbose: verbose, colors: os.Getenv("NO_COLOR") == ""}
}

func (r *ErrorReporter) color(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if !r.colors {
		c.DisableColor()
	}
	return c
}

// Report writes err
func (r *ErrorReporter) Report(err error) {
	if err == nil {
		return
	}
	red := r.color(color.FgRed, color.Bold)

	var multiple *errors.MultipleErrors
	if stderrors.As(err, &multiple) && multiple.Count() > 1 {
		red.Fprintf(r.out, "Error: %d problems found\n", multiple.Count())
		for i, e := range multiple.Errors {
			fmt.Fprintf(r.out, "\n%d. ", i+1)
			r.reportOne(e)
		}
		return
	}

	red.Fprint(r.out, "Error: ")
	r.reportOne(err)
}

func (r *ErrorReporter) reportOne(err error) {
	fmt.Fprintln(r.out, err.Error())

	var syntax *errors.SyntaxError
	if stderrors.As(err, &syntax) && syntax.Input != "" {
		r.printExpression(syntax)
	}

	var weaveErr errors.WeaveError
	if !stderrors.As(err, &weaveErr) {
		return
	}
	if r.verbose {
		r.printContext(weaveErr)
	}
	for _, hint := range weaveErr.Suggestions() {
		r.color(color.FgYellow).Fprint(r.out, "   hint: ")
		fmt.Fprintln(r.out, hint)
	}
}

// printExpression shows the expression with a caret under the offending token
func (r *ErrorReporter) printExpression(err *errors.SyntaxError) {
	fmt.Fprintf(r.out, "   %s\n", err.Input)
	width := len(err.Token)
	if width == 0 {
		width = 1
	}
	pos := err.Position
	if pos > len(err.Input) {
		pos = len(err.Input)
	}
	fmt.Fprintf(r.out, "   %s%s\n", strings.Repeat(" ", pos), strings.Repeat("^", width))
}

func (r *ErrorReporter) printContext(err errors.WeaveError) {
	ctx := err.Context()
	keys := make([]string, 0, len(ctx))
	for key := range ctx {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(r.out, "   %s: %v\n", key, ctx[key])
	}
	if loc := err.Location(); !loc.IsEmpty() {
		fmt.Fprintf(r.out, "   location: %s\n", loc)
	}
}
