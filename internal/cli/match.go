package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/toyz/weave/internal/errors"
	"github.com/toyz/weave/pkg/pointcut"
)

type matchOptions struct {
	expression string
	supertypes []string
}

func newMatchCmd(a *app) *cobra.Command {
	var opts matchOptions

	cmd := &cobra.Command{
		Use:   "match -e <pointcut> <signature>...",
		Short: "Test method signatures against a pointcut",
		Long: `Match compiles a pointcut expression and reports, for every signature given,
whether the expression selects it. Signatures are written

  [public|private] <return> <type path>.<method>(<param>, ...)

with "void" for methods without a result. Named pointcuts from the --config
manifest can be referenced as name().`,
		Example: `  weave match -e 'execution(* *..*Service.*(..))' 'string shop.member.MemberServiceImpl.Hello(string)'

  # the method is declared by an interface the type implements
  weave match -e 'execution(* shop.member.MemberService.*(..))' \
    --super shop.member.MemberService 'string shop.member.MemberServiceImpl.Hello(string)'

  weave match -c aspects.yaml -e 'allOrder()' 'void shop.order.OrderRepository.Save(string)'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := a.runMatch(opts, args)
			return err
		},
	}

	cmd.Flags().StringVarP(&opts.expression, "expression", "e", "", "Pointcut expression")
	cmd.Flags().StringArrayVar(&opts.supertypes, "super", nil, "Supertype declaring the method of each signature (repeatable)")
	_ = cmd.MarkFlagRequired("expression")

	return cmd
}

// runMatch reports each signature and returns how many matched
func (a *app) runMatch(opts matchOptions, texts []string) (int, error) {
	scope, err := a.scope()
	if err != nil {
		return 0, err
	}
	p, err := scope.Compile(opts.expression)
	if err != nil {
		return 0, errors.WrapPointcutError("expression", err)
	}
	a.diagnostics.Verbose("compiled %s", p.Canonical())

	sigs := make([]pointcut.MethodSignature, 0, len(texts))
	var errs *errors.MultipleErrors
	for i, text := range texts {
		sig, err := pointcut.ParseSignature(text)
		if err != nil {
			errors.AddToMultiple(&errs, errors.WrapPointcutError(fmt.Sprintf("signature %d", i+1), err))
			continue
		}
		for _, name := range opts.supertypes {
			sig = sig.WithSupertype(pointcut.TypeDescriptor{
				Name:    name,
				Methods: []pointcut.MethodKey{sig.Key()},
			})
		}
		sigs = append(sigs, sig)
	}
	if err := errs.ErrorOrNil(); err != nil {
		return 0, err
	}

	matched := 0
	for _, sig := range sigs {
		ok := p.Matches(sig)
		if ok {
			matched++
		}
		a.diagnostics.Check(ok, "%s", sig)
	}
	a.diagnostics.Info("%d of %d signatures matched", matched, len(sigs))
	return matched, nil
}
