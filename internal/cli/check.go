package cli

import (
	"github.com/spf13/cobra"

	"github.com/toyz/weave/internal/config"
	"github.com/toyz/weave/internal/errors"
	"github.com/toyz/weave/internal/scanner"
	"github.com/toyz/weave/pkg/weave"
)

type checkOptions struct {
	scan      []string
	recursive bool
}

func newCheckCmd(a *app) *cobra.Command {
	var opts checkOptions

	cmd := &cobra.Command{
		Use:   "check [manifest]",
		Short: "Validate an aspect manifest",
		Long: `Check loads an aspect manifest, validates its pointcuts and aspects and
binds them to the built-in advice (trace, log, tx). The manifest is the
argument or, without one, the --config file.

With --scan the bindings are matched against the methods of the scanned
packages, showing what each aspect would apply to.`,
		Example: `  weave check aspects.yaml
  weave check aspects.toml --scan ./internal/...`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.opts.configPath
			if len(args) == 1 {
				path = args[0]
			}
			_, err := a.runCheck(path, opts)
			return err
		},
	}

	cmd.Flags().StringArrayVar(&opts.scan, "scan", nil, "Package to match the bindings against (repeatable)")
	cmd.Flags().BoolVarP(&opts.recursive, "recursive", "r", false, "Scan subdirectories of the --scan packages")

	return cmd
}

// runCheck validates and applies the manifest at path and returns the weaver
// holding its bindings
func (a *app) runCheck(path string, opts checkOptions) (*weave.Weaver, error) {
	if path == "" {
		return nil, errors.ConfigurationError("", "no manifest given").
			WithSuggestion("pass a manifest file or use --config")
	}

	cfg := a.cfg
	if path != cfg.Source {
		var err error
		if cfg, err = config.Load(path, nil); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(knownAdvice()); err != nil {
		return nil, err
	}

	w, err := a.newWeaver()
	if err != nil {
		return nil, err
	}
	if err := w.Apply(cfg.Manifest()); err != nil {
		return nil, errors.WrapConfigurationError(path, "apply", err)
	}

	a.diagnostics.Section("Manifest " + path)
	a.diagnostics.Category("Pointcuts")
	for _, name := range cfg.PointcutNames() {
		a.diagnostics.List("%s() = %s", name, cfg.Pointcuts[name])
	}
	a.diagnostics.Category("Bindings")
	for _, b := range w.Bindings() {
		a.diagnostics.List("%s", b)
	}

	if len(opts.scan) > 0 {
		if err := a.previewBindings(w, opts); err != nil {
			return nil, err
		}
	}

	a.diagnostics.Success("%s is valid: %d pointcuts, %d bindings", path, len(cfg.Pointcuts), len(w.Bindings()))
	return w, nil
}

// previewBindings lists, per binding, the scanned methods it selects
func (a *app) previewBindings(w *weave.Weaver, opts checkOptions) error {
	result, err := scanner.New(scanner.Options{Recursive: opts.recursive}).Scan(opts.scan...)
	if err != nil {
		return err
	}
	sigs := result.Signatures()
	a.diagnostics.Verbose("scanned %d types, %d methods", len(result.Types), len(sigs))

	for _, b := range w.Bindings() {
		a.diagnostics.Category(b.Name)
		a.diagnostics.Indent()
		selected := 0
		for _, sig := range sigs {
			if b.Matches(sig) {
				selected++
				a.diagnostics.List("%s", sig)
			}
		}
		if selected == 0 {
			a.diagnostics.Warn("binding %s selects no scanned method", b.Name)
		}
		a.diagnostics.Unindent()
	}
	return nil
}
