package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/toyz/weave/internal/errors"
	"github.com/toyz/weave/internal/scanner"
	"github.com/toyz/weave/pkg/pointcut"
)

// Output formats of the scan command
const (
	FormatText = "text"
	FormatYAML = "yaml"
	FormatJSON = "json"
)

type scanOptions struct {
	expression   string
	recursive    bool
	exportedOnly bool
	format       string
}

// scanRecord is the serialised form of a scanned type
type scanRecord struct {
	Type       string   `json:"type" yaml:"type"`
	Kind       string   `json:"kind" yaml:"kind"`
	Position   string   `json:"position" yaml:"position"`
	Supertypes []string `json:"supertypes,omitempty" yaml:"supertypes,omitempty"`
	Methods    []string `json:"methods" yaml:"methods"`
}

func newScanCmd(a *app) *cobra.Command {
	var opts scanOptions

	cmd := &cobra.Command{
		Use:   "scan [packages...]",
		Short: "List the method signatures of Go packages",
		Long: `Scan parses Go packages and lists the method signatures weave derives for
their types, including the interfaces each type implements. With -e only the
methods the pointcut selects are listed.

A package path ending in /... is scanned recursively.`,
		Example: `  weave scan ./...
  weave scan -e 'execution(* *..*Service.*(..))' ./internal/...
  weave scan --exported-only --format yaml ./pkg/weave`,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := a.runScan(opts, args)
			return err
		},
	}

	cmd.Flags().StringVarP(&opts.expression, "expression", "e", "", "Only list methods selected by this pointcut")
	cmd.Flags().BoolVarP(&opts.recursive, "recursive", "r", false, "Scan subdirectories")
	cmd.Flags().BoolVar(&opts.exportedOnly, "exported-only", false, "Skip unexported methods")
	cmd.Flags().StringVarP(&opts.format, "format", "f", FormatText, "Output format: text, yaml or json")

	return cmd
}

// runScan scans the packages, prints the selected methods and returns the
// records it printed
func (a *app) runScan(opts scanOptions, paths []string) ([]scanRecord, error) {
	var selected *pointcut.Pointcut
	if opts.expression != "" {
		scope, err := a.scope()
		if err != nil {
			return nil, err
		}
		if selected, err = scope.Compile(opts.expression); err != nil {
			return nil, errors.WrapPointcutError("expression", err)
		}
	}

	result, err := scanner.New(scanner.Options{
		Recursive:    opts.recursive,
		ExportedOnly: opts.exportedOnly,
	}).Scan(paths...)
	if err != nil {
		return nil, err
	}

	records := make([]scanRecord, 0, len(result.Types))
	methods := 0
	for _, typ := range result.Types {
		record := scanRecord{
			Type:     typ.Name,
			Kind:     string(typ.Kind),
			Position: typ.Position.String(),
		}
		for _, super := range typ.Supertypes {
			record.Supertypes = append(record.Supertypes, super.Name)
		}
		for _, sig := range typ.Methods {
			if selected == nil || selected.Matches(sig) {
				record.Methods = append(record.Methods, sig.String())
			}
		}
		if selected != nil && len(record.Methods) == 0 {
			continue
		}
		methods += len(record.Methods)
		records = append(records, record)
	}

	switch opts.format {
	case FormatText, "":
		a.printScan(records)
		a.diagnostics.Summary("Scan complete", map[string]interface{}{
			"Types":   len(records),
			"Methods": methods,
		})
	case FormatYAML:
		err = writeYAML(a.diagnostics.Output(), records)
	case FormatJSON:
		err = writeJSON(a.diagnostics.Output(), records)
	default:
		err = errors.NewValidationError("format", "text, yaml or json", fmt.Sprintf("%q", opts.format))
	}
	return records, err
}

func (a *app) printScan(records []scanRecord) {
	for _, record := range records {
		a.diagnostics.Category(record.Type)
		a.diagnostics.Indent()
		a.diagnostics.Verbose("%s at %s", record.Kind, record.Position)
		for _, super := range record.Supertypes {
			a.diagnostics.Verbose("implements %s", super)
		}
		for _, method := range record.Methods {
			a.diagnostics.List("%s", method)
		}
		a.diagnostics.Unindent()
	}
}

func writeYAML(w io.Writer, records []scanRecord) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(records); err != nil {
		return err
	}
	return enc.Close()
}

func writeJSON(w io.Writer, records []scanRecord) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}
