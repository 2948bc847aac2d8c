package cli

import (
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/toyz/weave/internal/demo"
	"github.com/toyz/weave/internal/demo/order"
	"github.com/toyz/weave/internal/utils"
)

func newDemoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "demo [item...]",
		Short: "Order items through the sample services and their aspects",
		Long: `Demo wraps the sample order and member services in proxies carrying a
logging aspect and a transaction aspect, prints which advice applies to each
method, then orders the given items. The item "ex" makes the repository fail
so the transaction is rolled back.`,
		Example: `  weave demo
  weave demo book ex`,
		RunE: func(cmd *cobra.Command, args []string) error {
			items := args
			if len(items) == 0 {
				items = []string{"kibong", order.FailingItem}
			}

			logger := zerolog.New(zerolog.ConsoleWriter{
				Out:          a.diagnostics.Output(),
				NoColor:      true,
				PartsExclude: []string{zerolog.TimestampFieldName},
			}).Level(zerolog.InfoLevel)
			if a.diagnostics.Level() < utils.DiagnosticInfo {
				logger = zerolog.Nop()
			}

			app, err := demo.New(logger)
			if err != nil {
				return err
			}

			a.diagnostics.Section("Proxies")
			for _, m := range app.Methods() {
				if len(m.Bindings) == 0 {
					a.diagnostics.List("%s (direct)", m.Signature)
					continue
				}
				a.diagnostics.List("%s <- %s", m.Signature, strings.Join(m.Bindings, ", "))
			}

			for _, item := range items {
				a.diagnostics.Subsection("OrderItem(" + item + ")")
				if err := app.Orders.OrderItem(cmd.Context(), item); err != nil {
					a.diagnostics.Warn("order %q failed: %v", item, err)
					continue
				}
				a.diagnostics.Success("order %q placed", item)
			}
			return nil
		},
	}
}
