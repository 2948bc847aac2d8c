package main

import (
	"os"

	"github.com/toyz/weave/internal/cli"
)

func main() {
	rootCmd := cli.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		verbose, _ := rootCmd.PersistentFlags().GetCount("verbose")
		cli.NewErrorReporter(os.Stderr, verbose > 0).Report(err)
		os.Exit(1)
	}
}
