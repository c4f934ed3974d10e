package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "vesper",
	Short: "Vesper script interpreter and compiler",
	Long: `vesper is an embeddable ECMAScript-derived execution engine: a
tokenizer, parser, bytecode compiler, and register-based VM, exposed here
as a standalone CLI for running scripts, inspecting their compiled form,
and loading ES modules.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
`, GitCommit))
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
}
