// Command vesper is the CLI front end for the embeddable engine in
// pkg/vesper, grounded on go-dws's cmd/dwscript: one cobra root command
// per subcommand file, dispatching straight into the internal packages
// (lex/parse/disasm/compile) or through pkg/vesper (run) depending on how
// much of the pipeline the subcommand needs to expose.
package main

import (
	"fmt"
	"os"

	"github.com/vesper-lang/vesper/cmd/vesper/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
