package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vesper-lang/vesper/pkg/vesper"
)

var (
	evalExpr string
	asModule bool
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run a script file or expression",
	Long: `Execute a script from a file or inline expression.

Examples:
  vesper run script.js
  vesper run -e "1 + 2"
  vesper run --module app.js`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScript,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&evalExpr, "eval", "e", "", "evaluate inline code instead of reading from file")
	runCmd.Flags().BoolVar(&asModule, "module", false, "run the file as an ES module instead of a plain script")
}

func runScript(_ *cobra.Command, args []string) error {
	input, filename, err := readSource(evalExpr, args)
	if err != nil {
		return err
	}

	rt := vesper.New()

	if asModule {
		if filename == "<eval>" {
			return fmt.Errorf("--module requires a file path, not -e")
		}
		if _, err := rt.LinkAndEvaluateModule(filename); err != nil {
			if v, ok := vesper.Catch(err); ok {
				return fmt.Errorf("uncaught exception: %s", vesper.Inspect(v))
			}
			return err
		}
		rt.DrainJobs()
		return nil
	}

	script, err := rt.Compile(input, filename)
	if err != nil {
		return err
	}
	result, err := rt.RunScript(script)
	if err != nil {
		if v, ok := vesper.Catch(err); ok {
			return fmt.Errorf("uncaught exception: %s", vesper.Inspect(v))
		}
		return err
	}
	rt.DrainJobs()
	if !result.IsUndefined() {
		fmt.Println(vesper.Inspect(result))
	}
	return nil
}

// readSource picks an input source the way every cmd/vesper subcommand
// needs to: an inline -e expression, a single file argument, or neither
// (an error), grounded on go-dws's cmd/dwscript run command doing the
// same dispatch.
func readSource(eval string, args []string) (input, filename string, err error) {
	if eval != "" {
		return eval, "<eval>", nil
	}
	if len(args) == 1 {
		content, err := os.ReadFile(args[0])
		if err != nil {
			return "", "", fmt.Errorf("failed to read file %s: %w", args[0], err)
		}
		return string(content), args[0], nil
	}
	return "", "", fmt.Errorf("either provide a file path or use -e flag for inline code")
}
