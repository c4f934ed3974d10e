package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vesper-lang/vesper/internal/lexer"
	"github.com/vesper-lang/vesper/internal/parser"
)

var parseAsModule bool

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a script and print its AST",
	Args:  cobra.MaximumNArgs(1),
	RunE:  parseScript,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().StringVarP(&evalExpr, "eval", "e", "", "parse inline code instead of reading from file")
	parseCmd.Flags().BoolVar(&parseAsModule, "module", false, "parse as an ES module instead of a plain script")
}

func parseScript(_ *cobra.Command, args []string) error {
	input, filename, err := readSource(evalExpr, args)
	if err != nil {
		return err
	}

	p := parser.New(lexer.New(input), parseAsModule)
	program := p.ParseProgram()
	if p.Errors().HasErrors() {
		fmt.Print(p.Errors().Format(true))
		return fmt.Errorf("%s: parsing failed", filename)
	}
	fmt.Println(program.String())
	return nil
}
