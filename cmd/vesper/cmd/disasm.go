package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vesper-lang/vesper/internal/codegen"
	"github.com/vesper-lang/vesper/internal/lexer"
	"github.com/vesper-lang/vesper/internal/parser"
)

var disasmCmd = &cobra.Command{
	Use:   "disasm [file]",
	Short: "Print the bytecode disassembly of a script",
	Args:  cobra.MaximumNArgs(1),
	RunE:  disasmScript,
}

func init() {
	rootCmd.AddCommand(disasmCmd)
	disasmCmd.Flags().StringVarP(&evalExpr, "eval", "e", "", "disassemble inline code instead of reading from file")
}

func disasmScript(_ *cobra.Command, args []string) error {
	input, filename, err := readSource(evalExpr, args)
	if err != nil {
		return err
	}

	p := parser.New(lexer.New(input), false)
	program := p.ParseProgram()
	if p.Errors().HasErrors() {
		fmt.Fprint(os.Stderr, p.Errors().Format(true))
		return fmt.Errorf("%s: parsing failed", filename)
	}

	out, err := codegen.Compile(program)
	if err != nil {
		return fmt.Errorf("%s: %w", filename, err)
	}
	fmt.Print(disassembleUnit(filename, out.Functions))
	return nil
}
