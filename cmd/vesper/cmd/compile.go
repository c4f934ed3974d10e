package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vesper-lang/vesper/internal/bytecode"
	"github.com/vesper-lang/vesper/internal/codegen"
	"github.com/vesper-lang/vesper/internal/lexer"
	"github.com/vesper-lang/vesper/internal/parser"
)

var compileOutput string

var compileCmd = &cobra.Command{
	Use:   "compile [file]",
	Short: "Compile a script to bytecode and print its disassembly",
	Args:  cobra.ExactArgs(1),
	RunE:  compileScript,
}

func init() {
	rootCmd.AddCommand(compileCmd)
	compileCmd.Flags().StringVarP(&compileOutput, "output", "o", "", "write the disassembly listing here instead of stdout")
}

func compileScript(_ *cobra.Command, args []string) error {
	filename := args[0]
	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	p := parser.New(lexer.New(string(content)), false)
	program := p.ParseProgram()
	if p.Errors().HasErrors() {
		fmt.Fprint(os.Stderr, p.Errors().Format(true))
		return fmt.Errorf("%s: parsing failed", filename)
	}

	out, err := codegen.Compile(program)
	if err != nil {
		return fmt.Errorf("%s: %w", filename, err)
	}

	listing := disassembleUnit(filename, out.Functions)

	if compileOutput == "" {
		fmt.Print(listing)
		return nil
	}
	return os.WriteFile(compileOutput, []byte(listing), 0o644)
}

// disassembleUnit renders every function in a compiled unit, one section
// per function, the way internal/bytecode.Disassembler renders a single
// Chunk (`disasm` reuses this same helper for the same full listing).
func disassembleUnit(name string, functions []*bytecode.Function) string {
	sink := bytecode.NewStringWriter()
	for i, fn := range functions {
		label := fmt.Sprintf("%s#%d %s", name, i, fn.Name)
		bytecode.NewDisassembler(label, fn.Chunk, sink).Disassemble()
	}
	return sink.String()
}
