package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/k0kubun/pp/v3"
	"github.com/spf13/cobra"
	"github.gatech.edu/ECEInnovation/rv32ias/assembler"
	"github.gatech.edu/ECEInnovation/rv32ias/util"
	"golang.org/x/term"
)

var (
	outputFormat     string
	dumpStructures   bool
	watchSource      bool
	strictImmediates bool
	strictAlignment  bool
)

var assembleCmd = &cobra.Command{
	Use:   "assemble sourceFile",
	Short: "Assemble a source file into machine words",
	Long: `Assemble reads one RV32I source file and prints its program text.

--format selects hex (one word per line), bin, or table, a listing that
shows each word next to its address, labels and source. The default, auto,
prints a table to a terminal and hex otherwise. Warnings go to stderr.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		config := assemblerConfig(cmd)
		if !watchSource {
			return assembleFile(args[0], config, os.Stdout, os.Stderr)
		}

		if err := assembleFile(args[0], config, os.Stdout, os.Stderr); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		fw, err := util.NewFileWatcher(func(path string) {
			fmt.Fprintf(os.Stderr, "\n%s changed, reassembling\n", path)
			if err := assembleFile(path, config, os.Stdout, os.Stderr); err != nil {
				fmt.Fprintln(os.Stderr, err)
			}
		})
		if err != nil {
			return err
		}
		defer fw.Close()

		if err := fw.AddFile(args[0]); err != nil {
			return err
		}
		fw.Watch(ctx)
		return nil
	},
}

func init() {
	assembleCmd.Flags().StringVarP(&outputFormat, "format", "f", "auto", "output format: hex, bin, table or auto")
	assembleCmd.Flags().BoolVar(&dumpStructures, "dump", false, "print the analyzed lines and parsed instructions to stderr")
	assembleCmd.Flags().BoolVarP(&watchSource, "watch", "w", false, "reassemble whenever the source file changes")
	assembleCmd.Flags().BoolVar(&strictImmediates, "strict-immediates", false, "reject immediates that do not fit their field")
	assembleCmd.Flags().BoolVar(&strictAlignment, "strict-alignment", false, "reject odd branch and jump offsets")
	rootCmd.AddCommand(assembleCmd)
}

// assemblerConfig starts from the environment and applies any flags that were set.
func assemblerConfig(cmd *cobra.Command) assembler.AssemblerConfig {
	config := assembler.ConfigFromEnvironment()
	if cmd.Flags().Changed("strict-immediates") {
		config.StrictImmediates = strictImmediates
	}
	if cmd.Flags().Changed("strict-alignment") {
		config.StrictAlignment = strictAlignment
	}
	return config
}

func resolveFormat(format string, out io.Writer) (string, error) {
	switch format {
	case "hex", "bin", "table":
		return format, nil
	case "auto":
		if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			return "table", nil
		}
		return "hex", nil
	}
	return "", fmt.Errorf("unknown output format %q", format)
}

func assembleFile(path string, config assembler.AssemblerConfig, out, errOut io.Writer) error {
	format, err := resolveFormat(outputFormat, out)
	if err != nil {
		return err
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("could not read file %s: %w", path, err)
	}

	res, err := assembler.AssembleWithConfig(string(b), config)
	if err != nil {
		return err
	}

	if dumpStructures {
		pp.Fprintln(errOut, res.Lines)
		pp.Fprintln(errOut, res.Instructions)
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(errOut, "%s:%d:%d: warning: %s\n", path, w.Range.Start.Line+1, w.Range.Start.Char+1, w.Message)
	}

	switch format {
	case "table":
		return assembler.WriteListing(out, res.Listing())
	case "bin":
		return assembler.WriteBinary(out, res.ProgramText)
	}
	return assembler.WriteHex(out, res.ProgramText)
}
