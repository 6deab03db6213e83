package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.gatech.edu/ECEInnovation/rv32ias/assembler"
)

var disassembleFile string

var disassembleCmd = &cobra.Command{
	Use:   "disassemble [word...]",
	Short: "Turn hex machine words back into assembly",
	Long: `Disassemble decodes hex words given as arguments, or read one per line
from the file named by --file. Words that are not RV32I base instructions
print as .word directives.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fields := args
		if disassembleFile != "" {
			b, err := os.ReadFile(disassembleFile)
			if err != nil {
				return fmt.Errorf("could not read file %s: %w", disassembleFile, err)
			}
			fields = append(fields, strings.Fields(string(b))...)
		}
		if len(fields) == 0 {
			return fmt.Errorf("no words to disassemble")
		}

		words, err := parseWords(fields)
		if err != nil {
			return err
		}
		for _, line := range assembler.Disassemble(words) {
			fmt.Println(line)
		}
		return nil
	},
}

func init() {
	disassembleCmd.Flags().StringVar(&disassembleFile, "file", "", "file of hex words, one per line")
	rootCmd.AddCommand(disassembleCmd)
}

func parseWords(fields []string) ([]uint32, error) {
	words := make([]uint32, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(f), "0x"), 16, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid word %q", f)
		}
		words = append(words, uint32(v))
	}
	return words, nil
}
