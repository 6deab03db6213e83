package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.gatech.edu/ECEInnovation/rv32ias/autograder"
)

var gradeConfigPath string

var gradeCmd = &cobra.Command{
	Use:   "grade",
	Short: "Grade a submission and write Gradescope results",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := autograder.LoadConfig(gradeConfigPath)
		if err != nil {
			return err
		}
		return grade(conf)
	},
}

func init() {
	gradeCmd.Flags().StringVar(&gradeConfigPath, "config", autograder.DefaultConfigPath, "autograder configuration")
	rootCmd.AddCommand(gradeCmd)
}

func grade(conf *autograder.Config) error {
	if conf.Mode != "asm" {
		return fmt.Errorf("invalid autograding mode: %s", conf.Mode)
	}

	gso, err := autograder.GradeAssembly(conf)
	if err != nil {
		return err
	}
	return gso.Save(conf.ResultsPath)
}
