package cmd

import (
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/xyproto/env/v2"
	"github.gatech.edu/ECEInnovation/rv32ias/assembler"
	"github.gatech.edu/ECEInnovation/rv32ias/autograder"
	"github.gatech.edu/ECEInnovation/rv32ias/languageServer"
)

var rootCmd = &cobra.Command{
	Use:   "rv32ias",
	Short: "RV32I assembler, language server and autograder",
	Long: `rv32ias assembles RV32I base integer assembly into 32-bit machine words.

Run without a command it grades the submission described by
source/autograderConfig.json when that file exists, and otherwise serves
the language server over TCP so an editor can attach to it remotely.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		assembler.SetConfig(assembler.ConfigFromEnvironment())
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := autograder.GetConfig()
		if err != nil {
			return err
		}
		if conf != nil {
			return grade(conf)
		}
		return languageServer.ListenAndServeTCP(env.Str("RV32IAS_LSP_ADDR", defaultLanguageServerAddr))
	},
}

// Execute runs the command named by os.Args.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.SetFlags(0)
		log.Println(err)
		os.Exit(1)
	}
}
