package cmd

import (
	"github.com/spf13/cobra"
	"github.gatech.edu/ECEInnovation/rv32ias/languageServer"
	"github.gatech.edu/ECEInnovation/rv32ias/util"
)

const defaultLanguageServerAddr = ":2035"

var (
	languageServerTCP   string
	languageServerDebug bool
)

var languageServerCmd = &cobra.Command{
	Use:   "languageServer",
	Short: "Serve the language server protocol over stdio or TCP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if languageServerDebug {
			util.LoggingEnabled = true
		}
		if languageServerTCP != "" {
			return languageServer.ListenAndServeTCP(languageServerTCP)
		}
		languageServer.ListenAndServe()
		return nil
	},
}

func init() {
	languageServerCmd.Flags().StringVar(&languageServerTCP, "tcp", "", "listen on this address instead of stdio, e.g. "+defaultLanguageServerAddr)
	languageServerCmd.Flags().BoolVar(&languageServerDebug, "debug", false, "post log lines to RV32IAS_LOG_URL")
	rootCmd.AddCommand(languageServerCmd)
}
