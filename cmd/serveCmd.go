package cmd

import (
	"github.com/spf13/cobra"
	"github.com/xyproto/env/v2"
	"github.gatech.edu/ECEInnovation/rv32ias/playground"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the browser playground",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return playground.ListenAndServe(serveAddr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", env.Str("RV32IAS_PLAYGROUND_ADDR", ":8080"), "address to listen on")
	rootCmd.AddCommand(serveCmd)
}
