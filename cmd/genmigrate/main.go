package main

import (
	"os"

	"cosmossdk.io/log"
)

func main() {
	rootCmd := NewRootCmd()

	if err := rootCmd.Execute(); err != nil {
		log.NewLogger(rootCmd.OutOrStderr()).Error("failure when running genmigrate", "err", err)
		os.Exit(1)
	}
}
