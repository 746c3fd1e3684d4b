package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/reveldb/httpparse/config"
)

var configFile string

var configCmd = &cobra.Command{
	Use:     "config",
	Short:   "Load a JSON config file and pretty-print the decoded sections",
	Example: "# httpparsedemo config --file demo.json",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load(configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(cfg)
	},
}

func init() {
	configCmd.Flags().StringVar(&configFile, "file", "", "Path to a JSON config file (required)")
	_ = configCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(configCmd)
}
