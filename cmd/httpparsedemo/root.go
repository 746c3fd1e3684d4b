// Command httpparsedemo exercises the httpparse parser against a file
// of raw HTTP bytes, logging every structural hook and optionally
// serving Prometheus counters over HTTP.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "httpparsedemo",
	Short: "Parse raw HTTP/1.x messages and report structural events",
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
