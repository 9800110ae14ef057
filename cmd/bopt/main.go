// Package main implements the bopt CLI.
package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"bopt/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "bopt",
	Short: "Register bytecode optimizer",
	Long:  `bopt rewrites method bytecode to minimize explicit jump instructions`,
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(optimizeCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().String("trace-level", "off", "trace verbosity (off|pass|method)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
