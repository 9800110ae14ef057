package main

import (
	"os"

	"github.com/spf13/cobra"

	"bopt/internal/program"
)

var dumpCmd = &cobra.Command{
	Use:   "dump <program>",
	Short: "Print a program as text assembly",
	Long:  "Dump writes the text assembly listing of a program to stdout.",
	Args:  cobra.ExactArgs(1),
	RunE:  runDump,
}

func runDump(_ *cobra.Command, args []string) error {
	prog, err := loadProgram(args[0])
	if err != nil {
		return err
	}
	return program.WriteText(os.Stdout, prog)
}
