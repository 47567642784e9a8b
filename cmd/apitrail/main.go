package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "apitrail",
		Short: "Generate API availability history from per-version snapshots",
	}

	root.AddCommand(newVersionCmd())
	root.AddCommand(newGenerateCmd())
	root.AddCommand(newInspectCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("apitrail 0.1.0-dev")
		},
	}
}
