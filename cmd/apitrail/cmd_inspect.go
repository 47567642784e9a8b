package main

import (
	"fmt"
	"io"

	"github.com/odvcencio/apitrail/pkg/history"
	"github.com/odvcencio/apitrail/pkg/source"
	"github.com/spf13/cobra"
)

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <history-file> <class> [member]",
		Short: "Answer since when a class or member is available, deprecated, or removed",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := source.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			doc, err := history.ReadText(f)
			if err != nil {
				return err
			}

			className := args[1]
			class := doc.Class(className)
			if class == nil {
				return fmt.Errorf("class %s not found in %s", className, args[0])
			}

			out := cmd.OutOrStdout()
			if len(args) == 2 {
				printElement(out, className, class.DocElement, class.Module)
				return nil
			}

			memberName := args[2]
			member := class.Member(memberName)
			if member == nil {
				return fmt.Errorf("member %s not found on %s", memberName, className)
			}
			printElement(out, className+"#"+memberName, *member, "")
			return nil
		},
	}
	return cmd
}

func printElement(w io.Writer, key string, e history.DocElement, module string) {
	fmt.Fprintln(w, key)
	fmt.Fprintf(w, "  since:      %s\n", e.Since)
	if e.DeprecatedIn.IsValid() {
		fmt.Fprintf(w, "  deprecated: %s\n", e.DeprecatedIn)
	}
	if e.Removed.IsValid() {
		fmt.Fprintf(w, "  removed:    %s\n", e.Removed)
	}
	if e.SDKs != "" {
		fmt.Fprintf(w, "  sdks:       %s\n", e.SDKs)
	}
	if module != "" {
		fmt.Fprintf(w, "  module:     %s\n", module)
	}
}
