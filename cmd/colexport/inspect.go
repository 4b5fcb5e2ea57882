package main

import (
	"fmt"
	"os"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/spf13/cobra"

	"github.com/ajitpratap0/colexport/pkg/compression"
	"github.com/ajitpratap0/colexport/pkg/exporterrors"
	"github.com/ajitpratap0/colexport/pkg/formats/arrowipc"
)

func newInspectCommand() *cobra.Command {
	var showSchema bool

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Describe an exported Arrow IPC file",
		Long: `Read an exported file, undoing any whole-output compression, and print its
format, batch count and row count.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return exporterrors.Wrap(err, exporterrors.ErrorTypeFile, "failed to open file").
					WithDetail("path", args[0])
			}
			defer f.Close()

			alg, r, err := compression.Detect(f)
			if err != nil {
				return err
			}
			rc, err := compression.NewReader(r, alg)
			if err != nil {
				return err
			}
			defer rc.Close()

			contents, err := arrowipc.ReadAll(rc, memory.DefaultAllocator)
			if err != nil {
				return err
			}
			defer contents.Release()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "compression=%s %s\n", alg, contents.Describe())
			if showSchema {
				for _, field := range contents.Schema.Fields() {
					fmt.Fprintf(out, "  %s: %s\n", field.Name, field.Type)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showSchema, "schema", true, "Print the column names and types")
	return cmd
}
