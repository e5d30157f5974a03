// Export command: dumps registered types and their objects as JSONL.
package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var flagExportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all types and objects as JSONL files",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&flagExportOut, "out", "export", "output directory")
}

func runExport(cmd *cobra.Command, args []string) error {
	backend, err := attachBackend()
	if err != nil {
		return err
	}
	defer backend.Detach()

	summary, err := backend.Export(flagExportOut)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	if flagJSON {
		out, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal summary: %w", err)
		}
		fmt.Println(string(out))
		return nil
	}

	fmt.Printf("Exported %d types and %d objects to %s\n",
		summary.Types, summary.Objects, summary.Dir)
	return nil
}
