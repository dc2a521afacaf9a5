package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var exportsCmd = &cobra.Command{
	Use:   "exports",
	Short: "Inspect recorded export batches",
	Long: `Commands for reading the export tracking sidecar maintained alongside
the local ML tree.`,
}

var exportsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded exports",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService()
		if err != nil {
			return err
		}

		ids, err := svc.ExportIDs()
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			fmt.Println("No exports recorded.")
			return nil
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		return nil
	},
}

var exportsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one export's metadata",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService()
		if err != nil {
			return err
		}

		info, ok, err := svc.Export(args[0])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("export %q not found", args[0])
		}

		fmt.Printf("Export: %s\n", info.ID)
		fmt.Printf("Created: %s\n", info.CreatedAt)
		fmt.Printf("Samples: %d\n", info.SampleCount)
		for _, coord := range info.Coordinates {
			fmt.Printf("  %s\n", coord)
		}
		return nil
	},
}

func init() {
	exportsCmd.AddCommand(exportsListCmd)
	exportsCmd.AddCommand(exportsShowCmd)
	rootCmd.AddCommand(exportsCmd)
}
