package main

import (
	"encoding/json"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/nbarbarousis/fieldsync"
	"github.com/nbarbarousis/fieldsync/synctypes"
)

var inventoryCmd = &cobra.Command{
	Use:   "inventory",
	Short: "Show the reconciled cloud/local view",
	Long: `Reconciles the cloud inventory cache against the local working tree
and prints one line per coordinate with the raw and ML sync verdicts.

The cloud side is served from the persisted cache; pass --refresh to
force a full rescan first.`,
	RunE: runInventory,
}

func init() {
	addFilterFlags(inventoryCmd)
	inventoryCmd.Flags().Bool("refresh", false, "force a full cloud rescan first")
	inventoryCmd.Flags().Bool("issues", false, "print per-coordinate issue details")
	inventoryCmd.Flags().BoolP("json", "j", false, "output JSON format")
	rootCmd.AddCommand(inventoryCmd)
}

func runInventory(cmd *cobra.Command, args []string) error {
	svc, err := newService()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	if refresh, _ := cmd.Flags().GetBool("refresh"); refresh {
		if err := svc.RefreshInventory(ctx); err != nil {
			return fmt.Errorf("refresh failed: %w", err)
		}
	}

	items, metrics, err := svc.Inventory(ctx, filterFromFlags(cmd))
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		out, err := json.MarshalIndent(struct {
			Items   []synctypes.InventoryItem  `json:"items"`
			Metrics synctypes.InventoryMetrics `json:"metrics"`
		}{items, metrics}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	if len(items) == 0 {
		fmt.Println("No data found.")
		return nil
	}

	showIssues, _ := cmd.Flags().GetBool("issues")
	for _, item := range items {
		fmt.Printf("%-70s raw=%-10s ml=%-10s bags=%d size=%s samples=%d\n",
			item.Coordinate.String(),
			item.RawSyncStatus,
			item.MLSyncStatus,
			item.CloudRaw.BagCount,
			humanize.Bytes(uint64(item.CloudRaw.TotalSize)),
			item.CloudML.TotalSamples)
		if showIssues {
			printIssues("raw", item.RawIssues)
			printIssues("ml", item.MLIssues)
		}
	}

	fmt.Printf("\n%d coordinates, cloud bags=%d local bags=%d cloud samples=%d local samples=%d\n",
		len(items), metrics.CloudBags, metrics.LocalBags, metrics.CloudSamples, metrics.LocalSamples)
	return nil
}

func printIssues(side string, issues []string) {
	for _, issue := range issues {
		fmt.Printf("    [%s] %s\n", side, issue)
	}
}

var statusCmd = &cobra.Command{
	Use:   "status <coordinate>",
	Short: "Show cloud and local state for one coordinate",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		coord, err := parseCoordinateArg(args[0])
		if err != nil {
			return err
		}
		svc, err := newService()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		cloudRaw, err := svc.CloudRawStatus(ctx, coord)
		if err != nil {
			return err
		}
		cloudML, err := svc.CloudMLStatus(ctx, coord)
		if err != nil {
			return err
		}
		localRaw := svc.LocalRawStatus(coord)
		localML := svc.LocalMLStatus(coord)

		fmt.Printf("Coordinate: %s\n\n", coord.String())
		fmt.Printf("Cloud raw:  exists=%-5v bags=%-3d size=%s\n",
			cloudRaw.Exists, cloudRaw.BagCount, humanize.Bytes(uint64(cloudRaw.TotalSize)))
		fmt.Printf("Local raw:  exists=%-5v bags=%-3d size=%s\n",
			localRaw.Downloaded, localRaw.BagCount, humanize.Bytes(uint64(localRaw.TotalSize)))
		fmt.Printf("Cloud ml:   exists=%-5v samples=%d\n", cloudML.Exists, cloudML.TotalSamples)
		fmt.Printf("Local ml:   exists=%-5v samples=%d\n", localML.Downloaded, localML.TotalSamples)

		for _, bag := range cloudRaw.BagNames {
			fmt.Printf("  cloud bag %s (%s)\n", bag, humanize.Bytes(uint64(cloudRaw.BagSizes[bag])))
		}
		return nil
	},
}

var browseCmd = &cobra.Command{
	Use:   "browse [path]",
	Short: "List cloud-side children one hierarchy level down",
	Long: `Lists the child names one level below the given /-joined path, from
the cloud inventory cache. With no path, lists the clients.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService()
		if err != nil {
			return err
		}

		parent := ""
		if len(args) == 1 {
			parent = args[0]
		}
		kind := kindFlag(cmd)

		children, err := svc.HierarchyLevel(cmd.Context(), kind, parent)
		if err != nil {
			return err
		}
		if len(children) == 0 {
			fmt.Println("No entries.")
			return nil
		}
		for _, child := range children {
			fmt.Println(child)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)

	browseCmd.Flags().String("kind", "raw", "data kind to browse (raw or ml)")
	rootCmd.AddCommand(browseCmd)
}

func kindFlag(cmd *cobra.Command) fieldsync.DataKind {
	if v, _ := cmd.Flags().GetString("kind"); v == "ml" {
		return fieldsync.KindML
	}
	return fieldsync.KindRaw
}
