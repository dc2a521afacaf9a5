package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the cloud inventory cache",
	Long: `Commands for managing the persisted cloud inventory cache.

The cache mirrors both buckets so inventory queries do not hit the
network on every call. It refreshes lazily when marked stale.`,
}

var cacheInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show cache state",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService()
		if err != nil {
			return err
		}

		info := svc.CacheInfo()
		if !info.Exists {
			fmt.Println("Cache: empty (no snapshot loaded)")
			fmt.Printf("Cache location: %s\n", info.Path)
			return nil
		}

		fmt.Printf("Cache location: %s\n", info.Path)
		fmt.Printf("Coordinates: %d\n", info.Coordinates)
		fmt.Printf("Last updated: %s\n", info.LastUpdated.Format("2006-01-02 15:04:05"))
		if info.Stale {
			fmt.Printf("Stale: yes (%s)\n", info.StaleReason)
		} else {
			fmt.Println("Stale: no")
		}
		return nil
	},
}

var cacheRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Force a full cloud rescan",
	Long:  `Rescans both buckets and replaces the persisted snapshot.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService()
		if err != nil {
			return err
		}
		if err := svc.RefreshInventory(cmd.Context()); err != nil {
			return fmt.Errorf("refresh failed: %w", err)
		}
		info := svc.CacheInfo()
		fmt.Printf("Cache refreshed: %d coordinates\n", info.Coordinates)
		return nil
	},
}

var cacheInvalidateCmd = &cobra.Command{
	Use:   "invalidate [reason]",
	Short: "Mark the cache stale",
	Long:  `Flags the snapshot for refresh on the next query without rescanning now.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService()
		if err != nil {
			return err
		}
		reason := "manual invalidation"
		if len(args) == 1 {
			reason = args[0]
		}
		svc.MarkCacheStale(reason)
		fmt.Println("Cache marked stale.")
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheInfoCmd)
	cacheCmd.AddCommand(cacheRefreshCmd)
	cacheCmd.AddCommand(cacheInvalidateCmd)
	rootCmd.AddCommand(cacheCmd)
}
