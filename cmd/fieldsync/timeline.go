package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var timelineCmd = &cobra.Command{
	Use:   "timeline",
	Short: "Show per-timestamp cloud coverage",
	Long: `Aggregates bag and sample counts per run timestamp across the subtree
selected by the filter flags.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService()
		if err != nil {
			return err
		}

		data, err := svc.Timeline(cmd.Context(), filterFromFlags(cmd))
		if err != nil {
			return err
		}
		if len(data.Points) == 0 {
			fmt.Println("No data found.")
			return nil
		}

		for _, point := range data.Points {
			fmt.Printf("%-25s bags=%-4d samples=%d\n", point.Timestamp, point.BagCount, point.SampleCount)
		}
		return nil
	},
}

func init() {
	addFilterFlags(timelineCmd)
	rootCmd.AddCommand(timelineCmd)
}
