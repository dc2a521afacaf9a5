package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/nbarbarousis/fieldsync/synctypes"
)

var transferCmd = &cobra.Command{
	Use:   "transfer <operation> <coordinate>",
	Short: "Plan and run a transfer for one coordinate",
	Long: `Plans a transfer between cloud storage and the local tree and, with
--execute, runs it. Without --execute only the plan is printed.

Operations:
  raw_download   cloud raw bags -> local
  ml_download    cloud ML samples -> local
  ml_upload      local ML samples -> cloud

Examples:
  fieldsync transfer raw_download acme/emea/field-7/2025-w33/lb-042/2025-08-12-08-54-00
  fieldsync transfer raw_download <coordinate> --indices 0,2 --execute
  fieldsync transfer ml_download <coordinate> --types labels --policy overwrite --execute`,
	Args: cobra.ExactArgs(2),
	RunE: runTransfer,
}

func init() {
	transferCmd.Flags().StringSlice("bags", nil, "select bags by source-convention name")
	transferCmd.Flags().IntSlice("indices", nil, "select bags by position in the sorted listing (raw only)")
	transferCmd.Flags().StringSlice("types", nil, "restrict ML operations to frames and/or labels")
	transferCmd.Flags().String("policy", "skip", "conflict policy (skip or overwrite)")
	transferCmd.Flags().Bool("execute", false, "run the plan instead of just printing it")
	rootCmd.AddCommand(transferCmd)
}

func runTransfer(cmd *cobra.Command, args []string) error {
	op := synctypes.OperationType(args[0])
	switch op {
	case synctypes.OpRawDownload, synctypes.OpMLDownload, synctypes.OpMLUpload:
	default:
		return fmt.Errorf("unknown operation %q: expected raw_download, ml_download, or ml_upload", args[0])
	}

	coord, err := parseCoordinateArg(args[1])
	if err != nil {
		return err
	}

	policyName, _ := cmd.Flags().GetString("policy")
	policy := synctypes.ConflictPolicy(policyName)
	if policy != synctypes.PolicySkip && policy != synctypes.PolicyOverwrite {
		return fmt.Errorf("unknown policy %q: expected skip or overwrite", policyName)
	}

	criteria, err := criteriaFromFlags(cmd)
	if err != nil {
		return err
	}

	svc, err := newService()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	job := svc.CreateJob(coord, op, criteria, policy)

	execute, _ := cmd.Flags().GetBool("execute")
	if !execute {
		result := svc.Plan(ctx, job)
		return printPlanResult(result)
	}

	result := svc.Execute(ctx, job)
	return printExecuteResult(result)
}

// criteriaFromFlags assembles the selection. With no selection flags the
// job covers every bag.
func criteriaFromFlags(cmd *cobra.Command) (synctypes.SelectionCriteria, error) {
	bags, _ := cmd.Flags().GetStringSlice("bags")
	indices, _ := cmd.Flags().GetIntSlice("indices")
	typeNames, _ := cmd.Flags().GetStringSlice("types")

	criteria := synctypes.SelectionCriteria{
		BagNames:   bags,
		BagIndices: indices,
	}
	if len(bags) == 0 && len(indices) == 0 {
		criteria.All = true
	}

	for _, name := range typeNames {
		ft := synctypes.FileType(name)
		if ft != synctypes.FileTypeFrames && ft != synctypes.FileTypeLabels {
			return synctypes.SelectionCriteria{}, fmt.Errorf("unknown file type %q: expected frames or labels", name)
		}
		criteria.FileTypes = append(criteria.FileTypes, ft)
	}
	return criteria, nil
}

func printPlanResult(result *synctypes.OperationResult) error {
	if !result.Success {
		printError("%s", result.Error)
		return fmt.Errorf("planning failed")
	}

	plan := result.Plan
	fmt.Printf("Plan: %d files, %s\n", plan.TotalFiles, humanize.Bytes(uint64(plan.TotalSize)))
	for _, f := range plan.Files {
		fmt.Printf("  transfer %s -> %s (%s)\n", f.Name, f.TargetName, humanize.Bytes(uint64(f.Size)))
	}
	for _, s := range plan.Skips {
		fmt.Printf("  skip     %s (%s)\n", s.File.Name, s.Reason)
	}
	for _, c := range plan.Conflicts {
		fmt.Printf("  conflict %s (%s: source=%s target=%s)\n",
			c.File.Name, c.Reason,
			humanize.Bytes(uint64(c.SourceSize)), humanize.Bytes(uint64(c.TargetSize)))
	}
	return nil
}

func printExecuteResult(result *synctypes.OperationResult) error {
	if result.Error != "" {
		printError("%s", result.Error)
		if result.Critical {
			return fmt.Errorf("transfer failed")
		}
		return nil
	}

	if result.Message != "" {
		fmt.Println(result.Message)
		return nil
	}

	for _, f := range result.Files {
		mark := "ok  "
		if !f.Success {
			mark = "FAIL"
		}
		fmt.Printf("  %s %s (%s in %s)\n", mark, f.File.TargetName,
			humanize.Bytes(uint64(f.Bytes)), f.Duration.Round(time.Millisecond))
		if f.Error != "" {
			fmt.Printf("       %s\n", f.Error)
		}
	}

	s := result.Summary
	fmt.Printf("\n%d/%d files, %s in %s (%.1f MB/s)\n",
		s.Successful, s.TotalFiles,
		humanize.Bytes(uint64(s.TotalBytes)),
		s.Duration.Round(time.Millisecond),
		s.AvgSpeedMBps)

	if result.Warning != "" {
		printError("%s", result.Warning)
		return fmt.Errorf("transfer incomplete")
	}
	return nil
}
