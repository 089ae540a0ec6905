package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"designator/internal/backup"
)

var snapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "List zone snapshots stored in Minio",
	Args:  cobra.NoArgs,
	RunE:  runSnapshots,
}

func init() {
	registerMinioFlags(snapshotsCmd)

	snapshotsCmd.Flags().String("prefix", "", "Filter by object key prefix")
	snapshotsCmd.Flags().Int("limit", 0, "Maximum number of snapshots to list (0 = all)")
	snapshotsCmd.Flags().Duration("timeout", 30*time.Second, "Listing timeout")

	rootCmd.AddCommand(snapshotsCmd)
}

func runSnapshots(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), mustGetDurationFlag(cmd, "timeout"))
	defer cancel()

	config, err := minioConfigFromFlags(cmd)
	if err != nil {
		return err
	}

	snapshots, err := backup.NewStore(config).List(ctx, mustGetStringFlag(cmd, "prefix"), mustGetIntFlag(cmd, "limit"))
	if err != nil {
		return err
	}
	if len(snapshots) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No snapshots found")
		return nil
	}

	for _, info := range snapshots {
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %8d bytes  %s\n",
			info.LastModified.Format(time.RFC3339), info.Size, info.Key)
	}
	return nil
}
