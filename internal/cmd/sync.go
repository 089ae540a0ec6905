package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"designator/internal/backup"
	"designator/internal/designator"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one reconciliation pass",
	Long: `Sync reads every dns-named Neutron port and the full DNS zone state,
deletes A/PTR recordsets whose values no longer correspond to a live
port, then creates the records that are missing. Stale records are
pruned before any creation so a renamed port converges in a single
pass.`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func init() {
	registerProviderFlags(syncCmd)
	registerMinioFlags(syncCmd)

	syncCmd.Flags().Bool("dry-run", false, "Log every create and delete without calling the DNS service")
	syncCmd.Flags().Int("workers", getEnvIntWithDefault("DESIGNATOR_WORKERS", 8), "Concurrent zone reads (env: DESIGNATOR_WORKERS)")
	syncCmd.Flags().String("ptr-match", getEnvWithDefault("DESIGNATOR_PTR_MATCH", "exact"), "PTR staleness comparison: exact or pattern (env: DESIGNATOR_PTR_MATCH)")
	syncCmd.Flags().Duration("timeout", getEnvDurationWithDefault("DESIGNATOR_TIMEOUT", 10*time.Minute), "Overall pass timeout (env: DESIGNATOR_TIMEOUT)")
	syncCmd.Flags().Bool("quiet", false, "Suppress per-operation output")

	syncCmd.Flags().String("snapshot", "", "Write the pre-prune zone state to this file")
	syncCmd.Flags().String("snapshot-format", "", "Snapshot format: json or yaml (default: from extension)")
	syncCmd.Flags().Bool("upload-minio", false, "Upload the pre-prune snapshot to Minio")

	syncCmd.Flags().String("summary-output", "", "Write the pass summary to this file ('-' for stdout)")
	syncCmd.Flags().String("summary-format", "json", "Summary format: json or yaml")
	syncCmd.Flags().Bool("pretty", true, "Pretty-print JSON output")

	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), mustGetDurationFlag(cmd, "timeout"))
	defer cancel()

	network, dns, err := connectClients(ctx, cmd, true)
	if err != nil {
		return err
	}

	mode := designator.MatchMode(strings.ToLower(mustGetStringFlag(cmd, "ptr-match")))
	if !designator.ValidMatchMode(mode) {
		return fmt.Errorf("invalid --ptr-match %q (want exact or pattern)", mode)
	}

	reconciler := designator.New(network, dns, designator.Options{
		Workers:  mustGetIntFlag(cmd, "workers"),
		DryRun:   mustGetBoolFlag(cmd, "dry-run"),
		PTRMatch: mode,
	})
	reconciler.SetVerbosity(verbosityFromFlags(cmd))
	reconciler.SetOutput(cmd.OutOrStdout())

	if fn, err := snapshotFunc(ctx, cmd); err != nil {
		return err
	} else if fn != nil {
		reconciler.SetSnapshotFunc(fn)
	}

	summary, err := reconciler.Run(ctx)
	if err != nil {
		return err
	}

	if output := mustGetStringFlag(cmd, "summary-output"); output != "" {
		format := mustGetStringFlag(cmd, "summary-format")
		if err := writeArtifact(cmd, summary, output, format, mustGetBoolFlag(cmd, "pretty")); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
	}

	return nil
}

// snapshotFunc builds the pre-prune hook from the snapshot flags, or
// nil when no snapshot was requested.
func snapshotFunc(ctx context.Context, cmd *cobra.Command) (func(*designator.ZoneState) error, error) {
	path := mustGetStringFlag(cmd, "snapshot")
	upload := mustGetBoolFlag(cmd, "upload-minio")
	if path == "" && !upload {
		return nil, nil
	}

	var store *backup.Store
	if upload {
		config, err := minioConfigFromFlags(cmd)
		if err != nil {
			return nil, err
		}
		store = backup.NewStore(config)
	}

	cloud := mustGetStringFlag(cmd, "cloud")
	format := mustGetStringFlag(cmd, "snapshot-format")
	pretty := mustGetBoolFlag(cmd, "pretty")

	return func(state *designator.ZoneState) error {
		snapshot := backup.New(cloud, state)
		if path != "" {
			if err := backup.Save(snapshot, path, format, pretty); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Snapshot saved to %s\n", path)
		}
		if store != nil {
			key, err := store.Upload(ctx, snapshot, format)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Snapshot uploaded to Minio as %s\n", key)
		}
		return nil
	}, nil
}
