package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"designator/internal/backup"
	"designator/internal/designator"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Capture the current DNS zone state without reconciling",
	Long: `Export runs only the read phase: it lists every zone and its A/PTR
recordsets and writes them out as a snapshot, to a file, stdout, or
Minio. Nothing is created or deleted.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	registerProviderFlags(exportCmd)
	registerMinioFlags(exportCmd)

	exportCmd.Flags().String("output", "", "File to write the snapshot to (default: stdout)")
	exportCmd.Flags().String("format", "json", "Snapshot format: json or yaml")
	exportCmd.Flags().Bool("pretty", true, "Pretty-print JSON output")
	exportCmd.Flags().Bool("upload-minio", false, "Also upload the snapshot to Minio")
	exportCmd.Flags().Int("workers", getEnvIntWithDefault("DESIGNATOR_WORKERS", 8), "Concurrent zone reads (env: DESIGNATOR_WORKERS)")
	exportCmd.Flags().Duration("timeout", getEnvDurationWithDefault("DESIGNATOR_TIMEOUT", 5*time.Minute), "Export timeout (env: DESIGNATOR_TIMEOUT)")
	exportCmd.Flags().Bool("quiet", false, "Suppress progress output")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), mustGetDurationFlag(cmd, "timeout"))
	defer cancel()

	network, dns, err := connectClients(ctx, cmd, false)
	if err != nil {
		return err
	}

	reconciler := designator.New(network, dns, designator.Options{
		Workers: mustGetIntFlag(cmd, "workers"),
	})
	reconciler.SetVerbosity(verbosityFromFlags(cmd))
	reconciler.SetOutput(cmd.ErrOrStderr())

	state := reconciler.ReadZoneState(ctx)
	snapshot := backup.New(mustGetStringFlag(cmd, "cloud"), state)
	if err := snapshot.Validate(); err != nil {
		return fmt.Errorf("nothing to export: %w", err)
	}

	format := mustGetStringFlag(cmd, "format")
	pretty := mustGetBoolFlag(cmd, "pretty")
	output := mustGetStringFlag(cmd, "output")

	if output == "" || output == "-" {
		if err := writeArtifact(cmd, snapshot, "", format, pretty); err != nil {
			return err
		}
	} else {
		if err := backup.Save(snapshot, output, format, pretty); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Snapshot saved to %s (%d zones)\n", output, len(snapshot.RecordSets))
	}

	if mustGetBoolFlag(cmd, "upload-minio") {
		config, err := minioConfigFromFlags(cmd)
		if err != nil {
			return err
		}
		key, err := backup.NewStore(config).Upload(ctx, snapshot, format)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Snapshot uploaded to Minio as %s\n", key)
	}

	return nil
}
