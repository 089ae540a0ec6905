package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"designator/internal/backup"
	"designator/internal/cloudflare"
	"designator/internal/openstack"
)

var connCmd = &cobra.Command{
	Use:   "conn",
	Short: "Verify connectivity to the configured backends",
	Long: `Conn authenticates against each configured backend and performs a
cheap read, so credential and endpoint problems surface before a real
pass runs.`,
	Args: cobra.NoArgs,
	RunE: runConn,
}

func init() {
	registerProviderFlags(connCmd)
	registerMinioFlags(connCmd)

	connCmd.Flags().String("domain", "", "Domain to resolve against Cloudflare as part of the check")
	connCmd.Flags().Bool("check-minio", false, "Also verify the Minio bucket is reachable")
	connCmd.Flags().Duration("timeout", 30*time.Second, "Per-check timeout")

	rootCmd.AddCommand(connCmd)
}

func runConn(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), mustGetDurationFlag(cmd, "timeout"))
	defer cancel()

	out := cmd.OutOrStdout()
	failed := 0

	provider := mustGetStringFlag(cmd, "dns-provider")
	switch provider {
	case "cloudflare":
		if err := checkCloudflare(ctx, cmd); err != nil {
			fmt.Fprintf(out, "✗ Cloudflare: %v\n", err)
			failed++
		} else {
			fmt.Fprintln(out, "✓ Cloudflare token valid")
		}
	default:
		if err := checkOpenStack(ctx, out); err != nil {
			fmt.Fprintf(out, "✗ OpenStack: %v\n", err)
			failed++
		}
	}

	if mustGetBoolFlag(cmd, "check-minio") {
		config, err := minioConfigFromFlags(cmd)
		if err == nil {
			err = backup.NewStore(config).Ping(ctx)
		}
		if err != nil {
			fmt.Fprintf(out, "✗ Minio: %v\n", err)
			failed++
		} else {
			fmt.Fprintf(out, "✓ Minio bucket %s reachable\n", config.Bucket)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d connectivity check(s) failed", failed)
	}
	return nil
}

func checkOpenStack(ctx context.Context, out io.Writer) error {
	clients, err := openstack.NewFromEnv(ctx)
	if err != nil {
		return err
	}
	networks, err := clients.Network.ListNetworks(ctx)
	if err != nil {
		return fmt.Errorf("list networks: %w", err)
	}
	fmt.Fprintf(out, "✓ Neutron reachable (%d networks)\n", len(networks))

	zones, err := clients.DNS.ListZones(ctx)
	if err != nil {
		return fmt.Errorf("list zones: %w", err)
	}
	fmt.Fprintf(out, "✓ Designate reachable (%d zones)\n", len(zones))
	return nil
}

func checkCloudflare(ctx context.Context, cmd *cobra.Command) error {
	client, err := cloudflare.NewClient(mustGetStringFlag(cmd, "cloudflare-token"))
	if err != nil {
		return err
	}
	if err := client.VerifyToken(ctx); err != nil {
		return err
	}
	if domain := mustGetStringFlag(cmd, "domain"); domain != "" {
		zoneID, err := client.ZoneIDForDomain(domain)
		if err != nil {
			return fmt.Errorf("resolve zone for %s: %w", domain, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Zone for %s: %s\n", domain, zoneID)
	}
	return nil
}
