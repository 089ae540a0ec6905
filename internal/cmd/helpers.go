package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"designator/internal/backup"
	"designator/internal/cloudflare"
	"designator/internal/designator"
	"designator/internal/openstack"
)

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBoolWithDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDurationWithDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// mustGetStringFlag retrieves a string flag value.
// Errors are ignored because cobra guarantees flags exist if they're defined.
func mustGetStringFlag(cmd *cobra.Command, name string) string {
	val, _ := cmd.Flags().GetString(name)
	return val
}

// mustGetBoolFlag retrieves a bool flag value.
// Errors are ignored because cobra guarantees flags exist if they're defined.
func mustGetBoolFlag(cmd *cobra.Command, name string) bool {
	val, _ := cmd.Flags().GetBool(name)
	return val
}

// mustGetIntFlag retrieves an int flag value.
// Errors are ignored because cobra guarantees flags exist if they're defined.
func mustGetIntFlag(cmd *cobra.Command, name string) int {
	val, _ := cmd.Flags().GetInt(name)
	return val
}

// mustGetDurationFlag retrieves a duration flag value.
// Errors are ignored because cobra guarantees flags exist if they're defined.
func mustGetDurationFlag(cmd *cobra.Command, name string) time.Duration {
	val, _ := cmd.Flags().GetDuration(name)
	return val
}

// registerProviderFlags adds the DNS backend selection shared by sync,
// export and conn.
func registerProviderFlags(cmd *cobra.Command) {
	cmd.Flags().String("dns-provider", getEnvWithDefault("DNS_PROVIDER", "designate"), "DNS backend: designate or cloudflare (env: DNS_PROVIDER)")
	cmd.Flags().String("cloudflare-token", getEnvWithDefault("CLOUDFLARE_API_TOKEN", ""), "Cloudflare API token (env: CLOUDFLARE_API_TOKEN)")
	cmd.Flags().Int("record-ttl", getEnvIntWithDefault("DESIGNATOR_RECORD_TTL", 0), "TTL for created records; 0 uses the backend default (env: DESIGNATOR_RECORD_TTL)")
	cmd.Flags().String("cloud", getEnvWithDefault("OS_CLOUD", getEnvWithDefault("OS_PROJECT_NAME", "openstack")), "Cloud name used to label snapshots (env: OS_CLOUD)")
}

func registerMinioFlags(cmd *cobra.Command) {
	cmd.Flags().String("minio-endpoint", getEnvWithDefault("MINIO_ENDPOINT", ""), "Minio endpoint (env: MINIO_ENDPOINT)")
	cmd.Flags().String("minio-access-key", getEnvWithDefault("MINIO_ACCESS_KEY", ""), "Minio access key (env: MINIO_ACCESS_KEY)")
	cmd.Flags().String("minio-secret-key", getEnvWithDefault("MINIO_SECRET_KEY", ""), "Minio secret key (env: MINIO_SECRET_KEY)")
	cmd.Flags().String("minio-bucket", getEnvWithDefault("MINIO_BUCKET", "dns-state"), "Minio bucket (env: MINIO_BUCKET)")
	cmd.Flags().Bool("minio-ssl", getEnvBoolWithDefault("MINIO_SSL", true), "Use SSL for Minio (env: MINIO_SSL)")
	cmd.Flags().String("bucket-path", getEnvWithDefault("MINIO_BUCKET_PATH", ""), "Path prefix in bucket (env: MINIO_BUCKET_PATH)")
	cmd.Flags().Duration("minio-http-timeout", getEnvDurationWithDefault("MINIO_HTTP_TIMEOUT", 0), "Minio HTTP timeout (env: MINIO_HTTP_TIMEOUT)")
	cmd.Flags().Bool("auto-create-bucket", getEnvBoolWithDefault("MINIO_AUTO_CREATE_BUCKET", false), "Create the bucket when it does not exist (env: MINIO_AUTO_CREATE_BUCKET)")
}

func minioConfigFromFlags(cmd *cobra.Command) (*backup.MinioConfig, error) {
	config := &backup.MinioConfig{
		Endpoint:         mustGetStringFlag(cmd, "minio-endpoint"),
		AccessKey:        mustGetStringFlag(cmd, "minio-access-key"),
		SecretKey:        mustGetStringFlag(cmd, "minio-secret-key"),
		Bucket:           mustGetStringFlag(cmd, "minio-bucket"),
		UseSSL:           mustGetBoolFlag(cmd, "minio-ssl"),
		BucketPath:       mustGetStringFlag(cmd, "bucket-path"),
		HTTPTimeout:      mustGetDurationFlag(cmd, "minio-http-timeout"),
		AutoCreateBucket: mustGetBoolFlag(cmd, "auto-create-bucket"),
	}
	if config.Endpoint == "" || config.AccessKey == "" || config.SecretKey == "" {
		return nil, errors.New("minio endpoint, access key and secret key are required")
	}
	return config, nil
}

// connectClients authenticates against the configured backends. The
// Neutron client is only built when the caller needs network state;
// export against Cloudflare works without any OS_* credentials.
func connectClients(ctx context.Context, cmd *cobra.Command, needNetwork bool) (designator.NetworkClient, designator.DNSClient, error) {
	provider := strings.ToLower(mustGetStringFlag(cmd, "dns-provider"))
	ttl := mustGetIntFlag(cmd, "record-ttl")

	var network designator.NetworkClient
	var dns designator.DNSClient

	switch provider {
	case "designate", "":
		clients, err := openstack.NewFromEnv(ctx)
		if err != nil {
			return nil, nil, err
		}
		clients.DNS.TTL = ttl
		network = clients.Network
		dns = clients.DNS
	case "cloudflare":
		client, err := cloudflare.NewClient(mustGetStringFlag(cmd, "cloudflare-token"))
		if err != nil {
			return nil, nil, err
		}
		client.TTL = ttl
		dns = client
		if needNetwork {
			clients, err := openstack.NewFromEnv(ctx)
			if err != nil {
				return nil, nil, err
			}
			network = clients.Network
		}
	default:
		return nil, nil, fmt.Errorf("unknown dns provider %q (want designate or cloudflare)", provider)
	}

	return network, dns, nil
}

func verbosityFromFlags(cmd *cobra.Command) int {
	if mustGetBoolFlag(cmd, "quiet") {
		return 0
	}
	if verbose, _ := cmd.Root().PersistentFlags().GetBool("verbose"); verbose {
		return 2
	}
	return 1
}

// writeArtifact serializes v to path as json or yaml; "-" or an empty
// path writes to the command's stdout.
func writeArtifact(cmd *cobra.Command, v interface{}, path, format string, pretty bool) error {
	var (
		payload []byte
		err     error
	)
	switch strings.ToLower(format) {
	case "yaml", "yml":
		payload, err = yaml.Marshal(v)
	default:
		if pretty {
			payload, err = json.MarshalIndent(v, "", "  ")
		} else {
			payload, err = json.Marshal(v)
		}
	}
	if err != nil {
		return fmt.Errorf("encode %s output: %w", format, err)
	}

	if path == "" || path == "-" {
		if _, err := cmd.OutOrStdout().Write(payload); err != nil {
			return err
		}
		if len(payload) == 0 || payload[len(payload)-1] != '\n' {
			fmt.Fprintln(cmd.OutOrStdout())
		}
		return nil
	}
	return os.WriteFile(path, payload, 0o600)
}
