package backup

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioConfig contains configuration for Minio storage.
type MinioConfig struct {
	Endpoint         string
	AccessKey        string
	SecretKey        string
	Bucket           string
	UseSSL           bool
	BucketPath       string // Optional path prefix within bucket
	HTTPTimeout      time.Duration
	AutoCreateBucket bool
}

// SnapshotInfo represents metadata about a stored snapshot.
type SnapshotInfo struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

// Store uploads and retrieves DNS state snapshots in a Minio bucket.
type Store struct {
	client *minio.Client
	config *MinioConfig
}

// NewStore creates a snapshot store backed by the given Minio bucket.
func NewStore(config *MinioConfig) *Store {
	return &Store{config: config}
}

func (s *Store) init(ctx context.Context) error {
	if s.client != nil {
		return nil
	}

	tr := &http.Transport{
		IdleConnTimeout:     5 * time.Minute,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 100,
	}
	if s.config.HTTPTimeout > 0 {
		tr.ResponseHeaderTimeout = s.config.HTTPTimeout
	}

	client, err := minio.New(s.config.Endpoint, &minio.Options{
		Creds:     credentials.NewStaticV4(s.config.AccessKey, s.config.SecretKey, ""),
		Secure:    s.config.UseSSL,
		Transport: tr,
	})
	if err != nil {
		return fmt.Errorf("failed to create Minio client: %w", err)
	}

	s.client = client

	exists, err := s.client.BucketExists(ctx, s.config.Bucket)
	if err != nil {
		return fmt.Errorf("failed to check if bucket exists: %w", err)
	}

	if !exists {
		if !s.config.AutoCreateBucket {
			return fmt.Errorf("bucket %s does not exist", s.config.Bucket)
		}
		if err := s.client.MakeBucket(ctx, s.config.Bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", s.config.Bucket, err)
		}
	}

	return nil
}

// Ping verifies that the bucket is reachable with the configured
// credentials.
func (s *Store) Ping(ctx context.Context) error {
	return s.init(ctx)
}

// Upload encodes the snapshot and writes it to the bucket under a
// timestamped object key. It returns the key the snapshot was stored
// under.
func (s *Store) Upload(ctx context.Context, snapshot *Snapshot, format string) (string, error) {
	if err := s.init(ctx); err != nil {
		return "", err
	}
	if err := snapshot.Validate(); err != nil {
		return "", err
	}
	if format == "" {
		format = "json"
	}

	content, err := Encode(snapshot, format, true)
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}

	objectName := snapshot.ObjectKey(format)
	if s.config.BucketPath != "" {
		objectName = filepath.Join(s.config.BucketPath, objectName)
	}

	_, err = s.client.PutObject(ctx, s.config.Bucket, objectName,
		bytes.NewReader(content), int64(len(content)), minio.PutObjectOptions{
			ContentType: "application/" + format,
		})
	if err != nil {
		return "", fmt.Errorf("failed to upload to Minio: %w", err)
	}

	return objectName, nil
}

// List returns stored snapshots, most recent first. An empty prefix
// lists everything under the snapshot prefix; limit 0 means no limit.
func (s *Store) List(ctx context.Context, prefix string, limit int) ([]SnapshotInfo, error) {
	if err := s.init(ctx); err != nil {
		return nil, err
	}

	if prefix != "" && !strings.HasPrefix(prefix, "dns-state/") {
		prefix = "dns-state/" + prefix
	} else if prefix == "" {
		prefix = "dns-state/"
	}
	if s.config.BucketPath != "" {
		prefix = filepath.Join(s.config.BucketPath, prefix)
	}

	opts := minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}

	var snapshots []SnapshotInfo
	for obj := range s.client.ListObjects(ctx, s.config.Bucket, opts) {
		if obj.Err != nil {
			return nil, fmt.Errorf("error listing objects: %w", obj.Err)
		}
		snapshots = append(snapshots, SnapshotInfo{
			Key:          obj.Key,
			Size:         obj.Size,
			LastModified: obj.LastModified,
		})
		if limit > 0 && len(snapshots) >= limit {
			break
		}
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].LastModified.After(snapshots[j].LastModified)
	})

	return snapshots, nil
}

// Download fetches a stored snapshot by object key. The serialization
// format is inferred from the key's extension.
func (s *Store) Download(ctx context.Context, objectKey string) (*Snapshot, error) {
	if err := s.init(ctx); err != nil {
		return nil, err
	}

	object, err := s.client.GetObject(ctx, s.config.Bucket, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", objectKey, err)
	}
	defer object.Close()

	data, err := io.ReadAll(object)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", objectKey, err)
	}

	return decode(data, detectFormatFromPath(objectKey))
}
