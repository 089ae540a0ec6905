// Package backup persists point-in-time snapshots of the DNS state the
// reconciler read, taken before any pruning so an operator can see (and
// restore by hand) exactly what a pass was about to change.
package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"designator/internal/designator"
)

var (
	errEmptyCloud = errors.New("cloud name is required")
	errNoZones    = errors.New("snapshot does not contain any zones")
)

// Snapshot captures the A/PTR recordsets of every zone at the start of
// a reconciliation pass.
type Snapshot struct {
	Cloud      string                            `json:"cloud" yaml:"cloud"`
	Taken      time.Time                         `json:"taken_at" yaml:"taken_at"`
	RecordSets map[string][]designator.RecordSet `json:"recordsets" yaml:"recordsets"`
	Metadata   map[string]string                 `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// New builds a snapshot from the reconciler's zone state.
func New(cloud string, state *designator.ZoneState) *Snapshot {
	sets := make(map[string][]designator.RecordSet, len(state.RecordSets))
	for zone, list := range state.RecordSets {
		sets[zone] = append([]designator.RecordSet(nil), list...)
	}
	return &Snapshot{
		Cloud:      cloud,
		Taken:      time.Now().UTC(),
		RecordSets: sets,
	}
}

// Validate performs basic sanity checks before a snapshot is persisted.
func (s *Snapshot) Validate() error {
	if s == nil {
		return errors.New("nil snapshot")
	}
	if strings.TrimSpace(s.Cloud) == "" {
		return errEmptyCloud
	}
	if len(s.RecordSets) == 0 {
		return errNoZones
	}
	if s.Taken.IsZero() {
		s.Taken = time.Now().UTC()
	}
	return nil
}

// Zones returns the zone names covered by the snapshot, sorted.
func (s *Snapshot) Zones() []string {
	zones := make([]string, 0, len(s.RecordSets))
	for zone := range s.RecordSets {
		zones = append(zones, zone)
	}
	sort.Strings(zones)
	return zones
}

// ObjectKey names the snapshot for storage: the cloud name plus the
// capture timestamp, under a fixed prefix.
func (s *Snapshot) ObjectKey(format string) string {
	ext := ".json"
	if format == "yaml" || format == "yml" {
		ext = ".yaml"
	}
	return fmt.Sprintf("dns-state/%s-%s%s", s.Cloud, s.Taken.Format("20060102-150405"), ext)
}

// Save writes the snapshot to disk using the requested serialization
// format; an empty format is inferred from the path extension.
func Save(snapshot *Snapshot, path, format string, pretty bool) error {
	if err := snapshot.Validate(); err != nil {
		return err
	}
	if format == "" {
		format = detectFormatFromPath(path)
	}
	content, err := Encode(snapshot, format, pretty)
	if err != nil {
		return err
	}
	return os.WriteFile(path, content, 0o600)
}

// Load reads a snapshot from disk. Format is inferred from the
// extension when empty.
func Load(path, format string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	if format == "" {
		format = detectFormatFromPath(path)
	}
	return decode(data, format)
}

// Encode serializes the snapshot to JSON or YAML.
func Encode(snapshot *Snapshot, format string, pretty bool) ([]byte, error) {
	if err := snapshot.Validate(); err != nil {
		return nil, err
	}
	switch strings.ToLower(format) {
	case "yaml", "yml":
		return yaml.Marshal(snapshot)
	default:
		if pretty {
			return json.MarshalIndent(snapshot, "", "  ")
		}
		return json.Marshal(snapshot)
	}
}

func decode(data []byte, format string) (*Snapshot, error) {
	s := &Snapshot{}
	switch strings.ToLower(format) {
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, s); err != nil {
			return nil, fmt.Errorf("decode yaml snapshot: %w", err)
		}
	default:
		if err := json.Unmarshal(data, s); err != nil {
			return nil, fmt.Errorf("decode json snapshot: %w", err)
		}
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func detectFormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}
