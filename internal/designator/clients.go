package designator

import (
	"context"
	"errors"
	"fmt"
)

// NetworkClient lists network-fabric state from the control plane. Any
// error from these calls is fatal for the pass: desired state cannot be
// trusted without a complete read.
type NetworkClient interface {
	ListNetworks(ctx context.Context) ([]Network, error)
	ListSubnets(ctx context.Context) ([]Subnet, error)
	ListPorts(ctx context.Context) ([]Port, error)
}

// DNSClient reads and mutates DNS state. Implementations translate
// backend-specific failures to ErrNotFound and ErrConflict so the
// reconciler can treat them uniformly.
type DNSClient interface {
	ListZones(ctx context.Context) ([]Zone, error)
	ListRecordSets(ctx context.Context, zoneID string) ([]RecordSet, error)
	CreateRecordSet(ctx context.Context, zoneID, name, rtype string, records []string) (RecordSet, error)
	DeleteRecordSet(ctx context.Context, zoneID, recordSetID string) error
}

var (
	// ErrNotFound marks a missing zone or recordset. Non-fatal: logged,
	// the affected scope is treated as empty or already reconciled.
	ErrNotFound = errors.New("not found")

	// ErrConflict marks a create that raced an already-existing exact
	// recordset. Non-fatal: the desired state is already satisfied.
	ErrConflict = errors.New("recordset already exists")
)

// ConfigError indicates required DNS metadata is entirely absent from
// control-plane objects, i.e. the DNS extension driver is not enabled.
// It aborts the pass.
type ConfigError struct {
	Attribute string
	Object    string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf(
		"the %q attribute was not found in the %s object; ensure the dns extension driver is enabled for the network plugin",
		e.Attribute, e.Object)
}

// IsConfigError reports whether err is (or wraps) a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
