package designator

import "time"

// Record types this system manages. Everything else (SOA, NS, ...) is
// never read into the working set and never touched.
const (
	TypeA   = "A"
	TypePTR = "PTR"
)

// Network is a read-only snapshot of a layer-2 network. DNSDomain is nil
// when the control plane did not return the attribute at all, which
// signals a disabled DNS extension rather than an unset domain.
type Network struct {
	ID        string
	Name      string
	DNSDomain *string
	SubnetIDs []string
}

// Subnet is a read-only snapshot of an IP subnet.
type Subnet struct {
	ID        string
	NetworkID string
	CIDR      string
}

// FixedIP binds an address to a port on a specific subnet.
type FixedIP struct {
	Address  string
	SubnetID string
}

// Port is a read-only snapshot of a virtual port. DNSName is nil when
// the attribute was absent from the API response (fatal configuration
// error); a present-but-empty name just makes the port ineligible.
type Port struct {
	ID       string
	DNSName  *string
	FixedIPs []FixedIP

	// Domain is resolved during the read phase: the dns_domain of the
	// first fixed IP whose subnet maps to one. Empty means the port was
	// skipped before it reached the working set.
	Domain string
}

// Name returns the port's dns_name, or "" when the attribute is unset.
func (p Port) Name() string {
	if p.DNSName == nil {
		return ""
	}
	return *p.DNSName
}

// Zone is a read-only snapshot of a DNS zone. Names carry a trailing dot.
type Zone struct {
	ID   string
	Name string
}

// RecordSet is a named group of records of one type within a zone.
// Mutations happen only through DNSClient calls, addressed by ID.
type RecordSet struct {
	ID       string   `json:"id" yaml:"id"`
	ZoneID   string   `json:"zone_id" yaml:"zone_id"`
	ZoneName string   `json:"zone_name" yaml:"zone_name"`
	Name     string   `json:"name" yaml:"name"`
	Type     string   `json:"type" yaml:"type"`
	Records  []string `json:"records" yaml:"records"`
}

// DesiredRecord is a (name, type, target, zone) tuple the reconciler
// asserts should exist. Computed per pass, never persisted.
type DesiredRecord struct {
	ZoneName string
	Name     string
	Type     string
	Target   string
}

// NetworkState is the output of the network-side read phase.
type NetworkState struct {
	// Ports holds the DNS-eligible ports by port ID: non-empty dns_name
	// and at least one fixed IP on a domain-mapped subnet. Only these
	// drive record creation.
	Ports map[string]Port
	// NamedPorts holds every port with a non-empty dns_name, including
	// those with no resolvable domain. Staleness checks run against
	// this superset so that a port on an unmapped subnet never gets its
	// records deleted out from under it.
	NamedPorts map[string]Port
	// SubnetZones maps subnet ID to the owning network's dns_domain.
	SubnetZones map[string]string
}

// ZoneState is the output of the DNS-side read phase: zone name to the
// A/PTR recordsets currently present in that zone.
type ZoneState struct {
	Zones      map[string]Zone
	RecordSets map[string][]RecordSet
}

// Summary reports what a pass did. Conflicts are creates that turned
// out to already exist; they count as satisfied, not as errors.
type Summary struct {
	Started      time.Time `json:"started_at" yaml:"started_at"`
	Finished     time.Time `json:"finished_at" yaml:"finished_at"`
	Ports        int       `json:"ports" yaml:"ports"`
	SkippedPorts int       `json:"skipped_ports" yaml:"skipped_ports"`
	Creates      int       `json:"creates" yaml:"creates"`
	Deletes      int       `json:"deletes" yaml:"deletes"`
	Conflicts    int       `json:"conflicts" yaml:"conflicts"`
	Errors       int       `json:"errors" yaml:"errors"`
	DryRun       bool      `json:"dry_run" yaml:"dry_run"`
}
