package designator

import (
	"context"
	"errors"
	"io"
	"testing"
)

func quietReconciler(network NetworkClient, dns DNSClient, opts Options) *Reconciler {
	r := New(network, dns, opts)
	r.SetOutput(io.Discard)
	return r
}

func TestReadNetworkState(t *testing.T) {
	network := &fakeNetwork{
		networks: []Network{
			{ID: "n1", DNSDomain: strptr("example.com.")},
			{ID: "n2", DNSDomain: strptr("")},
		},
		subnets: []Subnet{
			{ID: "s1", NetworkID: "n1", CIDR: "10.0.0.0/24"},
			{ID: "s2", NetworkID: "n2", CIDR: "10.0.1.0/24"},
		},
		ports: []Port{
			{ID: "p1", DNSName: strptr("host1"), FixedIPs: []FixedIP{{Address: "10.0.0.5", SubnetID: "s1"}}},
			{ID: "p2", DNSName: strptr(""), FixedIPs: []FixedIP{{Address: "10.0.0.6", SubnetID: "s1"}}},
			{ID: "p3", DNSName: strptr("host3"), FixedIPs: []FixedIP{{Address: "10.0.1.7", SubnetID: "s2"}}},
		},
	}
	r := quietReconciler(network, newFakeDNS(), Options{})

	state, err := r.ReadNetworkState(context.Background())
	if err != nil {
		t.Fatalf("ReadNetworkState: %v", err)
	}
	if got, want := state.SubnetZones["s1"], "example.com."; got != want {
		t.Fatalf("subnet s1 mapped to %q, want %q", got, want)
	}
	if _, ok := state.SubnetZones["s2"]; ok {
		t.Fatal("subnet of a domain-less network must not be mapped")
	}
	if _, ok := state.Ports["p1"]; !ok {
		t.Fatal("eligible port p1 missing from working set")
	}
	if state.Ports["p1"].Domain != "example.com." {
		t.Fatalf("p1 domain = %q", state.Ports["p1"].Domain)
	}
	if _, ok := state.Ports["p2"]; ok {
		t.Fatal("port with empty dns_name must be ineligible")
	}
	if _, ok := state.Ports["p3"]; ok {
		t.Fatal("port with no resolvable domain must be skipped")
	}
	if _, ok := state.NamedPorts["p3"]; !ok {
		t.Fatal("skipped port must still anchor staleness checks")
	}
	if _, ok := state.NamedPorts["p2"]; ok {
		t.Fatal("nameless port must not appear anywhere")
	}
}

func TestReadNetworkStateMissingAttributesAreFatal(t *testing.T) {
	r := quietReconciler(&fakeNetwork{
		networks: []Network{{ID: "n1"}}, // dns_domain attribute absent
	}, newFakeDNS(), Options{})
	if _, err := r.ReadNetworkState(context.Background()); !IsConfigError(err) {
		t.Fatalf("expected ConfigError for missing dns_domain, got %v", err)
	}

	r = quietReconciler(&fakeNetwork{
		networks: []Network{{ID: "n1", DNSDomain: strptr("example.com.")}},
		ports:    []Port{{ID: "p1"}}, // dns_name attribute absent
	}, newFakeDNS(), Options{})
	if _, err := r.ReadNetworkState(context.Background()); !IsConfigError(err) {
		t.Fatalf("expected ConfigError for missing dns_name, got %v", err)
	}
}

func TestReadNetworkStateClientErrorIsFatal(t *testing.T) {
	boom := errors.New("neutron is down")
	r := quietReconciler(&fakeNetwork{portsErr: boom, networks: []Network{{ID: "n1", DNSDomain: strptr("d.")}}}, newFakeDNS(), Options{})
	if _, err := r.ReadNetworkState(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped client error, got %v", err)
	}
}

func TestReadZoneStateFiltersAndIsolatesFailures(t *testing.T) {
	dns := newFakeDNS(
		Zone{ID: "z1", Name: "example.com."},
		Zone{ID: "z2", Name: "broken.example.com."},
	)
	dns.add("z1", RecordSet{Name: "host1.example.com.", Type: "A", Records: []string{"10.0.0.5"}})
	dns.add("z1", RecordSet{Name: "example.com.", Type: "SOA", Records: []string{"ns1.example.com."}})
	dns.add("z1", RecordSet{Name: "example.com.", Type: "NS", Records: []string{"ns1.example.com."}})
	dns.listErr = map[string]error{"z2": errors.New("service unavailable")}

	r := quietReconciler(&fakeNetwork{}, dns, Options{Workers: 2})
	state := r.ReadZoneState(context.Background())

	sets := state.RecordSets["example.com."]
	if len(sets) != 1 || sets[0].Type != "A" {
		t.Fatalf("expected only the A recordset to be retained, got %#v", sets)
	}
	if len(state.RecordSets["broken.example.com."]) != 0 {
		t.Fatal("zone with a failed read must be treated as empty")
	}
	if _, ok := state.Zones["broken.example.com."]; !ok {
		t.Fatal("failed zone must still be addressable for creates")
	}
}

func TestReadZoneStateListZonesFailureNonFatal(t *testing.T) {
	dns := newFakeDNS()
	dns.zonesErr = errors.New("designate is down")
	r := quietReconciler(&fakeNetwork{}, dns, Options{})
	state := r.ReadZoneState(context.Background())
	if len(state.Zones) != 0 || len(state.RecordSets) != 0 {
		t.Fatal("zone list failure should produce an empty actual state")
	}
}
