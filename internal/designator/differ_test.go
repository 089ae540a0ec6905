package designator

import "testing"

func strptr(s string) *string { return &s }

func portsByID(ports ...Port) map[string]Port {
	m := make(map[string]Port, len(ports))
	for _, p := range ports {
		m[p.ID] = p
	}
	return m
}

func TestRecordExists(t *testing.T) {
	sets := []RecordSet{
		{Type: "A", Name: "host1.example.com.", ZoneName: "example.com.", Records: []string{"10.0.0.5"}},
		{Type: "PTR", Name: "5.0.0.10.in-addr.arpa.", ZoneName: "0.0.10.in-addr.arpa.", Records: []string{"host1.example.com."}},
	}
	if !recordExists(sets, "A", "host1.example.com.", "10.0.0.5") {
		t.Fatal("expected A record to exist")
	}
	if recordExists(sets, "A", "host1.example.com.", "10.0.0.6") {
		t.Fatal("target mismatch should not exist")
	}
	if recordExists(sets, "A", "host2.example.com.", "10.0.0.5") {
		t.Fatal("name mismatch should not exist")
	}
	if recordExists(sets, "PTR", "host1.example.com.", "10.0.0.5") {
		t.Fatal("type mismatch should not exist")
	}
	if recordExists(nil, "A", "host1.example.com.", "10.0.0.5") {
		t.Fatal("empty zone should not contain records")
	}
}

func TestRecordIsLiveForward(t *testing.T) {
	ports := portsByID(Port{
		ID:       "p1",
		DNSName:  strptr("host1"),
		Domain:   "example.com.",
		FixedIPs: []FixedIP{{Address: "10.0.0.5", SubnetID: "s1"}},
	})
	zones := map[string]string{"s1": "example.com."}
	rs := RecordSet{Type: "A", Name: "host1.example.com.", ZoneName: "example.com."}

	if !recordIsLive(rs, "10.0.0.5", ports, zones, MatchExact) {
		t.Fatal("matching port and IP should be live")
	}
	if recordIsLive(rs, "10.0.0.9", ports, zones, MatchExact) {
		t.Fatal("IP not held by the port should be stale")
	}
	ghost := RecordSet{Type: "A", Name: "ghost.example.com.", ZoneName: "example.com."}
	if recordIsLive(ghost, "10.0.0.5", ports, zones, MatchExact) {
		t.Fatal("name not held by any port should be stale")
	}
	apex := RecordSet{Type: "A", Name: "example.com.", ZoneName: "example.com."}
	if recordIsLive(apex, "10.0.0.5", ports, zones, MatchExact) {
		t.Fatal("owner name without a host label cannot match a port")
	}
}

func TestRecordIsLiveReverse(t *testing.T) {
	ports := portsByID(Port{
		ID:       "p1",
		DNSName:  strptr("host1"),
		Domain:   "example.com.",
		FixedIPs: []FixedIP{{Address: "10.0.0.5", SubnetID: "s1"}},
	})
	zones := map[string]string{"s1": "example.com."}
	rs := RecordSet{Type: "PTR", Name: "5.0.0.10.in-addr.arpa.", ZoneName: "0.0.10.in-addr.arpa."}

	if !recordIsLive(rs, "host1.example.com.", ports, zones, MatchExact) {
		t.Fatal("PTR pointing at the port FQDN should be live")
	}
	if recordIsLive(rs, "other.example.com.", ports, zones, MatchExact) {
		t.Fatal("PTR pointing elsewhere should be stale under exact matching")
	}
	if !recordIsLive(rs, "host1.old-domain.example.org.", ports, zones, MatchPattern) {
		t.Fatal("pattern mode anchors on dns_name and should match")
	}
	if recordIsLive(rs, "otherhost1.example.com.", ports, zones, MatchPattern) {
		t.Fatal("pattern mode is anchored at the start")
	}

	unknown := RecordSet{Type: "PTR", Name: "9.9.9.10.in-addr.arpa.", ZoneName: "9.9.10.in-addr.arpa."}
	if recordIsLive(unknown, "host1.example.com.", ports, zones, MatchExact) {
		t.Fatal("PTR for an IP no port holds should be stale")
	}
	malformed := RecordSet{Type: "PTR", Name: "bogus.in-addr.arpa.", ZoneName: "in-addr.arpa."}
	if recordIsLive(malformed, "host1.example.com.", ports, zones, MatchExact) {
		t.Fatal("undecodable owner name cannot correspond to a port")
	}
}

func TestRecordIsLiveReverseUsesSubnetDomain(t *testing.T) {
	// One port, two fixed IPs on subnets mapped to different domains.
	// Each PTR must be judged against the FQDN of its own subnet's
	// domain, not the port-level (first mapped) one.
	ports := portsByID(Port{
		ID:      "p1",
		DNSName: strptr("host1"),
		Domain:  "a.example.",
		FixedIPs: []FixedIP{
			{Address: "10.0.0.5", SubnetID: "s1"},
			{Address: "10.1.0.5", SubnetID: "s2"},
		},
	})
	zones := map[string]string{"s1": "a.example.", "s2": "b.example."}

	second := RecordSet{Type: "PTR", Name: "5.0.1.10.in-addr.arpa.", ZoneName: "0.1.10.in-addr.arpa."}
	if !recordIsLive(second, "host1.b.example.", ports, zones, MatchExact) {
		t.Fatal("PTR named from the second subnet's domain should be live")
	}
	if recordIsLive(second, "host1.a.example.", ports, zones, MatchExact) {
		t.Fatal("PTR carrying the wrong domain for its subnet should be stale")
	}
}

func TestRecordIsLivePatternTreatsNameAsRegex(t *testing.T) {
	// dns_name metacharacters keep their regex meaning in pattern mode.
	ports := portsByID(Port{
		ID:       "p1",
		DNSName:  strptr("web.1"),
		Domain:   "example.com.",
		FixedIPs: []FixedIP{{Address: "10.0.0.5", SubnetID: "s1"}},
	})
	zones := map[string]string{"s1": "example.com."}
	rs := RecordSet{Type: "PTR", Name: "5.0.0.10.in-addr.arpa.", ZoneName: "0.0.10.in-addr.arpa."}

	if !recordIsLive(rs, "webX1.example.com.", ports, zones, MatchPattern) {
		t.Fatal("a dot in dns_name matches any character in pattern mode")
	}
	if recordIsLive(rs, "webX1.example.com.", ports, zones, MatchExact) {
		t.Fatal("exact mode compares the literal FQDN")
	}
}

func TestRecordIsLiveUnmappedSubnetAnchorsRecords(t *testing.T) {
	// The port has a dns_name but its subnet maps to no domain: it must
	// neither create records (fill skips it) nor lose existing ones.
	ports := portsByID(Port{
		ID:       "p1",
		DNSName:  strptr("host1"),
		Domain:   "",
		FixedIPs: []FixedIP{{Address: "10.0.0.5", SubnetID: "unmapped"}},
	})
	zones := map[string]string{}
	forward := RecordSet{Type: "A", Name: "host1.stray.example.com.", ZoneName: "stray.example.com."}
	if !recordIsLive(forward, "10.0.0.5", ports, zones, MatchExact) {
		t.Fatal("stray A record for an unmapped port must not be pruned")
	}
	reverse := RecordSet{Type: "PTR", Name: "5.0.0.10.in-addr.arpa.", ZoneName: "0.0.10.in-addr.arpa."}
	if !recordIsLive(reverse, "host1.stray.example.com.", ports, zones, MatchExact) {
		t.Fatal("stray PTR record for an unmapped port must not be pruned")
	}
}
