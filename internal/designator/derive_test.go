package designator

import "testing"

func TestForwardName(t *testing.T) {
	if got := ForwardName("host1", "example.com."); got != "host1.example.com." {
		t.Fatalf("ForwardName = %q", got)
	}
}

func TestReverseNames(t *testing.T) {
	tests := []struct {
		ip       string
		name     string
		zoneName string
	}{
		{"10.0.0.5", "5.0.0.10.in-addr.arpa.", "0.0.10.in-addr.arpa."},
		{"192.168.1.10", "10.1.168.192.in-addr.arpa.", "1.168.192.in-addr.arpa."},
		{"172.16.254.1", "1.254.16.172.in-addr.arpa.", "254.16.172.in-addr.arpa."},
		{"0.0.0.0", "0.0.0.0.in-addr.arpa.", "0.0.0.in-addr.arpa."},
		{"255.255.255.255", "255.255.255.255.in-addr.arpa.", "255.255.255.in-addr.arpa."},
	}
	for _, tt := range tests {
		if got := ReverseName(tt.ip); got != tt.name {
			t.Errorf("ReverseName(%q) = %q, want %q", tt.ip, got, tt.name)
		}
		if got := ReverseZoneName(tt.ip); got != tt.zoneName {
			t.Errorf("ReverseZoneName(%q) = %q, want %q", tt.ip, got, tt.zoneName)
		}
	}
}

func TestReverseRoundTrip(t *testing.T) {
	for _, ip := range []string{"10.0.0.5", "1.2.3.4", "203.0.113.99", "255.0.255.0"} {
		recovered, ok := IPFromArpa(ReverseName(ip))
		if !ok {
			t.Fatalf("IPFromArpa(ReverseName(%q)) failed", ip)
		}
		if recovered != ip {
			t.Errorf("round trip of %q gave %q", ip, recovered)
		}
	}
}

func TestIPFromArpaRejectsMalformed(t *testing.T) {
	bad := []string{
		"host1.example.com.",
		"5.0.10.in-addr.arpa.",
		"5.0.0.10.in-addr.arpa",
		"256.0.0.10.in-addr.arpa.",
		"05.0.0.10.in-addr.arpa.",
		"a.b.c.d.in-addr.arpa.",
		"",
	}
	for _, name := range bad {
		if _, ok := IPFromArpa(name); ok {
			t.Errorf("IPFromArpa(%q) unexpectedly succeeded", name)
		}
	}
}

func TestReverseNamePanicsOnMalformedInput(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for malformed address")
		}
	}()
	ReverseName("not-an-ip")
}
