package designator

import (
	"fmt"
	"strconv"
	"strings"
)

const arpaSuffix = "in-addr.arpa."

// ForwardName builds the owner name of a port's A record. The domain is
// expected to carry its trailing dot already, as Neutron stores it.
func ForwardName(dnsName, domain string) string {
	return dnsName + "." + domain
}

// ReverseName builds the in-addr.arpa owner name for an IPv4 address:
// the octets reversed, suffixed with "in-addr.arpa.". Panics on
// malformed input; addresses here come from the control plane and are
// well-formed by contract.
func ReverseName(ip string) string {
	return strings.Join(reverseOctets(mustOctets(ip)), ".") + "." + arpaSuffix
}

// ReverseZoneName builds the conventional /24 PTR zone name for an IPv4
// address: the first three octets reversed, suffixed with
// "in-addr.arpa.". Independent of the forward-record zone.
func ReverseZoneName(ip string) string {
	octets := mustOctets(ip)
	return strings.Join(reverseOctets(octets[:3]), ".") + "." + arpaSuffix
}

// IPFromArpa recovers the dotted-quad address from an in-addr.arpa
// owner name. Unlike the forward derivations it sees untrusted input
// (recordset names read from the DNS service), so it reports failure
// instead of panicking.
func IPFromArpa(name string) (string, bool) {
	rest, ok := strings.CutSuffix(name, "."+arpaSuffix)
	if !ok {
		return "", false
	}
	octets := strings.Split(rest, ".")
	if len(octets) != 4 {
		return "", false
	}
	for _, o := range octets {
		if !validOctet(o) {
			return "", false
		}
	}
	return strings.Join(reverseOctets(octets), "."), true
}

func mustOctets(ip string) []string {
	octets := strings.Split(ip, ".")
	if len(octets) != 4 {
		panic(fmt.Sprintf("designator: malformed IPv4 address %q", ip))
	}
	for _, o := range octets {
		if !validOctet(o) {
			panic(fmt.Sprintf("designator: malformed IPv4 address %q", ip))
		}
	}
	return octets
}

func validOctet(s string) bool {
	if s == "" || (len(s) > 1 && s[0] == '0') {
		return false
	}
	n, err := strconv.Atoi(s)
	return err == nil && n >= 0 && n <= 255
}

func reverseOctets(in []string) []string {
	out := make([]string, len(in))
	for i, o := range in {
		out[len(in)-1-i] = o
	}
	return out
}
