package designator

import (
	"regexp"
	"strings"
)

// MatchMode selects how a PTR record's target is compared against a
// port's forward name during the staleness check. The original tooling
// disagreed with itself here, so the behavior is an explicit option.
type MatchMode string

const (
	// MatchExact requires the PTR target to equal the port's forward
	// FQDN. The default.
	MatchExact MatchMode = "exact"

	// MatchPattern interprets the port's dns_name verbatim as a
	// regular expression anchored at the start of the PTR target.
	// Metacharacters keep their regex meaning: a dotted name like
	// "web.1" also matches "webX1".
	MatchPattern MatchMode = "pattern"
)

// ValidMatchMode reports whether mode names a supported match mode.
func ValidMatchMode(mode MatchMode) bool {
	return mode == MatchExact || mode == MatchPattern
}

// recordExists reports whether some recordset of the given type with
// the exact owner name contains target among its records. Names are
// compared verbatim; both sides are trailing-dot FQDNs already.
func recordExists(sets []RecordSet, rtype, name, target string) bool {
	for _, rs := range sets {
		if rs.Type != rtype || rs.Name != name {
			continue
		}
		for _, rec := range rs.Records {
			if rec == target {
				return true
			}
		}
	}
	return false
}

// recordIsLive decides whether a single record value inside an existing
// recordset still corresponds to a live port. The two record types use
// different evidence, deliberately asymmetric from recordExists:
//
//   - A: the owner name minus the zone suffix must be the dns_name of a
//     port that holds the record value among its fixed IPs.
//   - PTR: the owner name must decode to a fixed IP of some port, and
//     the record value must match the forward FQDN derived from the
//     domain of the subnet holding that IP.
func recordIsLive(rs RecordSet, value string, ports map[string]Port, zones map[string]string, mode MatchMode) bool {
	switch rs.Type {
	case TypeA:
		candidate, ok := strings.CutSuffix(rs.Name, "."+rs.ZoneName)
		if !ok {
			return false
		}
		for _, port := range ports {
			if port.Name() != candidate {
				continue
			}
			for _, ip := range port.FixedIPs {
				if ip.Address == value {
					return true
				}
			}
		}
		return false
	case TypePTR:
		ip, ok := IPFromArpa(rs.Name)
		if !ok {
			return false
		}
		for _, port := range ports {
			for _, fixed := range port.FixedIPs {
				if fixed.Address != ip {
					continue
				}
				// The expected FQDN comes from the subnet holding this
				// address, the same way fill names the record. The
				// port-level domain is only the first mapped one and
				// would misjudge PTRs of a port spanning two domains.
				domain := zones[fixed.SubnetID]
				// An unmapped subnet yields no forward FQDN to compare
				// against; the record is left untouched rather than
				// judged stale on missing evidence.
				if domain == "" {
					return true
				}
				if targetMatchesPort(value, port, domain, mode) {
					return true
				}
			}
		}
		return false
	default:
		// The zone reader only admits A and PTR. Anything else reports
		// live so it can never reach the prune path.
		return true
	}
}

func targetMatchesPort(target string, port Port, domain string, mode MatchMode) bool {
	if mode == MatchPattern {
		re, err := regexp.Compile("^" + port.Name())
		if err != nil {
			return false
		}
		return re.MatchString(target)
	}
	return target == ForwardName(port.Name(), domain)
}
