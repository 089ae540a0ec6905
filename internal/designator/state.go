package designator

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ReadNetworkState fetches networks, subnets and ports and builds the
// DNS-eligible working set. Any client error here is fatal: desired
// state cannot be derived from a partial control-plane read.
func (r *Reconciler) ReadNetworkState(ctx context.Context) (*NetworkState, error) {
	networks, err := r.network.ListNetworks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list networks: %w", err)
	}

	domains := make(map[string]string, len(networks))
	for _, network := range networks {
		if network.DNSDomain == nil {
			return nil, &ConfigError{Attribute: "dns_domain", Object: "network"}
		}
		if *network.DNSDomain == "" {
			continue
		}
		domains[network.ID] = *network.DNSDomain
	}

	subnets, err := r.network.ListSubnets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list subnets: %w", err)
	}

	state := &NetworkState{
		Ports:       make(map[string]Port),
		NamedPorts:  make(map[string]Port),
		SubnetZones: make(map[string]string),
	}
	for _, subnet := range subnets {
		if domain := domains[subnet.NetworkID]; domain != "" {
			state.SubnetZones[subnet.ID] = domain
		}
	}

	ports, err := r.network.ListPorts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list ports: %w", err)
	}
	for _, port := range ports {
		if port.DNSName == nil {
			return nil, &ConfigError{Attribute: "dns_name", Object: "port"}
		}
		if port.Name() == "" {
			continue
		}
		port.Domain = ""
		for _, ip := range port.FixedIPs {
			if domain := state.SubnetZones[ip.SubnetID]; domain != "" {
				port.Domain = domain
				break
			}
		}
		state.NamedPorts[port.ID] = port
		if port.Domain == "" {
			r.logf(1, "skipping port %s: no dns_domain set for any of its subnets", port.ID)
			r.skippedPorts++
			continue
		}
		state.Ports[port.ID] = port
	}

	return state, nil
}

// ReadZoneState fetches all zones once and, per zone, the recordsets of
// type A and PTR. Zone and recordset read failures are non-fatal: the
// affected zone is treated as empty for this pass, so its expected
// records simply look missing and get created on the next attempt.
func (r *Reconciler) ReadZoneState(ctx context.Context) *ZoneState {
	state := &ZoneState{
		Zones:      make(map[string]Zone),
		RecordSets: make(map[string][]RecordSet),
	}

	zones, err := r.dns.ListZones(ctx)
	if err != nil {
		r.logf(0, "warning: list zones: %v; treating DNS state as empty for this pass", err)
		return state
	}
	for _, zone := range zones {
		state.Zones[zone.Name] = zone
	}

	results := make([][]RecordSet, len(zones))
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(r.workers)
	var mu sync.Mutex
	for i, zone := range zones {
		group.Go(func() error {
			sets, err := r.dns.ListRecordSets(gctx, zone.ID)
			if err != nil {
				mu.Lock()
				r.logf(0, "warning: list recordsets for zone %s: %v; treating zone as empty", zone.Name, err)
				mu.Unlock()
				return nil
			}
			kept := sets[:0]
			for _, rs := range sets {
				if rs.Type != TypeA && rs.Type != TypePTR {
					continue
				}
				if rs.ZoneName == "" {
					rs.ZoneName = zone.Name
				}
				kept = append(kept, rs)
			}
			results[i] = kept
			return nil
		})
	}
	// Reads never return errors into the group; Wait only joins them so
	// prune cannot start with fetches in flight.
	_ = group.Wait()

	for i, zone := range zones {
		state.RecordSets[zone.Name] = results[i]
	}
	return state
}
