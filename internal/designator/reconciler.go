package designator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

const defaultWorkers = 8

// Options tweak a reconciliation pass.
type Options struct {
	// Workers bounds the concurrency of the per-zone recordset reads.
	// Zero means the default of 8.
	Workers int
	// DryRun computes and logs every create and delete without calling
	// the DNS service.
	DryRun bool
	// PTRMatch selects the staleness comparison for PTR targets.
	// Empty means MatchExact.
	PTRMatch MatchMode
}

// Reconciler drives a single pass: read network and zone state, prune
// stale recordsets, then create missing ones. No state survives a pass;
// rerunning against unchanged inputs is a no-op.
type Reconciler struct {
	network NetworkClient
	dns     DNSClient

	workers  int
	dryRun   bool
	ptrMatch MatchMode

	verbosity    int
	out          io.Writer
	snapshot     func(*ZoneState) error
	skippedPorts int
}

// New builds a Reconciler over the two clients.
func New(network NetworkClient, dns DNSClient, opts Options) *Reconciler {
	workers := opts.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	mode := opts.PTRMatch
	if mode == "" {
		mode = MatchExact
	}
	return &Reconciler{
		network:   network,
		dns:       dns,
		workers:   workers,
		dryRun:    opts.DryRun,
		ptrMatch:  mode,
		verbosity: 1,
		out:       os.Stdout,
	}
}

// SetVerbosity sets the logging verbosity level (0=quiet, 1=normal,
// 2=verbose, 3=debug).
func (r *Reconciler) SetVerbosity(level int) {
	r.verbosity = level
}

// SetOutput redirects log output away from stdout.
func (r *Reconciler) SetOutput(w io.Writer) {
	r.out = w
}

// SetSnapshotFunc registers a hook invoked with the actual DNS state
// after the read phase and before any pruning. A hook error aborts the
// pass: if the operator asked for a pre-prune snapshot, mutating
// without one is not acceptable.
func (r *Reconciler) SetSnapshotFunc(fn func(*ZoneState) error) {
	r.snapshot = fn
}

func (r *Reconciler) logf(level int, format string, args ...interface{}) {
	if r.verbosity >= level {
		fmt.Fprintf(r.out, format+"\n", args...)
	}
}

// Run executes one full reconciliation pass. It returns a non-nil
// Summary whenever the read phase succeeded, alongside any fatal error.
func (r *Reconciler) Run(ctx context.Context) (*Summary, error) {
	summary := &Summary{Started: time.Now().UTC(), DryRun: r.dryRun}
	r.skippedPorts = 0

	netState, err := r.ReadNetworkState(ctx)
	if err != nil {
		return nil, err
	}
	zoneState := r.ReadZoneState(ctx)

	if r.snapshot != nil {
		if err := r.snapshot(zoneState); err != nil {
			return nil, fmt.Errorf("snapshot zone state: %w", err)
		}
	}

	// Prune completes before fill begins so a record that is both
	// stale-for-old-value and missing-for-new-value converges in one
	// pass instead of keeping both values.
	r.prune(ctx, netState, zoneState, summary)
	r.fill(ctx, netState, zoneState, summary)

	summary.Ports = len(netState.Ports)
	summary.SkippedPorts = r.skippedPorts
	summary.Finished = time.Now().UTC()
	r.logf(0, "pass complete: %d creates, %d deletes, %d conflicts, %d errors (%d ports, %d skipped)",
		summary.Creates, summary.Deletes, summary.Conflicts, summary.Errors,
		summary.Ports, summary.SkippedPorts)
	return summary, nil
}

// prune deletes every recordset containing a record value that no
// longer corresponds to a live port. Each deletion is attempted
// independently; one failure never blocks the rest of the phase.
func (r *Reconciler) prune(ctx context.Context, netState *NetworkState, zoneState *ZoneState, summary *Summary) {
	for zoneName, sets := range zoneState.RecordSets {
		kept := sets[:0]
		for _, rs := range sets {
			if len(rs.Records) == 0 {
				kept = append(kept, rs)
				continue
			}
			stale := false
			for _, value := range rs.Records {
				if !recordIsLive(rs, value, netState.NamedPorts, netState.SubnetZones, r.ptrMatch) {
					r.logf(2, "%s %s in zone %s: value %s does not match any live port", rs.Type, rs.Name, zoneName, value)
					stale = true
					break
				}
			}
			if !stale {
				r.logf(3, "%s %s in zone %s is up to date", rs.Type, rs.Name, zoneName)
				kept = append(kept, rs)
				continue
			}
			if !r.deleteRecordSet(ctx, rs, summary) {
				// The recordset is still out there; keep it in the
				// working set so fill does not race a duplicate create.
				kept = append(kept, rs)
			}
		}
		zoneState.RecordSets[zoneName] = kept
	}
}

// deleteRecordSet reports whether the recordset is gone afterwards (or
// would be, under dry-run), so prune can drop it from the working set
// and fill can recreate the name with its new value in the same pass.
func (r *Reconciler) deleteRecordSet(ctx context.Context, rs RecordSet, summary *Summary) bool {
	if r.dryRun {
		r.logf(1, "[dry-run] would delete %s recordset %s from zone %s", rs.Type, rs.Name, rs.ZoneName)
		summary.Deletes++
		return true
	}
	err := r.dns.DeleteRecordSet(ctx, rs.ZoneID, rs.ID)
	switch {
	case errors.Is(err, ErrNotFound):
		r.logf(1, "%s recordset %s already gone from zone %s", rs.Type, rs.Name, rs.ZoneName)
		summary.Deletes++
		return true
	case err != nil:
		r.logf(0, "warning: delete %s recordset %s from zone %s: %v", rs.Type, rs.Name, rs.ZoneName, err)
		summary.Errors++
		return false
	default:
		r.logf(1, "deleted %s recordset %s from zone %s", rs.Type, rs.Name, rs.ZoneName)
		summary.Deletes++
		return true
	}
}

// fill creates the forward and reverse records that are missing for
// every live port. The A and PTR creations for one fixed IP are
// independent: both are attempted even when one fails.
func (r *Reconciler) fill(ctx context.Context, netState *NetworkState, zoneState *ZoneState, summary *Summary) {
	for _, port := range netState.Ports {
		for _, ip := range port.FixedIPs {
			domain := netState.SubnetZones[ip.SubnetID]
			if domain == "" {
				continue
			}
			fqdn := ForwardName(port.Name(), domain)
			if !recordExists(zoneState.RecordSets[domain], TypeA, fqdn, ip.Address) {
				r.createRecordSet(ctx, zoneState, domain, fqdn, TypeA, ip.Address, summary)
			}
			reverseName := ReverseName(ip.Address)
			reverseZone := ReverseZoneName(ip.Address)
			if !recordExists(zoneState.RecordSets[reverseZone], TypePTR, reverseName, fqdn) {
				r.createRecordSet(ctx, zoneState, reverseZone, reverseName, TypePTR, fqdn, summary)
			}
		}
	}
}

func (r *Reconciler) createRecordSet(ctx context.Context, zoneState *ZoneState, zoneName, name, rtype, target string, summary *Summary) {
	zone, ok := zoneState.Zones[zoneName]
	if !ok {
		r.logf(0, "warning: no zone %s for %s record %s; create skipped until the zone exists", zoneName, rtype, name)
		summary.Errors++
		return
	}
	if r.dryRun {
		r.logf(1, "[dry-run] would create %s %s -> %s in zone %s", rtype, name, target, zoneName)
		summary.Creates++
		return
	}
	_, err := r.dns.CreateRecordSet(ctx, zone.ID, name, rtype, []string{target})
	switch {
	case errors.Is(err, ErrConflict):
		r.logf(1, "%s %s already exists in zone %s; treating as satisfied", rtype, name, zoneName)
		summary.Conflicts++
	case err != nil:
		r.logf(0, "warning: create %s %s -> %s in zone %s: %v", rtype, name, target, zoneName, err)
		summary.Errors++
	default:
		r.logf(1, "created %s %s -> %s in zone %s", rtype, name, target, zoneName)
		summary.Creates++
	}
}
