package designator

import (
	"context"
	"fmt"
	"sync"
)

type fakeNetwork struct {
	networks []Network
	subnets  []Subnet
	ports    []Port

	networksErr error
	subnetsErr  error
	portsErr    error
}

func (f *fakeNetwork) ListNetworks(ctx context.Context) ([]Network, error) {
	return f.networks, f.networksErr
}

func (f *fakeNetwork) ListSubnets(ctx context.Context) ([]Subnet, error) {
	return f.subnets, f.subnetsErr
}

func (f *fakeNetwork) ListPorts(ctx context.Context) ([]Port, error) {
	return f.ports, f.portsErr
}

// fakeDNS keeps recordsets by zone ID and records every mutation
// attempt, including ones configured to fail.
type fakeDNS struct {
	mu      sync.Mutex
	zones   []Zone
	records map[string][]RecordSet
	nextID  int

	zonesErr    error
	listErr     map[string]error // zone ID -> error
	createErr   map[string]error // owner name -> error
	deleteErr   map[string]error // recordset ID -> error
	createCalls []string
	deleteCalls []string
}

func newFakeDNS(zones ...Zone) *fakeDNS {
	return &fakeDNS{
		zones:   zones,
		records: make(map[string][]RecordSet),
	}
}

func (f *fakeDNS) add(zoneID string, rs RecordSet) RecordSet {
	f.nextID++
	rs.ID = fmt.Sprintf("rs-%d", f.nextID)
	rs.ZoneID = zoneID
	for _, zone := range f.zones {
		if zone.ID == zoneID {
			rs.ZoneName = zone.Name
		}
	}
	f.records[zoneID] = append(f.records[zoneID], rs)
	return rs
}

func (f *fakeDNS) ListZones(ctx context.Context) ([]Zone, error) {
	if f.zonesErr != nil {
		return nil, f.zonesErr
	}
	return f.zones, nil
}

func (f *fakeDNS) ListRecordSets(ctx context.Context, zoneID string) ([]RecordSet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.listErr[zoneID]; err != nil {
		return nil, err
	}
	return append([]RecordSet(nil), f.records[zoneID]...), nil
}

func (f *fakeDNS) CreateRecordSet(ctx context.Context, zoneID, name, rtype string, records []string) (RecordSet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls = append(f.createCalls, rtype+" "+name)
	if err := f.createErr[name]; err != nil {
		return RecordSet{}, err
	}
	return f.add(zoneID, RecordSet{Name: name, Type: rtype, Records: records}), nil
}

func (f *fakeDNS) DeleteRecordSet(ctx context.Context, zoneID, recordSetID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls = append(f.deleteCalls, recordSetID)
	if err := f.deleteErr[recordSetID]; err != nil {
		return err
	}
	sets := f.records[zoneID]
	for i, rs := range sets {
		if rs.ID == recordSetID {
			f.records[zoneID] = append(sets[:i], sets[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// find returns the recordset with the given type and owner name, if any.
func (f *fakeDNS) find(rtype, name string) (RecordSet, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, sets := range f.records {
		for _, rs := range sets {
			if rs.Type == rtype && rs.Name == name {
				return rs, true
			}
		}
	}
	return RecordSet{}, false
}
