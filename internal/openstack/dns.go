package openstack

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gophercloud/gophercloud/v2"
	"github.com/gophercloud/gophercloud/v2/openstack/dns/v2/recordsets"
	"github.com/gophercloud/gophercloud/v2/openstack/dns/v2/zones"

	"designator/internal/designator"
)

// DNSClient implements designator.DNSClient on Designate.
type DNSClient struct {
	client *gophercloud.ServiceClient

	// TTL applied to created recordsets; zero defers to the zone default.
	TTL int
}

func NewDNSClient(client *gophercloud.ServiceClient) *DNSClient {
	return &DNSClient{client: client}
}

func (c *DNSClient) ListZones(ctx context.Context) ([]designator.Zone, error) {
	pages, err := zones.List(c.client, zones.ListOpts{}).AllPages(ctx)
	if err != nil {
		return nil, fmt.Errorf("list zones: %w", err)
	}
	raw, err := zones.ExtractZones(pages)
	if err != nil {
		return nil, fmt.Errorf("extract zones: %w", err)
	}
	out := make([]designator.Zone, 0, len(raw))
	for _, zone := range raw {
		out = append(out, designator.Zone{ID: zone.ID, Name: zone.Name})
	}
	return out, nil
}

func (c *DNSClient) ListRecordSets(ctx context.Context, zoneID string) ([]designator.RecordSet, error) {
	pages, err := recordsets.ListByZone(c.client, zoneID, recordsets.ListOpts{}).AllPages(ctx)
	if err != nil {
		return nil, translate(err, fmt.Sprintf("list recordsets in zone %s", zoneID))
	}
	raw, err := recordsets.ExtractRecordSets(pages)
	if err != nil {
		return nil, fmt.Errorf("extract recordsets: %w", err)
	}
	out := make([]designator.RecordSet, 0, len(raw))
	for _, rs := range raw {
		out = append(out, designator.RecordSet{
			ID:       rs.ID,
			ZoneID:   rs.ZoneID,
			ZoneName: rs.ZoneName,
			Name:     rs.Name,
			Type:     rs.Type,
			Records:  rs.Records,
		})
	}
	return out, nil
}

func (c *DNSClient) CreateRecordSet(ctx context.Context, zoneID, name, rtype string, records []string) (designator.RecordSet, error) {
	created, err := recordsets.Create(ctx, c.client, zoneID, recordsets.CreateOpts{
		Name:    name,
		Type:    rtype,
		TTL:     c.TTL,
		Records: records,
	}).Extract()
	if err != nil {
		return designator.RecordSet{}, translate(err, fmt.Sprintf("create %s recordset %s", rtype, name))
	}
	return designator.RecordSet{
		ID:       created.ID,
		ZoneID:   created.ZoneID,
		ZoneName: created.ZoneName,
		Name:     created.Name,
		Type:     created.Type,
		Records:  created.Records,
	}, nil
}

func (c *DNSClient) DeleteRecordSet(ctx context.Context, zoneID, recordSetID string) error {
	err := recordsets.Delete(ctx, c.client, zoneID, recordSetID).ExtractErr()
	if err != nil {
		return translate(err, fmt.Sprintf("delete recordset %s", recordSetID))
	}
	return nil
}

// translate maps Designate HTTP failures onto the reconciler's error
// taxonomy so it can tell "zone/recordset gone" and "duplicate create"
// apart from genuine faults.
func translate(err error, op string) error {
	switch {
	case gophercloud.ResponseCodeIs(err, http.StatusNotFound):
		return fmt.Errorf("%s: %w", op, designator.ErrNotFound)
	case gophercloud.ResponseCodeIs(err, http.StatusConflict):
		return fmt.Errorf("%s: %w", op, designator.ErrConflict)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
