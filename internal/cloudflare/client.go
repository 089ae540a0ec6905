// Package cloudflare implements the reconciler's DNSClient on the
// Cloudflare API, for clouds whose authoritative DNS lives there
// instead of in Designate. Cloudflare has no recordset grouping, so
// each record maps to a single-value recordset addressed by the record
// id.
package cloudflare

import (
	"context"
	"errors"
	"fmt"
	"strings"

	cf "github.com/cloudflare/cloudflare-go"
	"golang.org/x/net/publicsuffix"

	"designator/internal/designator"
)

// Client wraps the Cloudflare API behind designator.DNSClient.
type Client struct {
	api *cf.API

	// TTL applied to created records; zero means the Cloudflare
	// automatic TTL.
	TTL int
}

// NewClient instantiates a Client using an API token.
func NewClient(apiToken string) (*Client, error) {
	if strings.TrimSpace(apiToken) == "" {
		return nil, errors.New("cloudflare token is required")
	}
	api, err := cf.NewWithAPIToken(apiToken)
	if err != nil {
		return nil, fmt.Errorf("init cloudflare client: %w", err)
	}
	return &Client{api: api}, nil
}

// VerifyToken checks that the configured token is valid.
func (c *Client) VerifyToken(ctx context.Context) error {
	if _, err := c.api.VerifyAPIToken(ctx); err != nil {
		return fmt.Errorf("verify cloudflare token: %w", err)
	}
	return nil
}

func (c *Client) ListZones(ctx context.Context) ([]designator.Zone, error) {
	raw, err := c.api.ListZones(ctx)
	if err != nil {
		return nil, fmt.Errorf("list zones: %w", err)
	}
	out := make([]designator.Zone, 0, len(raw))
	for _, zone := range raw {
		out = append(out, designator.Zone{ID: zone.ID, Name: ensureDot(zone.Name)})
	}
	return out, nil
}

func (c *Client) ListRecordSets(ctx context.Context, zoneID string) ([]designator.RecordSet, error) {
	rc := cf.ZoneIdentifier(zoneID)
	params := cf.ListDNSRecordsParams{}
	params.ResultInfo.PerPage = 500
	var out []designator.RecordSet
	for {
		records, info, err := c.api.ListDNSRecords(ctx, rc, params)
		if err != nil {
			return nil, translate(err, fmt.Sprintf("list dns records in zone %s", zoneID))
		}
		for _, rec := range records {
			out = append(out, fromAPIRecord(zoneID, rec))
		}
		if info == nil || info.Page >= info.TotalPages || info.TotalPages == 0 {
			break
		}
		params.ResultInfo.Page = info.Page + 1
		params.ResultInfo.PerPage = info.PerPage
	}
	return out, nil
}

func (c *Client) CreateRecordSet(ctx context.Context, zoneID, name, rtype string, records []string) (designator.RecordSet, error) {
	rc := cf.ZoneIdentifier(zoneID)
	created := designator.RecordSet{
		ZoneID: zoneID,
		Name:   name,
		Type:   rtype,
	}
	for _, target := range records {
		rec, err := c.api.CreateDNSRecord(ctx, rc, cf.CreateDNSRecordParams{
			Type:    rtype,
			Name:    stripDot(name),
			Content: contentToAPI(rtype, target),
			TTL:     c.TTL,
		})
		if err != nil {
			return designator.RecordSet{}, translate(err, fmt.Sprintf("create %s record %s", rtype, name))
		}
		created.ID = rec.ID
		created.Records = append(created.Records, target)
	}
	return created, nil
}

func (c *Client) DeleteRecordSet(ctx context.Context, zoneID, recordSetID string) error {
	if err := c.api.DeleteDNSRecord(ctx, cf.ZoneIdentifier(zoneID), recordSetID); err != nil {
		return translate(err, fmt.Sprintf("delete record %s", recordSetID))
	}
	return nil
}

// ZoneIDForDomain finds the Cloudflare zone owning the given FQDN by
// probing successively shorter suffixes, starting from the registrable
// domain.
func (c *Client) ZoneIDForDomain(domain string) (string, error) {
	clean := strings.Trim(strings.ToLower(strings.TrimSpace(domain)), ".")
	if clean == "" {
		return "", errors.New("domain is required to resolve zone")
	}
	for _, candidate := range zoneCandidates(clean) {
		if id, err := c.api.ZoneIDByName(candidate); err == nil {
			return id, nil
		}
	}
	return "", fmt.Errorf("no cloudflare zone matches %s: %w", clean, designator.ErrNotFound)
}

func zoneCandidates(host string) []string {
	seen := make(map[string]struct{})
	var candidates []string
	add := func(candidate string) {
		if candidate == "" {
			return
		}
		if _, ok := seen[candidate]; ok {
			return
		}
		seen[candidate] = struct{}{}
		candidates = append(candidates, candidate)
	}

	if etld, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		add(etld)
	}
	labels := strings.Split(host, ".")
	for i := 0; i <= len(labels)-2; i++ {
		add(strings.Join(labels[i:], "."))
	}
	return candidates
}

func fromAPIRecord(zoneID string, rec cf.DNSRecord) designator.RecordSet {
	return designator.RecordSet{
		ID:       rec.ID,
		ZoneID:   zoneID,
		ZoneName: ensureDot(rec.ZoneName),
		Name:     ensureDot(rec.Name),
		Type:     rec.Type,
		Records:  []string{contentFromAPI(rec.Type, rec.Content)},
	}
}

// Cloudflare stores owner names and hostname targets without the
// trailing dot the reconciler derives; the conversions happen at this
// boundary only.
func ensureDot(name string) string {
	if name == "" || strings.HasSuffix(name, ".") {
		return name
	}
	return name + "."
}

func stripDot(name string) string {
	return strings.TrimSuffix(name, ".")
}

func contentToAPI(rtype, value string) string {
	if rtype == designator.TypePTR {
		return stripDot(value)
	}
	return value
}

func contentFromAPI(rtype, value string) string {
	if rtype == designator.TypePTR {
		return ensureDot(value)
	}
	return value
}

func translate(err error, op string) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "already exist") || strings.Contains(msg, "81057") || strings.Contains(msg, "81053"):
		return fmt.Errorf("%s: %w", op, designator.ErrConflict)
	case strings.Contains(msg, "not found") || strings.Contains(msg, "404"):
		return fmt.Errorf("%s: %w", op, designator.ErrNotFound)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
