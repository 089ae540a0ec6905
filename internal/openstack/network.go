package openstack

import (
	"context"
	"fmt"

	"github.com/gophercloud/gophercloud/v2"
	"github.com/gophercloud/gophercloud/v2/openstack/networking/v2/networks"
	"github.com/gophercloud/gophercloud/v2/openstack/networking/v2/ports"
	"github.com/gophercloud/gophercloud/v2/openstack/networking/v2/subnets"

	"designator/internal/designator"
)

// networkWithDNS carries the dns extension attribute next to the base
// network. The pointer distinguishes "extension disabled, key absent"
// from "domain unset" — the former is a fatal configuration error for
// the reconciler.
type networkWithDNS struct {
	networks.Network
	DNSDomain *string `json:"dns_domain"`
}

type portWithDNS struct {
	ports.Port
	DNSName *string `json:"dns_name"`
}

// NetworkClient implements designator.NetworkClient on Neutron.
type NetworkClient struct {
	client *gophercloud.ServiceClient
}

func NewNetworkClient(client *gophercloud.ServiceClient) *NetworkClient {
	return &NetworkClient{client: client}
}

func (c *NetworkClient) ListNetworks(ctx context.Context) ([]designator.Network, error) {
	pages, err := networks.List(c.client, networks.ListOpts{}).AllPages(ctx)
	if err != nil {
		return nil, fmt.Errorf("list networks: %w", err)
	}
	var raw []networkWithDNS
	if err := networks.ExtractNetworksInto(pages, &raw); err != nil {
		return nil, fmt.Errorf("extract networks: %w", err)
	}
	out := make([]designator.Network, 0, len(raw))
	for _, network := range raw {
		out = append(out, designator.Network{
			ID:        network.ID,
			Name:      network.Name,
			DNSDomain: network.DNSDomain,
			SubnetIDs: network.Subnets,
		})
	}
	return out, nil
}

func (c *NetworkClient) ListSubnets(ctx context.Context) ([]designator.Subnet, error) {
	pages, err := subnets.List(c.client, subnets.ListOpts{}).AllPages(ctx)
	if err != nil {
		return nil, fmt.Errorf("list subnets: %w", err)
	}
	raw, err := subnets.ExtractSubnets(pages)
	if err != nil {
		return nil, fmt.Errorf("extract subnets: %w", err)
	}
	out := make([]designator.Subnet, 0, len(raw))
	for _, subnet := range raw {
		out = append(out, designator.Subnet{
			ID:        subnet.ID,
			NetworkID: subnet.NetworkID,
			CIDR:      subnet.CIDR,
		})
	}
	return out, nil
}

func (c *NetworkClient) ListPorts(ctx context.Context) ([]designator.Port, error) {
	pages, err := ports.List(c.client, ports.ListOpts{}).AllPages(ctx)
	if err != nil {
		return nil, fmt.Errorf("list ports: %w", err)
	}
	var raw []portWithDNS
	if err := ports.ExtractPortsInto(pages, &raw); err != nil {
		return nil, fmt.Errorf("extract ports: %w", err)
	}
	out := make([]designator.Port, 0, len(raw))
	for _, port := range raw {
		fixed := make([]designator.FixedIP, 0, len(port.FixedIPs))
		for _, ip := range port.FixedIPs {
			fixed = append(fixed, designator.FixedIP{
				Address:  ip.IPAddress,
				SubnetID: ip.SubnetID,
			})
		}
		out = append(out, designator.Port{
			ID:       port.ID,
			DNSName:  port.DNSName,
			FixedIPs: fixed,
		})
	}
	return out, nil
}
