// Package openstack provides the production clients for the
// reconciler: Neutron for network-fabric state and Designate for DNS
// state, both through gophercloud.
package openstack

import (
	"context"
	"fmt"
	"os"

	"github.com/gophercloud/gophercloud/v2"
	"github.com/gophercloud/gophercloud/v2/openstack"
)

// Clients bundles the two service clients for one cloud.
type Clients struct {
	Network *NetworkClient
	DNS     *DNSClient
}

// NewFromEnv authenticates against the cloud described by the standard
// OS_* environment variables and wires up the Neutron and Designate
// service clients.
func NewFromEnv(ctx context.Context) (*Clients, error) {
	opts, err := openstack.AuthOptionsFromEnv()
	if err != nil {
		return nil, fmt.Errorf("read OS_* environment: %w", err)
	}
	opts.AllowReauth = true

	provider, err := openstack.AuthenticatedClient(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("authenticate against %s: %w", opts.IdentityEndpoint, err)
	}

	region := os.Getenv("OS_REGION_NAME")
	networkSvc, err := openstack.NewNetworkV2(provider, gophercloud.EndpointOpts{Region: region})
	if err != nil {
		return nil, fmt.Errorf("locate network service: %w", err)
	}
	dnsSvc, err := openstack.NewDNSV2(provider, gophercloud.EndpointOpts{Region: region})
	if err != nil {
		return nil, fmt.Errorf("locate dns service: %w", err)
	}

	return &Clients{
		Network: NewNetworkClient(networkSvc),
		DNS:     NewDNSClient(dnsSvc),
	}, nil
}
