package provider

import (
	"context"
	"net/url"
)

// Provider names used for logging and metric labels
const (
	NameNetworkInfo = "network_info"
	NameSelf        = "self_ip"
	NameWhois       = "whois"
)

// NetworkInfoClient queries the network-info source for a given address
type NetworkInfoClient struct {
	c client
}

// NewNetworkInfoClient creates a client for lookupURL (queried with ?ip=)
func NewNetworkInfoClient(lookupURL string, opts Options) *NetworkInfoClient {
	return &NetworkInfoClient{c: newClient(NameNetworkInfo, lookupURL, opts)}
}

// Lookup fetches the raw record for ip
func (n *NetworkInfoClient) Lookup(ctx context.Context, ip string) ([]byte, error) {
	return n.c.get(ctx, url.Values{"ip": {ip}})
}

// SelfClient queries a public "what is my address" endpoint. The endpoint
// answers for whoever connects, so it describes this host's egress address.
type SelfClient struct {
	c client
}

// NewSelfClient creates a client for selfURL (queried without parameters).
// selfURL is usually a third-party service; pass Options without an APIKey
// unless that service issued one.
func NewSelfClient(selfURL string, opts Options) *SelfClient {
	return &SelfClient{c: newClient(NameSelf, selfURL, opts)}
}

// Self fetches the raw record for this host's public address
func (s *SelfClient) Self(ctx context.Context) ([]byte, error) {
	return s.c.get(ctx, nil)
}

// WhoisClient queries the WHOIS-backed source
type WhoisClient struct {
	c client
}

// NewWhoisClient creates a client for lookupURL (queried with ?domain=)
func NewWhoisClient(lookupURL string, opts Options) *WhoisClient {
	return &WhoisClient{c: newClient(NameWhois, lookupURL, opts)}
}

// Lookup fetches the raw WHOIS record for domain
func (w *WhoisClient) Lookup(ctx context.Context, domain string) ([]byte, error) {
	return w.c.get(ctx, url.Values{"domain": {domain}})
}
