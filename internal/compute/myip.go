package compute

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/netip"
	"strings"
)

// DefaultCheckIPURL returns the caller's public address as plain text.
const DefaultCheckIPURL = "https://checkip.amazonaws.com"

// LookupPublicIP asks url for the public address of this host.
func LookupPublicIP(ctx context.Context, client *http.Client, url string) (netip.Addr, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return netip.Addr{}, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("failed to look up public IP: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return netip.Addr{}, fmt.Errorf("failed to look up public IP: %s returned %s", url, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 256))
	if err != nil {
		return netip.Addr{}, fmt.Errorf("failed to read public IP: %w", err)
	}

	addr, err := netip.ParseAddr(strings.TrimSpace(string(body)))
	if err != nil {
		return netip.Addr{}, fmt.Errorf("unexpected public IP %q: %w", strings.TrimSpace(string(body)), err)
	}
	return addr, nil
}

// hostCidr returns the single-address block of addr, e.g. 203.0.113.7/32
func hostCidr(addr netip.Addr) string {
	return netip.PrefixFrom(addr, addr.BitLen()).String()
}
