package metrics

import (
	"context"
	"fmt"
	"net"
	"runtime"
	"slices"

	psnet "github.com/shirou/gopsutil/v4/net"
)

// Address family names used as keys in NetAddrs
const (
	FamilyIPv4 = "AF_INET"
	FamilyIPv6 = "AF_INET6"
)

// linkFamily is the family name the platform uses for hardware addresses
func linkFamily() string {
	if runtime.GOOS == "linux" {
		return "AF_PACKET"
	}
	return "AF_LINK"
}

// NetIO reads cumulative counters per network interface
func (h *Host) NetIO(ctx context.Context) (map[string]NetIO, error) {
	counters, err := psnet.IOCountersWithContext(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to read network counters: %w", err)
	}

	out := make(map[string]NetIO, len(counters))
	for _, c := range counters {
		out[c.Name] = NetIO{
			BytesSent:   c.BytesSent,
			BytesRecv:   c.BytesRecv,
			PacketsSent: c.PacketsSent,
			PacketsRecv: c.PacketsRecv,
			Errin:       c.Errin,
			Errout:      c.Errout,
			Dropin:      c.Dropin,
			Dropout:     c.Dropout,
		}
	}
	return out, nil
}

// NetAddrs lists addresses per interface keyed by address family
func (h *Host) NetAddrs(ctx context.Context) (map[string]map[string]NetAddr, error) {
	ifaces, err := psnet.InterfacesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list interfaces: %w", err)
	}

	out := make(map[string]map[string]NetAddr, len(ifaces))
	for _, iface := range ifaces {
		families := make(map[string]NetAddr)
		if iface.HardwareAddr != "" {
			families[linkFamily()] = NetAddr{Address: iface.HardwareAddr}
		}

		broadcast := slices.Contains(iface.Flags, "broadcast")
		for _, a := range iface.Addrs {
			family, addr, ok := parseInterfaceAddr(a.Addr, broadcast)
			if !ok {
				continue
			}
			// One entry per family; the first address is the primary one
			if _, seen := families[family]; !seen {
				families[family] = addr
			}
		}
		out[iface.Name] = families
	}
	return out, nil
}

// parseInterfaceAddr splits a CIDR address into family, address, netmask and
// (for broadcast-capable IPv4 links) the broadcast address
func parseInterfaceAddr(cidr string, broadcast bool) (string, NetAddr, bool) {
	ip, ipnet, err := net.ParseCIDR(cidr)
	if err != nil {
		ip = net.ParseIP(cidr)
		if ip == nil {
			return "", NetAddr{}, false
		}
		if ip.To4() != nil {
			return FamilyIPv4, NetAddr{Address: ip.String()}, true
		}
		return FamilyIPv6, NetAddr{Address: ip.String()}, true
	}

	if v4 := ip.To4(); v4 != nil {
		mask := net.IP(ipnet.Mask).To4()
		addr := NetAddr{Address: v4.String(), Netmask: mask.String()}
		if broadcast && mask != nil {
			bcast := make(net.IP, net.IPv4len)
			for i := range bcast {
				bcast[i] = v4[i] | ^mask[i]
			}
			addr.Broadcast = bcast.String()
		}
		return FamilyIPv4, addr, true
	}

	return FamilyIPv6, NetAddr{Address: ip.String(), Netmask: net.IP(ipnet.Mask).String()}, true
}

// NetStats reads link state per interface
func (h *Host) NetStats(ctx context.Context) (map[string]NetStat, error) {
	ifaces, err := psnet.InterfacesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list interfaces: %w", err)
	}

	out := make(map[string]NetStat, len(ifaces))
	for _, iface := range ifaces {
		duplex, speed := h.linkSettings(iface.Name)
		out[iface.Name] = NetStat{
			IsUp:   slices.Contains(iface.Flags, "up"),
			Duplex: duplex,
			Speed:  speed,
			MTU:    iface.MTU,
		}
	}
	return out, nil
}
