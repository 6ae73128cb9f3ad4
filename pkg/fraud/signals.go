package fraud

import (
	"errors"
	"net"
	"os"
	"os/user"
	"runtime"
	"slices"
	"strings"

	"github.com/shirou/gopsutil/v4/host"
	psnet "github.com/shirou/gopsutil/v4/net"
)

// ErrUnavailable is returned by a Provider when a signal cannot be determined.
var ErrUnavailable = errors.New("signal unavailable")

// Provider gathers device signals. Each method is independent; an error or an
// empty result makes the builder substitute the documented fallback.
type Provider interface {
	LocalIPs() ([]string, error)
	MACAddresses() ([]string, error)
	OSFamily() (string, error)
	OSVersion() (string, error)
	DeviceManufacturer() (string, error)
	DeviceModel() (string, error)
	Username() (string, error)
}

// SystemProvider reads signals from the running machine.
type SystemProvider struct{}

var _ Provider = SystemProvider{}

func upInterfaces() ([]psnet.InterfaceStat, error) {
	ifaces, err := psnet.Interfaces()
	if err != nil {
		return nil, err
	}
	out := make([]psnet.InterfaceStat, 0, len(ifaces))
	for _, iface := range ifaces {
		if slices.Contains(iface.Flags, "loopback") || !slices.Contains(iface.Flags, "up") {
			continue
		}
		out = append(out, iface)
	}
	return out, nil
}

// LocalIPs lists the addresses of non-loopback interfaces that are up.
func (SystemProvider) LocalIPs() ([]string, error) {
	ifaces, err := upInterfaces()
	if err != nil {
		return nil, err
	}
	var ips []string
	for _, iface := range ifaces {
		for _, addr := range iface.Addrs {
			ip, _, err := net.ParseCIDR(addr.Addr)
			if err != nil {
				ip = net.ParseIP(addr.Addr)
			}
			if ip == nil || ip.IsLoopback() || ip.IsLinkLocalUnicast() {
				continue
			}
			ips = append(ips, ip.String())
		}
	}
	slices.Sort(ips)
	return slices.Compact(ips), nil
}

// MACAddresses lists the hardware addresses of non-loopback interfaces.
func (SystemProvider) MACAddresses() ([]string, error) {
	ifaces, err := upInterfaces()
	if err != nil {
		return nil, err
	}
	var macs []string
	for _, iface := range ifaces {
		if iface.HardwareAddr == "" {
			continue
		}
		macs = append(macs, iface.HardwareAddr)
	}
	slices.Sort(macs)
	return slices.Compact(macs), nil
}

// OSFamily is the platform name, e.g. "ubuntu" or "darwin".
func (SystemProvider) OSFamily() (string, error) {
	platform, _, _, err := host.PlatformInformation()
	if err != nil || platform == "" {
		return runtime.GOOS, nil
	}
	return platform, nil
}

// OSVersion is the platform version, falling back to the kernel version.
func (SystemProvider) OSVersion() (string, error) {
	_, _, version, err := host.PlatformInformation()
	if err == nil && version != "" {
		return version, nil
	}
	return host.KernelVersion()
}

// DeviceManufacturer is the motherboard vendor where the OS exposes it.
func (SystemProvider) DeviceManufacturer() (string, error) {
	return readBoardInfo("board_vendor")
}

// DeviceModel is the motherboard name where the OS exposes it.
func (SystemProvider) DeviceModel() (string, error) {
	return readBoardInfo("board_name")
}

// Username is the OS account running the process.
func (SystemProvider) Username() (string, error) {
	u, err := user.Current()
	if err != nil {
		return "", err
	}
	return u.Username, nil
}

// readBoardInfo reads a DMI attribute exported by the Linux kernel.
func readBoardInfo(name string) (string, error) {
	if runtime.GOOS != "linux" {
		return "", ErrUnavailable
	}
	data, err := os.ReadFile("/sys/class/dmi/id/" + name)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
