package source

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ClassfulMask returns the classful subnet mask for ip's leading octet.
// Returns an error for multicast/reserved ranges, which have no
// classful mask (matching the original raising ValueError there).
func ClassfulMask(ip string) (string, error) {
	first, err := strconv.Atoi(strings.SplitN(ip, ".", 2)[0])
	if err != nil {
		return "", fmt.Errorf("source: invalid IP address %q", ip)
	}
	switch {
	case first < 128:
		return "255.0.0.0", nil
	case first < 192:
		return "255.255.0.0", nil
	case first < 224:
		return "255.255.255.0", nil
	default:
		return "", fmt.Errorf("source: no classful network mask for %q", ip)
	}
}

// NewNetwork returns a node bringing up a network interface identified
// by its MAC address. An empty ip means DHCP; mask defaults to the
// classful mask for ip when ip is static and mask is empty.
func NewNetwork(device, ip, mask, gateway string) (*Node, error) {
	if mask == "" && ip != "" {
		m, err := ClassfulMask(ip)
		if err != nil {
			return nil, err
		}
		mask = m
	}
	return &Node{
		Kind: KindNetwork, Device: device, IP: ip, Mask: mask, Gateway: gateway,
		Busybox: []string{"ip", "udhcpc"},
		Files:   []FileRef{{Src: "/usr/share/udhcpc/default.script", Dest: "/etc/udhcpc.script"}},
	}, nil
}

type networkVariant struct{}

func (networkVariant) path(n *Node) string {
	panic("source: Network has no access path")
}

func (networkVariant) writeLoad(n *Node, w io.Writer) error {
	device := shQuote(n.Device)
	iface := `"${iface}"`
	ifaceFull := shQuote(n.Device+" (") + iface + shQuote(")")

	var bringUp []string
	if n.IP != "" {
		bringUp = []string{
			fmt.Sprintf("ip addr add %s/%s dev %s || die ", shQuote(n.IP), shQuote(n.Mask), iface),
			shQuote(fmt.Sprintf("Failed to add %s to ", n.IP)), ifaceFull, "\n",
		}
	} else {
		bringUp = []string{
			fmt.Sprintf("udhcpc -nqfS -s /etc/udhcpc.script -i %s || die ", iface),
			shQuote("DHCP failed on "), ifaceFull, "\n",
		}
	}

	var gw []string
	if n.Gateway != "" {
		gw = []string{
			fmt.Sprintf("ip route add default via %s dev %s || die ", shQuote(n.Gateway), iface),
			shQuote(fmt.Sprintf("Failed to set gateway %s on ", n.Gateway)), ifaceFull, "\n",
		}
	}

	parts := []string{
		fmt.Sprintf("info %s\n", shQuote(fmt.Sprintf("Raising %s", n))),
		fmt.Sprintf("iface=\"$(find_iface %s)\" || die ", device),
		shQuote(fmt.Sprintf("Failed to find network interface %s", n.Device)), "\n",
		fmt.Sprintf("ip link set %s up || die ", iface),
		shQuote("Failed to raise network interface "), ifaceFull, "\n",
	}
	parts = append(parts, bringUp...)
	parts = append(parts, gw...)
	parts = append(parts, "\n")
	return writeAll(w, parts...)
}

func (networkVariant) writeUnload(n *Node, w io.Writer) error {
	device := shQuote(n.Device)
	iface := `"${iface}"`
	ifaceFull := shQuote(n.Device+" (") + iface + shQuote(")")
	return writeAll(w,
		fmt.Sprintf("info %s\n", shQuote(fmt.Sprintf("Shutting down %s", n))),
		fmt.Sprintf("iface=\"$(find_iface %s)\" || die ", device),
		shQuote(fmt.Sprintf("Failed to find network interface %s", n.Device)), "\n",
		fmt.Sprintf("ip link set %s down || die ", iface),
		shQuote("Failed to shutdown network interface "), ifaceFull, "\n",
		"\n",
	)
}

// writeFindIfaceFunc emits the find_iface() shell function once: given a
// MAC address as $1, prints the matching /sys/class/net interface name
// and returns 0, or returns 1 if none matches.
func writeFindIfaceFunc(w io.Writer) error {
	return writeAll(w,
		"find_iface()\n",
		"{\n",
		"\tfor k in /sys/class/net/*; do\n",
		"\t\tif ! grep -q \"${1}\" \"${k}/address\" 1>/dev/null 2>&1; then continue; fi\n",
		"\t\techo \"$(basename -- \"${k}\")\"\n",
		"\t\treturn 0\n",
		"\tdone\n",
		"\treturn 1\n",
		"}\n",
		"\n",
	)
}
