package source

import (
	"fmt"
	"io"
)

// NewLvm returns a node activating an LVM logical volume.
func NewLvm(vgName, lvName string) *Node {
	return &Node{
		Kind: KindLvm, VGName: vgName, LVName: lvName,
		Execs: []FileRef{{Src: "lvm"}},
	}
}

type lvmVariant struct{}

// lvmMapperName doubles any hyphen in an LVM name component, the way
// device-mapper itself does when building /dev/mapper/<vg>-<lv>.
func lvmMapperName(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		out = append(out, s[i])
		if s[i] == '-' {
			out = append(out, '-')
		}
	}
	return string(out)
}

func (lvmVariant) path(n *Node) string {
	return shQuote("/dev/mapper/" + lvmMapperName(n.VGName) + "-" + lvmMapperName(n.LVName))
}

func (lvmVariant) writeLoad(n *Node, w io.Writer) error {
	return writeAll(w,
		fmt.Sprintf("info 'Enabling LVM logical volume %s'\n", n),
		"lvm lvchange --sysinit -a ly ",
		fmt.Sprintf("%s || die ", shQuote(fmt.Sprintf("%s/%s", n.VGName, n.LVName))),
		shQuote(fmt.Sprintf("Failed to enable LVM logical volume %s", n)), "\n",
		"lvm vgmknodes || err ",
		shQuote(fmt.Sprintf("Failed to create LVM nodes for %s", n)), "\n",
		"\n",
	)
}

func (lvmVariant) writeUnload(n *Node, w io.Writer) error {
	return writeAll(w,
		fmt.Sprintf("info 'Disabling LVM logical volume %s'\n", n),
		"lvm lvchange --sysinit -a ln ",
		fmt.Sprintf("%s || die ", shQuote(fmt.Sprintf("%s/%s", n.VGName, n.LVName))),
		shQuote(fmt.Sprintf("Failed to disable LVM logical volume %s", n)), "\n",
		"lvm vgmknodes || err ",
		shQuote(fmt.Sprintf("Failed to remove LVM nodes for %s", n)), "\n",
		"\n",
	)
}

// writeLvmConf emits the class-level LVM config override written once
// before any LVM node is loaded, disabling udev/monitoring integration
// that has no business running inside an initramfs.
func writeLvmConf(w io.Writer) error {
	return writeAll(w,
		"debug 'Writing LVM configuration'\n",
		"mkdir -p /etc/lvm && touch /etc/lvm/lvmlocal.conf || warn ",
		"'Failed to create LVM configuration file'\n",
		"{\n",
		"\techo 'activation/monitoring = 0'\n",
		"\techo 'activation/udev_rules = 0'\n",
		"\techo 'activation/udev_sync = 0'\n",
		"\techo 'devices/external_device_info_source = \"none\"'\n",
		"\techo 'devices/md_component_detection = 0'\n",
		"\techo 'devices/multipath_component_detection = 0'\n",
		"\techo 'devices/obtain_device_list_from_udev = 0'\n",
		"\techo 'global/locking_type = 4'\n",
		"\techo 'global/use_lvmetad = 0'\n",
		"\techo 'global/use_lvmlockd = 0'\n",
		"\techo 'global/use_lvmpolld = 0'\n",
		"} >>/etc/lvm/lvmlocal.conf || warn ",
		"'Failed to write LVM configuration file'\n",
		"\n",
	)
}
