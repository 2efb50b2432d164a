package source

import "testing"

func TestPath_UUID(t *testing.T) {
	n := NewUUID("abcd-1234", false)
	if got := n.Path(); got != `"$(findfs UUID=abcd-1234)"` {
		t.Errorf("got %q", got)
	}
}

func TestPath_PartitionLabel(t *testing.T) {
	n := NewLabel("boot", true)
	if got := n.Path(); got != `"$(findfs PARTLABEL=boot)"` {
		t.Errorf("got %q", got)
	}
}

func TestPath_Lvm_DoublesHyphen(t *testing.T) {
	n := NewLvm("vg-data", "lv-root")
	if got := n.Path(); got != "/dev/mapper/vg--data-lv--root" {
		t.Errorf("got %q", got)
	}
}

func TestClassfulMask(t *testing.T) {
	cases := map[string]string{
		"10.0.0.1":      "255.0.0.0",
		"172.16.0.1":    "255.255.0.0",
		"192.168.1.1":   "255.255.255.0",
	}
	for ip, want := range cases {
		got, err := ClassfulMask(ip)
		if err != nil {
			t.Fatalf("unexpected error for %s: %v", ip, err)
		}
		if got != want {
			t.Errorf("ClassfulMask(%q) = %q, want %q", ip, got, want)
		}
	}
	if _, err := ClassfulMask("240.0.0.1"); err == nil {
		t.Error("expected an error for a multicast/reserved address")
	}
}

func TestNewMd_PanicsOnNoSources(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected a panic for an MD array with no sources")
		}
	}()
	NewMd(nil, "md0")
}

func TestCollectKinds(t *testing.T) {
	base := NewPath("/dev/sda1")
	mnt := NewMount(base, "/root", "ext4", "ro")
	vg := NewLvm("vg", "root")
	kinds := CollectKinds([]*Node{mnt, vg})
	if !kinds[KindMount] || !kinds[KindPath] || !kinds[KindLvm] {
		t.Errorf("got %v", kinds)
	}
}
