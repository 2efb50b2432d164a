package item

import "testing"

func TestBuildCPIOList_FileWithHardlinks(t *testing.T) {
	it := &Item{
		Kind: KindFile, Mode: 0o755, UID: 0, GID: 0,
		Dests: map[string]bool{"/bin/a": true, "/bin/b": true},
		Src:   "/host/busybox",
	}
	got := BuildCPIOList([]*Item{it})
	want := "file /bin/a /host/busybox 755 0 0 /bin/b"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestBuildCPIOList_Directory(t *testing.T) {
	it := &Item{Kind: KindDirectory, Mode: 0o755, Dests: map[string]bool{"/bin": true}}
	got := BuildCPIOList([]*Item{it})
	if got != "dir /bin 755 0 0" {
		t.Errorf("got %q", got)
	}
}

func TestBuildCPIOList_NodeCharacter(t *testing.T) {
	it := &Item{Kind: KindNode, Mode: 0o600, Dests: map[string]bool{"/dev/console": true}, NodeType: NodeCharacter, Major: 5, Minor: 1}
	got := BuildCPIOList([]*Item{it})
	if got != "nod /dev/console 600 0 0 c 5 1" {
		t.Errorf("got %q", got)
	}
}

func TestBuildCPIOList_Symlink(t *testing.T) {
	it := &Item{Kind: KindSymlink, Mode: 0o777, Dests: map[string]bool{"/lib": true}, Target: "usr/lib"}
	got := BuildCPIOList([]*Item{it})
	if got != "slink /lib usr/lib 777 0 0" {
		t.Errorf("got %q", got)
	}
}
