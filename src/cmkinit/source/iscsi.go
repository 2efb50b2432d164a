package source

import (
	"fmt"
	"io"
)

// NewISCSI returns a node loading an iSCSI target via iscsistart. port
// defaults to 3260 when zero. username/password and username_in/password_in
// must each be supplied as a pair or not at all.
func NewISCSI(initiator, target string, portalGroup int, address string, port int,
	username, password, usernameIn, passwordIn string) (*Node, error) {
	if port == 0 {
		port = 3260
	}
	if (username == "") != (password == "") {
		return nil, fmt.Errorf("source: both username and password must be set")
	}
	if (usernameIn == "") != (passwordIn == "") {
		return nil, fmt.Errorf("source: both username_in and password_in must be set")
	}
	return &Node{
		Kind: KindISCSI, Initiator: initiator, Target: target, PortalGrp: portalGroup,
		Address: address, Port: port, Username: username, Password: password,
		UsernameIn: usernameIn, PasswordIn: passwordIn,
		Execs: []FileRef{{Src: "iscsistart"}},
	}, nil
}

type iscsiVariant struct{}

func (iscsiVariant) path(n *Node) string {
	panic("source: ISCSI has no access path")
}

func (iscsiVariant) writeLoad(n *Node, w io.Writer) error {
	parts := []string{
		fmt.Sprintf("info %s\n", shQuote(fmt.Sprintf("Loading %s", n))),
		"iscsistart",
		" -i ", shQuote(n.Initiator),
		" -t ", shQuote(n.Target),
		" -g ", fmt.Sprintf("%d", n.PortalGrp),
		" -a ", shQuote(n.Address),
		" -p ", fmt.Sprintf("%d", n.Port),
	}
	if n.Username != "" {
		parts = append(parts, " -u ", shQuote(n.Username), " -w ", shQuote(n.Password))
	}
	if n.UsernameIn != "" {
		parts = append(parts, " -U ", shQuote(n.UsernameIn), " -W ", shQuote(n.PasswordIn))
	}
	parts = append(parts,
		" || die ", shQuote(fmt.Sprintf("Failed to load %s", n)), "\n",
		"\n",
	)
	return writeAll(w, parts...)
}

func (iscsiVariant) writeUnload(*Node, io.Writer) error { return nil }
