// cmkinit builds Linux initramfs images from a declarative DataSource graph.
package main

import (
	"github.com/bitswalk/cmkinit/src/cmkinit/internal/cmd"
)

func main() {
	cmd.Execute()
}
