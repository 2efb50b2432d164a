// Package cmd implements cmkinit's command-line interface (C10): a
// single binary wiring together the DataSource graph, the image
// builder, the build ledger, the artifact publisher and the status
// server behind one Cobra command tree.
package cmd

import (
	"fmt"
	"os"

	"github.com/bitswalk/cmkinit/src/cmkinit/build"
	"github.com/bitswalk/cmkinit/src/cmkinit/image"
	"github.com/bitswalk/cmkinit/src/cmkinit/statusd"
	"github.com/bitswalk/cmkinit/src/common/cli"
	"github.com/bitswalk/cmkinit/src/common/logs"
	"github.com/bitswalk/cmkinit/src/common/version"
	"github.com/spf13/cobra"
)

var (
	// VersionInfo holds version information, set at build time via ldflags.
	VersionInfo = version.New()

	log *logs.Logger

	cfgFile string
)

// Linker variables, set via ldflags at build time.
var (
	Version        = "dev"
	ReleaseName    = "unreleased"
	ReleaseVersion = "0.0.0"
	BuildDate      = "unknown"
	GitCommit      = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "cmkinit",
	Short: "Build Linux initramfs images from a declarative DataSource graph",
	Long: `cmkinit generates initramfs images.

A cmkinitramfs.ini file describes the DataSource graph needed to reach
the root filesystem (LUKS, LVM, MD, networked or plain devices), and
cmkinit resolves it into an init script, a dependency-complete set of
binaries, and either a cpio archive or a plain directory tree.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

// Execute runs the root command.
func Execute() {
	VersionInfo.Version = Version
	VersionInfo.ReleaseName = ReleaseName
	VersionInfo.ReleaseVersion = ReleaseVersion
	VersionInfo.BuildDate = BuildDate
	VersionInfo.GitCommit = GitCommit

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cli.RegisterConfigFlag(rootCmd, &cfgFile, "~/.config/cmkinit/cmkinit.yaml")
	cli.RegisterLogFlags(rootCmd)

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() error {
	opts := cli.DefaultConfigOptions("cmkinit", "CMKINIT")
	opts.ConfigFile = cfgFile

	if err := cli.InitConfig(opts); err != nil {
		return err
	}

	log = cli.InitLogger("cmkinit")
	build.SetLogger(log)
	image.SetLogger(log)
	statusd.SetLogger(log)

	return nil
}
