package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sys/unix"
)

// BuilderOptions are the flat image-builder knobs that, unlike the
// DataSource graph, come from Viper (flags, env, or the cmkinit.yaml
// config searched for by common/cli.InitConfig) rather than the INI
// graph file named by --graph-config.
type BuilderOptions struct {
	Output       string
	Compression  string
	Kernels      []string
	BusyboxPath  string
	CleanOnError bool
}

// RegisterBuilderFlags registers the build-knob flags on cmd and binds
// each into Viper under "build.*".
func RegisterBuilderFlags(cmd *cobra.Command) {
	cmd.Flags().String("output", "cpio", "output image kind (cpio, dir)")
	cmd.Flags().String("compression", "gzip", "cpio compression (none, gzip, xz)")
	cmd.Flags().StringSlice("kernel", nil, "target kernel release(s), repeatable (default: uname -r)")
	cmd.Flags().String("busybox", "", "path to the busybox binary to link applets from")
	cmd.Flags().Bool("clean-on-error", false, "remove partial output after a failed build")

	_ = viper.BindPFlag("build.output", cmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("build.compression", cmd.Flags().Lookup("compression"))
	_ = viper.BindPFlag("build.kernel", cmd.Flags().Lookup("kernel"))
	_ = viper.BindPFlag("build.busybox", cmd.Flags().Lookup("busybox"))
	_ = viper.BindPFlag("build.clean-on-error", cmd.Flags().Lookup("clean-on-error"))

	viper.SetDefault("build.output", "cpio")
	viper.SetDefault("build.compression", "gzip")
}

// LoadBuilderOptions reads the build.* Viper keys populated by
// RegisterBuilderFlags. With no kernel configured, Kernels holds the
// running kernel's release as reported by uname.
func LoadBuilderOptions() BuilderOptions {
	kernels := viper.GetStringSlice("build.kernel")
	if len(kernels) == 0 {
		var uts unix.Utsname
		if err := unix.Uname(&uts); err == nil {
			kernels = []string{unix.ByteSliceToString(uts.Release[:])}
		}
	}
	return BuilderOptions{
		Output:       viper.GetString("build.output"),
		Compression:  viper.GetString("build.compression"),
		Kernels:      kernels,
		BusyboxPath:  viper.GetString("build.busybox"),
		CleanOnError: viper.GetBool("build.clean-on-error"),
	}
}
