package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/bitswalk/cmkinit/src/cmkinit/ledger"
	"github.com/bitswalk/cmkinit/src/cmkinit/statusd"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve build history over HTTP",
	Long: `serve starts a read-only status server over the build ledger: a
health check and the history a running "cmkinit build --watch" would
otherwise be the only way to see remotely.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("ledger-path", ledger.DefaultPath, "path to the build ledger database")
	serveCmd.Flags().String("listen", "127.0.0.1:0", "address to listen on (default: an ephemeral loopback port)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ledgerPath, _ := cmd.Flags().GetString("ledger-path")
	listen, _ := cmd.Flags().GetString("listen")

	store, err := ledger.Open(ledgerPath)
	if err != nil {
		return err
	}
	defer store.Close()

	srv := statusd.New(store, nil)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return srv.Run(ctx, listen)
}
