package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/bitswalk/cmkinit/src/cmkinit/build"
	"github.com/bitswalk/cmkinit/src/cmkinit/config"
	"github.com/bitswalk/cmkinit/src/cmkinit/ledger"
	"github.com/bitswalk/cmkinit/src/cmkinit/statusd"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build an initramfs image from a DataSource graph",
	RunE:  runBuild,
}

func init() {
	config.RegisterBuilderFlags(buildCmd)

	buildCmd.Flags().String("graph-config", "", "path to the DataSource graph INI file (default: $CMKINITCFG, ./cmkinitramfs.ini, /etc/cmkinitramfs.ini)")
	buildCmd.Flags().StringP("out", "o", "", "destination for the built image (required)")
	buildCmd.Flags().Bool("no-history", false, "do not record this build in the ledger")
	buildCmd.Flags().String("ledger-path", ledger.DefaultPath, "path to the build ledger database")
	buildCmd.Flags().Bool("watch", false, "serve build progress over HTTP while building")
	buildCmd.Flags().String("listen", "127.0.0.1:0", "address for --watch's status server (default: an ephemeral loopback port)")

	buildCmd.Flags().String("publish-bucket", "", "S3-compatible bucket to upload the finished artifact to")
	buildCmd.Flags().String("publish-endpoint", "", "S3-compatible endpoint URL")
	buildCmd.Flags().String("publish-region", "us-east-1", "S3 region")
	buildCmd.Flags().String("publish-access-key", "", "S3 access key ID")
	buildCmd.Flags().String("publish-secret-key", "", "S3 secret access key")
	buildCmd.Flags().Bool("publish-path-style", false, "use path-style S3 addressing")

	_ = buildCmd.MarkFlagRequired("out")
}

func runBuild(cmd *cobra.Command, args []string) error {
	graphPath, _ := cmd.Flags().GetString("graph-config")
	if graphPath == "" {
		found, err := config.FindConfigFile()
		if err != nil {
			return err
		}
		graphPath = found
	}

	cfg, err := config.Load(graphPath)
	if err != nil {
		return err
	}
	opts := config.LoadBuilderOptions()

	outputPath, _ := cmd.Flags().GetString("out")
	noHistory, _ := cmd.Flags().GetBool("no-history")
	watch, _ := cmd.Flags().GetBool("watch")
	listen, _ := cmd.Flags().GetString("listen")

	workspace, err := os.MkdirTemp("", "cmkinit-build-")
	if err != nil {
		return fmt.Errorf("creating build workspace: %w", err)
	}
	defer os.RemoveAll(workspace)

	var store *ledger.Store
	if !noHistory {
		ledgerPath, _ := cmd.Flags().GetString("ledger-path")
		store, err = ledger.Open(ledgerPath)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	var pub build.PublishOptions
	pub.Bucket, _ = cmd.Flags().GetString("publish-bucket")
	pub.Endpoint, _ = cmd.Flags().GetString("publish-endpoint")
	pub.Region, _ = cmd.Flags().GetString("publish-region")
	pub.AccessKeyID, _ = cmd.Flags().GetString("publish-access-key")
	pub.SecretAccessKey, _ = cmd.Flags().GetString("publish-secret-key")
	pub.PathStyle, _ = cmd.Flags().GetBool("publish-path-style")

	bc := &build.Context{
		ID:         uuid.New(),
		Config:     cfg,
		Options:    opts,
		Workspace:  workspace,
		OutputPath: outputPath,
		StartedAt:  time.Now(),
	}

	if store != nil {
		if err := store.Record(ledger.BuildRecord{
			ID:          bc.ID,
			Status:      ledger.StatusRunning,
			ConfigPath:  graphPath,
			OutputPath:  outputPath,
			Kernels:     opts.Kernels,
			Compression: opts.Compression,
			StartedAt:   bc.StartedAt,
		}); err != nil {
			log.Warn("failed to record build start", "error", err)
		}
	}

	var tracker *statusd.Tracker
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if watch {
		tracker = statusd.NewTracker()
		tracker.Start(bc.ID)
		srv := statusd.New(store, tracker)
		go func() {
			if err := srv.Run(ctx, listen); err != nil {
				log.Error("status server stopped", "error", err)
			}
		}()
	}

	pipeline := build.StandardPipeline(pub, store, graphPath)

	var progress build.ProgressFunc = func(percent int, message string) {
		log.Info("build progress", "percent", percent, "message", message)
	}
	if tracker != nil {
		trackerFn := tracker.Func()
		progress = func(percent int, message string) {
			trackerFn(percent, message)
			log.Info("build progress", "percent", percent, "message", message)
		}
	}

	runErr := pipeline.Run(ctx, bc, progress)
	if tracker != nil {
		tracker.Finish(runErr)
	}

	if runErr != nil {
		if store != nil {
			finished := time.Now()
			if err := store.Record(ledger.BuildRecord{
				ID:           bc.ID,
				Status:       ledger.StatusFailed,
				ConfigPath:   graphPath,
				OutputPath:   outputPath,
				Kernels:      opts.Kernels,
				Compression:  opts.Compression,
				ErrorMessage: runErr.Error(),
				StartedAt:    bc.StartedAt,
				FinishedAt:   &finished,
			}); err != nil {
				log.Warn("failed to record build failure", "error", err)
			}
		}
		if opts.CleanOnError {
			os.RemoveAll(outputPath)
		}
		return runErr
	}

	fmt.Printf("build %s complete: %s\n", bc.ID, bc.Artifact.Path)
	if bc.Artifact.SHA256 != "" {
		fmt.Printf("  sha256: %s\n", bc.Artifact.SHA256)
	}
	return nil
}
