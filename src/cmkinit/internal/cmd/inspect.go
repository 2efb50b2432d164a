package cmd

import (
	"fmt"

	"github.com/bitswalk/cmkinit/src/cmkinit/ledger"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <build-id>",
	Short: "Show one recorded build in detail",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func init() {
	inspectCmd.Flags().String("ledger-path", ledger.DefaultPath, "path to the build ledger database")
	inspectCmd.Flags().Bool("json", false, "print as JSON instead of a table")
}

func runInspect(cmd *cobra.Command, args []string) error {
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid build id %q: %w", args[0], err)
	}

	ledgerPath, _ := cmd.Flags().GetString("ledger-path")
	asJSON, _ := cmd.Flags().GetBool("json")

	store, err := ledger.Open(ledgerPath)
	if err != nil {
		return err
	}
	defer store.Close()

	rec, err := store.Get(id)
	if err != nil {
		return err
	}

	if asJSON {
		return printJSON(rec)
	}

	finished := ""
	if rec.FinishedAt != nil {
		finished = rec.FinishedAt.Format("2006-01-02 15:04:05")
	}
	printTable([]string{"FIELD", "VALUE"}, [][]string{
		{"ID", rec.ID.String()},
		{"Status", rec.Status},
		{"Config", rec.ConfigPath},
		{"Output", rec.OutputPath},
		{"Kernels", fmt.Sprint(rec.Kernels)},
		{"Compression", rec.Compression},
		{"SHA256", rec.ArtifactSHA256},
		{"Size", fmt.Sprintf("%d", rec.ArtifactSize)},
		{"Error", rec.ErrorMessage},
		{"Started", rec.StartedAt.Format("2006-01-02 15:04:05")},
		{"Finished", finished},
	})
	return nil
}
