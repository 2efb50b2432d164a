package cmd

import (
	"fmt"

	"github.com/bitswalk/cmkinit/src/cmkinit/ledger"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded builds",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().String("ledger-path", ledger.DefaultPath, "path to the build ledger database")
	historyCmd.Flags().Int("limit", 20, "maximum number of builds to list (0 for all)")
	historyCmd.Flags().Bool("json", false, "print as JSON instead of a table")
}

func runHistory(cmd *cobra.Command, args []string) error {
	ledgerPath, _ := cmd.Flags().GetString("ledger-path")
	limit, _ := cmd.Flags().GetInt("limit")
	asJSON, _ := cmd.Flags().GetBool("json")

	store, err := ledger.Open(ledgerPath)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.List(limit)
	if err != nil {
		return err
	}

	if asJSON {
		return printJSON(records)
	}

	if len(records) == 0 {
		fmt.Println("No builds recorded.")
		return nil
	}

	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = []string{r.ID.String(), r.Status, r.OutputPath, r.Compression, r.StartedAt.Format("2006-01-02 15:04:05")}
	}
	printTable([]string{"ID", "STATUS", "OUTPUT", "COMPRESSION", "STARTED"}, rows)
	return nil
}
