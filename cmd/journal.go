package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/kozaktomas/attendance-kiosk/internal/config"
	"github.com/kozaktomas/attendance-kiosk/internal/constants"
	"github.com/kozaktomas/attendance-kiosk/internal/logger"
	"github.com/spf13/cobra"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Show the local kiosk journal",
	Long: `Show the most recent verifications and enrollments recorded by this
kiosk in its local journal (KIOSK_JOURNAL_URL), newest first.`,
	RunE: runJournal,
}

func init() {
	rootCmd.AddCommand(journalCmd)

	journalCmd.Flags().Int("limit", constants.DefaultJournalLimit, "Number of entries to show")
	journalCmd.Flags().Bool("json", false, "Output as JSON")
}

func runJournal(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	ctx := context.Background()

	store, err := openJournal(ctx, cfg, logger.Discard())
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("journal is disabled (KIOSK_JOURNAL_URL=off)")
	}
	defer store.Close()

	entries, err := store.Recent(ctx, mustGetInt(cmd, "limit"))
	if err != nil {
		return err
	}

	if mustGetBool(cmd, "json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Println("Journal is empty.")
		return nil
	}

	loc := cfg.Kiosk.Location()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tKIND\tRESULT\tEMPLOYEE\tMESSAGE")
	fmt.Fprintln(w, "----\t----\t------\t--------\t-------")

	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", e.At.In(loc).Format("1/2/2006 3:04:05 PM"), e.Kind, e.Result, e.EmployeeID, e.Message)
	}

	w.Flush()

	fmt.Printf("\nShowing %d entries (%s journal)\n", len(entries), store.Dialect())

	return nil
}
