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
	"github.com/kozaktomas/attendance-kiosk/internal/kiosk"
	"github.com/kozaktomas/attendance-kiosk/internal/logger"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status <employee-id>",
	Short: "Show attendance statistics for one employee",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().Bool("json", false, "Output as JSON")
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	client, err := newBackend(cfg, logger.Discard())
	if err != nil {
		return err
	}
	status, err := client.EmployeeStatus(context.Background(), args[0])
	if err != nil {
		return errors.New(kiosk.UserMessage(err, constants.MsgStatusLoadFailed))
	}

	if mustGetBool(cmd, "json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(status)
	}

	fmt.Printf("%s (%s)\n", status.EmployeeName, status.EmployeeID)
	fmt.Printf("  Total days:      %d\n", status.TotalDays)
	fmt.Printf("  Present:         %d\n", status.PresentCount)
	fmt.Printf("  Late arrivals:   %d\n", status.LateCount)
	fmt.Printf("  Early leaves:    %d\n", status.EarlyLeaveCount)
	fmt.Printf("  Absent:          %d\n", status.AbsentCount)
	fmt.Printf("  Attendance rate: %.1f%%\n", status.AttendanceRate)

	if len(status.RecentRecords) == 0 {
		return nil
	}

	loc := cfg.Kiosk.Location()
	fmt.Println("\nRecent records:")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, r := range status.RecentRecords {
		fmt.Fprintf(w, "  %s\t%s\n", r.Timestamp.In(loc).Format("1/2/2006 3:04:05 PM"), r.Status.Label())
	}
	w.Flush()

	return nil
}
