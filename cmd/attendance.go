package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/kozaktomas/attendance-kiosk/internal/backend"
	"github.com/kozaktomas/attendance-kiosk/internal/config"
	"github.com/kozaktomas/attendance-kiosk/internal/constants"
	"github.com/kozaktomas/attendance-kiosk/internal/export"
	"github.com/kozaktomas/attendance-kiosk/internal/kiosk"
	"github.com/kozaktomas/attendance-kiosk/internal/logger"
	"github.com/spf13/cobra"
)

var attendanceCmd = &cobra.Command{
	Use:   "attendance",
	Short: "Review attendance records",
}

var attendanceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List attendance records",
	RunE:  runAttendanceList,
}

var attendanceExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export attendance records as CSV",
	Long: `Export attendance records as CSV with the columns
Date, Time, Employee ID, Employee Name and Status. Times are shown in the
kiosk time zone (KIOSK_TIMEZONE).`,
	RunE: runAttendanceExport,
}

func init() {
	rootCmd.AddCommand(attendanceCmd)
	attendanceCmd.AddCommand(attendanceListCmd)
	attendanceCmd.AddCommand(attendanceExportCmd)

	attendanceListCmd.Flags().String("date", "", "Only records of this date (YYYY-MM-DD)")
	attendanceListCmd.Flags().Bool("today", false, "Only records of today in the kiosk time zone")
	attendanceListCmd.Flags().Bool("json", false, "Output as JSON")

	attendanceExportCmd.Flags().String("date", "", "Only records of this date (YYYY-MM-DD)")
	attendanceExportCmd.Flags().StringP("output", "o", "", "Output file (default attendance_<date|all>.csv, - for stdout)")
}

// attendanceDate resolves the --date and --today flags.
func attendanceDate(cmd *cobra.Command, cfg *config.Config) (string, error) {
	date := mustGetString(cmd, "date")
	if cmd.Flags().Lookup("today") != nil && mustGetBool(cmd, "today") {
		if date != "" {
			return "", errors.New("--date and --today are mutually exclusive")
		}
		return time.Now().In(cfg.Kiosk.Location()).Format(backend.DateLayout), nil
	}
	if date != "" {
		if _, err := time.Parse(backend.DateLayout, date); err != nil {
			return "", fmt.Errorf("invalid --date %q: expected YYYY-MM-DD", date)
		}
	}
	return date, nil
}

func fetchAttendance(ctx context.Context, cfg *config.Config, date string) ([]backend.AttendanceRecord, error) {
	client, err := newBackend(cfg, logger.Discard())
	if err != nil {
		return nil, err
	}
	records, err := client.ListAttendance(ctx, date)
	if err != nil {
		return nil, errors.New(kiosk.UserMessage(err, constants.MsgAttendanceLoadFailed))
	}
	return records, nil
}

func runAttendanceList(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	date, err := attendanceDate(cmd, cfg)
	if err != nil {
		return err
	}

	records, err := fetchAttendance(context.Background(), cfg, date)
	if err != nil {
		return err
	}

	if mustGetBool(cmd, "json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	if len(records) == 0 {
		fmt.Println("No attendance records found.")
		return nil
	}

	loc := cfg.Kiosk.Location()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tTIME\tID\tNAME\tSTATUS")
	fmt.Fprintln(w, "----\t----\t--\t----\t------")

	for i := range records {
		r := &records[i]
		day, clock := "", ""
		if !r.Timestamp.IsZero() {
			local := r.Timestamp.In(loc)
			day, clock = local.Format("1/2/2006"), local.Format("3:04:05 PM")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", day, clock, r.EmployeeID, r.EmployeeName, r.Status.Label())
	}

	w.Flush()

	fmt.Printf("\nTotal: %d records\n", len(records))

	return nil
}

func runAttendanceExport(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	date, err := attendanceDate(cmd, cfg)
	if err != nil {
		return err
	}

	records, err := fetchAttendance(context.Background(), cfg, date)
	if err != nil {
		return err
	}

	output := mustGetString(cmd, "output")
	if output == "" {
		output = export.Filename(date)
	}

	var w io.Writer = os.Stdout
	if output != "-" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("creating %s: %w", output, err)
		}
		defer f.Close()
		w = f
	}

	if err := export.WriteCSV(w, records, cfg.Kiosk.Location()); err != nil {
		return err
	}
	if output != "-" {
		fmt.Printf("Exported %d records to %s\n", len(records), output)
	}
	return nil
}
