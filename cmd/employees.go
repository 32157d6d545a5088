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
	"github.com/kozaktomas/attendance-kiosk/internal/roster"
	"github.com/spf13/cobra"
)

var employeesCmd = &cobra.Command{
	Use:   "employees",
	Short: "Manage registered employees",
}

var employeesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered employees",
	Long:  `Retrieves and displays every employee registered with the attendance backend.`,
	RunE:  runEmployeesList,
}

var employeesDeleteCmd = &cobra.Command{
	Use:   "delete <employee-id>",
	Short: "Delete an employee and their attendance records",
	Args:  cobra.ExactArgs(1),
	RunE:  runEmployeesDelete,
}

func init() {
	rootCmd.AddCommand(employeesCmd)
	employeesCmd.AddCommand(employeesListCmd)
	employeesCmd.AddCommand(employeesDeleteCmd)

	employeesListCmd.Flags().String("query", "", "Filter by name, ID, email or department")
	employeesListCmd.Flags().Bool("json", false, "Output as JSON")
	employeesDeleteCmd.Flags().Bool("yes", false, "Do not ask for confirmation")
}

func loadRoster(ctx context.Context, cfg *config.Config) (*roster.Roster, error) {
	client, err := newBackend(cfg, logger.Discard())
	if err != nil {
		return nil, err
	}
	r := roster.New(client, logger.Discard())
	if err := r.Refresh(ctx); err != nil {
		return nil, errors.New(kiosk.UserMessage(err, constants.MsgEmployeesLoadFailed))
	}
	return r, nil
}

func runEmployeesList(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	r, err := loadRoster(context.Background(), cfg)
	if err != nil {
		return err
	}
	employees := r.Filter(mustGetString(cmd, "query"))

	if mustGetBool(cmd, "json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(employees)
	}

	if len(employees) == 0 {
		fmt.Println("No employees found.")
		return nil
	}

	loc := cfg.Kiosk.Location()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tDEPARTMENT\tPOSITION\tREGISTERED")
	fmt.Fprintln(w, "--\t----\t-----\t----------\t--------\t----------")

	for i := range employees {
		e := &employees[i]
		registered := ""
		if !e.CreatedAt.IsZero() {
			registered = e.CreatedAt.In(loc).Format("1/2/2006")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", e.EmployeeID, e.FullName, e.Email, e.Department, e.Position, registered)
	}

	w.Flush()

	fmt.Printf("\nTotal: %d employees\n", len(employees))

	return nil
}

func runEmployeesDelete(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	ctx := context.Background()
	id := args[0]

	r, err := loadRoster(ctx, cfg)
	if err != nil {
		return err
	}
	e, ok := r.Find(id)
	if !ok {
		return fmt.Errorf("employee %s not found", id)
	}

	if !mustGetBool(cmd, "yes") {
		fmt.Printf("Delete %s (%s) and all attendance records? [y/N]: ", e.FullName, e.EmployeeID)
		var answer string
		fmt.Scanln(&answer)
		if answer != "y" && answer != "Y" {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	if err := r.Delete(ctx, id); err != nil {
		return errors.New(kiosk.UserMessage(err, constants.MsgEmployeeDeleteFailed))
	}
	fmt.Println(constants.MsgEmployeeDeleted)
	if err := r.RefreshErr(); err != nil {
		fmt.Printf("Warning: %s: %v\n", constants.MsgEmployeesLoadFailed, err)
	}
	return nil
}
