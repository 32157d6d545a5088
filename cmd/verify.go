package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/kozaktomas/attendance-kiosk/internal/capture"
	"github.com/kozaktomas/attendance-kiosk/internal/config"
	"github.com/kozaktomas/attendance-kiosk/internal/kiosk"
	"github.com/kozaktomas/attendance-kiosk/internal/submission"
	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Mark attendance with one camera frame",
	Long: `Capture a single frame from the configured camera, submit it to the
attendance backend and print the result. The camera is released afterwards.`,
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().Duration("wait", defaultFrameWait, "How long to wait for the first camera frame")
	verifyCmd.Flags().Bool("json", false, "Output as JSON")
}

func runVerify(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	jsonOutput := mustGetBool(cmd, "json")

	log, closeLog, err := setupLogging(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	client, err := newBackend(cfg, log)
	if err != nil {
		return err
	}
	cam, err := newCamera(cfg, log)
	if err != nil {
		return err
	}
	defer cam.Stop()

	ctx := context.Background()
	store, err := openJournal(ctx, cfg, log)
	if err != nil {
		return err
	}
	var j submission.Journal
	if store != nil {
		defer store.Close()
		j = store
	}

	if err := waitForFrame(ctx, cam, mustGetDuration(cmd, "wait")); err != nil {
		return errors.New(kiosk.UserMessage(err, err.Error()))
	}

	orch := submission.New(client, capture.NewCapturer(capture.NewPreviewStore()), &cfg.Catalog, j, log)
	out, err := orch.Verify(ctx, cam)
	if err != nil {
		return errors.New(kiosk.UserMessage(err, err.Error()))
	}

	view := kiosk.NewOutcomeView(out, cfg.Kiosk.Location())
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	}

	// Anything but a match exits non-zero so scripts can tell.

	switch out.(type) {
	case submission.Matched:
		fmt.Printf("Attendance marked\n")
		fmt.Printf("  Employee:   %s (%s)\n", view.EmployeeName, view.EmployeeID)
		fmt.Printf("  Time:       %s\n", view.Time)
		fmt.Printf("  Status:     %s\n", view.StatusLabel)
		fmt.Printf("  Similarity: %.2f\n", view.Similarity)
		if view.Message != "" {
			fmt.Printf("  %s\n", view.Message)
		}
	default:
		return errors.New(view.Message)
	}
	return nil
}
