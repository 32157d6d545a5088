package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kozaktomas/attendance-kiosk/internal/capture"
	"github.com/kozaktomas/attendance-kiosk/internal/config"
	"github.com/kozaktomas/attendance-kiosk/internal/constants"
	"github.com/kozaktomas/attendance-kiosk/internal/kiosk"
	"github.com/kozaktomas/attendance-kiosk/internal/submission"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var enrollCmd = &cobra.Command{
	Use:   "enroll",
	Short: "Register an employee with face images from the camera",
	Long: `Capture between 3 and 5 face images from the configured camera and
register the employee with the attendance backend.

Example:
  attendance-kiosk enroll --id EMP001 --name "Ayesha Khan" \
    --email ayesha@example.com --department Engineering --position "Software Engineer"`,
	RunE: runEnroll,
}

func init() {
	rootCmd.AddCommand(enrollCmd)

	enrollCmd.Flags().String("id", "", "Employee ID")
	enrollCmd.Flags().String("name", "", "Full name")
	enrollCmd.Flags().String("email", "", "Email address")
	enrollCmd.Flags().String("department", "", "Department (see the catalog)")
	enrollCmd.Flags().String("position", "", "Position (see the catalog)")
	enrollCmd.Flags().Int("images", constants.MaxBatch, "Number of face images to capture (3-5)")
	enrollCmd.Flags().Duration("interval", time.Second, "Pause between captures")
	enrollCmd.Flags().Duration("wait", defaultFrameWait, "How long to wait for the first camera frame")
}

func runEnroll(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	images := mustGetInt(cmd, "images")
	if images < constants.MinBatch || images > constants.MaxBatch {
		return fmt.Errorf("--images must be between %d and %d", constants.MinBatch, constants.MaxBatch)
	}
	interval := mustGetDuration(cmd, "interval")

	form := submission.EmployeeForm{
		EmployeeID: mustGetString(cmd, "id"),
		FullName:   mustGetString(cmd, "name"),
		Email:      mustGetString(cmd, "email"),
		Department: mustGetString(cmd, "department"),
		Position:   mustGetString(cmd, "position"),
	}
	// Fail before touching the camera.
	form.Normalize()
	if err := form.Validate(&cfg.Catalog); err != nil {
		return errors.New(kiosk.UserMessage(err, err.Error()))
	}

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

	capturer := capture.NewCapturer(capture.NewPreviewStore())
	batch := capture.NewBatch(cam, capturer, log)
	defer batch.Reset()

	fmt.Printf("Look at the camera. Capturing %d images for %s...\n", images, form.FullName)
	bar := progressbar.NewOptions(images,
		progressbar.OptionSetDescription("Capturing faces"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("images"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
	)

	for i := range images {
		if i > 0 {
			time.Sleep(interval)
		}
		if _, err := batch.Capture(); err != nil {
			return fmt.Errorf("capture %d: %s", i+1, kiosk.UserMessage(err, err.Error()))
		}
		bar.Add(1)
	}
	bar.Finish()
	fmt.Println()

	orch := submission.New(client, capturer, &cfg.Catalog, j, log)
	if _, err := orch.Enroll(ctx, &form, batch); err != nil {
		return errors.New(kiosk.UserMessage(err, constants.MsgRegistrationFailed))
	}

	fmt.Println(constants.MsgRegistered)
	return nil
}
