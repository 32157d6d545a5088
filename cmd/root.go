package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var captureDir string

var rootCmd = &cobra.Command{
	Use:   "attendance-kiosk",
	Short: "Face recognition attendance kiosk",
	Long: `Attendance Kiosk runs a camera-equipped kiosk that marks employee
attendance by face recognition. Recognition, status rules and storage live in
the attendance backend; the kiosk captures images, submits them and shows
the result. An admin area registers employees and reviews attendance.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&captureDir, "capture", "", "Directory to save backend responses for testing")
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
