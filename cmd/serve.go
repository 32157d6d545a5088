package cmd

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/kozaktomas/attendance-kiosk/internal/capture"
	"github.com/kozaktomas/attendance-kiosk/internal/config"
	"github.com/kozaktomas/attendance-kiosk/internal/kiosk"
	"github.com/kozaktomas/attendance-kiosk/internal/roster"
	"github.com/kozaktomas/attendance-kiosk/internal/submission"
	"github.com/kozaktomas/attendance-kiosk/internal/web"
	"github.com/mdp/qrterminal/v3"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the kiosk web UI",
	Long: `Start the Attendance Kiosk web server.
The browser UI shows the camera preview, marks attendance by face and, behind
the admin login, registers employees and lists attendance records.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 0, "Port to listen on (overrides WEB_PORT)")
	serveCmd.Flags().String("host", "", "Host to bind to (overrides WEB_HOST)")
	serveCmd.Flags().String("session-secret", "", "Secret for signing session cookies (defaults to random)")
	serveCmd.Flags().Bool("no-qr", false, "Do not print the kiosk URL as a QR code")
}

// resolveServeHostPort applies command line overrides on top of the environment config.
func resolveServeHostPort(cmd *cobra.Command, cfg *config.Config) {
	if port := mustGetInt(cmd, "port"); port != 0 {
		cfg.Web.Port = port
	}
	if host := mustGetString(cmd, "host"); host != "" {
		cfg.Web.Host = host
	}
	if secret := mustGetString(cmd, "session-secret"); secret != "" {
		cfg.Web.SessionSecret = secret
	}
}

// kioskURL returns the address a tablet on the LAN would open.
func kioskURL(host string, port int) string {
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = outboundIP()
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(port))
}

// outboundIP returns the address of the interface used for the default route.
// No packets are sent.
func outboundIP() string {
	conn, err := net.Dial("udp", "192.0.2.1:80")
	if err != nil {
		return "localhost"
	}
	defer conn.Close()
	return conn.LocalAddr().(*net.UDPAddr).IP.String()
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	resolveServeHostPort(cmd, cfg)

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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := openJournal(ctx, cfg, log)
	if err != nil {
		return err
	}
	deps := web.Dependencies{Camera: cam, Version: Version}
	// Interfaces stay nil when the journal is off.
	var j submission.Journal
	if store != nil {
		defer store.Close()
		j = store
		deps.Journal = store
		deps.Sessions = store.Sessions()
		fmt.Printf("Journal enabled (%s)\n", store.Dialect())
	} else {
		fmt.Println("Journal disabled")
	}

	previews := capture.NewPreviewStore()
	capturer := capture.NewCapturer(previews)
	batch := capture.NewBatch(cam, capturer, log)
	orch := submission.New(client, capturer, &cfg.Catalog, j, log)
	employees := roster.New(client, log)
	controller := kiosk.NewController(cam, batch, orch, employees, client, kiosk.Options{
		AdminUsername:         cfg.Admin.Username,
		AdminPassword:         cfg.Admin.Password,
		PreserveBatchOnSwitch: cfg.Kiosk.PreserveBatchOnSwitch,
		Location:              cfg.Kiosk.Location(),
	}, log)
	deps.Kiosk = controller
	deps.Previews = previews

	if err := employees.Refresh(ctx); err != nil {
		fmt.Printf("Warning: could not load employees from %s: %v\n", cfg.API.URL, err)
	} else {
		fmt.Printf("Loaded %d employees from %s\n", len(employees.Employees()), cfg.API.URL)
	}

	server := web.NewServer(cfg, deps)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	url := kioskURL(cfg.Web.Host, cfg.Web.Port)
	fmt.Printf("Starting Attendance Kiosk on %s (camera: %s)\n", url, cam.DeviceName())
	if !mustGetBool(cmd, "no-qr") {
		qrterminal.GenerateHalfBlock(url, qrterminal.L, os.Stdout)
	}
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
