package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/docskin/internal/db"
	"github.com/ziadkadry99/docskin/internal/live"
	"github.com/ziadkadry99/docskin/internal/progress"
	"github.com/ziadkadry99/docskin/internal/server"
	"github.com/ziadkadry99/docskin/internal/telemetry"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the site with per-visitor color modes",
	Long: `Serves the built site. Pages are customized on the fly and rendered in the
color mode each visitor last chose; the toggle stays live over a WebSocket.
Choices are kept in a SQLite database under server.data_dir.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Int("port", 0, "port to listen on (overrides server.port)")
	serveCmd.Flags().Bool("open", false, "open the site in the default browser")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if port, _ := cmd.Flags().GetInt("port"); port != 0 {
		cfg.Server.Port = port
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, "docskin")
	if err != nil {
		return fmt.Errorf("setting up tracing: %w", err)
	}
	defer shutdownTracing(context.Background())

	if err := os.MkdirAll(cfg.Server.DataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}
	dbPath := filepath.Join(cfg.Server.DataDir, db.FileName)
	database, err := db.Open(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	source := iconSourceFromConfig(cfg)
	customizer, err := newCustomizer(cfg, source, progress.Nop{}, live.ScriptPath)
	if err != nil {
		return err
	}
	if err := customizer.Prefetch(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	srv := server.New(server.Config{
		Port:     cfg.Server.Port,
		DataDir:  cfg.Server.DataDir,
		SiteDir:  cfg.SiteDir,
		Include:  cfg.Include,
		Exclude:  cfg.Exclude,
		AllowAll: cfg.Server.AllowAll,
	}, database, customizer, source)

	// Graceful shutdown.
	go func() {
		<-ctx.Done()
		fmt.Fprintln(os.Stderr, "\nShutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	url := fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
	fmt.Fprintf(os.Stderr, "docskin %s serving %s at %s\n", Version, cfg.SiteDir, url)
	fmt.Fprintf(os.Stderr, "  Database: %s\n", dbPath)
	fmt.Fprintf(os.Stderr, "  Modes: %d (default %s)\n", customizer.Modes().Len(), cfg.DefaultMode)

	if open, _ := cmd.Flags().GetBool("open"); open {
		go openBrowser(url)
	}

	if err := srv.Start(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// openBrowser opens the given URL in the default browser.
func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	case "darwin":
		cmd = exec.Command("open", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	_ = cmd.Start()
}
