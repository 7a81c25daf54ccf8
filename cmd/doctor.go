package cmd

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"

	"github.com/nextlevelbuilder/tgvault/internal/config"
)

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check system environment and configuration health",
		Run: func(cmd *cobra.Command, args []string) {
			runDoctor()
		},
	}
}

func runDoctor() {
	fmt.Println("tgvault doctor")
	fmt.Printf("  Version:  %s\n", Version)
	fmt.Printf("  OS:       %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Printf("  Go:       %s\n", runtime.Version())
	fmt.Println()

	// Config
	cfgPath := resolveConfigPath()
	fmt.Printf("  Config:   %s", cfgPath)
	if _, err := os.Stat(cfgPath); err != nil {
		fmt.Println(" (NOT FOUND — env vars only)")
	} else {
		fmt.Println(" (OK)")
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Printf("  Config load error: %s\n", err)
		return
	}

	// Telegram
	fmt.Println()
	fmt.Println("  Telegram:")
	switch {
	case !cfg.Channels.Telegram.Enabled:
		fmt.Printf("    %-12s disabled\n", "Status:")
	case cfg.Channels.Telegram.Token == "":
		fmt.Printf("    %-12s NO TOKEN (run: tgvault onboard)\n", "Status:")
	default:
		fmt.Printf("    %-12s configured\n", "Status:")
	}
	if n := len(cfg.Channels.Telegram.AllowFrom); n > 0 {
		fmt.Printf("    %-12s %d entries\n", "Allowlist:", n)
	} else {
		fmt.Printf("    %-12s open to all senders\n", "Allowlist:")
	}

	// Downloads directory
	fmt.Println()
	fmt.Println("  Downloads:")
	dir := cfg.DownloadDir()
	fmt.Printf("    %-12s %s\n", "Dir:", dir)
	if err := checkWritable(dir); err != nil {
		fmt.Printf("    %-12s NOT WRITABLE (%s)\n", "Status:", err)
	} else {
		fmt.Printf("    %-12s writable\n", "Status:")
	}
	if cfg.Downloads.RetentionCron != "" {
		fmt.Printf("    %-12s %q, %d days\n", "Retention:", cfg.Downloads.RetentionCron, cfg.Downloads.RetentionDays)
	} else {
		fmt.Printf("    %-12s disabled\n", "Retention:")
	}

	// Database
	fmt.Println()
	fmt.Println("  Database:")
	fmt.Printf("    %-12s %s\n", "Driver:", cfg.Database.Driver)
	switch cfg.Database.Driver {
	case "", config.DriverSQLite:
		fmt.Printf("    %-12s %s\n", "Path:", cfg.SQLitePath())
	case config.DriverPostgres:
		if cfg.Database.PostgresDSN == "" {
			fmt.Printf("    %-12s TGVAULT_POSTGRES_DSN not set\n", "Status:")
			return
		}
		db, dbErr := sql.Open("pgx", cfg.Database.PostgresDSN)
		if dbErr != nil {
			fmt.Printf("    %-12s CONNECT FAILED (%s)\n", "Status:", dbErr)
			return
		}
		defer db.Close()
		if pingErr := db.Ping(); pingErr != nil {
			fmt.Printf("    %-12s CONNECT FAILED (%s)\n", "Status:", pingErr)
		} else {
			fmt.Printf("    %-12s reachable\n", "Status:")
		}
	}
}

// checkWritable verifies the directory exists (creating it if needed)
// and accepts a new file.
func checkWritable(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	probe := filepath.Join(dir, ".doctor_probe")
	if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
		return err
	}
	return os.Remove(probe)
}
