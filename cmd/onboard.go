package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/tgvault/internal/config"
)

func onboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "onboard",
		Short: "Interactive setup wizard",
		Run: func(cmd *cobra.Command, args []string) {
			runOnboard()
		},
	}
}

func runOnboard() {
	cfgPath := resolveConfigPath()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load existing config: %v\n", err)
		os.Exit(1)
	}

	token := cfg.Channels.Telegram.Token
	allowFrom := strings.Join(cfg.Channels.Telegram.AllowFrom, ", ")
	downloadsDir := cfg.Downloads.Dir
	driver := cfg.Database.Driver

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Telegram bot token").
				Description("Create a bot with @BotFather and paste its token here.").
				EchoMode(huh.EchoModePassword).
				Value(&token).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("token is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Allowed senders").
				Description("Comma-separated user IDs or @usernames. Empty allows everyone.").
				Value(&allowFrom),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Downloads directory").
				Value(&downloadsDir),
			huh.NewSelect[string]().
				Title("Archive database").
				Options(
					huh.NewOption("SQLite (single file, default)", config.DriverSQLite),
					huh.NewOption("PostgreSQL (set TGVAULT_POSTGRES_DSN)", config.DriverPostgres),
				).
				Value(&driver),
		),
	)

	if err := form.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "setup cancelled: %v\n", err)
		os.Exit(1)
	}

	cfg.Channels.Telegram.Enabled = true
	cfg.Channels.Telegram.Token = strings.TrimSpace(token)
	cfg.Channels.Telegram.AllowFrom = splitList(allowFrom)
	if strings.TrimSpace(downloadsDir) != "" {
		cfg.Downloads.Dir = strings.TrimSpace(downloadsDir)
	}
	cfg.Database.Driver = driver

	if err := config.Save(cfgPath, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "failed to save config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Configuration written to %s\n", cfgPath)
	fmt.Println("Start archiving with:  tgvault serve")
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
