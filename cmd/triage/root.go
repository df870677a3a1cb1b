package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rgrier/triage/internal/clickup"
	"github.com/rgrier/triage/internal/dayai"
	"github.com/rgrier/triage/internal/debug"
	"github.com/rgrier/triage/internal/noise"
	"github.com/rgrier/triage/internal/refresh"
	"github.com/rgrier/triage/internal/store"
)

var (
	dataDir     string
	jsonOutput  bool
	verboseFlag bool

	config = viper.New()
)

var rootCmd = &cobra.Command{
	Use:   "triage",
	Short: "triage - Action item triage pipeline",
	Long:  `Pulls action items from your workspace intelligence account, filters the noise, resolves clients, and pushes the keepers to your task tracker.`,
	Run: func(cmd *cobra.Command, args []string) {
		if v, _ := cmd.Flags().GetBool("version"); v {
			fmt.Printf("triage version %s (%s)\n", Version, Build)
			return
		}
		_ = cmd.Help()
	},
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verboseFlag {
			debug.SetVerbose(true)
		}
		if !cmd.Flags().Changed("json") {
			jsonOutput = config.GetBool("json")
		}
		if !cmd.Flags().Changed("data-dir") && dataDir == "" {
			dataDir = config.GetString("data_dir")
		}
		if dataDir == "" {
			dataDir = defaultDataDir()
		}
	},
}

func init() {
	config.SetEnvPrefix("TRIAGE")
	config.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	config.AutomaticEnv()
	// ClickUp credentials live outside the TRIAGE_ namespace.
	_ = config.BindEnv("clickup_token", "CLICKUP_TOKEN")

	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Data directory (default ~/.triage, env TRIAGE_DATA_DIR)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable verbose debug output")
	rootCmd.Flags().Bool("version", false, "Show version information")
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".triage"
	}
	return filepath.Join(home, ".triage")
}

func newFiles() *store.Files {
	return store.New(dataDir)
}

func newSource() *dayai.Client {
	clientID := config.GetString("client_id")
	refreshToken := config.GetString("refresh_token")
	if clientID == "" || refreshToken == "" {
		FatalError("upstream credentials not configured (set TRIAGE_CLIENT_ID and TRIAGE_REFRESH_TOKEN)")
	}
	return dayai.New(dayai.Config{
		BaseURL:      config.GetString("base_url"),
		ClientID:     clientID,
		RefreshToken: refreshToken,
	})
}

func newOrchestrator(files *store.Files) *refresh.Orchestrator {
	classifier, err := noise.Load(files.NoiseRulesPath())
	if err != nil {
		FatalError("loading noise rules: %v", err)
	}
	return refresh.New(files, newSource(), classifier, refresh.Config{
		Logger: newLogger(),
	})
}

func newPusher() *clickup.Client {
	token := config.GetString("clickup_token")
	if token == "" {
		FatalError("tracker credentials not configured (set CLICKUP_TOKEN)")
	}
	return clickup.New(clickup.Config{Token: token})
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verboseFlag {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v interface{}) {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		os.Exit(1)
	}
}

// FatalError writes an error message to stderr and exits with code 1.
func FatalError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
