package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/skybasehq/skybase-go"
	"github.com/skybasehq/skybase-go/internal/version"
	"github.com/spf13/cobra"
)

var (
	flagProjectKey    string
	flagBaseEndpoint  string
	flagDriveEndpoint string
	flagDebug         bool
)

var rootCmd = &cobra.Command{
	Use:          "skybase",
	Short:        "Skybase Base and Drive CLI",
	Version:      version.Short(),
	SilenceUsage: true,
}

// newClient builds an SDK client from flags, falling back to the
// SKYBASE_PROJECT_KEY environment variable (optionally via .env).
func newClient() (*skybase.Client, error) {
	key := flagProjectKey
	if key == "" {
		key = os.Getenv("SKYBASE_PROJECT_KEY")
	}
	return skybase.New(&skybase.Config{
		ProjectKey:    key,
		BaseEndpoint:  flagBaseEndpoint,
		DriveEndpoint: flagDriveEndpoint,
		Debug:         flagDebug,
	})
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagProjectKey, "project-key", "k", "", "project key (defaults to SKYBASE_PROJECT_KEY)")
	rootCmd.PersistentFlags().StringVar(&flagBaseEndpoint, "base-endpoint", "", "override the document-store endpoint")
	rootCmd.PersistentFlags().StringVar(&flagDriveEndpoint, "drive-endpoint", "", "override the blob-store endpoint")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "dump requests and responses")
}

func main() {
	_ = godotenv.Load()

	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:   slog.LevelInfo,
		NoColor: !isatty.IsTerminal(os.Stderr.Fd()),
	})))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
