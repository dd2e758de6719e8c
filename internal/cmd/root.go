// Package cmd implements the nimbusview command tree: serve, browse,
// dump, and doctor, plus the configuration and logging setup they share.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/3leaps/nimbusview/internal/config"
	"github.com/3leaps/nimbusview/internal/observability"
	"github.com/3leaps/nimbusview/internal/server/handlers"
)

// versionInfo holds build metadata injected by the linker via main.
var versionInfo = struct {
	Version   string
	Commit    string
	BuildDate string
}{
	Version:   "dev",
	Commit:    "HEAD",
	BuildDate: "unknown",
}

// SetVersionInfo records build metadata for --version and the /version
// endpoint. Called from main before Execute.
func SetVersionInfo(version, commit, buildDate string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.BuildDate = buildDate
	rootCmd.Version = fmt.Sprintf("%s (commit %s, built %s)", version, commit, buildDate)
	handlers.SetVersionInfo(version, commit, buildDate)
}

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "nimbusview",
	Short: "Browse flat object-storage listings as folder trees",
	Long: `nimbusview turns a flat object-storage listing into a navigable
folder tree. It fetches the complete listing once per session, derives
synthetic folders from shared key prefixes, and presents the result as a
web browser (serve), a terminal table (browse), or a JSONL stream (dump).

Listings come from an HTTP index endpoint, directly from an S3 bucket,
or from a local directory.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cfgFile != "" {
			if err := os.Setenv(config.EnvConfigFile, cfgFile); err != nil {
				return err
			}
		}
		return initLogging()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to config file (yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().String("log-profile", "", "Log output profile (structured|console)")

	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.profile", rootCmd.PersistentFlags().Lookup("log-profile"))
	_ = viper.BindEnv("logging.level", "NIMBUSVIEW_LOG_LEVEL")
	_ = viper.BindEnv("logging.profile", "NIMBUSVIEW_LOG_PROFILE")

	setDefaults()
}

// setDefaults seeds the global viper with the baseline configuration every
// command starts from. The serve command loads the full file and
// environment layering on top of the same keys.
func setDefaults() {
	viper.SetDefault("server.host", config.DefaultHost)
	viper.SetDefault("server.port", config.DefaultPort)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")
	viper.SetDefault("server.shutdown_timeout", "10s")
	viper.SetDefault("logging.level", config.DefaultLogLevel)
	viper.SetDefault("logging.profile", config.DefaultLogProfile)
	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.port", config.DefaultMetricsPort)
	viper.SetDefault("health.enabled", true)
	viper.SetDefault("debug.enabled", false)
	viper.SetDefault("debug.pprof_enabled", false)
}

// initLogging builds the process loggers from the persistent flags and
// environment before any command runs.
func initLogging() error {
	return observability.Init(observability.Config{
		Level:   viper.GetString("logging.level"),
		Profile: viper.GetString("logging.profile"),
	})
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command
// context so long-running commands can shut down cleanly. The process
// exit code comes from the returned error when one carries a code.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	observability.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(exitCode(err))
	}
}

// cmdError carries a process exit code alongside the failure it wraps.
type cmdError struct {
	code    int
	message string
	err     error
}

func (e *cmdError) Error() string {
	return fmt.Sprintf("%s: %v (exit code %d)", e.message, e.err, e.code)
}

func (e *cmdError) Unwrap() error {
	return e.err
}

// exitError wraps err with a human-readable message and the exit code the
// process should terminate with.
func exitError(code int, message string, err error) error {
	return &cmdError{code: code, message: message, err: err}
}

// exitCode extracts the exit code from an error chain, defaulting to 1
// for errors that do not carry one.
func exitCode(err error) int {
	var ce *cmdError
	if errors.As(err, &ce) {
		return ce.code
	}
	return 1
}
