package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/3leaps/nimbusview/internal/config"
	"github.com/3leaps/nimbusview/internal/observability"
	"github.com/3leaps/nimbusview/pkg/manifest"
	"github.com/3leaps/nimbusview/pkg/source"
)

var (
	doctorSource     string
	doctorSourceKind string
	doctorManifest   string
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run diagnostic checks",
	Long: `Run diagnostic checks on the environment and suggest fixes for
common issues.

Examples:
  nimbusview doctor                                # Environment checks
  nimbusview doctor --source-kind s3               # Plus AWS credential checks
  nimbusview doctor --source s3://my-bucket/data/  # Plus a live listing check
  nimbusview doctor --manifest view.yaml           # Plus a manifest check`,
	Run: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().StringVarP(&doctorSource, "source", "s", "", "Listing source URI to check for reachability")
	doctorCmd.Flags().StringVar(&doctorSourceKind, "source-kind", "", "Run source-specific checks (s3)")
	doctorCmd.Flags().StringVarP(&doctorManifest, "manifest", "m", "", "View manifest to validate")
}

func runDoctor(cmd *cobra.Command, args []string) {
	observability.CLILogger.Info("=== nimbusview doctor ===")
	observability.CLILogger.Info("")
	observability.CLILogger.Info("Running diagnostic checks...")
	observability.CLILogger.Info("")

	wantSource := doctorSource != ""
	wantS3 := doctorSourceKind == "s3" || strings.HasPrefix(strings.ToLower(doctorSource), "s3://")
	wantManifest := doctorManifest != ""

	allChecks := true
	checkNum := 1
	totalChecks := 4
	if wantManifest {
		totalChecks++
	}
	if wantS3 {
		totalChecks += 2
	}
	if wantSource {
		totalChecks++
	}

	// Check 1: Go version
	goVersion := runtime.Version()
	if goVersion >= "go1.25" {
		observability.CLILogger.Info(fmt.Sprintf("[%d/%d] Checking Go version... ✅ %s", checkNum, totalChecks, goVersion),
			zap.String("go_version", goVersion))
	} else {
		observability.CLILogger.Warn(fmt.Sprintf("[%d/%d] Checking Go version... ⚠️  %s (recommended: go1.25+)", checkNum, totalChecks, goVersion),
			zap.String("go_version", goVersion))
		allChecks = false
	}
	checkNum++

	// Check 2: Config directory
	configDir, err := os.UserConfigDir()
	if err != nil {
		observability.CLILogger.Error(fmt.Sprintf("[%d/%d] Checking config directory... ❌ Cannot find config directory", checkNum, totalChecks),
			zap.Error(err))
		allChecks = false
	} else {
		observability.CLILogger.Info(fmt.Sprintf("[%d/%d] Checking config directory... ✅ %s", checkNum, totalChecks, configDir),
			zap.String("config_dir", configDir))
	}
	checkNum++

	// Check 3: Config file
	if path, found := findConfigFile(); found {
		observability.CLILogger.Info(fmt.Sprintf("[%d/%d] Checking config file... ✅ %s", checkNum, totalChecks, path),
			zap.String("config_file", path))
	} else if path != "" {
		// Named explicitly but unreadable
		observability.CLILogger.Error(fmt.Sprintf("[%d/%d] Checking config file... ❌ %s not readable", checkNum, totalChecks, path),
			zap.String("config_file", path))
		allChecks = false
	} else {
		observability.CLILogger.Info(fmt.Sprintf("[%d/%d] Checking config file... ✅ none found, defaults apply", checkNum, totalChecks))
	}
	checkNum++

	// Check 4: Environment
	observability.CLILogger.Info(fmt.Sprintf("[%d/%d] Checking environment... ✅ %s/%s", checkNum, totalChecks, runtime.GOOS, runtime.GOARCH),
		zap.String("os", runtime.GOOS),
		zap.String("arch", runtime.GOARCH))
	checkNum++

	if wantManifest {
		allChecks = runManifestCheck(checkNum, totalChecks) && allChecks
		checkNum++
	}

	if wantS3 {
		var ok bool
		checkNum, ok = runS3Checks(cmd.Context(), checkNum, totalChecks)
		allChecks = allChecks && ok
	}

	if wantSource {
		allChecks = runSourceCheck(cmd.Context(), checkNum, totalChecks) && allChecks
	}

	observability.CLILogger.Info("")
	if allChecks {
		observability.CLILogger.Info("✅ All checks passed! Your nimbusview installation is healthy.")
	} else {
		observability.CLILogger.Warn("⚠️  Some checks failed. Review the output above for details.")
	}
	observability.CLILogger.Info("")
	observability.CLILogger.Info("=== End Diagnostics ===")
}

// findConfigFile reports the config file the loader would use. The bool
// is false when no file exists; a non-empty path with a false bool means
// an explicitly named file is missing.
func findConfigFile() (string, bool) {
	if path := os.Getenv(config.EnvConfigFile); path != "" {
		if _, err := os.Stat(path); err != nil {
			return path, false
		}
		return path, true
	}

	candidates := []string{"nimbusview.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "nimbusview", "nimbusview.yaml"))
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}

// runManifestCheck validates the --manifest file against the embedded
// schema and the field-level checks.
func runManifestCheck(checkNum, totalChecks int) bool {
	data, err := os.ReadFile(doctorManifest)
	if err != nil {
		observability.CLILogger.Error(fmt.Sprintf("[%d/%d] Checking manifest... ❌ Cannot read %s", checkNum, totalChecks, doctorManifest),
			zap.Error(err))
		return false
	}

	if err := manifest.ValidateSchema(data); err != nil {
		observability.CLILogger.Error(fmt.Sprintf("[%d/%d] Checking manifest... ❌ Schema violations in %s", checkNum, totalChecks, doctorManifest),
			zap.Error(err))
		return false
	}

	m, err := manifest.Load(doctorManifest)
	if err != nil {
		observability.CLILogger.Error(fmt.Sprintf("[%d/%d] Checking manifest... ❌ Invalid manifest %s", checkNum, totalChecks, doctorManifest),
			zap.Error(err))
		return false
	}

	observability.CLILogger.Info(fmt.Sprintf("[%d/%d] Checking manifest... ✅ %s source", checkNum, totalChecks, m.Source.Kind),
		zap.String("manifest", doctorManifest),
		zap.String("source_kind", m.Source.Kind))
	return true
}

// runS3Checks runs the AWS credential checks. Returns the next check
// number and whether the checks passed.
func runS3Checks(ctx context.Context, checkNum, totalChecks int) (int, bool) {
	observability.CLILogger.Info("")
	observability.CLILogger.Info("S3 Source Checks:")

	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		observability.CLILogger.Error(fmt.Sprintf("[%d/%d] Checking AWS credentials... ❌ Cannot load AWS config", checkNum, totalChecks),
			zap.Error(err))
		printAWSCredentialsHelp()
		return checkNum + 2, false
	}

	creds, err := cfg.Credentials.Retrieve(ctx)
	if err != nil {
		observability.CLILogger.Error(fmt.Sprintf("[%d/%d] Checking AWS credentials... ❌ Cannot retrieve credentials", checkNum, totalChecks),
			zap.Error(err))
		printAWSCredentialsHelp()
		return checkNum + 2, false
	}

	maskedKey := maskAccessKey(creds.AccessKeyID)
	observability.CLILogger.Info(fmt.Sprintf("[%d/%d] Checking AWS credentials... ✅ Found credentials", checkNum, totalChecks),
		zap.String("access_key", maskedKey),
		zap.String("source", creds.Source))
	checkNum++

	credSource := creds.Source
	if credSource == "" {
		credSource = "unknown"
	}
	observability.CLILogger.Info(fmt.Sprintf("[%d/%d] Checking credential source... ✅ %s", checkNum, totalChecks, credSource),
		zap.String("credential_source", credSource))

	return checkNum + 1, true
}

// runSourceCheck builds the --source listing source and fetches the
// listing once to prove it is reachable.
func runSourceCheck(ctx context.Context, checkNum, totalChecks int) bool {
	observability.CLILogger.Info("")
	observability.CLILogger.Info("Source Reachability:")

	uri, err := ParseSourceURI(doctorSource, doctorSourceKind)
	if err != nil {
		observability.CLILogger.Error(fmt.Sprintf("[%d/%d] Checking listing source... ❌ Invalid source URI", checkNum, totalChecks),
			zap.Error(err))
		return false
	}

	src, err := buildSource(ctx, &viewSpec{URI: uri})
	if err != nil {
		observability.CLILogger.Error(fmt.Sprintf("[%d/%d] Checking listing source... ❌ Cannot create source", checkNum, totalChecks),
			zap.Error(err))
		return false
	}

	fetchCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	objects, err := src.List(fetchCtx)
	if err != nil {
		observability.CLILogger.Error(fmt.Sprintf("[%d/%d] Checking listing source... ❌ Fetch failed", checkNum, totalChecks),
			zap.String("source", src.String()),
			zap.Error(err))
		if source.IsAccessDenied(err) || source.IsInvalidCredentials(err) {
			printAWSCredentialsHelp()
		}
		return false
	}

	observability.CLILogger.Info(fmt.Sprintf("[%d/%d] Checking listing source... ✅ %d objects", checkNum, totalChecks, len(objects)),
		zap.String("source", src.String()),
		zap.Int("objects", len(objects)))
	return true
}

// maskAccessKey masks all but the last 4 characters of an access key.
func maskAccessKey(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}

// printAWSCredentialsHelp prints help for configuring AWS credentials.
func printAWSCredentialsHelp() {
	observability.CLILogger.Info("")
	observability.CLILogger.Info("To configure AWS credentials:")
	observability.CLILogger.Info("  1. Set AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY environment variables, or")
	observability.CLILogger.Info("  2. Run 'aws configure' to set up a profile, or")
	observability.CLILogger.Info("  3. Use an IAM role when running on AWS infrastructure")
	observability.CLILogger.Info("")
	observability.CLILogger.Info("For S3-compatible storage (MinIO, Wasabi, etc.), also set:")
	observability.CLILogger.Info("  - a custom endpoint with the --endpoint flag")
	observability.CLILogger.Info("")
}
