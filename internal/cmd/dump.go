package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/3leaps/nimbusview/internal/observability"
	"github.com/3leaps/nimbusview/pkg/match"
	"github.com/3leaps/nimbusview/pkg/output"
	"github.com/3leaps/nimbusview/pkg/snapshot"
	"github.com/3leaps/nimbusview/pkg/source"
)

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Dump the flat listing as JSONL",
	Long: `Fetch the listing once and emit it as JSON Lines.

Each line is a typed record envelope: one object record per key that
passes the include and exclude filters, then a single summary record.
A failed fetch emits an error record before the command exits nonzero,
so consumers see the failure in-band.

Examples:
  nimbusview dump --source s3://my-bucket/
  nimbusview dump --source https://cdn.example.com/index.json --output listing.jsonl
  nimbusview dump --manifest view.yaml --include '**/*.parquet'`,
	RunE: runDump,
}

var (
	dumpSource     string
	dumpSourceKind string
	dumpManifest   string
	dumpOutput     string
	dumpIncludes   []string
	dumpExcludes   []string
	dumpRegion     string
	dumpProfile    string
	dumpEndpoint   string
)

func init() {
	rootCmd.AddCommand(dumpCmd)

	dumpCmd.Flags().StringVarP(&dumpSource, "source", "s", "", "Listing source URI (https://.../index.json | s3://bucket/prefix | file:///dir)")
	dumpCmd.Flags().StringVar(&dumpSourceKind, "source-kind", "", "Source kind for bare --source values (http|s3|file)")
	dumpCmd.Flags().StringVarP(&dumpManifest, "manifest", "m", "", "Path to view manifest (yaml or json)")
	dumpCmd.Flags().StringVarP(&dumpOutput, "output", "o", "", "Output destination: stdout (default) or a file path")
	dumpCmd.Flags().StringArrayVar(&dumpIncludes, "include", nil, "Glob pattern for keys to include (repeatable)")
	dumpCmd.Flags().StringArrayVar(&dumpExcludes, "exclude", nil, "Glob pattern for keys to exclude (repeatable)")
	dumpCmd.Flags().StringVar(&dumpRegion, "region", "", "AWS region for s3 sources")
	dumpCmd.Flags().StringVar(&dumpProfile, "profile", "", "AWS credential profile for s3 sources")
	dumpCmd.Flags().StringVar(&dumpEndpoint, "endpoint", "", "Custom endpoint URL for S3-compatible stores")
}

func runDump(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	spec, err := resolveViewSpec(dumpManifest, dumpSource, dumpSourceKind,
		dumpRegion, dumpProfile, dumpEndpoint, "", "", dumpIncludes, dumpExcludes)
	if err != nil {
		observability.CLILogger.Error("Invalid view configuration", zap.Error(err))
		return exitError(foundry.ExitInvalidArgument, "Invalid view configuration", err)
	}

	matcher, err := match.New(match.Config{Includes: spec.Includes, Excludes: spec.Excludes})
	if err != nil {
		observability.CLILogger.Error("Invalid match patterns", zap.Error(err))
		return exitError(foundry.ExitInvalidArgument, "Invalid match patterns", err)
	}

	src, err := buildSource(ctx, spec)
	if err != nil {
		observability.CLILogger.Error("Failed to create listing source", zap.Error(err))
		return exitError(foundry.ExitExternalServiceUnavailable, "Failed to create listing source", err)
	}

	jobID := uuid.New().String()
	writer, cleanup, err := createDumpWriter(dumpOutput, jobID, string(spec.URI.Kind))
	if err != nil {
		observability.CLILogger.Error("Failed to create output writer", zap.Error(err))
		return exitError(foundry.ExitFileWriteError, "Failed to create output writer", err)
	}
	defer cleanup()

	observability.CLILogger.Info("Starting dump",
		zap.String("job_id", jobID),
		zap.String("source", src.String()))

	store := snapshot.NewStore(src, observability.CLILogger)
	start := time.Now()
	if err := store.Load(ctx); err != nil {
		_ = writer.WriteError(ctx, &output.ErrorRecord{
			Code:    errorCodeFor(err),
			Message: "listing fetch failed",
			Details: map[string]any{"source": src.String(), "error": err.Error()},
		})
		if ctx.Err() != nil {
			return exitError(foundry.ExitSignalInt, "Dump cancelled", err)
		}
		return exitError(foundry.ExitExternalServiceUnavailable, "Listing fetch failed", err)
	}

	var emitted, bytes int64
	records := store.Records()
	for i := range records {
		if !matcher.Empty() && !matcher.Match(records[i].Key) {
			continue
		}

		rec := &output.ObjectRecord{
			Key:          records[i].Key,
			Size:         records[i].Size,
			ETag:         records[i].ETag,
			LastModified: records[i].LastModified,
		}
		if err := writer.WriteObject(ctx, rec); err != nil {
			if ctx.Err() != nil {
				return exitError(foundry.ExitSignalInt, "Dump cancelled", err)
			}
			return exitError(foundry.ExitFileWriteError, "Failed to write output", err)
		}
		emitted++
		bytes += records[i].Size
	}

	dur := time.Since(start)
	sum := &output.SummaryRecord{
		ObjectsListed:  int64(store.Len()),
		ObjectsEmitted: emitted,
		BytesTotal:     bytes,
		Duration:       dur,
		DurationHuman:  dur.Round(time.Millisecond).String(),
	}
	if err := writer.WriteSummary(ctx, sum); err != nil {
		return exitError(foundry.ExitFileWriteError, "Failed to write summary", err)
	}

	observability.CLILogger.Info("Dump completed",
		zap.String("job_id", jobID),
		zap.Int64("objects_listed", sum.ObjectsListed),
		zap.Int64("objects_emitted", emitted),
		zap.Int64("bytes_total", bytes),
		zap.Duration("duration", dur))
	return nil
}

// createDumpWriter builds the JSONL writer for the destination. Empty,
// "stdout", and "-" write to standard output; anything else is a file
// path, with an optional "file:" prefix stripped.
func createDumpWriter(dest, jobID, sourceKind string) (output.Writer, func(), error) {
	if dest == "" || dest == "stdout" || dest == "-" {
		w := output.NewJSONLWriter(os.Stdout, jobID, sourceKind)
		return w, func() { _ = w.Close() }, nil
	}

	path := strings.TrimPrefix(dest, "file:")
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file %s: %w", path, err)
	}

	w := output.NewJSONLWriter(f, jobID, sourceKind)
	cleanup := func() {
		_ = w.Close()
		_ = f.Close()
	}
	return w, cleanup, nil
}

// errorCodeFor maps a source error to the record error code consumers
// switch on.
func errorCodeFor(err error) string {
	switch {
	case source.IsNotFound(err) || source.IsBucketNotFound(err):
		return output.ErrCodeNotFound
	case source.IsAccessDenied(err) || source.IsInvalidCredentials(err):
		return output.ErrCodeAccessDenied
	case source.IsThrottled(err):
		return output.ErrCodeThrottled
	case source.IsUnavailable(err):
		return output.ErrCodeUnavailable
	default:
		return output.ErrCodeInternal
	}
}
