package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/3leaps/nimbusview/internal/observability"
	"github.com/3leaps/nimbusview/internal/server/handlers"
	"github.com/3leaps/nimbusview/pkg/browse"
	"github.com/3leaps/nimbusview/pkg/cdn"
	"github.com/3leaps/nimbusview/pkg/format"
	"github.com/3leaps/nimbusview/pkg/match"
	"github.com/3leaps/nimbusview/pkg/snapshot"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Print the entries at a path in the terminal",
	Long: `Fetch the listing once and print the entries visible at a path.

Folders are synthesized from shared key prefixes exactly as in the web
view. Entries keep the listing order; nothing is sorted.

Examples:
  nimbusview browse --source https://cdn.example.com/index.json
  nimbusview browse --source s3://my-bucket/ --path data/2024/
  nimbusview browse --manifest view.yaml --include '**/*.csv' --json`,
	RunE: runBrowse,
}

var (
	browseSource     string
	browseSourceKind string
	browseManifest   string
	browsePath       string
	browseJSON       bool
	browseIncludes   []string
	browseExcludes   []string
	browseRegion     string
	browseProfile    string
	browseEndpoint   string
	browseCDNBase    string
)

func init() {
	rootCmd.AddCommand(browseCmd)

	browseCmd.Flags().StringVarP(&browseSource, "source", "s", "", "Listing source URI (https://.../index.json | s3://bucket/prefix | file:///dir)")
	browseCmd.Flags().StringVar(&browseSourceKind, "source-kind", "", "Source kind for bare --source values (http|s3|file)")
	browseCmd.Flags().StringVarP(&browseManifest, "manifest", "m", "", "Path to view manifest (yaml or json)")
	browseCmd.Flags().StringVarP(&browsePath, "path", "P", "", "Folder path to list (empty for the root)")
	browseCmd.Flags().BoolVar(&browseJSON, "json", false, "Emit the listing in the API response shape")
	browseCmd.Flags().StringArrayVar(&browseIncludes, "include", nil, "Glob pattern for keys to include (repeatable)")
	browseCmd.Flags().StringArrayVar(&browseExcludes, "exclude", nil, "Glob pattern for keys to exclude (repeatable)")
	browseCmd.Flags().StringVar(&browseRegion, "region", "", "AWS region for s3 sources")
	browseCmd.Flags().StringVar(&browseProfile, "profile", "", "AWS credential profile for s3 sources")
	browseCmd.Flags().StringVar(&browseEndpoint, "endpoint", "", "Custom endpoint URL for S3-compatible stores")
	browseCmd.Flags().StringVar(&browseCDNBase, "cdn-base", "", "Base URL for file links in --json output")
}

func runBrowse(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	spec, err := resolveViewSpec(browseManifest, browseSource, browseSourceKind,
		browseRegion, browseProfile, browseEndpoint, browseCDNBase, "", browseIncludes, browseExcludes)
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

	var links *cdn.Links
	if spec.CDNBase != "" {
		links, err = cdn.New(spec.CDNBase)
		if err != nil {
			return exitError(foundry.ExitInvalidArgument, "Invalid CDN base URL", err)
		}
	}

	store := snapshot.NewStore(src, observability.CLILogger)
	if err := store.Load(ctx); err != nil {
		if ctx.Err() != nil {
			return exitError(foundry.ExitSignalInt, "Listing fetch cancelled", err)
		}
		observability.CLILogger.Error("Listing fetch failed", zap.Error(err))
		return exitError(foundry.ExitExternalServiceUnavailable, "Listing fetch failed", err)
	}

	records := store.Records()
	if !matcher.Empty() {
		records = filterObjects(records, matcher)
	}

	path := match.EnsureTrailingSlash(strings.TrimPrefix(browsePath, "/"))

	if browseJSON {
		resp := handlers.BuildListingResponse(records, links, path, store.State().String())
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(resp); err != nil {
			return exitError(foundry.ExitFileWriteError, "Failed to write output", err)
		}
		return nil
	}

	entries := browse.Children(records, path)
	if err := printListing(os.Stdout, src.String(), path, entries, store.Len()); err != nil {
		return exitError(foundry.ExitFileWriteError, "Failed to write output", err)
	}
	return nil
}

// printListing renders the entries visible at path as an aligned table.
func printListing(w io.Writer, src, path string, entries []browse.Entry, total int) error {
	if _, err := fmt.Fprintf(w, "Source: %s\n", src); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Path:   /%s\n\n", path); err != nil {
		return err
	}

	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No entries at this path.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "TYPE\tNAME\tSIZE\tMODIFIED"); err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsFolder() {
			if _, err := fmt.Fprintf(tw, "%s\t%s/\t\t\n", e.Kind, e.Name); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			e.Kind, e.Name, format.Size(e.Object.Size), format.ModTime(e.Object.LastModified)); err != nil {
			return err
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\n%d entries (%d objects in listing)\n", len(entries), total)
	return err
}
