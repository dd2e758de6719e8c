package cmd

import (
	"context"
	"fmt"

	"github.com/3leaps/nimbusview/pkg/manifest"
	"github.com/3leaps/nimbusview/pkg/match"
	"github.com/3leaps/nimbusview/pkg/source"
	"github.com/3leaps/nimbusview/pkg/source/s3"
)

// viewSpec is the fully resolved description of a view: where the listing
// comes from, how file links are built, and which keys are visible.
// Values come from a manifest, command flags, or both; flags win.
type viewSpec struct {
	URI      *SourceURI
	Region   string
	Profile  string
	Endpoint string
	CDNBase  string
	Title    string
	Includes []string
	Excludes []string
}

// resolveViewSpec merges an optional manifest with command flags into a
// viewSpec. Flag values override manifest values; a glob tail on an s3
// source URI becomes an include pattern.
func resolveViewSpec(manifestPath, rawSource, kindHint, region, profile, endpoint, cdnBase, title string, includes, excludes []string) (*viewSpec, error) {
	spec := &viewSpec{
		Region:   region,
		Profile:  profile,
		Endpoint: endpoint,
		CDNBase:  cdnBase,
		Title:    title,
		Includes: includes,
		Excludes: excludes,
	}

	if manifestPath != "" {
		m, err := manifest.Load(manifestPath)
		if err != nil {
			return nil, err
		}
		applyManifest(spec, m)
	}

	if rawSource != "" {
		uri, err := ParseSourceURI(rawSource, kindHint)
		if err != nil {
			return nil, err
		}
		spec.URI = uri
	}

	if spec.URI == nil {
		return nil, fmt.Errorf("a listing source is required: pass --source or --manifest")
	}

	if spec.URI.Pattern != "" {
		spec.Includes = append(spec.Includes, spec.URI.Pattern)
	}
	return spec, nil
}

// applyManifest fills spec fields the flags left empty.
func applyManifest(spec *viewSpec, m *manifest.Manifest) {
	switch m.Source.Kind {
	case string(source.KindHTTP):
		spec.URI = &SourceURI{Kind: source.KindHTTP, Endpoint: m.Source.Endpoint}
	case string(source.KindS3):
		spec.URI = &SourceURI{Kind: source.KindS3, Bucket: m.Source.Bucket, Prefix: m.Source.Prefix}
		if spec.Endpoint == "" {
			spec.Endpoint = m.Source.Endpoint
		}
	case string(source.KindFile):
		spec.URI = &SourceURI{Kind: source.KindFile, Dir: m.Source.BaseDir, Prefix: m.Source.Prefix}
	}

	if spec.Region == "" {
		spec.Region = m.Source.Region
	}
	if spec.Profile == "" {
		spec.Profile = m.Source.Profile
	}
	if spec.CDNBase == "" {
		spec.CDNBase = m.CDN.BaseURL
	}
	if spec.Title == "" {
		spec.Title = m.UI.Title
	}
	if len(spec.Includes) == 0 {
		spec.Includes = m.Match.Includes
	}
	if len(spec.Excludes) == 0 {
		spec.Excludes = m.Match.Excludes
	}
}

// filterObjects returns the records whose keys the matcher accepts,
// preserving listing order.
func filterObjects(records []source.Object, m *match.Matcher) []source.Object {
	kept := make([]source.Object, 0, len(records))
	for _, obj := range records {
		if m.Match(obj.Key) {
			kept = append(kept, obj)
		}
	}
	return kept
}

// buildSource constructs the listing source a resolved viewSpec describes.
func buildSource(ctx context.Context, spec *viewSpec) (source.Source, error) {
	switch spec.URI.Kind {
	case source.KindHTTP:
		return source.NewHTTPIndex(source.HTTPConfig{Endpoint: spec.URI.Endpoint})
	case source.KindS3:
		return s3.New(ctx, s3.Config{
			Bucket:         spec.URI.Bucket,
			Prefix:         spec.URI.Prefix,
			Region:         spec.Region,
			Profile:        spec.Profile,
			Endpoint:       spec.Endpoint,
			ForcePathStyle: spec.Endpoint != "",
		})
	case source.KindFile:
		return source.NewDir(source.DirConfig{BaseDir: spec.URI.Dir, Prefix: spec.URI.Prefix})
	default:
		return nil, fmt.Errorf("unsupported source kind %q", spec.URI.Kind)
	}
}
