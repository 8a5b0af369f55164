// Package resolve composes the template registry, token expansion, the
// version cache, and the platform root mapping into absolute path
// resolution. It is the single entry point every higher-level operation
// funnels through.
package resolve

import (
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/pipelab/multishot/internal/host"
	"github.com/pipelab/multishot/internal/naming"
	"github.com/pipelab/multishot/internal/tokens"
	"github.com/pipelab/multishot/internal/vcache"
)

// VersionLatest asks the version cache for the newest discovered version
// instead of pinning one.
const VersionLatest = "latest"

// VersionError means "latest" was requested but the cache holds nothing for
// the asset at the implied publish location. Resolution never guesses v001.
type VersionError struct {
	Dir   string
	Asset string
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("no cached versions for %q under %s (scan the publish directory first)", e.Asset, e.Dir)
}

// Resolver turns (template name, context, version) into an absolute path.
// Roots must already be the active platform's mapping; swapping the map is
// the one seam where the same logical path differs between platforms.
type Resolver struct {
	Templates *tokens.Registry
	Cache     *vcache.Cache
	Roots     map[string]string
	Static    map[string]string
	Project   string
	Logger    *slog.Logger
}

func (r *Resolver) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

// Resolve expands the named template with the merged context and the
// requested version. version may be a pinned string ("v006"), VersionLatest,
// or empty (treated as VersionLatest). The result is normalized but never
// checked for existence; resolution must also work for paths about to be
// written.
func (r *Resolver) Resolve(templateName string, ctx map[string]string, version string) (string, error) {
	raw, err := r.Templates.Get(templateName)
	if err != nil {
		return "", err
	}

	values := r.mergeContext(ctx)

	if version == "" {
		version = VersionLatest
	}
	if version == VersionLatest {
		if tokens.HasToken(raw, tokens.VersionToken) {
			version, err = r.latestFor(raw, values)
			if err != nil {
				return "", err
			}
		} else {
			version = ""
		}
	}

	expanded, err := tokens.Expand(raw, values, version)
	if err != nil {
		return "", err
	}

	resolved := normalize(expanded)
	r.logger().Debug("resolved path", "template", templateName, "version", version, "path", resolved)
	return resolved, nil
}

// latestFor asks the cache for the newest version at the unversioned
// portion of the template.
func (r *Resolver) latestFor(raw string, values map[string]string) (string, error) {
	dirTemplate := tokens.StripAtToken(raw, tokens.VersionToken)
	dirPath, err := tokens.Expand(dirTemplate, values, "")
	if err != nil {
		return "", err
	}
	dir := normalize(dirPath)

	fields := naming.Fields{
		AssetType: values["assetType"],
		AssetName: values["assetName"],
		Variant:   values["variant"],
	}
	for name, v := range map[string]string{
		"assetType": fields.AssetType,
		"assetName": fields.AssetName,
		"variant":   fields.Variant,
	} {
		if v == "" {
			return "", &tokens.ExpandError{Token: name}
		}
	}

	assetID := fields.AssetID()
	latest, ok := r.Cache.Latest(dir, assetID)
	if !ok {
		return "", &VersionError{Dir: dir, Asset: assetID}
	}
	return latest, nil
}

// mergeContext layers roots, static paths, and the project code under the
// caller's context. Caller values win on conflict.
func (r *Resolver) mergeContext(ctx map[string]string) map[string]string {
	values := make(map[string]string, len(r.Roots)+len(r.Static)+len(ctx)+1)
	for k, v := range r.Roots {
		values[k] = v
	}
	for k, v := range r.Static {
		values[k] = v
	}
	if r.Project != "" {
		values["project"] = r.Project
	}
	for k, v := range ctx {
		values[k] = v
	}
	return values
}

// BatchItem is one resolution request within a batch.
type BatchItem struct {
	Name     string
	Template string
	Ctx      map[string]string
	Version  string
}

// BatchResult pairs one item with its outcome.
type BatchResult struct {
	Name string
	Path string
	Err  error
}

// BatchSummary counts outcomes across a batch.
type BatchSummary struct {
	OK     int
	Failed int
}

// ResolveBatch resolves every item, collecting per-item outcomes. One
// item's failure never aborts the rest.
func (r *Resolver) ResolveBatch(items []BatchItem) ([]BatchResult, BatchSummary) {
	results := make([]BatchResult, 0, len(items))
	var sum BatchSummary
	for _, item := range items {
		p, err := r.Resolve(item.Template, item.Ctx, item.Version)
		if err != nil {
			sum.Failed++
			results = append(results, BatchResult{Name: item.Name, Err: err})
			continue
		}
		sum.OK++
		results = append(results, BatchResult{Name: item.Name, Path: p})
	}
	return results, sum
}

// ValidatePath is the explicit, optional existence check. It is never part
// of Resolve.
func (r *Resolver) ValidatePath(h host.SceneHost, p string) error {
	if !h.PathExists(p) {
		return fmt.Errorf("resolved path does not exist: %s", p)
	}
	return nil
}

// normalize cleans separators without touching drive-letter roots.
func normalize(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	cleaned := path.Clean(p)
	if cleaned == "." {
		return ""
	}
	return cleaned
}
