// Package config loads and validates the project configuration document.
// Loading is atomic: no partially validated config is ever returned, and
// every validation failure names the offending declaration.
package config

import (
	"fmt"
	"os"
	"runtime"
	"sort"

	"github.com/ohler55/ojg/oj"

	"github.com/pipelab/multishot/api"
	"github.com/pipelab/multishot/internal/naming"
	"github.com/pipelab/multishot/internal/tokens"
)

// SupportedVersions are the config schema versions this build understands.
var SupportedVersions = []string{"1.0", "1.1"}

// ValidationError is a fatal config problem found at load time.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return "config: " + e.Msg }

func invalidf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// Load reads and validates a config file.
func Load(path string) (*api.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates a config document.
func Parse(data []byte) (*api.Config, error) {
	var cfg api.Config
	if err := oj.Unmarshal(data, &cfg); err != nil {
		return nil, invalidf("invalid JSON: %v", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *api.Config) error {
	type section struct {
		name    string
		present bool
	}
	required := []section{
		{"tokens", cfg.Tokens != nil},
		{"templates", cfg.Templates != nil},
		{"roots", cfg.Roots != nil},
		{"platformMapping", cfg.PlatformMapping != nil},
	}
	var missing []string
	for _, s := range required {
		if !s.present {
			missing = append(missing, s.name)
		}
	}
	if len(missing) > 0 {
		return invalidf("missing required keys: %v", missing)
	}

	supported := false
	for _, v := range SupportedVersions {
		if cfg.Version == v {
			supported = true
			break
		}
	}
	if !supported {
		return invalidf("unsupported version %q (supported: %v)", cfg.Version, SupportedVersions)
	}

	// Token declarations must compile.
	table, err := buildTable(cfg)
	if err != nil {
		return invalidf("%v", err)
	}

	// Every placeholder in every template must be declared. Roots, static
	// paths, and the project code are implicit tokens; buildTable already
	// folded them in.
	names := make([]string, 0, len(cfg.Templates))
	for name := range cfg.Templates {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, tok := range tokens.UniqueTokens(cfg.Templates[name]) {
			if !table.Has(tok) {
				return invalidf("template %q references undeclared token %q", name, tok)
			}
		}
	}

	// Platform mappings may only map declared roots.
	for platform, roots := range cfg.PlatformMapping {
		for rootTok := range roots {
			if _, ok := cfg.Roots[rootTok]; !ok {
				return invalidf("platformMapping %q maps undeclared root %q", platform, rootTok)
			}
		}
	}

	// Naming overrides must compile.
	if _, err := naming.NewCodec(cfg.NamingPatterns, cfg.Extensions); err != nil {
		return invalidf("namingPatterns: %v", err)
	}

	return nil
}

// buildTable folds the declared tokens plus the implicit ones (roots,
// static paths, project) into one token table.
func buildTable(cfg *api.Config) (*tokens.Table, error) {
	defs := make(map[string]api.TokenDef, len(cfg.Tokens)+len(cfg.Roots)+len(cfg.StaticPaths)+1)
	for name, def := range cfg.Tokens {
		defs[name] = def
	}
	for name := range cfg.Roots {
		if _, dup := defs[name]; !dup {
			defs[name] = api.TokenDef{Description: "filesystem root"}
		}
	}
	for name := range cfg.StaticPaths {
		if _, dup := defs[name]; !dup {
			defs[name] = api.TokenDef{Description: "static path"}
		}
	}
	if _, dup := defs["project"]; !dup {
		defs["project"] = api.TokenDef{Description: "project code"}
	}
	return tokens.NewTable(defs)
}

// Assemble builds the runtime pieces a validated config describes:
// the token table, the template registry, and the name codec.
func Assemble(cfg *api.Config) (*tokens.Table, *tokens.Registry, *naming.Codec, error) {
	table, err := buildTable(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	reg := tokens.NewRegistry(table)
	for name, raw := range cfg.Templates {
		if err := reg.Add(name, raw); err != nil {
			return nil, nil, nil, err
		}
	}
	codec, err := naming.NewCodec(cfg.NamingPatterns, cfg.Extensions)
	if err != nil {
		return nil, nil, nil, err
	}
	return table, reg, codec, nil
}

// RootsForPlatform returns the absolute root paths for one platform.
func RootsForPlatform(cfg *api.Config, platform string) (map[string]string, error) {
	roots, ok := cfg.PlatformMapping[platform]
	if !ok {
		return nil, invalidf("no platformMapping for platform %q", platform)
	}
	out := make(map[string]string, len(roots))
	for k, v := range roots {
		out[k] = v
	}
	return out, nil
}

// CurrentPlatform maps the running OS onto a platformMapping key.
func CurrentPlatform() string {
	switch runtime.GOOS {
	case "windows":
		return "windows"
	case "darwin":
		return "darwin"
	default:
		return "linux"
	}
}
