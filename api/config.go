package api

// Config is the root of the project configuration document.
// It is consumed by the engine, never produced: the studio pipeline
// repository owns the file, this code only loads and validates it.
type Config struct {
	// Version of the config schema ("1.0" or "1.1").
	Version string `json:"version"`
	// Project identity (name + short code used as the $project token).
	Project ProjectInfo `json:"project"`
	// Tokens declares every substitution variable templates may use.
	Tokens map[string]TokenDef `json:"tokens"`
	// Templates maps template names to strings containing $token placeholders.
	Templates map[string]string `json:"templates"`
	// Roots maps root token names to platform-neutral root identifiers.
	Roots map[string]string `json:"roots"`
	// PlatformMapping maps platform name -> root token -> absolute root path.
	PlatformMapping map[string]map[string]string `json:"platformMapping"`
	// StaticPaths are fixed path fragments available as tokens (e.g. sceneBase).
	StaticPaths map[string]string `json:"staticPaths,omitempty"`
	// NamingPatterns optionally overrides the built-in filename regexes.
	NamingPatterns NamingPatterns `json:"namingPatterns,omitempty"`
	// Extensions is the filename extension allow-list for cache discovery.
	Extensions []string `json:"extensions,omitempty"`
}

// ProjectInfo identifies the production.
type ProjectInfo struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// TokenDef declares a single substitution variable.
type TokenDef struct {
	// Description is free-form documentation for the token.
	Description string `json:"description,omitempty"`
	// Pattern is an optional regex a value must fully match.
	Pattern string `json:"pattern,omitempty"`
	// Values is an optional closed set of allowed values.
	Values []string `json:"values,omitempty"`
}

// NamingPatterns overrides the filename/namespace conventions.
// Empty fields fall back to the production defaults.
type NamingPatterns struct {
	FullName  string `json:"fullName,omitempty"`
	Namespace string `json:"namespace,omitempty"`
}
