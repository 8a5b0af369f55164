// Package naming implements the filename and namespace conventions used by
// published shot assets. Both directions are pure: parsing returns
// (Fields, false) on malformed input instead of erroring, because callers
// routinely probe arbitrary strings against the convention.
package naming

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pipelab/multishot/api"
)

// Fields is the structured form of an asset name.
// A full cache filename carries all seven fields; a bare namespace carries
// only the asset triple (type, name, variant).
type Fields struct {
	Episode   string
	Sequence  string
	Shot      string
	AssetType string
	AssetName string
	Variant   string
	Ext       string
}

// AssetID returns the shot-independent asset identity string,
// e.g. "CHAR_CatStompie_001". It is the key the version cache indexes by.
func (f Fields) AssetID() string {
	return FormatNamespace(f)
}

// ShotID returns the shot-context prefix, e.g. "Ep04_sq0070_SH0170".
func (f Fields) ShotID() string {
	return f.Episode + "_" + f.Sequence + "_" + f.Shot
}

// Separator between the shot-context fields and the asset namespace in a
// full filename. Fixed by the production naming convention, not configurable.
const Separator = "__"

// DefaultExtensions is the cache/scene format allow-list matched by the
// built-in full-name pattern.
var DefaultExtensions = []string{"abc", "ma", "mb", "vdb", "ass", "rs"}

const (
	defaultNamespacePattern = `^([A-Z]+)_(.+)_(\d+)$`
	fullNameTemplate        = `^(Ep\d+)_(sq\d+)_(SH\d+)__([A-Z]+)_(.+)_(\d+)\.(%s)$`
)

// Codec parses and formats names according to a pattern pair.
// The zero value is not usable; construct with NewCodec or DefaultCodec.
type Codec struct {
	fullName  *regexp.Regexp
	namespace *regexp.Regexp
}

// DefaultCodec returns a codec using the production patterns verbatim.
func DefaultCodec() *Codec {
	c, err := NewCodec(api.NamingPatterns{}, nil)
	if err != nil {
		panic(err) // built-in patterns always compile
	}
	return c
}

// NewCodec builds a codec from config overrides. Empty pattern fields fall
// back to the built-in conventions; a nil or empty extension list falls back
// to DefaultExtensions. An explicit fullName pattern wins over extensions.
func NewCodec(p api.NamingPatterns, extensions []string) (*Codec, error) {
	fullPat := p.FullName
	if fullPat == "" {
		if len(extensions) == 0 {
			extensions = DefaultExtensions
		}
		fullPat = fmt.Sprintf(fullNameTemplate, strings.Join(extensions, "|"))
	}
	nsPat := p.Namespace
	if nsPat == "" {
		nsPat = defaultNamespacePattern
	}

	fullRe, err := regexp.Compile(fullPat)
	if err != nil {
		return nil, fmt.Errorf("fullName pattern: %w", err)
	}
	nsRe, err := regexp.Compile(nsPat)
	if err != nil {
		return nil, fmt.Errorf("namespace pattern: %w", err)
	}
	return &Codec{fullName: fullRe, namespace: nsRe}, nil
}

// ParseFullName parses a complete cache filename such as
// "Ep04_sq0070_SH0170__CHAR_CatStompie_001.abc". The second return is false
// for any string that does not match the convention, including names whose
// asset portion itself contains the shot separator.
func (c *Codec) ParseFullName(name string) (Fields, bool) {
	m := c.fullName.FindStringSubmatch(name)
	if m == nil || len(m) < 8 {
		return Fields{}, false
	}
	f := Fields{
		Episode:   m[1],
		Sequence:  m[2],
		Shot:      m[3],
		AssetType: m[4],
		AssetName: m[5],
		Variant:   m[6],
		Ext:       m[7],
	}
	// A second "__" inside the asset name would make the filename ambiguous
	// on the way back; reject it even when the regex happens to accept it.
	if strings.Contains(f.AssetName, Separator) {
		return Fields{}, false
	}
	return f, true
}

// ParseNamespace parses a bare asset reference such as "CHAR_CatStompie_001".
// The asset name may legally contain underscores ("PROP_Barn_Door_002"):
// the type is the leading uppercase run, the variant is the trailing digit
// run, and the name greedily claims everything between.
func (c *Codec) ParseNamespace(ns string) (Fields, bool) {
	m := c.namespace.FindStringSubmatch(ns)
	if m == nil || len(m) < 4 {
		return Fields{}, false
	}
	return Fields{AssetType: m[1], AssetName: m[2], Variant: m[3]}, true
}

// FormatFullName is the exact inverse of ParseFullName for well-formed fields.
func FormatFullName(f Fields) string {
	return f.ShotID() + Separator + FormatNamespace(f) + "." + f.Ext
}

// FormatNamespace is the exact inverse of ParseNamespace for well-formed fields.
func FormatNamespace(f Fields) string {
	return f.AssetType + "_" + f.AssetName + "_" + f.Variant
}

// Format classifies an input string against the two conventions.
type Format int

const (
	FormatInvalid Format = iota
	FullNameFormat
	NamespaceFormat
)

func (fm Format) String() string {
	switch fm {
	case FullNameFormat:
		return "fullName"
	case NamespaceFormat:
		return "namespace"
	default:
		return "invalid"
	}
}

// DetectFormat reports whether the input is a full filename, a bare
// namespace, or neither. Full filename wins when both could match.
func (c *Codec) DetectFormat(s string) Format {
	if _, ok := c.ParseFullName(s); ok {
		return FullNameFormat
	}
	if _, ok := c.ParseNamespace(s); ok {
		return NamespaceFormat
	}
	return FormatInvalid
}
