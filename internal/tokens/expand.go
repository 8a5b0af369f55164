package tokens

import (
	"fmt"
	"regexp"
	"strings"
)

// tokenRe matches $tokenName placeholders. Token names are camelCase
// alphanumerics; underscores are separators between tokens, never part of
// a name, so "$ep_$seq" is two tokens.
var tokenRe = regexp.MustCompile(`\$([A-Za-z][A-Za-z0-9]*)`)

// ExpandError reports a placeholder that had no value. It always names the
// token so the caller can surface exactly what was missing.
type ExpandError struct {
	Token string
}

func (e *ExpandError) Error() string {
	return fmt.Sprintf("no value for token %q", e.Token)
}

// Expand substitutes values into every $token placeholder in template.
// overrideVersion, when non-empty, wins over any "ver" entry in values.
//
// A placeholder with no value fails with *ExpandError; the literal "$token"
// text is never emitted into a result. Expansion is purely textual, with no
// filesystem access and no existence checks.
func Expand(template string, values map[string]string, overrideVersion string) (string, error) {
	var missing *ExpandError
	expanded := tokenRe.ReplaceAllStringFunc(template, func(m string) string {
		name := m[1:]
		if name == VersionToken && overrideVersion != "" {
			return overrideVersion
		}
		if v, ok := values[name]; ok {
			return v
		}
		if missing == nil {
			missing = &ExpandError{Token: name}
		}
		return m
	})
	if missing != nil {
		return "", missing
	}
	return expanded, nil
}

// ExtractTokens returns every placeholder name in the template, in order of
// appearance, duplicates preserved. Pure function of the template string.
func ExtractTokens(template string) []string {
	ms := tokenRe.FindAllStringSubmatch(template, -1)
	if len(ms) == 0 {
		return nil
	}
	out := make([]string, 0, len(ms))
	for _, m := range ms {
		out = append(out, m[1])
	}
	return out
}

// UniqueTokens returns the distinct placeholder names in first-appearance
// order. Convenience over ExtractTokens for validation loops.
func UniqueTokens(template string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, tok := range ExtractTokens(template) {
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}

// HasToken reports whether the template contains the named placeholder.
func HasToken(template, name string) bool {
	for _, tok := range ExtractTokens(template) {
		if tok == name {
			return true
		}
	}
	return false
}

// StripAtToken derives the portion of a template before the path segment
// containing the named token. The resolver uses it to get the unversioned
// publish directory out of a versioned file template.
func StripAtToken(template, name string) string {
	for _, loc := range tokenRe.FindAllStringSubmatchIndex(template, -1) {
		if template[loc[2]:loc[3]] != name {
			continue
		}
		cut := strings.LastIndex(template[:loc[0]], "/")
		if cut < 0 {
			return ""
		}
		return template[:cut]
	}
	return template
}
