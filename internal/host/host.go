// Package host is the boundary to the authoring application's live scene
// graph. The engine only ever asks it to apply a path to a target, toggle a
// visibility group, or check that a path exists; everything else about the
// scene stays on the host's side.
package host

import "errors"

// ErrTargetLocked is returned by ApplyPath when the target cannot accept a
// structural update. Apply falls back to the string-attribute channel.
var ErrTargetLocked = errors.New("target is locked")

// TargetKind is the closed set of external target kinds the engine can push
// paths onto. Each kind carries its own file-path attribute; the kind is
// resolved once when a binding is created, never re-detected per apply.
type TargetKind string

const (
	KindStandIn   TargetKind = "aiStandIn"
	KindProxy     TargetKind = "RedshiftProxyMesh"
	KindReference TargetKind = "reference"
)

// pathAttrs maps each kind to the attribute its file path lives on.
var pathAttrs = map[TargetKind]string{
	KindStandIn:   "dso",
	KindProxy:     "fileName",
	KindReference: "ftn",
}

// PathAttr returns the host-side attribute name carrying this kind's path.
func (k TargetKind) PathAttr() (string, bool) {
	attr, ok := pathAttrs[k]
	return attr, ok
}

// ParseKind validates a kind string.
func ParseKind(s string) (TargetKind, bool) {
	k := TargetKind(s)
	_, ok := pathAttrs[k]
	return k, ok
}

// Kinds returns the supported kinds in a fixed order.
func Kinds() []TargetKind {
	return []TargetKind{KindStandIn, KindProxy, KindReference}
}

// LinkState tags how a binding reaches its target: through a live
// structural link, or by identity lookup only (the degraded mode used when
// the target would not accept the structural link).
type LinkState int

const (
	LinkLinked LinkState = iota
	LinkIdentityOnly
)

func (s LinkState) String() string {
	if s == LinkIdentityOnly {
		return "identityOnly"
	}
	return "linked"
}

// TargetRef identifies an external target. Bindings store refs by value;
// the target's lifecycle belongs to the host, never to a binding, and the
// same handle may be referenced from bindings in several shots.
type TargetRef struct {
	Handle string
	Kind   TargetKind
	Link   LinkState
}

// SceneHost is the imperative surface the engine consumes.
type SceneHost interface {
	// ApplyPath pushes a resolved path onto the target's path attribute.
	// Returns ErrTargetLocked when the target cannot accept it.
	ApplyPath(ref TargetRef, path string) error
	// SetStringAttr writes the path to the secondary string-attribute
	// channel, the fallback for locked targets.
	SetStringAttr(ref TargetRef, path string) error
	// SetGroupVisible shows or hides a whole visibility group in one call.
	SetGroupVisible(group string, visible bool) error
	// PathExists checks filesystem existence on the host's side. Used only
	// by explicit validation, never implicitly during resolution.
	PathExists(path string) bool
}

// Apply pushes a path onto a target, degrading to the string-attribute
// channel when the target is locked. The returned ref records the link
// state that actually took effect; any other failure propagates.
func Apply(h SceneHost, ref TargetRef, path string) (TargetRef, error) {
	err := h.ApplyPath(ref, path)
	if err == nil {
		ref.Link = LinkLinked
		return ref, nil
	}
	if !errors.Is(err, ErrTargetLocked) {
		return ref, err
	}
	if err := h.SetStringAttr(ref, path); err != nil {
		return ref, err
	}
	ref.Link = LinkIdentityOnly
	return ref, nil
}
