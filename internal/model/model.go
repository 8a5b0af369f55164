// Package model maintains the in-memory context hierarchy: one project,
// its shot contexts, and the asset bindings each shot owns. Bindings
// reference external targets by identity; the same target handle may be
// bound from several shots, each with its own pinned version.
package model

import (
	"fmt"
	"sort"
	"sync"

	"github.com/pipelab/multishot/internal/host"
)

// ShotID is the identity key of a shot context.
type ShotID struct {
	Episode  string
	Sequence string
	Code     string
}

func (id ShotID) String() string {
	return id.Episode + "_" + id.Sequence + "_" + id.Code
}

// BindingKey is the identity of an asset binding within its shot.
type BindingKey struct {
	AssetType string
	AssetName string
	Variant   string
}

// AssetID renders the key in the namespace convention,
// e.g. "CHAR_CatStompie_001".
func (k BindingKey) AssetID() string {
	return k.AssetType + "_" + k.AssetName + "_" + k.Variant
}

// Binding pairs an asset identity and a pinned version with an external
// target. The binding never owns the target's lifecycle.
type Binding struct {
	Key      BindingKey
	Dept     string
	Version  string
	Template string
	Ext      string
	Target   host.TargetRef
}

// Shot is one shot context. At most one shot is active at a time; that
// invariant belongs to the switch coordinator, not to the shot itself.
type Shot struct {
	ID          ShotID
	FrameStart  int
	FrameEnd    int
	GroupHandle string
	Active      bool

	bindings map[BindingKey]*Binding
	order    []BindingKey
}

// Bindings returns the shot's bindings in creation order.
func (s *Shot) Bindings() []*Binding {
	out := make([]*Binding, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, s.bindings[key])
	}
	return out
}

// Binding looks up one binding by identity.
func (s *Shot) Binding(key BindingKey) (*Binding, bool) {
	b, ok := s.bindings[key]
	return b, ok
}

// Project is the per-session root of the hierarchy.
type Project struct {
	Code         string
	Episode      string
	Sequence     string
	ConfigPath   string
	ActiveShotID string // empty when no shot is active
}

// Model is the context hierarchy plus its change-notification fan-out and
// the reverse target index.
type Model struct {
	mu      sync.Mutex
	project *Project
	shots   map[ShotID]*Shot
	order   []ShotID

	listeners map[string]Listener
	silent    bool

	index targetIndex
}

func New() *Model {
	return &Model{
		shots:     make(map[ShotID]*Shot),
		listeners: make(map[string]Listener),
		index:     newTargetIndex(),
	}
}

// GetOrCreateProject returns the session's project context, creating it on
// first call. Re-requesting returns the same instance; it never duplicates.
func (m *Model) GetOrCreateProject(code, episode, sequence, configPath string) *Project {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.project == nil {
		m.project = &Project{
			Code:       code,
			Episode:    episode,
			Sequence:   sequence,
			ConfigPath: configPath,
		}
	}
	return m.project
}

// Project returns the current project context, or nil before the first
// GetOrCreateProject.
func (m *Model) Project() *Project {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.project
}

// CreateShot adds a shot context. Creation is idempotent per identity:
// an existing shot with the same (episode, sequence, code) is returned
// unchanged rather than erroring or duplicating.
func (m *Model) CreateShot(id ShotID, frameStart, frameEnd int, groupHandle string) (*Shot, error) {
	if frameStart < 1 || frameEnd < frameStart {
		return nil, fmt.Errorf("shot %s: invalid frame range %d-%d", id, frameStart, frameEnd)
	}

	m.mu.Lock()
	if existing, ok := m.shots[id]; ok {
		m.mu.Unlock()
		return existing, nil
	}
	shot := &Shot{
		ID:          id,
		FrameStart:  frameStart,
		FrameEnd:    frameEnd,
		GroupHandle: groupHandle,
		bindings:    make(map[BindingKey]*Binding),
	}
	m.shots[id] = shot
	m.order = append(m.order, id)
	m.mu.Unlock()

	m.notify(EventShotAdded, Payload{"shot": id.String()})
	return shot, nil
}

// Shot looks up a shot context by identity.
func (m *Model) Shot(id ShotID) (*Shot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.shots[id]
	return s, ok
}

// Shots returns all shot contexts in creation order.
func (m *Model) Shots() []*Shot {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Shot, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.shots[id])
	}
	return out
}

// RemoveShot deletes a shot context and cascade-deletes every binding it
// owns. Shared external targets are left alone: a target referenced from
// another shot must survive this shot's removal.
func (m *Model) RemoveShot(id ShotID) error {
	m.mu.Lock()
	shot, ok := m.shots[id]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("shot %s does not exist", id)
	}
	for _, key := range shot.order {
		m.index.remove(id, key, shot.bindings[key].Target.Handle)
	}
	delete(m.shots, id)
	for i, sid := range m.order {
		if sid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	if m.project != nil && m.project.ActiveShotID == id.String() {
		m.project.ActiveShotID = ""
	}
	m.mu.Unlock()

	m.notify(EventShotRemoved, Payload{"shot": id.String()})
	return nil
}

// AddBinding attaches an asset binding to a shot. Two bindings with the
// same identity in one shot are not allowed; the existing one is returned,
// mirroring shot creation. Bindings in different shots may freely share a
// target handle.
func (m *Model) AddBinding(id ShotID, b Binding) (*Binding, error) {
	m.mu.Lock()
	shot, ok := m.shots[id]
	if !ok {
		m.mu.Unlock()
		return nil, fmt.Errorf("shot %s does not exist", id)
	}
	if existing, dup := shot.bindings[b.Key]; dup {
		m.mu.Unlock()
		return existing, nil
	}
	added := b
	shot.bindings[b.Key] = &added
	shot.order = append(shot.order, b.Key)
	m.index.add(id, b.Key, b.Target.Handle)
	m.mu.Unlock()

	m.notify(EventAssetAdded, Payload{"shot": id.String(), "asset": b.Key.AssetID()})
	return &added, nil
}

// RemoveBinding removes one binding. The external target is untouched even
// when no other binding references it; target lifecycle is the host's.
func (m *Model) RemoveBinding(id ShotID, key BindingKey) error {
	m.mu.Lock()
	shot, ok := m.shots[id]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("shot %s does not exist", id)
	}
	b, ok := shot.bindings[key]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("shot %s has no binding %s", id, key.AssetID())
	}
	delete(shot.bindings, key)
	for i, k := range shot.order {
		if k == key {
			shot.order = append(shot.order[:i], shot.order[i+1:]...)
			break
		}
	}
	m.index.remove(id, key, b.Target.Handle)
	m.mu.Unlock()

	m.notify(EventAssetRemoved, Payload{"shot": id.String(), "asset": key.AssetID()})
	return nil
}

// SetBindingVersion pins a binding to a version.
func (m *Model) SetBindingVersion(id ShotID, key BindingKey, version string) error {
	m.mu.Lock()
	b, err := m.bindingLocked(id, key)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	b.Version = version
	m.mu.Unlock()

	m.notify(EventVersionUpdated, Payload{"shot": id.String(), "asset": key.AssetID(), "version": version})
	return nil
}

// SetBindingTemplate changes which path template a binding resolves with.
func (m *Model) SetBindingTemplate(id ShotID, key BindingKey, template string) error {
	m.mu.Lock()
	b, err := m.bindingLocked(id, key)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	b.Template = template
	m.mu.Unlock()

	m.notify(EventVersionUpdated, Payload{"shot": id.String(), "asset": key.AssetID(), "template": template})
	return nil
}

// SetBindingLink records the link state that actually took effect after an
// apply (structural link, or identity-only fallback).
func (m *Model) SetBindingLink(id ShotID, key BindingKey, link host.LinkState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, err := m.bindingLocked(id, key)
	if err != nil {
		return err
	}
	b.Target.Link = link
	return nil
}

func (m *Model) bindingLocked(id ShotID, key BindingKey) (*Binding, error) {
	shot, ok := m.shots[id]
	if !ok {
		return nil, fmt.Errorf("shot %s does not exist", id)
	}
	b, ok := shot.bindings[key]
	if !ok {
		return nil, fmt.Errorf("shot %s has no binding %s", id, key.AssetID())
	}
	return b, nil
}

// BoundRef names one binding found through the reverse target lookup.
type BoundRef struct {
	Shot ShotID
	Key  BindingKey
}

// BindingsByTarget returns every binding, across all shots, referencing a
// target handle. Results are sorted for determinism.
func (m *Model) BindingsByTarget(handle string) []BoundRef {
	m.mu.Lock()
	defer m.mu.Unlock()
	refs := m.index.lookup(handle)
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].Shot != refs[j].Shot {
			return refs[i].Shot.String() < refs[j].Shot.String()
		}
		return refs[i].Key.AssetID() < refs[j].Key.AssetID()
	})
	return refs
}

// ActiveShot returns the currently active shot context, if any.
func (m *Model) ActiveShot() (*Shot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range m.order {
		if m.shots[id].Active {
			return m.shots[id], true
		}
	}
	return nil, false
}

// Activate marks exactly one shot active and every other shot inactive.
// It mutates flags only; visibility and path fan-out belong to the switch
// coordinator, which is also where the at-most-one-active invariant is
// enforced across a whole transition.
func (m *Model) Activate(id ShotID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	target, ok := m.shots[id]
	if !ok {
		return fmt.Errorf("shot %s does not exist", id)
	}
	for _, s := range m.shots {
		s.Active = false
	}
	target.Active = true
	if m.project != nil {
		m.project.ActiveShotID = id.String()
	}
	return nil
}

// Deactivate clears the active flag everywhere (no shot synchronized).
func (m *Model) Deactivate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.shots {
		s.Active = false
	}
	if m.project != nil {
		m.project.ActiveShotID = ""
	}
}
