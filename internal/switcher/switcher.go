// Package switcher coordinates shot activation: it decides, for every
// asset binding of the shot being activated, which path must be pushed to
// the outside world, and keeps the at-most-one-active-shot invariant true
// across the whole transition.
package switcher

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/pipelab/multishot/internal/host"
	"github.com/pipelab/multishot/internal/model"
	"github.com/pipelab/multishot/internal/naming"
	"github.com/pipelab/multishot/internal/resolve"
)

// ErrSwitchInProgress is returned when a switch is requested while another
// one is still fanning out. Rapid double-triggers serialize here instead of
// interleaving visibility and binding updates.
var ErrSwitchInProgress = errors.New("shot switch already in progress")

// maxHistory bounds the switch history kept for Back().
const maxHistory = 20

// BindingFailure records one binding whose apply failed during a switch.
type BindingFailure struct {
	Asset string
	Err   error
}

// SwitchReport summarizes one switch. Per-binding failures are collected
// here; a switch is never rolled back.
type SwitchReport struct {
	Shot    model.ShotID
	Applied int
	Failed  []BindingFailure
	NoOp    bool
}

// Coordinator drives shot switches against the model, the resolver, and
// the host scene graph. Each transition runs synchronously to completion.
type Coordinator struct {
	Model    *model.Model
	Resolver *resolve.Resolver
	Host     host.SceneHost
	Logger   *slog.Logger

	mu         sync.Mutex
	inProgress bool
	history    []model.ShotID
}

func (c *Coordinator) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// SwitchTo activates a shot: the previously active shot's group is hidden
// (its bindings stay exactly as last applied), the target shot's group is
// shown, and every binding the target owns is re-resolved with its own
// pinned version and pushed to its external target.
func (c *Coordinator) SwitchTo(id model.ShotID) (*SwitchReport, error) {
	c.mu.Lock()
	if c.inProgress {
		c.mu.Unlock()
		return nil, ErrSwitchInProgress
	}
	c.inProgress = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.inProgress = false
		c.mu.Unlock()
	}()

	target, ok := c.Model.Shot(id)
	if !ok {
		return nil, fmt.Errorf("shot %s does not exist", id)
	}

	report := &SwitchReport{Shot: id}
	if target.Active {
		report.NoOp = true
		return report, nil
	}

	log := c.logger()
	log.Info("switching shot", "shot", id.String())

	// Hide the outgoing shot with a single group visibility call. Its
	// bindings are not re-resolved; they stay as last applied.
	if prev, ok := c.Model.ActiveShot(); ok {
		if err := c.Host.SetGroupVisible(prev.GroupHandle, false); err != nil {
			report.Failed = append(report.Failed, BindingFailure{
				Asset: "group:" + prev.GroupHandle,
				Err:   err,
			})
		}
	}

	if err := c.Model.Activate(id); err != nil {
		return nil, err
	}
	if err := c.Host.SetGroupVisible(target.GroupHandle, true); err != nil {
		report.Failed = append(report.Failed, BindingFailure{
			Asset: "group:" + target.GroupHandle,
			Err:   err,
		})
	}

	c.Model.Silent(func() {
		for _, b := range target.Bindings() {
			c.applyBinding(target, b, report)
		}
	})

	c.pushHistory(id)

	c.Model.Notify(model.EventShotSwitched, model.Payload{
		"shot":    id.String(),
		"applied": strconv.Itoa(report.Applied),
		"failed":  strconv.Itoa(len(report.Failed)),
	})

	if len(report.Failed) > 0 {
		log.Warn("shot switch finished with failures",
			"shot", id.String(), "applied", report.Applied, "failed", len(report.Failed))
	} else {
		log.Info("shot switch complete", "shot", id.String(), "applied", report.Applied)
	}
	return report, nil
}

// applyBinding resolves one binding with its pinned version and pushes the
// result. Failures are collected; one binding never aborts the rest.
func (c *Coordinator) applyBinding(shot *model.Shot, b *model.Binding, report *SwitchReport) {
	ctx := bindingContext(shot, b)
	path, err := c.Resolver.Resolve(b.Template, ctx, b.Version)
	if err != nil {
		report.Failed = append(report.Failed, BindingFailure{Asset: b.Key.AssetID(), Err: err})
		return
	}
	ref, err := host.Apply(c.Host, b.Target, path)
	if err != nil {
		report.Failed = append(report.Failed, BindingFailure{Asset: b.Key.AssetID(), Err: err})
		return
	}
	// Record the link state the apply actually landed on.
	_ = c.Model.SetBindingLink(shot.ID, b.Key, ref.Link)
	report.Applied++
}

// bindingContext merges the shot's context with the binding's asset fields.
func bindingContext(shot *model.Shot, b *model.Binding) map[string]string {
	fields := naming.Fields{
		Episode:   shot.ID.Episode,
		Sequence:  shot.ID.Sequence,
		Shot:      shot.ID.Code,
		AssetType: b.Key.AssetType,
		AssetName: b.Key.AssetName,
		Variant:   b.Key.Variant,
		Ext:       b.Ext,
	}
	return map[string]string{
		"ep":        fields.Episode,
		"seq":       fields.Sequence,
		"shot":      fields.Shot,
		"dept":      b.Dept,
		"assetType": fields.AssetType,
		"assetName": fields.AssetName,
		"variant":   fields.Variant,
		"ext":       fields.Ext,
		"file":      naming.FormatFullName(fields),
	}
}

func (c *Coordinator) pushHistory(id model.ShotID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, h := range c.history {
		if h == id {
			c.history = append(c.history[:i], c.history[i+1:]...)
			break
		}
	}
	c.history = append(c.history, id)
	if len(c.history) > maxHistory {
		c.history = c.history[len(c.history)-maxHistory:]
	}
}

// History returns the switch history, oldest first.
func (c *Coordinator) History() []model.ShotID {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.ShotID, len(c.history))
	copy(out, c.history)
	return out
}

// Back switches to the shot visited before the current one.
func (c *Coordinator) Back() (*SwitchReport, error) {
	c.mu.Lock()
	if len(c.history) < 2 {
		c.mu.Unlock()
		return nil, errors.New("no previous shot in history")
	}
	prev := c.history[len(c.history)-2]
	c.mu.Unlock()
	return c.SwitchTo(prev)
}
