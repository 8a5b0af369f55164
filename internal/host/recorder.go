package host

import "sync"

// ApplyCall records one path push seen by the Recorder.
type ApplyCall struct {
	Handle string
	Path   string
	Attr   bool // true when it went through the string-attribute fallback
}

// VisibilityCall records one group toggle.
type VisibilityCall struct {
	Group   string
	Visible bool
}

// Recorder is a SceneHost that records every call. Tests script failures
// through Locked and Fail; the CLI uses it as a dry-run host.
type Recorder struct {
	mu sync.Mutex

	Applies    []ApplyCall
	Visibility []VisibilityCall

	// Locked handles reject ApplyPath with ErrTargetLocked.
	Locked map[string]bool
	// Fail maps a handle to an error returned by both channels.
	Fail map[string]error
	// Existing is the set of paths PathExists reports true for.
	Existing map[string]bool
}

func NewRecorder() *Recorder {
	return &Recorder{
		Locked:   make(map[string]bool),
		Fail:     make(map[string]error),
		Existing: make(map[string]bool),
	}
}

func (r *Recorder) ApplyPath(ref TargetRef, path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err, ok := r.Fail[ref.Handle]; ok {
		return err
	}
	if r.Locked[ref.Handle] {
		return ErrTargetLocked
	}
	r.Applies = append(r.Applies, ApplyCall{Handle: ref.Handle, Path: path})
	return nil
}

func (r *Recorder) SetStringAttr(ref TargetRef, path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err, ok := r.Fail[ref.Handle]; ok {
		return err
	}
	r.Applies = append(r.Applies, ApplyCall{Handle: ref.Handle, Path: path, Attr: true})
	return nil
}

func (r *Recorder) SetGroupVisible(group string, visible bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Visibility = append(r.Visibility, VisibilityCall{Group: group, Visible: visible})
	return nil
}

func (r *Recorder) PathExists(path string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Existing[path]
}

// LastPathFor returns the most recent path applied to a handle.
func (r *Recorder) LastPathFor(handle string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.Applies) - 1; i >= 0; i-- {
		if r.Applies[i].Handle == handle {
			return r.Applies[i].Path, true
		}
	}
	return "", false
}
