package model

import "github.com/RoaringBitmap/roaring"

// targetIndex is the reverse multimap from external target handle to the
// bindings referencing it. Bindings get a small internal integer ID and
// each handle keeps a roaring bitmap of those IDs, so "which bindings, in
// any shot, point at this target?" is a bitmap walk rather than a scan of
// every shot.
type targetIndex struct {
	byHandle map[string]*roaring.Bitmap
	intID    map[BoundRef]uint32
	refs     []BoundRef // reverse: intID -> BoundRef; "" slot means freed
	nextID   uint32
}

func newTargetIndex() targetIndex {
	return targetIndex{
		byHandle: make(map[string]*roaring.Bitmap),
		intID:    make(map[BoundRef]uint32),
	}
}

func (x *targetIndex) add(shot ShotID, key BindingKey, handle string) {
	if handle == "" {
		return
	}
	ref := BoundRef{Shot: shot, Key: key}
	id, ok := x.intID[ref]
	if !ok {
		id = x.nextID
		x.nextID++
		x.intID[ref] = id
		for uint32(len(x.refs)) <= id {
			x.refs = append(x.refs, BoundRef{})
		}
		x.refs[id] = ref
	}
	bm, ok := x.byHandle[handle]
	if !ok {
		bm = roaring.New()
		x.byHandle[handle] = bm
	}
	bm.Add(id)
}

func (x *targetIndex) remove(shot ShotID, key BindingKey, handle string) {
	ref := BoundRef{Shot: shot, Key: key}
	id, ok := x.intID[ref]
	if !ok {
		return
	}
	if bm, ok := x.byHandle[handle]; ok {
		bm.Remove(id)
		if bm.IsEmpty() {
			delete(x.byHandle, handle)
		}
	}
	delete(x.intID, ref)
	x.refs[id] = BoundRef{}
}

func (x *targetIndex) lookup(handle string) []BoundRef {
	bm, ok := x.byHandle[handle]
	if !ok {
		return nil
	}
	out := make([]BoundRef, 0, bm.GetCardinality())
	it := bm.Iterator()
	for it.HasNext() {
		id := it.Next()
		if int(id) < len(x.refs) {
			ref := x.refs[id]
			if ref != (BoundRef{}) {
				out = append(out, ref)
			}
		}
	}
	return out
}
