package metadata

import (
	"github.com/google/uuid"

	"mxf/pkg/klv"
	"mxf/pkg/label"
	"mxf/pkg/mxferrors"
)

// HeaderMetadata is the arena-of-sets graph for one header-metadata batch.
// Strong references are recorded as child-index vectors on the owning Set,
// forming a forest rooted at the Preface; weak references are resolved by
// instance_uid lookup against byInstance. This replaces the
// pointer-and-smart-pointer cycles the model is described in terms of with
// a flat slice and two maps, so a cycle is a lookup away from being
// detected instead of a runtime crash.
type HeaderMetadata struct {
	sets       []*Set
	byInstance map[uuid.UUID]int
	root       int // index of the Preface set, -1 if none yet.

	// Deterministic selects sequential instance_uid generation instead of
	// random UUIDs, for byte-reproducible regression fixtures.
	Deterministic bool
	detCounter    uint64
}

// NewHeaderMetadata creates an empty graph.
func NewHeaderMetadata(deterministic bool) *HeaderMetadata {
	return &HeaderMetadata{
		byInstance:    make(map[uuid.UUID]int),
		root:          -1,
		Deterministic: deterministic,
	}
}

func (h *HeaderMetadata) nextInstanceUID() uuid.UUID {
	if !h.Deterministic {
		return uuid.New()
	}
	h.detCounter++
	var id uuid.UUID
	id[0] = 0x00
	id[15] = byte(h.detCounter)
	id[14] = byte(h.detCounter >> 8)
	id[13] = byte(h.detCounter >> 16)
	id[12] = byte(h.detCounter >> 24)
	id[6] = 0x40 // version nibble so the value still looks like a UUID on disk.
	id[8] = 0x80
	return id
}

// NewSet allocates a new set of the given class, assigns it an
// instance_uid, and adds it to the arena. It is not linked into the
// ownership forest until a caller attaches it with SetStrongRef or marks
// it as the root with SetRoot.
func (h *HeaderMetadata) NewSet(class ClassUL) *Set {
	s := newSet(class, h.nextInstanceUID())
	idx := len(h.sets)
	h.sets = append(h.sets, s)
	h.byInstance[s.InstanceUID] = idx
	if class == ClassPreface && h.root < 0 {
		h.root = idx
	}
	return s
}

// Resolve looks up a set by instance_uid.
func (h *HeaderMetadata) Resolve(id uuid.UUID) (*Set, bool) {
	idx, ok := h.byInstance[id]
	if !ok {
		return nil, false
	}
	return h.sets[idx], true
}

// Root returns the Preface set, if one has been established.
func (h *HeaderMetadata) Root() (*Set, bool) {
	if h.root < 0 {
		return nil, false
	}
	return h.sets[h.root], true
}

// Sets returns every set in the arena, in arena (insertion) order.
func (h *HeaderMetadata) Sets() []*Set {
	out := make([]*Set, len(h.sets))
	copy(out, h.sets)
	return out
}

func (h *HeaderMetadata) indexOf(s *Set) (int, bool) {
	idx, ok := h.byInstance[s.InstanceUID]
	if !ok || h.sets[idx] != s {
		return 0, false
	}
	return idx, true
}

func (h *HeaderMetadata) reachableFrom(root int, target int, visited map[int]bool) bool {
	if root == target {
		return true
	}
	if visited[root] {
		return false
	}
	visited[root] = true
	for _, c := range h.sets[root].strongChildren {
		if h.reachableFrom(c, target, visited) {
			return true
		}
	}
	return false
}

// SetStrongRef writes a single-valued strong reference from owner to
// child, recording child in owner's ownership vector. It refuses to
// connect a child that already has a strong owner (exclusive ownership)
// or that would close a cycle.
func (h *HeaderMetadata) SetStrongRef(owner *Set, itemUL klv.Key, child *Set) error {
	ownerIdx, ok := h.indexOf(owner)
	if !ok {
		return &mxferrors.InconsistentError{Reason: "strong-ref owner is not part of this header metadata"}
	}
	childIdx, ok := h.indexOf(child)
	if !ok {
		return &mxferrors.InconsistentError{Reason: "strong-ref target is not part of this header metadata"}
	}
	if h.reachableFrom(childIdx, ownerIdx, map[int]bool{}) {
		return &mxferrors.InconsistentError{Reason: "strong reference would close a cycle"}
	}
	for _, s := range h.sets {
		for _, c := range s.strongChildren {
			if c == childIdx {
				return &mxferrors.InconsistentError{Reason: "strong-ref target already has a strong owner"}
			}
		}
	}
	owner.strongChildren = append(owner.strongChildren, childIdx)
	owner.setRaw(itemUL, child.InstanceUID[:])
	return nil
}

// SetStrongRefArray writes a vector-valued strong reference (e.g. a
// package's track list) as a batch: 4-byte count, 4-byte element size,
// then count*16 instance_uids.
func (h *HeaderMetadata) SetStrongRefArray(owner *Set, itemUL klv.Key, children []*Set) error {
	buf := make([]byte, 8+len(children)*16)
	buf[0], buf[1], buf[2], buf[3] = 0, 0, byte(len(children)>>8), byte(len(children))
	buf[4], buf[5], buf[6], buf[7] = 0, 0, 0, 16
	for i, c := range children {
		if err := h.SetStrongRef(owner, itemUL, c); err != nil {
			return err
		}
		copy(buf[8+i*16:8+i*16+16], c.InstanceUID[:])
	}
	owner.setRaw(itemUL, buf)
	return nil
}

// GetStrongRef resolves a single-valued reference item to its target set.
func (h *HeaderMetadata) GetStrongRef(owner *Set, itemUL klv.Key) (*Set, bool) {
	v, ok := owner.items[itemUL]
	if !ok || len(v) < 16 {
		return nil, false
	}
	var id uuid.UUID
	copy(id[:], v)
	return h.Resolve(id)
}

// GetStrongRefArray resolves a vector-valued reference item to its
// targets, in file order.
func (h *HeaderMetadata) GetStrongRefArray(owner *Set, itemUL klv.Key) ([]*Set, bool) {
	v, ok := owner.items[itemUL]
	if !ok || len(v) < 8 {
		return nil, false
	}
	count := int(v[2])<<8 | int(v[3])
	size := int(v[6])<<8 | int(v[7])
	if size != 16 || len(v) < 8+count*16 {
		return nil, false
	}
	out := make([]*Set, 0, count)
	for i := 0; i < count; i++ {
		var id uuid.UUID
		copy(id[:], v[8+i*16:8+i*16+16])
		s, ok := h.Resolve(id)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

// SetWeakRef writes a weak reference: the target's instance_uid, with no
// ownership bookkeeping and no cycle check, matching how a SourceClip's
// back-reference to a Track, say, is allowed to point anywhere.
func (h *HeaderMetadata) SetWeakRef(owner *Set, itemUL klv.Key, target *Set) {
	owner.setRaw(itemUL, target.InstanceUID[:])
}

// GetWeakRef resolves a weak reference item.
func (h *HeaderMetadata) GetWeakRef(owner *Set, itemUL klv.Key) (*Set, bool) {
	return h.GetStrongRef(owner, itemUL)
}

// WriteAll serialises every set reachable from the Preface, owner before
// children in pre-order, the way a well-formed file lays its header
// metadata out. Sets not reachable from the root (orphans) are appended
// afterwards in arena order so nothing written is ever silently dropped.
func (h *HeaderMetadata) WriteAll(w *klv.Writer, primer *Primer, llenWidth int) error {
	written := make(map[int]bool, len(h.sets))
	var writeOne func(idx int) error
	writeOne = func(idx int) error {
		if written[idx] {
			return nil
		}
		written[idx] = true
		if err := writeSet(w, h.sets[idx], primer, llenWidth); err != nil {
			return err
		}
		for _, c := range h.sets[idx].strongChildren {
			if err := writeOne(c); err != nil {
				return err
			}
		}
		return nil
	}
	if h.root >= 0 {
		if err := writeOne(h.root); err != nil {
			return err
		}
	}
	for idx := range h.sets {
		if err := writeOne(idx); err != nil {
			return err
		}
	}
	return nil
}

func writeSet(w *klv.Writer, s *Set, primer *Primer, llenWidth int) error {
	valueLen := uint64(0)
	for _, itemUL := range s.order {
		valueLen += 4 + uint64(len(s.items[itemUL])) // local tag + local length + value.
	}
	if err := w.WriteKeyAndLength(s.Class, llenWidth, valueLen); err != nil {
		return err
	}
	for _, itemUL := range s.order {
		v := s.items[itemUL]
		tag := primer.TagFor(itemUL)
		if err := w.WriteUint16(tag); err != nil {
			return err
		}
		if err := w.WriteUint16(uint16(len(v))); err != nil {
			return err
		}
		if err := w.WriteValue(v); err != nil {
			return err
		}
	}
	return nil
}

// ReadFilter lets a caller observe or veto sets as they stream in, the way
// a reader can skip essence or restrict which descriptor it cares about
// without loading the whole graph into memory first.
type ReadFilter interface {
	// BeforeSetRead reports whether the set with this class UL should be
	// read at all; returning false skips the set's value entirely.
	BeforeSetRead(class label.UL) bool
	// AfterSetRead is called once a set has been fully read and linked.
	AfterSetRead(set *Set)
}

// ReadSets reads consecutive header-metadata sets from r, stopping after
// limit bytes have been consumed (the caller derives limit from the
// partition's header byte count) or as soon as a non-set key (an index
// table segment, a fill item, or a partition pack) is encountered,
// resolving the primer pack's local tags back to item ULs. On stopping
// early the reader is left positioned at that key's start so the caller
// can read it itself. Sets are appended to the arena in file order; the
// caller is responsible for re-establishing Preface-rooted ownership via
// SetStrongRef if it wants the write-side invariants re-checked.
func (h *HeaderMetadata) ReadSets(r *klv.Reader, primer *Primer, limit int64, filters []ReadFilter) error {
	start := r.Tell()
	for r.Tell()-start < limit {
		before := r.Tell()
		key, length, err := r.ReadKL(start + limit)
		if err != nil {
			return err
		}
		if key == klv.IndexTableSegmentKey || key == klv.FillKeyCompliant || key == klv.FillKeyLegacy || isPartitionPackKey(key) {
			return r.Seek(before)
		}

		skip := false
		for _, f := range filters {
			if !f.BeforeSetRead(key) {
				skip = true
			}
		}
		if skip {
			if err := r.Skip(int64(length)); err != nil {
				return err
			}
			continue
		}

		value, err := r.ReadValue(length)
		if err != nil {
			return err
		}

		s := &Set{Class: key, items: make(map[klv.Key][]byte)}
		if err := parseSetBody(s, value, primer); err != nil {
			return err
		}
		raw, ok := s.GetRaw(ItemInstanceUID)
		if !ok || len(raw) < 16 {
			return &mxferrors.InconsistentError{Reason: "set is missing instance_uid"}
		}
		copy(s.InstanceUID[:], raw)

		idx := len(h.sets)
		h.sets = append(h.sets, s)
		h.byInstance[s.InstanceUID] = idx
		if key == ClassPreface && h.root < 0 {
			h.root = idx
		}

		for _, f := range filters {
			f.AfterSetRead(s)
		}
	}
	return nil
}

func isPartitionPackKey(key klv.Key) bool {
	for i := 0; i < len(klv.PartitionPackKeyPrefix); i++ {
		if key[i] != klv.PartitionPackKeyPrefix[i] {
			return false
		}
	}
	return true
}

func parseSetBody(s *Set, body []byte, primer *Primer) error {
	pos := 0
	for pos+4 <= len(body) {
		tag := uint16(body[pos])<<8 | uint16(body[pos+1])
		n := int(uint16(body[pos+2])<<8 | uint16(body[pos+3]))
		pos += 4
		if pos+n > len(body) {
			return &mxferrors.InconsistentError{Reason: "item local length exceeds set body"}
		}
		itemUL, ok := primer.Resolve(tag)
		if !ok {
			return &mxferrors.InconsistentError{Reason: "local tag not present in primer pack"}
		}
		s.setRaw(itemUL, body[pos:pos+n])
		pos += n
	}
	return nil
}
