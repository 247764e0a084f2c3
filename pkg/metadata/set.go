package metadata

import (
	"encoding/binary"

	"github.com/google/uuid"

	"mxf/pkg/klv"
)

// Set is one typed node in the header-metadata graph: a class UL plus an
// ordered sequence of items, each identified by an item UL (resolved to a
// local tag through the primer pack at write time, or from it at read
// time). Values are stored as raw bytes and decoded lazily on access,
// exactly as the read algorithm in the header-metadata model requires.
type Set struct {
	Class       ClassUL
	InstanceUID uuid.UUID

	order []klv.Key
	items map[klv.Key][]byte

	// strongChildren holds, in write order, the arena indices this set
	// exclusively owns. Populated by SetStrongRef/SetStrongRefArray.
	strongChildren []int
}

func newSet(class ClassUL, id uuid.UUID) *Set {
	s := &Set{
		Class:       class,
		InstanceUID: id,
		items:       make(map[klv.Key][]byte),
	}
	s.setRaw(ItemInstanceUID, id[:])
	return s
}

func (s *Set) setRaw(itemUL klv.Key, value []byte) {
	if _, exists := s.items[itemUL]; !exists {
		s.order = append(s.order, itemUL)
	}
	buf := make([]byte, len(value))
	copy(buf, value)
	s.items[itemUL] = buf
}

// GetRaw returns the raw bytes stored for itemUL, if present.
func (s *Set) GetRaw(itemUL klv.Key) ([]byte, bool) {
	v, ok := s.items[itemUL]
	return v, ok
}

// SetRaw stores an already-encoded value, preserving first-seen order.
func (s *Set) SetRaw(itemUL klv.Key, value []byte) { s.setRaw(itemUL, value) }

// Items returns the item ULs in their original (or insertion) order.
func (s *Set) Items() []klv.Key {
	out := make([]klv.Key, len(s.order))
	copy(out, s.order)
	return out
}

// --- typed scalar accessors, decoded lazily from the raw bytes. ---

// SetUint8 stores a 1-byte unsigned integer.
func (s *Set) SetUint8(itemUL klv.Key, v uint8) { s.setRaw(itemUL, []byte{v}) }

// GetUint8 reads a 1-byte unsigned integer.
func (s *Set) GetUint8(itemUL klv.Key) (uint8, bool) {
	v, ok := s.items[itemUL]
	if !ok || len(v) < 1 {
		return 0, false
	}
	return v[0], true
}

// SetUint16 stores a big-endian 2-byte unsigned integer.
func (s *Set) SetUint16(itemUL klv.Key, v uint16) {
	buf := make([]byte, 2)
	binary.BigEndian.PutUint16(buf, v)
	s.setRaw(itemUL, buf)
}

// GetUint16 reads a big-endian 2-byte unsigned integer.
func (s *Set) GetUint16(itemUL klv.Key) (uint16, bool) {
	v, ok := s.items[itemUL]
	if !ok || len(v) < 2 {
		return 0, false
	}
	return binary.BigEndian.Uint16(v), true
}

// SetUint32 stores a big-endian 4-byte unsigned integer.
func (s *Set) SetUint32(itemUL klv.Key, v uint32) {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, v)
	s.setRaw(itemUL, buf)
}

// GetUint32 reads a big-endian 4-byte unsigned integer.
func (s *Set) GetUint32(itemUL klv.Key) (uint32, bool) {
	v, ok := s.items[itemUL]
	if !ok || len(v) < 4 {
		return 0, false
	}
	return binary.BigEndian.Uint32(v), true
}

// SetInt64 stores a big-endian 8-byte signed integer.
func (s *Set) SetInt64(itemUL klv.Key, v int64) {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(v))
	s.setRaw(itemUL, buf)
}

// GetInt64 reads a big-endian 8-byte signed integer.
func (s *Set) GetInt64(itemUL klv.Key) (int64, bool) {
	v, ok := s.items[itemUL]
	if !ok || len(v) < 8 {
		return 0, false
	}
	return int64(binary.BigEndian.Uint64(v)), true
}

// SetRational stores an MXF rational (numerator, denominator) as two
// big-endian int32s.
func (s *Set) SetRational(itemUL klv.Key, num, den int32) {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint32(buf[0:4], uint32(num))
	binary.BigEndian.PutUint32(buf[4:8], uint32(den))
	s.setRaw(itemUL, buf)
}

// GetRational reads an MXF rational.
func (s *Set) GetRational(itemUL klv.Key) (num, den int32, ok bool) {
	v, present := s.items[itemUL]
	if !present || len(v) < 8 {
		return 0, 0, false
	}
	return int32(binary.BigEndian.Uint32(v[0:4])), int32(binary.BigEndian.Uint32(v[4:8])), true
}

// SetString stores a UTF-16BE string the way MXF string properties are
// encoded, without a null terminator.
func (s *Set) SetString(itemUL klv.Key, v string) {
	buf := make([]byte, 0, len(v)*2)
	for _, r := range v {
		buf = append(buf, byte(r>>8), byte(r))
	}
	s.setRaw(itemUL, buf)
}

// GetString reads a UTF-16BE string.
func (s *Set) GetString(itemUL klv.Key) (string, bool) {
	v, ok := s.items[itemUL]
	if !ok {
		return "", false
	}
	runes := make([]rune, 0, len(v)/2)
	for i := 0; i+1 < len(v); i += 2 {
		runes = append(runes, rune(uint16(v[i])<<8|uint16(v[i+1])))
	}
	return string(runes), true
}

// SetBytes stores an opaque byte blob verbatim (e.g. a sequence parameter
// set or other codec-private data).
func (s *Set) SetBytes(itemUL klv.Key, v []byte) { s.setRaw(itemUL, v) }

// GetBytes reads an opaque byte blob.
func (s *Set) GetBytes(itemUL klv.Key) ([]byte, bool) {
	v, ok := s.items[itemUL]
	return v, ok
}
