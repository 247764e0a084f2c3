// Package partition implements the partition-pack layout engine: KAG
// alignment, header/body/footer sequencing, the Random Index Pack, and
// the three-pass write algorithm (stream, footer, finalise) that lets a
// writer produce a well-formed file without buffering the whole thing in
// memory.
package partition

import (
	"mxf/pkg/klv"
	"mxf/pkg/label"
	"mxf/pkg/mxferrors"
)

// Kind is the partition's role in the file.
type Kind uint8

// Kinds, matching SMPTE 377's kk octet.
const (
	KindHeader Kind = 0x02
	KindBody   Kind = 0x03
	KindFooter Kind = 0x04
)

// Status is the partition's completeness state, matching SMPTE 377's ss
// octet. A value of 0x11 marks an opaque generic-stream partition, round
// tripped but not interpreted.
type Status uint8

// Statuses.
const (
	StatusOpenIncomplete   Status = 0x01
	StatusOpenComplete     Status = 0x02
	StatusClosedIncomplete Status = 0x03
	StatusClosedComplete   Status = 0x04
	StatusGenericStream    Status = 0x11
)

// Pack is one partition pack's fields.
type Pack struct {
	Kind   Kind
	Status Status

	MajorVersion uint16
	MinorVersion uint16
	KAGSize      uint32

	ThisPartition     uint64
	PreviousPartition uint64
	FooterPartition   uint64

	HeaderByteCount uint64
	IndexByteCount  uint64
	IndexSID        uint32
	BodyOffset      uint64
	BodySID         uint32

	OperationalPattern label.UL
	EssenceContainers  []label.UL
}

// Key returns this pack's partition pack key, built from the fixed
// 13-byte prefix plus (kind, status, 0x00).
func (p *Pack) Key() klv.Key {
	var k klv.Key
	copy(k[:13], klv.PartitionPackKeyPrefix[:])
	k[13] = byte(p.Kind)
	k[14] = byte(p.Status)
	k[15] = 0x00
	return k
}

// partitionFixedLen is the fixed-size portion of a partition pack's value,
// excluding the variable-length essence-container UL batch.
const partitionFixedLen = 2 + 2 + 4 + 8 + 8 + 8 + 8 + 8 + 4 + 8 + 4 + 16

// Byte offsets of each fixed field within a partition pack's value,
// matching the write order in WritePack. Used by the finalise pass to
// patch individual fields (status lives in the key, not the value) in
// place without re-serialising the whole pack.
const (
	offThisPartition     = 2 + 2 + 4
	offPreviousPartition = offThisPartition + 8
	offFooterPartition   = offPreviousPartition + 8
	offHeaderByteCount   = offFooterPartition + 8
	offIndexByteCount    = offHeaderByteCount + 8
)

// WritePack serialises p using llenWidth bytes for its BER length, so a
// later in-place rewrite (status, footer_partition, byte counts) never
// shifts any following byte.
func WritePack(w *klv.Writer, p *Pack, llenWidth int) error {
	valueLen := uint64(partitionFixedLen + 4 + 4 + len(p.EssenceContainers)*16)
	if err := w.WriteKeyAndLength(p.Key(), llenWidth, valueLen); err != nil {
		return err
	}
	if err := w.WriteUint16(p.MajorVersion); err != nil {
		return err
	}
	if err := w.WriteUint16(p.MinorVersion); err != nil {
		return err
	}
	if err := w.WriteUint32(p.KAGSize); err != nil {
		return err
	}
	if err := w.WriteUint64(p.ThisPartition); err != nil {
		return err
	}
	if err := w.WriteUint64(p.PreviousPartition); err != nil {
		return err
	}
	if err := w.WriteUint64(p.FooterPartition); err != nil {
		return err
	}
	if err := w.WriteUint64(p.HeaderByteCount); err != nil {
		return err
	}
	if err := w.WriteUint64(p.IndexByteCount); err != nil {
		return err
	}
	if err := w.WriteUint32(p.IndexSID); err != nil {
		return err
	}
	if err := w.WriteUint64(p.BodyOffset); err != nil {
		return err
	}
	if err := w.WriteUint32(p.BodySID); err != nil {
		return err
	}
	if err := w.WriteKey(p.OperationalPattern); err != nil {
		return err
	}
	// Essence-container UL batch: count + element size + ULs.
	if err := w.WriteUint32(uint32(len(p.EssenceContainers))); err != nil {
		return err
	}
	if err := w.WriteUint32(16); err != nil {
		return err
	}
	for _, ec := range p.EssenceContainers {
		if err := w.WriteKey(ec); err != nil {
			return err
		}
	}
	return nil
}

// ReadPack reads a partition pack previously positioned at its key.
func ReadPack(r *klv.Reader) (*Pack, error) {
	key, length, err := r.ReadKL(0)
	if err != nil {
		return nil, err
	}
	prefixMatch := true
	for i := 0; i < len(klv.PartitionPackKeyPrefix); i++ {
		if key[i] != klv.PartitionPackKeyPrefix[i] {
			prefixMatch = false
			break
		}
	}
	if !prefixMatch {
		return nil, &mxferrors.InvalidKLVError{Offset: r.Tell(), Reason: "expected partition pack key"}
	}
	if length < partitionFixedLen+8 {
		return nil, &mxferrors.InconsistentError{Reason: "partition pack body too short"}
	}

	value, err := r.ReadValue(length)
	if err != nil {
		return nil, err
	}

	p := &Pack{Kind: Kind(key[13]), Status: Status(key[14])}
	pos := 0
	readU16 := func() uint16 { v := be16(value[pos:]); pos += 2; return v }
	readU32 := func() uint32 { v := be32(value[pos:]); pos += 4; return v }
	readU64 := func() uint64 { v := be64(value[pos:]); pos += 8; return v }

	p.MajorVersion = readU16()
	p.MinorVersion = readU16()
	p.KAGSize = readU32()
	p.ThisPartition = readU64()
	p.PreviousPartition = readU64()
	p.FooterPartition = readU64()
	p.HeaderByteCount = readU64()
	p.IndexByteCount = readU64()
	p.IndexSID = readU32()
	p.BodyOffset = readU64()
	p.BodySID = readU32()
	copy(p.OperationalPattern[:], value[pos:pos+16])
	pos += 16

	count := readU32()
	_ = readU32() // element size, always 16.
	p.EssenceContainers = make([]label.UL, 0, count)
	for i := uint32(0); i < count; i++ {
		if pos+16 > len(value) {
			return nil, &mxferrors.InconsistentError{Reason: "essence container batch truncated"}
		}
		var ul label.UL
		copy(ul[:], value[pos:pos+16])
		pos += 16
		p.EssenceContainers = append(p.EssenceContainers, ul)
	}
	return p, nil
}

func be16(b []byte) uint16 { return uint16(b[0])<<8 | uint16(b[1]) }
func be32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}
func be64(b []byte) uint64 {
	var v uint64
	for _, c := range b[:8] {
		v = v<<8 | uint64(c)
	}
	return v
}
