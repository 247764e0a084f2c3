package metadata

import (
	"github.com/cespare/xxhash/v2"

	"mxf/pkg/klv"
	"mxf/pkg/mxferrors"
)

// standardTags gives fixed local tags to the small set of items every set
// carries or that convention fixes regardless of writer, the way real
// primer packs do for baseline-registry items. Everything else gets a
// dynamic tag.
var standardTags = map[klv.Key]uint16{
	ItemInstanceUID: 0x3C0A,
}

// Primer maps local tags to item ULs for one header-metadata batch (one
// primer pack is written per partition that carries header metadata).
type Primer struct {
	tagToUL map[uint16]klv.Key
	ulToTag map[uint64]tagEntry
	next    uint16 // next dynamic tag to hand out, decrementing from 0xFFFF.
}

type tagEntry struct {
	ul  klv.Key
	tag uint16
}

// NewPrimer creates an empty Primer seeded with the standard fixed tags.
func NewPrimer() *Primer {
	p := &Primer{
		tagToUL: make(map[uint16]klv.Key),
		ulToTag: make(map[uint64]tagEntry),
		next:    0xFFFF,
	}
	for ul, tag := range standardTags {
		p.tagToUL[tag] = ul
		p.ulToTag[hashUL(ul)] = tagEntry{ul: ul, tag: tag}
	}
	return p
}

func hashUL(ul klv.Key) uint64 {
	return xxhash.Sum64(ul[:])
}

// TagFor returns the local tag for ul, allocating a new dynamic tag if
// this is the first time ul has been seen. Dynamic tags start at 0xFFFF
// and decrement, skipping any tag already in use (standard or previously
// allocated) to avoid collisions.
func (p *Primer) TagFor(ul klv.Key) uint16 {
	h := hashUL(ul)
	if e, ok := p.ulToTag[h]; ok {
		return e.tag
	}

	tag := p.next
	for {
		if _, taken := p.tagToUL[tag]; !taken {
			break
		}
		tag--
	}
	p.next = tag - 1

	p.tagToUL[tag] = ul
	p.ulToTag[h] = tagEntry{ul: ul, tag: tag}
	return tag
}

// Resolve returns the UL registered for tag, and whether it was found.
func (p *Primer) Resolve(tag uint16) (klv.Key, bool) {
	ul, ok := p.tagToUL[tag]
	return ul, ok
}

// Entries returns every (tag, UL) pair currently registered, sorted by tag
// ascending, for serialisation as a primer pack.
func (p *Primer) Entries() []PrimerEntry {
	out := make([]PrimerEntry, 0, len(p.tagToUL))
	for tag, ul := range p.tagToUL {
		out = append(out, PrimerEntry{Tag: tag, UL: ul})
	}
	// Simple insertion sort: primer packs are small (dozens of entries).
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1].Tag > out[j].Tag; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

// PrimerEntry is one local-tag-to-UL mapping.
type PrimerEntry struct {
	Tag uint16
	UL  klv.Key
}

// PrimerSize returns the marshaled size of the primer pack, including its own
// KL header (llenWidth bytes for the length field).
func PrimerSize(entries []PrimerEntry, llenWidth int) int {
	const itemCount = 4       // BER batch header: count + item length.
	const entrySize = 2 + 16 // local tag + UL.
	return 16 + llenWidth + itemCount + len(entries)*entrySize
}

// WritePrimerPack serialises the primer pack: key, length, batch header
// (entry count + entry size), then each (tag, UL) pair big-endian.
func WritePrimerPack(w *klv.Writer, entries []PrimerEntry, llenWidth int) error {
	const entrySize = 2 + 16
	valueLen := uint64(4 + len(entries)*entrySize)

	if err := w.WriteKeyAndLength(klv.PrimerPackKey, llenWidth, valueLen); err != nil {
		return err
	}
	if err := w.WriteUint32(uint32(len(entries))<<16 | uint32(entrySize)); err != nil {
		return err
	}
	for _, e := range entries {
		if err := w.WriteUint16(e.Tag); err != nil {
			return err
		}
		if err := w.WriteKey(e.UL); err != nil {
			return err
		}
	}
	return nil
}

// ReadPrimerPack reads a primer pack previously positioned at its key.
func ReadPrimerPack(r *klv.Reader) (*Primer, error) {
	key, length, err := r.ReadKL(0)
	if err != nil {
		return nil, err
	}
	if key != klv.PrimerPackKey {
		return nil, &mxferrors.InvalidKLVError{Offset: r.Tell(), Reason: "expected primer pack key"}
	}
	if length < 4 {
		return nil, &mxferrors.InvalidKLVError{Offset: r.Tell(), Reason: "primer pack batch header truncated"}
	}

	header, err := r.ReadValue(4)
	if err != nil {
		return nil, err
	}
	count := uint32(header[0])<<24 | uint32(header[1])<<16
	count >>= 16
	entrySize := uint32(header[2])<<8 | uint32(header[3])

	p := NewPrimer()
	for i := uint32(0); i < count; i++ {
		entry, err := r.ReadValue(uint64(entrySize))
		if err != nil {
			return nil, err
		}
		tag := uint16(entry[0])<<8 | uint16(entry[1])
		var ul klv.Key
		copy(ul[:], entry[2:])
		p.tagToUL[tag] = ul
		p.ulToTag[hashUL(ul)] = tagEntry{ul: ul, tag: tag}
	}
	return p, nil
}
