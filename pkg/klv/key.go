// Package klv implements the Key-Length-Value primitives that every other
// MXF engine component is built on: reading and writing 16-byte Universal
// Label keys, BER-encoded lengths, and KLV fill items, over a seekable or
// streamable byte source.
package klv

import "fmt"

// Key is a 16-octet Universal Label identifying a set, essence element, or
// standalone label.
type Key [16]byte

// String renders the key as dotted hex, the conventional SMPTE notation.
func (k Key) String() string {
	out := make([]byte, 0, 16*3-1)
	for i, b := range k {
		if i > 0 {
			out = append(out, '.')
		}
		out = append(out, fmt.Sprintf("%02X", b)...)
	}
	return string(out)
}

// EqualModRegistryVersion compares two keys ignoring byte 7 (the registry
// version octet), the convention used throughout the label registry for
// key equality.
func (k Key) EqualModRegistryVersion(other Key) bool {
	for i := range k {
		if i == 7 {
			continue
		}
		if k[i] != other[i] {
			return false
		}
	}
	return true
}

// FillKeyCompliant is the SMPTE-compliant KLV fill item key.
var FillKeyCompliant = Key{
	0x06, 0x0E, 0x2B, 0x34, 0x01, 0x01, 0x01, 0x01,
	0x03, 0x01, 0x02, 0x10, 0x01, 0x00, 0x00, 0x00,
}

// FillKeyLegacy is the non-compliant fill item key some Avid-produced
// files use; kept around because readers must still recognise it.
var FillKeyLegacy = Key{
	0x06, 0x0E, 0x2B, 0x34, 0x01, 0x01, 0x01, 0x02,
	0x03, 0x01, 0x02, 0x10, 0x01, 0x00, 0x00, 0x00,
}

// PartitionPackKeyPrefix is the common 13-byte prefix of every partition
// pack key; the last three bytes vary with kind and status
// (06.0E.2B.34.02.05.01.vv.0D.01.02.01.01.kk.ss.00, kk in {02,03,04}).
var PartitionPackKeyPrefix = [13]byte{
	0x06, 0x0E, 0x2B, 0x34, 0x02, 0x05, 0x01, 0x01,
	0x0D, 0x01, 0x02, 0x01, 0x01,
}

// PrimerPackKey is the fixed key of the primer pack set.
var PrimerPackKey = Key{
	0x06, 0x0E, 0x2B, 0x34, 0x02, 0x05, 0x01, 0x01,
	0x0D, 0x01, 0x02, 0x01, 0x01, 0x05, 0x01, 0x00,
}

// IndexTableSegmentKey is the fixed key of an index table segment.
var IndexTableSegmentKey = Key{
	0x06, 0x0E, 0x2B, 0x34, 0x02, 0x53, 0x01, 0x01,
	0x0D, 0x01, 0x02, 0x01, 0x01, 0x10, 0x01, 0x00,
}

// RandomIndexPackKey is the fixed key of the random index pack.
var RandomIndexPackKey = Key{
	0x06, 0x0E, 0x2B, 0x34, 0x02, 0x05, 0x01, 0x01,
	0x0D, 0x01, 0x02, 0x01, 0x01, 0x11, 0x01, 0x00,
}

// GenericContainerElementKey builds a generic-container essence-element
// key (SMPTE 379-2 layout: item designator, element count, element type,
// element number), shared by a writer choosing the key to emit and a
// reader matching it back to a track. itemDesignator is 0x05 for picture,
// 0x06 for sound, 0x07 for data/timecode.
func GenericContainerElementKey(itemDesignator, elementNumber byte) Key {
	return Key{0x06, 0x0E, 0x2B, 0x34, 0x01, 0x02, 0x01, 0x00, 0x0D, 0x01, 0x03, 0x01, itemDesignator, 0x01, 0x08, elementNumber}
}
