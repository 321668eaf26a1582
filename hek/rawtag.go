package hek

import (
	"encoding/binary"
	"errors"
)

// ErrMalformedRawTag is returned when a generic tag file's directory
// (reference table, payload, asset table) doesn't fit its declared sizes.
var ErrMalformedRawTag = errors.New("hek: malformed tag file")

// RawTag is the generic on-disk shape every tag file shares regardless of
// class: a reference table (declared dependencies, each with the class
// chain link it must resolve against), a payload blob with one 4-byte
// placeholder per reference and per asset blob, and the asset blobs
// themselves. Per-class pre-compilers work against Payload's class-specific
// fields directly; they never need to know where the reference/asset
// placeholders are, since the resolver and assembler patch those via
// ReferenceSlots/AssetSlots.
//
// Classes that do real engineering work (model, scenario, shader, BSP,
// bitmap, sound) additionally interpret fields inside Payload; every other
// class is pure pass-through marshalling of this same shape.
type RawTag struct {
	Class          TagClass
	References     []TagReference
	ReferenceSlots []uint32 // payload byte offset of each reference's placeholder
	Payload        []byte
	AssetBlobs     [][]byte
	AssetSlots     []uint32 // payload byte offset of each asset blob's placeholder
}

// DecodeRawTag parses the generic tag file layout:
//
//	uint32            reference_count
//	reference_count × { TagClass wanted; uint32 payload_slot; uint16 path_len; path_len bytes }
//	uint32            payload_size
//	payload_size      bytes
//	uint32            asset_count
//	asset_count       × { uint32 payload_slot; uint32 blob_size; blob_size bytes }
func DecodeRawTag(class TagClass, data []byte) (*RawTag, error) {
	pos := 0
	readU32 := func() (uint32, bool) {
		if pos+4 > len(data) {
			return 0, false
		}
		v := binary.LittleEndian.Uint32(data[pos:])
		pos += 4
		return v, true
	}
	readU16 := func() (uint16, bool) {
		if pos+2 > len(data) {
			return 0, false
		}
		v := binary.LittleEndian.Uint16(data[pos:])
		pos += 2
		return v, true
	}

	refCount, ok := readU32()
	if !ok {
		return nil, ErrMalformedRawTag
	}

	t := &RawTag{Class: class}
	for i := uint32(0); i < refCount; i++ {
		wanted, ok := readU32()
		if !ok {
			return nil, ErrMalformedRawTag
		}
		slot, ok := readU32()
		if !ok {
			return nil, ErrMalformedRawTag
		}
		pathLen, ok := readU16()
		if !ok {
			return nil, ErrMalformedRawTag
		}
		if pos+int(pathLen) > len(data) {
			return nil, ErrMalformedRawTag
		}
		path := string(data[pos : pos+int(pathLen)])
		pos += int(pathLen)

		t.References = append(t.References, TagReference{Class: TagClass(wanted), Path: path, ID: TagID(NullTagID)})
		t.ReferenceSlots = append(t.ReferenceSlots, slot)
	}

	payloadSize, ok := readU32()
	if !ok {
		return nil, ErrMalformedRawTag
	}
	if pos+int(payloadSize) > len(data) {
		return nil, ErrMalformedRawTag
	}
	t.Payload = data[pos : pos+int(payloadSize)]
	pos += int(payloadSize)

	assetCount, ok := readU32()
	if !ok {
		return nil, ErrMalformedRawTag
	}
	for i := uint32(0); i < assetCount; i++ {
		slot, ok := readU32()
		if !ok {
			return nil, ErrMalformedRawTag
		}
		size, ok := readU32()
		if !ok {
			return nil, ErrMalformedRawTag
		}
		if pos+int(size) > len(data) {
			return nil, ErrMalformedRawTag
		}
		t.AssetBlobs = append(t.AssetBlobs, data[pos:pos+int(size)])
		t.AssetSlots = append(t.AssetSlots, slot)
		pos += int(size)
	}

	return t, nil
}

// EncodeRawTag serializes a RawTag back to the generic on-disk layout
// DecodeRawTag parses; used by tests that round-trip synthetic tags.
func EncodeRawTag(t *RawTag) []byte {
	var buf []byte
	putU32 := func(v uint32) {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], v)
		buf = append(buf, b[:]...)
	}
	putU16 := func(v uint16) {
		var b [2]byte
		binary.LittleEndian.PutUint16(b[:], v)
		buf = append(buf, b[:]...)
	}

	putU32(uint32(len(t.References)))
	for i, r := range t.References {
		putU32(uint32(r.Class))
		putU32(t.ReferenceSlots[i])
		putU16(uint16(len(r.Path)))
		buf = append(buf, r.Path...)
	}

	putU32(uint32(len(t.Payload)))
	buf = append(buf, t.Payload...)

	putU32(uint32(len(t.AssetBlobs)))
	for i, blob := range t.AssetBlobs {
		putU32(t.AssetSlots[i])
		putU32(uint32(len(blob)))
		buf = append(buf, blob...)
	}

	return buf
}
