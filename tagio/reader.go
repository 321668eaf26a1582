// Package tagio loads tag files from a directory tree of tag roots: it
// resolves which root's copy of a tag shadows the others, allocates a
// slot for it before decoding (so a cyclic reference resolves to the
// allocated slot rather than recursing forever), and exposes
// bounds-checked scalar reads over the raw file bytes the way the
// teacher's File.ReadUint32/structUnpack family does over a PE image.
package tagio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
)

// ErrOutsideBoundary is returned by every bounds-checked accessor when the
// requested read would run past the end of the buffer.
var ErrOutsideBoundary = errors.New("tagio: read outside tag data boundary")

// Reader wraps a tag file's raw bytes with bounds-checked scalar and
// struct accessors.
type Reader struct {
	data []byte
	size uint32
}

// NewReader wraps data for bounds-checked reads.
func NewReader(data []byte) *Reader {
	return &Reader{data: data, size: uint32(len(data))}
}

// Len returns the number of bytes available.
func (r *Reader) Len() uint32 { return r.size }

// Bytes returns the underlying buffer.
func (r *Reader) Bytes() []byte { return r.data }

// ReadUint32 reads a little-endian uint32 at offset.
func (r *Reader) ReadUint32(offset uint32) (uint32, error) {
	if uint64(offset)+4 > uint64(r.size) {
		return 0, ErrOutsideBoundary
	}
	return binary.LittleEndian.Uint32(r.data[offset:]), nil
}

// ReadUint16 reads a little-endian uint16 at offset.
func (r *Reader) ReadUint16(offset uint32) (uint16, error) {
	if uint64(offset)+2 > uint64(r.size) {
		return 0, ErrOutsideBoundary
	}
	return binary.LittleEndian.Uint16(r.data[offset:]), nil
}

// ReadFloat32 reads a little-endian IEEE-754 float32 at offset.
func (r *Reader) ReadFloat32(offset uint32) (float32, error) {
	bits, err := r.ReadUint32(offset)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(bits), nil
}

// ReadBytesAt returns a size-byte slice starting at offset, bounds-checked
// against integer overflow the way the teacher's ReadBytesAtOffset does.
func (r *Reader) ReadBytesAt(offset, size uint32) ([]byte, error) {
	total := offset + size
	if (total > offset) != (size > 0) {
		return nil, ErrOutsideBoundary
	}
	if offset >= r.size || total > r.size {
		return nil, ErrOutsideBoundary
	}
	return r.data[offset:total], nil
}

// StructUnpack decodes size bytes at offset into iface via encoding/binary,
// bounds-checked first.
func (r *Reader) StructUnpack(iface interface{}, offset, size uint32) error {
	buf, err := r.ReadBytesAt(offset, size)
	if err != nil {
		return err
	}
	return binary.Read(bytes.NewReader(buf), binary.LittleEndian, iface)
}

// ReadCString reads a NUL-terminated string starting at offset.
func (r *Reader) ReadCString(offset uint32) (string, error) {
	if offset >= r.size {
		return "", ErrOutsideBoundary
	}
	rest := r.data[offset:]
	idx := bytes.IndexByte(rest, 0)
	if idx < 0 {
		return "", ErrOutsideBoundary
	}
	return string(rest[:idx]), nil
}
