package hek

import (
	"bytes"
	"errors"
)

// ErrStringTableOverflow is returned by ReadCString when offset lies past
// the end of the table or no NUL terminator follows it.
var ErrStringTableOverflow = errors.New("hek: tag path string table overflow")

// StringTable accumulates NUL-terminated tag path strings and hands back
// the offset each one was written at, de-duplicating identical paths (two
// Intern calls with the same path string share one entry).
type StringTable struct {
	buf     bytes.Buffer
	offsets map[string]uint32
}

// NewStringTable returns an empty table.
func NewStringTable() *StringTable {
	return &StringTable{offsets: make(map[string]uint32)}
}

// Intern writes s (NUL-terminated) if not already present and returns its
// byte offset within the table.
func (t *StringTable) Intern(s string) uint32 {
	if off, ok := t.offsets[s]; ok {
		return off
	}
	off := uint32(t.buf.Len())
	t.buf.WriteString(s)
	t.buf.WriteByte(0)
	t.offsets[s] = off
	return off
}

// Bytes returns the accumulated, NUL-terminated string table.
func (t *StringTable) Bytes() []byte {
	return t.buf.Bytes()
}

// Len returns the current size of the table in bytes.
func (t *StringTable) Len() int {
	return t.buf.Len()
}

// ReadCString reads a NUL-terminated string starting at offset within b.
func ReadCString(b []byte, offset uint32) (string, error) {
	if int(offset) > len(b) {
		return "", ErrStringTableOverflow
	}
	rest := b[offset:]
	idx := bytes.IndexByte(rest, 0)
	if idx < 0 {
		return "", ErrStringTableOverflow
	}
	return string(rest[:idx]), nil
}
