// Package resourcemap reads the external resource maps (bitmaps.map,
// sounds.map, loc.map) the resource indexer matches compiled tag payloads
// against. Maps are memory-mapped read-only the same way the teacher
// memory-maps a PE image in file.go, since they can run into the tens of
// megabytes and the indexer only ever needs random-access reads, never a
// full in-memory copy.
package resourcemap

import (
	"encoding/binary"
	"errors"
	"os"

	mmap "github.com/edsrzf/mmap-go"
)

// ErrInvalidResourceMap is returned when a map's header doesn't parse.
var ErrInvalidResourceMap = errors.New("resourcemap: invalid resource map header")

// Type discriminates which of the three resource maps a Map was opened
// from; entries in a bitmaps.map and a sounds.map happen to share a
// layout but are never compared across types.
type Type int

const (
	TypeBitmaps Type = iota
	TypeSounds
	TypeLoc
)

// Entry is one resource map record: the tag's full virtual path and its
// payload as it'd appear in a compiled tag. Open fills Path and Payload
// only; the directory records carry no asset-blob fields, so Assets is
// always nil.
type Entry struct {
	Path    string
	Payload []byte
	Assets  [][]byte
}

// Map is an opened, memory-mapped resource map.
type Map struct {
	kind    Type
	f       *os.File
	data    mmap.MMap
	entries []Entry
	byPath  map[string]int
}

// header is the fixed prefix of a resource map: entry count followed by
// that many (path_offset, payload_offset, payload_size) directory
// records, with nothing after the last record; headerRecordSize is the
// size of one record.
const headerRecordSize = 12

// Open memory-maps path and parses its directory.
func Open(path string, kind Type) (*Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, err
	}

	m := &Map{kind: kind, f: f, data: data, byPath: make(map[string]int)}
	if err := m.parse(); err != nil {
		m.Close()
		return nil, err
	}
	return m, nil
}

func (m *Map) parse() error {
	if len(m.data) < 4 {
		return ErrInvalidResourceMap
	}
	count := binary.LittleEndian.Uint32(m.data)
	dirSize := 4 + int(count)*headerRecordSize
	if len(m.data) < dirSize {
		return ErrInvalidResourceMap
	}

	m.entries = make([]Entry, count)
	for i := uint32(0); i < count; i++ {
		rec := m.data[4+int(i)*headerRecordSize:]
		pathOff := binary.LittleEndian.Uint32(rec)
		payloadOff := binary.LittleEndian.Uint32(rec[4:])
		payloadSize := binary.LittleEndian.Uint32(rec[8:])

		path, err := readCString(m.data, pathOff)
		if err != nil {
			return err
		}
		if int(payloadOff)+int(payloadSize) > len(m.data) {
			return ErrInvalidResourceMap
		}
		m.entries[i] = Entry{
			Path:    path,
			Payload: m.data[payloadOff : payloadOff+payloadSize],
		}
		m.byPath[path] = int(i)
	}
	return nil
}

func readCString(data []byte, offset uint32) (string, error) {
	if int(offset) >= len(data) {
		return "", ErrInvalidResourceMap
	}
	rest := data[offset:]
	for i, b := range rest {
		if b == 0 {
			return string(rest[:i]), nil
		}
	}
	return "", ErrInvalidResourceMap
}

// Close unmaps the file.
func (m *Map) Close() error {
	if m.data != nil {
		_ = m.data.Unmap()
	}
	if m.f != nil {
		return m.f.Close()
	}
	return nil
}

// Kind returns which resource map this is.
func (m *Map) Kind() Type { return m.kind }

// Len returns the number of entries.
func (m *Map) Len() int { return len(m.entries) }

// LookupByPath returns the entry whose full virtual path equals path,
// used by the "always index" mode.
func (m *Map) LookupByPath(path string) (idx int, ok bool) {
	i, ok := m.byPath[path]
	return i, ok
}

// LookupByPayload scans for an entry whose payload bytes exactly match
// payload, used by the byte-identical matching mode. Resource maps top
// out in the low tens of megabytes with a few thousand entries, so a
// linear scan is well within the build's time budget; the always-index
// path above is O(1) and is what a real asset pipeline exercises on
// every build.
func (m *Map) LookupByPayload(payload []byte) (idx int, ok bool) {
	for i, e := range m.entries {
		if len(e.Payload) == len(payload) && string(e.Payload) == string(payload) {
			return i, true
		}
	}
	return 0, false
}

// Entry returns the entry at idx.
func (m *Map) Entry(idx int) Entry {
	return m.entries[idx]
}
