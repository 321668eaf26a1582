package build

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/PumbleCorp/invader/hek"
	"github.com/PumbleCorp/invader/internal/obslog"
	"github.com/PumbleCorp/invader/resourcemap"
)

// buildTestResourceMap assembles a minimal resource map file, mirroring
// the layout resourcemap.Open expects: entry count, then that many
// (path_offset, payload_offset, payload_size) directory records, then a
// NUL-terminated string pool, then the payload bytes.
func buildTestResourceMap(t *testing.T, paths []string, payloads [][]byte) string {
	t.Helper()
	const headerRecordSize = 12

	var stringPool []byte
	var pathOffsets []uint32
	for _, p := range paths {
		pathOffsets = append(pathOffsets, uint32(len(stringPool)))
		stringPool = append(stringPool, []byte(p)...)
		stringPool = append(stringPool, 0)
	}

	dirSize := 4 + len(paths)*headerRecordSize
	stringsStart := dirSize
	payloadsStart := stringsStart + len(stringPool)

	var payloadOffsets []uint32
	var payloadBlob []byte
	for _, p := range payloads {
		payloadOffsets = append(payloadOffsets, uint32(payloadsStart+len(payloadBlob)))
		payloadBlob = append(payloadBlob, p...)
	}

	buf := make([]byte, payloadsStart+len(payloadBlob))
	binary.LittleEndian.PutUint32(buf, uint32(len(paths)))
	for i, off := range pathOffsets {
		rec := buf[4+i*headerRecordSize:]
		binary.LittleEndian.PutUint32(rec, uint32(stringsStart)+off)
		binary.LittleEndian.PutUint32(rec[4:], payloadOffsets[i])
		binary.LittleEndian.PutUint32(rec[8:], uint32(len(payloads[i])))
	}
	copy(buf[stringsStart:], stringPool)
	copy(buf[payloadsStart:], payloadBlob)

	dir := t.TempDir()
	path := filepath.Join(dir, "test.map")
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newIndexTestWorkload(t *testing.T, mapPath string, kind resourcemap.Type) *Workload {
	t.Helper()
	w := NewWorkload(Params{Engine: hek.CacheFileRetail}, obslog.Discard())
	m, err := resourcemap.Open(mapPath, kind)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = m.Close() })
	w.resources[kind] = m
	return w
}

func TestIndexResources_AlwaysIndexMatchesByPath(t *testing.T) {
	path := buildTestResourceMap(t, []string{"weapons\\pistol\\pistol"}, [][]byte{[]byte("bitmap-bytes")})
	w := newIndexTestWorkload(t, path, resourcemap.TypeBitmaps)
	w.Params.AlwaysIndexTags = true

	ct := &CompiledTag{Path: "weapons\\pistol\\pistol", Class: hek.ClassBitmap, Payload: []byte("not-the-same-bytes")}
	w.Tags = []*CompiledTag{ct}

	stats, err := w.IndexResources()
	if err != nil {
		t.Fatalf("IndexResources: %v", err)
	}
	if stats.Indexed != 1 {
		t.Fatalf("expected 1 indexed tag, got %+v", stats)
	}
	if !ct.Indexed || ct.Payload != nil {
		t.Errorf("expected tag externalised with nil payload, got indexed=%v payload=%v", ct.Indexed, ct.Payload)
	}
}

func TestIndexResources_ByteIdenticalMatchWithoutAlwaysIndex(t *testing.T) {
	payload := []byte("exact-payload-bytes")
	path := buildTestResourceMap(t, []string{"sound\\a"}, [][]byte{payload})
	w := newIndexTestWorkload(t, path, resourcemap.TypeSounds)

	ct := &CompiledTag{Path: "sound\\b", Class: hek.ClassSound, Payload: append([]byte(nil), payload...)}
	w.Tags = []*CompiledTag{ct}

	stats, err := w.IndexResources()
	if err != nil {
		t.Fatalf("IndexResources: %v", err)
	}
	if stats.Indexed != 1 {
		t.Fatalf("expected byte-identical match to index, got %+v", stats)
	}
}

func TestIndexResources_NoMatchCountsAsPotential(t *testing.T) {
	path := buildTestResourceMap(t, []string{"sound\\a"}, [][]byte{[]byte("one-thing")})
	w := newIndexTestWorkload(t, path, resourcemap.TypeSounds)

	ct := &CompiledTag{Path: "sound\\b", Class: hek.ClassSound, Payload: []byte("totally-different")}
	w.Tags = []*CompiledTag{ct}

	stats, err := w.IndexResources()
	if err != nil {
		t.Fatalf("IndexResources: %v", err)
	}
	if stats.Potential != 1 || stats.Indexed != 0 {
		t.Fatalf("expected 1 potential, 0 indexed, got %+v", stats)
	}
}

func TestIndexResources_DarkCircletSkipsEntirely(t *testing.T) {
	w := NewWorkload(Params{Engine: hek.CacheFileDarkCirclet}, obslog.Discard())
	ct := &CompiledTag{Path: "x", Class: hek.ClassBitmap, Payload: []byte("abc")}
	w.Tags = []*CompiledTag{ct}

	stats, err := w.IndexResources()
	if err != nil {
		t.Fatalf("IndexResources: %v", err)
	}
	if stats.Indexed != 0 || ct.Indexed {
		t.Errorf("expected Dark Circlet builds to skip indexing entirely, got %+v", stats)
	}
}
