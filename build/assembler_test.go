package build

import (
	"hash/crc32"
	"testing"

	"github.com/PumbleCorp/invader/hek"
)

func newAssemblerTestWorkload() *Workload {
	w := &Workload{Params: Params{
		Engine:   hek.CacheFileDarkCirclet,
		Scenario: "levels\\test\\test",
	}}
	w.Tags = []*CompiledTag{
		{Path: "levels\\test\\test", Class: hek.ClassScenario, Payload: []byte{1, 0, 0, 0}},
		{Path: "sound\\sfx\\ui\\ting", Class: hek.ClassSound, Payload: []byte{0, 0, 0, 0, 0, 0, 0, 0}},
	}
	w.ScenarioIndex = 0
	w.CacheFileType = hek.CacheFileMultiplayer
	return w
}

func TestAssemble_HeaderAndCRCConsistent(t *testing.T) {
	w := newAssemblerTestWorkload()

	image, err := w.Assemble()
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	header, err := hek.DecodeHeader(image[:hek.HeaderSize])
	if err != nil {
		t.Fatalf("DecodeHeader: %v", err)
	}
	if !header.Valid() {
		t.Fatal("expected a valid header")
	}
	if header.MapType != hek.CacheFileMultiplayer {
		t.Errorf("MapType = %v, want multiplayer", header.MapType)
	}
	if int(header.TagDataOffset) != hek.HeaderSize {
		t.Errorf("TagDataOffset = %#x, want %#x", header.TagDataOffset, hek.HeaderSize)
	}
	if header.FileSize != uint32(len(image)) {
		t.Errorf("FileSize = %d, want %d", header.FileSize, len(image))
	}

	tagData := image[hek.HeaderSize : hek.HeaderSize+int(header.TagDataSize)]
	if got := crc32.ChecksumIEEE(tagData); got != header.CRC32 {
		t.Errorf("CRC32 over tag-data section = %#x, want %#x", got, header.CRC32)
	}
}

func TestAssemble_ForgesRequestedCRC(t *testing.T) {
	w := newAssemblerTestWorkload()
	target := uint32(0xDEADBEEF)
	w.Params.ForgeCRC32 = &target

	image, err := w.Assemble()
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	header, err := hek.DecodeHeader(image[:hek.HeaderSize])
	if err != nil {
		t.Fatalf("DecodeHeader: %v", err)
	}
	if header.CRC32 != target {
		t.Errorf("header CRC32 = %#x, want forged %#x", header.CRC32, target)
	}

	tagData := image[hek.HeaderSize : hek.HeaderSize+int(header.TagDataSize)]
	if got := crc32.ChecksumIEEE(tagData); got != target {
		t.Errorf("CRC32 over tag-data section = %#x, want forged %#x", got, target)
	}
}

func TestAssemble_NilTagSlotGetsNullRecord(t *testing.T) {
	w := newAssemblerTestWorkload()
	w.Tags = append(w.Tags, nil)

	image, err := w.Assemble()
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	header, err := hek.DecodeHeader(image[:hek.HeaderSize])
	if err != nil {
		t.Fatalf("DecodeHeader: %v", err)
	}
	if header.TagDataSize == 0 {
		t.Fatal("expected non-zero tag-data size")
	}
}
