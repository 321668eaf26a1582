package build

import (
	"bytes"
	"testing"

	"github.com/PumbleCorp/invader/ceaflate"
	"github.com/PumbleCorp/invader/hek"
)

func newCompressorTestWorkload(engine hek.CacheFileEngine) (*Workload, []byte) {
	w := newAssemblerTestWorkload()
	w.Params.Engine = engine
	image, err := w.Assemble()
	if err != nil {
		panic(err)
	}
	return w, image
}

func TestCompress_None_ReturnsImageUnchanged(t *testing.T) {
	w, image := newCompressorTestWorkload(hek.CacheFileDarkCirclet)
	w.Params.Compression = CompressionNone

	out, err := w.Compress(image)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if !bytes.Equal(out, image) {
		t.Error("expected CompressionNone to return the image unchanged")
	}
}

func TestCompress_ZstdWholeImage_RoundTrips(t *testing.T) {
	w, image := newCompressorTestWorkload(hek.CacheFileRetail)

	out, err := w.Compress(image)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}

	h, err := hek.DecodeHeader(out[:hek.HeaderSize])
	if err != nil {
		t.Fatalf("DecodeHeader: %v", err)
	}
	if h.Engine != hek.CacheFileRetailCompressed {
		t.Errorf("Engine = %#x, want %#x", h.Engine, hek.CacheFileRetailCompressed)
	}
	wantDecompressed := uint32(len(image) - hek.HeaderSize)
	if h.DecompressedFileSize != wantDecompressed {
		t.Errorf("DecompressedFileSize = %d, want %d", h.DecompressedFileSize, wantDecompressed)
	}

	body, err := ceaflate.DecompressZstd(out[hek.HeaderSize:], int(wantDecompressed))
	if err != nil {
		t.Fatalf("DecompressZstd: %v", err)
	}
	if !bytes.Equal(body, image[hek.HeaderSize:]) {
		t.Error("round-tripped body does not match original tag-data+model+assets region")
	}
}

func TestCompress_DeflateWholeImage_PadsToPageSize(t *testing.T) {
	w, image := newCompressorTestWorkload(hek.CacheFileXbox)

	out, err := w.Compress(image)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if len(out)%ceaflate.PageSize != 0 {
		t.Errorf("compressed Xbox image length %d is not page-aligned", len(out))
	}

	h, err := hek.DecodeHeader(out[:hek.HeaderSize])
	if err != nil {
		t.Fatalf("DecodeHeader: %v", err)
	}
	compressedEnd := int(h.FileSize) - int(h.CompressedPadding)
	body, err := ceaflate.DecompressDeflateWholeImage(out[hek.HeaderSize:compressedEnd])
	if err != nil {
		t.Fatalf("DecompressDeflateWholeImage: %v", err)
	}
	if !bytes.Equal(body, image[hek.HeaderSize:]) {
		t.Error("round-tripped body does not match original region")
	}
}

func TestCompress_Ceaflate_RoundTrips(t *testing.T) {
	w, image := newCompressorTestWorkload(hek.CacheFileCustomEdition)
	w.Params.Compression = CompressionCeaflate

	out, err := w.Compress(image)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}

	h, err := hek.DecodeHeader(out[:hek.HeaderSize])
	if err != nil {
		t.Fatalf("DecodeHeader: %v", err)
	}
	if h.Engine != hek.CacheFileCustomCompressed {
		t.Errorf("Engine = %#x, want %#x", h.Engine, hek.CacheFileCustomCompressed)
	}

	body, err := ceaflate.Decompress(out[hek.HeaderSize:])
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if !bytes.Equal(body, image[hek.HeaderSize:]) {
		t.Error("round-tripped body does not match original region")
	}
}
