package build

import (
	"github.com/PumbleCorp/invader/ceaflate"
	"github.com/PumbleCorp/invader/hek"
)

// Compress runs the compressor (C8): wraps everything after the file
// header in whichever of ceaflate's three codecs the engine target (or
// an explicit override) selects, then re-stamps the header to describe
// the compressed result. image is Assemble's uncompressed output and is
// left untouched; Compress never mutates its input.
func (w *Workload) Compress(image []byte) ([]byte, error) {
	scheme := w.Params.Compression
	if scheme == CompressionAuto {
		scheme = w.defaultCompressionScheme()
	}
	if scheme == CompressionNone {
		return image, nil
	}

	header := append([]byte(nil), image[:hek.HeaderSize]...)
	body := image[hek.HeaderSize:]

	switch scheme {
	case CompressionZstdWholeImage:
		return w.compressZstdWholeImage(header, body)
	case CompressionDeflateWholeImage:
		return w.compressDeflateWholeImage(header, body)
	case CompressionCeaflate:
		return w.compressCeaflate(header, body)
	default:
		return image, nil
	}
}

// defaultCompressionScheme picks the scheme each engine target
// conventionally ships with when the caller doesn't ask for a specific
// one: deflate for Xbox's fixed on-disc layout, zstd everywhere else.
// Ceaflate is opt-in only, since nothing about an engine target implies
// a caller wants streaming decompression over straight-line size.
func (w *Workload) defaultCompressionScheme() CompressionScheme {
	if w.Params.Engine == hek.CacheFileXbox {
		return CompressionDeflateWholeImage
	}
	return CompressionZstdWholeImage
}

func (w *Workload) compressZstdWholeImage(header, body []byte) ([]byte, error) {
	compressed, err := ceaflate.CompressZstd(body, w.Params.CompressionLevel)
	if err != nil {
		return nil, w.sink.fatalf(KindCompressionFailure, w.Params.Scenario, "%v", err)
	}

	h, err := hek.DecodeHeader(header)
	if err != nil {
		return nil, w.sink.fatalf(KindCompressionFailure, w.Params.Scenario, "re-decoding assembled header: %v", err)
	}
	h.DecompressedFileSize = uint32(len(body))
	if w.Params.Engine == hek.CacheFileDarkCirclet {
		h.CompressionType = uint32(hek.NativeCompressionZstd)
	} else {
		h.Engine = hek.CompressedEngine(w.Params.Engine)
	}
	h.FileSize = uint32(hek.HeaderSize + len(compressed))

	out := make([]byte, 0, h.FileSize)
	out = append(out, hek.EncodeHeader(h)...)
	out = append(out, compressed...)
	return out, nil
}

func (w *Workload) compressDeflateWholeImage(header, body []byte) ([]byte, error) {
	compressed, padding, err := ceaflate.CompressDeflateWholeImage(body, hek.HeaderSize)
	if err != nil {
		return nil, w.sink.fatalf(KindCompressionFailure, w.Params.Scenario, "%v", err)
	}

	h, err := hek.DecodeHeader(header)
	if err != nil {
		return nil, w.sink.fatalf(KindCompressionFailure, w.Params.Scenario, "re-decoding assembled header: %v", err)
	}
	h.DecompressedFileSize = uint32(len(body))
	h.CompressedPadding = uint32(padding)
	h.FileSize = uint32(hek.HeaderSize + len(compressed) + padding)

	out := make([]byte, 0, h.FileSize)
	out = append(out, hek.EncodeHeader(h)...)
	out = append(out, compressed...)
	out = append(out, make([]byte, padding)...)
	return out, nil
}

func (w *Workload) compressCeaflate(header, body []byte) ([]byte, error) {
	compressed, err := ceaflate.Compress(body)
	if err != nil {
		return nil, w.sink.fatalf(KindCompressionFailure, w.Params.Scenario, "%v", err)
	}

	h, err := hek.DecodeHeader(header)
	if err != nil {
		return nil, w.sink.fatalf(KindCompressionFailure, w.Params.Scenario, "re-decoding assembled header: %v", err)
	}
	h.DecompressedFileSize = uint32(len(body))
	if w.Params.Engine == hek.CacheFileDarkCirclet {
		h.CompressionType = uint32(hek.NativeCompressionCeaflate)
	} else {
		h.Engine = hek.CompressedEngine(w.Params.Engine)
	}
	h.FileSize = uint32(hek.HeaderSize + len(compressed))

	out := make([]byte, 0, h.FileSize)
	out = append(out, hek.EncodeHeader(h)...)
	out = append(out, compressed...)
	return out, nil
}
