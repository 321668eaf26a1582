// Package ceaflate implements the three whole-image compression schemes a
// compiled cache file can use: a single zstd frame, a single deflate
// stream (the Xbox on-disc layout), and the chunked, parallel "ceaflate"
// container used for maps that want streaming decompression.
package ceaflate

import (
	"bytes"
	"compress/flate"
	"errors"
	"io"

	"github.com/klauspost/compress/zstd"
)

var (
	// ErrCompressionFailure is returned when any of the three codecs fail
	// to produce output, mirroring the original's CompressionFailure.
	ErrCompressionFailure = errors.New("ceaflate: compression failed")
	// ErrDecompressionFailure is returned on any corrupt or truncated
	// input.
	ErrDecompressionFailure = errors.New("ceaflate: decompression failed")
)

// CompressZstd compresses data as a single zstd frame at the given level
// (clamped to zstd's supported range).
func CompressZstd(data []byte, level int) ([]byte, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(clampZstdLevel(level)))
	if err != nil {
		return nil, errors.Join(ErrCompressionFailure, err)
	}
	defer enc.Close()
	return enc.EncodeAll(data, nil), nil
}

// DecompressZstd decompresses a single zstd frame, verifying the result
// matches decompressedSize exactly.
func DecompressZstd(data []byte, decompressedSize int) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, errors.Join(ErrDecompressionFailure, err)
	}
	defer dec.Close()
	out, err := dec.DecodeAll(data, make([]byte, 0, decompressedSize))
	if err != nil {
		return nil, errors.Join(ErrDecompressionFailure, err)
	}
	if len(out) != decompressedSize {
		return nil, ErrDecompressionFailure
	}
	return out, nil
}

func clampZstdLevel(level int) zstd.EncoderLevel {
	switch {
	case level <= 1:
		return zstd.SpeedFastest
	case level <= 3:
		return zstd.SpeedDefault
	case level <= 6:
		return zstd.SpeedBetterCompression
	default:
		return zstd.SpeedBestCompression
	}
}

// PageSize is the alignment deflate whole-image padding rounds up to.
const PageSize = 4096

// CompressDeflateWholeImage deflates data as a single stream and returns
// the compressed bytes along with the zero padding length required so
// that headerSize+len(compressed)+padding is a multiple of PageSize.
func CompressDeflateWholeImage(data []byte, headerSize int) (compressed []byte, padding int, err error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		return nil, 0, errors.Join(ErrCompressionFailure, err)
	}
	if _, err := w.Write(data); err != nil {
		return nil, 0, errors.Join(ErrCompressionFailure, err)
	}
	if err := w.Close(); err != nil {
		return nil, 0, errors.Join(ErrCompressionFailure, err)
	}
	total := headerSize + buf.Len()
	padding = (PageSize - total%PageSize) % PageSize
	return buf.Bytes(), padding, nil
}

// DecompressDeflateWholeImage inflates a single deflate stream, stopping
// at its natural end (any trailing page padding is ignored).
func DecompressDeflateWholeImage(data []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(data))
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Join(ErrDecompressionFailure, err)
	}
	return out, nil
}

// StreamingZstdDecoder wraps klauspost/compress/zstd's streaming reader
// for the large-map decode path: the caller reads through it like any
// io.Reader and the decoder internally paces its own block sizing,
// standing in for the original's manual ZSTD_initDStream/ZSTD_DStreamOutSize
// loop.
type StreamingZstdDecoder struct {
	r *zstd.Decoder
}

// NewStreamingZstdDecoder wraps r for streaming zstd decode.
func NewStreamingZstdDecoder(r io.Reader) (*StreamingZstdDecoder, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, errors.Join(ErrDecompressionFailure, err)
	}
	return &StreamingZstdDecoder{r: dec}, nil
}

// Read implements io.Reader.
func (s *StreamingZstdDecoder) Read(p []byte) (int, error) {
	return s.r.Read(p)
}

// Close releases the decoder's internal buffers.
func (s *StreamingZstdDecoder) Close() {
	s.r.Close()
}
