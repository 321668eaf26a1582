package ceaflate

import (
	"bytes"
	"compress/flate"
	"encoding/binary"
	"errors"
	"io"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// MaxChunkSize is the maximum uncompressed size of one ceaflate chunk.
const MaxChunkSize = 0x20000

// chunkRecord is one compressed chunk as laid out on disk: a 4-byte
// uncompressed size followed by a raw deflate stream.
type chunkRecord struct {
	uncompressedSize uint32
	data             []byte
}

func (c chunkRecord) encode() []byte {
	out := make([]byte, 4+len(c.data))
	binary.LittleEndian.PutUint32(out, c.uncompressedSize)
	copy(out[4:], c.data)
	return out
}

// Compress cuts input into MaxChunkSize chunks, deflates each
// independently across a worker pool, and assembles the container: a
// uint32 chunk count, count+1 uint32 offsets (the last offset is the
// container's total size), then count (uncompressed_size, deflate_stream)
// records.
//
// Workers claim the next unclaimed input offset under a mutex, reserving
// their output slot (and so their position in the final layout) before
// releasing the lock and compressing outside it — ordering falls out of
// slot assignment, not completion order.
func Compress(input []byte) ([]byte, error) {
	if len(input) == 0 {
		return encodeContainer(nil), nil
	}

	chunkCount := (len(input) + MaxChunkSize - 1) / MaxChunkSize
	chunks := make([]chunkRecord, chunkCount)

	var (
		mu            sync.Mutex
		currentOffset int
		nextSlot      int
		firstErr      error
	)

	workers := runtime.GOMAXPROCS(0)
	if workers < 1 {
		workers = 1
	}
	if workers > chunkCount {
		workers = chunkCount
	}

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for {
				mu.Lock()
				if currentOffset >= len(input) || firstErr != nil {
					mu.Unlock()
					return nil
				}
				slot := nextSlot
				nextSlot++
				start := currentOffset
				end := start + MaxChunkSize
				if end > len(input) {
					end = len(input)
				}
				currentOffset = end
				mu.Unlock()

				raw := input[start:end]
				compressed, err := deflateChunk(raw)

				mu.Lock()
				if err != nil && firstErr == nil {
					firstErr = err
				} else if err == nil {
					chunks[slot] = chunkRecord{uncompressedSize: uint32(len(raw)), data: compressed}
				}
				mu.Unlock()
			}
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Join(ErrCompressionFailure, err)
	}
	if firstErr != nil {
		return nil, errors.Join(ErrCompressionFailure, firstErr)
	}

	return encodeContainer(chunks), nil
}

func deflateChunk(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(raw); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeContainer(chunks []chunkRecord) []byte {
	count := uint32(len(chunks))
	offsets := make([]uint32, count+1)

	headerSize := 4 + int(count+1)*4
	bodies := make([][]byte, count)
	offset := headerSize
	for i, c := range chunks {
		offsets[i] = uint32(offset)
		enc := c.encode()
		bodies[i] = enc
		offset += len(enc)
	}
	offsets[count] = uint32(offset)

	out := make([]byte, offset)
	binary.LittleEndian.PutUint32(out, count)
	for i, o := range offsets {
		binary.LittleEndian.PutUint32(out[4+i*4:], o)
	}
	pos := headerSize
	for _, b := range bodies {
		copy(out[pos:], b)
		pos += len(b)
	}
	return out
}

// Size returns the total decompressed size of a ceaflate container by
// pre-scanning every chunk header, without decompressing any chunk body.
func Size(input []byte) (int, error) {
	count, offsets, err := readContainerHeader(input)
	if err != nil {
		return 0, err
	}
	total := 0
	for i := uint32(0); i < count; i++ {
		start := offsets[i]
		if int(start)+4 > len(input) {
			return 0, ErrDecompressionFailure
		}
		total += int(binary.LittleEndian.Uint32(input[start:]))
	}
	return total, nil
}

func readContainerHeader(input []byte) (count uint32, offsets []uint32, err error) {
	if len(input) < 4 {
		return 0, nil, ErrDecompressionFailure
	}
	count = binary.LittleEndian.Uint32(input)
	need := (int(count) + 1) * 4
	if len(input) < 4+need {
		return 0, nil, ErrDecompressionFailure
	}
	offsets = make([]uint32, count+1)
	for i := range offsets {
		offsets[i] = binary.LittleEndian.Uint32(input[4+i*4:])
	}
	return count, offsets, nil
}

// Decompress inflates every chunk in a ceaflate container into a single
// pre-sized output buffer (its layout recovered from Size), using the
// same offsets-table pre-scan as Size to hand each worker an independent,
// non-overlapping write region.
func Decompress(input []byte) ([]byte, error) {
	count, offsets, err := readContainerHeader(input)
	if err != nil {
		return nil, err
	}
	total, err := Size(input)
	if err != nil {
		return nil, err
	}
	out := make([]byte, total)
	if count == 0 {
		return out, nil
	}

	writeOffsets := make([]int, count)
	w := 0
	for i := uint32(0); i < count; i++ {
		writeOffsets[i] = w
		w += int(binary.LittleEndian.Uint32(input[offsets[i]:]))
	}

	var (
		mu          sync.Mutex
		nextChunk   uint32
		firstErr    error
	)

	workers := runtime.GOMAXPROCS(0)
	if workers < 1 {
		workers = 1
	}
	if uint32(workers) > count {
		workers = int(count)
	}

	var g errgroup.Group
	for wi := 0; wi < workers; wi++ {
		g.Go(func() error {
			for {
				mu.Lock()
				if nextChunk >= count || firstErr != nil {
					mu.Unlock()
					return nil
				}
				i := nextChunk
				nextChunk++
				mu.Unlock()

				chunkStart := offsets[i] + 4
				chunkEnd := offsets[i+1]
				uncompressedSize := binary.LittleEndian.Uint32(input[offsets[i]:])

				r := flate.NewReader(bytes.NewReader(input[chunkStart:chunkEnd]))
				dst := out[writeOffsets[i] : writeOffsets[i]+int(uncompressedSize)]
				n, err := io.ReadFull(r, dst)
				r.Close()

				mu.Lock()
				if (err != nil || n != len(dst)) && firstErr == nil {
					firstErr = ErrDecompressionFailure
				}
				mu.Unlock()
			}
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Join(ErrDecompressionFailure, err)
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}
