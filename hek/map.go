package hek

import (
	"bytes"
	"encoding/binary"
	"errors"
)

// CacheFileEngine identifies the target engine a cache file was built for.
// Each engine has its own header layout quirks and memory budget.
type CacheFileEngine uint32

const (
	CacheFileXbox              CacheFileEngine = 0x5
	CacheFileDemo              CacheFileEngine = 0x6
	CacheFileRetail            CacheFileEngine = 0x7
	CacheFileCustomEdition     CacheFileEngine = 0x261
	CacheFileDarkCirclet       CacheFileEngine = 0x1A86
	CacheFileRetailCompressed  CacheFileEngine = 0x7 | 0x80000000
	CacheFileDemoCompressed    CacheFileEngine = 0x6 | 0x80000000
	CacheFileCustomCompressed  CacheFileEngine = 0x261 | 0x80000000
	CacheFileNative            CacheFileEngine = CacheFileDarkCirclet
)

// CacheFileType is the gameplay category the scenario was built as.
type CacheFileType uint16

const (
	CacheFileSingleplayer CacheFileType = iota
	CacheFileMultiplayer
	CacheFileUserInterface
)

// CacheFileLiteral is a fixed four-character-code literal used to sanity
// check a header.
type CacheFileLiteral uint32

const (
	CacheFileHead     CacheFileLiteral = 0x64616568 // "head" (LE on disk)
	CacheFileFoot     CacheFileLiteral = 0x746F6F66 // "foot"
	CacheFileTagsLit  CacheFileLiteral = 0x73676174 // "tags"
	CacheFileHeadDemo CacheFileLiteral = 0x64656845 // "Ehed"
	CacheFileFootDemo CacheFileLiteral = 0x746F6647 // "Gfot"
)

// Memory budgets, §6.
const (
	CacheFilePCBaseMemoryAddress         uint32 = 0x40440000
	CacheFileDemoBaseMemoryAddress       uint32 = 0x4BF10000
	CacheFileDarkCircletBaseMemoryAddress uint32 = 0x00000000

	CacheFileMemoryLength             uint64 = 0x1700000
	CacheFileMemoryLengthDarkCirclet  uint64 = 0x100000000 - uint64(CacheFileDarkCircletBaseMemoryAddress)
	CacheFileMaximumFileLength        uint64 = 0x100000000
	CacheFileMaxTagCount                     = 65535
)

// MemoryBudget returns the tag-data base address and memory length for an
// engine target.
func MemoryBudget(engine CacheFileEngine) (base uint32, length uint64) {
	switch engine {
	case CacheFileDemo, CacheFileDemoCompressed:
		return CacheFileDemoBaseMemoryAddress, CacheFileMemoryLength
	case CacheFileDarkCirclet:
		return CacheFileDarkCircletBaseMemoryAddress, CacheFileMemoryLengthDarkCirclet
	default:
		return CacheFilePCBaseMemoryAddress, CacheFileMemoryLength
	}
}

// HeaderSize is the fixed size of every cache file header variant.
const HeaderSize = 0x800

// CompressedEngine returns the engine code a compressed header stamps in
// place of engine, for targets that discriminate compression via the
// engine field's high bit. Dark Circlet and Xbox discriminate compression
// some other way (the file header's CompressionType field, and
// padding-based detection, respectively) and are returned unchanged.
func CompressedEngine(engine CacheFileEngine) CacheFileEngine {
	switch engine {
	case CacheFileRetail, CacheFileDemo, CacheFileCustomEdition:
		return engine | 0x80000000
	default:
		return engine
	}
}

var (
	// ErrInvalidMapHeader is returned when the head/foot literals don't
	// match any known layout.
	ErrInvalidMapHeader = errors.New("hek: invalid cache file header")
)

// CacheFileHeader is the PC/native/retail header layout (0x800 bytes).
type CacheFileHeader struct {
	HeadLiteral   CacheFileLiteral
	Engine        CacheFileEngine
	FileSize      uint32
	_pad1         [4]byte
	TagDataOffset uint32
	TagDataSize   uint32
	_pad2         [8]byte
	Name          TagString
	Build         TagString
	MapType       CacheFileType
	_pad3         [2]byte
	CRC32         uint32
	// compressed variants only; zero on uncompressed headers.
	DecompressedFileSize uint32
	CompressionType      uint32
	CompressedPadding     uint32
	_pad4                 [0x794 - 4 - 4 - 4]byte
	FootLiteral           CacheFileLiteral
}

// Valid reports whether the head/foot literals are a known, consistent pair.
func (h *CacheFileHeader) Valid() bool {
	switch h.HeadLiteral {
	case CacheFileHead:
		return h.FootLiteral == CacheFileFoot
	case CacheFileHeadDemo:
		return h.FootLiteral == CacheFileFootDemo
	default:
		return false
	}
}

// EncodeHeader serializes h into a HeaderSize-byte little-endian buffer.
func EncodeHeader(h *CacheFileHeader) []byte {
	buf := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(buf[0x0:], uint32(h.HeadLiteral))
	binary.LittleEndian.PutUint32(buf[0x4:], uint32(h.Engine))
	binary.LittleEndian.PutUint32(buf[0x8:], h.FileSize)
	binary.LittleEndian.PutUint32(buf[0x10:], h.TagDataOffset)
	binary.LittleEndian.PutUint32(buf[0x14:], h.TagDataSize)
	copy(buf[0x20:0x40], h.Name[:])
	copy(buf[0x40:0x60], h.Build[:])
	binary.LittleEndian.PutUint16(buf[0x60:], uint16(h.MapType))
	binary.LittleEndian.PutUint32(buf[0x64:], h.CRC32)
	binary.LittleEndian.PutUint32(buf[0x68:], h.DecompressedFileSize)
	binary.LittleEndian.PutUint32(buf[0x6C:], h.CompressionType)
	binary.LittleEndian.PutUint32(buf[0x70:], h.CompressedPadding)
	binary.LittleEndian.PutUint32(buf[HeaderSize-4:], uint32(h.FootLiteral))
	return buf
}

// DecodeHeader parses a HeaderSize-byte buffer into a CacheFileHeader.
func DecodeHeader(b []byte) (*CacheFileHeader, error) {
	if len(b) < HeaderSize {
		return nil, ErrInvalidMapHeader
	}
	h := &CacheFileHeader{
		HeadLiteral:   CacheFileLiteral(binary.LittleEndian.Uint32(b[0x0:])),
		Engine:        CacheFileEngine(binary.LittleEndian.Uint32(b[0x4:])),
		FileSize:      binary.LittleEndian.Uint32(b[0x8:]),
		TagDataOffset: binary.LittleEndian.Uint32(b[0x10:]),
		TagDataSize:   binary.LittleEndian.Uint32(b[0x14:]),
		MapType:       CacheFileType(binary.LittleEndian.Uint16(b[0x60:])),
		CRC32:         binary.LittleEndian.Uint32(b[0x64:]),
		DecompressedFileSize: binary.LittleEndian.Uint32(b[0x68:]),
		CompressionType:      binary.LittleEndian.Uint32(b[0x6C:]),
		CompressedPadding:    binary.LittleEndian.Uint32(b[0x70:]),
		FootLiteral:   CacheFileLiteral(binary.LittleEndian.Uint32(b[HeaderSize-4:])),
	}
	copy(h.Name[:], b[0x20:0x40])
	copy(h.Build[:], b[0x40:0x60])
	if !h.Valid() {
		return nil, ErrInvalidMapHeader
	}
	return h, nil
}

// CacheFileTagDataHeader sits at TagDataOffset (0x14 bytes; a PC-variant
// adds model-section fields for 0x28 total).
type CacheFileTagDataHeader struct {
	TagArrayAddress uint32
	ScenarioTagID   uint32
	RandomNumber    uint32
	TagCount        uint32
	ModelPartCount  uint32

	// PC-variant-only fields (encoded for every target except Xbox, whose
	// short header omits them).
	ModelDataFileOffset uint32
	ModelPartCountAgain uint32
	VertexSize          uint32
	ModelDataSize       uint32
	TagsLiteral         CacheFileLiteral
}

// TagDataHeaderSize returns the encoded size for a target (PC carries the
// extra model-section fields, §6).
func TagDataHeaderSize(pcVariant bool) int {
	if pcVariant {
		return 0x28
	}
	return 0x14
}

// Encode serializes the tag-data header for the requested variant.
func (t *CacheFileTagDataHeader) Encode(pcVariant bool) []byte {
	buf := make([]byte, TagDataHeaderSize(pcVariant))
	binary.LittleEndian.PutUint32(buf[0x0:], t.TagArrayAddress)
	binary.LittleEndian.PutUint32(buf[0x4:], t.ScenarioTagID)
	binary.LittleEndian.PutUint32(buf[0x8:], t.RandomNumber)
	binary.LittleEndian.PutUint32(buf[0xC:], t.TagCount)
	binary.LittleEndian.PutUint32(buf[0x10:], t.ModelPartCount)
	if pcVariant {
		binary.LittleEndian.PutUint32(buf[0x14:], t.ModelDataFileOffset)
		binary.LittleEndian.PutUint32(buf[0x18:], t.ModelPartCountAgain)
		binary.LittleEndian.PutUint32(buf[0x1C:], t.VertexSize)
		binary.LittleEndian.PutUint32(buf[0x20:], t.ModelDataSize)
		binary.LittleEndian.PutUint32(buf[0x24:], uint32(t.TagsLiteral))
	}
	return buf
}

// CacheFileTagDataTag is a single tag-array record (0x20 bytes).
type CacheFileTagDataTag struct {
	PrimaryClass   uint32
	SecondaryClass uint32
	TertiaryClass  uint32
	TagID          uint32
	TagPathAddress uint32
	TagDataAddress uint32
	Indexed        uint32
}

// TagRecordSize is the fixed size of CacheFileTagDataTag on disk.
const TagRecordSize = 0x20

// Encode serializes a tag-array record.
func (t *CacheFileTagDataTag) Encode() []byte {
	buf := make([]byte, TagRecordSize)
	binary.LittleEndian.PutUint32(buf[0x0:], t.PrimaryClass)
	binary.LittleEndian.PutUint32(buf[0x4:], t.SecondaryClass)
	binary.LittleEndian.PutUint32(buf[0x8:], t.TertiaryClass)
	binary.LittleEndian.PutUint32(buf[0xC:], t.TagID)
	binary.LittleEndian.PutUint32(buf[0x10:], t.TagPathAddress)
	binary.LittleEndian.PutUint32(buf[0x14:], t.TagDataAddress)
	binary.LittleEndian.PutUint32(buf[0x18:], t.Indexed)
	return buf
}

// NativeCompressionType discriminates the Dark Circlet compressed-header
// variant.
type NativeCompressionType uint32

const (
	NativeCompressionUncompressed NativeCompressionType = iota
	NativeCompressionZstd
	NativeCompressionCeaflate
)

// stripTrailingNuls is a small helper shared by name/build string decoding.
func stripTrailingNuls(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}
