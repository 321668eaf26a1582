// Package build implements the map-build pipeline: dependency resolution
// from a scenario tag, per-class pre-compilation, resource-map indexing,
// image assembly, and compression. Params mirrors the original
// compile_map entry point's parameter list.
package build

import "github.com/PumbleCorp/invader/hek"

// Params configures one CompileMap invocation.
type Params struct {
	// Scenario is the virtual path (no extension) of the scenario tag
	// to build.
	Scenario string

	// TagRoots is the ordered list of tag directories to search;
	// earlier roots shadow later ones.
	TagRoots []string

	// Engine selects the target cache file layout and memory budget.
	Engine hek.CacheFileEngine

	// MapsDirectory is where bitmaps.map/sounds.map/loc.map live.
	// Ignored for Dark Circlet builds.
	MapsDirectory string

	// WithIndex are explicit (class, path) hints to always externalise
	// against the resource map, regardless of AlwaysIndexTags.
	WithIndex []IndexHint

	// NoExternalTags disables resource map lookups entirely.
	NoExternalTags bool

	// AlwaysIndexTags externalises any tag whose virtual path matches a
	// resource map entry, skipping the byte-identical comparison.
	AlwaysIndexTags bool

	// ForgeCRC32, if non-nil, is the CRC32 residue the assembler forges
	// the tag-data section to match.
	ForgeCRC32 *uint32

	// TagDataAddress overrides the engine's default tag-data base
	// address.
	TagDataAddress *uint32

	// CompressionLevel, 0-9, used for zstd whole-image compression; the
	// deflate and ceaflate paths do not read it.
	CompressionLevel int

	// Compression selects the post-assembly compression scheme; Auto
	// picks the scheme the engine target conventionally uses.
	Compression CompressionScheme
}

// IndexHint names a tag that should always be externalised against its
// resource map, bypassing the indexer's byte-identical comparison.
type IndexHint struct {
	Class hek.TagClass
	Path  string
}

// CompressionScheme selects which of ceaflate's three codecs wraps the
// assembled image.
type CompressionScheme int

const (
	CompressionAuto CompressionScheme = iota
	CompressionNone
	CompressionZstdWholeImage
	CompressionDeflateWholeImage
	CompressionCeaflate
)

func (p *Params) tagDataAddress() uint32 {
	if p.TagDataAddress != nil {
		return *p.TagDataAddress
	}
	base, _ := hek.MemoryBudget(p.Engine)
	return base
}

func (p *Params) usesExternalResources() bool {
	if p.NoExternalTags {
		return false
	}
	switch p.Engine {
	case hek.CacheFileDarkCirclet:
		return false
	default:
		return true
	}
}
