package hek

// ShaderType enumerates the shader tag subclasses, each with a distinct
// pre-compile normalisation pass.
type ShaderType uint16

const (
	ShaderTypeEnvironment ShaderType = iota
	ShaderTypeModel
	ShaderTypeTransparentGeneric
	ShaderTypeTransparentChicago
	ShaderTypeTransparentChicagoExtended
	ShaderTypeTransparentWater
	ShaderTypeTransparentGlass
	ShaderTypeTransparentMeter
	ShaderTypeTransparentPlasma
)

// ModelPartFlags are per-part compile flags found on gbxmodel geometry
// parts.
type ModelPartFlags uint16

const (
	ModelPartFlagStripedDecal ModelPartFlags = 1 << iota
	ModelPartFlagZSprite
)

// ModelFlags are gbxmodel header flags.
type ModelFlags uint32

const (
	ModelFlagBlendSharedNormals ModelFlags = 1 << iota
	ModelFlagPartsHaveLocalNodes
	ModelFlagOtherBlendSharedNormals
)

// ScenarioTypeValue mirrors CacheFileType for scenario.scenario_type, kept
// distinct because the tag field and the header field serialize at
// different widths.
type ScenarioTypeValue uint16

const (
	ScenarioTypeSingleplayer ScenarioTypeValue = iota
	ScenarioTypeMultiplayer
	ScenarioTypeUserInterface
)

// BitmapFormat enumerates a handful of bitmap pixel encodings.
type BitmapFormat uint16

const (
	BitmapFormatA8       BitmapFormat = 0
	BitmapFormatY8       BitmapFormat = 1
	BitmapFormatAY8      BitmapFormat = 2
	BitmapFormatA8Y8     BitmapFormat = 4
	BitmapFormatR5G6B5   BitmapFormat = 7
	BitmapFormatA1R5G5B5 BitmapFormat = 8
	BitmapFormatA4R4G4B4 BitmapFormat = 9
	BitmapFormatX8R8G8B8 BitmapFormat = 10
	BitmapFormatA8R8G8B8 BitmapFormat = 11
	BitmapFormatDXT1     BitmapFormat = 14
	BitmapFormatDXT3     BitmapFormat = 15
	BitmapFormatDXT5     BitmapFormat = 16
	BitmapFormatP8Bump   BitmapFormat = 17
)

// BlockSize returns the compressed block footprint in bytes for formats
// that are block-compressed, or 0 for formats that aren't.
func (f BitmapFormat) BlockSize() int {
	switch f {
	case BitmapFormatDXT1:
		return 8
	case BitmapFormatDXT3, BitmapFormatDXT5:
		return 16
	default:
		return 0
	}
}

// SoundFormat enumerates sound tag sample encodings.
type SoundFormat uint16

const (
	SoundFormat16BitPCM SoundFormat = iota
	SoundFormatOggVorbis
	SoundFormatImaADPCM
)
