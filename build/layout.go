package build

import "github.com/PumbleCorp/invader/hek"

// layoutAlignment is the alignment every tag payload's virtual address
// is rounded up to, matching the engine's own tag-data allocator.
const layoutAlignment = 4

// alignUp4 rounds v up to the next multiple of layoutAlignment.
func alignUp4(v uint32) uint32 {
	return (v + layoutAlignment - 1) &^ (layoutAlignment - 1)
}

// pcVariant reports whether engine uses the extended tag-data header
// carrying the model-section fields; Xbox is the one target that doesn't.
func pcVariant(engine hek.CacheFileEngine) bool {
	return engine != hek.CacheFileXbox
}

// tagDataLayout describes where every fixed-size region of the tag-data
// section starts, relative to the section's own base virtual address.
type tagDataLayout struct {
	base         uint32
	headerSize   uint32
	arraySize    uint32
	stringsSize  uint32
	payloadStart uint32
	size         uint32 // total tag-data section size (VA space, not including the model section)
}

// LayoutTagData assigns every compiled tag's virtual address. The
// tag-data section is laid out the way the engine maps it into memory at
// load time: tag-data header, then the tag array, then the string table
// of tag paths, then every tag's payload packed back to back and aligned
// to 4 bytes, the same way a PE section table packs section contents at
// ascending RVAs off the image base. Indexed tags (externalised to a
// resource map) own no payload space but keep their tag-array slot and
// path-string entry; nil slots (broken references that never resolved)
// keep only their tag-array slot. Either way TagID indices stay stable.
func (w *Workload) LayoutTagData() (tagDataLayout, error) {
	base, length := hek.MemoryBudget(w.Params.Engine)
	if w.Params.TagDataAddress != nil {
		base = *w.Params.TagDataAddress
	}
	if w.Params.Engine == hek.CacheFileDarkCirclet {
		length = 0x100000000 - uint64(base)
	}

	headerSize := uint32(hek.TagDataHeaderSize(pcVariant(w.Params.Engine)))
	arraySize := uint32(len(w.Tags)) * hek.TagRecordSize

	var stringsSize uint32
	for _, ct := range w.Tags {
		if ct == nil {
			continue
		}
		stringsSize += uint32(len(ct.Path)) + 1
	}

	end := uint64(base) + uint64(headerSize) + uint64(arraySize) + uint64(stringsSize)
	end = (end + layoutAlignment - 1) &^ (layoutAlignment - 1)
	payloadStart := uint32(end)

	for _, ct := range w.Tags {
		if ct == nil || ct.Indexed {
			continue
		}
		end = (end + layoutAlignment - 1) &^ (layoutAlignment - 1)
		ct.VirtualAddress = uint32(end)
		end += uint64(len(ct.Payload))
	}

	if end-uint64(base) > length {
		return tagDataLayout{}, w.sink.fatalf(KindSizeBudgetExceeded, w.Params.Scenario,
			"tag-data section is %d bytes, exceeds the %d byte budget for this engine target", end-uint64(base), length)
	}
	size := uint32(end - uint64(base))

	return tagDataLayout{
		base:         base,
		headerSize:   headerSize,
		arraySize:    arraySize,
		stringsSize:  stringsSize,
		payloadStart: payloadStart,
		size:         size,
	}, nil
}
