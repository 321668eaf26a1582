package build

import (
	"hash/crc32"

	"github.com/PumbleCorp/invader/hek"
)

// assetIndexedSentinel is written into an asset blob's file-offset
// placeholder when the blob itself was dropped by a partial resource-map
// match (build/indexer.go's indexMatchingAssetBlobs): the header payload
// still lives in the cache file, but the blob it points to doesn't, so
// there is no real file offset to record.
const assetIndexedSentinel uint32 = hek.NullTagID

// Assemble runs the image assembler (C7): lays out every tag's virtual
// address, emits the tag-data header/array/string-table/payloads, the
// model-data section, and the raw asset blobs, then writes the file
// header with its CRC32 (or forged CRC32) and enforces the engine's size
// budgets.
func (w *Workload) Assemble() ([]byte, error) {
	layout, err := w.LayoutTagData()
	if err != nil {
		return nil, err
	}

	forging := w.Params.ForgeCRC32 != nil
	tagDataSize := layout.size
	if forging {
		// The padding needed to forge an arbitrary CRC32 residue is
		// reserved unconditionally so the tag-data section's final
		// size, and therefore every file offset after it, is known
		// before any asset blob is appended.
		tagDataSize += forgePaddingSize
	}

	_, budget := hek.MemoryBudget(w.Params.Engine)
	if uint64(tagDataSize) > budget {
		return nil, w.sink.fatalf(KindSizeBudgetExceeded, w.Params.Scenario,
			"tag-data section is %d bytes including any CRC forging padding, exceeds the %d byte budget for this engine target", tagDataSize, budget)
	}

	ids := w.assignTagIDs()

	stringTable, stringOffsets := w.buildStringTable(layout)

	modelDataSize := uint32(len(w.ModelVertices) + len(w.ModelIndices))
	modelDataFileOffset := uint32(hek.HeaderSize) + tagDataSize
	assetBlobs := w.resolveAssetBlobRelocations(modelDataFileOffset + modelDataSize)

	tagData := make([]byte, tagDataSize)

	pcVar := pcVariant(w.Params.Engine)
	vertexCount := uint32(0)
	if hek.ModelVertexSize > 0 {
		vertexCount = uint32(len(w.ModelVertices)) / hek.ModelVertexSize
	}
	tdh := hek.CacheFileTagDataHeader{
		TagArrayAddress:     layout.base + layout.headerSize,
		ScenarioTagID:       uint32(ids[w.ScenarioIndex]),
		RandomNumber:        w.randomSalt(),
		TagCount:            uint32(len(w.Tags)),
		ModelPartCount:      vertexCount,
		ModelDataFileOffset: modelDataFileOffset,
		ModelPartCountAgain: vertexCount,
		VertexSize:          hek.ModelVertexSize,
		ModelDataSize:       modelDataSize,
		TagsLiteral:         hek.CacheFileTagsLit,
	}
	copy(tagData[0:layout.headerSize], tdh.Encode(pcVar))

	for i, ct := range w.Tags {
		rec := tagRecordFor(ct, ids[i], stringOffsets[i])
		off := layout.headerSize + uint32(i)*hek.TagRecordSize
		copy(tagData[off:off+hek.TagRecordSize], rec.Encode())
	}

	stringsStart := layout.headerSize + layout.arraySize
	copy(tagData[stringsStart:stringsStart+layout.stringsSize], stringTable)

	for _, ct := range w.Tags {
		if ct == nil || ct.Indexed || len(ct.Payload) == 0 {
			continue
		}
		off := ct.VirtualAddress - layout.base
		copy(tagData[off:off+uint32(len(ct.Payload))], ct.Payload)
	}

	var checksum uint32
	if forging {
		padding := forgeCRCPadding(tagData[:layout.size], *w.Params.ForgeCRC32)
		copy(tagData[layout.size:], padding)
		checksum = *w.Params.ForgeCRC32
	} else {
		checksum = crc32.ChecksumIEEE(tagData)
	}

	modelData := make([]byte, 0, modelDataSize)
	modelData = append(modelData, w.ModelVertices...)
	modelData = append(modelData, w.ModelIndices...)

	fileSize := uint32(hek.HeaderSize) + tagDataSize + modelDataSize
	for _, b := range assetBlobs {
		fileSize += uint32(len(b))
	}

	if uint64(fileSize) > hek.CacheFileMaximumFileLength {
		return nil, w.sink.fatalf(KindSizeBudgetExceeded, w.Params.Scenario,
			"cache file is %d bytes, exceeds the %d byte maximum for this engine target", fileSize, hek.CacheFileMaximumFileLength)
	}

	header := w.buildFileHeader(fileSize, tagDataSize, checksum)

	image := make([]byte, 0, fileSize)
	image = append(image, hek.EncodeHeader(header)...)
	image = append(image, tagData...)
	image = append(image, modelData...)
	for _, b := range assetBlobs {
		image = append(image, b...)
	}

	return image, nil
}

// assignTagIDs stamps every resolved tag's own id, derived from its slot
// in the workload's tag array the same way a reference to it was salted
// during Resolve, and returns the full id table (NullTagIDValue for slots
// that never resolved).
func (w *Workload) assignTagIDs() []hek.TagID {
	ids := make([]hek.TagID, len(w.Tags))
	for i, ct := range w.Tags {
		if ct == nil {
			ids[i] = hek.NullTagIDValue
			continue
		}
		id := hek.NewTagID(uint16(i), saltFor(i))
		ct.ID = id
		ids[i] = id
	}
	return ids
}

// buildStringTable concatenates every resolved tag's NUL-terminated path,
// in tag-array order, and returns each tag's path virtual address
// alongside it.
func (w *Workload) buildStringTable(layout tagDataLayout) ([]byte, []uint32) {
	table := make([]byte, 0, layout.stringsSize)
	offsets := make([]uint32, len(w.Tags))
	addr := layout.base + layout.headerSize + layout.arraySize
	for i, ct := range w.Tags {
		if ct == nil {
			continue
		}
		offsets[i] = addr
		table = append(table, []byte(ct.Path)...)
		table = append(table, 0)
		addr += uint32(len(ct.Path)) + 1
	}
	return table, offsets
}

// resolveAssetBlobRelocations patches every live asset blob's eventual
// file offset into its tag's payload placeholder and returns the blobs in
// the order they'll be appended to the image, starting at fileStart.
func (w *Workload) resolveAssetBlobRelocations(fileStart uint32) [][]byte {
	var blobs [][]byte
	offset := fileStart
	for _, ct := range w.Tags {
		if ct == nil || ct.Indexed {
			continue
		}
		for i, blob := range ct.AssetBlobs {
			slot := ct.AssetSlots[i]
			if blob == nil {
				// Partially indexed: the blob lives in a resource
				// map, not in this payload's placeholder slot.
				putPayloadUint32(ct.Payload, slot, assetIndexedSentinel)
				continue
			}
			putPayloadUint32(ct.Payload, slot, offset)
			blobs = append(blobs, blob)
			offset += uint32(len(blob))
		}
	}
	return blobs
}

func putPayloadUint32(payload []byte, slot uint32, v uint32) {
	if int(slot)+4 > len(payload) {
		return
	}
	payload[slot] = byte(v)
	payload[slot+1] = byte(v >> 8)
	payload[slot+2] = byte(v >> 16)
	payload[slot+3] = byte(v >> 24)
}

// tagRecordFor builds ct's tag-array record; nil slots (a dependency that
// never resolved) and indexed tags (externalised to a resource map) carry
// sentinel/repurposed fields rather than a real payload address.
func tagRecordFor(ct *CompiledTag, id hek.TagID, pathAddr uint32) hek.CacheFileTagDataTag {
	if ct == nil {
		return hek.CacheFileTagDataTag{
			PrimaryClass:   hek.NullClass,
			SecondaryClass: hek.NullClass,
			TertiaryClass:  hek.NullClass,
			TagID:          hek.NullTagID,
		}
	}

	rec := hek.CacheFileTagDataTag{
		PrimaryClass:   uint32(ct.Class),
		SecondaryClass: hek.NullClass,
		TertiaryClass:  hek.NullClass,
		TagID:          uint32(id),
		TagPathAddress: pathAddr,
	}
	parents := hek.Parents(ct.Class)
	if len(parents) > 0 {
		rec.SecondaryClass = uint32(parents[0])
	}
	if len(parents) > 1 {
		rec.TertiaryClass = uint32(parents[1])
	}
	if ct.Indexed {
		rec.Indexed = 1
		rec.TagDataAddress = ct.ResourceIndex
	} else {
		rec.TagDataAddress = ct.VirtualAddress
	}
	return rec
}

// randomSalt derives a stand-in for the tag-data header's "random
// number" field deterministically from the build's own inputs, since
// reproducible output (§5) rules out an actual source of randomness.
func (w *Workload) randomSalt() uint32 {
	return crc32.ChecksumIEEE([]byte(w.Params.Scenario)) ^ uint32(len(w.Tags))
}

// buildFileHeader assembles the cache file header for an uncompressed
// image; Compress re-stamps Engine/DecompressedFileSize/CompressionType
// for whichever compressed variant it produces.
func (w *Workload) buildFileHeader(fileSize, tagDataSize, checksum uint32) *hek.CacheFileHeader {
	head, foot := hek.CacheFileHead, hek.CacheFileFoot
	if w.Params.Engine == hek.CacheFileDemo || w.Params.Engine == hek.CacheFileDemoCompressed {
		head, foot = hek.CacheFileHeadDemo, hek.CacheFileFootDemo
	}
	return &hek.CacheFileHeader{
		HeadLiteral:   head,
		Engine:        w.Params.Engine,
		FileSize:      fileSize,
		TagDataOffset: hek.HeaderSize,
		TagDataSize:   tagDataSize,
		Name:          hek.NewTagString(w.Params.Scenario),
		Build:         hek.NewTagString(invaderBuildString),
		MapType:       w.CacheFileType,
		CRC32:         checksum,
		FootLiteral:   foot,
	}
}

// invaderBuildString stamps the build string every compiled map carries;
// the original game only ever checks this cosmetically.
const invaderBuildString = "01.00.00.0609"
