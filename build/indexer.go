package build

import (
	"github.com/PumbleCorp/invader/hek"
	"github.com/PumbleCorp/invader/resourcemap"
)

// IndexStats tallies what IndexResources did, for the CLI's build
// summary.
type IndexStats struct {
	Indexed   int // tags fully externalised (payload replaced by a resource index)
	Partial   int // tags whose asset blobs externalised but whose header payload stayed
	Potential int // tags that matched no resource map entry by payload or asset blob, with neither AlwaysIndexTags nor an index hint applying to them
	BytesFreed int
}

// IndexResources runs the resource indexer (C6): for every bitmap,
// sound, and localized-string tag, try to externalise it against the
// external resource maps so the assembler doesn't have to carry its
// payload and asset blobs in the cache file.
//
// Dark Circlet targets and builds run with --no-external-tags skip this
// entirely, since neither has resource maps to index against.
func (w *Workload) IndexResources() (IndexStats, error) {
	var stats IndexStats
	if !w.Params.usesExternalResources() {
		return stats, nil
	}

	hints := make(map[string]bool, len(w.Params.WithIndex))
	for _, h := range w.Params.WithIndex {
		hints[h.Path] = true
	}

	for _, ct := range w.Tags {
		if ct == nil || ct.Indexed {
			continue
		}
		kind, ok := resourceMapTypeForClass(ct.Class)
		if !ok {
			continue
		}
		m := w.resources[kind]
		if m == nil {
			continue
		}

		alwaysIndex := w.Params.AlwaysIndexTags || hints[ct.Path]
		if alwaysIndex {
			if idx, ok := m.LookupByPath(ct.Path); ok {
				w.externaliseTag(ct, idx, &stats)
				continue
			}
		}

		if idx, ok := m.LookupByPayload(ct.Payload); ok {
			w.externaliseTag(ct, idx, &stats)
			continue
		}

		if partiallyMatched := w.indexMatchingAssetBlobs(ct, m); partiallyMatched {
			stats.Partial++
		} else if !alwaysIndex {
			stats.Potential++
		}
	}

	return stats, nil
}

// externaliseTag drops ct's payload and asset blobs in favour of a
// resource-map reference.
func (w *Workload) externaliseTag(ct *CompiledTag, idx int, stats *IndexStats) {
	stats.Indexed++
	stats.BytesFreed += len(ct.Payload)
	for _, b := range ct.AssetBlobs {
		stats.BytesFreed += len(b)
	}
	ct.Indexed = true
	ct.ResourceIndex = uint32(idx)
	ct.Payload = nil
	ct.AssetBlobs = nil
	ct.AssetSlots = nil
}

// indexMatchingAssetBlobs drops each of ct's asset blobs that byte-for-byte
// matches a resource map entry's payload even though the tag's header
// payload itself does not (a "partial" index): the header stays in the
// cache file, the bulky pixel/sample data doesn't.
func (w *Workload) indexMatchingAssetBlobs(ct *CompiledTag, m *resourcemap.Map) bool {
	if len(ct.AssetBlobs) == 0 {
		return false
	}
	matched := false
	for i, blob := range ct.AssetBlobs {
		if _, ok := m.LookupByPayload(blob); ok {
			ct.AssetBlobs[i] = nil
			matched = true
		}
	}
	return matched
}

func resourceMapTypeForClass(c hek.TagClass) (resourcemap.Type, bool) {
	switch c {
	case hek.ClassBitmap:
		return resourcemap.TypeBitmaps, true
	case hek.ClassSound:
		return resourcemap.TypeSounds, true
	case hek.ClassUnicodeStringList:
		return resourcemap.TypeLoc, true
	}
	return 0, false
}
