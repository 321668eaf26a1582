package build

import "github.com/PumbleCorp/invader/hek"

// compileBitmap stages a bitmap tag's pixel data as an owned asset blob:
// the payload keeps its header fields, the asset blob travels separately
// and is appended to the cache file during assembly, the way icon.go
// stages icon pixel data apart from the PE resource directory entry that
// names it.
func (w *Workload) compileBitmap(ct *CompiledTag) error {
	if ct.Class != hek.ClassBitmap {
		return nil
	}
	// Asset blobs were already split out of the header payload by
	// RawTag's generic decode (AssetBlobs/AssetSlots); pre-compile has
	// nothing further to normalise for bitmaps beyond what the resource
	// indexer (C6) and assembler (C7) do with those blobs later.
	return nil
}
