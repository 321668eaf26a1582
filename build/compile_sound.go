package build

import "github.com/PumbleCorp/invader/hek"

// compileSound stages a sound tag's per-pitch-range, per-permutation
// sample data as owned asset blobs, same shape as compileBitmap; the
// generic RawTag decode has already split payload from asset blobs, one
// per permutation, so there's nothing left to restructure here and the
// tag is left as the resolver produced it.
func (w *Workload) compileSound(ct *CompiledTag) error {
	if ct.Class != hek.ClassSound {
		return nil
	}
	return nil
}
