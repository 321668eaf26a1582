package build

import (
	"encoding/binary"

	"github.com/PumbleCorp/invader/hek"
)

// ResolveRelocations patches every resolved tag reference's id into its
// payload placeholder. It runs once, after Resolve has assigned every
// reachable tag a TagID and pre-compile has finished rewriting payloads,
// rather than writing ids inline while each tag's reference table is
// being walked. Collecting the whole set first means a reference that
// points forward to a tag not yet visited is never a problem, and a
// broken dependency shows up as one counted miss instead of a partially
// patched payload.
//
// Class-specific pre-compilers (model, scenario, shader, BSP) own their
// payload layout end to end and carry no inline reference placeholders,
// so this pass skips those tags and is a no-op for them.
func (w *Workload) ResolveRelocations() (patched, broken int) {
	for _, ct := range w.Tags {
		if ct == nil {
			continue
		}
		switch {
		case ct.Class == hek.ClassGBXModel, ct.Class == hek.ClassScenario,
			ct.Class == hek.ClassScenarioStructureBSP, hek.MatchesReference(hek.ClassShader, ct.Class):
			continue
		}
		for i, slot := range ct.ReferenceSlots {
			ref := ct.References[i]
			if ref.ID.IsNull() {
				broken++
				continue
			}
			if int(slot)+4 > len(ct.Payload) {
				broken++
				continue
			}
			binary.LittleEndian.PutUint32(ct.Payload[slot:], uint32(ref.ID))
			patched++
		}
	}
	return patched, broken
}
