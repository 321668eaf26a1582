package build

import (
	"github.com/PumbleCorp/invader/hek"
)

// tingSoundPath is the one tag the resolver quietly patches: its gain is
// scaled by tingGainScale on every target except Dark Circlet, a holdover
// from the original game's own build tool rather than anything the
// scenario or sound tag itself declares.
const tingSoundPath = "sound\\sfx\\ui\\ting"

// Resolve walks the dependency graph starting from Params.Scenario to a
// fixed point: load a tag, decode its reference table, reserve a slot for
// every referenced tag not yet seen, and repeat until no loader slot is
// left unprocessed. The ting-volume quirk runs once the fixed point is
// reached, after every tag (including ting.sound, if present) is loaded.
func (w *Workload) Resolve() error {
	scenarioIdx, err := w.loader.Reserve(w.Params.Scenario, hek.ClassScenario)
	if err != nil {
		return w.sink.fatalf(KindTagNotFound, w.Params.Scenario, "%v", err)
	}
	w.ScenarioIndex = scenarioIdx

	processed := 0
	for processed < w.loader.Len() {
		raw := w.loader.Get(processed)
		processed++
		if raw == nil {
			// Reserve failed for this slot; already reported by the
			// caller that requested it. Treat as broken and move on.
			continue
		}

		decoded, err := hek.DecodeRawTag(raw.Class, raw.Reader.Bytes())
		if err != nil {
			w.sink.warn(KindBrokenDependency, raw.Path, "malformed tag data: %v", err)
			continue
		}

		ct := &CompiledTag{
			Path:           raw.Path,
			Class:          raw.Class,
			Payload:        decoded.Payload,
			ReferenceSlots: decoded.ReferenceSlots,
			References:     decoded.References,
			AssetBlobs:     decoded.AssetBlobs,
			AssetSlots:     decoded.AssetSlots,
		}
		w.setTag(processed-1, ct)

		for i := range ct.References {
			ref := &ct.References[i]
			if ref.Empty() {
				continue
			}
			childIdx, err := w.loader.Reserve(ref.Path, resolveDeclaredClass(ref.Class))
			if err != nil {
				w.sink.warn(KindTagNotFound, ref.Path, "broken dependency of %s: %v", raw.Path, err)
				continue
			}
			ref.ID = hek.NewTagID(uint16(childIdx), saltFor(childIdx))
		}
	}

	w.scenarioCacheFileType()
	w.modifyTingTag()
	w.buildBSPIndex()

	return nil
}

// resolveDeclaredClass probes the loader for whichever concrete class
// under wanted's chain actually exists on disk; the generic reference
// table only records what was declared, not which concrete class was
// authored, so the loader's own extension probing does the real work —
// this just hands back wanted unchanged since RawTag's on-disk extension
// is keyed by declared class today (a tag can only be authored as one
// concrete class at a time).
func resolveDeclaredClass(wanted hek.TagClass) hek.TagClass {
	return wanted
}

// saltFor derives this build's stable salt for a tag slot. It only needs
// to be unique per build, not globally unique, since TagIDs never survive
// across builds.
func saltFor(slot int) uint16 {
	return uint16((slot*2654435761 + 1) & 0xFFFF)
}

func (w *Workload) setTag(idx int, ct *CompiledTag) {
	for len(w.Tags) <= idx {
		w.Tags = append(w.Tags, nil)
	}
	w.Tags[idx] = ct
}

// scenarioCacheFileType inspects the scenario's own declared type, stored
// by convention as the first two payload bytes (a little-endian uint16
// matching hek.CacheFileType), since the scenario class is the sole
// source of truth for the cache file's overall type.
func (w *Workload) scenarioCacheFileType() {
	scenario := w.Tags[w.ScenarioIndex]
	if scenario == nil || len(scenario.Payload) < 2 {
		w.CacheFileType = hek.CacheFileMultiplayer
		return
	}
	w.CacheFileType = hek.CacheFileType(scenario.Payload[0]) | hek.CacheFileType(scenario.Payload[1])<<8
}

// tingGainScale is the fixed factor non-Dark-Circlet targets scale
// ting.sound's gain by; Dark Circlet ships the source volume unmodified.
const tingGainScale float32 = 0.5

// modifyTingTag scales ting.sound's gain field by tingGainScale, if the
// map happens to reference it, for every target except Dark Circlet. The
// gain lives as a little-endian float32 at a fixed 4-byte offset within
// the sound tag's payload (offset 0, by this toolchain's own sound tag
// layout).
func (w *Workload) modifyTingTag() {
	if w.Params.Engine == hek.CacheFileDarkCirclet {
		return
	}
	for _, ct := range w.Tags {
		if ct == nil || ct.Class != hek.ClassSound || ct.Path != tingSoundPath {
			continue
		}
		if len(ct.Payload) < 4 {
			return
		}
		gain := hek.ReadFloat32LE(ct.Payload, 0) * tingGainScale
		hek.PutFloat32LE(ct.Payload, 0, gain)
		return
	}
}

// buildBSPIndex collects every scenario_structure_bsp tag referenced by
// the scenario, in reference order, so geo.Index can map scenario-local
// BSP ordinals to workload tag indices.
func (w *Workload) buildBSPIndex() {
	scenario := w.Tags[w.ScenarioIndex]
	if scenario == nil {
		return
	}
	for _, ref := range scenario.References {
		if ref.Class != hek.ClassScenarioStructureBSP || ref.ID.IsNull() {
			continue
		}
		w.bspIndex = append(w.bspIndex, int(ref.ID.Index()))
	}
}
