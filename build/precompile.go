package build

import "github.com/PumbleCorp/invader/hek"

// PreCompileAll runs the per-class pre-compile pass (C5) over every
// resolved tag in the workload. Each pre-compiler decodes its class's
// payload from the generic RawTag shape into engine-ready form,
// normalises fields the tool exports but the engine computes, and
// re-encodes back into CompiledTag.Payload; anything with no
// class-specific pre-compiler is left exactly as the resolver produced
// it. FixScenarioGeometry runs separately afterward, once every BSP in
// the map has a finished, laid-out leaf tree to query.
func (w *Workload) PreCompileAll() error {
	for _, ct := range w.Tags {
		if ct == nil {
			continue
		}

		var err error
		switch {
		case ct.Class == hek.ClassGBXModel:
			err = w.compileGBXModel(ct)
		case ct.Class == hek.ClassScenario:
			err = w.compileScenario(ct)
		case ct.Class == hek.ClassScenarioStructureBSP:
			err = w.compileBSP(ct)
		case hek.MatchesReference(hek.ClassShader, ct.Class):
			err = w.compileShader(ct)
		case ct.Class == hek.ClassBitmap:
			err = w.compileBitmap(ct)
		case ct.Class == hek.ClassSound:
			err = w.compileSound(ct)
		case ct.Class == hek.ClassUnicodeStringList:
			err = w.compileUnicodeStringList(ct)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
