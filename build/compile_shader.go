package build

import "github.com/PumbleCorp/invader/hek"

// compileShader stamps the per-class shader_type discriminator and runs
// whichever small normalisation the concrete shader class requires, ported
// one function per class from the source's per-class pre_compile overrides.
func (w *Workload) compileShader(ct *CompiledTag) error {
	s, err := hek.DecodeShaderPayload(ct.Payload)
	if err != nil {
		return w.sink.fatalf(KindBrokenDependency, ct.Path, "malformed shader payload: %v", err)
	}

	switch ct.Class {
	case hek.ClassShaderEnvironment:
		compileShaderEnvironment(s)
	case hek.ClassShaderModel:
		w.compileShaderModel(ct, s)
	case hek.ClassShaderTransparentChicago:
		s.Type = hek.ShaderTypeTransparentChicago
	case hek.ClassShaderTransparentChicagoExtended:
		if w.Params.Engine == hek.CacheFileXbox {
			return w.sink.fatalf(KindEngineUnsupported, ct.Path, "shader_transparent_chicago_extended tags do not exist on the target engine")
		}
		s.Type = hek.ShaderTypeTransparentChicagoExtended
	case hek.ClassShaderTransparentWater:
		s.Type = hek.ShaderTypeTransparentWater
	case hek.ClassShaderTransparentGlass:
		s.Type = hek.ShaderTypeTransparentGlass
	case hek.ClassShaderTransparentMeter:
		s.Type = hek.ShaderTypeTransparentMeter
	case hek.ClassShaderTransparentPlasma:
		s.Type = hek.ShaderTypeTransparentPlasma
	case hek.ClassShaderTransparentGeneric:
		w.compileShaderTransparentGeneric(ct, s)
	}

	ct.Payload = s.Encode()
	return nil
}

func compileShaderEnvironment(s *hek.ShaderPayload) {
	s.Type = hek.ShaderTypeEnvironment
	s.BumpMapScaleXY[0] = s.BumpMapScale
	s.BumpMapScaleXY[1] = s.BumpMapScale
	if s.MaterialColorR == 0 && s.MaterialColorG == 0 && s.MaterialColorB == 0 {
		s.MaterialColorR, s.MaterialColorG, s.MaterialColorB = 1, 1, 1
	}
}

func (w *Workload) compileShaderModel(ct *CompiledTag, s *hek.ShaderPayload) {
	s.Type = hek.ShaderTypeModel
	s.Unknown = 1.0

	if s.ReflectionFalloffDistance >= s.ReflectionCutoffDistance &&
		s.ReflectionCutoffDistance != 0 && s.ReflectionFalloffDistance != 0 {
		w.sink.warn(KindEngineUnsupported, ct.Path,
			"reflection falloff is greater than or equal to cutoff, so both of these values were set to 0 (%f >= %f)",
			s.ReflectionFalloffDistance, s.ReflectionCutoffDistance)
		s.ReflectionCutoffDistance = 0
		s.ReflectionFalloffDistance = 0
	}
}

func (w *Workload) compileShaderTransparentGeneric(ct *CompiledTag, s *hek.ShaderPayload) {
	switch w.Params.Engine {
	case hek.CacheFileDemo, hek.CacheFileRetail, hek.CacheFileCustomEdition:
		w.sink.warn(KindWillNotRender, ct.Path, "shader_transparent_generic tags will not render on the target engine")
	}
	s.Type = hek.ShaderTypeTransparentGeneric
}
