package build

import (
	"errors"
	"testing"

	"github.com/PumbleCorp/invader/hek"
	"github.com/PumbleCorp/invader/internal/obslog"
)

func TestCompileShader_EnvironmentCopiesBumpScaleAndDefaultsBlackMaterial(t *testing.T) {
	w := NewWorkload(Params{}, obslog.Discard())
	s := &hek.ShaderPayload{BumpMapScale: 2.5}
	ct := &CompiledTag{Path: "test", Class: hek.ClassShaderEnvironment, Payload: s.Encode()}

	if err := w.compileShader(ct); err != nil {
		t.Fatalf("compileShader: %v", err)
	}
	got, _ := hek.DecodeShaderPayload(ct.Payload)
	if got.BumpMapScaleXY[0] != 2.5 || got.BumpMapScaleXY[1] != 2.5 {
		t.Errorf("expected bump_map_scale_xy copied from bump_map_scale, got %+v", got.BumpMapScaleXY)
	}
	if got.MaterialColorR != 1 || got.MaterialColorG != 1 || got.MaterialColorB != 1 {
		t.Errorf("expected default black material color set to white, got %f %f %f", got.MaterialColorR, got.MaterialColorG, got.MaterialColorB)
	}
	if got.Type != hek.ShaderTypeEnvironment {
		t.Errorf("expected shader_type stamped, got %d", got.Type)
	}
}

func TestCompileShader_ModelZeroesFalloffWhenGreaterEqualCutoff(t *testing.T) {
	w := NewWorkload(Params{}, obslog.Discard())
	s := &hek.ShaderPayload{ReflectionFalloffDistance: 10, ReflectionCutoffDistance: 5}
	ct := &CompiledTag{Path: "test", Class: hek.ClassShaderModel, Payload: s.Encode()}

	if err := w.compileShader(ct); err != nil {
		t.Fatalf("compileShader: %v", err)
	}
	got, _ := hek.DecodeShaderPayload(ct.Payload)
	if got.ReflectionFalloffDistance != 0 || got.ReflectionCutoffDistance != 0 {
		t.Errorf("expected both zeroed, got falloff=%f cutoff=%f", got.ReflectionFalloffDistance, got.ReflectionCutoffDistance)
	}
	if got.Unknown != 1.0 {
		t.Errorf("expected unknown=1.0, got %f", got.Unknown)
	}
}

func TestCompileShader_ChicagoExtendedAbortsOnXbox(t *testing.T) {
	w := NewWorkload(Params{Engine: hek.CacheFileXbox}, obslog.Discard())
	s := &hek.ShaderPayload{}
	ct := &CompiledTag{Path: "test", Class: hek.ClassShaderTransparentChicagoExtended, Payload: s.Encode()}

	err := w.compileShader(ct)
	if err == nil {
		t.Fatal("expected compileShader to abort on Xbox, got nil error")
	}
	var fatal *FatalError
	if !errors.As(err, &fatal) || fatal.Report.Kind != KindEngineUnsupported {
		t.Fatalf("expected a fatal EngineUnsupported error, got %v", err)
	}
}

func TestCompileShader_TransparentGenericWarnsOnRetail(t *testing.T) {
	w := NewWorkload(Params{Engine: hek.CacheFileRetail}, obslog.Discard())
	s := &hek.ShaderPayload{}
	ct := &CompiledTag{Path: "test", Class: hek.ClassShaderTransparentGeneric, Payload: s.Encode()}

	if err := w.compileShader(ct); err != nil {
		t.Fatalf("compileShader: %v", err)
	}
	if len(w.sink.reports) != 1 || w.sink.reports[0].Kind != KindWillNotRender {
		t.Fatalf("expected one WillNotRender report, got %+v", w.sink.reports)
	}
}
