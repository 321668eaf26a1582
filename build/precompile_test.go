package build

import (
	"testing"

	"github.com/PumbleCorp/invader/hek"
	"github.com/PumbleCorp/invader/internal/obslog"
)

func TestPreCompileAll_DispatchesByClassAndSkipsNil(t *testing.T) {
	w := NewWorkload(Params{}, obslog.Discard())

	shader := &hek.ShaderPayload{BumpMapScale: 4}
	w.Tags = []*CompiledTag{
		nil,
		{Path: "foo.shader_environment", Class: hek.ClassShaderEnvironment, Payload: shader.Encode()},
		{Path: "bar.unicode_string_list", Class: hek.ClassUnicodeStringList, Payload: encodeUnicodeStringList([]string{"Hi"})},
	}

	if err := w.PreCompileAll(); err != nil {
		t.Fatalf("PreCompileAll: %v", err)
	}

	got, err := hek.DecodeShaderPayload(w.Tags[1].Payload)
	if err != nil {
		t.Fatalf("DecodeShaderPayload: %v", err)
	}
	if got.BumpMapScaleXY[0] != 4 {
		t.Errorf("expected shader pre-compile to have run, got %+v", got)
	}

	strs, err := decodeUnicodeStringList(w.Tags[2].Payload)
	if err != nil {
		t.Fatalf("decodeUnicodeStringList: %v", err)
	}
	if len(strs) != 1 || strs[0] != "Hi" {
		t.Errorf("expected unicode string list pre-compile to have run, got %v", strs)
	}
}
