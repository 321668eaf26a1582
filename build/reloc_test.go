package build

import (
	"encoding/binary"
	"testing"

	"github.com/PumbleCorp/invader/hek"
)

func TestResolveRelocations_PatchesResolvedReference(t *testing.T) {
	w := &Workload{}
	id := hek.NewTagID(3, 7)
	ct := &CompiledTag{
		Path:           "scenery\\tree\\tree",
		Payload:        make([]byte, 8),
		ReferenceSlots: []uint32{4},
		References:     []hek.TagReference{{Class: hek.ClassModel, Path: "scenery\\tree\\tree", ID: id}},
	}
	w.Tags = []*CompiledTag{ct}

	patched, broken := w.ResolveRelocations()
	if patched != 1 || broken != 0 {
		t.Fatalf("expected 1 patched, 0 broken, got patched=%d broken=%d", patched, broken)
	}
	got := binary.LittleEndian.Uint32(ct.Payload[4:])
	if hek.TagID(got) != id {
		t.Errorf("expected payload slot to hold %v, got %v", id, hek.TagID(got))
	}
}

func TestResolveRelocations_CountsNullReferenceAsBroken(t *testing.T) {
	w := &Workload{}
	ct := &CompiledTag{
		Path:           "scenery\\tree\\tree",
		Payload:        make([]byte, 8),
		ReferenceSlots: []uint32{0},
		References:     []hek.TagReference{{Class: hek.ClassModel, Path: "missing", ID: hek.NullTagIDValue}},
	}
	w.Tags = []*CompiledTag{ct}

	patched, broken := w.ResolveRelocations()
	if patched != 0 || broken != 1 {
		t.Fatalf("expected 0 patched, 1 broken, got patched=%d broken=%d", patched, broken)
	}
}
