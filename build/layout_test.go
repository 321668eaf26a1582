package build

import (
	"testing"

	"github.com/PumbleCorp/invader/hek"
)

func TestLayoutTagData_PacksSequentiallyAfterPrefix(t *testing.T) {
	w := &Workload{Params: Params{Engine: hek.CacheFileRetail}}
	w.Tags = []*CompiledTag{
		{Path: "a", Payload: make([]byte, 3)},
		{Path: "b", Payload: make([]byte, 5)},
		nil,
		{Path: "c", Indexed: true, Payload: nil},
	}

	layout, err := w.LayoutTagData()
	if err != nil {
		t.Fatalf("LayoutTagData: %v", err)
	}

	if w.Tags[0].VirtualAddress != layout.payloadStart {
		t.Errorf("expected tag a at payload start %#x, got %#x", layout.payloadStart, w.Tags[0].VirtualAddress)
	}
	wantB := alignUp4(layout.payloadStart + 3)
	if w.Tags[1].VirtualAddress != wantB {
		t.Errorf("expected tag b 4-byte aligned at %#x, got %#x", wantB, w.Tags[1].VirtualAddress)
	}
	if w.Tags[3].VirtualAddress != 0 {
		t.Errorf("expected indexed tag to get no virtual address, got %#x", w.Tags[3].VirtualAddress)
	}
	if layout.size == 0 {
		t.Error("expected non-zero tag-data section size")
	}
}

func TestLayoutTagData_ExceedsBudgetIsFatal(t *testing.T) {
	w := &Workload{Params: Params{Engine: hek.CacheFileDarkCirclet}}
	// Dark Circlet's budget is the rest of the 32-bit address space past
	// its base; pinning the base near the top leaves only a handful of
	// bytes of room, easy to overflow without allocating a huge payload.
	base := uint32(0xFFFFFFF0)
	w.Params.TagDataAddress = &base
	w.Tags = []*CompiledTag{{Path: "huge", Payload: make([]byte, 64)}}

	if _, err := w.LayoutTagData(); err == nil {
		t.Fatal("expected exceeding the tag-data memory budget to be fatal")
	}
}

func TestAlignUp4(t *testing.T) {
	cases := map[uint32]uint32{0: 0, 1: 4, 3: 4, 4: 4, 5: 8}
	for in, want := range cases {
		if got := alignUp4(in); got != want {
			t.Errorf("alignUp4(%d) = %d, want %d", in, got, want)
		}
	}
}
