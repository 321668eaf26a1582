package build

import (
	"testing"

	"github.com/PumbleCorp/invader/hek"
	"github.com/PumbleCorp/invader/internal/obslog"
)

func TestCompileUnicodeStringList_RoundTrips(t *testing.T) {
	w := NewWorkload(Params{}, obslog.Discard())
	ct := &CompiledTag{
		Path:    "test",
		Class:   hek.ClassUnicodeStringList,
		Payload: encodeUnicodeStringList([]string{"Accept", "Cancel", ""}),
	}

	if err := w.compileUnicodeStringList(ct); err != nil {
		t.Fatalf("compileUnicodeStringList: %v", err)
	}

	got, err := decodeUnicodeStringList(ct.Payload)
	if err != nil {
		t.Fatalf("decodeUnicodeStringList: %v", err)
	}
	want := []string{"Accept", "Cancel", ""}
	if len(got) != len(want) {
		t.Fatalf("expected %d strings, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("string %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestCompileUnicodeStringList_IgnoresOtherClasses(t *testing.T) {
	w := NewWorkload(Params{}, obslog.Discard())
	ct := &CompiledTag{Path: "test", Class: hek.ClassBitmap, Payload: []byte{1, 2, 3}}

	if err := w.compileUnicodeStringList(ct); err != nil {
		t.Fatalf("compileUnicodeStringList: %v", err)
	}
	if len(ct.Payload) != 3 {
		t.Errorf("expected payload untouched for non-matching class, got %v", ct.Payload)
	}
}

func TestDecodeUnicodeStringList_TruncatedInputFails(t *testing.T) {
	if _, err := decodeUnicodeStringList([]byte{1, 0, 0, 0, 5, 0}); err == nil {
		t.Fatal("expected error decoding truncated unicode string list")
	}
}
