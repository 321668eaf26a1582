package build

import (
	"testing"

	"github.com/PumbleCorp/invader/hek"
	"github.com/PumbleCorp/invader/internal/obslog"
)

func simpleTriangle(indices ...uint16) hek.ModelPart {
	verts := make([]hek.ModelVertex, 0)
	max := uint16(0)
	for _, i := range indices {
		if i != hek.NullIndex && i >= max {
			max = i + 1
		}
	}
	for i := uint16(0); i < max; i++ {
		verts = append(verts, hek.ModelVertex{Position: hek.Point3D{X: float32(i)}})
	}
	return hek.ModelPart{Triangles: indices, UncompressedVertices: verts}
}

func TestCompileGBXModel_LODCutoffsSwap(t *testing.T) {
	m := &hek.GBXModel{
		SuperLowDetailCutoff:  1,
		LowDetailCutoff:       2,
		HighDetailCutoff:      3,
		SuperHighDetailCutoff: 4,
	}
	w := NewWorkload(Params{}, obslog.Discard())
	ct := &CompiledTag{Path: "test", Payload: m.Encode()}

	if err := w.compileGBXModel(ct); err != nil {
		t.Fatalf("compileGBXModel: %v", err)
	}

	got, err := hek.DecodeGBXModel(ct.Payload)
	if err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if got.SuperLowDetailCutoff != 4 || got.LowDetailCutoff != 3 || got.HighDetailCutoff != 2 || got.SuperHighDetailCutoff != 1 {
		t.Fatalf("cutoffs not swapped: %+v", got)
	}
}

func TestCompileModelPart_TrimsTrailingNullIndices(t *testing.T) {
	w := NewWorkload(Params{}, obslog.Discard())
	part := simpleTriangle(0, 1, 2, hek.NullIndex, hek.NullIndex)
	ct := &CompiledTag{Path: "test"}

	if err := w.compileModelPart(ct, &part); err != nil {
		t.Fatalf("compileModelPart: %v", err)
	}
	if len(part.Triangles) != 3 {
		t.Fatalf("expected trailing NULL_INDEX trimmed, got %v", part.Triangles)
	}
	if part.TriangleCount != 1 {
		t.Fatalf("expected TriangleCount 1, got %d", part.TriangleCount)
	}
}

func TestCompileModelPart_OutOfRangeIndexIsFatal(t *testing.T) {
	w := NewWorkload(Params{}, obslog.Discard())
	part := hek.ModelPart{
		Triangles:            []uint16{0, 1, 5},
		UncompressedVertices: []hek.ModelVertex{{}, {}},
	}
	ct := &CompiledTag{Path: "test"}

	if err := w.compileModelPart(ct, &part); err == nil {
		t.Fatal("expected fatal error for out-of-range vertex index")
	}
}

func TestCompileModelPart_TooFewIndicesIsFatal(t *testing.T) {
	w := NewWorkload(Params{}, obslog.Discard())
	part := hek.ModelPart{Triangles: []uint16{0, hek.NullIndex}}
	ct := &CompiledTag{Path: "test"}

	if err := w.compileModelPart(ct, &part); err == nil {
		t.Fatal("expected fatal error for too few triangle indices")
	}
}

func TestDedupModelPart_IdenticalPartsShareIndexRange(t *testing.T) {
	w := NewWorkload(Params{}, obslog.Discard())
	partA := simpleTriangle(0, 1, 2)
	partB := simpleTriangle(0, 1, 2)

	w.dedupModelPart(&partA)
	afterFirst := len(w.ModelIndices)
	w.dedupModelPart(&partB)

	if len(w.ModelIndices) != afterFirst {
		t.Fatalf("expected identical part to be deduplicated, index buffer grew from %d to %d", afterFirst, len(w.ModelIndices))
	}
}

func TestPermutationNumberFromName(t *testing.T) {
	cases := map[string]uint16{
		"default":       0,
		"left-arm-0":    0,
		"left-arm-3":    3,
		"left-arm-x":    0,
		"no-hyphen-end-": 0,
	}
	for name, want := range cases {
		if got := permutationNumberFromName(name); got != want {
			t.Errorf("permutationNumberFromName(%q) = %d, want %d", name, got, want)
		}
	}
}

func TestCollateModelMarkers_GroupsByNameAndSortsAlphabetically(t *testing.T) {
	m := &hek.GBXModel{
		Regions: []hek.ModelRegion{
			{
				Name: hek.NewTagString("default"),
				Permutations: []hek.ModelPermutation{
					{
						Name: hek.NewTagString("default"),
						Markers: []hek.ModelMarker{
							{Name: hek.NewTagString("zeta")},
							{Name: hek.NewTagString("alpha")},
							{Name: hek.NewTagString("alpha")},
						},
					},
				},
			},
		},
	}

	out := collateModelMarkers(m)
	if len(out) != 3 {
		t.Fatalf("expected 3 collated marker instances, got %d", len(out))
	}
	if out[0].Name.String() != "alpha" || out[1].Name.String() != "alpha" || out[2].Name.String() != "zeta" {
		t.Fatalf("expected alphabetical grouping, got %v, %v, %v", out[0].Name, out[1].Name, out[2].Name)
	}
}

func TestCheckCompressedVertexCounts_WarnsOnMismatch(t *testing.T) {
	w := NewWorkload(Params{}, obslog.Discard())
	ct := &CompiledTag{Path: "test"}
	m := &hek.GBXModel{
		Regions: []hek.ModelRegion{{
			Permutations: []hek.ModelPermutation{{
				Parts: []hek.ModelPart{{
					UncompressedVertices:  []hek.ModelVertex{{}, {}},
					CompressedVertexCount: 3,
				}},
			}},
		}},
	}

	w.checkCompressedVertexCounts(ct, m)

	if len(w.sink.reports) != 1 || w.sink.reports[0].Kind != KindVertexCountMismatch {
		t.Fatalf("expected one VertexCountMismatch report, got %+v", w.sink.reports)
	}
}

func TestCheckCompressedVertexCounts_ZeroCompressedCountIsFine(t *testing.T) {
	w := NewWorkload(Params{}, obslog.Discard())
	ct := &CompiledTag{Path: "test"}
	m := &hek.GBXModel{
		Regions: []hek.ModelRegion{{
			Permutations: []hek.ModelPermutation{{
				Parts: []hek.ModelPart{{
					UncompressedVertices:  []hek.ModelVertex{{}, {}},
					CompressedVertexCount: 0,
				}},
			}},
		}},
	}

	w.checkCompressedVertexCounts(ct, m)

	if len(w.sink.reports) != 0 {
		t.Fatalf("expected no reports, got %+v", w.sink.reports)
	}
}

func TestExoduxState_FirstPartZonerSeedsCompatibilityBits(t *testing.T) {
	s := exoduxState{}
	part := &hek.ModelPart{Zoner: true, CompatibilityBits: 0}

	s.apply(part)

	const want = 0x20706156
	if part.CompatibilityBits != want {
		t.Fatalf("CompatibilityBits = %#08x, want %#08x", part.CompatibilityBits, want)
	}
}

func TestBakeModelNodes_ChildInheritsParentTransform(t *testing.T) {
	m := &hek.GBXModel{
		Nodes: []hek.ModelNode{
			{NextSiblingIndex: hek.NullIndex, FirstChildIndex: 1, ParentIndex: hek.NullIndex},
			{NextSiblingIndex: hek.NullIndex, FirstChildIndex: hek.NullIndex, ParentIndex: 0, DefaultTranslation: hek.Point3D{X: 1}},
		},
	}
	bakeModelNodes(m)

	if m.Nodes[0].Scale != 1.0 || m.Nodes[1].Scale != 1.0 {
		t.Fatalf("expected both nodes baked with scale 1.0, got %+v", m.Nodes)
	}
}
