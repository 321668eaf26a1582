package build

import (
	"encoding/binary"
	"testing"

	"github.com/PumbleCorp/invader/hek"
	"github.com/PumbleCorp/invader/internal/obslog"
)

// twoLeafBSPPayload builds a minimal BSP payload with a single splitting
// plane at x=0: front of the plane is leaf 0, back is leaf 1.
func twoLeafBSPPayload() []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, 1)

	node := make([]byte, bspNodeRecordSize)
	hek.PutFloat32LE(node, 0, 1) // normal.X
	hek.PutFloat32LE(node, 4, 0)
	hek.PutFloat32LE(node, 8, 0)
	hek.PutFloat32LE(node, 12, 0) // D
	binary.LittleEndian.PutUint32(node[16:], uint32(hek.NewFlaggedIndex(0)))
	binary.LittleEndian.PutUint32(node[20:], uint32(hek.NewFlaggedIndex(1)))

	return append(buf, node...)
}

func TestFixScenarioGeometry_AssignsLeafToFiringPosition(t *testing.T) {
	w := NewWorkload(Params{}, obslog.Discard())

	scenario := &hek.Scenario{
		Encounters: []hek.Encounter{
			{
				Name: hek.NewTagString("ambush"),
				FiringPositions: []hek.FiringPosition{
					{Position: hek.Point3D{X: 5}, Leaf: hek.NullFlaggedInt},
					{Position: hek.Point3D{X: -5}, Leaf: hek.NullFlaggedInt},
				},
			},
		},
	}

	scenarioTag := &CompiledTag{Path: "levels\\test\\test", Class: hek.ClassScenario, Payload: scenario.Encode()}
	bspTag := &CompiledTag{Path: "levels\\test\\test_bsp", Class: hek.ClassScenarioStructureBSP, Payload: twoLeafBSPPayload()}

	w.Tags = []*CompiledTag{scenarioTag, bspTag}
	w.ScenarioIndex = 0
	w.bspIndex = []int{1}

	if err := w.FixScenarioGeometry(); err != nil {
		t.Fatalf("FixScenarioGeometry: %v", err)
	}

	got, err := hek.DecodeScenario(scenarioTag.Payload)
	if err != nil {
		t.Fatalf("decode result: %v", err)
	}
	fps := got.Encounters[0].FiringPositions
	if !fps[0].Leaf.IsSet() || fps[0].Leaf.Index() != 0 {
		t.Errorf("expected front position in leaf 0, got %v", fps[0].Leaf)
	}
	if !fps[1].Leaf.IsSet() || fps[1].Leaf.Index() != 1 {
		t.Errorf("expected back position in leaf 1, got %v", fps[1].Leaf)
	}
}

func TestDecodeBSPTree_RoundTripsPointInLeaf(t *testing.T) {
	tree, err := decodeBSPTree(twoLeafBSPPayload())
	if err != nil {
		t.Fatalf("decodeBSPTree: %v", err)
	}
	leaf, ok := tree.PointInLeaf(hek.Point3D{X: 1})
	if !ok || leaf != 0 {
		t.Fatalf("expected leaf 0, got %d ok=%v", leaf, ok)
	}
}

func TestDecodeBSPTree_TruncatedInputFails(t *testing.T) {
	if _, err := decodeBSPTree([]byte{1, 2, 3}); err == nil {
		t.Fatal("expected error for truncated bsp payload")
	}
}
