package geo

import (
	"testing"

	"github.com/PumbleCorp/invader/hek"
	"github.com/stretchr/testify/require"
)

func leafFlag(idx uint32) hek.FlaggedInt {
	return hek.FlaggedInt(0x80000000 | idx)
}

func TestPointInLeaf(t *testing.T) {
	tr := Tree{Nodes: []Node{
		{
			Plane:      Plane{Normal: hek.Vector3D{X: 1}, D: 0},
			FrontChild: hek.FlaggedInt(1),
			BackChild:  leafFlag(0),
		},
		{
			Plane:      Plane{Normal: hek.Vector3D{Y: 1}, D: 0},
			FrontChild: leafFlag(1),
			BackChild:  leafFlag(2),
		},
	}}

	tests := []struct {
		name    string
		p       hek.Point3D
		wantOK  bool
		wantLeaf uint32
	}{
		{"back half is leaf 0", hek.Point3D{X: -1, Y: 5}, true, 0},
		{"front-front is leaf 1", hek.Point3D{X: 1, Y: 1}, true, 1},
		{"front-back is leaf 2", hek.Point3D{X: 1, Y: -1}, true, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			leaf, ok := tr.PointInLeaf(tt.p)
			require.Equal(t, tt.wantOK, ok)
			require.Equal(t, tt.wantLeaf, leaf)
		})
	}
}

func TestPointInLeaf_EmptyTree(t *testing.T) {
	var tr Tree
	_, ok := tr.PointInLeaf(hek.Point3D{})
	require.False(t, ok)
}

func TestSegmentHitsBSP_StraddlingSegmentReturnsNearestCrossing(t *testing.T) {
	tr := Tree{Nodes: []Node{
		{
			Plane:      Plane{Normal: hek.Vector3D{X: 1}, D: 0},
			FrontChild: leafFlag(1),
			BackChild:  leafFlag(0),
		},
	}}

	surfaceOf := func(node uint32) uint32 { return node + 100 }

	hit := tr.SegmentHitsBSP(hek.Point3D{X: -2}, hek.Point3D{X: 2}, surfaceOf)
	require.True(t, hit.Hit)
	require.InDelta(t, 0, hit.Point.X, 1e-6)
	require.Equal(t, uint32(100), hit.Surface)
}

func TestSegmentHitsBSP_SameSideDoesNotCross(t *testing.T) {
	tr := Tree{Nodes: []Node{
		{
			Plane:      Plane{Normal: hek.Vector3D{X: 1}, D: 0},
			FrontChild: leafFlag(1),
			BackChild:  leafFlag(0),
		},
	}}
	surfaceOf := func(node uint32) uint32 { return node }

	hit := tr.SegmentHitsBSP(hek.Point3D{X: 1}, hek.Point3D{X: 2}, surfaceOf)
	require.False(t, hit.Hit)
	require.Equal(t, uint32(1), hit.Leaf)
}

func TestIndex_TagIndex(t *testing.T) {
	idx := NewIndex([]int{5, 9, 2})

	got, ok := idx.TagIndex(1)
	require.True(t, ok)
	require.Equal(t, 9, got)

	_, ok = idx.TagIndex(10)
	require.False(t, ok)
}
