// Package geo implements the small set of geometric queries the scenario
// pre-compile and command-list fixup steps need against a compiled BSP's
// node/plane/leaf tree: point containment and segment clipping.
package geo

import "github.com/PumbleCorp/invader/hek"

// Plane is a node splitting plane in point-normal form: a point p lies in
// front when p·Normal − D > 0.
type Plane struct {
	Normal hek.Vector3D
	D      float32
}

// Dot returns p·Normal − D, the signed distance used for front/back tests.
func (pl Plane) Dot(p hek.Point3D) float32 {
	return p.X*pl.Normal.X + p.Y*pl.Normal.Y + p.Z*pl.Normal.Z - pl.D
}

// Node is one interior BSP3D node: a plane and two flagged-int children.
// NullFlaggedInt (all-ones) means solid/outside; any other child with its
// MSB set is a leaf index; an MSB-clear value is the index of another
// Node.
type Node struct {
	Plane        Plane
	FrontChild   hek.FlaggedInt
	BackChild    hek.FlaggedInt
}

// Tree is a compiled BSP's node array, the minimum needed to answer
// point-in-leaf and segment-clip queries. Node 0 is the root.
type Tree struct {
	Nodes []Node
}

// PointInLeaf walks the node tree from the root and returns the leaf index
// containing p, or ok=false if p lands in solid/outside space.
func (t Tree) PointInLeaf(p hek.Point3D) (leaf uint32, ok bool) {
	if len(t.Nodes) == 0 {
		return 0, false
	}
	child := hek.FlaggedInt(0)
	for !child.IsSet() {
		n := t.Nodes[child.Index()]
		if n.Plane.Dot(p) > 0 {
			child = n.FrontChild
		} else {
			child = n.BackChild
		}
	}
	if child.IsNull() {
		return 0, false
	}
	return child.Index(), true
}

// SegmentHit is the result of a segment/BSP clip: the first point along
// a→b where the segment crosses a surface, which leaf it left, and which
// surface it crossed.
type SegmentHit struct {
	Point   hek.Point3D
	Leaf    uint32
	Surface uint32
	Hit     bool
}

// SegmentHitsBSP recursively clips segment a→b against the node tree,
// recursing the near side first so the earliest surface crossing wins.
// surfaceOf supplies the surface index associated with a node's splitting
// plane (node index → surface index), since the node tree alone doesn't
// carry that mapping.
func (t Tree) SegmentHitsBSP(a, b hek.Point3D, surfaceOf func(node uint32) uint32) SegmentHit {
	if len(t.Nodes) == 0 {
		return SegmentHit{}
	}
	return t.clip(hek.FlaggedInt(0), a, b, surfaceOf)
}

func (t Tree) clip(child hek.FlaggedInt, a, b hek.Point3D, surfaceOf func(uint32) uint32) SegmentHit {
	if child.IsNull() {
		return SegmentHit{}
	}
	if child.IsSet() {
		return SegmentHit{Leaf: child.Index(), Hit: false}
	}

	idx := child.Index()
	n := t.Nodes[idx]
	da := n.Plane.Dot(a)
	db := n.Plane.Dot(b)

	front := da > 0
	backOnly := db > 0 == front

	if backOnly {
		if front {
			return t.clip(n.FrontChild, a, b, surfaceOf)
		}
		return t.clip(n.BackChild, a, b, surfaceOf)
	}

	// Endpoints straddle the plane: split at the crossing point and
	// recurse the near side first so the earliest hit wins.
	tt := da / (da - db)
	mid := hek.Point3D{
		X: a.X + (b.X-a.X)*tt,
		Y: a.Y + (b.Y-a.Y)*tt,
		Z: a.Z + (b.Z-a.Z)*tt,
	}

	nearChild, farChild := n.BackChild, n.FrontChild
	if front {
		nearChild, farChild = n.FrontChild, n.BackChild
	}

	if hit := t.clip(nearChild, a, mid, surfaceOf); hit.Hit {
		return hit
	}
	if nearChild.IsSet() {
		return SegmentHit{Point: mid, Leaf: nearChild.Index(), Surface: surfaceOf(idx), Hit: true}
	}

	far := t.clip(farChild, mid, b, surfaceOf)
	if !far.Hit && farChild.IsSet() {
		return SegmentHit{Point: mid, Leaf: farChild.Index(), Surface: surfaceOf(idx), Hit: true}
	}
	return far
}

// Index maps scenario-local BSP ordinals (as referenced by an encounter's
// firing position or a command list point) to the workload's tag array
// index for that structure BSP.
type Index struct {
	bspToTagIndex []int
}

// NewIndex builds an Index from an ordered list of BSP tag indices, one
// per scenario-local BSP ordinal.
func NewIndex(tagIndices []int) *Index {
	return &Index{bspToTagIndex: tagIndices}
}

// TagIndex returns the workload tag array index for a scenario-local BSP
// ordinal, or ok=false if the ordinal is out of range.
func (i *Index) TagIndex(bspNumber uint32) (tagIndex int, ok bool) {
	if int(bspNumber) >= len(i.bspToTagIndex) {
		return 0, false
	}
	return i.bspToTagIndex[bspNumber], true
}
