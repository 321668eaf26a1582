package hek

import (
	"encoding/binary"
	"errors"
)

// ErrMalformedModel is returned when a gbxmodel payload's nested arrays
// don't fit the buffer they're decoded from.
var ErrMalformedModel = errors.New("hek: malformed model payload")

// ModelVertex is one uncompressed vertex record. Pre-compile appends
// every part's records to the global vertex array; the records are not
// deduplicated.
type ModelVertex struct {
	Position   Point3D
	Normal     Vector3D
	Node0Index uint16
	Node1Index uint16
	Node0Weight float32
}

const modelVertexSize = 3*4 + 3*4 + 2 + 2 + 4

// ModelVertexSize is the on-disk size of one uncompressed vertex record,
// the stride the engine uses to walk the model-data vertex pool.
const ModelVertexSize = modelVertexSize

// Encode serializes the vertex to its little-endian on-disk form.
func (v ModelVertex) Encode() []byte {
	return v.encode()
}

func (v ModelVertex) encode() []byte {
	b := make([]byte, modelVertexSize)
	PutFloat32LE(b, 0, v.Position.X)
	PutFloat32LE(b, 4, v.Position.Y)
	PutFloat32LE(b, 8, v.Position.Z)
	PutFloat32LE(b, 12, v.Normal.X)
	PutFloat32LE(b, 16, v.Normal.Y)
	PutFloat32LE(b, 20, v.Normal.Z)
	binary.LittleEndian.PutUint16(b[24:], v.Node0Index)
	binary.LittleEndian.PutUint16(b[26:], v.Node1Index)
	PutFloat32LE(b, 28, v.Node0Weight)
	return b
}

func decodeModelVertex(b []byte) ModelVertex {
	return ModelVertex{
		Position:    Point3D{X: ReadFloat32LE(b, 0), Y: ReadFloat32LE(b, 4), Z: ReadFloat32LE(b, 8)},
		Normal:      Vector3D{X: ReadFloat32LE(b, 12), Y: ReadFloat32LE(b, 16), Z: ReadFloat32LE(b, 20)},
		Node0Index:  binary.LittleEndian.Uint16(b[24:]),
		Node1Index:  binary.LittleEndian.Uint16(b[26:]),
		Node0Weight: ReadFloat32LE(b, 28),
	}
}

// ModelMarker is one marker instance, either authored inline on a
// permutation (before pre-compile collates them) or already collated
// into the model-level array (after pre-compile).
type ModelMarker struct {
	Name              TagString
	NodeIndex         uint16
	PermutationIndex  uint16
	RegionIndex       uint16
	Position          Point3D
	Rotation          Quaternion
}

// ModelPart is one geometry part's triangle list and (pre-dedup)
// uncompressed vertex list.
type ModelPart struct {
	Triangles            []uint16 // flattened vertex-index triples, NULL_INDEX-padded
	UncompressedVertices []ModelVertex

	// Zoner and CompatibilityBits are carried through from the authored
	// tag unchanged except for the bitmask recalibration pre-compile
	// applies to CompatibilityBits.
	Zoner             bool
	CompatibilityBits uint32

	// CompressedVertexCount is the authored count of this part's
	// compressed vertices. This toolchain never decodes the compressed
	// vertices themselves (only the uncompressed pool feeds geometry
	// pre-compile), so the count rides along bare; pre-compile checks it
	// against len(UncompressedVertices) per the authored tag's own
	// consistency rule.
	CompressedVertexCount uint32

	// TriangleCount is filled in by pre-compile.
	TriangleCount uint32
}

// ModelPermutation is one region permutation: its name (from which
// PermutationNumber is derived), inline markers, and the parts making up
// its geometry.
type ModelPermutation struct {
	Name              TagString
	PermutationNumber uint16
	Markers           []ModelMarker
	Parts             []ModelPart
}

// ModelRegion groups permutations under a named region.
type ModelRegion struct {
	Name         TagString
	Permutations []ModelPermutation
}

// ModelNode is one node in the model's skeletal hierarchy.
type ModelNode struct {
	Name             TagString
	NextSiblingIndex uint16
	FirstChildIndex  uint16
	ParentIndex      uint16
	DefaultTranslation Point3D
	DefaultRotation    Quaternion

	// Baked is filled in by pre-compile's node walk: the absolute
	// rotation/translation/scale composed from the root, ready for
	// runtime skinning.
	Scale       float32
	Rotation    Matrix3x3
	Translation Point3D
}

// GBXModel is the decoded form of a gbxmodel tag's class-specific
// payload.
type GBXModel struct {
	SuperLowDetailCutoff  float32
	LowDetailCutoff       float32
	HighDetailCutoff      float32
	SuperHighDetailCutoff float32

	Nodes   []ModelNode
	Markers []ModelMarker // populated only after pre-compile collation
	Regions []ModelRegion
}

// DecodeGBXModel parses a gbxmodel tag's Payload bytes (the class-specific
// body left after RawTag's generic reference/asset tables are stripped).
func DecodeGBXModel(data []byte) (*GBXModel, error) {
	pos := 0
	need := func(n int) bool { return pos+n <= len(data) }

	if !need(16) {
		return nil, ErrMalformedModel
	}
	m := &GBXModel{
		SuperLowDetailCutoff:  ReadFloat32LE(data, pos),
		LowDetailCutoff:       ReadFloat32LE(data, pos+4),
		HighDetailCutoff:      ReadFloat32LE(data, pos+8),
		SuperHighDetailCutoff: ReadFloat32LE(data, pos+12),
	}
	pos += 16

	readU16 := func() (uint16, bool) {
		if !need(2) {
			return 0, false
		}
		v := binary.LittleEndian.Uint16(data[pos:])
		pos += 2
		return v, true
	}
	readU32 := func() (uint32, bool) {
		if !need(4) {
			return 0, false
		}
		v := binary.LittleEndian.Uint32(data[pos:])
		pos += 4
		return v, true
	}
	readTagString := func() (TagString, bool) {
		if !need(32) {
			return TagString{}, false
		}
		var s TagString
		copy(s[:], data[pos:pos+32])
		pos += 32
		return s, true
	}
	readPoint := func() (Point3D, bool) {
		if !need(12) {
			return Point3D{}, false
		}
		p := Point3D{X: ReadFloat32LE(data, pos), Y: ReadFloat32LE(data, pos+4), Z: ReadFloat32LE(data, pos+8)}
		pos += 12
		return p, true
	}
	readQuat := func() (Quaternion, bool) {
		if !need(16) {
			return Quaternion{}, false
		}
		q := Quaternion{X: ReadFloat32LE(data, pos), Y: ReadFloat32LE(data, pos+4), Z: ReadFloat32LE(data, pos+8), W: ReadFloat32LE(data, pos+12)}
		pos += 16
		return q, true
	}

	nodeCount, ok := readU32()
	if !ok {
		return nil, ErrMalformedModel
	}
	for i := uint32(0); i < nodeCount; i++ {
		name, ok := readTagString()
		if !ok {
			return nil, ErrMalformedModel
		}
		next, ok1 := readU16()
		child, ok2 := readU16()
		parent, ok3 := readU16()
		trans, ok4 := readPoint()
		rot, ok5 := readQuat()
		if !(ok1 && ok2 && ok3 && ok4 && ok5) {
			return nil, ErrMalformedModel
		}
		m.Nodes = append(m.Nodes, ModelNode{
			Name: name, NextSiblingIndex: next, FirstChildIndex: child, ParentIndex: parent,
			DefaultTranslation: trans, DefaultRotation: rot,
		})
	}

	regionCount, ok := readU32()
	if !ok {
		return nil, ErrMalformedModel
	}
	for r := uint32(0); r < regionCount; r++ {
		name, ok := readTagString()
		if !ok {
			return nil, ErrMalformedModel
		}
		region := ModelRegion{Name: name}

		permCount, ok := readU32()
		if !ok {
			return nil, ErrMalformedModel
		}
		for p := uint32(0); p < permCount; p++ {
			pname, ok := readTagString()
			if !ok {
				return nil, ErrMalformedModel
			}
			perm := ModelPermutation{Name: pname}

			markerCount, ok := readU32()
			if !ok {
				return nil, ErrMalformedModel
			}
			for mk := uint32(0); mk < markerCount; mk++ {
				mname, ok := readTagString()
				node, ok1 := readU16()
				position, ok2 := readPoint()
				rotation, ok3 := readQuat()
				if !(ok && ok1 && ok2 && ok3) {
					return nil, ErrMalformedModel
				}
				perm.Markers = append(perm.Markers, ModelMarker{Name: mname, NodeIndex: node, Position: position, Rotation: rotation})
			}

			partCount, ok := readU32()
			if !ok {
				return nil, ErrMalformedModel
			}
			for pt := uint32(0); pt < partCount; pt++ {
				flags, ok := readU32()
				if !ok {
					return nil, ErrMalformedModel
				}
				compat, ok := readU32()
				if !ok {
					return nil, ErrMalformedModel
				}
				triCount, ok := readU32()
				if !ok {
					return nil, ErrMalformedModel
				}
				var tris []uint16
				for i := uint32(0); i < triCount; i++ {
					v, ok := readU16()
					if !ok {
						return nil, ErrMalformedModel
					}
					tris = append(tris, v)
				}
				vertCount, ok := readU32()
				if !ok {
					return nil, ErrMalformedModel
				}
				if !need(int(vertCount) * modelVertexSize) {
					return nil, ErrMalformedModel
				}
				verts := make([]ModelVertex, vertCount)
				for i := uint32(0); i < vertCount; i++ {
					verts[i] = decodeModelVertex(data[pos:])
					pos += modelVertexSize
				}
				compressedVertCount, ok := readU32()
				if !ok {
					return nil, ErrMalformedModel
				}
				perm.Parts = append(perm.Parts, ModelPart{
					Triangles:             tris,
					UncompressedVertices:  verts,
					Zoner:                 flags != 0,
					CompatibilityBits:     compat,
					CompressedVertexCount: compressedVertCount,
				})
			}
			region.Permutations = append(region.Permutations, perm)
		}
		m.Regions = append(m.Regions, region)
	}

	markerCount, ok := readU32()
	if !ok {
		// Older payloads (pre-collation) may not carry a trailing marker
		// table at all; that's fine, pre-compile populates it fresh.
		return m, nil
	}
	for i := uint32(0); i < markerCount; i++ {
		name, ok := readTagString()
		node, ok1 := readU16()
		perm, ok2 := readU16()
		region, ok3 := readU16()
		position, ok4 := readPoint()
		rotation, ok5 := readQuat()
		if !(ok && ok1 && ok2 && ok3 && ok4 && ok5) {
			return nil, ErrMalformedModel
		}
		m.Markers = append(m.Markers, ModelMarker{
			Name: name, NodeIndex: node, PermutationIndex: perm, RegionIndex: region,
			Position: position, Rotation: rotation,
		})
	}

	return m, nil
}

// Encode serializes a GBXModel back to its payload byte form, the mirror
// of DecodeGBXModel.
func (m *GBXModel) Encode() []byte {
	var buf []byte
	putF32 := func(f float32) {
		var b [4]byte
		PutFloat32LE(b[:], 0, f)
		buf = append(buf, b[:]...)
	}
	putU16 := func(v uint16) {
		var b [2]byte
		binary.LittleEndian.PutUint16(b[:], v)
		buf = append(buf, b[:]...)
	}
	putU32 := func(v uint32) {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], v)
		buf = append(buf, b[:]...)
	}
	putTagString := func(s TagString) { buf = append(buf, s[:]...) }
	putPoint := func(p Point3D) { putF32(p.X); putF32(p.Y); putF32(p.Z) }
	putQuat := func(q Quaternion) { putF32(q.X); putF32(q.Y); putF32(q.Z); putF32(q.W) }

	putF32(m.SuperLowDetailCutoff)
	putF32(m.LowDetailCutoff)
	putF32(m.HighDetailCutoff)
	putF32(m.SuperHighDetailCutoff)

	putU32(uint32(len(m.Nodes)))
	for _, n := range m.Nodes {
		putTagString(n.Name)
		putU16(n.NextSiblingIndex)
		putU16(n.FirstChildIndex)
		putU16(n.ParentIndex)
		putPoint(n.DefaultTranslation)
		putQuat(n.DefaultRotation)
	}

	putU32(uint32(len(m.Regions)))
	for _, r := range m.Regions {
		putTagString(r.Name)
		putU32(uint32(len(r.Permutations)))
		for _, p := range r.Permutations {
			putTagString(p.Name)
			putU32(uint32(len(p.Markers)))
			for _, mk := range p.Markers {
				putTagString(mk.Name)
				putU16(mk.NodeIndex)
				putPoint(mk.Position)
				putQuat(mk.Rotation)
			}
			putU32(uint32(len(p.Parts)))
			for _, part := range p.Parts {
				if part.Zoner {
					putU32(1)
				} else {
					putU32(0)
				}
				putU32(part.CompatibilityBits)
				putU32(uint32(len(part.Triangles)))
				for _, t := range part.Triangles {
					putU16(t)
				}
				putU32(uint32(len(part.UncompressedVertices)))
				for _, v := range part.UncompressedVertices {
					buf = append(buf, v.encode()...)
				}
				putU32(part.CompressedVertexCount)
			}
		}
	}

	putU32(uint32(len(m.Markers)))
	for _, mk := range m.Markers {
		putTagString(mk.Name)
		putU16(mk.NodeIndex)
		putU16(mk.PermutationIndex)
		putU16(mk.RegionIndex)
		putPoint(mk.Position)
		putQuat(mk.Rotation)
	}

	return buf
}
