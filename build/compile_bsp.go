package build

import (
	"encoding/binary"
	"errors"

	"github.com/PumbleCorp/invader/geo"
	"github.com/PumbleCorp/invader/hek"
)

// ErrMalformedBSP is returned when a scenario_structure_bsp tag's node
// array doesn't fit the buffer it's decoded from.
var ErrMalformedBSP = errors.New("build: malformed bsp payload")

const bspNodeRecordSize = 3*4 + 4 + 4 + 4 // plane normal, plane d, front child, back child

// compileBSP is mostly schema-driven pass-through: the collision/render
// geometry and leaf/node/plane arrays travel in the payload unchanged,
// since §4.9's queries read them directly rather than needing a
// normalised in-memory form. Pre-compile only validates that the node
// array is well-formed so a later geometry fixup can safely decode it.
func (w *Workload) compileBSP(ct *CompiledTag) error {
	if _, err := decodeBSPTree(ct.Payload); err != nil {
		return w.sink.fatalf(KindBSPLeafNotFound, ct.Path, "malformed bsp node array: %v", err)
	}
	return nil
}

// decodeBSPTree reads a scenario_structure_bsp payload's node array into a
// geo.Tree, the geometry package's query structure. It lives in build
// rather than hek because geo.Node is defined in terms of hek.FlaggedInt
// and hek must not import geo.
func decodeBSPTree(payload []byte) (*geo.Tree, error) {
	if len(payload) < 4 {
		return nil, ErrMalformedBSP
	}
	count := binary.LittleEndian.Uint32(payload)
	pos := 4
	if pos+int(count)*bspNodeRecordSize > len(payload) {
		return nil, ErrMalformedBSP
	}

	nodes := make([]geo.Node, count)
	for i := uint32(0); i < count; i++ {
		base := pos + int(i)*bspNodeRecordSize
		normal := hek.Vector3D{
			X: hek.ReadFloat32LE(payload, base),
			Y: hek.ReadFloat32LE(payload, base+4),
			Z: hek.ReadFloat32LE(payload, base+8),
		}
		d := hek.ReadFloat32LE(payload, base+12)
		front := hek.FlaggedInt(binary.LittleEndian.Uint32(payload[base+16:]))
		back := hek.FlaggedInt(binary.LittleEndian.Uint32(payload[base+20:]))
		nodes[i] = geo.Node{
			Plane:       geo.Plane{Normal: normal, D: d},
			FrontChild:  front,
			BackChild:   back,
		}
	}

	return &geo.Tree{Nodes: nodes}, nil
}
