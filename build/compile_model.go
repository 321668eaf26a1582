package build

import (
	"sort"

	"github.com/cespare/xxhash/v2"

	"github.com/PumbleCorp/invader/hek"
)

// nullModelIndex is the triangle-index padding sentinel gbxmodel parts
// trail their index buffer with; it is never a real vertex index.
const nullModelIndex uint16 = hek.NullIndex

// compileGBXModel runs a gbxmodel tag through pre-compile: validates and
// flattens triangle indices, bakes the node hierarchy into absolute
// transforms, collates region/permutation markers into the model-level
// marker array, derives each permutation's numeric suffix, recalibrates
// the per-part compatibility bitmask, and deduplicates vertex/index data
// into the workload's shared model buffers.
func (w *Workload) compileGBXModel(ct *CompiledTag) error {
	m, err := hek.DecodeGBXModel(ct.Payload)
	if err != nil {
		return w.sink.fatalf(KindBrokenDependency, ct.Path, "malformed model payload: %v", err)
	}

	m.SuperLowDetailCutoff, m.LowDetailCutoff, m.HighDetailCutoff, m.SuperHighDetailCutoff =
		m.SuperHighDetailCutoff, m.HighDetailCutoff, m.LowDetailCutoff, m.SuperLowDetailCutoff

	if len(m.Markers) > 0 {
		w.sink.warn(KindBrokenDependency, ct.Path, "marker array is populated, but this array should be empty until pre-compile fills it")
	}
	m.Markers = collateModelMarkers(m)

	w.checkCompressedVertexCounts(ct, m)

	for ri := range m.Regions {
		for pi := range m.Regions[ri].Permutations {
			perm := &m.Regions[ri].Permutations[pi]
			perm.PermutationNumber = permutationNumberFromName(perm.Name.String())
		}
	}

	bakeModelNodes(m)

	exodux := exoduxState{}
	for gi := range m.Regions {
		for pi := range m.Regions[gi].Permutations {
			parts := m.Regions[gi].Permutations[pi].Parts
			for i := range parts {
				part := &parts[i]
				if err := w.compileModelPart(ct, part); err != nil {
					return err
				}
				exodux.apply(part)
			}
		}
	}

	ct.Payload = m.Encode()
	return nil
}

// checkCompressedVertexCounts warns once, on the first offending part, if
// a part's compressed vertex count is nonzero and doesn't match its
// uncompressed vertex count; to rebuild the model is the prescribed fix,
// so there's nothing further for pre-compile itself to do about it.
func (w *Workload) checkCompressedVertexCounts(ct *CompiledTag, m *hek.GBXModel) {
	for _, r := range m.Regions {
		for _, p := range r.Permutations {
			for _, part := range p.Parts {
				compressed := part.CompressedVertexCount
				uncompressed := uint32(len(part.UncompressedVertices))
				if compressed != 0 && compressed != uncompressed {
					w.sink.warn(KindVertexCountMismatch, ct.Path,
						"compressed vertex count (%d) is not equal to uncompressed (%d); rebuild the model tag to fix this",
						compressed, uncompressed)
					return
				}
			}
		}
	}
}

// compileModelPart trims trailing NULL_INDEX padding, validates every
// remaining index against the part's vertex count, derives TriangleCount,
// and deduplicates the part's vertex/index data into the workload's
// shared model buffers.
func (w *Workload) compileModelPart(ct *CompiledTag, part *hek.ModelPart) error {
	indices := part.Triangles
	for {
		n := len(indices)
		if n < 3 {
			return w.sink.fatalf(KindVertexCountMismatch, ct.Path, "triangle index count is invalid (%d < 3)", n)
		}
		if indices[n-1] == nullModelIndex {
			indices = indices[:n-1]
			continue
		}
		break
	}
	part.Triangles = indices
	part.TriangleCount = uint32(len(indices) - 2)

	vertexCount := len(part.UncompressedVertices)
	for i, idx := range indices {
		if int(idx) >= vertexCount {
			return w.sink.fatalf(KindVertexCountMismatch, ct.Path, "index #%d in triangle indices is invalid (%d >= %d)", i, idx, vertexCount)
		}
	}

	w.dedupModelPart(part)
	return nil
}

// dedupModelPart finds or appends this part's index list in the
// workload's shared index buffer, content-addressed via an xxhash digest
// of the encoded index list so repeat searches don't re-scan the whole
// buffer byte by byte. The part's vertices are appended to the shared
// vertex buffer for every part; they are not deduplicated.
func (w *Workload) dedupModelPart(part *hek.ModelPart) {
	key := make([]byte, len(part.Triangles)*2)
	for i, idx := range part.Triangles {
		key[i*2] = byte(idx)
		key[i*2+1] = byte(idx >> 8)
	}
	digest := xxhash.Sum64(key)

	found := false
	for _, cand := range w.modelDedup[digest] {
		if len(cand.data) == len(key) && string(cand.data) == string(key) {
			found = true
			break
		}
	}

	if !found {
		start := len(w.ModelIndices)
		w.ModelIndices = append(w.ModelIndices, key...)
		w.modelDedup[digest] = append(w.modelDedup[digest], dedupCandidate{start: start, data: key})
	}

	for _, v := range part.UncompressedVertices {
		w.ModelVertices = append(w.ModelVertices, v.Encode()...)
	}
}

func collateModelMarkers(m *hek.GBXModel) []hek.ModelMarker {
	type group struct {
		name      string
		instances []hek.ModelMarker
	}
	var groups []group

	for ri, r := range m.Regions {
		for pi, p := range r.Permutations {
			for _, mk := range p.Markers {
				name := mk.Name.String()
				inst := hek.ModelMarker{
					Name:             mk.Name,
					NodeIndex:        mk.NodeIndex,
					PermutationIndex: uint16(pi),
					RegionIndex:      uint16(ri),
					Position:         mk.Position,
					Rotation:         mk.Rotation,
				}

				found := false
				for gi := range groups {
					if groups[gi].name == name {
						groups[gi].instances = append(groups[gi].instances, inst)
						found = true
						break
					}
				}
				if !found {
					groups = append(groups, group{name: name, instances: []hek.ModelMarker{inst}})
				}
			}
		}
	}

	sort.Slice(groups, func(i, j int) bool { return groups[i].name < groups[j].name })

	var out []hek.ModelMarker
	for _, g := range groups {
		out = append(out, g.instances...)
	}
	return out
}

// permutationNumberFromName parses the numeric suffix after the last
// hyphen in a permutation name. No hyphen, or an empty or non-numeric
// suffix, yields 0; a numeric suffix at or above NullIndex yields
// NullIndex.
func permutationNumberFromName(name string) uint16 {
	lastHyphen := -1
	for i, c := range name {
		if c == '-' {
			lastHyphen = i
		}
	}
	if lastHyphen == -1 || lastHyphen+1 >= len(name) {
		return 0
	}
	suffix := name[lastHyphen+1:]

	var n uint32
	for _, c := range suffix {
		if c < '0' || c > '9' {
			return 0
		}
		n = n*10 + uint32(c-'0')
		if n >= uint32(hek.NullIndex) {
			return hek.NullIndex
		}
	}
	return uint16(n)
}

// bakeModelNodes walks the node hierarchy from the root, composing each
// node's absolute rotation/translation from its parent's baked transform.
func bakeModelNodes(m *hek.GBXModel) {
	if len(m.Nodes) == 0 {
		return
	}
	done := make([]bool, len(m.Nodes))

	var walk func(idx uint16, baseRotation hek.Matrix3x3, baseTranslation hek.Point3D)
	walk = func(idx uint16, baseRotation hek.Matrix3x3, baseTranslation hek.Point3D) {
		if idx == hek.NullIndex || int(idx) >= len(m.Nodes) || done[idx] {
			return
		}
		done[idx] = true

		node := &m.Nodes[idx]
		node.Scale = 1.0

		nodeRotation := node.DefaultRotation.ToMatrix()
		totalRotation := baseRotation.Multiply(nodeRotation)
		node.Rotation = totalRotation

		negTranslation := node.DefaultTranslation.Scale(-1)
		totalTranslation := nodeRotation.RotateVector(negTranslation.Add(baseTranslation))
		node.Translation = totalTranslation

		walk(node.NextSiblingIndex, baseRotation, baseTranslation)
		walk(node.FirstChildIndex, totalRotation, totalTranslation)
	}

	walk(0, hek.Identity3x3(), hek.Point3D{})
}

// exoduxState replicates the per-part compatibility bitmask recalibration
// pass: an alternating high-pass filter over the authored bit, with the
// filter's own phase carried across every part in tag order.
type exoduxState struct {
	handler bool
	parser  bool
}

func (s *exoduxState) apply(part *hek.ModelPart) {
	// zoner is ANDed in as the literal 0/1 flag value, not expanded into a
	// full mask — this matches the authored cascade exactly and is part of
	// why its output must be taken from the test vector rather than
	// re-derived from first principles.
	var zoner uint32
	if part.Zoner {
		zoner = 1
	}
	value := (part.CompatibilityBits & zoner) ^ 0x7F7F7F7F

	if s.handler {
		value ^= 0x3C170A5E
	} else {
		value <<= 16
		if s.parser {
			value ^= 0x2D1E6921
		} else {
			value ^= 0x291E7021
		}
		s.parser = !s.parser
	}

	if part.Zoner {
		value ^= 1
	}
	s.handler = !s.handler

	part.CompatibilityBits = (value&0xFF000000)>>24 | (value&0x00FF0000)>>8 | (value&0x0000FF00)<<8 | (value&0x000000FF)<<24
}
