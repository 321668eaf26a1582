package build

import (
	"github.com/PumbleCorp/invader/geo"
	"github.com/PumbleCorp/invader/hek"
)

// compileScenario runs the scenario's own pre-compile step: exporting its
// cache_file_type is handled eagerly in Resolve (scenarioCacheFileType) so
// every later phase can see it without waiting on a pre-compile pass; this
// just validates the payload decodes so FixScenarioGeometry can safely run
// against it later.
func (w *Workload) compileScenario(ct *CompiledTag) error {
	if _, err := hek.DecodeScenario(ct.Payload); err != nil {
		return w.sink.fatalf(KindBrokenDependency, ct.Path, "malformed scenario payload: %v", err)
	}
	return nil
}

// FixScenarioGeometry runs once every tag has been pre-compiled: it looks
// up the containing BSP leaf for every encounter firing position and
// command-list point, trying each of the scenario's referenced BSPs in
// reference order until one of them claims the point. This is the
// dedicated post-pass decided in DESIGN.md's Open Question resolution —
// it must run after every scenario_structure_bsp tag has its node array in
// place, which pre-compile alone does not guarantee.
func (w *Workload) FixScenarioGeometry() error {
	if w.ScenarioIndex < 0 || w.ScenarioIndex >= len(w.Tags) {
		return nil
	}
	scenarioTag := w.Tags[w.ScenarioIndex]
	if scenarioTag == nil || scenarioTag.Class != hek.ClassScenario {
		return nil
	}

	scenario, err := hek.DecodeScenario(scenarioTag.Payload)
	if err != nil {
		return w.sink.fatalf(KindBrokenDependency, scenarioTag.Path, "malformed scenario payload: %v", err)
	}

	trees := w.bspTreesInOrder()

	for ei := range scenario.Encounters {
		enc := &scenario.Encounters[ei]
		for fi := range enc.FiringPositions {
			fp := &enc.FiringPositions[fi]
			leaf, ok := locateLeaf(trees, fp.Position)
			if !ok {
				w.sink.warn(KindBSPLeafNotFound, scenarioTag.Path, "firing position %d of encounter %q has no containing bsp leaf", fi, enc.Name.String())
				continue
			}
			fp.Leaf = leaf
		}
	}

	for li := range scenario.CommandLists {
		list := &scenario.CommandLists[li]
		for pi := range list.Points {
			pt := &list.Points[pi]
			leaf, ok := locateLeaf(trees, pt.Position)
			if !ok {
				w.sink.warn(KindBSPLeafNotFound, scenarioTag.Path, "command point %d of command list %q has no containing bsp leaf", pi, list.Name.String())
				continue
			}
			pt.Leaf = leaf
		}
	}

	scenarioTag.Payload = scenario.Encode()
	return nil
}

// bspTreesInOrder decodes every scenario-referenced BSP into a geo.Tree,
// in scenario-local ordinal order via geo.Index, skipping BSPs whose
// payload fails to decode (already reported by compileBSP).
func (w *Workload) bspTreesInOrder() []*geo.Tree {
	index := geo.NewIndex(w.bspIndex)
	var trees []*geo.Tree
	for ordinal := 0; ; ordinal++ {
		tagIdx, ok := index.TagIndex(uint32(ordinal))
		if !ok {
			break
		}
		if tagIdx < 0 || tagIdx >= len(w.Tags) || w.Tags[tagIdx] == nil {
			continue
		}
		tree, err := decodeBSPTree(w.Tags[tagIdx].Payload)
		if err != nil {
			continue
		}
		trees = append(trees, tree)
	}
	return trees
}

func locateLeaf(trees []*geo.Tree, p hek.Point3D) (hek.FlaggedInt, bool) {
	for _, tree := range trees {
		if leaf, ok := tree.PointInLeaf(p); ok {
			return hek.NewFlaggedIndex(leaf), true
		}
	}
	return hek.NullFlaggedInt, false
}
